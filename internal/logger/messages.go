package logger

import "github.com/ideamans/go-l10n"

func init() {
	// Japanese translations for log messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Server lifecycle
		"piccy %s starting (workers=%d)": "piccy %s を起動しています (ワーカー数=%d)",
		"Server stopped":                 "サーバーを停止しました",
		"Read error: %v":                 "入力の読み取りに失敗しました: %v",

		// Requests
		"Failed to parse request: %v":   "リクエストを解析できませんでした: %v",
		"Failed to encode response: %v": "レスポンスをエンコードできませんでした: %v",
		"Handling %s":                   "%s を処理しています",
		"Tool %s failed: %s: %v":        "ツール %s が失敗しました: %s: %v",
		"Tool %s completed in %v":       "ツール %s が %v で完了しました",

		"Request exceeds %d bytes, skipped": "%d バイトを超えるリクエストをスキップしました",

		// Config and storage
		"Loaded config from %s": "%s から設定を読み込みました",
		"Wrote %d bytes to %s":  "%d バイトを %s に書き込みました",
	})
}
