package main

import "github.com/ideamans/go-l10n"

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Root command
		"Inspect and crop still and animated images":         "静止画とアニメーション画像の検査と切り抜き",
		"Path to a YAML config file (default $PICCY_CONFIG)": "YAML設定ファイルのパス (既定値 $PICCY_CONFIG)",
		"Log level: debug, info, warn, error or quiet":       "ログレベル: debug, info, warn, error, quiet",
		"Error:":                                             "エラー:",

		// Serve command
		"Serve MCP requests over stdin/stdout": "標準入出力でMCPリクエストを処理",

		// Inspect command
		"Print the dimensions, format and animation details of an image": "画像のサイズ、形式、アニメーション情報を表示",
		"Print the result as JSON":                                       "結果をJSONで表示",
		"IMAGE":                                                          "画像",
		"File:":                                                          "ファイル:",
		"Format:":                                                        "形式:",
		"Size:":                                                          "サイズ:",
		"Frames:":                                                        "フレーム:",
		"Average:":                                                       "平均:",
		"%d ms per frame":                                                "1フレームあたり %d ミリ秒",

		// Crop command
		"Crop every frame of an image and write the result":                  "画像の全フレームを切り抜いて書き出す",
		"either --region or --left, --top, --width and --height is required": "--region、または --left, --top, --width, --height のいずれかが必要です",
		"Left edge X coordinate (0-based)":                                   "左端のX座標 (0始まり)",
		"Top edge Y coordinate (0-based)":                                    "上端のY座標 (0始まり)",
		"Width of the rectangle in pixels":                                   "矩形の幅 (ピクセル)",
		"Height of the rectangle in pixels":                                  "矩形の高さ (ピクセル)",
		"Named region: %v":                                                   "名前付き領域: %v",
		"Output file or directory":                                           "出力ファイルまたはディレクトリ",
		"Wrote %s":                                                           "%s に書き込みました",
		"Bytes:":                                                             "バイト数:",

		// Version command
		"Print version information": "バージョン情報を表示",
		"Build time:":               "ビルド日時:",
		"Git commit:":               "Gitコミット:",
	})
}
