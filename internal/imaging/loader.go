package imaging

import (
	"fmt"
	"io"
	"os"
)

// ReadFile reads an image file into a request-owned buffer.
//
// Parameters:
//   - path: Absolute or relative file path. Any supported container may be
//     read; the format is determined later from the content, never from the
//     file extension.
//   - maxBytes: Upper bound on the file size. Zero or negative disables the
//     check.
//
// Returns:
//   - []byte: The file content. Nothing is cached; each call reads the file
//     again, so concurrent callers never share a buffer.
//   - error: Non-nil if the file cannot be opened or read, or is larger than
//     maxBytes. A size violation wraps ErrTooLarge.
//
// # Errors
//
//   - Returns error if the file does not exist or cannot be read
//   - Returns ErrTooLarge if the file exceeds maxBytes
func ReadFile(path string, maxBytes int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if stat.IsDir() {
		return nil, fmt.Errorf("failed to read image: %s is a directory", path)
	}
	if maxBytes > 0 && stat.Size() > maxBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit is %d", ErrTooLarge, path, stat.Size(), maxBytes)
	}

	var r io.Reader = f
	if maxBytes > 0 {
		// The file may grow between Stat and Read.
		r = io.LimitReader(f, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, path, maxBytes)
	}
	return data, nil
}

// CheckLimits probes buf and rejects it with ErrTooLarge when the decoded
// frames would exceed maxPixels in total. Zero or negative disables the check.
// The probe's own failures (unknown format, corrupt headers) are returned as is.
func CheckLimits(buf []byte, maxPixels int64) (*Header, error) {
	hdr, err := Probe(buf)
	if err != nil {
		return nil, err
	}
	if maxPixels > 0 && hdr.Pixels() > maxPixels {
		return nil, fmt.Errorf("%w: %s %dx%d with %d frames needs %d pixels, limit is %d",
			ErrTooLarge, hdr.Format, hdr.Width, hdr.Height, hdr.Frames, hdr.Pixels(), maxPixels)
	}
	return hdr, nil
}
