package imaging

import (
	"bytes"
	"fmt"
	"strings"
)

// Format identifies an image container format.
type Format int

const (
	// FormatUnknown is only ever returned alongside an error.
	FormatUnknown Format = iota
	FormatPNG
	FormatJPEG
	FormatGIF
	FormatWebP
	FormatBMP
	FormatTIFF
)

// String returns the lowercase short name of the format ("png", "gif", ...).
func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatJPEG:
		return "jpeg"
	case FormatGIF:
		return "gif"
	case FormatWebP:
		return "webp"
	case FormatBMP:
		return "bmp"
	case FormatTIFF:
		return "tiff"
	default:
		return "unknown"
	}
}

// MimeType returns the IANA media type for the format.
func (f Format) MimeType() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatJPEG:
		return "image/jpeg"
	case FormatGIF:
		return "image/gif"
	case FormatWebP:
		return "image/webp"
	case FormatBMP:
		return "image/bmp"
	case FormatTIFF:
		return "image/tiff"
	default:
		return "application/octet-stream"
	}
}

// Extension returns the conventional file extension, including the dot.
func (f Format) Extension() string {
	switch f {
	case FormatJPEG:
		return ".jpg"
	case FormatTIFF:
		return ".tiff"
	case FormatUnknown:
		return ".bin"
	default:
		return "." + f.String()
	}
}

// MultiFrame reports whether the container can carry an animation.
func (f Format) MultiFrame() bool {
	return f == FormatGIF || f == FormatWebP
}

// ParseFormat converts a user-supplied name ("png", "jpg", ".webp") to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), ".") {
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "gif":
		return FormatGIF, nil
	case "webp":
		return FormatWebP, nil
	case "bmp":
		return FormatBMP, nil
	case "tif", "tiff":
		return FormatTIFF, nil
	default:
		return FormatUnknown, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// signature is a header pattern; zero bytes in mask positions are wildcards.
type signature struct {
	format Format
	magic  []byte
	mask   []byte
}

// signatures lists the known container headers. RIFF containers put the file
// size between "RIFF" and the form type, hence the masked bytes.
var signatures = []signature{
	{format: FormatPNG, magic: []byte("\x89PNG\r\n\x1a\n")},
	{format: FormatJPEG, magic: []byte{0xFF, 0xD8, 0xFF}},
	{format: FormatGIF, magic: []byte("GIF87a")},
	{format: FormatGIF, magic: []byte("GIF89a")},
	{
		format: FormatWebP,
		magic:  []byte("RIFF\x00\x00\x00\x00WEBP"),
		mask:   []byte{1, 1, 1, 1, 0, 0, 0, 0, 1, 1, 1, 1},
	},
	{format: FormatTIFF, magic: []byte("II*\x00")},
	{format: FormatTIFF, magic: []byte("MM\x00*")},
	{format: FormatBMP, magic: []byte("BM")},
}

// minSignatureLen is the length of the shortest known signature.
const minSignatureLen = 2

// maxSniffLen bounds how much of the buffer Identify looks at.
const maxSniffLen = 16

// Identify classifies a buffer by its header signature. Only the first
// maxSniffLen bytes are inspected.
func Identify(buf []byte) (Format, error) {
	if len(buf) < minSignatureLen {
		return FormatUnknown, fmt.Errorf("%w: buffer too short (%d bytes)", ErrUnsupportedFormat, len(buf))
	}
	head := buf
	if len(head) > maxSniffLen {
		head = head[:maxSniffLen]
	}
	for _, sig := range signatures {
		if matchSignature(head, sig) {
			return sig.format, nil
		}
	}
	return FormatUnknown, fmt.Errorf("%w: unrecognized header % x", ErrUnsupportedFormat, head[:min(len(head), 8)])
}

func matchSignature(head []byte, sig signature) bool {
	if len(head) < len(sig.magic) {
		return false
	}
	if sig.mask == nil {
		return bytes.Equal(head[:len(sig.magic)], sig.magic)
	}
	for i, b := range sig.magic {
		if sig.mask[i] != 0 && head[i] != b {
			return false
		}
	}
	return true
}
