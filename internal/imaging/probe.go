package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	xwebp "golang.org/x/image/webp"
)

// Header describes an image buffer without its pixels.
type Header struct {
	Format Format `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Frames int    `json:"frames"`
}

// Pixels returns the number of pixels a full decode would allocate.
func (h *Header) Pixels() int64 {
	return int64(h.Width) * int64(h.Height) * int64(max(h.Frames, 1))
}

// Probe identifies the buffer's format and reads its declared dimensions and
// frame count. No pixel data is decoded, so callers can reject oversized
// inputs before paying for Decode.
func Probe(buf []byte) (*Header, error) {
	f, err := Identify(buf)
	if err != nil {
		return nil, err
	}

	switch f {
	case FormatGIF:
		layout, err := scanGIF(buf)
		if err != nil {
			return nil, err
		}
		return &Header{Format: f, Width: layout.width, Height: layout.height, Frames: len(layout.delays)}, nil

	case FormatWebP:
		layout, err := scanWebP(buf)
		if err != nil {
			return nil, err
		}
		if layout.extended {
			frames := 1
			if layout.animated {
				frames = len(layout.durations)
			}
			return &Header{Format: f, Width: layout.width, Height: layout.height, Frames: frames}, nil
		}
		cfg, err := xwebp.DecodeConfig(bytes.NewReader(buf))
		if err != nil {
			return nil, fmt.Errorf("%w: webp header: %v", ErrCorruptImage, err)
		}
		return &Header{Format: f, Width: cfg.Width, Height: cfg.Height, Frames: 1}, nil
	}

	cfg, err := decodeConfig(buf, f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s header: %v", ErrCorruptImage, f, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: %s declares %dx%d", ErrCorruptImage, f, cfg.Width, cfg.Height)
	}
	return &Header{Format: f, Width: cfg.Width, Height: cfg.Height, Frames: 1}, nil
}

// decodeConfig reads the header of a single-frame raster format.
func decodeConfig(buf []byte, f Format) (image.Config, error) {
	r := bytes.NewReader(buf)
	switch f {
	case FormatPNG:
		return png.DecodeConfig(r)
	case FormatJPEG:
		return jpeg.DecodeConfig(r)
	case FormatBMP:
		return bmp.DecodeConfig(r)
	case FormatTIFF:
		return tiff.DecodeConfig(r)
	default:
		return image.Config{}, fmt.Errorf("no header reader for %s", f)
	}
}
