package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// DefaultJPEGQuality is used when EncodeOptions leaves JPEGQuality unset.
const DefaultJPEGQuality = 90

// EncodeOptions tunes the lossy encoders. The zero value is usable.
type EncodeOptions struct {
	// JPEGQuality is 1-100; 0 selects DefaultJPEGQuality.
	JPEGQuality int
}

func (o EncodeOptions) jpegQuality() int {
	if o.JPEGQuality <= 0 {
		return DefaultJPEGQuality
	}
	return min(o.JPEGQuality, 100)
}

// Encode serializes seq into format f. GIF and WebP keep every frame with its
// delay and the sequence loop count; the single-frame formats accept exactly
// one frame. Any frame data the target cannot carry fails with ErrEncode.
func Encode(seq *Sequence, f Format, opts EncodeOptions) ([]byte, error) {
	if err := checkEncodable(seq, f); err != nil {
		return nil, err
	}

	switch f {
	case FormatGIF:
		return encodeGIF(seq)
	case FormatWebP:
		return encodeWebP(seq)
	}

	var img image.Image = seq.Frames[0].Image
	if deep := seq.Frames[0].Image64; deep != nil && (f == FormatPNG || f == FormatTIFF) {
		img = deep
	}
	var buf bytes.Buffer
	var err error
	switch f {
	case FormatPNG:
		err = png.Encode(&buf, img)
	case FormatJPEG:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: opts.jpegQuality()})
	case FormatBMP:
		err = bmp.Encode(&buf, img)
	case FormatTIFF:
		err = tiff.Encode(&buf, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return nil, fmt.Errorf("%w: no encoder for %s", ErrEncode, f)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrEncode, f, err)
	}
	return buf.Bytes(), nil
}

// checkEncodable rejects sequences the target format cannot represent.
func checkEncodable(seq *Sequence, f Format) error {
	if seq == nil || len(seq.Frames) == 0 {
		return fmt.Errorf("%w: no frames to encode", ErrEncode)
	}
	if len(seq.Frames) > 1 && !f.MultiFrame() {
		return fmt.Errorf("%w: %s cannot hold %d frames", ErrEncode, f, len(seq.Frames))
	}
	w, h := seq.Width(), seq.Height()
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: frame size %dx%d", ErrEncode, w, h)
	}
	if f == FormatGIF && (w > 0xFFFF || h > 0xFFFF) {
		return fmt.Errorf("%w: %dx%d exceeds gif limits", ErrEncode, w, h)
	}
	for i, fr := range seq.Frames {
		if fr.Image == nil {
			return fmt.Errorf("%w: frame %d has no pixels", ErrEncode, i)
		}
		if fr.Width != w || fr.Height != h ||
			fr.Image.Rect.Dx() != w || fr.Image.Rect.Dy() != h {
			return fmt.Errorf("%w: frame %d is %dx%d, frame 0 is %dx%d", ErrEncode, i, fr.Width, fr.Height, w, h)
		}
		if fr.Image64 != nil && (fr.Image64.Rect.Dx() != w || fr.Image64.Rect.Dy() != h) {
			return fmt.Errorf("%w: frame %d 16-bit pixels are not %dx%d", ErrEncode, i, w, h)
		}
	}
	return nil
}
