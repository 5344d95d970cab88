package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Decode turns an encoded buffer of the given format into a frame sequence.
//
// Single-frame formats yield exactly one frame with a zero delay. GIF and
// animated WebP yield one fully composited frame per encoded frame in display
// order; zero delays become DefaultFrameDelay.
//
// The buffer is never modified and nothing derived from it is retained after
// Decode returns. Structurally invalid input fails with ErrCorruptImage.
func Decode(buf []byte, f Format) (*Sequence, error) {
	var (
		seq *Sequence
		err error
	)
	guard(&err, f, func() {
		switch f {
		case FormatGIF:
			seq, err = decodeGIF(buf)
		case FormatWebP:
			seq, err = decodeWebP(buf)
		case FormatPNG, FormatJPEG, FormatBMP, FormatTIFF:
			seq, err = decodeStill(buf, f)
		default:
			err = fmt.Errorf("%w: cannot decode %s", ErrUnsupportedFormat, f)
		}
	})
	if err != nil {
		return nil, err
	}
	if err := checkSequence(seq); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptImage, err)
	}
	return seq, nil
}

// DecodeBuffer identifies the buffer's format and decodes it.
func DecodeBuffer(buf []byte) (*Sequence, error) {
	f, err := Identify(buf)
	if err != nil {
		return nil, err
	}
	return Decode(buf, f)
}

// guard runs fn and converts a codec panic into ErrCorruptImage. The codecs
// consume attacker-controlled bytes, and a panic in one must fail only the
// request that triggered it.
func guard(errp *error, f Format, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			*errp = fmt.Errorf("%w: %s decoder panicked: %v", ErrCorruptImage, f, r)
		}
	}()
	fn()
}

func decodeStill(buf []byte, f Format) (*Sequence, error) {
	r := bytes.NewReader(buf)
	var (
		img image.Image
		err error
	)
	switch f {
	case FormatPNG:
		img, err = png.Decode(r)
	case FormatJPEG:
		img, err = jpeg.Decode(r)
	case FormatBMP:
		img, err = bmp.Decode(r)
	case FormatTIFF:
		img, err = tiff.Decode(r)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptImage, f, err)
	}
	fr := newFrame(0, toNRGBA(img), 0)
	if isDeep(img) {
		fr = newDeepFrame(0, toNRGBA64(img, img.Bounds()), 0)
	}
	return &Sequence{Format: f, Frames: []Frame{fr}}, nil
}

// toNRGBA returns img as an *image.NRGBA that the caller owns.
func toNRGBA(img image.Image) *image.NRGBA {
	return imaging.Clone(img)
}

// checkSequence enforces the sequence invariants: at least one frame, positive
// dimensions, identical dimensions across frames, pixel buffers present.
func checkSequence(seq *Sequence) error {
	if seq == nil || len(seq.Frames) == 0 {
		return fmt.Errorf("no frames")
	}
	w, h := seq.Frames[0].Width, seq.Frames[0].Height
	if w <= 0 || h <= 0 {
		return fmt.Errorf("frame 0 is %dx%d", w, h)
	}
	for i, fr := range seq.Frames {
		if fr.Image == nil {
			return fmt.Errorf("frame %d has no pixels", i)
		}
		if fr.Width != w || fr.Height != h {
			return fmt.Errorf("frame %d is %dx%d, frame 0 is %dx%d", i, fr.Width, fr.Height, w, h)
		}
		if fr.Image.Rect.Dx() != w || fr.Image.Rect.Dy() != h {
			return fmt.Errorf("frame %d pixel buffer does not match %dx%d", i, w, h)
		}
		if fr.Image64 != nil && (fr.Image64.Rect.Dx() != w || fr.Image64.Rect.Dy() != h) {
			return fmt.Errorf("frame %d 16-bit buffer does not match %dx%d", i, w, h)
		}
	}
	return nil
}
