package imaging

import (
	"image"
	"image/color"
	"time"

	"github.com/disintegration/imaging"
)

// DefaultFrameDelay is the delay given to animation frames whose container
// encodes a zero or missing delay. It applies to GIF and WebP alike and
// matches what browsers display for such frames.
const DefaultFrameDelay = 100 * time.Millisecond

// LoopInfinite is the Sequence.LoopCount value for an endlessly repeating animation.
const LoopInfinite = 0

// Frame is one decoded still image within a sequence.
type Frame struct {
	// Index is the frame's position in display order.
	Index int

	// Width and Height are the frame dimensions in pixels.
	Width  int
	Height int

	// Delay is how long the frame is displayed. Only meaningful when the
	// sequence holds more than one frame.
	Delay time.Duration

	// Image holds the fully composited pixels, 8-bit non-premultiplied RGBA,
	// with bounds starting at (0,0). A Frame owns its Image exclusively.
	Image *image.NRGBA

	// Image64 holds the full-precision pixels of a source with more than 8
	// bits per channel, or nil. When set, Image is its 8-bit rendering and
	// PNG and TIFF output is written from Image64.
	Image64 *image.NRGBA64
}

// Sequence is the decoded form of an image buffer: the source container
// format plus its frames in display order.
type Sequence struct {
	Format Format
	Frames []Frame

	// LoopCount follows the GIF/WebP convention: 0 loops forever, n > 0 plays
	// n additional times (GIF) or n times (WebP), -1 plays once (GIF only).
	LoopCount int
}

// Width returns the shared frame width, or 0 for an empty sequence.
func (s *Sequence) Width() int {
	if len(s.Frames) == 0 {
		return 0
	}
	return s.Frames[0].Width
}

// Height returns the shared frame height, or 0 for an empty sequence.
func (s *Sequence) Height() int {
	if len(s.Frames) == 0 {
		return 0
	}
	return s.Frames[0].Height
}

// Animated reports whether the sequence has more than one frame.
func (s *Sequence) Animated() bool {
	return len(s.Frames) > 1
}

// newFrame builds a Frame around img, normalizing its bounds to start at the origin.
func newFrame(index int, img *image.NRGBA, delay time.Duration) Frame {
	if img.Rect.Min != (image.Point{}) {
		img = &image.NRGBA{
			Pix:    img.Pix,
			Stride: img.Stride,
			Rect:   image.Rect(0, 0, img.Rect.Dx(), img.Rect.Dy()),
		}
	}
	return Frame{
		Index:  index,
		Width:  img.Rect.Dx(),
		Height: img.Rect.Dy(),
		Delay:  delay,
		Image:  img,
	}
}

// newDeepFrame builds a Frame around 16-bit pixels and derives the 8-bit view.
func newDeepFrame(index int, img *image.NRGBA64, delay time.Duration) Frame {
	fr := newFrame(index, imaging.Clone(img), delay)
	fr.Image64 = img
	return fr
}

// isDeep reports whether img carries more than 8 bits per channel.
func isDeep(img image.Image) bool {
	switch img.(type) {
	case *image.NRGBA64, *image.RGBA64, *image.Gray16:
		return true
	}
	return false
}

// toNRGBA64 copies the r portion of img into a new *image.NRGBA64 whose
// bounds start at the origin.
func toNRGBA64(img image.Image, r image.Rectangle) *image.NRGBA64 {
	dst := image.NewNRGBA64(image.Rect(0, 0, r.Dx(), r.Dy()))
	for y := 0; y < r.Dy(); y++ {
		for x := 0; x < r.Dx(); x++ {
			c := color.NRGBA64Model.Convert(img.At(r.Min.X+x, r.Min.Y+y)).(color.NRGBA64)
			dst.SetNRGBA64(x, y, c)
		}
	}
	return dst
}

// normalizeDelay applies DefaultFrameDelay to zero or negative delays.
func normalizeDelay(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultFrameDelay
	}
	return d
}
