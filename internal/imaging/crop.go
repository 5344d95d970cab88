package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Rect is a crop rectangle in source pixel coordinates. Left and Top are
// inclusive; the region covers [Left, Left+Width) x [Top, Top+Height).
type Rect struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Validate checks that r has a positive size and lies inside a w x h image.
func (r Rect) Validate(w, h int) error {
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("%w: crop size %dx%d must be positive", ErrOutOfBounds, r.Width, r.Height)
	}
	if r.Left < 0 || r.Top < 0 {
		return fmt.Errorf("%w: crop origin (%d,%d) is negative", ErrOutOfBounds, r.Left, r.Top)
	}
	// Compare by subtraction so huge values cannot overflow the sum.
	if r.Width > w-r.Left || r.Height > h-r.Top {
		return fmt.Errorf("%w: crop region (%d,%d %dx%d) outside image bounds %dx%d",
			ErrOutOfBounds, r.Left, r.Top, r.Width, r.Height, w, h)
	}
	return nil
}

func (r Rect) rectangle() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Left+r.Width, r.Top+r.Height)
}

// Crop extracts r from every frame of seq. The rectangle is validated against
// frame 0; each frame keeps its index and delay and gets a freshly allocated
// pixel buffer. seq is not modified, and no partial result is returned.
func Crop(seq *Sequence, r Rect) (*Sequence, error) {
	if err := r.Validate(seq.Width(), seq.Height()); err != nil {
		return nil, err
	}

	bounds := r.rectangle()
	frames := make([]Frame, len(seq.Frames))
	for i, fr := range seq.Frames {
		if fr.Image == nil || !bounds.In(fr.Image.Bounds()) {
			return nil, fmt.Errorf("%w: frame %d does not contain crop region", ErrOutOfBounds, i)
		}
		if fr.Image64 != nil {
			frames[i] = newDeepFrame(fr.Index, toNRGBA64(fr.Image64, bounds), fr.Delay)
			continue
		}
		frames[i] = newFrame(fr.Index, imaging.Crop(fr.Image, bounds), fr.Delay)
	}

	return &Sequence{Format: seq.Format, Frames: frames, LoopCount: seq.LoopCount}, nil
}

// Regions lists the names RegionRect accepts.
var Regions = []string{
	"top-left", "top-right", "bottom-left", "bottom-right",
	"top-half", "bottom-half", "left-half", "right-half", "center",
}

// RegionRect maps a named region of a w x h image to a Rect.
func RegionRect(w, h int, region string) (Rect, error) {
	midX := w / 2
	midY := h / 2

	var x1, y1, x2, y2 int
	switch region {
	case "top-left":
		x1, y1, x2, y2 = 0, 0, midX, midY
	case "top-right":
		x1, y1, x2, y2 = midX, 0, w, midY
	case "bottom-left":
		x1, y1, x2, y2 = 0, midY, midX, h
	case "bottom-right":
		x1, y1, x2, y2 = midX, midY, w, h
	case "top-half":
		x1, y1, x2, y2 = 0, 0, w, midY
	case "bottom-half":
		x1, y1, x2, y2 = 0, midY, w, h
	case "left-half":
		x1, y1, x2, y2 = 0, 0, midX, h
	case "right-half":
		x1, y1, x2, y2 = midX, 0, w, h
	case "center":
		// Center 50% of the image
		qW := w / 4
		qH := h / 4
		x1, y1, x2, y2 = qW, qH, w-qW, h-qH
	default:
		return Rect{}, fmt.Errorf("%w: unknown region %q", ErrOutOfBounds, region)
	}

	r := Rect{Left: x1, Top: y1, Width: x2 - x1, Height: y2 - y1}
	if err := r.Validate(w, h); err != nil {
		return Rect{}, fmt.Errorf("region %s of %dx%d image: %w", region, w, h, err)
	}
	return r, nil
}
