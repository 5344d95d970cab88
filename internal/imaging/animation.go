package imaging

import (
	"fmt"
	"time"
)

// SplitFrames returns every frame of an animated sequence as its own
// single-frame sequence. The frames share no pixel memory with seq.
func SplitFrames(seq *Sequence) ([]*Sequence, error) {
	if !seq.Animated() {
		return nil, fmt.Errorf("%w: %s has a single frame", ErrNotAnimated, seq.Format)
	}
	out := make([]*Sequence, len(seq.Frames))
	for i, fr := range seq.Frames {
		out[i] = &Sequence{
			Format: seq.Format,
			Frames: []Frame{newFrame(0, toNRGBA(fr.Image), fr.Delay)},
		}
	}
	return out, nil
}

// Reverse returns the frames of seq in reverse display order. Each frame
// keeps its own delay; indices are renumbered from zero.
func Reverse(seq *Sequence) (*Sequence, error) {
	if !seq.Animated() {
		return nil, fmt.Errorf("%w: nothing to reverse in a single %s frame", ErrNotAnimated, seq.Format)
	}
	n := len(seq.Frames)
	frames := make([]Frame, n)
	for i, fr := range seq.Frames {
		frames[n-1-i] = newFrame(n-1-i, toNRGBA(fr.Image), fr.Delay)
	}
	return &Sequence{Format: seq.Format, Frames: frames, LoopCount: seq.LoopCount}, nil
}

// Retime returns a copy of seq in which every frame is shown for delay.
func Retime(seq *Sequence, delay time.Duration) (*Sequence, error) {
	if delay <= 0 {
		return nil, fmt.Errorf("%w: frame delay %v must be positive", ErrOutOfBounds, delay)
	}
	if !seq.Animated() {
		return nil, fmt.Errorf("%w: cannot retime a single %s frame", ErrNotAnimated, seq.Format)
	}
	frames := make([]Frame, len(seq.Frames))
	for i, fr := range seq.Frames {
		frames[i] = newFrame(i, toNRGBA(fr.Image), delay)
	}
	return &Sequence{Format: seq.Format, Frames: frames, LoopCount: seq.LoopCount}, nil
}
