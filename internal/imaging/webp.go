package imaging

import (
	"bytes"
	"fmt"
	"time"

	"github.com/deepteams/webp"
	"github.com/deepteams/webp/animation"
)

// decodeWebP decodes a still or animated WebP. Animated files are composited
// frame by frame onto the canvas declared in the VP8X header.
func decodeWebP(buf []byte) (*Sequence, error) {
	layout, err := scanWebP(buf)
	if err != nil {
		return nil, err
	}
	if !layout.animated {
		img, err := webp.Decode(bytes.NewReader(buf))
		if err != nil {
			return nil, fmt.Errorf("%w: webp: %v", ErrCorruptImage, err)
		}
		return &Sequence{
			Format: FormatWebP,
			Frames: []Frame{newFrame(0, toNRGBA(img), 0)},
		}, nil
	}

	anim, err := animation.DecodeBytes(buf)
	if err != nil {
		return nil, fmt.Errorf("%w: webp animation: %v", ErrCorruptImage, err)
	}
	if len(anim.Frames) != len(layout.durations) {
		return nil, fmt.Errorf("%w: webp animation has %d frames, container declares %d",
			ErrCorruptImage, len(anim.Frames), len(layout.durations))
	}
	if err := anim.DecodeFrames(); err != nil {
		return nil, fmt.Errorf("%w: webp frame: %v", ErrCorruptImage, err)
	}

	dec := animation.NewAnimDecoder(anim)
	frames := make([]Frame, 0, len(anim.Frames))
	for dec.HasNext() {
		canvas, d, err := dec.NextFrame()
		if err != nil {
			return nil, fmt.Errorf("%w: webp frame %d: %v", ErrCorruptImage, len(frames), err)
		}
		if len(anim.Frames) > 1 {
			d = normalizeDelay(d)
		}
		frames = append(frames, newFrame(len(frames), canvas, d))
	}
	return &Sequence{Format: FormatWebP, Frames: frames, LoopCount: anim.LoopCount}, nil
}

// encodeWebP writes a lossless WebP. A single frame becomes a still image;
// several frames become an animation in which every frame covers the whole
// canvas and replaces it, so frame count and durations survive unchanged.
func encodeWebP(seq *Sequence) ([]byte, error) {
	var buf bytes.Buffer
	if !seq.Animated() {
		if err := webp.Encode(&buf, seq.Frames[0].Image, &webp.EncoderOptions{Lossless: true, Quality: 100, Exact: true}); err != nil {
			return nil, fmt.Errorf("%w: webp: %v", ErrEncode, err)
		}
		return buf.Bytes(), nil
	}

	if animation.FrameEncoderFunc == nil {
		return nil, fmt.Errorf("%w: webp: no frame encoder registered", ErrEncode)
	}
	enc := animation.NewEncoder(&buf, seq.Width(), seq.Height(), &animation.EncodeOptions{
		LoopCount: max(seq.LoopCount, 0),
		Lossless:  true,
		Quality:   100,
	})
	for _, fr := range seq.Frames {
		bitstream, err := animation.FrameEncoderFunc(fr.Image, true, 100)
		if err != nil {
			return nil, fmt.Errorf("%w: webp frame %d: %v", ErrEncode, fr.Index, err)
		}
		if err := enc.AddRawFrame(bitstream, webpDuration(fr), 0, 0, animation.BlendNone, animation.DisposeNone); err != nil {
			return nil, fmt.Errorf("%w: webp frame %d: %v", ErrEncode, fr.Index, err)
		}
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("%w: webp: %v", ErrEncode, err)
	}
	return buf.Bytes(), nil
}

// webpDuration clamps a frame delay into the 24-bit millisecond ANMF field.
func webpDuration(fr Frame) time.Duration {
	ms := min(max(fr.Delay.Milliseconds(), 1), 0xFFFFFF)
	return time.Duration(ms) * time.Millisecond
}
