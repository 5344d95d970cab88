package imaging

import "time"

// Output is an encoded image produced by one of the pipeline operations.
type Output struct {
	Format Format
	Width  int
	Height int
	Frames int
	Data   []byte

	// Delay is set on frames returned by ExtractFrames.
	Delay time.Duration
}

func encodeOutput(seq *Sequence, f Format, opts EncodeOptions) (*Output, error) {
	data, err := Encode(seq, f, opts)
	if err != nil {
		return nil, err
	}
	return &Output{
		Format: f,
		Width:  seq.Width(),
		Height: seq.Height(),
		Frames: len(seq.Frames),
		Data:   data,
	}, nil
}

// Inspect identifies, decodes and summarizes buf.
func Inspect(buf []byte) (*Metadata, error) {
	seq, err := DecodeBuffer(buf)
	if err != nil {
		return nil, err
	}
	md := Summarize(seq)
	return &md, nil
}

// CropImage crops every frame of buf to r and re-encodes the result in the
// source container format.
func CropImage(buf []byte, r Rect, opts EncodeOptions) (*Output, error) {
	seq, err := DecodeBuffer(buf)
	if err != nil {
		return nil, err
	}
	cropped, err := Crop(seq, r)
	if err != nil {
		return nil, err
	}
	return encodeOutput(cropped, seq.Format, opts)
}

// CropRegion crops buf to a named region (see Regions).
func CropRegion(buf []byte, region string, opts EncodeOptions) (*Output, error) {
	seq, err := DecodeBuffer(buf)
	if err != nil {
		return nil, err
	}
	r, err := RegionRect(seq.Width(), seq.Height(), region)
	if err != nil {
		return nil, err
	}
	cropped, err := Crop(seq, r)
	if err != nil {
		return nil, err
	}
	return encodeOutput(cropped, seq.Format, opts)
}

// ExtractFrames decodes an animated buf and encodes each frame as a PNG.
func ExtractFrames(buf []byte) ([]*Output, error) {
	seq, err := DecodeBuffer(buf)
	if err != nil {
		return nil, err
	}
	parts, err := SplitFrames(seq)
	if err != nil {
		return nil, err
	}
	out := make([]*Output, len(parts))
	for i, part := range parts {
		if out[i], err = encodeOutput(part, FormatPNG, EncodeOptions{}); err != nil {
			return nil, err
		}
		out[i].Delay = part.Frames[0].Delay
	}
	return out, nil
}

// ReverseImage reverses the frame order of an animated buf.
func ReverseImage(buf []byte, opts EncodeOptions) (*Output, error) {
	seq, err := DecodeBuffer(buf)
	if err != nil {
		return nil, err
	}
	rev, err := Reverse(seq)
	if err != nil {
		return nil, err
	}
	return encodeOutput(rev, seq.Format, opts)
}

// RetimeImage gives every frame of an animated buf the same delay.
func RetimeImage(buf []byte, delay time.Duration, opts EncodeOptions) (*Output, error) {
	seq, err := DecodeBuffer(buf)
	if err != nil {
		return nil, err
	}
	retimed, err := Retime(seq, delay)
	if err != nil {
		return nil, err
	}
	return encodeOutput(retimed, seq.Format, opts)
}

// Convert re-encodes buf as format f. Single-frame targets receive only the
// first frame of an animation; loop semantics are translated between GIF and
// WebP conventions.
func Convert(buf []byte, f Format, opts EncodeOptions) (*Output, error) {
	seq, err := DecodeBuffer(buf)
	if err != nil {
		return nil, err
	}
	out := &Sequence{
		Format:    f,
		Frames:    seq.Frames,
		LoopCount: convertLoopCount(seq.LoopCount, seq.Format, f),
	}
	if !f.MultiFrame() && seq.Animated() {
		first := seq.Frames[0]
		first.Delay = 0
		out.Frames = []Frame{first}
	}
	return encodeOutput(out, f, opts)
}

// convertLoopCount maps a loop count between containers. GIF counts extra
// repetitions (-1 plays once); WebP counts total plays. Both use 0 for
// endless looping.
func convertLoopCount(n int, from, to Format) int {
	switch {
	case n == LoopInfinite || from == to:
		return n
	case from == FormatGIF && to == FormatWebP:
		if n < 0 {
			return 1
		}
		return n + 1
	case from == FormatWebP && to == FormatGIF:
		if n == 1 {
			return -1
		}
		return n - 1
	}
	return n
}
