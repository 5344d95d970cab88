package imaging

// Metadata summarizes a decoded image.
type Metadata struct {
	// Width and Height are the dimensions of frame 0, shared by every frame.
	Width  int `json:"width"`
	Height int `json:"height"`

	// IsMultiFrame is true when the image holds more than one frame.
	IsMultiFrame bool `json:"is_multi_frame"`

	// FrameCount is nil for single-frame images.
	FrameCount *int `json:"frame_count"`

	// AverageDuration is the mean frame delay in whole milliseconds,
	// truncated toward zero. Nil for single-frame images.
	AverageDuration *int64 `json:"average_duration"`

	// Format is the short name of the source container.
	Format string `json:"format"`
}

// Summarize derives Metadata from a decoded sequence. The sequence must come
// from Decode or another engine operation, so it holds at least one frame.
func Summarize(seq *Sequence) Metadata {
	md := Metadata{
		Width:  seq.Width(),
		Height: seq.Height(),
		Format: seq.Format.String(),
	}
	n := len(seq.Frames)
	if n <= 1 {
		return md
	}

	var totalMS int64
	for _, fr := range seq.Frames {
		totalMS += fr.Delay.Milliseconds()
	}
	avg := totalMS / int64(n)
	md.IsMultiFrame = true
	md.FrameCount = &n
	md.AverageDuration = &avg
	return md
}
