package imaging

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"testing"
	"time"
)

func TestDecode_PNG(t *testing.T) {
	src := gradientImage(10, 10)
	seq := decodeTest(t, encodeTestPNG(t, src))

	if seq.Format != FormatPNG {
		t.Errorf("Format: got %s, want png", seq.Format)
	}
	if len(seq.Frames) != 1 {
		t.Fatalf("frames: got %d, want 1", len(seq.Frames))
	}
	fr := seq.Frames[0]
	if fr.Delay != 0 {
		t.Errorf("single frame delay: got %v, want 0", fr.Delay)
	}
	assertSamePixels(t, fr.Image, src)
}

func TestDecode_GIFDelays(t *testing.T) {
	seq := decodeTest(t, createTestGIF(t, 8, 6, 10, 15, 20))

	want := []time.Duration{100 * time.Millisecond, 150 * time.Millisecond, 200 * time.Millisecond}
	if len(seq.Frames) != len(want) {
		t.Fatalf("frames: got %d, want %d", len(seq.Frames), len(want))
	}
	for i, fr := range seq.Frames {
		if fr.Index != i {
			t.Errorf("frame %d: Index %d", i, fr.Index)
		}
		if fr.Delay != want[i] {
			t.Errorf("frame %d: delay %v, want %v", i, fr.Delay, want[i])
		}
		if fr.Width != 8 || fr.Height != 6 {
			t.Errorf("frame %d: size %dx%d, want 8x6", i, fr.Width, fr.Height)
		}
		if got := fr.Image.NRGBAAt(3, 2); got != stripeColor(3, 2, i) {
			t.Errorf("frame %d pixel (3,2): got %v, want %v", i, got, stripeColor(3, 2, i))
		}
	}
	if seq.LoopCount != LoopInfinite {
		t.Errorf("LoopCount: got %d, want %d", seq.LoopCount, LoopInfinite)
	}
}

func TestDecode_GIFZeroDelayDefaults(t *testing.T) {
	seq := decodeTest(t, createTestGIF(t, 4, 4, 0, 0, 5))

	want := []time.Duration{DefaultFrameDelay, DefaultFrameDelay, 50 * time.Millisecond}
	for i, fr := range seq.Frames {
		if fr.Delay != want[i] {
			t.Errorf("frame %d: delay %v, want %v", i, fr.Delay, want[i])
		}
	}
}

func TestDecode_GIFSingleFrameKeepsZeroDelay(t *testing.T) {
	seq := decodeTest(t, createTestGIF(t, 4, 4, 0))
	if len(seq.Frames) != 1 || seq.Frames[0].Delay != 0 {
		t.Errorf("single gif frame: got %d frames, delay %v", len(seq.Frames), seq.Frames[0].Delay)
	}
}

func TestDecode_GIFDisposal(t *testing.T) {
	red := color.RGBA{255, 0, 0, 255}
	blue := color.RGBA{0, 0, 255, 255}
	green := color.RGBA{0, 255, 0, 255}
	pal := color.Palette{red, green, blue}

	full := image.NewPaletted(image.Rect(0, 0, 2, 2), pal) // all red
	dot := func(x, y int, idx uint8) *image.Paletted {
		p := image.NewPaletted(image.Rect(x, y, x+1, y+1), pal)
		p.SetColorIndex(x, y, idx)
		return p
	}

	tests := []struct {
		name     string
		images   []*image.Paletted
		disposal []byte
		check    map[image.Point]color.NRGBA // pixels of the last frame
	}{
		{
			name:     "none keeps canvas",
			images:   []*image.Paletted{full, dot(1, 1, 2)},
			disposal: []byte{gif.DisposalNone, gif.DisposalNone},
			check: map[image.Point]color.NRGBA{
				{0, 0}: {255, 0, 0, 255},
				{1, 1}: {0, 0, 255, 255},
			},
		},
		{
			name:     "background clears previous rect",
			images:   []*image.Paletted{full, dot(0, 0, 2)},
			disposal: []byte{gif.DisposalBackground, gif.DisposalNone},
			check: map[image.Point]color.NRGBA{
				{0, 0}: {0, 0, 255, 255},
				{1, 1}: {},
			},
		},
		{
			name:     "previous restores canvas",
			images:   []*image.Paletted{full, dot(0, 0, 1), dot(1, 1, 2)},
			disposal: []byte{gif.DisposalNone, gif.DisposalPrevious, gif.DisposalNone},
			check: map[image.Point]color.NRGBA{
				{0, 0}: {255, 0, 0, 255},
				{1, 1}: {0, 0, 255, 255},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &gif.GIF{
				Image:    tt.images,
				Delay:    make([]int, len(tt.images)),
				Disposal: tt.disposal,
			}
			var buf bytes.Buffer
			if err := gif.EncodeAll(&buf, g); err != nil {
				t.Fatalf("failed to encode GIF: %v", err)
			}

			seq := decodeTest(t, buf.Bytes())
			last := seq.Frames[len(seq.Frames)-1]
			if last.Width != 2 || last.Height != 2 {
				t.Fatalf("frame size: got %dx%d, want 2x2", last.Width, last.Height)
			}
			for p, want := range tt.check {
				if got := last.Image.NRGBAAt(p.X, p.Y); got != want {
					t.Errorf("pixel %v: got %v, want %v", p, got, want)
				}
			}
		})
	}
}

// gifBytes assembles a GIF89a stream with a two-entry global colour table.
func gifBytes(width, height uint16, blocks ...[]byte) []byte {
	var b bytes.Buffer
	b.WriteString("GIF89a")
	binary.Write(&b, binary.LittleEndian, width)
	binary.Write(&b, binary.LittleEndian, height)
	b.Write([]byte{0x80, 0, 0})
	b.Write([]byte{0, 0, 0, 255, 255, 255})
	for _, blk := range blocks {
		b.Write(blk)
	}
	return b.Bytes()
}

// gifImage is an image descriptor plus a tiny LZW payload.
func gifImage(left, top, width, height uint16) []byte {
	var b bytes.Buffer
	b.WriteByte(0x2C)
	for _, v := range []uint16{left, top, width, height} {
		binary.Write(&b, binary.LittleEndian, v)
	}
	b.Write([]byte{0x00, 0x02, 0x02, 0x44, 0x01, 0x00})
	return b.Bytes()
}

// riffChunk encodes a RIFF chunk with its pad byte.
func riffChunk(id string, payload []byte) []byte {
	var b bytes.Buffer
	b.WriteString(id)
	binary.Write(&b, binary.LittleEndian, uint32(len(payload)))
	b.Write(payload)
	if len(payload)%2 == 1 {
		b.WriteByte(0)
	}
	return b.Bytes()
}

func webpBytes(chunks ...[]byte) []byte {
	body := []byte("WEBP")
	for _, c := range chunks {
		body = append(body, c...)
	}
	var b bytes.Buffer
	b.WriteString("RIFF")
	binary.Write(&b, binary.LittleEndian, uint32(len(body)))
	b.Write(body)
	return b.Bytes()
}

func u24(v int) []byte { return []byte{byte(v), byte(v >> 8), byte(v >> 16)} }

func vp8x(flags byte, width, height int) []byte {
	p := []byte{flags, 0, 0, 0}
	p = append(p, u24(width-1)...)
	return riffChunk("VP8X", append(p, u24(height-1)...))
}

func anmf(x, y, width, height, ms int) []byte {
	var p []byte
	for _, v := range []int{x / 2, y / 2, width - 1, height - 1, ms} {
		p = append(p, u24(v)...)
	}
	return riffChunk("ANMF", append(p, 0))
}

func TestDecode_Corrupt(t *testing.T) {
	valid := createTestGIF(t, 8, 8, 10, 10)
	png := encodeTestPNG(t, gradientImage(8, 8))

	oversizedRIFF := webpBytes(riffChunk("VP8L", []byte{0x2F, 0, 0, 0, 0}))
	binary.LittleEndian.PutUint32(oversizedRIFF[4:], 1<<20)

	hugeChunk := webpBytes(riffChunk("VP8L", []byte{0x2F, 0, 0, 0}))
	binary.LittleEndian.PutUint32(hugeChunk[16:], 0xFFFFFF00)

	tests := []struct {
		name string
		buf  []byte
	}{
		{"gif truncated", valid[:len(valid)/2]},
		{"gif header only", valid[:13]},
		{"gif without frames", gifBytes(2, 2, []byte{0x3B})},
		{"gif zero screen", gifBytes(0, 2, gifImage(0, 0, 1, 1), []byte{0x3B})},
		{"gif frame outside screen", gifBytes(2, 2, gifImage(1, 0, 2, 2), []byte{0x3B})},
		{"gif zero sized frame", gifBytes(2, 2, gifImage(0, 0, 0, 2), []byte{0x3B})},
		{"gif unknown block", gifBytes(2, 2, []byte{0x99})},
		{"gif bad graphic control", gifBytes(2, 2, []byte{0x21, 0xF9, 0x09, 0, 0, 0, 0, 0}, []byte{0x3B})},
		{"png garbage body", append(append([]byte{}, png[:8]...), bytes.Repeat([]byte{0xAB}, 64)...)},
		{"png truncated", png[:len(png)/2]},
		{"jpeg header only", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00}},
		{"webp riff size past end", oversizedRIFF},
		{"webp chunk size past end", hugeChunk},
		{"webp no bitstream", webpBytes(riffChunk("EXIF", []byte{1, 2}))},
		{"webp animation without frames", webpBytes(vp8x(0x02, 2, 2), riffChunk("ANIM", make([]byte, 6)))},
		{"webp frame outside canvas", webpBytes(vp8x(0x02, 2, 2), riffChunk("ANIM", make([]byte, 6)), anmf(0, 0, 4, 4, 100))},
		{"webp vp8x not first", webpBytes(riffChunk("ICCP", []byte{0}), vp8x(0x02, 2, 2))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeBuffer(tt.buf)
			if !errors.Is(err, ErrCorruptImage) {
				t.Errorf("DecodeBuffer: got err %v, want ErrCorruptImage", err)
			}
		})
	}
}

func TestDecode_EmptyBuffer(t *testing.T) {
	_, err := DecodeBuffer(nil)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("DecodeBuffer(nil): got %v, want ErrUnsupportedFormat", err)
	}
}

func TestDecode_UnknownFormat(t *testing.T) {
	_, err := Decode([]byte("whatever"), FormatUnknown)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Decode: got %v, want ErrUnsupportedFormat", err)
	}
}

func TestDecode_WebPRoundTrip(t *testing.T) {
	still := createTestSequence(FormatWebP, 12, 9, 0)
	data, err := Encode(still, FormatWebP, EncodeOptions{})
	if err != nil {
		t.Fatalf("Encode still webp failed: %v", err)
	}
	seq := decodeTest(t, data)
	if seq.Format != FormatWebP || len(seq.Frames) != 1 {
		t.Fatalf("still webp: got %s with %d frames", seq.Format, len(seq.Frames))
	}
	assertSamePixels(t, seq.Frames[0].Image, still.Frames[0].Image)

	anim := createTestSequence(FormatWebP, 12, 9, 100*time.Millisecond, 150*time.Millisecond, 200*time.Millisecond)
	anim.Frames[2].Image = anim.Frames[1].Image // identical frames must stay separate
	data, err = Encode(anim, FormatWebP, EncodeOptions{})
	if err != nil {
		t.Fatalf("Encode animated webp failed: %v", err)
	}
	seq = decodeTest(t, data)
	if len(seq.Frames) != 3 {
		t.Fatalf("animated webp: got %d frames, want 3", len(seq.Frames))
	}
	for i, fr := range seq.Frames {
		if fr.Delay != anim.Frames[i].Delay {
			t.Errorf("frame %d: delay %v, want %v", i, fr.Delay, anim.Frames[i].Delay)
		}
		assertSamePixels(t, fr.Image, anim.Frames[i].Image)
	}
}

func TestProbe(t *testing.T) {
	tests := []struct {
		name          string
		buf           []byte
		format        Format
		width, height int
		frames        int
	}{
		{"png", encodeTestPNG(t, gradientImage(10, 7)), FormatPNG, 10, 7, 1},
		{"gif", createTestGIF(t, 5, 4, 10, 10, 10), FormatGIF, 5, 4, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hdr, err := Probe(tt.buf)
			if err != nil {
				t.Fatalf("Probe failed: %v", err)
			}
			if hdr.Format != tt.format || hdr.Width != tt.width || hdr.Height != tt.height || hdr.Frames != tt.frames {
				t.Errorf("Probe: got %+v, want %s %dx%d with %d frames", hdr, tt.format, tt.width, tt.height, tt.frames)
			}
		})
	}
}

func TestProbe_Pixels(t *testing.T) {
	hdr := Header{Width: 1 << 16, Height: 1 << 16, Frames: 4}
	if got := hdr.Pixels(); got != 1<<34 {
		t.Errorf("Pixels: got %d, want %d", got, int64(1)<<34)
	}
}
