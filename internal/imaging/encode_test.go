package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
	"time"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func TestEncode_LosslessFullCrop(t *testing.T) {
	src := gradientImage(12, 10)
	encode := func(t *testing.T, f Format) []byte {
		t.Helper()
		var buf bytes.Buffer
		var err error
		switch f {
		case FormatPNG:
			return encodeTestPNG(t, src)
		case FormatBMP:
			err = bmp.Encode(&buf, src)
		case FormatTIFF:
			err = tiff.Encode(&buf, src, nil)
		case FormatWebP:
			var data []byte
			data, err = Encode(&Sequence{Format: f, Frames: []Frame{newFrame(0, src, 0)}}, f, EncodeOptions{})
			buf.Write(data)
		}
		if err != nil {
			t.Fatalf("failed to encode %s fixture: %v", f, err)
		}
		return buf.Bytes()
	}

	for _, f := range []Format{FormatPNG, FormatBMP, FormatTIFF, FormatWebP} {
		t.Run(f.String(), func(t *testing.T) {
			out, err := CropImage(encode(t, f), Rect{0, 0, 12, 10}, EncodeOptions{})
			if err != nil {
				t.Fatalf("CropImage failed: %v", err)
			}
			if out.Format != f {
				t.Errorf("format: got %s, want %s", out.Format, f)
			}
			seq := decodeTest(t, out.Data)
			if seq.Format != f {
				t.Errorf("re-decoded format: got %s, want %s", seq.Format, f)
			}
			assertSamePixels(t, seq.Frames[0].Image, src)
		})
	}

	deep := deepImage(5, 3)
	encode16 := map[Format]func(*bytes.Buffer) error{
		FormatPNG:  func(buf *bytes.Buffer) error { return png.Encode(buf, deep) },
		FormatTIFF: func(buf *bytes.Buffer) error { return tiff.Encode(buf, deep, nil) },
	}
	for f, enc := range encode16 {
		t.Run(f.String()+"16", func(t *testing.T) {
			var buf bytes.Buffer
			if err := enc(&buf); err != nil {
				t.Fatalf("failed to encode %s fixture: %v", f, err)
			}
			out, err := CropImage(buf.Bytes(), Rect{0, 0, 5, 3}, EncodeOptions{})
			if err != nil {
				t.Fatalf("CropImage failed: %v", err)
			}
			var got image.Image
			if f == FormatPNG {
				got, err = png.Decode(bytes.NewReader(out.Data))
			} else {
				got, err = tiff.Decode(bytes.NewReader(out.Data))
			}
			if err != nil {
				t.Fatalf("output does not decode: %v", err)
			}
			assertSamePixels64(t, got, deep)
		})
	}
}

func TestEncode_SixteenBitToEightBitTarget(t *testing.T) {
	src := deepImage(4, 4)
	src.SetNRGBA64(3, 3, color.NRGBA64{R: 0x8081, G: 0x0102, B: 0xfeff, A: 0xffff})
	seq := decodeTest(t, encodeTestPNG(t, src))
	if seq.Frames[0].Image64 == nil {
		t.Fatal("16-bit PNG decoded without its 16-bit pixels")
	}

	data, err := Encode(seq, FormatBMP, EncodeOptions{})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	got := decodeTest(t, data)
	assertSamePixels(t, got.Frames[0].Image, seq.Frames[0].Image)
}

func TestEncode_GIFFullCropIsIdentical(t *testing.T) {
	buf := createTestGIF(t, 9, 7, 10, 15, 20)
	orig := decodeTest(t, buf)

	out, err := CropImage(buf, Rect{0, 0, 9, 7}, EncodeOptions{})
	if err != nil {
		t.Fatalf("CropImage failed: %v", err)
	}
	got := decodeTest(t, out.Data)

	if len(got.Frames) != len(orig.Frames) {
		t.Fatalf("frames: got %d, want %d", len(got.Frames), len(orig.Frames))
	}
	for i := range orig.Frames {
		if got.Frames[i].Delay != orig.Frames[i].Delay {
			t.Errorf("frame %d: delay %v, want %v", i, got.Frames[i].Delay, orig.Frames[i].Delay)
		}
		assertSamePixels(t, got.Frames[i].Image, orig.Frames[i].Image)
	}
	if got.LoopCount != orig.LoopCount {
		t.Errorf("LoopCount: got %d, want %d", got.LoopCount, orig.LoopCount)
	}
}

func TestEncode_GIFTransparency(t *testing.T) {
	img := solidImage(4, 4, color.NRGBA{10, 20, 30, 255})
	img.SetNRGBA(1, 2, color.NRGBA{})
	seq := &Sequence{Format: FormatGIF, Frames: []Frame{
		newFrame(0, img, 50*time.Millisecond),
		newFrame(1, solidImage(4, 4, color.NRGBA{200, 0, 0, 255}), 50*time.Millisecond),
	}}

	data, err := Encode(seq, FormatGIF, EncodeOptions{})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	got := decodeTest(t, data)
	if px := got.Frames[0].Image.NRGBAAt(1, 2); px.A != 0 {
		t.Errorf("transparent pixel: got %v", px)
	}
	if px := got.Frames[0].Image.NRGBAAt(0, 0); px != (color.NRGBA{10, 20, 30, 255}) {
		t.Errorf("opaque pixel: got %v", px)
	}
	// Frame 1 must not show frame 0 through it.
	if px := got.Frames[1].Image.NRGBAAt(1, 2); px != (color.NRGBA{200, 0, 0, 255}) {
		t.Errorf("frame 1 pixel (1,2): got %v", px)
	}
}

func TestEncode_GIFManyColours(t *testing.T) {
	src := gradientImage(20, 20)
	if _, ok := exactPalette(src); ok {
		t.Fatal("fixture should need more than 256 colours")
	}

	data, err := Encode(&Sequence{Format: FormatGIF, Frames: []Frame{newFrame(0, src, 0)}}, FormatGIF, EncodeOptions{})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	seq := decodeTest(t, data)
	if seq.Width() != 20 || seq.Height() != 20 {
		t.Errorf("dimensions: got %dx%d, want 20x20", seq.Width(), seq.Height())
	}
}

func TestEncode_JPEG(t *testing.T) {
	seq := createTestSequence(FormatJPEG, 16, 8, 0)

	data, err := Encode(seq, FormatJPEG, EncodeOptions{JPEGQuality: 75})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a JPEG: %v", err)
	}
	if cfg.Width != 16 || cfg.Height != 8 {
		t.Errorf("dimensions: got %dx%d, want 16x8", cfg.Width, cfg.Height)
	}
}

func TestEncode_Errors(t *testing.T) {
	two := createTestSequence(FormatGIF, 4, 4, 10*time.Millisecond, 10*time.Millisecond)

	mismatched := createTestSequence(FormatGIF, 4, 4, 10*time.Millisecond, 10*time.Millisecond)
	mismatched.Frames[1] = newFrame(1, gradientImage(3, 4), 10*time.Millisecond)

	empty := &Sequence{Format: FormatPNG, Frames: []Frame{{Image: &image.NRGBA{}}}}

	tests := []struct {
		name string
		seq  *Sequence
		f    Format
	}{
		{"nil sequence", nil, FormatPNG},
		{"no frames", &Sequence{Format: FormatPNG}, FormatPNG},
		{"animation into png", two, FormatPNG},
		{"animation into jpeg", two, FormatJPEG},
		{"mismatched frames", mismatched, FormatGIF},
		{"zero sized frame", empty, FormatPNG},
		{"missing pixels", &Sequence{Frames: []Frame{{Width: 2, Height: 2}}}, FormatPNG},
		{"unknown target", createTestSequence(FormatPNG, 2, 2, 0), FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.seq, tt.f, EncodeOptions{})
			if !errors.Is(err, ErrEncode) {
				t.Errorf("Encode: got %v, want ErrEncode", err)
			}
		})
	}
}

func TestCentiseconds(t *testing.T) {
	tests := []struct {
		d        time.Duration
		animated bool
		want     int
	}{
		{100 * time.Millisecond, true, 10},
		{154 * time.Millisecond, true, 15},
		{155 * time.Millisecond, true, 16},
		{0, true, 1},
		{0, false, 0},
		{time.Hour, true, 0xFFFF},
	}
	for _, tt := range tests {
		if got := centiseconds(tt.d, tt.animated); got != tt.want {
			t.Errorf("centiseconds(%v, %v): got %d, want %d", tt.d, tt.animated, got, tt.want)
		}
	}
}
