package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"testing"
	"time"
)

// testPalette is the four-colour palette used by the GIF fixtures.
var testPalette = color.Palette{
	color.RGBA{255, 0, 0, 255},
	color.RGBA{0, 255, 0, 255},
	color.RGBA{0, 0, 255, 255},
	color.RGBA{255, 255, 255, 255},
}

// gradientImage creates an opaque image in which every pixel has a distinct colour.
func gradientImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x * 16), uint8(y * 16), uint8(x ^ y), 255})
		}
	}
	return img
}

// deepImage creates a 16-bit image whose samples do not survive a trip
// through 8 bits, including one translucent pixel.
func deepImage(width, height int) *image.NRGBA64 {
	img := image.NewNRGBA64(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA64(x, y, color.NRGBA64{
				R: uint16(0x1234 + 0x0101*x),
				G: uint16(0x5678 + 0x0033*y),
				B: uint16(0x9abc ^ (x * y)),
				A: 0xffff,
			})
		}
	}
	img.SetNRGBA64(width-1, height-1, color.NRGBA64{R: 0x1299, G: 0x0001, B: 0xfffe, A: 0x8001})
	return img
}

// solidImage creates an image filled with a single colour.
func solidImage(width, height int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// encodeTestPNG encodes img as PNG.
func encodeTestPNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode PNG: %v", err)
	}
	return buf.Bytes()
}

// stripeFrame returns a paletted frame whose pixel (x,y) is testPalette[(x+y+shift)%4].
func stripeFrame(width, height, shift int) *image.Paletted {
	p := image.NewPaletted(image.Rect(0, 0, width, height), testPalette)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p.SetColorIndex(x, y, uint8((x+y+shift)%len(testPalette)))
		}
	}
	return p
}

// stripeColor is the colour stripeFrame puts at (x,y).
func stripeColor(x, y, shift int) color.NRGBA {
	c := testPalette[(x+y+shift)%len(testPalette)].(color.RGBA)
	return color.NRGBA{c.R, c.G, c.B, c.A}
}

// createTestGIF builds an animated GIF with one stripe frame per delay,
// delays given in centiseconds.
func createTestGIF(t *testing.T, width, height int, delaysCS ...int) []byte {
	t.Helper()
	g := &gif.GIF{}
	for i, d := range delaysCS {
		g.Image = append(g.Image, stripeFrame(width, height, i))
		g.Delay = append(g.Delay, d)
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		t.Fatalf("failed to encode GIF: %v", err)
	}
	return buf.Bytes()
}

// createTestSequence builds an in-memory sequence of gradient frames.
func createTestSequence(f Format, width, height int, delays ...time.Duration) *Sequence {
	seq := &Sequence{Format: f}
	for i, d := range delays {
		img := gradientImage(width, height)
		// Make frames distinguishable.
		img.Pix[0] = uint8(i)
		seq.Frames = append(seq.Frames, newFrame(i, img, d))
	}
	return seq
}

// assertSamePixels fails unless a and b have identical bounds and pixels.
func assertSamePixels(t *testing.T, got, want *image.NRGBA) {
	t.Helper()
	if got.Rect.Dx() != want.Rect.Dx() || got.Rect.Dy() != want.Rect.Dy() {
		t.Fatalf("size: got %dx%d, want %dx%d", got.Rect.Dx(), got.Rect.Dy(), want.Rect.Dx(), want.Rect.Dy())
	}
	for y := 0; y < want.Rect.Dy(); y++ {
		for x := 0; x < want.Rect.Dx(); x++ {
			g := got.NRGBAAt(got.Rect.Min.X+x, got.Rect.Min.Y+y)
			w := want.NRGBAAt(want.Rect.Min.X+x, want.Rect.Min.Y+y)
			if g != w {
				t.Fatalf("pixel (%d,%d): got %v, want %v", x, y, g, w)
			}
		}
	}
}

// assertSamePixels64 fails unless got and want hold the same 16-bit
// non-premultiplied samples.
func assertSamePixels64(t *testing.T, got, want image.Image) {
	t.Helper()
	gb, wb := got.Bounds(), want.Bounds()
	if gb.Dx() != wb.Dx() || gb.Dy() != wb.Dy() {
		t.Fatalf("size: got %dx%d, want %dx%d", gb.Dx(), gb.Dy(), wb.Dx(), wb.Dy())
	}
	for y := 0; y < wb.Dy(); y++ {
		for x := 0; x < wb.Dx(); x++ {
			g := color.NRGBA64Model.Convert(got.At(gb.Min.X+x, gb.Min.Y+y))
			w := color.NRGBA64Model.Convert(want.At(wb.Min.X+x, wb.Min.Y+y))
			if g != w {
				t.Fatalf("pixel (%d,%d): got %v, want %v", x, y, g, w)
			}
		}
	}
}

// decodeTest decodes buf and fails the test on error.
func decodeTest(t *testing.T, buf []byte) *Sequence {
	t.Helper()
	seq, err := DecodeBuffer(buf)
	if err != nil {
		t.Fatalf("DecodeBuffer failed: %v", err)
	}
	return seq
}
