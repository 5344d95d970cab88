package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"time"
)

// decodeGIF decodes every image in a GIF stream and composites each onto the
// logical screen, honouring the disposal method of the previous image.
func decodeGIF(buf []byte) (*Sequence, error) {
	layout, err := scanGIF(buf)
	if err != nil {
		return nil, err
	}
	g, err := gif.DecodeAll(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("%w: gif: %v", ErrCorruptImage, err)
	}
	if len(g.Image) != len(layout.delays) || len(g.Image) == 0 {
		return nil, fmt.Errorf("%w: gif: decoded %d images, stream declares %d",
			ErrCorruptImage, len(g.Image), len(layout.delays))
	}

	screen := image.Rect(0, 0, layout.width, layout.height)
	canvas := image.NewNRGBA(screen)
	frames := make([]Frame, 0, len(g.Image))
	for i, p := range g.Image {
		if !p.Rect.In(screen) {
			return nil, fmt.Errorf("%w: gif frame %d outside logical screen", ErrCorruptImage, i)
		}
		var disposal byte
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		var saved *image.NRGBA
		if disposal == gif.DisposalPrevious {
			saved = cloneRect(canvas, p.Rect)
		}

		drawPaletted(canvas, p)
		delay := gifDelay(g, i)
		if len(g.Image) > 1 {
			delay = normalizeDelay(delay)
		}
		frames = append(frames, newFrame(i, cloneRect(canvas, screen), delay))

		switch disposal {
		case gif.DisposalBackground:
			clearRect(canvas, p.Rect)
		case gif.DisposalPrevious:
			draw.Draw(canvas, p.Rect, saved, p.Rect.Min, draw.Src)
		}
	}

	return &Sequence{Format: FormatGIF, Frames: frames, LoopCount: g.LoopCount}, nil
}

func gifDelay(g *gif.GIF, i int) time.Duration {
	if i >= len(g.Delay) {
		return 0
	}
	return time.Duration(g.Delay[i]) * 10 * time.Millisecond
}

// drawPaletted paints the opaque pixels of p onto canvas. Transparent and
// out-of-palette indices leave the canvas untouched.
func drawPaletted(canvas *image.NRGBA, p *image.Paletted) {
	lut := make([]color.NRGBA, len(p.Palette))
	opaque := make([]bool, len(p.Palette))
	for i, c := range p.Palette {
		n := color.NRGBAModel.Convert(c).(color.NRGBA)
		lut[i] = n
		opaque[i] = n.A != 0
	}
	b := p.Rect
	for y := b.Min.Y; y < b.Max.Y; y++ {
		src := p.Pix[p.PixOffset(b.Min.X, y):]
		dst := canvas.Pix[canvas.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			idx := int(src[x])
			if idx >= len(lut) || !opaque[idx] {
				continue
			}
			c := lut[idx]
			d := dst[x*4 : x*4+4 : x*4+4]
			d[0], d[1], d[2], d[3] = c.R, c.G, c.B, c.A
		}
	}
}

// cloneRect copies r of src into a new NRGBA whose bounds are r.
func cloneRect(src *image.NRGBA, r image.Rectangle) *image.NRGBA {
	dst := image.NewNRGBA(r)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		copy(dst.Pix[dst.PixOffset(r.Min.X, y):dst.PixOffset(r.Max.X, y)],
			src.Pix[src.PixOffset(r.Min.X, y):src.PixOffset(r.Max.X, y)])
	}
	return dst
}

func clearRect(img *image.NRGBA, r image.Rectangle) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := img.Pix[img.PixOffset(r.Min.X, y):img.PixOffset(r.Max.X, y)]
		for i := range row {
			row[i] = 0
		}
	}
}

// alphaThreshold splits 8-bit alpha into GIF's transparent/opaque.
const alphaThreshold = 0x80

// encodeGIF writes every frame as a full-canvas image disposed to background,
// so each displayed frame is exactly the frame's pixels.
func encodeGIF(seq *Sequence) ([]byte, error) {
	g := &gif.GIF{
		Image:     make([]*image.Paletted, len(seq.Frames)),
		Delay:     make([]int, len(seq.Frames)),
		Disposal:  make([]byte, len(seq.Frames)),
		LoopCount: seq.LoopCount,
	}
	animated := seq.Animated()
	for i, fr := range seq.Frames {
		g.Image[i] = toPaletted(fr.Image)
		g.Delay[i] = centiseconds(fr.Delay, animated)
		g.Disposal[i] = gif.DisposalBackground
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		return nil, fmt.Errorf("%w: gif: %v", ErrEncode, err)
	}
	return buf.Bytes(), nil
}

// centiseconds converts a delay to GIF units, rounding to the nearest unit.
// Animation frames never get 0, which viewers would replace with their own default.
func centiseconds(d time.Duration, animated bool) int {
	cs := int((d + 5*time.Millisecond) / (10 * time.Millisecond))
	if animated && cs < 1 {
		cs = 1
	}
	if cs > 0xFFFF {
		cs = 0xFFFF
	}
	return cs
}

// toPaletted converts img to a paletted image. When the image has at most 256
// distinct colours (transparency counted as one) the palette is exact;
// otherwise the image is dithered onto the Plan 9 palette.
func toPaletted(img *image.NRGBA) *image.Paletted {
	b := img.Bounds()
	if pal, ok := exactPalette(img); ok {
		index := make(map[color.NRGBA]uint8, len(pal))
		for i, c := range pal {
			index[c.(color.NRGBA)] = uint8(i)
		}
		dst := image.NewPaletted(b, pal)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			src := img.Pix[img.PixOffset(b.Min.X, y):]
			row := dst.Pix[dst.PixOffset(b.Min.X, y):]
			for x := 0; x < b.Dx(); x++ {
				row[x] = index[gifColor(src[x*4:x*4+4])]
			}
		}
		return dst
	}

	pal := color.Palette(palette.Plan9)
	if hasTransparency(img) {
		pal = append(append(color.Palette{}, palette.Plan9[:255]...), color.NRGBA{})
	}
	dst := image.NewPaletted(b, pal)
	draw.FloydSteinberg.Draw(dst, b, img, b.Min)
	return dst
}

// gifColor maps an RGBA pixel to the colour GIF can store for it.
func gifColor(px []byte) color.NRGBA {
	if px[3] < alphaThreshold {
		return color.NRGBA{}
	}
	return color.NRGBA{R: px[0], G: px[1], B: px[2], A: 0xFF}
}

// exactPalette collects the distinct GIF colours of img, giving up past 256.
func exactPalette(img *image.NRGBA) (color.Palette, bool) {
	b := img.Bounds()
	seen := make(map[color.NRGBA]struct{}, 256)
	pal := make(color.Palette, 0, 256)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		src := img.Pix[img.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			c := gifColor(src[x*4 : x*4+4])
			if _, ok := seen[c]; ok {
				continue
			}
			if len(pal) == 256 {
				return nil, false
			}
			seen[c] = struct{}{}
			pal = append(pal, c)
		}
	}
	return pal, true
}

func hasTransparency(img *image.NRGBA) bool {
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] < alphaThreshold {
			return true
		}
	}
	return false
}
