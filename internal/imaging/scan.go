package imaging

import (
	"bytes"
	"fmt"
	"time"
)

// gifLayout is the structure of a GIF stream as seen by scanGIF.
type gifLayout struct {
	width, height int
	delays        []time.Duration // authored delay per image, before defaulting
	loopCount     int             // -1 when no NETSCAPE extension is present
}

// GIF block introducers and extension labels.
const (
	gifExtension      = 0x21
	gifImageSeparator = 0x2C
	gifTrailer        = 0x3B

	gifLabelGraphicControl = 0xF9
	gifLabelApplication    = 0xFF
)

// scanGIF walks the GIF block stream without decoding any LZW data. It checks
// every block length against the remaining buffer, requires each image
// descriptor to lie inside the logical screen and collects per-frame delays.
func scanGIF(data []byte) (*gifLayout, error) {
	c := newCursor(data)
	if err := c.skip(6, "gif header"); err != nil {
		return nil, err
	}
	w, err := c.u16le("logical screen width")
	if err != nil {
		return nil, err
	}
	h, err := c.u16le("logical screen height")
	if err != nil {
		return nil, err
	}
	flags, err := c.u8("logical screen flags")
	if err != nil {
		return nil, err
	}
	if err := c.skip(2, "logical screen descriptor"); err != nil {
		return nil, err
	}
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("%w: gif logical screen is %dx%d", ErrCorruptImage, w, h)
	}
	if flags&0x80 != 0 {
		if err := c.skip(3<<((flags&0x07)+1), "global color table"); err != nil {
			return nil, err
		}
	}

	layout := &gifLayout{width: w, height: h, loopCount: -1}
	var pendingDelay time.Duration
	for {
		intro, err := c.u8("block introducer")
		if err != nil {
			return nil, err
		}
		switch intro {
		case gifTrailer:
			if len(layout.delays) == 0 {
				return nil, fmt.Errorf("%w: gif contains no image data", ErrCorruptImage)
			}
			return layout, nil

		case gifExtension:
			label, err := c.u8("extension label")
			if err != nil {
				return nil, err
			}
			switch label {
			case gifLabelGraphicControl:
				delay, err := scanGraphicControl(c)
				if err != nil {
					return nil, err
				}
				pendingDelay = delay
			case gifLabelApplication:
				loop, ok, err := scanApplication(c)
				if err != nil {
					return nil, err
				}
				if ok {
					layout.loopCount = loop
				}
			default:
				if err := skipSubBlocks(c); err != nil {
					return nil, err
				}
			}

		case gifImageSeparator:
			if err := scanImageDescriptor(c, w, h, len(layout.delays)); err != nil {
				return nil, err
			}
			layout.delays = append(layout.delays, pendingDelay)
			pendingDelay = 0

		default:
			return nil, fmt.Errorf("%w: unknown gif block 0x%02x at offset %d", ErrCorruptImage, intro, c.pos-1)
		}
	}
}

// scanGraphicControl reads a graphic control extension and returns its delay.
func scanGraphicControl(c *cursor) (time.Duration, error) {
	size, err := c.u8("graphic control size")
	if err != nil {
		return 0, err
	}
	if size != 4 {
		return 0, fmt.Errorf("%w: graphic control block size %d", ErrCorruptImage, size)
	}
	if err := c.skip(1, "graphic control flags"); err != nil {
		return 0, err
	}
	cs, err := c.u16le("graphic control delay")
	if err != nil {
		return 0, err
	}
	if err := c.skip(1, "transparent index"); err != nil {
		return 0, err
	}
	if err := skipSubBlocks(c); err != nil {
		return 0, err
	}
	return time.Duration(cs) * 10 * time.Millisecond, nil
}

// scanApplication reads an application extension and extracts the NETSCAPE
// loop count if present.
func scanApplication(c *cursor) (loop int, ok bool, err error) {
	size, err := c.u8("application block size")
	if err != nil {
		return 0, false, err
	}
	id, err := c.bytes(int(size), "application identifier")
	if err != nil {
		return 0, false, err
	}
	netscape := bytes.Equal(id, []byte("NETSCAPE2.0")) || bytes.Equal(id, []byte("ANIMEXTS1.0"))
	for {
		n, err := c.u8("application sub-block size")
		if err != nil {
			return 0, false, err
		}
		if n == 0 {
			return loop, ok, nil
		}
		sub, err := c.bytes(int(n), "application sub-block")
		if err != nil {
			return 0, false, err
		}
		if netscape && n == 3 && sub[0] == 0x01 {
			loop = int(sub[1]) | int(sub[2])<<8
			ok = true
		}
	}
}

// scanImageDescriptor validates an image descriptor and skips its pixel data.
func scanImageDescriptor(c *cursor, screenW, screenH, index int) error {
	left, err := c.u16le("image left")
	if err != nil {
		return err
	}
	top, err := c.u16le("image top")
	if err != nil {
		return err
	}
	w, err := c.u16le("image width")
	if err != nil {
		return err
	}
	h, err := c.u16le("image height")
	if err != nil {
		return err
	}
	flags, err := c.u8("image flags")
	if err != nil {
		return err
	}
	if w == 0 || h == 0 || left+w > screenW || top+h > screenH {
		return fmt.Errorf("%w: gif frame %d rect (%d,%d %dx%d) outside %dx%d screen",
			ErrCorruptImage, index, left, top, w, h, screenW, screenH)
	}
	if flags&0x80 != 0 {
		if err := c.skip(3<<((flags&0x07)+1), "local color table"); err != nil {
			return err
		}
	}
	if err := c.skip(1, "lzw minimum code size"); err != nil {
		return err
	}
	return skipSubBlocks(c)
}

// skipSubBlocks consumes a run of data sub-blocks up to its zero terminator.
func skipSubBlocks(c *cursor) error {
	for {
		n, err := c.u8("sub-block size")
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		if err := c.skip(int(n), "sub-block"); err != nil {
			return err
		}
	}
}

// webpLayout is the container structure of a WebP file as seen by scanWebP.
type webpLayout struct {
	extended      bool // VP8X header present
	animated      bool
	width, height int // canvas size; zero for simple (non-VP8X) files
	durations     []time.Duration
	loopCount     int
}

// maxWebPCanvas is the largest canvas dimension the VP8X header can declare.
const maxWebPCanvas = 1 << 24

// scanWebP walks the RIFF chunk list. Chunk sizes are checked against both
// the RIFF payload and the buffer; ANMF frames must fit inside the canvas.
func scanWebP(data []byte) (*webpLayout, error) {
	c := newCursor(data)
	if err := c.skip(4, "riff tag"); err != nil {
		return nil, err
	}
	riffSize, err := c.u32le("riff size")
	if err != nil {
		return nil, err
	}
	if err := c.skip(4, "webp form type"); err != nil {
		return nil, err
	}
	if riffSize < 4 || uint64(riffSize)+8 > uint64(len(data)) {
		return nil, fmt.Errorf("%w: riff size %d exceeds buffer of %d bytes", ErrCorruptImage, riffSize, len(data))
	}
	body := newCursor(data[12 : 8+int(riffSize)])

	layout := &webpLayout{}
	first := true
	sawBitstream := false
	for body.remaining() > 0 {
		fourcc, payload, err := readRIFFChunk(body)
		if err != nil {
			return nil, err
		}
		switch fourcc {
		case "VP8X":
			if !first {
				return nil, fmt.Errorf("%w: VP8X chunk not first", ErrCorruptImage)
			}
			if err := layout.readVP8X(payload); err != nil {
				return nil, err
			}
		case "ANIM":
			if len(payload) < 6 {
				return nil, fmt.Errorf("%w: ANIM chunk too short", ErrCorruptImage)
			}
			layout.loopCount = int(payload[4]) | int(payload[5])<<8
		case "ANMF":
			if !layout.animated {
				return nil, fmt.Errorf("%w: ANMF chunk in non-animated webp", ErrCorruptImage)
			}
			if err := layout.readANMF(payload); err != nil {
				return nil, err
			}
		case "VP8 ", "VP8L":
			sawBitstream = true
		}
		first = false
	}

	if layout.animated && len(layout.durations) == 0 {
		return nil, fmt.Errorf("%w: animated webp has no frames", ErrCorruptImage)
	}
	if !layout.animated && !sawBitstream {
		return nil, fmt.Errorf("%w: webp has no image bitstream", ErrCorruptImage)
	}
	return layout, nil
}

// readRIFFChunk reads one chunk header plus payload, consuming the pad byte
// that follows odd-sized payloads.
func readRIFFChunk(c *cursor) (string, []byte, error) {
	id, err := c.bytes(4, "chunk fourcc")
	if err != nil {
		return "", nil, err
	}
	size, err := c.u32le("chunk size")
	if err != nil {
		return "", nil, err
	}
	if uint64(size) > uint64(c.remaining()) {
		return "", nil, fmt.Errorf("%w: chunk %q size %d exceeds remaining %d bytes",
			ErrCorruptImage, id, size, c.remaining())
	}
	payload, err := c.bytes(int(size), "chunk payload")
	if err != nil {
		return "", nil, err
	}
	if size%2 == 1 && c.remaining() > 0 {
		c.pos++
	}
	return string(id), payload, nil
}

func (l *webpLayout) readVP8X(payload []byte) error {
	c := newCursor(payload)
	flags, err := c.u8("vp8x flags")
	if err != nil {
		return err
	}
	if err := c.skip(3, "vp8x reserved"); err != nil {
		return err
	}
	w, err := c.u24le("canvas width")
	if err != nil {
		return err
	}
	h, err := c.u24le("canvas height")
	if err != nil {
		return err
	}
	l.extended = true
	l.animated = flags&0x02 != 0
	l.width, l.height = w+1, h+1
	if l.width > maxWebPCanvas || l.height > maxWebPCanvas {
		return fmt.Errorf("%w: webp canvas %dx%d too large", ErrCorruptImage, l.width, l.height)
	}
	return nil
}

func (l *webpLayout) readANMF(payload []byte) error {
	c := newCursor(payload)
	x, err := c.u24le("frame x")
	if err != nil {
		return err
	}
	y, err := c.u24le("frame y")
	if err != nil {
		return err
	}
	w, err := c.u24le("frame width")
	if err != nil {
		return err
	}
	h, err := c.u24le("frame height")
	if err != nil {
		return err
	}
	ms, err := c.u24le("frame duration")
	if err != nil {
		return err
	}
	if err := c.skip(1, "frame flags"); err != nil {
		return err
	}
	x, y, w, h = x*2, y*2, w+1, h+1
	if x+w > l.width || y+h > l.height {
		return fmt.Errorf("%w: webp frame %d rect (%d,%d %dx%d) outside %dx%d canvas",
			ErrCorruptImage, len(l.durations), x, y, w, h, l.width, l.height)
	}
	// The frame's own bitstream chunks follow; walk them for length consistency.
	for c.remaining() > 0 {
		if _, _, err := readRIFFChunk(c); err != nil {
			return err
		}
	}
	l.durations = append(l.durations, time.Duration(ms)*time.Millisecond)
	return nil
}
