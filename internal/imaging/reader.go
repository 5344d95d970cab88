package imaging

import (
	"encoding/binary"
	"fmt"
)

// cursor is a forward-only reader over an untrusted buffer. Every read checks
// the remaining length first, so a forged length field can never move the
// position past the end of the data.
type cursor struct {
	data []byte
	pos  int
}

func newCursor(data []byte) *cursor {
	return &cursor{data: data}
}

// remaining returns the number of unread bytes.
func (c *cursor) remaining() int {
	return len(c.data) - c.pos
}

// need fails with ErrCorruptImage unless n more bytes are available.
func (c *cursor) need(n int, what string) error {
	if n < 0 || n > c.remaining() {
		return fmt.Errorf("%w: %s truncated at offset %d: need %d bytes, have %d",
			ErrCorruptImage, what, c.pos, n, c.remaining())
	}
	return nil
}

// bytes returns the next n bytes without copying.
func (c *cursor) bytes(n int, what string) ([]byte, error) {
	if err := c.need(n, what); err != nil {
		return nil, err
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

func (c *cursor) skip(n int, what string) error {
	if err := c.need(n, what); err != nil {
		return err
	}
	c.pos += n
	return nil
}

func (c *cursor) u8(what string) (byte, error) {
	if err := c.need(1, what); err != nil {
		return 0, err
	}
	b := c.data[c.pos]
	c.pos++
	return b, nil
}

func (c *cursor) u16le(what string) (int, error) {
	b, err := c.bytes(2, what)
	if err != nil {
		return 0, err
	}
	return int(binary.LittleEndian.Uint16(b)), nil
}

func (c *cursor) u24le(what string) (int, error) {
	b, err := c.bytes(3, what)
	if err != nil {
		return 0, err
	}
	return int(b[0]) | int(b[1])<<8 | int(b[2])<<16, nil
}

func (c *cursor) u32le(what string) (uint32, error) {
	b, err := c.bytes(4, what)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}
