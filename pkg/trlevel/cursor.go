package trlevel

import (
	"encoding/binary"
	"math"
)

// Cursor is a seekable, position-tracked view over an in-memory buffer.
// Reads past the end fail with ErrTruncatedOrCorrupt.
type Cursor struct {
	data  []byte
	pos   int
	order binary.ByteOrder
}

// NewCursor returns a little-endian cursor positioned at byte 0.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data, order: binary.LittleEndian}
}

// WithOrder switches the byte order used by typed reads and returns c.
func (c *Cursor) WithOrder(order binary.ByteOrder) *Cursor {
	c.order = order
	return c
}

// Order returns the byte order of typed reads.
func (c *Cursor) Order() binary.ByteOrder { return c.order }

// Pos returns the current position.
func (c *Cursor) Pos() int { return c.pos }

// Len returns the size of the underlying buffer.
func (c *Cursor) Len() int { return len(c.data) }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.data) - c.pos }

// Seek moves to an absolute position. Seeking to Len() is allowed.
func (c *Cursor) Seek(pos int) error {
	if pos < 0 || pos > len(c.data) {
		return truncated("seek to %d outside buffer of %d bytes", pos, len(c.data))
	}
	c.pos = pos
	return nil
}

// Skip advances by n bytes.
func (c *Cursor) Skip(n int) error {
	if n < 0 || n > c.Remaining() {
		return truncated("skip %d bytes at %d, %d remaining", n, c.pos, c.Remaining())
	}
	c.pos += n
	return nil
}

// Snapshot returns the current position for a later Restore.
func (c *Cursor) Snapshot() int { return c.pos }

// Restore returns to a position taken by Snapshot.
func (c *Cursor) Restore(pos int) { c.pos = pos }

// Bytes returns the next n bytes without copying and advances past them.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	if n < 0 || n > c.Remaining() {
		return nil, truncated("need %d bytes at %d, %d remaining", n, c.pos, c.Remaining())
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// Copy returns a copy of the next n bytes.
func (c *Cursor) Copy(n int) ([]byte, error) {
	b, err := c.Bytes(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// Sub returns a cursor bounded to the next n bytes and advances c past them.
func (c *Cursor) Sub(n int) (*Cursor, error) {
	b, err := c.Bytes(n)
	if err != nil {
		return nil, err
	}
	return &Cursor{data: b, order: c.order}, nil
}

// Peek returns the next n bytes without advancing.
func (c *Cursor) Peek(n int) ([]byte, error) {
	if n < 0 || n > c.Remaining() {
		return nil, truncated("peek %d bytes at %d, %d remaining", n, c.pos, c.Remaining())
	}
	return c.data[c.pos : c.pos+n], nil
}

// U8 reads an unsigned byte.
func (c *Cursor) U8() (uint8, error) {
	b, err := c.Bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// I8 reads a signed byte.
func (c *Cursor) I8() (int8, error) {
	v, err := c.U8()
	return int8(v), err
}

// U16 reads an unsigned 16-bit integer.
func (c *Cursor) U16() (uint16, error) {
	b, err := c.Bytes(2)
	if err != nil {
		return 0, err
	}
	return c.order.Uint16(b), nil
}

// I16 reads a signed 16-bit integer.
func (c *Cursor) I16() (int16, error) {
	v, err := c.U16()
	return int16(v), err
}

// U32 reads an unsigned 32-bit integer.
func (c *Cursor) U32() (uint32, error) {
	b, err := c.Bytes(4)
	if err != nil {
		return 0, err
	}
	return c.order.Uint32(b), nil
}

// I32 reads a signed 32-bit integer.
func (c *Cursor) I32() (int32, error) {
	v, err := c.U32()
	return int32(v), err
}

// F32 reads an IEEE-754 float.
func (c *Cursor) F32() (float32, error) {
	v, err := c.U32()
	return math.Float32frombits(v), err
}

// Tag reads n bytes and reports whether they equal tag.
func (c *Cursor) Tag(tag string) (bool, error) {
	b, err := c.Bytes(len(tag))
	if err != nil {
		return false, err
	}
	return string(b) == tag, nil
}
