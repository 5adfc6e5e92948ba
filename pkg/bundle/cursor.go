package bundle

import (
	"encoding/binary"

	"github.com/bundletools/unbundle/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// maxPathLength bounds the decoded length of a prefixed string. The bundle
// format never emits paths longer than this; anything larger is corruption.
const maxPathLength = 4095

// Cursor is a sequential, bounds-checked little-endian reader over a fixed
// byte range. Reads advance the position; a read that would pass the end of
// the range fails with types.ErrTruncatedRead and leaves the position as-is.
type Cursor struct {
	data []byte
	pos  int
}

// NewCursor wraps data with the position at 0
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Seek moves the position to an absolute offset within the range
func (c *Cursor) Seek(offset uint64) error {
	if offset > uint64(len(c.data)) {
		return goerr.Wrap(types.ErrTruncatedRead, "seek beyond end of source",
			goerr.V("offset", offset),
			goerr.V("size", len(c.data)),
		)
	}
	c.pos = int(offset)
	return nil
}

// Pos returns the current absolute position
func (c *Cursor) Pos() uint64 {
	return uint64(c.pos)
}

// Remaining returns how many bytes are left to read
func (c *Cursor) Remaining() int {
	return len(c.data) - c.pos
}

func (c *Cursor) take(field string, n int) ([]byte, error) {
	if c.Remaining() < n {
		return nil, goerr.Wrap(types.ErrTruncatedRead, "not enough bytes remain",
			goerr.V("field", field),
			goerr.V("offset", c.pos),
			goerr.V("needed", n),
			goerr.V("available", c.Remaining()),
		)
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// U8 reads one byte
func (c *Cursor) U8(field string) (byte, error) {
	b, err := c.take(field, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// U16 reads a little-endian uint16
func (c *Cursor) U16(field string) (uint16, error) {
	b, err := c.take(field, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// U32 reads a little-endian uint32
func (c *Cursor) U32(field string) (uint32, error) {
	b, err := c.take(field, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// U64 reads a little-endian uint64
func (c *Cursor) U64(field string) (uint64, error) {
	b, err := c.take(field, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// varint reads a 7-bit continuation-encoded unsigned integer: each byte
// contributes its low 7 bits, least significant group first, and a set high
// bit means another byte follows.
func (c *Cursor) varint(field string) (uint64, error) {
	var v uint64
	for shift := 0; ; shift += 7 {
		if shift > 63 {
			return 0, goerr.Wrap(types.ErrCorruptHeader, "varint does not terminate",
				goerr.V("field", field),
				goerr.V("offset", c.pos),
			)
		}
		b, err := c.U8(field)
		if err != nil {
			return 0, err
		}
		v |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return v, nil
		}
	}
}

// PathString reads a prefixed string: a varint byte length followed by that
// many UTF-8 bytes. Lengths of 0 or above maxPathLength are rejected as
// corruption.
func (c *Cursor) PathString(field string) (string, error) {
	length, err := c.varint(field)
	if err != nil {
		return "", err
	}
	if length == 0 || length > maxPathLength {
		return "", goerr.Wrap(types.ErrCorruptHeader, "invalid path length",
			goerr.V("field", field),
			goerr.V("offset", c.pos),
			goerr.V("length", length),
		)
	}

	b, err := c.take(field, int(length))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
