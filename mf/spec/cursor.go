package spec

import "fmt"

// FetchFunc returns up to length bytes starting at offset.
// A result shorter than length means the underlying data ended.
type FetchFunc = func(offset uint64, length int) ([]byte, error)

// Cursor reads typed fields from a byte source and tracks its position.
// Every read advances the position by exactly the number of bytes consumed.
//
// A Cursor created by NewCursor works on resident bytes and never suspends.
// A Cursor created by NewFetchCursor calls its FetchFunc on every read,
// which may block on I/O.
type Cursor struct {
	fetch    FetchFunc
	pos      uint64
	suspends bool
}

// NewCursor returns a Cursor over data held in memory.
func NewCursor(data []byte) *Cursor {
	return &Cursor{
		fetch: func(offset uint64, length int) ([]byte, error) {
			if length < 0 || offset >= uint64(len(data)) {
				return nil, nil
			}
			end := min(offset+uint64(length), uint64(len(data)))
			return data[offset:end], nil
		},
	}
}

// NewFetchCursor returns a Cursor reading through fetch.
func NewFetchCursor(fetch FetchFunc) *Cursor {
	return &Cursor{fetch: fetch, suspends: true}
}

// Suspends reports whether reads may block on the underlying source.
func (c *Cursor) Suspends() bool {
	return c.suspends
}

func (c *Cursor) Position() uint64 {
	return c.pos
}

func (c *Cursor) Seek(pos uint64) {
	c.pos = pos
}

// Read returns the next n bytes. The returned slice may alias the source.
func (c *Cursor) Read(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative read length %d at offset %d", ErrFormatMismatch, n, c.pos)
	}
	data, err := c.fetch(c.pos, n)
	if err != nil {
		return nil, fmt.Errorf("read %d bytes at offset %d: %w", n, c.pos, err)
	}
	if len(data) < n {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncatedStream, n, c.pos, len(data))
	}
	c.pos += uint64(n)
	return data[:n], nil
}

func (c *Cursor) ReadByte() (byte, error) {
	data, err := c.Read(1)
	if err != nil {
		return 0, err
	}
	return data[0], nil
}

func (c *Cursor) ReadShort() (int16, error) {
	data, err := c.Read(ShortLength)
	if err != nil {
		return 0, err
	}
	return DecodeShort(data)
}

func (c *Cursor) ReadInt() (int32, error) {
	data, err := c.Read(IntLength)
	if err != nil {
		return 0, err
	}
	return DecodeInt(data)
}

func (c *Cursor) ReadLong() (uint32, error) {
	data, err := c.Read(LongLength)
	if err != nil {
		return 0, err
	}
	return DecodeLong(data)
}

// ReadVarUint fetches up to MaxVarUintLength bytes but advances only past
// the bytes the encoding actually uses.
func (c *Cursor) ReadVarUint() (uint32, error) {
	data, err := c.fetch(c.pos, MaxVarUintLength)
	if err != nil {
		return 0, fmt.Errorf("read variable-length integer at offset %d: %w", c.pos, err)
	}
	value, n, err := DecodeVarUint(data)
	if err != nil {
		return 0, fmt.Errorf("offset %d: %w", c.pos, err)
	}
	c.pos += uint64(n)
	return value, nil
}

func (c *Cursor) ReadString(length int) (string, error) {
	data, err := c.Read(length)
	if err != nil {
		return "", err
	}
	return DecodeString(data, length)
}

// ReadVariableLengthString reads a variable-length integer byte count
// followed by that many bytes of UTF-8 text.
func (c *Cursor) ReadVariableLengthString() (string, error) {
	length, err := c.ReadVarUint()
	if err != nil {
		return "", err
	}
	return c.ReadString(int(length))
}
