package spec

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/text/encoding/unicode"
)

const (
	ShortLength = 2
	IntLength   = 4
	LongLength  = 8

	// MaxVarUintLength is the longest encoding DecodeVarUint consumes.
	MaxVarUintLength = 5
)

func checkLength(data []byte, want int) error {
	if len(data) < want {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrTruncatedStream, want, len(data))
	}
	return nil
}

// DecodeShort decodes a big-endian two's-complement 16-bit integer.
func DecodeShort(data []byte) (int16, error) {
	if err := checkLength(data, ShortLength); err != nil {
		return 0, err
	}
	return int16(binary.BigEndian.Uint16(data)), nil
}

// DecodeInt decodes a big-endian two's-complement 32-bit integer.
func DecodeInt(data []byte) (int32, error) {
	if err := checkLength(data, IntLength); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(data)), nil
}

// DecodeLong decodes an 8-byte big-endian field whose value must fit into
// 32 unsigned bits. Any non-zero byte among the four most significant ones
// fails with ErrUnsupportedRange: files larger than 4 GiB are not supported.
func DecodeLong(data []byte) (uint32, error) {
	if err := checkLength(data, LongLength); err != nil {
		return 0, err
	}
	if high := binary.BigEndian.Uint32(data[:4]); high != 0 {
		return 0, fmt.Errorf("%w: long value %#x exceeds 32 bits", ErrUnsupportedRange, binary.BigEndian.Uint64(data))
	}
	return binary.BigEndian.Uint32(data[4:8]), nil
}

// DecodeVarUint decodes a variable-length unsigned integer: 7 data bits per
// byte, least significant group first, a cleared 0x80 bit marks the last byte.
// The fifth byte terminates the encoding regardless of its high bit.
// It returns the value and the number of bytes consumed (1 to 5).
func DecodeVarUint(data []byte) (uint32, int, error) {
	var value uint32
	for i := 0; i < MaxVarUintLength; i++ {
		if i >= len(data) {
			return 0, 0, fmt.Errorf("%w: unterminated variable-length integer", ErrTruncatedStream)
		}
		value |= uint32(data[i]&0x7f) << (7 * i)
		if data[i]&0x80 == 0 {
			return value, i + 1, nil
		}
	}
	return value, MaxVarUintLength, nil
}

// DecodeString decodes length bytes of UTF-8 text. Malformed sequences are
// replaced with U+FFFD.
func DecodeString(data []byte, length int) (string, error) {
	if length < 0 {
		return "", fmt.Errorf("%w: negative string length %d", ErrFormatMismatch, length)
	}
	if err := checkLength(data, length); err != nil {
		return "", err
	}
	decoded, err := unicode.UTF8.NewDecoder().Bytes(data[:length])
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
