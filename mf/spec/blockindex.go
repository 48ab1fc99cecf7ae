package spec

import "fmt"

const (
	// BlockIndexEntryLength is the size of one entry of a sub-file index.
	BlockIndexEntryLength = 5

	// IndexStartSignature precedes the index of every sub-file in debug files.
	IndexStartSignature = "+++IndexStart+++"

	blockOffsetMask = 0x7fffffffff
	blockWaterMask  = 0x8000000000
)

// BlockIndexEntry is one decoded entry of a sub-file index.
type BlockIndexEntry struct {
	// Offset of the block relative to the sub-file start address.
	Offset uint64
	// Water is set when the block is completely covered by water.
	Water bool
}

// DecodeBlockIndexEntry decodes a 5-byte big-endian index entry: the top bit
// is the water flag, the low 39 bits the block offset.
func DecodeBlockIndexEntry(data []byte) (BlockIndexEntry, error) {
	if err := checkLength(data, BlockIndexEntryLength); err != nil {
		return BlockIndexEntry{}, err
	}
	var raw uint64
	for _, b := range data[:BlockIndexEntryLength] {
		raw = raw<<8 | uint64(b)
	}
	return BlockIndexEntry{
		Offset: raw & blockOffsetMask,
		Water:  raw&blockWaterMask != 0,
	}, nil
}

// DecodeBlockIndex decodes all entries of a sub-file index.
func DecodeBlockIndex(data []byte, count int64) ([]BlockIndexEntry, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: negative block count %d", ErrFormatMismatch, count)
	}
	if int64(len(data)) < count*BlockIndexEntryLength {
		return nil, fmt.Errorf("%w: index of %d blocks needs %d bytes, have %d",
			ErrTruncatedStream, count, count*BlockIndexEntryLength, len(data))
	}
	entries := make([]BlockIndexEntry, count)
	for i := range entries {
		entry, err := DecodeBlockIndexEntry(data[i*BlockIndexEntryLength:])
		if err != nil {
			return nil, err
		}
		entries[i] = entry
	}
	return entries, nil
}
