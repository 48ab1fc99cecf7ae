// Package tile provides common tile types shared by map readers and exporters.
package tile

// ID represents tile coordinates in the XYZ scheme (Tiled web map).
type ID struct {
	X uint32
	Y uint32
	Z uint32
}

func (t ID) Valid() bool {
	return t.Z < 32 && t.X < (1<<t.Z) && t.Y < (1<<t.Z)
}

// Location represents an absolute byte range inside a map file.
type Location struct {
	Offset uint64
	Length uint64
}

// End returns the offset just past the range.
func (l Location) End() uint64 {
	return l.Offset + l.Length
}

// Writer defines an interface for storing per-tile map blocks.
type Writer interface {
	// WriteBlock writes the raw data of a single block and its water flag.
	WriteBlock(tileID ID, blockData []byte, water bool) error

	// Finalize completes the writing process: flushes buffers, writes indices.
	// It must be called before closing the Writer.
	Finalize() error
}
