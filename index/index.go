// Package index writes and reads flat block-index records exported from map files.
package index

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/eak1mov/go-mapsforge/tile"
)

const FlagWater uint32 = 1 << 0

// Item is a single fixed-size record mapping a block's tile coordinates
// (X, Y, Z where Z is the base zoom level of its sub-file) to the
// absolute location of the block inside the map file.
type Item struct {
	X      uint32
	Y      uint32
	Z      uint32
	Length uint32
	Offset uint64
	Flags  uint32
}

func (i Item) TileID() tile.ID {
	return tile.ID{X: i.X, Y: i.Y, Z: i.Z}
}

func (i Item) TileLocation() tile.Location {
	return tile.Location{Offset: i.Offset, Length: uint64(i.Length)}
}

func (i Item) Water() bool {
	return i.Flags&FlagWater != 0
}

func WriteAll(items []Item, writer io.Writer) error {
	return binary.Write(writer, binary.LittleEndian, items)
}

func ReadAll(indexData []byte) ([]Item, error) {
	count := len(indexData) / binary.Size(Item{})
	items := make([]Item, count)

	err := binary.Read(bytes.NewReader(indexData), binary.LittleEndian, items)
	if err != nil {
		return nil, err
	}

	return items, nil
}
