package spec

import (
	"fmt"

	"github.com/eak1mov/go-mapsforge/mercator"
	"github.com/eak1mov/go-mapsforge/tile"
)

// DebugSignatureLength is the size of the marker preceding each index in debug files.
const DebugSignatureLength = 16

// SubFileParameter describes one sub-file and the tile blocks its index covers.
// The boundary and block fields are derived from the file bounding box at
// BaseZoomLevel when the header is decoded.
type SubFileParameter struct {
	BaseZoomLevel uint8
	ZoomLevelMin  uint8
	ZoomLevelMax  uint8
	StartAddress  uint32
	SubFileSize   uint32

	IndexStartAddress int64
	IndexEndAddress   int64

	BoundaryTileLeft   uint32
	BoundaryTileRight  uint32
	BoundaryTileTop    uint32
	BoundaryTileBottom uint32

	BlocksWidth    int64
	BlocksHeight   int64
	NumberOfBlocks int64
}

// Serves reports whether zoom lies within [ZoomLevelMin, ZoomLevelMax].
func (p *SubFileParameter) Serves(zoom int) bool {
	return zoom >= int(p.ZoomLevelMin) && zoom <= int(p.ZoomLevelMax)
}

// Location returns the byte range starting at the index of the sub-file.
func (p *SubFileParameter) Location() tile.Location {
	return tile.Location{
		Offset: uint64(p.IndexStartAddress),
		Length: uint64(p.SubFileSize),
	}
}

// HasBlocks reports whether the bounding box covers any block at
// BaseZoomLevel. An inverted box covers none.
func (p *SubFileParameter) HasBlocks() bool {
	return p.BlocksWidth > 0 && p.BlocksHeight > 0
}

// BlockTile returns the tile covered by the block with the given index.
func (p *SubFileParameter) BlockTile(block int64) tile.ID {
	return tile.ID{
		X: p.BoundaryTileLeft + uint32(block%p.BlocksWidth),
		Y: p.BoundaryTileTop + uint32(block/p.BlocksWidth),
		Z: uint32(p.BaseZoomLevel),
	}
}

// SubFileIndex is the sub-file table of a map file.
type SubFileIndex struct {
	SubFiles     []SubFileParameter
	ZoomLevelMin uint8
	ZoomLevelMax uint8
}

// Lookup clamps zoom into [ZoomLevelMin, ZoomLevelMax] and returns the
// first sub-file serving the clamped level.
// Zoom ranges are not checked for overlap: the first match wins.
func (x *SubFileIndex) Lookup(zoom int) (*SubFileParameter, error) {
	clamped := min(max(zoom, int(x.ZoomLevelMin)), int(x.ZoomLevelMax))
	for i := range x.SubFiles {
		if x.SubFiles[i].Serves(clamped) {
			return &x.SubFiles[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %d", ErrNoSubFileForZoomLevel, zoom)
}

// LocateMapData returns the byte range of the sub-file serving zoom.
func (fi *FileInfo) LocateMapData(zoom int) (tile.Location, error) {
	subFile, err := fi.SubFiles.Lookup(zoom)
	if err != nil {
		return tile.Location{}, err
	}
	return subFile.Location(), nil
}

func decodeSubFileIndex(c *Cursor, bbox BoundingBox, debugFile bool) (SubFileIndex, error) {
	count, err := c.ReadByte()
	if err != nil {
		return SubFileIndex{}, fmt.Errorf("read sub-file count: %w", err)
	}

	index := SubFileIndex{SubFiles: make([]SubFileParameter, 0, count)}
	for i := range int(count) {
		p, err := decodeSubFileParameter(c, bbox, debugFile)
		if err != nil {
			return SubFileIndex{}, fmt.Errorf("sub-file %d: %w", i, err)
		}
		if i == 0 || p.ZoomLevelMin < index.ZoomLevelMin {
			index.ZoomLevelMin = p.ZoomLevelMin
		}
		if i == 0 || p.ZoomLevelMax > index.ZoomLevelMax {
			index.ZoomLevelMax = p.ZoomLevelMax
		}
		index.SubFiles = append(index.SubFiles, p)
	}
	return index, nil
}

func decodeSubFileParameter(c *Cursor, bbox BoundingBox, debugFile bool) (SubFileParameter, error) {
	p := SubFileParameter{}
	var err error

	if p.BaseZoomLevel, err = c.ReadByte(); err != nil {
		return SubFileParameter{}, fmt.Errorf("read base zoom level: %w", err)
	}
	if p.ZoomLevelMin, err = c.ReadByte(); err != nil {
		return SubFileParameter{}, fmt.Errorf("read minimum zoom level: %w", err)
	}
	if p.ZoomLevelMax, err = c.ReadByte(); err != nil {
		return SubFileParameter{}, fmt.Errorf("read maximum zoom level: %w", err)
	}
	if p.StartAddress, err = c.ReadLong(); err != nil {
		return SubFileParameter{}, fmt.Errorf("read start address: %w", err)
	}
	if p.SubFileSize, err = c.ReadLong(); err != nil {
		return SubFileParameter{}, fmt.Errorf("read sub-file size: %w", err)
	}

	p.IndexStartAddress = int64(p.StartAddress)
	if debugFile {
		p.IndexStartAddress += DebugSignatureLength
	}

	if err := p.computeBoundaries(bbox); err != nil {
		return SubFileParameter{}, err
	}
	return p, nil
}

func (p *SubFileParameter) computeBoundaries(bbox BoundingBox) error {
	zoom := int(p.BaseZoomLevel)
	var err error

	if p.BoundaryTileLeft, err = mercator.LongitudeToTileX(bbox.MinLongitude, zoom); err != nil {
		return err
	}
	if p.BoundaryTileTop, err = mercator.LatitudeToTileY(bbox.MaxLatitude, zoom); err != nil {
		return err
	}
	if p.BoundaryTileRight, err = mercator.LongitudeToTileX(bbox.MaxLongitude, zoom); err != nil {
		return err
	}
	if p.BoundaryTileBottom, err = mercator.LatitudeToTileY(bbox.MinLatitude, zoom); err != nil {
		return err
	}

	p.BlocksWidth = int64(p.BoundaryTileRight) - int64(p.BoundaryTileLeft) + 1
	p.BlocksHeight = int64(p.BoundaryTileBottom) - int64(p.BoundaryTileTop) + 1
	p.NumberOfBlocks = p.BlocksWidth * p.BlocksHeight
	p.IndexEndAddress = p.IndexStartAddress + p.NumberOfBlocks*BlockIndexEntryLength
	return nil
}
