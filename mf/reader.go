// Package mf reads map files in the mapsforge binary format: the file
// header, the sub-file table and the block indices of each sub-file.
// Block contents are returned as raw bytes.
package mf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"

	"github.com/eak1mov/go-mapsforge/mf/spec"
	"github.com/eak1mov/go-mapsforge/tile"
)

type Reader interface {
	io.Closer

	// FileInfo returns the decoded header. It must not be modified.
	FileInfo() *spec.FileInfo

	LocateMapData(zoom int) (tile.Location, error)
	ReadMapData(ctx context.Context, zoom int) ([]byte, error)

	// VisitBlocks visits the blocks of the sub-file serving zoom.
	VisitBlocks(ctx context.Context, zoom int, visitor func(Block) error) error
	// VisitAllBlocks visits the blocks of all sub-files in table order.
	VisitAllBlocks(ctx context.Context, visitor func(Block) error) error
	Blocks(ctx context.Context) iter.Seq[Block]
	ReadBlock(ctx context.Context, block Block) ([]byte, error)
}

// Block is the location of one tile block inside a sub-file.
type Block struct {
	Tile     tile.ID
	Location tile.Location
	Water    bool
}

type reader struct {
	fileAccess FileAccessFunc
	fileCloser func() error
	fileInfo   *spec.FileInfo
	logger     *slog.Logger
}

// ReadFileInfo decodes the header of the map file served by fileAccess.
// Only the magic marker and the header length are read separately; the rest
// of the header is fetched in a single read and decoded in memory.
func ReadFileInfo(ctx context.Context, fileAccess FileAccessFunc) (*spec.FileInfo, error) {
	cursor := spec.NewFetchCursor(func(offset uint64, length int) ([]byte, error) {
		return fileAccess(ctx, offset, uint64(length))
	})
	return spec.DecodeFileInfo(cursor)
}

func NewFileReader(ctx context.Context, filePath string, opts ...ReaderOption) (Reader, error) {
	fileAccess, fileCloser, err := openFile(filePath)
	if err != nil {
		return nil, err
	}
	r, err := newReader(ctx, fileAccess, fileCloser, newReaderConfig(opts))
	if err != nil {
		fileCloser()
		return nil, err
	}
	return r, nil
}

func NewHTTPReader(ctx context.Context, url string, opts ...ReaderOption) (Reader, error) {
	config := newReaderConfig(opts)
	return newReader(ctx, HTTPSource(config.HTTPClient, url), func() error { return nil }, config)
}

func NewReader(ctx context.Context, fileAccess FileAccessFunc, opts ...ReaderOption) (Reader, error) {
	return newReader(ctx, fileAccess, func() error { return nil }, newReaderConfig(opts))
}

func newReader(ctx context.Context, fileAccess FileAccessFunc, fileCloser func() error, config readerConfig) (*reader, error) {
	fileInfo, err := ReadFileInfo(ctx, fileAccess)
	if err != nil {
		return nil, err
	}
	config.Logger.Debug("mapsforge: header decoded",
		"version", fileInfo.FileVersion,
		"size", fileInfo.FileSize,
		"subfiles", len(fileInfo.SubFiles.SubFiles),
		"debug", fileInfo.DebugFile())
	return &reader{
		fileAccess: fileAccess,
		fileCloser: fileCloser,
		fileInfo:   fileInfo,
		logger:     config.Logger,
	}, nil
}

func (r *reader) Close() error {
	return r.fileCloser()
}

func (r *reader) FileInfo() *spec.FileInfo {
	return r.fileInfo
}

func (r *reader) read(ctx context.Context, offset, length uint64) ([]byte, error) {
	data, err := r.fileAccess(ctx, offset, length)
	if err != nil {
		return nil, fmt.Errorf("read %d bytes at offset %d: %w", length, offset, err)
	}
	if uint64(len(data)) < length {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", spec.ErrTruncatedStream, length, offset, len(data))
	}
	return data[:length], nil
}

func (r *reader) LocateMapData(zoom int) (tile.Location, error) {
	return r.fileInfo.LocateMapData(zoom)
}

func (r *reader) ReadMapData(ctx context.Context, zoom int) ([]byte, error) {
	location, err := r.LocateMapData(zoom)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("mapsforge: read map data", "zoom", zoom, "offset", location.Offset, "length", location.Length)
	return r.read(ctx, location.Offset, location.Length)
}

func (r *reader) VisitBlocks(ctx context.Context, zoom int, visitor func(Block) error) error {
	subFile, err := r.fileInfo.SubFiles.Lookup(zoom)
	if err != nil {
		return err
	}
	return r.visitSubFile(ctx, subFile, visitor)
}

func (r *reader) visitSubFile(ctx context.Context, p *spec.SubFileParameter, visitor func(Block) error) error {
	if r.fileInfo.DebugFile() {
		signature, err := r.read(ctx, uint64(p.StartAddress), spec.DebugSignatureLength)
		if err != nil {
			return err
		}
		if string(signature) != spec.IndexStartSignature {
			return fmt.Errorf("%w: index signature %q at offset %d", spec.ErrFormatMismatch, signature, p.StartAddress)
		}
	}

	if !p.HasBlocks() {
		return nil
	}
	if subFileEnd := int64(p.StartAddress) + int64(p.SubFileSize); p.IndexEndAddress > subFileEnd {
		return fmt.Errorf("%w: block index of %d blocks ends at %d, past sub-file end %d",
			spec.ErrTruncatedStream, p.NumberOfBlocks, p.IndexEndAddress, subFileEnd)
	}
	indexData, err := r.read(ctx, uint64(p.IndexStartAddress), uint64(p.IndexEndAddress-p.IndexStartAddress))
	if err != nil {
		return err
	}
	entries, err := spec.DecodeBlockIndex(indexData, p.NumberOfBlocks)
	if err != nil {
		return err
	}
	r.logger.Debug("mapsforge: visit blocks", "zoom", p.BaseZoomLevel, "blocks", len(entries))

	for i, entry := range entries {
		next := uint64(p.SubFileSize)
		if i+1 < len(entries) {
			next = entries[i+1].Offset
		}
		if next < entry.Offset {
			return fmt.Errorf("%w: block %d offset %d exceeds next offset %d", spec.ErrFormatMismatch, i, entry.Offset, next)
		}
		block := Block{
			Tile: p.BlockTile(int64(i)),
			Location: tile.Location{
				Offset: uint64(p.StartAddress) + entry.Offset,
				Length: next - entry.Offset,
			},
			Water: entry.Water,
		}
		if err := visitor(block); err != nil {
			return err
		}
	}
	return nil
}

func (r *reader) VisitAllBlocks(ctx context.Context, visitor func(Block) error) error {
	for i := range r.fileInfo.SubFiles.SubFiles {
		if err := r.visitSubFile(ctx, &r.fileInfo.SubFiles.SubFiles[i], visitor); err != nil {
			return err
		}
	}
	return nil
}

var errVisitCancelled = errors.New("cancelled")

// Blocks returns an iterator over VisitAllBlocks.
// Iteration panics on any read or decode error.
func (r *reader) Blocks(ctx context.Context) iter.Seq[Block] {
	return func(yield func(Block) bool) {
		err := r.VisitAllBlocks(ctx, func(block Block) error {
			if !yield(block) {
				return errVisitCancelled
			}
			return nil
		})
		if err != nil && err != errVisitCancelled {
			panic(err)
		}
	}
}

// ReadBlock returns the raw, undecoded bytes of block.
func (r *reader) ReadBlock(ctx context.Context, block Block) ([]byte, error) {
	return r.read(ctx, block.Location.Offset, block.Location.Length)
}
