package mf_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/eak1mov/go-mapsforge/internal/testmap"
	"github.com/eak1mov/go-mapsforge/mf"
	"github.com/eak1mov/go-mapsforge/mf/spec"
	"github.com/eak1mov/go-mapsforge/tile"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type testFile struct {
	data   []byte
	blocks [][]testmap.Block
}

func newTestFile(debug bool) testFile {
	header := testmap.Reference()
	if debug {
		header.Flags |= 0x80
	}
	// Block counts follow from the reference bounding box: 1x1, 2x1 and 10x10.
	blocks := [][]testmap.Block{
		{{Data: []byte("block-5-0")}},
		{{Data: []byte("block-10-0"), Water: true}, {Data: []byte("block-10-1")}},
		make([]testmap.Block, 100),
	}
	for i := range blocks[2] {
		if i%7 != 0 {
			blocks[2][i].Data = fmt.Appendf(nil, "block-14-%d", i)
		}
	}
	bodies := make([][]byte, len(blocks))
	for i := range blocks {
		bodies[i] = testmap.SubFileBody(blocks[i], debug)
	}
	return testFile{data: testmap.File(header, bodies), blocks: blocks}
}

func TestReadFileInfoFetchPattern(t *testing.T) {
	file := newTestFile(false)
	var requests [][2]uint64
	source := mf.BytesSource(file.data)
	fileInfo, err := mf.ReadFileInfo(context.Background(), func(ctx context.Context, offset, length uint64) ([]byte, error) {
		requests = append(requests, [2]uint64{offset, length})
		return source(ctx, offset, length)
	})
	require.NoError(t, err)
	require.Equal(t, uint32(len(file.data)), fileInfo.FileSize)

	magicLength := uint64(len(spec.Magic))
	require.Len(t, requests, 3)
	require.Equal(t, [2]uint64{0, magicLength}, requests[0])
	require.Equal(t, [2]uint64{magicLength, 4}, requests[1])
	require.Equal(t, magicLength+4, requests[2][0])
}

func TestReadFileInfoFetchError(t *testing.T) {
	fetchErr := errors.New("connection reset")
	_, err := mf.ReadFileInfo(context.Background(), func(context.Context, uint64, uint64) ([]byte, error) {
		return nil, fetchErr
	})
	require.Truef(t, errors.Is(err, fetchErr), "%v", err)
}

func TestReader(t *testing.T) {
	for _, debug := range []bool{false, true} {
		t.Run(fmt.Sprintf("debug=%v", debug), func(t *testing.T) {
			file := newTestFile(debug)
			ctx := context.Background()

			reader, err := mf.NewReader(ctx, mf.BytesSource(file.data))
			require.NoError(t, err)
			defer reader.Close()

			fileInfo := reader.FileInfo()
			require.Equal(t, debug, fileInfo.DebugFile())
			require.Equal(t, "Mercator", fileInfo.ProjectionName)

			for i, subFile := range fileInfo.SubFiles.SubFiles {
				zoom := int(subFile.BaseZoomLevel)
				location, err := reader.LocateMapData(zoom)
				require.NoError(t, err)
				require.Equal(t, subFile.Location(), location)

				// In debug files the range starts past the index signature but
				// keeps the sub-file size, so the last one overruns the file.
				if !debug {
					data, err := reader.ReadMapData(ctx, zoom)
					require.NoError(t, err)
					require.Len(t, data, int(subFile.SubFileSize))
				}

				var blocks []mf.Block
				err = reader.VisitBlocks(ctx, zoom, func(block mf.Block) error {
					blocks = append(blocks, block)
					return nil
				})
				require.NoError(t, err)
				require.Len(t, blocks, len(file.blocks[i]))

				for j, block := range blocks {
					want := file.blocks[i][j]
					require.Equal(t, subFile.BlockTile(int64(j)), block.Tile)
					require.Equal(t, want.Water, block.Water)
					got, err := reader.ReadBlock(ctx, block)
					require.NoError(t, err)
					if !bytes.Equal(got, want.Data) {
						t.Errorf("block %v data = %q, want = %q", block.Tile, got, want.Data)
					}
				}
			}
		})
	}
}

func TestReaderBlocks(t *testing.T) {
	file := newTestFile(false)
	reader, err := mf.NewReader(context.Background(), mf.BytesSource(file.data))
	require.NoError(t, err)

	blocks := slices.Collect(reader.Blocks(context.Background()))
	require.Len(t, blocks, 103)
	require.Equal(t, tile.ID{X: 16, Y: 15, Z: 5}, blocks[0].Tile)
	require.Equal(t, tile.ID{X: 512, Y: 511, Z: 10}, blocks[1].Tile)
	require.Equal(t, tile.ID{X: 513, Y: 511, Z: 10}, blocks[2].Tile)
	require.Equal(t, tile.ID{X: 8201, Y: 8178, Z: 14}, blocks[3].Tile)
	require.Equal(t, tile.ID{X: 8210, Y: 8187, Z: 14}, blocks[102].Tile)

	var first []mf.Block
	for block := range reader.Blocks(context.Background()) {
		first = append(first, block)
		if len(first) == 2 {
			break
		}
	}
	if diff := cmp.Diff(blocks[:2], first); diff != "" {
		t.Errorf("Blocks mismatch (-want+got):\n%v", diff)
	}
}

func TestReaderBadIndexSignature(t *testing.T) {
	file := newTestFile(true)
	reader, err := mf.NewReader(context.Background(), mf.BytesSource(file.data))
	require.NoError(t, err)

	start := reader.FileInfo().SubFiles.SubFiles[1].StartAddress
	file.data[start] = '-'

	err = reader.VisitBlocks(context.Background(), 10, func(mf.Block) error { return nil })
	require.Truef(t, errors.Is(err, spec.ErrFormatMismatch), "%v", err)
}

func TestReaderTruncatedMapData(t *testing.T) {
	file := newTestFile(false)
	header := len(testmap.Reference().Encode())
	reader, err := mf.NewReader(context.Background(), mf.BytesSource(file.data[:header+4]))
	require.NoError(t, err)

	_, err = reader.ReadMapData(context.Background(), 5)
	require.Truef(t, errors.Is(err, spec.ErrTruncatedStream), "%v", err)
	err = reader.VisitBlocks(context.Background(), 5, func(mf.Block) error { return nil })
	require.Truef(t, errors.Is(err, spec.ErrTruncatedStream), "%v", err)
}

func TestReaderNoSubFile(t *testing.T) {
	header := testmap.Reference()
	header.SubFiles = nil
	reader, err := mf.NewReader(context.Background(), mf.BytesSource(header.Encode()))
	require.NoError(t, err)

	_, err = reader.ReadMapData(context.Background(), 6)
	require.Truef(t, errors.Is(err, spec.ErrNoSubFileForZoomLevel), "%v", err)
}

func TestFileReader(t *testing.T) {
	file := newTestFile(false)
	filePath := filepath.Join(t.TempDir(), "test.map")
	require.NoError(t, os.WriteFile(filePath, file.data, 0644))

	reader, err := mf.NewFileReader(context.Background(), filePath)
	require.NoError(t, err)
	defer reader.Close()

	data, err := reader.ReadMapData(context.Background(), 8)
	require.NoError(t, err)
	location := reader.FileInfo().SubFiles.SubFiles[1].Location()
	require.Equal(t, file.data[location.Offset:location.End()], data)

	_, err = mf.NewFileReader(context.Background(), filepath.Join(t.TempDir(), "missing.map"))
	require.Truef(t, errors.Is(err, os.ErrNotExist), "%v", err)
}

func TestHTTPReader(t *testing.T) {
	file := newTestFile(false)
	modTime := time.Date(2012, 5, 1, 0, 0, 0, 0, time.UTC)

	for _, tc := range []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"Range", func(w http.ResponseWriter, r *http.Request) {
			http.ServeContent(w, r, "test.map", modTime, bytes.NewReader(file.data))
		}},
		{"NoRange", func(w http.ResponseWriter, r *http.Request) {
			w.Write(file.data)
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(tc.handler)
			defer server.Close()

			ctx := context.Background()
			reader, err := mf.NewHTTPReader(ctx, server.URL+"/test.map", mf.WithHTTPClient(server.Client()))
			require.NoError(t, err)
			defer reader.Close()

			require.Equal(t, uint32(len(file.data)), reader.FileInfo().FileSize)

			blocks := slices.Collect(reader.Blocks(ctx))
			require.Len(t, blocks, 103)
			require.Equal(t, []byte("block-10-1"), file.data[blocks[2].Location.Offset:blocks[2].Location.End()])
		})
	}
}

func TestHTTPReaderStatus(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, err := mf.NewHTTPReader(context.Background(), server.URL, mf.WithHTTPClient(server.Client()))
	require.ErrorContains(t, err, "404")
}

func TestHTTPReaderCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := mf.NewHTTPReader(ctx, server.URL, mf.WithHTTPClient(server.Client()))
	require.Truef(t, errors.Is(err, context.Canceled), "%v", err)
}

func TestReaderBlockIndexPastSubFile(t *testing.T) {
	header := testmap.Reference()
	header.BoundingBox = [4]int32{-80_000_000, -179_000_000, 80_000_000, 179_000_000}
	header.SubFiles = []testmap.SubFile{{BaseZoomLevel: 30, ZoomLevelMin: 0, ZoomLevelMax: 30}}
	filePath := filepath.Join(t.TempDir(), "test.map")
	require.NoError(t, os.WriteFile(filePath, testmap.File(header, [][]byte{make([]byte, 10)}), 0644))

	reader, err := mf.NewFileReader(context.Background(), filePath)
	require.NoError(t, err)
	defer reader.Close()

	err = reader.VisitBlocks(context.Background(), 30, func(mf.Block) error { return nil })
	require.Truef(t, errors.Is(err, spec.ErrTruncatedStream), "%v", err)
}

func TestReaderInvertedBoundingBox(t *testing.T) {
	header := testmap.Reference()
	header.BoundingBox = [4]int32{40_000_000, 40_000_000, 10_000_000, 10_000_000}
	header.SubFiles = []testmap.SubFile{{BaseZoomLevel: 6, ZoomLevelMin: 0, ZoomLevelMax: 21}}
	data := testmap.File(header, [][]byte{testmap.SubFileBody(make([]testmap.Block, 25), false)})

	reader, err := mf.NewReader(context.Background(), mf.BytesSource(data))
	require.NoError(t, err)

	var blocks []mf.Block
	err = reader.VisitAllBlocks(context.Background(), func(block mf.Block) error {
		blocks = append(blocks, block)
		return nil
	})
	require.NoError(t, err)
	require.Empty(t, blocks)
}

func TestFileReaderHeaderLengthPastEnd(t *testing.T) {
	data := testmap.Reference().Encode()
	binary.BigEndian.PutUint32(data[len(spec.Magic):], math.MaxInt32)
	filePath := filepath.Join(t.TempDir(), "test.map")
	require.NoError(t, os.WriteFile(filePath, data, 0644))

	_, err := mf.NewFileReader(context.Background(), filePath)
	require.Truef(t, errors.Is(err, spec.ErrTruncatedStream), "%v", err)
}

func TestFileSourceLength(t *testing.T) {
	source := mf.FileSource(bytes.NewReader([]byte("abcdef")))

	got, err := source(context.Background(), 2, math.MaxUint64)
	require.NoError(t, err)
	require.Equal(t, "cdef", string(got))

	got, err = source(context.Background(), math.MaxUint64, 4)
	require.NoError(t, err)
	require.Empty(t, got)

	got, err = source(context.Background(), 1, 3)
	require.NoError(t, err)
	require.Equal(t, "bcd", string(got))
}
