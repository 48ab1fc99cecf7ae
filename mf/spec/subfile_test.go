package spec_test

import (
	"errors"
	"testing"

	"github.com/eak1mov/go-mapsforge/internal/testmap"
	"github.com/eak1mov/go-mapsforge/mf/spec"
	"github.com/eak1mov/go-mapsforge/tile"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func decodeReference(t *testing.T, modify func(*testmap.Header)) *spec.FileInfo {
	t.Helper()
	header := testmap.Reference()
	if modify != nil {
		modify(&header)
	}
	fi, err := spec.DecodeFileInfo(spec.NewCursor(header.Encode()))
	require.NoError(t, err)
	return fi
}

func TestSubFileParameters(t *testing.T) {
	fi := decodeReference(t, func(h *testmap.Header) {
		h.SubFiles[0].StartAddress = 200
		h.SubFiles[0].SubFileSize = 100
		h.SubFiles[1].StartAddress = 300
		h.SubFiles[1].SubFileSize = 150
		h.SubFiles[2].StartAddress = 450
		h.SubFiles[2].SubFileSize = 259
	})

	want := []spec.SubFileParameter{
		{
			BaseZoomLevel: 5, ZoomLevelMin: 0, ZoomLevelMax: 7,
			StartAddress: 200, SubFileSize: 100,
			IndexStartAddress: 200, IndexEndAddress: 205,
			BoundaryTileLeft: 16, BoundaryTileRight: 16,
			BoundaryTileTop: 15, BoundaryTileBottom: 15,
			BlocksWidth: 1, BlocksHeight: 1, NumberOfBlocks: 1,
		},
		{
			BaseZoomLevel: 10, ZoomLevelMin: 8, ZoomLevelMax: 11,
			StartAddress: 300, SubFileSize: 150,
			IndexStartAddress: 300, IndexEndAddress: 310,
			BoundaryTileLeft: 512, BoundaryTileRight: 513,
			BoundaryTileTop: 511, BoundaryTileBottom: 511,
			BlocksWidth: 2, BlocksHeight: 1, NumberOfBlocks: 2,
		},
		{
			BaseZoomLevel: 14, ZoomLevelMin: 12, ZoomLevelMax: 21,
			StartAddress: 450, SubFileSize: 259,
			IndexStartAddress: 450, IndexEndAddress: 950,
			BoundaryTileLeft: 8201, BoundaryTileRight: 8210,
			BoundaryTileTop: 8178, BoundaryTileBottom: 8187,
			BlocksWidth: 10, BlocksHeight: 10, NumberOfBlocks: 100,
		},
	}
	if diff := cmp.Diff(want, fi.SubFiles.SubFiles); diff != "" {
		t.Errorf("SubFiles mismatch (-want+got):\n%v", diff)
	}
	require.Equal(t, uint8(0), fi.SubFiles.ZoomLevelMin)
	require.Equal(t, uint8(21), fi.SubFiles.ZoomLevelMax)

	for _, p := range fi.SubFiles.SubFiles {
		require.Equal(t, p.IndexStartAddress+p.NumberOfBlocks*spec.BlockIndexEntryLength, p.IndexEndAddress)
	}
}

func TestDebugFileIndexStart(t *testing.T) {
	fi := decodeReference(t, func(h *testmap.Header) {
		h.Flags |= 0x80
		h.SubFiles[0].StartAddress = 200
	})
	require.True(t, fi.DebugFile())
	p := fi.SubFiles.SubFiles[0]
	require.Equal(t, int64(216), p.IndexStartAddress)
	require.Equal(t, int64(221), p.IndexEndAddress)
}

func TestLocateMapData(t *testing.T) {
	fi := decodeReference(t, func(h *testmap.Header) {
		h.SubFiles = []testmap.SubFile{
			{BaseZoomLevel: 6, ZoomLevelMin: 6, ZoomLevelMax: 7, StartAddress: 200, SubFileSize: 64},
			{BaseZoomLevel: 10, ZoomLevelMin: 8, ZoomLevelMax: 11, StartAddress: 264, SubFileSize: 32},
		}
	})

	for _, tc := range []struct {
		zoom int
		want tile.Location
	}{
		{zoom: 6, want: tile.Location{Offset: 200, Length: 64}},
		{zoom: 7, want: tile.Location{Offset: 200, Length: 64}},
		{zoom: 0, want: tile.Location{Offset: 200, Length: 64}},
		{zoom: -3, want: tile.Location{Offset: 200, Length: 64}},
		{zoom: 9, want: tile.Location{Offset: 264, Length: 32}},
		{zoom: 18, want: tile.Location{Offset: 264, Length: 32}},
	} {
		got, err := fi.LocateMapData(tc.zoom)
		require.NoErrorf(t, err, "zoom %d", tc.zoom)
		require.Equalf(t, tc.want, got, "zoom %d", tc.zoom)
	}
}

func TestLocateMapDataFirstMatchWins(t *testing.T) {
	fi := decodeReference(t, func(h *testmap.Header) {
		h.SubFiles = []testmap.SubFile{
			{BaseZoomLevel: 6, ZoomLevelMin: 4, ZoomLevelMax: 9, StartAddress: 100, SubFileSize: 10},
			{BaseZoomLevel: 8, ZoomLevelMin: 7, ZoomLevelMax: 12, StartAddress: 110, SubFileSize: 10},
		}
	})
	got, err := fi.LocateMapData(8)
	require.NoError(t, err)
	require.Equal(t, uint64(100), got.Offset)
}

func TestLocateMapDataGap(t *testing.T) {
	fi := decodeReference(t, func(h *testmap.Header) {
		h.SubFiles = []testmap.SubFile{
			{BaseZoomLevel: 3, ZoomLevelMin: 2, ZoomLevelMax: 4},
			{BaseZoomLevel: 9, ZoomLevelMin: 8, ZoomLevelMax: 10},
		}
	})
	_, err := fi.LocateMapData(6)
	require.Truef(t, errors.Is(err, spec.ErrNoSubFileForZoomLevel), "%v", err)

	empty := decodeReference(t, func(h *testmap.Header) { h.SubFiles = nil })
	_, err = empty.LocateMapData(0)
	require.Truef(t, errors.Is(err, spec.ErrNoSubFileForZoomLevel), "%v", err)
}

func TestInvalidBaseZoomLevel(t *testing.T) {
	header := testmap.Reference()
	header.SubFiles[2].BaseZoomLevel = 200
	_, err := spec.DecodeFileInfo(spec.NewCursor(header.Encode()))
	require.Error(t, err)
}

func TestBlockTile(t *testing.T) {
	p := spec.SubFileParameter{
		BaseZoomLevel:    14,
		BoundaryTileLeft: 8201,
		BoundaryTileTop:  8178,
		BlocksWidth:      10,
		BlocksHeight:     10,
	}
	require.Equal(t, tile.ID{X: 8201, Y: 8178, Z: 14}, p.BlockTile(0))
	require.Equal(t, tile.ID{X: 8210, Y: 8178, Z: 14}, p.BlockTile(9))
	require.Equal(t, tile.ID{X: 8203, Y: 8181, Z: 14}, p.BlockTile(32))
}

func TestInvertedBoundingBox(t *testing.T) {
	fi := decodeReference(t, func(h *testmap.Header) {
		h.BoundingBox = [4]int32{40_000_000, 40_000_000, 10_000_000, 10_000_000}
		h.SubFiles = []testmap.SubFile{{BaseZoomLevel: 6, ZoomLevelMin: 0, ZoomLevelMax: 21}}
	})
	p := fi.SubFiles.SubFiles[0]
	require.Equal(t, int64(-5), p.BlocksWidth)
	require.Equal(t, int64(-5), p.BlocksHeight)
	require.Equal(t, int64(25), p.NumberOfBlocks)
	require.False(t, p.HasBlocks())

	fi = decodeReference(t, nil)
	require.True(t, fi.SubFiles.SubFiles[0].HasBlocks())
}
