package tile

import "github.com/google/hilbert"

// HilbertCode returns the position of the tile along a Hilbert curve over
// all tiles of its zoom level, offset by the tile count of lower zoom levels,
// so that codes are unique across zoom levels.
func HilbertCode(tileID ID) uint64 {
	h, _ := hilbert.NewHilbert(1 << tileID.Z)
	code, _ := h.MapInverse(int(tileID.X), int(tileID.Y))

	lowerTiles := (1<<(tileID.Z*2) - 1) / 3
	return uint64(code + lowerTiles)
}
