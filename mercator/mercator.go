// Package mercator converts between geographic coordinates, pixel
// coordinates and tile indices in the spherical Mercator projection.
package mercator

import (
	"errors"
	"fmt"
	"math"
)

// TileSize is the width and height of a tile in pixels.
const TileSize = 256

// MaxZoomLevel is the highest zoom level the projection accepts.
const MaxZoomLevel = 30

var (
	ErrInvalidZoomLevel  = errors.New("mercator: invalid zoom level")
	ErrInvalidCoordinate = errors.New("mercator: invalid coordinate")
)

func checkZoom(zoom int) error {
	if zoom < 0 || zoom > MaxZoomLevel {
		return fmt.Errorf("%w: %d", ErrInvalidZoomLevel, zoom)
	}
	return nil
}

// MapSize returns the width and height of the world map in pixels.
func MapSize(zoom int) (uint64, error) {
	if err := checkZoom(zoom); err != nil {
		return 0, err
	}
	return TileSize << zoom, nil
}

func clamp(value, lo, hi float64) float64 {
	return math.Min(math.Max(value, lo), hi)
}

// LongitudeToPixelX returns the pixel X coordinate, clamped to [0, MapSize].
func LongitudeToPixelX(longitude float64, zoom int) (float64, error) {
	if math.IsNaN(longitude) {
		return 0, fmt.Errorf("%w: longitude is NaN", ErrInvalidCoordinate)
	}
	mapSize, err := MapSize(zoom)
	if err != nil {
		return 0, err
	}
	size := float64(mapSize)
	return clamp((longitude+180)/360*size, 0, size), nil
}

// LatitudeToPixelY returns the pixel Y coordinate, clamped to [0, MapSize].
func LatitudeToPixelY(latitude float64, zoom int) (float64, error) {
	if math.IsNaN(latitude) {
		return 0, fmt.Errorf("%w: latitude is NaN", ErrInvalidCoordinate)
	}
	mapSize, err := MapSize(zoom)
	if err != nil {
		return 0, err
	}
	size := float64(mapSize)
	sinLatitude := math.Sin(latitude * (math.Pi / 180))
	pixelY := (0.5 - math.Log((1+sinLatitude)/(1-sinLatitude))/(4*math.Pi)) * size
	return clamp(pixelY, 0, size), nil
}

func pixelToTile(pixel float64, zoom int) (uint32, error) {
	if err := checkZoom(zoom); err != nil {
		return 0, err
	}
	if math.IsNaN(pixel) {
		return 0, fmt.Errorf("%w: pixel is NaN", ErrInvalidCoordinate)
	}
	maxTile := float64(uint32(1)<<zoom - 1)
	return uint32(clamp(math.Floor(pixel/TileSize), 0, maxTile)), nil
}

// PixelXToTileX returns the tile column containing pixelX.
func PixelXToTileX(pixelX float64, zoom int) (uint32, error) {
	return pixelToTile(pixelX, zoom)
}

// PixelYToTileY returns the tile row containing pixelY.
func PixelYToTileY(pixelY float64, zoom int) (uint32, error) {
	return pixelToTile(pixelY, zoom)
}

func LongitudeToTileX(longitude float64, zoom int) (uint32, error) {
	pixelX, err := LongitudeToPixelX(longitude, zoom)
	if err != nil {
		return 0, err
	}
	return PixelXToTileX(pixelX, zoom)
}

func LatitudeToTileY(latitude float64, zoom int) (uint32, error) {
	pixelY, err := LatitudeToPixelY(latitude, zoom)
	if err != nil {
		return 0, err
	}
	return PixelYToTileY(pixelY, zoom)
}

// PixelXToLongitude is the inverse of LongitudeToPixelX.
// pixelX must lie within [0, MapSize].
func PixelXToLongitude(pixelX float64, zoom int) (float64, error) {
	mapSize, err := MapSize(zoom)
	if err != nil {
		return 0, err
	}
	size := float64(mapSize)
	if !(pixelX >= 0 && pixelX <= size) {
		return 0, fmt.Errorf("%w: pixelX %v at zoom level %d", ErrInvalidCoordinate, pixelX, zoom)
	}
	return 360 * ((pixelX / size) - 0.5), nil
}

// PixelYToLatitude is the inverse of LatitudeToPixelY.
// pixelY must lie within [0, MapSize].
func PixelYToLatitude(pixelY float64, zoom int) (float64, error) {
	mapSize, err := MapSize(zoom)
	if err != nil {
		return 0, err
	}
	size := float64(mapSize)
	if !(pixelY >= 0 && pixelY <= size) {
		return 0, fmt.Errorf("%w: pixelY %v at zoom level %d", ErrInvalidCoordinate, pixelY, zoom)
	}
	y := 0.5 - pixelY/size
	return 90 - 360*math.Atan(math.Exp(-y*2*math.Pi))/math.Pi, nil
}

// TileXToLongitude returns the longitude of the left edge of the tile column.
func TileXToLongitude(tileX uint32, zoom int) (float64, error) {
	return PixelXToLongitude(float64(tileX)*TileSize, zoom)
}

// TileYToLatitude returns the latitude of the top edge of the tile row.
func TileYToLatitude(tileY uint32, zoom int) (float64, error) {
	return PixelYToLatitude(float64(tileY)*TileSize, zoom)
}
