package mb

import (
	"fmt"
	"strconv"

	"github.com/eak1mov/go-mapsforge/mf/spec"
)

// BlockFormat is the value of the "format" metadata key for exported blocks.
const BlockFormat = "mapsforge-block"

// Metadata describes an exported map file with MBTiles metadata keys.
func Metadata(name string, fileInfo *spec.FileInfo) map[string]string {
	bound := fileInfo.BoundingBox.Bound()
	metadata := map[string]string{
		"name":    name,
		"format":  BlockFormat,
		"version": strconv.Itoa(int(fileInfo.FileVersion)),
		"bounds": fmt.Sprintf("%g,%g,%g,%g",
			bound.Min.Lon(), bound.Min.Lat(), bound.Max.Lon(), bound.Max.Lat()),
		"minzoom": strconv.Itoa(int(fileInfo.SubFiles.ZoomLevelMin)),
		"maxzoom": strconv.Itoa(int(fileInfo.SubFiles.ZoomLevelMax)),
	}

	if pos := fileInfo.StartPosition; pos != nil {
		zoom := fileInfo.SubFiles.ZoomLevelMin
		if fileInfo.StartZoomLevel != nil {
			zoom = *fileInfo.StartZoomLevel
		}
		center := pos.Point()
		metadata["center"] = fmt.Sprintf("%g,%g,%d", center.Lon(), center.Lat(), zoom)
	}
	if fileInfo.Comment != nil {
		metadata["description"] = *fileInfo.Comment
	}
	if fileInfo.CreatedBy != nil {
		metadata["generator"] = *fileInfo.CreatedBy
	}
	return metadata
}
