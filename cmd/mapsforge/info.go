package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/eak1mov/go-mapsforge/mf/spec"
	"github.com/google/subcommands"
)

type infoCmd struct {
	inputPath string
	showTags  bool
}

func (c *infoCmd) Name() string     { return "info" }
func (c *infoCmd) Synopsis() string { return "print the header of a map file" }
func (c *infoCmd) Usage() string {
	return "mapsforge info -i <path|url> [-tags]\n"
}
func (c *infoCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.inputPath, "i", "", "Input file path or URL")
	f.BoolVar(&c.showTags, "tags", false, "Print POI and way tags")
}

func printFileInfo(w io.Writer, fi *spec.FileInfo, showTags bool) {
	bbox := fi.BoundingBox
	fmt.Fprintf(w, "file version:     %d\n", fi.FileVersion)
	fmt.Fprintf(w, "file size:        %d\n", fi.FileSize)
	fmt.Fprintf(w, "map date:         %v\n", fi.MapTime())
	fmt.Fprintf(w, "bounding box:     %g,%g,%g,%g\n", bbox.MinLatitude, bbox.MinLongitude, bbox.MaxLatitude, bbox.MaxLongitude)
	fmt.Fprintf(w, "tile pixel size:  %d\n", fi.TilePixelSize)
	fmt.Fprintf(w, "projection:       %s\n", fi.ProjectionName)
	fmt.Fprintf(w, "debug file:       %v\n", fi.DebugFile())
	if p := fi.StartPosition; p != nil {
		fmt.Fprintf(w, "start position:   %g,%g\n", p.Latitude, p.Longitude)
	}
	if z := fi.StartZoomLevel; z != nil {
		fmt.Fprintf(w, "start zoom level: %d\n", *z)
	}
	if s := fi.LanguagePreference; s != nil {
		fmt.Fprintf(w, "language:         %s\n", *s)
	}
	if s := fi.Comment; s != nil {
		fmt.Fprintf(w, "comment:          %s\n", *s)
	}
	if s := fi.CreatedBy; s != nil {
		fmt.Fprintf(w, "created by:       %s\n", *s)
	}
	fmt.Fprintf(w, "poi tags:         %d\n", len(fi.PoiTags))
	fmt.Fprintf(w, "way tags:         %d\n", len(fi.WayTags))
	if showTags {
		fmt.Fprintf(w, "  poi: %s\n", strings.Join(fi.PoiTags, " "))
		fmt.Fprintf(w, "  way: %s\n", strings.Join(fi.WayTags, " "))
	}
	fmt.Fprintf(w, "zoom levels:      %d-%d\n", fi.SubFiles.ZoomLevelMin, fi.SubFiles.ZoomLevelMax)
	for i, p := range fi.SubFiles.SubFiles {
		fmt.Fprintf(w, "sub-file %d: base zoom %d, zoom %d-%d, start %d, size %d, blocks %dx%d\n",
			i, p.BaseZoomLevel, p.ZoomLevelMin, p.ZoomLevelMax, p.StartAddress, p.SubFileSize, p.BlocksWidth, p.BlocksHeight)
	}
}

func (c *infoCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	reader, err := openReader(ctx, c.inputPath)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	defer reader.Close()

	printFileInfo(os.Stdout, reader.FileInfo(), c.showTags)
	return subcommands.ExitSuccess
}
