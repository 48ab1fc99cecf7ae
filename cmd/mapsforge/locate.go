package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/google/subcommands"
)

type locateCmd struct {
	inputPath string
	zoom      int
}

func (c *locateCmd) Name() string     { return "locate" }
func (c *locateCmd) Synopsis() string { return "print the byte range of the sub-file serving a zoom level" }
func (c *locateCmd) Usage() string {
	return "mapsforge locate -i <path|url> -z <zoom>\n"
}
func (c *locateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.inputPath, "i", "", "Input file path or URL")
	f.IntVar(&c.zoom, "z", 0, "Zoom level")
}

func (c *locateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	reader, err := openReader(ctx, c.inputPath)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	defer reader.Close()

	location, err := reader.LocateMapData(c.zoom)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	fmt.Printf("%d %d\n", location.Offset, location.Length)
	return subcommands.ExitSuccess
}
