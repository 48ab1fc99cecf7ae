package main

import (
	"bufio"
	"cmp"
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/eak1mov/go-mapsforge/index"
	"github.com/eak1mov/go-mapsforge/mb"
	"github.com/eak1mov/go-mapsforge/mf"
	"github.com/eak1mov/go-mapsforge/tile"
	"github.com/google/subcommands"
	"github.com/schollz/progressbar/v3"
)

type exportIndexCmd struct {
	inputPath  string
	outputPath string
	hilbert    bool
}

func (c *exportIndexCmd) Name() string     { return "export_index" }
func (c *exportIndexCmd) Synopsis() string { return "export the block index of all sub-files" }
func (c *exportIndexCmd) Usage() string {
	return "mapsforge export_index -i <path|url> -o <path> [-hilbert]\n"
}
func (c *exportIndexCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.inputPath, "i", "", "Input file path or URL")
	f.StringVar(&c.outputPath, "o", "", "Output index file path")
	f.BoolVar(&c.hilbert, "hilbert", false, "Order records along a Hilbert curve instead of index order")
}

func collectIndexItems(ctx context.Context, reader mf.Reader) ([]index.Item, error) {
	items := make([]index.Item, 0)
	bar := progressbar.NewOptions(-1, progressbar.OptionShowIts(), progressbar.OptionShowCount())
	err := reader.VisitAllBlocks(ctx, func(block mf.Block) error {
		item := index.Item{
			X:      block.Tile.X,
			Y:      block.Tile.Y,
			Z:      block.Tile.Z,
			Length: uint32(block.Location.Length),
			Offset: block.Location.Offset,
		}
		if block.Water {
			item.Flags |= index.FlagWater
		}
		items = append(items, item)
		return bar.Add(1)
	})
	bar.Finish()
	fmt.Fprintln(os.Stderr)
	return items, err
}

func sortHilbert(items []index.Item) {
	slices.SortStableFunc(items, func(a, b index.Item) int {
		return cmp.Compare(tile.HilbertCode(a.TileID()), tile.HilbertCode(b.TileID()))
	})
}

func (c *exportIndexCmd) writeIndex(items []index.Item) error {
	file, err := os.Create(c.outputPath)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if err := index.WriteAll(items, writer); err != nil {
		return err
	}
	if err := writer.Flush(); err != nil {
		return err
	}
	return file.Close()
}

func (c *exportIndexCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	reader, err := openReader(ctx, c.inputPath)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	defer reader.Close()

	items, err := collectIndexItems(ctx, reader)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	if c.hilbert {
		sortHilbert(items)
	}
	slog.Debug("mapsforge: writing index", "items", len(items), "path", c.outputPath)

	if err := c.writeIndex(items); err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type exportBlocksCmd struct {
	inputPath  string
	outputPath string
	name       string
}

func (c *exportBlocksCmd) Name() string     { return "export_blocks" }
func (c *exportBlocksCmd) Synopsis() string { return "store the raw blocks of all sub-files in an mbtiles file" }
func (c *exportBlocksCmd) Usage() string {
	return "mapsforge export_blocks -i <path|url> -o <path> [-name <name>]\n"
}
func (c *exportBlocksCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.inputPath, "i", "", "Input file path or URL")
	f.StringVar(&c.outputPath, "o", "", "Output mbtiles file path")
	f.StringVar(&c.name, "name", "", "Tileset name (default: input file name)")
}

func exportBlocks(ctx context.Context, reader mf.Reader, writer tile.Writer) error {
	bar := progressbar.NewOptions(-1, progressbar.OptionShowIts(), progressbar.OptionShowCount())
	defer fmt.Fprintln(os.Stderr)
	defer bar.Finish()

	err := reader.VisitAllBlocks(ctx, func(block mf.Block) error {
		blockData, err := reader.ReadBlock(ctx, block)
		if err != nil {
			return err
		}
		if err := writer.WriteBlock(block.Tile, blockData, block.Water); err != nil {
			return err
		}
		return bar.Add(1)
	})
	if err != nil {
		return err
	}
	return writer.Finalize()
}

func (c *exportBlocksCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	reader, err := openReader(ctx, c.inputPath)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	defer reader.Close()

	name := c.name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(c.inputPath), filepath.Ext(c.inputPath))
	}

	writer, err := mb.NewWriter(
		c.outputPath,
		mb.WithMetadata(mb.Metadata(name, reader.FileInfo())),
		mb.WithLogger(slog.Default()),
	)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	defer writer.Close()

	if err := exportBlocks(ctx, reader, writer); err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
