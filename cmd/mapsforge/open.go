package main

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/eak1mov/go-mapsforge/mf"
)

var errMissingInput = errors.New("missing input path")

// openReader opens a local map file, or fetches one over HTTP when the
// input looks like a URL.
func openReader(ctx context.Context, input string) (mf.Reader, error) {
	if input == "" {
		return nil, errMissingInput
	}
	logger := slog.Default()
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		return mf.NewHTTPReader(ctx, input, mf.WithLogger(logger))
	}
	return mf.NewFileReader(ctx, input, mf.WithLogger(logger))
}
