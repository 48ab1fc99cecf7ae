package spec

import "errors"

var (
	// ErrFormatMismatch is returned when the magic marker or another fixed
	// structure of the file does not match the expected value.
	ErrFormatMismatch = errors.New("mapsforge: format mismatch")

	// ErrTruncatedStream is returned when fewer bytes are available than a field requires.
	ErrTruncatedStream = errors.New("mapsforge: truncated stream")

	// ErrUnsupportedRange is returned when an 8-byte field needs more than 32 significant bits.
	ErrUnsupportedRange = errors.New("mapsforge: unsupported range")

	// ErrNoSubFileForZoomLevel is returned when no sub-file serves the requested zoom level.
	ErrNoSubFileForZoomLevel = errors.New("mapsforge: no sub-file for zoom level")
)
