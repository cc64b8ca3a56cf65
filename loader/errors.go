package loader

import "errors"

var (
	// ErrUnsupportedFormat is returned for file extensions the loader cannot read.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrNoText is returned when a file yields no text after extraction.
	ErrNoText = errors.New("no text extracted")
)
