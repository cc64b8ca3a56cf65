package chunk

import "errors"

var (
	// ErrUnknownStrategy is returned by New for an unrecognized strategy name.
	ErrUnknownStrategy = errors.New("unknown chunking strategy")

	// ErrInvalidOverlap is returned when the overlap is not smaller than the chunk size.
	ErrInvalidOverlap = errors.New("chunk overlap must be smaller than chunk size")
)
