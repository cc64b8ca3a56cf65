package ragkit

import "errors"

var (
	// ErrUnknownProvider is returned for a provider kind other than mock or openai.
	ErrUnknownProvider = errors.New("unknown AI provider")

	// ErrUnknownBackend is returned for a storage backend other than badger or sqlite.
	ErrUnknownBackend = errors.New("unknown storage backend")

	// ErrPathRequired is returned when a persistent database has no path.
	ErrPathRequired = errors.New("database path is required")
)
