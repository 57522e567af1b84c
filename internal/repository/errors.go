package repository

import "errors"

// Sentinel errors shared by every storage adapter. Adapters translate their
// driver-level failures into these so callers can errors.Is regardless of the
// backing store.
var (
	ErrNotFound           = errors.New("record not found")
	ErrDuplicateKey       = errors.New("duplicate key")
	ErrBackendUnavailable = errors.New("storage backend unavailable")
)
