package storage

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("storage: key not found")
	ErrClosed            = errors.New("storage: store is closed")
	ErrEmptyKey          = errors.New("storage: empty key")
	ErrNoPath            = errors.New("storage: path is required")
	ErrMalformedDocument = errors.New("storage: malformed document")
	ErrUnknownBackend    = errors.New("storage: unknown backend")
)

// BackendError reports an unsupported backend name.
type BackendError struct {
	Backend string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("storage: unknown backend %q", e.Backend)
}

func (e *BackendError) Unwrap() error {
	return ErrUnknownBackend
}
