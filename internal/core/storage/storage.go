// Package storage persists the simulation document in a key-value store.
package storage

import (
	"context"
)

// KV is a byte-oriented key-value store. Read returns ErrNotFound for a
// missing key; Delete of a missing key is not an error.
type KV interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Open creates a KV for the named backend. path is a directory for the file
// backend and a database file for sqlite; memory ignores it.
func Open(backend, path string) (KV, error) {
	switch backend {
	case BackendMemory:
		return NewMemory(), nil
	case BackendFile:
		return NewFile(path)
	case BackendSQLite:
		return NewSQLite(path)
	default:
		return nil, &BackendError{Backend: backend}
	}
}
