// Package persist stores and retrieves collection snapshots.
//
// A snapshot is an opaque byte slice kept under one well-known key. Every
// backend replaces the previous snapshot wholesale on save.
//
// Backends:
//   - file: a JSON file replaced atomically (default)
//   - redis: a single key
//   - postgres, mysql: a single row in a snapshots table
//   - memory: in-process, for tests and throwaway sessions
package persist

import (
	"context"
	"errors"
)

// ErrNoSnapshot is returned by LoadSnapshot when nothing has been saved yet.
var ErrNoSnapshot = errors.New("no snapshot stored")

// Backend is the persistence collaborator of the task store.
type Backend interface {
	// SaveSnapshot stores data, replacing any previous snapshot.
	SaveSnapshot(ctx context.Context, data []byte) error
	// LoadSnapshot returns the stored snapshot or ErrNoSnapshot.
	LoadSnapshot(ctx context.Context) ([]byte, error)
	// Describe returns a human-readable location, with secrets masked.
	Describe() string
	Close() error
}
