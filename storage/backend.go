package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by [Backend.Load] when no record is stored.
	ErrNotFound = errors.New("storage record not found")
	// ErrUnavailable wraps I/O failures of the underlying medium.
	ErrUnavailable = errors.New("storage unavailable")
	// ErrClosed is returned after [Backend.Close].
	ErrClosed = errors.New("storage closed")
)

// Backend is a single durable record. Implementations must be safe for
// concurrent use.
type Backend interface {
	// Load returns the stored bytes or ErrNotFound.
	Load(ctx context.Context) ([]byte, error)
	// Save replaces the stored bytes.
	Save(ctx context.Context, data []byte) error
	// Remove deletes the record. Removing an absent record is not an error.
	Remove(ctx context.Context) error
	Close() error
}
