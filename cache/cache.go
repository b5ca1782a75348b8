package cache

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrNotFound   = errors.New("key not found in cache")
	ErrInvalidKey = errors.New("invalid cache key")
)

// Store persists raw source payloads keyed by source and year.
// Put must be atomic: a reader never observes a partially written value.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)

	Put(ctx context.Context, key string, data []byte) error

	Exists(ctx context.Context, key string) (bool, error)

	Close() error
}

// validateKey rejects keys that could escape a backend's namespace.
func validateKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return ErrInvalidKey
	}
	return nil
}
