// Package metadata is the key/value slot of the local cache shared by the
// main application and the notification extension. Writes are
// last-writer-wins.
package metadata

import (
	"context"
)

type Repository interface {
	// Get returns (nil, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// ListPrefix and DeletePrefix read or drop every key starting with
	// prefix in a single statement.
	ListPrefix(ctx context.Context, prefix string) (map[string][]byte, error)
	DeletePrefix(ctx context.Context, prefix string) error
}
