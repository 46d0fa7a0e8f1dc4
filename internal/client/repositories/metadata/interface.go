// Package metadata is the local key/value store of the client. It holds
// small opaque values such as the persisted bearer token.
package metadata

import (
	"context"
	"time"
)

// KeyAccessToken holds the persisted bearer token.
const KeyAccessToken = "access_token"

type Repository interface {
	// Get returns common.ErrorNotFound when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete succeeds when the key is absent.
	Delete(ctx context.Context, key string) error
	UpdatedAt(ctx context.Context, key string) (time.Time, error)
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
