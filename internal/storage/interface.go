package storage

import "context"

// Storage is a small key/value store for client state that outlives the
// process. Get returns model.ErrKeyNotFound for missing keys.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}
