// Package metadata stores small named values (slots) for the client: the
// serialized session identity and the bearer token live here.
//
// Get returns (nil, nil) for an absent key. SetMany and DeleteMany are
// all-or-nothing so that related slots are never observed half-written.
package metadata

import (
	"context"
)

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetMany(ctx context.Context, values map[string][]byte) error
	Delete(ctx context.Context, key string) error
	DeleteMany(ctx context.Context, keys ...string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
