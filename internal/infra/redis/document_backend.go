package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"restart50-service/internal/store"
)

// DocumentBackend keeps each document as one string value:
// SET restart:doc:{name} {json}
type DocumentBackend struct {
	client *redis.Client
}

func NewDocumentBackend(client *redis.Client) *DocumentBackend {
	return &DocumentBackend{client: client}
}

func (b *DocumentBackend) Load(ctx context.Context, name string) ([]byte, error) {
	data, err := b.client.Get(ctx, b.key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, store.ErrNotFound
	}
	return data, err
}

func (b *DocumentBackend) Save(ctx context.Context, name string, data []byte) error {
	return b.client.Set(ctx, b.key(name), data, 0).Err()
}

func (b *DocumentBackend) key(name string) string {
	return "restart:doc:" + name
}
