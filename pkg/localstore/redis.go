package localstore

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/angelmondragon/craftbazaar/pkg/errors"
	"github.com/angelmondragon/craftbazaar/pkg/redis"
)

// Redis keeps guest values in redis under cb:local:<namespace>:<key>.
// Every write refreshes the TTL so idle guest sessions expire.
type Redis struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
}

func NewRedis(client *redis.Client, namespace string, ttl time.Duration) (*Redis, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if namespace == "" {
		namespace = "default"
	}
	return &Redis{client: client, namespace: namespace, ttl: ttl}, nil
}

func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, r.client.LocalKey(r.namespace, key))
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read local value")
	}
	return value, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.client.LocalKey(r.namespace, key), value, r.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write local value")
	}
	return nil
}

func (r *Redis) Del(ctx context.Context, keys ...string) error {
	full := make([]string, 0, len(keys))
	for _, key := range keys {
		full = append(full, r.client.LocalKey(r.namespace, key))
	}
	if err := r.client.Del(ctx, full...); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete local values")
	}
	return nil
}
