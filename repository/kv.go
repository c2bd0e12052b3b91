package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// IKVRepository is the durable slug -> URL map. Values never expire.
type IKVRepository interface {
	Put(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (string, bool, error)
	Delete(ctx context.Context, key string) error
	// PutIfAbsent writes only when key is unset and reports whether it wrote.
	PutIfAbsent(ctx context.Context, key, value string) (bool, error)
}

type KVRepository struct {
	rdb       *redis.Client
	namespace string
}

func NewKVRepository(rdb *redis.Client, namespace string) IKVRepository {
	return &KVRepository{rdb: rdb, namespace: namespace}
}

func (r *KVRepository) key(k string) string {
	return fmt.Sprintf("%s:%s", r.namespace, k)
}

func (r *KVRepository) Put(ctx context.Context, key, value string) error {
	return r.rdb.Set(ctx, r.key(key), value, 0).Err()
}

func (r *KVRepository) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.rdb.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (r *KVRepository) Delete(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, r.key(key)).Err()
}

func (r *KVRepository) PutIfAbsent(ctx context.Context, key, value string) (bool, error) {
	return r.rdb.SetNX(ctx, r.key(key), value, 0).Result()
}
