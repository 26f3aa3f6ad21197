package redisstore

import (
	"context"

	redisClient "github.com/go-redis/redis"

	"github.com/alextreichler/humbleautos/internal/store"
)

// Store keeps durable client storage in Redis under a key prefix.
type Store struct {
	client *redisClient.Client
	prefix string
}

func New(host string, prefix string) (*Store, error) {
	client := redisClient.NewClient(&redisClient.Options{Addr: host})
	if err := client.Ping().Err(); err != nil {
		client.Close()
		return nil, err
	}
	return &Store{client: client, prefix: prefix}, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.WithContext(ctx).Get(s.prefix + key).Bytes()
	if err == redisClient.Nil {
		return nil, store.ErrNotFound
	}
	return data, err
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.client.WithContext(ctx).Set(s.prefix+key, value, 0).Err()
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.client.WithContext(ctx).Del(s.prefix + key).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}
