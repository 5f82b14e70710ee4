package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/simon020286/go-flow/models"
)

// RedisStore keeps integrations in Redis:
//
//	<prefix>integration:<id>  => JSON document
//	<prefix>idx:all           => SET of all integration IDs
type RedisStore struct {
	client *redis.Client
	prefix string
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a RedisStore. prefix defaults to "flow:"
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "flow:"
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

func (s *RedisStore) keyIntegration(id string) string {
	return s.prefix + "integration:" + id
}

func (s *RedisStore) keyAll() string {
	return s.prefix + "idx:all"
}

func (s *RedisStore) UpdateOrCreate(ctx context.Context, integration *models.Integration) (*models.Integration, error) {
	res, err := prepare(integration)
	if err != nil {
		return nil, err
	}
	doc, err := encode(res)
	if err != nil {
		return nil, err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.keyIntegration(res.ID), doc, 0)
	pipe.SAdd(ctx, s.keyAll(), res.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*models.Integration, error) {
	data, err := s.client.Get(ctx, s.keyIntegration(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrIntegrationNotFound
		}
		return nil, err
	}
	return decode(data)
}

func (s *RedisStore) List(ctx context.Context) ([]*models.Integration, error) {
	ids, err := s.client.SMembers(ctx, s.keyAll()).Result()
	if err != nil {
		return nil, err
	}

	res := make([]*models.Integration, 0, len(ids))
	for _, id := range ids {
		integration, err := s.Get(ctx, id)
		if errors.Is(err, ErrIntegrationNotFound) {
			// stale index entry
			continue
		}
		if err != nil {
			return nil, err
		}
		res = append(res, integration)
	}
	sortIntegrations(res)
	return res, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, s.keyIntegration(id)).Result()
	if err != nil {
		return err
	}
	_ = s.client.SRem(ctx, s.keyAll(), id).Err()
	if n == 0 {
		return ErrIntegrationNotFound
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
