package cache

import (
	"context"
	"errors"
	"time"

	"github.com/emrgen/lineage/internal/model"
	redis "github.com/redis/go-redis/v9"
)

const redirectTTL = 30 * 24 * time.Hour

func redirectKey(tree string, kind model.Kind) string {
	return "lineage:" + tree + ":redirect:" + string(kind)
}

var _ Redirects = (*RedisRedirects)(nil)

// RedisRedirects keeps one hash per tree and object kind, mapping titanic to phoenix handles.
type RedisRedirects struct {
	client *redis.Client
	tree   string
}

func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "", // No password set
		DB:       0,  // Use default DB
		Protocol: 2,  // Connection protocol
	})
}

func NewRedisRedirects(client *redis.Client, tree string) *RedisRedirects {
	return &RedisRedirects{client: client, tree: tree}
}

func (r *RedisRedirects) Set(ctx context.Context, kind model.Kind, from, to string) error {
	key := redirectKey(r.tree, kind)
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		if err := p.HSet(ctx, key, from, to).Err(); err != nil {
			return err
		}

		return p.Expire(ctx, key, redirectTTL).Err()
	})

	return err
}

func (r *RedisRedirects) Lookup(ctx context.Context, kind model.Kind, from string) (string, error) {
	res := r.client.HGet(ctx, redirectKey(r.tree, kind), from)
	if errors.Is(res.Err(), redis.Nil) {
		return "", ErrNoRedirect
	}
	if res.Err() != nil {
		return "", res.Err()
	}

	return res.Val(), nil
}

func (r *RedisRedirects) Delete(ctx context.Context, kind model.Kind, from string) error {
	return r.client.HDel(ctx, redirectKey(r.tree, kind), from).Err()
}
