// Package redis wraps the go-redis client with the small surface the API
// layer needs: namespaced keys, SetNX for idempotency claims, and a ping
// for readiness checks.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/granduer/granduer-backend/pkg/config"
	pkgerrors "github.com/granduer/granduer-backend/pkg/errors"
)

const keyNamespace = "granduer"

type Client struct {
	rdb *redis.Client
}

func New(cfg config.RedisConfig) (*Client, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{rdb: redis.NewClient(opts)}, nil
}

func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	var opts *redis.Options
	switch {
	case cfg.URL != "":
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parse redis url")
		}
		opts = parsed
	case cfg.Address != "":
		opts = &redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	default:
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "redis address is not configured")
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout
	return opts, nil
}

// IdempotencyKey builds the storage key for a client-supplied idempotency
// token scoped to a route.
func IdempotencyKey(route, token string) string {
	return fmt.Sprintf("%s:idempotency:%s:%s", keyNamespace, route, token)
}

func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "redis set")
	}
	return nil
}

// Get returns the value for key, or (nil, nil) when the key is absent.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "redis get")
	}
	return val, nil
}

// SetNX claims key atomically. It reports false when another request
// already holds the claim.
func (c *Client) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "redis setnx")
	}
	return ok, nil
}

func (c *Client) Del(ctx context.Context, keys ...string) error {
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "redis del")
	}
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "redis ping")
	}
	return nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
