package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/riderschoice/riderschoice-backend/pkg/config"
	"github.com/riderschoice/riderschoice-backend/pkg/logger"
)

// namespace prefixes every key this service writes.
const namespace = "rc"

// Key joins parts under the service namespace, skipping blanks:
// Key("session", "abc") == "rc:session:abc".
func Key(parts ...string) string {
	out := make([]string, 0, len(parts)+1)
	out = append(out, namespace)
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ":")
}

type commands interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	PExpire(ctx context.Context, key string, ttl time.Duration) *redis.BoolCmd
}

// Client backs bearer sessions, idempotent replays and auth throttling.
type Client struct {
	cmd    commands
	closer func() error
}

func New(ctx context.Context, cfg config.RedisConfig, logg *logger.Logger) (*Client, error) {
	opts, err := options(cfg)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", opts.Addr, err)
	}
	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{"addr": opts.Addr, "db": opts.DB}), "redis connected")
	}
	return &Client{cmd: rdb, closer: rdb.Close}, nil
}

// options prefers RIDERS_REDIS_URL; pool and timeout settings fill whatever
// the URL leaves unset.
func options(cfg config.RedisConfig) (*redis.Options, error) {
	var opts *redis.Options
	switch {
	case cfg.URL != "":
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("redis: parse url: %w", err)
		}
		opts = parsed
	case cfg.Address != "":
		opts = &redis.Options{Addr: cfg.Address, Password: cfg.Password, DB: cfg.DB}
	default:
		return nil, errors.New("redis: url or address is required")
	}

	setIfZero(&opts.DB, cfg.DB)
	setIfZero(&opts.PoolSize, cfg.PoolSize)
	setIfZero(&opts.MinIdleConns, cfg.MinIdleConns)
	setIfZero(&opts.DialTimeout, cfg.DialTimeout)
	setIfZero(&opts.ReadTimeout, cfg.ReadTimeout)
	setIfZero(&opts.WriteTimeout, cfg.WriteTimeout)
	return opts, nil
}

func setIfZero[T comparable](dst *T, v T) {
	var zero T
	if *dst == zero {
		*dst = v
	}
}

func (c *Client) Ping(ctx context.Context) error {
	return c.cmd.Ping(ctx).Err()
}

func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}

// Lookup returns the value at key. A missing key is found=false with a nil
// error.
func (c *Client) Lookup(ctx context.Context, key string) (string, bool, error) {
	v, err := c.cmd.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (c *Client) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.cmd.Set(ctx, key, value, ttl).Err()
}

// PutIfAbsent stores value only when key is unset and reports whether it did.
func (c *Client) PutIfAbsent(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return c.cmd.SetNX(ctx, key, value, ttl).Result()
}

func (c *Client) Drop(ctx context.Context, keys ...string) error {
	return c.cmd.Del(ctx, keys...).Err()
}

// Hit counts one event in the fixed window that starts at the first hit and
// returns the running count.
func (c *Client) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	n, err := c.cmd.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 && window > 0 {
		if err := c.cmd.PExpire(ctx, key, window).Err(); err != nil {
			return n, fmt.Errorf("redis: expire %s: %w", key, err)
		}
	}
	return n, nil
}
