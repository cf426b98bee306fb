package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"consumer-flex-app/internal/transform"
)

// ErrMiss indicates no cached result is present.
var ErrMiss = errors.New("cache: miss")

const resultKey = "dfswatch:result"

// Cache defines result cache operations.
type Cache interface {
	StoreResult(ctx context.Context, result *transform.Result) error
	LoadResult(ctx context.Context) (*transform.Result, error)
}

// Options parameterise the result cache.
type Options struct {
	URL string
	TTL time.Duration
}

// ResultCache keeps the computed result tables between refreshes so readers
// do not hit the portal more than once per TTL.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// New connects to redis from a URL ("redis://host:6379/0").
func New(opts Options, logger zerolog.Logger) (*ResultCache, error) {
	if opts.URL == "" {
		return nil, errors.New("cache url is required")
	}
	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parse cache url: %w", err)
	}

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &ResultCache{
		client: redis.NewClient(redisOpts),
		ttl:    ttl,
		logger: logger.With().Str("component", "result_cache").Logger(),
	}, nil
}

// StoreResult caches the encoded result under the configured TTL.
func (c *ResultCache) StoreResult(ctx context.Context, result *transform.Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if err := c.client.Set(ctx, resultKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("store result: %w", err)
	}
	c.logger.Debug().Int("bytes", len(data)).Dur("ttl", c.ttl).Msg("result cached")
	return nil
}

// LoadResult returns the cached result, or ErrMiss when absent or expired.
func (c *ResultCache) LoadResult(ctx context.Context) (*transform.Result, error) {
	data, err := c.client.Get(ctx, resultKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("load result: %w", err)
	}

	var result transform.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode cached result: %w", err)
	}
	return &result, nil
}

// Close releases the client.
func (c *ResultCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

var _ Cache = (*ResultCache)(nil)
