package repository

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/fonsecaaso/linkvault/go-server/internal/metrics"
)

const (
	titleKeyPrefix  = "title:"
	cacheOpTimeout  = 500 * time.Millisecond
	defaultCacheTTL = 24 * time.Hour
)

// TitleCache stores resolved page titles keyed by URL.
type TitleCache interface {
	Get(ctx context.Context, rawURL string) (title string, found bool, err error)
	Set(ctx context.Context, rawURL, title string) error
}

// RedisTitleCache is a cache-aside store for resolved titles. A nil client
// turns every call into a miss.
type RedisTitleCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisTitleCache(client *redis.Client, ttl time.Duration) *RedisTitleCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &RedisTitleCache{
		client: client,
		ttl:    ttl,
		logger: zap.L().With(zap.String("component", "RedisTitleCache")),
	}
}

// titleKey hashes the URL so arbitrary user input never becomes a raw redis key.
func titleKey(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return titleKeyPrefix + base64.RawURLEncoding.EncodeToString(sum[:])
}

func (c *RedisTitleCache) Get(ctx context.Context, rawURL string) (string, bool, error) {
	if c.client == nil {
		return "", false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()

	val, err := c.client.Get(ctx, titleKey(rawURL)).Result()
	if err == nil {
		metrics.CacheHitsTotal.WithLabelValues("title").Inc()
		c.logger.Debug("Title found in cache", zap.String("url", rawURL))
		return val, true, nil
	}

	metrics.CacheMissesTotal.WithLabelValues("title").Inc()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	return "", false, fmt.Errorf("%w: %v", ErrCacheError, err)
}

func (c *RedisTitleCache) Set(ctx context.Context, rawURL, title string) error {
	if c.client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()

	if err := c.client.Set(ctx, titleKey(rawURL), title, c.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheError, err)
	}
	return nil
}
