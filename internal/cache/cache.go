// Package cache stores detection results in Redis, keyed by the MD5 of the
// uploaded image bytes and a fingerprint of the parameters used.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ironsheep/shape-counter/internal/shapes"
)

const keyPrefix = "shapes:"

// Entry is a cached detection result.
type Entry struct {
	MD5       string         `json:"md5"`
	Backend   string         `json:"backend"`
	Params    shapes.Params  `json:"params"`
	Counts    shapes.Counts  `json:"counts"`
	Shapes    []shapes.Shape `json:"shapes"`
	Image     string         `json:"image_base64,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// RedisCache reads and writes Entry values.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// New creates a cache. The connection is lazy; use Ping to check it.
func New(opts Options, logger *zap.Logger) *RedisCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return &RedisCache{client: client, ttl: opts.TTL, logger: logger}
}

// Ping checks that the Redis server is reachable.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Get returns the entry stored under key, or (nil, nil) on a miss.
func (c *RedisCache) Get(ctx context.Context, key string) (*Entry, error) {
	data, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		c.logger.Error("failed to unmarshal cached result",
			zap.String("key", key), zap.Error(err))
		return nil, err
	}
	return &e, nil
}

// Set stores e under key for the configured TTL. A zero TTL keeps it forever.
func (c *RedisCache) Set(ctx context.Context, key string, e *Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, keyPrefix+key, data, c.ttl).Err()
}

// Key combines an image hash with the backend and parameters that shaped the
// result, so changing either misses the cache.
func Key(imageMD5, backend string, p shapes.Params) string {
	data, _ := json.Marshal(p)
	return imageMD5 + ":" + backend + ":" + BytesMD5(data)[:8]
}

// FileMD5 returns the hex MD5 of the file at path.
func FileMD5(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// BytesMD5 returns the hex MD5 of data.
func BytesMD5(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}
