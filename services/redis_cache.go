package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"socialfeed/feed"
	"socialfeed/logger"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	gobreaker "github.com/sony/gobreaker/v2"
)

const scanBatch = 500

var (
	cacheBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "feed_cache_breaker_state",
			Help: "Cache circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)
)

// RedisFeedCache - общий кеш страниц ленты в Redis. Все операции идут через circuit breaker:
// при открытом breaker кеш сразу отвечает ошибкой, а движок считает это промахом
type RedisFeedCache struct {
	client *redis.Client
	cb     *gobreaker.CircuitBreaker[[]byte]
}

func NewRedisFeedCache(client *redis.Client) *RedisFeedCache {
	const name = "feed-cache-redis"
	cacheBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// отсутствие ключа - нормальный ответ
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, feed.ErrCacheMiss)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Log.WithField("breaker", name).
				WithField("from", from.String()).
				WithField("to", to.String()).
				Warn("cache circuit breaker state changed")
			cacheBreakerState.WithLabelValues(name).Set(float64(to))
		},
	})
	return &RedisFeedCache{client: client, cb: cb}
}

func (c *RedisFeedCache) Get(ctx context.Context, key string) ([]byte, error) {
	return c.cb.Execute(func() ([]byte, error) {
		data, err := c.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, feed.ErrCacheMiss
		}
		return data, err
	})
}

func (c *RedisFeedCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := c.cb.Execute(func() ([]byte, error) {
		return nil, c.client.Set(ctx, key, value, ttl).Err()
	})
	return err
}

func (c *RedisFeedCache) Delete(ctx context.Context, key string) error {
	_, err := c.cb.Execute(func() ([]byte, error) {
		return nil, c.client.Del(ctx, key).Err()
	})
	return err
}

// DeleteByPrefix проходит SCAN по шаблону и удаляет найденные ключи пачками
func (c *RedisFeedCache) DeleteByPrefix(ctx context.Context, prefix string) error {
	match := globEscaper.Replace(prefix) + "*"
	_, err := c.cb.Execute(func() ([]byte, error) {
		var cursor uint64
		for {
			keys, next, err := c.client.Scan(ctx, cursor, match, scanBatch).Result()
			if err != nil {
				return nil, err
			}
			if len(keys) > 0 {
				if err := c.client.Del(ctx, keys...).Err(); err != nil {
					return nil, err
				}
			}
			cursor = next
			if cursor == 0 {
				return nil, nil
			}
		}
	})
	return err
}
