package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"socialfeed/logger"
	"socialfeed/models"
)

const (
	KeyPrefix         = "feed:"
	trendingKeyPrefix = KeyPrefix + "trending:"
)

// UserPrefix - префикс всех страниц лент пользователя
func UserPrefix(userID int64) string {
	return fmt.Sprintf("%s%d:", KeyPrefix, userID)
}

func TrendingPrefix() string {
	return trendingKeyPrefix
}

func HomeKey(viewerID int64, page, limit int) string {
	return fmt.Sprintf("%s%s:%d:%d", UserPrefix(viewerID), models.FeedHome, page, limit)
}

func ExploreKey(viewerID int64, interests []string, page, limit int) string {
	return fmt.Sprintf("%s%s:%s:%d:%d", UserPrefix(viewerID), models.FeedExplore, strings.Join(interests, ","), page, limit)
}

func TrendingKey(page, limit int) string {
	return fmt.Sprintf("%s%d:%d", trendingKeyPrefix, page, limit)
}

// NormalizeInterests: нижний регистр, без '#', без дублей, отсортированы.
// ',' и ':' - разделители ключа кеша, поэтому "a,b" превращается в два интереса
func NormalizeInterests(interests []string) []string {
	seen := make(map[string]struct{}, len(interests))
	out := make([]string, 0, len(interests))
	for _, raw := range interests {
		parts := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ':' })
		for _, i := range parts {
			i = models.NormalizeTag(i)
			if i == "" {
				continue
			}
			if _, ok := seen[i]; ok {
				continue
			}
			seen[i] = struct{}{}
			out = append(out, i)
		}
	}
	sort.Strings(out)
	return out
}

func encodeEntry(page *models.FeedPage, createdAt time.Time, ttl time.Duration) ([]byte, error) {
	return json.Marshal(models.CacheEntry{
		Page:       *page,
		CreatedAt:  createdAt.UTC(),
		TTLSeconds: int(ttl / time.Second),
	})
}

func decodeEntry(data []byte) (*models.CacheEntry, error) {
	var entry models.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// readCache: любая ошибка бэкенда или битая запись считается промахом
func (e *Engine) readCache(ctx context.Context, key string) (*models.FeedPage, bool) {
	data, err := e.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			feedCacheErrors.WithLabelValues("get").Inc()
			logger.Log.WithError(err).WithField("key", key).Warn("feed cache get failed, computing live")
		}
		return nil, false
	}
	entry, err := decodeEntry(data)
	if err != nil {
		feedCacheErrors.WithLabelValues("decode").Inc()
		logger.Log.WithError(err).WithField("key", key).Warn("feed cache entry is corrupted")
		return nil, false
	}
	if entry.ExpiredAt(e.now()) {
		return nil, false
	}
	return &entry.Page, true
}

func (e *Engine) writeCache(ctx context.Context, key string, page *models.FeedPage, ttl time.Duration) {
	data, err := encodeEntry(page, e.now(), ttl)
	if err != nil {
		feedCacheErrors.WithLabelValues("encode").Inc()
		logger.Log.WithError(err).WithField("key", key).Warn("failed to encode feed page")
		return
	}
	if err := e.cache.Set(ctx, key, data, ttl); err != nil {
		feedCacheErrors.WithLabelValues("set").Inc()
		logger.Log.WithError(err).WithField("key", key).Warn("feed cache set failed")
	}
}

// InvalidateUserFeed удаляет все закешированные страницы лент пользователя.
// Ошибка только логируется вызывающей стороной: запись уже прошла, кеш истечет по TTL
func (e *Engine) InvalidateUserFeed(ctx context.Context, userID int64) error {
	feedCacheInvalidations.WithLabelValues("user").Inc()
	if err := e.cache.DeleteByPrefix(ctx, UserPrefix(userID)); err != nil {
		feedCacheErrors.WithLabelValues("invalidate").Inc()
		logger.Log.WithError(err).WithField("user_id", userID).Warn("failed to invalidate user feed")
		return err
	}
	return nil
}

func (e *Engine) InvalidateTrending(ctx context.Context) error {
	feedCacheInvalidations.WithLabelValues("trending").Inc()
	if err := e.cache.DeleteByPrefix(ctx, TrendingPrefix()); err != nil {
		feedCacheErrors.WithLabelValues("invalidate").Inc()
		logger.Log.WithError(err).Warn("failed to invalidate trending feed")
		return err
	}
	return nil
}
