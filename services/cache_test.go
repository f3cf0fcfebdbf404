package services

import (
	"context"
	"testing"
	"time"

	"socialfeed/feed"

	"github.com/go-redis/redis/v8"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBadger(t *testing.T) *BadgerFeedCache {
	t.Helper()
	c, err := NewBadgerFeedCache("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestBadgerFeedCache(t *testing.T) {
	c := newTestBadger(t)
	ctx := context.Background()

	_, err := c.Get(ctx, "feed:1:home:1:20")
	assert.ErrorIs(t, err, feed.ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "feed:1:home:1:20", []byte("page-1"), time.Minute))
	require.NoError(t, c.Set(ctx, "feed:1:explore::1:20", []byte("explore"), time.Minute))
	require.NoError(t, c.Set(ctx, "feed:12:home:1:20", []byte("other"), time.Minute))
	require.NoError(t, c.Set(ctx, "feed:trending:1:20", []byte("trending"), 0))

	got, err := c.Get(ctx, "feed:1:home:1:20")
	require.NoError(t, err)
	assert.Equal(t, []byte("page-1"), got)

	require.NoError(t, c.DeleteByPrefix(ctx, feed.UserPrefix(1)))
	_, err = c.Get(ctx, "feed:1:home:1:20")
	assert.ErrorIs(t, err, feed.ErrCacheMiss)
	_, err = c.Get(ctx, "feed:1:explore::1:20")
	assert.ErrorIs(t, err, feed.ErrCacheMiss)

	got, err = c.Get(ctx, "feed:12:home:1:20")
	require.NoError(t, err)
	assert.Equal(t, []byte("other"), got)

	require.NoError(t, c.Delete(ctx, "feed:trending:1:20"))
	require.NoError(t, c.Delete(ctx, "feed:trending:1:20"))
	_, err = c.Get(ctx, "feed:trending:1:20")
	assert.ErrorIs(t, err, feed.ErrCacheMiss)
}

func TestBadgerFeedCacheDeletesManyKeys(t *testing.T) {
	c := newTestBadger(t)
	ctx := context.Background()
	for i := 0; i < badgerDeleteBatch+10; i++ {
		require.NoError(t, c.Set(ctx, feed.TrendingKey(i+1, 20), []byte("x"), time.Minute))
	}
	require.NoError(t, c.DeleteByPrefix(ctx, feed.TrendingPrefix()))
	_, err := c.Get(ctx, feed.TrendingKey(badgerDeleteBatch+5, 20))
	assert.ErrorIs(t, err, feed.ErrCacheMiss)
}

func TestRedisFeedCacheBreakerOpens(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	c := NewRedisFeedCache(client)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := c.Get(ctx, "feed:1:home:1:20")
		require.Error(t, err)
		assert.NotErrorIs(t, err, feed.ErrCacheMiss)
	}
	_, err := c.Get(ctx, "feed:1:home:1:20")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.ErrorIs(t, c.DeleteByPrefix(ctx, "feed:1:"), gobreaker.ErrOpenState)
}

func TestGlobEscaping(t *testing.T) {
	assert.Equal(t, `feed:1:explore:a\*b:`, globEscaper.Replace("feed:1:explore:a*b:"))
	assert.Equal(t, `feed:\[x\]\?`, globEscaper.Replace("feed:[x]?"))
}

func TestHandleFeedEvent(t *testing.T) {
	inv := &recordingInvalidator{}
	ctx := context.Background()

	HandleFeedEvent(ctx, inv, FeedEvent{Type: EventGraphChanged, UserIDs: []int64{3, 4}})
	HandleFeedEvent(ctx, inv, FeedEvent{Type: EventPostCreated, UserIDs: []int64{5}})
	HandleFeedEvent(ctx, inv, FeedEvent{Type: EventTrendingRefresh})
	HandleFeedEvent(ctx, inv, FeedEvent{Type: "unknown", UserIDs: []int64{9}})

	assert.Equal(t, []int64{3, 4, 5}, inv.invalidated())
	assert.Equal(t, 1, inv.trending)
}

func TestFeedEventRoutingKey(t *testing.T) {
	assert.Equal(t, "feed.graph.changed", FeedEvent{Type: EventGraphChanged}.routingKey())
	assert.Equal(t, "feed.trending.refresh", FeedEvent{Type: EventTrendingRefresh}.routingKey())
}
