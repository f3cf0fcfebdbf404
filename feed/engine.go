package feed

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"socialfeed/config"
	"socialfeed/logger"
	"socialfeed/models"

	"golang.org/x/sync/singleflight"
)

// Deps - внешние зависимости движка, передаются явно
type Deps struct {
	Graph      SocialGraph
	Content    ContentStore
	Engagement EngagementStore
	Views      ViewLedger
	Cache      Cache
}

// Engine собирает, ранжирует и кеширует ленты. Синхронный: одна горутина на запрос,
// параллельны только обращения к аксессорам внутри запроса
type Engine struct {
	graph      SocialGraph
	content    ContentStore
	engagement EngagementStore
	views      ViewLedger
	cache      Cache

	conf       config.FeedConfig
	scorer     *Scorer
	similarity Similarity
	now        func() time.Time

	rndMu sync.Mutex
	rnd   *rand.Rand

	// используется только при conf.CoalesceMisses
	flight singleflight.Group
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rnd = r }
}

func WithSimilarity(s Similarity) Option {
	return func(e *Engine) { e.similarity = s }
}

func NewEngine(deps Deps, conf config.FeedConfig, opts ...Option) *Engine {
	conf.ApplyDefaults()
	e := &Engine{
		graph:      deps.Graph,
		content:    deps.Content,
		engagement: deps.Engagement,
		views:      deps.Views,
		cache:      deps.Cache,
		conf:       conf,
		scorer:     NewScorer(conf.Weights),
		similarity: NewKeywordSimilarity(conf.LikedSampleSize),
		now:        time.Now,
		rnd:        rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed)),
	}
	if e.cache == nil {
		e.cache = NoopCache{}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Config() config.FeedConfig {
	return e.conf
}

// Clamp приводит пагинацию к допустимому диапазону
func (e *Engine) Clamp(page, limit int) (int, int) {
	return ClampPagination(page, limit, e.conf.MaxLimit)
}

func (e *Engine) homeTTL() time.Duration {
	return time.Duration(e.conf.TTL.HomeSeconds) * time.Second
}

func (e *Engine) trendingTTL() time.Duration {
	return time.Duration(e.conf.TTL.TrendingSeconds) * time.Second
}

func (e *Engine) exploreTTL() time.Duration {
	return time.Duration(e.conf.TTL.ExploreSeconds) * time.Second
}

type buildFunc func(ctx context.Context) (*models.FeedPage, error)

// cached: чтение из кеша, при промахе сборка и запись. Частичный результат не кешируется.
// Одновременные промахи по одному ключу по умолчанию считаются независимо
func (e *Engine) cached(ctx context.Context, feedType models.FeedType, key string, ttl time.Duration, build buildFunc) (*models.FeedPage, error) {
	if page, ok := e.readCache(ctx, key); ok {
		feedRequestsTotal.WithLabelValues(string(feedType), "hit").Inc()
		return page, nil
	}

	compute := func() (*models.FeedPage, error) {
		start := time.Now()
		page, err := build(ctx)
		feedAssembleDuration.WithLabelValues(string(feedType)).Observe(time.Since(start).Seconds())
		if err != nil {
			feedRequestsTotal.WithLabelValues(string(feedType), "error").Inc()
			logger.Log.WithError(err).WithField("feed", feedType).WithField("key", key).Error("failed to assemble feed")
			return nil, err
		}
		feedRequestsTotal.WithLabelValues(string(feedType), "miss").Inc()
		e.writeCache(ctx, key, page, ttl)
		return page, nil
	}

	if !e.conf.CoalesceMisses {
		return compute()
	}
	v, err, _ := e.flight.Do(key, func() (interface{}, error) {
		return compute()
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.FeedPage), nil
}

func (e *Engine) shuffle(n int, swap func(i, j int)) {
	e.rndMu.Lock()
	defer e.rndMu.Unlock()
	e.rnd.Shuffle(n, swap)
}
