package feed

import (
	"context"
	"time"

	"socialfeed/models"
)

// SocialGraph отвечает на вопросы о подписках. Учитываются только связи accepted
type SocialGraph interface {
	AcceptedFollowing(ctx context.Context, userID int64) ([]int64, error)
	AcceptedFollowers(ctx context.Context, userID int64) ([]int64, error)
	MutualConnectionCount(ctx context.Context, userA, userB int64) (int, error)
}

type CandidateScope string

const (
	// ScopeHome: public или followers, если автор входит в AuthorIDs
	ScopeHome CandidateScope = "home"
	// ScopePublic: только public
	ScopePublic CandidateScope = "public"
)

type CandidateOrder string

const (
	// OrderRecent: created_at DESC, id DESC
	OrderRecent CandidateOrder = ""
	// OrderEngagement: (likes + 2*comments + 3*shares) / max(views, 1) DESC, затем как OrderRecent
	OrderEngagement CandidateOrder = "engagement"
)

// CandidateQuery - фильтр выборки кандидатов. Всегда только опубликованные и не удаленные.
// ExcludeViewedBy отсекает посты из журнала просмотров этого пользователя на стороне хранилища
type CandidateQuery struct {
	Scope           CandidateScope
	AuthorIDs       []int64
	CreatedAfter    time.Time
	ExcludePostIDs  []int64
	ExcludeViewedBy int64
	Interests       []string
	Order           CandidateOrder
	Offset          int
	Limit           int
}

type ContentStore interface {
	QueryCandidates(ctx context.Context, q CandidateQuery) ([]models.Post, error)
	CountCandidates(ctx context.Context, q CandidateQuery) (int64, error)
	GetPost(ctx context.Context, postID int64) (*models.Post, error)
	GetCounters(ctx context.Context, postID int64) (models.PostCounters, error)
}

// EngagementStore - активность зрителя: лайки и история взаимодействий
type EngagementStore interface {
	RecentLikedContents(ctx context.Context, userID int64, n int) ([]string, error)
	LikedPostIDs(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error)
	Interactions(ctx context.Context, userID int64, postIDs []int64) (map[int64]models.Interaction, error)
}

// ViewLedger - журнал показанных пользователю постов
type ViewLedger interface {
	HasViewed(ctx context.Context, userID, postID int64) (bool, error)
	RecordViews(ctx context.Context, userID int64, postIDs []int64) error
}

// Cache хранит готовые страницы ленты. Значение записывается и читается целиком
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// NoopCache - кеш выключен, всегда промах
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) ([]byte, error) { return nil, ErrCacheMiss }
func (NoopCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NoopCache) Delete(context.Context, string) error                    { return nil }
func (NoopCache) DeleteByPrefix(context.Context, string) error            { return nil }
