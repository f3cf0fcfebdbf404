package handlers

import (
	"context"
	"net/http"
	"strings"

	"socialfeed/config"
	"socialfeed/feed"
	"socialfeed/logger"
	"socialfeed/models"

	"github.com/gin-gonic/gin"
)

// FeedEngine - то, что обработчикам нужно от движка ленты
type FeedEngine interface {
	Config() config.FeedConfig
	HomeFeed(ctx context.Context, viewerID int64, page, limit int) (*models.FeedPage, error)
	Trending(ctx context.Context, page, limit int) (*models.FeedPage, error)
	Explore(ctx context.Context, viewerID int64, interests []string, page, limit int) (*models.FeedPage, error)
	ExplainScore(ctx context.Context, viewerID, postID int64) (*feed.ScoredCandidate, error)
	InvalidateUserFeed(ctx context.Context, userID int64) error
	InvalidateTrending(ctx context.Context) error
}

// InterestSource отдает сохраненные интересы, если запрос explore их не указал
type InterestSource interface {
	UserInterests(ctx context.Context, userID int64) ([]string, error)
}

type FeedHandlers struct {
	engine    FeedEngine
	interests InterestSource
}

func NewFeedHandlers(engine FeedEngine, interests InterestSource) *FeedHandlers {
	return &FeedHandlers{engine: engine, interests: interests}
}

func (h *FeedHandlers) pagination(c *gin.Context) (int, int, bool) {
	conf := h.engine.Config()
	page, limit, err := feed.ParsePagination(c.Query("page"), c.Query("limit"), conf.DefaultLimit, conf.MaxLimit)
	if err != nil {
		writeError(c, err)
		return 0, 0, false
	}
	return page, limit, true
}

// Home - GET /feed/home
func (h *FeedHandlers) Home(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	page, limit, ok := h.pagination(c)
	if !ok {
		return
	}
	result, err := h.engine.HomeFeed(c.Request.Context(), userID, page, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Trending - GET /feed/trending
func (h *FeedHandlers) Trending(c *gin.Context) {
	page, limit, ok := h.pagination(c)
	if !ok {
		return
	}
	result, err := h.engine.Trending(c.Request.Context(), page, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Explore - GET /feed/explore?interests=a,b
func (h *FeedHandlers) Explore(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	page, limit, ok := h.pagination(c)
	if !ok {
		return
	}

	var interests []string
	if raw := c.Query("interests"); raw != "" {
		interests = strings.Split(raw, ",")
	} else if h.interests != nil {
		stored, err := h.interests.UserInterests(c.Request.Context(), userID)
		if err != nil {
			logger.Log.WithError(err).WithField("user_id", userID).Warn("failed to load stored interests, exploring without them")
		}
		interests = stored
	}

	result, err := h.engine.Explore(c.Request.Context(), userID, interests, page, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Explain - GET /feed/explain/:post_id, разбор оценки поста для текущего пользователя
func (h *FeedHandlers) Explain(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	postID, ok := idParam(c, "post_id")
	if !ok {
		return
	}
	scored, err := h.engine.ExplainScore(c.Request.Context(), userID, postID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"post_id":          postID,
		"recency_score":    scored.RecencyScore,
		"popularity_score": scored.PopularityScore,
		"relevance_score":  scored.RelevanceScore,
		"total_score":      scored.TotalScore,
		"counters":         scored.Post.Counters(),
	})
}

// InvalidateUser - POST /feed/invalidate/:user_id
func (h *FeedHandlers) InvalidateUser(c *gin.Context) {
	userID, ok := idParam(c, "user_id")
	if !ok {
		return
	}
	if err := h.engine.InvalidateUserFeed(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to invalidate cache", "retryable": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Feed cache invalidated"})
}

// InvalidateTrending - POST /feed/invalidate-trending
func (h *FeedHandlers) InvalidateTrending(c *gin.Context) {
	if err := h.engine.InvalidateTrending(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to invalidate cache", "retryable": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Trending cache invalidated"})
}
