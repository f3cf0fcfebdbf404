package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"socialfeed/db"
	"socialfeed/feed"
	"socialfeed/models"

	"gorm.io/gorm"
)

const authorNameSelect = "p.*, COALESCE(NULLIF(TRIM(COALESCE(u.first_name, '') || ' ' || COALESCE(u.last_name, '')), ''), u.nickname, '') AS author_name"

// engagementOrder повторяет feed.EngagementRatio. MAX(a, b) в postgres называется GREATEST, поэтому CASE
const engagementOrder = "(p.likes_count + 2 * p.comments_count + 3 * p.shares_count) * 1.0 / " +
	"(CASE WHEN p.views_count > 1 THEN p.views_count ELSE 1 END) DESC, p.created_at DESC, p.id DESC"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContentStore выбирает посты-кандидаты для лент
type ContentStore struct {
	orm *gorm.DB
}

func NewContentStore(orm *gorm.DB) *ContentStore {
	return &ContentStore{orm: orm}
}

// candidates строит общий фильтр выборки: только опубликованные и не удаленные посты
func (s *ContentStore) candidates(ctx context.Context, q feed.CandidateQuery) *gorm.DB {
	tx := db.ReadOnly(ctx, s.orm).
		Table("posts p").
		Where("p.is_published = ? AND p.is_deleted = ?", true, false)

	if q.Scope == feed.ScopeHome && len(q.AuthorIDs) > 0 {
		tx = tx.Where("(p.visibility = ? OR (p.visibility = ? AND p.author_id IN ?))",
			models.VisibilityPublic, models.VisibilityFollowers, q.AuthorIDs)
	} else {
		tx = tx.Where("p.visibility = ?", models.VisibilityPublic)
	}
	if !q.CreatedAfter.IsZero() {
		tx = tx.Where("p.created_at > ?", q.CreatedAfter)
	}
	if len(q.ExcludePostIDs) > 0 {
		tx = tx.Where("p.id NOT IN ?", q.ExcludePostIDs)
	}
	if q.ExcludeViewedBy != 0 {
		tx = tx.Where("NOT EXISTS (SELECT 1 FROM post_views v WHERE v.post_id = p.id AND v.user_id = ?)", q.ExcludeViewedBy)
	}
	if len(q.Interests) > 0 {
		conds := make([]string, 0, len(q.Interests))
		args := make([]interface{}, 0, 2*len(q.Interests))
		for _, interest := range q.Interests {
			escaped := likeEscaper.Replace(strings.ToLower(interest))
			conds = append(conds, `LOWER(p.content) LIKE ? ESCAPE '\' OR p.hashtags LIKE ? ESCAPE '\'`)
			args = append(args, "%"+escaped+"%", "%,"+escaped+",%")
		}
		tx = tx.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
	return tx
}

func (s *ContentStore) QueryCandidates(ctx context.Context, q feed.CandidateQuery) ([]models.Post, error) {
	tx := s.candidates(ctx, q).
		Select(authorNameSelect).
		Joins("LEFT JOIN users u ON u.id = p.author_id")
	if q.Order == feed.OrderEngagement {
		tx = tx.Order(engagementOrder)
	} else {
		tx = tx.Order("p.created_at DESC, p.id DESC")
	}
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var posts []models.Post
	if err := tx.Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	return posts, nil
}

func (s *ContentStore) CountCandidates(ctx context.Context, q feed.CandidateQuery) (int64, error) {
	var n int64
	if err := s.candidates(ctx, q).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count candidates: %w", err)
	}
	return n, nil
}

func (s *ContentStore) GetPost(ctx context.Context, postID int64) (*models.Post, error) {
	var post models.Post
	err := db.ReadOnly(ctx, s.orm).
		Table("posts p").
		Select(authorNameSelect).
		Joins("LEFT JOIN users u ON u.id = p.author_id").
		Where("p.id = ? AND p.is_deleted = ?", postID, false).
		Take(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, feed.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return &post, nil
}

// GetCounters считает счетчики по таблицам активности, а не по денормализованным полям поста
func (s *ContentStore) GetCounters(ctx context.Context, postID int64) (models.PostCounters, error) {
	var counters models.PostCounters
	err := db.ReadOnly(ctx, s.orm).Raw(`
		SELECT
			(SELECT COUNT(*) FROM post_views WHERE post_id = ?) AS views,
			(SELECT COUNT(*) FROM post_likes WHERE post_id = ?) AS likes,
			(SELECT COUNT(*) FROM post_comments WHERE post_id = ?) AS comments,
			(SELECT COUNT(*) FROM post_shares WHERE post_id = ?) AS shares`,
		postID, postID, postID, postID,
	).Scan(&counters).Error
	if err != nil {
		return models.PostCounters{}, fmt.Errorf("failed to get post counters: %w", err)
	}
	return counters, nil
}
