package services

import (
	"context"
	"fmt"

	"socialfeed/db"
	"socialfeed/models"

	"gorm.io/gorm"
)

// EngagementStore - лайки, комментарии, репосты и просмотры зрителя
type EngagementStore struct {
	orm *gorm.DB
}

func NewEngagementStore(orm *gorm.DB) *EngagementStore {
	return &EngagementStore{orm: orm}
}

// RecentLikedContents возвращает тексты последних n лайкнутых постов, новые первыми
func (s *EngagementStore) RecentLikedContents(ctx context.Context, userID int64, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	var contents []string
	err := db.ReadOnly(ctx, s.orm).
		Table("post_likes l").
		Joins("JOIN posts p ON p.id = l.post_id").
		Where("l.user_id = ? AND p.is_deleted = ?", userID, false).
		Order("l.created_at DESC, l.id DESC").
		Limit(n).
		Pluck("p.content", &contents).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get liked posts: %w", err)
	}
	return contents, nil
}

func (s *EngagementStore) LikedPostIDs(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error) {
	out := make(map[int64]bool, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	var ids []int64
	err := db.ReadOnly(ctx, s.orm).
		Model(&models.PostLike{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get liked post ids: %w", err)
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

type postCount struct {
	PostID int64
	N      int64
}

func (s *EngagementStore) countByPost(ctx context.Context, model interface{}, userID int64, postIDs []int64) (map[int64]int64, error) {
	var rows []postCount
	err := db.ReadOnly(ctx, s.orm).
		Model(model).
		Select("post_id, COUNT(*) AS n").
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[int64]int64, len(rows))
	for _, r := range rows {
		out[r.PostID] = r.N
	}
	return out, nil
}

// Interactions собирает собственную активность зрителя по каждому из постов
func (s *EngagementStore) Interactions(ctx context.Context, userID int64, postIDs []int64) (map[int64]models.Interaction, error) {
	out := make(map[int64]models.Interaction, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}

	tables := []struct {
		model interface{}
		apply func(*models.Interaction, int64)
	}{
		{&models.PostLike{}, func(i *models.Interaction, n int64) { i.Likes = n }},
		{&models.PostComment{}, func(i *models.Interaction, n int64) { i.Comments = n }},
		{&models.PostShare{}, func(i *models.Interaction, n int64) { i.Shares = n }},
		{&models.PostView{}, func(i *models.Interaction, n int64) { i.Views = n }},
	}
	for _, t := range tables {
		counts, err := s.countByPost(ctx, t.model, userID, postIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to get interactions: %w", err)
		}
		for postID, n := range counts {
			i := out[postID]
			t.apply(&i, n)
			out[postID] = i
		}
	}
	return out, nil
}
