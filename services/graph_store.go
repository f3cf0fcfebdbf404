package services

import (
	"context"
	"fmt"

	"socialfeed/db"
	"socialfeed/models"

	"gorm.io/gorm"
)

// GraphStore - граф подписок поверх таблицы follows. Учитываются только связи accepted
type GraphStore struct {
	orm *gorm.DB
}

func NewGraphStore(orm *gorm.DB) *GraphStore {
	return &GraphStore{orm: orm}
}

func (s *GraphStore) AcceptedFollowing(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := db.ReadOnly(ctx, s.orm).
		Model(&models.Follow{}).
		Where("follower_id = ? AND status = ?", userID, models.FollowAccepted).
		Order("following_id").
		Pluck("following_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get following: %w", err)
	}
	return ids, nil
}

func (s *GraphStore) AcceptedFollowers(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := db.ReadOnly(ctx, s.orm).
		Model(&models.Follow{}).
		Where("following_id = ? AND status = ?", userID, models.FollowAccepted).
		Order("follower_id").
		Pluck("follower_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get followers: %w", err)
	}
	return ids, nil
}

// MutualConnectionCount считает пользователей, на которых подписаны и a, и b
func (s *GraphStore) MutualConnectionCount(ctx context.Context, userA, userB int64) (int, error) {
	var n int64
	err := db.ReadOnly(ctx, s.orm).
		Table("follows fa").
		Joins("JOIN follows fb ON fb.following_id = fa.following_id").
		Where("fa.follower_id = ? AND fb.follower_id = ?", userA, userB).
		Where("fa.status = ? AND fb.status = ?", models.FollowAccepted, models.FollowAccepted).
		Where("fa.following_id NOT IN ?", []int64{userA, userB}).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count mutual connections: %w", err)
	}
	return int(n), nil
}
