package services

import (
	"context"
	"fmt"
	"time"

	"socialfeed/db"
	"socialfeed/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ViewLedger - журнал просмотров, только добавление. Повторная запись пары игнорируется
type ViewLedger struct {
	orm *gorm.DB
	now func() time.Time
}

func NewViewLedger(orm *gorm.DB) *ViewLedger {
	return &ViewLedger{orm: orm, now: time.Now}
}

func (l *ViewLedger) HasViewed(ctx context.Context, userID, postID int64) (bool, error) {
	var n int64
	err := db.ReadOnly(ctx, l.orm).
		Model(&models.PostView{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("failed to check view: %w", err)
	}
	return n > 0, nil
}

func (l *ViewLedger) RecordViews(ctx context.Context, userID int64, postIDs []int64) error {
	_, err := l.record(db.Write(ctx, l.orm), userID, postIDs)
	return err
}

// record возвращает идентификаторы постов, которые попали в журнал впервые
func (l *ViewLedger) record(tx *gorm.DB, userID int64, postIDs []int64) ([]int64, error) {
	now := l.now().UTC()
	seen := make(map[int64]struct{}, len(postIDs))
	var fresh []int64
	for _, postID := range postIDs {
		if _, ok := seen[postID]; ok {
			continue
		}
		seen[postID] = struct{}{}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.PostView{UserID: userID, PostID: postID, ViewedAt: now})
		if res.Error != nil {
			return nil, fmt.Errorf("failed to record view: %w", res.Error)
		}
		if res.RowsAffected > 0 {
			fresh = append(fresh, postID)
		}
	}
	return fresh, nil
}
