package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"socialfeed/db"
	"socialfeed/models"

	"gorm.io/gorm"
)

var (
	ErrFollowNotFound   = errors.New("follow request not found")
	ErrSelfFollow       = errors.New("cannot follow yourself")
	ErrAlreadyFollowing = errors.New("already following")
	ErrFollowBlocked    = errors.New("follow is blocked")
	ErrUserNotFound     = errors.New("user not found")
)

// FollowService управляет подписками. Любое изменение accepted-связей сбрасывает ленты обеих сторон
type FollowService struct {
	orm       *gorm.DB
	inv       FeedInvalidator
	publisher EventPublisher
	now       func() time.Time
}

func NewFollowService(orm *gorm.DB, inv FeedInvalidator, publisher EventPublisher) *FollowService {
	return &FollowService{orm: orm, inv: inv, publisher: publisher, now: time.Now}
}

// graphChanged сбрасывает ленты синхронно и оповещает остальные инстансы.
// Запись уже прошла, поэтому ошибки здесь не возвращаются
func (fs *FollowService) graphChanged(ctx context.Context, userIDs ...int64) {
	if fs.inv != nil {
		for _, id := range userIDs {
			_ = fs.inv.InvalidateUserFeed(ctx, id)
		}
	}
	publish(ctx, fs.publisher, FeedEvent{Type: EventGraphChanged, UserIDs: userIDs, At: fs.now().UTC()})
}

// Follow создает подписку. На открытый профиль она сразу accepted, на закрытый - pending
func (fs *FollowService) Follow(ctx context.Context, followerID, targetID int64) (*models.Follow, error) {
	if followerID == targetID {
		return nil, ErrSelfFollow
	}

	// Проверяем, что пользователи существуют
	var users []models.User
	err := db.ReadOnly(ctx, fs.orm).Where("id IN ?", []int64{followerID, targetID}).Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("error checking users: %w", err)
	}
	if len(users) != 2 {
		return nil, ErrUserNotFound
	}
	var target models.User
	for _, u := range users {
		if u.ID == targetID {
			target = u
		}
	}

	var existing []models.Follow
	err = db.ReadOnly(ctx, fs.orm).
		Where("(follower_id = ? AND following_id = ?) OR (follower_id = ? AND following_id = ?)",
			followerID, targetID, targetID, followerID).
		Find(&existing).Error
	if err != nil {
		return nil, fmt.Errorf("error checking follow: %w", err)
	}
	for _, f := range existing {
		if f.Status == models.FollowBlocked {
			return nil, ErrFollowBlocked
		}
		if f.FollowerID == followerID {
			return nil, ErrAlreadyFollowing
		}
	}

	now := fs.now().UTC()
	follow := &models.Follow{
		FollowerID:  followerID,
		FollowingID: targetID,
		Status:      models.FollowPending,
		CreatedAt:   now,
	}
	if !target.IsPrivate {
		follow.Status = models.FollowAccepted
		follow.AcceptedAt = &now
	}
	if err := db.Write(ctx, fs.orm).Create(follow).Error; err != nil {
		return nil, fmt.Errorf("failed to create follow: %w", err)
	}

	if follow.Status == models.FollowAccepted {
		fs.graphChanged(ctx, followerID, targetID)
	}
	return follow, nil
}

// Accept подтверждает входящую заявку requesterID -> userID
func (fs *FollowService) Accept(ctx context.Context, userID, requesterID int64) (*models.Follow, error) {
	var follow models.Follow
	err := db.Write(ctx, fs.orm).
		Where("follower_id = ? AND following_id = ? AND status = ?", requesterID, userID, models.FollowPending).
		First(&follow).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrFollowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find follow request: %w", err)
	}

	now := fs.now().UTC()
	follow.Status = models.FollowAccepted
	follow.AcceptedAt = &now
	if err := db.Write(ctx, fs.orm).Save(&follow).Error; err != nil {
		return nil, fmt.Errorf("failed to accept follow: %w", err)
	}

	fs.graphChanged(ctx, userID, requesterID)
	return &follow, nil
}

// Unfollow удаляет подписку или отзывает заявку
func (fs *FollowService) Unfollow(ctx context.Context, followerID, targetID int64) error {
	res := db.Write(ctx, fs.orm).
		Where("follower_id = ? AND following_id = ? AND status <> ?", followerID, targetID, models.FollowBlocked).
		Delete(&models.Follow{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete follow: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrFollowNotFound
	}

	fs.graphChanged(ctx, followerID, targetID)
	return nil
}

// Block разрывает связи в обе стороны и запрещает blockedID подписываться на blockerID
func (fs *FollowService) Block(ctx context.Context, blockerID, blockedID int64) error {
	if blockerID == blockedID {
		return ErrSelfFollow
	}
	err := db.Write(ctx, fs.orm).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("(follower_id = ? AND following_id = ?) OR (follower_id = ? AND following_id = ?)",
			blockerID, blockedID, blockedID, blockerID).
			Delete(&models.Follow{}).Error
		if err != nil {
			return err
		}
		return tx.Create(&models.Follow{
			FollowerID:  blockedID,
			FollowingID: blockerID,
			Status:      models.FollowBlocked,
			CreatedAt:   fs.now().UTC(),
		}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to block user: %w", err)
	}

	fs.graphChanged(ctx, blockerID, blockedID)
	return nil
}

func (fs *FollowService) listUsers(ctx context.Context, joinOn, where string, userID int64, status models.FollowStatus) ([]models.User, error) {
	users := []models.User{}
	err := db.ReadOnly(ctx, fs.orm).
		Table("users u").
		Joins("JOIN follows f ON "+joinOn).
		Where(where+" AND f.status = ?", userID, status).
		Select("u.*").
		Order("f.created_at DESC, u.id").
		Find(&users).Error
	return users, err
}

// Following возвращает пользователей, на которых подписан userID
func (fs *FollowService) Following(ctx context.Context, userID int64) ([]models.User, error) {
	users, err := fs.listUsers(ctx, "f.following_id = u.id", "f.follower_id = ?", userID, models.FollowAccepted)
	if err != nil {
		return nil, fmt.Errorf("failed to get following: %w", err)
	}
	return users, nil
}

// Followers возвращает подписчиков userID
func (fs *FollowService) Followers(ctx context.Context, userID int64) ([]models.User, error) {
	users, err := fs.listUsers(ctx, "f.follower_id = u.id", "f.following_id = ?", userID, models.FollowAccepted)
	if err != nil {
		return nil, fmt.Errorf("failed to get followers: %w", err)
	}
	return users, nil
}

// PendingRequests возвращает входящие заявки
func (fs *FollowService) PendingRequests(ctx context.Context, userID int64) ([]models.User, error) {
	users, err := fs.listUsers(ctx, "f.follower_id = u.id", "f.following_id = ?", userID, models.FollowPending)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending requests: %w", err)
	}
	return users, nil
}
