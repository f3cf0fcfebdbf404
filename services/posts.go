package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"socialfeed/db"
	"socialfeed/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxContentLength = 10000

var (
	ErrPostNotFound      = errors.New("post not found")
	ErrEmptyContent      = errors.New("content is empty")
	ErrContentTooLong    = errors.New("content is too long")
	ErrInvalidVisibility = errors.New("invalid visibility")
)

type CreatePostInput struct {
	AuthorID   int64
	Content    string
	Hashtags   []string
	Visibility models.Visibility
}

// PostService - запись постов и активности по ним.
// Новый или удаленный пост сбрасывает ленту автора. Лайки, комментарии, репосты и просмотры
// кеш не трогают: устаревание ограничено TTL
type PostService struct {
	orm       *gorm.DB
	inv       FeedInvalidator
	publisher EventPublisher
	views     *ViewLedger
	now       func() time.Time
}

func NewPostService(orm *gorm.DB, inv FeedInvalidator, publisher EventPublisher) *PostService {
	return &PostService{
		orm:       orm,
		inv:       inv,
		publisher: publisher,
		views:     NewViewLedger(orm),
		now:       time.Now,
	}
}

func (ps *PostService) authorChanged(ctx context.Context, authorID int64) {
	if ps.inv != nil {
		_ = ps.inv.InvalidateUserFeed(ctx, authorID)
	}
	publish(ctx, ps.publisher, FeedEvent{Type: EventPostCreated, UserIDs: []int64{authorID}, At: ps.now().UTC()})
}

// hashtagsFromContent вытаскивает слова вида #tag из текста
func hashtagsFromContent(content string) []string {
	var tags []string
	for _, word := range strings.Fields(content) {
		if !strings.HasPrefix(word, "#") {
			continue
		}
		tag := strings.TrimRight(word, ".,!?;:)\"'")
		if len(tag) > 1 {
			tags = append(tags, tag)
		}
	}
	return tags
}

// CreatePost сохраняет пост и сбрасывает ленту автора
func (ps *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if len([]rune(content)) > maxContentLength {
		return nil, ErrContentTooLong
	}
	visibility := in.Visibility
	if visibility == "" {
		visibility = models.VisibilityPublic
	}
	if !visibility.Valid() {
		return nil, ErrInvalidVisibility
	}

	now := ps.now().UTC()
	post := &models.Post{
		AuthorID:    in.AuthorID,
		Content:     content,
		Hashtags:    models.EncodeHashtags(slices.Concat(in.Hashtags, hashtagsFromContent(content))),
		Visibility:  visibility,
		IsPublished: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := db.Write(ctx, ps.orm).Create(post).Error; err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	ps.authorChanged(ctx, post.AuthorID)
	return post, nil
}

// DeletePost помечает пост удаленным. Удалить можно только свой пост
func (ps *PostService) DeletePost(ctx context.Context, authorID, postID int64) error {
	res := db.Write(ctx, ps.orm).
		Model(&models.Post{}).
		Where("id = ? AND author_id = ? AND is_deleted = ?", postID, authorID, false).
		Updates(map[string]interface{}{"is_deleted": true, "updated_at": ps.now().UTC()})
	if res.Error != nil {
		return fmt.Errorf("failed to delete post: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrPostNotFound
	}

	ps.authorChanged(ctx, authorID)
	return nil
}

func (ps *PostService) ensurePost(tx *gorm.DB, postID int64) error {
	var n int64
	err := tx.Model(&models.Post{}).Where("id = ? AND is_deleted = ?", postID, false).Count(&n).Error
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPostNotFound
	}
	return nil
}

func bumpCounter(tx *gorm.DB, postID int64, column string, delta int) error {
	return tx.Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta)).Error
}

// Like идемпотентен: повторный лайк счетчик не меняет
func (ps *PostService) Like(ctx context.Context, userID, postID int64) error {
	err := db.Write(ctx, ps.orm).Transaction(func(tx *gorm.DB) error {
		if err := ps.ensurePost(tx, postID); err != nil {
			return err
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.PostLike{UserID: userID, PostID: postID, CreatedAt: ps.now().UTC()})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return bumpCounter(tx, postID, "likes_count", 1)
	})
	if err != nil && !errors.Is(err, ErrPostNotFound) {
		return fmt.Errorf("failed to like post: %w", err)
	}
	return err
}

func (ps *PostService) Unlike(ctx context.Context, userID, postID int64) error {
	err := db.Write(ctx, ps.orm).Transaction(func(tx *gorm.DB) error {
		if err := ps.ensurePost(tx, postID); err != nil {
			return err
		}
		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.PostLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return bumpCounter(tx, postID, "likes_count", -1)
	})
	if err != nil && !errors.Is(err, ErrPostNotFound) {
		return fmt.Errorf("failed to unlike post: %w", err)
	}
	return err
}

func (ps *PostService) Comment(ctx context.Context, userID, postID int64, content string) (*models.PostComment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	comment := &models.PostComment{UserID: userID, PostID: postID, Content: content, CreatedAt: ps.now().UTC()}
	err := db.Write(ctx, ps.orm).Transaction(func(tx *gorm.DB) error {
		if err := ps.ensurePost(tx, postID); err != nil {
			return err
		}
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return bumpCounter(tx, postID, "comments_count", 1)
	})
	if errors.Is(err, ErrPostNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to comment post: %w", err)
	}
	return comment, nil
}

func (ps *PostService) Share(ctx context.Context, userID, postID int64) (*models.PostShare, error) {
	share := &models.PostShare{UserID: userID, PostID: postID, CreatedAt: ps.now().UTC()}
	err := db.Write(ctx, ps.orm).Transaction(func(tx *gorm.DB) error {
		if err := ps.ensurePost(tx, postID); err != nil {
			return err
		}
		if err := tx.Create(share).Error; err != nil {
			return err
		}
		return bumpCounter(tx, postID, "shares_count", 1)
	})
	if errors.Is(err, ErrPostNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to share post: %w", err)
	}
	return share, nil
}

// RecordView пишет просмотры в журнал. Счетчик растет только для новых пар (пользователь, пост)
func (ps *PostService) RecordView(ctx context.Context, userID int64, postIDs []int64) error {
	err := db.Write(ctx, ps.orm).Transaction(func(tx *gorm.DB) error {
		fresh, err := ps.views.record(tx, userID, postIDs)
		if err != nil {
			return err
		}
		for _, postID := range fresh {
			if err := bumpCounter(tx, postID, "views_count", 1); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record views: %w", err)
	}
	return nil
}
