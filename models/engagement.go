package models

import "time"

// PostView - запись журнала просмотров (append-only)
type PostView struct {
	ID       int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID   int64     `gorm:"uniqueIndex:post_views_user_post_idx" json:"user_id"`
	PostID   int64     `gorm:"uniqueIndex:post_views_user_post_idx;index" json:"post_id"`
	ViewedAt time.Time `json:"viewed_at"`
}

func (PostView) TableName() string {
	return "post_views"
}

type PostLike struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"uniqueIndex:post_likes_user_post_idx;index:post_likes_user_created_idx" json:"user_id"`
	PostID    int64     `gorm:"uniqueIndex:post_likes_user_post_idx;index" json:"post_id"`
	CreatedAt time.Time `gorm:"index:post_likes_user_created_idx" json:"created_at"`
}

func (PostLike) TableName() string {
	return "post_likes"
}

type PostComment struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"index:post_comments_user_post_idx" json:"user_id"`
	PostID    int64     `gorm:"index:post_comments_user_post_idx;index" json:"post_id"`
	Content   string    `gorm:"type:text" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (PostComment) TableName() string {
	return "post_comments"
}

type PostShare struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"index:post_shares_user_post_idx" json:"user_id"`
	PostID    int64     `gorm:"index:post_shares_user_post_idx;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (PostShare) TableName() string {
	return "post_shares"
}

// Interaction - собственная активность зрителя по конкретному посту
type Interaction struct {
	Likes    int64
	Comments int64
	Shares   int64
	Views    int64
}
