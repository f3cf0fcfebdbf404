package models

import (
	"strings"
	"time"
)

type Visibility string

const (
	VisibilityPublic     Visibility = "public"
	VisibilityFollowers  Visibility = "followers"
	VisibilityRestricted Visibility = "restricted"
)

func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityFollowers, VisibilityRestricted:
		return true
	}
	return false
}

// Post - модель поста пользователя со счетчиками вовлеченности
type Post struct {
	ID            int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	AuthorID      int64      `gorm:"index" json:"author_id"`
	Content       string     `gorm:"type:text" json:"content"`
	Hashtags      string     `gorm:"size:1024" json:"-"`
	Visibility    Visibility `gorm:"size:16;index;default:public" json:"visibility"`
	IsPublished   bool       `gorm:"default:true" json:"is_published"`
	IsDeleted     bool       `gorm:"default:false" json:"is_deleted"`
	ViewsCount    int64      `gorm:"default:0" json:"views_count"`
	LikesCount    int64      `gorm:"default:0" json:"likes_count"`
	CommentsCount int64      `gorm:"default:0" json:"comments_count"`
	SharesCount   int64      `gorm:"default:0" json:"shares_count"`
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// заполняется только при выборке с join users
	AuthorName string `gorm:"->;-:migration" json:"author_name,omitempty"`
}

func (Post) TableName() string {
	return "posts"
}

// PostCounters - живые счетчики поста
type PostCounters struct {
	Views    int64 `json:"views"`
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments"`
	Shares   int64 `json:"shares"`
}

func (p Post) Counters() PostCounters {
	return PostCounters{
		Views:    p.ViewsCount,
		Likes:    p.LikesCount,
		Comments: p.CommentsCount,
		Shares:   p.SharesCount,
	}
}

// Хэштеги хранятся в виде ",go,redis," чтобы искать точным LIKE '%,tag,%'
func EncodeHashtags(tags []string) string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = NormalizeTag(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	if len(out) == 0 {
		return ""
	}
	return "," + strings.Join(out, ",") + ","
}

func DecodeHashtags(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func NormalizeTag(t string) string {
	return strings.ToLower(strings.TrimLeft(strings.TrimSpace(t), "#"))
}

func (p Post) Tags() []string {
	return DecodeHashtags(p.Hashtags)
}
