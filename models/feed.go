package models

import "time"

type FeedType string

const (
	FeedHome     FeedType = "home"
	FeedTrending FeedType = "trending"
	FeedExplore  FeedType = "explore"
)

// FeedItem - пост в выдаче ленты вместе с компонентами оценки
type FeedItem struct {
	ID              int64        `json:"id"`
	AuthorID        int64        `json:"author_id"`
	AuthorName      string       `json:"author_name,omitempty"`
	Content         string       `json:"content"`
	Hashtags        []string     `json:"hashtags,omitempty"`
	Visibility      Visibility   `json:"visibility"`
	Counters        PostCounters `json:"counters"`
	CreatedAt       time.Time    `json:"created_at"`
	RecencyScore    float64      `json:"recency_score"`
	PopularityScore float64      `json:"popularity_score"`
	RelevanceScore  float64      `json:"relevance_score"`
	TotalScore      float64      `json:"total_score"`
	Engagement      float64      `json:"engagement,omitempty"`
	Liked           bool         `json:"liked"`
}

type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

// FeedPage - ответ API для ленты
type FeedPage struct {
	Items      []FeedItem `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// CacheEntry - неизменяемый снимок страницы ленты в кеше
type CacheEntry struct {
	Page       FeedPage  `json:"page"`
	CreatedAt  time.Time `json:"created_at"`
	TTLSeconds int       `json:"ttl_seconds"`
}

func (e CacheEntry) ExpiredAt(now time.Time) bool {
	return !now.Before(e.CreatedAt.Add(time.Duration(e.TTLSeconds) * time.Second))
}
