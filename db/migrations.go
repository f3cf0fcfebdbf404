package db

import (
	"fmt"

	"gorm.io/gorm"
)

// Индексы под выборку кандидатов: свежие опубликованные посты по автору и видимости
var feedIndexes = []struct {
	name  string
	table string
	cols  string
}{
	{"idx_posts_feed_author_created", "posts", "author_id, is_published, is_deleted, created_at"},
	{"idx_posts_feed_visibility_created", "posts", "visibility, is_published, is_deleted, created_at"},
	{"idx_post_views_user_viewed", "post_views", "user_id, viewed_at"},
}

// CreateFeedIndexes создает составные индексы, которые gorm-теги не описывают
func CreateFeedIndexes(orm *gorm.DB) error {
	for _, idx := range feedIndexes {
		createIndexSQL := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (%s);`, idx.name, idx.table, idx.cols)
		if err := orm.Exec(createIndexSQL).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}
	return nil
}
