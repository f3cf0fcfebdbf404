package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"socialfeed/db"
	"socialfeed/models"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// setupTestDB - sqlite в памяти. Одно соединение: у каждого соединения :memory: своя база
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	orm, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := orm.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(orm))
	return orm
}

func seedUsers(t *testing.T, orm *gorm.DB, n int) []models.User {
	t.Helper()
	faker := gofakeit.New(42)
	users := make([]models.User, 0, n)
	for i := 0; i < n; i++ {
		users = append(users, models.User{
			Nickname:  faker.Username() + faker.DigitN(4),
			FirstName: faker.FirstName(),
			LastName:  faker.LastName(),
			City:      faker.City(),
			CreatedAt: t0,
		})
	}
	require.NoError(t, orm.Create(&users).Error)
	return users
}

func seedFollow(t *testing.T, orm *gorm.DB, follower, following int64, status models.FollowStatus) {
	t.Helper()
	require.NoError(t, orm.Create(&models.Follow{
		FollowerID:  follower,
		FollowingID: following,
		Status:      status,
		CreatedAt:   t0,
	}).Error)
}

func seedPost(t *testing.T, orm *gorm.DB, p models.Post) models.Post {
	t.Helper()
	if p.Visibility == "" {
		p.Visibility = models.VisibilityPublic
	}
	p.IsPublished = true
	if p.CreatedAt.IsZero() {
		p.CreatedAt = t0
	}
	p.UpdatedAt = p.CreatedAt
	require.NoError(t, orm.Create(&p).Error)
	return p
}

type recordingInvalidator struct {
	mu       sync.Mutex
	users    []int64
	trending int
}

func (r *recordingInvalidator) InvalidateUserFeed(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, userID)
	return nil
}

func (r *recordingInvalidator) InvalidateTrending(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trending++
	return nil
}

func (r *recordingInvalidator) invalidated() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.users...)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []FeedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev FeedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) published() []FeedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]FeedEvent(nil), p.events...)
}
