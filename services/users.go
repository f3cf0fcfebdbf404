package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"socialfeed/db"
	"socialfeed/feed"
	"socialfeed/models"

	"gorm.io/gorm"
)

var ErrNicknameTaken = errors.New("nickname is already taken")

const maxNicknameLength = 60

type CreateUserInput struct {
	Nickname  string
	FirstName string
	LastName  string
	City      string
	IsPrivate bool
}

// UserService - профили пользователей. Учетные данные хранит внешний сервис авторизации
type UserService struct {
	orm *gorm.DB
	now func() time.Time
}

func NewUserService(orm *gorm.DB) *UserService {
	return &UserService{orm: orm, now: time.Now}
}

func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	nickname := strings.TrimSpace(in.Nickname)
	if nickname == "" || len(nickname) > maxNicknameLength {
		return nil, &feed.ValidationError{Field: "nickname", Value: in.Nickname}
	}

	// Проверяем, существует ли пользователь с таким никнеймом
	var alreadyExists int64
	err := db.Write(ctx, s.orm).Model(&models.User{}).Where("nickname = ?", nickname).Count(&alreadyExists).Error
	if err != nil {
		return nil, fmt.Errorf("error checking if user exists: %w", err)
	}
	if alreadyExists > 0 {
		return nil, ErrNicknameTaken
	}

	now := s.now().UTC()
	user := &models.User{
		Nickname:  nickname,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		City:      strings.TrimSpace(in.City),
		IsPrivate: in.IsPrivate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.Write(ctx, s.orm).Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := db.ReadOnly(ctx, s.orm).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// SearchUsers ищет по префиксу имени и фамилии
func (s *UserService) SearchUsers(ctx context.Context, firstName, lastName string, limit, offset int) ([]models.User, error) {
	users := []models.User{}
	q := db.ReadOnly(ctx, s.orm).Model(&models.User{})
	if firstName != "" {
		q = q.Where("first_name LIKE ? ESCAPE '\\'", likeEscaper.Replace(firstName)+"%")
	}
	if lastName != "" {
		q = q.Where("last_name LIKE ? ESCAPE '\\'", likeEscaper.Replace(lastName)+"%")
	}
	err := q.Order("id").Limit(limit).Offset(offset).Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return users, nil
}

// SetPrivacy меняет режим профиля. Уже принятые подписки остаются, новые на закрытый профиль ждут подтверждения
func (s *UserService) SetPrivacy(ctx context.Context, userID int64, private bool) error {
	res := db.Write(ctx, s.orm).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{"is_private": private, "updated_at": s.now().UTC()})
	if res.Error != nil {
		return fmt.Errorf("failed to update privacy: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
