package services

import (
	"context"
	"fmt"

	"socialfeed/db"
	"socialfeed/feed"
	"socialfeed/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxUserInterests = 50

// InterestService хранит интересы пользователя для explore-ленты
type InterestService struct {
	orm *gorm.DB
}

func NewInterestService(orm *gorm.DB) *InterestService {
	return &InterestService{orm: orm}
}

// SetUserInterests заменяет набор интересов пользователя. Возвращает нормализованные имена
func (s *InterestService) SetUserInterests(ctx context.Context, userID int64, names []string) ([]string, error) {
	names = feed.NormalizeInterests(names)
	if len(names) > maxUserInterests {
		return nil, &feed.ValidationError{Field: "interests", Value: fmt.Sprintf("%d items", len(names))}
	}

	err := db.Write(ctx, s.orm).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.UserInterest{}).Error; err != nil {
			return err
		}
		for _, name := range names {
			interest := models.Interest{Name: name}
			if err := tx.Where(models.Interest{Name: name}).FirstOrCreate(&interest).Error; err != nil {
				return err
			}
			err := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&models.UserInterest{UserID: userID, InterestID: interest.ID}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set interests: %w", err)
	}
	return names, nil
}

// UserInterests возвращает имена интересов пользователя по алфавиту
func (s *InterestService) UserInterests(ctx context.Context, userID int64) ([]string, error) {
	names := []string{}
	err := db.ReadOnly(ctx, s.orm).
		Table("user_interests ui").
		Joins("JOIN interests i ON i.id = ui.interest_id").
		Where("ui.user_id = ?", userID).
		Order("i.name").
		Pluck("i.name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get interests: %w", err)
	}
	return names, nil
}
