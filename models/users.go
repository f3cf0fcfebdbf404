package models

import (
	"time"
)

type User struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Nickname  string    `gorm:"size:60;uniqueIndex" json:"nickname"`
	FirstName string    `gorm:"size:255" json:"first_name"`
	LastName  string    `gorm:"size:255" json:"last_name"`
	City      string    `gorm:"size:255" json:"city"`
	// закрытый профиль: подписки на него требуют подтверждения
	IsPrivate bool      `gorm:"default:false" json:"is_private"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u User) DisplayName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Nickname
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

type Interest struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"size:60;uniqueIndex:interests_name_key" json:"name"`
}

func (Interest) TableName() string {
	return "interests"
}

type UserInterest struct {
	ID         int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     int64 `gorm:"uniqueIndex:user_interests_pair_idx" json:"user_id"`
	InterestID int64 `gorm:"uniqueIndex:user_interests_pair_idx" json:"interest_id"`
}

func (UserInterest) TableName() string {
	return "user_interests"
}
