package models

import "time"

type FollowStatus string

const (
	FollowPending  FollowStatus = "pending"
	FollowAccepted FollowStatus = "accepted"
	FollowBlocked  FollowStatus = "blocked"
)

// Follow - направленная связь подписки follower -> following.
// В ленте участвуют только связи со статусом accepted
type Follow struct {
	ID          int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	FollowerID  int64        `gorm:"uniqueIndex:follows_pair_idx;index:follows_follower_status_idx" json:"follower_id"`
	FollowingID int64        `gorm:"uniqueIndex:follows_pair_idx;index:follows_following_status_idx" json:"following_id"`
	Status      FollowStatus `gorm:"size:16;index:follows_follower_status_idx;index:follows_following_status_idx" json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	AcceptedAt  *time.Time   `json:"accepted_at,omitempty"`
}

func (Follow) TableName() string {
	return "follows"
}
