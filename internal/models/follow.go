package models

import (
	"time"
)

// FollowEdge represents a directed follow relationship from follower to
// target. The composite primary key doubles as the unique constraint that
// serializes concurrent creates for the same pair.
type FollowEdge struct {
	FollowerID int64     `gorm:"primaryKey;column:follower_id;index:flock_follows_ix_follower,priority:1"`
	TargetID   int64     `gorm:"primaryKey;column:target_id;index:flock_follows_ix_target,priority:1"`
	Status     int16     `gorm:"type:smallint;not null;default:1;column:status;index:flock_follows_ix_follower,priority:2;index:flock_follows_ix_target,priority:2"`
	CreatedAt  time.Time `gorm:"not null;column:created_at;index:flock_follows_ix_follower,priority:3;index:flock_follows_ix_target,priority:3"`

	// Relationships
	Follower *Account `gorm:"foreignKey:FollowerID;references:ID"`
	Target   *Account `gorm:"foreignKey:TargetID;references:ID"`
}

// TableName specifies the table name for FollowEdge
func (FollowEdge) TableName() string {
	return "flock_follows"
}

// Follow edge status constants
const (
	FollowStatusPending  int16 = 1 // Request awaiting the target's decision
	FollowStatusAccepted int16 = 2 // Only accepted edges count toward audience and counters
	FollowStatusBlocked  int16 = 3 // Target blocked the follower
)

// FollowStatusName returns the wire name for a follow edge status.
func FollowStatusName(status int16) string {
	switch status {
	case FollowStatusPending:
		return "pending"
	case FollowStatusAccepted:
		return "accepted"
	case FollowStatusBlocked:
		return "blocked"
	}
	return "unknown"
}
