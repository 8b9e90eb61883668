package models

import (
	"time"
)

// Account represents a user account. The engine does not own credential
// state; it reads the privacy/active flags and writes the two denormalized
// follow counters, which are derived caches of accepted-edge counts.
type Account struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id"`
	Name      string    `gorm:"type:varchar(32);not null;uniqueIndex:flock_accounts_ux1;column:name"`
	IsPrivate bool      `gorm:"not null;default:false;column:is_private"`
	IsActive  bool      `gorm:"not null;default:true;column:is_active"`
	CreatedAt time.Time `gorm:"not null;column:created_at"`

	// Social stats, recomputed from the follow-edge set on every edge
	// mutation, never incremented against a stale read.
	FollowersCount int64 `gorm:"not null;default:0;column:followers_count"`
	FollowingCount int64 `gorm:"not null;default:0;column:following_count"`

	// Activity tracking
	LastreadAt time.Time `gorm:"not null;default:'1970-01-01 00:00:00';column:lastread_at"`
}

// TableName specifies the table name for Account
func (Account) TableName() string {
	return "flock_accounts"
}
