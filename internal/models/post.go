package models

import (
	"database/sql"
	"time"
)

// Post represents a post. A share-repost references the original post via
// OriginalPostID. The engagement counters are derived caches: each is
// recomputed from its authoritative set (marks, comments, share posts) in
// the same transaction that mutates the set.
type Post struct {
	ID             int64         `gorm:"primaryKey;autoIncrement;column:id"`
	AuthorID       int64         `gorm:"not null;column:author_id;index:flock_posts_ix_author,priority:1"`
	Body           string        `gorm:"type:text;not null;column:body"`
	Visibility     int16         `gorm:"type:smallint;not null;default:1;column:visibility;index:flock_posts_ix_vis,priority:1"`
	IsActive       bool          `gorm:"not null;default:true;column:is_active;index:flock_posts_ix_vis,priority:2"`
	OriginalPostID sql.NullInt64 `gorm:"column:original_post_id;index"`
	CreatedAt      time.Time     `gorm:"not null;column:created_at;index:flock_posts_ix_author,priority:2;index:flock_posts_ix_vis,priority:3"`
	UpdatedAt      time.Time     `gorm:"not null;column:updated_at"`

	// Derived engagement counters
	LikesCount    int64 `gorm:"not null;default:0;column:likes_count"`
	CommentsCount int64 `gorm:"not null;default:0;column:comments_count"`
	SharesCount   int64 `gorm:"not null;default:0;column:shares_count"`

	// Relationships
	Author   *Account `gorm:"foreignKey:AuthorID;references:ID"`
	Original *Post    `gorm:"foreignKey:OriginalPostID;references:ID"`
}

// TableName specifies the table name for Post
func (Post) TableName() string {
	return "flock_posts"
}

// Post visibility constants
const (
	VisibilityPublic    int16 = 1
	VisibilityFollowers int16 = 2
	VisibilityPrivate   int16 = 3
)

// VisibilityName returns the wire name for a visibility setting.
func VisibilityName(v int16) string {
	switch v {
	case VisibilityPublic:
		return "public"
	case VisibilityFollowers:
		return "followers"
	case VisibilityPrivate:
		return "private"
	}
	return "unknown"
}

// ParseVisibility maps a wire name to a visibility setting.
func ParseVisibility(s string) (int16, bool) {
	switch s {
	case "public":
		return VisibilityPublic, true
	case "followers":
		return VisibilityFollowers, true
	case "private":
		return VisibilityPrivate, true
	}
	return 0, false
}

// EngagementScore is the ordering key of the popular feed.
func (p *Post) EngagementScore() int64 {
	return p.LikesCount + p.CommentsCount + p.SharesCount
}
