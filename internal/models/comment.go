package models

import (
	"database/sql"
	"time"
)

// Comment represents a comment on a post. Comments carry no visibility of
// their own; they inherit the parent post's audience. A reply sets
// ParentCommentID.
type Comment struct {
	ID              int64         `gorm:"primaryKey;autoIncrement;column:id"`
	PostID          int64         `gorm:"not null;column:post_id;index:flock_comments_ix_post,priority:1"`
	AuthorID        int64         `gorm:"not null;column:author_id;index"`
	ParentCommentID sql.NullInt64 `gorm:"column:parent_comment_id"`
	Body            string        `gorm:"type:text;not null;column:body"`
	IsActive        bool          `gorm:"not null;default:true;column:is_active;index:flock_comments_ix_post,priority:2"`
	CreatedAt       time.Time     `gorm:"not null;column:created_at;index:flock_comments_ix_post,priority:3"`

	// Derived engagement counter
	LikesCount int64 `gorm:"not null;default:0;column:likes_count"`

	// Relationships
	Post   *Post    `gorm:"foreignKey:PostID;references:ID"`
	Author *Account `gorm:"foreignKey:AuthorID;references:ID"`
	Parent *Comment `gorm:"foreignKey:ParentCommentID;references:ID"`
}

// TableName specifies the table name for Comment
func (Comment) TableName() string {
	return "flock_comments"
}
