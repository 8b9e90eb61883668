package models

import (
	"time"
)

// Entity kind constants for polymorphic references. Consumers must switch
// on the kind before dereferencing the id.
const (
	EntityKindPost    int16 = 1
	EntityKindComment int16 = 2
)

// EntityKindName returns the wire name for an entity kind.
func EntityKindName(kind int16) string {
	switch kind {
	case EntityKindPost:
		return "post"
	case EntityKindComment:
		return "comment"
	}
	return "unknown"
}

// ParseEntityKind maps a wire name to an entity kind.
func ParseEntityKind(s string) (int16, bool) {
	switch s {
	case "post":
		return EntityKindPost, true
	case "comment":
		return EntityKindComment, true
	}
	return 0, false
}

// EntityRef is a tagged reference to a post or comment.
type EntityRef struct {
	Kind int16
	ID   int64
}

// EngagementMark is a single actor's like on a single entity. The composite
// primary key is the one-like-per-actor-per-entity constraint; likes_count
// on the referenced entity is derived from the size of this set.
type EngagementMark struct {
	ActorID    int64     `gorm:"primaryKey;column:actor_id"`
	EntityKind int16     `gorm:"primaryKey;type:smallint;column:entity_kind"`
	EntityID   int64     `gorm:"primaryKey;column:entity_id;index:flock_marks_ix_entity"`
	CreatedAt  time.Time `gorm:"not null;column:created_at"`

	// Relationships
	Actor *Account `gorm:"foreignKey:ActorID;references:ID"`
}

// TableName specifies the table name for EngagementMark
func (EngagementMark) TableName() string {
	return "flock_engagement_marks"
}
