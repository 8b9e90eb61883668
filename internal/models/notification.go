package models

import (
	"database/sql"
	"time"
)

// Notification represents a persisted fan-out record. Immutable except for
// the read-flag transition and soft-delete. SrcID is the sender, DstID the
// recipient; a notification is never written with SrcID == DstID.
type Notification struct {
	ID         int64          `gorm:"primaryKey;autoIncrement;column:id"`
	Type       int16          `gorm:"type:smallint;not null;column:type_id"`
	SrcID      int64          `gorm:"not null;column:src_id"`
	DstID      int64          `gorm:"not null;column:dst_id;index:flock_notifs_ix_dst,priority:1;index:flock_notifs_ix_unread,priority:1"`
	EntityKind int16          `gorm:"type:smallint;not null;column:entity_kind"`
	EntityID   int64          `gorm:"not null;column:entity_id"`
	Payload    string         `gorm:"type:text;not null;column:payload"`
	GroupKey   sql.NullString `gorm:"type:varchar(64);column:group_key"`
	IsRead     bool           `gorm:"not null;default:false;column:is_read;index:flock_notifs_ix_unread,priority:2"`
	IsActive   bool           `gorm:"not null;default:true;column:is_active"`
	CreatedAt  time.Time      `gorm:"not null;column:created_at;index:flock_notifs_ix_dst,priority:2"`

	// Relationships
	Src *Account `gorm:"foreignKey:SrcID;references:ID"`
	Dst *Account `gorm:"foreignKey:DstID;references:ID"`
}

// TableName specifies the table name for Notification
func (Notification) TableName() string {
	return "flock_notifs"
}

// Notification type constants
const (
	NotifyTypeLike          int16 = 1
	NotifyTypeComment       int16 = 2
	NotifyTypeReply         int16 = 3
	NotifyTypeFollow        int16 = 4
	NotifyTypeFollowRequest int16 = 5
	NotifyTypeShare         int16 = 6
	NotifyTypeMention       int16 = 7
)

// NotifyTypeName returns the wire name for a notification type.
func NotifyTypeName(typeID int16) string {
	names := map[int16]string{
		NotifyTypeLike:          "like",
		NotifyTypeComment:       "comment",
		NotifyTypeReply:         "reply",
		NotifyTypeFollow:        "follow",
		NotifyTypeFollowRequest: "follow_request",
		NotifyTypeShare:         "share",
		NotifyTypeMention:       "mention",
	}
	if name, ok := names[typeID]; ok {
		return name
	}
	return "unknown"
}
