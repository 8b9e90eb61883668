package notify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/flocknet/flock/internal/models"
	"github.com/flocknet/flock/pkg/logging"
)

// Store is the persistence surface the fan-out writes to.
type Store interface {
	Create(ctx context.Context, notif *models.Notification) error
	ListByRecipient(ctx context.Context, dstID int64, page, limit int, unreadOnly bool) ([]*models.Notification, error)
	CountUnread(ctx context.Context, dstID int64) (int64, error)
	MarkRead(ctx context.Context, dstID, notifID int64) error
	MarkAllRead(ctx context.Context, dstID int64) error
	SoftDelete(ctx context.Context, dstID, notifID int64) error
}

// Directory resolves account ids to accounts for message rendering.
type Directory interface {
	GetByID(ctx context.Context, id int64) (*models.Account, error)
}

// Fanout derives and persists notification records from graph, engagement,
// and comment events. Delivery transport is external; the fan-out only
// writes rows. Self-notifications are suppressed unconditionally.
type Fanout struct {
	store     Store
	directory Directory
	logger    *zap.Logger
}

// NewFanout creates a notification fan-out.
func NewFanout(store Store, directory Directory) *Fanout {
	return &Fanout{
		store:     store,
		directory: directory,
		logger:    logging.WithComponent("notify-fanout"),
	}
}

// FollowRequested records a pending follow request aimed at a private
// account's owner.
func (f *Fanout) FollowRequested(ctx context.Context, srcID, dstID int64) error {
	return f.write(ctx, models.NotifyTypeFollowRequest, srcID, dstID,
		models.EntityRef{Kind: models.EntityKindPost, ID: 0},
		"%s requested to follow you")
}

// Followed records an accepted follow.
func (f *Fanout) Followed(ctx context.Context, srcID, dstID int64) error {
	return f.write(ctx, models.NotifyTypeFollow, srcID, dstID,
		models.EntityRef{Kind: models.EntityKindPost, ID: 0},
		"%s started following you")
}

// FollowAccepted tells the original follower their request was accepted.
func (f *Fanout) FollowAccepted(ctx context.Context, ownerID, followerID int64) error {
	return f.write(ctx, models.NotifyTypeFollow, ownerID, followerID,
		models.EntityRef{Kind: models.EntityKindPost, ID: 0},
		"%s accepted your follow request")
}

// Liked records a like on a post or comment, addressed to the entity's
// author.
func (f *Fanout) Liked(ctx context.Context, srcID, authorID int64, ref models.EntityRef) error {
	return f.write(ctx, models.NotifyTypeLike, srcID, authorID, ref,
		"%s liked your "+models.EntityKindName(ref.Kind))
}

// Commented records a comment on a post, addressed to the post's author.
func (f *Fanout) Commented(ctx context.Context, srcID, postAuthorID, postID int64) error {
	return f.write(ctx, models.NotifyTypeComment, srcID, postAuthorID,
		models.EntityRef{Kind: models.EntityKindPost, ID: postID},
		"%s commented on your post")
}

// Replied records a reply, addressed to the parent comment's author. The
// post author, when distinct, additionally receives a comment notification
// through Commented.
func (f *Fanout) Replied(ctx context.Context, srcID, parentAuthorID, commentID int64) error {
	return f.write(ctx, models.NotifyTypeReply, srcID, parentAuthorID,
		models.EntityRef{Kind: models.EntityKindComment, ID: commentID},
		"%s replied to your comment")
}

// Shared records a share-repost, addressed to the original post's author.
func (f *Fanout) Shared(ctx context.Context, srcID, originalAuthorID, originalPostID int64) error {
	return f.write(ctx, models.NotifyTypeShare, srcID, originalAuthorID,
		models.EntityRef{Kind: models.EntityKindPost, ID: originalPostID},
		"%s shared your post")
}

// Mentioned records an @-mention inside a post or comment body.
func (f *Fanout) Mentioned(ctx context.Context, srcID, mentionedID int64, ref models.EntityRef) error {
	return f.write(ctx, models.NotifyTypeMention, srcID, mentionedID, ref,
		"%s mentioned you in a "+models.EntityKindName(ref.Kind))
}

func (f *Fanout) write(ctx context.Context, typeID int16, srcID, dstID int64, ref models.EntityRef, msgFormat string) error {
	if srcID == dstID {
		return nil
	}

	senderName := f.senderName(ctx, srcID)
	notif := &models.Notification{
		Type:       typeID,
		SrcID:      srcID,
		DstID:      dstID,
		EntityKind: ref.Kind,
		EntityID:   ref.ID,
		Payload:    fmt.Sprintf(msgFormat, senderName),
		IsActive:   true,
		CreatedAt:  time.Now().UTC(),
	}
	if key, ok := groupKey(typeID, ref); ok {
		notif.GroupKey.String = key
		notif.GroupKey.Valid = true
	}

	if err := f.store.Create(ctx, notif); err != nil {
		return fmt.Errorf("failed to persist %s notification: %w", models.NotifyTypeName(typeID), err)
	}

	f.logger.Debug("notification written",
		zap.String("type", models.NotifyTypeName(typeID)),
		zap.Int64("src_id", srcID),
		zap.Int64("dst_id", dstID),
		zap.Int64("entity_id", ref.ID))
	return nil
}

func (f *Fanout) senderName(ctx context.Context, srcID int64) string {
	acc, err := f.directory.GetByID(ctx, srcID)
	if err != nil || acc == nil {
		return "someone"
	}
	return "@" + acc.Name
}

// groupKey is computed deterministically from the type and the target
// reference so clients can aggregate many notifications about the same
// entity. Only like and comment notifications carry one.
func groupKey(typeID int16, ref models.EntityRef) (string, bool) {
	switch typeID {
	case models.NotifyTypeLike, models.NotifyTypeComment:
		return fmt.Sprintf("%s:%s:%d",
			models.NotifyTypeName(typeID), models.EntityKindName(ref.Kind), ref.ID), true
	}
	return "", false
}
