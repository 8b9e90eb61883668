package notify

import (
	"context"
	"time"

	"github.com/flocknet/flock/internal/models"
)

// NotificationView is the read-side rendering of a persisted notification.
type NotificationView struct {
	ID         int64  `json:"id"`
	Type       string `json:"type"`
	SenderID   int64  `json:"sender_id"`
	EntityKind string `json:"entity_kind,omitempty"`
	EntityID   int64  `json:"entity_id,omitempty"`
	Message    string `json:"message"`
	GroupKey   string `json:"group_key,omitempty"`
	IsRead     bool   `json:"is_read"`
	CreatedAt  string `json:"created_at"`
}

// Page is one page of a recipient's notifications plus the unread count.
type Page struct {
	Notifications []*NotificationView `json:"notifications"`
	Unread        int64               `json:"unread"`
}

// Inbox is the read side of the notification store.
type Inbox struct {
	store Store
}

// NewInbox creates a notification inbox.
func NewInbox(store Store) *Inbox {
	return &Inbox{store: store}
}

// List returns one page of the recipient's notifications together with the
// total unread count.
func (i *Inbox) List(ctx context.Context, userID int64, page, limit int, unreadOnly bool) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	notifs, err := i.store.ListByRecipient(ctx, userID, page, limit, unreadOnly)
	if err != nil {
		return nil, err
	}
	unread, err := i.store.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]*NotificationView, 0, len(notifs))
	for _, n := range notifs {
		views = append(views, renderNotification(n))
	}
	return &Page{Notifications: views, Unread: unread}, nil
}

// MarkRead flags a single notification as read.
func (i *Inbox) MarkRead(ctx context.Context, userID, notifID int64) error {
	return i.store.MarkRead(ctx, userID, notifID)
}

// MarkAllRead flags all of the recipient's notifications as read.
func (i *Inbox) MarkAllRead(ctx context.Context, userID int64) error {
	return i.store.MarkAllRead(ctx, userID)
}

// Delete soft-deletes one of the recipient's notifications. Other recipients'
// notifications are out of reach and read as missing.
func (i *Inbox) Delete(ctx context.Context, userID, notifID int64) error {
	return i.store.SoftDelete(ctx, userID, notifID)
}

func renderNotification(n *models.Notification) *NotificationView {
	view := &NotificationView{
		ID:        n.ID,
		Type:      models.NotifyTypeName(n.Type),
		SenderID:  n.SrcID,
		Message:   n.Payload,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
	if n.EntityID != 0 {
		view.EntityKind = models.EntityKindName(n.EntityKind)
		view.EntityID = n.EntityID
	}
	if n.GroupKey.Valid {
		view.GroupKey = n.GroupKey.String
	}
	return view
}
