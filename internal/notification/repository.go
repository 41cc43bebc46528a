package notification

import (
	"context"
	"fmt"

	"github.com/fkhayef/studyhub/internal/domain"
	"github.com/fkhayef/studyhub/internal/store"
)

// Repository handles notification data in the domain store
type Repository struct {
	store *store.Store
}

// NewRepository creates a new notification repository
func NewRepository(st *store.Store) *Repository {
	return &Repository{store: st}
}

// Create inserts a new notification as part of an open transaction, so it
// commits or rolls back together with the change it reports.
func (r *Repository) Create(tx *store.Tx, recipientID string, typ NotificationType, message, entityType, entityID string) (*Notification, error) {
	n, err := tx.CreateNotification(domain.Notification{
		RecipientID:       recipientID,
		Type:              typ,
		Message:           message,
		RelatedEntityType: entityType,
		RelatedEntityID:   entityID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return &n, nil
}

// GetByID retrieves a notification by its ID. A missing one yields nil, nil.
func (r *Repository) GetByID(ctx context.Context, id string) (*Notification, error) {
	var found *Notification
	err := r.store.View(ctx, func(v *store.View) error {
		if n, ok := v.FindNotification(id); ok {
			found = &n
		}
		return nil
	})
	return found, err
}

// ListByRecipientID retrieves notifications for a user, newest first
func (r *Repository) ListByRecipientID(ctx context.Context, recipientID string, limit, offset int, unreadOnly bool) ([]*Notification, int, error) {
	var (
		page  []*Notification
		total int
	)
	err := r.store.View(ctx, func(v *store.View) error {
		var matched []domain.Notification
		for _, n := range v.ListNotifications(recipientID) {
			if unreadOnly && n.IsRead {
				continue
			}
			matched = append(matched, n)
		}
		total = len(matched)
		for i := offset; i < total && i < offset+limit; i++ {
			page = append(page, &matched[i])
		}
		return nil
	})
	return page, total, err
}

// GetUnreadCount returns the count of unread notifications for a user
func (r *Repository) GetUnreadCount(ctx context.Context, recipientID string) (int, error) {
	count := 0
	err := r.store.View(ctx, func(v *store.View) error {
		for _, n := range v.ListNotifications(recipientID) {
			if !n.IsRead {
				count++
			}
		}
		return nil
	})
	return count, err
}

// MarkAllAsRead marks all notifications as read for a user
func (r *Repository) MarkAllAsRead(ctx context.Context, recipientID string) (int, error) {
	marked := 0
	err := r.store.RunInTransaction(ctx, "notification.mark_all_read", func(tx *store.Tx) error {
		for _, n := range tx.ListNotifications(recipientID) {
			if n.IsRead {
				continue
			}
			if _, err := tx.UpdateNotification(n.ID, func(n *domain.Notification) error {
				n.IsRead = true
				return nil
			}); err != nil {
				return err
			}
			marked++
		}
		return nil
	})
	return marked, err
}
