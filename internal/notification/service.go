package notification

import (
	"context"
	"fmt"

	"github.com/fkhayef/studyhub/internal/domain"
	"github.com/fkhayef/studyhub/internal/store"
)

// Common errors
var (
	ErrNotificationNotFound = domain.ErrNotificationNotFound
	ErrNotRecipient         = fmt.Errorf("not the recipient of this notification: %w", domain.ErrNotAuthorized)
)

// Service handles notification business logic
type Service struct {
	repo *Repository
}

// NewService creates a new notification service
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// GetByID retrieves a notification by its ID
func (s *Service) GetByID(ctx context.Context, id string) (*Notification, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, ErrNotificationNotFound
	}
	return n, nil
}

// ListByRecipientID retrieves all notifications for a user
func (s *Service) ListByRecipientID(ctx context.Context, recipientID string, page, perPage int, unreadOnly bool) ([]*Notification, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListByRecipientID(ctx, recipientID, perPage, offset, unreadOnly)
}

// MarkAsRead marks a notification as read
func (s *Service) MarkAsRead(ctx context.Context, id, userID string) error {
	return s.repo.store.RunInTransaction(ctx, "notification.mark_read", func(tx *store.Tx) error {
		n, ok := tx.FindNotification(id)
		if !ok {
			return ErrNotificationNotFound
		}
		if n.RecipientID != userID {
			return ErrNotRecipient
		}
		_, err := tx.UpdateNotification(id, func(n *domain.Notification) error {
			n.IsRead = true
			return nil
		})
		return err
	})
}

// MarkAllAsRead marks all notifications as read for a user and reports how
// many changed
func (s *Service) MarkAllAsRead(ctx context.Context, userID string) (int, error) {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// GetUnreadCount returns the count of unread notifications
func (s *Service) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	return s.repo.GetUnreadCount(ctx, userID)
}

// Helper methods for creating specific notification types. They run inside
// the caller's transaction.

// NotifyJoinRequested tells a group creator that someone asked to join
func (s *Service) NotifyJoinRequested(tx *store.Tx, g domain.Group, requester domain.User) error {
	message := requester.Name + " asked to join " + g.Name
	_, err := s.repo.Create(tx, g.CreatorID, domain.NotificationJoinRequested, message, domain.EntityGroup, g.ID)
	return err
}

// NotifyRequestApproved tells a requester they were let into a group
func (s *Service) NotifyRequestApproved(tx *store.Tx, g domain.Group, userID string) error {
	message := "Your request to join " + g.Name + " was approved"
	_, err := s.repo.Create(tx, userID, domain.NotificationRequestApproved, message, domain.EntityGroup, g.ID)
	return err
}

// NotifyRequestRejected tells a requester their join request was declined
func (s *Service) NotifyRequestRejected(tx *store.Tx, g domain.Group, userID string) error {
	message := "Your request to join " + g.Name + " was declined"
	_, err := s.repo.Create(tx, userID, domain.NotificationRequestRejected, message, domain.EntityGroup, g.ID)
	return err
}

// NotifySessionScheduled tells each recipient about a new session
func (s *Service) NotifySessionScheduled(tx *store.Tx, g domain.Group, sess domain.Session, recipients []string) error {
	message := fmt.Sprintf("New session in %s: %s on %s at %s", g.Name, sess.Title, sess.Date, sess.Time)
	for _, id := range recipients {
		if _, err := s.repo.Create(tx, id, domain.NotificationSessionScheduled, message, domain.EntitySession, sess.ID); err != nil {
			return err
		}
	}
	return nil
}

// NotifySessionCanceled tells each recipient a session was called off
func (s *Service) NotifySessionCanceled(tx *store.Tx, sess domain.Session, recipients []string) error {
	message := fmt.Sprintf("Session %s on %s was canceled", sess.Title, sess.Date)
	for _, id := range recipients {
		if _, err := s.repo.Create(tx, id, domain.NotificationSessionCanceled, message, domain.EntitySession, sess.ID); err != nil {
			return err
		}
	}
	return nil
}
