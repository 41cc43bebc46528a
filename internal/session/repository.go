package session

import (
	"context"

	"github.com/fkhayef/studyhub/internal/store"
)

// Repository handles session reads against the domain store
type Repository struct {
	store *store.Store
}

// NewRepository creates a new session repository
func NewRepository(st *store.Store) *Repository {
	return &Repository{store: st}
}

// GetByID retrieves a session by its ID. A missing session yields nil, nil.
func (r *Repository) GetByID(ctx context.Context, id string) (*Session, error) {
	var found *Session
	err := r.store.View(ctx, func(v *store.View) error {
		if s, ok := v.FindSession(id); ok {
			found = &s
		}
		return nil
	})
	return found, err
}

// ListByGroupID retrieves a group's sessions, most recently created first
func (r *Repository) ListByGroupID(ctx context.Context, groupID string) ([]*Session, error) {
	var sessions []*Session
	err := r.store.View(ctx, func(v *store.View) error {
		if _, ok := v.FindGroup(groupID); !ok {
			return ErrGroupNotFound
		}
		all := v.SessionsForGroup(groupID)
		for i := range all {
			sessions = append(sessions, &all[i])
		}
		return nil
	})
	return sessions, err
}

// ListActive retrieves every session that has not been canceled
func (r *Repository) ListActive(ctx context.Context) ([]*Session, error) {
	var sessions []*Session
	err := r.store.View(ctx, func(v *store.View) error {
		all := v.ListSessions()
		for i := range all {
			if !all[i].Canceled {
				sessions = append(sessions, &all[i])
			}
		}
		return nil
	})
	return sessions, err
}
