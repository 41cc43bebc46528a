package user

import (
	"context"

	"github.com/fkhayef/studyhub/internal/store"
)

// Repository handles user reads against the domain store
type Repository struct {
	store *store.Store
}

// NewRepository creates a new user repository with the store injected
func NewRepository(st *store.Store) *Repository {
	return &Repository{store: st}
}

// GetByID retrieves a user by their ID. A missing user yields nil, nil.
func (r *Repository) GetByID(ctx context.Context, id string) (*User, error) {
	var found *User
	err := r.store.View(ctx, func(v *store.View) error {
		if u, ok := v.FindUser(id); ok {
			found = &u
		}
		return nil
	})
	return found, err
}

// GetByEmail retrieves a user by email, ignoring case
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	var found *User
	err := r.store.View(ctx, func(v *store.View) error {
		if u, ok := v.FindUserByEmail(email); ok {
			found = &u
		}
		return nil
	})
	return found, err
}

// List retrieves users newest first with pagination, plus the total count
func (r *Repository) List(ctx context.Context, limit, offset int) ([]*User, int, error) {
	var (
		users []*User
		total int
	)
	err := r.store.View(ctx, func(v *store.View) error {
		all := v.ListUsers()
		total = len(all)
		for i := offset; i < total && i < offset+limit; i++ {
			users = append(users, &all[i])
		}
		return nil
	})
	return users, total, err
}
