package group

import (
	"context"

	"github.com/fkhayef/studyhub/internal/store"
)

// Repository handles group reads against the domain store
type Repository struct {
	store *store.Store
}

// NewRepository creates a new group repository
func NewRepository(st *store.Store) *Repository {
	return &Repository{store: st}
}

// GetByID retrieves a group by its ID. A missing group yields nil, nil.
func (r *Repository) GetByID(ctx context.Context, id string) (*Group, error) {
	var found *Group
	err := r.store.View(ctx, func(v *store.View) error {
		if g, ok := v.FindGroup(id); ok {
			found = &g
		}
		return nil
	})
	return found, err
}

// Search retrieves the groups matching q, newest first, with pagination
func (r *Repository) Search(ctx context.Context, q SearchQuery, limit, offset int) ([]*Group, int, error) {
	var (
		groups []*Group
		total  int
	)
	err := r.store.View(ctx, func(v *store.View) error {
		all := v.SearchGroups(q.Query, q.Course)
		total = len(all)
		for i := offset; i < total && i < offset+limit; i++ {
			groups = append(groups, &all[i])
		}
		return nil
	})
	return groups, total, err
}

// ListByUserID retrieves the groups a user belongs to, in join order
func (r *Repository) ListByUserID(ctx context.Context, userID string) ([]*Group, error) {
	var groups []*Group
	err := r.store.View(ctx, func(v *store.View) error {
		all := v.GroupsForUser(userID)
		for i := range all {
			groups = append(groups, &all[i])
		}
		return nil
	})
	return groups, err
}

// GetMembers resolves the roster of a group in join order. Members that no
// longer resolve to a user are skipped.
func (r *Repository) GetMembers(ctx context.Context, groupID string) ([]*Member, error) {
	var members []*Member
	err := r.store.View(ctx, func(v *store.View) error {
		g, ok := v.FindGroup(groupID)
		if !ok {
			return ErrGroupNotFound
		}
		for _, id := range g.Members {
			if u, ok := v.FindUser(id); ok {
				members = append(members, &u)
			}
		}
		return nil
	})
	return members, err
}
