package group

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fkhayef/studyhub/internal/domain"
	"github.com/fkhayef/studyhub/internal/normalize"
	"github.com/fkhayef/studyhub/internal/notification"
	"github.com/fkhayef/studyhub/internal/store"
)

// Common errors
var (
	ErrGroupNotFound      = domain.ErrGroupNotFound
	ErrAlreadyMember      = domain.ErrAlreadyMember
	ErrGroupFull          = domain.ErrGroupFull
	ErrNotAuthorized      = domain.ErrNotAuthorized
	ErrCreatorCannotLeave = domain.ErrCreatorCannotLeave
)

// Service handles group business logic
type Service struct {
	repo     *Repository
	notifier *notification.Service
	logger   *zap.Logger
}

// NewService creates a new group service
func NewService(repo *Repository, notifier *notification.Service, logger *zap.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, logger: logger}
}

// requireActor resolves the acting user inside tx.
func requireActor(tx *store.Tx, actorID string) (domain.User, error) {
	if actorID == "" {
		return domain.User{}, domain.ErrNotAuthenticated
	}
	u, ok := tx.FindUser(actorID)
	if !ok {
		return domain.User{}, domain.ErrNotAuthenticated
	}
	return u, nil
}

// Create creates a new group with the actor as creator and first member
func (s *Service) Create(ctx context.Context, actorID string, req *CreateGroupRequest) (*Group, error) {
	var created Group
	err := s.repo.store.RunInTransaction(ctx, "group.create", func(tx *store.Tx) error {
		if _, err := requireActor(tx, actorID); err != nil {
			return err
		}
		name := normalize.Text(req.Name)
		if name == "" {
			return domain.Invalid("name is required")
		}

		var err error
		created, err = tx.CreateGroup(domain.Group{
			Name:        name,
			CourseName:  normalize.Text(req.CourseName),
			CourseCode:  strings.ToUpper(normalize.Text(req.CourseCode)),
			Description: normalize.Text(req.Description),
			Topics:      normalize.Topics(req.Topics),
			MaxMembers:  req.MaxMembers,
			Schedule:    normalize.Text(req.Schedule),
			Location:    normalize.Text(req.Location),
			IsPrivate:   req.IsPrivate,
			CreatorID:   actorID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("group created",
		zap.String("group_id", created.ID),
		zap.String("creator_id", actorID),
		zap.Bool("private", created.IsPrivate))
	return &created, nil
}

// GetByID retrieves a group by its ID
func (s *Service) GetByID(ctx context.Context, id string) (*Group, error) {
	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGroupNotFound
	}
	return g, nil
}

// Search retrieves the groups matching q with pagination. An empty query
// lists every group.
func (s *Service) Search(ctx context.Context, q SearchQuery, page, perPage int) ([]*Group, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.Search(ctx, q, perPage, offset)
}

// ListByUserID retrieves all groups for a user
func (s *Service) ListByUserID(ctx context.Context, userID string) ([]*Group, error) {
	return s.repo.ListByUserID(ctx, userID)
}

// Update shallow-merges the permitted fields. Only the creator may edit.
func (s *Service) Update(ctx context.Context, actorID, id string, req *UpdateGroupRequest) (*Group, error) {
	var updated Group
	err := s.repo.store.RunInTransaction(ctx, "group.update", func(tx *store.Tx) error {
		if _, err := requireActor(tx, actorID); err != nil {
			return err
		}
		g, ok := tx.FindGroup(id)
		if !ok {
			return ErrGroupNotFound
		}
		if g.CreatorID != actorID {
			return ErrNotAuthorized
		}

		var err error
		updated, err = tx.UpdateGroup(id, func(g *domain.Group) error {
			return applyUpdate(g, req)
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func applyUpdate(g *domain.Group, req *UpdateGroupRequest) error {
	if req.Name != nil {
		name := normalize.Text(*req.Name)
		if name == "" {
			return domain.Invalid("name cannot be empty")
		}
		g.Name = name
	}
	if req.CourseName != nil {
		g.CourseName = normalize.Text(*req.CourseName)
	}
	if req.CourseCode != nil {
		g.CourseCode = strings.ToUpper(normalize.Text(*req.CourseCode))
	}
	if req.Description != nil {
		g.Description = normalize.Text(*req.Description)
	}
	if req.Topics != nil {
		g.Topics = normalize.Topics(*req.Topics)
	}
	if req.MaxMembers != nil {
		g.MaxMembers = *req.MaxMembers
	}
	if req.Schedule != nil {
		g.Schedule = normalize.Text(*req.Schedule)
	}
	if req.Location != nil {
		g.Location = normalize.Text(*req.Location)
	}
	if req.IsPrivate != nil {
		g.IsPrivate = *req.IsPrivate
	}
	return nil
}

// Delete removes a group with its memberships, requests and sessions.
// Deleting a missing group is a no-op.
func (s *Service) Delete(ctx context.Context, actorID, id string) error {
	deleted := false
	err := s.repo.store.RunInTransaction(ctx, "group.delete", func(tx *store.Tx) error {
		g, ok := tx.FindGroup(id)
		if !ok {
			return nil
		}
		if _, err := requireActor(tx, actorID); err != nil {
			return err
		}
		if g.CreatorID != actorID {
			return ErrNotAuthorized
		}
		deleted = tx.DeleteGroup(id)
		return nil
	})
	if err == nil && deleted {
		s.logger.Info("group deleted", zap.String("group_id", id), zap.String("actor_id", actorID))
	}
	return err
}

// Join adds the actor to a public group, or files a join request for a
// private one and tells the creator about it.
func (s *Service) Join(ctx context.Context, actorID, groupID string) (JoinOutcome, error) {
	var outcome JoinOutcome
	err := s.repo.store.RunInTransaction(ctx, "group.join", func(tx *store.Tx) error {
		if actorID == "" {
			return domain.ErrNotAuthenticated
		}
		g, ok := tx.FindGroup(groupID)
		if !ok {
			return ErrGroupNotFound
		}
		actor, ok := tx.FindUser(actorID)
		if !ok {
			return domain.ErrUserNotFound
		}
		if tx.IsMember(groupID, actorID) {
			return ErrAlreadyMember
		}
		if tx.IsPending(groupID, actorID) {
			outcome = domain.JoinAlreadyRequested
			return nil
		}
		if g.IsFull() {
			return ErrGroupFull
		}

		if !g.IsPrivate {
			outcome = domain.JoinJoined
			return tx.AddMember(groupID, actorID)
		}
		outcome = domain.JoinRequested
		if _, err := tx.AddPending(groupID, actorID); err != nil {
			return err
		}
		return s.notifier.NotifyJoinRequested(tx, g, actor)
	})
	if err != nil {
		return "", err
	}
	return outcome, nil
}

// Leave removes the actor from a group. It is a no-op when the group or user
// is missing or the user is not a member; the creator cannot leave.
func (s *Service) Leave(ctx context.Context, actorID, groupID string) error {
	return s.repo.store.RunInTransaction(ctx, "group.leave", func(tx *store.Tx) error {
		g, ok := tx.FindGroup(groupID)
		if !ok || !tx.IsMember(groupID, actorID) {
			return nil
		}
		if g.CreatorID == actorID {
			return ErrCreatorCannotLeave
		}
		tx.RemoveMember(groupID, actorID)
		return nil
	})
}

// Approve moves a pending requester into the group. Only the creator may
// approve; a missing group or a user without a request is a no-op.
func (s *Service) Approve(ctx context.Context, actorID, groupID, userID string) error {
	return s.repo.store.RunInTransaction(ctx, "group.approve", func(tx *store.Tx) error {
		g, ok := tx.FindGroup(groupID)
		if !ok {
			return nil
		}
		if _, err := requireActor(tx, actorID); err != nil {
			return err
		}
		if g.CreatorID != actorID {
			return ErrNotAuthorized
		}
		if g.IsFull() {
			return ErrGroupFull
		}
		if !tx.IsPending(groupID, userID) {
			return nil
		}
		if err := tx.AddMember(groupID, userID); err != nil {
			return err
		}
		return s.notifier.NotifyRequestApproved(tx, g, userID)
	})
}

// Reject drops a pending request without touching membership. Only the
// creator may reject; a missing group is a no-op.
func (s *Service) Reject(ctx context.Context, actorID, groupID, userID string) error {
	return s.repo.store.RunInTransaction(ctx, "group.reject", func(tx *store.Tx) error {
		g, ok := tx.FindGroup(groupID)
		if !ok {
			return nil
		}
		if _, err := requireActor(tx, actorID); err != nil {
			return err
		}
		if g.CreatorID != actorID {
			return ErrNotAuthorized
		}
		if !tx.RemovePending(groupID, userID) {
			return nil
		}
		if _, ok := tx.FindUser(userID); !ok {
			return nil
		}
		return s.notifier.NotifyRequestRejected(tx, g, userID)
	})
}

// GetMembers retrieves the roster of a group
func (s *Service) GetMembers(ctx context.Context, groupID string) ([]*Member, error) {
	return s.repo.GetMembers(ctx, groupID)
}

// PendingRequests lists the users waiting for approval. Only the creator may
// see them.
func (s *Service) PendingRequests(ctx context.Context, actorID, groupID string) ([]*Member, error) {
	var pending []*Member
	err := s.repo.store.View(ctx, func(v *store.View) error {
		if _, ok := v.FindUser(actorID); !ok {
			return domain.ErrNotAuthenticated
		}
		g, ok := v.FindGroup(groupID)
		if !ok {
			return ErrGroupNotFound
		}
		if g.CreatorID != actorID {
			return ErrNotAuthorized
		}
		for _, id := range g.PendingRequests {
			if u, ok := v.FindUser(id); ok {
				pending = append(pending, &u)
			}
		}
		return nil
	})
	return pending, err
}
