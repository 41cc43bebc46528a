// Package studygroup exposes the domain as a single-session facade: one
// process, at most one signed-in user at a time, every call acting on behalf
// of that user.
package studygroup

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/fkhayef/studyhub/internal/domain"
	"github.com/fkhayef/studyhub/internal/group"
	"github.com/fkhayef/studyhub/internal/notification"
	"github.com/fkhayef/studyhub/internal/session"
	"github.com/fkhayef/studyhub/internal/store"
	"github.com/fkhayef/studyhub/internal/user"
)

// Hub tracks the current user and forwards every operation to the services
// with that user as the actor.
type Hub struct {
	mu      sync.RWMutex
	current string

	store         *store.Store
	users         *user.Service
	groups        *group.Service
	sessions      *session.Service
	notifications *notification.Service
}

// New wires the services over st. A non-positive bcryptCost selects the
// bcrypt default.
func New(st *store.Store, bcryptCost int, logger *zap.Logger) *Hub {
	notifications := notification.NewService(notification.NewRepository(st))
	return &Hub{
		store:         st,
		users:         user.NewService(user.NewRepository(st), bcryptCost, logger),
		groups:        group.NewService(group.NewRepository(st), notifications, logger),
		sessions:      session.NewService(session.NewRepository(st), notifications, logger),
		notifications: notifications,
	}
}

func (h *Hub) actor() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

func (h *Hub) setCurrent(id string) {
	h.mu.Lock()
	h.current = id
	h.mu.Unlock()
}

// Register creates an account and signs it in.
func (h *Hub) Register(ctx context.Context, req *user.RegisterRequest) (*user.User, error) {
	u, err := h.users.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	h.setCurrent(u.ID)
	return u, nil
}

// Login signs in the user matching the credentials.
func (h *Hub) Login(ctx context.Context, email, password string) (*user.User, error) {
	u, err := h.users.Login(ctx, &user.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	h.setCurrent(u.ID)
	return u, nil
}

// Logout clears the current user unconditionally.
func (h *Hub) Logout() {
	h.setCurrent("")
}

// CurrentUser returns the signed-in user, if any.
func (h *Hub) CurrentUser(ctx context.Context) (*user.User, bool) {
	id := h.actor()
	if id == "" {
		return nil, false
	}
	return h.GetUser(ctx, id)
}

// CreateGroup creates a group owned by the current user.
func (h *Hub) CreateGroup(ctx context.Context, req *group.CreateGroupRequest) (*group.Group, error) {
	return h.groups.Create(ctx, h.actor(), req)
}

// EditGroup applies the given changes to a group the current user created.
func (h *Hub) EditGroup(ctx context.Context, groupID string, req *group.UpdateGroupRequest) (*group.Group, error) {
	return h.groups.Update(ctx, h.actor(), groupID, req)
}

// DeleteGroup removes a group the current user created, with its sessions.
func (h *Hub) DeleteGroup(ctx context.Context, groupID string) error {
	return h.groups.Delete(ctx, h.actor(), groupID)
}

// JoinGroup joins a public group or requests to join a private one.
func (h *Hub) JoinGroup(ctx context.Context, groupID string) (group.JoinOutcome, error) {
	return h.groups.Join(ctx, h.actor(), groupID)
}

// LeaveGroup removes the current user from a group.
func (h *Hub) LeaveGroup(ctx context.Context, groupID string) error {
	return h.groups.Leave(ctx, h.actor(), groupID)
}

// ApproveMember accepts a pending join request.
func (h *Hub) ApproveMember(ctx context.Context, groupID, userID string) error {
	return h.groups.Approve(ctx, h.actor(), groupID, userID)
}

// RejectMember drops a pending join request.
func (h *Hub) RejectMember(ctx context.Context, groupID, userID string) error {
	return h.groups.Reject(ctx, h.actor(), groupID, userID)
}

// SearchGroups lists groups matching query and course, newest first.
func (h *Hub) SearchGroups(ctx context.Context, query, course string) ([]*group.Group, error) {
	var out []*group.Group
	err := h.store.View(ctx, func(v *store.View) error {
		all := v.SearchGroups(query, course)
		for i := range all {
			out = append(out, &all[i])
		}
		return nil
	})
	return out, err
}

// CreateSession schedules a session in a group the current user belongs to.
func (h *Hub) CreateSession(ctx context.Context, groupID string, req *session.CreateSessionRequest) (*session.Session, error) {
	return h.sessions.Create(ctx, h.actor(), groupID, req)
}

// RSVPSession records the current user's attendance intent.
func (h *Hub) RSVPSession(ctx context.Context, sessionID, status string) (*session.Session, error) {
	return h.sessions.RSVP(ctx, h.actor(), sessionID, status)
}

// CancelSession marks a session canceled.
func (h *Hub) CancelSession(ctx context.Context, sessionID string) (*session.Session, error) {
	return h.sessions.Cancel(ctx, h.actor(), sessionID)
}

// UpcomingSessions returns the dashboard list of upcoming sessions.
func (h *Hub) UpcomingSessions(ctx context.Context) ([]*session.Session, error) {
	return h.sessions.Upcoming(ctx, session.DefaultUpcomingLimit)
}

// EditProfile updates the current user's profile.
func (h *Hub) EditProfile(ctx context.Context, userID string, req *user.UpdateProfileRequest) (*user.User, error) {
	return h.users.UpdateProfile(ctx, h.actor(), userID, req)
}

// Notifications lists the current user's notifications, newest first.
func (h *Hub) Notifications(ctx context.Context, unreadOnly bool) ([]*notification.Notification, error) {
	id := h.actor()
	if id == "" {
		return nil, domain.ErrNotAuthenticated
	}
	list, _, err := h.notifications.ListByRecipientID(ctx, id, 1, 100, unreadOnly)
	return list, err
}

// Stats returns the dashboard summary of the current user.
func (h *Hub) Stats(ctx context.Context) (*user.Stats, error) {
	id := h.actor()
	if id == "" {
		return nil, domain.ErrNotAuthenticated
	}
	return h.users.Stats(ctx, id)
}

// GetUser looks up a user by id.
func (h *Hub) GetUser(ctx context.Context, id string) (*user.User, bool) {
	u, err := h.users.GetByID(ctx, id)
	return u, err == nil
}

// GetGroup looks up a group by id.
func (h *Hub) GetGroup(ctx context.Context, id string) (*group.Group, bool) {
	g, err := h.groups.GetByID(ctx, id)
	return g, err == nil
}

// GetSession looks up a session by id.
func (h *Hub) GetSession(ctx context.Context, id string) (*session.Session, bool) {
	s, err := h.sessions.GetByID(ctx, id)
	return s, err == nil
}
