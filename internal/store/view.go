package store

import (
	"strings"

	"github.com/fkhayef/studyhub/internal/domain"
	"github.com/fkhayef/studyhub/internal/normalize"
)

// View is read-only access to a consistent state of the store.
type View struct {
	st *state
}

// FindUser returns the user with the given id.
func (v *View) FindUser(id string) (domain.User, bool) {
	u, ok := v.st.users[id]
	if !ok {
		return domain.User{}, false
	}
	return v.st.decorateUser(u), true
}

// FindUserByEmail matches email case-insensitively.
func (v *View) FindUserByEmail(email string) (domain.User, bool) {
	key := normalize.Email(email)
	if key == "" {
		return domain.User{}, false
	}
	for _, u := range v.st.users {
		if normalize.Email(u.Email) == key {
			return v.st.decorateUser(u), true
		}
	}
	return domain.User{}, false
}

// ListUsers returns all users, most recently registered first.
func (v *View) ListUsers() []domain.User {
	ids := make([]string, 0, len(v.st.users))
	for id := range v.st.users {
		ids = append(ids, id)
	}
	v.st.sortNewestFirst(ids)
	out := make([]domain.User, len(ids))
	for i, id := range ids {
		out[i] = v.st.decorateUser(v.st.users[id])
	}
	return out
}

// FindGroup returns the group with the given id.
func (v *View) FindGroup(id string) (domain.Group, bool) {
	g, ok := v.st.groups[id]
	if !ok {
		return domain.Group{}, false
	}
	return v.st.decorateGroup(g), true
}

// ListGroups returns all groups, most recently created first.
func (v *View) ListGroups() []domain.Group {
	return v.groups(func(domain.Group) bool { return true })
}

// GroupsForUser returns the groups userID belongs to, in join order.
func (v *View) GroupsForUser(userID string) []domain.Group {
	ids := v.st.userGroups(userID)
	out := make([]domain.Group, 0, len(ids))
	for _, id := range ids {
		out = append(out, v.st.decorateGroup(v.st.groups[id]))
	}
	return out
}

// SearchGroups matches query case-insensitively against the concatenation of
// name, course name, course code and description. A non-empty course further
// restricts results to groups whose course name contains it.
func (v *View) SearchGroups(query, course string) []domain.Group {
	q := strings.ToLower(strings.TrimSpace(query))
	c := strings.ToLower(strings.TrimSpace(course))
	return v.groups(func(g domain.Group) bool {
		if q != "" {
			hay := strings.ToLower(strings.Join([]string{g.Name, g.CourseName, g.CourseCode, g.Description}, " "))
			if !strings.Contains(hay, q) {
				return false
			}
		}
		if c != "" && !strings.Contains(strings.ToLower(g.CourseName), c) {
			return false
		}
		return true
	})
}

func (v *View) groups(keep func(domain.Group) bool) []domain.Group {
	var ids []string
	for id, g := range v.st.groups {
		if keep(g) {
			ids = append(ids, id)
		}
	}
	v.st.sortNewestFirst(ids)
	out := make([]domain.Group, len(ids))
	for i, id := range ids {
		out[i] = v.st.decorateGroup(v.st.groups[id])
	}
	return out
}

// IsMember reports whether userID belongs to groupID.
func (v *View) IsMember(groupID, userID string) bool {
	_, ok := v.st.memberships[relKey{GroupID: groupID, UserID: userID}]
	return ok
}

// IsPending reports whether userID has an open request to join groupID.
func (v *View) IsPending(groupID, userID string) bool {
	_, ok := v.st.pending[relKey{GroupID: groupID, UserID: userID}]
	return ok
}

// MemberCount returns the number of members of groupID.
func (v *View) MemberCount(groupID string) int {
	return v.st.memberCount(groupID)
}

// FindSession returns the session with the given id.
func (v *View) FindSession(id string) (domain.Session, bool) {
	s, ok := v.st.sessions[id]
	if !ok {
		return domain.Session{}, false
	}
	return cloneSession(s), true
}

// ListSessions returns all sessions, most recently created first.
func (v *View) ListSessions() []domain.Session {
	ids := make([]string, 0, len(v.st.sessions))
	for id := range v.st.sessions {
		ids = append(ids, id)
	}
	v.st.sortNewestFirst(ids)
	out := make([]domain.Session, len(ids))
	for i, id := range ids {
		out[i] = cloneSession(v.st.sessions[id])
	}
	return out
}

// SessionsForGroup returns the group's sessions, most recently created first.
func (v *View) SessionsForGroup(groupID string) []domain.Session {
	ids := v.st.groupSessions(groupID)
	out := make([]domain.Session, len(ids))
	for i, id := range ids {
		out[i] = cloneSession(v.st.sessions[id])
	}
	return out
}

// FindNotification returns the notification with the given id.
func (v *View) FindNotification(id string) (domain.Notification, bool) {
	n, ok := v.st.notifications[id]
	return n, ok
}

// ListNotifications returns recipientID's notifications, newest first.
func (v *View) ListNotifications(recipientID string) []domain.Notification {
	var ids []string
	for id, n := range v.st.notifications {
		if n.RecipientID == recipientID {
			ids = append(ids, id)
		}
	}
	v.st.sortNewestFirst(ids)
	out := make([]domain.Notification, len(ids))
	for i, id := range ids {
		out[i] = v.st.notifications[id]
	}
	return out
}
