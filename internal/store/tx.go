package store

import (
	"maps"
	"time"

	"github.com/fkhayef/studyhub/internal/domain"
	"github.com/fkhayef/studyhub/internal/normalize"
)

// Tx is a mutable unit of work over a private copy of the store state. Its
// changes become visible only when the enclosing RunInTransaction commits.
type Tx struct {
	View
	store *Store
	state state
	now   time.Time
}

// Now returns the transaction timestamp.
func (tx *Tx) Now() time.Time {
	return tx.now
}

func (tx *Tx) insert(id string) {
	tx.state.order[id] = tx.state.nextSeq()
}

// CreateUser stores u under a fresh id. The email must not match any existing
// user case-insensitively.
func (tx *Tx) CreateUser(u domain.User) (domain.User, error) {
	if _, taken := tx.FindUserByEmail(u.Email); taken {
		return domain.User{}, domain.ErrDuplicateEmail
	}
	u.ID = tx.store.newID()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = tx.now
	}
	u.JoinedGroups = nil
	tx.state.users[u.ID] = u
	tx.insert(u.ID)
	return tx.state.decorateUser(u), nil
}

// UpdateUser applies mutator to the user. ID and CreatedAt are preserved and a
// changed email is re-checked for uniqueness.
func (tx *Tx) UpdateUser(id string, mutator func(*domain.User) error) (domain.User, error) {
	current, ok := tx.state.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	updated := current
	if err := mutator(&updated); err != nil {
		return domain.User{}, err
	}
	updated.ID = current.ID
	updated.CreatedAt = current.CreatedAt
	updated.JoinedGroups = nil
	if normalize.Email(updated.Email) != normalize.Email(current.Email) {
		if other, taken := tx.FindUserByEmail(updated.Email); taken && other.ID != id {
			return domain.User{}, domain.ErrDuplicateEmail
		}
	}
	tx.state.users[id] = updated
	return tx.state.decorateUser(updated), nil
}

// CreateGroup stores g under a fresh id and makes its creator the first member.
func (tx *Tx) CreateGroup(g domain.Group) (domain.Group, error) {
	if _, ok := tx.state.users[g.CreatorID]; !ok {
		return domain.Group{}, domain.ErrUserNotFound
	}
	g = cloneGroup(g)
	g.ID = tx.store.newID()
	g.MaxMembers = domain.ClampMaxMembers(g.MaxMembers)
	if g.CreatedAt.IsZero() {
		g.CreatedAt = tx.now
	}
	tx.state.groups[g.ID] = g
	tx.insert(g.ID)
	tx.state.memberships[relKey{GroupID: g.ID, UserID: g.CreatorID}] = relEntry{Seq: tx.state.nextSeq(), At: tx.now}
	return tx.state.decorateGroup(g), nil
}

// UpdateGroup applies mutator to the group. Identity, creator and creation
// time are preserved, capacity is clamped and may not drop below the current
// membership, and a group that becomes public loses its pending requests.
func (tx *Tx) UpdateGroup(id string, mutator func(*domain.Group) error) (domain.Group, error) {
	current, ok := tx.state.groups[id]
	if !ok {
		return domain.Group{}, domain.ErrGroupNotFound
	}
	updated := cloneGroup(current)
	if err := mutator(&updated); err != nil {
		return domain.Group{}, err
	}
	updated = cloneGroup(updated)
	updated.ID = current.ID
	updated.CreatorID = current.CreatorID
	updated.CreatedAt = current.CreatedAt
	updated.MaxMembers = domain.ClampMaxMembers(updated.MaxMembers)
	if n := tx.state.memberCount(id); updated.MaxMembers < n {
		return domain.Group{}, domain.Invalid("max members %d is below current membership %d", updated.MaxMembers, n)
	}
	if !updated.IsPrivate {
		for k := range tx.state.pending {
			if k.GroupID == id {
				delete(tx.state.pending, k)
			}
		}
	}
	tx.state.groups[id] = updated
	return tx.state.decorateGroup(updated), nil
}

// DeleteGroup removes the group together with its memberships, pending
// requests, sessions and the notifications pointing at any of them. It
// reports whether the group existed.
func (tx *Tx) DeleteGroup(id string) bool {
	if _, ok := tx.state.groups[id]; !ok {
		return false
	}
	delete(tx.state.groups, id)
	tx.state.forget(id)
	maps.DeleteFunc(tx.state.memberships, func(k relKey, _ relEntry) bool { return k.GroupID == id })
	maps.DeleteFunc(tx.state.pending, func(k relKey, _ relEntry) bool { return k.GroupID == id })

	dropped := map[string]struct{}{id: {}}
	for sid, s := range tx.state.sessions {
		if s.GroupID == id {
			delete(tx.state.sessions, sid)
			tx.state.forget(sid)
			dropped[sid] = struct{}{}
		}
	}
	for nid, n := range tx.state.notifications {
		if _, ok := dropped[n.RelatedEntityID]; ok {
			delete(tx.state.notifications, nid)
			tx.state.forget(nid)
		}
	}
	return true
}

func (tx *Tx) requirePair(groupID, userID string) (domain.Group, error) {
	g, ok := tx.state.groups[groupID]
	if !ok {
		return domain.Group{}, domain.ErrGroupNotFound
	}
	if _, ok := tx.state.users[userID]; !ok {
		return domain.Group{}, domain.ErrUserNotFound
	}
	return g, nil
}

// AddMember adds userID to the group's members, clearing any pending request
// for the pair.
func (tx *Tx) AddMember(groupID, userID string) error {
	g, err := tx.requirePair(groupID, userID)
	if err != nil {
		return err
	}
	key := relKey{GroupID: groupID, UserID: userID}
	if _, ok := tx.state.memberships[key]; ok {
		return domain.ErrAlreadyMember
	}
	if tx.state.memberCount(groupID) >= g.MaxMembers {
		return domain.ErrGroupFull
	}
	delete(tx.state.pending, key)
	tx.state.memberships[key] = relEntry{Seq: tx.state.nextSeq(), At: tx.now}
	return nil
}

// RemoveMember removes userID from the group's members and reports whether
// the pair was a membership.
func (tx *Tx) RemoveMember(groupID, userID string) bool {
	key := relKey{GroupID: groupID, UserID: userID}
	if _, ok := tx.state.memberships[key]; !ok {
		return false
	}
	delete(tx.state.memberships, key)
	return true
}

// AddPending records a join request. It reports false when the request was
// already pending.
func (tx *Tx) AddPending(groupID, userID string) (bool, error) {
	if _, err := tx.requirePair(groupID, userID); err != nil {
		return false, err
	}
	key := relKey{GroupID: groupID, UserID: userID}
	if _, ok := tx.state.memberships[key]; ok {
		return false, domain.ErrAlreadyMember
	}
	if _, ok := tx.state.pending[key]; ok {
		return false, nil
	}
	tx.state.pending[key] = relEntry{Seq: tx.state.nextSeq(), At: tx.now}
	return true, nil
}

// RemovePending drops a join request and reports whether one existed.
func (tx *Tx) RemovePending(groupID, userID string) bool {
	key := relKey{GroupID: groupID, UserID: userID}
	if _, ok := tx.state.pending[key]; !ok {
		return false
	}
	delete(tx.state.pending, key)
	return true
}

// CreateSession stores s under a fresh id. Its group must exist.
func (tx *Tx) CreateSession(s domain.Session) (domain.Session, error) {
	if _, ok := tx.state.groups[s.GroupID]; !ok {
		return domain.Session{}, domain.ErrGroupNotFound
	}
	s = cloneSession(s)
	s.ID = tx.store.newID()
	if s.DurationMins <= 0 {
		s.DurationMins = domain.DefaultSessionDuration
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = tx.now
	}
	tx.state.sessions[s.ID] = s
	tx.insert(s.ID)
	return cloneSession(s), nil
}

// UpdateSession applies mutator to the session. Identity, group, creator and
// creation time are preserved. RSVP keys must reference existing users.
func (tx *Tx) UpdateSession(id string, mutator func(*domain.Session) error) (domain.Session, error) {
	current, ok := tx.state.sessions[id]
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	updated := cloneSession(current)
	if err := mutator(&updated); err != nil {
		return domain.Session{}, err
	}
	updated = cloneSession(updated)
	updated.ID = current.ID
	updated.GroupID = current.GroupID
	updated.CreatorID = current.CreatorID
	updated.CreatedAt = current.CreatedAt
	for uid := range updated.RSVPs {
		if _, ok := tx.state.users[uid]; !ok {
			return domain.Session{}, domain.ErrUserNotFound
		}
	}
	tx.state.sessions[id] = updated
	return cloneSession(updated), nil
}

// CreateNotification stores n under a fresh id. Its recipient must exist.
func (tx *Tx) CreateNotification(n domain.Notification) (domain.Notification, error) {
	if _, ok := tx.state.users[n.RecipientID]; !ok {
		return domain.Notification{}, domain.ErrUserNotFound
	}
	n.ID = tx.store.newID()
	n.IsRead = false
	if n.CreatedAt.IsZero() {
		n.CreatedAt = tx.now
	}
	tx.state.notifications[n.ID] = n
	tx.insert(n.ID)
	return n, nil
}

// UpdateNotification applies mutator; only the read flag is allowed to change.
func (tx *Tx) UpdateNotification(id string, mutator func(*domain.Notification) error) (domain.Notification, error) {
	current, ok := tx.state.notifications[id]
	if !ok {
		return domain.Notification{}, domain.ErrNotificationNotFound
	}
	updated := current
	if err := mutator(&updated); err != nil {
		return domain.Notification{}, err
	}
	current.IsRead = updated.IsRead
	tx.state.notifications[id] = current
	return current, nil
}
