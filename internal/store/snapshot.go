package store

import (
	"sort"

	"github.com/fkhayef/studyhub/internal/domain"
	"github.com/fkhayef/studyhub/internal/normalize"
)

// Snapshot is a deep copy of the store contents in creation order. Derived
// fields are populated on export; on import Group.Members and
// Group.PendingRequests rebuild the relations and Group.Sessions is ignored.
type Snapshot struct {
	Users         []domain.User         `json:"users"`
	Groups        []domain.Group        `json:"groups"`
	Sessions      []domain.Session      `json:"sessions"`
	Notifications []domain.Notification `json:"notifications"`
}

// ExportState captures the committed state.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := &s.state
	var snap Snapshot
	for _, id := range oldestFirst(st, st.users) {
		snap.Users = append(snap.Users, st.decorateUser(st.users[id]))
	}
	for _, id := range oldestFirst(st, st.groups) {
		snap.Groups = append(snap.Groups, st.decorateGroup(st.groups[id]))
	}
	for _, id := range oldestFirst(st, st.sessions) {
		snap.Sessions = append(snap.Sessions, cloneSession(st.sessions[id]))
	}
	for _, id := range oldestFirst(st, st.notifications) {
		snap.Notifications = append(snap.Notifications, st.notifications[id])
	}
	return snap
}

// ImportState replaces the store contents with snap. Ids are kept as given.
// Records that would break referential integrity (memberships of unknown
// users, sessions of unknown groups, over-capacity members) are skipped, as
// are users whose email is already taken case-insensitively.
func (s *Store) ImportState(snap Snapshot) {
	st := newState()
	now := s.clock.Now().UTC()

	emails := make(map[string]struct{}, len(snap.Users))
	for _, u := range snap.Users {
		if _, dup := st.users[u.ID]; dup || u.ID == "" {
			continue
		}
		if key := normalize.Email(u.Email); key != "" {
			if _, taken := emails[key]; taken {
				continue
			}
			emails[key] = struct{}{}
		}
		u.JoinedGroups = nil
		st.users[u.ID] = u
		st.order[u.ID] = st.nextSeq()
	}
	for _, g := range snap.Groups {
		if _, ok := st.users[g.CreatorID]; !ok || g.ID == "" {
			continue
		}
		members, pending := g.Members, g.PendingRequests
		g = cloneGroup(g)
		g.MaxMembers = domain.ClampMaxMembers(g.MaxMembers)
		st.groups[g.ID] = g
		st.order[g.ID] = st.nextSeq()

		addRel := func(rel map[relKey]relEntry, uid string) {
			if _, ok := st.users[uid]; ok {
				rel[relKey{GroupID: g.ID, UserID: uid}] = relEntry{Seq: st.nextSeq(), At: now}
			}
		}
		addRel(st.memberships, g.CreatorID)
		for _, uid := range members {
			key := relKey{GroupID: g.ID, UserID: uid}
			if _, dup := st.memberships[key]; dup || st.memberCount(g.ID) >= g.MaxMembers {
				continue
			}
			addRel(st.memberships, uid)
		}
		if g.IsPrivate {
			for _, uid := range pending {
				if _, member := st.memberships[relKey{GroupID: g.ID, UserID: uid}]; !member {
					addRel(st.pending, uid)
				}
			}
		}
	}
	for _, sess := range snap.Sessions {
		if _, ok := st.groups[sess.GroupID]; !ok || sess.ID == "" {
			continue
		}
		sess = cloneSession(sess)
		for uid := range sess.RSVPs {
			if _, ok := st.users[uid]; !ok {
				delete(sess.RSVPs, uid)
			}
		}
		st.sessions[sess.ID] = sess
		st.order[sess.ID] = st.nextSeq()
	}
	for _, n := range snap.Notifications {
		if _, ok := st.users[n.RecipientID]; !ok || n.ID == "" {
			continue
		}
		st.notifications[n.ID] = n
		st.order[n.ID] = st.nextSeq()
	}

	s.mu.Lock()
	s.state = st
	s.recordSizes()
	s.mu.Unlock()
}

func oldestFirst[T any](st *state, m map[string]T) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return st.order[ids[i]] < st.order[ids[j]] })
	return ids
}
