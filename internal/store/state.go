package store

import (
	"maps"
	"slices"
	"sort"
	"time"

	"github.com/fkhayef/studyhub/internal/domain"
)

// relKey identifies one (group, user) pair of a relation.
type relKey struct {
	GroupID string
	UserID  string
}

// relEntry records when a pair entered a relation; seq orders the derived views.
type relEntry struct {
	Seq uint64
	At  time.Time
}

// state holds the owned collections. Derived fields (User.JoinedGroups,
// Group.Members, Group.PendingRequests, Group.Sessions) are never stored; they
// are computed from the relations on the way out.
type state struct {
	seq           uint64
	order         map[string]uint64
	users         map[string]domain.User
	groups        map[string]domain.Group
	sessions      map[string]domain.Session
	notifications map[string]domain.Notification
	memberships   map[relKey]relEntry
	pending       map[relKey]relEntry
}

func newState() state {
	return state{
		order:         make(map[string]uint64),
		users:         make(map[string]domain.User),
		groups:        make(map[string]domain.Group),
		sessions:      make(map[string]domain.Session),
		notifications: make(map[string]domain.Notification),
		memberships:   make(map[relKey]relEntry),
		pending:       make(map[relKey]relEntry),
	}
}

func (s *state) clone() state {
	c := state{
		seq:           s.seq,
		order:         maps.Clone(s.order),
		users:         maps.Clone(s.users),
		groups:        make(map[string]domain.Group, len(s.groups)),
		sessions:      make(map[string]domain.Session, len(s.sessions)),
		notifications: maps.Clone(s.notifications),
		memberships:   maps.Clone(s.memberships),
		pending:       maps.Clone(s.pending),
	}
	for k, g := range s.groups {
		c.groups[k] = cloneGroup(g)
	}
	for k, sess := range s.sessions {
		c.sessions[k] = cloneSession(sess)
	}
	return c
}

func (s *state) nextSeq() uint64 {
	s.seq++
	return s.seq
}

func cloneGroup(g domain.Group) domain.Group {
	g.Topics = slices.Clone(g.Topics)
	g.Members = nil
	g.PendingRequests = nil
	g.Sessions = nil
	return g
}

func cloneSession(s domain.Session) domain.Session {
	s.RSVPs = maps.Clone(s.RSVPs)
	if s.RSVPs == nil {
		s.RSVPs = map[string]domain.RSVPStatus{}
	}
	return s
}

// relatedIDs returns the ids on one side of a relation, ordered by entry seq.
func relatedIDs(rel map[relKey]relEntry, match func(relKey) (string, bool)) []string {
	type item struct {
		id  string
		seq uint64
	}
	var items []item
	for k, e := range rel {
		if id, ok := match(k); ok {
			items = append(items, item{id: id, seq: e.Seq})
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].seq < items[j].seq })
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.id
	}
	return ids
}

func (s *state) groupMembers(groupID string) []string {
	return relatedIDs(s.memberships, func(k relKey) (string, bool) { return k.UserID, k.GroupID == groupID })
}

func (s *state) groupPending(groupID string) []string {
	return relatedIDs(s.pending, func(k relKey) (string, bool) { return k.UserID, k.GroupID == groupID })
}

func (s *state) userGroups(userID string) []string {
	return relatedIDs(s.memberships, func(k relKey) (string, bool) { return k.GroupID, k.UserID == userID })
}

// groupSessions lists the group's session ids most recent first.
func (s *state) groupSessions(groupID string) []string {
	var ids []string
	for id, sess := range s.sessions {
		if sess.GroupID == groupID {
			ids = append(ids, id)
		}
	}
	s.sortNewestFirst(ids)
	return ids
}

func (s *state) sortNewestFirst(ids []string) {
	sort.Slice(ids, func(i, j int) bool { return s.order[ids[i]] > s.order[ids[j]] })
}

func (s *state) decorateUser(u domain.User) domain.User {
	u.JoinedGroups = s.userGroups(u.ID)
	return u
}

func (s *state) decorateGroup(g domain.Group) domain.Group {
	g = cloneGroup(g)
	g.Members = s.groupMembers(g.ID)
	g.PendingRequests = s.groupPending(g.ID)
	g.Sessions = s.groupSessions(g.ID)
	return g
}

func (s *state) memberCount(groupID string) int {
	n := 0
	for k := range s.memberships {
		if k.GroupID == groupID {
			n++
		}
	}
	return n
}

func (s *state) forget(id string) {
	delete(s.order, id)
}
