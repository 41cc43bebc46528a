package studygroup

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fkhayef/studyhub/internal/domain"
	"github.com/fkhayef/studyhub/internal/group"
	"github.com/fkhayef/studyhub/internal/session"
	"github.com/fkhayef/studyhub/internal/store"
	"github.com/fkhayef/studyhub/internal/user"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newHub(t *testing.T) (*Hub, *store.Store) {
	t.Helper()
	n := 0
	st := store.New(
		store.WithClock(clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))),
		store.WithIDGenerator(func() string { n++; return fmt.Sprintf("id%d", n) }),
	)
	return New(st, bcrypt.MinCost, zap.NewNop()), st
}

func register(t *testing.T, h *Hub, name string) *user.User {
	t.Helper()
	u, err := h.Register(context.Background(), &user.RegisterRequest{
		Name:     name,
		Email:    name + "@example.com",
		Password: "secret",
	})
	require.NoError(t, err)
	return u
}

func signIn(t *testing.T, h *Hub, u *user.User) {
	t.Helper()
	_, err := h.Login(context.Background(), u.Email, "secret")
	require.NoError(t, err)
}

func TestRegisterSignsInAndRejectsDuplicateEmail(t *testing.T) {
	h, _ := newHub(t)
	ctx := context.Background()

	u1 := register(t, h, "u1")
	cur, ok := h.CurrentUser(ctx)
	require.True(t, ok)
	assert.Equal(t, u1.ID, cur.ID)
	assert.Equal(t, domain.DefaultAvatarURL, cur.AvatarURL)

	_, err := h.Register(ctx, &user.RegisterRequest{Name: "x", Email: "U1@EXAMPLE.COM", Password: "p"})
	require.ErrorIs(t, err, domain.ErrDuplicateEmail)

	cur, _ = h.CurrentUser(ctx)
	assert.Equal(t, u1.ID, cur.ID, "failed registration keeps the session")
}

func TestLoginAndLogout(t *testing.T) {
	h, _ := newHub(t)
	ctx := context.Background()
	u1 := register(t, h, "u1")
	h.Logout()

	_, ok := h.CurrentUser(ctx)
	assert.False(t, ok)

	_, err := h.Login(ctx, "U1@example.com", "wrong")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)

	got, err := h.Login(ctx, "U1@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, u1.ID, got.ID)
}

func TestCreateGroupRequiresSignIn(t *testing.T) {
	h, _ := newHub(t)
	_, err := h.CreateGroup(context.Background(), &group.CreateGroupRequest{Name: "DS"})
	require.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestPublicGroupFillsUp(t *testing.T) {
	h, _ := newHub(t)
	ctx := context.Background()

	u1 := register(t, h, "u1")
	g, err := h.CreateGroup(ctx, &group.CreateGroupRequest{Name: "DS", MaxMembers: 3, Topics: "Trees, graphs, trees"})
	require.NoError(t, err)
	assert.Equal(t, []string{u1.ID}, g.Members)
	assert.Equal(t, []string{"Trees", "graphs"}, g.Topics)

	u2 := register(t, h, "u2")
	outcome, err := h.JoinGroup(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JoinJoined, outcome)

	got, _ := h.GetGroup(ctx, g.ID)
	assert.Len(t, got.Members, 2)
	member, _ := h.GetUser(ctx, u2.ID)
	assert.Equal(t, []string{g.ID}, member.JoinedGroups)

	register(t, h, "u3")
	_, err = h.JoinGroup(ctx, g.ID)
	require.NoError(t, err)

	register(t, h, "u4")
	_, err = h.JoinGroup(ctx, g.ID)
	require.ErrorIs(t, err, domain.ErrGroupFull)

	got, _ = h.GetGroup(ctx, g.ID)
	assert.Len(t, got.Members, 3)

	signIn(t, h, u2)
	_, err = h.JoinGroup(ctx, g.ID)
	require.ErrorIs(t, err, domain.ErrAlreadyMember)
}

func TestPrivateGroupRequestFlow(t *testing.T) {
	h, _ := newHub(t)
	ctx := context.Background()

	u1 := register(t, h, "u1")
	g, err := h.CreateGroup(ctx, &group.CreateGroupRequest{Name: "OS", IsPrivate: true})
	require.NoError(t, err)

	u2 := register(t, h, "u2")
	outcome, err := h.JoinGroup(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JoinRequested, outcome)

	outcome, err = h.JoinGroup(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JoinAlreadyRequested, outcome)

	got, _ := h.GetGroup(ctx, g.ID)
	assert.Equal(t, []string{u1.ID}, got.Members)
	assert.Equal(t, []string{u2.ID}, got.PendingRequests)

	require.ErrorIs(t, h.ApproveMember(ctx, g.ID, u2.ID), domain.ErrNotAuthorized)

	signIn(t, h, u1)
	inbox, err := h.Notifications(ctx, true)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, domain.NotificationJoinRequested, inbox[0].Type)

	require.NoError(t, h.ApproveMember(ctx, g.ID, u2.ID))
	got, _ = h.GetGroup(ctx, g.ID)
	assert.Equal(t, []string{u1.ID, u2.ID}, got.Members)
	assert.Empty(t, got.PendingRequests)

	member, _ := h.GetUser(ctx, u2.ID)
	assert.Equal(t, []string{g.ID}, member.JoinedGroups)

	require.NoError(t, h.RejectMember(ctx, g.ID, u2.ID))
	got, _ = h.GetGroup(ctx, g.ID)
	assert.Equal(t, []string{u1.ID, u2.ID}, got.Members)
}

func TestRejectLeavesMembershipUntouched(t *testing.T) {
	h, _ := newHub(t)
	ctx := context.Background()

	u1 := register(t, h, "u1")
	g, err := h.CreateGroup(ctx, &group.CreateGroupRequest{Name: "OS", IsPrivate: true})
	require.NoError(t, err)
	u2 := register(t, h, "u2")
	_, err = h.JoinGroup(ctx, g.ID)
	require.NoError(t, err)

	signIn(t, h, u1)
	require.NoError(t, h.RejectMember(ctx, g.ID, u2.ID))

	got, _ := h.GetGroup(ctx, g.ID)
	assert.Equal(t, []string{u1.ID}, got.Members)
	assert.Empty(t, got.PendingRequests)

	signIn(t, h, u2)
	inbox, err := h.Notifications(ctx, false)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, domain.NotificationRequestRejected, inbox[0].Type)
}

func TestLeaveGroup(t *testing.T) {
	h, _ := newHub(t)
	ctx := context.Background()

	u1 := register(t, h, "u1")
	g, err := h.CreateGroup(ctx, &group.CreateGroupRequest{Name: "DS"})
	require.NoError(t, err)
	require.ErrorIs(t, h.LeaveGroup(ctx, g.ID), domain.ErrCreatorCannotLeave)

	u2 := register(t, h, "u2")
	require.NoError(t, h.LeaveGroup(ctx, g.ID), "leaving a group you are not in is a no-op")
	_, err = h.JoinGroup(ctx, g.ID)
	require.NoError(t, err)
	require.NoError(t, h.LeaveGroup(ctx, g.ID))

	got, _ := h.GetGroup(ctx, g.ID)
	assert.Equal(t, []string{u1.ID}, got.Members)
	member, _ := h.GetUser(ctx, u2.ID)
	assert.Empty(t, member.JoinedGroups)

	require.NoError(t, h.LeaveGroup(ctx, "missing"))
}

func TestDeleteGroupCascades(t *testing.T) {
	h, _ := newHub(t)
	ctx := context.Background()

	u1 := register(t, h, "u1")
	g, err := h.CreateGroup(ctx, &group.CreateGroupRequest{Name: "DS"})
	require.NoError(t, err)
	s, err := h.CreateSession(ctx, g.ID, &session.CreateSessionRequest{Title: "Graphs", Date: "2025-03-10", Time: "17:00"})
	require.NoError(t, err)

	u2 := register(t, h, "u2")
	_, err = h.JoinGroup(ctx, g.ID)
	require.NoError(t, err)
	require.ErrorIs(t, h.DeleteGroup(ctx, g.ID), domain.ErrNotAuthorized)

	signIn(t, h, u1)
	require.NoError(t, h.DeleteGroup(ctx, g.ID))
	require.NoError(t, h.DeleteGroup(ctx, g.ID), "deleting twice is a no-op")

	_, ok := h.GetGroup(ctx, g.ID)
	assert.False(t, ok)
	_, ok = h.GetSession(ctx, s.ID)
	assert.False(t, ok)
	for _, id := range []string{u1.ID, u2.ID} {
		u, _ := h.GetUser(ctx, id)
		assert.Empty(t, u.JoinedGroups)
	}
}

func TestEditGroup(t *testing.T) {
	h, _ := newHub(t)
	ctx := context.Background()

	register(t, h, "u1")
	g, err := h.CreateGroup(ctx, &group.CreateGroupRequest{Name: "DS", MaxMembers: 4})
	require.NoError(t, err)

	name := "Data Structures"
	huge := 50
	edited, err := h.EditGroup(ctx, g.ID, &group.UpdateGroupRequest{Name: &name, MaxMembers: &huge})
	require.NoError(t, err)
	assert.Equal(t, "Data Structures", edited.Name)
	assert.Equal(t, domain.MaxGroupMembers, edited.MaxMembers)

	_, err = h.EditGroup(ctx, "missing", &group.UpdateGroupRequest{Name: &name})
	require.ErrorIs(t, err, domain.ErrNotFound)

	register(t, h, "u2")
	_, err = h.EditGroup(ctx, g.ID, &group.UpdateGroupRequest{Name: &name})
	require.ErrorIs(t, err, domain.ErrNotAuthorized)
}

func TestSessionLifecycle(t *testing.T) {
	h, _ := newHub(t)
	ctx := context.Background()

	u1 := register(t, h, "u1")
	g, err := h.CreateGroup(ctx, &group.CreateGroupRequest{Name: "DS"})
	require.NoError(t, err)

	_, err = h.CreateSession(ctx, g.ID, &session.CreateSessionRequest{Date: "2025-03-10", Time: "17:00"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = h.CreateSession(ctx, "missing", &session.CreateSessionRequest{Title: "x", Date: "2025-03-10", Time: "17:00"})
	require.ErrorIs(t, err, domain.ErrNotFound)

	s, err := h.CreateSession(ctx, g.ID, &session.CreateSessionRequest{Title: "Graphs", Date: "2025-03-10", Time: "17:00"})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSessionDuration, s.DurationMins)
	assert.Equal(t, u1.ID, s.CreatorID)
	assert.Empty(t, s.RSVPs)
	assert.False(t, s.Canceled)

	got, _ := h.GetGroup(ctx, g.ID)
	assert.Equal(t, []string{s.ID}, got.Sessions)

	u2 := register(t, h, "u2")
	_, err = h.RSVPSession(ctx, s.ID, "Going")
	require.ErrorIs(t, err, domain.ErrInvalidStatus)

	s, err = h.RSVPSession(ctx, s.ID, "Maybe")
	require.NoError(t, err)
	assert.Equal(t, map[string]domain.RSVPStatus{u2.ID: domain.RSVPMaybe}, s.RSVPs)

	_, err = h.CancelSession(ctx, s.ID)
	require.ErrorIs(t, err, domain.ErrNotAuthorized)

	signIn(t, h, u1)
	s, err = h.CancelSession(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, s.Canceled)

	got2, ok := h.GetSession(ctx, s.ID)
	require.True(t, ok)
	assert.True(t, got2.Canceled)

	signIn(t, h, u2)
	_, err = h.RSVPSession(ctx, s.ID, "Attending")
	require.ErrorIs(t, err, domain.ErrSessionCanceled)

	inbox, err := h.Notifications(ctx, false)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, domain.NotificationSessionCanceled, inbox[0].Type)
}

func TestEditProfile(t *testing.T) {
	h, _ := newHub(t)
	ctx := context.Background()

	u1 := register(t, h, "u1")
	u2 := register(t, h, "u2")

	dept := "Software Engineering"
	_, err := h.EditProfile(ctx, u1.ID, &user.UpdateProfileRequest{Department: &dept})
	require.ErrorIs(t, err, domain.ErrNotAuthorized)

	taken := "U1@example.com"
	_, err = h.EditProfile(ctx, u2.ID, &user.UpdateProfileRequest{Email: &taken})
	require.ErrorIs(t, err, domain.ErrDuplicateEmail)

	updated, err := h.EditProfile(ctx, u2.ID, &user.UpdateProfileRequest{Department: &dept})
	require.NoError(t, err)
	assert.Equal(t, dept, updated.Department)
	assert.Equal(t, u2.Email, updated.Email)
}

func TestSearchGroups(t *testing.T) {
	h, _ := newHub(t)
	ctx := context.Background()

	register(t, h, "u1")
	_, err := h.CreateGroup(ctx, &group.CreateGroupRequest{Name: "Trees", CourseName: "Data Structures", CourseCode: "cs201"})
	require.NoError(t, err)
	_, err = h.CreateGroup(ctx, &group.CreateGroupRequest{Name: "Kernels", CourseName: "Operating Systems", CourseCode: "CS301"})
	require.NoError(t, err)

	found, err := h.SearchGroups(ctx, "CS2", "")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Trees", found[0].Name)
	assert.Equal(t, "CS201", found[0].CourseCode)

	found, err = h.SearchGroups(ctx, "", "operating")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Kernels", found[0].Name)

	found, err = h.SearchGroups(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestSeedAndStats(t *testing.T) {
	h, st := newHub(t)
	ctx := context.Background()
	require.NoError(t, Seed(st, bcrypt.MinCost))

	_, err := h.Login(ctx, "Ali.Khan@example.com", DemoPassword)
	require.NoError(t, err)

	stats, err := h.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.GroupsJoined)

	s1, ok := h.GetSession(ctx, "s1")
	require.True(t, ok)
	assert.Equal(t, domain.RSVPAttending, s1.RSVPs["u1"])

	upcoming, err := h.UpcomingSessions(ctx)
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, "s1", upcoming[0].ID)

	outcome, err := h.JoinGroup(ctx, "g2")
	require.NoError(t, err)
	assert.Equal(t, domain.JoinRequested, outcome)

	h.Logout()
	_, err = h.Stats(ctx)
	require.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

// checkRelations asserts membership symmetry, exclusive member/pending
// status and group capacity over the committed state.
func checkRelations(t *testing.T, st *store.Store, step int) {
	t.Helper()
	snap := st.ExportState()

	joined := make(map[string][]string)
	for _, u := range snap.Users {
		joined[u.ID] = u.JoinedGroups
	}
	for _, g := range snap.Groups {
		require.LessOrEqual(t, len(g.Members), g.MaxMembers, "step %d: group %s over capacity", step, g.ID)
		require.Contains(t, g.Members, g.CreatorID, "step %d", step)
		for _, uid := range g.Members {
			require.Contains(t, joined[uid], g.ID, "step %d: %s missing %s", step, uid, g.ID)
			require.NotContains(t, g.PendingRequests, uid, "step %d: %s both member and pending in %s", step, uid, g.ID)
		}
		if !g.IsPrivate {
			require.Empty(t, g.PendingRequests, "step %d", step)
		}
	}
	for _, u := range snap.Users {
		for _, gid := range u.JoinedGroups {
			idx := slices.IndexFunc(snap.Groups, func(g domain.Group) bool { return g.ID == gid })
			require.GreaterOrEqual(t, idx, 0, "step %d: %s joined unknown group %s", step, u.ID, gid)
			require.Contains(t, snap.Groups[idx].Members, u.ID, "step %d", step)
		}
	}
}

func TestRandomMembershipSequencesKeepRelations(t *testing.T) {
	h, st := newHub(t)
	ctx := context.Background()
	rng := rand.New(rand.NewPCG(42, 7))

	var users []string
	for i := 0; i < 6; i++ {
		users = append(users, register(t, h, fmt.Sprintf("u%d", i)).ID)
	}
	var groups []*group.Group
	for i, private := range []bool{false, true, true} {
		h.setCurrent(users[i])
		g, err := h.CreateGroup(ctx, &group.CreateGroupRequest{
			Name:       fmt.Sprintf("g%d", i),
			MaxMembers: domain.MinGroupMembers,
			IsPrivate:  private,
		})
		require.NoError(t, err)
		groups = append(groups, g)
	}
	checkRelations(t, st, 0)

	expected := []error{
		domain.ErrAlreadyMember,
		domain.ErrGroupFull,
		domain.ErrCreatorCannotLeave,
		domain.ErrNotAuthorized,
	}
	for step := 1; step <= 3000; step++ {
		g := groups[rng.IntN(len(groups))]
		actor := users[rng.IntN(len(users))]
		target := users[rng.IntN(len(users))]
		if rng.IntN(2) == 0 {
			actor = g.CreatorID
		}
		h.setCurrent(actor)

		var err error
		switch rng.IntN(4) {
		case 0:
			_, err = h.JoinGroup(ctx, g.ID)
		case 1:
			err = h.LeaveGroup(ctx, g.ID)
		case 2:
			err = h.ApproveMember(ctx, g.ID, target)
		case 3:
			err = h.RejectMember(ctx, g.ID, target)
		}
		if err != nil {
			require.True(t, slices.ContainsFunc(expected, func(e error) bool { return errors.Is(err, e) }),
				"step %d: unexpected error %v", step, err)
		}
		checkRelations(t, st, step)
	}
}
