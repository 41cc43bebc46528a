package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/fkhayef/studyhub/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id%d", n)
	}
}

func newTestStore(t *testing.T) (*Store, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC))
	return New(WithClock(clock), WithIDGenerator(sequentialIDs())), clock
}

func mustUser(t *testing.T, s *Store, name, email string) domain.User {
	t.Helper()
	var u domain.User
	err := s.RunInTransaction(context.Background(), "test", func(tx *Tx) error {
		var err error
		u, err = tx.CreateUser(domain.User{Name: name, Email: email})
		return err
	})
	require.NoError(t, err)
	return u
}

func mustGroup(t *testing.T, s *Store, creatorID string, maxMembers int, private bool) domain.Group {
	t.Helper()
	var g domain.Group
	err := s.RunInTransaction(context.Background(), "test", func(tx *Tx) error {
		var err error
		g, err = tx.CreateGroup(domain.Group{Name: "DS", CreatorID: creatorID, MaxMembers: maxMembers, IsPrivate: private})
		return err
	})
	require.NoError(t, err)
	return g
}

func inTx(t *testing.T, s *Store, fn func(tx *Tx) error) error {
	t.Helper()
	return s.RunInTransaction(context.Background(), "test", fn)
}

func TestCreateUserRejectsDuplicateEmailIgnoringCase(t *testing.T) {
	s, clock := newTestStore(t)
	u := mustUser(t, s, "Ali", "ali.khan@example.com")
	assert.Equal(t, clock.Now().UTC(), u.CreatedAt)
	assert.Empty(t, u.JoinedGroups)

	err := inTx(t, s, func(tx *Tx) error {
		_, err := tx.CreateUser(domain.User{Name: "Other", Email: "ALI.KHAN@example.com"})
		return err
	})
	require.ErrorIs(t, err, domain.ErrDuplicateEmail)

	got, ok := viewUserByEmail(t, s, "Ali.Khan@Example.com")
	require.True(t, ok)
	assert.Equal(t, u.ID, got.ID)
}

func viewUserByEmail(t *testing.T, s *Store, email string) (domain.User, bool) {
	t.Helper()
	var (
		u  domain.User
		ok bool
	)
	require.NoError(t, s.View(context.Background(), func(v *View) error {
		u, ok = v.FindUserByEmail(email)
		return nil
	}))
	return u, ok
}

func TestFailedTransactionLeavesStateUntouched(t *testing.T) {
	s, _ := newTestStore(t)
	creator := mustUser(t, s, "Ali", "ali@example.com")
	before := s.ExportState()

	boom := errors.New("boom")
	err := inTx(t, s, func(tx *Tx) error {
		if _, err := tx.CreateUser(domain.User{Name: "Sara", Email: "sara@example.com"}); err != nil {
			return err
		}
		if _, err := tx.CreateGroup(domain.Group{Name: "OS", CreatorID: creator.ID}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, before, s.ExportState())
}

func TestCreateGroupMakesCreatorMember(t *testing.T) {
	s, _ := newTestStore(t)
	creator := mustUser(t, s, "Ali", "ali@example.com")
	g := mustGroup(t, s, creator.ID, 42, false)

	assert.Equal(t, domain.MaxGroupMembers, g.MaxMembers)
	assert.Equal(t, []string{creator.ID}, g.Members)
	assert.Empty(t, g.PendingRequests)
	assert.Empty(t, g.Sessions)

	require.NoError(t, s.View(context.Background(), func(v *View) error {
		u, _ := v.FindUser(creator.ID)
		assert.Equal(t, []string{g.ID}, u.JoinedGroups)
		return nil
	}))
}

func TestCreateGroupRequiresExistingCreator(t *testing.T) {
	s, _ := newTestStore(t)
	err := inTx(t, s, func(tx *Tx) error {
		_, err := tx.CreateGroup(domain.Group{Name: "DS", CreatorID: "ghost"})
		return err
	})
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestAddMemberEnforcesCapacityAndClearsPending(t *testing.T) {
	s, _ := newTestStore(t)
	creator := mustUser(t, s, "U1", "u1@example.com")
	u2 := mustUser(t, s, "U2", "u2@example.com")
	u3 := mustUser(t, s, "U3", "u3@example.com")
	u4 := mustUser(t, s, "U4", "u4@example.com")
	g := mustGroup(t, s, creator.ID, 3, true)

	require.NoError(t, inTx(t, s, func(tx *Tx) error {
		added, err := tx.AddPending(g.ID, u2.ID)
		require.True(t, added)
		return err
	}))
	require.NoError(t, inTx(t, s, func(tx *Tx) error { return tx.AddMember(g.ID, u2.ID) }))
	require.ErrorIs(t, inTx(t, s, func(tx *Tx) error { return tx.AddMember(g.ID, u2.ID) }), domain.ErrAlreadyMember)
	require.NoError(t, inTx(t, s, func(tx *Tx) error { return tx.AddMember(g.ID, u3.ID) }))
	require.ErrorIs(t, inTx(t, s, func(tx *Tx) error { return tx.AddMember(g.ID, u4.ID) }), domain.ErrGroupFull)

	require.NoError(t, s.View(context.Background(), func(v *View) error {
		got, _ := v.FindGroup(g.ID)
		assert.Equal(t, []string{creator.ID, u2.ID, u3.ID}, got.Members)
		assert.Empty(t, got.PendingRequests)
		assert.False(t, v.IsPending(g.ID, u2.ID))
		assert.Equal(t, 3, v.MemberCount(g.ID))
		return nil
	}))
}

func TestAddPendingIsIdempotent(t *testing.T) {
	s, _ := newTestStore(t)
	creator := mustUser(t, s, "U1", "u1@example.com")
	u2 := mustUser(t, s, "U2", "u2@example.com")
	g := mustGroup(t, s, creator.ID, 5, true)

	for i, want := range []bool{true, false} {
		require.NoError(t, inTx(t, s, func(tx *Tx) error {
			added, err := tx.AddPending(g.ID, u2.ID)
			assert.Equal(t, want, added, "call %d", i)
			return err
		}))
	}
	require.ErrorIs(t, inTx(t, s, func(tx *Tx) error {
		_, err := tx.AddPending(g.ID, creator.ID)
		return err
	}), domain.ErrAlreadyMember)

	require.NoError(t, s.View(context.Background(), func(v *View) error {
		got, _ := v.FindGroup(g.ID)
		assert.Equal(t, []string{u2.ID}, got.PendingRequests)
		return nil
	}))
}

func TestUpdateGroup(t *testing.T) {
	s, _ := newTestStore(t)
	creator := mustUser(t, s, "U1", "u1@example.com")
	u2 := mustUser(t, s, "U2", "u2@example.com")
	u3 := mustUser(t, s, "U3", "u3@example.com")
	u4 := mustUser(t, s, "U4", "u4@example.com")
	u5 := mustUser(t, s, "U5", "u5@example.com")
	g := mustGroup(t, s, creator.ID, 5, true)

	require.NoError(t, inTx(t, s, func(tx *Tx) error {
		for _, uid := range []string{u2.ID, u3.ID} {
			if err := tx.AddMember(g.ID, uid); err != nil {
				return err
			}
		}
		_, err := tx.AddPending(g.ID, u4.ID)
		return err
	}))

	t.Run("identity fields are preserved", func(t *testing.T) {
		err := inTx(t, s, func(tx *Tx) error {
			got, err := tx.UpdateGroup(g.ID, func(gr *domain.Group) error {
				gr.ID = "hijack"
				gr.CreatorID = u2.ID
				gr.Name = "Renamed"
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, g.ID, got.ID)
			assert.Equal(t, creator.ID, got.CreatorID)
			assert.Equal(t, "Renamed", got.Name)
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("capacity below membership is rejected", func(t *testing.T) {
		require.NoError(t, inTx(t, s, func(tx *Tx) error {
			got, err := tx.UpdateGroup(g.ID, func(gr *domain.Group) error {
				gr.MaxMembers = 1
				return nil
			})
			assert.Equal(t, domain.MinGroupMembers, got.MaxMembers)
			return err
		}))

		require.NoError(t, inTx(t, s, func(tx *Tx) error {
			if _, err := tx.UpdateGroup(g.ID, func(gr *domain.Group) error {
				gr.MaxMembers = 5
				return nil
			}); err != nil {
				return err
			}
			return tx.AddMember(g.ID, u5.ID)
		}))

		err := inTx(t, s, func(tx *Tx) error {
			_, err := tx.UpdateGroup(g.ID, func(gr *domain.Group) error {
				gr.MaxMembers = 3
				return nil
			})
			return err
		})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("going public drops pending requests", func(t *testing.T) {
		require.NoError(t, inTx(t, s, func(tx *Tx) error {
			got, err := tx.UpdateGroup(g.ID, func(gr *domain.Group) error {
				gr.IsPrivate = false
				return nil
			})
			require.NoError(t, err)
			assert.Empty(t, got.PendingRequests)
			assert.False(t, tx.IsPending(g.ID, u4.ID))
			return nil
		}))
	})
}

func TestDeleteGroupCascades(t *testing.T) {
	s, _ := newTestStore(t)
	creator := mustUser(t, s, "U1", "u1@example.com")
	u2 := mustUser(t, s, "U2", "u2@example.com")
	g := mustGroup(t, s, creator.ID, 5, false)
	other := mustGroup(t, s, u2.ID, 5, false)

	var sessionID, otherSessionID string
	require.NoError(t, inTx(t, s, func(tx *Tx) error {
		if err := tx.AddMember(g.ID, u2.ID); err != nil {
			return err
		}
		sess, err := tx.CreateSession(domain.Session{GroupID: g.ID, Title: "Graphs", CreatorID: creator.ID})
		if err != nil {
			return err
		}
		sessionID = sess.ID
		otherSess, err := tx.CreateSession(domain.Session{GroupID: other.ID, Title: "Kept", CreatorID: u2.ID})
		if err != nil {
			return err
		}
		otherSessionID = otherSess.ID
		_, err = tx.CreateNotification(domain.Notification{RecipientID: u2.ID, RelatedEntityType: domain.EntitySession, RelatedEntityID: sess.ID})
		return err
	}))

	require.NoError(t, inTx(t, s, func(tx *Tx) error {
		assert.True(t, tx.DeleteGroup(g.ID))
		assert.False(t, tx.DeleteGroup(g.ID))
		return nil
	}))

	require.NoError(t, s.View(context.Background(), func(v *View) error {
		_, ok := v.FindGroup(g.ID)
		assert.False(t, ok)
		_, ok = v.FindSession(sessionID)
		assert.False(t, ok)
		_, ok = v.FindSession(otherSessionID)
		assert.True(t, ok)
		for _, u := range v.ListUsers() {
			assert.NotContains(t, u.JoinedGroups, g.ID)
		}
		u, _ := v.FindUser(u2.ID)
		assert.Equal(t, []string{other.ID}, u.JoinedGroups)
		assert.Empty(t, v.ListNotifications(u2.ID))
		return nil
	}))
}

func TestSessionsAreListedNewestFirst(t *testing.T) {
	s, clock := newTestStore(t)
	creator := mustUser(t, s, "U1", "u1@example.com")
	g := mustGroup(t, s, creator.ID, 5, false)

	var ids []string
	for _, title := range []string{"first", "second"} {
		require.NoError(t, inTx(t, s, func(tx *Tx) error {
			sess, err := tx.CreateSession(domain.Session{GroupID: g.ID, Title: title, CreatorID: creator.ID, DurationMins: -5})
			assert.Equal(t, domain.DefaultSessionDuration, sess.DurationMins)
			assert.NotNil(t, sess.RSVPs)
			ids = append(ids, sess.ID)
			return err
		}))
		clock.Advance(time.Minute)
	}

	require.NoError(t, s.View(context.Background(), func(v *View) error {
		got, _ := v.FindGroup(g.ID)
		assert.Equal(t, []string{ids[1], ids[0]}, got.Sessions)
		return nil
	}))
}

func TestUpdateSessionRejectsUnknownRSVPUser(t *testing.T) {
	s, _ := newTestStore(t)
	creator := mustUser(t, s, "U1", "u1@example.com")
	g := mustGroup(t, s, creator.ID, 5, false)

	var sessID string
	require.NoError(t, inTx(t, s, func(tx *Tx) error {
		sess, err := tx.CreateSession(domain.Session{GroupID: g.ID, CreatorID: creator.ID})
		sessID = sess.ID
		return err
	}))
	err := inTx(t, s, func(tx *Tx) error {
		_, err := tx.UpdateSession(sessID, func(sess *domain.Session) error {
			sess.RSVPs["ghost"] = domain.RSVPMaybe
			return nil
		})
		return err
	})
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestSnapshotRoundTripKeepsRelations(t *testing.T) {
	s, _ := newTestStore(t)
	creator := mustUser(t, s, "U1", "u1@example.com")
	u2 := mustUser(t, s, "U2", "u2@example.com")
	u3 := mustUser(t, s, "U3", "u3@example.com")
	g := mustGroup(t, s, creator.ID, 5, true)
	require.NoError(t, inTx(t, s, func(tx *Tx) error {
		if err := tx.AddMember(g.ID, u2.ID); err != nil {
			return err
		}
		_, err := tx.AddPending(g.ID, u3.ID)
		return err
	}))

	snap := s.ExportState()
	restored, _ := newTestStore(t)
	restored.ImportState(snap)
	assert.Equal(t, snap, restored.ExportState())
}

func TestImportSkipsDanglingReferences(t *testing.T) {
	s, _ := newTestStore(t)
	s.ImportState(Snapshot{
		Users: []domain.User{{ID: "u1", Email: "u1@example.com"}},
		Groups: []domain.Group{
			{ID: "g1", CreatorID: "u1", MaxMembers: 3, Members: []string{"u1", "ghost"}, PendingRequests: []string{"u1"}, IsPrivate: true},
			{ID: "g2", CreatorID: "ghost"},
		},
		Sessions: []domain.Session{
			{ID: "s1", GroupID: "g1", RSVPs: map[string]domain.RSVPStatus{"u1": domain.RSVPAttending, "ghost": domain.RSVPMaybe}},
			{ID: "s2", GroupID: "g2"},
		},
	})

	snap := s.ExportState()
	require.Len(t, snap.Groups, 1)
	assert.Equal(t, []string{"u1"}, snap.Groups[0].Members)
	assert.Empty(t, snap.Groups[0].PendingRequests)
	require.Len(t, snap.Sessions, 1)
	assert.Equal(t, map[string]domain.RSVPStatus{"u1": domain.RSVPAttending}, snap.Sessions[0].RSVPs)
	assert.Equal(t, []string{"g1"}, snap.Users[0].JoinedGroups)
}

func TestImportSkipsDuplicateEmails(t *testing.T) {
	s, _ := newTestStore(t)
	s.ImportState(Snapshot{
		Users: []domain.User{
			{ID: "u1", Name: "Ali", Email: "ali@example.com"},
			{ID: "u2", Name: "Ali again", Email: "ALI@Example.com"},
			{ID: "u1", Name: "Same id", Email: "other@example.com"},
			{ID: "u3", Name: "Sara", Email: "sara@example.com"},
		},
		Groups: []domain.Group{{ID: "g1", CreatorID: "u2", MaxMembers: 3}},
	})

	snap := s.ExportState()
	require.Len(t, snap.Users, 2)
	assert.Equal(t, "u1", snap.Users[0].ID)
	assert.Equal(t, "Ali", snap.Users[0].Name)
	assert.Equal(t, "u3", snap.Users[1].ID)
	assert.Empty(t, snap.Groups, "groups of skipped users are dropped")

	for i := 0; i < 20; i++ {
		u, ok := viewUserByEmail(t, s, "Ali@example.com")
		require.True(t, ok)
		assert.Equal(t, "u1", u.ID)
	}
}

func TestCanceledContextSkipsTransaction(t *testing.T) {
	s, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.RunInTransaction(ctx, "test", func(tx *Tx) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
	require.ErrorIs(t, s.View(ctx, func(*View) error { return nil }), context.Canceled)
}

func TestSearchGroups(t *testing.T) {
	s, _ := newTestStore(t)
	creator := mustUser(t, s, "U1", "u1@example.com")
	var ds, os domain.Group
	require.NoError(t, inTx(t, s, func(tx *Tx) error {
		var err error
		ds, err = tx.CreateGroup(domain.Group{Name: "Data Structures Study Group", CourseName: "Data Structures", CourseCode: "CS201", Description: "Weekly DS revision", CreatorID: creator.ID})
		if err != nil {
			return err
		}
		os, err = tx.CreateGroup(domain.Group{Name: "Operating Systems - Labs", CourseName: "Operating Systems", CourseCode: "CS301", Description: "OS lab help", CreatorID: creator.ID})
		return err
	}))

	ids := func(groups []domain.Group) []string {
		out := make([]string, 0, len(groups))
		for _, g := range groups {
			out = append(out, g.ID)
		}
		return out
	}

	require.NoError(t, s.View(context.Background(), func(v *View) error {
		assert.Equal(t, []string{os.ID, ds.ID}, ids(v.SearchGroups("", "")))
		assert.Equal(t, []string{os.ID, ds.ID}, ids(v.SearchGroups("cs", "")))
		assert.Equal(t, []string{ds.ID}, ids(v.SearchGroups("cs201", "")))
		assert.Equal(t, []string{ds.ID}, ids(v.SearchGroups("REVISION", "")))
		assert.Equal(t, []string{os.ID}, ids(v.SearchGroups("", "operating")))
		assert.Empty(t, v.SearchGroups("revision", "operating"))
		return nil
	}))
}
