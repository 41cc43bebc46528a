package notification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/studyhub/internal/domain"
	"github.com/fkhayef/studyhub/internal/store"
)

func seedInbox(t *testing.T) (*Service, *store.Store, string, string) {
	t.Helper()
	st := store.New()
	svc := NewService(NewRepository(st))

	var alice, bob string
	err := st.RunInTransaction(context.Background(), "test", func(tx *store.Tx) error {
		a, err := tx.CreateUser(domain.User{Name: "Alice", Email: "alice@example.com"})
		if err != nil {
			return err
		}
		b, err := tx.CreateUser(domain.User{Name: "Bob", Email: "bob@example.com"})
		if err != nil {
			return err
		}
		alice, bob = a.ID, b.ID
		g, err := tx.CreateGroup(domain.Group{Name: "OS", CreatorID: alice, IsPrivate: true})
		if err != nil {
			return err
		}
		for range 3 {
			if err := svc.NotifyJoinRequested(tx, g, b); err != nil {
				return err
			}
		}
		return svc.NotifyRequestApproved(tx, g, bob)
	})
	require.NoError(t, err)
	return svc, st, alice, bob
}

func TestListAndCount(t *testing.T) {
	svc, _, alice, bob := seedInbox(t)
	ctx := context.Background()

	list, total, err := svc.ListByRecipientID(ctx, alice, 1, 2, false)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, list, 2)
	assert.Equal(t, "Bob asked to join OS", list[0].Message)

	count, err := svc.GetUnreadCount(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMarkAsRead(t *testing.T) {
	svc, _, alice, bob := seedInbox(t)
	ctx := context.Background()

	list, _, err := svc.ListByRecipientID(ctx, alice, 1, 20, false)
	require.NoError(t, err)
	target := list[0].ID

	require.ErrorIs(t, svc.MarkAsRead(ctx, target, bob), domain.ErrNotAuthorized)
	require.ErrorIs(t, svc.MarkAsRead(ctx, "missing", alice), ErrNotificationNotFound)
	require.NoError(t, svc.MarkAsRead(ctx, target, alice))

	n, err := svc.GetByID(ctx, target)
	require.NoError(t, err)
	assert.True(t, n.IsRead)

	unread, total, err := svc.ListByRecipientID(ctx, alice, 1, 20, true)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, n := range unread {
		assert.NotEqual(t, target, n.ID)
	}
}

func TestMarkAllAsRead(t *testing.T) {
	svc, _, alice, bob := seedInbox(t)
	ctx := context.Background()

	marked, err := svc.MarkAllAsRead(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 3, marked)

	marked, err = svc.MarkAllAsRead(ctx, alice)
	require.NoError(t, err)
	assert.Zero(t, marked)

	count, err := svc.GetUnreadCount(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "other inboxes are untouched")
}

func TestNotificationsRollBackWithTheirTransaction(t *testing.T) {
	svc, st, alice, _ := seedInbox(t)
	ctx := context.Background()
	before, err := svc.GetUnreadCount(ctx, alice)
	require.NoError(t, err)

	err = st.RunInTransaction(ctx, "test", func(tx *store.Tx) error {
		g, _ := tx.FindGroup(tx.GroupsForUser(alice)[0].ID)
		if err := svc.NotifyRequestRejected(tx, g, alice); err != nil {
			return err
		}
		return domain.ErrGroupFull
	})
	require.ErrorIs(t, err, domain.ErrGroupFull)

	after, err := svc.GetUnreadCount(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
