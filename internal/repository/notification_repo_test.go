package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reservehub/internal/domain"
	"reservehub/internal/models"
)

func TestNotificationReminderKeyIsUnique(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewNotificationRepository(db)
	u := seedUser(t, db, domain.RoleMember)

	key := "event_reminder:1:1:1777626000"
	n1 := &models.Notification{UserID: u.ID, Type: domain.NotifEventReminder, Message: "Reminder", ReminderKey: &key}
	require.NoError(t, repo.Create(ctx, n1))

	dup := key
	err := repo.Create(ctx, &models.Notification{UserID: u.ID, Type: domain.NotifEventReminder, Message: "Reminder", ReminderKey: &dup})
	assert.ErrorIs(t, err, ErrConflict)

	// Non-reminder notifications carry no key and never collide.
	require.NoError(t, repo.Create(ctx, &models.Notification{UserID: u.ID, Type: domain.NotifGeneral, Message: "a"}))
	require.NoError(t, repo.Create(ctx, &models.Notification{UserID: u.ID, Type: domain.NotifGeneral, Message: "b"}))

	found, err := repo.ExistingReminderKeys(ctx, []string{key, "event_reminder:2:1:1"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{key: true}, found)
}

func TestNotificationReadFlags(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewNotificationRepository(db)
	u := seedUser(t, db, domain.RoleMember)
	other := seedUser(t, db, domain.RoleMember)

	var ids []uint
	for _, msg := range []string{"one", "two", "three"} {
		n := &models.Notification{UserID: u.ID, Type: domain.NotifGeneral, Message: msg}
		require.NoError(t, repo.Create(ctx, n))
		ids = append(ids, n.ID)
	}

	unread, err := repo.CountUnread(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), unread)

	assert.ErrorIs(t, repo.MarkRead(ctx, ids[0], other.ID), ErrNotFound, "cannot read someone else's notification")
	require.NoError(t, repo.MarkRead(ctx, ids[0], u.ID))

	list, err := repo.ListByUserID(ctx, u.ID, true, 10, 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	changed, err := repo.MarkAllRead(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), changed)

	unread, err = repo.CountUnread(ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestNotificationCreateValidation(t *testing.T) {
	db := newTestDB(t)
	err := NewNotificationRepository(db).Create(context.Background(), &models.Notification{Message: "x"})
	assert.ErrorIs(t, err, ErrValidation)
}
