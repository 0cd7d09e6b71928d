package service

import (
	"context"
	"testing"
	"time"

	"reservehub/internal/domain"
	"reservehub/internal/models"
	"reservehub/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newEventService(env *testEnv) *EventService {
	return NewEventService(repository.NewEventRepository(env.db), env.assignments.Events, env.users, env.notifier, zap.NewNop())
}

func TestEventSignupRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := newEventService(env)
	a := env.user(t, domain.RoleMember)
	b := env.user(t, domain.RoleMember)

	e := &models.Event{Title: "Parade", Location: "Main St", StartsAt: inHours(48), EndsAt: inHours(50), Capacity: 1}
	require.NoError(t, svc.Create(ctx, e))
	assert.Equal(t, domain.EventScheduled, e.Status)
	assert.Len(t, env.notificationsFor(t, a.ID), 1, "event_created announcement")

	row, err := svc.Signup(ctx, e.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, row.CompletionStatus)

	_, err = svc.Signup(ctx, e.ID, a.ID)
	assert.ErrorIs(t, err, repository.ErrConflict)

	_, err = svc.Signup(ctx, e.ID, b.ID)
	assert.ErrorIs(t, err, ErrEventFull)

	require.NoError(t, svc.Withdraw(ctx, e.ID, a.ID))
	_, err = svc.Signup(ctx, e.ID, b.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Withdraw(ctx, e.ID, a.ID), repository.ErrNotFound)
}

func TestEventSignupClosed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := newEventService(env)
	u := env.user(t, domain.RoleMember)

	past := &models.Event{Title: "Briefing", StartsAt: inHours(-3)}
	require.NoError(t, svc.Create(ctx, past))
	_, err := svc.Signup(ctx, past.ID, u.ID)
	assert.ErrorIs(t, err, ErrEventClosed)

	e := &models.Event{Title: "Drill", StartsAt: inHours(3)}
	require.NoError(t, svc.Create(ctx, e))
	_, err = svc.Cancel(ctx, e.ID)
	require.NoError(t, err)
	_, err = svc.Signup(ctx, e.ID, u.ID)
	assert.ErrorIs(t, err, ErrEventClosed)
}

func TestEventCancelNotifiesSignups(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := newEventService(env)
	u := env.user(t, domain.RoleMember)

	e := &models.Event{Title: "Fair", Location: "Park", StartsAt: inHours(30)}
	require.NoError(t, svc.Create(ctx, e))
	_, err := svc.Signup(ctx, e.ID, u.ID)
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, e.ID)
	require.NoError(t, err)
	list := env.notificationsFor(t, u.ID)
	require.NotEmpty(t, list)
	assert.Equal(t, domain.NotifEventCancelled, list[0].Type)
	assert.Equal(t, "Event cancelled: Fair", list[0].Message)

	title := "New title"
	_, err = svc.Update(ctx, e.ID, EventUpdate{Title: &title})
	assert.ErrorIs(t, err, repository.ErrValidation)
}

func TestEventValidationAndAttendance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := newEventService(env)
	u := env.user(t, domain.RoleMember)

	assert.ErrorIs(t, svc.Create(ctx, &models.Event{StartsAt: inHours(1)}), repository.ErrValidation)
	assert.ErrorIs(t, svc.Create(ctx, &models.Event{Title: "x", StartsAt: inHours(5), EndsAt: inHours(4)}), repository.ErrValidation)

	e := &models.Event{Title: "Patrol", StartsAt: inHours(2)}
	require.NoError(t, svc.Create(ctx, e))
	_, err := svc.Signup(ctx, e.ID, u.ID)
	require.NoError(t, err)

	row, err := svc.MarkAttendance(ctx, e.ID, u.ID, domain.StatusExcused, "sick")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusExcused, row.CompletionStatus)

	start := time.Now().Add(time.Hour)
	_, err = svc.Update(ctx, e.ID, EventUpdate{StartsAt: &start})
	require.NoError(t, err)
	list := env.notificationsFor(t, u.ID)
	assert.NotEqual(t, domain.NotifEventUpdated, list[0].Type, "excused members are not told about updates")
}
