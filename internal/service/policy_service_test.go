package service

import (
	"context"
	"testing"

	"reservehub/internal/domain"
	"reservehub/internal/models"
	"reservehub/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPolicyPublishAndAcknowledge(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewPolicyService(repository.NewPolicyRepository(env.db), env.assignments.Policies, env.users, env.notifier, zap.NewNop())
	admin := env.user(t, domain.RoleAdmin)
	member := env.user(t, domain.RoleMember)
	guest := env.user(t, domain.RoleGuest)

	due := inHours(96)
	p := &models.Policy{Title: "Use of force", Body: "...", AcknowledgeBy: &due}
	require.NoError(t, svc.Create(ctx, p))
	assert.Equal(t, 1, p.Version)

	_, err := svc.Acknowledge(ctx, p.ID, member.ID)
	assert.ErrorIs(t, err, ErrPolicyNotPublished)

	res, err := svc.Publish(ctx, p.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{admin.ID, member.ID}, res.Assigned)
	assert.Empty(t, env.notificationsFor(t, guest.ID))
	assert.Equal(t, "New policy published: Use of force", env.notificationsFor(t, member.ID)[0].Message)

	late := env.user(t, domain.RoleMember)
	res, err = svc.Publish(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{late.ID}, res.Assigned)
	assert.Len(t, res.AlreadyAssigned, 2)

	row, err := svc.Acknowledge(ctx, p.ID, member.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, row.CompletionStatus)
	assert.Equal(t, "version 1", row.CompletionNotes)

	_, err = svc.Acknowledge(ctx, p.ID, member.ID)
	assert.ErrorIs(t, err, repository.ErrValidation)
	_, err = svc.Acknowledge(ctx, p.ID, guest.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	body := "revised"
	updated, err := svc.Update(ctx, p.ID, PolicyUpdate{Body: &body})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, domain.NotifPolicyUpdated, env.notificationsFor(t, admin.ID)[0].Type)
	assert.Equal(t, domain.NotifPolicyUpdated, env.notificationsFor(t, member.ID)[0].Type, "acknowledged members are asked again")

	rows, err := svc.Acknowledgements(ctx, p.ID)
	require.NoError(t, err)
	for _, r := range rows {
		assert.Equal(t, domain.StatusPending, r.CompletionStatus, "user %d", r.UserID)
		assert.Nil(t, r.CompletedAt)
	}

	row, err = svc.Acknowledge(ctx, p.ID, member.ID)
	require.NoError(t, err)
	assert.Equal(t, "version 2", row.CompletionNotes)
}

func TestDraftPolicyEditKeepsVersion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewPolicyService(repository.NewPolicyRepository(env.db), env.assignments.Policies, env.users, env.notifier, zap.NewNop())
	member := env.user(t, domain.RoleMember)

	p := &models.Policy{Title: "Radio etiquette"}
	require.NoError(t, svc.Create(ctx, p))
	title := "Radio procedure"
	updated, err := svc.Update(ctx, p.ID, PolicyUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Version)
	assert.Empty(t, env.notificationsFor(t, member.ID))
}
