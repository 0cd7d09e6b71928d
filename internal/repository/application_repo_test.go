package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reservehub/internal/domain"
	"reservehub/internal/models"
)

func TestApplicationReviewPromotesGuest(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewApplicationRepository(db)
	guest := seedUser(t, db, domain.RoleGuest)
	admin := seedUser(t, db, domain.RoleAdmin)

	app := &models.Application{UserID: guest.ID, FullName: "Jo Rivera", Status: domain.ApplicationPending}
	require.NoError(t, repo.Create(ctx, app))

	err := repo.Create(ctx, &models.Application{UserID: guest.ID, FullName: "Jo Rivera", Status: domain.ApplicationPending})
	assert.ErrorIs(t, err, ErrConflict, "one pending application per user")

	reviewed, err := repo.Review(ctx, app.ID, admin.ID, domain.ApplicationApproved, "welcome")
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationApproved, reviewed.Status)
	assert.NotNil(t, reviewed.ReviewedAt)
	assert.Equal(t, domain.RoleMember, reviewed.User.Role)

	_, err = repo.Review(ctx, app.ID, admin.ID, domain.ApplicationRejected, "")
	assert.ErrorIs(t, err, ErrConflict, "already reviewed")

	_, err = repo.Review(ctx, app.ID, admin.ID, "maybe", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestEquipmentDeleteWithOutstandingCheckout(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	items := NewEquipmentRepository(db)
	member := seedUser(t, db, domain.RoleMember)
	item := &models.Equipment{Name: "Vest", SerialNumber: "VST-1", Status: domain.EquipmentAssigned}
	require.NoError(t, items.Create(ctx, item))
	assignments := NewAssignmentRepository[models.EquipmentAssignment](db)
	require.NoError(t, assignments.Create(ctx, &models.EquipmentAssignment{EquipmentID: item.ID, UserID: member.ID, CompletionStatus: domain.StatusPending}))

	assert.ErrorIs(t, items.Delete(ctx, item.ID), ErrConflict)

	_, err := assignments.UpdateStatus(ctx, item.ID, member.ID, domain.StatusCompleted, "")
	require.NoError(t, err)
	require.NoError(t, items.Delete(ctx, item.ID))
	assert.ErrorIs(t, items.Delete(ctx, item.ID), ErrNotFound)

	err = items.Create(ctx, &models.Equipment{Name: "Vest", SerialNumber: "VST-2"})
	require.NoError(t, err)
	err = items.Create(ctx, &models.Equipment{Name: "Vest copy", SerialNumber: "VST-2"})
	assert.ErrorIs(t, err, ErrConflict)
}
