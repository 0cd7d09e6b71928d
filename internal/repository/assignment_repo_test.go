package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reservehub/internal/domain"
	"reservehub/internal/models"
)

func TestAssignmentCreateDuplicatePairConflicts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewAssignmentRepository[models.EventAssignment](db)
	u := seedUser(t, db, domain.RoleMember)
	e := seedEvent(t, db, "Parade", hoursFromNow(72))

	first := &models.EventAssignment{EventID: e.ID, UserID: u.ID, CompletionStatus: domain.StatusPending}
	require.NoError(t, repo.Create(ctx, first))
	assert.NotZero(t, first.ID)

	err := repo.Create(ctx, &models.EventAssignment{EventID: e.ID, UserID: u.ID, CompletionStatus: domain.StatusPending})
	assert.ErrorIs(t, err, ErrConflict)

	n, err := repo.CountForEntity(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestAssignmentCreateRequiresPair(t *testing.T) {
	db := newTestDB(t)
	repo := NewAssignmentRepository[models.TrainingAssignment](db)
	err := repo.Create(context.Background(), &models.TrainingAssignment{UserID: 1})
	assert.ErrorIs(t, err, ErrValidation)
	err = repo.Create(context.Background(), nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAssignmentDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewAssignmentRepository[models.EventAssignment](db)
	u := seedUser(t, db, domain.RoleMember)
	other := seedUser(t, db, domain.RoleMember)
	e := seedEvent(t, db, "Parade", hoursFromNow(72))
	require.NoError(t, repo.Create(ctx, &models.EventAssignment{EventID: e.ID, UserID: u.ID, CompletionStatus: domain.StatusPending}))

	t.Run("missing pair is not found and store unchanged", func(t *testing.T) {
		row, err := repo.Delete(ctx, e.ID, other.ID)
		assert.Nil(t, row)
		assert.ErrorIs(t, err, ErrNotFound)
		n, err := repo.CountForEntity(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("existing pair returns deleted row", func(t *testing.T) {
		row, err := repo.Delete(ctx, e.ID, u.ID)
		require.NoError(t, err)
		assert.Equal(t, u.ID, row.UserID)
		assert.Equal(t, e.ID, row.EventID)
		_, err = repo.Get(ctx, e.ID, u.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("pair can be recreated after delete", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, &models.EventAssignment{EventID: e.ID, UserID: u.ID, CompletionStatus: domain.StatusPending}))
	})
}

func TestAssignmentListing(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewAssignmentRepository[models.EventAssignment](db)
	u1 := seedUser(t, db, domain.RoleMember)
	u2 := seedUser(t, db, domain.RoleMember)
	e1 := seedEvent(t, db, "Parade", hoursFromNow(72))
	e2 := seedEvent(t, db, "Fair", hoursFromNow(96))

	for _, pair := range [][2]uint{{e1.ID, u1.ID}, {e1.ID, u2.ID}, {e2.ID, u1.ID}} {
		require.NoError(t, repo.Create(ctx, &models.EventAssignment{EventID: pair[0], UserID: pair[1], CompletionStatus: domain.StatusPending}))
	}

	byEntity, err := repo.ListForEntity(ctx, e1.ID)
	require.NoError(t, err)
	assert.Len(t, byEntity, 2)

	byUser, err := repo.ListForUser(ctx, u1.ID)
	require.NoError(t, err)
	require.Len(t, byUser, 2)
	assert.NotEmpty(t, byUser[0].Event.Title, "parent entity preloaded")

	none, err := repo.ListForEntity(ctx, 9999)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAssignmentUpdateStatus(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	eq := NewAssignmentRepository[models.EquipmentAssignment](db)
	u := seedUser(t, db, domain.RoleMember)
	item := &models.Equipment{Name: "Radio #12", SerialNumber: "RAD-12", Status: domain.EquipmentAssigned}
	require.NoError(t, NewEquipmentRepository(db).Create(ctx, item))
	require.NoError(t, eq.Create(ctx, &models.EquipmentAssignment{EquipmentID: item.ID, UserID: u.ID, CompletionStatus: domain.StatusPending}))

	_, err := eq.UpdateStatus(ctx, item.ID, u.ID, domain.StatusExcused, "")
	assert.ErrorIs(t, err, ErrValidation, "equipment cannot be excused")

	row, err := eq.UpdateStatus(ctx, item.ID, u.ID, domain.StatusCompleted, "returned in good condition")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, row.CompletionStatus)
	assert.Equal(t, "returned in good condition", row.CompletionNotes)
	assert.NotNil(t, row.CompletedAt)

	_, err = eq.UpdateStatus(ctx, item.ID, u.ID, domain.StatusCompleted, "")
	assert.ErrorIs(t, err, ErrValidation, "terminal status cannot transition")

	_, err = eq.UpdateStatus(ctx, item.ID, 424242, domain.StatusCompleted, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEventDueReminders(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	repo := NewAssignmentRepository[models.EventAssignment](db)
	member := seedUser(t, db, domain.RoleMember)
	inactive := seedUser(t, db, domain.RoleMember)
	require.NoError(t, NewUserRepository(db).UpdateFields(ctx, inactive.ID, map[string]any{"status": domain.UserStatusInactive}))
	excused := seedUser(t, db, domain.RoleMember)

	soon := seedEvent(t, db, "Night patrol", hoursFromNow(20))
	later := seedEvent(t, db, "Parade", hoursFromNow(30))
	past := seedEvent(t, db, "Briefing", hoursFromNow(-2))
	cancelled := seedEvent(t, db, "Cancelled drill", hoursFromNow(10))
	cancelled.Status = domain.EventCancelled
	require.NoError(t, NewEventRepository(db).Update(ctx, cancelled))

	for _, e := range []*models.Event{soon, later, past, cancelled} {
		require.NoError(t, repo.Create(ctx, &models.EventAssignment{EventID: e.ID, UserID: member.ID, CompletionStatus: domain.StatusPending}))
	}
	require.NoError(t, repo.Create(ctx, &models.EventAssignment{EventID: soon.ID, UserID: inactive.ID, CompletionStatus: domain.StatusPending}))
	require.NoError(t, repo.Create(ctx, &models.EventAssignment{EventID: soon.ID, UserID: excused.ID, CompletionStatus: domain.StatusPending}))
	_, err := repo.UpdateStatus(ctx, soon.ID, excused.ID, domain.StatusExcused, "out of town")
	require.NoError(t, err)

	now := time.Now().UTC()
	due, err := repo.DueReminders(ctx, now, now.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, due, 1)
	r := due[0]
	assert.Equal(t, domain.NotifEventReminder, r.Type)
	assert.Equal(t, soon.ID, r.EntityID)
	assert.Equal(t, member.ID, r.UserID)
	assert.Equal(t, "Night patrol", r.Data["eventName"])
	assert.Equal(t, soon.StartsAt.Unix(), r.OccursAt.Unix())
}

func TestEquipmentAndPolicyDueReminders(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	member := seedUser(t, db, domain.RoleMember)

	item := &models.Equipment{Name: "Radio #12", SerialNumber: "RAD-12", Status: domain.EquipmentAssigned}
	require.NoError(t, NewEquipmentRepository(db).Create(ctx, item))
	due := hoursFromNow(12)
	eq := NewAssignmentRepository[models.EquipmentAssignment](db)
	require.NoError(t, eq.Create(ctx, &models.EquipmentAssignment{EquipmentID: item.ID, UserID: member.ID, ReturnDueAt: &due, CompletionStatus: domain.StatusPending}))

	ackBy := hoursFromNow(36)
	pol := &models.Policy{Title: "Radio etiquette", Version: 1, EffectiveDate: hoursFromNow(-24), AcknowledgeBy: &ackBy}
	require.NoError(t, NewPolicyRepository(db).Create(ctx, pol))
	pa := NewAssignmentRepository[models.PolicyAssignment](db)
	require.NoError(t, pa.Create(ctx, &models.PolicyAssignment{PolicyID: pol.ID, UserID: member.ID, CompletionStatus: domain.StatusPending}))

	now := time.Now().UTC()
	eqDue, err := eq.DueReminders(ctx, now, now.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, eqDue, 1)
	assert.Equal(t, "Radio #12", eqDue[0].Data["equipmentName"])

	polDue, err := pa.DueReminders(ctx, now, now.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, polDue, "deadline beyond a 24h window")

	polDue, err = pa.DueReminders(ctx, now, now.Add(48*time.Hour))
	require.NoError(t, err)
	require.Len(t, polDue, 1)
	assert.Equal(t, domain.NotifPolicyAcknowledgeReminder, polDue[0].Type)
}
