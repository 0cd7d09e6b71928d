package seed

import (
	"context"
	"strings"
	"testing"
	"time"

	"reservehub/internal/database"
	"reservehub/internal/domain"
	"reservehub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
)

func TestLoadFixtures(t *testing.T) {
	f, err := Load("testdata/fixtures.yaml")
	require.NoError(t, err)
	require.Len(t, f.Users, 3)
	assert.Equal(t, domain.RoleAdmin, f.Users[0].Role)
	assert.Equal(t, domain.RoleMember, f.Users[1].Role, "role defaults to member")
	assert.Equal(t, time.Date(2030, 7, 4, 15, 0, 0, 0, time.UTC), f.Events[1].Start)
	assert.True(t, f.Trainings[0].Required)
	assert.Equal(t, 14, f.Policies[0].AcknowledgeIn)
}

func TestParseRejectsBadInput(t *testing.T) {
	_, err := Parse(strings.NewReader("users:\n  - email: a@b.c\n    role: sheriff\n"))
	assert.ErrorContains(t, err, "unknown role")

	_, err = Parse(strings.NewReader("vehicles:\n  - name: car\n"))
	assert.Error(t, err, "unknown top-level keys are rejected")

	f, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, f.Users)
}

func TestApplyIsIdempotent(t *testing.T) {
	db, err := database.Open(sqlite.Open(":memory:"), nil)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	f, err := Load("testdata/fixtures.yaml")
	require.NoError(t, err)
	now := time.Date(2026, 4, 30, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	res, err := Apply(ctx, db, f, now, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, Result{Users: 3, Events: 2, Trainings: 1, Equipment: 2, Policies: 1}, res)

	var parade models.Event
	require.NoError(t, db.Where("title = ?", "Spring parade detail").First(&parade).Error)
	assert.True(t, parade.StartsAt.Equal(now.Add(20*time.Hour)))
	assert.True(t, parade.EndsAt.Equal(now.Add(24*time.Hour)))

	again, err := Apply(ctx, db, f, now, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, Result{}, again)
}
