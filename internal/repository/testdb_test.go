package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"reservehub/internal/database"
	"reservehub/internal/domain"
	"reservehub/internal/models"
)

// newTestDB returns a migrated in-memory store. One connection keeps the memory database alive.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(sqlite.Open(":memory:"), nil)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func seedUser(t *testing.T, db *gorm.DB, role string) *models.User {
	t.Helper()
	var n int64
	db.Model(&models.User{}).Count(&n)
	u := &models.User{
		Email:  fmt.Sprintf("user%d@example.org", n+1),
		Name:   fmt.Sprintf("User %d", n+1),
		Role:   role,
		Status: domain.UserStatusActive,
	}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), u))
	return u
}

func seedEvent(t *testing.T, db *gorm.DB, title string, startsAt time.Time) *models.Event {
	t.Helper()
	e := &models.Event{
		Title:    title,
		Location: "Station 4",
		StartsAt: startsAt,
		EndsAt:   startsAt.Add(2 * time.Hour),
		Status:   domain.EventScheduled,
	}
	require.NoError(t, NewEventRepository(db).Create(context.Background(), e))
	return e
}

// hoursFromNow returns a second-aligned UTC time.
func hoursFromNow(h int) time.Time {
	return time.Now().UTC().Truncate(time.Second).Add(time.Duration(h) * time.Hour)
}
