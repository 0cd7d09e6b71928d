package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"reservehub/internal/database"
	"reservehub/internal/domain"
	"reservehub/internal/models"
	"reservehub/internal/repository"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

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

type recordingLive struct {
	byUser map[uint]int
}

func (r *recordingLive) SendToUser(userID uint, _ any) int {
	if r.byUser == nil {
		r.byUser = map[uint]int{}
	}
	r.byUser[userID]++
	return 1
}

// testEnv holds the real repositories and services over one in-memory store.
type testEnv struct {
	db            *gorm.DB
	users         *repository.UserRepository
	notifications *repository.NotificationRepository
	notifier      *NotificationService
	live          *recordingLive
	assignments   Assignments
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	env := &testEnv{
		db:            db,
		users:         repository.NewUserRepository(db),
		notifications: repository.NewNotificationRepository(db),
		live:          &recordingLive{},
		assignments:   NewAssignments(db),
	}
	env.notifier = NewNotificationService(env.notifications, env.users, env.live, nil, zap.NewNop())
	return env
}

func (e *testEnv) user(t *testing.T, role string) *models.User {
	t.Helper()
	var n int64
	e.db.Model(&models.User{}).Count(&n)
	u := &models.User{
		Email:  fmt.Sprintf("member%d@example.org", n+1),
		Name:   fmt.Sprintf("Member %d", n+1),
		Role:   role,
		Status: domain.UserStatusActive,
	}
	require.NoError(t, e.users.Create(context.Background(), u))
	return u
}

func (e *testEnv) notificationsFor(t *testing.T, userID uint) []models.Notification {
	t.Helper()
	list, err := e.notifications.ListByUserID(context.Background(), userID, false, 100, 0)
	require.NoError(t, err)
	return list
}

func inHours(h int) time.Time {
	return time.Now().UTC().Truncate(time.Second).Add(time.Duration(h) * time.Hour)
}
