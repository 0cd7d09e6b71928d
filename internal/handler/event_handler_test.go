package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"reservehub/config"
	"reservehub/internal/auth"
	"reservehub/internal/database"
	"reservehub/internal/domain"
	"reservehub/internal/middleware"
	"reservehub/internal/models"
	"reservehub/internal/repository"
	"reservehub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testJWT = &config.JWTConfig{AccessSecret: "handler-test", AccessExpiry: time.Hour, Issuer: "reservehub"}

type noLive struct{}

func (noLive) SendToUser(uint, any) int { return 0 }

type apiEnv struct {
	db     *gorm.DB
	router *gin.Engine
	users  *repository.UserRepository
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	db, err := database.Open(sqlite.Open(":memory:"), nil)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	log := zap.NewNop()
	users := repository.NewUserRepository(db)
	notifier := service.NewNotificationService(repository.NewNotificationRepository(db), users, noLive{}, nil, log)
	assignments := service.NewAssignments(db)
	admin := service.NewAdminService(repository.NewAdminRepository(db), users, repository.NewAuditLogRepository(db), log)
	events := NewEventHandler(service.NewEventService(repository.NewEventRepository(db), assignments.Events, users, notifier, log), admin, log)

	r := gin.New()
	api := r.Group("/api", middleware.AuthRequired(testJWT, users, log))
	api.GET("/events", events.List)
	api.GET("/events/:id", events.Get)
	api.POST("/events/:id/signup", middleware.RequireRole(domain.RoleMember, domain.RoleAdmin), events.Signup)
	staff := api.Group("/admin", middleware.RequireRole(domain.RoleAdmin))
	staff.POST("/events", events.Create)
	staff.POST("/events/:id/cancel", events.Cancel)
	staff.GET("/events/:id/signups", events.Signups)
	return &apiEnv{db: db, router: r, users: users}
}

func (e *apiEnv) user(t *testing.T, role string) (*models.User, string) {
	t.Helper()
	var n int64
	e.db.Model(&models.User{}).Count(&n)
	u := &models.User{
		Email:  fmt.Sprintf("user%d@example.org", n+1),
		Name:   fmt.Sprintf("User %d", n+1),
		Role:   role,
		Status: domain.UserStatusActive,
	}
	require.NoError(t, e.users.Create(context.Background(), u))
	tok, err := auth.GenerateAccessToken(testJWT, u.ID, u.Email, u.Role)
	require.NoError(t, err)
	return u, tok
}

func (e *apiEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestEventLifecycleOverHTTP(t *testing.T) {
	env := newAPIEnv(t)
	_, adminTok := env.user(t, domain.RoleAdmin)
	member, memberTok := env.user(t, domain.RoleMember)
	_, guestTok := env.user(t, domain.RoleGuest)

	start := time.Now().UTC().Add(72 * time.Hour).Truncate(time.Second)
	create := map[string]any{
		"title":     "Harbor patrol",
		"location":  "Pier 4",
		"starts_at": start.Format(time.RFC3339),
		"ends_at":   start.Add(3 * time.Hour).Format(time.RFC3339),
		"capacity":  1,
	}

	w := env.do(t, http.MethodPost, "/api/admin/events", memberTok, create)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPost, "/api/admin/events", adminTok, create)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Event models.Event `json:"event"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, domain.EventScheduled, created.Event.Status)
	eventPath := fmt.Sprintf("/api/events/%d", created.Event.ID)

	w = env.do(t, http.MethodPost, eventPath+"/signup", guestTok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code, "guests cannot sign up")

	w = env.do(t, http.MethodPost, eventPath+"/signup", memberTok, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, eventPath+"/signup", memberTok, nil)
	assert.Equal(t, http.StatusConflict, w.Code, "second signup for the same pair")

	w = env.do(t, http.MethodPost, eventPath+"/signup", adminTok, nil)
	assert.Equal(t, http.StatusConflict, w.Code, "capacity reached")

	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/admin/events/%d/signups", created.Event.ID), adminTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var signups struct {
		Signups []models.EventAssignment `json:"signups"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &signups))
	require.Len(t, signups.Signups, 1)
	assert.Equal(t, member.ID, signups.Signups[0].UserID)

	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/admin/events/%d/cancel", created.Event.ID), adminTok, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/events", memberTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Total int64 `json:"total"`
		Page  int   `json:"page"`
		Limit int   `json:"limit"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.Limit)

	var audits int64
	env.db.Model(&models.AuditLog{}).Where("resource = ?", "event").Count(&audits)
	assert.Equal(t, int64(2), audits, "create and cancel are audited")
}

func TestEventErrorsMapToStatus(t *testing.T) {
	env := newAPIEnv(t)
	_, memberTok := env.user(t, domain.RoleMember)

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/events/1", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/events/abc", memberTok, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/events/999", memberTok, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPost, "/api/events/999/signup", memberTok, nil).Code)
}
