package router

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"reservehub/config"
	"reservehub/internal/auth"
	"reservehub/internal/database"
	"reservehub/internal/domain"
	"reservehub/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Env: "test", RateLimit: 1000, RateWindow: time.Minute},
		JWT:    config.JWTConfig{AccessSecret: "router-test", AccessExpiry: time.Hour, Issuer: "reservehub"},
		Cron:   config.CronConfig{Secret: "s3cret"},
		Reminder: config.ReminderConfig{
			EventWindow:     24 * time.Hour,
			TrainingWindow:  48 * time.Hour,
			EquipmentWindow: 24 * time.Hour,
			PolicyWindow:    48 * time.Hour,
			TimeZone:        "UTC",
		},
		Cloudinary: config.CloudinaryConfig{Folder: "reservehub"},
	}
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	app, _ := newTestAppWithDB(t)
	return app
}

func newTestAppWithDB(t *testing.T) (*App, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := database.Open(sqlite.Open(":memory:"), nil)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	app, err := Setup(testConfig(), db, nil, nil, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(app.Close)
	return app, db
}

func call(app *App, method, path, authz string) *httptest.ResponseRecorder {
	return callWithBody(app, method, path, authz, "")
}

func callWithBody(app *App, method, path, authz, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	w := httptest.NewRecorder()
	app.Engine.ServeHTTP(w, req)
	return w
}

func TestCronEndpointRequiresSecret(t *testing.T) {
	app := newTestApp(t)

	assert.Equal(t, http.StatusUnauthorized, call(app, http.MethodGet, "/api/cron/reminders", "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(app, http.MethodGet, "/api/cron/reminders", "Bearer wrong").Code)

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		w := call(app, method, "/api/cron/reminders", "Bearer s3cret")
		assert.Equal(t, http.StatusOK, w.Code, method)
		assert.JSONEq(t, `{"success":true}`, w.Body.String())
	}
}

func TestMetricsExposeReminderRuns(t *testing.T) {
	app := newTestApp(t)
	require.Equal(t, http.StatusOK, call(app, http.MethodPost, "/api/cron/reminders", "Bearer s3cret").Code)

	w := call(app, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `reservehub_reminders_runs_total{result="ok"} 1`), body)
}

func TestProtectedRoutes(t *testing.T) {
	app := newTestApp(t)
	assert.Equal(t, http.StatusOK, call(app, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(app, http.MethodGet, "/api/v1/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(app, http.MethodGet, "/api/v1/admin/dashboard", "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(app, http.MethodGet, "/ws/notifications", "").Code)
}

func TestDemotedAdminLosesAccessImmediately(t *testing.T) {
	app, db := newTestAppWithDB(t)
	cfg := testConfig()
	bearer := func(u *models.User) string {
		tok, err := auth.GenerateAccessToken(&cfg.JWT, u.ID, u.Email, u.Role)
		require.NoError(t, err)
		return "Bearer " + tok
	}
	chief := &models.User{Email: "chief@example.org", Name: "Chief", Role: domain.RoleAdmin, Status: domain.UserStatusActive}
	deputy := &models.User{Email: "deputy@example.org", Name: "Deputy", Role: domain.RoleAdmin, Status: domain.UserStatusActive}
	require.NoError(t, db.Create(chief).Error)
	require.NoError(t, db.Create(deputy).Error)
	chiefTok, deputyTok := bearer(chief), bearer(deputy)

	require.Equal(t, http.StatusOK, call(app, http.MethodGet, "/api/v1/admin/dashboard", deputyTok).Code)

	path := "/api/v1/admin/users/" + strconv.FormatUint(uint64(deputy.ID), 10)
	w := callWithBody(app, http.MethodPatch, path, chiefTok, `{"role":"member"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, http.StatusForbidden, call(app, http.MethodGet, "/api/v1/admin/dashboard", deputyTok).Code)
	assert.Equal(t, http.StatusOK, call(app, http.MethodGet, "/api/v1/me", deputyTok).Code)

	w = callWithBody(app, http.MethodPatch, path, chiefTok, `{"status":"inactive"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, http.StatusForbidden, call(app, http.MethodGet, "/api/v1/me", deputyTok).Code)
}
