package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"reservehub/internal/domain"
	"reservehub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubRunner struct {
	summary service.RunSummary
	calls   int
}

func (s *stubRunner) ProcessAll(context.Context) service.RunSummary {
	s.calls++
	return s.summary
}

func TestCronReminders(t *testing.T) {
	cases := []struct {
		name     string
		summary  service.RunSummary
		wantCode int
		wantBody string
	}{
		{
			name: "all domains ok",
			summary: service.RunSummary{OK: true, Domains: []service.DomainResult{
				{Kind: domain.KindEvent, Due: 2, Sent: 2},
			}},
			wantCode: http.StatusOK,
			wantBody: `{"success":true}`,
		},
		{
			name: "one domain failed",
			summary: service.RunSummary{OK: false, Domains: []service.DomainResult{
				{Kind: domain.KindEvent, Sent: 1},
				{Kind: domain.KindPolicy, Error: "dial tcp: connection refused"},
			}},
			wantCode: http.StatusInternalServerError,
			wantBody: `{"error":"reminder processing failed"}`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			runner := &stubRunner{summary: tc.summary}
			h := NewCronHandler(runner, zap.NewNop())
			r := gin.New()
			r.GET("/api/cron/reminders", h.Reminders)
			r.POST("/api/cron/reminders", h.Reminders)

			for _, method := range []string{http.MethodGet, http.MethodPost} {
				w := httptest.NewRecorder()
				r.ServeHTTP(w, httptest.NewRequest(method, "/api/cron/reminders", nil))
				assert.Equal(t, tc.wantCode, w.Code, method)
				assert.JSONEq(t, tc.wantBody, w.Body.String(), method)
			}
			assert.Equal(t, 2, runner.calls)
		})
	}
}
