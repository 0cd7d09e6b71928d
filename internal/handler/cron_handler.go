package handler

import (
	"context"
	"net/http"

	"reservehub/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReminderRunner runs one reminder pass. *service.ReminderProcessor implements it.
type ReminderRunner interface {
	ProcessAll(ctx context.Context) service.RunSummary
}

type CronHandler struct {
	runner ReminderRunner
	log    *zap.Logger
}

func NewCronHandler(runner ReminderRunner, log *zap.Logger) *CronHandler {
	return &CronHandler{runner: runner, log: log.Named("cron")}
}

// Reminders is hit by the external scheduler. Failure details stay in the logs.
func (h *CronHandler) Reminders(c *gin.Context) {
	summary := h.runner.ProcessAll(c.Request.Context())
	sent, skipped, failed := summary.Totals()
	if !summary.OK {
		h.log.Error("reminder run failed",
			zap.String("run_id", summary.RunID),
			zap.Int("sent", sent), zap.Int("skipped", skipped), zap.Int("failed", failed))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reminder processing failed"})
		return
	}
	h.log.Info("reminder run finished",
		zap.String("run_id", summary.RunID),
		zap.Int("sent", sent), zap.Int("skipped", skipped))
	c.JSON(http.StatusOK, gin.H{"success": true})
}
