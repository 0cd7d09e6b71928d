package handler

import (
	"net/http"
	"strconv"

	"reservehub/internal/middleware"
	"reservehub/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	svc   *service.NotificationService
	audit Auditor
	log   *zap.Logger
}

func NewNotificationHandler(svc *service.NotificationService, audit Auditor, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{svc: svc, audit: audit, log: log.Named("notifications")}
}

func (h *NotificationHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	unreadOnly := c.Query("unread") == "true"
	list, err := h.svc.List(c.Request.Context(), userID, unreadOnly, limit, offset)
	if err != nil {
		respondError(c, h.log, err, "list failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list})
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	n, err := h.svc.UnreadCount(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err, "count failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": n})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.MarkRead(c.Request.Context(), id, middleware.GetUserID(c)); err != nil {
		respondError(c, h.log, err, "update failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	n, err := h.svc.MarkAllRead(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err, "update failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "updated": n})
}

type AnnounceRequest struct {
	Message string   `json:"message" binding:"required"`
	URL     string   `json:"url"`
	Roles   []string `json:"roles"`
	UserIDs []uint   `json:"user_ids"`
}

// Announce broadcasts an admin message to the selected roles and users. Each recipient gets it once.
func (h *NotificationHandler) Announce(c *gin.Context) {
	var req AnnounceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Roles) == 0 && len(req.UserIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "roles or user_ids required"})
		return
	}
	sent, err := h.svc.Announce(c.Request.Context(), service.Announcement{
		Message: req.Message,
		URL:     req.URL,
		Roles:   req.Roles,
		UserIDs: req.UserIDs,
	})
	if err != nil && sent == 0 {
		respondError(c, h.log, err, "announcement failed")
		return
	}
	if err != nil {
		h.log.Warn("announcement partially delivered", zap.Int("sent", sent), zap.Error(err))
	}
	record(c, h.audit, "announce", "notification", 0, map[string]any{"sent": sent, "roles": req.Roles})
	c.JSON(http.StatusOK, gin.H{"sent": sent})
}
