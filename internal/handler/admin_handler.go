package handler

import (
	"net/http"
	"strconv"

	"reservehub/internal/middleware"
	"reservehub/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AdminHandler struct {
	svc *service.AdminService
	log *zap.Logger
}

func NewAdminHandler(svc *service.AdminService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, log: log.Named("admin")}
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.svc.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err, "failed to load stats")
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

func (h *AdminHandler) Signups(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	if days < 1 || days > 365 {
		days = 30
	}
	points, err := h.svc.Signups(c.Request.Context(), days)
	if err != nil {
		respondError(c, h.log, err, "failed to load signups")
		return
	}
	c.JSON(http.StatusOK, gin.H{"points": points, "days": days})
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, limit := parsePagination(c)
	users, total, err := h.svc.ListUsers(c.Request.Context(), c.Query("search"), c.Query("role"), c.Query("status"), page, limit)
	if err != nil {
		respondError(c, h.log, err, "failed to list users")
		return
	}
	c.JSON(http.StatusOK, paged("users", users, total, page, limit))
}

type UpdateUserRequest struct {
	Role        *string `json:"role"`
	Status      *string `json:"status"`
	BadgeNumber *string `json:"badge_number"`
}

func (h *AdminHandler) UpdateUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.svc.UpdateUser(c.Request.Context(), middleware.GetUserID(c), id, service.UserPatch{
		Role:        req.Role,
		Status:      req.Status,
		BadgeNumber: req.BadgeNumber,
	})
	if err != nil {
		respondError(c, h.log, err, "failed to update user")
		return
	}
	meta := map[string]any{}
	if req.Role != nil {
		meta["role"] = *req.Role
	}
	if req.Status != nil {
		meta["status"] = *req.Status
	}
	record(c, h.svc, "update", "user", id, meta)
	c.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *AdminHandler) AuditLog(c *gin.Context) {
	page, limit := parsePagination(c)
	entries, total, err := h.svc.AuditLog(c.Request.Context(), c.Query("resource"), page, limit)
	if err != nil {
		respondError(c, h.log, err, "failed to load audit log")
		return
	}
	c.JSON(http.StatusOK, paged("entries", entries, total, page, limit))
}
