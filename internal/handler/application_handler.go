package handler

import (
	"net/http"
	"time"

	"reservehub/internal/domain"
	"reservehub/internal/middleware"
	"reservehub/internal/models"
	"reservehub/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ApplicationHandler struct {
	svc   *service.ApplicationService
	audit Auditor
	log   *zap.Logger
}

func NewApplicationHandler(svc *service.ApplicationService, audit Auditor, log *zap.Logger) *ApplicationHandler {
	return &ApplicationHandler{svc: svc, audit: audit, log: log.Named("applications")}
}

type SubmitApplicationRequest struct {
	FullName    string `json:"full_name" binding:"required,max=128"`
	Phone       string `json:"phone" binding:"max=32"`
	DateOfBirth string `json:"date_of_birth"` // YYYY-MM-DD
	Address     string `json:"address" binding:"max=512"`
	Motivation  string `json:"motivation"`
}

type ReviewRequest struct {
	Decision string `json:"decision" binding:"required,oneof=approve reject"`
	Notes    string `json:"notes"`
}

func (h *ApplicationHandler) Submit(c *gin.Context) {
	var req SubmitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	a := &models.Application{
		FullName:   req.FullName,
		Phone:      req.Phone,
		Address:    req.Address,
		Motivation: req.Motivation,
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date_of_birth format (use YYYY-MM-DD)"})
			return
		}
		a.DateOfBirth = &dob
	}
	if err := h.svc.Submit(c.Request.Context(), middleware.GetUserID(c), a); err != nil {
		respondError(c, h.log, err, "submit failed")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"application": a})
}

func (h *ApplicationHandler) Mine(c *gin.Context) {
	list, err := h.svc.Mine(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err, "list failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"applications": list})
}

func (h *ApplicationHandler) List(c *gin.Context) {
	page, limit := parsePagination(c)
	list, total, err := h.svc.List(c.Request.Context(), c.Query("status"), page, limit)
	if err != nil {
		respondError(c, h.log, err, "list failed")
		return
	}
	c.JSON(http.StatusOK, paged("applications", list, total, page, limit))
}

// Get lets admins see any application and applicants see their own.
func (h *ApplicationHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	a, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err, "failed to load application")
		return
	}
	if middleware.GetRole(c) != domain.RoleAdmin && a.UserID != middleware.GetUserID(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"application": a})
}

func (h *ApplicationHandler) Review(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	a, err := h.svc.Review(c.Request.Context(), id, middleware.GetUserID(c), req.Decision == "approve", req.Notes)
	if err != nil {
		respondError(c, h.log, err, "review failed")
		return
	}
	record(c, h.audit, req.Decision, "application", id, map[string]any{"user_id": a.UserID})
	c.JSON(http.StatusOK, gin.H{"application": a})
}
