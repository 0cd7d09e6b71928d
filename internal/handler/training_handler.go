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

type TrainingHandler struct {
	svc   *service.TrainingService
	audit Auditor
	log   *zap.Logger
}

func NewTrainingHandler(svc *service.TrainingService, audit Auditor, log *zap.Logger) *TrainingHandler {
	return &TrainingHandler{svc: svc, audit: audit, log: log.Named("trainings")}
}

type CreateTrainingRequest struct {
	Title       string    `json:"title" binding:"required,max=255"`
	Description string    `json:"description"`
	Location    string    `json:"location" binding:"max=255"`
	StartsAt    time.Time `json:"starts_at" binding:"required"`
	EndsAt      time.Time `json:"ends_at" binding:"required"`
	Required    bool      `json:"required"`
}

type UpdateTrainingRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Location    *string    `json:"location"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
	Required    *bool      `json:"required"`
}

type AssignUsersRequest struct {
	UserIDs []uint `json:"user_ids" binding:"required,min=1"`
}

type NotesRequest struct {
	Notes string `json:"notes"`
}

func (h *TrainingHandler) List(c *gin.Context) {
	page, limit := parsePagination(c)
	upcoming := c.DefaultQuery("upcoming", "true") == "true"
	list, total, err := h.svc.List(c.Request.Context(), upcoming, page, limit)
	if err != nil {
		respondError(c, h.log, err, "list failed")
		return
	}
	c.JSON(http.StatusOK, paged("trainings", list, total, page, limit))
}

func (h *TrainingHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	t, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err, "failed to load training")
		return
	}
	c.JSON(http.StatusOK, gin.H{"training": t})
}

func (h *TrainingHandler) Create(c *gin.Context) {
	var req CreateTrainingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t := &models.Training{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt.UTC(),
		EndsAt:      req.EndsAt.UTC(),
		Required:    req.Required,
		CreatedBy:   middleware.GetUserID(c),
	}
	if err := h.svc.Create(c.Request.Context(), t); err != nil {
		respondError(c, h.log, err, "create failed")
		return
	}
	record(c, h.audit, "create", "training", t.ID, map[string]any{"title": t.Title})
	c.JSON(http.StatusCreated, gin.H{"training": t})
}

func (h *TrainingHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateTrainingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := h.svc.Update(c.Request.Context(), id, service.TrainingUpdate{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    utcPtr(req.StartsAt),
		EndsAt:      utcPtr(req.EndsAt),
		Required:    req.Required,
	})
	if err != nil {
		respondError(c, h.log, err, "update failed")
		return
	}
	record(c, h.audit, "update", "training", id, nil)
	c.JSON(http.StatusOK, gin.H{"training": t})
}

func (h *TrainingHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err, "delete failed")
		return
	}
	record(c, h.audit, "delete", "training", id, nil)
	c.Status(http.StatusNoContent)
}

func (h *TrainingHandler) Assign(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req AssignUsersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.svc.Assign(c.Request.Context(), id, req.UserIDs)
	if err != nil {
		respondError(c, h.log, err, "assign failed")
		return
	}
	record(c, h.audit, "assign", "training", id, map[string]any{"assigned": res.Assigned})
	c.JSON(http.StatusOK, gin.H{"result": res})
}

func (h *TrainingHandler) Unassign(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	userID, ok := parseID(c, "userId")
	if !ok {
		return
	}
	if err := h.svc.Unassign(c.Request.Context(), id, userID); err != nil {
		respondError(c, h.log, err, "unassign failed")
		return
	}
	record(c, h.audit, "unassign", "training", id, map[string]any{"user_id": userID})
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *TrainingHandler) Assignees(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	list, err := h.svc.Assignees(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err, "list failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignees": list})
}

// Complete marks the caller's own training done.
func (h *TrainingHandler) Complete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req NotesRequest
	_ = c.ShouldBindJSON(&req)
	row, err := h.svc.Complete(c.Request.Context(), id, middleware.GetUserID(c), req.Notes)
	if err != nil {
		respondError(c, h.log, err, "update failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignment": row})
}

// SetStatus lets an admin complete or excuse a member's training.
func (h *TrainingHandler) SetStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	userID, ok := parseID(c, "userId")
	if !ok {
		return
	}
	var req AttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var (
		row *models.TrainingAssignment
		err error
	)
	if req.Status == domain.StatusExcused {
		row, err = h.svc.Excuse(c.Request.Context(), id, userID, req.Notes)
	} else {
		row, err = h.svc.Complete(c.Request.Context(), id, userID, req.Notes)
	}
	if err != nil {
		respondError(c, h.log, err, "update failed")
		return
	}
	record(c, h.audit, req.Status, "training", id, map[string]any{"user_id": userID})
	c.JSON(http.StatusOK, gin.H{"assignment": row})
}
