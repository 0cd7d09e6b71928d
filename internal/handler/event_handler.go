package handler

import (
	"net/http"
	"time"

	"reservehub/internal/middleware"
	"reservehub/internal/models"
	"reservehub/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type EventHandler struct {
	svc   *service.EventService
	audit Auditor
	log   *zap.Logger
}

func NewEventHandler(svc *service.EventService, audit Auditor, log *zap.Logger) *EventHandler {
	return &EventHandler{svc: svc, audit: audit, log: log.Named("events")}
}

type CreateEventRequest struct {
	Title       string    `json:"title" binding:"required,max=255"`
	Description string    `json:"description"`
	Location    string    `json:"location" binding:"max=255"`
	StartsAt    time.Time `json:"starts_at" binding:"required"`
	EndsAt      time.Time `json:"ends_at" binding:"required"`
	Capacity    int       `json:"capacity"`
}

type UpdateEventRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Location    *string    `json:"location"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
	Capacity    *int       `json:"capacity"`
}

type AttendanceRequest struct {
	Status string `json:"status" binding:"required,oneof=completed excused"`
	Notes  string `json:"notes"`
}

func (h *EventHandler) List(c *gin.Context) {
	page, limit := parsePagination(c)
	upcoming := c.DefaultQuery("upcoming", "true") == "true"
	list, total, err := h.svc.List(c.Request.Context(), upcoming, c.Query("status"), page, limit)
	if err != nil {
		respondError(c, h.log, err, "list failed")
		return
	}
	c.JSON(http.StatusOK, paged("events", list, total, page, limit))
}

func (h *EventHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	e, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err, "failed to load event")
		return
	}
	c.JSON(http.StatusOK, gin.H{"event": e})
}

func (h *EventHandler) Create(c *gin.Context) {
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	e := &models.Event{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt.UTC(),
		EndsAt:      req.EndsAt.UTC(),
		Capacity:    req.Capacity,
		CreatedBy:   middleware.GetUserID(c),
	}
	if err := h.svc.Create(c.Request.Context(), e); err != nil {
		respondError(c, h.log, err, "create failed")
		return
	}
	record(c, h.audit, "create", "event", e.ID, map[string]any{"title": e.Title})
	c.JSON(http.StatusCreated, gin.H{"event": e})
}

func (h *EventHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	e, err := h.svc.Update(c.Request.Context(), id, service.EventUpdate{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    utcPtr(req.StartsAt),
		EndsAt:      utcPtr(req.EndsAt),
		Capacity:    req.Capacity,
	})
	if err != nil {
		respondError(c, h.log, err, "update failed")
		return
	}
	record(c, h.audit, "update", "event", id, nil)
	c.JSON(http.StatusOK, gin.H{"event": e})
}

func (h *EventHandler) Cancel(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	e, err := h.svc.Cancel(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err, "cancel failed")
		return
	}
	record(c, h.audit, "cancel", "event", id, nil)
	c.JSON(http.StatusOK, gin.H{"event": e})
}

func (h *EventHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err, "delete failed")
		return
	}
	record(c, h.audit, "delete", "event", id, nil)
	c.Status(http.StatusNoContent)
}

func (h *EventHandler) Signup(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	row, err := h.svc.Signup(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err, "signup failed")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"signup": row})
}

func (h *EventHandler) Withdraw(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Withdraw(c.Request.Context(), id, middleware.GetUserID(c)); err != nil {
		respondError(c, h.log, err, "withdraw failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *EventHandler) Signups(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	list, err := h.svc.Signups(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err, "list failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"signups": list})
}

func (h *EventHandler) MarkAttendance(c *gin.Context) {
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
	row, err := h.svc.MarkAttendance(c.Request.Context(), id, userID, req.Status, req.Notes)
	if err != nil {
		respondError(c, h.log, err, "attendance update failed")
		return
	}
	record(c, h.audit, "attendance", "event", id, map[string]any{"user_id": userID, "status": req.Status})
	c.JSON(http.StatusOK, gin.H{"signup": row})
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
