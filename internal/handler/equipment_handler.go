package handler

import (
	"errors"
	"net/http"
	"time"

	"reservehub/internal/models"
	"reservehub/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxPhotoBytes = 10 << 20

type EquipmentHandler struct {
	svc   *service.EquipmentService
	audit Auditor
	log   *zap.Logger
}

func NewEquipmentHandler(svc *service.EquipmentService, audit Auditor, log *zap.Logger) *EquipmentHandler {
	return &EquipmentHandler{svc: svc, audit: audit, log: log.Named("equipment")}
}

type CreateEquipmentRequest struct {
	Name         string `json:"name" binding:"required,max=255"`
	SerialNumber string `json:"serial_number" binding:"required,max=128"`
	Category     string `json:"category" binding:"max=64"`
	Condition    string `json:"condition" binding:"max=64"`
	Status       string `json:"status"`
}

type UpdateEquipmentRequest struct {
	Name      *string `json:"name"`
	Category  *string `json:"category"`
	Condition *string `json:"condition"`
	Status    *string `json:"status"`
}

type CheckoutRequest struct {
	UserID      uint       `json:"user_id" binding:"required"`
	ReturnDueAt *time.Time `json:"return_due_at"`
}

type ReturnRequest struct {
	UserID uint   `json:"user_id" binding:"required"`
	Notes  string `json:"notes"`
}

func (h *EquipmentHandler) List(c *gin.Context) {
	page, limit := parsePagination(c)
	list, total, err := h.svc.List(c.Request.Context(), c.Query("search"), c.Query("status"), c.Query("category"), page, limit)
	if err != nil {
		respondError(c, h.log, err, "list failed")
		return
	}
	c.JSON(http.StatusOK, paged("equipment", list, total, page, limit))
}

func (h *EquipmentHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	e, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err, "failed to load equipment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"equipment": e})
}

func (h *EquipmentHandler) Create(c *gin.Context) {
	var req CreateEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	e := &models.Equipment{
		Name:         req.Name,
		SerialNumber: req.SerialNumber,
		Category:     req.Category,
		Condition:    req.Condition,
		Status:       req.Status,
	}
	if err := h.svc.Create(c.Request.Context(), e); err != nil {
		respondError(c, h.log, err, "create failed")
		return
	}
	record(c, h.audit, "create", "equipment", e.ID, map[string]any{"serial_number": e.SerialNumber})
	c.JSON(http.StatusCreated, gin.H{"equipment": e})
}

func (h *EquipmentHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	e, err := h.svc.Update(c.Request.Context(), id, service.EquipmentUpdate{
		Name:      req.Name,
		Category:  req.Category,
		Condition: req.Condition,
		Status:    req.Status,
	})
	if err != nil {
		respondError(c, h.log, err, "update failed")
		return
	}
	record(c, h.audit, "update", "equipment", id, nil)
	c.JSON(http.StatusOK, gin.H{"equipment": e})
}

func (h *EquipmentHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err, "delete failed")
		return
	}
	record(c, h.audit, "delete", "equipment", id, nil)
	c.Status(http.StatusNoContent)
}

// UploadPhoto accepts a multipart "file" field and stores it as the item's photo.
func (h *EquipmentHandler) UploadPhoto(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	if file.Size > maxPhotoBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}
	defer f.Close()

	e, err := h.svc.UploadPhoto(c.Request.Context(), id, f)
	if err != nil {
		if errors.Is(err, service.ErrUploadsDisabled) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		respondError(c, h.log, err, "upload failed")
		return
	}
	record(c, h.audit, "upload_photo", "equipment", id, nil)
	c.JSON(http.StatusOK, gin.H{"equipment": e})
}

func (h *EquipmentHandler) Checkout(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	row, err := h.svc.Assign(c.Request.Context(), id, req.UserID, req.ReturnDueAt)
	if err != nil {
		respondError(c, h.log, err, "checkout failed")
		return
	}
	record(c, h.audit, "checkout", "equipment", id, map[string]any{"user_id": req.UserID})
	c.JSON(http.StatusCreated, gin.H{"assignment": row})
}

func (h *EquipmentHandler) Return(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req ReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	row, err := h.svc.Return(c.Request.Context(), id, req.UserID, req.Notes)
	if err != nil {
		respondError(c, h.log, err, "return failed")
		return
	}
	record(c, h.audit, "return", "equipment", id, map[string]any{"user_id": req.UserID})
	c.JSON(http.StatusOK, gin.H{"assignment": row})
}

func (h *EquipmentHandler) History(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	list, err := h.svc.History(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err, "list failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignments": list})
}
