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

type PolicyHandler struct {
	svc   *service.PolicyService
	audit Auditor
	log   *zap.Logger
}

func NewPolicyHandler(svc *service.PolicyService, audit Auditor, log *zap.Logger) *PolicyHandler {
	return &PolicyHandler{svc: svc, audit: audit, log: log.Named("policies")}
}

type CreatePolicyRequest struct {
	Title         string     `json:"title" binding:"required,max=255"`
	Body          string     `json:"body"`
	EffectiveDate *time.Time `json:"effective_date"`
	AcknowledgeBy *time.Time `json:"acknowledge_by"`
}

type UpdatePolicyRequest struct {
	Title         *string    `json:"title"`
	Body          *string    `json:"body"`
	EffectiveDate *time.Time `json:"effective_date"`
	AcknowledgeBy *time.Time `json:"acknowledge_by"`
}

// List shows drafts to admins only.
func (h *PolicyHandler) List(c *gin.Context) {
	page, limit := parsePagination(c)
	publishedOnly := middleware.GetRole(c) != domain.RoleAdmin
	list, total, err := h.svc.List(c.Request.Context(), publishedOnly, page, limit)
	if err != nil {
		respondError(c, h.log, err, "list failed")
		return
	}
	c.JSON(http.StatusOK, paged("policies", list, total, page, limit))
}

func (h *PolicyHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err, "failed to load policy")
		return
	}
	if p.PublishedAt == nil && middleware.GetRole(c) != domain.RoleAdmin {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"policy": p})
}

func (h *PolicyHandler) Create(c *gin.Context) {
	var req CreatePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p := &models.Policy{
		Title:         req.Title,
		Body:          req.Body,
		AcknowledgeBy: utcPtr(req.AcknowledgeBy),
		CreatedBy:     middleware.GetUserID(c),
	}
	if req.EffectiveDate != nil {
		p.EffectiveDate = req.EffectiveDate.UTC()
	}
	if err := h.svc.Create(c.Request.Context(), p); err != nil {
		respondError(c, h.log, err, "create failed")
		return
	}
	record(c, h.audit, "create", "policy", p.ID, map[string]any{"title": p.Title})
	c.JSON(http.StatusCreated, gin.H{"policy": p})
}

func (h *PolicyHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req UpdatePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.svc.Update(c.Request.Context(), id, service.PolicyUpdate{
		Title:         req.Title,
		Body:          req.Body,
		EffectiveDate: utcPtr(req.EffectiveDate),
		AcknowledgeBy: utcPtr(req.AcknowledgeBy),
	})
	if err != nil {
		respondError(c, h.log, err, "update failed")
		return
	}
	record(c, h.audit, "update", "policy", id, map[string]any{"version": p.Version})
	c.JSON(http.StatusOK, gin.H{"policy": p})
}

func (h *PolicyHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err, "delete failed")
		return
	}
	record(c, h.audit, "delete", "policy", id, nil)
	c.Status(http.StatusNoContent)
}

func (h *PolicyHandler) Publish(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	res, err := h.svc.Publish(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err, "publish failed")
		return
	}
	record(c, h.audit, "publish", "policy", id, map[string]any{"assigned": len(res.Assigned)})
	c.JSON(http.StatusOK, gin.H{"result": res})
}

func (h *PolicyHandler) Acknowledge(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	row, err := h.svc.Acknowledge(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err, "acknowledge failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"acknowledgement": row})
}

func (h *PolicyHandler) Acknowledgements(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	list, err := h.svc.Acknowledgements(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err, "list failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"acknowledgements": list})
}
