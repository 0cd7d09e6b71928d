package handler

import (
	"net/http"

	"reservehub/internal/middleware"
	"reservehub/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MeHandler serves the caller's own account and assignments.
type MeHandler struct {
	auth      *service.AuthService
	events    *service.EventService
	trainings *service.TrainingService
	equipment *service.EquipmentService
	policies  *service.PolicyService
	log       *zap.Logger
}

func NewMeHandler(auth *service.AuthService, events *service.EventService, trainings *service.TrainingService, equipment *service.EquipmentService, policies *service.PolicyService, log *zap.Logger) *MeHandler {
	return &MeHandler{auth: auth, events: events, trainings: trainings, equipment: equipment, policies: policies, log: log.Named("me")}
}

func (h *MeHandler) Me(c *gin.Context) {
	u, err := h.auth.Me(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err, "failed to load profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

type FCMTokenRequest struct {
	Token string `json:"token"`
}

// RegisterFCMToken stores the device token for push delivery. An empty token clears it.
func (h *MeHandler) RegisterFCMToken(c *gin.Context) {
	var req FCMTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.auth.SetFCMToken(c.Request.Context(), middleware.GetUserID(c), req.Token); err != nil {
		respondError(c, h.log, err, "failed to save token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *MeHandler) Events(c *gin.Context) {
	list, err := h.events.MySignups(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err, "failed to list signups")
		return
	}
	c.JSON(http.StatusOK, gin.H{"signups": list})
}

func (h *MeHandler) Trainings(c *gin.Context) {
	list, err := h.trainings.MyTrainings(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err, "failed to list trainings")
		return
	}
	c.JSON(http.StatusOK, gin.H{"trainings": list})
}

func (h *MeHandler) Equipment(c *gin.Context) {
	list, err := h.equipment.MyEquipment(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err, "failed to list equipment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"equipment": list})
}

func (h *MeHandler) Policies(c *gin.Context) {
	list, err := h.policies.MyPolicies(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.log, err, "failed to list policies")
		return
	}
	c.JSON(http.StatusOK, gin.H{"policies": list})
}
