package router

import (
	"net/http"
	"time"

	"reservehub/config"
	"reservehub/internal/domain"
	"reservehub/internal/handler"
	"reservehub/internal/metrics"
	"reservehub/internal/middleware"
	"reservehub/internal/repository"
	"reservehub/internal/service"
	"reservehub/internal/ws"
	"reservehub/pkg/cloudinary"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App is the wired HTTP surface plus the pieces the CLI drives directly.
type App struct {
	Engine    *gin.Engine
	Reminders *service.ReminderProcessor
	Hub       *ws.Hub
	limiter   *middleware.InMemoryRateLimiter
}

// Close stops background work started by Setup.
func (a *App) Close() {
	a.limiter.Stop()
}

// Setup builds repositories, services and routes. cloud and push may be nil when
// uploads or push delivery are not configured.
func Setup(cfg *config.Config, db *gorm.DB, cloud cloudinary.Client, push service.Pusher, log *zap.Logger) (*App, error) {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	limiter := middleware.NewInMemoryRateLimiter(cfg.Server.RateLimit, cfg.Server.RateWindow)
	limiter.StartCleanup(5 * time.Minute)

	r := gin.New()
	r.Use(middleware.Recovery(log), middleware.RequestLogger(log.Named("http")))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	eventRepo := repository.NewEventRepository(db)
	trainingRepo := repository.NewTrainingRepository(db)
	equipmentRepo := repository.NewEquipmentRepository(db)
	policyRepo := repository.NewPolicyRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	assignments := service.NewAssignments(db)

	hub := ws.NewHub()

	// Services
	notifSvc := service.NewNotificationService(notificationRepo, userRepo, hub, push, log)
	authSvc := service.NewAuthService(&cfg.JWT, userRepo)
	adminSvc := service.NewAdminService(adminRepo, userRepo, auditRepo, log)
	appSvc := service.NewApplicationService(applicationRepo, userRepo, notifSvc, log)
	eventSvc := service.NewEventService(eventRepo, assignments.Events, userRepo, notifSvc, log)
	trainingSvc := service.NewTrainingService(trainingRepo, assignments.Trainings, userRepo, notifSvc, log)
	equipmentSvc := service.NewEquipmentService(equipmentRepo, assignments.Equipment, userRepo, notifSvc, cloud, cfg.Cloudinary.Folder, log)
	policySvc := service.NewPolicyService(policyRepo, assignments.Policies, userRepo, notifSvc, log)
	reminders, err := service.NewReminderProcessor(&cfg.Reminder, assignments.Sources(), notifSvc, notifSvc, metrics.NewReminderMetrics(reg), log)
	if err != nil {
		limiter.Stop()
		return nil, err
	}

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc, log)
	meHandler := handler.NewMeHandler(authSvc, eventSvc, trainingSvc, equipmentSvc, policySvc, log)
	notificationHandler := handler.NewNotificationHandler(notifSvc, adminSvc, log)
	applicationHandler := handler.NewApplicationHandler(appSvc, adminSvc, log)
	eventHandler := handler.NewEventHandler(eventSvc, adminSvc, log)
	trainingHandler := handler.NewTrainingHandler(trainingSvc, adminSvc, log)
	equipmentHandler := handler.NewEquipmentHandler(equipmentSvc, adminSvc, log)
	policyHandler := handler.NewPolicyHandler(policySvc, adminSvc, log)
	adminHandler := handler.NewAdminHandler(adminSvc, log)
	cronHandler := handler.NewCronHandler(reminders, log)

	authMw := middleware.AuthRequired(&cfg.JWT, userRepo, log)
	memberMw := middleware.RequireRole(domain.RoleMember, domain.RoleAdmin)
	adminMw := middleware.RequireRole(domain.RoleAdmin)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	cron := r.Group("/api/cron", middleware.CronSecret(cfg.Cron.Secret, log))
	{
		cron.GET("/reminders", cronHandler.Reminders)
		cron.POST("/reminders", cronHandler.Reminders)
	}

	api := r.Group("/api/v1", middleware.RateLimit(limiter))
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.PATCH("/change-password", authMw, authHandler.ChangePassword)
		}

		me := api.Group("/me", authMw)
		{
			me.GET("", meHandler.Me)
			me.POST("/fcm-token", meHandler.RegisterFCMToken)
			me.GET("/notifications", notificationHandler.List)
			me.GET("/notifications/unread-count", notificationHandler.UnreadCount)
			me.PUT("/notifications/:id/read", notificationHandler.MarkRead)
			me.PUT("/notifications/read-all", notificationHandler.MarkAllRead)
			me.GET("/applications", applicationHandler.Mine)
			me.GET("/events", memberMw, meHandler.Events)
			me.GET("/trainings", memberMw, meHandler.Trainings)
			me.GET("/equipment", memberMw, meHandler.Equipment)
			me.GET("/policies", memberMw, meHandler.Policies)
		}

		api.POST("/applications", authMw, applicationHandler.Submit)
		api.GET("/applications/:id", authMw, applicationHandler.Get)

		members := api.Group("", authMw, memberMw)
		{
			members.GET("/events", eventHandler.List)
			members.GET("/events/:id", eventHandler.Get)
			members.POST("/events/:id/signup", eventHandler.Signup)
			members.DELETE("/events/:id/signup", eventHandler.Withdraw)

			members.GET("/trainings", trainingHandler.List)
			members.GET("/trainings/:id", trainingHandler.Get)
			members.POST("/trainings/:id/complete", trainingHandler.Complete)

			members.GET("/policies", policyHandler.List)
			members.GET("/policies/:id", policyHandler.Get)
			members.POST("/policies/:id/acknowledge", policyHandler.Acknowledge)

			members.GET("/equipment/:id", equipmentHandler.Get)
		}

		admin := api.Group("/admin", authMw, adminMw)
		{
			admin.GET("/dashboard", adminHandler.Dashboard)
			admin.GET("/signups", adminHandler.Signups)
			admin.GET("/users", adminHandler.ListUsers)
			admin.PATCH("/users/:id", adminHandler.UpdateUser)
			admin.GET("/audit-log", adminHandler.AuditLog)
			admin.POST("/announcements", notificationHandler.Announce)

			admin.GET("/applications", applicationHandler.List)
			admin.POST("/applications/:id/review", applicationHandler.Review)

			admin.POST("/events", eventHandler.Create)
			admin.PATCH("/events/:id", eventHandler.Update)
			admin.POST("/events/:id/cancel", eventHandler.Cancel)
			admin.DELETE("/events/:id", eventHandler.Delete)
			admin.GET("/events/:id/signups", eventHandler.Signups)
			admin.PUT("/events/:id/signups/:userId", eventHandler.MarkAttendance)

			admin.POST("/trainings", trainingHandler.Create)
			admin.PATCH("/trainings/:id", trainingHandler.Update)
			admin.DELETE("/trainings/:id", trainingHandler.Delete)
			admin.GET("/trainings/:id/assignees", trainingHandler.Assignees)
			admin.POST("/trainings/:id/assignees", trainingHandler.Assign)
			admin.PUT("/trainings/:id/assignees/:userId", trainingHandler.SetStatus)
			admin.DELETE("/trainings/:id/assignees/:userId", trainingHandler.Unassign)

			admin.GET("/equipment", equipmentHandler.List)
			admin.POST("/equipment", equipmentHandler.Create)
			admin.PATCH("/equipment/:id", equipmentHandler.Update)
			admin.DELETE("/equipment/:id", equipmentHandler.Delete)
			admin.POST("/equipment/:id/photo", equipmentHandler.UploadPhoto)
			admin.POST("/equipment/:id/checkout", equipmentHandler.Checkout)
			admin.POST("/equipment/:id/return", equipmentHandler.Return)
			admin.GET("/equipment/:id/history", equipmentHandler.History)

			admin.POST("/policies", policyHandler.Create)
			admin.PATCH("/policies/:id", policyHandler.Update)
			admin.DELETE("/policies/:id", policyHandler.Delete)
			admin.POST("/policies/:id/publish", policyHandler.Publish)
			admin.GET("/policies/:id/acknowledgements", policyHandler.Acknowledgements)
		}
	}

	r.GET("/ws/notifications", ws.UpgradeNotificationsWS(&cfg.JWT, userRepo, hub, log))

	return &App{Engine: r, Reminders: reminders, Hub: hub, limiter: limiter}, nil
}
