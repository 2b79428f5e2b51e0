package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	"github.com/BruksfildServices01/clinic-scheduler/internal/auth"
	"github.com/BruksfildServices01/clinic-scheduler/internal/config"
	"github.com/BruksfildServices01/clinic-scheduler/internal/handlers"
	infraRepo "github.com/BruksfildServices01/clinic-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/clinic-scheduler/internal/logger"
	"github.com/BruksfildServices01/clinic-scheduler/internal/mailer"
	"github.com/BruksfildServices01/clinic-scheduler/internal/middleware"
	"github.com/BruksfildServices01/clinic-scheduler/internal/notify"
	"github.com/BruksfildServices01/clinic-scheduler/internal/storage"
	"github.com/BruksfildServices01/clinic-scheduler/internal/timezone"
	ucAppointment "github.com/BruksfildServices01/clinic-scheduler/internal/usecase/appointment"
	ucDashboard "github.com/BruksfildServices01/clinic-scheduler/internal/usecase/dashboard"
)

// Deps are the long-lived collaborators built in main.
type Deps struct {
	DB          *gorm.DB
	Config      *config.Config
	Logger      *zap.Logger
	Tokens      *auth.TokenService
	Revocations auth.Revocations
	Store       storage.Store
	Mailer      mailer.Sender
	Audit       *audit.Dispatcher
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	cfg := d.Config
	db := d.DB

	// ======================================================
	// GLOBAL MIDDLEWARE
	// ======================================================
	r.Use(logger.Gin(d.Logger))
	r.Use(logger.Recovery(d.Logger))
	r.Use(middleware.CORS(cfg.FrontendURL))

	// ======================================================
	// INFRA
	// ======================================================
	loc := timezone.Location(cfg.ClinicTimezone)
	uploader := storage.NewUploader(d.Store, d.Logger)
	notifier := notify.New(db, d.Logger)

	appointmentRepo := infraRepo.NewAppointmentGormRepository(db)
	dashboardRepo := infraRepo.NewDashboardGormRepository(db)

	// ======================================================
	// USE CASES
	// ======================================================
	createAppointmentUC := ucAppointment.NewCreateAppointment(
		appointmentRepo,
		uploader,
		notifier,
		d.Audit,
		d.Logger,
		loc,
	)
	listAppointmentsUC := ucAppointment.NewListAppointments(appointmentRepo)
	getAppointmentUC := ucAppointment.NewGetAppointment(appointmentRepo)
	updateStatusUC := ucAppointment.NewUpdateAppointmentStatus(appointmentRepo, d.Audit)

	dashboardStatsUC := ucDashboard.NewGetStats(dashboardRepo, loc)

	// ======================================================
	// HANDLERS
	// ======================================================
	healthHandler := handlers.NewHealthHandler(db, cfg.Env)
	authHandler := handlers.NewAuthHandler(db, d.Tokens, d.Revocations, d.Audit)
	adminUsersHandler := handlers.NewAdminUsersHandler(db, d.Audit)
	dashboardHandler := handlers.NewDashboardHandler(dashboardStatsUC)
	auditLogsHandler := handlers.NewAuditLogsHandler(db, loc)

	appointmentHandler := handlers.NewAppointmentHandler(
		createAppointmentUC,
		listAppointmentsUC,
		getAppointmentUC,
		updateStatusUC,
	)

	practitionerHandler := handlers.NewPractitionerHandler(db, uploader, d.Audit)
	serviceHandler := handlers.NewServiceHandler(db, uploader, d.Audit)
	programHandler := handlers.NewProgramHandler(db, uploader, d.Audit)
	testimonialHandler := handlers.NewTestimonialHandler(db, uploader, d.Audit)
	contactHandler := handlers.NewContactHandler(db, cfg, d.Mailer, notifier, d.Audit, d.Logger)
	notificationHandler := handlers.NewNotificationHandler(db, notifier, loc)
	uploadHandler := handlers.NewUploadHandler(uploader, d.Audit)

	publicLimit := middleware.NewRateLimiter(cfg.PublicRatePerMin).Middleware()
	protect := middleware.Auth(d.Tokens, d.Revocations)
	adminOnly := middleware.AdminOnly()

	// ======================================================
	// STATIC
	// ======================================================
	r.GET("/health", healthHandler.Health)
	if local, ok := d.Store.(*storage.LocalStore); ok {
		r.Static("/uploads", local.Root())
	}
	r.NoRoute(handlers.NotFound)

	// ======================================================
	// API
	// ======================================================
	api := r.Group("/api")
	api.GET("", healthHandler.Index)

	// ------------------------------
	// AUTH
	// ------------------------------
	authAPI := api.Group("/auth")
	{
		authAPI.POST("/login", publicLimit, authHandler.Login)

		authAPI.GET("/profile", protect, authHandler.Profile)
		authAPI.PUT("/profile", protect, authHandler.UpdateProfile)
		authAPI.POST("/logout", protect, authHandler.Logout)
		authAPI.GET("/verify", protect, authHandler.Verify)
	}

	// ------------------------------
	// ADMIN
	// ------------------------------
	adminAPI := api.Group("/admin", protect, adminOnly)
	{
		adminAPI.GET("/dashboard/stats", dashboardHandler.Stats)

		adminAPI.GET("/users", adminUsersHandler.List)
		adminAPI.POST("/users", adminUsersHandler.Create)
		adminAPI.PUT("/users/:id", adminUsersHandler.Update)
		adminAPI.DELETE("/users/:id", adminUsersHandler.Delete)

		adminAPI.GET("/audit-logs", auditLogsHandler.List)
	}

	// ------------------------------
	// APPOINTMENTS
	// ------------------------------
	appointments := api.Group("/appointments")
	{
		appointments.POST("", publicLimit, appointmentHandler.Create)

		appointments.GET("", protect, adminOnly, appointmentHandler.List)
		appointments.GET("/:id", protect, adminOnly, appointmentHandler.Get)
		appointments.PATCH("/:id/status", protect, adminOnly, appointmentHandler.UpdateStatus)
	}

	// ------------------------------
	// PRACTITIONERS
	// ------------------------------
	practitioners := api.Group("/practitioners")
	{
		practitioners.GET("/public", practitionerHandler.PublicList)

		practitioners.GET("", protect, adminOnly, practitionerHandler.List)
		practitioners.POST("", protect, adminOnly, practitionerHandler.Create)
		practitioners.PUT("/:id", protect, adminOnly, practitionerHandler.Update)
		practitioners.DELETE("/:id", protect, adminOnly, practitionerHandler.Delete)
		practitioners.PUT("/:id/toggle-status", protect, adminOnly, practitionerHandler.ToggleStatus)
	}

	// ------------------------------
	// SERVICES
	// ------------------------------
	services := api.Group("/services")
	{
		services.GET("", serviceHandler.List)
		services.GET("/:identifier", serviceHandler.Get)

		admin := services.Group("/admin", protect, adminOnly)
		admin.POST("", serviceHandler.Create)
		admin.PUT("/:id", serviceHandler.Update)
		admin.DELETE("/:id", serviceHandler.Delete)
		admin.PUT("/:id/toggle-status", serviceHandler.ToggleStatus)
	}

	// ------------------------------
	// PROGRAMS
	// ------------------------------
	programs := api.Group("/programs")
	{
		programs.GET("", programHandler.List)
		programs.GET("/:identifier", programHandler.Get)

		admin := programs.Group("/admin", protect, adminOnly)
		admin.POST("", programHandler.Create)
		admin.PUT("/:id", programHandler.Update)
		admin.DELETE("/:id", programHandler.Delete)
		admin.PUT("/:id/toggle-status", programHandler.ToggleStatus)
	}

	// ------------------------------
	// TESTIMONIALS
	// ------------------------------
	testimonials := api.Group("/testimonials")
	{
		testimonials.GET("", testimonialHandler.List)
		testimonials.GET("/stats", testimonialHandler.Stats)

		testimonials.GET("/admin", protect, adminOnly, testimonialHandler.AdminList)
		testimonials.POST("", protect, adminOnly, testimonialHandler.Create)
		testimonials.PUT("/:id", protect, adminOnly, testimonialHandler.Update)
		testimonials.DELETE("/:id", protect, adminOnly, testimonialHandler.Delete)
		testimonials.PUT("/:id/toggle-status", protect, adminOnly, testimonialHandler.ToggleStatus)
		testimonials.PUT("/:id/toggle-featured", protect, adminOnly, testimonialHandler.ToggleFeatured)
	}

	// ------------------------------
	// CONTACT
	// ------------------------------
	contact := api.Group("/contact")
	{
		contact.POST("", publicLimit, contactHandler.Submit)
		contact.GET("/info", contactHandler.Info)

		admin := contact.Group("/admin", protect, adminOnly)
		admin.GET("/inquiries", contactHandler.List)
		admin.GET("/inquiries/:id", contactHandler.Get)
		admin.PUT("/inquiries/:id/status", contactHandler.UpdateStatus)
		admin.POST("/inquiries/:id/reply", contactHandler.Reply)
		admin.DELETE("/inquiries/:id", contactHandler.Delete)
		admin.GET("/stats", contactHandler.Stats)
	}

	// ------------------------------
	// NOTIFICATIONS
	// ------------------------------
	notifications := api.Group("/notifications", protect)
	{
		notifications.GET("", notificationHandler.List)
		notifications.GET("/unread-count", notificationHandler.UnreadCount)
		notifications.PUT("/mark-all-read", notificationHandler.MarkAllRead)
		notifications.PUT("/:id/read", notificationHandler.MarkRead)
		notifications.DELETE("/clear-read", notificationHandler.ClearRead)
		notifications.DELETE("/:id", notificationHandler.Delete)

		notifications.POST("/system", adminOnly, notificationHandler.System)
		notifications.GET("/admin/stats", adminOnly, notificationHandler.Stats)
	}

	// ------------------------------
	// UPLOADS
	// ------------------------------
	uploads := api.Group("/uploads", protect, adminOnly)
	{
		uploads.POST("/single", uploadHandler.Single)
		uploads.POST("/multiple", uploadHandler.Multiple)
		uploads.GET("/list", uploadHandler.List)
		uploads.GET("/list/:directory", uploadHandler.List)
		uploads.GET("/info/:filename", uploadHandler.Info)
		uploads.DELETE("/:filename", uploadHandler.Delete)
	}
}
