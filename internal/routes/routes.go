package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/agenda-scheduler/internal/access"
	"github.com/BruksfildServices01/agenda-scheduler/internal/audit"
	"github.com/BruksfildServices01/agenda-scheduler/internal/config"
	"github.com/BruksfildServices01/agenda-scheduler/internal/events"
	"github.com/BruksfildServices01/agenda-scheduler/internal/handlers"
	infraRepo "github.com/BruksfildServices01/agenda-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/agenda-scheduler/internal/media"
	"github.com/BruksfildServices01/agenda-scheduler/internal/middleware"
	ucAppointment "github.com/BruksfildServices01/agenda-scheduler/internal/usecase/appointment"
	"github.com/BruksfildServices01/agenda-scheduler/internal/validators"
)

// Deps are the long-lived collaborators the API is built from. Redis,
// Store and EmailCheck are optional.
type Deps struct {
	DB        *gorm.DB
	Config    *config.Config
	Logger    *slog.Logger
	Audit     *audit.Dispatcher
	Publisher events.Publisher

	Redis      *redis.Client
	Store      media.Store
	EmailCheck validators.EmailCheck
}

func noLimit(c *gin.Context) { c.Next() }

func RegisterRoutes(r *gin.Engine, deps Deps) {
	db, cfg, logger := deps.DB, deps.Config, deps.Logger

	// ======================================================
	// GLOBAL MIDDLEWARE
	// ======================================================
	r.Use(
		middleware.RequestID(),
		middleware.AccessLog(logger),
		middleware.CORSMiddleware(cfg.CORSOrigins),
	)

	// ======================================================
	// INFRA
	// ======================================================
	appointmentRepo := infraRepo.NewAppointmentGormRepository(db)
	checker := access.NewGormChecker(db)

	var publicLimit, bookingLimit gin.HandlerFunc = noLimit, noLimit
	if deps.Redis != nil {
		publicLimit = middleware.NewRateLimiter(deps.Redis, cfg.RateLimitPerMinute, time.Minute, "rl:public", logger).Middleware()
		bookingLimit = middleware.NewRateLimiter(deps.Redis, cfg.RateLimitPerMinute, time.Minute, "rl:booking", logger).Middleware()
	}

	// ======================================================
	// USE CASES
	// ======================================================
	availabilityUC := ucAppointment.NewGetAvailability(appointmentRepo)
	suggestUC := ucAppointment.NewSuggestTimes(availabilityUC)

	createAppointmentUC := ucAppointment.NewCreateAppointment(appointmentRepo, deps.Audit, deps.Publisher, logger)
	cancelAppointmentUC := ucAppointment.NewCancelAppointment(appointmentRepo, deps.Audit, deps.Publisher, logger)
	completeAppointmentUC := ucAppointment.NewCompleteAppointment(appointmentRepo, deps.Audit, deps.Publisher, logger)

	listByDateUC := ucAppointment.NewListAppointmentsByDate(appointmentRepo)
	listByMonthUC := ucAppointment.NewListAppointmentsByMonth(appointmentRepo)
	listClientUC := ucAppointment.NewListClientAppointments(appointmentRepo)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg, logger)
	if deps.EmailCheck != nil {
		authHandler.WithEmailCheck(deps.EmailCheck)
	}
	meHandler := handlers.NewMeHandler(db, listClientUC, cancelAppointmentUC, logger)
	publicHandler := handlers.NewPublicHandler(db, availabilityUC, suggestUC, logger)

	appointmentHandler := handlers.NewAppointmentHandler(
		createAppointmentUC,
		cancelAppointmentUC,
		completeAppointmentUC,
		listByDateUC,
		listByMonthUC,
		logger,
	)

	businessHandler := handlers.NewBusinessHandler(db, deps.Audit, deps.Store, logger)
	serviceHandler := handlers.NewServiceHandler(db, deps.Audit, logger)
	hoursHandler := handlers.NewOperatingHoursHandler(db, deps.Audit, logger)
	clientHandler := handlers.NewClientHandler(db, logger)
	auditLogsHandler := handlers.NewAuditLogsHandler(db, logger)
	adminHandler := handlers.NewAdminHandler(db, deps.Audit, logger)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")

	// ------------------------------
	// AUTH
	// ------------------------------
	auth := api.Group("/auth", publicLimit)
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	// ------------------------------
	// PUBLIC
	// ------------------------------
	public := api.Group("/public", publicLimit)
	{
		public.GET("/businesses", publicHandler.ListBusinesses)
		public.GET("/businesses/:businessId", publicHandler.GetBusiness)
		public.GET("/businesses/:businessId/services", publicHandler.ListServices)
		public.GET("/businesses/:businessId/availability", publicHandler.Availability)
		public.GET("/businesses/:businessId/suggestions", publicHandler.Suggestions)
	}

	secured := api.Group("/", middleware.AuthMiddleware(cfg))

	// ------------------------------
	// ME
	// ------------------------------
	{
		secured.GET("/me", meHandler.GetMe)
		secured.GET("/me/appointments", meHandler.Appointments)
		secured.PATCH("/me/appointments/:id/cancel", meHandler.CancelAppointment)
	}

	// ------------------------------
	// BOOKING
	// ------------------------------
	booking := secured.Group("/businesses/:businessId", bookingLimit, middleware.RequireBooker(checker, logger))
	{
		booking.POST("/appointments", appointmentHandler.Create)
	}

	// ------------------------------
	// BUSINESS MANAGEMENT
	// ------------------------------
	manage := secured.Group("/businesses/:businessId", middleware.RequireBusinessManager(checker, logger))
	{
		manage.GET("", businessHandler.Get)
		manage.PATCH("", businessHandler.Update)
		manage.PUT("/logo", businessHandler.UploadLogo)

		manage.GET("/operating-hours", hoursHandler.Get)
		manage.PUT("/operating-hours", hoursHandler.Update)

		manage.GET("/services", serviceHandler.List)
		manage.POST("/services", serviceHandler.Create)
		manage.PATCH("/services/:serviceId", serviceHandler.Update)

		manage.GET("/appointments", appointmentHandler.ListByDate)
		manage.GET("/appointments/month", appointmentHandler.ListByMonth)
		manage.PATCH("/appointments/:id/cancel", appointmentHandler.Cancel)
		manage.PATCH("/appointments/:id/complete", appointmentHandler.Complete)

		manage.GET("/clients", clientHandler.List)
		manage.GET("/audit-logs", auditLogsHandler.List)
	}

	// ------------------------------
	// SYSTEM ADMIN
	// ------------------------------
	admin := secured.Group("/admin", middleware.RequireSystemAdmin(checker, logger))
	{
		admin.GET("/businesses", adminHandler.List)
		admin.POST("/businesses", adminHandler.Provision)
		admin.PATCH("/businesses/:businessId/active", adminHandler.SetActive)
	}
}
