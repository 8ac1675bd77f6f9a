package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/merelformation/reservation-system/internal/api/handler"
	"github.com/merelformation/reservation-system/internal/api/middleware"
	"github.com/merelformation/reservation-system/internal/core/domain"
	"github.com/merelformation/reservation-system/internal/core/ports"
)

// Dependencies carries everything the router needs. Services are built in
// main so the notification queue and template catalog share one lifecycle.
type Dependencies struct {
	Reservations     ports.ReservationService
	Auth             ports.AuthService
	Retention        ports.RetentionService
	Templates        ports.TemplateRepository
	NotificationLogs ports.NotificationLogRepository

	Mongo     *mongo.Database
	Redis     *redis.Client
	JWTSecret string
	Logger    zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("reservation"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	reservationHandler := handler.NewReservationHandler(deps.Reservations)
	rentalHandler := handler.NewRentalHandler(deps.Reservations)
	retentionHandler := handler.NewRetentionHandler(deps.Retention)
	templateHandler := handler.NewTemplateHandler(deps.Templates)
	notificationHandler := handler.NewNotificationHandler(deps.Reservations, deps.NotificationLogs)

	authMW := middleware.Auth(deps.JWTSecret)
	adminOnly := middleware.RBAC(domain.RoleAdmin)
	staff := middleware.RBAC(domain.RoleAdmin, domain.RoleInstructor)
	anyActor := middleware.RBAC(domain.RoleAdmin, domain.RoleInstructor, domain.RoleStudent)

	// --- Public surface ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.GET("/track/:token", rentalHandler.Track)

	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Mongo, deps.Redis)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	// --- Reservations ---
	v1 := e.Group("/v1", authMW)

	reservations := v1.Group("/reservations")
	reservations.POST("", reservationHandler.Create, middleware.RBAC(domain.RoleAdmin, domain.RoleStudent))
	reservations.GET("", reservationHandler.List, anyActor)
	reservations.GET("/statuses", reservationHandler.Statuses, staff)
	reservations.GET("/:id", reservationHandler.Get, anyActor)
	reservations.PATCH("/:id/status", reservationHandler.ChangeStatus, staff)
	reservations.GET("/:id/transitions", reservationHandler.Transitions, staff)
	reservations.GET("/:id/notifications", notificationHandler.ListByReservation, staff)

	// --- Rentals ---
	v1.PUT("/rentals/:id/vehicle", rentalHandler.AssignVehicle, adminOnly)

	// --- Templates ---
	v1.GET("/templates", templateHandler.List, adminOnly)
	v1.PUT("/templates/:identifier", templateHandler.Upsert, adminOnly)

	// --- User retention ---
	users := v1.Group("/users", adminOnly)
	users.POST("/:id/delete", retentionHandler.SoftDelete)
	users.POST("/:id/restore", retentionHandler.Restore)
	users.POST("/:id/delete/permanent", retentionHandler.ForceDelete)
	users.GET("/:id/retention", retentionHandler.Status)

	v1.POST("/retention/sweep", retentionHandler.Sweep, adminOnly)

	return e
}
