package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/catattrans/umkm-api/internal/api/handler"
	"github.com/catattrans/umkm-api/internal/api/middleware"
	"github.com/catattrans/umkm-api/internal/core/domain"
	"github.com/catattrans/umkm-api/internal/core/ports"
	"github.com/catattrans/umkm-api/internal/core/routeguard"
	"github.com/catattrans/umkm-api/internal/core/session"
	"github.com/catattrans/umkm-api/internal/infrastructure/config"
)

// Services bundles the use-case layer the router wires handlers onto.
type Services struct {
	Auth         ports.AuthService
	Users        ports.UserService
	Transactions ports.TransactionService
	Dashboard    ports.DashboardService
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg *config.Config, cache *session.Cache, svc Services, db *mongo.Database, rdb *redis.Client, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("catattrans"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(cache, svc.Auth, cfg.TokenTTL, cfg.Session.SecureCookie)
	userHandler := handler.NewUserHandler(svc.Users)
	txHandler := handler.NewTransactionHandler(svc.Transactions)
	dashHandler := handler.NewDashboardHandler(svc.Dashboard)
	pageHandler := handler.NewPageHandler()

	authed := middleware.Auth(cache)
	adminOnly := middleware.RBAC(domain.RoleAdmin)
	anyRole := middleware.RBAC(domain.RoleAdmin, domain.RoleKasir)

	// --- Auth ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout)
	e.GET("/auth/me", authHandler.Me, authed)
	e.POST("/auth/change-password", authHandler.ChangePassword, authed)

	// --- Users (admin only) ---
	user := e.Group("/user", authed, adminOnly)
	user.GET("/get-all", userHandler.List)
	user.POST("/create", userHandler.Create)
	user.PATCH("/update", userHandler.Update)
	user.DELETE("/delete", userHandler.Delete)

	// --- Transactions ---
	tx := e.Group("/transaksi", authed, anyRole)
	tx.POST("/get-all", txHandler.List)
	tx.POST("/get-detail", txHandler.Detail)
	tx.POST("/create", txHandler.Create)
	tx.POST("/delete", txHandler.Delete)
	tx.GET("/download-excel", txHandler.DownloadExcel)

	// --- Dashboard (admin only) ---
	e.GET("/dashboard/get-all", dashHandler.Summary, authed, adminOnly)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Metrics ---
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Pages (route-guard semantics over HTTP) ---
	guarded := middleware.Guard(routeguard.New(nil), cache)
	e.GET("/", pageHandler.Shell, guarded)
	e.GET("/login", pageHandler.Shell, guarded)
	e.GET("/change-password", pageHandler.Shell, guarded)
	e.GET("/admin", pageHandler.Shell, guarded)
	e.GET("/admin/*", pageHandler.Shell, guarded)
	e.GET("/kasir", pageHandler.Shell, guarded)
	e.GET("/kasir/*", pageHandler.Shell, guarded)

	return e
}
