package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/minierp/console-gateway/internal/api/handler"
	"github.com/minierp/console-gateway/internal/api/middleware"
	"github.com/minierp/console-gateway/internal/core/domain"
	"github.com/minierp/console-gateway/internal/core/ports"
	"github.com/minierp/console-gateway/internal/core/service"
	"github.com/minierp/console-gateway/internal/infrastructure/backend"
)

// Deps carries the wired services the router exposes over HTTP. They are
// constructed in main so their lifecycles outlive any one request.
type Deps struct {
	Verifier ports.AuthService
	Sessions ports.SessionStore
	Backend  *backend.Client
	Monitor  *service.InactivityMonitor
	Audit    ports.AuditRecorder
	Mongo    *mongo.Database
	Redis    *redis.Client
	Log      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("console"))

	// Session resolution runs on every request; the policy engine decides
	// pass/redirect before any handler renders.
	e.Use(middleware.Session(deps.Sessions))
	e.Use(middleware.Policy(deps.Sessions, deps.Monitor, deps.Audit))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Verifier, deps.Sessions, deps.Backend, deps.Monitor, deps.Audit)
	sessionHandler := handler.NewSessionHandler(deps.Sessions, deps.Monitor, deps.Audit)
	proxyHandler := handler.NewProxyHandler(deps.Backend, deps.Sessions, deps.Monitor, deps.Audit)
	viewHandler := handler.NewViewHandler()

	// --- Public surfaces ---
	e.GET("/", viewHandler.Home)
	e.GET(domain.PathStorefront, viewHandler.Storefront)
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Auth-only routes ---
	e.GET(domain.PathLogin, authHandler.LoginPage)
	e.POST(domain.PathLogin, authHandler.Login)
	e.POST(domain.PathRegister, authHandler.Register)

	// --- Session lifecycle ---
	e.POST("/logout", authHandler.Logout)
	e.POST("/session/activity", sessionHandler.Activity)
	e.POST("/session/close", sessionHandler.Close)

	// --- Authenticated proxy to the ERP backend ---
	e.Any("/api/*", proxyHandler.Relay)

	// --- Protected views, gated per-view on top of the global policy ---
	staff := []string{domain.RoleAdmin, domain.RoleManager, domain.RoleStaff}
	managers := []string{domain.RoleAdmin, domain.RoleManager}

	prot := e.Group("/protected")
	prot.GET("/dashboard", viewHandler.Render("dashboard"), middleware.Guard(staff...))
	prot.GET("/products", viewHandler.Render("products"), middleware.Guard(staff...))
	prot.GET("/orders", viewHandler.Render("orders"), middleware.Guard(staff...))
	prot.GET("/customers", viewHandler.Render("customers"), middleware.Guard(staff...))
	prot.GET("/stocks", viewHandler.Render("stocks"), middleware.Guard(staff...))
	prot.GET("/attendance", viewHandler.Render("attendance"), middleware.Guard(staff...))
	prot.GET("/blogs", viewHandler.Render("blogs"), middleware.Guard(staff...))
	prot.GET("/users", viewHandler.Render("users"), middleware.Guard(managers...))
	prot.GET("/employees", viewHandler.Render("employees"), middleware.Guard(managers...))
	prot.GET("/reports", viewHandler.Render("reports"), middleware.Guard(managers...))
	prot.GET("/about-us", viewHandler.Render("about-us"), middleware.Guard(domain.RoleAdmin))

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Mongo, deps.Redis, deps.Backend)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	return e
}
