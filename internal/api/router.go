package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Rule27-Design/rule27-client/internal/api/handler"
	"github.com/Rule27-Design/rule27-client/internal/api/middleware"
	"github.com/Rule27-Design/rule27-client/internal/core/ports"
	"github.com/Rule27-Design/rule27-client/internal/core/service"
	"github.com/Rule27-Design/rule27-client/internal/infrastructure/config"
	mongodb "github.com/Rule27-Design/rule27-client/internal/infrastructure/db/mongo"
	redisdb "github.com/Rule27-Design/rule27-client/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// audit may be nil (no audit trail, e.g. in tests).
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, audit ports.AuditSink, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("portal"))

	// --- Dependencies ---
	profiles := mongodb.NewProfileRepository(db)
	sessions := redisdb.NewSessionSource(rdb, cfg.JWTSecret, log)
	once := redisdb.NewCallbackOnceGuard(rdb)

	classifier := service.NewClassifier(cfg.AdminPortalURL)
	bootstrapper := service.NewBootstrapper(profiles, log)
	authorizer := service.NewAuthorizerService(sessions, profiles, classifier, audit, log)
	callbacks := service.NewCallbackService(sessions, profiles, bootstrapper, classifier, once, audit, cfg.BootstrapDelay, log)

	callbackHandler := handler.NewCallbackHandler(callbacks, cfg.ErrorRedirectDelay)
	watchHandler := handler.NewWatchHandler(authorizer, sessions, log)
	profileHandler := handler.NewProfileHandler(profiles)

	sessionMiddleware := middleware.Session(sessions)
	guard := middleware.Guard(authorizer)

	// --- Auth routes ---
	e.GET("/auth/callback", callbackHandler.Callback, sessionMiddleware)
	e.GET("/auth/watch", watchHandler.Watch, sessionMiddleware)

	// --- Guarded profile routes ---
	e.GET("/me", profileHandler.Me, sessionMiddleware, guard)
	e.PUT("/setup-profile", profileHandler.SetupProfile, sessionMiddleware, guard)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
