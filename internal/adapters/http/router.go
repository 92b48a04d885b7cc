package http

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	// Registers the generated OpenAPI document with swag.
	_ "github.com/globedrop/ngo-directory/docs"
	"github.com/globedrop/ngo-directory/internal/adapters/http/handlers"
	"github.com/globedrop/ngo-directory/internal/adapters/http/middleware"
	"github.com/globedrop/ngo-directory/internal/platform/config"
	"github.com/globedrop/ngo-directory/internal/platform/telemetry"
)

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	// Config is the loaded service configuration.
	Config *config.Config

	// HealthHandler handles /-/ endpoints and the service banner.
	HealthHandler *handlers.HealthHandler

	Organizations *handlers.OrganizationHandler
	Users         *handlers.UserHandler
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Middleware is applied in the following order (first to last):
//  1. Request ID and correlation ID
//  2. OpenTelemetry tracing and metrics
//  3. Logging (skips /-/ endpoints)
//  4. Security headers, CORS and gzip
//  5. Error handler, rendering whatever the chain below forwards
//  6. Recovery, turning panics into forwarded errors
//
// Gzip wraps the error handler so rendered errors are compressed too.
//
// Route groups:
//   - /-/ (internal): health, build info and metrics, no auth
//   - /api-docs: swagger UI
//   - {api.prefix}: organizations and users, with a request deadline
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	var errorOpts []ErrorHandlerOption
	if cfg.Config.App.IsProduction() {
		errorOpts = append(errorOpts, MaskInternalErrors())
	}

	engine.Use(
		middleware.RequestID(),
		middleware.CorrelationID(),
		telemetry.TracingMiddleware(cfg.Config.Telemetry.ServiceName),
		telemetry.Middleware(),
		middleware.Logging(),
		middleware.SecurityHeaders(cfg.Config.App.IsProduction()),
		middleware.CORS(cfg.Config.Server.AllowedOrigins),
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/-/"})),
		ErrorHandler(errorOpts...),
		middleware.Recovery(),
	)

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.Register(engine)
	}

	engine.GET("/api-docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := engine.Group(cfg.Config.API.Prefix)
	if cfg.Config.Server.RequestTimeout > 0 {
		api.Use(middleware.StoreDeadline(cfg.Config.Server.RequestTimeout))
	}

	var guard gin.HandlerFunc
	if cfg.Config.Auth.Enabled {
		guard = middleware.RequireRole(&cfg.Config.Auth, cfg.Config.Auth.AdminRole)
	}

	if cfg.Organizations != nil {
		cfg.Organizations.RegisterRoutes(api, guard)
	}

	if cfg.Users != nil {
		cfg.Users.RegisterRoutes(api, guard)
	}
}
