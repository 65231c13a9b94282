package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"iotplatform-backend/internal/devices"
	"iotplatform-backend/internal/documents"
	"iotplatform-backend/internal/generation"
	"iotplatform-backend/internal/maintenance"
	"iotplatform-backend/internal/reconcile"
	"iotplatform-backend/internal/rules"
	"iotplatform-backend/internal/safety"
	"iotplatform-backend/internal/shared/config"
	"iotplatform-backend/internal/shared/metrics"
	"iotplatform-backend/internal/shared/server/middleware"
	"iotplatform-backend/internal/shared/server/respond"
	"iotplatform-backend/internal/users"
)

// RouterDeps carries the handlers the router mounts. Nil handlers are
// skipped, which tests use to mount a subset.
type RouterDeps struct {
	Config config.Config

	DeviceHandler      *devices.Handler
	UserHandler        *users.Handler
	DocumentHandler    *documents.Handler
	GenerationHandler  *generation.Handler
	ReconcileHandler   *reconcile.Handler
	MaintenanceHandler *maintenance.Handler
	RulesHandler       *rules.Handler
	SafetyHandler      *safety.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	api.GET("/metrics", metrics.Handler())

	if deps.DeviceHandler != nil {
		deps.DeviceHandler.RegisterRoutes(api)
	}
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(api)
	}
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(api)
	}
	if deps.GenerationHandler != nil {
		deps.GenerationHandler.RegisterRoutes(api)
	}
	if deps.ReconcileHandler != nil {
		deps.ReconcileHandler.RegisterRoutes(api)
	}
	if deps.MaintenanceHandler != nil {
		deps.MaintenanceHandler.RegisterRoutes(api)
	}
	if deps.RulesHandler != nil {
		deps.RulesHandler.RegisterRoutes(api)
	}
	if deps.SafetyHandler != nil {
		deps.SafetyHandler.RegisterRoutes(api)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
