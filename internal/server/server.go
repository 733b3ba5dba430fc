// Package server wires the HTTP routes of the site's API.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/LWashington6935/designerae-site/internal/config"
	"github.com/LWashington6935/designerae-site/internal/logging"
)

// RouteRegistrar is implemented by every handler group.
type RouteRegistrar interface {
	RegisterRoutes(r gin.IRouter)
}

// NewRouter builds the gin engine with recovery, tracing, request ids and access logs.
func NewRouter(serviceName string, logger *zap.Logger, handlers ...RouteRegistrar) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		otelgin.Middleware(serviceName),
		logging.RequestID(),
		logging.AccessLog(logger),
	)

	r.GET("/health", HealthCheck(serviceName))
	for _, h := range handlers {
		h.RegisterRoutes(r)
	}

	return r
}

// HealthCheck reports the service as healthy whenever it can answer.
func HealthCheck(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": serviceName,
		})
	}
}

// NewHTTPServer returns a server listening on cfg.Port with the configured timeouts.
func NewHTTPServer(cfg config.Server, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}
