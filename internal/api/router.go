// Package api exposes the contact service as a REST API on gin.
package api

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/VictoriaMetrics/metrics"
	"github.com/gin-gonic/gin"
	"gitlab.com/dirk.krummacker/favorite-contacts/internal/service"
)

// Options configure the router.
type Options struct {
	// Logger receives request logs and storage errors. Nil discards everything.
	Logger *slog.Logger
	// RequestLogging enables one log line per request.
	RequestLogging bool
	// Metrics receives the request metrics. Nil creates a private set.
	Metrics *metrics.Set
}

// SetupHttpRouter initializes the REST API router and registers all endpoints.
func SetupHttpRouter(svc *service.Service, options Options) *gin.Engine {
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	set := options.Metrics
	if set == nil {
		set = metrics.NewSet()
	}

	router := gin.New()
	router.Use(gin.Recovery(), meterRequests(set))
	if options.RequestLogging {
		router.Use(logRequests(logger))
	}

	router.GET("/liveness", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/readiness", func(c *gin.Context) {
		if err := svc.Ping(c.Request.Context()); err != nil {
			logger.Warn("not ready", "err", err)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"message": "storage unavailable"})
			return
		}
		c.Status(http.StatusOK)
	})
	router.GET("/metrics", func(c *gin.Context) {
		writeMetrics(c.Writer, set)
	})

	h := &handlers{svc: svc, logger: logger}
	router.GET("/contacts", h.findContacts)
	router.POST("/contacts", h.createContact)
	router.GET("/contacts/:id", h.findContactByID)
	router.PUT("/contacts/:id", h.updateContactByID)
	router.PATCH("/contacts/:id/favorite", h.updateFavoriteByID)
	router.DELETE("/contacts/:id", h.deleteContactByID)
	return router
}

func writeMetrics(w io.Writer, set *metrics.Set) {
	set.WritePrometheus(w)
	metrics.WriteProcessMetrics(w)
}
