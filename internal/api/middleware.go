package api

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/gin-gonic/gin"
)

// route returns the registered path of the request, which keeps the metric labels bounded.
func route(c *gin.Context) string {
	if path := c.FullPath(); path != "" {
		return path
	}
	return "unmatched"
}

// meterRequests counts the requests and records their durations per method, route and status.
func meterRequests(set *metrics.Set) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		labels := fmt.Sprintf(`{method=%q,path=%q,status="%d"}`, c.Request.Method, route(c), c.Writer.Status())
		set.GetOrCreateCounter("http_requests_total" + labels).Inc()
		set.GetOrCreateHistogram("http_request_duration_seconds" + labels).UpdateDuration(start)
	}
}

// logRequests logs every request after it has been answered.
func logRequests(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.LogAttrs(c.Request.Context(), slog.LevelInfo,
			c.Request.Method+" "+route(c)+" "+c.Request.Proto,
			slog.String("from", c.ClientIP()),
			slog.String("ua", c.Request.UserAgent()),
			slog.String("status", strconv.Itoa(c.Writer.Status())),
			slog.Duration("dur", time.Since(start)),
		)
	}
}
