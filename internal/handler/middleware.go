package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/snnyvrz/shelfshare-books/internal/apperror"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// abortWithError hands err to ErrorHandler and stops the chain.
func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"route", c.FullPath(),
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
			"request_id", c.GetString(requestIDKey),
		}

		switch {
		case status >= http.StatusInternalServerError:
			log.Error("request completed", attrs...)
		case status >= http.StatusBadRequest:
			log.Warn("request completed", attrs...)
		default:
			log.Info("request completed", attrs...)
		}
	}
}

// ErrorHandler renders the last error pushed by a handler as the error
// envelope. Internal details are hidden from clients in production.
func ErrorHandler(log *slog.Logger, production bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}

		appErr := apperror.From(last.Err, production)

		if appErr.Status >= http.StatusInternalServerError {
			log.Error("request failed",
				"status", appErr.Status,
				"error", last.Err,
				"path", c.Request.URL.Path,
				"request_id", c.GetString(requestIDKey),
			)
		}

		c.JSON(appErr.Status, appErr.Envelope())
	}
}

func Recovery(log *slog.Logger, production bool) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("panic recovered",
			"panic", recovered,
			"path", c.Request.URL.Path,
			"request_id", c.GetString(requestIDKey),
		)

		appErr := apperror.From(errors.New("unexpected panic while handling request"), production)
		c.AbortWithStatusJSON(http.StatusInternalServerError, appErr.Envelope())
	})
}

func routeNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, RouteNotFoundResponse{
		Success:   false,
		Error:     "Route not found",
		Path:      c.Request.URL.Path,
		Method:    c.Request.Method,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	})
}
