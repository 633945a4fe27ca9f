package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether the database answers. *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db        Pinger
	startTime time.Time
	version   string
	timeout   time.Duration
}

func NewHealthHandler(db Pinger, startTime time.Time, version string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		startTime: startTime,
		version:   version,
		timeout:   2 * time.Second,
	}
}

func (h *HealthHandler) RegisterRoutes(e *gin.Engine) {
	e.GET("/health", h.Health)
	e.GET("/ready", h.Ready)
}

type HealthResponse struct {
	Success   bool   `json:"success" example:"true"`
	Status    string `json:"status" example:"OK"`
	Database  string `json:"database" example:"connected"`
	Timestamp string `json:"timestamp" example:"2024-01-01T00:00:00Z"`
}

type ReadyResponse struct {
	Success  bool   `json:"success" example:"true"`
	Status   string `json:"status" example:"ready"`
	Version  string `json:"version" example:"1.0.0"`
	Uptime   int64  `json:"uptime" example:"42"`
	Database string `json:"database" example:"connected"`
	Error    string `json:"error,omitempty"`
}

func (h *HealthHandler) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	return h.db.Ping(ctx)
}

func (h *HealthHandler) Health(c *gin.Context) {
	database := "connected"
	if err := h.ping(c.Request.Context()); err != nil {
		database = "disconnected"
	}

	c.JSON(http.StatusOK, HealthResponse{
		Success:   true,
		Status:    "OK",
		Database:  database,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (h *HealthHandler) Ready(c *gin.Context) {
	uptime := int64(time.Since(h.startTime).Seconds())

	if err := h.ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, ReadyResponse{
			Success:  false,
			Status:   "unavailable",
			Version:  h.version,
			Uptime:   uptime,
			Database: "disconnected",
			Error:    err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, ReadyResponse{
		Success:  true,
		Status:   "ready",
		Version:  h.version,
		Uptime:   uptime,
		Database: "connected",
	})
}
