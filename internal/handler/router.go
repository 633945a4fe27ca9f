package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/snnyvrz/shelfshare-books/internal/docs"
	"github.com/snnyvrz/shelfshare-books/internal/metrics"
	"github.com/snnyvrz/shelfshare-books/internal/repository"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterOptions struct {
	Books      repository.BookRepository
	Health     *HealthHandler
	Metrics    *metrics.HTTP
	Logger     *slog.Logger
	Version    string
	Production bool
}

func NewRouter(opts RouterOptions) *gin.Engine {
	e := gin.New()

	_ = e.SetTrustedProxies([]string{
		"127.0.0.1",
		"::1",
	})

	e.Use(
		Recovery(opts.Logger, opts.Production),
		RequestID(),
		RequestLogger(opts.Logger),
	)
	if opts.Metrics != nil {
		e.Use(opts.Metrics.Middleware())
	}
	e.Use(ErrorHandler(opts.Logger, opts.Production))

	e.GET("/", serviceInfo(opts.Version))

	if opts.Health != nil {
		opts.Health.RegisterRoutes(e)
	}
	if opts.Metrics != nil {
		e.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	docs.SwaggerInfo.BasePath = "/api"
	docs.SwaggerInfo.Version = opts.Version
	e.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := e.Group("/api")
	{
		bookHandler := NewBookHandler(opts.Books)
		bookHandler.RegisterRoutes(api)
	}

	e.NoRoute(routeNotFound)
	e.NoMethod(routeNotFound)

	return e
}

type ServiceInfoResponse struct {
	Success   bool              `json:"success" example:"true"`
	Message   string            `json:"message" example:"Books API"`
	Version   string            `json:"version" example:"1.0.0"`
	Endpoints map[string]string `json:"endpoints"`
}

func serviceInfo(version string) gin.HandlerFunc {
	body := ServiceInfoResponse{
		Success: true,
		Message: "Books API",
		Version: version,
		Endpoints: map[string]string{
			"health":  "/health",
			"ready":   "/ready",
			"books":   "/api/books",
			"search":  "/api/books/search?q=",
			"docs":    "/swagger/index.html",
			"metrics": "/metrics",
		},
	}

	return func(c *gin.Context) {
		c.JSON(http.StatusOK, body)
	}
}
