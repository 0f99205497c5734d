package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/xiebiao/bookreviews/internal/infrastructure/config"
	"github.com/xiebiao/bookreviews/internal/interface/http/dto"
	"github.com/xiebiao/bookreviews/internal/interface/http/handler"
	"github.com/xiebiao/bookreviews/internal/interface/http/middleware"
	"github.com/xiebiao/bookreviews/pkg/logger"
)

// Handlers groups the entity handlers mounted under /api/v1.
type Handlers struct {
	Authors *handler.AuthorHandler
	Books   *handler.BookHandler
	Users   *handler.UserHandler
	Reviews *handler.ReviewHandler
}

// New builds the engine:
//
//	/ping            health
//	/metrics         prometheus, when metrics.enabled
//	/swagger/*any    API docs
//	/api/v1/...      authors, books, users, reviews
func New(cfg *config.Config, sink *logger.Sink, h Handlers) *gin.Engine {
	switch cfg.Server.Mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.Server.Mode)
	default:
		gin.SetMode(gin.DebugMode)
	}
	dto.RegisterValidators()

	r := gin.New()
	r.Use(middleware.Recovery(), middleware.RequestID())
	if cfg.Tracing.Enabled {
		r.Use(middleware.Tracing(cfg.Tracing.ServiceName))
	}
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics())
	}
	r.Use(middleware.RequestLog(), middleware.ErrorReporter(sink))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "healthy"})
	})
	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	h.Authors.Register(v1)
	h.Books.Register(v1)
	h.Users.Register(v1)
	h.Reviews.Register(v1)

	return r
}
