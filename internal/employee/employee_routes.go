package employee

import (
	"go-employee/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type RouteConfig struct {
	Logger    *zap.Logger
	Redis     *redis.Client
	RateLimit rate.Limit
	RateBurst int
}

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, cfg RouteConfig) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	employees := r.Group("/employees")
	employees.Use(middleware.ContextLogger(logger))
	if cfg.RateLimit > 0 {
		employees.Use(middleware.RateLimitByIP(cfg.RateLimit, cfg.RateBurst))
	}
	{
		create := []gin.HandlerFunc{}
		if cfg.Redis != nil {
			create = append(create, middleware.Idempotency(cfg.Redis, logger))
		}
		employees.POST("", append(create, handler.Create)...)

		// Static segments are registered alongside /:id; gin gives them priority.
		employees.GET("/avg/salary", handler.AverageSalary)
		employees.GET("/search/skills", handler.SearchBySkills)
		employees.GET("/department/:department", handler.ListByDepartment)

		employees.GET("/:id", handler.GetByID)
		employees.PUT("/:id", handler.Update)
		employees.DELETE("/:id", handler.Delete)
	}
}
