package app

import (
	"go-employee/internal/config"
	"go-employee/internal/employee"
	"go-employee/internal/messaging/kafka"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func registerModules(
	router *gin.Engine,
	infra *Infra,
	cfg *config.Config,
	logger *zap.Logger,
) {
	// --- Repositories ---
	employeeRepo := employee.NewRepository(infra.DB)

	// --- Events ---
	var publisher employee.EventPublisher
	if cfg.Kafka.Broker != "" {
		publisher = employee.NewOutboxEventPublisher(kafka.NewOutboxRepository(infra.DB))
	} else {
		logger.Info("kafka disabled, employee events are not recorded")
	}

	// --- Services ---
	employeeService := employee.NewServiceWithEvents(employeeRepo, publisher, infra.Redis, cfg.Redis.CacheTTL, logger)

	// --- Handlers ---
	employeeHandler := employee.NewHandlerWithRedis(employeeService, infra.Redis, logger)

	// --- Routes Registration ---
	employee.RegisterRoutes(router.Group(""), employeeHandler, employee.RouteConfig{
		Logger:    logger,
		Redis:     infra.Redis,
		RateLimit: rate.Limit(cfg.App.RateLimit),
		RateBurst: cfg.App.RateBurst,
	})
}
