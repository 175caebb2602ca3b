package app

import (
	"context"
	"go-employee/internal/config"
	"go-employee/internal/employee"
	"go-employee/internal/messaging/kafka"
	"go-employee/internal/shared/connection"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const disconnectTimeout = 5 * time.Second

// Infra holds the long lived clients opened at startup.
type Infra struct {
	Mongo *mongo.Client
	DB    *mongo.Database
	Redis *redis.Client
}

// Close releases every client. Safe to call on a partially built Infra.
func (i *Infra) Close() {
	if i == nil {
		return
	}
	if i.Redis != nil {
		if err := i.Redis.Close(); err != nil {
			zap.L().Warn("redis close failed", zap.Error(err))
		}
	}
	if i.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
		defer cancel()
		if err := i.Mongo.Disconnect(ctx); err != nil {
			zap.L().Warn("mongo disconnect failed", zap.Error(err))
		}
	}
}

func BuildApp(ctx context.Context, router *gin.Engine, cfg *config.Config) (*Infra, error) {
	logger := zap.L().Named("app")

	mongoClient, err := connection.ConnectMongoWithRetry(ctx, cfg.Mongo.URI, cfg.Mongo.ConnectRetries)
	if err != nil {
		return nil, err
	}
	infra := &Infra{
		Mongo: mongoClient,
		DB:    mongoClient.Database(cfg.Mongo.Database),
	}
	logger.Info("mongo connection established", zap.String("database", cfg.Mongo.Database))

	if err := employee.EnsureSchema(ctx, infra.DB, logger); err != nil {
		infra.Close()
		return nil, err
	}

	if cfg.Kafka.Broker != "" {
		if err := kafka.EnsureOutboxIndexes(ctx, infra.DB); err != nil {
			infra.Close()
			return nil, err
		}
	}

	if cfg.Redis.Addr != "" {
		rdb, err := connection.ConnectRedisWithRetry(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, 5)
		if err != nil {
			infra.Close()
			return nil, err
		}
		infra.Redis = rdb
		logger.Info("redis connection established", zap.String("addr", cfg.Redis.Addr))
	} else {
		logger.Info("redis disabled, caching and idempotency are off")
	}

	registerHealth(router, infra.Mongo)
	registerModules(router, infra, cfg, logger)

	return infra, nil
}
