package app

import (
	"go-salary/internal/config"
	"go-salary/internal/messaging/kafka"
	"go-salary/internal/salary"
	"go-salary/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// Migrate creates or updates the tables the API writes to.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&salary.Salary{}, &kafka.OutboxRecord{})
}

// BuildApp connects infrastructure and mounts every module on router. The
// returned func releases the connections.
func BuildApp(router *gin.Engine, cfg *config.Config) (func(), error) {
	logger := zap.L().Named("app")

	// 1. Setup Infrastructure
	gormDB, err := connection.ConnectGORMWithRetry(postgresConfig(cfg), cfg.Database.MaxRetries)
	if err != nil {
		return nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	logger.Info("database connection established")

	if cfg.Database.AutoMigrate {
		if err := Migrate(gormDB); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		logger.Info("database schema migrated")
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = connection.ConnectRedisWithRetry(cfg.Redis.Addr, cfg.Database.MaxRetries)
		if err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		logger.Info("redis connection established")
	} else {
		logger.Warn("REDIS_ADDR not set, list cache and idempotency disabled")
	}

	// 2. Register Modules & Routes
	registerModules(router, Modules{
		GormDB:    gormDB,
		SQLDB:     sqlDB,
		Redis:     rdb,
		Registry:  prometheus.NewRegistry(),
		APIPrefix: cfg.Server.APIPrefix,
		JWTSecret: cfg.JWT.Secret,
		Outbox:    cfg.Kafka.OutboxEnabled,
		Salary: salary.RouteConfig{
			WriteRateLimit: rate.Limit(cfg.RateLimit.RPS),
			WriteBurst:     cfg.RateLimit.Burst,
		},
		Logger: zap.L(),
	})

	cleanup := func() {
		if rdb != nil {
			_ = rdb.Close()
		}
		_ = sqlDB.Close()
	}
	return cleanup, nil
}

func postgresConfig(cfg *config.Config) connection.PostgresConfig {
	return connection.PostgresConfig{
		Host:     cfg.Database.Host,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Name:     cfg.Database.Name,
		Port:     cfg.Database.Port,
		SSLMode:  cfg.Database.SSLMode,
	}
}
