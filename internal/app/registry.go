package app

import (
	"database/sql"
	"net/http"

	"go-salary/internal/messaging/kafka"
	"go-salary/internal/middleware"
	"go-salary/internal/salary"
	"go-salary/internal/shared/apperror"
	"go-salary/internal/shared/response"
	"go-salary/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Modules struct {
	GormDB    *gorm.DB
	SQLDB     *sql.DB
	Redis     *redis.Client // nil disables cache and idempotency
	Registry  *prometheus.Registry
	APIPrefix string
	JWTSecret string
	Outbox    bool
	Salary    salary.RouteConfig
	Logger    *zap.Logger
}

func registerModules(router *gin.Engine, m Modules) {
	logger := m.Logger
	if logger == nil {
		logger = zap.L()
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(m.SQLDB, "salary"),
	)
	httpMetrics := middleware.NewHTTPMetrics(m.Registry)

	router.Use(
		middleware.RequestID(),
		middleware.ContextLogger(logger),
		middleware.Metrics(httpMetrics),
	)

	router.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, apperror.CodeNotFound, apperror.ErrNotFound.Message)
	})

	router.GET("/health", healthHandler(m.SQLDB))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))

	// --- Repositories ---
	salaryRepo := salary.NewRepository(m.GormDB)

	// --- Services ---
	var salaryService salary.Service
	if m.Outbox {
		salaryService = salary.NewServiceWithOutbox(m.SQLDB, salaryRepo, kafka.NewOutboxRepository(m.SQLDB), m.Redis, logger)
	} else {
		salaryService = salary.NewService(m.SQLDB, salaryRepo, m.Redis, logger)
	}

	// --- Handlers ---
	salaryHandler := salary.NewHandler(salaryService, logger)
	userHandler := user.NewHandler(logger)

	// --- Routes Registration ---
	api := router.Group(m.APIPrefix)
	{
		salary.RegisterRoutes(api, salaryHandler, m.Redis, m.Salary)
		user.RegisterRoutes(api, userHandler, m.JWTSecret)
	}
}

func healthHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			response.Error(c, http.StatusServiceUnavailable, apperror.CodeServiceUnavailable, "database unavailable")
			return
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	}
}
