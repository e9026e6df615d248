package salary

import (
	"go-salary/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

type RouteConfig struct {
	// Write limits apply per client IP to POST, PUT, PATCH and DELETE.
	WriteRateLimit rate.Limit
	WriteBurst     int
}

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rdb *redis.Client,
	cfg RouteConfig,
) {
	writeLimit := middleware.RateLimitByIP(cfg.WriteRateLimit, cfg.WriteBurst)

	salaries := r.Group("/salary")
	{
		salaries.GET("", handler.GetAll)
		salaries.GET("/:id", handler.GetByID)

		create := []gin.HandlerFunc{writeLimit}
		if rdb != nil {
			create = append(create, middleware.Idempotency(rdb))
		}
		salaries.POST("", append(create, handler.Create)...)

		salaries.PUT("/:id", writeLimit, handler.Update)
		salaries.PATCH("/:id", writeLimit, handler.Update)
		salaries.DELETE("/:id", writeLimit, handler.Delete)
	}
}
