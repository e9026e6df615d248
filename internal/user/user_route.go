package user

import (
	"go-salary/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, jwtSecret string) {
	r.GET("/user",
		middleware.AuthMiddleware(jwtSecret),
		middleware.RateLimitByUser(3, 10),
		handler.Me,
	)
}
