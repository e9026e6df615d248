package user

import (
	"net/http"

	"go-salary/internal/middleware"
	"go-salary/internal/shared/apperror"
	"go-salary/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	logger *zap.Logger
}

func NewHandler(logger ...*zap.Logger) *Handler {
	l := zap.L().Named("user.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("user.handler")
	}
	return &Handler{logger: l}
}

// Me echoes the identity carried by the bearer token.
func (h *Handler) Me(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, apperror.ErrUnauthorized.Message)
		return
	}

	claims, _ := c.Get(middleware.ContextClaims)
	claimMap, _ := claims.(map[string]any)

	h.logger.Debug("current user requested", zap.String("user_id", userID))
	response.Success(c, http.StatusOK, MeResponse{
		ID:     userID,
		Claims: claimMap,
	})
}
