package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"go-salary/internal/shared/apperror"
	"go-salary/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const ContextClaims = "claims"

func unauthorized(c *gin.Context, message string) {
	response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, message)
	c.Abort()
}

// AuthMiddleware validates an HMAC-signed bearer token (header or
// access_token cookie) and stores its claims and subject on the context.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found {
			tokenString = ""
		}

		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}

		if tokenString == "" {
			unauthorized(c, "Token not found")
			return
		}

		if secret == "" {
			unauthorized(c, apperror.ErrUnauthorized.Message)
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			message := "Invalid token"
			if err != nil && strings.Contains(err.Error(), "expired") {
				message = "Token expired"
			}
			unauthorized(c, message)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			unauthorized(c, "Invalid token claims")
			return
		}

		userID, _ := claims.GetSubject()
		if userID == "" {
			userID, _ = claims["user_id"].(string)
		}
		if userID == "" {
			unauthorized(c, "User ID not found in token")
			return
		}

		c.Set("user_id", userID)
		c.Set(ContextClaims, map[string]any(claims))

		c.Next()
	}
}
