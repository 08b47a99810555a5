package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"lyrnios-backend/internal/model"
	"lyrnios-backend/internal/pkg/jwtutil"
	"lyrnios-backend/internal/transport/http/response"
)

const (
	ContextUserIDKey = "user_id"
	ContextEmailKey  = "email"
	ContextUserKey   = "user"
)

// UserLookup resolves the token subject to a stored user; a nil user means
// the account no longer exists.
type UserLookup interface {
	GetByID(ctx context.Context, id uint) (*model.User, error)
}

// AuthJWT verifies the bearer token and, when users is set, rejects tokens
// whose user is no longer stored.
func AuthJWT(secret string, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "missing authorization header")
			c.Abort()
			return
		}

		const prefix = "Bearer "
		if !strings.HasPrefix(authHeader, prefix) {
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid authorization scheme")
			c.Abort()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
		claims, err := jwtutil.ParseToken(secret, token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		if users != nil {
			user, err := users.GetByID(c.Request.Context(), claims.UserID)
			if err != nil {
				_ = c.Error(err)
				response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "resolve user failed")
				c.Abort()
				return
			}
			if user == nil {
				response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found")
				c.Abort()
				return
			}
			c.Set(ContextUserKey, user)
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextEmailKey, claims.Email)
		c.Next()
	}
}

func UserID(c *gin.Context) (uint, bool) {
	userIDAny, exists := c.Get(ContextUserIDKey)
	if !exists {
		return 0, false
	}
	userID, ok := userIDAny.(uint)
	return userID, ok && userID != 0
}
