package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"sigma/auth/internal/domain"
	"sigma/auth/internal/repository"
)

// Context keys set by Auth for downstream handlers.
const (
	CtxAccessClaims = "access_claims"
	CtxCurrentUser  = "current_user"
)

func Auth(tokens domain.TokenService, users *repository.UserRepository, sessions *repository.SessionRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"code": "INVALID_TOKEN", "message": "Missing bearer token"}})
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := tokens.VerifyAccessToken(tokenStr)
		if err != nil {
			var domainErr *domain.DomainError
			code, message := "INVALID_TOKEN", "Invalid token"
			if errors.As(err, &domainErr) {
				code, message = domainErr.Code, domainErr.Message
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"code": code, "message": message}})
			return
		}

		session, err := sessions.FindByID(c.Request.Context(), claims.SessionID)
		if err != nil || session == nil || session.UserID != claims.UserID {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"code": "SESSION_NOT_FOUND", "message": "Session not found"}})
			return
		}
		if !session.IsActive() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"code": "SESSION_EXPIRED", "message": "Session has expired"}})
			return
		}

		user, err := users.FindByID(c.Request.Context(), claims.UserID)
		if err != nil || user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"code": "USER_NOT_FOUND", "message": "User not found"}})
			return
		}
		if !user.IsActive() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": gin.H{"code": "ACCOUNT_SUSPENDED", "message": "Account is not active"}})
			return
		}

		_ = sessions.Touch(c.Request.Context(), session.ID)

		c.Set(CtxAccessClaims, *claims)
		c.Set(CtxCurrentUser, user)

		c.Next()
	}
}
