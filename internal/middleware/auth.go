package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"theater/internal/logger"
	"theater/internal/models"
)

const userKey = "user"

// Authenticator проверяет учетные данные из заголовка Authorization
type Authenticator interface {
	AuthenticateToken(ctx context.Context, token string) (*models.User, error)
	AuthenticateBasic(ctx context.Context, email, password string) (*models.User, error)
}

// Authenticate принимает Bearer JWT или HTTP Basic (email/пароль)
func Authenticate(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var (
			user *models.User
			err  error
		)

		header := c.GetHeader("Authorization")
		switch {
		case strings.HasPrefix(header, "Bearer "):
			user, err = auth.AuthenticateToken(ctx, strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")))
		case strings.HasPrefix(header, "Basic "):
			email, password, ok := c.Request.BasicAuth()
			if !ok {
				unauthorized(c, "Invalid basic header.")
				return
			}
			user, err = auth.AuthenticateBasic(ctx, email, password)
		default:
			unauthorized(c, "Authentication credentials were not provided.")
			return
		}

		if err != nil || user == nil {
			logger.WithContext(ctx).Debug("Authentication failed", "error", err)
			unauthorized(c, "Invalid credentials.")
			return
		}

		c.Set(userKey, user)
		c.Set("user_id", user.ID)
		c.Request = c.Request.WithContext(logger.ContextWithUserID(ctx, user.ID))

		c.Next()
	}
}

func unauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", `Basic realm="theater"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}

// RequireAdminForWrites пропускает чтение всем, а изменения только персоналу
func RequireAdminForWrites() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		user, ok := CurrentUser(c)
		if !ok || !user.IsStaff {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "You do not have permission to perform this action.",
			})
			return
		}

		c.Next()
	}
}

// CurrentUser возвращает пользователя, установленного Authenticate
func CurrentUser(c *gin.Context) (models.User, bool) {
	v, exists := c.Get(userKey)
	if !exists {
		return models.User{}, false
	}
	user, ok := v.(*models.User)
	if !ok || user == nil {
		return models.User{}, false
	}
	return *user, true
}
