package controllers

import (
	"CourseLoom/internal/app_errors"
	"CourseLoom/pkg/logger"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	ClientIDCtx   = "client_id"
	ClientRoleCtx = "client_role"
)

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if parts := strings.Split(authHeader, "Bearer "); len(parts) == 2 {
		return parts[1]
	}
	return ""
}

// AuthMiddleware requires a valid access token and stores the caller's id and
// role in the request context.
func (h *AuthHandler) AuthMiddleware(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	parsedToken, err := h.AuthService.ParseToken(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, app_errors.ErrTokenExpired) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": app_errors.ErrTokenExpired.Error()})
			return
		}
		h.log.Info("failed to parse token", "err", err.Error())
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "cant parse token"})
		return
	}
	if !h.AuthService.IsAccessToken(c.Request.Context(), parsedToken) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not access token"})
		return
	}

	userID, role, err := h.AuthService.AccessClaims(c.Request.Context(), token)
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	c.Set(ClientIDCtx, userID)
	c.Set(ClientRoleCtx, role)
	c.Next()
}

// OptionalAuthMiddleware resolves claims when a token is present and lets the
// request through anonymously otherwise. An invalid token is still a 401.
func (h *AuthHandler) OptionalAuthMiddleware(c *gin.Context) {
	if bearerToken(c) == "" {
		c.Next()
		return
	}
	h.AuthMiddleware(c)
}

func RoleMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleVal, exists := c.Get(ClientRoleCtx)
		if !exists {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "role not found"})
			return
		}
		role, ok := roleVal.(string)
		if !ok {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		for _, allowed := range allowedRoles {
			if role == allowed {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
	}
}

func LoggingMiddleware(logger logger.Log) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		path := c.Request.URL.Path
		if rawQuery := c.Request.URL.RawQuery; rawQuery != "" {
			path = fmt.Sprintf("%s?%s", path, rawQuery)
		}
		status := c.Writer.Status()

		logger.Info(fmt.Sprintf("%s %s", c.Request.Method, path),
			"status", status,
			"latency", latency,
			"client_ip", c.ClientIP(),
		)

		for _, ginErr := range c.Errors {
			logger.ErrorErr("HTTP request error", ginErr.Err,
				"status", status,
				"method", c.Request.Method,
				"path", path,
			)
		}
	}
}
