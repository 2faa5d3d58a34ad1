package handler

import (
	"errors"
	"net/http"
	"strings"

	"techstore-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const contextUserKey = "currentUser"

// extractToken pulls the session token from the `token` cookie first, falling
// back to the Authorization header. The cookie wins when both are present.
func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie("token"); err == nil && cookie != "" {
		return cookie
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	return strings.TrimPrefix(authHeader, "Bearer ")
}

// AuthMiddleware authenticates the request and stores the resolved user in
// the gin context. The password hash never leaves the handler layer.
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			zap.L().Warn("Request without session token", zap.String("path", c.FullPath()))
			tokenVerificationsTotal.WithLabelValues("failure").Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required. No token provided."})
			return
		}

		user, err := h.authService.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			tokenVerificationsTotal.WithLabelValues("failure").Inc()
			if errors.Is(err, models.ErrUserNotFound) {
				// Токен подписан нами, но субъект уже удален.
				c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "User not found. Authentication failed."})
				return
			}
			zap.L().Warn("Session token verification failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid or expired token. Please login again."})
			return
		}

		tokenVerificationsTotal.WithLabelValues("success").Inc()
		c.Set(contextUserKey, user)
		c.Next()
	}
}

// AdminMiddleware must run after AuthMiddleware.
func (h *Handler) AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil || user.Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse{Error: "Access denied. Admins only."})
			return
		}
		c.Next()
	}
}

// OwnershipMiddleware guards email-addressed mutations: the caller must be
// the account owner or an admin. Must run after AuthMiddleware.
func (h *Handler) OwnershipMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		email := c.Param("email")
		if user == nil || (user.Email != email && user.Role != models.RoleAdmin) {
			zap.L().Warn("Ownership check failed", zap.String("path", c.FullPath()), zap.String("target", email))
			c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse{Error: "Access denied. You can only modify your own account."})
			return
		}
		c.Next()
	}
}

// currentUser returns the authenticated user stored by AuthMiddleware.
func currentUser(c *gin.Context) *models.User {
	value, exists := c.Get(contextUserKey)
	if !exists {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}
