package middlewares

import (
	"net/http"

	"github.com/cactuscup/admin_backend/config"
	"github.com/cactuscup/admin_backend/models"
	"github.com/cactuscup/admin_backend/utils"
	"github.com/gin-gonic/gin"
)

func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Request.Header.Get("token")
		if token == "" {
			c.Next()
			return
		}
		var session *models.Session
		exists, err := config.GetRedisObject("Token:"+token, &session)
		if err != nil || !exists || session == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		ctx := utils.SetTokenInContext(c.Request.Context(), token)
		ctx = utils.SetUsernameInContext(ctx, session.Username)
		ctx = utils.SetUserIdInContext(ctx, session.UserID)
		ctx = utils.SetUserNameInContext(ctx, session.Name)
		ctx = utils.SetIsAdminInContext(ctx, session.IsAdmin)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireSession rejects requests that did not pass SessionMiddleware with a token.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		username, ok := utils.GetUsernameFromContext(c.Request.Context())
		if !ok || username == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin guards repair and refund actions.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		isAdmin, ok := utils.GetIsAdminFromContext(c.Request.Context())
		if !ok || !isAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
