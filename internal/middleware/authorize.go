package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"storefront/internal/models"
)

// UserGetter is the slice of the user repository the role check needs.
type UserGetter interface {
	GetByID(ctx context.Context, id string) (models.User, error)
}

// RequireAdmin re-reads the caller's role from storage on every request and
// admits administrators only. The role in the stored profile is never
// trusted; the database is the sole authority. Runs after Authenticate.
func RequireAdmin(users UserGetter, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			log.Error().Str("path", c.Request.URL.Path).Msg("admin check without identity")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "no identity on request",
				"message": "Error in admin middleware",
			})
			return
		}

		user, err := users.GetByID(c.Request.Context(), identity.Subject)
		if err != nil {
			log.Error().Err(err).Str("user_id", identity.Subject).Msg("admin lookup failed")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   err.Error(),
				"message": "Error in admin middleware",
			})
			return
		}

		if user.Role != models.RoleAdministrator {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "UnAuthorized Access",
			})
			return
		}

		c.Next()
	}
}
