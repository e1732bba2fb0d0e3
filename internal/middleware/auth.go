package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"storefront/internal/security"
)

const identityKey = "auth_identity"

// Authenticate verifies the bearer credential on incoming requests and
// attaches the decoded identity to the request context. Missing, malformed,
// expired, and tampered credentials all fail closed with the same 401 so the
// response does not reveal which check failed.
func Authenticate(codec *security.TokenCodec, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("Authorization")
		if raw == "" {
			log.Debug().Str("path", c.Request.URL.Path).Msg("credential missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "authentication required"})
			return
		}

		// The storefront client sends the raw token; tolerate a Bearer
		// prefix from other callers.
		token := strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))

		identity, err := codec.Verify(token)
		if err != nil {
			log.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("credential rejected")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "authentication required"})
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// CurrentIdentity returns the identity attached by Authenticate, if any.
func CurrentIdentity(c *gin.Context) (security.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return security.Identity{}, false
	}
	identity, ok := v.(security.Identity)
	return identity, ok
}
