package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/taskhive/taskhive/core"
	"github.com/taskhive/taskhive/service"
)

// identityKey is where the middleware stores the authenticated identity in
// the gin context.
const identityKey = "identity"

// unauthorizedMessage is the single message returned for every rejected
// token, so responses don't reveal which check failed.
const unauthorizedMessage = "could not validate credentials"

// AuthMiddleware guards protected routes. Every rejection is a uniform 401;
// only an unreachable revocation store is additionally logged at error level
// so fail-closed incidents stay diagnosable.
func AuthMiddleware(auth *service.AuthService, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": unauthorizedMessage})
			return
		}

		identity, err := auth.Authenticate(c.Request.Context(), strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			if errors.Is(err, core.ErrStoreUnavailable) {
				log.Error("revocation store unavailable, rejecting request", "error", err)
			}
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": unauthorizedMessage})
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// identityFrom returns the identity the middleware stored.
func identityFrom(c *gin.Context) (core.Identity, bool) {
	value, ok := c.Get(identityKey)
	if !ok {
		return core.Identity{}, false
	}
	identity, ok := value.(core.Identity)
	return identity, ok
}
