package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/signage/internal/auth"
	"github.com/Nixie-Tech-LLC/signage/internal/model"
)

// DisplayAuthenticator resolves a display access token. *auth.TokenAuthenticator
// satisfies it.
type DisplayAuthenticator interface {
	Authenticate(ctx context.Context, token string) (model.Display, error)
}

// DisplayTokenMiddleware requires "Authorization: Bearer <accessToken>" and sets
// the resolved display in context. Every credential problem gets the same 401.
func DisplayTokenMiddleware(authenticator DisplayAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		display, err := authenticator.Authenticate(c.Request.Context(), token)
		if errors.Is(err, auth.ErrUnauthenticated) {
			log.Warn().Str("path", c.FullPath()).Msg("display request with invalid access token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if err != nil {
			log.Error().Err(err).Msg("display token lookup failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.Set(currentDisplayKey, &display)
		c.Next()
	}
}
