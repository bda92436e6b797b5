package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/narwhalmedia/wrongopinions/pkg/auth"
	"github.com/narwhalmedia/wrongopinions/pkg/errors"
)

const principalContextKey = "principal"

// PrincipalLoader resolves the account behind a validated token.
type PrincipalLoader interface {
	LoadPrincipal(ctx context.Context, id uuid.UUID) (*auth.Principal, error)
}

// RequireAuth validates the bearer token and attaches the principal to both
// the gin context and the request context.
func RequireAuth(jwtManager *auth.JWTManager, loader PrincipalLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			abort(c, errors.Unauthorized("Could not validate credentials"))
			return
		}

		claims, err := jwtManager.ValidateAccessToken(token)
		if err != nil {
			abort(c, errors.Wrap(errors.ErrorTypeUnauthorized, "Could not validate credentials", err))
			return
		}

		userID, _ := claims.UserID()
		principal, err := loader.LoadPrincipal(c.Request.Context(), userID)
		if err != nil {
			if errors.IsNotFound(err) {
				abort(c, errors.Unauthorized("Could not validate credentials"))
				return
			}
			abort(c, err)
			return
		}
		if !principal.IsActive {
			abort(c, errors.Unauthorized("User account is inactive"))
			return
		}

		c.Set(principalContextKey, principal)
		c.Request = c.Request.WithContext(auth.WithPrincipal(c.Request.Context(), principal))
		c.Next()
	}
}

// Principal returns the authenticated principal set by RequireAuth.
func Principal(c *gin.Context) *auth.Principal {
	if v, ok := c.Get(principalContextKey); ok {
		if p, ok := v.(*auth.Principal); ok {
			return p
		}
	}
	p, _ := auth.PrincipalFromContext(c.Request.Context())
	return p
}

func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
