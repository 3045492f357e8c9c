package auth

import (
	"strings"

	"github.com/kitobxon/kitobxon/pkg/errcodes"
	"github.com/labstack/echo/v4"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
)

// Echo context keys set by the middleware.
const (
	ContextKeyExternalUserID = "external_user_id"
	ContextKeyClaims         = "claims"
)

// Middleware authenticates requests with bearer tokens. A nil verifier turns
// it into a pass-through, which trusts the caller-supplied external user ids.
type Middleware struct {
	verifier *Verifier
}

func NewMiddleware(verifier *Verifier) *Middleware {
	return &Middleware{verifier: verifier}
}

// Enabled reports whether bearer tokens are checked.
func (m *Middleware) Enabled() bool {
	return m.verifier != nil
}

// Authenticate requires a valid bearer token when verification is enabled and
// stores its subject and claims on the context.
func (m *Middleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if m.verifier == nil {
			return next(c)
		}
		token := bearerToken(c)
		if token == "" {
			return errcodes.NotAuthenticated("Authentication required.")
		}
		claims, err := m.verifier.Verify(token)
		if err != nil {
			logger.FromEchoContext(c).Err(err).Info("rejected token")
			return errcodes.NotAuthenticated("Invalid or expired token.")
		}
		setSession(c, claims)
		return next(c)
	}
}

// AuthenticateOptional attaches the session when a valid token is present and
// otherwise lets the request through anonymously.
func (m *Middleware) AuthenticateOptional(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if m.verifier == nil {
			return next(c)
		}
		if token := bearerToken(c); token != "" {
			if claims, err := m.verifier.Verify(token); err == nil {
				setSession(c, claims)
			}
		}
		return next(c)
	}
}

func setSession(c echo.Context, claims *Claims) {
	c.Set(ContextKeyExternalUserID, claims.Subject)
	c.Set(ContextKeyClaims, claims)
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
