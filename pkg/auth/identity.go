package auth

import (
	"github.com/kitobxon/kitobxon/pkg/errcodes"
	"github.com/labstack/echo/v4"
)

// SessionExternalUserID returns the authenticated external user id, if any.
func SessionExternalUserID(c echo.Context) (string, bool) {
	id, ok := c.Get(ContextKeyExternalUserID).(string)
	return id, ok && id != ""
}

// SessionClaims returns the verified token claims, if any.
func SessionClaims(c echo.Context) (*Claims, bool) {
	claims, ok := c.Get(ContextKeyClaims).(*Claims)
	return claims, ok
}

// ResolveExternalUserID reconciles the external user id named by a request
// with the authenticated session. A request may omit the id when a session
// exists, but it may never act for someone else.
func ResolveExternalUserID(c echo.Context, requested string) (string, error) {
	session, ok := SessionExternalUserID(c)
	switch {
	case ok && requested != "" && requested != session:
		return "", errcodes.Forbidden("Acting for another user")
	case ok:
		return session, nil
	case requested != "":
		return requested, nil
	default:
		return "", errcodes.NotAuthenticated("No user identity supplied.")
	}
}
