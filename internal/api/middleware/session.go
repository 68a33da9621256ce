package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Rule27-Design/rule27-client/internal/core/ports"
)

// Context keys set by this package.
const (
	CtxAccessToken = "access_token"
	CtxSession     = "session"
	CtxProfile     = "profile"
)

// Session extracts the provider access token from the Authorization header
// and resolves it into a session. Absence is not an error here: protected
// routes are gated by Guard, which fails closed on a missing session, and
// public routes stay reachable without one.
func Session(sessions ports.SessionSource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" {
				return next(c)
			}
			c.Set(CtxAccessToken, token)

			session, err := sessions.Resolve(c.Request().Context(), token)
			if err == nil && session != nil {
				c.Set(CtxSession, session)
			}
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
