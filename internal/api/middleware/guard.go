package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Rule27-Design/rule27-client/internal/api/metrics"
	"github.com/Rule27-Design/rule27-client/internal/core/domain"
	"github.com/Rule27-Design/rule27-client/internal/core/ports"
)

// Guard gates a protected route group. Each request gets one full
// authorization check; the resolved profile is injected into the request
// context on success, and every other outcome answers with the redirect the
// decision dictates — the guarded handler is never reached.
//
// requiredRoles defaults to {standard}. The check fails closed: a profile
// fetch error behaves exactly like an absent profile.
func Guard(authorizer ports.Authorizer, requiredRoles ...string) echo.MiddlewareFunc {
	if len(requiredRoles) == 0 {
		requiredRoles = []string{domain.RoleStandard}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Prefer the token injected by the Session middleware; fall
			// back to extracting it ourselves when the middleware is not
			// mounted on this route.
			token, _ := c.Get(CtxAccessToken).(string)
			if token == "" {
				token = bearerToken(c)
			}

			decision := authorizer.Check(c.Request().Context(), token, requiredRoles, c.Request().URL.Path)
			metrics.AuthDecisionsTotal.WithLabelValues(string(decision.Kind), "guard").Inc()

			if decision.Allowed() {
				c.Set(CtxProfile, decision.Profile)
				return next(c)
			}

			status := http.StatusForbidden
			if decision.Kind == domain.DecisionRedirectToLogin {
				status = http.StatusUnauthorized
			}
			// Silent redirect: no "access denied" body, just where to go.
			return c.JSON(status, decision)
		}
	}
}
