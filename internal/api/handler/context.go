package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Rule27-Design/rule27-client/internal/api/middleware"
	"github.com/Rule27-Design/rule27-client/internal/core/domain"
)

// ctxProfile extracts the profile injected by the Guard middleware. Its
// presence proves the guard ran and allowed the request; a guarded handler
// reached without it is a wiring bug, answered with 401 rather than a panic.
func ctxProfile(c echo.Context) (*domain.Profile, error) {
	profile, _ := c.Get(middleware.CtxProfile).(*domain.Profile)
	if profile == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authorization context")
	}
	return profile, nil
}
