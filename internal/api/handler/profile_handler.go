package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Rule27-Design/rule27-client/internal/core/ports"
)

type ProfileHandler struct {
	store ports.ProfileStore
}

func NewProfileHandler(store ports.ProfileStore) *ProfileHandler {
	return &ProfileHandler{store: store}
}

type setupProfileRequest struct {
	FullName string `json:"full_name" validate:"required,min=2"`
	IsPublic bool   `json:"is_public"`
}

// Me returns the profile resolved by the route guard.
//
// @Summary      Current user's profile
// @Tags         profile
// @Produce      json
// @Success      200  {object}  domain.Profile
// @Failure      401  {object}  map[string]string
// @Router       /me [get]
func (h *ProfileHandler) Me(c echo.Context) error {
	profile, err := ctxProfile(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// SetupProfile completes onboarding: the one-time setup flow a standard
// user finishes before the main portal opens up.
//
// @Summary      Complete profile setup
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        body  body      setupProfileRequest  true  "Setup details"
// @Success      200   {object}  domain.Profile
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /setup-profile [put]
func (h *ProfileHandler) SetupProfile(c echo.Context) error {
	profile, err := ctxProfile(c)
	if err != nil {
		return err
	}

	var req setupProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	profile.FullName = req.FullName
	profile.IsPublic = req.IsPublic
	profile.OnboardingCompleted = true

	updated, err := h.store.Update(c.Request().Context(), profile)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}
