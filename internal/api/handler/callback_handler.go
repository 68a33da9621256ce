package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Rule27-Design/rule27-client/internal/api/metrics"
	"github.com/Rule27-Design/rule27-client/internal/api/middleware"
	"github.com/Rule27-Design/rule27-client/internal/core/domain"
	"github.com/Rule27-Design/rule27-client/internal/core/ports"
)

// CallbackHandler drives the one-shot post-redirect state machine. The SPA
// lands on /auth/callback with the provider's access token and nonce and
// asks this endpoint for its single navigation decision.
type CallbackHandler struct {
	callbacks          ports.CallbackService
	errorRedirectDelay time.Duration
}

func NewCallbackHandler(callbacks ports.CallbackService, errorRedirectDelay time.Duration) *CallbackHandler {
	if errorRedirectDelay <= 0 {
		errorRedirectDelay = 3 * time.Second
	}
	return &CallbackHandler{callbacks: callbacks, errorRedirectDelay: errorRedirectDelay}
}

type callbackResponse struct {
	Decision     domain.Decision `json:"decision"`
	Profile      *domain.Profile `json:"profile,omitempty"`
	Bootstrapped bool            `json:"bootstrapped,omitempty"`
}

// callbackErrorResponse tells the SPA what to show and where to go next. The
// client displays Error, waits RetryAfterMs, then navigates to Redirect —
// the user is never stranded on a failed callback screen.
type callbackErrorResponse struct {
	Error        string `json:"error"`
	Redirect     string `json:"redirect"`
	RetryAfterMs int64  `json:"retry_after_ms"`
}

// Callback runs the auth callback state machine.
//
// @Summary      Process the identity-provider redirect
// @Tags         auth
// @Produce      json
// @Param        access_token  query     string  false  "Provider access token (when not sent as a bearer header)"
// @Param        nonce         query     string  false  "One-shot callback nonce"
// @Param        redirect_to   query     string  false  "Path the user was navigating to"
// @Success      200  {object}  callbackResponse
// @Failure      401  {object}  callbackErrorResponse
// @Failure      409  {object}  callbackErrorResponse
// @Failure      500  {object}  callbackErrorResponse
// @Router       /auth/callback [get]
func (h *CallbackHandler) Callback(c echo.Context) error {
	token, _ := c.Get(middleware.CtxAccessToken).(string)
	if token == "" {
		// The provider delivers the token in the URL fragment; the SPA
		// forwards it as a query parameter.
		token = c.QueryParam("access_token")
	}

	in := ports.CallbackInput{
		AccessToken: token,
		Nonce:       c.QueryParam("nonce"),
		CurrentPath: c.QueryParam("redirect_to"),
	}
	if in.CurrentPath == "" {
		in.CurrentPath = domain.RoutePortalRoot
	}

	start := time.Now()
	result, err := h.callbacks.Run(c.Request().Context(), in)
	metrics.CallbackDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		return h.callbackError(c, err)
	}

	metrics.CallbackRunsTotal.WithLabelValues("navigated").Inc()
	metrics.AuthDecisionsTotal.WithLabelValues(string(result.Decision.Kind), "callback").Inc()
	if result.Bootstrapped {
		metrics.BootstrapTotal.WithLabelValues("created").Inc()
	}

	return c.JSON(http.StatusOK, callbackResponse{
		Decision:     result.Decision,
		Profile:      result.Profile,
		Bootstrapped: result.Bootstrapped,
	})
}

func (h *CallbackHandler) callbackError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	result := "error"
	switch {
	case errors.Is(err, domain.ErrCallbackReplayed):
		status = http.StatusConflict
		result = "replayed"
	case errors.Is(err, domain.ErrSessionRetrieval):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrProfileCreationFailed):
		metrics.BootstrapTotal.WithLabelValues("conflict").Inc()
	}
	metrics.CallbackRunsTotal.WithLabelValues(result).Inc()

	return c.JSON(status, callbackErrorResponse{
		Error:        err.Error(),
		Redirect:     domain.RouteLogin,
		RetryAfterMs: h.errorRedirectDelay.Milliseconds(),
	})
}
