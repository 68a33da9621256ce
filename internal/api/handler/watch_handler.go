package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/Rule27-Design/rule27-client/internal/api/middleware"
	"github.com/Rule27-Design/rule27-client/internal/core/ports"
	"github.com/Rule27-Design/rule27-client/internal/core/service"
)

// WatchHandler streams route-guard decisions to the SPA over SSE. Each
// connection owns one Guard: the guard re-checks whenever the session
// changes server-side, and every settled check is pushed as a `decision`
// event. The client applies the decision's navigation without polling.
type WatchHandler struct {
	authorizer ports.Authorizer
	sessions   ports.SessionSource
	log        zerolog.Logger
}

func NewWatchHandler(authorizer ports.Authorizer, sessions ports.SessionSource, log zerolog.Logger) *WatchHandler {
	return &WatchHandler{authorizer: authorizer, sessions: sessions, log: log}
}

// Watch opens the decision stream.
//
// @Summary      Stream authorization decisions for the current session
// @Tags         auth
// @Produce      text/event-stream
// @Param        access_token    query  string  false  "Provider access token (EventSource cannot set headers)"
// @Param        required_roles  query  string  false  "Comma-separated role set, default standard"
// @Param        path            query  string  false  "Path being guarded"
// @Success      200
// @Router       /auth/watch [get]
func (h *WatchHandler) Watch(c echo.Context) error {
	token, _ := c.Get(middleware.CtxAccessToken).(string)
	if token == "" {
		token = c.QueryParam("access_token")
	}

	var roles []string
	if raw := c.QueryParam("required_roles"); raw != "" {
		for _, r := range strings.Split(raw, ",") {
			if r = strings.TrimSpace(r); r != "" {
				roles = append(roles, r)
			}
		}
	}
	path := c.QueryParam("path")
	if path == "" {
		path = "/"
	}

	ctx := c.Request().Context()
	guard := service.NewGuard(h.authorizer, h.sessions, h.log)
	defer guard.Stop()
	if err := guard.Start(ctx, token, roles, path); err != nil {
		return err
	}

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	for {
		select {
		case <-ctx.Done():
			return nil
		case snap := <-guard.Updates():
			data, err := json.Marshal(snap)
			if err != nil {
				h.log.Error().Err(err).Msg("guard snapshot marshal failed")
				continue
			}
			if _, err := fmt.Fprintf(w, "event: decision\ndata: %s\n\n", data); err != nil {
				return nil
			}
			w.Flush()
		}
	}
}
