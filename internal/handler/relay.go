package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/buyled/gomanage-relay/internal/errors"
	"github.com/buyled/gomanage-relay/internal/httputil"
	"github.com/buyled/gomanage-relay/internal/model"
	"github.com/buyled/gomanage-relay/internal/service"
)

// RelayHandler exposes the query-string action protocol the dashboard
// speaks: ?action=status|login|proxy|logout with sessionId and endpoint
// parameters. Credentials for login may come from the query string or a
// form body.
type RelayHandler struct {
	relay *service.RelayService
}

func NewRelayHandler(relay *service.RelayService) *RelayHandler {
	return &RelayHandler{relay: relay}
}

func (h *RelayHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Relay)
	r.Post("/", h.Relay)

	return r
}

// GET|POST /api/gomanage?action=...
func (h *RelayHandler) Relay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rawAction := r.URL.Query().Get("action")
	action, ok := model.ParseAction(rawAction)
	if !ok {
		writeError(w, apperrors.InvalidAction(rawAction))
		return
	}

	req := model.ProxyRequest{
		Action:     action,
		SessionKey: r.URL.Query().Get("sessionId"),
		Endpoint:   r.URL.Query().Get("endpoint"),
		Username:   r.URL.Query().Get("username"),
		Password:   r.URL.Query().Get("password"),
	}
	if req.SessionKey == "" {
		req.SessionKey = r.URL.Query().Get("sessionKey")
	}
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err == nil {
			if req.Username == "" {
				req.Username = r.PostForm.Get("username")
			}
			if req.Password == "" {
				req.Password = r.PostForm.Get("password")
			}
		}
	}

	resp := h.relay.Dispatch(ctx, req)
	writeJSON(w, statusFor(action, resp), resp)
}

// statusFor keeps the wire contract of the original proxy: client errors
// for rejected logins, bad gateway class failures for upstream trouble.
func statusFor(action model.Action, resp model.ProxyResponse) int {
	if resp.Success {
		return http.StatusOK
	}
	if action == model.ActionLogin {
		return http.StatusUnauthorized
	}
	return httputil.StatusFromCode(apperrors.ErrCodeUpstream)
}
