package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/buyled/gomanage-relay/internal/audit"
	"github.com/buyled/gomanage-relay/internal/config"
	apperrors "github.com/buyled/gomanage-relay/internal/errors"
	"github.com/buyled/gomanage-relay/internal/gomanage"
	"github.com/buyled/gomanage-relay/internal/model"
	"github.com/buyled/gomanage-relay/internal/query"
	"github.com/buyled/gomanage-relay/internal/session"
)

// Upstream is the slice of the Gomanage client the relay needs.
type Upstream interface {
	Login(ctx context.Context, username, password string) (string, error)
	ExecuteGraphQL(ctx context.Context, token, document string, variables map[string]any) ([]byte, error)
	FetchREST(ctx context.Context, token, path string) (*gomanage.RESTResult, error)
	NotifyLogout(ctx context.Context, token string) error
	BaseURL() string
}

// HealthProber answers the status action's reachability question.
type HealthProber interface {
	Probe(ctx context.Context) bool
}

type Credentials struct {
	Username string
	Password string
}

// RelayService is the request entry point: it resolves sessions through the
// store and authenticator, translates logical fetches into upstream calls,
// and absorbs upstream failures into structured responses. It is the only
// writer of the session store.
type RelayService struct {
	store      *session.Store
	upstream   Upstream
	translator *query.Translator
	prober     HealthProber
	defaults   Credentials
}

func NewRelayService(
	store *session.Store,
	upstream Upstream,
	translator *query.Translator,
	prober HealthProber,
	defaults Credentials,
) *RelayService {
	return &RelayService{
		store:      store,
		upstream:   upstream,
		translator: translator,
		prober:     prober,
		defaults:   defaults,
	}
}

// Dispatch runs one relay request to completion and always returns a
// structured response; errors never escape as raw failures.
func (s *RelayService) Dispatch(ctx context.Context, req model.ProxyRequest) model.ProxyResponse {
	switch req.Action {
	case model.ActionStatus:
		status := s.Status(ctx)
		return model.ProxyResponse{
			Success:   true,
			Data:      status,
			Timestamp: timestamp(),
		}
	case model.ActionLogin:
		return s.login(ctx, req)
	case model.ActionProxy:
		return s.proxy(ctx, req)
	case model.ActionLogout:
		return s.logout(ctx, req)
	default:
		return failureResponse(apperrors.InvalidAction(string(req.Action)).Error(), false)
	}
}

// Status reports relay and upstream health. The relay answering at all
// means the proxy is online; the probe decides the Gomanage side.
func (s *RelayService) Status(ctx context.Context) model.StatusResponse {
	gomanageStatus := "offline"
	if s.prober.Probe(ctx) {
		gomanageStatus = "online"
	}

	s.store.Sweep()
	return model.StatusResponse{
		ProxyStatus:    "online",
		GomanageStatus: gomanageStatus,
		GomanageURL:    s.upstream.BaseURL(),
		ActiveSessions: s.store.Count(),
		Timestamp:      timestamp(),
	}
}

func (s *RelayService) login(ctx context.Context, req model.ProxyRequest) model.ProxyResponse {
	key := sessionKey(req)
	username, password := s.credentials(req)

	token, err := s.upstream.Login(ctx, username, password)
	if err != nil {
		audit.Log(audit.Event{Type: audit.EventLoginFailure, SessionKey: key})
		log.Warn().Err(err).Str("sessionKey", key).Msg("relay login failed")
		return failureResponse(loginErrorMessage(err), false)
	}

	s.store.Put(key, token)
	audit.Log(audit.Event{Type: audit.EventLoginSuccess, SessionKey: key})

	return model.ProxyResponse{
		Success:    true,
		Message:    "Login successful",
		SessionKey: key,
		Timestamp:  timestamp(),
	}
}

func (s *RelayService) logout(ctx context.Context, req model.ProxyRequest) model.ProxyResponse {
	key := sessionKey(req)

	if sess, ok := s.store.Get(key); ok {
		s.store.Remove(key)
		// Best effort; the upstream expiring the cookie on its own is fine.
		if err := s.upstream.NotifyLogout(ctx, sess.Token); err != nil {
			log.Debug().Err(err).Str("sessionKey", key).Msg("upstream logout notification failed")
		}
		audit.Log(audit.Event{Type: audit.EventLogout, SessionKey: key})
	}

	return model.ProxyResponse{
		Success:   true,
		Message:   "Session closed",
		Timestamp: timestamp(),
	}
}

func (s *RelayService) proxy(ctx context.Context, req model.ProxyRequest) model.ProxyResponse {
	if evicted := s.store.Sweep(); evicted > 0 {
		log.Debug().Int("count", evicted).Msg("evicted expired sessions")
	}

	entity, ok := s.translator.Resolve(req.Endpoint)
	if !ok {
		return s.proxyREST(ctx, req)
	}

	result, err := s.FetchEntity(ctx, sessionKey(req), entity)
	if err != nil {
		return failureResponse(err.Error(), errors.Is(err, apperrors.ErrReauthRequired))
	}

	return model.ProxyResponse{
		Success: true,
		Data: map[string]any{
			"records":    result.Records(),
			"count":      result.Len(),
			"totalCount": result.TotalCount,
		},
		QueryType: entity,
		Timestamp: timestamp(),
	}
}

// FetchEntity runs the full fetch state machine for one logical entity:
// resolve a session, execute the planned GraphQL call, and normalize. An
// auth-shaped upstream failure invalidates the session and re-drives the
// login exactly once; a second rejection fails the request.
func (s *RelayService) FetchEntity(ctx context.Context, key string, entity model.Entity) (*query.Result, error) {
	plan := s.translator.Plan(entity)

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		token, err := s.sessionToken(ctx, key)
		if err != nil {
			return nil, err
		}

		raw, err := s.upstream.ExecuteGraphQL(ctx, token, plan.Document, plan.Variables)
		if errors.Is(err, apperrors.ErrReauthRequired) {
			s.store.Remove(key)
			audit.Log(audit.Event{Type: audit.EventReauthCycle, SessionKey: key, Details: map[string]any{
				"entity":  string(entity),
				"attempt": attempt + 1,
			}})
			lastErr = err
			continue
		}
		if err != nil {
			return nil, err
		}
		s.store.Touch(key)

		result, err := s.translator.Normalize(entity, raw)
		if errors.Is(err, apperrors.ErrShape) {
			log.Warn().Err(err).Str("entity", string(entity)).Msg("graphql payload shape mismatch, trying legacy list")
			return s.fetchEntityREST(ctx, token, entity)
		}
		if err != nil {
			return nil, err
		}

		log.Info().
			Str("entity", string(entity)).
			Int("records", result.Len()).
			Int("totalCount", result.TotalCount).
			Msg("entity fetched")
		return result, nil
	}

	return nil, lastErr
}

// fetchEntityREST is the fallback when the GraphQL schema has drifted: the
// legacy apitmt list endpoints keep serving the {total_entries, page_entries}
// shape. A fallback that also fails degrades to an empty result, never a
// hard failure.
func (s *RelayService) fetchEntityREST(ctx context.Context, token string, entity model.Entity) (*query.Result, error) {
	plan := s.translator.PlanREST(entity)

	rest, err := s.upstream.FetchREST(ctx, token, plan.Path)
	if err != nil || rest.JSON == nil {
		log.Warn().Err(err).Str("entity", string(entity)).Msg("legacy list fallback failed, serving empty result")
		return &query.Result{Entity: entity}, nil
	}

	result, err := s.translator.Normalize(entity, rest.JSON)
	if err != nil {
		log.Warn().Err(err).Str("entity", string(entity)).Msg("legacy list shape mismatch, serving empty result")
		return &query.Result{Entity: entity}, nil
	}
	return result, nil
}

// proxyREST relays endpoints outside the three GraphQL entities as plain
// authenticated GETs, with the same single reauth cycle.
func (s *RelayService) proxyREST(ctx context.Context, req model.ProxyRequest) model.ProxyResponse {
	key := sessionKey(req)

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		token, err := s.sessionToken(ctx, key)
		if err != nil {
			return failureResponse(err.Error(), false)
		}

		result, err := s.upstream.FetchREST(ctx, token, req.Endpoint)
		if errors.Is(err, apperrors.ErrReauthRequired) {
			s.store.Remove(key)
			audit.Log(audit.Event{Type: audit.EventReauthCycle, SessionKey: key, Details: map[string]any{
				"endpoint": req.Endpoint,
				"attempt":  attempt + 1,
			}})
			lastErr = err
			continue
		}
		if err != nil {
			return failureResponse(err.Error(), false)
		}
		s.store.Touch(key)

		var data any
		if result.JSON != nil {
			data = result.JSON
		} else {
			data = map[string]any{
				"data":        result.RawText,
				"raw":         true,
				"contentType": result.ContentType,
			}
		}

		return model.ProxyResponse{
			Success:   result.Status >= 200 && result.Status < 300,
			Data:      data,
			Timestamp: timestamp(),
		}
	}

	return failureResponse(lastErr.Error(), true)
}

// sessionToken returns a valid cached token for key, logging in with the
// service credentials when none exists.
func (s *RelayService) sessionToken(ctx context.Context, key string) (string, error) {
	if sess, ok := s.store.Get(key); ok {
		return sess.Token, nil
	}

	token, err := s.upstream.Login(ctx, s.defaults.Username, s.defaults.Password)
	if err != nil {
		audit.Log(audit.Event{Type: audit.EventLoginFailure, SessionKey: key})
		return "", err
	}

	s.store.Put(key, token)
	audit.Log(audit.Event{Type: audit.EventLoginSuccess, SessionKey: key})
	return token, nil
}

func (s *RelayService) credentials(req model.ProxyRequest) (string, string) {
	username := req.Username
	password := req.Password
	if username == "" {
		username = s.defaults.Username
	}
	if password == "" {
		password = s.defaults.Password
	}
	return username, password
}

func sessionKey(req model.ProxyRequest) string {
	if req.SessionKey == "" {
		return config.DefaultSessionKey
	}
	return req.SessionKey
}

func loginErrorMessage(err error) string {
	if errors.Is(err, apperrors.ErrInvalidCredentials) {
		return "Invalid credentials"
	}
	if errors.Is(err, apperrors.ErrNoSessionToken) {
		return "Login failed: no session cookie received"
	}
	return err.Error()
}

func failureResponse(message string, needsReauth bool) model.ProxyResponse {
	return model.ProxyResponse{
		Success:     false,
		Error:       message,
		NeedsReauth: needsReauth,
		Timestamp:   timestamp(),
	}
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
