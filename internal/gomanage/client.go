// Package gomanage talks to the upstream ERP: the PASOE login handshake,
// the GraphQL/REST data endpoints, and the health probe. It owns nothing;
// session caching is the caller's job.
package gomanage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/buyled/gomanage-relay/internal/config"
	apperrors "github.com/buyled/gomanage-relay/internal/errors"
)

// Upstream paths, fixed by the Gomanage deployment.
const (
	loginPath   = "/gomanage/static/auth/j_spring_security_check"
	logoutPath  = "/gomanage/static/auth/j_spring_security_logout"
	graphqlPath = "/gomanage/web/data/graphql"
	landingPath = "/gomanage"
)

const userAgent = "gomanage-relay/1.0"

type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	retries    int
	backoff    time.Duration
}

func NewClient(baseURL string, timeout time.Duration, retries int) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			// The login handshake signals success with a redirect; we need
			// the Set-Cookie from the first response, not the target page.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		timeout: timeout,
		retries: retries,
		backoff: config.RetryBackoffBase,
	}
}

// BaseURL returns the configured upstream root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// doWithRetry runs build+send up to c.retries times with linear backoff.
// Every attempt carries its own deadline; a timeout counts as transient.
// The request body must be rebuildable, hence the factory.
func (c *Client) doWithRetry(ctx context.Context, build func(ctx context.Context) (*http.Request, error)) (*http.Response, error) {
	var lastErr error

	for attempt := 1; attempt <= c.retries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		req, err := build(attemptCtx)
		if err != nil {
			cancel()
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		if err == nil {
			// Cancel fires when the body is drained by the caller; tie it
			// to the body so the response stays readable.
			resp.Body = &cancelReadCloser{ReadCloser: resp.Body, cancel: cancel}
			return resp, nil
		}
		cancel()

		lastErr = err
		log.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("retries", c.retries).
			Str("url", req.URL.String()).
			Msg("gomanage request failed")

		if attempt == c.retries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * c.backoff):
		}
	}

	if errors.Is(lastErr, context.DeadlineExceeded) {
		return nil, apperrors.UpstreamTimeout(lastErr)
	}
	return nil, apperrors.Upstream("Gomanage unreachable", lastErr)
}

type cancelReadCloser struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelReadCloser) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}

// ExecuteGraphQL posts a GraphQL document with pagination variables and
// returns the raw response body. A 401 or a body-embedded auth error is
// reported as ErrReauthRequired so the dispatcher can re-drive the login.
func (c *Client) ExecuteGraphQL(ctx context.Context, token, document string, variables map[string]any) ([]byte, error) {
	payload, err := json.Marshal(map[string]any{
		"query":     document,
		"variables": variables,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal graphql payload: %w", err)
	}

	resp, err := c.doWithRetry(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+graphqlPath, strings.NewReader(string(payload)))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Cookie", token)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("X-Requested-With", "XMLHttpRequest")
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Upstream("reading Gomanage response", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, apperrors.ErrReauthRequired
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.Upstream(fmt.Sprintf("GraphQL call failed with status %d", resp.StatusCode), nil)
	}

	if msg, ok := graphqlErrorMessage(body); ok {
		if isAuthShaped(msg) {
			return nil, apperrors.ErrReauthRequired
		}
		return nil, apperrors.Upstream(fmt.Sprintf("GraphQL errors: %s", msg), nil)
	}

	return body, nil
}

// RESTResult is the outcome of a raw REST fetch. Non-JSON bodies are kept
// as text so the relay can still hand them to the dashboard.
type RESTResult struct {
	Status      int
	JSON        json.RawMessage
	RawText     string
	ContentType string
}

// FetchREST issues an authenticated GET against an upstream path.
func (c *Client) FetchREST(ctx context.Context, token, path string) (*RESTResult, error) {
	target, err := c.resolvePath(path)
	if err != nil {
		return nil, err
	}

	resp, err := c.doWithRetry(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Cookie", token)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", userAgent)
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, apperrors.ErrReauthRequired
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Upstream("reading Gomanage response", err)
	}

	result := &RESTResult{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}
	if json.Valid(body) {
		result.JSON = body
	} else {
		result.RawText = string(body)
	}
	return result, nil
}

// NotifyLogout tells the upstream to drop the session. Best effort: the
// caller treats any failure as non-fatal.
func (c *Client) NotifyLogout(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+logoutPath, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Cookie", token)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (c *Client) resolvePath(path string) (string, error) {
	if path == "" {
		return c.baseURL + landingPath, nil
	}
	if !strings.HasPrefix(path, "/") {
		return "", apperrors.InvalidInput("endpoint", "must be an absolute upstream path")
	}
	if _, err := url.Parse(c.baseURL + path); err != nil {
		return "", apperrors.InvalidInput("endpoint", "not a valid path")
	}
	return c.baseURL + path, nil
}

// graphqlErrorMessage extracts the first error message from a GraphQL
// response body, if any.
func graphqlErrorMessage(body []byte) (string, bool) {
	var envelope struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", false
	}
	if len(envelope.Errors) == 0 {
		return "", false
	}
	return envelope.Errors[0].Message, true
}

func isAuthShaped(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "unauthorized") ||
		strings.Contains(lower, "not authenticated") ||
		strings.Contains(lower, "access denied") ||
		strings.Contains(lower, "401")
}
