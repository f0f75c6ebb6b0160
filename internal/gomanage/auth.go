package gomanage

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	apperrors "github.com/buyled/gomanage-relay/internal/errors"
)

// Login performs the PASOE form handshake and returns the session token as
// a "JSESSIONID=value" cookie pair. An explicit credential rejection fails
// fast; transport failures go through the client's retry policy.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("j_username", username)
	form.Set("j_password", password)
	encoded := form.Encode()

	resp, err := c.doWithRetry(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+loginPath, strings.NewReader(encoded))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("User-Agent", userAgent)
		return req, nil
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		log.Warn().Str("username", username).Msg("gomanage rejected credentials")
		return "", apperrors.ErrInvalidCredentials
	}
	if resp.StatusCode >= 500 {
		return "", apperrors.Upstream("login endpoint returned a server error", nil).
			WithDetails(map[string]any{"status": resp.StatusCode})
	}

	// Success is a redirect or 200 plus a session cookie. A login form
	// served back without a cookie is a failed authentication.
	token, err := ExtractSessionCookie(resp.Header.Values("Set-Cookie"), SessionCookieName)
	if err != nil {
		log.Warn().
			Int("status", resp.StatusCode).
			Str("username", username).
			Msg("gomanage login response carried no session cookie")
		return "", apperrors.ErrNoSessionToken
	}

	log.Info().Str("username", username).Msg("gomanage login succeeded")
	return token, nil
}
