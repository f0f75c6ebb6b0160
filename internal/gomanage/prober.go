package gomanage

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Prober answers "is Gomanage up" for the status action. One bounded GET,
// no retries, no auth. Any HTTP status means reachable: an upstream that
// rejects the request is still online.
type Prober struct {
	baseURL    string
	httpClient *http.Client
}

func NewProber(baseURL string, timeout time.Duration) *Prober {
	return &Prober{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (p *Prober) Probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+landingPath, nil)
	if err != nil {
		return false
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Msg("gomanage probe failed")
		return false
	}
	resp.Body.Close()
	return true
}
