package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/buyled/gomanage-relay/internal/errors"
	"github.com/buyled/gomanage-relay/internal/model"
)

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) entityListResponse {
	t.Helper()
	var resp entityListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestGetCustomers(t *testing.T) {
	t.Run("live fetch serves upstream records", func(t *testing.T) {
		upstream := &stubUpstream{
			login: func(ctx context.Context, username, password string) (string, error) {
				return "TOKEN", nil
			},
			graphql: func(ctx context.Context, token, document string, variables map[string]any) ([]byte, error) {
				return []byte(customersBody), nil
			},
		}
		relay, _ := newTestRelayService(upstream, &stubProber{})
		handler := NewEntitiesHandler(relay, &stubCustomerRepo{}, nil, nil)

		req := httptest.NewRequest(http.MethodGet, "/customers", nil)
		rec := httptest.NewRecorder()
		handler.Routes().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeList(t, rec)
		assert.Equal(t, "live", resp.Source)
		assert.Equal(t, 1, resp.Count)
		assert.Equal(t, 1, resp.TotalCount)
	})

	t.Run("upstream failure falls back to cache", func(t *testing.T) {
		upstream := &stubUpstream{
			login: func(ctx context.Context, username, password string) (string, error) {
				return "", apperrors.Upstream("connection refused", nil)
			},
		}
		repo := &stubCustomerRepo{
			list: func(ctx context.Context, limit, offset int) ([]model.Customer, error) {
				return []model.Customer{{ID: "customer-1", Name: "María García"}}, nil
			},
			count: func(ctx context.Context) (int, error) { return 42, nil },
		}
		relay, _ := newTestRelayService(upstream, &stubProber{})
		handler := NewEntitiesHandler(relay, repo, nil, nil)

		req := httptest.NewRequest(http.MethodGet, "/customers", nil)
		rec := httptest.NewRecorder()
		handler.Routes().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeList(t, rec)
		assert.Equal(t, "cache", resp.Source)
		assert.Equal(t, 1, resp.Count)
		assert.Equal(t, 42, resp.TotalCount)
	})

	t.Run("source=cache skips the upstream entirely", func(t *testing.T) {
		called := false
		upstream := &stubUpstream{
			login: func(ctx context.Context, username, password string) (string, error) {
				called = true
				return "TOKEN", nil
			},
		}
		repo := &stubCustomerRepo{
			list: func(ctx context.Context, limit, offset int) ([]model.Customer, error) {
				assert.Equal(t, 10, limit)
				assert.Equal(t, 20, offset)
				return []model.Customer{}, nil
			},
			count: func(ctx context.Context) (int, error) { return 0, nil },
		}
		relay, _ := newTestRelayService(upstream, &stubProber{})
		handler := NewEntitiesHandler(relay, repo, nil, nil)

		req := httptest.NewRequest(http.MethodGet, "/customers?source=cache&limit=10&offset=20", nil)
		rec := httptest.NewRecorder()
		handler.Routes().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, called)
		assert.Equal(t, "cache", decodeList(t, rec).Source)
	})

	t.Run("upstream down and cache unreadable is 502", func(t *testing.T) {
		upstream := &stubUpstream{
			login: func(ctx context.Context, username, password string) (string, error) {
				return "", apperrors.Upstream("connection refused", nil)
			},
		}
		repo := &stubCustomerRepo{
			list: func(ctx context.Context, limit, offset int) ([]model.Customer, error) {
				return nil, errors.New("relation does not exist")
			},
		}
		relay, _ := newTestRelayService(upstream, &stubProber{})
		handler := NewEntitiesHandler(relay, repo, nil, nil)

		req := httptest.NewRequest(http.MethodGet, "/customers", nil)
		rec := httptest.NewRecorder()
		handler.Routes().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}
