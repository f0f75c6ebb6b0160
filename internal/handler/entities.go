package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/buyled/gomanage-relay/internal/config"
	"github.com/buyled/gomanage-relay/internal/model"
	"github.com/buyled/gomanage-relay/internal/repository"
	"github.com/buyled/gomanage-relay/internal/service"
)

// EntitiesHandler serves the normalized entity collections. Each request
// tries a live fetch through the relay first and falls back to the local
// catalog cache when the upstream is unreachable, so the dashboard always
// has something to render.
type EntitiesHandler struct {
	relay        *service.RelayService
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
	orderRepo    repository.OrderRepository
}

func NewEntitiesHandler(
	relay *service.RelayService,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
) *EntitiesHandler {
	return &EntitiesHandler{
		relay:        relay,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		orderRepo:    orderRepo,
	}
}

func (h *EntitiesHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/customers", h.GetCustomers)
	r.Get("/products", h.GetProducts)
	r.Get("/orders", h.GetOrders)

	return r
}

type entityListResponse struct {
	Records    any    `json:"records"`
	Count      int    `json:"count"`
	TotalCount int    `json:"totalCount"`
	Source     string `json:"source"`
}

// GET /api/customers
func (h *EntitiesHandler) GetCustomers(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, model.EntityCustomers, func(ctx context.Context, p PaginationParams) (any, int, error) {
		records, err := h.customerRepo.List(ctx, p.Limit, p.Offset)
		if err != nil {
			return nil, 0, err
		}
		total, err := h.customerRepo.Count(ctx)
		return records, total, err
	})
}

// GET /api/products
func (h *EntitiesHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, model.EntityProducts, func(ctx context.Context, p PaginationParams) (any, int, error) {
		records, err := h.productRepo.List(ctx, p.Limit, p.Offset)
		if err != nil {
			return nil, 0, err
		}
		total, err := h.productRepo.Count(ctx)
		return records, total, err
	})
}

// GET /api/orders
func (h *EntitiesHandler) GetOrders(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, model.EntityOrders, func(ctx context.Context, p PaginationParams) (any, int, error) {
		records, err := h.orderRepo.List(ctx, p.Limit, p.Offset)
		if err != nil {
			return nil, 0, err
		}
		total, err := h.orderRepo.Count(ctx)
		return records, total, err
	})
}

type cacheLoader func(ctx context.Context, p PaginationParams) (any, int, error)

func (h *EntitiesHandler) serve(w http.ResponseWriter, r *http.Request, entity model.Entity, fromCache cacheLoader) {
	ctx := r.Context()

	if r.URL.Query().Get("source") != "cache" {
		result, err := h.relay.FetchEntity(ctx, sessionKeyParam(r), entity)
		if err == nil {
			writeJSON(w, http.StatusOK, entityListResponse{
				Records:    result.Records(),
				Count:      result.Len(),
				TotalCount: result.TotalCount,
				Source:     "live",
			})
			return
		}
		log.Warn().Err(err).Str("entity", string(entity)).Msg("live fetch failed, serving cache")
	}

	pagination := ParsePagination(r)
	records, total, err := fromCache(ctx, pagination)
	if err != nil {
		log.Error().Err(err).Str("entity", string(entity)).Msg("cache read failed")
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"error": "Upstream unavailable and local cache unreadable",
		})
		return
	}

	writeJSON(w, http.StatusOK, entityListResponse{
		Records:    records,
		Count:      countOf(records),
		TotalCount: total,
		Source:     "cache",
	})
}

func countOf(records any) int {
	switch v := records.(type) {
	case []model.Customer:
		return len(v)
	case []model.Product:
		return len(v)
	case []model.Order:
		return len(v)
	default:
		return 0
	}
}

func sessionKeyParam(r *http.Request) string {
	if key := r.URL.Query().Get("sessionId"); key != "" {
		return key
	}
	return config.DefaultSessionKey
}
