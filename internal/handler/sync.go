package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	apperrors "github.com/buyled/gomanage-relay/internal/errors"
	"github.com/buyled/gomanage-relay/internal/model"
	"github.com/buyled/gomanage-relay/internal/service"
)

type SyncHandler struct {
	syncService *service.SyncService
}

func NewSyncHandler(syncService *service.SyncService) *SyncHandler {
	return &SyncHandler{syncService: syncService}
}

func (h *SyncHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/{entity}", h.Pull)
	r.Get("/runs", h.ListRuns)

	return r
}

// POST /api/sync/{entity}?operation=pull
func (h *SyncHandler) Pull(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	entity, ok := model.ParseEntity(chi.URLParam(r, "entity"))
	if !ok {
		writeError(w, apperrors.InvalidInput("entity", "must be customers, products or orders"))
		return
	}

	if op := r.URL.Query().Get("operation"); op == "push" {
		writeError(w, h.syncService.Push(ctx, entity))
		return
	}

	run, err := h.syncService.Pull(ctx, entity)
	if err != nil {
		log.Error().Err(err).Str("entity", string(entity)).Msg("sync pull failed")
		writeError(w, apperrors.Database(err))
		return
	}

	writeJSON(w, http.StatusOK, run)
}

// GET /api/sync/runs
func (h *SyncHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pagination := ParsePagination(r)

	runs, err := h.syncService.RecentRuns(ctx, pagination.Limit, pagination.Offset)
	if err != nil {
		log.Error().Err(err).Msg("failed to list sync runs")
		writeError(w, apperrors.Database(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"runs":  runs,
		"count": len(runs),
	})
}
