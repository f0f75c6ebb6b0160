package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/buyled/gomanage-relay/internal/config"
	apperrors "github.com/buyled/gomanage-relay/internal/errors"
	"github.com/buyled/gomanage-relay/internal/model"
	"github.com/buyled/gomanage-relay/internal/repository"
)

// SyncService pulls entities from Gomanage into the local catalog cache so
// the dashboard keeps rendering while the upstream is down.
type SyncService struct {
	relay        *RelayService
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
	orderRepo    repository.OrderRepository
	syncRunRepo  repository.SyncRunRepository
}

func NewSyncService(
	relay *RelayService,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	syncRunRepo repository.SyncRunRepository,
) *SyncService {
	return &SyncService{
		relay:        relay,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		orderRepo:    orderRepo,
		syncRunRepo:  syncRunRepo,
	}
}

// Pull fetches one entity through the relay and upserts the normalized
// records. Records that failed normalization (no upstream identifier) are
// counted as errors and skipped, not persisted.
func (s *SyncService) Pull(ctx context.Context, entity model.Entity) (*model.SyncRun, error) {
	run, err := s.syncRunRepo.Create(ctx, model.CreateSyncRunParams{
		Entity:    entity,
		StartedAt: time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("create sync run: %w", err)
	}

	result, err := s.relay.FetchEntity(ctx, config.DefaultSessionKey, entity)
	if err != nil {
		s.finish(ctx, run, model.SyncRunStatusError, 0, 0, 0, err.Error())
		return s.syncRunRepo.FindByID(ctx, run.ID)
	}

	now := time.Now()
	processed := result.Len()
	failed := 0

	switch entity {
	case model.EntityCustomers:
		kept := keepSynced(result.Customers, func(c model.Customer) model.SyncStatus { return c.SyncStatus })
		failed = processed - len(kept)
		err = s.customerRepo.UpsertBatch(ctx, kept, now)
	case model.EntityProducts:
		kept := keepSynced(result.Products, func(p model.Product) model.SyncStatus { return p.SyncStatus })
		failed = processed - len(kept)
		err = s.productRepo.UpsertBatch(ctx, kept, now)
	case model.EntityOrders:
		kept := keepSynced(result.Orders, func(o model.Order) model.SyncStatus { return o.SyncStatus })
		failed = processed - len(kept)
		err = s.orderRepo.UpsertBatch(ctx, kept, now)
	}
	if err != nil {
		s.finish(ctx, run, model.SyncRunStatusError, processed, 0, processed, err.Error())
		return s.syncRunRepo.FindByID(ctx, run.ID)
	}

	status := model.SyncRunStatusSuccess
	errMsg := ""
	if failed > 0 {
		status = model.SyncRunStatusError
		errMsg = fmt.Sprintf("%d records failed normalization", failed)
	}
	s.finish(ctx, run, status, processed, processed-failed, failed, errMsg)

	log.Info().
		Str("entity", string(entity)).
		Int("processed", processed).
		Int("errors", failed).
		Msg("sync pull finished")

	return s.syncRunRepo.FindByID(ctx, run.ID)
}

// Push write-back never talked to the real upstream; it is rejected rather
// than simulated.
func (s *SyncService) Push(ctx context.Context, entity model.Entity) error {
	return apperrors.ValidationError("push sync is not supported by the upstream; only pull is available")
}

// RecentRuns lists sync history, newest first.
func (s *SyncService) RecentRuns(ctx context.Context, limit, offset int) ([]model.SyncRun, error) {
	return s.syncRunRepo.ListRecent(ctx, limit, offset)
}

func (s *SyncService) finish(ctx context.Context, run *model.SyncRun, status model.SyncRunStatus, processed, success, failed int, errMsg string) {
	params := model.FinishSyncRunParams{
		ID:               run.ID,
		Status:           status,
		RecordsProcessed: processed,
		RecordsSuccess:   success,
		RecordsError:     failed,
		FinishedAt:       time.Now(),
	}
	if errMsg != "" {
		params.ErrorMessage = &errMsg
	}
	if err := s.syncRunRepo.Finish(ctx, params); err != nil {
		log.Error().Err(err).Str("runId", run.ID).Msg("failed to finish sync run")
	}
}

func keepSynced[T any](records []T, status func(T) model.SyncStatus) []T {
	kept := make([]T, 0, len(records))
	for _, rec := range records {
		if status(rec) != model.SyncStatusError {
			kept = append(kept, rec)
		}
	}
	return kept
}
