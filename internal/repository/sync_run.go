package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/buyled/gomanage-relay/internal/model"
)

type SyncRunRepository interface {
	FindByID(ctx context.Context, id string) (*model.SyncRun, error)
	ListRecent(ctx context.Context, limit, offset int) ([]model.SyncRun, error)
	Create(ctx context.Context, params model.CreateSyncRunParams) (*model.SyncRun, error)
	Finish(ctx context.Context, params model.FinishSyncRunParams) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) SyncRunRepository
}

type syncRunDB interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type syncRunRepo struct {
	db syncRunDB
}

func NewSyncRunRepository(db *sqlx.DB) SyncRunRepository {
	return &syncRunRepo{db: db}
}

func (r *syncRunRepo) WithTx(tx *sqlx.Tx) SyncRunRepository {
	return &syncRunRepo{db: tx}
}

func (r *syncRunRepo) FindByID(ctx context.Context, id string) (*model.SyncRun, error) {
	var run model.SyncRun
	err := r.db.GetContext(ctx, &run, `
		SELECT * FROM sync_runs WHERE id = $1
	`, id)
	return HandleNotFound(&run, err)
}

func (r *syncRunRepo) ListRecent(ctx context.Context, limit, offset int) ([]model.SyncRun, error) {
	runs := []model.SyncRun{}
	err := r.db.SelectContext(ctx, &runs, `
		SELECT * FROM sync_runs ORDER BY started_at DESC LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	return runs, nil
}

func (r *syncRunRepo) Create(ctx context.Context, params model.CreateSyncRunParams) (*model.SyncRun, error) {
	var run model.SyncRun
	err := r.db.GetContext(ctx, &run, `
		INSERT INTO sync_runs (entity, status, started_at)
		VALUES ($1, 'running', $2)
		RETURNING *
	`, params.Entity, params.StartedAt)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *syncRunRepo) Finish(ctx context.Context, params model.FinishSyncRunParams) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE sync_runs SET
			status = $2,
			records_processed = $3,
			records_success = $4,
			records_error = $5,
			error_message = $6,
			finished_at = $7
		WHERE id = $1
	`, params.ID, params.Status, params.RecordsProcessed, params.RecordsSuccess,
		params.RecordsError, params.ErrorMessage, params.FinishedAt)
	return err
}

func (r *syncRunRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM sync_runs WHERE started_at < $1
	`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
