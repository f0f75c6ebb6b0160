package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/buyled/gomanage-relay/internal/config"
)

// DBTX is an interface that both *sqlx.DB and *sqlx.Tx satisfy.
// This allows repositories to work with either a direct connection or a transaction.
type DBTX interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Ensure *sqlx.DB and *sqlx.Tx implement DBTX
var _ DBTX = (*sqlx.DB)(nil)
var _ DBTX = (*sqlx.Tx)(nil)

type DB struct {
	*sqlx.DB
}

func Connect(databaseURL string) (*DB, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(config.DBMaxOpenConns)
	db.SetMaxIdleConns(config.DBMaxIdleConns)
	db.SetConnMaxLifetime(config.DBConnMaxLifetime)

	return &DB{db}, nil
}

func (db *DB) Ping(ctx context.Context) error {
	return db.PingContext(ctx)
}

func (db *DB) Close() error {
	return db.DB.Close()
}

// Migrate creates the catalog cache tables. Idempotent; the cache schema
// is small enough that CREATE IF NOT EXISTS beats a migration tool here.
func (db *DB) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS customers (
			id TEXT PRIMARY KEY,
			gomanage_id TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			business_name TEXT NOT NULL DEFAULT '',
			vat_number TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			street_name TEXT NOT NULL DEFAULT '',
			postal_code TEXT NOT NULL DEFAULT '',
			city TEXT NOT NULL DEFAULT '',
			province TEXT NOT NULL DEFAULT '',
			country TEXT NOT NULL DEFAULT '',
			sync_status TEXT NOT NULL DEFAULT 'never',
			last_sync TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			gomanage_id TEXT NOT NULL,
			brand_name TEXT NOT NULL DEFAULT '',
			reference TEXT NOT NULL DEFAULT '',
			description_short TEXT NOT NULL DEFAULT '',
			description_long TEXT NOT NULL DEFAULT '',
			base_price DOUBLE PRECISION NOT NULL DEFAULT 0,
			stock_real INTEGER NOT NULL DEFAULT 0,
			stock_reserved INTEGER NOT NULL DEFAULT 0,
			category TEXT NOT NULL DEFAULT '',
			sync_status TEXT NOT NULL DEFAULT 'never',
			last_sync TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			gomanage_id TEXT NOT NULL,
			order_number TEXT NOT NULL DEFAULT '',
			reference TEXT NOT NULL DEFAULT '',
			order_date TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'pending',
			customer_name TEXT NOT NULL DEFAULT '',
			amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			tax_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			shipping_cost DOUBLE PRECISION NOT NULL DEFAULT 0,
			total_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			sync_status TEXT NOT NULL DEFAULT 'never',
			last_sync TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS sync_runs (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			entity TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'running',
			records_processed INTEGER NOT NULL DEFAULT 0,
			records_success INTEGER NOT NULL DEFAULT 0,
			records_error INTEGER NOT NULL DEFAULT 0,
			error_message TEXT,
			started_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			finished_at TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sync_runs_entity_started ON sync_runs (entity, started_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// TxFunc is a function that runs within a transaction.
type TxFunc func(tx *sqlx.Tx) error

// WithTx executes fn within a database transaction.
// If fn returns an error, the transaction is rolled back.
// Otherwise, the transaction is committed.
func (db *DB) WithTx(ctx context.Context, fn TxFunc) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
