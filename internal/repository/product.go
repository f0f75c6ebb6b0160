package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/buyled/gomanage-relay/internal/model"
)

type ProductRepository interface {
	FindByID(ctx context.Context, id string) (*model.Product, error)
	List(ctx context.Context, limit, offset int) ([]model.Product, error)
	Count(ctx context.Context) (int, error)
	UpsertBatch(ctx context.Context, products []model.Product, syncedAt time.Time) error
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) ProductRepository
}

type productDB interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type productRepo struct {
	db productDB
}

func NewProductRepository(db *sqlx.DB) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) WithTx(tx *sqlx.Tx) ProductRepository {
	return &productRepo{db: tx}
}

func (r *productRepo) FindByID(ctx context.Context, id string) (*model.Product, error) {
	var product model.Product
	err := r.db.GetContext(ctx, &product, `
		SELECT * FROM products WHERE id = $1
	`, id)
	return HandleNotFound(&product, err)
}

func (r *productRepo) List(ctx context.Context, limit, offset int) ([]model.Product, error) {
	products := []model.Product{}
	err := r.db.SelectContext(ctx, &products, `
		SELECT * FROM products ORDER BY reference, id LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM products`)
	return count, err
}

func (r *productRepo) UpsertBatch(ctx context.Context, products []model.Product, syncedAt time.Time) error {
	for _, p := range products {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO products (
				id, gomanage_id, brand_name, reference, description_short, description_long,
				base_price, stock_real, stock_reserved, category, sync_status, last_sync
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (id) DO UPDATE SET
				gomanage_id = EXCLUDED.gomanage_id,
				brand_name = EXCLUDED.brand_name,
				reference = EXCLUDED.reference,
				description_short = EXCLUDED.description_short,
				description_long = EXCLUDED.description_long,
				base_price = EXCLUDED.base_price,
				stock_real = EXCLUDED.stock_real,
				stock_reserved = EXCLUDED.stock_reserved,
				category = EXCLUDED.category,
				sync_status = EXCLUDED.sync_status,
				last_sync = EXCLUDED.last_sync
		`, p.ID, p.GomanageID, p.BrandName, p.Reference, p.DescriptionShort, p.DescriptionLong,
			p.BasePrice, p.StockReal, p.StockReserved, p.Category, p.SyncStatus, syncedAt)
		if err != nil {
			return err
		}
	}
	return nil
}
