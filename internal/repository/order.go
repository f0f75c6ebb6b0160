package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/buyled/gomanage-relay/internal/model"
)

type OrderRepository interface {
	FindByID(ctx context.Context, id string) (*model.Order, error)
	List(ctx context.Context, limit, offset int) ([]model.Order, error)
	Count(ctx context.Context) (int, error)
	UpsertBatch(ctx context.Context, orders []model.Order, syncedAt time.Time) error
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) OrderRepository
}

type orderDB interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type orderRepo struct {
	db orderDB
}

func NewOrderRepository(db *sqlx.DB) OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) WithTx(tx *sqlx.Tx) OrderRepository {
	return &orderRepo{db: tx}
}

func (r *orderRepo) FindByID(ctx context.Context, id string) (*model.Order, error) {
	var order model.Order
	err := r.db.GetContext(ctx, &order, `
		SELECT * FROM orders WHERE id = $1
	`, id)
	return HandleNotFound(&order, err)
}

func (r *orderRepo) List(ctx context.Context, limit, offset int) ([]model.Order, error) {
	orders := []model.Order{}
	err := r.db.SelectContext(ctx, &orders, `
		SELECT * FROM orders ORDER BY order_date DESC, id LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM orders`)
	return count, err
}

func (r *orderRepo) UpsertBatch(ctx context.Context, orders []model.Order, syncedAt time.Time) error {
	for _, o := range orders {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO orders (
				id, gomanage_id, order_number, reference, order_date, status, customer_name,
				amount, tax_amount, shipping_cost, total_amount, sync_status, last_sync
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			ON CONFLICT (id) DO UPDATE SET
				gomanage_id = EXCLUDED.gomanage_id,
				order_number = EXCLUDED.order_number,
				reference = EXCLUDED.reference,
				order_date = EXCLUDED.order_date,
				status = EXCLUDED.status,
				customer_name = EXCLUDED.customer_name,
				amount = EXCLUDED.amount,
				tax_amount = EXCLUDED.tax_amount,
				shipping_cost = EXCLUDED.shipping_cost,
				total_amount = EXCLUDED.total_amount,
				sync_status = EXCLUDED.sync_status,
				last_sync = EXCLUDED.last_sync
		`, o.ID, o.GomanageID, o.OrderNumber, o.Reference, o.OrderDate, o.Status, o.CustomerName,
			o.Amount, o.TaxAmount, o.ShippingCost, o.TotalAmount, o.SyncStatus, syncedAt)
		if err != nil {
			return err
		}
	}
	return nil
}
