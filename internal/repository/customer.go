package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/buyled/gomanage-relay/internal/model"
)

type CustomerRepository interface {
	FindByID(ctx context.Context, id string) (*model.Customer, error)
	List(ctx context.Context, limit, offset int) ([]model.Customer, error)
	Count(ctx context.Context) (int, error)
	UpsertBatch(ctx context.Context, customers []model.Customer, syncedAt time.Time) error
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) CustomerRepository
}

// customerDB is an interface satisfied by both *sqlx.DB and *sqlx.Tx
type customerDB interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type customerRepo struct {
	db customerDB
}

func NewCustomerRepository(db *sqlx.DB) CustomerRepository {
	return &customerRepo{db: db}
}

func (r *customerRepo) WithTx(tx *sqlx.Tx) CustomerRepository {
	return &customerRepo{db: tx}
}

func (r *customerRepo) FindByID(ctx context.Context, id string) (*model.Customer, error) {
	var customer model.Customer
	err := r.db.GetContext(ctx, &customer, `
		SELECT * FROM customers WHERE id = $1
	`, id)
	return HandleNotFound(&customer, err)
}

func (r *customerRepo) List(ctx context.Context, limit, offset int) ([]model.Customer, error) {
	customers := []model.Customer{}
	err := r.db.SelectContext(ctx, &customers, `
		SELECT * FROM customers ORDER BY name, id LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *customerRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM customers`)
	return count, err
}

func (r *customerRepo) UpsertBatch(ctx context.Context, customers []model.Customer, syncedAt time.Time) error {
	for _, c := range customers {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO customers (
				id, gomanage_id, name, business_name, vat_number, email, phone,
				street_name, postal_code, city, province, country, sync_status, last_sync
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			ON CONFLICT (id) DO UPDATE SET
				gomanage_id = EXCLUDED.gomanage_id,
				name = EXCLUDED.name,
				business_name = EXCLUDED.business_name,
				vat_number = EXCLUDED.vat_number,
				email = EXCLUDED.email,
				phone = EXCLUDED.phone,
				street_name = EXCLUDED.street_name,
				postal_code = EXCLUDED.postal_code,
				city = EXCLUDED.city,
				province = EXCLUDED.province,
				country = EXCLUDED.country,
				sync_status = EXCLUDED.sync_status,
				last_sync = EXCLUDED.last_sync
		`, c.ID, c.GomanageID, c.Name, c.BusinessName, c.VatNumber, c.Email, c.Phone,
			c.StreetName, c.PostalCode, c.City, c.Province, c.Country, c.SyncStatus, syncedAt)
		if err != nil {
			return err
		}
	}
	return nil
}
