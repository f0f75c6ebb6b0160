package repository

import (
	"database/sql"
	"errors"
)

// HandleNotFound turns sql.ErrNoRows into a nil result without error. The
// Find* lookups treat a missing cached record as an empty answer, not a
// failure.
//
//	var customer model.Customer
//	err := r.db.GetContext(ctx, &customer, query, id)
//	return HandleNotFound(&customer, err)
func HandleNotFound[T any](result *T, err error) (*T, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}
