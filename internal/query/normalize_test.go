package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/buyled/gomanage-relay/internal/errors"
	"github.com/buyled/gomanage-relay/internal/model"
)

const customersPayload = `{
	"data": {
		"master_files": {
			"customers": {
				"totalCount": 2,
				"nodes": [
					{
						"customer_id": 101,
						"name": "María García",
						"business_name": "Distribuciones García S.L.",
						"vat_number": "B12345678",
						"street_name": "Calle Mayor",
						"postal_code": "28001",
						"city": "Madrid",
						"province_id": 28,
						"country_id": "ES",
						"customer_branches": [
							{"email": "maria@garcia.es", "phone": "600111222"}
						]
					},
					{
						"customer_id": 102,
						"name": "Carlos López"
					}
				]
			}
		}
	}
}`

func TestNormalizeCustomers(t *testing.T) {
	translator := NewTranslator(defaultPaths())

	result, err := translator.Normalize(model.EntityCustomers, []byte(customersPayload))
	require.NoError(t, err)
	require.Len(t, result.Customers, 2)
	assert.Equal(t, 2, result.TotalCount)

	first := result.Customers[0]
	assert.Equal(t, "customer-101", first.ID)
	assert.Equal(t, "101", first.GomanageID)
	assert.Equal(t, "María García", first.Name)
	assert.Equal(t, "Distribuciones García S.L.", first.BusinessName)
	assert.Equal(t, "maria@garcia.es", first.Email)
	assert.Equal(t, "600111222", first.Phone)
	assert.Equal(t, "Madrid", first.City)
	assert.Equal(t, model.SyncStatusSynced, first.SyncStatus)

	// missing fields default to empty strings, never fail
	second := result.Customers[1]
	assert.Equal(t, "Carlos López", second.Name)
	assert.Empty(t, second.Email)
	assert.Empty(t, second.BusinessName)
	assert.Equal(t, model.SyncStatusSynced, second.SyncStatus)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	translator := NewTranslator(defaultPaths())

	first, err := translator.Normalize(model.EntityCustomers, []byte(customersPayload))
	require.NoError(t, err)
	second, err := translator.Normalize(model.EntityCustomers, []byte(customersPayload))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestNormalizeProducts(t *testing.T) {
	translator := NewTranslator(defaultPaths())

	t.Run("non-numeric price defaults to zero", func(t *testing.T) {
		payload := `{"data":{"master_files":{"products":{"totalCount":1,"nodes":[
			{"product_id": 7, "reference": "LAPTOP-HP-001", "base_price": "not-a-number", "stock_real": "n/a"}
		]}}}}`

		result, err := translator.Normalize(model.EntityProducts, []byte(payload))
		require.NoError(t, err)
		require.Len(t, result.Products, 1)
		assert.Equal(t, float64(0), result.Products[0].BasePrice)
		assert.Equal(t, 0, result.Products[0].StockReal)
		assert.Equal(t, "LAPTOP-HP-001", result.Products[0].Reference)
	})

	t.Run("numeric fields pass through", func(t *testing.T) {
		payload := `{"data":{"master_files":{"products":{"totalCount":1,"nodes":[
			{"product_id": 8, "brand_name": "HP", "base_price": 649.99, "stock_real": 15, "stock_reserved": 3}
		]}}}}`

		result, err := translator.Normalize(model.EntityProducts, []byte(payload))
		require.NoError(t, err)
		require.Len(t, result.Products, 1)
		assert.Equal(t, 649.99, result.Products[0].BasePrice)
		assert.Equal(t, 15, result.Products[0].StockReal)
		assert.Equal(t, 3, result.Products[0].StockReserved)
	})

	t.Run("node without identifier is tagged error", func(t *testing.T) {
		payload := `{"data":{"master_files":{"products":{"totalCount":1,"nodes":[
			{"brand_name": "HP"}
		]}}}}`

		result, err := translator.Normalize(model.EntityProducts, []byte(payload))
		require.NoError(t, err)
		require.Len(t, result.Products, 1)
		assert.Equal(t, model.SyncStatusError, result.Products[0].SyncStatus)
	})
}

func TestNormalizeOrders(t *testing.T) {
	translator := NewTranslator(defaultPaths())

	t.Run("unknown status defaults to pending", func(t *testing.T) {
		payload := `{"data":{"commercial_documents":{"orders":{"totalCount":2,"nodes":[
			{"order_id": 1, "order_number": "PED-2024-001", "status": "weird_state", "total_amount": 100},
			{"order_id": 2, "order_number": "PED-2024-002", "status": "shipped", "total_amount": 50}
		]}}}}`

		result, err := translator.Normalize(model.EntityOrders, []byte(payload))
		require.NoError(t, err)
		require.Len(t, result.Orders, 2)
		assert.Equal(t, model.OrderStatusPending, result.Orders[0].Status)
		assert.Equal(t, model.OrderStatusShipped, result.Orders[1].Status)
	})

	t.Run("amount derived from total when absent", func(t *testing.T) {
		payload := `{"data":{"commercial_documents":{"orders":{"totalCount":1,"nodes":[
			{"order_id": 3, "total_amount": 121, "tax_amount": 21}
		]}}}}`

		result, err := translator.Normalize(model.EntityOrders, []byte(payload))
		require.NoError(t, err)
		require.Len(t, result.Orders, 1)
		assert.Equal(t, float64(100), result.Orders[0].Amount)
		assert.Equal(t, float64(121), result.Orders[0].TotalAmount)
	})
}

func TestNormalizeEdgeCases(t *testing.T) {
	translator := NewTranslator(defaultPaths())

	t.Run("empty nodes is a valid zero-record result", func(t *testing.T) {
		payload := `{"data":{"master_files":{"customers":{"totalCount":0,"nodes":[]}}}}`

		result, err := translator.Normalize(model.EntityCustomers, []byte(payload))
		require.NoError(t, err)
		assert.Empty(t, result.Customers)
		assert.Equal(t, 0, result.TotalCount)
	})

	t.Run("missing nesting is a shape error", func(t *testing.T) {
		payload := `{"data":{"renamed_grouping":{"customers":{"nodes":[]}}}}`

		_, err := translator.Normalize(model.EntityCustomers, []byte(payload))
		assert.ErrorIs(t, err, apperrors.ErrShape)
	})

	t.Run("invalid JSON is a shape error", func(t *testing.T) {
		_, err := translator.Normalize(model.EntityCustomers, []byte("<html>error page</html>"))
		assert.ErrorIs(t, err, apperrors.ErrShape)
	})

	t.Run("legacy REST list shape normalizes", func(t *testing.T) {
		payload := `{"total_entries":1,"page_entries":[
			{"id": 5, "name": "Ana Martínez", "business_name": "Suministros Martínez", "city": "Valencia", "email": "ana@martinez.es"}
		]}`

		result, err := translator.Normalize(model.EntityCustomers, []byte(payload))
		require.NoError(t, err)
		require.Len(t, result.Customers, 1)
		assert.Equal(t, 1, result.TotalCount)
		assert.Equal(t, "customer-5", result.Customers[0].ID)
		assert.Equal(t, "ana@martinez.es", result.Customers[0].Email)
	})
}
