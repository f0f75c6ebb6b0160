package query

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	apperrors "github.com/buyled/gomanage-relay/internal/errors"
	"github.com/buyled/gomanage-relay/internal/model"
)

// Result is a normalized record set for one entity. Exactly one of the
// slices is populated, matching Entity.
type Result struct {
	Entity     model.Entity
	TotalCount int
	Customers  []model.Customer
	Products   []model.Product
	Orders     []model.Order
}

// Len returns the number of normalized records.
func (r *Result) Len() int {
	return len(r.Customers) + len(r.Products) + len(r.Orders)
}

// Records returns the populated slice for JSON encoding.
func (r *Result) Records() any {
	switch r.Entity {
	case model.EntityCustomers:
		return r.Customers
	case model.EntityProducts:
		return r.Products
	default:
		return r.Orders
	}
}

// Normalize turns a raw upstream payload into canonical records. It
// understands the GraphQL {totalCount, nodes} collection at the entity's
// configured path and the legacy REST {total_entries, page_entries} list.
// A payload matching neither is ErrShape; the caller degrades to an empty
// result rather than failing the request. An empty nodes array is a valid
// zero-record success.
func (t *Translator) Normalize(entity model.Entity, raw []byte) (*Result, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%w: payload is not valid JSON", apperrors.ErrShape)
	}

	plan := t.Plan(entity)
	root := gjson.GetBytes(raw, plan.CollectionPath)
	if root.Exists() {
		return normalizeCollection(entity, root.Get("totalCount"), root.Get("nodes")), nil
	}

	if legacy := gjson.GetBytes(raw, "page_entries"); legacy.Exists() {
		return normalizeCollection(entity, gjson.GetBytes(raw, "total_entries"), legacy), nil
	}

	return nil, fmt.Errorf("%w: no collection at %q for %s", apperrors.ErrShape, plan.CollectionPath, entity)
}

func normalizeCollection(entity model.Entity, total, nodes gjson.Result) *Result {
	result := &Result{
		Entity:     entity,
		TotalCount: int(total.Int()),
	}

	switch entity {
	case model.EntityCustomers:
		result.Customers = []model.Customer{}
		nodes.ForEach(func(_, node gjson.Result) bool {
			result.Customers = append(result.Customers, normalizeCustomer(node))
			return true
		})
	case model.EntityProducts:
		result.Products = []model.Product{}
		nodes.ForEach(func(_, node gjson.Result) bool {
			result.Products = append(result.Products, normalizeProduct(node))
			return true
		})
	case model.EntityOrders:
		result.Orders = []model.Order{}
		nodes.ForEach(func(_, node gjson.Result) bool {
			result.Orders = append(result.Orders, normalizeOrder(node))
			return true
		})
	}

	return result
}

// Missing string fields default to empty, numeric fields to 0 (gjson
// yields 0 for absent or non-numeric values), unknown order statuses to
// pending. A record without an upstream identifier is tagged error.

func normalizeCustomer(node gjson.Result) model.Customer {
	id := firstNonEmpty(node.Get("customer_id").String(), node.Get("id").String())

	c := model.Customer{
		ID:           recordID(model.EntityCustomers, id),
		GomanageID:   id,
		Name:         node.Get("name").String(),
		BusinessName: node.Get("business_name").String(),
		VatNumber:    node.Get("vat_number").String(),
		Email:        firstNonEmpty(node.Get("customer_branches.0.email").String(), node.Get("email").String()),
		Phone:        firstNonEmpty(node.Get("customer_branches.0.phone").String(), node.Get("phone").String()),
		StreetName:   node.Get("street_name").String(),
		PostalCode:   node.Get("postal_code").String(),
		City:         node.Get("city").String(),
		Province:     node.Get("province_id").String(),
		Country:      node.Get("country_id").String(),
		SyncStatus:   model.SyncStatusSynced,
	}
	if c.GomanageID == "" {
		c.SyncStatus = model.SyncStatusError
	}
	return c
}

func normalizeProduct(node gjson.Result) model.Product {
	id := firstNonEmpty(node.Get("product_id").String(), node.Get("id").String())

	p := model.Product{
		ID:               recordID(model.EntityProducts, id),
		GomanageID:       id,
		BrandName:        node.Get("brand_name").String(),
		Reference:        node.Get("reference").String(),
		DescriptionShort: node.Get("description_short").String(),
		DescriptionLong:  node.Get("description_long").String(),
		BasePrice:        node.Get("base_price").Float(),
		StockReal:        int(node.Get("stock_real").Int()),
		StockReserved:    int(node.Get("stock_reserved").Int()),
		Category:         node.Get("category_id").String(),
		SyncStatus:       model.SyncStatusSynced,
	}
	if p.GomanageID == "" {
		p.SyncStatus = model.SyncStatusError
	}
	return p
}

func normalizeOrder(node gjson.Result) model.Order {
	id := firstNonEmpty(node.Get("order_id").String(), node.Get("id").String())

	o := model.Order{
		ID:           recordID(model.EntityOrders, id),
		GomanageID:   id,
		OrderNumber:  node.Get("order_number").String(),
		Reference:    node.Get("reference").String(),
		OrderDate:    node.Get("order_date").String(),
		Status:       model.ParseOrderStatus(node.Get("status").String()),
		CustomerName: node.Get("customer_name").String(),
		Amount:       node.Get("amount").Float(),
		TaxAmount:    node.Get("tax_amount").Float(),
		ShippingCost: node.Get("shipping_cost").Float(),
		TotalAmount:  node.Get("total_amount").Float(),
		SyncStatus:   model.SyncStatusSynced,
	}
	if o.TotalAmount == 0 && o.Amount != 0 {
		o.TotalAmount = o.Amount + o.TaxAmount + o.ShippingCost
	}
	if o.Amount == 0 && o.TotalAmount != 0 {
		o.Amount = o.TotalAmount - o.TaxAmount - o.ShippingCost
	}
	if o.GomanageID == "" {
		o.SyncStatus = model.SyncStatusError
	}
	return o
}

func recordID(entity model.Entity, upstreamID string) string {
	if upstreamID == "" {
		return ""
	}
	return fmt.Sprintf("%s-%s", strings.TrimSuffix(string(entity), "s"), upstreamID)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
