// Package query maps logical entities to the upstream call shape and
// normalizes the heterogeneous responses into canonical records. It is
// pure: no I/O, same payload in means same records out.
package query

import (
	"strings"

	"github.com/buyled/gomanage-relay/internal/model"
)

type Kind string

const (
	KindGraphQL Kind = "graphql"
	KindREST    Kind = "rest"
)

// TransportPlan tells the dispatcher how to reach one entity upstream.
type TransportPlan struct {
	Kind           Kind
	Document       string
	Variables      map[string]any
	Path           string
	CollectionPath string
}

// CollectionPaths are the gjson paths to each entity's {totalCount, nodes}
// collection. Configuration, because the upstream schema nesting drifts.
type CollectionPaths struct {
	Customers string
	Products  string
	Orders    string
}

const (
	customersDocument = `
query GetAllCustomers($first: Int!, $offset: Int!) {
  master_files {
    customers(
      where: { key: { customer_ambit: { equals: 0 } } }
      first: $first
      offset: $offset
      order: { customer_id: ASC }
    ) {
      totalCount
      nodes {
        customer_id
        name
        business_name
        vat_number
        street_name
        street_number
        postal_code
        city
        province_id
        country_id
        customer_branches {
          email
          phone
        }
      }
    }
  }
}`

	productsDocument = `
query GetAllProducts($first: Int!, $offset: Int!) {
  master_files {
    products(
      first: $first
      offset: $offset
      order: { product_id: ASC }
    ) {
      totalCount
      nodes {
        product_id
        brand_name
        reference
        description_short
        description_long
        base_price
        stock_real
        stock_reserved
        category_id
      }
    }
  }
}`

	ordersDocument = `
query GetAllOrders($first: Int!, $offset: Int!) {
  commercial_documents {
    orders(
      first: $first
      offset: $offset
      order: { order_id: DESC }
    ) {
      totalCount
      nodes {
        order_id
        order_number
        reference
        order_date
        status
        customer_name
        total_amount
        tax_amount
        shipping_cost
      }
    }
  }
}`
)

// Page sizes match what the upstream tolerates per query.
const (
	customersPageSize = 2000
	productsPageSize  = 2000
	ordersPageSize    = 1000
)

type Translator struct {
	paths CollectionPaths
}

func NewTranslator(paths CollectionPaths) *Translator {
	return &Translator{paths: paths}
}

// Resolve picks the logical entity named by an endpoint hint, e.g.
// "/gomanage/web/data/apitmt-customers/List" selects customers.
func (t *Translator) Resolve(endpoint string) (model.Entity, bool) {
	switch {
	case strings.Contains(endpoint, "customers"):
		return model.EntityCustomers, true
	case strings.Contains(endpoint, "products"):
		return model.EntityProducts, true
	case strings.Contains(endpoint, "orders"):
		return model.EntityOrders, true
	default:
		return "", false
	}
}

// Plan returns the upstream call shape for an entity. All three entities
// prefer GraphQL; REST list paths remain available via PlanREST for
// endpoints the GraphQL schema does not cover.
func (t *Translator) Plan(entity model.Entity) TransportPlan {
	switch entity {
	case model.EntityCustomers:
		return TransportPlan{
			Kind:           KindGraphQL,
			Document:       customersDocument,
			Variables:      map[string]any{"first": customersPageSize, "offset": 0},
			CollectionPath: t.paths.Customers,
		}
	case model.EntityProducts:
		return TransportPlan{
			Kind:           KindGraphQL,
			Document:       productsDocument,
			Variables:      map[string]any{"first": productsPageSize, "offset": 0},
			CollectionPath: t.paths.Products,
		}
	case model.EntityOrders:
		return TransportPlan{
			Kind:           KindGraphQL,
			Document:       ordersDocument,
			Variables:      map[string]any{"first": ordersPageSize, "offset": 0},
			CollectionPath: t.paths.Orders,
		}
	default:
		return TransportPlan{Kind: KindREST, Path: string(entity)}
	}
}

// PlanREST returns the legacy apitmt list path for an entity.
func (t *Translator) PlanREST(entity model.Entity) TransportPlan {
	return TransportPlan{
		Kind: KindREST,
		Path: "/gomanage/web/data/apitmt-" + string(entity) + "/List",
	}
}
