package model

import "time"

type Order struct {
	ID           string      `db:"id" json:"id"`
	GomanageID   string      `db:"gomanage_id" json:"gomanageId"`
	OrderNumber  string      `db:"order_number" json:"orderNumber"`
	Reference    string      `db:"reference" json:"reference,omitempty"`
	OrderDate    string      `db:"order_date" json:"date,omitempty"`
	Status       OrderStatus `db:"status" json:"status"`
	CustomerName string      `db:"customer_name" json:"customerName"`
	Amount       float64     `db:"amount" json:"amount"`
	TaxAmount    float64     `db:"tax_amount" json:"taxAmount"`
	ShippingCost float64     `db:"shipping_cost" json:"shippingCost"`
	TotalAmount  float64     `db:"total_amount" json:"totalAmount"`
	SyncStatus   SyncStatus  `db:"sync_status" json:"syncStatus"`
	LastSync     *time.Time  `db:"last_sync" json:"lastSync,omitempty"`
}
