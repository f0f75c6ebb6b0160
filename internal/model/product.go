package model

import "time"

type Product struct {
	ID               string     `db:"id" json:"id"`
	GomanageID       string     `db:"gomanage_id" json:"gomanageId"`
	BrandName        string     `db:"brand_name" json:"brandName"`
	Reference        string     `db:"reference" json:"reference"`
	DescriptionShort string     `db:"description_short" json:"descriptionShort"`
	DescriptionLong  string     `db:"description_long" json:"descriptionLong,omitempty"`
	BasePrice        float64    `db:"base_price" json:"basePrice"`
	StockReal        int        `db:"stock_real" json:"stockReal"`
	StockReserved    int        `db:"stock_reserved" json:"stockReserved"`
	Category         string     `db:"category" json:"category,omitempty"`
	SyncStatus       SyncStatus `db:"sync_status" json:"syncStatus"`
	LastSync         *time.Time `db:"last_sync" json:"lastSync,omitempty"`
}
