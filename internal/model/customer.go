package model

import "time"

type Customer struct {
	ID           string     `db:"id" json:"id"`
	GomanageID   string     `db:"gomanage_id" json:"gomanageId"`
	Name         string     `db:"name" json:"name"`
	BusinessName string     `db:"business_name" json:"businessName"`
	VatNumber    string     `db:"vat_number" json:"vatNumber,omitempty"`
	Email        string     `db:"email" json:"email"`
	Phone        string     `db:"phone" json:"phone,omitempty"`
	StreetName   string     `db:"street_name" json:"streetName,omitempty"`
	PostalCode   string     `db:"postal_code" json:"postalCode,omitempty"`
	City         string     `db:"city" json:"city,omitempty"`
	Province     string     `db:"province" json:"province,omitempty"`
	Country      string     `db:"country" json:"country,omitempty"`
	SyncStatus   SyncStatus `db:"sync_status" json:"syncStatus"`
	LastSync     *time.Time `db:"last_sync" json:"lastSync,omitempty"`
}
