package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Apartment is a rentable unit
type Apartment struct {
	ID              int64           `json:"id" db:"id"`
	ApartmentNumber string          `json:"apartmentNumber" db:"apartment_number"`
	Building        string          `json:"building" db:"building"`
	Floor           int             `json:"floor" db:"floor"`
	Area            decimal.Decimal `json:"area" db:"area"`
	Bedrooms        int             `json:"bedrooms" db:"bedrooms"`
	Bathrooms       int             `json:"bathrooms" db:"bathrooms"`
	RentPrice       decimal.Decimal `json:"rentPrice" db:"rent_price"`
	Status          ApartmentStatus `json:"status" db:"status"`
	Description     string          `json:"description" db:"description"`
	Images          []string        `json:"images" db:"images"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`
}

// ApartmentFilter narrows apartment listings
type ApartmentFilter struct {
	Status   *ApartmentStatus
	Building string
	Floor    *int
	Search   string
	Page     int
	PageSize int
}
