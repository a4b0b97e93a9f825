package models

import "time"

// Amenity is a shared facility of the building
type Amenity struct {
	ID          int64         `json:"id" db:"id"`
	Name        string        `json:"name" db:"name"`
	Description string        `json:"description" db:"description"`
	Type        AmenityType   `json:"type" db:"type"`
	Status      AmenityStatus `json:"status" db:"status"`
	Location    string        `json:"location" db:"location"`
	OpeningTime string        `json:"openingTime" db:"opening_time"`
	ClosingTime string        `json:"closingTime" db:"closing_time"`
	Images      []string      `json:"images" db:"images"`
	CreatedAt   time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time     `json:"updatedAt" db:"updated_at"`
}

// AmenityFilter narrows amenity listings
type AmenityFilter struct {
	Type   *AmenityType
	Status *AmenityStatus
}
