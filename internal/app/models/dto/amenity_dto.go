package dto

import "github.com/stayease/stayease-api/internal/app/models"

// CreateAmenityRequest represents a new amenity
type CreateAmenityRequest struct {
	Name        string               `json:"name" binding:"required,max=100"`
	Description string               `json:"description"`
	Type        models.AmenityType   `json:"type" binding:"required,oneof=gym pool parking bbq playground meeting_room other"`
	Status      models.AmenityStatus `json:"status" binding:"omitempty,oneof=available maintenance closed"`
	Location    string               `json:"location"`
	OpeningTime string               `json:"openingTime" binding:"omitempty,hhmm"`
	ClosingTime string               `json:"closingTime" binding:"omitempty,hhmm"`
	Images      []string             `json:"images"`
}

// UpdateAmenityRequest changes amenity fields; nil leaves a field untouched
type UpdateAmenityRequest struct {
	Name        *string               `json:"name" binding:"omitempty,max=100"`
	Description *string               `json:"description"`
	Type        *models.AmenityType   `json:"type" binding:"omitempty,oneof=gym pool parking bbq playground meeting_room other"`
	Status      *models.AmenityStatus `json:"status" binding:"omitempty,oneof=available maintenance closed"`
	Location    *string               `json:"location"`
	OpeningTime *string               `json:"openingTime" binding:"omitempty,hhmm"`
	ClosingTime *string               `json:"closingTime" binding:"omitempty,hhmm"`
	Images      []string              `json:"images"`
}
