package dto

import (
	"github.com/shopspring/decimal"
	"github.com/stayease/stayease-api/internal/app/models"
)

// CreateApartmentRequest represents a new apartment
type CreateApartmentRequest struct {
	ApartmentNumber string                 `json:"apartmentNumber" binding:"required,max=20"`
	Building        string                 `json:"building" binding:"required,max=50"`
	Floor           int                    `json:"floor" binding:"gte=0"`
	Area            *decimal.Decimal       `json:"area" binding:"required"`
	Bedrooms        int                    `json:"bedrooms" binding:"gte=0"`
	Bathrooms       int                    `json:"bathrooms" binding:"gte=0"`
	RentPrice       *decimal.Decimal       `json:"rentPrice" binding:"required"`
	Status          models.ApartmentStatus `json:"status" binding:"omitempty,oneof=available maintenance"`
	Description     string                 `json:"description"`
	Images          []string               `json:"images"`
}

// UpdateApartmentRequest changes apartment fields; nil leaves a field untouched
type UpdateApartmentRequest struct {
	ApartmentNumber *string                 `json:"apartmentNumber" binding:"omitempty,max=20"`
	Building        *string                 `json:"building" binding:"omitempty,max=50"`
	Floor           *int                    `json:"floor" binding:"omitempty,gte=0"`
	Area            *decimal.Decimal        `json:"area"`
	Bedrooms        *int                    `json:"bedrooms" binding:"omitempty,gte=0"`
	Bathrooms       *int                    `json:"bathrooms" binding:"omitempty,gte=0"`
	RentPrice       *decimal.Decimal        `json:"rentPrice"`
	Status          *models.ApartmentStatus `json:"status" binding:"omitempty,oneof=available occupied maintenance"`
	Description     *string                 `json:"description"`
	Images          []string                `json:"images"`
}
