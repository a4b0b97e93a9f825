package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stayease/stayease-api/internal/app/models"
	"github.com/stayease/stayease-api/internal/app/models/dto"
	"github.com/stayease/stayease-api/internal/pkg/apperrors"
)

const (
	defaultOpeningTime = "06:00"
	defaultClosingTime = "22:00"
)

// AmenityService handles shared facilities
type AmenityService struct {
	amenities AmenityStore
	logger    zerolog.Logger
}

// NewAmenityService creates a new AmenityService
func NewAmenityService(amenities AmenityStore, logger zerolog.Logger) *AmenityService {
	return &AmenityService{amenities: amenities, logger: logger}
}

// List returns amenities matching filter
func (s *AmenityService) List(ctx context.Context, filter models.AmenityFilter) ([]*models.Amenity, error) {
	items, err := s.amenities.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.Amenity{}
	}
	return items, nil
}

// Get returns one amenity
func (s *AmenityService) Get(ctx context.Context, id int64) (*models.Amenity, error) {
	return s.amenities.GetByID(ctx, id)
}

// Create adds an amenity
func (s *AmenityService) Create(ctx context.Context, req *dto.CreateAmenityRequest) (*models.Amenity, error) {
	a := &models.Amenity{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Type:        req.Type,
		Status:      req.Status,
		Location:    req.Location,
		OpeningTime: req.OpeningTime,
		ClosingTime: req.ClosingTime,
		Images:      req.Images,
	}
	if a.Status == "" {
		a.Status = models.AmenityAvailable
	}
	if a.OpeningTime == "" {
		a.OpeningTime = defaultOpeningTime
	}
	if a.ClosingTime == "" {
		a.ClosingTime = defaultClosingTime
	}
	if err := validateHours(a); err != nil {
		return nil, err
	}

	if err := s.amenities.Create(ctx, a); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("amenityID", a.ID).Msg("Amenity created")
	return a, nil
}

// Update changes amenity fields
func (s *AmenityService) Update(ctx context.Context, id int64, req *dto.UpdateAmenityRequest) (*models.Amenity, error) {
	a, err := s.amenities.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		a.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		a.Description = *req.Description
	}
	if req.Type != nil {
		a.Type = *req.Type
	}
	if req.Status != nil {
		a.Status = *req.Status
	}
	if req.Location != nil {
		a.Location = *req.Location
	}
	if req.OpeningTime != nil {
		a.OpeningTime = *req.OpeningTime
	}
	if req.ClosingTime != nil {
		a.ClosingTime = *req.ClosingTime
	}
	if req.Images != nil {
		a.Images = req.Images
	}
	if err := validateHours(a); err != nil {
		return nil, err
	}

	if err := s.amenities.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Delete removes an amenity
func (s *AmenityService) Delete(ctx context.Context, id int64) error {
	return s.amenities.Delete(ctx, id)
}

// HH:MM compares correctly as a string
func validateHours(a *models.Amenity) error {
	if a.ClosingTime <= a.OpeningTime {
		return apperrors.NewValidationError("Giờ đóng cửa phải sau giờ mở cửa")
	}
	return nil
}
