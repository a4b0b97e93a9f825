package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stayease/stayease-api/internal/app/models"
	"github.com/stayease/stayease-api/internal/app/models/dto"
	"github.com/stayease/stayease-api/internal/pkg/apperrors"
	"github.com/stayease/stayease-api/internal/pkg/helpers"
)

// ApartmentService handles the apartment catalog
type ApartmentService struct {
	tx         Transactor
	apartments ApartmentStore
	users      UserStore
	logger     zerolog.Logger
}

// NewApartmentService creates a new ApartmentService
func NewApartmentService(tx Transactor, apartments ApartmentStore, users UserStore, logger zerolog.Logger) *ApartmentService {
	return &ApartmentService{
		tx:         tx,
		apartments: apartments,
		users:      users,
		logger:     logger,
	}
}

// List returns a page of apartments
func (s *ApartmentService) List(ctx context.Context, filter models.ApartmentFilter) (*dto.ListResponse[*models.Apartment], error) {
	filter.Page, filter.PageSize = helpers.NormalizePage(filter.Page, filter.PageSize)
	items, total, err := s.apartments.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.Apartment{}
	}
	return &dto.ListResponse[*models.Apartment]{
		Items:      items,
		Pagination: helpers.NewPaginationInfo(total, filter.Page, filter.PageSize),
	}, nil
}

// Get returns one apartment
func (s *ApartmentService) Get(ctx context.Context, id int64) (*models.Apartment, error) {
	return s.apartments.GetByID(ctx, id)
}

// Create adds an apartment. New apartments are never occupied.
func (s *ApartmentService) Create(ctx context.Context, req *dto.CreateApartmentRequest) (*models.Apartment, error) {
	if req.Area == nil || !req.Area.IsPositive() {
		return nil, apperrors.NewValidationError("Diện tích phải lớn hơn 0")
	}
	if req.RentPrice == nil || req.RentPrice.IsNegative() {
		return nil, apperrors.NewValidationError("Giá thuê không được âm")
	}

	status := req.Status
	switch status {
	case "":
		status = models.ApartmentAvailable
	case models.ApartmentOccupied:
		return nil, apperrors.ErrApartmentOccupiedManual
	}

	apt := &models.Apartment{
		ApartmentNumber: strings.TrimSpace(req.ApartmentNumber),
		Building:        strings.TrimSpace(req.Building),
		Floor:           req.Floor,
		Area:            *req.Area,
		Bedrooms:        req.Bedrooms,
		Bathrooms:       req.Bathrooms,
		RentPrice:       *req.RentPrice,
		Status:          status,
		Description:     req.Description,
		Images:          req.Images,
	}
	if err := s.apartments.Create(ctx, apt); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("apartmentID", apt.ID).Str("number", apt.ApartmentNumber).Msg("Apartment created")
	return apt, nil
}

// Update changes apartment fields. Status moves between available and maintenance
// only while no resident is linked; occupied is reserved to resident assignment.
func (s *ApartmentService) Update(ctx context.Context, id int64, req *dto.UpdateApartmentRequest) (*models.Apartment, error) {
	var apt *models.Apartment
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		apt, err = s.apartments.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if req.ApartmentNumber != nil {
			apt.ApartmentNumber = strings.TrimSpace(*req.ApartmentNumber)
		}
		if req.Building != nil {
			apt.Building = strings.TrimSpace(*req.Building)
		}
		if req.Floor != nil {
			apt.Floor = *req.Floor
		}
		if req.Area != nil {
			if !req.Area.IsPositive() {
				return apperrors.NewValidationError("Diện tích phải lớn hơn 0")
			}
			apt.Area = *req.Area
		}
		if req.Bedrooms != nil {
			apt.Bedrooms = *req.Bedrooms
		}
		if req.Bathrooms != nil {
			apt.Bathrooms = *req.Bathrooms
		}
		if req.RentPrice != nil {
			if req.RentPrice.IsNegative() {
				return apperrors.NewValidationError("Giá thuê không được âm")
			}
			apt.RentPrice = *req.RentPrice
		}
		if req.Description != nil {
			apt.Description = *req.Description
		}
		if req.Images != nil {
			apt.Images = req.Images
		}

		if req.Status != nil && *req.Status != apt.Status {
			if *req.Status == models.ApartmentOccupied {
				return apperrors.ErrApartmentOccupiedManual
			}
			occupied, err := s.hasResident(ctx, id)
			if err != nil {
				return err
			}
			if occupied {
				return apperrors.ErrApartmentStatusLocked
			}
			apt.Status = *req.Status
		}

		return s.apartments.Update(ctx, apt)
	})
	if err != nil {
		return nil, err
	}
	return apt, nil
}

// Delete removes an apartment without a resident or invoices
func (s *ApartmentService) Delete(ctx context.Context, id int64) error {
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.apartments.GetByIDForUpdate(ctx, id); err != nil {
			return err
		}

		occupied, err := s.hasResident(ctx, id)
		if err != nil {
			return err
		}
		if occupied {
			return apperrors.ErrApartmentHasResident
		}

		hasInvoices, err := s.apartments.HasInvoices(ctx, id)
		if err != nil {
			return err
		}
		if hasInvoices {
			return apperrors.ErrApartmentHasInvoices
		}

		if err := s.apartments.Delete(ctx, id); err != nil {
			return err
		}
		s.logger.Info().Int64("apartmentID", id).Msg("Apartment deleted")
		return nil
	})
}

func (s *ApartmentService) hasResident(ctx context.Context, apartmentID int64) (bool, error) {
	_, err := s.users.GetByApartmentID(ctx, apartmentID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return false, nil
	}
	return false, err
}
