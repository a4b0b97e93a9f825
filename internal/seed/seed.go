package seed

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stayease/stayease-api/internal/app/models"
	"github.com/stayease/stayease-api/internal/app/models/dto"
	"github.com/stayease/stayease-api/internal/app/services"
	"github.com/stayease/stayease-api/internal/pkg/apperrors"
)

// Services are the write paths the seed goes through, so seeded rows pass the same rules as API input
type Services struct {
	Users      *services.UserService
	Apartments *services.ApartmentService
	Amenities  *services.AmenityService
}

// EnsureAdmin creates the bootstrap administrator unless the email is taken.
// An empty email or password disables it.
func EnsureAdmin(ctx context.Context, users *services.UserService, email, password string, lgr zerolog.Logger) error {
	if email == "" || password == "" {
		lgr.Debug().Msg("Seed admin not configured, skipping")
		return nil
	}

	admin, err := users.Create(ctx, &dto.CreateUserRequest{
		Email:    email,
		Password: password,
		FullName: "Quản trị viên",
		Role:     models.RoleAdmin,
	})
	if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
		lgr.Info().Str("email", email).Msg("Admin user already exists, skipping creation")
		return nil
	}
	if err != nil {
		lgr.Error().Err(err).Msg("Error creating admin user")
		return err
	}
	lgr.Info().Int64("adminID", admin.ID).Msg("Default admin user created successfully")
	return nil
}

type sampleApartment struct {
	number    string
	building  string
	floor     int
	area      int64
	bedrooms  int
	bathrooms int
	rent      int64
}

var sampleApartments = []sampleApartment{
	{"A-101", "A", 1, 55, 1, 1, 4_500_000},
	{"A-102", "A", 1, 70, 2, 1, 6_000_000},
	{"A-201", "A", 2, 70, 2, 2, 6_500_000},
	{"B-301", "B", 3, 95, 3, 2, 9_000_000},
}

var sampleAmenities = []dto.CreateAmenityRequest{
	{Name: "Phòng gym", Type: models.AmenityGym, Location: "Tầng 1, tòa A", OpeningTime: "05:30", ClosingTime: "22:00"},
	{Name: "Hồ bơi", Type: models.AmenityPool, Location: "Tầng thượng, tòa B", OpeningTime: "06:00", ClosingTime: "21:00"},
	{Name: "Bãi đỗ xe", Type: models.AmenityParking, Location: "Tầng hầm B1"},
}

// CreateDefaultData seeds the admin plus a few apartments and amenities.
// Rows that already exist are skipped; other failures are collected.
func CreateDefaultData(ctx context.Context, s Services, adminEmail, adminPassword string, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data...")
	var finalErr error

	if err := EnsureAdmin(ctx, s.Users, adminEmail, adminPassword, lgr); err != nil {
		finalErr = errors.Join(finalErr, err)
	}

	for _, a := range sampleApartments {
		area, rent := decimal.NewFromInt(a.area), decimal.NewFromInt(a.rent)
		_, err := s.Apartments.Create(ctx, &dto.CreateApartmentRequest{
			ApartmentNumber: a.number,
			Building:        a.building,
			Floor:           a.floor,
			Area:            &area,
			Bedrooms:        a.bedrooms,
			Bathrooms:       a.bathrooms,
			RentPrice:       &rent,
		})
		if err != nil && !errors.Is(err, apperrors.ErrApartmentAlreadyExists) {
			lgr.Error().Err(err).Str("apartment", a.number).Msg("Error creating apartment")
			finalErr = errors.Join(finalErr, err)
		}
	}

	existing, err := s.Amenities.List(ctx, models.AmenityFilter{})
	if err != nil {
		return errors.Join(finalErr, err)
	}
	names := make(map[string]bool, len(existing))
	for _, a := range existing {
		names[a.Name] = true
	}
	for i := range sampleAmenities {
		req := sampleAmenities[i]
		if names[req.Name] {
			continue
		}
		if _, err := s.Amenities.Create(ctx, &req); err != nil {
			lgr.Error().Err(err).Str("amenity", req.Name).Msg("Error creating amenity")
			finalErr = errors.Join(finalErr, err)
		}
	}

	lgr.Info().Msg("Default data check/creation finished.")
	return finalErr
}
