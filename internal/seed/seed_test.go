package seed

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayease/stayease-api/internal/app/models"
	"github.com/stayease/stayease-api/internal/app/services"
	"github.com/stayease/stayease-api/internal/testutil/memstore"
)

func newServices() (Services, *memstore.DB) {
	db := memstore.New()
	log := zerolog.Nop()
	return Services{
		Users:      services.NewUserService(db, db.Users, db.Apartments, db.Invoices, db.Tokens, log),
		Apartments: services.NewApartmentService(db, db.Apartments, db.Users, log),
		Amenities:  services.NewAmenityService(db.Amenities, log),
	}, db
}

func TestCreateDefaultData_Idempotent(t *testing.T) {
	ctx := context.Background()
	s, db := newServices()

	for i := 0; i < 2; i++ {
		require.NoError(t, CreateDefaultData(ctx, s, "admin@stayease.vn", "Admin@12345", zerolog.Nop()))
	}

	admins, err := db.Users.CountByRole(ctx, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), admins)

	counts, err := db.Apartments.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(sampleApartments)), counts[models.ApartmentAvailable])

	amenities, err := s.Amenities.List(ctx, models.AmenityFilter{})
	require.NoError(t, err)
	assert.Len(t, amenities, len(sampleAmenities))
}

func TestEnsureAdmin_Disabled(t *testing.T) {
	ctx := context.Background()
	s, db := newServices()

	require.NoError(t, EnsureAdmin(ctx, s.Users, "", "", zerolog.Nop()))
	n, err := db.Users.CountByRole(ctx, models.RoleAdmin)
	require.NoError(t, err)
	assert.Zero(t, n)
}
