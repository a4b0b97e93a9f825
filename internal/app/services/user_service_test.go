package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayease/stayease-api/internal/app/models"
	"github.com/stayease/stayease-api/internal/app/models/dto"
	"github.com/stayease/stayease-api/internal/pkg/apperrors"
)

func residentRequest(email string, aptID *int64) *dto.CreateResidentRequest {
	return &dto.CreateResidentRequest{
		Email:       email,
		Password:    "password123",
		FullName:    "Nguyễn Văn A",
		ApartmentID: aptID,
	}
}

func TestUserService_CreateResident_OccupiesApartment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	apt := f.apartment(t)

	u, err := f.users.CreateResident(ctx, residentRequest("a@stayease.vn", &apt.ID))
	require.NoError(t, err)
	assert.Equal(t, models.RoleResident, u.Role)

	got, err := f.apartments.Get(ctx, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApartmentOccupied, got.Status)

	_, err = f.users.CreateResident(ctx, residentRequest("b@stayease.vn", &apt.ID))
	assert.ErrorIs(t, err, apperrors.ErrApartmentNotAvailable)

	// the failed assignment left nothing behind
	_, err = f.db.Users.GetByEmail(ctx, "b@stayease.vn")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestUserService_CreateResident_DuplicateEmailRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first, second := f.apartment(t), f.apartment(t)

	_, err := f.users.CreateResident(ctx, residentRequest("dup@stayease.vn", &first.ID))
	require.NoError(t, err)
	_, err = f.users.CreateResident(ctx, residentRequest("DUP@stayease.vn", &second.ID))
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)

	got, err := f.apartments.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApartmentAvailable, got.Status)
}

func TestUserService_CreateResident_MaintenanceApartment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	apt := f.apartment(t)
	maintenance := models.ApartmentMaintenance
	_, err := f.apartments.Update(ctx, apt.ID, &dto.UpdateApartmentRequest{Status: &maintenance})
	require.NoError(t, err)

	_, err = f.users.CreateResident(ctx, residentRequest("m@stayease.vn", &apt.ID))
	assert.ErrorIs(t, err, apperrors.ErrApartmentNotAvailable)
}

func TestUserService_UpdateResident_Moves(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	resident, oldHome := f.resident(t)
	newHome := f.apartment(t)

	u, err := f.users.UpdateResident(ctx, resident.UserID, &dto.UpdateResidentRequest{ApartmentID: &newHome.ID})
	require.NoError(t, err)
	require.NotNil(t, u.ApartmentID)
	assert.Equal(t, newHome.ID, *u.ApartmentID)

	old, _ := f.apartments.Get(ctx, oldHome.ID)
	cur, _ := f.apartments.Get(ctx, newHome.ID)
	assert.Equal(t, models.ApartmentAvailable, old.Status)
	assert.Equal(t, models.ApartmentOccupied, cur.Status)

	// moving into a taken apartment changes nothing
	_, taken := f.resident(t)
	_, err = f.users.UpdateResident(ctx, resident.UserID, &dto.UpdateResidentRequest{ApartmentID: &taken.ID})
	assert.ErrorIs(t, err, apperrors.ErrApartmentNotAvailable)
	cur, _ = f.apartments.Get(ctx, newHome.ID)
	assert.Equal(t, models.ApartmentOccupied, cur.Status)

	u, err = f.users.UpdateResident(ctx, resident.UserID, &dto.UpdateResidentRequest{ClearApartment: true})
	require.NoError(t, err)
	assert.Nil(t, u.ApartmentID)
	cur, _ = f.apartments.Get(ctx, newHome.ID)
	assert.Equal(t, models.ApartmentAvailable, cur.Status)
}

func TestUserService_UpdateResident_LeaseValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	resident, _ := f.resident(t)

	start, end := "2026-06-01", "2026-01-01"
	_, err := f.users.UpdateResident(ctx, resident.UserID, &dto.UpdateResidentRequest{
		LeaseFields: dto.LeaseFields{LeaseStart: &start, LeaseEnd: &end},
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	end = "2027-05-31"
	u, err := f.users.UpdateResident(ctx, resident.UserID, &dto.UpdateResidentRequest{
		LeaseFields: dto.LeaseFields{LeaseStart: &start, LeaseEnd: &end},
	})
	require.NoError(t, err)
	require.NotNil(t, u.LeaseEnd)
	assert.Equal(t, 2027, u.LeaseEnd.Year())

	staff := f.staff(t)
	_, err = f.users.UpdateResident(ctx, staff.UserID, &dto.UpdateResidentRequest{})
	assert.ErrorIs(t, err, apperrors.ErrNotAResident)
}

func TestUserService_DeleteResident(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)

	resident, home := f.resident(t)
	require.NoError(t, f.users.DeleteResident(ctx, resident.UserID))
	got, _ := f.apartments.Get(ctx, home.ID)
	assert.Equal(t, models.ApartmentAvailable, got.Status)

	billed, billedHome := f.resident(t)
	f.invoice(t, admin, billed, billedHome.ID, 2_000_000)
	assert.ErrorIs(t, f.users.DeleteResident(ctx, billed.UserID), apperrors.ErrUserHasInvoices)
	got, _ = f.apartments.Get(ctx, billedHome.ID)
	assert.Equal(t, models.ApartmentOccupied, got.Status)

	assert.ErrorIs(t, f.users.DeleteResident(ctx, admin.UserID), apperrors.ErrNotAResident)
}

func TestUserService_RoleChangeBlockedWhileHoused(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	resident, _ := f.resident(t)

	staff := models.RoleStaff
	_, err := f.users.Update(ctx, resident.UserID, &dto.UpdateUserRequest{Role: &staff})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestUserService_DisableRevokesSessions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.auth.Register(ctx, &dto.RegisterRequest{Email: "r@stayease.vn", Password: "password123", FullName: "Trần B"})
	require.NoError(t, err)

	_, err = f.users.UpdateStatus(ctx, resp.User.ID, models.UserStatusSuspended)
	require.NoError(t, err)

	_, err = f.auth.Refresh(ctx, resp.Token.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)
}
