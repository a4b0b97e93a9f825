package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/stayease/stayease-api/internal/app/models"
	"github.com/stayease/stayease-api/internal/app/models/dto"
	"github.com/stayease/stayease-api/internal/pkg/apperrors"
	"github.com/stayease/stayease-api/internal/pkg/auth"
	"github.com/stayease/stayease-api/internal/pkg/helpers"
)

// UserService handles account management and resident assignment
type UserService struct {
	tx         Transactor
	users      UserStore
	apartments ApartmentStore
	invoices   InvoiceStore
	tokens     TokenStore
	logger     zerolog.Logger
	loc        *time.Location
}

// NewUserService creates a new UserService
func NewUserService(tx Transactor, users UserStore, apartments ApartmentStore, invoices InvoiceStore, tokens TokenStore, logger zerolog.Logger) *UserService {
	return &UserService{
		tx:         tx,
		users:      users,
		apartments: apartments,
		invoices:   invoices,
		tokens:     tokens,
		logger:     logger,
		loc:        time.Local,
	}
}

// List returns a page of users
func (s *UserService) List(ctx context.Context, filter models.UserFilter) (*dto.ListResponse[*models.User], error) {
	filter.Page, filter.PageSize = helpers.NormalizePage(filter.Page, filter.PageSize)
	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []*models.User{}
	}
	return &dto.ListResponse[*models.User]{
		Items:      users,
		Pagination: helpers.NewPaginationInfo(total, filter.Page, filter.PageSize),
	}, nil
}

// Get returns one user
func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// Create creates an account of any role. Residents created here have no apartment.
func (s *UserService) Create(ctx context.Context, req *dto.CreateUserRequest) (*models.User, error) {
	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Email:    strings.TrimSpace(req.Email),
		Password: hashed,
		FullName: strings.TrimSpace(req.FullName),
		Phone:    req.Phone,
		Role:     req.Role,
		Status:   models.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userID", user.ID).Str("role", string(user.Role)).Msg("User created")
	return user, nil
}

// Update changes profile fields, role or password
func (s *UserService) Update(ctx context.Context, id int64, req *dto.UpdateUserRequest) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		user.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.AvatarURL != nil {
		user.AvatarURL = req.AvatarURL
	}
	if req.Role != nil && *req.Role != user.Role {
		// A resident leaving the role cannot keep an apartment
		if user.Role == models.RoleResident && user.ApartmentID != nil {
			return nil, apperrors.NewConflictError("Hãy gỡ cư dân khỏi căn hộ trước khi đổi vai trò")
		}
		user.Role = *req.Role
	}
	if req.Password != nil {
		hashed, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("error hashing password: %w", err)
		}
		user.Password = hashed
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateStatus activates or disables an account. Disabling revokes its sessions.
func (s *UserService) UpdateStatus(ctx context.Context, id int64, status models.UserStatus) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Status = status
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	if status != models.UserStatusActive && s.tokens != nil {
		if err := s.tokens.RevokeAllForUser(ctx, id); err != nil {
			s.logger.Warn().Err(err).Int64("userID", id).Msg("Failed to revoke sessions of disabled user")
		}
	}
	return user, nil
}

// Delete removes a user and frees its apartment. Users with invoices are kept.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		user, err := s.users.GetByID(ctx, id)
		if err != nil {
			return err
		}
		return s.deleteLocked(ctx, user)
	})
}

// DeleteResident is Delete restricted to resident accounts
func (s *UserService) DeleteResident(ctx context.Context, id int64) error {
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		user, err := s.users.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if user.Role != models.RoleResident {
			return apperrors.ErrNotAResident
		}
		return s.deleteLocked(ctx, user)
	})
}

func (s *UserService) deleteLocked(ctx context.Context, user *models.User) error {
	hasInvoices, err := s.invoices.ExistsForUser(ctx, user.ID)
	if err != nil {
		return err
	}
	if hasInvoices {
		return apperrors.ErrUserHasInvoices
	}

	if user.ApartmentID != nil {
		if _, err := s.apartments.GetByIDForUpdate(ctx, *user.ApartmentID); err != nil {
			return err
		}
	}
	if err := s.users.Delete(ctx, user.ID); err != nil {
		return err
	}
	if user.ApartmentID != nil {
		if err := s.apartments.UpdateStatus(ctx, *user.ApartmentID, models.ApartmentAvailable); err != nil {
			return err
		}
	}

	s.logger.Info().Int64("userID", user.ID).Msg("User deleted")
	return nil
}

// CreateResident creates a resident and, when an apartment is given, moves them in.
// The apartment must be available; it becomes occupied in the same transaction.
func (s *UserService) CreateResident(ctx context.Context, req *dto.CreateResidentRequest) (*models.User, error) {
	lease, err := s.parseLease(req.LeaseFields, models.Lease{})
	if err != nil {
		return nil, err
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Email:       strings.TrimSpace(req.Email),
		Password:    hashed,
		FullName:    strings.TrimSpace(req.FullName),
		Phone:       req.Phone,
		Role:        models.RoleResident,
		Status:      models.UserStatusActive,
		ApartmentID: req.ApartmentID,
		Lease:       lease,
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if user.ApartmentID != nil {
			if err := s.claimApartment(ctx, *user.ApartmentID); err != nil {
				return err
			}
		}
		return s.users.Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userID", user.ID).Interface("apartmentID", user.ApartmentID).Msg("Resident created")
	return user, nil
}

// UpdateResident updates a resident's profile and lease and moves them between apartments
func (s *UserService) UpdateResident(ctx context.Context, id int64, req *dto.UpdateResidentRequest) (*models.User, error) {
	var user *models.User
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.users.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if user.Role != models.RoleResident {
			return apperrors.ErrNotAResident
		}

		if req.FullName != nil {
			user.FullName = strings.TrimSpace(*req.FullName)
		}
		if req.Phone != nil {
			user.Phone = *req.Phone
		}
		if user.Lease, err = s.parseLease(req.LeaseFields, user.Lease); err != nil {
			return err
		}

		oldApartment := user.ApartmentID
		newApartment := oldApartment
		switch {
		case req.ClearApartment:
			newApartment = nil
		case req.ApartmentID != nil:
			newApartment = req.ApartmentID
		}

		moved := !sameID(oldApartment, newApartment)
		if moved {
			// Both apartment rows stay locked until the user row moves
			if oldApartment != nil {
				if _, err := s.apartments.GetByIDForUpdate(ctx, *oldApartment); err != nil {
					return err
				}
			}
			if newApartment != nil {
				if err := s.claimApartment(ctx, *newApartment); err != nil {
					return err
				}
			}
		}

		user.ApartmentID = newApartment
		if err := s.users.Update(ctx, user); err != nil {
			return err
		}

		if moved && oldApartment != nil {
			if err := s.apartments.UpdateStatus(ctx, *oldApartment, models.ApartmentAvailable); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// claimApartment locks an available apartment and marks it occupied
func (s *UserService) claimApartment(ctx context.Context, apartmentID int64) error {
	apt, err := s.apartments.GetByIDForUpdate(ctx, apartmentID)
	if err != nil {
		return err
	}
	if apt.Status != models.ApartmentAvailable {
		return apperrors.ErrApartmentNotAvailable
	}
	return s.apartments.UpdateStatus(ctx, apartmentID, models.ApartmentOccupied)
}

// parseLease applies the lease fields of a request on top of current
func (s *UserService) parseLease(f dto.LeaseFields, current models.Lease) (models.Lease, error) {
	lease := current
	dates := []struct {
		in  *string
		out **time.Time
	}{
		{f.MoveInDate, &lease.MoveInDate},
		{f.LeaseStart, &lease.LeaseStart},
		{f.LeaseEnd, &lease.LeaseEnd},
	}
	for _, d := range dates {
		if d.in == nil {
			continue
		}
		t, err := helpers.ParseOptionalDate(d.in, s.loc)
		if err != nil {
			return current, apperrors.NewValidationError("Ngày không hợp lệ, định dạng YYYY-MM-DD")
		}
		*d.out = t
	}

	if lease.LeaseStart != nil && lease.LeaseEnd != nil && lease.LeaseEnd.Before(*lease.LeaseStart) {
		return current, apperrors.NewValidationError("Ngày kết thúc hợp đồng phải sau ngày bắt đầu")
	}
	if f.MonthlyRent != nil {
		if f.MonthlyRent.IsNegative() {
			return current, apperrors.NewValidationError("Tiền thuê không được âm")
		}
		lease.MonthlyRent = f.MonthlyRent
	}
	if f.Deposit != nil {
		if f.Deposit.IsNegative() {
			return current, apperrors.NewValidationError("Tiền cọc không được âm")
		}
		lease.Deposit = f.Deposit
	}
	return lease, nil
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
