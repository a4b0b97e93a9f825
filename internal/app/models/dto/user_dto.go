package dto

import (
	"github.com/shopspring/decimal"
	"github.com/stayease/stayease-api/internal/app/models"
)

// LeaseFields are the lease terms of a resident. Dates are YYYY-MM-DD.
type LeaseFields struct {
	MoveInDate  *string          `json:"moveInDate" binding:"omitempty,isodate"`
	LeaseStart  *string          `json:"leaseStart" binding:"omitempty,isodate"`
	LeaseEnd    *string          `json:"leaseEnd" binding:"omitempty,isodate"`
	MonthlyRent *decimal.Decimal `json:"monthlyRent"`
	Deposit     *decimal.Decimal `json:"deposit"`
}

// CreateUserRequest is an admin-created account of any role
type CreateUserRequest struct {
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,min=8,max=72"`
	FullName string      `json:"fullName" binding:"required,min=2,max=100"`
	Phone    string      `json:"phone" binding:"omitempty,vnphone"`
	Role     models.Role `json:"role" binding:"required,oneof=admin staff resident"`
}

// UpdateUserRequest changes profile fields; nil leaves a field untouched
type UpdateUserRequest struct {
	FullName  *string      `json:"fullName" binding:"omitempty,min=2,max=100"`
	Phone     *string      `json:"phone" binding:"omitempty,vnphone"`
	AvatarURL *string      `json:"avatarUrl"`
	Role      *models.Role `json:"role" binding:"omitempty,oneof=admin staff resident"`
	Password  *string      `json:"password" binding:"omitempty,min=8,max=72"`
}

// UpdateUserStatusRequest activates or disables an account
type UpdateUserStatusRequest struct {
	Status models.UserStatus `json:"status" binding:"required,oneof=active inactive suspended"`
}

// CreateResidentRequest creates a resident and optionally moves them into an apartment
type CreateResidentRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8,max=72"`
	FullName    string `json:"fullName" binding:"required,min=2,max=100"`
	Phone       string `json:"phone" binding:"omitempty,vnphone"`
	ApartmentID *int64 `json:"apartmentId" binding:"omitempty,min=1"`
	LeaseFields
}

// UpdateResidentRequest updates a resident. ApartmentID moves the resident,
// ClearApartment unlinks them.
type UpdateResidentRequest struct {
	FullName       *string `json:"fullName" binding:"omitempty,min=2,max=100"`
	Phone          *string `json:"phone" binding:"omitempty,vnphone"`
	ApartmentID    *int64  `json:"apartmentId" binding:"omitempty,min=1"`
	ClearApartment bool    `json:"clearApartment"`
	LeaseFields
}
