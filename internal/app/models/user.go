package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is an admin, staff member or resident. Residents optionally live in one apartment.
type User struct {
	ID          int64      `json:"id" db:"id"`
	Email       string     `json:"email" db:"email"`
	Password    string     `json:"-" db:"password"`
	FullName    string     `json:"fullName" db:"full_name"`
	Phone       string     `json:"phone" db:"phone"`
	AvatarURL   *string    `json:"avatarUrl,omitempty" db:"avatar_url"`
	Role        Role       `json:"role" db:"role"`
	Status      UserStatus `json:"status" db:"status"`
	ApartmentID *int64     `json:"apartmentId,omitempty" db:"apartment_id"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`

	Lease
}

// Lease holds the resident's tenancy terms
type Lease struct {
	MoveInDate  *time.Time       `json:"moveInDate,omitempty" db:"move_in_date"`
	LeaseStart  *time.Time       `json:"leaseStart,omitempty" db:"lease_start"`
	LeaseEnd    *time.Time       `json:"leaseEnd,omitempty" db:"lease_end"`
	MonthlyRent *decimal.Decimal `json:"monthlyRent,omitempty" db:"monthly_rent"`
	Deposit     *decimal.Decimal `json:"deposit,omitempty" db:"deposit"`
}

// IsActive reports whether the user may sign in
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// UserFilter narrows user listings
type UserFilter struct {
	Role     *Role
	Status   *UserStatus
	Search   string
	Page     int
	PageSize int
}

// RefreshToken is a server-side refresh token record
type RefreshToken struct {
	Token     string    `db:"token"`
	UserID    int64     `db:"user_id"`
	ExpiresAt time.Time `db:"expires_at"`
	Revoked   bool      `db:"revoked"`
	CreatedAt time.Time `db:"created_at"`
}
