package models

import "github.com/shopspring/decimal"

func init() {
	// Amounts go over the wire as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// Role defines the user role
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStaff    Role = "staff"
	RoleResident Role = "resident"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleResident:
		return true
	}
	return false
}

// UserStatus defines whether an account may sign in
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusInactive  UserStatus = "inactive"
	UserStatusSuspended UserStatus = "suspended"
)

// ApartmentStatus mirrors resident linkage: occupied iff a resident references the apartment
type ApartmentStatus string

const (
	ApartmentAvailable   ApartmentStatus = "available"
	ApartmentOccupied    ApartmentStatus = "occupied"
	ApartmentMaintenance ApartmentStatus = "maintenance"
)

// AmenityType classifies shared facilities
type AmenityType string

const (
	AmenityGym         AmenityType = "gym"
	AmenityPool        AmenityType = "pool"
	AmenityParking     AmenityType = "parking"
	AmenityBBQ         AmenityType = "bbq"
	AmenityPlayground  AmenityType = "playground"
	AmenityMeetingRoom AmenityType = "meeting_room"
	AmenityOther       AmenityType = "other"
)

// AmenityStatus is the operating state of an amenity
type AmenityStatus string

const (
	AmenityAvailable   AmenityStatus = "available"
	AmenityMaintenance AmenityStatus = "maintenance"
	AmenityClosed      AmenityStatus = "closed"
)
