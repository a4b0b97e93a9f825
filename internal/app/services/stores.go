package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stayease/stayease-api/internal/app/models"
)

// Transactor runs fn in one database transaction carried by ctx
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserStore persists users
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByApartmentID(ctx context.Context, apartmentID int64) (*models.User, error)
	Update(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter models.UserFilter) ([]*models.User, int64, error)
	UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error
	CountByRole(ctx context.Context, role models.Role) (int64, error)
}

// TokenStore persists refresh tokens
type TokenStore interface {
	Create(ctx context.Context, t *models.RefreshToken) error
	Get(ctx context.Context, token string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, token string) error
	RevokeAllForUser(ctx context.Context, userID int64) error
	CleanupExpired(ctx context.Context, now time.Time) (int64, error)
}

// ApartmentStore persists apartments
type ApartmentStore interface {
	Create(ctx context.Context, a *models.Apartment) error
	GetByID(ctx context.Context, id int64) (*models.Apartment, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Apartment, error)
	Update(ctx context.Context, a *models.Apartment) error
	UpdateStatus(ctx context.Context, id int64, status models.ApartmentStatus) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter models.ApartmentFilter) ([]*models.Apartment, int64, error)
	CountByStatus(ctx context.Context) (map[models.ApartmentStatus]int64, error)
	HasInvoices(ctx context.Context, id int64) (bool, error)
}

// AmenityStore persists amenities
type AmenityStore interface {
	Create(ctx context.Context, a *models.Amenity) error
	GetByID(ctx context.Context, id int64) (*models.Amenity, error)
	Update(ctx context.Context, a *models.Amenity) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter models.AmenityFilter) ([]*models.Amenity, error)
}

// InvoiceStore persists invoices and aggregates them
type InvoiceStore interface {
	NextNumber(ctx context.Context, issued time.Time) (string, error)
	Create(ctx context.Context, inv *models.Invoice) error
	GetByID(ctx context.Context, id int64) (*models.Invoice, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Invoice, error)
	List(ctx context.Context, filter models.InvoiceFilter) ([]*models.Invoice, int64, error)
	UpdateStatus(ctx context.Context, id int64, status models.InvoiceStatus, paidDate *time.Time) error
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)
	ExistsForUser(ctx context.Context, userID int64) (bool, error)
	PaidTotalsByMonth(ctx context.Context, from, to time.Time) (map[int]decimal.Decimal, error)
	PaidTotalsByType(ctx context.Context, from, to time.Time) (map[models.InvoiceType]decimal.Decimal, error)
	Summary(ctx context.Context, userID *int64) (models.InvoiceSummary, error)
}

// TransactionStore persists payment transactions
type TransactionStore interface {
	Create(ctx context.Context, t *models.Transaction) error
	GetByCode(ctx context.Context, code string) (*models.Transaction, error)
	GetByCodeForUpdate(ctx context.Context, code string) (*models.Transaction, error)
	Complete(ctx context.Context, id int64, paidAt time.Time, note string) error
	UpdateStatus(ctx context.Context, id int64, status models.TransactionStatus) error
	CancelPending(ctx context.Context, invoiceID, exceptID int64) (int64, error)
	List(ctx context.Context, filter models.TransactionFilter) ([]*models.Transaction, int64, error)
}

// PostStore persists the community feed
type PostStore interface {
	Create(ctx context.Context, p *models.Post) error
	GetByID(ctx context.Context, id, viewerID int64) (*models.Post, error)
	Update(ctx context.Context, p *models.Post) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter models.PostFilter, viewerID int64) ([]*models.Post, int64, error)
	ToggleLike(ctx context.Context, postID, userID int64) (bool, int64, error)
	CreateComment(ctx context.Context, c *models.Comment) error
	GetComment(ctx context.Context, id, viewerID int64) (*models.Comment, error)
	ListComments(ctx context.Context, postID, viewerID int64) ([]*models.Comment, error)
	DeleteComment(ctx context.Context, id int64) error
	ToggleCommentLike(ctx context.Context, commentID, userID int64) (bool, int64, error)
}

// ServiceRequestStore persists maintenance tickets and their chat
type ServiceRequestStore interface {
	Create(ctx context.Context, sr *models.ServiceRequest) error
	GetByID(ctx context.Context, id int64) (*models.ServiceRequest, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*models.ServiceRequest, error)
	Update(ctx context.Context, sr *models.ServiceRequest) error
	List(ctx context.Context, filter models.ServiceRequestFilter) ([]*models.ServiceRequest, int64, error)
	CountByStatus(ctx context.Context, filter models.ServiceRequestFilter) (map[models.ServiceRequestStatus]int64, error)
	CountUnassignedPending(ctx context.Context) (int64, error)
	CreateMessage(ctx context.Context, m *models.ServiceRequestMessage) error
	ListMessages(ctx context.Context, requestID int64, afterID int64, limit uint64) ([]*models.ServiceRequestMessage, error)
}
