package repositories

import (
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/stayease/stayease-api/internal/db"
	"github.com/stayease/stayease-api/internal/pkg/helpers"
)

// psql builds PostgreSQL statements with $n placeholders
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repositories holds all the repository instances
type Repositories struct {
	Users           *UserRepository
	Tokens          *TokenRepository
	Apartments      *ApartmentRepository
	Amenities       *AmenityRepository
	Invoices        *InvoiceRepository
	Transactions    *TransactionRepository
	Posts           *PostRepository
	ServiceRequests *ServiceRequestRepository
}

// NewRepositories initializes all repositories
func NewRepositories(database *db.PostgresDB) *Repositories {
	return &Repositories{
		Users:           NewUserRepository(database),
		Tokens:          NewTokenRepository(database),
		Apartments:      NewApartmentRepository(database),
		Amenities:       NewAmenityRepository(database),
		Invoices:        NewInvoiceRepository(database),
		Transactions:    NewTransactionRepository(database),
		Posts:           NewPostRepository(database),
		ServiceRequests: NewServiceRequestRepository(database),
	}
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// paginate applies LIMIT/OFFSET for a 1-based page
func paginate(q squirrel.SelectBuilder, page, size int) squirrel.SelectBuilder {
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	return q.Limit(limit).Offset(offset)
}

func buildErr(what string, err error) error {
	return fmt.Errorf("failed to build %s query: %w", what, err)
}
