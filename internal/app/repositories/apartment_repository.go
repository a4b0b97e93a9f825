package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/stayease/stayease-api/internal/app/models"
	"github.com/stayease/stayease-api/internal/db"
	"github.com/stayease/stayease-api/internal/pkg/apperrors"
	"github.com/stayease/stayease-api/internal/pkg/dberrors"
)

const apartmentColumns = `id, apartment_number, building, floor, area, bedrooms, bathrooms, rent_price,
	status, description, images, created_at, updated_at`

// ApartmentRepository handles apartment database operations
type ApartmentRepository struct {
	db *db.PostgresDB
}

// NewApartmentRepository creates a new ApartmentRepository
func NewApartmentRepository(database *db.PostgresDB) *ApartmentRepository {
	return &ApartmentRepository{db: database}
}

func scanApartment(row pgx.Row) (*models.Apartment, error) {
	a := &models.Apartment{}
	err := row.Scan(&a.ID, &a.ApartmentNumber, &a.Building, &a.Floor, &a.Area, &a.Bedrooms, &a.Bathrooms,
		&a.RentPrice, &a.Status, &a.Description, &a.Images, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if a.Images == nil {
		a.Images = []string{}
	}
	return a, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Create inserts an apartment. A duplicate number yields ErrApartmentAlreadyExists.
func (r *ApartmentRepository) Create(ctx context.Context, a *models.Apartment) error {
	err := r.db.Conn(ctx).QueryRow(ctx, `
		INSERT INTO apartments (apartment_number, building, floor, area, bedrooms, bathrooms, rent_price, status, description, images)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`,
		a.ApartmentNumber, a.Building, a.Floor, a.Area, a.Bedrooms, a.Bathrooms, a.RentPrice, a.Status, a.Description, nonNil(a.Images),
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "apartments_apartment_number_key") {
			return apperrors.ErrApartmentAlreadyExists
		}
		return fmt.Errorf("error creating apartment: %w", err)
	}
	return nil
}

func (r *ApartmentRepository) get(ctx context.Context, query string, id int64) (*models.Apartment, error) {
	a, err := scanApartment(r.db.Conn(ctx).QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.ErrApartmentNotFound
		}
		return nil, fmt.Errorf("error getting apartment %d: %w", id, err)
	}
	return a, nil
}

// GetByID retrieves an apartment
func (r *ApartmentRepository) GetByID(ctx context.Context, id int64) (*models.Apartment, error) {
	return r.get(ctx, `SELECT `+apartmentColumns+` FROM apartments WHERE id = $1`, id)
}

// GetByIDForUpdate retrieves and row-locks an apartment; only meaningful inside a transaction
func (r *ApartmentRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Apartment, error) {
	return r.get(ctx, `SELECT `+apartmentColumns+` FROM apartments WHERE id = $1 FOR UPDATE`, id)
}

// Update writes every mutable column of a
func (r *ApartmentRepository) Update(ctx context.Context, a *models.Apartment) error {
	err := r.db.Conn(ctx).QueryRow(ctx, `
		UPDATE apartments SET
			apartment_number = $2, building = $3, floor = $4, area = $5, bedrooms = $6, bathrooms = $7,
			rent_price = $8, status = $9, description = $10, images = $11, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		a.ID, a.ApartmentNumber, a.Building, a.Floor, a.Area, a.Bedrooms, a.Bathrooms,
		a.RentPrice, a.Status, a.Description, nonNil(a.Images),
	).Scan(&a.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return apperrors.ErrApartmentNotFound
		}
		if dberrors.IsDuplicateConstraintError(err, "apartments_apartment_number_key") {
			return apperrors.ErrApartmentAlreadyExists
		}
		return fmt.Errorf("error updating apartment %d: %w", a.ID, err)
	}
	return nil
}

// UpdateStatus sets only the status column
func (r *ApartmentRepository) UpdateStatus(ctx context.Context, id int64, status models.ApartmentStatus) error {
	tag, err := r.db.Conn(ctx).Exec(ctx, `UPDATE apartments SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("error updating apartment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrApartmentNotFound
	}
	return nil
}

// Delete removes an apartment
func (r *ApartmentRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Conn(ctx).Exec(ctx, `DELETE FROM apartments WHERE id = $1`, id)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrApartmentHasInvoices
		}
		return fmt.Errorf("error deleting apartment %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrApartmentNotFound
	}
	return nil
}

// List returns a page of apartments ordered by building and number
func (r *ApartmentRepository) List(ctx context.Context, filter models.ApartmentFilter) ([]*models.Apartment, int64, error) {
	where := squirrel.And{}
	if filter.Status != nil {
		where = append(where, squirrel.Eq{"status": *filter.Status})
	}
	if filter.Building != "" {
		where = append(where, squirrel.Eq{"building": filter.Building})
	}
	if filter.Floor != nil {
		where = append(where, squirrel.Eq{"floor": *filter.Floor})
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + s + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"apartment_number": like},
			squirrel.ILike{"description": like},
		})
	}

	countSQL, countArgs, err := psql.Select("COUNT(*)").From("apartments").Where(where).ToSql()
	if err != nil {
		return nil, 0, buildErr("count apartments", err)
	}
	var total int64
	if err := r.db.Conn(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting apartments: %w", err)
	}

	sql, args, err := paginate(psql.Select(apartmentColumns).From("apartments").Where(where).
		OrderBy("building", "floor", "apartment_number"), filter.Page, filter.PageSize).ToSql()
	if err != nil {
		return nil, 0, buildErr("list apartments", err)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing apartments: %w", err)
	}
	defer rows.Close()

	var out []*models.Apartment
	for rows.Next() {
		a, err := scanApartment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning apartment: %w", err)
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

// CountByStatus groups apartments by status
func (r *ApartmentRepository) CountByStatus(ctx context.Context) (map[models.ApartmentStatus]int64, error) {
	rows, err := r.db.Conn(ctx).Query(ctx, `SELECT status, COUNT(*) FROM apartments GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("error counting apartments: %w", err)
	}
	defer rows.Close()

	out := map[models.ApartmentStatus]int64{
		models.ApartmentAvailable:   0,
		models.ApartmentOccupied:    0,
		models.ApartmentMaintenance: 0,
	}
	for rows.Next() {
		var status models.ApartmentStatus
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}

// HasInvoices reports whether any invoice references the apartment
func (r *ApartmentRepository) HasInvoices(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.Conn(ctx).QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM invoices WHERE apartment_id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking apartment invoices: %w", err)
	}
	return exists, nil
}
