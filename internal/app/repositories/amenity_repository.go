package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/stayease/stayease-api/internal/app/models"
	"github.com/stayease/stayease-api/internal/db"
	"github.com/stayease/stayease-api/internal/pkg/apperrors"
)

const amenityColumns = `id, name, description, type, status, location, opening_time, closing_time, images, created_at, updated_at`

// AmenityRepository handles amenity database operations
type AmenityRepository struct {
	db *db.PostgresDB
}

// NewAmenityRepository creates a new AmenityRepository
func NewAmenityRepository(database *db.PostgresDB) *AmenityRepository {
	return &AmenityRepository{db: database}
}

func scanAmenity(row pgx.Row) (*models.Amenity, error) {
	a := &models.Amenity{}
	err := row.Scan(&a.ID, &a.Name, &a.Description, &a.Type, &a.Status, &a.Location,
		&a.OpeningTime, &a.ClosingTime, &a.Images, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if a.Images == nil {
		a.Images = []string{}
	}
	return a, nil
}

// Create inserts an amenity
func (r *AmenityRepository) Create(ctx context.Context, a *models.Amenity) error {
	err := r.db.Conn(ctx).QueryRow(ctx, `
		INSERT INTO amenities (name, description, type, status, location, opening_time, closing_time, images)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		a.Name, a.Description, a.Type, a.Status, a.Location, a.OpeningTime, a.ClosingTime, nonNil(a.Images),
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating amenity: %w", err)
	}
	return nil
}

// GetByID retrieves an amenity
func (r *AmenityRepository) GetByID(ctx context.Context, id int64) (*models.Amenity, error) {
	a, err := scanAmenity(r.db.Conn(ctx).QueryRow(ctx, `SELECT `+amenityColumns+` FROM amenities WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.ErrAmenityNotFound
		}
		return nil, fmt.Errorf("error getting amenity %d: %w", id, err)
	}
	return a, nil
}

// Update writes every mutable column of a
func (r *AmenityRepository) Update(ctx context.Context, a *models.Amenity) error {
	err := r.db.Conn(ctx).QueryRow(ctx, `
		UPDATE amenities SET
			name = $2, description = $3, type = $4, status = $5, location = $6,
			opening_time = $7, closing_time = $8, images = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		a.ID, a.Name, a.Description, a.Type, a.Status, a.Location, a.OpeningTime, a.ClosingTime, nonNil(a.Images),
	).Scan(&a.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return apperrors.ErrAmenityNotFound
		}
		return fmt.Errorf("error updating amenity %d: %w", a.ID, err)
	}
	return nil
}

// Delete removes an amenity
func (r *AmenityRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Conn(ctx).Exec(ctx, `DELETE FROM amenities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting amenity %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAmenityNotFound
	}
	return nil
}

// List returns every amenity matching filter, ordered by name
func (r *AmenityRepository) List(ctx context.Context, filter models.AmenityFilter) ([]*models.Amenity, error) {
	q := psql.Select(amenityColumns).From("amenities").OrderBy("name", "id")
	if filter.Type != nil {
		q = q.Where(squirrel.Eq{"type": *filter.Type})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, buildErr("list amenities", err)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing amenities: %w", err)
	}
	defer rows.Close()

	out := []*models.Amenity{}
	for rows.Next() {
		a, err := scanAmenity(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning amenity: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
