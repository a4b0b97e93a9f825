package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/stayease/stayease-api/internal/app/models"
	"github.com/stayease/stayease-api/internal/db"
	"github.com/stayease/stayease-api/internal/pkg/apperrors"
	"github.com/stayease/stayease-api/internal/pkg/dberrors"
	"github.com/stayease/stayease-api/internal/pkg/logger"
)

const userColumns = `id, email, password, full_name, phone, avatar_url, role, status, apartment_id,
	move_in_date, lease_start, lease_end, monthly_rent, deposit, last_login_at, created_at, updated_at`

// UserRepository handles user database operations
type UserRepository struct {
	db *db.PostgresDB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(database *db.PostgresDB) *UserRepository {
	return &UserRepository{db: database}
}

func scanUser(row pgx.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.Email, &u.Password, &u.FullName, &u.Phone, &u.AvatarURL, &u.Role, &u.Status, &u.ApartmentID,
		&u.MoveInDate, &u.LeaseStart, &u.LeaseEnd, &u.MonthlyRent, &u.Deposit, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Create inserts a user and fills its ID and timestamps
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	err := r.db.Conn(ctx).QueryRow(ctx, `
		INSERT INTO users (email, password, full_name, phone, avatar_url, role, status, apartment_id,
			move_in_date, lease_start, lease_end, monthly_rent, deposit)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at`,
		strings.ToLower(u.Email), u.Password, u.FullName, u.Phone, u.AvatarURL, u.Role, u.Status, u.ApartmentID,
		u.MoveInDate, u.LeaseStart, u.LeaseEnd, u.MonthlyRent, u.Deposit,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "users_email_key") {
			return apperrors.ErrEmailAlreadyExists
		}
		if dberrors.IsDuplicateConstraintError(err, "users_apartment_resident_idx") {
			return apperrors.ErrApartmentNotAvailable
		}
		return fmt.Errorf("error creating user: %w", err)
	}
	u.Email = strings.ToLower(u.Email)
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := scanUser(r.db.Conn(ctx).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error getting user %d: %w", id, err)
	}
	return u, nil
}

// GetByEmail retrieves a user by email, case-insensitively
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(r.db.Conn(ctx).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(email)))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error getting user by email: %w", err)
	}
	return u, nil
}

// GetByApartmentID returns the resident linked to an apartment
func (r *UserRepository) GetByApartmentID(ctx context.Context, apartmentID int64) (*models.User, error) {
	u, err := scanUser(r.db.Conn(ctx).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE apartment_id = $1`, apartmentID))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error getting resident of apartment %d: %w", apartmentID, err)
	}
	return u, nil
}

// Update writes every mutable column of u
func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	tag, err := r.db.Conn(ctx).Exec(ctx, `
		UPDATE users SET
			password = $2, full_name = $3, phone = $4, avatar_url = $5, role = $6, status = $7, apartment_id = $8,
			move_in_date = $9, lease_start = $10, lease_end = $11, monthly_rent = $12, deposit = $13,
			updated_at = NOW()
		WHERE id = $1`,
		u.ID, u.Password, u.FullName, u.Phone, u.AvatarURL, u.Role, u.Status, u.ApartmentID,
		u.MoveInDate, u.LeaseStart, u.LeaseEnd, u.MonthlyRent, u.Deposit)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "users_apartment_resident_idx") {
			return apperrors.ErrApartmentNotAvailable
		}
		return fmt.Errorf("error updating user %d: %w", u.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// Delete removes a user
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Conn(ctx).Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrUserHasInvoices
		}
		return fmt.Errorf("error deleting user %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// List returns a page of users matching filter
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter) ([]*models.User, int64, error) {
	where := squirrel.And{}
	if filter.Role != nil {
		where = append(where, squirrel.Eq{"role": *filter.Role})
	}
	if filter.Status != nil {
		where = append(where, squirrel.Eq{"status": *filter.Status})
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + s + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"full_name": like},
			squirrel.ILike{"email": like},
			squirrel.ILike{"phone": like},
		})
	}

	countSQL, countArgs, err := psql.Select("COUNT(*)").From("users").Where(where).ToSql()
	if err != nil {
		return nil, 0, buildErr("count users", err)
	}
	var total int64
	if err := r.db.Conn(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting users: %w", err)
	}

	q := paginate(psql.Select(userColumns).From("users").Where(where).OrderBy("created_at DESC", "id DESC"), filter.Page, filter.PageSize)
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, buildErr("list users", err)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing users")
		return nil, 0, fmt.Errorf("error listing users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning user: %w", err)
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

// UpdateLastLogin updates the last login time
func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error {
	if _, err := r.db.Conn(ctx).Exec(ctx, `UPDATE users SET last_login_at = $1 WHERE id = $2`, at, userID); err != nil {
		return fmt.Errorf("failed to update last login time: %w", err)
	}
	return nil
}

// CountByRole counts active accounts of a role
func (r *UserRepository) CountByRole(ctx context.Context, role models.Role) (int64, error) {
	var n int64
	err := r.db.Conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = $1 AND status = 'active'`, role).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("error counting users: %w", err)
	}
	return n, nil
}
