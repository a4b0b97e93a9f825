package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/stayease/stayease-api/internal/app/models"
	"github.com/stayease/stayease-api/internal/db"
	"github.com/stayease/stayease-api/internal/pkg/apperrors"
	"github.com/stayease/stayease-api/internal/pkg/dberrors"
)

const serviceRequestColumns = `id, user_id, apartment_id, title, description, category, priority, status,
	assigned_to, images, resolved_at, created_at, updated_at`

// ServiceRequestRepository handles maintenance ticket database operations
type ServiceRequestRepository struct {
	db *db.PostgresDB
}

// NewServiceRequestRepository creates a new ServiceRequestRepository
func NewServiceRequestRepository(database *db.PostgresDB) *ServiceRequestRepository {
	return &ServiceRequestRepository{db: database}
}

func scanServiceRequest(row pgx.Row) (*models.ServiceRequest, error) {
	sr := &models.ServiceRequest{}
	err := row.Scan(&sr.ID, &sr.UserID, &sr.ApartmentID, &sr.Title, &sr.Description, &sr.Category, &sr.Priority,
		&sr.Status, &sr.AssignedTo, &sr.Images, &sr.ResolvedAt, &sr.CreatedAt, &sr.UpdatedAt)
	if err != nil {
		return nil, err
	}
	sr.Images = nonNil(sr.Images)
	return sr, nil
}

// Create inserts a ticket
func (r *ServiceRequestRepository) Create(ctx context.Context, sr *models.ServiceRequest) error {
	err := r.db.Conn(ctx).QueryRow(ctx, `
		INSERT INTO service_requests (user_id, apartment_id, title, description, category, priority, status, images)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		sr.UserID, sr.ApartmentID, sr.Title, sr.Description, sr.Category, sr.Priority, sr.Status, nonNil(sr.Images),
	).Scan(&sr.ID, &sr.CreatedAt, &sr.UpdatedAt)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrResidentWithoutHome
		}
		return fmt.Errorf("error creating service request: %w", err)
	}
	return nil
}

func (r *ServiceRequestRepository) get(ctx context.Context, query string, id int64) (*models.ServiceRequest, error) {
	sr, err := scanServiceRequest(r.db.Conn(ctx).QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.ErrServiceRequestNotFound
		}
		return nil, fmt.Errorf("error getting service request %d: %w", id, err)
	}
	return sr, nil
}

// GetByID retrieves a ticket
func (r *ServiceRequestRepository) GetByID(ctx context.Context, id int64) (*models.ServiceRequest, error) {
	return r.get(ctx, `SELECT `+serviceRequestColumns+` FROM service_requests WHERE id = $1`, id)
}

// GetByIDForUpdate retrieves and row-locks a ticket; only meaningful inside a transaction
func (r *ServiceRequestRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.ServiceRequest, error) {
	return r.get(ctx, `SELECT `+serviceRequestColumns+` FROM service_requests WHERE id = $1 FOR UPDATE`, id)
}

// Update writes status, assignee and resolution time
func (r *ServiceRequestRepository) Update(ctx context.Context, sr *models.ServiceRequest) error {
	err := r.db.Conn(ctx).QueryRow(ctx, `
		UPDATE service_requests SET status = $2, assigned_to = $3, resolved_at = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		sr.ID, sr.Status, sr.AssignedTo, sr.ResolvedAt,
	).Scan(&sr.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return apperrors.ErrServiceRequestNotFound
		}
		return fmt.Errorf("error updating service request %d: %w", sr.ID, err)
	}
	return nil
}

func serviceRequestWhere(filter models.ServiceRequestFilter) squirrel.And {
	where := squirrel.And{}
	if filter.UserID != nil {
		where = append(where, squirrel.Eq{"user_id": *filter.UserID})
	}
	if filter.AssignedTo != nil {
		where = append(where, squirrel.Eq{"assigned_to": *filter.AssignedTo})
	}
	if filter.VisibleToStaff != nil {
		where = append(where, squirrel.Or{
			squirrel.Eq{"assigned_to": *filter.VisibleToStaff},
			squirrel.And{squirrel.Eq{"assigned_to": nil}, squirrel.Eq{"status": models.RequestPending}},
		})
	}
	if filter.Status != nil {
		where = append(where, squirrel.Eq{"status": *filter.Status})
	}
	if filter.Category != nil {
		where = append(where, squirrel.Eq{"category": *filter.Category})
	}
	return where
}

// List returns a page of tickets, newest first
func (r *ServiceRequestRepository) List(ctx context.Context, filter models.ServiceRequestFilter) ([]*models.ServiceRequest, int64, error) {
	where := serviceRequestWhere(filter)

	countSQL, countArgs, err := psql.Select("COUNT(*)").From("service_requests").Where(where).ToSql()
	if err != nil {
		return nil, 0, buildErr("count service requests", err)
	}
	var total int64
	if err := r.db.Conn(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting service requests: %w", err)
	}

	sql, args, err := paginate(psql.Select(serviceRequestColumns).From("service_requests").Where(where).
		OrderBy("created_at DESC", "id DESC"), filter.Page, filter.PageSize).ToSql()
	if err != nil {
		return nil, 0, buildErr("list service requests", err)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing service requests: %w", err)
	}
	defer rows.Close()

	var out []*models.ServiceRequest
	for rows.Next() {
		sr, err := scanServiceRequest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning service request: %w", err)
		}
		out = append(out, sr)
	}
	return out, total, rows.Err()
}

// CountByStatus counts tickets per status under filter
func (r *ServiceRequestRepository) CountByStatus(ctx context.Context, filter models.ServiceRequestFilter) (map[models.ServiceRequestStatus]int64, error) {
	sql, args, err := psql.Select("status", "COUNT(*)").From("service_requests").
		Where(serviceRequestWhere(filter)).GroupBy("status").ToSql()
	if err != nil {
		return nil, buildErr("count service requests by status", err)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error counting service requests: %w", err)
	}
	defer rows.Close()

	counts := map[models.ServiceRequestStatus]int64{
		models.RequestPending:    0,
		models.RequestInProgress: 0,
		models.RequestResolved:   0,
		models.RequestCancelled:  0,
	}
	for rows.Next() {
		var status models.ServiceRequestStatus
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// CountUnassignedPending counts pending tickets nobody has accepted
func (r *ServiceRequestRepository) CountUnassignedPending(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.Conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM service_requests WHERE status = 'pending' AND assigned_to IS NULL`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("error counting unassigned requests: %w", err)
	}
	return n, nil
}

// CreateMessage appends a chat line and fills its sender name
func (r *ServiceRequestRepository) CreateMessage(ctx context.Context, m *models.ServiceRequestMessage) error {
	err := r.db.Conn(ctx).QueryRow(ctx, `
		WITH inserted AS (
			INSERT INTO service_request_messages (request_id, sender_id, content)
			VALUES ($1, $2, $3)
			RETURNING id, sender_id, created_at
		)
		SELECT i.id, i.created_at, COALESCE(u.full_name, '')
		FROM inserted i LEFT JOIN users u ON u.id = i.sender_id`,
		m.RequestID, m.SenderID, m.Content,
	).Scan(&m.ID, &m.CreatedAt, &m.SenderName)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrServiceRequestNotFound
		}
		return fmt.Errorf("error creating message: %w", err)
	}
	return nil
}

// ListMessages returns the chat of a ticket in send order, optionally only after a message ID
func (r *ServiceRequestRepository) ListMessages(ctx context.Context, requestID int64, afterID int64, limit uint64) ([]*models.ServiceRequestMessage, error) {
	q := psql.Select("m.id", "m.request_id", "m.sender_id", "COALESCE(u.full_name, '')", "m.content", "m.created_at").
		From("service_request_messages m").
		LeftJoin("users u ON u.id = m.sender_id").
		Where(squirrel.Eq{"m.request_id": requestID}).
		OrderBy("m.id")
	if afterID > 0 {
		q = q.Where(squirrel.Gt{"m.id": afterID})
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, buildErr("list messages", err)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing messages: %w", err)
	}
	defer rows.Close()

	var out []*models.ServiceRequestMessage
	for rows.Next() {
		m := &models.ServiceRequestMessage{}
		if err := rows.Scan(&m.ID, &m.RequestID, &m.SenderID, &m.SenderName, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
