package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stayease/stayease-api/internal/app/models"
	"github.com/stayease/stayease-api/internal/db"
	"github.com/stayease/stayease-api/internal/pkg/apperrors"
	"github.com/stayease/stayease-api/internal/pkg/dberrors"
)

const invoiceColumns = `i.id, i.invoice_number, i.user_id, i.apartment_id, i.type, i.amount, i.issue_date, i.due_date,
	i.status, i.paid_date, i.description, i.created_at, i.updated_at`

const invoiceJoinedColumns = invoiceColumns + `, COALESCE(a.apartment_number, ''), COALESCE(u.full_name, '')`

const invoiceJoins = `invoices i
	LEFT JOIN apartments a ON a.id = i.apartment_id
	LEFT JOIN users u ON u.id = i.user_id`

// InvoiceRepository handles invoice database operations
type InvoiceRepository struct {
	db *db.PostgresDB
}

// NewInvoiceRepository creates a new InvoiceRepository
func NewInvoiceRepository(database *db.PostgresDB) *InvoiceRepository {
	return &InvoiceRepository{db: database}
}

func invoiceDest(inv *models.Invoice) []any {
	return []any{&inv.ID, &inv.InvoiceNumber, &inv.UserID, &inv.ApartmentID, &inv.Type, &inv.Amount, &inv.IssueDate,
		&inv.DueDate, &inv.Status, &inv.PaidDate, &inv.Description, &inv.CreatedAt, &inv.UpdatedAt}
}

func scanInvoiceJoined(row pgx.Row) (*models.Invoice, error) {
	inv := &models.Invoice{}
	dest := append(invoiceDest(inv), &inv.ApartmentNumber, &inv.ResidentName)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return inv, nil
}

// NextNumber draws the next invoice number from the sequence: INV-YYYYMMDD-NNNNNN
func (r *InvoiceRepository) NextNumber(ctx context.Context, issued time.Time) (string, error) {
	var seq int64
	if err := r.db.Conn(ctx).QueryRow(ctx, `SELECT nextval('invoice_number_seq')`).Scan(&seq); err != nil {
		return "", fmt.Errorf("error drawing invoice number: %w", err)
	}
	return fmt.Sprintf("INV-%s-%06d", issued.Format("20060102"), seq), nil
}

// Create inserts an invoice
func (r *InvoiceRepository) Create(ctx context.Context, inv *models.Invoice) error {
	err := r.db.Conn(ctx).QueryRow(ctx, `
		INSERT INTO invoices (invoice_number, user_id, apartment_id, type, amount, issue_date, due_date, status, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`,
		inv.InvoiceNumber, inv.UserID, inv.ApartmentID, inv.Type, inv.Amount, inv.IssueDate, inv.DueDate, inv.Status, inv.Description,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "invoices_invoice_number_key") {
			return apperrors.NewConflictError("Số hóa đơn đã tồn tại")
		}
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.NewBadRequestError("Cư dân hoặc căn hộ không tồn tại")
		}
		return fmt.Errorf("error creating invoice: %w", err)
	}
	return nil
}

// GetByID retrieves an invoice with its apartment number and resident name
func (r *InvoiceRepository) GetByID(ctx context.Context, id int64) (*models.Invoice, error) {
	inv, err := scanInvoiceJoined(r.db.Conn(ctx).QueryRow(ctx, `SELECT `+invoiceJoinedColumns+` FROM `+invoiceJoins+` WHERE i.id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("error getting invoice %d: %w", id, err)
	}
	return inv, nil
}

// GetByIDForUpdate row-locks an invoice; only meaningful inside a transaction
func (r *InvoiceRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Invoice, error) {
	inv := &models.Invoice{}
	err := r.db.Conn(ctx).QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices i WHERE i.id = $1 FOR UPDATE`, id).Scan(invoiceDest(inv)...)
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("error locking invoice %d: %w", id, err)
	}
	return inv, nil
}

// UpdateStatus sets status and paid date
func (r *InvoiceRepository) UpdateStatus(ctx context.Context, id int64, status models.InvoiceStatus, paidDate *time.Time) error {
	tag, err := r.db.Conn(ctx).Exec(ctx,
		`UPDATE invoices SET status = $2, paid_date = $3, updated_at = NOW() WHERE id = $1`, id, status, paidDate)
	if err != nil {
		return fmt.Errorf("error updating invoice %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrInvoiceNotFound
	}
	return nil
}

// MarkOverdue moves pending invoices due before asOf to overdue
func (r *InvoiceRepository) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	tag, err := r.db.Conn(ctx).Exec(ctx,
		`UPDATE invoices SET status = 'overdue', updated_at = NOW() WHERE status = 'pending' AND due_date < $1`, asOf)
	if err != nil {
		return 0, fmt.Errorf("error marking overdue invoices: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ExistsForUser reports whether a user has any invoice
func (r *InvoiceRepository) ExistsForUser(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := r.db.Conn(ctx).QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM invoices WHERE user_id = $1)`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking user invoices: %w", err)
	}
	return exists, nil
}

func invoiceWhere(filter models.InvoiceFilter) squirrel.And {
	where := squirrel.And{}
	if filter.UserID != nil {
		where = append(where, squirrel.Eq{"i.user_id": *filter.UserID})
	}
	if filter.ApartmentID != nil {
		where = append(where, squirrel.Eq{"i.apartment_id": *filter.ApartmentID})
	}
	if filter.Status != nil {
		where = append(where, squirrel.Eq{"i.status": *filter.Status})
	}
	if filter.Type != nil {
		where = append(where, squirrel.Eq{"i.type": *filter.Type})
	}
	return where
}

func invoiceListQuery(filter models.InvoiceFilter) squirrel.SelectBuilder {
	return paginate(psql.Select(invoiceJoinedColumns).From(invoiceJoins).Where(invoiceWhere(filter)).
		OrderBy("i.issue_date DESC", "i.id DESC"), filter.Page, filter.PageSize)
}

// List returns a page of invoices, newest first
func (r *InvoiceRepository) List(ctx context.Context, filter models.InvoiceFilter) ([]*models.Invoice, int64, error) {
	where := invoiceWhere(filter)

	countSQL, countArgs, err := psql.Select("COUNT(*)").From("invoices i").Where(where).ToSql()
	if err != nil {
		return nil, 0, buildErr("count invoices", err)
	}
	var total int64
	if err := r.db.Conn(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting invoices: %w", err)
	}

	sql, args, err := invoiceListQuery(filter).ToSql()
	if err != nil {
		return nil, 0, buildErr("list invoices", err)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing invoices: %w", err)
	}
	defer rows.Close()

	var out []*models.Invoice
	for rows.Next() {
		inv, err := scanInvoiceJoined(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning invoice: %w", err)
		}
		out = append(out, inv)
	}
	return out, total, rows.Err()
}

// monthBounds returns the start of every month in [from, to) in the location of from,
// followed by to. Month i of the range covers bounds[i-1] to bounds[i].
func monthBounds(from, to time.Time) []time.Time {
	bounds := []time.Time{}
	for m := from; m.Before(to); m = m.AddDate(0, 1, 0) {
		bounds = append(bounds, m)
	}
	return append(bounds, to)
}

// PaidTotalsByMonth sums paid invoices per calendar month of paid_date in [from, to).
// Months are cut in Go so they follow the caller's time zone, not the session's.
func (r *InvoiceRepository) PaidTotalsByMonth(ctx context.Context, from, to time.Time) (map[int]decimal.Decimal, error) {
	bounds := monthBounds(from, to)
	rows, err := r.db.Conn(ctx).Query(ctx, `
		SELECT width_bucket(paid_date, $3::timestamptz[]) AS bucket, COALESCE(SUM(amount), 0)
		FROM invoices
		WHERE status = 'paid' AND paid_date >= $1 AND paid_date < $2
		GROUP BY bucket`, from, to, bounds)
	if err != nil {
		return nil, fmt.Errorf("error aggregating revenue by month: %w", err)
	}
	defer rows.Close()

	out := map[int]decimal.Decimal{}
	for rows.Next() {
		var bucket int
		var total decimal.Decimal
		if err := rows.Scan(&bucket, &total); err != nil {
			return nil, err
		}
		if bucket < 1 || bucket >= len(bounds) {
			continue
		}
		month := int(bounds[bucket-1].Month())
		out[month] = out[month].Add(total)
	}
	return out, rows.Err()
}

// PaidTotalsByType sums paid invoices per type in [from, to)
func (r *InvoiceRepository) PaidTotalsByType(ctx context.Context, from, to time.Time) (map[models.InvoiceType]decimal.Decimal, error) {
	rows, err := r.db.Conn(ctx).Query(ctx, `
		SELECT type, COALESCE(SUM(amount), 0)
		FROM invoices
		WHERE status = 'paid' AND paid_date >= $1 AND paid_date < $2
		GROUP BY type`, from, to)
	if err != nil {
		return nil, fmt.Errorf("error aggregating revenue by type: %w", err)
	}
	defer rows.Close()

	out := map[models.InvoiceType]decimal.Decimal{}
	for rows.Next() {
		var t models.InvoiceType
		var total decimal.Decimal
		if err := rows.Scan(&t, &total); err != nil {
			return nil, err
		}
		out[t] = total
	}
	return out, rows.Err()
}

func summaryQuery(userID *int64) squirrel.SelectBuilder {
	q := psql.Select("status", "COUNT(*)", "COALESCE(SUM(amount), 0)").
		From("invoices").
		Where(squirrel.Eq{"status": []models.InvoiceStatus{models.InvoicePending, models.InvoiceOverdue}}).
		GroupBy("status")
	if userID != nil {
		q = q.Where(squirrel.Eq{"user_id": *userID})
	}
	return q
}

// Summary aggregates unpaid invoices, optionally for one user
func (r *InvoiceRepository) Summary(ctx context.Context, userID *int64) (models.InvoiceSummary, error) {
	sql, args, err := summaryQuery(userID).ToSql()
	if err != nil {
		return models.InvoiceSummary{}, buildErr("invoice summary", err)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return models.InvoiceSummary{}, fmt.Errorf("error summarizing invoices: %w", err)
	}
	defer rows.Close()

	sum := models.InvoiceSummary{
		Pending: models.InvoiceTotals{Total: decimal.Zero},
		Overdue: models.InvoiceTotals{Total: decimal.Zero},
	}
	for rows.Next() {
		var status models.InvoiceStatus
		var totals models.InvoiceTotals
		if err := rows.Scan(&status, &totals.Count, &totals.Total); err != nil {
			return sum, err
		}
		switch status {
		case models.InvoicePending:
			sum.Pending = totals
		case models.InvoiceOverdue:
			sum.Overdue = totals
		}
	}
	return sum, rows.Err()
}
