package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/stayease/stayease-api/internal/app/models"
	"github.com/stayease/stayease-api/internal/db"
	"github.com/stayease/stayease-api/internal/pkg/apperrors"
	"github.com/stayease/stayease-api/internal/pkg/dberrors"
)

const transactionColumns = `id, invoice_id, user_id, gateway, transaction_code, amount, status, expires_at, paid_at, note, created_at, updated_at`

// TransactionRepository handles payment transaction database operations
type TransactionRepository struct {
	db *db.PostgresDB
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(database *db.PostgresDB) *TransactionRepository {
	return &TransactionRepository{db: database}
}

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	t := &models.Transaction{}
	err := row.Scan(&t.ID, &t.InvoiceID, &t.UserID, &t.Gateway, &t.TransactionCode, &t.Amount, &t.Status,
		&t.ExpiresAt, &t.PaidAt, &t.Note, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Create inserts a transaction. A taken code yields ErrTransactionCodeExists.
// ON CONFLICT keeps an enclosing transaction usable so the caller can retry with a new code.
func (r *TransactionRepository) Create(ctx context.Context, t *models.Transaction) error {
	err := r.db.Conn(ctx).QueryRow(ctx, `
		INSERT INTO transactions (invoice_id, user_id, gateway, transaction_code, amount, status, expires_at, paid_at, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (transaction_code) DO NOTHING
		RETURNING id, created_at, updated_at`,
		t.InvoiceID, t.UserID, t.Gateway, t.TransactionCode, t.Amount, t.Status, t.ExpiresAt, t.PaidAt, t.Note,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if isNoRows(err) || dberrors.IsDuplicateConstraintError(err, "transactions_transaction_code_key") {
			return apperrors.ErrTransactionCodeExists
		}
		return fmt.Errorf("error creating transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepository) getByCode(ctx context.Context, code string, lock bool) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_code = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	t, err := scanTransaction(r.db.Conn(ctx).QueryRow(ctx, query, code))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("error getting transaction %s: %w", code, err)
	}
	return t, nil
}

// GetByCode retrieves a transaction by its code
func (r *TransactionRepository) GetByCode(ctx context.Context, code string) (*models.Transaction, error) {
	return r.getByCode(ctx, code, false)
}

// GetByCodeForUpdate row-locks a transaction; only meaningful inside a transaction
func (r *TransactionRepository) GetByCodeForUpdate(ctx context.Context, code string) (*models.Transaction, error) {
	return r.getByCode(ctx, code, true)
}

// Complete marks a transaction completed
func (r *TransactionRepository) Complete(ctx context.Context, id int64, paidAt time.Time, note string) error {
	tag, err := r.db.Conn(ctx).Exec(ctx, `
		UPDATE transactions
		SET status = 'completed', paid_at = $2, note = CASE WHEN $3 = '' THEN note ELSE $3 END, updated_at = NOW()
		WHERE id = $1`, id, paidAt, note)
	if err != nil {
		return fmt.Errorf("error completing transaction %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrTransactionNotFound
	}
	return nil
}

// UpdateStatus changes the status of a pending transaction only
func (r *TransactionRepository) UpdateStatus(ctx context.Context, id int64, status models.TransactionStatus) error {
	tag, err := r.db.Conn(ctx).Exec(ctx,
		`UPDATE transactions SET status = $2, updated_at = NOW() WHERE id = $1 AND status = 'pending'`, id, status)
	if err != nil {
		return fmt.Errorf("error updating transaction %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrTransactionFinalized
	}
	return nil
}

// CancelPending cancels the pending transactions of an invoice other than exceptID
func (r *TransactionRepository) CancelPending(ctx context.Context, invoiceID, exceptID int64) (int64, error) {
	tag, err := r.db.Conn(ctx).Exec(ctx, `
		UPDATE transactions SET status = 'cancelled', updated_at = NOW()
		WHERE invoice_id = $1 AND status = 'pending' AND id <> $2`, invoiceID, exceptID)
	if err != nil {
		return 0, fmt.Errorf("error cancelling pending transactions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// List returns a page of transactions, newest first
func (r *TransactionRepository) List(ctx context.Context, filter models.TransactionFilter) ([]*models.Transaction, int64, error) {
	where := squirrel.And{}
	if filter.UserID != nil {
		where = append(where, squirrel.Eq{"user_id": *filter.UserID})
	}
	if filter.InvoiceID != nil {
		where = append(where, squirrel.Eq{"invoice_id": *filter.InvoiceID})
	}
	if filter.Status != nil {
		where = append(where, squirrel.Eq{"status": *filter.Status})
	}

	countSQL, countArgs, err := psql.Select("COUNT(*)").From("transactions").Where(where).ToSql()
	if err != nil {
		return nil, 0, buildErr("count transactions", err)
	}
	var total int64
	if err := r.db.Conn(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting transactions: %w", err)
	}

	sql, args, err := paginate(psql.Select(transactionColumns).From("transactions").Where(where).
		OrderBy("created_at DESC", "id DESC"), filter.Page, filter.PageSize).ToSql()
	if err != nil {
		return nil, 0, buildErr("list transactions", err)
	}

	rows, err := r.db.Conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing transactions: %w", err)
	}
	defer rows.Close()

	var out []*models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, total, rows.Err()
}
