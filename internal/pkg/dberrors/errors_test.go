package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsDuplicateConstraintError(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "apartments_apartment_number_key"}
	wrapped := fmt.Errorf("insert apartment: %w", pgErr)

	assert.True(t, IsDuplicateConstraintError(wrapped, "apartments_apartment_number_key"))
	assert.False(t, IsDuplicateConstraintError(wrapped, "users_email_key"))
	assert.True(t, IsUniqueViolation(wrapped))
	assert.False(t, IsForeignKeyViolation(wrapped))
}

func TestIsForeignKeyViolation(t *testing.T) {
	assert.True(t, IsForeignKeyViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsForeignKeyViolation(errors.New("boom")))
	assert.False(t, IsUniqueViolation(nil))
}
