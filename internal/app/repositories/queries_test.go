package repositories

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayease/stayease-api/internal/app/models"
)

func TestServiceRequestWhere_VisibleToStaff(t *testing.T) {
	staffID := int64(7)
	status := models.RequestPending
	sql, args, err := psql.Select("id").From("service_requests").
		Where(serviceRequestWhere(models.ServiceRequestFilter{VisibleToStaff: &staffID, Status: &status})).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT id FROM service_requests WHERE ((assigned_to = $1 OR (assigned_to IS NULL AND status = $2)) AND status = $3)",
		sql)
	assert.Equal(t, []interface{}{staffID, models.RequestPending, models.RequestPending}, args)
}

func TestServiceRequestWhere_Owner(t *testing.T) {
	userID := int64(3)
	category := models.CategoryPlumbing
	sql, args, err := psql.Select("id").From("service_requests").
		Where(serviceRequestWhere(models.ServiceRequestFilter{UserID: &userID, Category: &category})).ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT id FROM service_requests WHERE (user_id = $1 AND category = $2)", sql)
	assert.Equal(t, []interface{}{userID, models.CategoryPlumbing}, args)
}

func TestInvoiceListQuery(t *testing.T) {
	userID := int64(12)
	status := models.InvoiceOverdue
	sql, args, err := invoiceListQuery(models.InvoiceFilter{UserID: &userID, Status: &status, Page: 3, PageSize: 20}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "WHERE (i.user_id = $1 AND i.status = $2)")
	assert.Contains(t, sql, "ORDER BY i.issue_date DESC, i.id DESC")
	assert.Contains(t, sql, "LIMIT 20 OFFSET 40")
	assert.Equal(t, []interface{}{userID, models.InvoiceOverdue}, args)
}

func TestSummaryQuery(t *testing.T) {
	sql, args, err := summaryQuery(nil).ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT status, COUNT(*), COALESCE(SUM(amount), 0) FROM invoices WHERE status IN ($1,$2) GROUP BY status", sql)
	assert.Equal(t, []interface{}{models.InvoicePending, models.InvoiceOverdue}, args)

	userID := int64(5)
	sql, args, err = summaryQuery(&userID).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE status IN ($1,$2) AND user_id = $3 GROUP BY status")
	assert.Equal(t, []interface{}{models.InvoicePending, models.InvoiceOverdue, userID}, args)
}

func TestMonthBounds_FollowLocation(t *testing.T) {
	ict := time.FixedZone("ICT", 7*60*60)
	from := time.Date(2026, time.January, 1, 0, 0, 0, 0, ict)
	bounds := monthBounds(from, from.AddDate(1, 0, 0))

	require.Len(t, bounds, 13)
	assert.Equal(t, time.February, bounds[1].Month())
	// 18:00 UTC on Jan 31 is already February 1st in ICT
	paid := time.Date(2026, time.January, 31, 18, 0, 0, 0, time.UTC)
	assert.False(t, paid.Before(bounds[1]))
	assert.True(t, paid.Before(bounds[2]))
	assert.True(t, bounds[12].Equal(time.Date(2027, time.January, 1, 0, 0, 0, 0, ict)))
}
