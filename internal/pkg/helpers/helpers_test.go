package helpers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateOffsetLimit(t *testing.T) {
	offset, limit := CalculateOffsetLimit(3, 20)
	assert.Equal(t, uint64(40), offset)
	assert.Equal(t, uint64(20), limit)

	offset, limit = CalculateOffsetLimit(0, 1000)
	assert.Equal(t, uint64(0), offset)
	assert.Equal(t, uint64(DefaultPageSize), limit)
}

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(25, 2, 10)
	assert.Equal(t, 3, info.TotalPages)
	assert.Equal(t, 2, info.CurrentPage)
	assert.Equal(t, int64(25), info.TotalItems)

	empty := NewPaginationInfo(0, 1, 10)
	assert.Equal(t, 1, empty.TotalPages)

	clamped := NewPaginationInfo(5, 9, 10)
	assert.Equal(t, 1, clamped.CurrentPage)
}

func TestParsePaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/x?page=2&limit=5", nil)

	page, size := ParsePaginationParams(c)
	assert.Equal(t, 2, page)
	assert.Equal(t, 5, size)
}

func TestCalculateSliceIndices(t *testing.T) {
	start, end := CalculateSliceIndices(2, 10, 15)
	assert.Equal(t, 10, start)
	assert.Equal(t, 15, end)

	start, end = CalculateSliceIndices(5, 10, 15)
	assert.Equal(t, 15, start)
	assert.Equal(t, 15, end)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-09", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("2025-03-09T10:00:00Z", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 10, d.Hour())

	_, err = ParseDate("09/03/2025", time.UTC)
	assert.Error(t, err)

	opt, err := ParseOptionalDate(nil, time.UTC)
	require.NoError(t, err)
	assert.Nil(t, opt)
}

func TestMonthRange(t *testing.T) {
	start, end := MonthRange(time.Date(2025, 12, 17, 8, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestParseDuration_Default(t *testing.T) {
	assert.Equal(t, 15*time.Minute, ParseDuration("bogus", 15*time.Minute))
	assert.Equal(t, 2*time.Hour, ParseDuration("2h", time.Minute))
}
