package reconciliation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/validator"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRanges(t *testing.T) {
	today := time.Date(2025, 6, 12, 15, 30, 0, 0, time.UTC)

	mtd := MonthToDate(today)
	assert.Equal(t, date(2025, 6, 1), mtd.From)
	assert.Equal(t, date(2025, 6, 12), mtd.To)
	assert.Len(t, mtd.Days(), 12)

	rolling := Rolling(today, 7)
	assert.Equal(t, date(2025, 6, 6), rolling.From)
	assert.Len(t, rolling.Days(), 7)

	assert.Equal(t, Range{From: date(2025, 6, 12), To: date(2025, 6, 12)}, Rolling(today, 0))

	_, err := ForMode("weekly", today, 7)
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestRunRequest_ToRange(t *testing.T) {
	today := date(2025, 6, 12)

	r, err := (&RunRequest{StartDate: "2025-06-01", EndDate: "2025-06-03"}).ToRange(today)
	require.NoError(t, err)
	assert.Equal(t, Range{From: date(2025, 6, 1), To: date(2025, 6, 3)}, r)

	r, err = (&RunRequest{}).ToRange(today)
	require.NoError(t, err)
	assert.Equal(t, MonthToDate(today), r)

	r, err = (&RunRequest{Mode: "rolling", Days: 3}).ToRange(today)
	require.NoError(t, err)
	assert.Equal(t, date(2025, 6, 10), r.From)

	_, err = (&RunRequest{Mode: "rolling"}).ToRange(today)
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	_, err = (&RunRequest{StartDate: "2025-06-05", EndDate: "2025-06-01"}).ToRange(today)
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = (&RunRequest{StartDate: "06/01/2025", EndDate: "2025-06-01"}).ToRange(today)
	assert.ErrorAs(t, err, &verrs)
}
