package holiday

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestHoliday_Covers(t *testing.T) {
	tests := []struct {
		name    string
		holiday Holiday
		day     time.Time
		want    bool
	}{
		{
			name:    "inside single range",
			holiday: Holiday{IsActive: true, StartDate: date(2025, 3, 31), EndDate: date(2025, 4, 1)},
			day:     date(2025, 4, 1),
			want:    true,
		},
		{
			name:    "outside single range",
			holiday: Holiday{IsActive: true, StartDate: date(2025, 3, 31), EndDate: date(2025, 4, 1)},
			day:     date(2026, 4, 1),
			want:    false,
		},
		{
			name:    "inactive",
			holiday: Holiday{IsActive: false, StartDate: date(2025, 8, 17), EndDate: date(2025, 8, 17)},
			day:     date(2025, 8, 17),
			want:    false,
		},
		{
			name:    "recurring in later year",
			holiday: Holiday{IsActive: true, RecurringYearly: true, StartDate: date(2020, 8, 17), EndDate: date(2020, 8, 17)},
			day:     date(2025, 8, 17),
			want:    true,
		},
		{
			name:    "recurring wrapping new year",
			holiday: Holiday{IsActive: true, RecurringYearly: true, StartDate: date(2020, 12, 31), EndDate: date(2021, 1, 1)},
			day:     date(2025, 1, 1),
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.holiday.Covers(tt.day))
		})
	}
}
