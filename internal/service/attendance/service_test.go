package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/authority"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/user"
	authoritysvc "github.com/cmlabs-hris/hris-attendance-engine/internal/service/authority"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/testkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

var everyDay = []time.Weekday{
	time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday,
}

func at(d, hh, mm int) time.Time {
	return time.Date(2025, 6, d, hh, mm, 0, 0, time.UTC)
}

func newTestService(t *testing.T) (attendance.Service, *testkit.Store) {
	t.Helper()
	store := testkit.NewStore()
	store.SetShift(&schedule.ShiftConfig{
		ID:                 "cfg-1",
		Timezone:           "UTC",
		CheckIn:            schedule.ClockTime{Hour: 9},
		CheckOut:           schedule.ClockTime{Hour: 18},
		WorkingDays:        []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		FullDayHours:       8,
		HalfDayHours:       4,
		GracePeriodMinutes: 15,
		Breaks: []schedule.BreakWindow{
			{ID: "lunch", Name: "Lunch", Start: schedule.ClockTime{Hour: 13}, End: schedule.ClockTime{Hour: 13, Minute: 30}, IsActive: true, Weekdays: everyDay},
		},
	})
	store.AddDepartment(employee.Department{ID: "dept-1", HeadID: strPtr("head-1")})
	store.AddEmployee(employee.Employee{
		ID:               "emp-1",
		DepartmentID:     strPtr("dept-1"),
		ManagerID:        strPtr("mgr-1"),
		HireDate:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EmploymentStatus: employee.EmploymentStatusActive,
	})

	svc := NewAttendanceService(
		store.Transactor(),
		store.Attendance(),
		store.Shift(),
		store.Directory(),
		authoritysvc.NewChecker(store.Directory()),
	)
	return svc, store
}

func TestOpenAndCloseDay(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// 2025-06-02 is a Monday.
	opened, err := svc.OpenDay(ctx, attendance.OpenDayRequest{EmployeeID: "emp-1", CheckIn: at(2, 9, 0)})
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusInProgress, opened.Status)
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), opened.Date)
	assert.Zero(t, opened.LateMinutes)

	_, err = svc.OpenDay(ctx, attendance.OpenDayRequest{EmployeeID: "emp-1", CheckIn: at(2, 10, 0)})
	assert.ErrorIs(t, err, attendance.ErrAlreadyOpen)

	closed, err := svc.CloseDay(ctx, attendance.CloseDayRequest{EmployeeID: "emp-1", CheckOut: at(2, 18, 0)})
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, closed.Status)
	assert.Equal(t, 9.0, closed.TotalLoggedHours)
	assert.Equal(t, 30.0, closed.BreakMinutes)
	assert.Equal(t, 8.5, closed.EffectiveWorkHours)
	assert.Equal(t, 5.56, closed.ShrinkagePercentage)
	require.NotNil(t, closed.CheckOutStatus)
	assert.Equal(t, attendance.CheckOutStatusRegular, *closed.CheckOutStatus)

	_, err = svc.CloseDay(ctx, attendance.CloseDayRequest{EmployeeID: "emp-1", CheckOut: at(2, 19, 0)})
	assert.ErrorIs(t, err, attendance.ErrNoOpenRecord)

	_, err = svc.OpenDay(ctx, attendance.OpenDayRequest{EmployeeID: "emp-1", CheckIn: at(2, 20, 0)})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)
}

func TestOpenDay_LateAndPlaceholder(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	created, err := svc.UpsertAbsent(ctx, "emp-1", time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, created)

	opened, err := svc.OpenDay(ctx, attendance.OpenDayRequest{EmployeeID: "emp-1", CheckIn: at(3, 9, 40)})
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusInProgress, opened.Status)
	assert.Equal(t, 40, opened.LateMinutes)
	assert.Len(t, store.Records(), 1)
}

func TestCloseDay_InvalidRangeAndDatePin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CloseDay(ctx, attendance.CloseDayRequest{EmployeeID: "emp-1", CheckOut: at(2, 18, 0)})
	assert.ErrorIs(t, err, attendance.ErrNoOpenRecord)

	_, err = svc.OpenDay(ctx, attendance.OpenDayRequest{EmployeeID: "emp-1", CheckIn: at(2, 9, 0)})
	require.NoError(t, err)

	_, err = svc.CloseDay(ctx, attendance.CloseDayRequest{EmployeeID: "emp-1", CheckOut: at(2, 9, 0)})
	assert.ErrorIs(t, err, attendance.ErrInvalidRange)

	other := time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)
	_, err = svc.CloseDay(ctx, attendance.CloseDayRequest{EmployeeID: "emp-1", Date: &other, CheckOut: at(2, 18, 0)})
	assert.ErrorIs(t, err, attendance.ErrNoOpenRecord)
}

func TestCloseDay_OvernightUsesOpenRecord(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.OpenDay(ctx, attendance.OpenDayRequest{EmployeeID: "emp-1", CheckIn: at(2, 22, 0)})
	require.NoError(t, err)

	closed, err := svc.CloseDay(ctx, attendance.CloseDayRequest{EmployeeID: "emp-1", CheckOut: at(3, 4, 0)})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), closed.Date)
	assert.Equal(t, 6.0, closed.EffectiveWorkHours)
	assert.Equal(t, attendance.StatusHalfDay, closed.Status)
}

func TestOpenDay_ConfigMissing(t *testing.T) {
	svc, store := newTestService(t)
	store.SetShift(nil)

	_, err := svc.OpenDay(context.Background(), attendance.OpenDayRequest{EmployeeID: "emp-1", CheckIn: at(2, 9, 0)})
	assert.ErrorIs(t, err, schedule.ErrConfigMissing)
}

func TestUpsertAbsent_NeverOverwrites(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := svc.OpenDay(ctx, attendance.OpenDayRequest{EmployeeID: "emp-1", CheckIn: at(2, 9, 0)})
	require.NoError(t, err)

	created, err := svc.UpsertAbsent(ctx, "emp-1", time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, created)

	rec, ok := store.RecordFor("emp-1", time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, attendance.StatusInProgress, rec.Status)
}

func TestGetAndList_Visibility(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	opened, err := svc.OpenDay(ctx, attendance.OpenDayRequest{EmployeeID: "emp-1", CheckIn: at(2, 9, 0)})
	require.NoError(t, err)

	self := user.WithIdentity(ctx, user.Identity{EmployeeID: "emp-1", Role: user.RoleEmployee})
	got, err := svc.Get(self, opened.ID)
	require.NoError(t, err)
	assert.Equal(t, opened.ID, got.ID)

	manager := user.WithIdentity(ctx, user.Identity{EmployeeID: "mgr-1", Role: user.RoleManager})
	_, err = svc.Get(manager, opened.ID)
	assert.NoError(t, err)

	peer := user.WithIdentity(ctx, user.Identity{EmployeeID: "emp-2", Role: user.RoleEmployee})
	_, err = svc.Get(peer, opened.ID)
	assert.ErrorIs(t, err, authority.ErrUnauthorized)

	records, err := svc.List(self, attendance.ListRequest{StartDate: "2025-06-01", EndDate: "2025-06-30"})
	require.NoError(t, err)
	assert.Len(t, records, 1)

	_, err = svc.List(peer, attendance.ListRequest{EmployeeID: "emp-1", StartDate: "2025-06-01", EndDate: "2025-06-30"})
	assert.ErrorIs(t, err, authority.ErrUnauthorized)

	_, err = svc.Get(ctx, opened.ID)
	assert.ErrorIs(t, err, user.ErrIdentityMissing)
}
