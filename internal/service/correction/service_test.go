package correction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/authority"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/correction"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/validator"
	attendancesvc "github.com/cmlabs-hris/hris-attendance-engine/internal/service/attendance"
	authoritysvc "github.com/cmlabs-hris/hris-attendance-engine/internal/service/authority"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/testkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

var everyDay = []time.Weekday{
	time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday,
}

func at(d, hh, mm int) *time.Time {
	t := time.Date(2025, 6, d, hh, mm, 0, 0, time.UTC)
	return &t
}

func rfc(t *time.Time) *string {
	s := t.Format(time.RFC3339)
	return &s
}

var (
	employeeCtx = user.WithIdentity(context.Background(), user.Identity{EmployeeID: "emp-1", Role: user.RoleEmployee})
	managerCtx  = user.WithIdentity(context.Background(), user.Identity{EmployeeID: "mgr-1", Role: user.RoleManager})
	outsiderCtx = user.WithIdentity(context.Background(), user.Identity{EmployeeID: "mgr-2", Role: user.RoleManager})
	hrCtx       = user.WithIdentity(context.Background(), user.Identity{EmployeeID: "hr-1", Role: user.RoleHR})
)

type fixture struct {
	svc      correction.Service
	store    *testkit.Store
	notifier *testkit.Notifier
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := testkit.NewStore()
	store.SetShift(&schedule.ShiftConfig{
		ID:           "cfg-1",
		Timezone:     "UTC",
		CheckIn:      schedule.ClockTime{Hour: 9},
		CheckOut:     schedule.ClockTime{Hour: 18},
		WorkingDays:  []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		FullDayHours: 8,
		HalfDayHours: 4,
		Breaks: []schedule.BreakWindow{
			{ID: "lunch", Start: schedule.ClockTime{Hour: 13}, End: schedule.ClockTime{Hour: 13, Minute: 30}, IsActive: true, Weekdays: everyDay},
		},
	})
	store.AddDepartment(employee.Department{ID: "dept-1"})
	store.AddEmployee(employee.Employee{
		ID:               "emp-1",
		DepartmentID:     strPtr("dept-1"),
		ManagerID:        strPtr("mgr-1"),
		HireDate:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EmploymentStatus: employee.EmploymentStatusActive,
	})

	checker := authoritysvc.NewChecker(store.Directory())
	attendanceService := attendancesvc.NewAttendanceService(
		store.Transactor(), store.Attendance(), store.Shift(), store.Directory(), checker,
	)
	notifier := &testkit.Notifier{}
	svc := NewCorrectionService(
		store.Transactor(),
		store.Corrections(),
		store.Attendance(),
		attendanceService,
		store.Shift(),
		store.Directory(),
		checker,
		notifier,
	)
	return fixture{svc: svc, store: store, notifier: notifier}
}

// closedDay stores a closed record for 2025-06-02 from 09:00 to 17:00.
func (f fixture) closedDay() attendance.Record {
	regular := attendance.CheckOutStatusRegular
	rec := attendance.Record{
		ID:             "rec-1",
		EmployeeID:     "emp-1",
		Date:           time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		CheckIn:        at(2, 9, 0),
		CheckOut:       at(2, 17, 0),
		CheckOutStatus: &regular,
		Status:         attendance.StatusHalfDay,
		WorkHours:      attendance.WorkHours{TotalLoggedHours: 8, BreakMinutes: 30, EffectiveWorkHours: 7.5, ShrinkagePercentage: 6.25},
	}
	f.store.PutRecord(rec)
	return rec
}

func TestReview_ApproveCheckOutOnly(t *testing.T) {
	f := newFixture(t)
	rec := f.closedDay()

	submitted, err := f.svc.Submit(employeeCtx, correction.SubmitRequest{
		AttendanceID:      &rec.ID,
		Type:              string(correction.TypeTimeAdjustment),
		RequestedCheckOut: rfc(at(2, 18, 0)),
		Reason:            "left at 18:00, badge reader was down",
	})
	require.NoError(t, err)
	assert.Equal(t, correction.StatusPending, submitted.Status)
	assert.Equal(t, 7.5, submitted.Before.WorkHours)
	require.Len(t, f.notifier.OfType(notification.TypeCorrectionSubmitted), 1)
	assert.Equal(t, "mgr-1", f.notifier.OfType(notification.TypeCorrectionSubmitted)[0].RecipientID)

	approved, err := f.svc.Review(managerCtx, correction.ReviewRequest{ID: submitted.ID, Decision: correction.DecisionApprove})
	require.NoError(t, err)
	assert.Equal(t, correction.StatusApproved, approved.Status)
	require.NotNil(t, approved.Applied)
	assert.Equal(t, 8.5, approved.Applied.WorkHours)
	assert.Equal(t, attendance.StatusPresent, approved.Applied.Status)

	updated, ok := f.store.RecordFor("emp-1", rec.Date)
	require.True(t, ok)
	assert.True(t, updated.CheckIn.Equal(*rec.CheckIn))
	assert.True(t, updated.CheckOut.Equal(*at(2, 18, 0)))
	assert.Equal(t, 9.0, updated.TotalLoggedHours)
	assert.Equal(t, 8.5, updated.EffectiveWorkHours)
	assert.Equal(t, attendance.StatusPresent, updated.Status)
	assert.True(t, updated.IsManualEntry)
	require.NotNil(t, updated.CheckOutStatus)
	assert.Equal(t, attendance.CheckOutStatusCorrected, *updated.CheckOutStatus)
	assert.Contains(t, updated.Remarks, submitted.ID)

	assert.Len(t, f.notifier.OfType(notification.TypeCorrectionApproved), 1)
}

func TestReview_AtMostOnce(t *testing.T) {
	f := newFixture(t)
	rec := f.closedDay()

	submitted, err := f.svc.Submit(employeeCtx, correction.SubmitRequest{
		AttendanceID:    &rec.ID,
		Type:            string(correction.TypeStatusChange),
		RequestedStatus: strPtr(string(attendance.StatusPresent)),
		Reason:          "client meeting offsite",
	})
	require.NoError(t, err)

	_, err = f.svc.Review(managerCtx, correction.ReviewRequest{ID: submitted.ID, Decision: correction.DecisionApprove})
	require.NoError(t, err)

	_, err = f.svc.Review(managerCtx, correction.ReviewRequest{ID: submitted.ID, Decision: correction.DecisionApprove})
	assert.ErrorIs(t, err, correction.ErrAlreadyProcessed)

	_, err = f.svc.Review(hrCtx, correction.ReviewRequest{ID: submitted.ID, Decision: correction.DecisionReject, Comments: strPtr("too late")})
	assert.ErrorIs(t, err, correction.ErrAlreadyProcessed)
}

func TestSubmit_DuplicatePending(t *testing.T) {
	f := newFixture(t)
	rec := f.closedDay()

	req := correction.SubmitRequest{
		AttendanceID:     &rec.ID,
		Type:             string(correction.TypeTimeAdjustment),
		RequestedCheckIn: rfc(at(2, 8, 30)),
		Reason:           "came in early",
	}
	_, err := f.svc.Submit(employeeCtx, req)
	require.NoError(t, err)

	_, err = f.svc.Submit(employeeCtx, req)
	assert.ErrorIs(t, err, correction.ErrDuplicatePending)
}

func TestReview_StatusOverrideWinsOverClassifier(t *testing.T) {
	f := newFixture(t)
	rec := f.closedDay()

	submitted, err := f.svc.Submit(employeeCtx, correction.SubmitRequest{
		AttendanceID:      &rec.ID,
		Type:              string(correction.TypeTimeAdjustment),
		RequestedCheckOut: rfc(at(2, 18, 0)),
		RequestedStatus:   strPtr(string(attendance.StatusLate)),
		Reason:            "arrived late, stayed late",
	})
	require.NoError(t, err)

	approved, err := f.svc.Review(managerCtx, correction.ReviewRequest{ID: submitted.ID, Decision: correction.DecisionApprove})
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusLate, approved.Applied.Status)
	assert.Equal(t, 8.5, approved.Applied.WorkHours)
}

func TestReview_RejectLeavesRecordUntouched(t *testing.T) {
	f := newFixture(t)
	rec := f.closedDay()

	submitted, err := f.svc.Submit(employeeCtx, correction.SubmitRequest{
		AttendanceID:      &rec.ID,
		Type:              string(correction.TypeTimeAdjustment),
		RequestedCheckOut: rfc(at(2, 20, 0)),
		Reason:            "worked late",
	})
	require.NoError(t, err)

	_, err = f.svc.Review(managerCtx, correction.ReviewRequest{ID: submitted.ID, Decision: correction.DecisionReject})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "comments", verrs[0].Field)

	rejected, err := f.svc.Review(managerCtx, correction.ReviewRequest{
		ID:       submitted.ID,
		Decision: correction.DecisionReject,
		Comments: strPtr("no evidence"),
	})
	require.NoError(t, err)
	assert.Equal(t, correction.StatusRejected, rejected.Status)
	assert.Nil(t, rejected.Applied)

	stored, ok := f.store.RecordFor("emp-1", rec.Date)
	require.True(t, ok)
	assert.Equal(t, 1, stored.Version)
	assert.True(t, stored.CheckOut.Equal(*rec.CheckOut))
	assert.False(t, stored.IsManualEntry)

	sent := f.notifier.OfType(notification.TypeCorrectionRejected)
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Message, "no evidence")
}

func TestSubmit_MissingEntryCreatesPlaceholder(t *testing.T) {
	f := newFixture(t)

	submitted, err := f.svc.Submit(employeeCtx, correction.SubmitRequest{
		Date:              strPtr("2025-06-03"),
		Type:              string(correction.TypeMissingEntry),
		RequestedCheckIn:  rfc(at(3, 9, 0)),
		RequestedCheckOut: rfc(at(3, 18, 0)),
		Reason:            "forgot to clock in and out",
	})
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusAbsent, submitted.Before.Status)

	approved, err := f.svc.Review(hrCtx, correction.ReviewRequest{ID: submitted.ID, Decision: correction.DecisionApprove})
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, approved.Applied.Status)
	assert.Equal(t, 8.5, approved.Applied.WorkHours)

	assert.Len(t, f.store.Records(), 1)
}

func TestSubmit_UnknownDayRequiresMissingEntry(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Submit(employeeCtx, correction.SubmitRequest{
		Date:             strPtr("2025-06-04"),
		Type:             string(correction.TypeTimeAdjustment),
		RequestedCheckIn: rfc(at(4, 9, 0)),
		Reason:           "wrong time",
	})
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}

func TestReview_Authority(t *testing.T) {
	f := newFixture(t)
	rec := f.closedDay()

	submitted, err := f.svc.Submit(employeeCtx, correction.SubmitRequest{
		AttendanceID:      &rec.ID,
		Type:              string(correction.TypeTimeAdjustment),
		RequestedCheckOut: rfc(at(2, 18, 0)),
		Reason:            "left later",
	})
	require.NoError(t, err)

	_, err = f.svc.Review(outsiderCtx, correction.ReviewRequest{ID: submitted.ID, Decision: correction.DecisionApprove})
	assert.ErrorIs(t, err, authority.ErrUnauthorized)

	_, err = f.svc.Review(employeeCtx, correction.ReviewRequest{ID: submitted.ID, Decision: correction.DecisionApprove})
	assert.ErrorIs(t, err, authority.ErrUnauthorized)

	_, err = f.svc.Review(outsiderCtx, correction.ReviewRequest{ID: "missing", Decision: correction.DecisionApprove})
	assert.ErrorIs(t, err, authority.ErrUnauthorized)

	_, err = f.svc.Review(hrCtx, correction.ReviewRequest{ID: "missing", Decision: correction.DecisionApprove})
	assert.ErrorIs(t, err, correction.ErrCorrectionNotFound)

	queue, err := f.svc.ListPendingForReviewer(managerCtx)
	require.NoError(t, err)
	assert.Len(t, queue, 1)

	queue, err = f.svc.ListPendingForReviewer(outsiderCtx)
	require.NoError(t, err)
	assert.Empty(t, queue)

	mine, err := f.svc.ListMine(employeeCtx)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	_, err = f.svc.Get(outsiderCtx, submitted.ID)
	assert.ErrorIs(t, err, authority.ErrUnauthorized)
}

func TestReview_FailedDecisionRollsBackRecord(t *testing.T) {
	f := newFixture(t)
	rec := f.closedDay()

	submitted, err := f.svc.Submit(employeeCtx, correction.SubmitRequest{
		AttendanceID:      &rec.ID,
		Type:              string(correction.TypeTimeAdjustment),
		RequestedCheckOut: rfc(at(2, 18, 0)),
		Reason:            "left later",
	})
	require.NoError(t, err)

	boom := errors.New("storage unavailable")
	f.store.BeforeDecide = func(correction.Request) error { return boom }

	_, err = f.svc.Review(managerCtx, correction.ReviewRequest{ID: submitted.ID, Decision: correction.DecisionApprove})
	assert.ErrorIs(t, err, boom)

	stored, ok := f.store.RecordFor("emp-1", rec.Date)
	require.True(t, ok)
	assert.True(t, stored.CheckOut.Equal(*rec.CheckOut))
	assert.False(t, stored.IsManualEntry)
	assert.Empty(t, f.notifier.OfType(notification.TypeCorrectionApproved))
}

func TestReview_DecidedRequestHiddenFromOutsiders(t *testing.T) {
	f := newFixture(t)
	rec := f.closedDay()

	submitted, err := f.svc.Submit(employeeCtx, correction.SubmitRequest{
		AttendanceID:      &rec.ID,
		Type:              string(correction.TypeTimeAdjustment),
		RequestedCheckOut: rfc(at(2, 18, 0)),
		Reason:            "left later",
	})
	require.NoError(t, err)

	_, err = f.svc.Review(managerCtx, correction.ReviewRequest{ID: submitted.ID, Decision: correction.DecisionReject, Comments: strPtr("gate log says 17:00")})
	require.NoError(t, err)

	_, err = f.svc.Review(outsiderCtx, correction.ReviewRequest{ID: submitted.ID, Decision: correction.DecisionApprove})
	assert.ErrorIs(t, err, authority.ErrUnauthorized)
}

func TestReview_DepartmentHeadMayReviewOwnRequest(t *testing.T) {
	f := newFixture(t)
	f.store.AddDepartment(employee.Department{ID: "dept-2", HeadID: strPtr("head-1")})
	f.store.AddEmployee(employee.Employee{
		ID:               "head-1",
		DepartmentID:     strPtr("dept-2"),
		HireDate:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EmploymentStatus: employee.EmploymentStatusActive,
	})
	regular := attendance.CheckOutStatusRegular
	f.store.PutRecord(attendance.Record{
		ID:             "rec-head",
		EmployeeID:     "head-1",
		Date:           time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		CheckIn:        at(2, 9, 0),
		CheckOut:       at(2, 17, 0),
		CheckOutStatus: &regular,
		Status:         attendance.StatusHalfDay,
	})
	headCtx := user.WithIdentity(context.Background(), user.Identity{EmployeeID: "head-1", Role: user.RoleManager})

	recID := "rec-head"
	submitted, err := f.svc.Submit(headCtx, correction.SubmitRequest{
		AttendanceID:      &recID,
		Type:              string(correction.TypeTimeAdjustment),
		RequestedCheckOut: rfc(at(2, 18, 0)),
		Reason:            "stayed for the release",
	})
	require.NoError(t, err)

	reviewed, err := f.svc.Review(headCtx, correction.ReviewRequest{ID: submitted.ID, Decision: correction.DecisionApprove})
	require.NoError(t, err)
	assert.Equal(t, correction.StatusApproved, reviewed.Status)
}

func TestReview_RecordConflictKeepsRequestPending(t *testing.T) {
	f := newFixture(t)
	rec := f.closedDay()

	submitted, err := f.svc.Submit(employeeCtx, correction.SubmitRequest{
		AttendanceID:      &rec.ID,
		Type:              string(correction.TypeTimeAdjustment),
		RequestedCheckOut: rfc(at(2, 18, 0)),
		Reason:            "left later",
	})
	require.NoError(t, err)

	f.store.BeforeRecordUpdate = func(attendance.Record) error { return attendance.ErrRecordConflict }
	_, err = f.svc.Review(managerCtx, correction.ReviewRequest{ID: submitted.ID, Decision: correction.DecisionApprove})
	assert.ErrorIs(t, err, attendance.ErrRecordConflict)

	f.store.BeforeRecordUpdate = nil
	stored, err := f.store.Corrections().GetByID(context.Background(), submitted.ID)
	require.NoError(t, err)
	assert.Equal(t, correction.StatusPending, stored.Status)
	assert.Nil(t, stored.Applied)
}
