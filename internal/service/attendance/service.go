package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/authority"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/database"
	authoritysvc "github.com/cmlabs-hris/hris-attendance-engine/internal/service/authority"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/service/workhours"
	"github.com/google/uuid"
)

const absentReason = "No attendance recorded"

type AttendanceServiceImpl struct {
	tx        database.Transactor
	records   attendance.Repository
	shifts    schedule.Repository
	directory employee.Directory
	authority authority.Checker
}

// OpenDay implements attendance.Service.
func (a *AttendanceServiceImpl) OpenDay(ctx context.Context, req attendance.OpenDayRequest) (attendance.Record, error) {
	if err := req.Validate(); err != nil {
		return attendance.Record{}, err
	}

	calc, err := a.calculator(ctx)
	if err != nil {
		return attendance.Record{}, err
	}

	emp, err := a.directory.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to resolve employee: %w", err)
	}
	day := calc.DayOf(req.CheckIn)
	if !emp.IsEmployedOn(day) {
		return attendance.Record{}, employee.ErrEmployeeNotFound
	}

	checkIn := req.CheckIn.UTC()
	lateMinutes := calc.LateMinutes(checkIn)

	var result attendance.Record
	err = a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		open, err := a.records.GetOpenByEmployee(ctx, req.EmployeeID)
		if err != nil {
			return fmt.Errorf("failed to check open attendance: %w", err)
		}
		if open != nil {
			return attendance.ErrAlreadyOpen
		}

		existing, err := a.records.GetByEmployeeAndDate(ctx, req.EmployeeID, day)
		if err != nil {
			return fmt.Errorf("failed to check today's attendance: %w", err)
		}

		if existing != nil {
			if existing.CheckOut != nil || existing.CheckIn != nil {
				return attendance.ErrAlreadyCheckedOut
			}
			// A placeholder written by reconciliation or a pending
			// missing-entry correction is taken over by the real check-in.
			existing.CheckIn = &checkIn
			existing.Status = attendance.StatusInProgress
			existing.StatusReason = ""
			existing.LateMinutes = lateMinutes
			updated, err := a.records.UpdateIfVersion(ctx, *existing)
			if err != nil {
				return err
			}
			result = updated
			return nil
		}

		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate attendance id: %w", err)
		}
		created, err := a.records.Create(ctx, attendance.Record{
			ID:          id.String(),
			EmployeeID:  req.EmployeeID,
			Date:        day,
			CheckIn:     &checkIn,
			Status:      attendance.StatusInProgress,
			LateMinutes: lateMinutes,
		})
		if err != nil {
			if errors.Is(err, attendance.ErrDuplicateDay) {
				return attendance.ErrAlreadyOpen
			}
			return fmt.Errorf("failed to create attendance: %w", err)
		}
		result = created
		return nil
	})
	if err != nil {
		return attendance.Record{}, err
	}

	slog.InfoContext(ctx, "attendance opened",
		"employee_id", result.EmployeeID,
		"attendance_id", result.ID,
		"date", result.Date.Format("2006-01-02"),
		"late_minutes", result.LateMinutes,
	)
	return result, nil
}

// CloseDay implements attendance.Service.
func (a *AttendanceServiceImpl) CloseDay(ctx context.Context, req attendance.CloseDayRequest) (attendance.Record, error) {
	if err := req.Validate(); err != nil {
		return attendance.Record{}, err
	}

	calc, err := a.calculator(ctx)
	if err != nil {
		return attendance.Record{}, err
	}

	open, err := a.records.GetOpenByEmployee(ctx, req.EmployeeID)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to get open attendance: %w", err)
	}
	if open == nil {
		return attendance.Record{}, attendance.ErrNoOpenRecord
	}
	if req.Date != nil && !sameDate(open.Date, *req.Date) {
		return attendance.Record{}, attendance.ErrNoOpenRecord
	}

	checkOut := req.CheckOut.UTC()
	outcome, err := calc.Derive(*open.CheckIn, checkOut)
	if err != nil {
		return attendance.Record{}, err
	}

	regular := attendance.CheckOutStatusRegular
	record := *open
	record.CheckOut = &checkOut
	record.CheckOutStatus = &regular
	outcome.Apply(&record)

	updated, err := a.records.UpdateIfVersion(ctx, record)
	if err != nil {
		if errors.Is(err, attendance.ErrRecordConflict) {
			return attendance.Record{}, a.explainConflict(ctx, open.ID)
		}
		return attendance.Record{}, fmt.Errorf("failed to close attendance: %w", err)
	}

	slog.InfoContext(ctx, "attendance closed",
		"employee_id", updated.EmployeeID,
		"attendance_id", updated.ID,
		"status", updated.Status,
		"effective_work_hours", updated.EffectiveWorkHours,
	)
	return updated, nil
}

// explainConflict turns a lost compare-and-set into the error the caller
// would have seen had it arrived second.
func (a *AttendanceServiceImpl) explainConflict(ctx context.Context, id string) error {
	current, err := a.records.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to reload attendance: %w", err)
	}
	if !current.IsOpen() {
		return attendance.ErrNoOpenRecord
	}
	return attendance.ErrRecordConflict
}

// UpsertAbsent implements attendance.Service.
func (a *AttendanceServiceImpl) UpsertAbsent(ctx context.Context, employeeID string, date time.Time) (bool, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return false, fmt.Errorf("failed to generate attendance id: %w", err)
	}
	created, err := a.records.CreateIfAbsent(ctx, attendance.Record{
		ID:           id.String(),
		EmployeeID:   employeeID,
		Date:         date,
		Status:       attendance.StatusAbsent,
		StatusReason: absentReason,
	})
	if err != nil {
		return false, fmt.Errorf("failed to upsert absent attendance: %w", err)
	}
	return created, nil
}

// Get implements attendance.Service.
func (a *AttendanceServiceImpl) Get(ctx context.Context, id string) (attendance.Record, error) {
	actor, err := user.IdentityFromContext(ctx)
	if err != nil {
		return attendance.Record{}, err
	}

	record, err := a.records.GetByID(ctx, id)
	if err != nil {
		return attendance.Record{}, err
	}
	if err := authoritysvc.CanView(ctx, a.authority, actor, record.EmployeeID); err != nil {
		return attendance.Record{}, err
	}
	return record, nil
}

// List implements attendance.Service.
func (a *AttendanceServiceImpl) List(ctx context.Context, req attendance.ListRequest) ([]attendance.Record, error) {
	actor, err := user.IdentityFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if req.EmployeeID == "" {
		req.EmployeeID = actor.EmployeeID
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := authoritysvc.CanView(ctx, a.authority, actor, req.EmployeeID); err != nil {
		return nil, err
	}

	filter := attendance.Filter{
		EmployeeID: &req.EmployeeID,
		From:       req.From,
		To:         req.To,
	}
	if req.Status != nil {
		s := attendance.Status(*req.Status)
		filter.Status = &s
	}

	records, err := a.records.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	return records, nil
}

func (a *AttendanceServiceImpl) calculator(ctx context.Context) (*workhours.Calculator, error) {
	cfg, err := a.shifts.Get(ctx)
	if err != nil {
		if errors.Is(err, schedule.ErrConfigMissing) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load shift config: %w", err)
	}
	return workhours.NewCalculator(cfg)
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func NewAttendanceService(
	tx database.Transactor,
	records attendance.Repository,
	shifts schedule.Repository,
	directory employee.Directory,
	checker authority.Checker,
) attendance.Service {
	return &AttendanceServiceImpl{
		tx:        tx,
		records:   records,
		shifts:    shifts,
		directory: directory,
		authority: checker,
	}
}
