// Package app wires configuration into storage, services and notification
// delivery for the binaries under cmd/.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/config"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/authority"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/correction"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/geofence"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/holiday"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/reconciliation"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/email"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/telegram"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/repository/postgresql"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/repository/sqlite"
	attendanceService "github.com/cmlabs-hris/hris-attendance-engine/internal/service/attendance"
	authorityService "github.com/cmlabs-hris/hris-attendance-engine/internal/service/authority"
	correctionService "github.com/cmlabs-hris/hris-attendance-engine/internal/service/correction"
	geofenceService "github.com/cmlabs-hris/hris-attendance-engine/internal/service/geofence"
	notificationService "github.com/cmlabs-hris/hris-attendance-engine/internal/service/notification"
	reconciliationService "github.com/cmlabs-hris/hris-attendance-engine/internal/service/reconciliation"
)

// Storage holds the repositories of one backing store.
type Storage struct {
	Tx           database.Transactor
	Attendance   attendance.Repository
	Corrections  correction.Repository
	Shifts       schedule.Repository
	Zones        geofence.ZoneRepository
	Observations geofence.ObservationRepository
	Directory    employee.Directory
	Leaves       leave.Calendar
	Holidays     holiday.Calendar

	Ping  func(ctx context.Context) error
	Close func()
}

// OpenStorage connects to the configured driver and brings its schema up to
// date.
func OpenStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	switch cfg.Database.Driver {
	case "postgres":
		return openPostgres(ctx, cfg)
	case "sqlite":
		return openSQLite(cfg)
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
}

func openPostgres(ctx context.Context, cfg *config.Config) (*Storage, error) {
	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := postgresql.ApplySchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	slog.InfoContext(ctx, "Connected to database", "driver", "postgres", "host", cfg.Database.Host, "name", cfg.Database.Name)

	return &Storage{
		Tx:           postgresql.NewTransactor(db),
		Attendance:   postgresql.NewAttendanceRepository(db),
		Corrections:  postgresql.NewCorrectionRepository(db),
		Shifts:       postgresql.NewShiftConfigRepository(db),
		Zones:        postgresql.NewGeofenceZoneRepository(db),
		Observations: postgresql.NewGeofenceObservationRepository(db),
		Directory:    postgresql.NewEmployeeDirectory(db),
		Leaves:       postgresql.NewLeaveCalendar(db),
		Holidays:     postgresql.NewHolidayCalendar(db),
		Ping:         db.Ping,
		Close:        db.Close,
	}, nil
}

func openSQLite(cfg *config.Config) (*Storage, error) {
	db, err := sqlite.Open(cfg.Database.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	slog.Info("Connected to database", "driver", "sqlite", "path", cfg.Database.SQLitePath)

	return &Storage{
		Tx:           sqlite.NewTransactor(db),
		Attendance:   sqlite.NewAttendanceRepository(db),
		Corrections:  sqlite.NewCorrectionRepository(db),
		Shifts:       sqlite.NewShiftConfigRepository(db),
		Zones:        sqlite.NewGeofenceZoneRepository(db),
		Observations: sqlite.NewGeofenceObservationRepository(db),
		Directory:    sqlite.NewEmployeeDirectory(db),
		Leaves:       sqlite.NewLeaveCalendar(db),
		Holidays:     sqlite.NewHolidayCalendar(db),
		Ping:         db.PingContext,
		Close:        closer(db),
	}, nil
}

func closer(db *sql.DB) func() {
	return func() {
		if err := db.Close(); err != nil {
			slog.Error("Failed to close sqlite database", "error", err)
		}
	}
}

// Services are the domain services built over one Storage.
type Services struct {
	Authority      authority.Checker
	Attendance     attendance.Service
	Correction     correction.Service
	Geofence       geofence.Service
	Reconciliation reconciliation.Service
}

func NewServices(st *Storage, notifier notification.Notifier, now func() time.Time) Services {
	checker := authorityService.NewChecker(st.Directory)
	attendanceSvc := attendanceService.NewAttendanceService(st.Tx, st.Attendance, st.Shifts, st.Directory, checker)

	return Services{
		Authority:  checker,
		Attendance: attendanceSvc,
		Correction: correctionService.NewCorrectionService(
			st.Tx,
			st.Corrections,
			st.Attendance,
			attendanceSvc,
			st.Shifts,
			st.Directory,
			checker,
			notifier,
		),
		Geofence: geofenceService.NewGeofenceService(
			st.Zones,
			st.Observations,
			st.Shifts,
			st.Directory,
			checker,
			notifier,
			now,
		),
		Reconciliation: reconciliationService.NewReconciliationService(
			st.Attendance,
			attendanceSvc,
			st.Shifts,
			st.Directory,
			st.Leaves,
			st.Holidays,
			notifier,
			now,
		),
	}
}

// NewDispatcher builds the notification dispatcher with every configured
// sink. A nil hub leaves out the event stream sink.
func NewDispatcher(cfg *config.Config, directory employee.Directory, hub *sse.Hub) (*notificationService.Dispatcher, error) {
	sinks := []notification.Sink{notificationService.LogSink{}}

	if hub != nil {
		sinks = append(sinks, notificationService.NewSSESink(hub))
	}

	if cfg.SMTP.Host != "" {
		emailSvc, err := email.NewEmailService(cfg.SMTP)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, notificationService.NewEmailSink(emailSvc, directory))
	}

	if cfg.Telegram.Token != "" {
		client, err := telegram.New(cfg.Telegram.Token, cfg.Telegram.OpsChatID)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, notificationService.NewTelegramSink(client, directory))
	}

	names := make([]string, 0, len(sinks))
	for _, s := range sinks {
		names = append(names, s.Name())
	}
	slog.Info("Notification sinks configured", "sinks", names)

	return notificationService.NewDispatcher(notificationService.Config{
		WorkerCount: cfg.Notification.Workers,
		QueueSize:   cfg.Notification.QueueSize,
	}, sinks...), nil
}
