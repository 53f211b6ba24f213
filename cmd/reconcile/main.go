// Command reconcile runs one reconciliation pass and exits.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/app"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/config"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/reconciliation"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/logger"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/otel"
)

type options struct {
	from string
	to   string
	mode string
	days int
}

func main() {
	var opts options
	flag.StringVar(&opts.from, "from", "", "first date to reconcile (YYYY-MM-DD)")
	flag.StringVar(&opts.to, "to", "", "last date to reconcile (YYYY-MM-DD)")
	flag.StringVar(&opts.mode, "mode", "", "range mode when no dates are given: month_to_date or rolling (default from RECONCILE_RANGE_MODE)")
	flag.IntVar(&opts.days, "days", 0, "days for rolling mode (default from RECONCILE_DAYS)")
	flag.Parse()

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// resolveRange turns the flags into a range, falling back to the configured
// mode and days.
func resolveRange(opts options, cfg config.ReconciliationConfig, today time.Time) (reconciliation.Range, error) {
	req := reconciliation.RunRequest{
		StartDate: opts.from,
		EndDate:   opts.to,
		Mode:      opts.mode,
		Days:      opts.days,
	}
	if req.Mode == "" {
		req.Mode = cfg.Mode
	}
	if req.Days == 0 {
		req.Days = cfg.Days
	}
	return req.ToRange(today)
}

// todayIn is the calendar date of now in the shift's reference time zone.
func todayIn(shift schedule.ShiftConfig, now time.Time) (time.Time, error) {
	loc, err := shift.Location()
	if err != nil {
		return time.Time{}, err
	}
	return schedule.DayOf(now, loc), nil
}

func run(opts options) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	slog.SetDefault(logger.New(os.Stderr, cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer shutdownTracing(context.Background())

	storage, err := app.OpenStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer storage.Close()

	shift, err := storage.Shifts.Get(ctx)
	if err != nil {
		return err
	}
	today, err := todayIn(shift, time.Now())
	if err != nil {
		return err
	}
	rng, err := resolveRange(opts, cfg.Reconciliation, today)
	if err != nil {
		return err
	}

	dispatcher, err := app.NewDispatcher(cfg, storage.Directory, nil)
	if err != nil {
		return err
	}
	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	dispatched := make(chan struct{})
	go func() {
		defer close(dispatched)
		_ = dispatcher.Run(dispatchCtx)
	}()
	defer func() {
		stopDispatch()
		<-dispatched
	}()

	services := app.NewServices(storage, dispatcher, time.Now)
	summary, err := services.Reconciliation.Run(ctx, rng)
	if err != nil {
		return err
	}

	out := json.NewEncoder(os.Stdout)
	out.SetIndent("", "  ")
	return out.Encode(summary.ToResponse())
}
