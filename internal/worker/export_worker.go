// Package worker keeps on-disk calendar exports in step with the store by
// consuming the change feed.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"eventi/internal/amqp"
	"eventi/internal/clock"
	"eventi/internal/core"
	"eventi/internal/ics"
	applog "eventi/internal/log"
)

// MonthLister is the slice of the store the worker reads from.
type MonthLister interface {
	FindByRange(ctx context.Context, start, end core.Date) ([]core.Event, error)
}

// ChangeConsumer delivers change messages until the context is cancelled.
type ChangeConsumer interface {
	ConsumeEventChanges(ctx context.Context, handler func(*amqp.EventChangeMessage) error) error
}

// ExportWorker regenerates the iCalendar file of a month whenever one of its
// events changes. Files land in dir as events-YYYY-MM.ics; writes go through
// a temp file and rename so readers never see a partial calendar.
type ExportWorker struct {
	store MonthLister
	clk   clock.Clock
	dir   string
}

func NewExportWorker(store MonthLister, clk clock.Clock, dir string) *ExportWorker {
	return &ExportWorker{
		store: store,
		clk:   clk,
		dir:   dir,
	}
}

// Run exports the current month once, then follows the change feed until the
// context is cancelled.
func (w *ExportWorker) Run(ctx context.Context, consumer ChangeConsumer) error {
	now := w.clk.Now()
	if err := w.ExportMonth(ctx, now.Year(), int(now.Month())); err != nil {
		// Startup export is best effort; the feed will catch the month up.
		slog.ErrorContext(ctx, "Initial month export failed", applog.FieldError, err)
	}

	return consumer.ConsumeEventChanges(ctx, func(msg *amqp.EventChangeMessage) error {
		return w.HandleChange(ctx, msg)
	})
}

// HandleChange regenerates the export for the month named in the message.
// Messages without a date fall back to the current month.
func (w *ExportWorker) HandleChange(ctx context.Context, msg *amqp.EventChangeMessage) error {
	slog.InfoContext(ctx, "Processing change message",
		applog.FieldEventID, msg.ID,
		"action", msg.Action,
		applog.FieldEventDate, msg.Date)

	year, month := w.targetMonth(msg)
	if err := w.ExportMonth(ctx, year, month); err != nil {
		return fmt.Errorf("handle change for event %d: %w", msg.ID, err)
	}
	return nil
}

// ExportMonth writes the iCalendar file for one month.
func (w *ExportWorker) ExportMonth(ctx context.Context, year, month int) error {
	start, end := core.MonthRange(year, month)
	events, err := w.store.FindByRange(ctx, start, end)
	if err != nil {
		return fmt.Errorf("load events for %04d-%02d: %w", year, month, err)
	}

	payload, err := ics.ExportMonth(events, w.clk.Now())
	if err != nil {
		return fmt.Errorf("serialize calendar for %04d-%02d: %w", year, month, err)
	}

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	name := fmt.Sprintf("events-%04d-%02d.ics", year, month)
	tmp, err := os.CreateTemp(w.dir, name+".tmp")
	if err != nil {
		return fmt.Errorf("create temp export file: %w", err)
	}
	if _, err := tmp.WriteString(payload); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write export file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close export file: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(w.dir, name)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("publish export file: %w", err)
	}

	slog.InfoContext(ctx, "Month export written",
		applog.FieldOperation, applog.OpExport,
		applog.FieldYear, year,
		applog.FieldMonth, month,
		"events", len(events),
		applog.FieldPath, filepath.Join(w.dir, name))
	return nil
}

func (w *ExportWorker) targetMonth(msg *amqp.EventChangeMessage) (int, int) {
	if msg.Date != "" {
		if d, err := core.ParseDate(msg.Date); err == nil {
			return d.Year(), d.Month()
		}
	}
	now := w.clk.Now()
	return now.Year(), int(now.Month())
}

// Interval export keeps files fresh even if feed messages are lost.
func (w *ExportWorker) RunPeriodic(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := w.clk.Now()
			if err := w.ExportMonth(ctx, now.Year(), int(now.Month())); err != nil {
				slog.ErrorContext(ctx, "Periodic month export failed", applog.FieldError, err)
			}
		case <-ctx.Done():
			return
		}
	}
}
