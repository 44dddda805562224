package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"eventi/internal/amqp"
	"eventi/internal/clock"
	"eventi/internal/core"
)

type stubLister struct {
	events []core.Event
	err    error
	calls  []string
}

func (s *stubLister) FindByRange(_ context.Context, start, end core.Date) ([]core.Event, error) {
	s.calls = append(s.calls, start.ISO()+".."+end.ISO())
	return s.events, s.err
}

var workerNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.Local)

func TestExportWorker_ExportMonth(t *testing.T) {
	dir := t.TempDir()
	lister := &stubLister{events: []core.Event{{
		ID: 1, Title: "Dentist", Time: "09:00", Date: core.NewDate(2024, 6, 15),
	}}}
	w := NewExportWorker(lister, clock.NewFixed(workerNow), dir)

	if err := w.ExportMonth(context.Background(), 2024, 6); err != nil {
		t.Fatalf("ExportMonth() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "events-2024-06.ics"))
	if err != nil {
		t.Fatalf("export file missing: %v", err)
	}
	body := string(data)
	if !strings.Contains(body, "BEGIN:VCALENDAR") || !strings.Contains(body, "Dentist") {
		t.Errorf("export content wrong: %s", body)
	}

	if len(lister.calls) != 1 || lister.calls[0] != "2024-06-01..2024-07-01" {
		t.Errorf("queried range %v, want [2024-06-01..2024-07-01]", lister.calls)
	}
}

func TestExportWorker_HandleChange_TargetsMessageMonth(t *testing.T) {
	dir := t.TempDir()
	lister := &stubLister{}
	w := NewExportWorker(lister, clock.NewFixed(workerNow), dir)

	msg := amqp.NewEventChangeMessage(7, amqp.ActionCompleted, true, "2024-01-10")
	if err := w.HandleChange(context.Background(), msg); err != nil {
		t.Fatalf("HandleChange() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "events-2024-01.ics")); err != nil {
		t.Errorf("expected january export, got: %v", err)
	}
}

func TestExportWorker_HandleChange_NoDateFallsBackToNow(t *testing.T) {
	dir := t.TempDir()
	w := NewExportWorker(&stubLister{}, clock.NewFixed(workerNow), dir)

	msg := amqp.NewEventChangeMessage(7, amqp.ActionDeleted, false, "")
	if err := w.HandleChange(context.Background(), msg); err != nil {
		t.Fatalf("HandleChange() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "events-2024-06.ics")); err != nil {
		t.Errorf("expected current-month export, got: %v", err)
	}
}

func TestExportWorker_StoreFailurePropagates(t *testing.T) {
	w := NewExportWorker(&stubLister{err: errors.New("boom")}, clock.NewFixed(workerNow), t.TempDir())

	msg := amqp.NewEventChangeMessage(7, amqp.ActionCreated, false, "2024-06-15")
	if err := w.HandleChange(context.Background(), msg); err == nil {
		t.Fatal("HandleChange() swallowed store failure")
	}
}
