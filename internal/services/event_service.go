// Package services orchestrates the event store, the earnings tracker and
// the optional change feed behind the operations the interface exposes.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"eventi/internal/amqp"
	"eventi/internal/core"
	applog "eventi/internal/log"
)

// EventStore is the persistence contract the controller drives.
type EventStore interface {
	InsertEvent(ctx context.Context, e core.NewEvent) (int64, error)
	DeleteEvent(ctx context.Context, id int64) error
	SetCompleted(ctx context.Context, id int64, completed bool) error
	GetEvent(ctx context.Context, id int64) (core.Event, error)
	FindByDate(ctx context.Context, date core.Date) ([]core.Event, error)
	FindByRange(ctx context.Context, start, end core.Date) ([]core.Event, error)
	SumCompletedPriceInRange(ctx context.Context, start, end core.Date) (core.Money, error)
}

// ChangePublisher posts change notifications to the feed.
type ChangePublisher interface {
	PublishEventChange(ctx context.Context, msg *amqp.EventChangeMessage) error
}

// ErrNoSelection means a removal was requested without a selected row. It is
// a user mistake, not a store failure, and must not touch the store.
var ErrNoSelection = errors.New("no event selected")

// EventService coordinates date selection, add/remove actions and completion
// toggles, keeping the earnings total in step with the store.
type EventService struct {
	store    EventStore
	feed     ChangePublisher // nil when the change feed is disabled
	earnings *EarningsTracker
}

func NewEventService(store EventStore, feed ChangePublisher) *EventService {
	return &EventService{
		store:    store,
		feed:     feed,
		earnings: NewEarningsTracker(),
	}
}

// DayView is everything the presentation layer needs after a date selection:
// the day's events in time order plus the authoritative total for its month.
type DayView struct {
	Date       core.Date
	Events     []core.Event
	MonthTotal core.Money
}

// SelectDate loads the events of a date and recomputes the earnings total
// for the month containing it.
func (s *EventService) SelectDate(ctx context.Context, date core.Date) (DayView, error) {
	events, err := s.store.FindByDate(ctx, date)
	if err != nil {
		return DayView{}, fmt.Errorf("select date %s: %w", date.ISO(), err)
	}

	total, err := s.earnings.Recompute(ctx, s.store, date)
	if err != nil {
		return DayView{}, fmt.Errorf("select date %s: %w", date.ISO(), err)
	}

	return DayView{Date: date, Events: events, MonthTotal: total}, nil
}

// AddEvent validates and persists a new event. The completion flag always
// starts false, so the earnings total is unaffected.
func (s *EventService) AddEvent(ctx context.Context, e core.NewEvent) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}

	id, err := s.store.InsertEvent(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("add event: %w", err)
	}

	s.publishChange(ctx, amqp.NewEventChangeMessage(id, amqp.ActionCreated, false, e.Date.ISO()))
	return id, nil
}

// RemoveEvent deletes the selected event and returns its stored date so the
// caller can refresh exactly the day that changed. A missing selection is
// reported without any store access. Deleting an id that is already gone is
// a no-op and returns the zero date.
func (s *EventService) RemoveEvent(ctx context.Context, id int64) (core.Date, error) {
	if id <= 0 {
		return core.Date{}, ErrNoSelection
	}

	// Read the row first so the change message and the caller get the
	// stored date; a row that is already gone still deletes cleanly.
	var date core.Date
	if e, err := s.store.GetEvent(ctx, id); err == nil {
		date = e.Date
	}

	if err := s.store.DeleteEvent(ctx, id); err != nil {
		return core.Date{}, fmt.Errorf("remove event %d: %w", id, err)
	}

	var iso string
	if !date.IsZero() {
		iso = date.ISO()
	}
	s.publishChange(ctx, amqp.NewEventChangeMessage(id, amqp.ActionDeleted, false, iso))
	return date, nil
}

// EarningsForMonth recomputes and returns the completed-price total for the
// month containing date.
func (s *EventService) EarningsForMonth(ctx context.Context, date core.Date) (core.Money, error) {
	total, err := s.earnings.Recompute(ctx, s.store, date)
	if err != nil {
		return core.Money{}, fmt.Errorf("earnings for %s: %w", date.ISO(), err)
	}
	return total, nil
}

// MonthEvents returns every event in a calendar month, ordered by date and
// time. It backs the calendar export.
func (s *EventService) MonthEvents(ctx context.Context, year, month int) ([]core.Event, error) {
	start, end := core.MonthRange(year, month)
	events, err := s.store.FindByRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("month events %d-%02d: %w", year, month, err)
	}
	return events, nil
}

// ToggleCompletion flips the completion flag and returns the event's stored
// date plus the refreshed monthly total for its month. The incremental
// adjustment is used when the event's month is the one already displayed;
// any other month is recomputed from the store.
func (s *EventService) ToggleCompletion(ctx context.Context, id int64, completed bool) (core.Date, core.Money, error) {
	e, err := s.store.GetEvent(ctx, id)
	if err != nil {
		return core.Date{}, core.Money{}, fmt.Errorf("toggle completion %d: %w", id, err)
	}

	if e.Completed == completed {
		// Nothing changed; return the authoritative figure without touching
		// the running total, or a repeated request would double-count.
		total, err := s.earnings.Recompute(ctx, s.store, e.Date)
		return e.Date, total, err
	}

	if err := s.store.SetCompleted(ctx, id, completed); err != nil {
		return core.Date{}, core.Money{}, fmt.Errorf("toggle completion %d: %w", id, err)
	}

	total, applied := s.earnings.ApplyToggle(e.Date, e.Price, completed)
	if !applied {
		total, err = s.earnings.Recompute(ctx, s.store, e.Date)
		if err != nil {
			return core.Date{}, core.Money{}, fmt.Errorf("toggle completion %d: %w", id, err)
		}
	}

	s.publishChange(ctx, amqp.NewEventChangeMessage(id, amqp.ActionCompleted, completed, e.Date.ISO()))
	return e.Date, total, nil
}

// publishChange posts to the feed when one is configured. Feed failures are
// logged and swallowed; the store is the source of truth.
func (s *EventService) publishChange(ctx context.Context, msg *amqp.EventChangeMessage) {
	if s.feed == nil {
		return
	}
	if err := s.feed.PublishEventChange(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish event change",
			applog.FieldError, err,
			applog.FieldEventID, msg.ID,
			"action", msg.Action)
	}
}
