// Package storage owns the durable representation of events in a local
// single-file SQLite database.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"eventi/internal/core"
	applog "eventi/internal/log"

	_ "modernc.org/sqlite"
)

// Failure taxonomy surfaced to callers. Every repository error wraps exactly
// one of these, so the presentation layer can pick a severity without
// inspecting driver internals.
var (
	ErrOpen     = errors.New("storage: open failed")
	ErrRead     = errors.New("storage: read failed")
	ErrWrite    = errors.New("storage: write failed")
	ErrNotFound = errors.New("storage: event not found")
)

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w: %v", ErrOpen, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w: %v", ErrOpen, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w: %v", ErrOpen, err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w: %v", ErrOpen, err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// InsertEvent adds a new event row with completed=false and returns the
// store-assigned id.
func (r *Repository) InsertEvent(ctx context.Context, e core.NewEvent) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO events (title, description, price, place, time, eventDate, completed)
		 VALUES (?, ?, ?, ?, ?, ?, 0)`,
		e.Title, e.Description, realFromCents(e.Price.Cents), e.Place, e.Time, e.Date.ISO())
	if err != nil {
		return 0, fmt.Errorf("insert event: %w: %v", ErrWrite, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert event id: %w: %v", ErrWrite, err)
	}

	slog.InfoContext(ctx, "Event saved",
		applog.FieldOperation, applog.OpCreate,
		applog.FieldEventID, id,
		applog.FieldTitle, e.Title,
		applog.FieldPriceCents, e.Price.Cents,
		applog.FieldEventDate, e.Date.ISO(),
		applog.FieldEventTime, e.Time)

	return id, nil
}

// DeleteEvent removes the row with the given id. Deleting an id that does
// not exist is a no-op, not an error.
func (r *Repository) DeleteEvent(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete event %d: %w: %v", id, ErrWrite, err)
	}
	slog.InfoContext(ctx, "Event removed", applog.FieldOperation, applog.OpDelete, applog.FieldEventID, id)
	return nil
}

// SetCompleted updates the completion flag, the only mutation permitted
// after creation. Updating a missing row is an error.
func (r *Repository) SetCompleted(ctx context.Context, id int64, completed bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE events SET completed = ? WHERE id = ?`, boolToInt(completed), id)
	if err != nil {
		return fmt.Errorf("set completed %d: %w: %v", id, ErrWrite, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set completed %d: %w: %v", id, ErrWrite, err)
	}
	if n == 0 {
		return fmt.Errorf("set completed %d: %w", id, ErrNotFound)
	}

	slog.InfoContext(ctx, "Event completion updated",
		applog.FieldOperation, applog.OpUpdate,
		applog.FieldEventID, id,
		applog.FieldCompleted, completed)
	return nil
}

// GetEvent retrieves a single event by id.
func (r *Repository) GetEvent(ctx context.Context, id int64) (core.Event, error) {
	var (
		e         core.Event
		price     float64
		eventDate string
		completed int
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, description, price, place, time, eventDate, completed
		 FROM events WHERE id = ?`, id).
		Scan(&e.ID, &e.Title, &e.Description, &price, &e.Place, &e.Time, &eventDate, &completed)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Event{}, fmt.Errorf("get event %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Event{}, fmt.Errorf("get event %d: %w: %v", id, ErrRead, err)
	}
	d, err := core.ParseDate(eventDate)
	if err != nil {
		return core.Event{}, fmt.Errorf("get event %d date %q: %w: %v", id, eventDate, ErrRead, err)
	}
	e.Price = core.Money{Cents: centsFromReal(price)}
	e.Date = d
	e.Completed = completed != 0
	return e, nil
}

// FindByDate returns all events on the given date, ordered by time ascending.
func (r *Repository) FindByDate(ctx context.Context, date core.Date) ([]core.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, description, price, place, time, eventDate, completed
		 FROM events WHERE eventDate = ? ORDER BY time ASC`, date.ISO())
	if err != nil {
		return nil, fmt.Errorf("find events by date %s: %w: %v", date.ISO(), ErrRead, err)
	}
	defer rows.Close()

	var events []core.Event
	for rows.Next() {
		var (
			e         core.Event
			price     float64
			eventDate string
			completed int
		)
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &price, &e.Place, &e.Time, &eventDate, &completed); err != nil {
			return nil, fmt.Errorf("scan event row: %w: %v", ErrRead, err)
		}
		d, err := core.ParseDate(eventDate)
		if err != nil {
			return nil, fmt.Errorf("scan event date %q: %w: %v", eventDate, ErrRead, err)
		}
		e.Price = core.Money{Cents: centsFromReal(price)}
		e.Date = d
		e.Completed = completed != 0
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event rows: %w: %v", ErrRead, err)
	}

	return events, nil
}

// FindByRange returns events with eventDate in [start, end), ordered by date
// then time. Used for month-level views such as the calendar export.
func (r *Repository) FindByRange(ctx context.Context, start, end core.Date) ([]core.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, description, price, place, time, eventDate, completed
		 FROM events WHERE eventDate >= ? AND eventDate < ?
		 ORDER BY eventDate ASC, time ASC`, start.ISO(), end.ISO())
	if err != nil {
		return nil, fmt.Errorf("find events in [%s, %s): %w: %v", start.ISO(), end.ISO(), ErrRead, err)
	}
	defer rows.Close()

	var events []core.Event
	for rows.Next() {
		var (
			e         core.Event
			price     float64
			eventDate string
			completed int
		)
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &price, &e.Place, &e.Time, &eventDate, &completed); err != nil {
			return nil, fmt.Errorf("scan event row: %w: %v", ErrRead, err)
		}
		d, err := core.ParseDate(eventDate)
		if err != nil {
			return nil, fmt.Errorf("scan event date %q: %w: %v", eventDate, ErrRead, err)
		}
		e.Price = core.Money{Cents: centsFromReal(price)}
		e.Date = d
		e.Completed = completed != 0
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event rows: %w: %v", ErrRead, err)
	}

	return events, nil
}

// SumCompletedPriceInRange aggregates prices of completed events with
// eventDate in [start, end). An empty match sums to zero, never null.
func (r *Repository) SumCompletedPriceInRange(ctx context.Context, start, end core.Date) (core.Money, error) {
	var total float64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(price), 0) FROM events
		 WHERE completed = 1 AND eventDate >= ? AND eventDate < ?`,
		start.ISO(), end.ISO()).Scan(&total)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum completed prices [%s, %s): %w: %v", start.ISO(), end.ISO(), ErrRead, err)
	}
	return core.Money{Cents: centsFromReal(total)}, nil
}

// The price column is REAL for compatibility with the original schema; the
// cents conversion rounds half away from zero to stay exact for two-decimal
// inputs.
func centsFromReal(v float64) int64 {
	return int64(math.Round(v * 100))
}

func realFromCents(c int64) float64 {
	return float64(c) / 100.0
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
