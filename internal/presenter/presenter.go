// Package presenter projects stored events into display-ready rows. It holds
// no state and never touches the store; rows are rebuilt from scratch on
// every reload so highlights can never go stale.
package presenter

import (
	"time"

	"eventi/internal/core"
)

// Highlight is the render state of a row. The values double as CSS classes.
type Highlight string

const (
	HighlightCompleted Highlight = "completed"
	HighlightOverdue   Highlight = "overdue"
	HighlightNormal    Highlight = "normal"
)

// Row is one display line of the event table.
type Row struct {
	ID          int64
	Title       string
	Description string
	Price       string
	Place       string
	Time        string
	Completed   bool
	Highlight   Highlight
}

// BuildRows converts events into rows, preserving the store's time ordering.
func BuildRows(events []core.Event, now time.Time) []Row {
	rows := make([]Row, len(events))
	for i, e := range events {
		rows[i] = Row{
			ID:          e.ID,
			Title:       e.Title,
			Description: e.Description,
			Price:       e.Price.String(),
			Place:       e.Place,
			Time:        e.Time,
			Completed:   e.Completed,
			Highlight:   Classify(e, now),
		}
	}
	return rows
}

// Classify derives the highlight state for a single event. The checks are
// mutually exclusive and ordered: completion wins over overdue.
func Classify(e core.Event, now time.Time) Highlight {
	if e.Completed {
		return HighlightCompleted
	}
	at, err := core.CombineDateTime(e.Date, e.Time)
	if err != nil {
		// Rows written before time validation existed can carry junk; treat
		// them as not yet due rather than silently comparing garbage.
		return HighlightNormal
	}
	if at.Before(now) {
		return HighlightOverdue
	}
	return HighlightNormal
}
