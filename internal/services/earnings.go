package services

import (
	"context"
	"fmt"
	"sync"

	"eventi/internal/core"
)

// MonthSummer is the slice of the store the tracker needs.
type MonthSummer interface {
	SumCompletedPriceInRange(ctx context.Context, start, end core.Date) (core.Money, error)
}

// EarningsTracker keeps the running total for the currently displayed month.
//
// The total is recomputed from the store on every month change; the
// incremental ±price adjustment on a completion toggle is a fast path that is
// only taken for dates inside the tracked month, so the running figure always
// matches a full recomputation.
type EarningsTracker struct {
	mu    sync.Mutex
	year  int
	month int
	total core.Money
}

func NewEarningsTracker() *EarningsTracker {
	return &EarningsTracker{}
}

// Recompute queries the authoritative sum for the month containing date and
// makes that month the tracked one. On failure the previous total is kept.
func (t *EarningsTracker) Recompute(ctx context.Context, store MonthSummer, date core.Date) (core.Money, error) {
	start, end := core.MonthRange(date.Year(), date.Month())
	total, err := store.SumCompletedPriceInRange(ctx, start, end)
	if err != nil {
		return core.Money{}, fmt.Errorf("recompute earnings for %04d-%02d: %w", date.Year(), date.Month(), err)
	}

	t.mu.Lock()
	t.year = date.Year()
	t.month = date.Month()
	t.total = total
	t.mu.Unlock()

	return total, nil
}

// ApplyToggle adjusts the running total by price when the toggled event lies
// in the tracked month. It reports whether the fast path applied; callers
// must fall back to Recompute when it did not.
func (t *EarningsTracker) ApplyToggle(date core.Date, price core.Money, completed bool) (core.Money, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if date.Year() != t.year || date.Month() != t.month {
		return t.total, false
	}
	if completed {
		t.total = t.total.Add(price)
	} else {
		t.total = t.total.Sub(price)
	}
	return t.total, true
}

// Total returns the current running total and the month it belongs to.
func (t *EarningsTracker) Total() (core.Money, int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total, t.year, t.month
}
