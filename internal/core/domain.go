package core

import (
	"errors"
	"time"
)

type (
	// Date is a calendar date; the time-of-day component is always midnight.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Event is a persisted scheduled activity with a price attached.
	Event struct {
		ID          int64
		Title       string
		Description string
		Price       Money
		Place       string
		Time        string // wall-clock "HH:MM"
		Date        Date
		Completed   bool
	}

	// NewEvent holds the fields collected by the add-event form. The store
	// assigns the ID and completion always starts false.
	NewEvent struct {
		Title       string
		Description string
		Price       Money
		Place       string
		Time        string
		Date        Date
	}
)

var (
	ErrInvalidDate  = errors.New("invalid date")
	ErrInvalidTime  = errors.New("invalid time, expected HH:MM")
	ErrInvalidPrice = errors.New("invalid price")
)

const isoDate = "2006-01-02"

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(isoDate, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// ISO returns the date as "YYYY-MM-DD".
func (d Date) ISO() string {
	return d.Format(isoDate)
}

// Year returns the year.
func (d Date) Year() int {
	return d.Time.Year()
}

// Month returns the month as 1-12.
func (d Date) Month() int {
	return int(d.Time.Month())
}

// MonthRange returns [first day of month, first day of next month), the
// window used for monthly earnings aggregation.
func MonthRange(year, month int) (Date, Date) {
	start := NewDate(year, month, 1)
	end := Date{Time: start.AddDate(0, 1, 0)}
	return start, end
}

// ValidateClockTime checks that s is a well-formed "HH:MM" wall-clock string.
// Unvalidated time strings would poison the overdue comparison downstream, so
// the form boundary rejects them outright.
func ValidateClockTime(s string) error {
	if _, err := time.Parse("15:04", s); err != nil {
		return ErrInvalidTime
	}
	return nil
}

// CombineDateTime resolves an event's date plus "HH:MM" time into a local
// wall-clock instant for overdue comparison.
func CombineDateTime(d Date, hhmm string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02 15:04", d.ISO()+" "+hhmm, time.Local)
	if err != nil {
		return time.Time{}, ErrInvalidTime
	}
	return t, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (e NewEvent) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if err := ValidateClockTime(e.Time); err != nil {
		return err
	}
	if err := e.Price.ValidatePrice(); err != nil {
		return err
	}
	return nil
}
