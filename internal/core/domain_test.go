package core

import (
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-06-15")
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}
	if d.Year() != 2024 || d.Month() != 6 || d.Day() != 15 {
		t.Errorf("ParseDate() = %v, want 2024-06-15", d)
	}
	if d.ISO() != "2024-06-15" {
		t.Errorf("ISO() = %q, want %q", d.ISO(), "2024-06-15")
	}

	if _, err := ParseDate("15/06/2024"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("ParseDate(non-ISO) error = %v, want ErrInvalidDate", err)
	}
}

func TestMonthRange(t *testing.T) {
	tests := []struct {
		name        string
		year, month int
		wantStart   string
		wantEnd     string
	}{
		{"mid-year", 2024, 6, "2024-06-01", "2024-07-01"},
		{"december rolls into next year", 2024, 12, "2024-12-01", "2025-01-01"},
		{"february leap year", 2024, 2, "2024-02-01", "2024-03-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := MonthRange(tt.year, tt.month)
			if start.ISO() != tt.wantStart || end.ISO() != tt.wantEnd {
				t.Errorf("MonthRange(%d, %d) = [%s, %s), want [%s, %s)",
					tt.year, tt.month, start.ISO(), end.ISO(), tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestValidateClockTime(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"09:00", false},
		{"23:59", false},
		{"00:00", false},
		{"24:00", true},
		{"9am", true},
		{"", true},
		{"12:60", true},
		{"later", true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			err := ValidateClockTime(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateClockTime(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestCombineDateTime(t *testing.T) {
	d := NewDate(2024, 6, 15)
	got, err := CombineDateTime(d, "10:30")
	if err != nil {
		t.Fatalf("CombineDateTime() error = %v", err)
	}
	want := time.Date(2024, 6, 15, 10, 30, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Errorf("CombineDateTime() = %v, want %v", got, want)
	}

	if _, err := CombineDateTime(d, "not a time"); !errors.Is(err, ErrInvalidTime) {
		t.Errorf("CombineDateTime(bad time) error = %v, want ErrInvalidTime", err)
	}
}

func TestNewEvent_Validate(t *testing.T) {
	valid := NewEvent{
		Title: "Dentist",
		Price: Money{Cents: 5000},
		Time:  "09:00",
		Date:  NewDate(2024, 6, 1),
	}

	tests := []struct {
		name    string
		mutate  func(e NewEvent) NewEvent
		wantErr error
	}{
		{"valid", func(e NewEvent) NewEvent { return e }, nil},
		{"empty title allowed", func(e NewEvent) NewEvent { e.Title = ""; return e }, nil},
		{"zero price allowed", func(e NewEvent) NewEvent { e.Price = Money{}; return e }, nil},
		{"zero date", func(e NewEvent) NewEvent { e.Date = Date{}; return e }, ErrInvalidDate},
		{"bad time", func(e NewEvent) NewEvent { e.Time = "noonish"; return e }, ErrInvalidTime},
		{"negative price", func(e NewEvent) NewEvent { e.Price = Money{Cents: -1}; return e }, ErrInvalidPrice},
		{"price over cap", func(e NewEvent) NewEvent { e.Price = Money{Cents: MaxPriceCents + 1}; return e }, ErrInvalidPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mutate(valid).Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
