package http

import (
	"net/url"
	"testing"
	"time"

	"eventi/internal/core"
)

var parserNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.Local)

func TestParseMonthParams(t *testing.T) {
	tests := []struct {
		name      string
		query     url.Values
		wantYear  int
		wantMonth int
	}{
		{"both set", url.Values{"year": {"2023"}, "month": {"2"}}, 2023, 2},
		{"defaults", url.Values{}, 2024, 6},
		{"month out of range", url.Values{"year": {"2023"}, "month": {"13"}}, 2023, 6},
		{"garbage month", url.Values{"month": {"abc"}}, 2024, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseMonthParams(tt.query, parserNow)
			if got.Year != tt.wantYear || got.Month != tt.wantMonth {
				t.Errorf("ParseMonthParams() = %d-%d, want %d-%d", got.Year, got.Month, tt.wantYear, tt.wantMonth)
			}
		})
	}
}

func TestParseDateParam(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"valid", "2024-01-31", "2024-01-31"},
		{"missing falls back to now", "", "2024-06-15"},
		{"garbage falls back to now", "31/01/2024", "2024-06-15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := url.Values{}
			if tt.value != "" {
				v.Set("date", tt.value)
			}
			got := ParseDateParam(v, "date", parserNow)
			if got.ISO() != tt.want {
				t.Errorf("ParseDateParam() = %s, want %s", got.ISO(), tt.want)
			}
		})
	}
}

func TestParseEventForm(t *testing.T) {
	form := url.Values{
		"title":       {"  Dentist  "},
		"description": {"checkup"},
		"price":       {"50,00"},
		"place":       {"Via Roma 1"},
		"time":        {"09:00"},
		"date":        {"2024-06-01"},
	}

	e, err := ParseEventForm(form, parserNow)
	if err != nil {
		t.Fatalf("ParseEventForm() error = %v", err)
	}
	if e.Title != "Dentist" {
		t.Errorf("Title = %q, want trimmed %q", e.Title, "Dentist")
	}
	if e.Price.Cents != 5000 {
		t.Errorf("Price.Cents = %d, want 5000", e.Price.Cents)
	}
	if e.Date.ISO() != "2024-06-01" {
		t.Errorf("Date = %s, want 2024-06-01", e.Date.ISO())
	}
}

func TestParseEventForm_BadPrice(t *testing.T) {
	form := url.Values{"title": {"x"}, "price": {"-5"}, "time": {"09:00"}}
	if _, err := ParseEventForm(form, parserNow); err == nil {
		t.Fatal("ParseEventForm() accepted negative price")
	}
}

func TestParseEventID(t *testing.T) {
	tests := []struct {
		value string
		want  int64
	}{
		{"42", 42},
		{"", 0},
		{"abc", 0},
		{"-3", 0},
	}

	for _, tt := range tests {
		v := url.Values{}
		if tt.value != "" {
			v.Set("id", tt.value)
		}
		if got := ParseEventID(v); got != tt.want {
			t.Errorf("ParseEventID(%q) = %d, want %d", tt.value, got, tt.want)
		}
	}
}

func TestParseCompletedFlag(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"on", true},
		{"true", true},
		{"1", true},
		{"", false},
		{"off", false},
	}

	for _, tt := range tests {
		v := url.Values{}
		if tt.value != "" {
			v.Set("completed", tt.value)
		}
		if got := ParseCompletedFlag(v); got != tt.want {
			t.Errorf("ParseCompletedFlag(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  hello\x00world  "); got != "helloworld" {
		t.Errorf("sanitizeInput() = %q", got)
	}
	if got := sanitizeInput("line1\nline2"); got != "line1\nline2" {
		t.Errorf("sanitizeInput() stripped newline: %q", got)
	}
}

func TestParseEventForm_DefaultsDateToToday(t *testing.T) {
	form := url.Values{"title": {"x"}, "price": {"1"}, "time": {"09:00"}}
	e, err := ParseEventForm(form, parserNow)
	if err != nil {
		t.Fatalf("ParseEventForm() error = %v", err)
	}
	want := core.NewDate(2024, 6, 15)
	if e.Date.ISO() != want.ISO() {
		t.Errorf("Date = %s, want %s", e.Date.ISO(), want.ISO())
	}
}
