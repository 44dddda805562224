// Request parsing helpers shared by the handlers: date and id extraction,
// form-to-event mapping and input sanitization.
package http

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"eventi/internal/core"
)

// MonthParams holds parsed year/month values from request parameters.
type MonthParams struct {
	Year  int
	Month int
}

// ParseMonthParams extracts year and month from query parameters, falling
// back to the month containing now. Out-of-range months also fall back.
func ParseMonthParams(query url.Values, now time.Time) MonthParams {
	params := MonthParams{
		Year:  now.Year(),
		Month: int(now.Month()),
	}

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			params.Year = y
		}
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil && m >= 1 && m <= 12 {
			params.Month = m
		}
	}

	return params
}

// ParseDateParam extracts a YYYY-MM-DD date from the named parameter,
// falling back to the day containing now when absent or unparseable.
func ParseDateParam(values url.Values, name string, now time.Time) core.Date {
	if v := strings.TrimSpace(values.Get(name)); v != "" {
		if d, err := core.ParseDate(v); err == nil {
			return d
		}
	}
	return core.NewDate(now.Year(), int(now.Month()), now.Day())
}

// ParseEventForm maps the add-event form onto a candidate event. The price
// field is the only one with format requirements beyond the date and time;
// a parse failure is reported instead of coercing the value.
func ParseEventForm(form url.Values, now time.Time) (core.NewEvent, error) {
	cents, err := core.ParsePriceToCents(strings.TrimSpace(form.Get("price")))
	if err != nil {
		return core.NewEvent{}, err
	}

	e := core.NewEvent{
		Title:       sanitizeInput(form.Get("title")),
		Description: sanitizeInput(form.Get("description")),
		Price:       core.Money{Cents: cents},
		Place:       sanitizeInput(form.Get("place")),
		Time:        strings.TrimSpace(form.Get("time")),
		Date:        ParseDateParam(form, "date", now),
	}
	return e, nil
}

// ParseEventID extracts the event id from a form. Zero means no selection.
func ParseEventID(form url.Values) int64 {
	v := strings.TrimSpace(form.Get("id"))
	if v == "" {
		return 0
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}

// ParseCompletedFlag reads the checkbox state. Unchecked boxes are omitted
// from HTMX form submissions entirely, so absence means false.
func ParseCompletedFlag(form url.Values) bool {
	switch strings.ToLower(strings.TrimSpace(form.Get("completed"))) {
	case "on", "true", "1":
		return true
	}
	return false
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequirePOST is a convenience function for POST-only handlers.
func RequirePOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}

// RequireDeleteOrPOST is a convenience function for DELETE/POST handlers.
func RequireDeleteOrPOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodDelete, http.MethodPost)
}

// ParseFormOrFail parses the request form and returns an error response on
// failure. Returns nil on success.
func ParseFormOrFail(r *http.Request) *HTMXResponseBuilder {
	if err := r.ParseForm(); err != nil {
		return BadRequestError("Invalid request format")
	}
	return nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
