package http

import (
	"log/slog"
	"net/http"
	"time"

	"eventi/internal/core"
	applog "eventi/internal/log"
)

// handleEarnings renders the monthly total partial. The figure is always
// recomputed from the store, never served from a cache.
func (s *Server) handleEarnings(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	params := ParseMonthParams(r.URL.Query(), s.clk.Now())
	date := core.NewDate(params.Year, params.Month, 1)

	total, err := s.api.EarningsForMonth(r.Context(), date)
	if err != nil {
		slog.ErrorContext(r.Context(), "Earnings load error", applog.FieldError, err, applog.FieldYear, params.Year, applog.FieldMonth, params.Month)
		s.renderPartialError(w, "Error loading earnings")
		return
	}

	data := struct {
		Year      int
		Month     int
		MonthName string
		Total     string
	}{
		Year:      params.Year,
		Month:     params.Month,
		MonthName: time.Month(params.Month).String(),
		Total:     total.String(),
	}

	if err := s.templates.ExecuteTemplate(w, "earnings.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution error", applog.FieldError, err, "template", "earnings.html", applog.FieldYear, params.Year, applog.FieldMonth, params.Month)
		s.renderPartialError(w, "Error rendering earnings")
	}
}
