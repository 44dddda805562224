package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"eventi/internal/ics"
	applog "eventi/internal/log"
)

// handleExportICS serves a calendar month as an iCalendar file. Serialized
// exports are cached per month and dropped on any mutation in that month.
func (s *Server) handleExportICS(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}

	now := s.clk.Now()
	params := ParseMonthParams(r.URL.Query(), now)
	key := monthKey(params.Year, params.Month)

	payload, cached := s.icsCache.Get(key)
	if !cached {
		events, err := s.api.MonthEvents(r.Context(), params.Year, params.Month)
		if err != nil {
			slog.ErrorContext(r.Context(), "Calendar export failed", applog.FieldError, err, applog.FieldYear, params.Year, applog.FieldMonth, params.Month)
			http.Error(w, "error exporting calendar", http.StatusInternalServerError)
			return
		}
		payload, err = ics.ExportMonth(events, now)
		if err != nil {
			slog.ErrorContext(r.Context(), "Calendar serialization failed", applog.FieldError, err, applog.FieldYear, params.Year, applog.FieldMonth, params.Month)
			http.Error(w, "error exporting calendar", http.StatusInternalServerError)
			return
		}
		s.icsCache.Set(key, payload)
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="events-%s.ics"`, key))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(payload))
}
