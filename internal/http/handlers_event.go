package http

import (
	"html/template"
	"log/slog"
	"net/http"

	"eventi/internal/core"
	applog "eventi/internal/log"
	"eventi/internal/presenter"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", applog.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	now := s.clk.Now()
	data := struct {
		Today string
		Year  int
		Month int
	}{
		Today: core.NewDate(now.Year(), int(now.Month()), now.Day()).ISO(),
		Year:  now.Year(),
		Month: int(now.Month()),
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Index template execution failed", applog.FieldError, err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleDayEvents renders the event table partial for one date. Event lists
// are cached per date; the monthly total is always read fresh so a toggle on
// one day is reflected when another day of the month renders.
func (s *Server) handleDayEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	now := s.clk.Now()
	date := ParseDateParam(r.URL.Query(), "date", now)

	events, cached := s.dayCache.Get(date.ISO())
	var total core.Money
	if cached {
		t, err := s.api.EarningsForMonth(r.Context(), date)
		if err != nil {
			slog.ErrorContext(r.Context(), "Earnings load error", applog.FieldError, err, applog.FieldEventDate, date.ISO())
			s.renderPartialError(w, "Error loading events")
			return
		}
		total = t
	} else {
		dv, err := s.api.SelectDate(r.Context(), date)
		if err != nil {
			slog.ErrorContext(r.Context(), "Day selection error", applog.FieldError, err, applog.FieldEventDate, date.ISO())
			s.renderPartialError(w, "Error loading events")
			return
		}
		events = dv.Events
		total = dv.MonthTotal
		s.dayCache.Set(date.ISO(), events)
	}

	data := struct {
		Date  string
		Rows  []presenter.Row
		Total string
	}{
		Date:  date.ISO(),
		Rows:  presenter.BuildRows(events, now),
		Total: total.String(),
	}

	if err := s.templates.ExecuteTemplate(w, "event_table.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution error", applog.FieldError, err, "template", "event_table.html", applog.FieldEventDate, date.ISO())
		s.renderPartialError(w, "Error rendering events")
	}
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	now := s.clk.Now()
	e, err := ParseEventForm(r.Form, now)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	id, err := s.api.AddEvent(r.Context(), e)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to save event",
			applog.FieldError, err,
			applog.FieldTitle, e.Title,
			applog.FieldEventDate, e.Date.ISO(),
			applog.FieldPriceCents, e.Price.Cents)
		writeServiceError(w, err)
		return
	}

	slog.InfoContext(r.Context(), "Event created",
		applog.FieldEventID, id,
		applog.FieldTitle, e.Title,
		applog.FieldEventDate, e.Date.ISO(),
		applog.FieldPriceCents, e.Price.Cents)

	s.invalidateDay(e.Date)
	NewHTMXResponse().
		TriggerEventsChanged(e.Date.ISO()).
		TriggerEarningsRefresh(e.Date.Year(), e.Date.Month()).
		TriggerFormReset().
		TriggerSuccessNotification("Event saved").
		BodyHTML(`<div class="success">Saved: ` + template.HTMLEscapeString(e.Title) + `</div>`).
		Write(w)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	if resp := RequireDeleteOrPOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	now := s.clk.Now()
	id := ParseEventID(r.Form)

	affected, err := s.api.RemoveEvent(r.Context(), id)
	if err != nil {
		slog.WarnContext(r.Context(), "Event removal rejected", applog.FieldError, err, applog.FieldEventID, id)
		writeServiceError(w, err)
		return
	}

	// The stored date is authoritative; the form value only covers the case
	// where the row was already gone and there is nothing to invalidate.
	date := affected
	if date.IsZero() {
		date = ParseDateParam(r.Form, "date", now)
	}

	slog.InfoContext(r.Context(), "Event removed", applog.FieldEventID, id, applog.FieldEventDate, date.ISO())

	s.invalidateDay(date)
	NewHTMXResponse().
		TriggerEventsChanged(date.ISO()).
		TriggerEarningsRefresh(date.Year(), date.Month()).
		TriggerSuccessNotification("Event removed").
		Write(w)
}

func (s *Server) handleToggleCompleted(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	id := ParseEventID(r.Form)
	completed := ParseCompletedFlag(r.Form)

	date, total, err := s.api.ToggleCompletion(r.Context(), id, completed)
	if err != nil {
		slog.ErrorContext(r.Context(), "Completion toggle failed",
			applog.FieldError, err,
			applog.FieldEventID, id,
			applog.FieldCompleted, completed)
		writeServiceError(w, err)
		return
	}

	slog.InfoContext(r.Context(), "Completion toggled",
		applog.FieldEventID, id,
		applog.FieldCompleted, completed,
		applog.FieldTotalCents, total.Cents)

	s.invalidateDay(date)
	NewHTMXResponse().
		TriggerEventsChanged(date.ISO()).
		TriggerEarningsRefresh(date.Year(), date.Month()).
		Write(w)
}

// renderPartialError writes an inline error block for a failed UI partial.
func (s *Server) renderPartialError(w http.ResponseWriter, msg string) {
	_, _ = w.Write([]byte(`<section class="placeholder error">` + template.HTMLEscapeString(msg) + `</section>`))
}
