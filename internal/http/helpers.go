package http

import (
	"errors"
	"fmt"
	"net/http"

	"eventi/internal/core"
	"eventi/internal/services"
	"eventi/internal/storage"
)

// monthKey builds the cache key for month-scoped entries.
func monthKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// classifyError maps a service error onto an HTTP status and notification
// severity. User mistakes warn; storage failures are critical.
func classifyError(err error) (int, NotificationType, string) {
	switch {
	case errors.Is(err, services.ErrNoSelection):
		return http.StatusBadRequest, NotificationWarning, "No event selected"
	case errors.Is(err, core.ErrInvalidPrice):
		return http.StatusUnprocessableEntity, NotificationWarning, "Invalid price"
	case errors.Is(err, core.ErrInvalidTime):
		return http.StatusUnprocessableEntity, NotificationWarning, "Invalid time, expected HH:MM"
	case errors.Is(err, core.ErrInvalidDate):
		return http.StatusUnprocessableEntity, NotificationWarning, "Invalid date"
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, NotificationWarning, "Event no longer exists"
	case errors.Is(err, storage.ErrWrite):
		return http.StatusInternalServerError, NotificationCritical, "Error saving changes"
	case errors.Is(err, storage.ErrRead), errors.Is(err, storage.ErrOpen):
		return http.StatusInternalServerError, NotificationCritical, "Error loading events"
	default:
		return http.StatusInternalServerError, NotificationCritical, "Unexpected error"
	}
}

// writeServiceError builds and writes the HTMX error response for err.
func writeServiceError(w http.ResponseWriter, err error) {
	status, severity, msg := classifyError(err)
	ErrorResponse(status, msg).
		TriggerNotification(severity, msg, 5000).
		Write(w)
}
