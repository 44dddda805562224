// Package ics renders stored events as an iCalendar document so a month can
// be imported into external calendar applications.
package ics

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"eventi/internal/core"
)

// Event duration used for export; the store only records a start time.
const defaultDuration = time.Hour

// ExportMonth serializes the given events as a VCALENDAR. Events whose time
// field cannot be resolved into an instant are skipped rather than exported
// with a bogus start.
func ExportMonth(events []core.Event, now time.Time) (string, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)

	for _, e := range events {
		start, err := core.CombineDateTime(e.Date, e.Time)
		if err != nil {
			continue
		}

		ve := cal.AddEvent(fmt.Sprintf("event-%d@eventi.local", e.ID))
		ve.SetDtStampTime(now)
		ve.SetStartAt(start)
		ve.SetEndAt(start.Add(defaultDuration))
		ve.SetSummary(e.Title)
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}
		if e.Place != "" {
			ve.SetLocation(e.Place)
		}
	}

	return cal.Serialize(), nil
}
