// Package scheduling holds the pure overlap detection applied before every
// event save. The result is advisory: callers surface conflicts for an
// explicit confirmation instead of rejecting the save.
package scheduling

import (
	"time"

	"calendarapi/models"
)

// Overlaps reports which of the existing events conflict with the candidate
// window. Two events conflict iff start < E.end && end > E.start (strict
// open intervals), so back-to-back events never conflict. excludeID removes
// the event being edited from consideration; pass 0 when creating.
func Overlaps(start, end time.Time, excludeID int64, existing []models.Event) []models.Event {
	var conflicts []models.Event
	for _, e := range existing {
		if excludeID != 0 && e.ID == excludeID {
			continue
		}
		if start.Before(e.EndDate) && end.After(e.StartDate) {
			conflicts = append(conflicts, e)
		}
	}
	return conflicts
}
