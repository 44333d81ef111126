package scheduling

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Upcoming returns the appointments starting at or after now that are still
// live (not cancelled, completed or missed), soonest first. Derived for
// display, never persisted.
func Upcoming(appointments []Appointment, now time.Time) []Appointment {
	var out []Appointment
	for _, a := range appointments {
		if a.StartTime.Before(now) {
			continue
		}
		switch a.Status {
		case AppointmentCancelled, AppointmentCompleted, AppointmentNoShow:
			continue
		}
		out = append(out, a)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}

// ForPatient filters appointments down to one patient, preserving order.
func ForPatient(appointments []Appointment, patientID uuid.UUID) []Appointment {
	var out []Appointment
	for _, a := range appointments {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out
}
