package appointment

import (
	"github.com/jwalitptl/medconnect-api/internal/model"
)

const (
	reasonInactive    = "doctor is not active"
	reasonUnavailable = "doctor is not accepting appointments"
	reasonFullyBooked = "all slots are booked"
)

// ComputeAvailability derives the open slots of doctor on date. Dates are
// matched as plain strings and the doctor's fixed slot order is preserved.
func ComputeAvailability(doctor *model.Doctor, date string) model.AvailabilityStatus {
	booked := doctor.BookedTimes(date)
	if booked == nil {
		booked = []string{}
	}

	status := model.AvailabilityStatus{
		DoctorID:       doctor.ID,
		Date:           date,
		AvailableSlots: []string{},
		BookedSlots:    booked,
		TotalSlots:     len(doctor.FixedSlots),
		BookedCount:    len(booked),
	}

	switch {
	case !doctor.IsActive:
		status.Reason = reasonInactive
		return status
	case !doctor.Available:
		status.Reason = reasonUnavailable
		return status
	}

	taken := make(map[string]struct{}, len(booked))
	for _, t := range booked {
		taken[t] = struct{}{}
	}
	for _, slot := range doctor.FixedSlots {
		if _, ok := taken[slot]; !ok {
			status.AvailableSlots = append(status.AvailableSlots, slot)
		}
	}

	status.Available = len(status.AvailableSlots) > 0
	status.IsFullyBooked = !status.Available
	if status.IsFullyBooked {
		status.Reason = reasonFullyBooked
	}
	return status
}
