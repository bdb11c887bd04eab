package booking

import "time"

const maxStayNights = 30

// Validation reasons shown to the guest when a date pair is rejected.
const (
	reasonBadFormat   = "Invalid date format. Please use YYYY-MM-DD format."
	reasonPastCheckIn = "Check-in date cannot be in the past."
	reasonBadOrder    = "Check-out date must be after check-in date."
	reasonTooLong     = "Maximum stay is 30 nights. Please select a shorter period."
)

// ValidateStay checks a date pair against the stay rules, first failure wins:
// parseable, check-in not in the past, check-out after check-in, at most 30
// nights. Returns a *ValidationError on failure.
func ValidateStay(checkIn, checkOut string, now time.Time) error {
	in, err := time.Parse("2006-01-02", checkIn)
	if err != nil {
		return &ValidationError{Reason: reasonBadFormat}
	}
	out, err := time.Parse("2006-01-02", checkOut)
	if err != nil {
		return &ValidationError{Reason: reasonBadFormat}
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if in.Before(today) {
		return &ValidationError{Reason: reasonPastCheckIn}
	}
	if !out.After(in) {
		return &ValidationError{Reason: reasonBadOrder}
	}
	if int(out.Sub(in).Hours()/24) > maxStayNights {
		return &ValidationError{Reason: reasonTooLong}
	}
	return nil
}
