package booking

import (
	"errors"
	"fmt"
)

// Sentinel errors classify failures from the external collaborators. Callers
// wrap provider errors with these so the controller can log full detail while
// keeping guest-facing replies generic.
var (
	// ErrGeneration indicates the chat responder could not produce a reply.
	ErrGeneration = errors.New("booking: response generation failed")

	// ErrAvailability indicates the PMS availability check failed.
	ErrAvailability = errors.New("booking: availability check failed")

	// ErrBooking indicates the PMS rejected or failed the booking creation.
	ErrBooking = errors.New("booking: booking creation failed")
)

// ValidationError describes why a date pair was rejected. The reason is safe
// to show to the guest.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("booking: invalid stay dates: %s", e.Reason)
}
