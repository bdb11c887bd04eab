// Package pms provides a gateway interface to the hotel's property management
// system (QloApps) for room availability and booking creation, plus a mock
// implementation for development and tests.
package pms

import (
	"context"
	"time"
)

// RoomOffer is a room type available for a requested stay. Offers are
// compared by ID when matching a guest's selection.
type RoomOffer struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	PricePerNight  float64  `json:"price_per_night"`
	TotalPrice     float64  `json:"total_price,omitempty"`
	MaxGuests      int      `json:"max_guests"`
	Amenities      []string `json:"amenities"`
	AvailableCount int      `json:"available_count"`
}

// GuestBooking carries the guest record assembled during the conversation.
type GuestBooking struct {
	GuestName       string `json:"guest_name"`
	GuestEmail      string `json:"guest_email"`
	GuestPhone      string `json:"guest_phone"`
	CheckIn         string `json:"check_in"`  // YYYY-MM-DD
	CheckOut        string `json:"check_out"` // YYYY-MM-DD
	GuestCount      int    `json:"guest_count"`
	SpecialRequests string `json:"special_requests,omitempty"`
}

// BookingRecord is returned when looking up an existing booking.
type BookingRecord struct {
	ConfirmationNumber string    `json:"confirmation_number"`
	Status             string    `json:"status"`
	RoomName           string    `json:"room"`
	GuestName          string    `json:"guest_name"`
	CheckIn            string    `json:"check_in"`
	CheckOut           string    `json:"check_out"`
	CreatedAt          time.Time `json:"created_at,omitempty"`
}

// Gateway is the contract the conversation engine depends on. Implementations
// must be safe for concurrent use across conversations.
type Gateway interface {
	// CheckAvailability returns room offers for the stay. An empty slice
	// means no rooms; an error means the PMS could not be reached.
	CheckAvailability(ctx context.Context, checkIn, checkOut string, guests int) ([]RoomOffer, error)

	// CreateBooking books the room and returns the confirmation number.
	CreateBooking(ctx context.Context, guest GuestBooking, roomID string) (string, error)

	// GetBooking looks up a booking by confirmation number. Returns nil
	// when the booking does not exist.
	GetBooking(ctx context.Context, confirmationNumber string) (*BookingRecord, error)

	// CancelBooking cancels an existing booking.
	CancelBooking(ctx context.Context, confirmationNumber string) error
}
