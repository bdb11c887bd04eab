package pms

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/grandpine/hotel-concierge/pkg/logging"
)

// MockGateway serves canned inventory so the assistant can run without a live
// QloApps instance. Bookings are kept in memory for lookups and cancellation.
type MockGateway struct {
	logger *logging.Logger
	now    func() time.Time

	mu       sync.Mutex
	bookings map[string]BookingRecord
}

var _ Gateway = (*MockGateway)(nil)

// NewMockGateway creates a mock PMS gateway.
func NewMockGateway(logger *logging.Logger) *MockGateway {
	if logger == nil {
		logger = logging.Default()
	}
	return &MockGateway{
		logger:   logger,
		now:      time.Now,
		bookings: make(map[string]BookingRecord),
	}
}

func (m *MockGateway) sampleRooms(nights int) []RoomOffer {
	rooms := []RoomOffer{
		{
			ID:             "room_101",
			Name:           "Standard Room",
			Description:    "Comfortable room with queen bed, city view",
			PricePerNight:  150,
			MaxGuests:      2,
			Amenities:      []string{"WiFi", "TV", "Air Conditioning", "Coffee Maker"},
			AvailableCount: 5,
		},
		{
			ID:             "room_201",
			Name:           "Deluxe Suite",
			Description:    "Spacious suite with king bed, ocean view, separate living area",
			PricePerNight:  250,
			MaxGuests:      3,
			Amenities:      []string{"WiFi", "TV", "Mini Bar", "Balcony", "Jacuzzi"},
			AvailableCount: 3,
		},
		{
			ID:             "room_301",
			Name:           "Presidential Suite",
			Description:    "Luxurious suite with panoramic views, private terrace",
			PricePerNight:  500,
			MaxGuests:      4,
			Amenities:      []string{"WiFi", "TV", "Mini Bar", "Private Terrace", "Butler Service"},
			AvailableCount: 1,
		},
	}
	if nights > 0 {
		for i := range rooms {
			rooms[i].TotalPrice = rooms[i].PricePerNight * float64(nights)
		}
	}
	return rooms
}

// CheckAvailability filters the sample inventory by guest capacity.
func (m *MockGateway) CheckAvailability(ctx context.Context, checkIn, checkOut string, guests int) ([]RoomOffer, error) {
	nights := stayNights(checkIn, checkOut)

	offers := make([]RoomOffer, 0, 3)
	for _, room := range m.sampleRooms(nights) {
		if room.MaxGuests >= guests && room.AvailableCount > 0 {
			offers = append(offers, room)
		}
	}

	m.logger.Info("pms: mock availability",
		"check_in", checkIn,
		"check_out", checkOut,
		"guests", guests,
		"offers", len(offers),
	)
	return offers, nil
}

// CreateBooking records the booking in memory and returns a generated
// confirmation number.
func (m *MockGateway) CreateBooking(ctx context.Context, guest GuestBooking, roomID string) (string, error) {
	if err := guest.validate(); err != nil {
		return "", err
	}

	roomName := roomID
	for _, room := range m.sampleRooms(0) {
		if room.ID == roomID {
			roomName = room.Name
		}
	}

	now := m.now()
	confirmation := fmt.Sprintf("CONF-%s-%04d", now.Format("20060102"), rand.Intn(9000)+1000)

	m.mu.Lock()
	m.bookings[confirmation] = BookingRecord{
		ConfirmationNumber: confirmation,
		Status:             "confirmed",
		RoomName:           roomName,
		GuestName:          guest.GuestName,
		CheckIn:            guest.CheckIn,
		CheckOut:           guest.CheckOut,
		CreatedAt:          now,
	}
	m.mu.Unlock()

	m.logger.Info("pms: mock booking created",
		"confirmation", confirmation,
		"guest", guest.GuestName,
		"room_id", roomID,
	)
	return confirmation, nil
}

// GetBooking returns a previously created mock booking, or nil.
func (m *MockGateway) GetBooking(ctx context.Context, confirmationNumber string) (*BookingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.bookings[strings.TrimSpace(confirmationNumber)]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

// CancelBooking marks a mock booking as cancelled.
func (m *MockGateway) CancelBooking(ctx context.Context, confirmationNumber string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.bookings[strings.TrimSpace(confirmationNumber)]
	if !ok {
		return fmt.Errorf("pms: unknown booking %s", confirmationNumber)
	}
	record.Status = "cancelled"
	m.bookings[confirmationNumber] = record
	return nil
}
