package pms

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grandpine/hotel-concierge/pkg/logging"
)

func TestMockAvailabilityFiltersByCapacity(t *testing.T) {
	gw := NewMockGateway(logging.New("error"))
	ctx := context.Background()

	offers, err := gw.CheckAvailability(ctx, "2026-12-15", "2026-12-20", 2)
	require.NoError(t, err)
	assert.Len(t, offers, 3)

	offers, err = gw.CheckAvailability(ctx, "2026-12-15", "2026-12-20", 3)
	require.NoError(t, err)
	require.Len(t, offers, 2)
	assert.Equal(t, "Deluxe Suite", offers[0].Name)

	offers, err = gw.CheckAvailability(ctx, "2026-12-15", "2026-12-20", 6)
	require.NoError(t, err)
	assert.Empty(t, offers)
}

func TestMockAvailabilityComputesTotalPrice(t *testing.T) {
	gw := NewMockGateway(logging.New("error"))

	offers, err := gw.CheckAvailability(context.Background(), "2026-12-15", "2026-12-20", 2)
	require.NoError(t, err)
	require.NotEmpty(t, offers)
	assert.Equal(t, offers[0].PricePerNight*5, offers[0].TotalPrice)
}

func TestMockBookingLifecycle(t *testing.T) {
	gw := NewMockGateway(logging.New("error"))
	gw.now = func() time.Time {
		return time.Date(2026, 12, 1, 10, 0, 0, 0, time.UTC)
	}
	ctx := context.Background()

	guest := GuestBooking{
		GuestName:  "John Smith",
		GuestEmail: "john@example.com",
		GuestPhone: "+15551234567",
		CheckIn:    "2026-12-15",
		CheckOut:   "2026-12-20",
		GuestCount: 2,
	}

	confirmation, err := gw.CreateBooking(ctx, guest, "room_101")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(confirmation, "CONF-20261201-"), "got %s", confirmation)
	assert.Len(t, confirmation, len("CONF-20261201-0000"))

	record, err := gw.GetBooking(ctx, confirmation)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "confirmed", record.Status)
	assert.Equal(t, "Standard Room", record.RoomName)
	assert.Equal(t, "John Smith", record.GuestName)

	require.NoError(t, gw.CancelBooking(ctx, confirmation))
	record, err = gw.GetBooking(ctx, confirmation)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", record.Status)
}

func TestMockGetBookingUnknown(t *testing.T) {
	gw := NewMockGateway(logging.New("error"))

	record, err := gw.GetBooking(context.Background(), "CONF-NOPE")
	require.NoError(t, err)
	assert.Nil(t, record)

	assert.Error(t, gw.CancelBooking(context.Background(), "CONF-NOPE"))
}

func TestMockCreateBookingValidates(t *testing.T) {
	gw := NewMockGateway(logging.New("error"))

	_, err := gw.CreateBooking(context.Background(), GuestBooking{GuestName: "John Smith"}, "room_101")
	assert.Error(t, err)
}
