package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/grandpine/hotel-concierge/internal/pms"
)

var extractNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func TestExtractDates(t *testing.T) {
	e := RegexExtractor{}

	tests := []struct {
		name     string
		text     string
		checkIn  string
		checkOut string
	}{
		{"two iso dates", "I need a room from 2026-12-15 to 2026-12-20", "2026-12-15", "2026-12-20"},
		{"slash separators", "from 2026/12/15 to 2026/12/20", "2026-12-15", "2026-12-20"},
		{"single iso date", "check in 2026-12-15 please", "2026-12-15", ""},
		{"no dates", "do you have rooms?", "", ""},
		{"tomorrow", "I'd like to arrive tomorrow", "2026-09-02", ""},
		{"today", "starting today please", "2026-09-01", ""},
		{"next week", "sometime next week", "2026-09-08", ""},
		{"short date rolls forward", "arriving 3/15", "2027-03-15", ""},
		{"short date this year", "arriving 12/15", "2026-12-15", ""},
		{"iso wins over relative", "2026-12-15 to 2026-12-20, not tomorrow", "2026-12-15", "2026-12-20"},
		{"nonsense short date skipped", "room 13/45 please", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkIn, checkOut := e.ExtractDates(tt.text, extractNow)
			assert.Equal(t, tt.checkIn, checkIn)
			assert.Equal(t, tt.checkOut, checkOut)
		})
	}
}

func TestExtractGuestCount(t *testing.T) {
	e := RegexExtractor{}

	tests := []struct {
		text string
		want int
	}{
		{"a room for 2 guests", 2},
		{"3 people", 3},
		{"party of 4", 4},
		{"2 adults", 2},
		{"for 2", 2},
		{"from 2026-12-15 to 2026-12-20", 0}, // year digits must not read as a count
		{"no numbers here", 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, e.ExtractGuestCount(tt.text), "text: %s", tt.text)
	}
}

func TestExtractGuestDetails(t *testing.T) {
	e := RegexExtractor{}

	t.Run("name email and phone", func(t *testing.T) {
		d := e.ExtractGuestDetails("John Smith, john@example.com, +1 555 123 4567")
		assert.Equal(t, "John Smith", d.Name)
		assert.Equal(t, "john@example.com", d.Email)
		assert.Equal(t, "+15551234567", d.Phone)
	})

	t.Run("email only", func(t *testing.T) {
		d := e.ExtractGuestDetails("my email is jane@example.com")
		assert.Equal(t, "jane@example.com", d.Email)
		assert.Empty(t, d.Name)
		assert.Empty(t, d.Phone)
	})

	t.Run("email is lowercased", func(t *testing.T) {
		d := e.ExtractGuestDetails("Jane.Doe@Example.COM")
		assert.Equal(t, "jane.doe@example.com", d.Email)
	})

	t.Run("unparseable phone kept raw", func(t *testing.T) {
		d := e.ExtractGuestDetails("call me at 000 0000 0000")
		assert.NotEmpty(t, d.Phone)
	})

	t.Run("single capitalized word is not a name", func(t *testing.T) {
		d := e.ExtractGuestDetails("Please book it")
		assert.Empty(t, d.Name)
	})

	t.Run("name capped at three words", func(t *testing.T) {
		d := e.ExtractGuestDetails("Mary Jane Watson Parker here")
		assert.Equal(t, "Mary Jane Watson", d.Name)
	})
}

func sampleOffers() []pms.RoomOffer {
	return []pms.RoomOffer{
		{ID: "room_101", Name: "Standard Room"},
		{ID: "room_201", Name: "Deluxe Suite"},
		{ID: "room_301", Name: "Presidential Suite"},
	}
}

func TestMatchRoomSelection(t *testing.T) {
	e := RegexExtractor{}

	tests := []struct {
		name string
		text string
		want string
	}{
		{"ordinal one", "1", "room_101"},
		{"ordinal three", "3", "room_301"},
		{"ordinal with spaces", "  2 ", "room_201"},
		{"ordinal out of range", "4", ""},
		{"ordinal zero", "0", ""},
		{"full name", "the Deluxe Suite please", "room_201"},
		{"name case-insensitive", "standard room", "room_101"},
		{"word fallback", "the presidential one", "room_301"},
		{"no match", "something cheap", ""},
		{"empty text", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.MatchRoomSelection(tt.text, sampleOffers()))
		})
	}
}

func TestMatchRoomSelectionSharedWordPrefersFirstOffer(t *testing.T) {
	e := RegexExtractor{}

	// "suite" appears in two offer names; the word fallback picks the first.
	assert.Equal(t, "room_201", e.MatchRoomSelection("a suite please", sampleOffers()))
}
