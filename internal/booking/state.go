// Package booking implements the hotel reservation conversation engine: the
// per-conversation state record, best-effort field extraction from free text,
// stay-date validation, and the turn-by-turn controller that drives a guest
// from first contact to a confirmed booking.
package booking

import (
	"strings"

	"github.com/grandpine/hotel-concierge/internal/pms"
)

// Message roles in the conversation transcript.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single transcript entry. The transcript is append-only; the
// engine never reorders or prunes it.
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Status tracks the booking outcome for the current reservation attempt.
type Status string

const (
	StatusNone      Status = ""
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

// Step values are routing memory only: they hint at where the previous turn
// left off. The controller recomputes the actual next action from the full
// state every turn, so a stale or missing step never derails the flow.
const (
	StepCollectingDates   = "collecting_dates"
	StepInvalidDates      = "invalid_dates"
	StepDatesValid        = "dates_valid"
	StepPresentingOptions = "presenting_options"
	StepNoAvailability    = "no_availability"
	StepRoomSelected      = "room_selected"
	StepCompleted         = "completed"
	StepError             = "error"
)

// State is the single source of truth for one conversation. The controller
// receives it by value each turn and returns an updated copy; the channel
// adapter owns persistence.
type State struct {
	Messages []Message `json:"messages"`

	CheckIn    string `json:"check_in,omitempty"`  // YYYY-MM-DD
	CheckOut   string `json:"check_out,omitempty"` // YYYY-MM-DD
	GuestCount int    `json:"guest_count,omitempty"`

	AvailableRooms   []pms.RoomOffer `json:"available_rooms,omitempty"`
	SelectedRoomID   string          `json:"selected_room_id,omitempty"`
	SelectedRoomName string          `json:"selected_room_name,omitempty"`

	GuestName       string `json:"guest_name,omitempty"`
	GuestEmail      string `json:"guest_email,omitempty"`
	GuestPhone      string `json:"guest_phone,omitempty"`
	SpecialRequests string `json:"special_requests,omitempty"`

	BookingStatus      Status `json:"booking_status,omitempty"`
	ConfirmationNumber string `json:"confirmation_number,omitempty"`

	CurrentStep string `json:"current_step,omitempty"`

	// Derived flags, recomputed by Recompute. Persisted for adapters that
	// want to inspect progress without re-deriving it.
	NeedsDates     bool `json:"needs_dates"`
	NeedsGuestInfo bool `json:"needs_guest_info"`
	ReadyToBook    bool `json:"ready_to_book"`
}

// NewState returns the state for a fresh conversation.
func NewState() State {
	s := State{Messages: []Message{}}
	s.Recompute()
	return s
}

// Recompute re-derives the progress flags from the fields they gate. Called
// at every turn boundary and after every mutation inside a turn.
func (s *State) Recompute() {
	s.NeedsDates = s.CheckIn == "" || s.CheckOut == "" || s.GuestCount <= 0
	s.NeedsGuestInfo = s.GuestName == "" || s.GuestEmail == "" || s.GuestPhone == ""
	s.ReadyToBook = !s.NeedsGuestInfo && s.SelectedRoomID != ""
}

// ResetBooking clears the reservation fields so the guest can start another
// booking, keeping the transcript intact.
func (s *State) ResetBooking() {
	s.CheckIn = ""
	s.CheckOut = ""
	s.GuestCount = 0
	s.AvailableRooms = nil
	s.SelectedRoomID = ""
	s.SelectedRoomName = ""
	s.GuestName = ""
	s.GuestEmail = ""
	s.GuestPhone = ""
	s.SpecialRequests = ""
	s.BookingStatus = StatusNone
	s.ConfirmationNumber = ""
	s.CurrentStep = ""
	s.Recompute()
}

// AppendUser appends a guest message to the transcript.
func (s *State) AppendUser(text string) {
	s.Messages = append(s.Messages, Message{Role: RoleUser, Text: text})
}

// AppendAssistant appends an assistant message to the transcript.
func (s *State) AppendAssistant(text string) {
	s.Messages = append(s.Messages, Message{Role: RoleAssistant, Text: text})
}

// LastUserText returns the most recent guest message, or "".
func (s *State) LastUserText() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleUser {
			return s.Messages[i].Text
		}
	}
	return ""
}

// wantsNewBooking reports whether a post-confirmation message signals intent
// to start another reservation.
func wantsNewBooking(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "new") || strings.Contains(lower, "another")
}
