package booking

import (
	"fmt"
	"strings"

	"github.com/grandpine/hotel-concierge/internal/pms"
)

// Fixed reply templates for the structured steps. Free-form replies come from
// the Responder; these cover the deterministic paths where improvisation
// would risk contradicting the actual PMS result.

const (
	replyGenerationFailure = "I apologize, I'm experiencing technical difficulties. Could you please repeat that?"
	replyAvailabilityError = "I'm having trouble checking availability right now. Please try again in a moment."
	replyBookingFailure    = "I apologize, but I encountered an error while creating your booking. Please try again or contact our reservations team directly."
	replySelectionRetry    = "I didn't catch which room you'd like. You can reply with the room number or the room name."
)

func replyInvalidDates(reason string) string {
	return fmt.Sprintf("I'm sorry, but there's an issue with those dates: %s Could you please provide different dates?", reason)
}

func replyNoAvailability(state *State) string {
	return fmt.Sprintf(
		"I'm sorry, we don't have any rooms available for %d guests from %s to %s. Would you like to try different dates?",
		state.GuestCount, state.CheckIn, state.CheckOut,
	)
}

func replyRoomOptions(state *State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Great! I found %d available rooms for %d guests from %s to %s:\n\n",
		len(state.AvailableRooms), state.GuestCount, state.CheckIn, state.CheckOut)
	b.WriteString(FormatRoomOptions(state.AvailableRooms))
	b.WriteString("\n\nWhich room would you like to book?")
	return b.String()
}

func replyConfirmation(state *State, hotelName string) string {
	return fmt.Sprintf(
		"Excellent! Your booking is confirmed.\n\n"+
			"Confirmation Number: %s\n"+
			"Room: %s\n"+
			"Check-in: %s\n"+
			"Check-out: %s\n"+
			"Guests: %d\n\n"+
			"A confirmation email has been sent to %s. "+
			"We look forward to welcoming you to %s!\n\n"+
			"Is there anything else I can help you with?",
		state.ConfirmationNumber, state.SelectedRoomName, state.CheckIn,
		state.CheckOut, state.GuestCount, state.GuestEmail, hotelName,
	)
}

// FormatRoomOptions renders offers as a numbered plain-text list. Channel
// adapters may re-render with channel-specific markup.
func FormatRoomOptions(offers []pms.RoomOffer) string {
	parts := make([]string, 0, len(offers))
	for i, offer := range offers {
		parts = append(parts, fmt.Sprintf("%d. %s - $%.0f/night\n   %s\n   Amenities: %s",
			i+1, offer.Name, offer.PricePerNight, offer.Description,
			strings.Join(offer.Amenities, ", ")))
	}
	return strings.Join(parts, "\n\n")
}
