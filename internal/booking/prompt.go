package booking

import (
	"fmt"
	"strings"
)

// buildSystemPrompt assembles the receptionist persona plus the fields
// already collected and the single next piece of information still required,
// so free-form generation stays anchored to the booking flow.
func buildSystemPrompt(state *State, hotelName string) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are a polite and professional hotel receptionist at %s.

Your role is to help guests make room reservations through natural conversation.

Guidelines:
1. Be warm, friendly, and professional
2. Speak naturally - you're having a live conversation
3. Keep responses concise (1-3 sentences)
4. If asked about topics unrelated to hotel reservations, politely redirect to booking
5. Always confirm important details with the guest

Current conversation context:`, hotelName)

	if state.CheckIn != "" {
		fmt.Fprintf(&b, "\n- Check-in: %s", state.CheckIn)
	}
	if state.CheckOut != "" {
		fmt.Fprintf(&b, "\n- Check-out: %s", state.CheckOut)
	}
	if state.GuestCount > 0 {
		fmt.Fprintf(&b, "\n- Guests: %d", state.GuestCount)
	}
	if state.SelectedRoomName != "" {
		fmt.Fprintf(&b, "\n- Selected room: %s", state.SelectedRoomName)
	}

	switch {
	case state.BookingStatus == StatusConfirmed:
		b.WriteString("\n\nThe booking is complete. Ask if they need anything else.")
	case state.NeedsDates:
		b.WriteString("\n\nNext: Ask for check-in date, check-out date, and number of guests.")
	case state.CurrentStep == StepPresentingOptions:
		b.WriteString("\n\nNext: The available rooms have been presented. Ask which room they prefer.")
	case state.SelectedRoomID != "" && state.NeedsGuestInfo:
		b.WriteString("\n\nNext: Collect the guest's ")
		b.WriteString(strings.Join(missingGuestFields(state), ", "))
		b.WriteString(" for the booking.")
	}

	return b.String()
}

func missingGuestFields(state *State) []string {
	var missing []string
	if state.GuestName == "" {
		missing = append(missing, "full name")
	}
	if state.GuestEmail == "" {
		missing = append(missing, "email address")
	}
	if state.GuestPhone == "" {
		missing = append(missing, "phone number")
	}
	if len(missing) == 0 {
		missing = append(missing, "confirmation")
	}
	return missing
}
