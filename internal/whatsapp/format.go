package whatsapp

import (
	"fmt"
	"strings"
	"time"

	"github.com/grandpine/hotel-concierge/internal/booking"
)

// Greeting is sent after a reset command and to brand-new sessions that open
// with an empty message.
func Greeting(hotelName string) string {
	return fmt.Sprintf(
		"Welcome to %s! 🏨\n\n"+
			"I'm here to help you make a reservation.\n\n"+
			"To get started, please let me know:\n"+
			"• Check-in date\n"+
			"• Check-out date\n"+
			"• Number of guests\n\n"+
			"Example: \"I need a room from 2026-12-15 to 2026-12-20 for 2 guests\"",
		hotelName,
	)
}

// HelpMenu lists the recognized commands and the booking flow.
func HelpMenu(hotelName string) string {
	return fmt.Sprintf(
		"📋 *%s - Help Menu*\n\n"+
			"*Commands:*\n"+
			"• Type your booking request naturally\n"+
			"• 'reset' - Start a new booking\n"+
			"• 'help' - Show this menu\n"+
			"• 'status' - Check current booking status\n\n"+
			"*Booking Process:*\n"+
			"1️⃣ Provide dates and guest count\n"+
			"2️⃣ Select a room from available options\n"+
			"3️⃣ Provide guest details\n"+
			"4️⃣ Receive confirmation\n\n"+
			"Need assistance? Just ask!",
		hotelName,
	)
}

// StatusSummary renders the progress checklist for the 'status' command.
func StatusSummary(state booking.State) string {
	parts := []string{"📊 *Booking Status*\n"}

	if state.CheckIn != "" && state.CheckOut != "" {
		parts = append(parts, fmt.Sprintf("✅ Dates: %s to %s", state.CheckIn, state.CheckOut))
	} else {
		parts = append(parts, "⏳ Dates: Not provided")
	}

	if state.GuestCount > 0 {
		parts = append(parts, fmt.Sprintf("✅ Guests: %d", state.GuestCount))
	} else {
		parts = append(parts, "⏳ Guests: Not provided")
	}

	if state.SelectedRoomName != "" {
		parts = append(parts, fmt.Sprintf("✅ Room: %s", state.SelectedRoomName))
	} else {
		parts = append(parts, "⏳ Room: Not selected")
	}

	if state.GuestName != "" {
		parts = append(parts, fmt.Sprintf("✅ Guest Name: %s", state.GuestName))
	} else {
		parts = append(parts, "⏳ Guest Name: Not provided")
	}

	if state.BookingStatus == booking.StatusConfirmed {
		parts = append(parts, fmt.Sprintf("\n✅ *Booking Confirmed!*\nConfirmation: %s", state.ConfirmationNumber))
	}

	return strings.Join(parts, "\n")
}

// DecorateConfirmation wraps a plain confirmation reply with the richer
// WhatsApp card, including the night count.
func DecorateConfirmation(state booking.State, hotelName string) string {
	nights := "N/A"
	if in, err := time.Parse("2006-01-02", state.CheckIn); err == nil {
		if out, err := time.Parse("2006-01-02", state.CheckOut); err == nil {
			nights = fmt.Sprintf("%d", int(out.Sub(in).Hours()/24))
		}
	}

	return fmt.Sprintf(
		"✅ *Booking Confirmed!*\n\n"+
			"🎫 *Confirmation:* %s\n"+
			"🏨 *Hotel:* %s\n"+
			"🛏️ *Room:* %s\n"+
			"👥 *Guests:* %d\n"+
			"📅 *Check-in:* %s\n"+
			"📅 *Check-out:* %s\n"+
			"🌙 *Nights:* %s\n\n"+
			"📧 A confirmation email has been sent to %s\n\n"+
			"We look forward to welcoming you! 🎉\n\n"+
			"_Need to make changes? Type 'help' for options._",
		state.ConfirmationNumber, hotelName, state.SelectedRoomName,
		state.GuestCount, state.CheckIn, state.CheckOut, nights, state.GuestEmail,
	)
}

const processingErrorReply = "I apologize, but I encountered an error processing your request. " +
	"Please try again or type 'reset' to start over."
