package booking

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"

	"github.com/grandpine/hotel-concierge/internal/pms"
)

// TextExtractor is the pluggable contract for pulling structured booking
// fields out of free text. The default implementation is regex-based and
// best-effort: every method may return nothing, and the controller must
// tolerate partial results. A real NLU backend can be substituted without
// touching the controller.
type TextExtractor interface {
	ExtractDates(text string, now time.Time) (checkIn, checkOut string)
	ExtractGuestCount(text string) int
	ExtractGuestDetails(text string) GuestDetails
	MatchRoomSelection(text string, offers []pms.RoomOffer) string
}

// GuestDetails holds contact fields recovered from a guest message. Empty
// fields mean "not found", never an error.
type GuestDetails struct {
	Name  string
	Email string
	Phone string
}

// RegexExtractor implements TextExtractor with pattern heuristics.
type RegexExtractor struct{}

var _ TextExtractor = RegexExtractor{}

var (
	isoDateRE   = regexp.MustCompile(`\d{4}[-/]\d{2}[-/]\d{2}`)
	shortDateRE = regexp.MustCompile(`\b(\d{1,2})[-/](\d{1,2})\b`)

	guestCountREs = []*regexp.Regexp{
		regexp.MustCompile(`(\d+)\s*(?:guests?|people|persons?)`),
		regexp.MustCompile(`for\s*(\d+)`),
		regexp.MustCompile(`party\s*of\s*(\d+)`),
		regexp.MustCompile(`(\d+)\s*(?:adults?|pax)`),
	}

	emailRE = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phoneRE = regexp.MustCompile(`[\+\d][\d\s\-\(\)]{7,}\d`)
)

// ExtractDates finds stay dates in a message.
//
// Recognized forms, in matching order:
//   - YYYY-MM-DD (also YYYY/MM/DD): two tokens are taken positionally as
//     check-in then check-out; a single token is returned as check-in only
//     and the caller decides which unset field it fills.
//   - "today", "tomorrow", "next week"
//   - MM/DD or MM-DD, rolled forward to next year when already past
func (RegexExtractor) ExtractDates(text string, now time.Time) (string, string) {
	var found []string

	for _, tok := range isoDateRE.FindAllString(text, -1) {
		found = append(found, strings.ReplaceAll(tok, "/", "-"))
	}

	if len(found) < 2 {
		// Relative and short forms only matter when the message doesn't
		// already spell out both dates.
		remainder := isoDateRE.ReplaceAllString(text, " ")
		found = append(found, relativeDates(remainder, now)...)
		found = append(found, shortDates(remainder, now)...)
	}

	switch len(found) {
	case 0:
		return "", ""
	case 1:
		return found[0], ""
	default:
		return found[0], found[1]
	}
}

func relativeDates(text string, now time.Time) []string {
	lower := strings.ToLower(text)
	var dates []string
	if strings.Contains(lower, "today") {
		dates = append(dates, now.Format("2006-01-02"))
	}
	if strings.Contains(lower, "tomorrow") {
		dates = append(dates, now.AddDate(0, 0, 1).Format("2006-01-02"))
	}
	if strings.Contains(lower, "next week") {
		dates = append(dates, now.AddDate(0, 0, 7).Format("2006-01-02"))
	}
	return dates
}

func shortDates(text string, now time.Time) []string {
	var dates []string
	for _, m := range shortDateRE.FindAllStringSubmatch(text, -1) {
		month, err1 := strconv.Atoi(m[1])
		day, err2 := strconv.Atoi(m[2])
		if err1 != nil || err2 != nil || month < 1 || month > 12 || day < 1 || day > 31 {
			continue
		}
		year := now.Year()
		candidate := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if candidate.Before(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)) {
			year++
		}
		dates = append(dates, fmt.Sprintf("%d-%02d-%02d", year, month, day))
	}
	return dates
}

// ExtractGuestCount finds a party size in a message. Patterns like
// "3 guests", "for 2", "party of 4", "2 adults" are tried in order and the
// first match wins; 0 means no count was found.
func (RegexExtractor) ExtractGuestCount(text string) int {
	// Drop date tokens so "for 2024-12-15" never reads as a party of 2024.
	lower := isoDateRE.ReplaceAllString(strings.ToLower(text), " ")
	for _, re := range guestCountREs {
		if m := re.FindStringSubmatch(lower); len(m) == 2 {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				return n
			}
		}
	}
	return 0
}

// ExtractGuestDetails pulls name, email, and phone out of a message.
// The phone number is normalized to E.164 when it parses cleanly, otherwise
// kept as matched. The name heuristic takes up to three consecutive
// capitalized words after stripping the matched email and phone.
func (RegexExtractor) ExtractGuestDetails(text string) GuestDetails {
	var details GuestDetails

	if email := emailRE.FindString(text); email != "" {
		details.Email = strings.ToLower(email)
	}

	rawPhone := phoneRE.FindString(text)
	if rawPhone != "" {
		details.Phone = normalizePhone(rawPhone)
	}

	nameText := text
	if details.Email != "" {
		nameText = strings.Replace(nameText, emailRE.FindString(text), " ", 1)
	}
	if rawPhone != "" {
		nameText = strings.Replace(nameText, rawPhone, " ", 1)
	}

	var candidates []string
	for _, word := range strings.Fields(nameText) {
		word = strings.Trim(word, ",.;:!?")
		if len(word) > 2 && word[0] >= 'A' && word[0] <= 'Z' {
			candidates = append(candidates, word)
		}
	}
	if len(candidates) >= 2 {
		if len(candidates) > 3 {
			candidates = candidates[:3]
		}
		details.Name = strings.Join(candidates, " ")
	}

	return details
}

func normalizePhone(raw string) string {
	parsed, err := phonenumbers.Parse(raw, "")
	if err != nil {
		return raw
	}
	if !phonenumbers.IsValidNumber(parsed) {
		return raw
	}
	return phonenumbers.Format(parsed, phonenumbers.E164)
}

// MatchRoomSelection resolves a guest message against the presented offers.
// A bare 1-based ordinal takes precedence; then a case-insensitive substring
// match on an offer name; finally any offer-name word longer than three
// characters. Returns "" when nothing matches.
func (RegexExtractor) MatchRoomSelection(text string, offers []pms.RoomOffer) string {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" || len(offers) == 0 {
		return ""
	}

	if n, err := strconv.Atoi(lower); err == nil {
		if n >= 1 && n <= len(offers) {
			return offers[n-1].ID
		}
		return ""
	}

	for _, offer := range offers {
		if strings.Contains(lower, strings.ToLower(offer.Name)) {
			return offer.ID
		}
	}

	// Word-level fallback. Known to mis-match when offer names share long
	// words ("Deluxe Suite" vs "Presidential Suite"); first offer wins.
	for _, offer := range offers {
		for _, word := range strings.Fields(strings.ToLower(offer.Name)) {
			if len(word) > 3 && strings.Contains(lower, word) {
				return offer.ID
			}
		}
	}

	return ""
}
