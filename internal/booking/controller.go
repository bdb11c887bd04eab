package booking

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/grandpine/hotel-concierge/internal/observability/metrics"
	"github.com/grandpine/hotel-concierge/internal/pms"
	"github.com/grandpine/hotel-concierge/pkg/logging"
)

// Responder produces the next assistant utterance for the free-form steps.
type Responder interface {
	Generate(ctx context.Context, systemPrompt string, history []Message) (string, error)
}

// action is the "missing requirement" the controller resolves next. The
// decision procedure in nextAction is a total, priority-ordered match over
// these values, recomputed fresh from state every iteration — CurrentStep is
// only a hint, so guests can jump ahead (e.g. send contact details early)
// without the flow losing track.
type action int

const (
	actionReset action = iota
	actionClosing
	actionExtract
	actionValidate
	actionAvailability
	actionSelectRoom
	actionGuestInfo
	actionCreateBooking
	actionRespond
)

func (a action) String() string {
	switch a {
	case actionReset:
		return "reset"
	case actionClosing:
		return "closing"
	case actionExtract:
		return "extract"
	case actionValidate:
		return "validate"
	case actionAvailability:
		return "availability"
	case actionSelectRoom:
		return "select_room"
	case actionGuestInfo:
		return "guest_info"
	case actionCreateBooking:
		return "create_booking"
	default:
		return "respond"
	}
}

// turn tracks which steps already ran inside the current turn, bounding the
// controller to at most one extraction pass, one validation, one availability
// check, one booking attempt, and one generated reply per guest message.
type turn struct {
	extracted    bool
	validated    bool
	availability bool
	selectionTry bool
	guestInfoTry bool
	bookTry      bool
	resetDone    bool
}

const maxStepsPerTurn = 8

// Controller drives a booking conversation one turn at a time. It holds no
// per-conversation state: Take is a pure function from (state, guest text) to
// (state, reply) apart from the external calls it brokers.
type Controller struct {
	gateway   pms.Gateway
	responder Responder
	extractor TextExtractor
	hotelName string
	logger    *logging.Logger
	metrics   *metrics.ConversationMetrics
	now       func() time.Time
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithHotelName sets the property name used in prompts and confirmations.
func WithHotelName(name string) ControllerOption {
	return func(c *Controller) {
		if name != "" {
			c.hotelName = name
		}
	}
}

// WithExtractor substitutes the text extraction backend.
func WithExtractor(extractor TextExtractor) ControllerOption {
	return func(c *Controller) {
		if extractor != nil {
			c.extractor = extractor
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) ControllerOption {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics enables turn metrics.
func WithMetrics(m *metrics.ConversationMetrics) ControllerOption {
	return func(c *Controller) {
		c.metrics = m
	}
}

// WithClock overrides the time source, used by date validation.
func WithClock(now func() time.Time) ControllerOption {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// NewController wires the conversation engine around its collaborators.
func NewController(gateway pms.Gateway, responder Responder, opts ...ControllerOption) *Controller {
	if gateway == nil {
		panic("booking: gateway cannot be nil")
	}
	if responder == nil {
		panic("booking: responder cannot be nil")
	}
	c := &Controller{
		gateway:   gateway,
		responder: responder,
		extractor: RegexExtractor{},
		hotelName: "The Grand Hotel",
		logger:    logging.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Take processes one guest message: it appends the message to the transcript,
// runs internal steps until one of them produces a reply, appends that reply,
// and returns the updated state. At most one responder call, one availability
// check, and one booking attempt happen per turn.
func (c *Controller) Take(ctx context.Context, state State, userText string) (State, string) {
	start := c.now()
	state.AppendUser(userText)
	state.Recompute()

	t := &turn{}
	var reply string
	var last action
	for i := 0; i < maxStepsPerTurn && reply == ""; i++ {
		last = c.nextAction(&state, t)
		reply = c.execute(ctx, &state, t, last)
	}
	if reply == "" {
		reply = "I'm here to help! Could you please tell me your check-in date?"
	}

	state.AppendAssistant(reply)
	state.Recompute()

	c.metrics.ObserveTurn(last.String(), string(state.BookingStatus), time.Since(start).Seconds())
	c.logger.Debug("booking: turn processed",
		"action", last.String(),
		"step", state.CurrentStep,
		"status", string(state.BookingStatus),
	)
	return state, reply
}

// nextAction is the priority-ordered decision procedure. It is total: every
// reachable field combination maps to exactly one action, with actionRespond
// as the catch-all.
func (c *Controller) nextAction(s *State, t *turn) action {
	switch {
	case s.BookingStatus == StatusConfirmed && !t.resetDone && wantsNewBooking(s.LastUserText()):
		return actionReset
	case s.BookingStatus == StatusConfirmed:
		return actionClosing
	case s.NeedsDates && !t.extracted:
		return actionExtract
	case s.CurrentStep == StepNoAvailability && !t.extracted:
		// The guest was invited to try different dates; give the new
		// message a chance to replace the unavailable pair.
		return actionExtract
	case s.CheckIn != "" && s.CheckOut != "" && s.GuestCount > 0 && !datesValidated(s) && !t.validated:
		return actionValidate
	case s.CurrentStep == StepDatesValid && s.GuestCount > 0 && !t.availability:
		return actionAvailability
	case len(s.AvailableRooms) > 0 && s.SelectedRoomID == "" && !t.availability && !t.selectionTry:
		return actionSelectRoom
	case s.SelectedRoomID != "" && s.NeedsGuestInfo && !t.guestInfoTry:
		return actionGuestInfo
	case s.ReadyToBook && !t.bookTry:
		return actionCreateBooking
	default:
		return actionRespond
	}
}

// datesValidated reports whether the stored step implies the current date
// pair already passed validation.
func datesValidated(s *State) bool {
	switch s.CurrentStep {
	case StepDatesValid, StepPresentingOptions, StepRoomSelected, StepCompleted:
		return true
	}
	return false
}

// execute runs one step. A non-empty return value ends the turn with that
// reply; an empty return hands control back to the decision procedure.
func (c *Controller) execute(ctx context.Context, s *State, t *turn, a action) string {
	switch a {
	case actionReset:
		s.ResetBooking()
		t.resetDone = true
		return ""
	case actionClosing, actionRespond:
		return c.respond(ctx, s)
	case actionExtract:
		c.extract(s, t)
		return ""
	case actionValidate:
		return c.validate(s, t)
	case actionAvailability:
		return c.checkAvailability(ctx, s, t)
	case actionSelectRoom:
		return c.selectRoom(s, t)
	case actionGuestInfo:
		c.collectGuestInfo(s, t)
		return ""
	case actionCreateBooking:
		return c.createBooking(ctx, s, t)
	default:
		return c.respond(ctx, s)
	}
}

// extract fills whatever of check-in/check-out/guest count is still missing
// from the latest guest message. Set fields are never overwritten, except
// that after a no-availability result a message carrying fresh dates replaces
// the pair that came up empty.
func (c *Controller) extract(s *State, t *turn) {
	t.extracted = true
	text := s.LastUserText()

	checkIn, checkOut := c.extractor.ExtractDates(text, c.now())
	if s.CurrentStep == StepNoAvailability && checkIn != "" {
		s.CheckIn = ""
		s.CheckOut = ""
		s.AvailableRooms = nil
		s.CurrentStep = StepCollectingDates
	}
	for _, date := range []string{checkIn, checkOut} {
		if date == "" {
			continue
		}
		switch {
		case s.CheckIn == "":
			s.CheckIn = date
		case s.CheckOut == "":
			s.CheckOut = date
		}
	}

	if s.GuestCount <= 0 {
		if n := c.extractor.ExtractGuestCount(text); n > 0 {
			s.GuestCount = n
		}
	}

	if s.CurrentStep == "" {
		s.CurrentStep = StepCollectingDates
	}
	s.Recompute()
}

// validate applies the stay rules. On failure both dates are cleared so the
// pair is re-collected from scratch; a partially valid pair is never kept.
func (c *Controller) validate(s *State, t *turn) string {
	t.validated = true

	if err := ValidateStay(s.CheckIn, s.CheckOut, c.now()); err != nil {
		reason := reasonBadFormat
		if verr, ok := err.(*ValidationError); ok {
			reason = verr.Reason
		}
		s.CheckIn = ""
		s.CheckOut = ""
		s.CurrentStep = StepInvalidDates
		s.Recompute()
		return replyInvalidDates(reason)
	}

	s.CurrentStep = StepDatesValid
	return ""
}

func (c *Controller) checkAvailability(ctx context.Context, s *State, t *turn) string {
	t.availability = true

	offers, err := c.gateway.CheckAvailability(ctx, s.CheckIn, s.CheckOut, s.GuestCount)
	if err != nil {
		c.logger.Error("booking: availability check failed",
			"error", fmt.Errorf("%w: %v", ErrAvailability, err),
			"check_in", s.CheckIn,
			"check_out", s.CheckOut,
		)
		c.metrics.ObserveExternalFailure("availability")
		s.CurrentStep = StepError
		return replyAvailabilityError
	}

	if offers == nil {
		offers = []pms.RoomOffer{}
	}
	s.AvailableRooms = offers

	if len(offers) == 0 {
		s.CurrentStep = StepNoAvailability
		return replyNoAvailability(s)
	}

	s.CurrentStep = StepPresentingOptions
	return replyRoomOptions(s)
}

func (c *Controller) selectRoom(s *State, t *turn) string {
	t.selectionTry = true

	roomID := c.extractor.MatchRoomSelection(s.LastUserText(), s.AvailableRooms)
	if roomID == "" {
		return replySelectionRetry
	}

	for _, offer := range s.AvailableRooms {
		if offer.ID == roomID {
			s.SelectedRoomID = offer.ID
			s.SelectedRoomName = offer.Name
			break
		}
	}
	s.CurrentStep = StepRoomSelected
	s.Recompute()
	return ""
}

func (c *Controller) collectGuestInfo(s *State, t *turn) {
	t.guestInfoTry = true

	// A selecting message often repeats the room name, which the
	// capitalized-words heuristic would read as a guest name.
	text := stripRoomName(s.LastUserText(), s.SelectedRoomName)
	details := c.extractor.ExtractGuestDetails(text)
	if s.GuestName == "" && details.Name != "" {
		s.GuestName = details.Name
	}
	if s.GuestEmail == "" && details.Email != "" {
		s.GuestEmail = details.Email
	}
	if s.GuestPhone == "" && details.Phone != "" {
		s.GuestPhone = details.Phone
	}
	s.Recompute()
}

func stripRoomName(text, roomName string) string {
	if roomName == "" {
		return text
	}
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(roomName))
	return re.ReplaceAllString(text, " ")
}

func (c *Controller) createBooking(ctx context.Context, s *State, t *turn) string {
	t.bookTry = true

	guest := pms.GuestBooking{
		GuestName:       s.GuestName,
		GuestEmail:      s.GuestEmail,
		GuestPhone:      s.GuestPhone,
		CheckIn:         s.CheckIn,
		CheckOut:        s.CheckOut,
		GuestCount:      s.GuestCount,
		SpecialRequests: s.SpecialRequests,
	}

	confirmation, err := c.gateway.CreateBooking(ctx, guest, s.SelectedRoomID)
	if err != nil {
		// The selected room is deliberately kept so the guest can retry
		// by re-confirming their details.
		c.logger.Error("booking: creation failed",
			"error", fmt.Errorf("%w: %v", ErrBooking, err),
			"room_id", s.SelectedRoomID,
		)
		c.metrics.ObserveExternalFailure("create_booking")
		s.BookingStatus = StatusFailed
		return replyBookingFailure
	}

	s.BookingStatus = StatusConfirmed
	s.ConfirmationNumber = confirmation
	s.CurrentStep = StepCompleted
	c.logger.Info("booking: confirmed",
		"confirmation", confirmation,
		"room", s.SelectedRoomName,
		"check_in", s.CheckIn,
		"check_out", s.CheckOut,
	)
	return replyConfirmation(s, c.hotelName)
}

func (c *Controller) respond(ctx context.Context, s *State) string {
	text, err := c.responder.Generate(ctx, buildSystemPrompt(s, c.hotelName), s.Messages)
	if err != nil {
		c.logger.Error("booking: response generation failed", "error", err)
		c.metrics.ObserveExternalFailure("generation")
		return replyGenerationFailure
	}
	return text
}
