// Package whatsapp adapts the conversation engine to Twilio's WhatsApp
// webhook channel: command handling, session persistence, and TwiML replies.
package whatsapp

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/grandpine/hotel-concierge/internal/booking"
	"github.com/grandpine/hotel-concierge/internal/observability/metrics"
	"github.com/grandpine/hotel-concierge/internal/session"
	"github.com/grandpine/hotel-concierge/internal/transcript"
	"github.com/grandpine/hotel-concierge/pkg/logging"
)

var tracer = otel.Tracer("concierge.internal.whatsapp")

// Handler handles WhatsApp webhook requests.
type Handler struct {
	controller  *booking.Controller
	sessions    *session.Store
	transcripts *transcript.Store
	hotelName   string
	authToken   string
	logger      *logging.Logger
	metrics     *metrics.WebhookMetrics
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithAuthToken enables Twilio signature validation.
func WithAuthToken(token string) HandlerOption {
	return func(h *Handler) { h.authToken = token }
}

// WithTranscripts enables write-behind transcript persistence.
func WithTranscripts(store *transcript.Store) HandlerOption {
	return func(h *Handler) { h.transcripts = store }
}

// WithMetrics enables webhook metrics.
func WithMetrics(m *metrics.WebhookMetrics) HandlerOption {
	return func(h *Handler) { h.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) HandlerOption {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHandler creates a WhatsApp webhook handler.
func NewHandler(controller *booking.Controller, sessions *session.Store, hotelName string, opts ...HandlerOption) *Handler {
	if controller == nil {
		panic("whatsapp: controller cannot be nil")
	}
	if sessions == nil {
		panic("whatsapp: session store cannot be nil")
	}
	if hotelName == "" {
		hotelName = "The Grand Hotel"
	}
	h := &Handler{
		controller: controller,
		sessions:   sessions,
		hotelName:  hotelName,
		logger:     logging.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Webhook handles POST /webhook/whatsapp requests from Twilio.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "whatsapp.webhook")
	defer span.End()
	start := time.Now()

	if h.authToken != "" {
		if !ValidateTwilioSignature(r, h.authToken, buildAbsoluteURL(r)) {
			h.logger.Warn("whatsapp: invalid twilio signature")
			span.RecordError(errors.New("invalid twilio signature"))
			h.metrics.ObserveInbound("whatsapp", "unauthorized")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
	}

	inbound, err := ParseInbound(r)
	if err != nil {
		h.logger.Error("whatsapp: failed to parse webhook", "error", err)
		span.RecordError(err)
		h.metrics.ObserveInbound("whatsapp", "bad_request")
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	phone := inbound.SenderPhone()
	if phone == "" {
		h.metrics.ObserveInbound("whatsapp", "bad_request")
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	span.SetAttributes(
		attribute.String("concierge.whatsapp.message_sid", inbound.MessageSid),
		attribute.String("concierge.whatsapp.from", phone),
	)

	reply := h.processMessage(ctx, phone, inbound.Body)

	h.metrics.ObserveInbound("whatsapp", "ok")
	h.metrics.ObserveWebhookLatency("whatsapp", time.Since(start).Seconds())
	writeTwiML(w, reply)
}

// processMessage resolves commands, runs a conversation turn, and persists
// the updated session. Errors degrade to an apology so the guest always gets
// a reply.
func (h *Handler) processMessage(ctx context.Context, phone, body string) string {
	userID := conversationID(phone)

	command := strings.ToLower(strings.TrimSpace(body))
	switch command {
	case "reset", "restart", "start over", "new booking":
		if err := h.sessions.Clear(ctx, userID); err != nil {
			h.logger.Error("whatsapp: failed to clear session", "error", err, "user", userID)
		}
		return Greeting(h.hotelName)
	case "help", "menu":
		return HelpMenu(h.hotelName)
	case "status":
		state, _, err := h.sessions.Load(ctx, userID)
		if err != nil {
			h.logger.Error("whatsapp: failed to load session", "error", err, "user", userID)
			return processingErrorReply
		}
		return StatusSummary(state)
	}

	state, _, err := h.sessions.Load(ctx, userID)
	if err != nil {
		h.logger.Error("whatsapp: failed to load session", "error", err, "user", userID)
		return processingErrorReply
	}

	// The sender's number doubles as the default contact number.
	if state.GuestPhone == "" {
		state.GuestPhone = phone
		state.Recompute()
	}

	wasConfirmed := state.BookingStatus == booking.StatusConfirmed
	state, reply := h.controller.Take(ctx, state, body)
	if state.BookingStatus == booking.StatusConfirmed && !wasConfirmed {
		reply = DecorateConfirmation(state, h.hotelName)
	}

	if err := h.sessions.Save(ctx, userID, state); err != nil {
		h.logger.Error("whatsapp: failed to save session", "error", err, "user", userID)
		return processingErrorReply
	}

	h.persistTranscript(ctx, userID, body, reply, state, wasConfirmed)
	return reply
}

// persistTranscript is best-effort: database trouble never blocks a reply.
func (h *Handler) persistTranscript(ctx context.Context, userID, userText, reply string, state booking.State, wasConfirmed bool) {
	if h.transcripts == nil {
		return
	}
	if err := h.transcripts.AppendMessage(ctx, userID, booking.RoleUser, userText); err != nil {
		h.logger.Warn("whatsapp: failed to persist user message", "error", err)
		return
	}
	if err := h.transcripts.AppendMessage(ctx, userID, booking.RoleAssistant, reply); err != nil {
		h.logger.Warn("whatsapp: failed to persist assistant message", "error", err)
	}
	if state.BookingStatus == booking.StatusConfirmed && !wasConfirmed {
		if err := h.transcripts.MarkConfirmed(ctx, userID, state.ConfirmationNumber); err != nil {
			h.logger.Warn("whatsapp: failed to mark confirmation", "error", err)
		}
	}
}

// StatusWebhook handles POST /webhook/whatsapp/status delivery callbacks.
func (h *Handler) StatusWebhook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	h.logger.Info("whatsapp: message status update",
		"message_sid", r.FormValue("MessageSid"),
		"status", r.FormValue("MessageStatus"),
	)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ClearSession handles DELETE /admin/sessions/{phone}, dropping a guest's
// live conversation state.
func (h *Handler) ClearSession(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone")
	if phone == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if err := h.sessions.Clear(r.Context(), conversationID(phone)); err != nil {
		h.logger.Error("whatsapp: admin session clear failed", "error", err, "phone", phone)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared", "phone": phone})
}

func conversationID(phone string) string {
	return "whatsapp:" + phone
}

func buildAbsoluteURL(r *http.Request) string {
	scheme := "https"
	if r.TLS == nil && r.Header.Get("X-Forwarded-Proto") != "https" {
		scheme = "http"
	}
	return fmt.Sprintf("%s://%s%s", scheme, r.Host, r.URL.RequestURI())
}

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

func writeTwiML(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(xml.Header))
	_ = xml.NewEncoder(w).Encode(twimlResponse{Message: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
