// Package voice exposes the conversation engine over a WebSocket relay for
// voice gateways. The gateway transcribes caller speech, sends each utterance
// as a text frame, and speaks the reply it gets back. One connection maps to
// one call, and turns within a call are processed strictly in order.
package voice

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/grandpine/hotel-concierge/internal/booking"
	"github.com/grandpine/hotel-concierge/internal/session"
	"github.com/grandpine/hotel-concierge/internal/transcript"
	"github.com/grandpine/hotel-concierge/pkg/logging"
)

// InboundFrame is what the voice gateway sends.
type InboundFrame struct {
	Type   string `json:"type"` // "utterance", "ping"
	CallID string `json:"call_id"`
	Caller string `json:"caller,omitempty"` // E.164 when caller ID is known
	Text   string `json:"text"`
}

// OutboundFrame is what we send to the voice gateway.
type OutboundFrame struct {
	Type   string `json:"type"` // "session", "reply", "pong", "error"
	CallID string `json:"call_id,omitempty"`
	Text   string `json:"text,omitempty"`
}

// Handler manages voice relay connections.
type Handler struct {
	controller  *booking.Controller
	sessions    *session.Store
	transcripts *transcript.Store
	logger      *logging.Logger

	mu    sync.Mutex
	calls map[string]*sync.Mutex // callID -> turn serialization lock
}

// NewHandler creates a voice relay handler.
func NewHandler(controller *booking.Controller, sessions *session.Store, transcripts *transcript.Store, logger *logging.Logger) *Handler {
	if controller == nil {
		panic("voice: controller cannot be nil")
	}
	if sessions == nil {
		panic("voice: session store cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		controller:  controller,
		sessions:    sessions,
		transcripts: transcripts,
		logger:      logger,
		calls:       make(map[string]*sync.Mutex),
	}
}

// HandleWebSocket upgrades to WebSocket and relays call utterances.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	callID := r.URL.Query().Get("call")
	if callID == "" {
		callID = generateCallID()
	}

	_ = websocket.JSON.Send(conn, OutboundFrame{Type: "session", CallID: callID})
	h.logger.Info("voice: connection opened", "call_id", callID)

	for {
		var frame InboundFrame
		if err := websocket.JSON.Receive(conn, &frame); err != nil {
			h.logger.Debug("voice: connection closed", "call_id", callID, "error", err)
			return
		}

		if frame.Type == "ping" {
			_ = websocket.JSON.Send(conn, OutboundFrame{Type: "pong"})
			continue
		}
		if frame.Type != "utterance" || strings.TrimSpace(frame.Text) == "" {
			continue
		}
		if frame.CallID != "" {
			callID = frame.CallID
		}

		reply := h.processUtterance(r.Context(), callID, frame.Caller, frame.Text)
		_ = websocket.JSON.Send(conn, OutboundFrame{Type: "reply", CallID: callID, Text: reply})
	}
}

// processUtterance runs one conversation turn under the per-call lock, so a
// gateway that pipelines utterances still gets replies in order.
func (h *Handler) processUtterance(ctx context.Context, callID, caller, text string) string {
	lock := h.callLock(callID)
	lock.Lock()
	defer lock.Unlock()

	userID := conversationID(callID)
	state, _, err := h.sessions.Load(ctx, userID)
	if err != nil {
		h.logger.Error("voice: failed to load session", "error", err, "call_id", callID)
		return "I'm sorry, something went wrong. Could you say that again?"
	}

	if state.GuestPhone == "" && caller != "" {
		state.GuestPhone = caller
		state.Recompute()
	}

	state, reply := h.controller.Take(ctx, state, text)

	if err := h.sessions.Save(ctx, userID, state); err != nil {
		h.logger.Error("voice: failed to save session", "error", err, "call_id", callID)
	}
	if h.transcripts != nil {
		if err := h.transcripts.AppendMessage(ctx, userID, booking.RoleUser, text); err == nil {
			_ = h.transcripts.AppendMessage(ctx, userID, booking.RoleAssistant, reply)
		}
	}
	return reply
}

func (h *Handler) callLock(callID string) *sync.Mutex {
	h.mu.Lock()
	defer h.mu.Unlock()
	lock, ok := h.calls[callID]
	if !ok {
		lock = &sync.Mutex{}
		h.calls[callID] = lock
	}
	return lock
}

func conversationID(callID string) string {
	return "voice:" + callID
}

func generateCallID() string {
	return uuid.NewString()
}
