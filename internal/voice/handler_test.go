package voice

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"github.com/grandpine/hotel-concierge/internal/booking"
	"github.com/grandpine/hotel-concierge/internal/pms"
	"github.com/grandpine/hotel-concierge/internal/session"
	"github.com/grandpine/hotel-concierge/pkg/logging"
)

type scriptedResponder struct {
	reply string
}

func (s *scriptedResponder) Generate(context.Context, string, []booking.Message) (string, error) {
	return s.reply, nil
}

func newTestHandler(t *testing.T) (*Handler, *session.Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	sessions := session.NewStore(client, time.Hour)

	controller := booking.NewController(
		pms.NewMockGateway(nil),
		&scriptedResponder{reply: "Welcome! When would you like to stay?"},
		booking.WithClock(func() time.Time {
			return time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
		}),
	)
	return NewHandler(controller, sessions, nil, logging.New("error")), sessions
}

func TestGenerateCallID(t *testing.T) {
	c1 := generateCallID()
	c2 := generateCallID()
	assert.NotEmpty(t, c1)
	assert.NotEqual(t, c1, c2)
}

func TestProcessUtterancePersistsSession(t *testing.T) {
	h, sessions := newTestHandler(t)
	ctx := context.Background()

	reply := h.processUtterance(ctx, "call-abc", "+15551234567", "I need a room from 2026-12-15 to 2026-12-20 for 2 guests")
	assert.Contains(t, reply, "Standard Room")

	state, found, err := sessions.Load(ctx, "voice:call-abc")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "2026-12-15", state.CheckIn)
	assert.Equal(t, "+15551234567", state.GuestPhone)
}

func TestProcessUtteranceContinuesCall(t *testing.T) {
	h, _ := newTestHandler(t)
	ctx := context.Background()

	h.processUtterance(ctx, "call-abc", "", "I need a room from 2026-12-15 to 2026-12-20 for 2 guests")
	reply := h.processUtterance(ctx, "call-abc", "", "the deluxe suite please")

	// Room selected, guest details still missing, so the responder speaks.
	assert.Equal(t, "Welcome! When would you like to stay?", reply)
}

func TestWebSocketRelay(t *testing.T) {
	h, _ := newTestHandler(t)

	srv := httptest.NewServer(websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, conn.Request())
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "?call=call-xyz"
	conn, err := websocket.Dial(wsURL, "", srv.URL)
	require.NoError(t, err)
	defer conn.Close()

	var hello OutboundFrame
	require.NoError(t, websocket.JSON.Receive(conn, &hello))
	assert.Equal(t, "session", hello.Type)
	assert.Equal(t, "call-xyz", hello.CallID)

	require.NoError(t, websocket.JSON.Send(conn, InboundFrame{Type: "ping"}))
	var pong OutboundFrame
	require.NoError(t, websocket.JSON.Receive(conn, &pong))
	assert.Equal(t, "pong", pong.Type)

	require.NoError(t, websocket.JSON.Send(conn, InboundFrame{
		Type: "utterance",
		Text: "I need a room from 2026-12-15 to 2026-12-20 for 2 guests",
	}))
	var reply OutboundFrame
	require.NoError(t, websocket.JSON.Receive(conn, &reply))
	assert.Equal(t, "reply", reply.Type)
	assert.Contains(t, reply.Text, "Standard Room")
}
