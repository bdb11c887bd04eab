package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grandpine/hotel-concierge/internal/booking"
	"github.com/grandpine/hotel-concierge/pkg/logging"
)

type stubClient struct {
	resp  Response
	err   error
	calls int
	last  Request
}

func (s *stubClient) Complete(_ context.Context, req Request) (Response, error) {
	s.calls++
	s.last = req
	return s.resp, s.err
}

func TestFallbackClientPrimarySucceeds(t *testing.T) {
	primary := &stubClient{resp: Response{Text: "hello"}}
	fallback := &stubClient{resp: Response{Text: "backup"}}
	client := NewFallbackClient(primary, fallback, logging.Default())

	resp, err := client.Complete(context.Background(), Request{Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Text)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, fallback.calls)
}

func TestFallbackClientUsesFallbackOnPrimaryFailure(t *testing.T) {
	primary := &stubClient{err: errors.New("quota exceeded")}
	fallback := &stubClient{resp: Response{Text: "backup"}}
	client := NewFallbackClient(primary, fallback, logging.Default())

	resp, err := client.Complete(context.Background(), Request{Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, "backup", resp.Text)
	assert.Equal(t, 1, fallback.calls)
}

func TestFallbackClientNoFallbackReturnsPrimaryError(t *testing.T) {
	primaryErr := errors.New("quota exceeded")
	primary := &stubClient{err: primaryErr}
	client := NewFallbackClient(primary, nil, logging.Default())

	_, err := client.Complete(context.Background(), Request{Model: "m"})
	assert.ErrorIs(t, err, primaryErr)
}

func TestFallbackClientBothFailReturnsFallbackError(t *testing.T) {
	fallbackErr := errors.New("region down")
	primary := &stubClient{err: errors.New("quota exceeded")}
	fallback := &stubClient{err: fallbackErr}
	client := NewFallbackClient(primary, fallback, logging.Default())

	_, err := client.Complete(context.Background(), Request{Model: "m"})
	assert.ErrorIs(t, err, fallbackErr)
}

func TestResponderMapsHistoryRoles(t *testing.T) {
	stub := &stubClient{resp: Response{Text: "Welcome!"}}
	responder := NewResponder(stub, "test-model")

	history := []booking.Message{
		{Role: booking.RoleUser, Text: "hi"},
		{Role: booking.RoleAssistant, Text: "hello"},
		{Role: booking.RoleUser, Text: "I need a room"},
	}
	text, err := responder.Generate(context.Background(), "you are a receptionist", history)
	require.NoError(t, err)
	assert.Equal(t, "Welcome!", text)

	require.Len(t, stub.last.Messages, 3)
	assert.Equal(t, ChatRoleUser, stub.last.Messages[0].Role)
	assert.Equal(t, ChatRoleAssistant, stub.last.Messages[1].Role)
	assert.Equal(t, "I need a room", stub.last.Messages[2].Content)
	require.Len(t, stub.last.System, 1)
	assert.Equal(t, "you are a receptionist", stub.last.System[0])
}

func TestResponderTrimsHistory(t *testing.T) {
	stub := &stubClient{resp: Response{Text: "ok"}}
	responder := NewResponder(stub, "test-model", WithMaxHistory(2))

	history := []booking.Message{
		{Role: booking.RoleUser, Text: "one"},
		{Role: booking.RoleAssistant, Text: "two"},
		{Role: booking.RoleUser, Text: "three"},
	}
	_, err := responder.Generate(context.Background(), "prompt", history)
	require.NoError(t, err)

	require.Len(t, stub.last.Messages, 2)
	assert.Equal(t, "two", stub.last.Messages[0].Content)
	assert.Equal(t, "three", stub.last.Messages[1].Content)
}

func TestResponderWrapsGenerationFailure(t *testing.T) {
	stub := &stubClient{err: errors.New("timeout")}
	responder := NewResponder(stub, "test-model")

	_, err := responder.Generate(context.Background(), "prompt", nil)
	assert.ErrorIs(t, err, booking.ErrGeneration)
}
