package llm

import (
	"context"
	"fmt"

	"github.com/grandpine/hotel-concierge/internal/booking"
)

const defaultMaxHistoryMessages = 20

// Responder adapts a completion Client to the conversation engine's
// chat responder interface.
type Responder struct {
	client      Client
	model       string
	maxTokens   int32
	temperature float32
	maxHistory  int
}

type ResponderOption func(*Responder)

func WithMaxTokens(n int32) ResponderOption {
	return func(r *Responder) { r.maxTokens = n }
}

func WithTemperature(t float32) ResponderOption {
	return func(r *Responder) { r.temperature = t }
}

func WithMaxHistory(n int) ResponderOption {
	return func(r *Responder) { r.maxHistory = n }
}

func NewResponder(client Client, model string, opts ...ResponderOption) *Responder {
	if client == nil {
		panic("llm: responder client cannot be nil")
	}
	r := &Responder{
		client:      client,
		model:       model,
		maxTokens:   512,
		temperature: 0.7,
		maxHistory:  defaultMaxHistoryMessages,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Generate produces the assistant's next reply from the system prompt and the
// recent conversation history.
func (r *Responder) Generate(ctx context.Context, systemPrompt string, history []booking.Message) (string, error) {
	if r.maxHistory > 0 && len(history) > r.maxHistory {
		history = history[len(history)-r.maxHistory:]
	}

	messages := make([]ChatMessage, 0, len(history))
	for _, msg := range history {
		role := ChatRoleUser
		if msg.Role == booking.RoleAssistant {
			role = ChatRoleAssistant
		}
		messages = append(messages, ChatMessage{Role: role, Content: msg.Text})
	}

	resp, err := r.client.Complete(ctx, Request{
		Model:       r.model,
		System:      []string{systemPrompt},
		Messages:    messages,
		MaxTokens:   r.maxTokens,
		Temperature: r.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", booking.ErrGeneration, err)
	}
	return resp.Text, nil
}
