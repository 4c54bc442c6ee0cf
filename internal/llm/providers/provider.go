package providers

import "context"

// Message is one chat turn sent to a provider.
type Message struct {
	Role    string
	Content string
}

// Provider is the minimal chat-completion surface the workflow needs.
type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
	Name() string
}
