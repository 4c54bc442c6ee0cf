package providers

import (
	"context"
	"fmt"
	"strings"
)

// LocalProvider is a deterministic offline stand-in used when no API key is
// configured. It echoes a condensed form of the last user turn so the
// pipeline stays exercisable without network access.
type LocalProvider struct{}

func NewLocalProvider() *LocalProvider {
	return &LocalProvider{}
}

func (l *LocalProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("no messages provided")
	}
	last := strings.TrimSpace(messages[len(messages)-1].Content)
	fields := strings.Fields(last)
	if len(fields) > 60 {
		last = strings.Join(fields[:60], " ")
	}
	return "[local] " + last, nil
}

func (l *LocalProvider) Name() string {
	return "local"
}
