package tutor

import (
	"context"
	"errors"
)

// ErrUnauthorized indicates the user-supplied API key was rejected upstream.
var ErrUnauthorized = errors.New("tutor provider rejected the api key")

// ErrUpstream indicates the provider returned a non-success response.
var ErrUpstream = errors.New("tutor provider returned an error")

// Message is one turn of conversation history forwarded to the provider.
type Message struct {
	Role    string
	Content string
}

// Completion is the provider's reply plus its token accounting.
type Completion struct {
	Reply            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Raw              map[string]interface{}
}

// Client describes a chat completion provider keyed by a per-user credential.
type Client interface {
	Complete(ctx context.Context, apiKey string, history []Message) (Completion, error)
}
