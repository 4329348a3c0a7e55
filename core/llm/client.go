// Package llm abstracts the hosted completion APIs the generators talk to.
package llm

import "context"

// Client sends one request to a model and returns its output.
type Client interface {
	// Generate runs a single completion. When req.Schema is set the output must conform to it,
	// otherwise *ErrInvalidResponse is returned.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier the client is configured to use.
	ModelID() string
}

type Request struct {
	System    string
	Messages  []Message
	Schema    *Schema // nil for free text
	MaxTokens int
	// Temperature in [0, 1]; 0 leaves the vendor default.
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// UserPrompt is a single-turn request.
func UserPrompt(system, prompt string, maxTokens int) Request {
	return Request{
		System:    system,
		Messages:  []Message{{Role: RoleUser, Content: prompt}},
		MaxTokens: maxTokens,
	}
}

// Schema is a JSON Schema the output must conform to.
type Schema struct {
	Name        string // kebab-case, e.g. "lesson-content"
	Description string
	Definition  map[string]any
}

type Response struct {
	// Content is the raw output: a JSON document when a Schema was requested, plain text otherwise.
	Content    string
	Usage      Usage
	Model      string
	StopReason string // end | max_tokens
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

type contextKey string

const purposeKey contextKey = "llm_purpose"

// WithPurpose labels the calls made with ctx (lesson, quiz, feedback...).
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok {
		return v
	}
	return "unknown"
}
