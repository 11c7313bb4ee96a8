// Package llm abstracts the chat-completion providers used for content
// generation. Implementations live in the subpackages openrouter and ollama.
package llm

import (
	"context"
	"encoding/json"
)

// ResponseSchema constrains the provider output to a named JSON schema.
type ResponseSchema struct {
	Name   string
	Schema json.RawMessage
}

// Request is a single completion request.
type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
	TopP        float64
	// Schema, when set, asks the provider for schema-constrained JSON output.
	Schema *ResponseSchema
}

// Result is the provider's text payload plus call metadata.
type Result struct {
	Text string
	Meta map[string]any
}

// Provider sends one completion request and returns the text result. The
// model is fixed per provider instance via its configuration.
type Provider interface {
	Complete(ctx context.Context, req Request) (Result, error)
}
