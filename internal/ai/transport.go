package ai

import "context"

// Temperature is the sampling temperature of every request. Extraction and
// rewriting must be deterministic.
const Temperature = 0

// ContentKind tags a response content item.
type ContentKind string

const (
	KindToolUse ContentKind = "tool_use"
	KindText    ContentKind = "text"
)

// ContentItem is one entry of a model response.
type ContentItem struct {
	Kind     ContentKind
	ToolName string
	Input    map[string]any
	Text     string
}

// Request is a single-message model call. Tool is nil for plain-text calls.
type Request struct {
	Model     string
	Query     string
	Tool      *ToolSchema
	MaxTokens int
}

// Response is the provider-neutral form of a model reply.
type Response struct {
	Items      []ContentItem
	StopReason string
	// Truncated is set when generation stopped because the token budget ran out.
	Truncated bool
}

// Transport sends a request to a concrete LLM provider. Authentication, HTTP
// retries and rate limiting belong to the implementation.
type Transport interface {
	Send(ctx context.Context, req Request) (*Response, error)
	Provider() string
}
