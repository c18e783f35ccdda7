package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/spigell/job-qualifier/internal/ai"
)

const (
	providerName = "anthropic"

	defaultMaxRetries = 2
)

type messageCreator interface {
	New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// Transport sends requests through the Anthropic Messages API.
type Transport struct {
	messages messageCreator
}

// NewTransport creates a Transport authenticated with apiKey. The SDK owns
// HTTP retries; maxRetries <= 0 keeps its default.
func NewTransport(apiKey string, maxRetries int) (*Transport, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("anthropic api key is required")
	}

	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(maxRetries),
	)

	return &Transport{messages: &client.Messages}, nil
}

func (t *Transport) Provider() string { return providerName }

func (t *Transport) Send(ctx context.Context, req ai.Request) (*ai.Response, error) {
	if t == nil || t.messages == nil {
		return nil, errors.New("anthropic transport is not initialized")
	}

	msg, err := t.messages.New(ctx, buildParams(req))
	if err != nil {
		return nil, fmt.Errorf("anthropic messages: %w", err)
	}

	return toResponse(msg)
}

func buildParams(req ai.Request) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Model),
		MaxTokens:   int64(req.MaxTokens),
		Temperature: anthropic.Float(ai.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Query)),
		},
	}

	if req.Tool == nil {
		return params
	}

	tool := anthropic.ToolParam{
		Name: req.Tool.Name,
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: req.Tool.Properties(),
			Required:   req.Tool.Required(),
		},
	}
	if req.Tool.Description != "" {
		tool.Description = anthropic.String(req.Tool.Description)
	}

	params.Tools = []anthropic.ToolUnionParam{{OfTool: &tool}}
	params.ToolChoice = anthropic.ToolChoiceUnionParam{
		OfTool: &anthropic.ToolChoiceToolParam{Name: req.Tool.Name},
	}

	return params
}

func toResponse(msg *anthropic.Message) (*ai.Response, error) {
	if msg == nil {
		return nil, errors.New("anthropic returned an empty message")
	}

	resp := &ai.Response{
		StopReason: string(msg.StopReason),
		Truncated:  msg.StopReason == anthropic.StopReasonMaxTokens,
		Items:      make([]ai.ContentItem, 0, len(msg.Content)),
	}

	for _, block := range msg.Content {
		switch block.Type {
		case "tool_use":
			input, err := decodeInput(block.Input)
			if err != nil {
				return nil, fmt.Errorf("decode %s tool input: %w", block.Name, err)
			}
			resp.Items = append(resp.Items, ai.ContentItem{
				Kind:     ai.KindToolUse,
				ToolName: block.Name,
				Input:    input,
			})
		case "text":
			resp.Items = append(resp.Items, ai.ContentItem{Kind: ai.KindText, Text: block.Text})
		}
	}

	return resp, nil
}

func decodeInput(raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var input map[string]any
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, err
	}
	return input, nil
}
