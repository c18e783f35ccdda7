package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/job-qualifier/internal/logger"
	"github.com/spigell/job-qualifier/internal/utils"
)

const (
	// ErrNoToolOutput is the ToolResult error when the response carried no usable tool call.
	ErrNoToolOutput = "no tool output found"

	defaultMaxLogLength = 200
)

var errNoTextOutput = errors.New("no text output found")

// ToolResult holds either the structured tool payload or an error message, never both.
type ToolResult struct {
	Result map[string]any
	Error  string
}

// Failed reports whether the invocation produced no usable result.
func (r ToolResult) Failed() bool { return r.Error != "" || len(r.Result) == 0 }

func toolFailure(msg string) ToolResult {
	if strings.TrimSpace(msg) == "" {
		msg = "unknown tool invocation error"
	}
	return ToolResult{Error: msg}
}

// Client is the single point of contact with the LLM. It is safe for
// concurrent use; it holds no per-call state.
type Client struct {
	transport Transport
	logger    *zap.Logger
	maxLogLen int
}

func NewClient(transport Transport, log *zap.Logger, maxLogLength int) *Client {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	provider := ""
	if transport != nil {
		provider = transport.Provider()
	}

	return &Client{
		transport: transport,
		logger:    logger.WithCommonFields(log, provider, ""),
		maxLogLen: maxLogLength,
	}
}

// InvokeTool sends query constrained to tool and returns the tool's structured
// payload. Failures of any kind are reported through ToolResult.Error.
func (c *Client) InvokeTool(ctx context.Context, query string, tool ToolSchema, model string, maxTokens int) ToolResult {
	resp, err := c.send(ctx, Request{Model: model, Query: query, Tool: &tool, MaxTokens: maxTokens})
	if err != nil {
		return toolFailure(err.Error())
	}

	if resp.Truncated {
		c.logger.Warn("tool usage went over max tokens",
			zap.String(logger.FieldTool, tool.Name),
			zap.Int("max_tokens", maxTokens),
		)
	}

	var payload map[string]any
	for _, item := range resp.Items {
		if item.Kind == KindToolUse && item.ToolName == tool.Name {
			payload = item.Input
			break
		}
	}

	if len(payload) == 0 {
		return toolFailure(ErrNoToolOutput)
	}

	if deviations := tool.Deviations(payload); len(deviations) > 0 {
		c.logger.Debug("tool output deviates from schema",
			zap.String(logger.FieldTool, tool.Name),
			zap.Strings("deviations", deviations),
		)
	}

	return ToolResult{Result: payload}
}

// Generate sends a plain-text query and returns the first text item of the reply.
func (c *Client) Generate(ctx context.Context, query, model string, maxTokens int) (string, error) {
	resp, err := c.send(ctx, Request{Model: model, Query: query, MaxTokens: maxTokens})
	if err != nil {
		return "", err
	}

	if resp.Truncated {
		c.logger.Warn("text generation went over max tokens", zap.Int("max_tokens", maxTokens))
	}

	for _, item := range resp.Items {
		if item.Kind == KindText {
			return item.Text, nil
		}
	}

	return "", errNoTextOutput
}

func (c *Client) send(ctx context.Context, req Request) (*Response, error) {
	if c == nil || c.transport == nil {
		return nil, errors.New("llm client is not initialized")
	}
	if strings.TrimSpace(req.Model) == "" {
		return nil, errors.New("model is required")
	}
	if req.MaxTokens <= 0 {
		return nil, fmt.Errorf("max tokens must be positive, got %d", req.MaxTokens)
	}

	toolName := ""
	if req.Tool != nil {
		toolName = req.Tool.Name
	}
	reqLogger := logger.WithFields(c.logger, logger.RequestFields(req.Model, toolName)...)

	reqLogger.Debug("llm request",
		zap.Int("max_tokens", req.MaxTokens),
		zap.Int("query_length", utf8.RuneCountInString(req.Query)),
		zap.String("query_preview", utils.TruncateForLog(utils.CollapseWhitespace(req.Query), c.maxLogLen)),
	)

	resp, err := c.transport.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, errors.New("llm provider returned no response")
	}

	reqLogger.Debug("llm response",
		zap.String("stop_reason", resp.StopReason),
		zap.Int("content_items", len(resp.Items)),
	)

	return resp, nil
}
