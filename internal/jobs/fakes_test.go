package jobs

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/job-qualifier/internal/ai"
)

type invocation struct {
	query     string
	tool      string
	model     string
	maxTokens int
}

type fakeInvoker struct {
	mu     sync.Mutex
	result ai.ToolResult
	calls  []invocation
}

func (f *fakeInvoker) InvokeTool(_ context.Context, query string, tool ai.ToolSchema, model string, maxTokens int) ai.ToolResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, invocation{query: query, tool: tool.Name, model: model, maxTokens: maxTokens})
	return f.result
}

func succeed(result map[string]any) *fakeInvoker {
	return &fakeInvoker{result: ai.ToolResult{Result: result}}
}

func fail(msg string) *fakeInvoker {
	return &fakeInvoker{result: ai.ToolResult{Error: msg}}
}

type fakeGenerator struct {
	text      string
	err       error
	query     string
	model     string
	maxTokens int
}

func (f *fakeGenerator) Generate(_ context.Context, query, model string, maxTokens int) (string, error) {
	f.query, f.model, f.maxTokens = query, model, maxTokens
	return f.text, f.err
}

var testModels = ai.Models{ai.TierReasoning: "reasoning-model", ai.TierFast: "fast-model"}

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}
