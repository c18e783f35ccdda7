package jobs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/job-qualifier/internal/ai"
)

func TestExtractSkillsFullResult(t *testing.T) {
	invoker := succeed(map[string]any{
		"core_technical_skills":       []any{"Go", "Kubernetes"},
		"supporting_technical_skills": []any{"PostgreSQL"},
		"other_technical_skills":      []any{"Terraform"},
	})
	e := NewSkillExtractor(invoker, testModels, zap.NewNop())

	skills := e.Extract(context.Background(), "Go developer with Kubernetes")

	assert.Equal(t, []string{"Go", "Kubernetes"}, skills.Core)
	assert.Equal(t, []string{"PostgreSQL"}, skills.Supporting)
	assert.Equal(t, []string{"Terraform"}, skills.Other)

	require.Len(t, invoker.calls, 1)
	assert.Equal(t, "extract_skills_from_job", invoker.calls[0].tool)
	assert.Equal(t, "fast-model", invoker.calls[0].model)
	assert.Equal(t, 400, invoker.calls[0].maxTokens)
	assert.Contains(t, invoker.calls[0].query, "Use the `extract_skills_from_job` tool")
}

func TestExtractSkillsBackfillsMissingTiers(t *testing.T) {
	e := NewSkillExtractor(succeed(map[string]any{
		"supporting_technical_skills": []any{"Redis"},
		"other_technical_skills":      nil,
	}), testModels, zap.NewNop())

	skills := e.Extract(context.Background(), "desc")

	require.NotNil(t, skills.Core)
	require.NotNil(t, skills.Other)
	assert.Empty(t, skills.Core)
	assert.Equal(t, []string{"Redis"}, skills.Supporting)
	assert.Empty(t, skills.Other)
}

func TestExtractSkillsMissingAllTiers(t *testing.T) {
	e := NewSkillExtractor(succeed(map[string]any{"unrelated": true}), testModels, zap.NewNop())

	skills := e.Extract(context.Background(), "desc")

	assert.NotNil(t, skills.Core)
	assert.NotNil(t, skills.Supporting)
	assert.NotNil(t, skills.Other)
	assert.True(t, skills.IsEmpty())
}

func TestExtractSkillsInvocationError(t *testing.T) {
	log, logs := observedLogger()
	e := NewSkillExtractor(fail("no tool output found"), testModels, log)

	skills := e.Extract(context.Background(), "desc")

	assert.True(t, skills.IsEmpty())
	assert.NotNil(t, skills.Core)
	entries := logs.FilterMessage("error extracting skills from job description").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "no tool output found", entries[0].ContextMap()["error"])
}

func TestExtractSkillsNilResult(t *testing.T) {
	log, logs := observedLogger()
	e := NewSkillExtractor(&fakeInvoker{result: ai.ToolResult{}}, testModels, log)

	skills := e.Extract(context.Background(), "desc")

	assert.True(t, skills.IsEmpty())
	assert.Equal(t, 1, logs.FilterMessage("error extracting skills from job description").Len())
}

func TestExtractSkillsSingleValueBecomesList(t *testing.T) {
	e := NewSkillExtractor(succeed(map[string]any{"core_technical_skills": "Rust"}), testModels, zap.NewNop())

	assert.Equal(t, []string{"Rust"}, e.Extract(context.Background(), "desc").Core)
}

func TestExtractSkillsDropsBlankEntries(t *testing.T) {
	e := NewSkillExtractor(succeed(map[string]any{
		"core_technical_skills":       []any{"Go", nil, "  ", " Kafka "},
		"supporting_technical_skills": []any{nil},
	}), testModels, zap.NewNop())

	skills := e.Extract(context.Background(), "desc")

	assert.Equal(t, []string{"Go", "Kafka"}, skills.Core)
	require.NotNil(t, skills.Supporting)
	assert.Empty(t, skills.Supporting)
}
