package jobs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestClassifyRules(t *testing.T) {
	cases := []struct {
		name        string
		result      map[string]any
		wantVerdict bool
		wantScore   int
		wantRole    string
		wantUni     bool
	}{
		{
			name:        "accepted at threshold",
			result:      map[string]any{"job_completeness_score": 80.0, "role": "Backend Developer", "university_or_public_institution_job": false},
			wantVerdict: true, wantScore: 80, wantRole: "Backend Developer",
		},
		{
			name:      "score below threshold",
			result:    map[string]any{"job_completeness_score": 79.0, "role": "Backend Developer", "university_or_public_institution_job": false},
			wantScore: 79, wantRole: "Backend Developer",
		},
		{
			name:     "missing score defaults to zero",
			result:   map[string]any{"role": "DevOps Engineer", "university_or_public_institution_job": false},
			wantRole: "DevOps Engineer",
		},
		{
			name:      "role outside enum is coerced",
			result:    map[string]any{"job_completeness_score": 100.0, "role": "Chief Vibes Officer", "university_or_public_institution_job": false},
			wantScore: 100, wantRole: SentinelRole,
		},
		{
			name:      "sentinel role reported by model",
			result:    map[string]any{"job_completeness_score": 95.0, "role": SentinelRole, "university_or_public_institution_job": false},
			wantScore: 95, wantRole: SentinelRole,
		},
		{
			name:      "missing role",
			result:    map[string]any{"job_completeness_score": 95.0, "university_or_public_institution_job": false},
			wantScore: 95, wantRole: SentinelRole,
		},
		{
			name:      "university flag absent defaults to exclude",
			result:    map[string]any{"job_completeness_score": 100.0, "role": "Data Engineer"},
			wantScore: 100, wantRole: "Data Engineer", wantUni: true,
		},
		{
			name:      "university flag null defaults to exclude",
			result:    map[string]any{"job_completeness_score": 100.0, "role": "Data Engineer", "university_or_public_institution_job": nil},
			wantScore: 100, wantRole: "Data Engineer", wantUni: true,
		},
		{
			name:      "university flag set",
			result:    map[string]any{"job_completeness_score": 100.0, "role": "Data Engineer", "university_or_public_institution_job": true},
			wantScore: 100, wantRole: "Data Engineer", wantUni: true,
		},
		{
			name:        "loosely typed payload",
			result:      map[string]any{"job_completeness_score": "92", "role": "QA Engineer", "university_or_public_institution_job": "false"},
			wantVerdict: true, wantScore: 92, wantRole: "QA Engineer",
		},
		{
			name:      "malformed fields fall back to defaults",
			result:    map[string]any{"job_completeness_score": map[string]any{"value": 90}, "role": []any{"QA Engineer"}, "university_or_public_institution_job": "maybe"},
			wantScore: 0, wantRole: SentinelRole, wantUni: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewClassifier(succeed(tc.result), testModels, zap.NewNop())

			got := c.Classify(context.Background(), "Senior Go developer wanted", "uid-1")

			assert.Equal(t, tc.wantVerdict, got.Verdict)
			assert.Equal(t, tc.wantScore, got.CompletenessScore)
			assert.Equal(t, tc.wantRole, got.Role)
			assert.Equal(t, tc.wantUni, got.UniversityOrPublic)
			assert.Equal(t, tc.result, got.Fields)
		})
	}
}

func TestClassifySendsClassificationRequest(t *testing.T) {
	invoker := succeed(map[string]any{"job_completeness_score": 90.0})
	c := NewClassifier(invoker, testModels, zap.NewNop())

	c.Classify(context.Background(), "Remote Job: True\nWe build payment rails in Go.", "uid-2")

	require.Len(t, invoker.calls, 1)
	call := invoker.calls[0]
	assert.Equal(t, "classify_job", call.tool)
	assert.Equal(t, "reasoning-model", call.model)
	assert.Equal(t, 400, call.maxTokens)
	assert.Contains(t, call.query, "We build payment rails in Go.")
	assert.Contains(t, call.query, "Use the `classify_job` tool")
	assert.NotContains(t, call.query, descriptionPlaceholder)
}

func TestClassifyInvocationErrorRejects(t *testing.T) {
	log, logs := observedLogger()
	c := NewClassifier(fail("anthropic messages: 500 internal error"), testModels, log)

	got := c.Classify(context.Background(), "desc", "uid-3")

	assert.False(t, got.Verdict)
	assert.NotNil(t, got.Fields)
	assert.Empty(t, got.Fields)

	entries := logs.FilterMessage("error checking job quality").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "uid-3", ctx["job_uid"])
	assert.Equal(t, "anthropic messages: 500 internal error", ctx["error"])
}

func TestClassifyLogsVerdict(t *testing.T) {
	log, logs := observedLogger()
	accepted := NewClassifier(succeed(map[string]any{
		"job_completeness_score": 85.0, "role": "Mobile Developer", "university_or_public_institution_job": false,
	}), testModels, log)
	accepted.Classify(context.Background(), "desc", "good-uid")

	entries := logs.FilterMessage("job has been classified as a high-quality job").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "good-uid", entries[0].ContextMap()["job_uid"])
	assert.EqualValues(t, 85, entries[0].ContextMap()["score"])

	rejected := NewClassifier(succeed(map[string]any{
		"job_completeness_score": 40.0, "role": "Astronaut",
	}), testModels, log)
	rejected.Classify(context.Background(), "desc", "bad-uid")

	entries = logs.FilterMessage("job has been classified as a low-quality job").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "bad-uid", ctx["job_uid"])
	assert.EqualValues(t, 40, ctx["score"])
	assert.Equal(t, []any{"completeness_score", "role", "university_or_public_institution"}, ctx["failed_rules"])
	assert.NotNil(t, ctx["result"])
}

func TestClassifyMinimumScoreOption(t *testing.T) {
	c := NewClassifier(succeed(map[string]any{
		"job_completeness_score": 60.0, "role": "Game Developer", "university_or_public_institution_job": false,
	}), testModels, zap.NewNop(), WithMinimumScore(50))

	assert.True(t, c.Classify(context.Background(), "desc", "uid").Verdict)
}

func TestAcceptableRolesComeFromToolEnum(t *testing.T) {
	c := NewClassifier(succeed(nil), testModels, zap.NewNop())
	for _, role := range ClassifyJobTool.Enum("role") {
		assert.Contains(t, c.roles, role)
	}
	assert.Contains(t, ClassifyJobTool.Enum("role"), SentinelRole)
}
