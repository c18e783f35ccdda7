package jobs

import (
	"context"

	"go.uber.org/zap"

	"github.com/spigell/job-qualifier/internal/ai"
	"github.com/spigell/job-qualifier/internal/logger"
)

// DefaultMinimumScore is the lowest completeness score a posting may have.
const DefaultMinimumScore = 80

type toolInvoker interface {
	InvokeTool(ctx context.Context, query string, tool ai.ToolSchema, model string, maxTokens int) ai.ToolResult
}

// Classification is the outcome of a quality check on one posting.
type Classification struct {
	Verdict            bool   `json:"verdict"`
	CompletenessScore  int    `json:"completeness_score"`
	Role               string `json:"role"`
	UniversityOrPublic bool   `json:"university_or_public_institution"`
	// Fields is the raw tool payload, kept for inspection even when the
	// posting is rejected. Empty when the model call failed.
	Fields map[string]any `json:"fields"`
}

// Classifier decides whether a posting is good enough to publish.
type Classifier struct {
	invoker  toolInvoker
	model    string
	minScore int
	roles    map[string]struct{}
	logger   *zap.Logger
}

type ClassifierOption func(*Classifier)

// WithMinimumScore overrides DefaultMinimumScore.
func WithMinimumScore(score int) ClassifierOption {
	return func(c *Classifier) {
		c.minScore = score
	}
}

func NewClassifier(invoker toolInvoker, models ai.Models, log *zap.Logger, opts ...ClassifierOption) *Classifier {
	model := models.Get(ai.TierReasoning)

	roles := make(map[string]struct{})
	for _, role := range ClassifyJobTool.Enum(fieldRole) {
		roles[role] = struct{}{}
	}

	c := &Classifier{
		invoker:  invoker,
		model:    model,
		minScore: DefaultMinimumScore,
		roles:    roles,
		logger:   logger.WithFields(log, logger.RequestFields(model, ClassifyJobTool.Name)...),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Classify scores description and applies the quality rules. It never fails:
// a model error yields a rejected Classification with empty Fields.
func (c *Classifier) Classify(ctx context.Context, description, uid string) Classification {
	log := c.logger.With(zap.String(logger.FieldJobUID, uid))

	res := c.invoker.InvokeTool(ctx, classifyPrompt.Render(description), ClassifyJobTool, c.model, classifyMaxTokens)
	if res.Failed() {
		log.Error("error checking job quality", zap.String("error", res.Error))
		return Classification{
			Role:               SentinelRole,
			UniversityOrPublic: true,
			Fields:             map[string]any{},
		}
	}

	out := Classification{Verdict: true, Fields: res.Result}
	var failed []string

	out.CompletenessScore, _ = decodeField[int](res.Result, fieldCompletenessScore)
	if out.CompletenessScore < c.minScore {
		out.Verdict = false
		failed = append(failed, "completeness_score")
	}

	out.Role = c.normalizeRole(res.Result)
	if out.Role == SentinelRole {
		out.Verdict = false
		failed = append(failed, "role")
	}

	university, ok := decodeField[bool](res.Result, fieldUniversityOrPublic)
	out.UniversityOrPublic = university || !ok
	if out.UniversityOrPublic {
		out.Verdict = false
		failed = append(failed, "university_or_public_institution")
	}

	if !out.Verdict {
		log.Error("job has been classified as a low-quality job",
			zap.Int("score", out.CompletenessScore),
			zap.Strings("failed_rules", failed),
			zap.Any("result", res.Result),
		)
		return out
	}

	log.Info("job has been classified as a high-quality job", zap.Int("score", out.CompletenessScore))
	return out
}

func (c *Classifier) normalizeRole(fields map[string]any) string {
	role, ok := decodeField[string](fields, fieldRole)
	if !ok {
		return SentinelRole
	}
	if _, known := c.roles[role]; !known {
		return SentinelRole
	}
	return role
}
