package jobs

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/job-qualifier/internal/ai"
	"github.com/spigell/job-qualifier/internal/logger"
)

// SkillSet holds the technical skills of a posting in three tiers. The slices
// are never nil.
type SkillSet struct {
	Core       []string `json:"core_technical_skills"`
	Supporting []string `json:"supporting_technical_skills"`
	Other      []string `json:"other_technical_skills"`
}

func emptySkillSet() SkillSet {
	return SkillSet{Core: []string{}, Supporting: []string{}, Other: []string{}}
}

// IsEmpty reports whether no tier holds a skill.
func (s SkillSet) IsEmpty() bool {
	return len(s.Core) == 0 && len(s.Supporting) == 0 && len(s.Other) == 0
}

type SkillExtractor struct {
	invoker toolInvoker
	model   string
	logger  *zap.Logger
}

func NewSkillExtractor(invoker toolInvoker, models ai.Models, log *zap.Logger) *SkillExtractor {
	model := models.Get(ai.TierFast)
	return &SkillExtractor{
		invoker: invoker,
		model:   model,
		logger:  logger.WithFields(log, logger.RequestFields(model, ExtractSkillsTool.Name)...),
	}
}

// Extract returns the skills of description. Tiers missing from the model
// output come back empty; a failed call yields an entirely empty SkillSet.
func (e *SkillExtractor) Extract(ctx context.Context, description string) SkillSet {
	res := e.invoker.InvokeTool(ctx, skillsPrompt.Render(description), ExtractSkillsTool, e.model, skillsMaxTokens)
	if res.Error != "" {
		e.logger.Error("error extracting skills from job description", zap.String("error", res.Error))
		return emptySkillSet()
	}
	if res.Result == nil {
		e.logger.Error("error extracting skills from job description", zap.String("error", "no results"))
		return emptySkillSet()
	}

	skills := emptySkillSet()
	for key, tier := range map[string]*[]string{
		fieldCoreSkills:       &skills.Core,
		fieldSupportingSkills: &skills.Supporting,
		fieldOtherSkills:      &skills.Other,
	} {
		if values, ok := decodeField[[]string](res.Result, key); ok {
			*tier = compactSkills(values)
		}
	}

	return skills
}

// compactSkills trims entries and drops the blank ones, which is what null
// list elements decode to.
func compactSkills(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
