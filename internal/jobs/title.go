package jobs

import (
	"context"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/job-qualifier/internal/ai"
	"github.com/spigell/job-qualifier/internal/logger"
)

type TitleExtractor struct {
	invoker    toolInvoker
	model      string
	categories []string
	logger     *zap.Logger
}

func NewTitleExtractor(invoker toolInvoker, models ai.Models, log *zap.Logger) *TitleExtractor {
	model := models.Get(ai.TierReasoning)
	return &TitleExtractor{
		invoker:    invoker,
		model:      model,
		categories: ExtractTitleTool.Enum(fieldTitleCategory),
		logger:     logger.WithFields(log, logger.RequestFields(model, ExtractTitleTool.Name)...),
	}
}

// Extract returns the title category of the contact described by contactInfo.
// The boolean is false when the model failed or reported no category.
func (e *TitleExtractor) Extract(ctx context.Context, contactInfo string) (string, bool) {
	res := e.invoker.InvokeTool(ctx, titlePrompt.Render(contactInfo), ExtractTitleTool, e.model, titleMaxTokens)
	if res.Failed() {
		e.logger.Error("error extracting title category", zap.String("error", res.Error))
		return "", false
	}

	// Only a string is a category; numbers and booleans are not coerced.
	title, ok := res.Result[fieldTitleCategory].(string)
	title = strings.TrimSpace(title)
	if !ok || title == "" {
		e.logger.Error("error extracting title category", zap.String("error", "no title category found"))
		return "", false
	}

	if !slices.Contains(e.categories, title) {
		e.logger.Warn("title category is not one of the known categories", zap.String("title_category", title))
	}

	return title, true
}
