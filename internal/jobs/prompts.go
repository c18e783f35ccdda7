package jobs

import (
	_ "embed"
	"strings"

	"github.com/spigell/job-qualifier/internal/ai"
)

const (
	descriptionPlaceholder = "{{JOB_DESCRIPTION}}"
	contactPlaceholder     = "{{CONTACT_INFO}}"
)

var (
	//go:embed prompts/classify.md
	classifyTemplate string
	//go:embed prompts/skills.md
	skillsTemplate string
	//go:embed prompts/title.md
	titleTemplate string
	//go:embed prompts/sanitise.md
	sanitiseTemplate string
)

var (
	classifyPrompt = ai.MustToolPrompt(ClassifyJobTool, classifyTemplate, descriptionPlaceholder)
	skillsPrompt   = ai.MustToolPrompt(ExtractSkillsTool, skillsTemplate, descriptionPlaceholder)
	titlePrompt    = ai.MustToolPrompt(ExtractTitleTool, titleTemplate, contactPlaceholder)
)

func buildSanitisePrompt(description string) string {
	return strings.ReplaceAll(sanitiseTemplate, descriptionPlaceholder, description)
}
