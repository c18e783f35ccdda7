package ai

import (
	"fmt"
	"strings"
)

// ToolPrompt is a query template bound to the tool it steers the model towards.
// Construction guarantees the template tells the model to use exactly that tool.
type ToolPrompt struct {
	tool        ToolSchema
	template    string
	placeholder string
}

// ToolReference is the phrase a tool query must contain, e.g. "use the `extract_title` tool".
func ToolReference(tool ToolSchema) string {
	return fmt.Sprintf("use the `%s` tool", tool.Name)
}

// NewToolPrompt checks that template references the tool and contains placeholder.
func NewToolPrompt(tool ToolSchema, template, placeholder string) (*ToolPrompt, error) {
	if tool.Name == "" {
		return nil, fmt.Errorf("tool prompt: tool is not initialized")
	}
	if strings.TrimSpace(template) == "" {
		return nil, fmt.Errorf("tool prompt %s: template is empty", tool.Name)
	}
	if placeholder == "" || !strings.Contains(template, placeholder) {
		return nil, fmt.Errorf("tool prompt %s: template does not contain placeholder %q", tool.Name, placeholder)
	}
	if !strings.Contains(strings.ToLower(template), strings.ToLower(ToolReference(tool))) {
		return nil, fmt.Errorf("tool prompt %s: template must contain %q", tool.Name, ToolReference(tool))
	}

	return &ToolPrompt{tool: tool, template: template, placeholder: placeholder}, nil
}

// MustToolPrompt is like NewToolPrompt but panics on a mismatched template.
func MustToolPrompt(tool ToolSchema, template, placeholder string) *ToolPrompt {
	p, err := NewToolPrompt(tool, template, placeholder)
	if err != nil {
		panic(err)
	}
	return p
}

// Tool returns the schema the prompt is bound to.
func (p *ToolPrompt) Tool() ToolSchema { return p.tool }

// Render substitutes value for the placeholder.
func (p *ToolPrompt) Render(value string) string {
	return strings.ReplaceAll(p.template, p.placeholder, value)
}
