package ai

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ToolSchema describes a function-like output shape the model is constrained to
// populate. Build it with NewToolSchema; the zero value is not usable.
type ToolSchema struct {
	Name        string
	Description string
	InputSchema map[string]any

	compiled *gojsonschema.Schema
}

// NewToolSchema validates the tool definition and compiles its input schema.
func NewToolSchema(name, description string, inputSchema map[string]any) (ToolSchema, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return ToolSchema{}, errors.New("tool name is required")
	}
	if len(inputSchema) == 0 {
		return ToolSchema{}, fmt.Errorf("tool %s: input schema is required", name)
	}
	if t, _ := inputSchema["type"].(string); t != "object" {
		return ToolSchema{}, fmt.Errorf("tool %s: input schema must be of type object", name)
	}

	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(inputSchema))
	if err != nil {
		return ToolSchema{}, fmt.Errorf("tool %s: compile input schema: %w", name, err)
	}

	return ToolSchema{
		Name:        name,
		Description: strings.TrimSpace(description),
		InputSchema: inputSchema,
		compiled:    compiled,
	}, nil
}

// MustToolSchema is like NewToolSchema but panics on an invalid definition.
// It is meant for package-level tool declarations.
func MustToolSchema(name, description string, inputSchema map[string]any) ToolSchema {
	tool, err := NewToolSchema(name, description, inputSchema)
	if err != nil {
		panic(err)
	}
	return tool
}

// Properties returns the schema's property definitions.
func (t ToolSchema) Properties() map[string]any {
	props, _ := t.InputSchema["properties"].(map[string]any)
	return props
}

// Required returns the names of required properties.
func (t ToolSchema) Required() []string {
	return stringList(t.InputSchema["required"])
}

// Enum returns a copy of the enumerated values allowed for property, or nil
// when the property has no enum.
func (t ToolSchema) Enum(property string) []string {
	prop, _ := t.Properties()[property].(map[string]any)
	return stringList(prop["enum"])
}

// Deviations reports every way result fails the tool's input schema. Models do
// not always honour the schema, so callers decide what a deviation means.
func (t ToolSchema) Deviations(result map[string]any) []string {
	if t.compiled == nil || result == nil {
		return nil
	}

	res, err := t.compiled.Validate(gojsonschema.NewGoLoader(result))
	if err != nil {
		return []string{err.Error()}
	}

	deviations := make([]string, 0, len(res.Errors()))
	for _, desc := range res.Errors() {
		deviations = append(deviations, desc.String())
	}
	return deviations
}

func stringList(v any) []string {
	switch list := v.(type) {
	case []string:
		out := make([]string, len(list))
		copy(out, list)
		return out
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
