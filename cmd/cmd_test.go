package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/job-qualifier/internal/ai"
	"github.com/spigell/job-qualifier/internal/pipeline"
)

func validConfig() *Config {
	return &Config{
		Provider:     providerAnthropic,
		MinimumScore: 80,
		Concurrency:  4,
		Stages:       []string{"quality", "skills"},
	}
}

func TestConfigValidation(t *testing.T) {
	require.NoError(t, validate.Struct(validConfig()))

	cases := map[string]func(c *Config){
		"unknown provider": func(c *Config) { c.Provider = "openai" },
		"score too high":   func(c *Config) { c.MinimumScore = 101 },
		"no concurrency":   func(c *Config) { c.Concurrency = 0 },
		"unknown stage":    func(c *Config) { c.Stages = []string{"translate"} },
		"unknown tier": func(c *Config) {
			c.Anthropic = &ProviderConfig{Models: map[string]string{"slow": "model"}}
		},
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := validConfig()
			mutate(c)
			assert.Error(t, validate.Struct(c))
		})
	}
}

func TestConfigModels(t *testing.T) {
	c := validConfig()
	assert.Equal(t, ai.DefaultAnthropicModels(), c.models())

	c.Provider = providerGemini
	c.Gemini = &ProviderConfig{Models: map[string]string{"fast": "gemini-2.5-flash-lite"}}
	models := c.models()
	assert.Equal(t, "gemini-2.5-flash-lite", models.Get(ai.TierFast))
	assert.Equal(t, ai.DefaultGeminiModels().Get(ai.TierReasoning), models.Get(ai.TierReasoning))
}

func TestNewTransportRequiresKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	c := validConfig()

	_, err := newTransport(t.Context(), c, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY_FILE")

	c.Provider = "openai"
	_, err = newTransport(t.Context(), c, zap.NewNop())
	assert.EqualError(t, err, "unsupported ai provider: openai")
}

func TestNewTransportUsesEnvKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")

	transport, err := newTransport(t.Context(), validConfig(), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "anthropic", transport.Provider())
}

func TestBuildPipelineDisablesStages(t *testing.T) {
	client := ai.NewClient(nil, zap.NewNop(), 0)
	p := buildPipeline(client, ai.DefaultAnthropicModels(), validConfig(), []string{"skills"}, zap.NewNop())

	enabled := map[string]bool{}
	reasons := map[string]string{}
	for _, status := range p.Describe() {
		enabled[status.Name] = status.Enabled
		reasons[status.Name] = status.Reason
	}

	assert.True(t, enabled[pipeline.QualityStageName])
	assert.False(t, enabled[pipeline.SkillsStageName])
	assert.Equal(t, skippedByFlagReasonMsg, reasons[pipeline.SkillsStageName])
	assert.False(t, enabled[pipeline.TitleStageName])
	assert.False(t, enabled[pipeline.SanitizeStageName])
	assert.True(t, enabled["exclude_file"])
}

func newInputCmd() *cobra.Command {
	c := &cobra.Command{Use: "test"}
	c.Flags().String("file", "", "")
	c.Flags().String("text", "", "")
	return c
}

func TestReadInput(t *testing.T) {
	c := newInputCmd()
	text, err := readInput(c, strings.NewReader("  from stdin \n"))
	require.NoError(t, err)
	assert.Equal(t, "from stdin", text)

	path := filepath.Join(t.TempDir(), "job.txt")
	require.NoError(t, os.WriteFile(path, []byte("from file"), 0o644))
	require.NoError(t, c.Flags().Set("file", path))
	text, err = readInput(c, strings.NewReader("ignored"))
	require.NoError(t, err)
	assert.Equal(t, "from file", text)

	require.NoError(t, c.Flags().Set("text", "inline"))
	text, err = readInput(c, strings.NewReader("ignored"))
	require.NoError(t, err)
	assert.Equal(t, "inline", text)
}

func TestReadInputEmpty(t *testing.T) {
	_, err := readInput(newInputCmd(), strings.NewReader(" \n"))
	assert.EqualError(t, err, "input is empty")
}

func TestConfigDumpOmitsAPIKeys(t *testing.T) {
	c := validConfig()
	c.Anthropic = &ProviderConfig{APIKey: "sk-ant-SECRET", APIKeyFile: "/run/secrets/anthropic"}
	c.Gemini = &ProviderConfig{APIKey: "gemini-SECRET"}

	pretty, err := json.MarshalIndent(c, "", "  ")
	require.NoError(t, err)

	assert.NotContains(t, string(pretty), "SECRET")
	assert.Contains(t, string(pretty), "/run/secrets/anthropic")
}

func TestVersionCommandOutput(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	t.Cleanup(func() { versionCmd.SetOut(nil) })

	versionCmd.Run(versionCmd, nil)

	assert.True(t, strings.HasPrefix(out.String(), "job-qualifier version: unknown ("), out.String())
}
