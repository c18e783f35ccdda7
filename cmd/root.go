package cmd

import (
	"errors"
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-qualifier/internal/ai"
	"github.com/spigell/job-qualifier/internal/jobs"
	"github.com/spigell/job-qualifier/internal/logger"
	"github.com/spigell/job-qualifier/internal/pipeline"
)

const (
	app = "job-qualifier"

	providerAnthropic = "anthropic"
	providerGemini    = "gemini"
)

type Config struct {
	Provider     string          `mapstructure:"provider" validate:"oneof=anthropic gemini"`
	Anthropic    *ProviderConfig `mapstructure:"anthropic"`
	Gemini       *ProviderConfig `mapstructure:"gemini"`
	MinimumScore int             `mapstructure:"minimum-score" validate:"gte=0,lte=100"`
	Concurrency  int             `mapstructure:"concurrency" validate:"gte=1,lte=64"`
	MaxLogLength int             `mapstructure:"max-log-length" validate:"gte=0"`
	Stages       []string        `mapstructure:"stages" validate:"dive,oneof=quality skills title sanitize"`
	ExcludeFile  string          `mapstructure:"exclude-file"`
	Exclude      *struct {
		Roles []string `mapstructure:"roles"`
	} `mapstructure:"exclude"`
}

type ProviderConfig struct {
	APIKey     string            `mapstructure:"api-key" json:"-"`
	APIKeyFile string            `mapstructure:"api-key-file"`
	MaxRetries int               `mapstructure:"max-retries" validate:"gte=0,lte=10"`
	Models     map[string]string `mapstructure:"models" validate:"dive,keys,oneof=reasoning fast,endkeys"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "job-qualifier scores, enriches and sanitises job postings with an LLM",
	}

	validate = validator.New()
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	for key, env := range map[string]string{
		"anthropic.api-key-file": "ANTHROPIC_API_KEY_FILE",
		"gemini.api-key-file":    "GEMINI_API_KEY_FILE",
		"provider":               "JOBQ_PROVIDER",
	} {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	viper.SetDefault("provider", providerAnthropic)
	viper.SetDefault("minimum-score", jobs.DefaultMinimumScore)
	viper.SetDefault("concurrency", pipeline.DefaultConcurrency)
	viper.SetDefault("max-log-length", 200)
	viper.SetDefault("stages", []string{
		pipeline.QualityStageName,
		pipeline.SkillsStageName,
		pipeline.TitleStageName,
		pipeline.SanitizeStageName,
	})

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is job-qualifier.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().StringP("provider", "p", "", "llm provider: anthropic or gemini")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("provider", rootCmd.PersistentFlags().Lookup("provider"))
}

func initConfig() {
	if versionCmd.CalledAs() != "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The config file is optional unless it was asked for explicitly.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config == nil {
		return nil, errors.New("config is empty")
	}

	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// models returns the tier mapping of the selected provider with configured overrides applied.
func (c *Config) models() ai.Models {
	defaults := ai.DefaultAnthropicModels()
	if c.Provider == providerGemini {
		defaults = ai.DefaultGeminiModels()
	}

	pc := c.providerConfig()
	if pc == nil {
		return defaults
	}

	overrides := make(ai.Models, len(pc.Models))
	for tier, model := range pc.Models {
		overrides[ai.Tier(tier)] = model
	}
	return defaults.Merge(overrides)
}

func (c *Config) providerConfig() *ProviderConfig {
	if c.Provider == providerGemini {
		return c.Gemini
	}
	return c.Anthropic
}

func (c *Config) excludedRoles() []string {
	if c.Exclude == nil {
		return nil
	}
	return c.Exclude.Roles
}

// setup builds the logger and config shared by every command.
func setup() (*zap.Logger, *Config) {
	logger, err := logger.New(app, viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	return logger, config
}
