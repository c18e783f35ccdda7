package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/job-qualifier/internal/ai"
	"github.com/spigell/job-qualifier/internal/jobs"
)

const defaultAskMaxTokens = 256

var (
	classifyCmd = &cobra.Command{
		Use:   "classify",
		Short: "Check the quality of a single job description",
		Run: func(cmd *cobra.Command, _ []string) {
			runSingle(cmd, func(ctx context.Context, client *ai.Client, models ai.Models, config *Config, logger *zap.Logger, text string) (any, error) {
				uid, _ := cmd.Flags().GetString("uid")
				c := jobs.NewClassifier(client, models, logger, jobs.WithMinimumScore(config.MinimumScore))
				return c.Classify(ctx, text, uid), nil
			})
		},
	}

	skillsCmd = &cobra.Command{
		Use:   "skills",
		Short: "Extract the technical skills of a single job description",
		Run: func(cmd *cobra.Command, _ []string) {
			runSingle(cmd, func(ctx context.Context, client *ai.Client, models ai.Models, _ *Config, logger *zap.Logger, text string) (any, error) {
				return jobs.NewSkillExtractor(client, models, logger).Extract(ctx, text), nil
			})
		},
	}

	titleCmd = &cobra.Command{
		Use:   "title",
		Short: "Categorise the title of a contact person",
		Run: func(cmd *cobra.Command, _ []string) {
			runSingle(cmd, func(ctx context.Context, client *ai.Client, models ai.Models, _ *Config, logger *zap.Logger, text string) (any, error) {
				title, ok := jobs.NewTitleExtractor(client, models, logger).Extract(ctx, text)
				if !ok {
					return nil, fmt.Errorf("no title category extracted")
				}
				return map[string]string{"title_category": title}, nil
			})
		},
	}

	sanitizeCmd = &cobra.Command{
		Use:   "sanitize",
		Short: "Rewrite a job description without identifying details",
		Run: func(cmd *cobra.Command, _ []string) {
			runSingle(cmd, func(ctx context.Context, client *ai.Client, models ai.Models, _ *Config, logger *zap.Logger, text string) (any, error) {
				return jobs.NewSanitizer(client, models, logger).Sanitise(ctx, text)
			})
		},
	}

	askCmd = &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask the fast model a free-text question",
		Args:  cobra.ArbitraryArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) > 0 {
				cmd.Flags().Set("text", strings.Join(args, " "))
			}
			runSingle(cmd, func(ctx context.Context, client *ai.Client, models ai.Models, _ *Config, _ *zap.Logger, text string) (any, error) {
				maxTokens, _ := cmd.Flags().GetInt("max-tokens")
				return client.Generate(ctx, text, models.Get(ai.TierFast), maxTokens)
			})
		},
	}
)

type singleRunner func(ctx context.Context, client *ai.Client, models ai.Models, config *Config, logger *zap.Logger, text string) (any, error)

func init() {
	for _, c := range []*cobra.Command{classifyCmd, skillsCmd, titleCmd, sanitizeCmd, askCmd} {
		c.Flags().StringP("file", "f", "", "read the input from a file instead of stdin")
		c.Flags().StringP("text", "t", "", "the input text itself")
		rootCmd.AddCommand(c)
	}

	classifyCmd.Flags().String("uid", "", "posting uid used in logs")
	askCmd.Flags().Int("max-tokens", defaultAskMaxTokens, "token budget of the answer")
}

func runSingle(cmd *cobra.Command, fn singleRunner) {
	ctx := context.Background()

	logger, config := setup()

	text, err := readInput(cmd, os.Stdin)
	if err != nil {
		logger.Fatal("reading input", zap.Error(err))
	}

	client, models, err := newAIClient(ctx, config, logger)
	if err != nil {
		logger.Fatal("building ai client", zap.Error(err))
	}

	result, err := fn(ctx, client, models, config, logger, text)
	if err != nil {
		logger.Fatal(cmd.Name()+" failed", zap.Error(err))
	}

	if s, ok := result.(string); ok {
		fmt.Println(s)
		return
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		logger.Fatal("writing result", zap.Error(err))
	}
}

// readInput returns the text given with --text, the content of --file or stdin, in that order.
func readInput(cmd *cobra.Command, stdin io.Reader) (string, error) {
	if text, _ := cmd.Flags().GetString("text"); strings.TrimSpace(text) != "" {
		return text, nil
	}

	var data []byte
	var err error
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		data, err = os.ReadFile(path)
	} else {
		data, err = io.ReadAll(stdin)
	}
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("input is empty")
	}
	return text, nil
}
