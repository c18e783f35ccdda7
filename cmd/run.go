package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-qualifier/internal/ai"
	"github.com/spigell/job-qualifier/internal/jobs"
	"github.com/spigell/job-qualifier/internal/pipeline"
	"github.com/spigell/job-qualifier/internal/postings"
)

const (
	PromptYes              = "Yes"
	PromptNo               = "No"
	PromptSave             = "Write results"
	PromptReportByRoles    = "Report by roles"
	PromptPostingsToFile   = "Dump postings to file"
	stdoutOutput           = "-"
	skippedByFlagReasonMsg = "skipped via flag"
)

var errExit = errors.New("exit requested")

var (
	confirmPrompt = promptui.Select{
		Label: "Proceed?",
		Items: []string{PromptYes, PromptNo},
	}
	resultsPrompt = promptui.Select{
		Label: "What to do with the results?",
		Items: []string{PromptSave, PromptReportByRoles, PromptPostingsToFile, PromptNo},
	}
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Qualify and enrich a batch of job postings",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("input", "i", "", "json file with postings to process")
	runCmd.Flags().StringP("output", "o", stdoutOutput, "file to write processed postings to. Default is stdout.")
	runCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation")
	runCmd.Flags().StringP("exclude-file", "e", "", "results of a previous run; postings found there are skipped")
	runCmd.Flags().StringSlice("skip", nil, "stages to skip: quality, skills, title, sanitize")

	runCmd.MarkFlagRequired("input")

	viper.BindPFlag("exclude-file", runCmd.Flags().Lookup("exclude-file"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, config := setup()

	logger.Info("starting the job-qualifier", zap.String("version", version), zap.String("ai_provider", config.Provider))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	input, _ := cmd.Flags().GetString("input")
	batch, err := postings.FromFile(input)
	if err != nil {
		logger.Fatal("loading postings", zap.String("input", input), zap.Error(err))
	}

	logger.Info("loaded postings", zap.Int("count", batch.Len()))
	if batch.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no postings found"))
		return
	}

	client, models, err := newAIClient(ctx, config, logger)
	if err != nil {
		logger.Fatal("building ai client", zap.Error(err))
	}

	skip, _ := cmd.Flags().GetStringSlice("skip")
	p := buildPipeline(client, models, config, skip, logger)

	for _, status := range p.Describe() {
		logger.Debug("pipeline stage",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
			zap.Any("details", status.Details),
		)
	}

	autoApprove, _ := cmd.Flags().GetBool("auto-approve")
	if !autoApprove {
		_, action, err := confirmPrompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		if action != PromptYes {
			logger.Info("exiting", zap.String("reason", "got no from prompt"))
			return
		}
	}

	batch, err = p.Run(ctx, batch)
	if err != nil {
		logger.Fatal("processing postings failed", zap.Error(err))
	}

	logger.Info("postings processed", zap.Int("count", batch.Len()))

	output, _ := cmd.Flags().GetString("output")
	if autoApprove {
		if err := writeResults(batch, output, logger); err != nil {
			logger.Fatal("writing results", zap.Error(err))
		}
		return
	}

	for {
		_, action, err := resultsPrompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, batch, output, logger); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func buildPipeline(client *ai.Client, models ai.Models, config *Config, skip []string, logger *zap.Logger) *pipeline.Pipeline {
	classifier := jobs.NewClassifier(client, models, logger, jobs.WithMinimumScore(config.MinimumScore))

	stages := []pipeline.Stage{
		pipeline.NewExcludeFile(config.ExcludeFile, logger),
		pipeline.NewQuality(classifier, config.Concurrency, logger),
		pipeline.NewExcludedRoles(config.excludedRoles(), logger),
		pipeline.NewSkills(jobs.NewSkillExtractor(client, models, logger), config.Concurrency),
		pipeline.NewTitle(jobs.NewTitleExtractor(client, models, logger), config.Concurrency),
		pipeline.NewSanitize(jobs.NewSanitizer(client, models, logger), config.Concurrency),
	}

	p := pipeline.New(stages, logger)

	for _, name := range []string{
		pipeline.QualityStageName,
		pipeline.SkillsStageName,
		pipeline.TitleStageName,
		pipeline.SanitizeStageName,
	} {
		switch {
		case slices.Contains(skip, name):
			p.DisableByName(name, skippedByFlagReasonMsg)
		case !slices.Contains(config.Stages, name):
			p.DisableByName(name, "not listed in stages")
		}
	}

	return p
}

func handleAction(action string, batch *postings.Postings, output string, logger *zap.Logger) error {
	switch action {
	case PromptSave:
		if err := writeResults(batch, output, logger); err != nil {
			return err
		}
		return errExit
	case PromptNo:
		logger.Info("exiting", zap.String("reason", "got no from prompt"))
		return errExit
	case PromptReportByRoles:
		pretty, _ := json.MarshalIndent(batch.ReportByRole(), "", "  ")
		logger.Info(string(pretty), zap.Int("postings count", batch.Len()))
		return nil
	case PromptPostingsToFile:
		filename, err := batch.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func writeResults(batch *postings.Postings, output string, logger *zap.Logger) error {
	if output == "" || output == stdoutOutput {
		return batch.Encode(os.Stdout)
	}

	if err := batch.ToFile(output); err != nil {
		return fmt.Errorf("write results to %s: %w", output, err)
	}
	logger.Info("results written", zap.String("filename", output), zap.Int("count", batch.Len()))
	return nil
}
