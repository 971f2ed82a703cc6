package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/wrenhunt/sourcer/internal/logger"
	"github.com/wrenhunt/sourcer/internal/pipeline"
)

const (
	PromptShowReport    = "Show full report"
	PromptResultsToFile = "Dump results to file"
	PromptExit          = "Exit"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "Pipeline finished. What next?",
	Items: []string{PromptShowReport, PromptResultsToFile, PromptExit},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the sourcing pipeline: search, score and draft outreach",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("auto-approve", "y", false, "do not show the interactive menu after the run")
	runCmd.Flags().StringP("job-file", "f", "", "file with the job description text")

	viper.BindPFlag("job-file", runCmd.Flags().Lookup("job-file"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the sourcer", zap.String("version", version))

	if config == nil {
		logger.Fatal("config is required")
	}

	job, err := readJobDescription(config)
	if err != nil {
		logger.Fatal("loading job description", zap.Error(err))
	}

	names, err := readCandidates(config)
	if err != nil {
		logger.Fatal("loading candidate names", zap.Error(err))
	}

	pipe, err := buildPipeline(ctx, config, logger)
	if err != nil {
		logger.Fatal("building pipeline", zap.Error(err))
	}

	logger.Info("starting the pipeline",
		zap.String("job_id", pipeline.JobID(job)),
		zap.Int("candidates", len(names)),
	)

	result, err := pipe.Run(ctx, job, names)
	if err != nil {
		logger.Fatal("running pipeline", zap.Error(err))
	}

	if result.Status == pipeline.StatusFailed {
		logger.Fatal("pipeline failed", zap.String("reason", result.Message))
	}

	fmt.Println(result.Summary)

	if cmd.Flag("auto-approve").Value.String() == "true" {
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, result, logger); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, result *pipeline.Result, logger *zap.Logger) error {
	switch action {
	case PromptShowReport:
		pretty, _ := json.MarshalIndent(result.Candidates, "", "  ")
		fmt.Println(string(pretty))
		return nil
	case PromptResultsToFile:
		filename, err := result.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}
