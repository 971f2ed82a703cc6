package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wrenhunt/sourcer/internal/ai/gemini"
	"github.com/wrenhunt/sourcer/internal/pipeline"
	"github.com/wrenhunt/sourcer/internal/profile"
	"github.com/wrenhunt/sourcer/internal/search"
	"github.com/wrenhunt/sourcer/internal/secrets"
)

// buildPipeline wires the search client, resolver, scorer and composer into
// one pipeline from the configuration. Shared by the run and serve commands.
func buildPipeline(ctx context.Context, config *Config, logger *zap.Logger) (*pipeline.Pipeline, error) {
	searchToken, err := resolveSearchToken(config)
	if err != nil {
		return nil, fmt.Errorf("%w (set SERPAPI_KEY_FILE or the 'search.api-key-file' key in the configuration file)", err)
	}

	searcher := search.New(logger, searchToken)

	resolver := profile.NewResolver(searcher, logger)
	if config.Search != nil {
		resolver = resolver.WithDomain(config.Search.Domain)
	}

	scorer, composer, err := newAIClients(ctx, config.AI, logger)
	if err != nil {
		return nil, err
	}

	cfg := &pipeline.Config{}
	if config.Outreach != nil {
		cfg.TopN = config.Outreach.TopN
	}
	if config.Search != nil && config.Search.Interval != "" {
		interval, err := time.ParseDuration(config.Search.Interval)
		if err != nil {
			return nil, fmt.Errorf("parsing search interval: %w", err)
		}
		cfg.SearchInterval = interval
	}

	return pipeline.New(cfg, resolver, scorer, composer, logger), nil
}

func newAIClients(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (*gemini.Scorer, *gemini.Composer, error) {
	if cfg == nil || cfg.Gemini == nil {
		return nil, nil, fmt.Errorf("ai.gemini configuration is required")
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	genLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", cfg.Gemini.Model),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, nil, err
	}

	scorer := gemini.NewScorer(generator, genLogger, cfg.Gemini.MaxLogLength)
	composer := gemini.NewComposer(generator, genLogger, cfg.Gemini.MaxLogLength)

	return scorer, composer, nil
}

func resolveSearchToken(config *Config) (string, error) {
	file := ""
	if config.Search != nil {
		file = strings.TrimSpace(config.Search.APIKeyFile)
	}

	return secrets.Load(secrets.Source{
		Name: "serpapi key",
		File: file,
	})
}

// readJobDescription loads the job description text named by the config.
func readJobDescription(config *Config) (string, error) {
	file := strings.TrimSpace(config.JobFile)
	if file == "" {
		return "", fmt.Errorf("job description file is required under job-file")
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("reading job description: %w", err)
	}

	job := strings.TrimSpace(string(data))
	if job == "" {
		return "", fmt.Errorf("job description file %q is empty", file)
	}

	return job, nil
}

// readCandidates returns the candidate name list: inline config names first,
// else one name per line from the candidates file.
func readCandidates(config *Config) ([]string, error) {
	if len(config.Candidates) > 0 {
		return config.Candidates, nil
	}

	file := strings.TrimSpace(config.CandidatesFile)
	if file == "" {
		return nil, fmt.Errorf("candidate names are required under candidates or candidates-file")
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading candidates: %w", err)
	}

	var names []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			names = append(names, line)
		}
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("candidates file %q is empty", file)
	}

	return names, nil
}
