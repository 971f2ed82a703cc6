package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/wrenhunt/sourcer/internal/ai"
	"github.com/wrenhunt/sourcer/internal/profile"
)

const (
	defaultTopN = 5
	// defaultSearchInterval spaces out resolution calls as a courtesy to
	// the search service's usage policy.
	defaultSearchInterval = time.Second
)

// ProfileResolver matches one candidate name to a structured profile.
// A nil return means the candidate could not be resolved.
type ProfileResolver interface {
	Resolve(ctx context.Context, name, jobTitleHint string) *profile.Profile
}

// Pipeline sequences resolution, scoring and outreach over a candidate list.
type Pipeline struct {
	resolver ProfileResolver
	scorer   ai.Scorer
	composer ai.Composer
	logger   *zap.Logger
	limiter  *rate.Limiter
	topN     int
}

// Config tunes pipeline behavior. Zero values fall back to defaults.
type Config struct {
	// TopN is how many of the highest ranked candidates get an outreach
	// message drafted.
	TopN int
	// SearchInterval is the minimum spacing between resolution calls.
	SearchInterval time.Duration
}

func New(cfg *Config, resolver ProfileResolver, scorer ai.Scorer, composer ai.Composer, logger *zap.Logger) *Pipeline {
	topN := defaultTopN
	interval := defaultSearchInterval

	if cfg != nil {
		if cfg.TopN > 0 {
			topN = cfg.TopN
		}
		if cfg.SearchInterval > 0 {
			interval = cfg.SearchInterval
		}
	}

	return &Pipeline{
		resolver: resolver,
		scorer:   scorer,
		composer: composer,
		logger:   logger,
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		topN:     topN,
	}
}

// Run executes the full pipeline: resolve every name, score every resolved
// profile, draft outreach for the post-sort top N, and assemble the summary.
// Per-candidate failures degrade (dropped, zero-scored or error-messaged);
// only the zero-candidates-resolved case fails the whole run. The returned
// error is non-nil only when the context is canceled.
func (p *Pipeline) Run(ctx context.Context, jobDescription string, names []string) (*Result, error) {
	start := time.Now()
	jobID := JobID(jobDescription)
	titleHint := ExtractJobTitle(jobDescription)

	p.logger.Info("starting sourcing pipeline",
		zap.String("job_id", jobID),
		zap.Int("candidates", len(names)),
	)

	profiles, err := p.resolveAll(ctx, names, titleHint)
	if err != nil {
		return nil, err
	}

	if len(profiles) == 0 {
		p.logger.Info("pipeline failed", zap.String("reason", "no candidates resolved"))
		return &Result{
			Status:        StatusFailed,
			JobID:         jobID,
			Message:       "no candidate profiles found",
			ExecutionTime: round(time.Since(start).Seconds()),
		}, nil
	}

	candidates := p.scoreAll(ctx, profiles, jobDescription)

	// Stable sort keeps resolution order for equal scores.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	p.generateOutreach(ctx, candidates, jobDescription)

	elapsed := round(time.Since(start).Seconds())

	result := &Result{
		Status:           StatusSuccess,
		JobID:            jobID,
		CandidatesFound:  len(profiles),
		CandidatesScored: len(candidates),
		ExecutionTime:    elapsed,
		Candidates:       candidates,
		Summary:          buildSummary(candidates, elapsed),
	}

	p.logger.Info("pipeline completed",
		zap.String("job_id", jobID),
		zap.Int("candidates_found", result.CandidatesFound),
		zap.Float64("execution_time", elapsed),
	)

	return result, nil
}

func (p *Pipeline) resolveAll(ctx context.Context, names []string, titleHint string) ([]*profile.Profile, error) {
	profiles := make([]*profile.Profile, 0, len(names))

	for i, name := range names {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for search slot: %w", err)
		}

		p.logger.Info("resolving candidate",
			zap.String("name", name),
			zap.Int("position", i+1),
			zap.Int("total", len(names)),
		)

		found := p.resolver.Resolve(ctx, name, titleHint)
		if found == nil {
			p.logger.Info("candidate not found", zap.String("name", name))
			continue
		}

		profiles = append(profiles, found)
	}

	p.logger.Info("resolution finished", zap.Int("found", len(profiles)))

	return profiles, nil
}

func (p *Pipeline) scoreAll(ctx context.Context, profiles []*profile.Profile, jobDescription string) []*Candidate {
	candidates := make([]*Candidate, 0, len(profiles))

	for _, prof := range profiles {
		candidate := &Candidate{Profile: *prof}

		evaluation, err := p.scorer.Score(ctx, prof, jobDescription)
		if err != nil {
			// Scoring failures keep the candidate with a zero score so
			// it ranks last instead of disappearing.
			p.logger.Warn("scoring failed",
				zap.String("name", prof.Name),
				zap.Error(err),
			)
			candidate.ScoreBreakdown = map[string]string{"error": err.Error()}
			candidate.FitLevel = FitError
		} else {
			candidate.Score = evaluation.Score
			candidate.ScoreBreakdown = evaluation.Breakdown
			candidate.FitLevel = FitLevelFor(evaluation.Score)
		}

		p.logger.Info("candidate scored",
			zap.String("name", candidate.Name),
			zap.Float64("score", candidate.Score),
			zap.String("fit_level", string(candidate.FitLevel)),
		)

		candidates = append(candidates, candidate)
	}

	return candidates
}

func (p *Pipeline) generateOutreach(ctx context.Context, candidates []*Candidate, jobDescription string) {
	limit := p.topN
	if limit > len(candidates) {
		limit = len(candidates)
	}

	for _, candidate := range candidates[:limit] {
		outreach := &Outreach{Highlights: highlights(candidate)}

		message, err := p.composer.Compose(ctx, &candidate.Profile, jobDescription)
		if err != nil {
			p.logger.Warn("outreach generation failed",
				zap.String("name", candidate.Name),
				zap.Error(err),
			)
			outreach.Message = fmt.Sprintf("Error generating message: %s", err)
		} else {
			outreach.Message = message
			outreach.Generated = true
		}

		candidate.Outreach = outreach
	}
}

// highlights summarizes what makes the candidate notable in the report.
func highlights(c *Candidate) []string {
	items := make([]string, 0, 3)

	if c.Company != "" && c.Company != profile.CompanyUnknown {
		items = append(items, fmt.Sprintf("Experience at %s", c.Company))
	}
	if c.Score >= 70 {
		items = append(items, "Strong technical fit")
	}
	if c.Location != "" {
		items = append(items, fmt.Sprintf("Located in %s", c.Location))
	}

	return items
}

func buildSummary(candidates []*Candidate, elapsed float64) string {
	var excellent, strong, good int
	for _, c := range candidates {
		switch {
		case c.Score >= 80:
			excellent++
		case c.Score >= 70:
			strong++
		case c.Score >= 60:
			good++
		}
	}

	top := "None"
	if len(candidates) > 0 {
		top = fmt.Sprintf("%s (%.1f/100)", candidates[0].Name, candidates[0].Score)
	}

	return fmt.Sprintf(
		"Total candidates: %d\nExcellent fits (80+): %d\nStrong fits (70-79): %d\nGood fits (60-69): %d\nTop candidate: %s\nExecution time: %.1fs",
		len(candidates), excellent, strong, good, top, elapsed,
	)
}

func round(seconds float64) float64 {
	return float64(int(seconds*100)) / 100
}
