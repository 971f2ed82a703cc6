package ai

import (
	"context"

	"github.com/wrenhunt/sourcer/internal/profile"
)

// Evaluation is the outcome of scoring one candidate against a job.
type Evaluation struct {
	// Score is the weighted rubric score on a 0-100 scale.
	Score float64
	// Breakdown maps each rubric criterion to its explanation. On failure
	// it carries a single "error" entry.
	Breakdown map[string]string
	// Raw is the unprocessed model output, kept for debugging.
	Raw string
}

// Scorer rates a candidate profile against a job description.
type Scorer interface {
	Score(ctx context.Context, p *profile.Profile, jobDescription string) (*Evaluation, error)
}

// Composer drafts a personalized outreach message for a candidate.
type Composer interface {
	Compose(ctx context.Context, p *profile.Profile, jobDescription string) (string, error)
}
