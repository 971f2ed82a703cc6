package pipeline

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/wrenhunt/sourcer/internal/profile"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// FitLevel buckets a rubric score into a human-readable category.
type FitLevel string

const (
	FitExcellent FitLevel = "Excellent Fit"
	FitStrong    FitLevel = "Strong Fit"
	FitGood      FitLevel = "Good Fit"
	FitModerate  FitLevel = "Moderate Fit"
	FitPoor      FitLevel = "Poor Fit"
	// FitError marks candidates whose scoring call failed. They keep a zero
	// score and rank last instead of vanishing from the result set.
	FitError FitLevel = "Error"
)

// FitLevelFor maps a final score to its bucket. Boundary scores belong to
// the higher bucket.
func FitLevelFor(score float64) FitLevel {
	switch {
	case score >= 80:
		return FitExcellent
	case score >= 70:
		return FitStrong
	case score >= 60:
		return FitGood
	case score >= 50:
		return FitModerate
	default:
		return FitPoor
	}
}

// Candidate is one fully processed profile: resolved, scored and, for the
// top of the ranking, annotated with an outreach draft. Outreach stays nil
// for candidates beyond the outreach cutoff.
type Candidate struct {
	profile.Profile

	Score          float64           `json:"score"`
	ScoreBreakdown map[string]string `json:"score_breakdown"`
	FitLevel       FitLevel          `json:"fit_level"`

	Outreach *Outreach `json:"outreach,omitempty"`
}

// Outreach carries the drafted message for one top candidate.
type Outreach struct {
	Message    string   `json:"message"`
	Generated  bool     `json:"message_generated"`
	Highlights []string `json:"key_highlights"`
}

// Result is the terminal output of one pipeline run.
type Result struct {
	Status           string       `json:"status"`
	JobID            string       `json:"job_id"`
	Message          string       `json:"message,omitempty"`
	CandidatesFound  int          `json:"candidates_found"`
	CandidatesScored int          `json:"candidates_scored"`
	ExecutionTime    float64      `json:"execution_time"`
	Candidates       []*Candidate `json:"top_candidates"`
	Summary          string       `json:"summary,omitempty"`
}

// DumpToTmpFile writes the result as indented JSON to a temporary file and
// returns its name.
func (r *Result) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "sourcing_results_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// ExtractJobTitle derives a short job title from the first line of the
// description, used to narrow fallback searches.
func ExtractJobTitle(jobDescription string) string {
	lines := strings.Split(strings.TrimSpace(jobDescription), "\n")
	if len(lines) > 0 {
		title := strings.TrimSpace(strings.Split(lines[0], " - ")[0])
		if title != "" {
			return title
		}
	}
	return "Software Engineer"
}

// JobID derives a deterministic identifier from the description: a slug of
// the job title plus a short content hash, so repeated submissions of the
// same text map to the same id.
func JobID(jobDescription string) string {
	title := strings.ToLower(ExtractJobTitle(jobDescription))
	slug := strings.ReplaceAll(title, " ", "-")
	hash := md5.Sum([]byte(jobDescription))
	return fmt.Sprintf("%s-%x", slug, hash[:3])
}
