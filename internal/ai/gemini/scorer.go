package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/wrenhunt/sourcer/internal/ai"
	"github.com/wrenhunt/sourcer/internal/profile"
	"github.com/wrenhunt/sourcer/internal/utils"
)

//go:embed score_prompt.md
var scorePromptTemplate string

const (
	scoreSystemInstruction = "You are a technical recruiter expert at scoring candidates objectively."

	defaultMaxLogLength = 200
)

// scoringTemperature keeps rubric scoring deterministic-leaning.
var scoringTemperature = float32(0.2)

type contentGenerator interface {
	GenerateContent(ctx context.Context, req Request) (string, error)
}

// Scorer rates candidate profiles against a job description with a fixed
// six-criterion weighted rubric.
type Scorer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewScorer(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Scorer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Scorer{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (s *Scorer) Score(ctx context.Context, p *profile.Profile, jobDescription string) (*ai.Evaluation, error) {
	if p == nil {
		return nil, fmt.Errorf("candidate profile is required")
	}

	candidateJSON, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal candidate payload: %w", err)
	}

	prompt := buildScorePrompt(jobDescription, string(candidateJSON))

	s.logger.Debug("gemini scoring request",
		zap.String("candidate", p.Name),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, s.maxLogLen)),
	)

	raw, err := s.generator.GenerateContent(ctx, Request{
		System:      scoreSystemInstruction,
		Prompt:      prompt,
		Temperature: &scoringTemperature,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("gemini scoring response",
		zap.String("candidate", p.Name),
		zap.String("response_preview", utils.TruncateForLog(raw, s.maxLogLen)),
	)

	evaluation, err := parseEvaluation(raw)
	if err != nil {
		return nil, err
	}

	evaluation.Raw = raw
	return evaluation, nil
}

func buildScorePrompt(jobDescription, candidateJSON string) string {
	prompt := strings.ReplaceAll(scorePromptTemplate, "{{JOB_DESCRIPTION}}", jobDescription)
	return strings.ReplaceAll(prompt, "{{CANDIDATE_JSON}}", candidateJSON)
}

// parseEvaluation extracts the rubric JSON from the model output. Tried in
// order: fenced code block, then the first balanced brace-delimited
// substring. Output that parses neither way is a failure.
func parseEvaluation(raw string) (*ai.Evaluation, error) {
	cleaned := extractJSON(raw)

	jsonStr := firstJSONObject(cleaned)
	if jsonStr == "" {
		return nil, fmt.Errorf("no JSON object in model output")
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &data); err != nil {
		return nil, fmt.Errorf("parse scoring response: %w", err)
	}

	score := coerceFloat(data["final_score"])
	if math.IsNaN(score) {
		return nil, fmt.Errorf("scoring response is missing final_score")
	}

	// The rubric's sum-then-multiply arithmetic can overshoot 100, so the
	// final score is clamped to the documented range.
	score = math.Min(math.Max(score, 0), 100)

	breakdown := make(map[string]string)
	if explanation, ok := data["explanation"].(map[string]any); ok {
		for criterion, text := range explanation {
			breakdown[criterion] = coerceString(text)
		}
	}

	return &ai.Evaluation{
		Score:     score,
		Breakdown: breakdown,
	}, nil
}
