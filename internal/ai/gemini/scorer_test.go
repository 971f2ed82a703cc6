package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/wrenhunt/sourcer/internal/profile"
)

type stubGenerator struct {
	response string
	err      error
	lastReq  Request
}

func (s *stubGenerator) GenerateContent(_ context.Context, req Request) (string, error) {
	s.lastReq = req
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func testProfile() *profile.Profile {
	return &profile.Profile{
		Name:     "Jane Doe",
		Headline: "Jane Doe - Senior Engineer - Acme",
		Company:  "Acme",
		Snippet:  "Senior Engineer at Acme.",
	}
}

func TestScorerParsesFencedJSON(t *testing.T) {
	stub := &stubGenerator{response: "```json\n" +
		`{"final_score": 82.5, "explanation": {"education": "IIT - 9 points", "experience": "strong - 8 points"}}` +
		"\n```"}
	scorer := NewScorer(stub, zap.NewNop(), 0)

	evaluation, err := scorer.Score(context.Background(), testProfile(), "ML Engineer - Acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if evaluation.Score != 82.5 {
		t.Fatalf("expected score 82.5, got %v", evaluation.Score)
	}

	if evaluation.Breakdown["education"] != "IIT - 9 points" {
		t.Fatalf("unexpected breakdown: %v", evaluation.Breakdown)
	}

	if evaluation.Raw == "" {
		t.Fatal("expected raw response to be kept")
	}
}

func TestScorerParsesJSONSurroundedByProse(t *testing.T) {
	stub := &stubGenerator{response: `Here is my assessment:
{"final_score": 64, "explanation": {"education": "standard - 5 points"}}
Let me know if you need anything else.`}
	scorer := NewScorer(stub, zap.NewNop(), 0)

	evaluation, err := scorer.Score(context.Background(), testProfile(), "job")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if evaluation.Score != 64 {
		t.Fatalf("expected score 64, got %v", evaluation.Score)
	}
}

func TestScorerClampsScoreToRange(t *testing.T) {
	stub := &stubGenerator{response: `{"final_score": 128, "explanation": {}}`}
	scorer := NewScorer(stub, zap.NewNop(), 0)

	evaluation, err := scorer.Score(context.Background(), testProfile(), "job")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if evaluation.Score != 100 {
		t.Fatalf("expected clamped score 100, got %v", evaluation.Score)
	}
}

func TestScorerRejectsUnparseableOutput(t *testing.T) {
	responses := []string{
		"I cannot score this candidate.",
		"final_score = 80",
		`{"final_score": `, // truncated object
	}

	for _, response := range responses {
		stub := &stubGenerator{response: response}
		scorer := NewScorer(stub, zap.NewNop(), 0)

		if _, err := scorer.Score(context.Background(), testProfile(), "job"); err == nil {
			t.Fatalf("expected error for output %q", response)
		}
	}
}

func TestScorerRejectsMissingFinalScore(t *testing.T) {
	stub := &stubGenerator{response: `{"explanation": {"education": "no score"}}`}
	scorer := NewScorer(stub, zap.NewNop(), 0)

	if _, err := scorer.Score(context.Background(), testProfile(), "job"); err == nil {
		t.Fatal("expected error for missing final_score")
	}
}

func TestScorerPropagatesGeneratorError(t *testing.T) {
	stub := &stubGenerator{err: errors.New("bad status: 500")}
	scorer := NewScorer(stub, zap.NewNop(), 0)

	if _, err := scorer.Score(context.Background(), testProfile(), "job"); err == nil {
		t.Fatal("expected error from generator")
	}
}

func TestScorerPromptAndTemperature(t *testing.T) {
	stub := &stubGenerator{response: `{"final_score": 70, "explanation": {}}`}
	scorer := NewScorer(stub, zap.NewNop(), 0)

	if _, err := scorer.Score(context.Background(), testProfile(), "ML Engineer - Mountain View"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(stub.lastReq.Prompt, "Jane Doe") {
		t.Fatal("expected prompt to contain candidate name")
	}
	if !strings.Contains(stub.lastReq.Prompt, "ML Engineer - Mountain View") {
		t.Fatal("expected prompt to contain job description")
	}
	if !strings.Contains(stub.lastReq.Prompt, "SCORING WEIGHTS") {
		t.Fatal("expected prompt to contain the rubric")
	}

	if stub.lastReq.System != scoreSystemInstruction {
		t.Fatalf("unexpected system instruction: %q", stub.lastReq.System)
	}

	if stub.lastReq.Temperature == nil || *stub.lastReq.Temperature != 0.2 {
		t.Fatalf("expected scoring temperature 0.2, got %v", stub.lastReq.Temperature)
	}
}

func TestScorerCoercesNonStringExplanations(t *testing.T) {
	stub := &stubGenerator{response: `{"final_score": 55, "explanation": {"tenure": 4}}`}
	scorer := NewScorer(stub, zap.NewNop(), 0)

	evaluation, err := scorer.Score(context.Background(), testProfile(), "job")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if evaluation.Breakdown["tenure"] != "4" {
		t.Fatalf("unexpected coerced value: %q", evaluation.Breakdown["tenure"])
	}
}
