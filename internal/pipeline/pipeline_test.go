package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wrenhunt/sourcer/internal/ai"
	"github.com/wrenhunt/sourcer/internal/profile"
)

type fakeResolver struct {
	profiles map[string]*profile.Profile
	hints    []string
	calls    int
}

func (f *fakeResolver) Resolve(_ context.Context, name, jobTitleHint string) *profile.Profile {
	f.calls++
	f.hints = append(f.hints, jobTitleHint)
	return f.profiles[name]
}

type fakeScorer struct {
	scores map[string]float64
	errFor map[string]error
	calls  int
}

func (f *fakeScorer) Score(_ context.Context, p *profile.Profile, _ string) (*ai.Evaluation, error) {
	f.calls++
	if err, ok := f.errFor[p.Name]; ok {
		return nil, err
	}
	return &ai.Evaluation{
		Score:     f.scores[p.Name],
		Breakdown: map[string]string{"experience": "ok"},
	}, nil
}

type fakeComposer struct {
	err   error
	calls int
}

func (f *fakeComposer) Compose(_ context.Context, p *profile.Profile, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("Hello %s", p.Name), nil
}

func testPipeline(resolver *fakeResolver, scorer *fakeScorer, composer *fakeComposer) *Pipeline {
	return New(
		&Config{TopN: 5, SearchInterval: time.Millisecond},
		resolver, scorer, composer, zap.NewNop(),
	)
}

func namedProfiles(names ...string) map[string]*profile.Profile {
	profiles := make(map[string]*profile.Profile, len(names))
	for _, name := range names {
		profiles[name] = &profile.Profile{Name: name, Company: "Acme"}
	}
	return profiles
}

func TestRunNoCandidatesResolved(t *testing.T) {
	resolver := &fakeResolver{profiles: map[string]*profile.Profile{}}
	scorer := &fakeScorer{}
	composer := &fakeComposer{}

	result, err := testPipeline(resolver, scorer, composer).Run(
		context.Background(), "ML Engineer - Acme", []string{"Jane Doe", "John Smith"},
	)
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, 0, result.CandidatesFound)
	assert.Empty(t, result.Candidates)
	assert.NotEmpty(t, result.JobID)

	assert.Equal(t, 2, resolver.calls)
	assert.Zero(t, scorer.calls, "scoring must not run without candidates")
	assert.Zero(t, composer.calls, "outreach must not run without candidates")
}

func TestRunOutreachOnlyForTopN(t *testing.T) {
	names := []string{"c1", "c2", "c3", "c4", "c5", "c6", "c7", "c8"}
	scores := map[string]float64{
		"c1": 10, "c2": 20, "c3": 30, "c4": 40,
		"c5": 50, "c6": 60, "c7": 70, "c8": 80,
	}

	resolver := &fakeResolver{profiles: namedProfiles(names...)}
	scorer := &fakeScorer{scores: scores}
	composer := &fakeComposer{}

	result, err := testPipeline(resolver, scorer, composer).Run(
		context.Background(), "job", names,
	)
	require.NoError(t, err)

	require.Len(t, result.Candidates, 8)
	assert.Equal(t, 8, scorer.calls)
	assert.Equal(t, 5, composer.calls)

	for i, candidate := range result.Candidates {
		if i < 5 {
			require.NotNil(t, candidate.Outreach, "top candidate %d should have outreach", i)
			assert.True(t, candidate.Outreach.Generated)
		} else {
			assert.Nil(t, candidate.Outreach, "candidate %d beyond top-n should have no outreach", i)
		}
	}
}

func TestRunRankingIsDescendingAndStable(t *testing.T) {
	names := []string{"first", "tie-a", "tie-b", "last"}
	scores := map[string]float64{
		"first": 90, "tie-a": 72, "tie-b": 72, "last": 10,
	}

	resolver := &fakeResolver{profiles: namedProfiles(names...)}
	scorer := &fakeScorer{scores: scores}
	composer := &fakeComposer{}

	result, err := testPipeline(resolver, scorer, composer).Run(
		context.Background(), "job", names,
	)
	require.NoError(t, err)

	got := make([]string, 0, len(result.Candidates))
	for _, c := range result.Candidates {
		got = append(got, c.Name)
	}

	// Equal scores keep resolution order.
	assert.Equal(t, []string{"first", "tie-a", "tie-b", "last"}, got)
}

func TestRunScoringFailureRetainsCandidate(t *testing.T) {
	names := []string{"good", "broken"}

	resolver := &fakeResolver{profiles: namedProfiles(names...)}
	scorer := &fakeScorer{
		scores: map[string]float64{"good": 75},
		errFor: map[string]error{"broken": errors.New("bad status: 500")},
	}
	composer := &fakeComposer{}

	result, err := testPipeline(resolver, scorer, composer).Run(
		context.Background(), "job", names,
	)
	require.NoError(t, err)

	require.Len(t, result.Candidates, 2)
	assert.Equal(t, StatusSuccess, result.Status)

	// The failed candidate ranks last with a zero score, not dropped.
	broken := result.Candidates[1]
	assert.Equal(t, "broken", broken.Name)
	assert.Zero(t, broken.Score)
	assert.Equal(t, FitError, broken.FitLevel)
	assert.Contains(t, broken.ScoreBreakdown["error"], "bad status: 500")
}

func TestRunComposeFailureIsNotFatal(t *testing.T) {
	names := []string{"solo"}

	resolver := &fakeResolver{profiles: namedProfiles(names...)}
	scorer := &fakeScorer{scores: map[string]float64{"solo": 85}}
	composer := &fakeComposer{err: errors.New("quota exceeded")}

	result, err := testPipeline(resolver, scorer, composer).Run(
		context.Background(), "job", names,
	)
	require.NoError(t, err)

	require.Len(t, result.Candidates, 1)
	outreach := result.Candidates[0].Outreach
	require.NotNil(t, outreach)
	assert.False(t, outreach.Generated)
	assert.True(t, strings.HasPrefix(outreach.Message, "Error generating message:"))
}

func TestRunPassesJobTitleHint(t *testing.T) {
	resolver := &fakeResolver{profiles: namedProfiles("Jane Doe")}
	scorer := &fakeScorer{scores: map[string]float64{"Jane Doe": 80}}
	composer := &fakeComposer{}

	job := "Software Engineer, ML Research - Windsurf\nLocation: Mountain View"

	_, err := testPipeline(resolver, scorer, composer).Run(
		context.Background(), job, []string{"Jane Doe"},
	)
	require.NoError(t, err)

	require.Len(t, resolver.hints, 1)
	assert.Equal(t, "Software Engineer, ML Research", resolver.hints[0])
}

func TestRunSkipsUnresolvedCandidates(t *testing.T) {
	resolver := &fakeResolver{profiles: namedProfiles("found")}
	scorer := &fakeScorer{scores: map[string]float64{"found": 65}}
	composer := &fakeComposer{}

	result, err := testPipeline(resolver, scorer, composer).Run(
		context.Background(), "job", []string{"found", "missing"},
	)
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, 1, result.CandidatesFound)
	assert.Equal(t, 1, scorer.calls)
}

func TestRunHighlightsAndSummary(t *testing.T) {
	profiles := namedProfiles("Jane Doe")
	profiles["Jane Doe"].Location = "Bangalore, India"

	resolver := &fakeResolver{profiles: profiles}
	scorer := &fakeScorer{scores: map[string]float64{"Jane Doe": 85}}
	composer := &fakeComposer{}

	result, err := testPipeline(resolver, scorer, composer).Run(
		context.Background(), "job", []string{"Jane Doe"},
	)
	require.NoError(t, err)

	outreach := result.Candidates[0].Outreach
	require.NotNil(t, outreach)
	assert.Equal(t, []string{
		"Experience at Acme",
		"Strong technical fit",
		"Located in Bangalore, India",
	}, outreach.Highlights)

	assert.Contains(t, result.Summary, "Excellent fits (80+): 1")
	assert.Contains(t, result.Summary, "Top candidate: Jane Doe (85.0/100)")
}

func TestRunCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resolver := &fakeResolver{profiles: namedProfiles("Jane Doe")}

	_, err := testPipeline(resolver, &fakeScorer{}, &fakeComposer{}).Run(
		ctx, "job", []string{"Jane Doe"},
	)
	assert.Error(t, err)
}
