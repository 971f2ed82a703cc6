package profile

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/wrenhunt/sourcer/internal/search"
)

const (
	defaultDomain  = "linkedin.com"
	defaultResults = 5
)

// Searcher issues one free-text query against the search collaborator.
type Searcher interface {
	Search(ctx context.Context, query string, num int) ([]*search.Result, error)
}

// Resolver matches a candidate name to one public profile search result and
// extracts a structured profile from it.
type Resolver struct {
	searcher Searcher
	domain   string
	results  int
	logger   *zap.Logger
}

func NewResolver(searcher Searcher, logger *zap.Logger) *Resolver {
	return &Resolver{
		searcher: searcher,
		domain:   defaultDomain,
		results:  defaultResults,
		logger:   logger,
	}
}

// WithDomain overrides the professional network domain used in queries.
func (r *Resolver) WithDomain(domain string) *Resolver {
	if domain = strings.TrimSpace(domain); domain != "" {
		r.domain = domain
	}
	return r
}

// Resolve finds the best matching search result for the candidate name and
// extracts a profile from it. It returns nil when no profile can be found.
// Collaborator failures are logged and treated as "no profile found".
func (r *Resolver) Resolve(ctx context.Context, name, jobTitleHint string) *Profile {
	exactQuery := fmt.Sprintf("%q site:%s/in", name, r.domain)

	results, err := r.searcher.Search(ctx, exactQuery, r.results)
	if err != nil {
		r.logger.Warn("search failed",
			zap.String("candidate", name),
			zap.Error(err),
		)
		return nil
	}

	target := matchByTitle(results, name)

	// No exact match: retry with the job title hint narrowing the query.
	var fallbackResults []*search.Result
	if target == nil && jobTitleHint != "" {
		fallbackQuery := fmt.Sprintf("%q %q site:%s/in", name, jobTitleHint, r.domain)

		fallbackResults, err = r.searcher.Search(ctx, fallbackQuery, r.results)
		if err != nil {
			r.logger.Warn("fallback search failed",
				zap.String("candidate", name),
				zap.Error(err),
			)
			fallbackResults = nil
		}

		target = matchByTitle(fallbackResults, name)
	}

	// Still nothing: take the first record of whichever set is non-empty,
	// preferring the original query.
	if target == nil {
		switch {
		case len(results) > 0:
			target = results[0]
		case len(fallbackResults) > 0:
			target = fallbackResults[0]
		default:
			r.logger.Info("no profile found", zap.String("candidate", name))
			return nil
		}
	}

	profile := Extract(target)

	r.logger.Debug("resolved profile",
		zap.String("candidate", name),
		zap.String("company", profile.Company),
		zap.String("url", profile.LinkedinURL),
	)

	return profile
}

// matchByTitle returns the first result whose title contains the candidate
// name, case-insensitively.
func matchByTitle(results []*search.Result, name string) *search.Result {
	lowered := strings.ToLower(name)
	for _, result := range results {
		if strings.Contains(strings.ToLower(result.Title), lowered) {
			return result
		}
	}
	return nil
}
