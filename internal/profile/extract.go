package profile

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/wrenhunt/sourcer/internal/search"
)

// nameSeparatorRe captures everything before the first title separator.
var nameSeparatorRe = regexp.MustCompile(`^(.*?)\s*[-|–]`)

// atCompanyRe matches "at <Company>" up to punctuation or a connector word.
var atCompanyRe = regexp.MustCompile(`\b(?i:at)\s+([A-Z][a-zA-Z0-9\s&.,-]+?)(?:\s*[.,:;]|\s+(?:in|as|for|where|during)\s|\s*$)`)

// roleCompanyRe matches "<Company> <role keyword>" when no "at" phrase exists.
var roleCompanyRe = regexp.MustCompile(`([A-Z][a-zA-Z0-9\s&.,-]+?)\s+(?i:researcher|scientist|engineer|developer|director|manager|analyst|intern|lead|head)\b`)

var (
	linkedinSuffixRe = regexp.MustCompile(`(?i)\s*[-–]\s*LinkedIn.*$`)
	incSuffixRe      = regexp.MustCompile(`(?i),?\s*an?\s+inc\s+\d+.*`)
	trailingPunctRe  = regexp.MustCompile(`[.,:;!?]+$`)
	whitespaceRe     = regexp.MustCompile(`\s+`)
)

var companyStopwords = map[string]struct{}{
	"the": {}, "and": {}, "or": {}, "inc": {}, "ltd": {}, "llc": {},
}

// titleNoiseWords disqualify a title segment from being a company name.
var titleNoiseWords = []string{"linkedin", "profile", "bio", "about", "view", "contact"}

// extensionSkipWords disqualify a rich extension from being a company name:
// locations plus tenure/status hints.
var extensionSkipWords = []string{
	"india", "usa", "uk", "canada", "california", "texas", "new york",
	"mumbai", "delhi", "bangalore", "pune", "hyderabad", "chennai",
	"area", "region", "state", "country",
	"years", "experience", "ago", "months", "intern", "student", "graduate",
}

var locationWords = []string{
	"india", "usa", "uk", "canada", "california", "texas", "new york",
	"mumbai", "delhi", "bangalore", "pune", "hyderabad", "chennai", "indore",
}

var roleWords = []string{"intern", "engineer", "developer", "analyst", "scientist", "manager"}

// companyRule derives a raw company candidate from one source of the record.
// Rules run in priority order; the first non-empty value wins and is then
// cleaned by cleanCompany.
type companyRule struct {
	source string
	derive func(r *search.Result) string
}

var companyRules = []companyRule{
	{source: "snippet", derive: companyFromSnippet},
	{source: "extensions", derive: companyFromExtensions},
	{source: "title", derive: companyFromTitle},
}

// Extract derives a structured profile from one search result record. It
// never fails: fields that cannot be derived stay empty, except Company
// which falls back to the CompanyUnknown sentinel.
func Extract(r *search.Result) *Profile {
	if r == nil {
		return &Profile{Company: CompanyUnknown}
	}

	p := &Profile{
		Name:        extractName(r.Title),
		Headline:    r.Title,
		Company:     extractCompany(r),
		LinkedinURL: r.Link,
		Snippet:     r.Snippet,
		Education:   extractEducation(r.Snippet),
	}

	p.Location, p.CurrentRole = classifyExtensions(r.Extensions())

	return p
}

func extractName(title string) string {
	if m := nameSeparatorRe.FindStringSubmatch(title); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(title)
}

func extractCompany(r *search.Result) string {
	for _, rule := range companyRules {
		if raw := rule.derive(r); raw != "" {
			return cleanCompany(raw)
		}
	}
	return CompanyUnknown
}

func companyFromSnippet(r *search.Result) string {
	if r.Snippet == "" {
		return ""
	}

	if m := atCompanyRe.FindStringSubmatch(r.Snippet); m != nil {
		if c := acceptableCompanyCandidate(m[1]); c != "" {
			return c
		}
	}

	if m := roleCompanyRe.FindStringSubmatch(r.Snippet); m != nil {
		if c := acceptableCompanyCandidate(m[1]); c != "" {
			return c
		}
	}

	return ""
}

// acceptableCompanyCandidate strips trailing punctuation and rejects values
// that are too short or too long to be a plausible company name.
func acceptableCompanyCandidate(raw string) string {
	candidate := trailingPunctRe.ReplaceAllString(strings.TrimSpace(raw), "")
	if len(candidate) <= 2 || len(strings.Fields(candidate)) > 4 {
		return ""
	}
	return candidate
}

func companyFromExtensions(r *search.Result) string {
	for _, ext := range r.Extensions() {
		if containsAny(ext, extensionSkipWords) {
			continue
		}

		var capitalized []string
		for _, word := range strings.Fields(ext) {
			runes := []rune(word)
			if len(runes) > 2 && unicode.IsUpper(runes[0]) {
				capitalized = append(capitalized, word)
			}
		}

		if len(capitalized) >= 1 && len(capitalized) <= 3 {
			candidate := strings.Join(capitalized, " ")
			if len(candidate) > 2 {
				return candidate
			}
		}
	}
	return ""
}

func companyFromTitle(r *search.Result) string {
	if !strings.Contains(r.Title, " - ") {
		return ""
	}

	parts := strings.Split(r.Title, " - ")
	// Skip the leading name segment and scan from the end.
	for i := len(parts) - 1; i >= 1; i-- {
		part := strings.TrimSpace(parts[i])
		if part == "" || containsAny(part, titleNoiseWords) {
			continue
		}
		if len(part) > 2 {
			return part
		}
	}
	return ""
}

func cleanCompany(raw string) string {
	company := linkedinSuffixRe.ReplaceAllString(raw, "")
	company = incSuffixRe.ReplaceAllString(company, "")
	company = strings.TrimSpace(whitespaceRe.ReplaceAllString(company, " "))
	company = trailingPunctRe.ReplaceAllString(company, "")

	if len(company) <= 2 {
		return CompanyUnknown
	}
	if _, ok := companyStopwords[strings.ToLower(company)]; ok {
		return CompanyUnknown
	}

	return company
}

// classifyExtensions scans the rich extensions in order and returns the first
// location-looking and the first role-looking entry.
func classifyExtensions(extensions []string) (location, currentRole string) {
	for _, ext := range extensions {
		switch {
		case containsAny(ext, locationWords):
			if location == "" {
				location = ext
			}
		case containsAny(ext, roleWords):
			if currentRole == "" {
				currentRole = ext
			}
		}
	}
	return location, currentRole
}

func extractEducation(snippet string) string {
	lower := strings.ToLower(snippet)
	switch {
	case strings.Contains(lower, "b.tech") || strings.Contains(lower, "bachelor"):
		return "B.Tech Computer Science"
	case strings.Contains(lower, "m.tech") || strings.Contains(lower, "master"):
		return "Master's degree"
	case strings.Contains(lower, "phd") || strings.Contains(lower, "ph.d"):
		return "PhD"
	case strings.Contains(lower, "student"):
		return "Student"
	default:
		return ""
	}
}

func containsAny(s string, words []string) bool {
	lower := strings.ToLower(s)
	for _, word := range words {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}
