package profile

// CompanyUnknown marks a company that could not be derived from the result.
// It is distinct from the empty string: empty means a rule never ran, the
// sentinel means every rule ran and none produced a usable value.
const CompanyUnknown = "N/A"

// Profile holds the structured fields derived from one search result record.
// A profile is built once by Extract and not mutated afterwards.
type Profile struct {
	Name        string `json:"name"`
	Headline    string `json:"headline"`
	Company     string `json:"company"`
	Location    string `json:"location,omitempty"`
	LinkedinURL string `json:"linkedin_url"`
	Snippet     string `json:"snippet"`
	Education   string `json:"education,omitempty"`
	CurrentRole string `json:"current_role,omitempty"`
}
