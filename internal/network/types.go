// Package network holds the shared types, HTML extraction and match
// validation for the professional-network platform. The browser and
// search-API clients live in subpackages and both produce network.Profile
// values through the parsers here.
package network

// Profile is a professional-network profile, possibly partial when it was
// extracted through an auth wall or synthesized from a direct URL.
type Profile struct {
	ProfileURL string       `json:"profile_url"`
	Name       string       `json:"name"`
	Headline   string       `json:"headline,omitempty"`
	Location   string       `json:"location,omitempty"`
	Position   string       `json:"current_position,omitempty"`
	Company    string       `json:"current_company,omitempty"`
	Summary    string       `json:"summary,omitempty"`
	Experience []Experience `json:"experience,omitempty"`
	Education  []Education  `json:"education,omitempty"`
	Skills     []string     `json:"skills,omitempty"`
}

// Experience is one position entry on a profile.
type Experience struct {
	Title    string `json:"title,omitempty"`
	Company  string `json:"company,omitempty"`
	Duration string `json:"duration,omitempty"`
}

// Education is one education entry on a profile.
type Education struct {
	School string `json:"school"`
	Degree string `json:"degree,omitempty"`
}

// SearchResult is one candidate profile URL found by a search, with the
// surrounding result text for validation.
type SearchResult struct {
	ProfileURL string `json:"profile_url"`
	Title      string `json:"title,omitempty"`
	Snippet    string `json:"snippet,omitempty"`
	Position   int    `json:"position"`
}
