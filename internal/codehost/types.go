// Package codehost implements the REST client and match validation for the
// code-hosting platform.
package codehost

import "time"

// Profile is a platform user profile.
type Profile struct {
	Username    string `json:"username"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Location    string `json:"location"`
	Company     string `json:"company"`
	Bio         string `json:"bio"`
	Blog        string `json:"blog"`
	PublicRepos int    `json:"public_repos"`
	Followers   int    `json:"followers"`
	ProfileURL  string `json:"profile_url"`
}

// Repository is one public repository owned by a profile.
type Repository struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Language    string    `json:"language"`
	Stars       int       `json:"stars"`
	Fork        bool      `json:"fork"`
	Topics      []string  `json:"topics,omitempty"`
	URL         string    `json:"url"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RepoAnalysis summarizes a profile's repositories.
type RepoAnalysis struct {
	TotalRepos   int            `json:"total_repos"`
	TotalStars   int            `json:"total_stars"`
	Languages    map[string]int `json:"languages"`
	TopLanguages []string       `json:"top_languages"`
	Frameworks   []string       `json:"frameworks"`
}

// RateLimitStatus is the platform's view of the caller's remaining quota.
type RateLimitStatus struct {
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
}

// Weights are the additive scoring weights used by ValidateMatch. The zero
// value scores nothing; use DefaultWeights.
type Weights struct {
	EmailExact      float64
	NameContained   float64
	NamePartial     float64
	Location        float64
	Company         float64
	ActivityRepos   float64
	ActivityFollows float64

	// Activity thresholds.
	MinRepos     int
	MinFollowers int
}

// DefaultWeights returns the standard scoring weights.
func DefaultWeights() Weights {
	return Weights{
		EmailExact:      0.40,
		NameContained:   0.30,
		NamePartial:     0.20,
		Location:        0.20,
		Company:         0.20,
		ActivityRepos:   0.10,
		ActivityFollows: 0.10,
		MinRepos:        5,
		MinFollowers:    10,
	}
}
