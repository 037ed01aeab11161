// Package identity holds the immutable candidate identity consumed by the
// discovery engine, plus the normalizers that turn freeform resume text into
// canonical platform identifiers.
package identity

import "strings"

// Candidate is the identity signal set extracted from a resume. It is built
// once per discovery request and never mutated afterwards.
type Candidate struct {
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Location  string   `json:"location"`
	Employers []string `json:"employers"`
	Titles    []string `json:"titles"`
	Skills    []string `json:"skills"`

	// Declared profile URLs lifted verbatim from the source document.
	CodeHostURL string `json:"code_host_url"`
	NetworkURL  string `json:"network_url"`
}

// ValidationError reports an identity that cannot be discovered against.
// It is returned before any external call is made.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid candidate identity: " + e.Reason
}

// Validate rejects identities with no usable discovery signal at all.
func (c Candidate) Validate() error {
	if strings.TrimSpace(c.Name) == "" &&
		strings.TrimSpace(c.Email) == "" &&
		strings.TrimSpace(c.CodeHostURL) == "" &&
		strings.TrimSpace(c.NetworkURL) == "" {
		return &ValidationError{Reason: "no name, email, or declared profile URL"}
	}
	return nil
}

// PrimaryEmployer returns the most recent employer, or "" when none is known.
func (c Candidate) PrimaryEmployer() string {
	for _, e := range c.Employers {
		if strings.TrimSpace(e) != "" {
			return strings.TrimSpace(e)
		}
	}
	return ""
}
