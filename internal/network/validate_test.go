package network_test

import (
	"math"
	"slices"
	"testing"

	"github.com/seekwell/profile-discovery/internal/identity"
	"github.com/seekwell/profile-discovery/internal/network"
)

func almost(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestValidateFullMatch(t *testing.T) {
	t.Parallel()

	p := network.Profile{
		Name:     "Jane Rivera",
		Location: "New York, New York",
		Position: "Staff Engineer",
		Company:  "Initech",
		Skills:   []string{"Go", "Kubernetes", "PostgreSQL"},
	}
	cand := identity.Candidate{
		Name:      "Jane Rivera",
		Location:  "New York",
		Titles:    []string{"Staff Engineer"},
		Employers: []string{"Initech"},
		Skills:    []string{"go", "kubernetes"},
	}

	score, reasons := network.Validate(p, cand, network.BrowserWeights())
	// name 0.40 + location 0.20 + position 0.25 + company 0.25 + 2 skills 0.10, capped.
	if score != 1.0 {
		t.Fatalf("score=%v want 1.0", score)
	}
	if len(reasons) != 5 {
		t.Fatalf("reasons=%v", reasons)
	}
	if !slices.Contains(reasons, "2 skills match") {
		t.Fatalf("reasons=%v missing skills reason", reasons)
	}
}

func TestValidateSkillCap(t *testing.T) {
	t.Parallel()

	p := network.Profile{
		Name:   "Someone Else",
		Skills: []string{"a", "b", "c", "d", "e", "f"},
	}
	cand := identity.Candidate{
		Name:   "Jane Rivera",
		Skills: []string{"a", "b", "c", "d", "e", "f"},
	}

	score, _ := network.Validate(p, cand, network.BrowserWeights())
	// 6 skills x 0.05 = 0.30, capped at 0.20.
	if !almost(score, 0.20) {
		t.Fatalf("score=%v want 0.20 (skill cap)", score)
	}
}

func TestValidateSearchWeights(t *testing.T) {
	t.Parallel()

	p := network.Profile{
		Name:     "Jane Rivera",
		Location: "New York",
	}
	cand := identity.Candidate{
		Name:     "Jane Rivera",
		Location: "new york",
	}

	score, _ := network.Validate(p, cand, network.SearchWeights())
	if !almost(score, 0.70) {
		t.Fatalf("score=%v want 0.70 (name 0.40 + location 0.30)", score)
	}
}

func TestValidateNoEvidence(t *testing.T) {
	t.Parallel()

	score, reasons := network.Validate(network.Profile{Name: "Bob"}, identity.Candidate{Name: "Jane Rivera"}, network.BrowserWeights())
	if score != 0 {
		t.Fatalf("score=%v want 0", score)
	}
	if !slices.Equal(reasons, []string{"Limited match evidence"}) {
		t.Fatalf("reasons=%v", reasons)
	}
}
