package codehost

import (
	"strings"

	"github.com/seekwell/profile-discovery/internal/identity"
)

// ValidateMatch scores how well a platform profile matches the candidate
// identity. Scoring is additive: each signal that fires contributes its
// weight and a human-readable reason, and the total is capped at 1.0.
func ValidateMatch(p Profile, cand identity.Candidate, w Weights) (float64, []string) {
	var score float64
	var reasons []string

	email := strings.ToLower(strings.TrimSpace(cand.Email))
	if email != "" && strings.EqualFold(strings.TrimSpace(p.Email), email) {
		score += w.EmailExact
		reasons = append(reasons, "public email matches exactly")
	}

	candName := strings.ToLower(strings.TrimSpace(cand.Name))
	profName := strings.ToLower(strings.TrimSpace(p.Name))
	if candName != "" && profName != "" {
		switch {
		case strings.Contains(profName, candName) || strings.Contains(candName, profName):
			score += w.NameContained
			reasons = append(reasons, "display name contains candidate name")
		case anyWordOverlap(candName, profName):
			score += w.NamePartial
			reasons = append(reasons, "display name shares a name word")
		}
	}

	if loc := strings.ToLower(strings.TrimSpace(cand.Location)); loc != "" {
		if profLoc := strings.ToLower(strings.TrimSpace(p.Location)); profLoc != "" {
			if strings.Contains(profLoc, loc) || strings.Contains(loc, profLoc) {
				score += w.Location
				reasons = append(reasons, "location matches")
			}
		}
	}

	if employer := strings.ToLower(cand.PrimaryEmployer()); employer != "" {
		profCompany := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(p.Company), "@")))
		if profCompany != "" && (strings.Contains(profCompany, employer) || strings.Contains(employer, profCompany)) {
			score += w.Company
			reasons = append(reasons, "company matches employer")
		}
	}

	if p.PublicRepos > w.MinRepos {
		score += w.ActivityRepos
		reasons = append(reasons, "active account with public repositories")
	}
	if p.Followers > w.MinFollowers {
		score += w.ActivityFollows
		reasons = append(reasons, "established account with followers")
	}

	if score > 1.0 {
		score = 1.0
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "Limited match evidence")
	}
	return score, reasons
}

func anyWordOverlap(a, b string) bool {
	bWords := strings.Fields(b)
	for _, aw := range strings.Fields(a) {
		if len(aw) < 2 {
			continue
		}
		for _, bw := range bWords {
			if aw == bw {
				return true
			}
		}
	}
	return false
}
