package network

import (
	"fmt"
	"strings"

	"github.com/seekwell/profile-discovery/internal/identity"
)

// Weights are the additive scoring weights used by Validate. Browser
// extraction and search-API results carry different evidence, so each
// client has its own default set.
type Weights struct {
	NameContained float64
	NamePartial   float64
	Location      float64
	Position      float64
	Company       float64

	// Skills scoring: each overlapping skill adds SkillPer, capped at
	// SkillMax.
	SkillPer float64
	SkillMax float64
}

// BrowserWeights returns the weights for fully extracted profiles.
func BrowserWeights() Weights {
	return Weights{
		NameContained: 0.40,
		NamePartial:   0.20,
		Location:      0.20,
		Position:      0.25,
		Company:       0.25,
		SkillPer:      0.05,
		SkillMax:      0.20,
	}
}

// SearchWeights returns the weights for search-API results, where skills
// evidence comes from headline text and is weighted more heavily per hit.
func SearchWeights() Weights {
	return Weights{
		NameContained: 0.40,
		NamePartial:   0.20,
		Location:      0.30,
		Position:      0.30,
		SkillPer:      0.10,
		SkillMax:      0.20,
	}
}

// Validate scores how well a network profile matches the candidate
// identity. Scoring is additive, capped at 1.0, with one reason per fired
// signal.
func Validate(p Profile, cand identity.Candidate, w Weights) (float64, []string) {
	var score float64
	var reasons []string

	candName := strings.ToLower(strings.TrimSpace(cand.Name))
	profName := strings.ToLower(strings.TrimSpace(p.Name))
	if candName != "" && profName != "" {
		switch {
		case strings.Contains(profName, candName) || strings.Contains(candName, profName):
			score += w.NameContained
			reasons = append(reasons, "Name matches")
		case anyWordIn(candName, profName):
			score += w.NamePartial
			reasons = append(reasons, "Partial name match")
		}
	}

	if loc := strings.ToLower(strings.TrimSpace(cand.Location)); loc != "" {
		profLoc := strings.ToLower(strings.TrimSpace(p.Location))
		if profLoc != "" && (strings.Contains(profLoc, loc) || strings.Contains(loc, profLoc)) {
			score += w.Location
			reasons = append(reasons, "Location matches")
		}
	}

	if profPos := strings.ToLower(strings.TrimSpace(p.Position)); profPos != "" {
		for _, title := range cand.Titles {
			t := strings.ToLower(strings.TrimSpace(title))
			if t != "" && (strings.Contains(profPos, t) || strings.Contains(t, profPos)) {
				score += w.Position
				reasons = append(reasons, "Position matches")
				break
			}
		}
	}

	if profCompany := strings.ToLower(strings.TrimSpace(p.Company)); profCompany != "" {
		for _, employer := range cand.Employers {
			e := strings.ToLower(strings.TrimSpace(employer))
			if e != "" && (strings.Contains(profCompany, e) || strings.Contains(e, profCompany)) {
				score += w.Company
				reasons = append(reasons, "Company matches")
				break
			}
		}
	}

	if n := skillOverlap(p.Skills, cand.Skills); n > 0 {
		add := float64(n) * w.SkillPer
		if add > w.SkillMax {
			add = w.SkillMax
		}
		score += add
		reasons = append(reasons, fmt.Sprintf("%d skills match", n))
	}

	if score > 1.0 {
		score = 1.0
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "Limited match evidence")
	}
	return score, reasons
}

func anyWordIn(name, haystack string) bool {
	for _, word := range strings.Fields(name) {
		if len(word) < 2 {
			continue
		}
		if strings.Contains(haystack, word) {
			return true
		}
	}
	return false
}

func skillOverlap(profileSkills, candSkills []string) int {
	if len(profileSkills) == 0 || len(candSkills) == 0 {
		return 0
	}
	set := make(map[string]bool, len(profileSkills))
	for _, s := range profileSkills {
		set[strings.ToLower(strings.TrimSpace(s))] = true
	}
	n := 0
	for _, s := range candSkills {
		if set[strings.ToLower(strings.TrimSpace(s))] {
			n++
		}
	}
	return n
}
