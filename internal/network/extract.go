package network

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Extraction caps. Profiles can carry very long lists; only the head is
// useful for validation.
const (
	maxExperience = 5
	maxEducation  = 3
	maxSkills     = 20
)

var authWallIndicators = []string{
	"authwall",
	"join-form",
	"login-form",
	"sign in to view",
	"join to view",
	"sign up",
}

// IsAuthWalled reports whether the page HTML is an authentication wall
// rather than a profile.
func IsAuthWalled(html string) bool {
	lower := strings.ToLower(html)
	for _, indicator := range authWallIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

// ParseSearchResults extracts profile URLs from a search result page. Links
// whose href does not point at a profile path on networkHost are skipped,
// and duplicates keep their first position.
func ParseSearchResults(html, networkHost string) ([]SearchResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse search page: %w", err)
	}

	marker := networkHost + "/in/"
	seen := make(map[string]bool)
	var out []SearchResult

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = cleanRedirectURL(href)
		if !strings.Contains(href, marker) {
			return
		}
		if seen[href] {
			return
		}
		seen[href] = true

		result := SearchResult{
			ProfileURL: href,
			Position:   len(out) + 1,
		}
		// The surrounding result block carries the title and snippet.
		if parent := sel.Closest("[data-hveid], .g"); parent.Length() > 0 {
			result.Title = strings.TrimSpace(parent.Find("h3").First().Text())
			result.Snippet = strings.TrimSpace(parent.Find("[data-sncf], .VwiC3b").First().Text())
		}
		out = append(out, result)
	})

	return out, nil
}

// cleanRedirectURL unwraps search-engine redirect links of the form
// "/url?q=<target>&...".
func cleanRedirectURL(href string) string {
	if rest, ok := strings.CutPrefix(href, "/url?q="); ok {
		if i := strings.IndexByte(rest, '&'); i >= 0 {
			rest = rest[:i]
		}
		return rest
	}
	return href
}

// Selector candidates per field, in preference order. Markup varies between
// the logged-out and logged-in views, so each field tries several.
var (
	nameSelectors = []string{
		"h1.text-heading-xlarge",
		".pv-text-details__left-panel h1",
		".top-card-layout__title",
		"h1",
	}
	headlineSelectors = []string{
		".text-body-medium.break-words",
		".pv-text-details__left-panel .text-body-medium",
		".top-card-layout__headline",
		".text-body-medium",
	}
	locationSelectors = []string{
		".text-body-small.inline.t-black--light.break-words",
		".pv-text-details__left-panel .text-body-small",
		".top-card-layout__first-subline",
	}
	summarySelectors = []string{
		"#about ~ .display-flex .inline-show-more-text",
		".pv-about-section .pv-about__summary-text",
	}
)

// ParseProfile extracts a profile from page HTML. Returns an error when no
// name can be found, since a nameless profile is useless for validation.
func ParseProfile(html, profileURL string) (Profile, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Profile{}, fmt.Errorf("parse profile page: %w", err)
	}

	p := Profile{ProfileURL: profileURL}

	p.Name = firstText(doc, nameSelectors, 100)
	if p.Name == "" {
		// Page titles format as "Name - Headline | <network>".
		if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
			p.Name = strings.TrimSpace(strings.FieldsFunc(title, func(r rune) bool {
				return r == '-' || r == '|'
			})[0])
		}
	}
	if p.Name == "" {
		return Profile{}, fmt.Errorf("profile page has no name")
	}

	p.Headline = firstText(doc, headlineSelectors, 500)
	p.Location = firstText(doc, locationSelectors, 100)
	p.Summary = firstText(doc, summarySelectors, 5000)

	p.Experience = parseExperience(doc)
	if len(p.Experience) > 0 {
		p.Position = p.Experience[0].Title
		p.Company = p.Experience[0].Company
	}
	p.Education = parseEducation(doc)
	p.Skills = parseSkills(doc)

	if p.Position == "" && p.Headline != "" {
		p.Position, p.Company = PositionFromHeadline(p.Headline)
	}

	return p, nil
}

func firstText(doc *goquery.Document, selectors []string, maxLen int) string {
	for _, selector := range selectors {
		text := strings.TrimSpace(doc.Find(selector).First().Text())
		if text != "" && len(text) < maxLen {
			return text
		}
	}
	return ""
}

func parseExperience(doc *goquery.Document) []Experience {
	items := doc.Find("#experience ~ .pvs-list__outer-container li.artdeco-list__item")
	if items.Length() == 0 {
		items = doc.Find(".experience-section li, .pv-experience-section__list-item")
	}

	var out []Experience
	items.EachWithBreak(func(_ int, item *goquery.Selection) bool {
		e := Experience{
			Title:    strings.TrimSpace(item.Find(".t-bold span, .pv-entity__summary-info h3").First().Text()),
			Company:  strings.TrimSpace(item.Find(".t-normal span, .pv-entity__secondary-title").First().Text()),
			Duration: strings.TrimSpace(item.Find(".t-black--light span, .pv-entity__date-range span").First().Text()),
		}
		if e.Title != "" || e.Company != "" {
			out = append(out, e)
		}
		return len(out) < maxExperience
	})
	return out
}

func parseEducation(doc *goquery.Document) []Education {
	items := doc.Find("#education ~ .pvs-list__outer-container li.artdeco-list__item")
	if items.Length() == 0 {
		items = doc.Find(".education-section li, .pv-education-section__list-item")
	}

	var out []Education
	items.EachWithBreak(func(_ int, item *goquery.Selection) bool {
		e := Education{
			School: strings.TrimSpace(item.Find(".t-bold span, .pv-entity__school-name").First().Text()),
			Degree: strings.TrimSpace(item.Find(".t-normal span, .pv-entity__degree-name span").First().Text()),
		}
		if e.School != "" {
			out = append(out, e)
		}
		return len(out) < maxEducation
	})
	return out
}

func parseSkills(doc *goquery.Document) []string {
	items := doc.Find("#skills ~ .pvs-list__outer-container li .t-bold span")
	if items.Length() == 0 {
		items = doc.Find(".pv-skill-category-entity__name-text")
	}

	var out []string
	seen := make(map[string]bool)
	items.EachWithBreak(func(_ int, item *goquery.Selection) bool {
		skill := strings.TrimSpace(item.Text())
		if skill != "" && len(skill) < 100 && !seen[skill] {
			seen[skill] = true
			out = append(out, skill)
		}
		return len(out) < maxSkills
	})
	return out
}

var headlinePattern = regexp.MustCompile(`(?i)^(.+?)\s+(?:at|@)\s+(.+)$`)

// PositionFromHeadline splits headlines like "Staff Engineer at Initech"
// into position and company. Headlines without an "at" separator are
// returned whole as the position.
func PositionFromHeadline(headline string) (position, company string) {
	headline = strings.TrimSpace(headline)
	if m := headlinePattern.FindStringSubmatch(headline); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}
	return headline, ""
}
