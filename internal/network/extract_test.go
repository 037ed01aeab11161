package network_test

import (
	"strings"
	"testing"

	"github.com/seekwell/profile-discovery/internal/network"
)

const profileHTML = `<!DOCTYPE html>
<html>
<head><title>Jane Rivera - Staff Engineer at Initech | ProNet</title></head>
<body>
  <h1 class="text-heading-xlarge">Jane Rivera</h1>
  <div class="text-body-medium break-words">Staff Engineer at Initech</div>
  <span class="text-body-small inline t-black--light break-words">New York, New York, United States</span>
  <div id="about"></div>
  <div class="display-flex"><span class="inline-show-more-text">Distributed systems engineer.</span></div>
  <div id="experience"></div>
  <div class="pvs-list__outer-container">
    <ul>
      <li class="artdeco-list__item">
        <div class="t-bold"><span>Staff Engineer</span></div>
        <div class="t-normal"><span>Initech</span></div>
        <div class="t-black--light"><span>2021 - Present</span></div>
      </li>
      <li class="artdeco-list__item">
        <div class="t-bold"><span>Senior Engineer</span></div>
        <div class="t-normal"><span>Globex</span></div>
        <div class="t-black--light"><span>2017 - 2021</span></div>
      </li>
    </ul>
  </div>
  <div id="education"></div>
  <div class="pvs-list__outer-container">
    <ul>
      <li class="artdeco-list__item">
        <div class="t-bold"><span>State University</span></div>
        <div class="t-normal"><span>BSc Computer Science</span></div>
      </li>
    </ul>
  </div>
  <div id="skills"></div>
  <div class="pvs-list__outer-container">
    <ul>
      <li><div class="t-bold"><span>Go</span></div></li>
      <li><div class="t-bold"><span>Kubernetes</span></div></li>
      <li><div class="t-bold"><span>PostgreSQL</span></div></li>
    </ul>
  </div>
</body>
</html>`

func TestParseProfile(t *testing.T) {
	t.Parallel()

	p, err := network.ParseProfile(profileHTML, "https://www.linkedin.com/in/jriv")
	if err != nil {
		t.Fatalf("parse profile: %v", err)
	}
	if p.Name != "Jane Rivera" {
		t.Fatalf("name=%q", p.Name)
	}
	if p.Headline != "Staff Engineer at Initech" {
		t.Fatalf("headline=%q", p.Headline)
	}
	if p.Location != "New York, New York, United States" {
		t.Fatalf("location=%q", p.Location)
	}
	if p.Summary != "Distributed systems engineer." {
		t.Fatalf("summary=%q", p.Summary)
	}
	if len(p.Experience) != 2 {
		t.Fatalf("experience=%+v", p.Experience)
	}
	if p.Position != "Staff Engineer" || p.Company != "Initech" {
		t.Fatalf("current position=%q company=%q", p.Position, p.Company)
	}
	if len(p.Education) != 1 || p.Education[0].School != "State University" {
		t.Fatalf("education=%+v", p.Education)
	}
	if len(p.Skills) != 3 || p.Skills[0] != "Go" {
		t.Fatalf("skills=%v", p.Skills)
	}
}

func TestParseProfileNameFromTitle(t *testing.T) {
	t.Parallel()

	html := `<html><head><title>Jane Rivera - Staff Engineer | ProNet</title></head><body><p>nothing else</p></body></html>`
	p, err := network.ParseProfile(html, "https://www.linkedin.com/in/jriv")
	if err != nil {
		t.Fatalf("parse profile: %v", err)
	}
	if p.Name != "Jane Rivera" {
		t.Fatalf("name=%q want from title", p.Name)
	}
}

func TestParseProfileNoName(t *testing.T) {
	t.Parallel()

	if _, err := network.ParseProfile(`<html><body><p>empty</p></body></html>`, "u"); err == nil {
		t.Fatal("expected error for nameless page")
	}
}

func TestIsAuthWalled(t *testing.T) {
	t.Parallel()

	walled := `<html><body><div class="authwall">Sign in to view this profile</div></body></html>`
	if !network.IsAuthWalled(walled) {
		t.Fatal("expected auth wall detection")
	}
	if network.IsAuthWalled(profileHTML) {
		t.Fatal("profile page flagged as auth wall")
	}
}

const searchHTML = `<html><body>
  <div class="g" data-hveid="1">
    <a href="/url?q=https://www.linkedin.com/in/jriv&amp;sa=U"><h3>Jane Rivera - Staff Engineer</h3></a>
    <div class="VwiC3b">Staff Engineer at Initech. New York.</div>
  </div>
  <div class="g" data-hveid="2">
    <a href="https://www.linkedin.com/in/jon-rivers"><h3>Jon Rivers</h3></a>
    <div class="VwiC3b">Accountant at Acme.</div>
  </div>
  <div class="g" data-hveid="3">
    <a href="https://example.com/other">Unrelated result</a>
  </div>
  <div class="g" data-hveid="4">
    <a href="https://www.linkedin.com/in/jriv">duplicate link</a>
  </div>
</body></html>`

func TestParseSearchResults(t *testing.T) {
	t.Parallel()

	results, err := network.ParseSearchResults(searchHTML, "www.linkedin.com")
	if err != nil {
		t.Fatalf("parse search results: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %+v", results)
	}
	if results[0].ProfileURL != "https://www.linkedin.com/in/jriv" {
		t.Fatalf("first url=%q", results[0].ProfileURL)
	}
	if results[0].Position != 1 || results[1].Position != 2 {
		t.Fatalf("positions not sequential: %+v", results)
	}
	if !strings.Contains(results[0].Title, "Jane Rivera") {
		t.Fatalf("title=%q", results[0].Title)
	}
	if !strings.Contains(results[0].Snippet, "Initech") {
		t.Fatalf("snippet=%q", results[0].Snippet)
	}
}

func TestPositionFromHeadline(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in          string
		wantPos     string
		wantCompany string
	}{
		{"Staff Engineer at Initech", "Staff Engineer", "Initech"},
		{"CTO @ Acme Corp", "CTO", "Acme Corp"},
		{"Software Developer", "Software Developer", ""},
		{"", "", ""},
	}
	for _, tc := range cases {
		pos, company := network.PositionFromHeadline(tc.in)
		if pos != tc.wantPos || company != tc.wantCompany {
			t.Errorf("PositionFromHeadline(%q)=(%q,%q) want (%q,%q)", tc.in, pos, company, tc.wantPos, tc.wantCompany)
		}
	}
}
