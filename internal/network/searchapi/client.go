// Package searchapi implements the search-engine fallback for
// professional-network discovery. It finds profile URLs through grounded
// web search and fetches the public pages over plain HTTP, so it works when
// the browser client is unavailable or detected.
package searchapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/seekwell/profile-discovery/internal/network"
	"github.com/seekwell/profile-discovery/internal/ratelimit"
	"github.com/seekwell/profile-discovery/internal/worker"
)

// Config configures the search-API client.
type Config struct {
	APIKey string
	Model  string

	// BaseURL overrides the API base URL. Useful for proxies/testing.
	BaseURL string

	// NetworkHost is the platform host to scope searches to.
	NetworkHost string

	// ProfilePath is the path prefix profile pages live under on
	// NetworkHost. Defaults to "/in/".
	ProfilePath string

	// RequestInterval spaces consecutive searches.
	RequestInterval time.Duration

	// MonthlyQuota caps search calls; 0 means unlimited. The counter is the
	// caller's responsibility to reset on quota renewal.
	MonthlyQuota int
}

// Client performs grounded web searches for profile URLs.
type Client struct {
	client      *genai.Client
	model       string
	networkHost string
	profilePath string
	pacer       *ratelimit.Pacer
	http        *http.Client
}

// New constructs a search-API client.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("GEMINI_MODEL is required")
	}
	if strings.TrimSpace(cfg.NetworkHost) == "" {
		cfg.NetworkHost = "www.linkedin.com"
	}
	if strings.TrimSpace(cfg.ProfilePath) == "" {
		cfg.ProfilePath = "/in/"
	}

	cc := &genai.ClientConfig{
		APIKey:  strings.TrimSpace(cfg.APIKey),
		Backend: genai.BackendGeminiAPI,
	}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		cc.HTTPOptions.BaseURL = strings.TrimSpace(cfg.BaseURL)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}
	return &Client{
		client:      client,
		model:       strings.TrimSpace(cfg.Model),
		networkHost: strings.TrimSpace(cfg.NetworkHost),
		profilePath: strings.TrimSpace(cfg.ProfilePath),
		pacer:       ratelimit.New(cfg.RequestInterval, cfg.MonthlyQuota, 0),
		http:        &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type responseSchema struct {
	ProfileURLs []string `json:"profile_urls"`
}

var outputSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"profile_urls": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
	},
	Required: []string{"profile_urls"},
}

// Search finds candidate profile URLs for the named person. Returns
// ratelimit.ErrBudgetExhausted once the monthly quota is spent.
func (c *Client) Search(ctx context.Context, name, location, company string) ([]network.SearchResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if err := c.pacer.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := c.client.Models.GenerateContent(
		ctx,
		c.model,
		genai.Text(c.buildPrompt(name, location, company)),
		&genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			CandidateCount:   1,
			ResponseMIMEType: "application/json",
			ResponseSchema:   outputSchema,
		},
	)
	if err != nil {
		return nil, classifyErr(err)
	}

	var parsed responseSchema
	if err := json.Unmarshal([]byte(resp.Text()), &parsed); err != nil {
		return nil, fmt.Errorf("searchapi: parse structured json: %w", err)
	}

	marker := c.networkHost + c.profilePath
	seen := make(map[string]bool)
	var out []network.SearchResult
	for _, raw := range parsed.ProfileURLs {
		u := strings.TrimSpace(raw)
		if u == "" || !strings.Contains(u, marker) || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, network.SearchResult{
			ProfileURL: u,
			Position:   len(out) + 1,
		})
	}
	return out, nil
}

func (c *Client) buildPrompt(name, location, company string) string {
	// Keep this prompt public-safe: no secrets, no PII beyond the search
	// terms themselves.
	var b strings.Builder
	b.WriteString("Find public professional profile pages on ")
	b.WriteString(c.networkHost)
	b.WriteString(" for the following person using web search.\n\n")
	fmt.Fprintf(&b, "Name: %s\n", name)
	if location = strings.TrimSpace(location); location != "" {
		fmt.Fprintf(&b, "Location: %s\n", location)
	}
	if company = strings.TrimSpace(company); company != "" {
		fmt.Fprintf(&b, "Company: %s\n", company)
	}
	b.WriteString("\nReturn ONLY a JSON object with key profile_urls: an array of ")
	b.WriteString(c.networkHost)
	b.WriteString(c.profilePath)
	b.WriteString(" URLs, most likely match first, at most 10. Return an empty array if none are found.")
	return b.String()
}

// FetchProfile retrieves and parses a public profile page over plain HTTP.
// authWalled reports whether the platform served an auth wall instead of
// the profile.
func (c *Client) FetchProfile(ctx context.Context, profileURL string) (p network.Profile, authWalled bool, err error) {
	profileURL = strings.TrimSpace(profileURL)
	if profileURL == "" {
		return network.Profile{}, false, fmt.Errorf("profile url is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, profileURL, nil)
	if err != nil {
		return network.Profile{}, false, err
	}
	// Plain library defaults get walled immediately; present as a browser.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.http.Do(req)
	if err != nil {
		return network.Profile{}, false, &worker.TransientError{Err: fmt.Errorf("fetch profile: %w", err)}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return network.Profile{}, false, err
	}
	if resp.StatusCode/100 != 2 {
		err := fmt.Errorf("fetch profile: status %s", resp.Status)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode/100 == 5 {
			return network.Profile{}, false, &worker.TransientError{Err: err}
		}
		return network.Profile{}, false, err
	}

	html := string(body)
	authWalled = network.IsAuthWalled(html)
	p, err = network.ParseProfile(html, profileURL)
	if err != nil {
		return network.Profile{}, authWalled, err
	}
	return p, authWalled, nil
}

// QuotaStatus reports the monthly search budget accounting.
func (c *Client) QuotaStatus() ratelimit.Status {
	return c.pacer.Status()
}

// ResetQuota clears the monthly counter. Called by the operator on quota
// renewal.
func (c *Client) ResetQuota() {
	c.pacer.Reset()
}

func classifyErr(err error) error {
	// Wrap transient failures so the worker pool will retry with backoff.
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == 429 || apiErr.Code/100 == 5 {
			return &worker.TransientError{Err: err}
		}
		return err
	}
	var ne net.Error
	if errors.As(err, &ne) && (ne.Timeout() || ne.Temporary()) {
		return &worker.TransientError{Err: err}
	}
	return err
}
