package codehost

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/seekwell/profile-discovery/internal/ratelimit"
	"github.com/seekwell/profile-discovery/internal/worker"
)

// Config configures a Client.
type Config struct {
	// BaseURL is the platform API root, e.g. "https://api.github.com".
	BaseURL string
	// Token is an optional bearer token; unauthenticated requests work with
	// a much smaller quota.
	Token string
	// RequestInterval spaces consecutive requests. <=0 disables pacing.
	RequestInterval time.Duration
	// RequestTimeout bounds each HTTP request.
	RequestTimeout time.Duration
}

// Client is a minimal HTTP client for the profile and search endpoints used
// by the discovery engine.
type Client struct {
	baseURL *url.URL
	token   string
	pacer   *ratelimit.Pacer
	http    *http.Client
}

// NewClient constructs a client for the code-hosting platform API.
func NewClient(cfg Config) (*Client, error) {
	base, err := parseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: base,
		token:   strings.TrimSpace(cfg.Token),
		pacer:   ratelimit.New(cfg.RequestInterval, 0, 0),
		http:    &http.Client{Timeout: timeout},
	}, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("codehost base URL is required")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse codehost base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("codehost base URL must include a host (got %q)", raw)
	}
	// Ensure the base path ends with a slash so ResolveReference treats it as a directory.
	u.Path = strings.TrimRight(u.Path, "/") + "/"
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

type userResponse struct {
	Login       string `json:"login"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Location    string `json:"location"`
	Company     string `json:"company"`
	Bio         string `json:"bio"`
	Blog        string `json:"blog"`
	PublicRepos int    `json:"public_repos"`
	Followers   int    `json:"followers"`
	HTMLURL     string `json:"html_url"`
}

func (u userResponse) profile() Profile {
	return Profile{
		Username:    strings.TrimSpace(u.Login),
		Name:        strings.TrimSpace(u.Name),
		Email:       strings.TrimSpace(u.Email),
		Location:    strings.TrimSpace(u.Location),
		Company:     strings.TrimSpace(u.Company),
		Bio:         strings.TrimSpace(u.Bio),
		Blog:        strings.TrimSpace(u.Blog),
		PublicRepos: u.PublicRepos,
		Followers:   u.Followers,
		ProfileURL:  strings.TrimSpace(u.HTMLURL),
	}
}

// GetProfile fetches one user by username. Returns ErrNotFound when the
// platform has no such user.
func (c *Client) GetProfile(ctx context.Context, username string) (Profile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return Profile{}, fmt.Errorf("username is required")
	}

	u := c.resolve("users/" + url.PathEscape(username))
	b, err := c.get(ctx, "getProfile", u)
	if err != nil {
		return Profile{}, err
	}

	var out userResponse
	if err := json.Unmarshal(b, &out); err != nil {
		return Profile{}, fmt.Errorf("parse user response: %w", err)
	}
	return out.profile(), nil
}

type searchUsersResponse struct {
	TotalCount int `json:"total_count"`
	Items      []struct {
		Login string `json:"login"`
	} `json:"items"`
}

// SearchByEmail searches user accounts whose public email matches exactly.
// Returns usernames in the platform's relevance order.
func (c *Client) SearchByEmail(ctx context.Context, email string, limit int) ([]string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	q := fmt.Sprintf("%q in:email", email)
	return c.searchUsers(ctx, "searchByEmail", q, limit)
}

// SearchByNameContext searches user accounts by full name, optionally
// narrowed by location and company qualifiers. Results are ordered by
// follower count so the most established accounts surface first.
func (c *Client) SearchByNameContext(ctx context.Context, name, location, company string, limit int) ([]string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	parts := []string{fmt.Sprintf("%q in:name", name)}
	if location = strings.TrimSpace(location); location != "" {
		parts = append(parts, fmt.Sprintf("location:%q", location))
	}
	if company = strings.TrimSpace(company); company != "" {
		parts = append(parts, fmt.Sprintf("company:%q", company))
	}
	return c.searchUsers(ctx, "searchByNameContext", strings.Join(parts, " "), limit)
}

func (c *Client) searchUsers(ctx context.Context, op, query string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 5
	}

	u := c.resolve("search/users")
	q := url.Values{}
	q.Set("q", query)
	q.Set("sort", "followers")
	q.Set("order", "desc")
	q.Set("per_page", fmt.Sprintf("%d", limit))
	u.RawQuery = q.Encode()

	b, err := c.get(ctx, op, u)
	if err != nil {
		return nil, err
	}

	var out searchUsersResponse
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("parse search response: %w", err)
	}
	usernames := make([]string, 0, len(out.Items))
	for _, item := range out.Items {
		if login := strings.TrimSpace(item.Login); login != "" {
			usernames = append(usernames, login)
		}
		if len(usernames) >= limit {
			break
		}
	}
	return usernames, nil
}

type repoResponse struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Language    string    `json:"language"`
	Stars       int       `json:"stargazers_count"`
	Fork        bool      `json:"fork"`
	Topics      []string  `json:"topics"`
	HTMLURL     string    `json:"html_url"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GetRepositories lists a user's public repositories, most recently updated
// first.
func (c *Client) GetRepositories(ctx context.Context, username string, limit int) ([]Repository, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if limit <= 0 {
		limit = 30
	}

	u := c.resolve(fmt.Sprintf("users/%s/repos", url.PathEscape(username)))
	q := url.Values{}
	q.Set("sort", "updated")
	q.Set("per_page", fmt.Sprintf("%d", limit))
	u.RawQuery = q.Encode()

	b, err := c.get(ctx, "getRepositories", u)
	if err != nil {
		return nil, err
	}

	var out []repoResponse
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("parse repos response: %w", err)
	}
	repos := make([]Repository, 0, len(out))
	for _, r := range out {
		repos = append(repos, Repository{
			Name:        strings.TrimSpace(r.Name),
			Description: strings.TrimSpace(r.Description),
			Language:    strings.TrimSpace(r.Language),
			Stars:       r.Stars,
			Fork:        r.Fork,
			Topics:      r.Topics,
			URL:         strings.TrimSpace(r.HTMLURL),
			UpdatedAt:   r.UpdatedAt,
		})
	}
	return repos, nil
}

type rateLimitResponse struct {
	Resources struct {
		Core struct {
			Limit     int   `json:"limit"`
			Remaining int   `json:"remaining"`
			Reset     int64 `json:"reset"`
		} `json:"core"`
	} `json:"resources"`
}

// RateLimitStatus reports the remaining API quota for the current token.
func (c *Client) RateLimitStatus(ctx context.Context) (RateLimitStatus, error) {
	b, err := c.get(ctx, "rateLimitStatus", c.resolve("rate_limit"))
	if err != nil {
		return RateLimitStatus{}, err
	}

	var out rateLimitResponse
	if err := json.Unmarshal(b, &out); err != nil {
		return RateLimitStatus{}, fmt.Errorf("parse rate limit response: %w", err)
	}
	return RateLimitStatus{
		Limit:     out.Resources.Core.Limit,
		Remaining: out.Resources.Core.Remaining,
		ResetAt:   time.Unix(out.Resources.Core.Reset, 0).UTC(),
	}, nil
}

func (c *Client) get(ctx context.Context, op string, u *url.URL) ([]byte, error) {
	if err := c.pacer.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &worker.TransientError{Err: fmt.Errorf("%s: %w", op, err)}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode/100 != 2 {
		apiErr := newAPIError(op, resp, b)
		if apiErr.Transient() {
			return nil, &worker.TransientError{Err: apiErr}
		}
		return nil, apiErr
	}
	return b, nil
}

func (c *Client) resolve(relPath string) *url.URL {
	relPath = strings.TrimPrefix(relPath, "/")
	rel := &url.URL{Path: relPath}
	return c.baseURL.ResolveReference(rel)
}
