// Package codehosttest provides an in-process mock of the code-hosting
// platform API for tests.
package codehosttest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
)

// Call records a request made to the mock service.
type Call struct {
	Method string
	Path   string
	Query  string
}

// User is a canned user fixture served by the mock.
type User struct {
	Login       string   `json:"login"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Location    string   `json:"location"`
	Company     string   `json:"company"`
	Bio         string   `json:"bio"`
	Blog        string   `json:"blog"`
	PublicRepos int      `json:"public_repos"`
	Followers   int      `json:"followers"`
	HTMLURL     string   `json:"html_url"`
	Repos       []Repo   `json:"-"`
	SearchTerms []string `json:"-"`
}

// Repo is a canned repository fixture.
type Repo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Language    string   `json:"language"`
	Stars       int      `json:"stargazers_count"`
	Fork        bool     `json:"fork"`
	Topics      []string `json:"topics"`
	HTMLURL     string   `json:"html_url"`
	UpdatedAt   string   `json:"updated_at"`
}

// Server implements a minimal "GitHub-like" users API surface.
type Server struct {
	mu    sync.Mutex
	users map[string]User
	calls []Call

	expectedAuthorization string

	rateLimitRemaining int
	failStatus         int
	failCount          int
}

// New constructs a new mock server.
func New() *Server {
	return &Server{
		users:              make(map[string]User),
		rateLimitRemaining: 5000,
	}
}

// AddUser registers a user fixture. SearchTerms are matched as substrings
// against search queries; a user whose login, name or email appears in the
// query is always matched.
func (s *Server) AddUser(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.HTMLURL == "" {
		u.HTMLURL = "https://github.com/" + u.Login
	}
	s.users[strings.ToLower(u.Login)] = u
}

// RequireBearerToken enforces that requests include an Authorization header
// matching the token. If token is empty, authorization is not enforced.
func (s *Server) RequireBearerToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token = strings.TrimSpace(token)
	if token == "" {
		s.expectedAuthorization = ""
		return
	}
	s.expectedAuthorization = "Bearer " + token
}

// FailNext makes the next n requests fail with the given status code.
func (s *Server) FailNext(status, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failStatus = status
	s.failCount = n
}

// Calls returns a snapshot of calls made to the server.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// Handler returns an http.Handler that serves the mock API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/", s.handleUsers)
	mux.HandleFunc("/search/users", s.handleSearch)
	mux.HandleFunc("/rate_limit", s.handleRateLimit)
	return mux
}

func (s *Server) recordCall(r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery})
}

func (s *Server) intercept(w http.ResponseWriter, r *http.Request) bool {
	s.recordCall(r)

	s.mu.Lock()
	expected := s.expectedAuthorization
	fail := s.failCount > 0
	status := s.failStatus
	if fail {
		s.failCount--
	}
	s.mu.Unlock()

	if expected != "" && r.Header.Get("Authorization") != expected {
		writeJSONError(w, http.StatusUnauthorized, "Requires authentication")
		return true
	}
	if fail {
		writeJSONError(w, status, http.StatusText(status))
		return true
	}
	return false
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	if s.intercept(w, r) {
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/users/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")

	s.mu.Lock()
	u, ok := s.users[strings.ToLower(parts[0])]
	s.mu.Unlock()
	if !ok {
		writeJSONError(w, http.StatusNotFound, "Not Found")
		return
	}

	switch {
	case len(parts) == 1:
		writeJSON(w, u)
	case len(parts) == 2 && parts[1] == "repos":
		limit := len(u.Repos)
		if v := r.URL.Query().Get("per_page"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n < limit {
				limit = n
			}
		}
		writeJSON(w, u.Repos[:limit])
	default:
		writeJSONError(w, http.StatusNotFound, "Not Found")
	}
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.intercept(w, r) {
		return
	}

	query := strings.ToLower(r.URL.Query().Get("q"))

	type item struct {
		Login string `json:"login"`
	}
	var items []item

	s.mu.Lock()
	for _, u := range s.users {
		if s.matchesQuery(u, query) {
			items = append(items, item{Login: u.Login})
		}
	}
	s.mu.Unlock()

	writeJSON(w, map[string]any{
		"total_count": len(items),
		"items":       items,
	})
}

func (s *Server) matchesQuery(u User, query string) bool {
	for _, term := range u.SearchTerms {
		if term != "" && strings.Contains(query, strings.ToLower(term)) {
			return true
		}
	}
	for _, field := range []string{u.Login, u.Name, u.Email} {
		if field != "" && strings.Contains(query, strings.ToLower(field)) {
			return true
		}
	}
	return false
}

func (s *Server) handleRateLimit(w http.ResponseWriter, r *http.Request) {
	if s.intercept(w, r) {
		return
	}

	s.mu.Lock()
	remaining := s.rateLimitRemaining
	s.mu.Unlock()

	writeJSON(w, map[string]any{
		"resources": map[string]any{
			"core": map[string]any{
				"limit":     5000,
				"remaining": remaining,
				"reset":     1700000000,
			},
		},
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		panic(fmt.Sprintf("codehosttest: encode response: %v", err))
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
