package codehost_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/seekwell/profile-discovery/internal/codehost"
	"github.com/seekwell/profile-discovery/internal/codehost/codehosttest"
	"github.com/seekwell/profile-discovery/internal/worker"
)

func newTestClient(t *testing.T, mock *codehosttest.Server, token string) *codehost.Client {
	t.Helper()
	srv := httptest.NewServer(mock.Handler())
	t.Cleanup(srv.Close)

	c, err := codehost.NewClient(codehost.Config{
		BaseURL: srv.URL,
		Token:   token,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func janeFixture() codehosttest.User {
	return codehosttest.User{
		Login:       "jriv99",
		Name:        "Jane Rivera",
		Email:       "jane.rivera@mail.com",
		Location:    "New York, NY",
		Company:     "@initech",
		PublicRepos: 12,
		Followers:   40,
		Repos: []codehosttest.Repo{
			{Name: "go-api", Language: "Go", Stars: 7, UpdatedAt: "2026-01-15T10:00:00Z"},
			{Name: "react-dashboard", Description: "dashboard built with react", Language: "TypeScript", Stars: 3, UpdatedAt: "2025-11-02T10:00:00Z"},
		},
	}
}

func TestGetProfile(t *testing.T) {
	t.Parallel()

	mock := codehosttest.New()
	mock.AddUser(janeFixture())
	c := newTestClient(t, mock, "")

	p, err := c.GetProfile(context.Background(), "jriv99")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if p.Username != "jriv99" || p.Name != "Jane Rivera" {
		t.Fatalf("unexpected profile: %+v", p)
	}
	if p.PublicRepos != 12 || p.Followers != 40 {
		t.Fatalf("unexpected activity counts: %+v", p)
	}
}

func TestGetProfileNotFound(t *testing.T) {
	t.Parallel()

	mock := codehosttest.New()
	c := newTestClient(t, mock, "")

	_, err := c.GetProfile(context.Background(), "ghost")
	if !errors.Is(err, codehost.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetProfileSendsBearerToken(t *testing.T) {
	t.Parallel()

	mock := codehosttest.New()
	mock.AddUser(janeFixture())
	mock.RequireBearerToken("tok-123")
	c := newTestClient(t, mock, "tok-123")

	if _, err := c.GetProfile(context.Background(), "jriv99"); err != nil {
		t.Fatalf("get profile with token: %v", err)
	}

	bad := newTestClient(t, mock, "wrong")
	if _, err := bad.GetProfile(context.Background(), "jriv99"); err == nil {
		t.Fatal("expected auth error with wrong token")
	}
}

func TestSearchByEmail(t *testing.T) {
	t.Parallel()

	mock := codehosttest.New()
	mock.AddUser(janeFixture())
	c := newTestClient(t, mock, "")

	usernames, err := c.SearchByEmail(context.Background(), "jane.rivera@mail.com", 5)
	if err != nil {
		t.Fatalf("search by email: %v", err)
	}
	if len(usernames) != 1 || usernames[0] != "jriv99" {
		t.Fatalf("unexpected results: %v", usernames)
	}
}

func TestSearchByNameContextAddsQualifiers(t *testing.T) {
	t.Parallel()

	mock := codehosttest.New()
	mock.AddUser(janeFixture())
	c := newTestClient(t, mock, "")

	if _, err := c.SearchByNameContext(context.Background(), "Jane Rivera", "New York", "Initech", 5); err != nil {
		t.Fatalf("search by name: %v", err)
	}

	calls := mock.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	q := calls[0].Query
	for _, want := range []string{"in%3Aname", "location%3A", "company%3A", "sort=followers"} {
		if !strings.Contains(q, want) {
			t.Errorf("query %q missing %q", q, want)
		}
	}
}

func TestGetRepositories(t *testing.T) {
	t.Parallel()

	mock := codehosttest.New()
	mock.AddUser(janeFixture())
	c := newTestClient(t, mock, "")

	repos, err := c.GetRepositories(context.Background(), "jriv99", 10)
	if err != nil {
		t.Fatalf("get repositories: %v", err)
	}
	if len(repos) != 2 {
		t.Fatalf("expected 2 repos, got %d", len(repos))
	}
	if repos[0].Name != "go-api" || repos[0].Language != "Go" || repos[0].Stars != 7 {
		t.Fatalf("unexpected repo: %+v", repos[0])
	}
}

func TestRateLimitStatus(t *testing.T) {
	t.Parallel()

	mock := codehosttest.New()
	c := newTestClient(t, mock, "")

	status, err := c.RateLimitStatus(context.Background())
	if err != nil {
		t.Fatalf("rate limit status: %v", err)
	}
	if status.Limit != 5000 || status.Remaining != 5000 {
		t.Fatalf("unexpected status: %+v", status)
	}
	if status.ResetAt.IsZero() {
		t.Fatal("reset time must be set")
	}
}

func TestServerErrorsAreTransient(t *testing.T) {
	t.Parallel()

	mock := codehosttest.New()
	mock.AddUser(janeFixture())
	mock.FailNext(503, 1)
	c := newTestClient(t, mock, "")

	_, err := c.GetProfile(context.Background(), "jriv99")
	if err == nil {
		t.Fatal("expected error")
	}
	var te *worker.TransientError
	if !errors.As(err, &te) {
		t.Fatalf("503 should surface as TransientError, got %T: %v", err, err)
	}
}
