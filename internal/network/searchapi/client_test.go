package searchapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/genai"

	"github.com/seekwell/profile-discovery/internal/worker"
)

type tempNetErr struct{}

func (tempNetErr) Error() string   { return "temp net err" }
func (tempNetErr) Timeout() bool   { return false }
func (tempNetErr) Temporary() bool { return true }

func TestClassifyErr(t *testing.T) {
	tests := []struct {
		name          string
		in            error
		wantTransient bool
	}{
		{name: "nil", in: nil, wantTransient: false},
		{name: "api_429", in: genai.APIError{Code: 429}, wantTransient: true},
		{name: "api_503", in: genai.APIError{Code: 503}, wantTransient: true},
		{name: "api_401", in: genai.APIError{Code: 401}, wantTransient: false},
		{name: "net_temporary", in: tempNetErr{}, wantTransient: true},
		{name: "wrapped_api_429", in: errors.New(genai.APIError{Code: 429}.Error()), wantTransient: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyErr(tt.in)
			var te *worker.TransientError
			isTransient := errors.As(got, &te)
			if isTransient != tt.wantTransient {
				t.Fatalf("transient=%v want=%v (err=%T %v)", isTransient, tt.wantTransient, got, got)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	c := &Client{networkHost: "www.linkedin.com"}
	prompt := c.buildPrompt("Jane Rivera", "New York", "Initech")
	for _, want := range []string{"Jane Rivera", "New York", "Initech", "www.linkedin.com", "profile_urls"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}

	minimal := c.buildPrompt("Jane Rivera", "", "")
	if strings.Contains(minimal, "Location:") || strings.Contains(minimal, "Company:") {
		t.Fatalf("empty qualifiers must be omitted:\n%s", minimal)
	}
}

const walledHTML = `<html><body><div class="authwall"><h1>Jane Rivera</h1>Sign in to view this profile</div></body></html>`

func TestFetchProfileAuthWalled(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("request sent without user agent")
		}
		_, _ = w.Write([]byte(walledHTML))
	}))
	t.Cleanup(srv.Close)

	c := &Client{http: srv.Client()}
	p, authWalled, err := c.FetchProfile(context.Background(), srv.URL+"/in/jriv")
	if err != nil {
		t.Fatalf("fetch profile: %v", err)
	}
	if !authWalled {
		t.Fatal("expected auth wall detection")
	}
	if p.Name != "Jane Rivera" {
		t.Fatalf("name=%q, partial extraction should still work", p.Name)
	}
}

func TestFetchProfileServerErrorTransient(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	c := &Client{http: srv.Client()}
	_, _, err := c.FetchProfile(context.Background(), srv.URL+"/in/jriv")
	var te *worker.TransientError
	if !errors.As(err, &te) {
		t.Fatalf("503 should surface as TransientError, got %v", err)
	}
}
