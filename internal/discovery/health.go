package discovery

import (
	"context"
	"fmt"

	"github.com/seekwell/profile-discovery/internal/codehost"
	"github.com/seekwell/profile-discovery/internal/ratelimit"
)

// Health reports the state of every external dependency the orchestrator
// can reach. Absent clients are omitted rather than reported unhealthy.
type Health struct {
	CodeHostRateLimit *codehost.RateLimitStatus `json:"code_host_rate_limit,omitempty"`
	SearchQuota       *ratelimit.Status         `json:"search_quota,omitempty"`
	CacheOK           *bool                     `json:"cache_ok,omitempty"`
	BrowserSession    string                    `json:"browser_session,omitempty"`
	Errors            []string                  `json:"errors,omitempty"`
}

// Optional capabilities the concrete clients expose beyond the discovery
// interfaces. Checked by assertion so fakes stay small.
type rateLimitReporter interface {
	RateLimitStatus(ctx context.Context) (codehost.RateLimitStatus, error)
}

type quotaReporter interface {
	QuotaStatus() ratelimit.Status
}

type sessionReporter interface {
	SessionState() string
}

type pinger interface {
	Ping(ctx context.Context) error
}

// CheckHealth probes the configured clients and the cache. It never fails;
// unreachable dependencies land in Health.Errors.
func (o *Orchestrator) CheckHealth(ctx context.Context) Health {
	var h Health

	if r, ok := o.clients.CodeHost.(rateLimitReporter); ok {
		status, err := r.RateLimitStatus(ctx)
		if err != nil {
			h.Errors = append(h.Errors, fmt.Sprintf("code_host rate limit: %v", err))
		} else {
			h.CodeHostRateLimit = &status
		}
	}

	if q, ok := o.clients.NetworkSearch.(quotaReporter); ok {
		status := q.QuotaStatus()
		h.SearchQuota = &status
	}

	if s, ok := o.clients.Browser.(sessionReporter); ok {
		h.BrowserSession = s.SessionState()
	}

	if p, ok := o.store.(pinger); ok {
		err := p.Ping(ctx)
		healthy := err == nil
		h.CacheOK = &healthy
		if err != nil {
			h.Errors = append(h.Errors, fmt.Sprintf("cache: %v", err))
		}
	}

	return h
}
