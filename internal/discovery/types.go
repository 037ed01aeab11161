package discovery

import (
	"github.com/seekwell/profile-discovery/internal/codehost"
	"github.com/seekwell/profile-discovery/internal/network"
)

// CodeHostMatch is one scored code-host profile. Confidence and reasoning
// are computed once at creation and never recomputed.
type CodeHostMatch struct {
	Profile      codehost.Profile       `json:"profile"`
	Confidence   float64                `json:"confidence"`
	Reasoning    string                 `json:"reasoning"`
	Strategy     Strategy               `json:"discovery_strategy"`
	Repositories []codehost.Repository  `json:"repositories,omitempty"`
	Analysis     *codehost.RepoAnalysis `json:"repository_analysis,omitempty"`
}

// NetworkMatch is one scored professional-network profile.
type NetworkMatch struct {
	Profile    network.Profile `json:"profile"`
	Confidence float64         `json:"confidence"`
	Reasoning  string          `json:"reasoning"`
	Strategy   Strategy        `json:"discovery_strategy"`
}

// Metadata describes how a discovery run went.
type Metadata struct {
	CacheHit       bool     `json:"cache_hit"`
	ExternalCalls  int      `json:"external_calls"`
	StrategiesUsed []string `json:"strategies_used,omitempty"`
	CodeHostTimeMS int64    `json:"code_host_time_ms"`
	NetworkTimeMS  int64    `json:"network_time_ms"`
	Errors         []string `json:"errors_encountered,omitempty"`
}

// Response is the full discovery result returned to the caller and stored
// verbatim in the cache.
type Response struct {
	Success         bool            `json:"success"`
	CodeHostMatches []CodeHostMatch `json:"code_host_matches"`
	NetworkMatches  []NetworkMatch  `json:"network_matches"`
	Metadata        Metadata        `json:"metadata"`
	TotalTimeMS     int64           `json:"total_time_ms"`
	ErrorMessage    string          `json:"error_message,omitempty"`
}
