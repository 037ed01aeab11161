// Package discovery coordinates profile discovery across the code-hosting
// and professional-network platforms: strategy ordering, validation,
// deduplication, ranking and caching.
package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seekwell/profile-discovery/internal/cache"
	"github.com/seekwell/profile-discovery/internal/codehost"
	"github.com/seekwell/profile-discovery/internal/config"
	"github.com/seekwell/profile-discovery/internal/identity"
	"github.com/seekwell/profile-discovery/internal/match"
	"github.com/seekwell/profile-discovery/internal/network"
	"github.com/seekwell/profile-discovery/internal/ratelimit"
	"github.com/seekwell/profile-discovery/internal/redact"
	"github.com/seekwell/profile-discovery/internal/worker"
)

// CodeHostClient is the code-hosting platform surface the orchestrator
// needs.
type CodeHostClient interface {
	GetProfile(ctx context.Context, username string) (codehost.Profile, error)
	SearchByEmail(ctx context.Context, email string, limit int) ([]string, error)
	SearchByNameContext(ctx context.Context, name, location, company string, limit int) ([]string, error)
	GetRepositories(ctx context.Context, username string, limit int) ([]codehost.Repository, error)
}

// NetworkBrowser is the browser-based professional-network surface.
type NetworkBrowser interface {
	Search(ctx context.Context, name, location, company string) ([]network.SearchResult, error)
	ExtractProfile(ctx context.Context, profileURL string) (network.Profile, bool, error)
}

// NetworkSearcher is the lighter-weight search-API fallback surface.
type NetworkSearcher interface {
	Search(ctx context.Context, name, location, company string) ([]network.SearchResult, error)
	FetchProfile(ctx context.Context, profileURL string) (network.Profile, bool, error)
}

// CodeHostSearcher locates code-host profile URLs through an external
// search engine. Optional; the strategy is skipped when absent.
type CodeHostSearcher interface {
	Search(ctx context.Context, name, location, company string) ([]network.SearchResult, error)
}

// Clients bundles the platform clients an Orchestrator drives. CodeHost is
// required when code-host search is enabled; Browser and NetworkSearch
// form the network fallback chain.
type Clients struct {
	CodeHost       CodeHostClient
	Browser        NetworkBrowser
	NetworkSearch  NetworkSearcher
	CodeHostSearch CodeHostSearcher
}

// Orchestrator runs discovery requests end to end.
type Orchestrator struct {
	clients     Clients
	store       cache.Store
	cfg         config.Discovery
	networkHost string

	codeHostWeights codehost.Weights
	browserWeights  network.Weights
	searchWeights   network.Weights
}

// New constructs an Orchestrator. A nil store disables caching.
func New(clients Clients, store cache.Store, cfg config.Discovery, networkHost string) *Orchestrator {
	if store == nil {
		store = cache.Noop{}
	}
	if networkHost == "" {
		networkHost = "www.linkedin.com"
	}
	return &Orchestrator{
		clients:         clients,
		store:           store,
		cfg:             cfg,
		networkHost:     networkHost,
		codeHostWeights: codehost.DefaultWeights(),
		browserWeights:  network.BrowserWeights(),
		searchWeights:   network.SearchWeights(),
	}
}

// runState accumulates cross-strategy accounting for one request. Safe for
// concurrent use by the per-platform goroutines and worker pools.
type runState struct {
	id string

	mu         sync.Mutex
	calls      int
	errs       []string
	strategies map[Strategy]bool
}

func newRunState() *runState {
	return &runState{
		id:         fmt.Sprintf("%08x", rand.Uint32()),
		strategies: make(map[Strategy]bool),
	}
}

func (r *runState) call() {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
}

func (r *runState) strategy(s Strategy) {
	r.mu.Lock()
	r.strategies[s] = true
	r.mu.Unlock()
}

func (r *runState) note(msg string) {
	r.mu.Lock()
	r.errs = append(r.errs, msg)
	r.mu.Unlock()
}

// fail records a client failure with enough context to reproduce it.
func (r *runState) fail(platform string, s Strategy, subject string, err error) {
	log.Printf("discovery client error run=%s platform=%s strategy=%s subject=%s err=%v",
		r.id, platform, s, subject, err)
	r.note(fmt.Sprintf("%s %s %s: %v", platform, s, subject, err))
}

func (r *runState) usedStrategies() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.strategies))
	for s := range r.strategies {
		out = append(out, s.String())
	}
	sort.Strings(out)
	return out
}

// Discover runs the full discovery flow for one candidate. It returns an
// error only for invalid input; everything downstream is reported through
// the Response.
func (o *Orchestrator) Discover(ctx context.Context, cand identity.Candidate, opts Options) (Response, error) {
	opts = opts.normalized()
	if err := cand.Validate(); err != nil {
		return Response{Success: false, ErrorMessage: err.Error()}, err
	}

	start := time.Now()
	key := cache.Key(cand.Email, cand.Name)
	st := newRunState()

	if opts.UseCache {
		if payload, hit, _ := o.store.Get(ctx, key); hit {
			var resp Response
			if err := json.Unmarshal(payload, &resp); err == nil {
				resp.Metadata.CacheHit = true
				log.Printf("discovery cache hit run=%s key=%s", st.id, key)
				return resp, nil
			}
			log.Printf("discovery cache entry corrupt, recomputing run=%s key=%s", st.id, key)
		}
	}

	log.Printf("discovery start run=%s name=%q email=%s code_host=%t network=%t",
		st.id, cand.Name, redact.Email(cand.Email), opts.SearchCodeHost, opts.SearchNetwork)

	if o.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.Timeout)
		defer cancel()
	}

	resp := Response{
		Success:         true,
		CodeHostMatches: []CodeHostMatch{},
		NetworkMatches:  []NetworkMatch{},
	}

	runCodeHost := func() {
		if !opts.SearchCodeHost || o.clients.CodeHost == nil {
			return
		}
		t0 := time.Now()
		resp.CodeHostMatches = o.discoverCodeHost(ctx, cand, opts, st)
		resp.Metadata.CodeHostTimeMS = time.Since(t0).Milliseconds()
	}
	runNetwork := func() {
		if !opts.SearchNetwork {
			return
		}
		t0 := time.Now()
		resp.NetworkMatches = o.discoverNetwork(ctx, cand, opts, st)
		resp.Metadata.NetworkTimeMS = time.Since(t0).Milliseconds()
	}

	if o.cfg.ParallelPlatforms {
		// The two platforms share no state beyond the run accounting, which
		// is mutex-guarded; each writes a distinct response field.
		var g errgroup.Group
		g.Go(func() error { runCodeHost(); return nil })
		g.Go(func() error { runNetwork(); return nil })
		_ = g.Wait()
	} else {
		runCodeHost()
		runNetwork()
	}

	if ctx.Err() != nil {
		st.note("discovery timed out; returning partial results")
	}

	resp.Metadata.ExternalCalls = st.calls
	resp.Metadata.Errors = st.errs
	resp.Metadata.StrategiesUsed = st.usedStrategies()
	resp.TotalTimeMS = time.Since(start).Milliseconds()

	log.Printf("discovery done run=%s code_host_matches=%d network_matches=%d calls=%d errors=%d total_ms=%d",
		st.id, len(resp.CodeHostMatches), len(resp.NetworkMatches), st.calls, len(st.errs), resp.TotalTimeMS)

	if opts.UseCache {
		if payload, err := json.Marshal(resp); err == nil {
			_ = o.store.Put(context.WithoutCancel(ctx), key, payload)
		}
	}
	return resp, nil
}

func (o *Orchestrator) workerOpts() worker.Options {
	return worker.Options{
		Workers:        o.cfg.LookupWorkers,
		MaxRetries:     2,
		RequestTimeout: 30 * time.Second,
		FailurePolicy:  worker.FailurePolicyPartialOutput,
	}
}

// --- code-host platform ---

func (o *Orchestrator) discoverCodeHost(ctx context.Context, cand identity.Candidate, opts Options, st *runState) []CodeHostMatch {
	var out []CodeHostMatch

	if username := identity.CodeHostUsername(cand.CodeHostURL); username != "" {
		st.strategy(StrategyDirectURL)
		m := o.codeHostDirect(ctx, cand, username, opts, st)
		out = append(out, m)
		if m.Confidence >= o.cfg.ShortCircuitConfidence {
			return o.finalizeCodeHost(ctx, cand, opts, out, st)
		}
	}

	if cand.Email != "" {
		st.strategy(StrategyEmailBased)
		usernames, err := o.clients.CodeHost.SearchByEmail(ctx, cand.Email, opts.MaxCodeHostResults)
		st.call()
		if err != nil {
			o.recordClientErr(st, "code_host", StrategyEmailBased, redact.Email(cand.Email), err)
		}
		probes := identity.EmailVariants(cand.Email)
		if len(probes) > o.cfg.MaxUsernameProbes {
			probes = probes[:o.cfg.MaxUsernameProbes]
		}
		out = append(out, o.lookupCodeHost(ctx, cand, dedupeStrings(usernames, probes), StrategyEmailBased, st)...)
	}

	if cand.Name != "" {
		st.strategy(StrategyNameContext)
		usernames, err := o.clients.CodeHost.SearchByNameContext(ctx, cand.Name, cand.Location, cand.PrimaryEmployer(), opts.MaxCodeHostResults)
		st.call()
		if err != nil {
			o.recordClientErr(st, "code_host", StrategyNameContext, cand.Name, err)
		}
		out = append(out, o.lookupCodeHost(ctx, cand, usernames, StrategyNameContext, st)...)
	}

	if o.clients.CodeHostSearch != nil && cand.Name != "" {
		st.strategy(StrategySearchEngine)
		results, err := o.clients.CodeHostSearch.Search(ctx, cand.Name, cand.Location, cand.PrimaryEmployer())
		st.call()
		if err != nil {
			o.recordClientErr(st, "code_host", StrategySearchEngine, cand.Name, err)
		}
		var usernames []string
		for _, r := range results {
			if u := identity.CodeHostUsername(r.ProfileURL); u != "" {
				usernames = append(usernames, u)
			}
		}
		out = append(out, o.lookupCodeHost(ctx, cand, dedupeStrings(usernames, nil), StrategySearchEngine, st)...)
	}

	return o.finalizeCodeHost(ctx, cand, opts, out, st)
}

// codeHostDirect resolves a declared code-host URL. A declared URL is never
// dropped: when the API cannot produce a sufficient profile, a minimal
// match is synthesized at a fixed high confidence.
func (o *Orchestrator) codeHostDirect(ctx context.Context, cand identity.Candidate, username string, opts Options, st *runState) CodeHostMatch {
	p, err := o.clients.CodeHost.GetProfile(ctx, username)
	st.call()
	if err == nil {
		score, reasons := codehost.ValidateMatch(p, cand, o.codeHostWeights)
		if score >= opts.MinConfidence {
			return CodeHostMatch{
				Profile:    p,
				Confidence: score,
				Reasoning:  strings.Join(reasons, "; "),
				Strategy:   StrategyDirectURL,
			}
		}
		// Weak evidence on a declared URL still beats inference: keep the
		// fetched profile, boost the confidence.
		return CodeHostMatch{
			Profile:    p,
			Confidence: o.cfg.DirectURLFallbackConfidence,
			Reasoning:  "direct URL from source document",
			Strategy:   StrategyDirectURL,
		}
	}
	if !errors.Is(err, codehost.ErrNotFound) {
		o.recordClientErr(st, "code_host", StrategyDirectURL, username, err)
	}

	return CodeHostMatch{
		Profile: codehost.Profile{
			Username:   username,
			Name:       cand.Name,
			ProfileURL: strings.TrimSpace(cand.CodeHostURL),
		},
		Confidence: o.cfg.DirectURLFallbackConfidence,
		Reasoning:  "direct URL from source document",
		Strategy:   StrategyDirectURL,
	}
}

// lookupCodeHost fetches and validates candidate usernames concurrently.
func (o *Orchestrator) lookupCodeHost(ctx context.Context, cand identity.Candidate, usernames []string, s Strategy, st *runState) []CodeHostMatch {
	if len(usernames) == 0 {
		return nil
	}

	results, err := worker.ProcessAll(ctx, usernames, func(ctx context.Context, username string) (CodeHostMatch, error) {
		p, err := o.clients.CodeHost.GetProfile(ctx, username)
		st.call()
		if err != nil {
			return CodeHostMatch{}, err
		}
		score, reasons := codehost.ValidateMatch(p, cand, o.codeHostWeights)
		return CodeHostMatch{
			Profile:    p,
			Confidence: score,
			Reasoning:  strings.Join(reasons, "; "),
			Strategy:   s,
		}, nil
	}, o.workerOpts())
	if err != nil {
		o.recordClientErr(st, "code_host", s, "lookup", err)
		return nil
	}

	var out []CodeHostMatch
	for _, r := range results {
		if r.Err != nil {
			// Probing guessed usernames misses constantly; only real
			// failures are worth recording.
			if !errors.Is(r.Err, codehost.ErrNotFound) {
				o.recordClientErr(st, "code_host", s, r.Input, r.Err)
			}
			continue
		}
		out = append(out, r.Output)
	}
	return out
}

func (o *Orchestrator) finalizeCodeHost(ctx context.Context, cand identity.Candidate, opts Options, matches []CodeHostMatch, st *runState) []CodeHostMatch {
	kept := matches[:0]
	for _, m := range matches {
		if m.Strategy.NameBased() && cand.Name != "" {
			sim := match.NameSimilarity(cand.Name, m.Profile.Name)
			if sim < o.cfg.NameSimilarityFloor {
				log.Printf("discovery gate rejected platform=code_host username=%s similarity=%.2f", m.Profile.Username, sim)
				continue
			}
		}
		if m.Confidence < opts.MinConfidence {
			log.Printf("discovery low confidence dropped platform=code_host username=%s confidence=%.2f", m.Profile.Username, m.Confidence)
			continue
		}
		kept = append(kept, m)
	}

	deduped := dedupeCodeHost(kept)
	sort.SliceStable(deduped, func(i, j int) bool {
		if deduped[i].Confidence != deduped[j].Confidence {
			return deduped[i].Confidence > deduped[j].Confidence
		}
		return deduped[i].Strategy.Priority() < deduped[j].Strategy.Priority()
	})
	if len(deduped) > opts.MaxCodeHostResults {
		deduped = deduped[:opts.MaxCodeHostResults]
	}

	if opts.IncludeRepositoryAnalysis {
		for i := range deduped {
			repos, err := o.clients.CodeHost.GetRepositories(ctx, deduped[i].Profile.Username, 30)
			st.call()
			if err != nil {
				if !errors.Is(err, codehost.ErrNotFound) {
					o.recordClientErr(st, "code_host", deduped[i].Strategy, deduped[i].Profile.Username, err)
				}
				continue
			}
			analysis := codehost.AnalyzeRepositories(repos)
			deduped[i].Repositories = repos
			deduped[i].Analysis = &analysis
		}
	}
	return deduped
}

func dedupeCodeHost(matches []CodeHostMatch) []CodeHostMatch {
	best := make(map[string]int)
	var out []CodeHostMatch
	for _, m := range matches {
		id := strings.ToLower(m.Profile.Username)
		if i, ok := best[id]; ok {
			if m.Confidence > out[i].Confidence {
				out[i] = m
			}
			continue
		}
		best[id] = len(out)
		out = append(out, m)
	}
	return out
}

// --- professional-network platform ---

func (o *Orchestrator) discoverNetwork(ctx context.Context, cand identity.Candidate, opts Options, st *runState) []NetworkMatch {
	var out []NetworkMatch

	if profileURL := identity.NormalizeProfileURL(cand.NetworkURL, o.networkHost); profileURL != "" {
		st.strategy(StrategyDirectURL)
		m := o.networkDirect(ctx, cand, profileURL, opts, st)
		out = append(out, m)
		if m.Confidence >= o.cfg.ShortCircuitConfidence {
			return o.finalizeNetwork(cand, opts, out)
		}
	}

	if cand.Name != "" {
		st.strategy(StrategySearchEngine)
		results := o.networkSearch(ctx, cand, st)
		if len(results) > opts.MaxNetworkResults {
			results = results[:opts.MaxNetworkResults]
		}
		out = append(out, o.lookupNetwork(ctx, cand, results, st)...)
	}

	return o.finalizeNetwork(cand, opts, out)
}

// networkSearch tries the browser first and falls back to the search API.
func (o *Orchestrator) networkSearch(ctx context.Context, cand identity.Candidate, st *runState) []network.SearchResult {
	employer := cand.PrimaryEmployer()

	if o.clients.Browser != nil {
		results, err := o.clients.Browser.Search(ctx, cand.Name, cand.Location, employer)
		st.call()
		if err == nil && len(results) > 0 {
			return results
		}
		if err != nil {
			o.recordClientErr(st, "network", StrategySearchEngine, cand.Name, err)
		}
	}

	if o.clients.NetworkSearch != nil {
		results, err := o.clients.NetworkSearch.Search(ctx, cand.Name, cand.Location, employer)
		st.call()
		if err != nil {
			o.recordClientErr(st, "network", StrategySearchEngine, cand.Name, err)
			return nil
		}
		return results
	}
	return nil
}

// networkDirect resolves a declared profile URL through the fallback
// chain: browser extraction, then plain fetch, then a synthesized minimal
// profile. A declared URL is never dropped.
func (o *Orchestrator) networkDirect(ctx context.Context, cand identity.Candidate, profileURL string, opts Options, st *runState) NetworkMatch {
	if p, weights, ok := o.extractNetworkProfile(ctx, StrategyDirectURL, profileURL, st); ok {
		score, reasons := network.Validate(p, cand, weights)
		if score >= opts.MinConfidence {
			return NetworkMatch{
				Profile:    p,
				Confidence: score,
				Reasoning:  strings.Join(reasons, "; "),
				Strategy:   StrategyDirectURL,
			}
		}
		return NetworkMatch{
			Profile:    p,
			Confidence: o.cfg.DirectURLFallbackConfidence,
			Reasoning:  "direct URL from source document",
			Strategy:   StrategyDirectURL,
		}
	}

	return NetworkMatch{
		Profile: network.Profile{
			ProfileURL: profileURL,
			Name:       cand.Name,
		},
		Confidence: o.cfg.DirectURLFallbackConfidence,
		Reasoning:  "direct URL from source document",
		Strategy:   StrategyDirectURL,
	}
}

// extractNetworkProfile runs the browser-then-fetch fallback chain for one
// URL and reports which validator weights fit the extraction source.
func (o *Orchestrator) extractNetworkProfile(ctx context.Context, s Strategy, profileURL string, st *runState) (network.Profile, network.Weights, bool) {
	if o.clients.Browser != nil {
		p, _, err := o.clients.Browser.ExtractProfile(ctx, profileURL)
		st.call()
		if err == nil && p.Name != "" {
			return p, o.browserWeights, true
		}
		if err != nil {
			o.recordClientErr(st, "network", s, profileURL, err)
		}
	}
	if o.clients.NetworkSearch != nil {
		p, _, err := o.clients.NetworkSearch.FetchProfile(ctx, profileURL)
		st.call()
		if err == nil && p.Name != "" {
			return p, o.searchWeights, true
		}
		if err != nil {
			o.recordClientErr(st, "network", s, profileURL, err)
		}
	}
	return network.Profile{}, network.Weights{}, false
}

func (o *Orchestrator) lookupNetwork(ctx context.Context, cand identity.Candidate, results []network.SearchResult, st *runState) []NetworkMatch {
	if len(results) == 0 {
		return nil
	}

	processed, err := worker.ProcessAll(ctx, results, func(ctx context.Context, r network.SearchResult) (NetworkMatch, error) {
		p, weights, ok := o.extractNetworkProfile(ctx, StrategySearchEngine, r.ProfileURL, st)
		if !ok {
			return NetworkMatch{}, fmt.Errorf("no extractable profile at %s", r.ProfileURL)
		}
		score, reasons := network.Validate(p, cand, weights)
		return NetworkMatch{
			Profile:    p,
			Confidence: score,
			Reasoning:  strings.Join(reasons, "; "),
			Strategy:   StrategySearchEngine,
		}, nil
	}, o.workerOpts())
	if err != nil {
		o.recordClientErr(st, "network", StrategySearchEngine, "lookup", err)
		return nil
	}

	var out []NetworkMatch
	for _, r := range processed {
		if r.Err != nil {
			continue
		}
		out = append(out, r.Output)
	}
	return out
}

func (o *Orchestrator) finalizeNetwork(cand identity.Candidate, opts Options, matches []NetworkMatch) []NetworkMatch {
	kept := matches[:0]
	for _, m := range matches {
		if m.Strategy.NameBased() && cand.Name != "" {
			sim := match.NameSimilarity(cand.Name, m.Profile.Name)
			if sim < o.cfg.NameSimilarityFloor {
				log.Printf("discovery gate rejected platform=network url=%s similarity=%.2f", m.Profile.ProfileURL, sim)
				continue
			}
		}
		if m.Confidence < opts.MinConfidence {
			log.Printf("discovery low confidence dropped platform=network url=%s confidence=%.2f", m.Profile.ProfileURL, m.Confidence)
			continue
		}
		kept = append(kept, m)
	}

	deduped := dedupeNetwork(kept)
	sort.SliceStable(deduped, func(i, j int) bool {
		if deduped[i].Confidence != deduped[j].Confidence {
			return deduped[i].Confidence > deduped[j].Confidence
		}
		return deduped[i].Strategy.Priority() < deduped[j].Strategy.Priority()
	})
	if len(deduped) > opts.MaxNetworkResults {
		deduped = deduped[:opts.MaxNetworkResults]
	}
	return deduped
}

func dedupeNetwork(matches []NetworkMatch) []NetworkMatch {
	best := make(map[string]int)
	var out []NetworkMatch
	for _, m := range matches {
		id := strings.ToLower(strings.TrimRight(m.Profile.ProfileURL, "/"))
		if i, ok := best[id]; ok {
			if m.Confidence > out[i].Confidence {
				out[i] = m
			}
			continue
		}
		best[id] = len(out)
		out = append(out, m)
	}
	return out
}

// recordClientErr folds budget exhaustion into a quieter note; it is an
// expected terminal condition, not a platform failure.
func (o *Orchestrator) recordClientErr(st *runState, platform string, s Strategy, id string, err error) {
	if errors.Is(err, ratelimit.ErrBudgetExhausted) {
		st.note(fmt.Sprintf("%s %s: request budget exhausted", platform, s))
		return
	}
	st.fail(platform, s, id, err)
}

func dedupeStrings(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}
