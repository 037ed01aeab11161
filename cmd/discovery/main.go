package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/seekwell/profile-discovery/internal/cache"
	"github.com/seekwell/profile-discovery/internal/codehost"
	"github.com/seekwell/profile-discovery/internal/config"
	"github.com/seekwell/profile-discovery/internal/discovery"
	"github.com/seekwell/profile-discovery/internal/identity"
	"github.com/seekwell/profile-discovery/internal/network/browser"
	"github.com/seekwell/profile-discovery/internal/network/searchapi"
	"github.com/seekwell/profile-discovery/internal/redact"
	"github.com/seekwell/profile-discovery/internal/version"
)

func main() {
	ctx := context.Background()

	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	switch os.Args[1] {
	case "help", "-h", "--help":
		usage(os.Stdout)
		return
	case "version":
		fmt.Println(version.Current)
		return
	case "discover":
		os.Exit(runDiscover(ctx, os.Args[2:]))
	case "health":
		os.Exit(runHealth(ctx, os.Args[2:]))
	default:
		_, _ = fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		usage(os.Stderr)
		os.Exit(2)
	}
}

func runDiscover(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("discover", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var (
		configPath   string
		inputPath    string
		outputPath   string
		noCodeHost   bool
		noNetwork    bool
		noCache      bool
		noRepos      bool
		maxCodeHost  int
		maxNetwork   int
		minConfGiven float64
	)
	fs.StringVar(&configPath, "config", "", "Optional YAML config file path")
	fs.StringVar(&inputPath, "input", "", "Candidate identity JSON file path, or '-' for stdin")
	fs.StringVar(&outputPath, "output", "", "Response JSON file path; stdout when empty")
	fs.BoolVar(&noCodeHost, "no-code-host", false, "Skip the code-hosting platform")
	fs.BoolVar(&noNetwork, "no-network", false, "Skip the professional network")
	fs.BoolVar(&noCache, "no-cache", false, "Bypass the result cache")
	fs.BoolVar(&noRepos, "no-repo-analysis", false, "Skip repository analysis on code-host matches")
	fs.IntVar(&maxCodeHost, "max-code-host-results", 0, "Max code-host matches to return (0 = config default)")
	fs.IntVar(&maxNetwork, "max-network-results", 0, "Max network matches to return (0 = config default)")
	fs.Float64Var(&minConfGiven, "min-confidence", -1, "Minimum confidence score, -1 = config default (env: MIN_CONFIDENCE)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if inputPath == "" {
		_, _ = fmt.Fprintln(os.Stderr, "discover requires --input")
		return 2
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "config error: %s\n", redact.Secrets(err.Error()))
		return 2
	}

	cand, err := readCandidate(inputPath)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "input error: %s\n", redact.Secrets(err.Error()))
		return 2
	}

	orch, cleanup, err := buildOrchestrator(ctx, cfg)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "setup error: %s\n", redact.Secrets(err.Error()))
		return 2
	}
	defer cleanup()

	opts := discovery.DefaultOptions()
	opts.SearchCodeHost = !noCodeHost
	opts.SearchNetwork = !noNetwork
	opts.UseCache = !noCache
	opts.IncludeRepositoryAnalysis = !noRepos
	opts.MaxCodeHostResults = cfg.Discovery.MaxCodeHostResults
	opts.MaxNetworkResults = cfg.Discovery.MaxNetworkResults
	opts.MinConfidence = cfg.Discovery.MinConfidence
	if maxCodeHost > 0 {
		opts.MaxCodeHostResults = maxCodeHost
	}
	if maxNetwork > 0 {
		opts.MaxNetworkResults = maxNetwork
	}
	if minConfGiven >= 0 {
		opts.MinConfidence = minConfGiven
	}

	resp, err := orch.Discover(ctx, cand, opts)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "discover failed: %s\n", redact.Secrets(err.Error()))
		// The failure response still carries success=false and the message.
		_ = writeJSON(outputPath, resp)
		return 1
	}
	if err := writeJSON(outputPath, resp); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "output error: %s\n", redact.Secrets(err.Error()))
		return 1
	}
	return 0
}

func runHealth(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("health", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", "", "Optional YAML config file path")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "config error: %s\n", redact.Secrets(err.Error()))
		return 2
	}

	orch, cleanup, err := buildOrchestrator(ctx, cfg)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "setup error: %s\n", redact.Secrets(err.Error()))
		return 2
	}
	defer cleanup()

	if err := writeJSON("", orch.CheckHealth(ctx)); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "output error: %s\n", redact.Secrets(err.Error()))
		return 1
	}
	return 0
}

// buildOrchestrator wires the platform clients from configuration. Clients
// whose credentials are absent are left out; the orchestrator skips the
// strategies they back.
func buildOrchestrator(ctx context.Context, cfg config.Config) (*discovery.Orchestrator, func(), error) {
	var clients discovery.Clients
	var closers []func()

	ch, err := codehost.NewClient(codehost.Config{
		BaseURL:         cfg.CodeHost.BaseURL,
		Token:           cfg.CodeHost.Token,
		RequestInterval: cfg.CodeHost.RequestInterval,
		RequestTimeout:  cfg.CodeHost.RequestTimeout,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("code-host client: %w", err)
	}
	clients.CodeHost = ch

	br := browser.NewClient(browser.Config{
		NetworkHost:     cfg.Browser.NetworkHost,
		Headless:        cfg.Browser.Headless,
		RequestInterval: cfg.Browser.RequestInterval,
		RequestJitter:   cfg.Browser.RequestJitter,
		SessionBudget:   cfg.Browser.SessionBudget,
		NavigateTimeout: cfg.Browser.NavigateTimeout,
	})
	clients.Browser = br
	closers = append(closers, br.Close)

	if cfg.SearchAPI.APIKey != "" {
		sc, err := searchapi.New(ctx, searchapi.Config{
			APIKey:          cfg.SearchAPI.APIKey,
			Model:           cfg.SearchAPI.Model,
			BaseURL:         cfg.SearchAPI.BaseURL,
			NetworkHost:     cfg.Browser.NetworkHost,
			RequestInterval: cfg.SearchAPI.RequestInterval,
			MonthlyQuota:    cfg.SearchAPI.MonthlyQuota,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("search client: %w", err)
		}
		clients.NetworkSearch = sc

		// A second instance scoped to the code host backs the last-resort
		// search strategy there.
		chs, err := searchapi.New(ctx, searchapi.Config{
			APIKey:          cfg.SearchAPI.APIKey,
			Model:           cfg.SearchAPI.Model,
			BaseURL:         cfg.SearchAPI.BaseURL,
			NetworkHost:     "github.com",
			ProfilePath:     "/",
			RequestInterval: cfg.SearchAPI.RequestInterval,
			MonthlyQuota:    cfg.SearchAPI.MonthlyQuota,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("code-host search client: %w", err)
		}
		clients.CodeHostSearch = chs
	}

	var store cache.Store = cache.Noop{}
	if cfg.Cache.Addr != "" {
		r := cache.NewRedis(cache.Config{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
			TTL:      cfg.Cache.TTL,
		})
		store = r
		closers = append(closers, func() { _ = r.Close() })
	}

	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return discovery.New(clients, store, cfg.Discovery, cfg.Browser.NetworkHost), cleanup, nil
}

func readCandidate(path string) (identity.Candidate, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return identity.Candidate{}, err
		}
		defer func() {
			_ = f.Close()
		}()
		r = f
	}
	var cand identity.Candidate
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cand); err != nil {
		return identity.Candidate{}, fmt.Errorf("parse candidate identity: %w", err)
	}
	return cand, nil
}

func writeJSON(path string, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	out = append(out, '\n')
	if path == "" {
		_, err = os.Stdout.Write(out)
		return err
	}
	return os.WriteFile(path, out, 0o644)
}

func usage(w io.Writer) {
	_, _ = fmt.Fprint(w, `profile-discovery finds and scores public developer profiles for a
candidate identity extracted from a resume.

Usage:
  discovery discover --input candidate.json [--output response.json] [flags]
  discovery health [--config config.yaml]
  discovery version
  discovery help

The candidate identity file is JSON:
  {"name": "...", "email": "...", "location": "...",
   "employers": [...], "titles": [...], "skills": [...],
   "code_host_url": "...", "network_url": "..."}

Environment:
  CODE_HOST_TOKEN     Code-host API token (optional, raises rate limits)
  CODE_HOST_BASE_URL  Code-host API base URL override
  GEMINI_API_KEY      Search-API key; search strategies are skipped without it
  GEMINI_MODEL        Search-API model name
  REDIS_ADDR          Cache address; in-process no-op cache when unreachable
  DISCOVERY_TIMEOUT   Overall per-request time budget (e.g. 2m)
  PARALLEL_PLATFORMS  Run both platforms concurrently (true/false)

Run 'discovery discover -h' or 'discovery health -h' for flags.
`)
}
