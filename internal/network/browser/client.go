package browser

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/seekwell/profile-discovery/internal/network"
	"github.com/seekwell/profile-discovery/internal/ratelimit"
	"github.com/seekwell/profile-discovery/internal/worker"
)

// Config configures the browser client.
type Config struct {
	// NetworkHost is the professional-network host profiles live on.
	NetworkHost string
	// Headless controls whether Chrome runs without a window.
	Headless bool
	// RequestInterval spaces navigations; Jitter adds a random extra delay.
	RequestInterval time.Duration
	RequestJitter   time.Duration
	// SessionBudget is the number of navigations before browser rotation.
	SessionBudget int
	// NavigateTimeout bounds one navigation plus extraction.
	NavigateTimeout time.Duration
}

// Client scrapes the professional network through a stealth browser.
type Client struct {
	cfg      Config
	sessions *SessionManager
	pacer    *ratelimit.Pacer
}

// NewClient constructs a browser client. Callers must Close it to shut the
// browser down.
func NewClient(cfg Config) *Client {
	if cfg.NetworkHost == "" {
		cfg.NetworkHost = "www.linkedin.com"
	}
	if cfg.SessionBudget <= 0 {
		cfg.SessionBudget = 50
	}
	if cfg.NavigateTimeout <= 0 {
		cfg.NavigateTimeout = 30 * time.Second
	}
	return &Client{
		cfg:      cfg,
		sessions: NewSessionManager(cfg.SessionBudget, cfg.Headless),
		pacer:    ratelimit.New(cfg.RequestInterval, 0, cfg.RequestJitter),
	}
}

// Sessions exposes the session manager for health reporting.
func (c *Client) Sessions() *SessionManager {
	return c.sessions
}

// SessionState reports the current session lifecycle state.
func (c *Client) SessionState() string {
	return c.sessions.State().String()
}

// Close shuts down the browser.
func (c *Client) Close() {
	c.sessions.Close()
}

// Search looks for candidate profiles with a scoped web search and returns
// profile URLs with surrounding result text.
func (c *Client) Search(ctx context.Context, name, location, company string) ([]network.SearchResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}

	parts := []string{fmt.Sprintf("%q", name)}
	if location = strings.TrimSpace(location); location != "" {
		parts = append(parts, location)
	}
	if company = strings.TrimSpace(company); company != "" {
		parts = append(parts, company)
	}
	parts = append(parts, "site:"+c.cfg.NetworkHost+"/in/")
	searchURL := "https://www.google.com/search?q=" + url.QueryEscape(strings.Join(parts, " "))

	html, err := c.capture(ctx, searchURL)
	if err != nil {
		return nil, err
	}
	return network.ParseSearchResults(html, c.cfg.NetworkHost)
}

// ExtractProfile navigates to a profile URL and parses it. authWalled
// reports whether the platform served an auth wall; extraction is still
// attempted since walled pages leak partial data.
func (c *Client) ExtractProfile(ctx context.Context, profileURL string) (p network.Profile, authWalled bool, err error) {
	profileURL = strings.TrimSpace(profileURL)
	if profileURL == "" {
		return network.Profile{}, false, fmt.Errorf("profile url is required")
	}

	html, err := c.capture(ctx, profileURL)
	if err != nil {
		return network.Profile{}, false, err
	}

	authWalled = network.IsAuthWalled(html)
	p, err = network.ParseProfile(html, profileURL)
	if err != nil {
		return network.Profile{}, authWalled, err
	}
	return p, authWalled, nil
}

// capture navigates to a URL in a fresh tab with stealth measures applied
// and returns the rendered document HTML.
func (c *Client) capture(ctx context.Context, target string) (string, error) {
	if err := c.pacer.Wait(ctx); err != nil {
		return "", err
	}

	allocCtx, err := c.sessions.Acquire(ctx)
	if err != nil {
		return "", err
	}

	tabCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, c.cfg.NavigateTimeout)
	defer cancelTimeout()

	viewport := randomViewport()
	lat, lng := randomGeolocation()

	var html string
	err = chromedp.Run(tabCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx)
			return err
		}),
		emulation.SetUserAgentOverride(randomUserAgent()).
			WithAcceptLanguage("en-US,en"),
		emulation.SetDeviceMetricsOverride(viewport.Width, viewport.Height, 1.0, false),
		emulation.SetGeolocationOverride().
			WithLatitude(lat).
			WithLongitude(lng).
			WithAccuracy(100),
		chromedp.Navigate(target),
		humanScroll(),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		// Navigation failures are usually worth one more attempt in a fresh
		// tab, not a full retry budget.
		return "", &worker.LimitedTransientError{
			Err:          fmt.Errorf("navigate %s: %w", target, err),
			ExtraRetries: 1,
		}
	}
	return html, nil
}

// humanScroll scrolls the page in a few irregular steps with pauses, the
// way a person skims a page.
func humanScroll() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		steps := 3 + rand.N(4)
		for i := 0; i < steps; i++ {
			amount := 100 + rand.N(301)
			if err := chromedp.Evaluate(fmt.Sprintf("window.scrollBy(0, %d)", amount), nil).Do(ctx); err != nil {
				return err
			}
			pause := 300*time.Millisecond + rand.N(500*time.Millisecond)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(pause):
			}
		}
		return nil
	})
}
