// Package browser drives a headless Chrome session against the
// professional-network platform. The SessionManager owns the browser
// process lifecycle; the Client issues navigations through it and hands
// captured HTML to the network package parsers.
package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/chromedp"
)

// State is the browser session lifecycle state.
type State int

const (
	// StateCold means no browser process is running yet.
	StateCold State = iota
	// StateWarm means a browser process is up and serving requests.
	StateWarm
	// StateRotating means the session hit its request budget and is being
	// replaced.
	StateRotating
	// StateClosed means the manager was shut down; no further requests are
	// accepted.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateCold:
		return "cold"
	case StateWarm:
		return "warm"
	case StateRotating:
		return "rotating"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// allocatorFunc creates a browser allocator context. Tests substitute a
// stub so the state machine can run without launching Chrome.
type allocatorFunc func(ctx context.Context) (context.Context, context.CancelFunc)

// SessionManager owns one browser process at a time and rotates it after a
// fixed number of requests so long-lived sessions don't accumulate
// trackable state.
type SessionManager struct {
	budget       int
	headless     bool
	newAllocator allocatorFunc

	mu          sync.Mutex
	state       State
	used        int
	rotations   int
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewSessionManager returns a manager that rotates the browser after budget
// requests.
func NewSessionManager(budget int, headless bool) *SessionManager {
	m := &SessionManager{
		budget:   budget,
		headless: headless,
	}
	m.newAllocator = m.execAllocator
	return m
}

func (m *SessionManager) execAllocator(ctx context.Context) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", m.headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.UserAgent(randomUserAgent()),
	)
	return chromedp.NewExecAllocator(ctx, opts...)
}

// Acquire returns a context rooted in the current browser allocator,
// starting or rotating the browser as needed. Each call consumes one unit
// of the session budget.
func (m *SessionManager) Acquire(ctx context.Context) (context.Context, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case StateClosed:
		return nil, fmt.Errorf("browser session manager is closed")
	case StateCold:
		m.startLocked(ctx)
	case StateWarm:
		if m.used >= m.budget {
			m.rotateLocked(ctx)
		}
	}

	m.used++
	return m.allocCtx, nil
}

func (m *SessionManager) startLocked(ctx context.Context) {
	m.allocCtx, m.allocCancel = m.newAllocator(ctx)
	m.state = StateWarm
	m.used = 0
}

func (m *SessionManager) rotateLocked(ctx context.Context) {
	m.state = StateRotating
	if m.allocCancel != nil {
		m.allocCancel()
	}
	m.rotations++
	m.startLocked(ctx)
}

// State reports the current lifecycle state.
func (m *SessionManager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Rotations reports how many times the browser was replaced.
func (m *SessionManager) Rotations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rotations
}

// RequestsInSession reports requests served by the current browser.
func (m *SessionManager) RequestsInSession() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.used
}

// Close shuts the browser down. The manager cannot be reused afterwards.
func (m *SessionManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateClosed {
		return
	}
	if m.allocCancel != nil {
		m.allocCancel()
		m.allocCancel = nil
	}
	m.state = StateClosed
}
