package browser

import (
	"context"
	"testing"
)

// stubAllocator stands in for the Chrome exec allocator so the lifecycle
// can be tested without launching a browser.
func stubAllocator(t *testing.T, started *int) allocatorFunc {
	t.Helper()
	return func(ctx context.Context) (context.Context, context.CancelFunc) {
		*started++
		return context.WithCancel(ctx)
	}
}

func TestSessionManagerColdToWarm(t *testing.T) {
	t.Parallel()

	started := 0
	m := NewSessionManager(50, true)
	m.newAllocator = stubAllocator(t, &started)

	if m.State() != StateCold {
		t.Fatalf("initial state=%v want cold", m.State())
	}

	if _, err := m.Acquire(context.Background()); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if m.State() != StateWarm {
		t.Fatalf("state=%v want warm", m.State())
	}
	if started != 1 {
		t.Fatalf("allocator started %d times, want 1", started)
	}
	if m.RequestsInSession() != 1 {
		t.Fatalf("requests=%d want 1", m.RequestsInSession())
	}
}

func TestSessionManagerRotatesAtBudget(t *testing.T) {
	t.Parallel()

	started := 0
	m := NewSessionManager(3, true)
	m.newAllocator = stubAllocator(t, &started)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := m.Acquire(ctx); err != nil {
			t.Fatalf("acquire %d: %v", i, err)
		}
	}
	if m.Rotations() != 0 {
		t.Fatalf("rotated before budget: %d", m.Rotations())
	}

	// Fourth request exceeds the budget of 3 and forces a fresh browser.
	if _, err := m.Acquire(ctx); err != nil {
		t.Fatalf("acquire after budget: %v", err)
	}
	if m.Rotations() != 1 {
		t.Fatalf("rotations=%d want 1", m.Rotations())
	}
	if started != 2 {
		t.Fatalf("allocator started %d times, want 2", started)
	}
	if m.State() != StateWarm {
		t.Fatalf("state=%v want warm after rotation", m.State())
	}
	if m.RequestsInSession() != 1 {
		t.Fatalf("requests=%d want 1 in the fresh session", m.RequestsInSession())
	}
}

func TestSessionManagerClosed(t *testing.T) {
	t.Parallel()

	started := 0
	m := NewSessionManager(50, true)
	m.newAllocator = stubAllocator(t, &started)

	if _, err := m.Acquire(context.Background()); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	m.Close()
	if m.State() != StateClosed {
		t.Fatalf("state=%v want closed", m.State())
	}
	if _, err := m.Acquire(context.Background()); err == nil {
		t.Fatal("expected error acquiring from closed manager")
	}
	// Close is idempotent.
	m.Close()
}

func TestStealthPools(t *testing.T) {
	t.Parallel()

	for i := 0; i < 20; i++ {
		v := randomViewport()
		if v.Width < 1000 || v.Height < 500 {
			t.Fatalf("implausible viewport %+v", v)
		}
		if ua := randomUserAgent(); ua == "" {
			t.Fatal("empty user agent")
		}
	}
}

func TestRandomGeolocationJittersAroundBase(t *testing.T) {
	t.Parallel()

	seen := make(map[[2]float64]bool)
	for i := 0; i < 20; i++ {
		lat, lng := randomGeolocation()
		if lat < geoBaseLatitude-geoJitterDegrees || lat > geoBaseLatitude+geoJitterDegrees {
			t.Fatalf("latitude %v outside jitter band", lat)
		}
		if lng < geoBaseLongitude-geoJitterDegrees || lng > geoBaseLongitude+geoJitterDegrees {
			t.Fatalf("longitude %v outside jitter band", lng)
		}
		seen[[2]float64{lat, lng}] = true
	}
	if len(seen) < 2 {
		t.Fatal("coordinates never vary between requests")
	}
}
