package cache_test

import (
	"context"
	"testing"

	"github.com/seekwell/profile-discovery/internal/cache"
)

func TestKey(t *testing.T) {
	t.Parallel()

	cases := []struct {
		email string
		name  string
		want  string
	}{
		{"jane.rivera@mail.com", "Jane Rivera", "discovery:jane.rivera@mail.com:jane_rivera"},
		{"JANE.RIVERA@MAIL.COM", "JANE RIVERA", "discovery:jane.rivera@mail.com:jane_rivera"},
		{" jane@mail.com ", "  Jane   Q   Rivera  ", "discovery:jane@mail.com:jane_q_rivera"},
		{"", "", "discovery::"},
	}
	for _, tc := range cases {
		if got := cache.Key(tc.email, tc.name); got != tc.want {
			t.Errorf("Key(%q, %q)=%q want %q", tc.email, tc.name, got, tc.want)
		}
	}
}

func TestKeyStable(t *testing.T) {
	t.Parallel()

	a := cache.Key("jane@mail.com", "Jane Rivera")
	b := cache.Key("Jane@Mail.com", "jane rivera")
	if a != b {
		t.Fatalf("equivalent identities must share a key: %q vs %q", a, b)
	}
}

func TestNoop(t *testing.T) {
	t.Parallel()

	var s cache.Store = cache.Noop{}
	ctx := context.Background()

	if err := s.Put(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("noop put: %v", err)
	}
	_, hit, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("noop get: %v", err)
	}
	if hit {
		t.Fatal("noop store must never hit")
	}
}
