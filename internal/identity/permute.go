package identity

import (
	"regexp"
	"strings"
)

var localPartSeparators = regexp.MustCompile(`[._-]`)

// EmailVariants generates plausible platform username guesses from the local
// part of an email address. Output order is deterministic and duplicates are
// removed; the original local part always comes first.
func EmailVariants(email string) []string {
	email = strings.TrimSpace(email)
	at := strings.IndexByte(email, '@')
	if at <= 0 {
		return nil
	}
	local := email[:at]

	var out []string
	seen := make(map[string]struct{})
	add := func(v string) {
		if v == "" {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	add(local)

	parts := localPartSeparators.Split(local, -1)
	if len(parts) >= 2 {
		first, last := parts[0], parts[len(parts)-1]
		if first != "" && last != "" {
			add(first + "." + last)
			add(first + last)
			add(first + "-" + last)
			add(first + "_" + last)
			add(first[:1] + "." + last)
			add(first[:1] + last)
			add(first + "." + last[:1])
			add(first + last[:1])
			add(last + "." + first)
			add(last + first)
		}
	}

	// Common developer-handle suffixes.
	add(local + "dev")
	add(local + "codes")
	add(local + "engineer")

	return out
}
