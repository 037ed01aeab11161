package identity

import "strings"

// maxCodeHostUsernameLen matches the code-host's published username limit.
const maxCodeHostUsernameLen = 39

// CodeHostUsername extracts a canonical code-host username from the URL
// shapes that show up in resumes: full https/http URLs, host-only forms,
// "www." prefixes, and bare usernames. Returns "" when nothing usable
// remains.
func CodeHostUsername(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	for _, prefix := range []string{
		"https://www.", "http://www.", "https://", "http://", "www.",
	} {
		s = strings.TrimPrefix(s, prefix)
	}
	// Drop the host segment if one is present ("github.com/user" -> "user").
	if i := strings.IndexByte(s, '/'); i >= 0 && strings.Contains(s[:i], ".") {
		s = s[i+1:]
	}

	username := s
	if i := strings.IndexByte(username, '/'); i >= 0 {
		username = username[:i]
	}
	if i := strings.IndexByte(username, '?'); i >= 0 {
		username = username[:i]
	}
	if i := strings.IndexByte(username, '#'); i >= 0 {
		username = username[:i]
	}
	username = strings.TrimSpace(username)

	if username == "" || len(username) > maxCodeHostUsernameLen {
		return ""
	}
	for _, r := range username {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			continue
		}
		return ""
	}
	return username
}

// NormalizeProfileURL canonicalizes a professional-network profile URL onto
// https://<canonicalHost>/... . Accepts full URLs, host-only forms, relative
// paths, and bare profile slugs. Trailing slashes are dropped. Returns ""
// for empty input.
func NormalizeProfileURL(raw, canonicalHost string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimRight(s, "/")
	if s == "" {
		return ""
	}
	canonicalHost = strings.TrimSpace(canonicalHost)

	// Bare host is the canonical host without a leading "www.".
	bareHost := strings.TrimPrefix(canonicalHost, "www.")

	switch {
	case strings.HasPrefix(s, "https://"+canonicalHost+"/"):
		return s
	case strings.HasPrefix(s, "http://"+canonicalHost+"/"):
		return "https://" + strings.TrimPrefix(s, "http://")
	case strings.HasPrefix(s, "https://"+bareHost+"/"):
		return "https://" + canonicalHost + strings.TrimPrefix(s, "https://"+bareHost)
	case strings.HasPrefix(s, "http://"+bareHost+"/"):
		return "https://" + canonicalHost + strings.TrimPrefix(s, "http://"+bareHost)
	case strings.HasPrefix(s, canonicalHost+"/"):
		return "https://" + s
	case strings.HasPrefix(s, bareHost+"/"):
		return "https://" + canonicalHost + strings.TrimPrefix(s, bareHost)
	case strings.HasPrefix(s, "/"):
		return "https://" + canonicalHost + s
	case !strings.Contains(s, bareHost):
		// Bare profile slug.
		return "https://" + canonicalHost + "/in/" + s
	default:
		return "https://" + canonicalHost + "/" + strings.TrimLeft(s, "/")
	}
}
