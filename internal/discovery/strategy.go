package discovery

import (
	"encoding/json"
	"fmt"
)

// Strategy records how a match was located. Strategies run in priority
// order per platform; lower value means higher priority.
type Strategy int

const (
	StrategyDirectURL Strategy = iota + 1
	StrategyEmailBased
	StrategyNameContext
	StrategySearchEngine
)

// Priority is the merge tie-break order: lower sorts first.
func (s Strategy) Priority() int {
	return int(s)
}

// NameBased reports whether the strategy located the profile by name
// search, which makes it subject to the name-similarity gate.
func (s Strategy) NameBased() bool {
	return s == StrategyNameContext || s == StrategySearchEngine
}

func (s Strategy) String() string {
	switch s {
	case StrategyDirectURL:
		return "direct_url"
	case StrategyEmailBased:
		return "email_based"
	case StrategyNameContext:
		return "name_context"
	case StrategySearchEngine:
		return "search_engine"
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

func (s Strategy) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Strategy) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch raw {
	case "direct_url":
		*s = StrategyDirectURL
	case "email_based":
		*s = StrategyEmailBased
	case "name_context":
		*s = StrategyNameContext
	case "search_engine":
		*s = StrategySearchEngine
	default:
		return fmt.Errorf("unknown discovery strategy %q", raw)
	}
	return nil
}
