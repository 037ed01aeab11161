package discovery

// Options control one discovery request. The zero value is not useful; use
// DefaultOptions and adjust.
type Options struct {
	SearchCodeHost            bool    `json:"search_code_host"`
	SearchNetwork             bool    `json:"search_network"`
	MaxCodeHostResults        int     `json:"max_code_host_results"`
	MaxNetworkResults         int     `json:"max_network_results"`
	MinConfidence             float64 `json:"min_confidence_score"`
	IncludeRepositoryAnalysis bool    `json:"include_repository_analysis"`
	UseCache                  bool    `json:"use_cache"`
}

// DefaultOptions returns the standard request options.
func DefaultOptions() Options {
	return Options{
		SearchCodeHost:            true,
		SearchNetwork:             true,
		MaxCodeHostResults:        5,
		MaxNetworkResults:         3,
		MinConfidence:             0.3,
		IncludeRepositoryAnalysis: true,
		UseCache:                  true,
	}
}

// normalized clamps out-of-range values instead of rejecting them.
func (o Options) normalized() Options {
	if o.MaxCodeHostResults < 1 {
		o.MaxCodeHostResults = 1
	}
	if o.MaxCodeHostResults > 10 {
		o.MaxCodeHostResults = 10
	}
	if o.MaxNetworkResults < 1 {
		o.MaxNetworkResults = 1
	}
	if o.MaxNetworkResults > 5 {
		o.MaxNetworkResults = 5
	}
	if o.MinConfidence < 0 {
		o.MinConfidence = 0
	}
	if o.MinConfidence > 1 {
		o.MinConfidence = 1
	}
	return o
}
