package client

import "strings"

const (
	ProductionBaseURL = "https://api.lob.com"
	StagingBaseURL    = "https://api.lob-staging.com"
)

// Endpoints are the absolute URLs of the service operations.
type Endpoints struct {
	Autocomplete string `yaml:"autocomplete" json:"autocomplete"`
	USVerify     string `yaml:"us_verify" json:"us_verify"`
	IntlVerify   string `yaml:"intl_verify" json:"intl_verify"`
}

// DefaultEndpoints returns the endpoints for env. "staging" selects the
// staging host; anything else is production.
func DefaultEndpoints(env string) Endpoints {
	base := ProductionBaseURL
	if strings.EqualFold(strings.TrimSpace(env), "staging") {
		base = StagingBaseURL
	}
	return EndpointsFor(base)
}

// EndpointsFor builds the endpoints below base.
func EndpointsFor(base string) Endpoints {
	base = strings.TrimRight(base, "/")
	return Endpoints{
		Autocomplete: base + "/v1/us_autocompletions",
		USVerify:     base + "/v1/us_verifications",
		IntlVerify:   base + "/v1/intl_verifications",
	}
}

// Merge returns e with every non-empty field of override applied.
func (e Endpoints) Merge(override Endpoints) Endpoints {
	if override.Autocomplete != "" {
		e.Autocomplete = override.Autocomplete
	}
	if override.USVerify != "" {
		e.USVerify = override.USVerify
	}
	if override.IntlVerify != "" {
		e.IntlVerify = override.IntlVerify
	}
	return e
}
