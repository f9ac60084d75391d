package geo

import (
	"fmt"
	"strings"
)

// Region identifies a coarse geographic bucket used to select a destination
// server.
type Region string

const (
	Europe   Region = "europe"
	Americas Region = "americas"
	Asia     Region = "asia"

	// Default is the catch-all bucket for requests that match no other rule.
	// Every server table must carry an entry for it.
	Default Region = "default"
)

// Tables holds the three routing maps. A Tables value is built once at startup
// (compiled-in defaults, optionally overlaid with discovered servers) and must
// not be mutated once the router starts serving - every lookup path treats it
// as read-only.
type Tables struct {
	// Servers maps a region onto the destination hostname for redirection.
	// Scheme is fixed to https by the router, while path and query parameters
	// are inherited from the originating request.
	Servers map[Region]string

	// Continents maps a two-letter continent code onto a region.
	Continents map[string]Region

	// Countries maps an ISO 3166-1 alpha-2 country code onto a region,
	// taking precedence over the continent mapping.
	Countries map[string]Region
}

// DefaultTables returns the compiled-in routing tables. The asia and default
// buckets currently share the americas server until dedicated regional servers
// come online.
func DefaultTables() *Tables {
	return &Tables{
		Servers: map[Region]string{
			Europe:   "eu.example.io",
			Americas: "us.example.io",
			Asia:     "us.example.io",
			Default:  "us.example.io",
		},
		Continents: map[string]Region{
			"EU": Europe,
			"NA": Americas,
			"SA": Americas,
			"AS": Asia,
			"OC": Asia,
			"AF": Europe,
			"AN": Default,
		},
		Countries: map[string]Region{
			"TR": Europe,
			"RU": Europe,
			"AU": Asia,
			"NZ": Asia,
			"GL": Americas,
		},
	}
}

// Validate checks that every region referenced by a lookup table resolves to a
// server, and that the default entry exists. A failure here is a configuration
// error and should abort startup rather than surface at request time.
func (t *Tables) Validate() error {
	if t.Servers[Default] == "" {
		return fmt.Errorf("geo: no default server defined")
	}

	for code, region := range t.Continents {
		if t.Servers[region] == "" {
			return fmt.Errorf("geo: continent %s maps to region %s with no server", code, region)
		}
	}

	for code, region := range t.Countries {
		if t.Servers[region] == "" {
			return fmt.Errorf("geo: country %s maps to region %s with no server", code, region)
		}
	}

	return nil
}

// Label returns the region label for a destination hostname - its leading
// '.'-delimited component, e.g. "eu" for eu.example.io.
func Label(hostname string) string {
	if i := strings.Index(hostname, "."); i != -1 {
		return hostname[:i]
	}
	return hostname
}
