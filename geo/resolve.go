package geo

import "strings"

// Decision is the outcome of a single resolution - the selected region and the
// hostname requests should be redirected to. It is computed fresh per request
// and carries no state.
type Decision struct {
	Region   Region
	Hostname string
}

// Resolve maps a geolocation descriptor onto a destination server. Precedence,
// first match wins:
//
//	1. nil descriptor - the default server
//	2. country override
//	3. continent mapping
//	4. the default server
//
// Unknown or malformed codes simply fall through; Resolve is total over its
// input domain and never fails.
func (t *Tables) Resolve(loc *Location) Decision {
	if loc == nil {
		return t.fallback()
	}

	if loc.Country != "" {
		if region, ok := t.Countries[strings.ToUpper(loc.Country)]; ok {
			if host, ok := t.Servers[region]; ok {
				return Decision{Region: region, Hostname: host}
			}
		}
	}

	if loc.Continent != "" {
		if region, ok := t.Continents[strings.ToUpper(loc.Continent)]; ok {
			if host, ok := t.Servers[region]; ok {
				return Decision{Region: region, Hostname: host}
			}
		}
	}

	return t.fallback()
}

func (t *Tables) fallback() Decision {
	return Decision{Region: Default, Hostname: t.Servers[Default]}
}
