package geo

import "context"

// Unknown is the sentinel reported in diagnostic headers and log records when a
// location field could not be determined.
const Unknown = "unknown"

// Location is the per-request geolocation descriptor attached by the hosting
// edge platform. All fields are optional; a nil *Location means no geolocation
// metadata was available for the request at all.
type Location struct {
	// ISO 3166-1 alpha-2 country code - e.g. DE
	Country string

	// Two-letter continent code - e.g. EU
	Continent string

	// ISO 3166-2 subdivision code, carried through for diagnostics only
	Subdivision string
}

// OrUnknown substitutes the Unknown sentinel for an empty location field.
func OrUnknown(code string) string {
	if code == "" {
		return Unknown
	}
	return code
}

type locationKey struct{}

// NewContext returns a copy of ctx carrying the given location descriptor.
func NewContext(ctx context.Context, loc *Location) context.Context {
	return context.WithValue(ctx, locationKey{}, loc)
}

// FromContext returns the location descriptor attached to ctx, or nil if the
// request carried no geolocation metadata.
func FromContext(ctx context.Context) *Location {
	loc, _ := ctx.Value(locationKey{}).(*Location)
	return loc
}
