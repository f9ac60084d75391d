package router

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mattiaburati/georouting/geo"
	"github.com/mattiaburati/georouting/metrics"
	"github.com/rs/zerolog"
)

// TargetHost is the hostname this router intercepts. Requests for any other
// host are forwarded to their original destination untouched.
const TargetHost = "live.example.io"

// Forwarder sends a request on to its original destination and returns the
// upstream response. This is the passthrough collaborator for hosts the router
// does not intercept.
type Forwarder interface {
	Forward(r *http.Request) (*http.Response, error)
}

// ForwarderFunc adapts a plain function to the Forwarder interface.
type ForwarderFunc func(r *http.Request) (*http.Response, error)

func (f ForwarderFunc) Forward(r *http.Request) (*http.Response, error) {
	return f(r)
}

// transportForward re-issues an inbound server request as an outbound client
// request against its original destination.
func transportForward(rt http.RoundTripper) ForwarderFunc {
	return func(r *http.Request) (*http.Response, error) {
		out := r.Clone(r.Context())
		out.RequestURI = ""
		if out.URL.Host == "" {
			out.URL.Host = r.Host
		}
		if out.URL.Scheme == "" {
			out.URL.Scheme = "https"
		}
		return rt.RoundTrip(out)
	}
}

// Router redirects requests for the target host to a regional server chosen
// from the request's geolocation descriptor, and passes every other request
// through to its original destination verbatim.
//
// A Router holds no mutable state - the routing tables are read-only for the
// process lifetime - so a single instance serves any number of concurrent
// requests without coordination.
type Router struct {
	// Target is the hostname being intercepted.
	Target string

	// HTTP status code for redirection (defaults to http.StatusFound - 302)
	StatusCode int

	// Forwarder handles the passthrough leg.
	Forwarder Forwarder

	tables *geo.Tables
	log    zerolog.Logger
}

// New returns a router over the given routing tables. The tables should have
// been validated at startup and must not be mutated afterwards.
func New(tables *geo.Tables, log zerolog.Logger) *Router {
	return &Router{
		Target:     TargetHost,
		StatusCode: http.StatusFound,
		Forwarder:  transportForward(http.DefaultTransport),
		tables:     tables,
		log:        log,
	}
}

// Serve handles a single request. Failures are returned for the surrounding
// Boundary to shape into an error response; the routing decision itself is
// total and cannot fail.
func (rt *Router) Serve(w http.ResponseWriter, r *http.Request) error {
	if !strings.EqualFold(r.Host, rt.Target) {
		return rt.passthrough(w, r)
	}

	loc := geo.FromContext(r.Context())
	d := rt.tables.Resolve(loc)

	// Re-build the destination URL, preserving path and query verbatim
	dest := "https://" + d.Hostname + r.URL.EscapedPath()
	if r.URL.RawQuery != "" {
		dest += "?" + r.URL.RawQuery
	}

	h := w.Header()
	h.Set("Location", dest)
	// The decision depends on per-request geolocation, so intermediaries must
	// not cache the redirect
	h.Set("Cache-Control", "no-cache")
	h.Set("X-Region", geo.Label(d.Hostname))
	h.Set("X-Country", geo.OrUnknown(locCountry(loc)))
	h.Set("X-Continent", geo.OrUnknown(locContinent(loc)))
	w.WriteHeader(rt.StatusCode)

	metrics.Requests.WithLabelValues("redirect").Inc()
	metrics.Redirects.WithLabelValues(string(d.Region)).Inc()

	rt.decisionEvent(r, loc).
		Str("region", string(d.Region)).
		Str("server", d.Hostname).
		Msg("redirect")

	return nil
}

func (rt *Router) passthrough(w http.ResponseWriter, r *http.Request) error {
	resp, err := rt.Forwarder.Forward(r)
	if err != nil {
		return fmt.Errorf("forwarding to %s: %w", r.Host, err)
	}
	defer resp.Body.Close()

	// Relay the upstream response verbatim - no header injection, no status
	// override
	for k, vv := range resp.Header {
		for _, v := range vv {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(resp.StatusCode)

	metrics.Requests.WithLabelValues("passthrough").Inc()

	rt.decisionEvent(r, geo.FromContext(r.Context())).
		Int("upstream_status", resp.StatusCode).
		Msg("passthrough")

	if _, err := io.Copy(w, resp.Body); err != nil {
		// Headers are already on the wire at this point, so the copy failure
		// can only be logged, not converted into an error response
		rt.log.Error().Err(err).Str("host", r.Host).Msg("relaying upstream body failed")
	}

	return nil
}

// decisionEvent starts the per-request decision record with the fields common
// to both outcomes.
func (rt *Router) decisionEvent(r *http.Request, loc *geo.Location) *zerolog.Event {
	return rt.log.Info().
		Str("url", r.URL.String()).
		Str("host", r.Host).
		Str("client_ip", clientIP(r)).
		Str("user_agent", r.UserAgent()).
		Str("country", geo.OrUnknown(locCountry(loc))).
		Str("continent", geo.OrUnknown(locContinent(loc))).
		Str("subdivision", geo.OrUnknown(locSubdivision(loc)))
}

func locCountry(loc *geo.Location) string {
	if loc == nil {
		return ""
	}
	return loc.Country
}

func locContinent(loc *geo.Location) string {
	if loc == nil {
		return ""
	}
	return loc.Continent
}

func locSubdivision(loc *geo.Location) string {
	if loc == nil {
		return ""
	}
	return loc.Subdivision
}
