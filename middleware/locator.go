package router

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"os"
	"strings"

	"github.com/mattiaburati/georouting/geo"
	"github.com/rs/zerolog"
)

// Header names the hosting edge platform uses to attach geolocation metadata
// to the inbound request.
const (
	countryHeader     = "X-Country-Code"
	continentHeader   = "X-Continent-Code"
	subdivisionHeader = "X-Subdivision-Code"
)

type geocoderResponse struct {
	Country   string `json:"country_code"`
	Continent string `json:"continent_code"`
}

// Locator lifts edge-supplied geolocation headers into an explicit
// geo.Location on the request context. When the headers are missing and a
// reverse geocoder is configured, the client IP is looked up there instead;
// any failure along the way simply leaves the descriptor absent.
type Locator struct {
	// GeocoderURL is the base URL of the reverse geocoder collaborator.
	// Empty disables the fallback lookup.
	GeocoderURL string

	Client *http.Client

	log zerolog.Logger
}

// NewLocator returns a locator configured from the REVERSE_GEOCODER_URL
// environment variable.
func NewLocator(log zerolog.Logger) *Locator {
	return &Locator{
		GeocoderURL: os.Getenv("REVERSE_GEOCODER_URL"),
		Client:      http.DefaultClient,
		log:         log,
	}
}

func (l *Locator) lookup(ip string) (*geocoderResponse, error) {
	resp, err := l.Client.Post(l.GeocoderURL+"/georeverse/"+ip, "application/json", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var decoded geocoderResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, err
	}

	return &decoded, nil
}

// Middleware attaches the location descriptor, when one can be determined, to
// the request context for the handlers below it.
func (l *Locator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		loc := &geo.Location{
			Country:     r.Header.Get(countryHeader),
			Continent:   r.Header.Get(continentHeader),
			Subdivision: r.Header.Get(subdivisionHeader),
		}

		if loc.Country == "" && loc.Continent == "" && l.GeocoderURL != "" {
			if ip := clientIP(r); net.ParseIP(ip) != nil {
				decoded, err := l.lookup(ip)
				if err != nil {
					l.log.Debug().Err(err).Str("ip", ip).Msg("reverse geocoder lookup failed")
				} else {
					loc.Country = strings.ToUpper(decoded.Country)
					loc.Continent = strings.ToUpper(decoded.Continent)
				}
			}
		}

		if *loc == (geo.Location{}) {
			// No metadata at all - leave the descriptor absent
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(geo.NewContext(r.Context(), loc)))
	})
}

// clientIP extracts the originating client address, preferring the first
// X-Forwarded-For entry over the socket peer.
func clientIP(r *http.Request) string {
	fwd := r.Header.Get("X-Forwarded-For")
	if fwd != "" {
		s := strings.Index(fwd, ", ")
		if s == -1 {
			s = len(fwd)
		}
		return fwd[:s]
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
