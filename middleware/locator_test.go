package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mattiaburati/georouting/geo"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capture runs the locator middleware and returns the location the inner
// handler observed.
func capture(l *Locator, r *http.Request) *geo.Location {
	var got *geo.Location
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = geo.FromContext(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), r)
	return got
}

func TestLocatorFromHeaders(t *testing.T) {
	l := &Locator{log: zerolog.Nop()}

	r := httptest.NewRequest(http.MethodGet, "https://live.example.io/x", nil)
	r.Header.Set("X-Country-Code", "FR")
	r.Header.Set("X-Continent-Code", "EU")
	r.Header.Set("X-Subdivision-Code", "FR-IDF")

	loc := capture(l, r)
	require.NotNil(t, loc)
	assert.Equal(t, "FR", loc.Country)
	assert.Equal(t, "EU", loc.Continent)
	assert.Equal(t, "FR-IDF", loc.Subdivision)
}

func TestLocatorAbsentWithoutMetadata(t *testing.T) {
	l := &Locator{log: zerolog.Nop()}

	r := httptest.NewRequest(http.MethodGet, "https://live.example.io/x", nil)

	assert.Nil(t, capture(l, r))
}

func TestLocatorGeocoderFallback(t *testing.T) {
	var lookedUp string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lookedUp = r.URL.Path
		_, _ = w.Write([]byte(`{"country_code":"de","continent_code":"eu"}`))
	}))
	defer srv.Close()

	l := &Locator{GeocoderURL: srv.URL, Client: srv.Client(), log: zerolog.Nop()}

	r := httptest.NewRequest(http.MethodGet, "https://live.example.io/x", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

	loc := capture(l, r)
	require.NotNil(t, loc)
	assert.Equal(t, "DE", loc.Country)
	assert.Equal(t, "EU", loc.Continent)
	assert.Equal(t, "/georeverse/203.0.113.9", lookedUp)
}

func TestLocatorGeocoderFailureAbsorbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	l := &Locator{GeocoderURL: srv.URL, Client: srv.Client(), log: zerolog.Nop()}

	r := httptest.NewRequest(http.MethodGet, "https://live.example.io/x", nil)

	// httptest requests carry a parseable RemoteAddr, so the lookup runs and
	// its garbage response must degrade to an absent descriptor
	assert.Nil(t, capture(l, r))
}

func TestLocatorHeadersSkipGeocoder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("geocoder consulted despite edge headers")
	}))
	defer srv.Close()

	l := &Locator{GeocoderURL: srv.URL, Client: srv.Client(), log: zerolog.Nop()}

	r := httptest.NewRequest(http.MethodGet, "https://live.example.io/x", nil)
	r.Header.Set("X-Country-Code", "FR")

	loc := capture(l, r)
	require.NotNil(t, loc)
	assert.Equal(t, "FR", loc.Country)
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "https://live.example.io/x", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", clientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9")
	assert.Equal(t, "203.0.113.9", clientIP(r))

	r.Header.Del("X-Forwarded-For")
	r.RemoteAddr = "192.0.2.1:54321"
	assert.Equal(t, "192.0.2.1", clientIP(r))
}
