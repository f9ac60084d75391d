package api

import (
	"net/url"

	"github.com/mattiaburati/georouting/geo"
)

type ServerDefinition struct {
	// Constructed scheme://Host:port URL for region redirection - note that this excludes both the path specification
	// and query parameters, as these will be lazily inserted by the router
	URL url.URL

	// Region identifier the server handles - e.g. europe
	RegionID string

	// Is the server designated as the default handler for unmatched regions?
	DefaultServer bool
}

// Overlay applies discovered server definitions on top of the compiled-in
// routing tables. It only ever replaces hostnames for regions a definition
// names; in particular the default entry survives unless explicitly
// re-pointed. Must run before the router starts serving - the tables are
// read-only afterwards.
func Overlay(t *geo.Tables, servers []*ServerDefinition) {
	for _, srv := range servers {
		if srv.DefaultServer {
			t.Servers[geo.Default] = srv.URL.Host
		}

		if srv.RegionID != "" {
			t.Servers[geo.Region(srv.RegionID)] = srv.URL.Host
		}
	}
}
