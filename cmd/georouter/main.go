package main

import (
	"net"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/mattiaburati/georouting/api"
	"github.com/mattiaburati/georouting/geo"
	"github.com/mattiaburati/georouting/metrics"
	router "github.com/mattiaburati/georouting/middleware"
	"github.com/rs/zerolog"
	"github.com/urfave/cli"
)

type Server struct {
	handler http.Handler
	log     zerolog.Logger
}

func (s *Server) Start(host string, port int) error {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	s.log.Info().Str("addr", addr).Msg("listening")
	return http.ListenAndServe(addr, s.handler)
}

// NewServer builds the routing tables and the handler chain. Discovery, when
// a Consul agent is configured, happens exactly once here - the tables are
// read-only from this point on.
func NewServer(log zerolog.Logger, config *api.ConsulConfiguration) (*Server, error) {
	tables := geo.DefaultTables()

	if config.Host != "" {
		servers, err := api.ConsulRegionRoutes(config)
		if err != nil {
			return nil, err
		}

		for _, srv := range servers {
			log.Info().
				Str("region", srv.RegionID).
				Bool("default", srv.DefaultServer).
				Str("url", srv.URL.String()).
				Msg("discovered region server")
		}

		api.Overlay(tables, servers)
	}

	if err := tables.Validate(); err != nil {
		return nil, err
	}

	rt := router.New(tables, log)
	locator := router.NewLocator(log)

	chain := router.Timing(log, locator.Middleware(router.Boundary(log, rt)))

	return &Server{handler: chain, log: log}, nil
}

// adminHandler serves metrics and liveness off the main request path, so the
// routing semantics of the primary listener stay exact.
func adminHandler() http.Handler {
	m := mux.NewRouter()
	m.Handle("/metrics", metrics.Handler())
	m.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	return m
}

func main() {
	var port int
	var host string
	var metricsPort int
	var debug bool

	app := cli.NewApp()
	app.Name = "georouter"
	app.Usage = "Geographic request router for regional live endpoints"
	app.Version = "0.1.0"

	config := api.NewConsulConfiguration()

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:        "consul-agent",
			Usage:       "Consul agent to connect to",
			Destination: &config.Host,
		},

		cli.StringFlag{
			Name:        "consul-service",
			Usage:       "Name of Consul Service to look up",
			Value:       config.Service,
			Destination: &config.Service,
		},

		cli.StringFlag{
			Name:        "consul-tag",
			Usage:       "Name of Consul tag to filter on",
			Value:       config.Tag,
			Destination: &config.Tag,
		},

		cli.StringFlag{
			Name:        "host",
			Usage:       "Host address to bind to",
			Value:       "",
			Destination: &host,
		},

		cli.IntFlag{
			Name:        "port",
			Usage:       "Port to bind to",
			Value:       7000,
			Destination: &port,
		},

		cli.IntFlag{
			Name:        "metrics-port",
			Usage:       "Port for the metrics/health listener (0 disables it)",
			Value:       9090,
			Destination: &metricsPort,
		},

		cli.BoolFlag{
			Name:        "debug",
			Usage:       "Enable debug logging",
			Destination: &debug,
		},
	}

	app.Action = func(c *cli.Context) error {
		level := zerolog.InfoLevel
		if debug {
			level = zerolog.DebugLevel
		}
		log := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(level)

		s, err := NewServer(log, config)
		if err != nil {
			return err
		}

		if metricsPort > 0 {
			go func() {
				addr := net.JoinHostPort(host, strconv.Itoa(metricsPort))
				if err := http.ListenAndServe(addr, adminHandler()); err != nil {
					log.Error().Err(err).Msg("metrics listener failed")
				}
			}()
		}

		return s.Start(host, port)
	}

	if err := app.Run(os.Args); err != nil {
		log := zerolog.New(os.Stderr)
		log.Fatal().Err(err).Msg("georouter failed")
	}
}
