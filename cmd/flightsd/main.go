// Command flightsd serves the flight inventory over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	flights "github.com/radicalxdev/mission-gemini-flights-backend"
	"github.com/radicalxdev/mission-gemini-flights-backend/booking"
	"github.com/radicalxdev/mission-gemini-flights-backend/config"
	"github.com/radicalxdev/mission-gemini-flights-backend/generator"
	"github.com/radicalxdev/mission-gemini-flights-backend/search"
	"github.com/radicalxdev/mission-gemini-flights-backend/server"
	"github.com/radicalxdev/mission-gemini-flights-backend/store/cosmos"
	"github.com/radicalxdev/mission-gemini-flights-backend/store/memstore"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "flightsd",
	Short: "Flight inventory and booking service",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"path to config file")
	rootCmd.AddCommand(serveCmd)

	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	log := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("bad log level %q: %w", cfg.LogLevel, err)
	}
	log.SetLevel(level)

	store, err := newStore(ctx, cfg, log)
	if err != nil {
		return err
	}

	gen := generator.New()
	if cfg.SeedFlights > 0 {
		routes, err := seedRoutes(cfg)
		if err != nil {
			return err
		}
		seeded, err := gen.Seed(ctx, store, routes, cfg.SeedFlights)
		if err != nil {
			return fmt.Errorf("seed flights: %w", err)
		}
		log.WithField("count", len(seeded)).Info("seeded flights")
	}

	srv := server.New(server.Config{
		Addr:      cfg.Addr,
		Store:     store,
		Searcher:  search.New(store),
		Booker:    booking.New(store).WithLogger(log),
		Generator: gen,
		Logger:    log,
	})

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return srv.Run(ctx)
	})
	return group.Wait()
}

// newStore picks the store backend from config.
func newStore(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (flights.Store, error) {
	switch cfg.Store {
	case "cosmos":
		return cosmos.New(ctx, cosmos.Options{
			Endpoint:  cfg.Cosmos.Endpoint,
			Database:  cfg.Cosmos.Database,
			Container: cfg.Cosmos.Container,
			Emulator:  cfg.Cosmos.Emulator,
			Key:       cfg.Cosmos.Key,
			Logger:    log,
		})
	default:
		return memstore.New(), nil
	}
}

// defaultRoutes seeds a handful of busy city pairs when no routes file is
// configured.
var defaultRoutes = []generator.Input{
	{Origin: "JFK", Destination: "LAX"},
	{Origin: "LAX", Destination: "JFK"},
	{Origin: "SFO", Destination: "ORD"},
	{Origin: "ORD", Destination: "SFO"},
	{Origin: "ATL", Destination: "MIA"},
}

func seedRoutes(cfg *config.Config) ([]generator.Input, error) {
	if cfg.RoutesFile == "" {
		return defaultRoutes, nil
	}
	return generator.LoadRoutes(cfg.RoutesFile)
}
