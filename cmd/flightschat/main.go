// Command flightschat is an interactive flight booking assistant backed by
// a Gemini model through langchaingo.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tmc/langchaingo/llms/googleai"

	"github.com/radicalxdev/mission-gemini-flights-backend/booking"
	"github.com/radicalxdev/mission-gemini-flights-backend/chat"
	"github.com/radicalxdev/mission-gemini-flights-backend/config"
	"github.com/radicalxdev/mission-gemini-flights-backend/generator"
	"github.com/radicalxdev/mission-gemini-flights-backend/search"
	"github.com/radicalxdev/mission-gemini-flights-backend/store/memstore"
	"github.com/radicalxdev/mission-gemini-flights-backend/tools"
)

const (
	colorReset = "\033[0m"
	colorCyan  = "\033[36m"
	colorDim   = "\033[2m"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "flightschat",
	Short: "Interactive flight booking assistant",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"path to config file")

	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	if os.Getenv("GOOGLE_API_KEY") == "" {
		return errors.New("GOOGLE_API_KEY environment variable is not set")
	}

	model, err := googleai.New(ctx,
		googleai.WithAPIKey(os.Getenv("GOOGLE_API_KEY")),
		googleai.WithDefaultModel(cfg.Model.Name),
		googleai.WithDefaultTemperature(cfg.Model.Temperature),
	)
	if err != nil {
		return fmt.Errorf("create model: %w", err)
	}

	// Quiet tool call logging so it doesn't interleave with the chat.
	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)

	store := memstore.New()
	seedCount := cfg.SeedFlights
	if seedCount < 1 {
		seedCount = 5
	}
	seeded, err := generator.New().Seed(ctx, store, []generator.Input{
		{Origin: "JFK", Destination: "LAX"},
		{Origin: "SFO", Destination: "ORD"},
	}, seedCount)
	if err != nil {
		return fmt.Errorf("seed flights: %w", err)
	}

	registry := tools.NewRegistry(
		search.New(store),
		booking.New(store).WithLogger(log),
	)
	session := chat.NewSession(model, registry, chat.WithLogger(log))

	fmt.Printf("%s%d flights loaded. Ask about flights or 'q' to quit.%s\n",
		colorDim, len(seeded), colorReset)

	rl, err := readline.New(colorCyan + "you> " + colorReset)
	if err != nil {
		return fmt.Errorf("create readline: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			// Ctrl-C on an empty line or Ctrl-D ends the session.
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "q", "quit", "exit":
			return nil
		case "reset":
			session.Reset()
			fmt.Printf("%sconversation cleared%s\n", colorDim, colorReset)
			continue
		}

		reply, err := session.Turn(ctx, line)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Println(reply)
	}
}
