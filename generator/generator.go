// Package generator produces randomized flights for seeding a store, the
// way a demo environment fills its inventory.
package generator

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	flights "github.com/radicalxdev/mission-gemini-flights-backend"
)

// Airlines is the pool of fictional carriers flights are drawn from.
var Airlines = []string{
	"Phantom",
	"DreamSky Airlines",
	"VirtualJet",
	"Enchanted Air",
	"AeroFiction",
}

// Input names the route and date to generate flights for.
type Input struct {
	Origin      string    `yaml:"origin"`
	Destination string    `yaml:"destination"`
	Date        time.Time `yaml:"date"`
}

// Generator builds random flights. The rand source is injected so tests
// can fix the sequence; time.Now is taken from the provider.
type Generator struct {
	rng   *rand.Rand
	clock flights.TimeProvider
}

// New creates a Generator seeded from the current time.
func New() *Generator {
	return &Generator{
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		clock: flights.NewDefaultTimeProvider(),
	}
}

// WithRand replaces the random source. Returns the generator for chaining.
func (g *Generator) WithRand(rng *rand.Rand) *Generator {
	g.rng = rng
	return g
}

// WithTimeProvider replaces the clock. Returns the generator for chaining.
func (g *Generator) WithTimeProvider(clock flights.TimeProvider) *Generator {
	g.clock = clock
	return g
}

// Generate builds count random flights for the given route and date.
// Flights are not persisted; pass them to a store or use [Seed].
func (g *Generator) Generate(ctx context.Context, input Input, count int) ([]*flights.Flight, error) {
	if input.Origin == "" || input.Destination == "" {
		return nil, fmt.Errorf("%w: origin and destination are required", flights.ErrInvalidCriteria)
	}
	if count < 1 {
		count = 1
	}

	generated := make([]*flights.Flight, 0, count)
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		generated = append(generated, g.flight(input))
	}
	return generated, nil
}

// flight builds a single random flight on the route.
func (g *Generator) flight(input Input) *flights.Flight {
	var departure time.Time
	if input.Date.IsZero() {
		// No date given: depart within the next ten hours.
		departure = g.clock.Now().UTC().
			Add(time.Duration(g.intn(1, 10)) * time.Hour).
			Add(time.Duration(g.intn(0, 59)) * time.Minute).
			Truncate(time.Minute)
	} else {
		day := startOfDay(input.Date)
		departure = day.
			Add(time.Duration(g.intn(1, 10)) * time.Hour).
			Add(time.Duration(g.intn(0, 59)) * time.Minute)
	}
	day := startOfDay(departure)
	arrival := departure.Add(time.Duration(g.intn(30, 600)) * time.Minute)

	economy := g.intn(0, 200)
	business := g.intn(0, 50)
	first := g.intn(0, 20)

	return &flights.Flight{
		FlightNumber:  g.flightNumber(),
		Airline:       Airlines[g.rng.Intn(len(Airlines))],
		Origin:        input.Origin,
		Destination:   input.Destination,
		Date:          day,
		DepartureTime: departure,
		ArrivalTime:   arrival,

		OpenSeatsEconomy:    economy,
		OpenSeatsBusiness:   business,
		OpenSeatsFirstClass: first,

		CapacityEconomy:    economy,
		CapacityBusiness:   business,
		CapacityFirstClass: first,

		EconomySeatCost:    g.intn(50, 500),
		BusinessSeatCost:   g.intn(500, 1500),
		FirstClassSeatCost: g.intn(1500, 3000),
	}
}

// flightNumber builds identifiers like "BA347": two uppercase letters and
// a three digit number.
func (g *Generator) flightNumber() string {
	letters := []byte{
		byte('A' + g.rng.Intn(26)),
		byte('A' + g.rng.Intn(26)),
	}
	return fmt.Sprintf("%s%d", letters, g.intn(100, 999))
}

// intn returns a random int in [min, max].
func (g *Generator) intn(min, max int) int {
	return min + g.rng.Intn(max-min+1)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Seed generates count flights per route and inserts them into the store,
// returning everything inserted.
func (g *Generator) Seed(
	ctx context.Context,
	store flights.Store,
	routes []Input,
	count int,
) ([]*flights.Flight, error) {
	var inserted []*flights.Flight
	for _, route := range routes {
		batch, err := g.Generate(ctx, route, count)
		if err != nil {
			return inserted, err
		}
		for _, flight := range batch {
			stored, err := store.Insert(ctx, flight)
			if err != nil {
				return inserted, fmt.Errorf("seed %s-%s: %w", route.Origin, route.Destination, err)
			}
			inserted = append(inserted, stored)
		}
	}
	return inserted, nil
}

// routesFile is the YAML shape of a routes file.
type routesFile struct {
	Routes []routeEntry `yaml:"routes"`
}

type routeEntry struct {
	Origin      string `yaml:"origin"`
	Destination string `yaml:"destination"`
	Date        string `yaml:"date"`
}

// LoadRoutes reads seed routes from a YAML file. The date field is
// optional YYYY-MM-DD; empty means "today" at generation time.
func LoadRoutes(path string) ([]Input, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read routes file: %w", err)
	}

	var file routesFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse routes file: %w", err)
	}

	routes := make([]Input, 0, len(file.Routes))
	for _, entry := range file.Routes {
		input := Input{Origin: entry.Origin, Destination: entry.Destination}
		if entry.Date != "" {
			date, err := time.Parse("2006-01-02", entry.Date)
			if err != nil {
				return nil, fmt.Errorf("route %s-%s: bad date %q: %w",
					entry.Origin, entry.Destination, entry.Date, err)
			}
			input.Date = date
		}
		routes = append(routes, input)
	}
	return routes, nil
}
