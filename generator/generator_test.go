package generator_test

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	flights "github.com/radicalxdev/mission-gemini-flights-backend"
	"github.com/radicalxdev/mission-gemini-flights-backend/generator"
	"github.com/radicalxdev/mission-gemini-flights-backend/store/memstore"
)

var flightNumberPattern = regexp.MustCompile(`^[A-Z]{2}[1-9]\d{2}$`)

func newDeterministicGenerator() *generator.Generator {
	return generator.New().WithRand(rand.New(rand.NewSource(1)))
}

func TestGenerator_Generate(t *testing.T) {
	gen := newDeterministicGenerator()
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	batch, err := gen.Generate(context.Background(), generator.Input{
		Origin:      "JFK",
		Destination: "LAX",
		Date:        date,
	}, 25)
	require.NoError(t, err)
	require.Len(t, batch, 25)

	for _, flight := range batch {
		assert.Regexp(t, flightNumberPattern, flight.FlightNumber)
		assert.Contains(t, generator.Airlines, flight.Airline)
		assert.Equal(t, "JFK", flight.Origin)
		assert.Equal(t, "LAX", flight.Destination)
		assert.Equal(t, date, flight.Date)

		assert.True(t, flight.ArrivalTime.After(flight.DepartureTime))
		assert.False(t, flight.DepartureTime.Before(date))
		assert.True(t, flight.DepartureTime.Before(date.AddDate(0, 0, 1)))

		for _, class := range flights.SeatClasses() {
			assert.Equal(t, flight.Capacity(class), flight.OpenSeats(class))
			assert.GreaterOrEqual(t, flight.OpenSeats(class), 0)
		}
		assert.LessOrEqual(t, flight.OpenSeatsEconomy, 200)
		assert.LessOrEqual(t, flight.OpenSeatsBusiness, 50)
		assert.LessOrEqual(t, flight.OpenSeatsFirstClass, 20)

		assert.GreaterOrEqual(t, flight.EconomySeatCost, 50)
		assert.LessOrEqual(t, flight.EconomySeatCost, 500)
		assert.GreaterOrEqual(t, flight.BusinessSeatCost, 500)
		assert.LessOrEqual(t, flight.BusinessSeatCost, 1500)
		assert.GreaterOrEqual(t, flight.FirstClassSeatCost, 1500)
		assert.LessOrEqual(t, flight.FirstClassSeatCost, 3000)
	}
}

func TestGenerator_Generate_RequiresRoute(t *testing.T) {
	gen := newDeterministicGenerator()

	_, err := gen.Generate(context.Background(), generator.Input{Origin: "JFK"}, 1)
	assert.ErrorIs(t, err, flights.ErrInvalidCriteria)
}

func TestGenerator_Generate_NoDateUsesClock(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	gen := newDeterministicGenerator().
		WithTimeProvider(flights.NewFixedTimeProvider(now))

	batch, err := gen.Generate(context.Background(), generator.Input{
		Origin:      "JFK",
		Destination: "LAX",
	}, 10)
	require.NoError(t, err)

	for _, flight := range batch {
		assert.True(t, flight.DepartureTime.After(now))
		assert.True(t, flight.DepartureTime.Before(now.Add(11*time.Hour)))
	}
}

func TestGenerator_Seed(t *testing.T) {
	gen := newDeterministicGenerator()
	store := memstore.New()
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	inserted, err := gen.Seed(context.Background(), store, []generator.Input{
		{Origin: "JFK", Destination: "LAX", Date: date},
		{Origin: "SFO", Destination: "ORD", Date: date},
	}, 3)
	require.NoError(t, err)
	require.Len(t, inserted, 6)
	assert.Equal(t, 6, store.Len())
	assert.Equal(t, int64(1), inserted[0].FlightID)
	assert.Equal(t, "SFO", inserted[3].Origin)
}

func TestLoadRoutes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.yaml")
	content := `routes:
  - origin: JFK
    destination: LAX
    date: "2024-03-15"
  - origin: SFO
    destination: ORD
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	routes, err := generator.LoadRoutes(path)
	require.NoError(t, err)
	require.Len(t, routes, 2)
	assert.Equal(t, "JFK", routes[0].Origin)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), routes[0].Date)
	assert.True(t, routes[1].Date.IsZero())
}

func TestLoadRoutes_BadDate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.yaml")
	content := `routes:
  - origin: JFK
    destination: LAX
    date: "03/15/2024"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := generator.LoadRoutes(path)
	assert.Error(t, err)
}
