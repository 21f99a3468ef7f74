package memstore

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	flights "github.com/radicalxdev/mission-gemini-flights-backend"
)

func newTestFlight(number, origin, destination string) *flights.Flight {
	return &flights.Flight{
		FlightNumber:     number,
		Airline:          "Phantom",
		Origin:           origin,
		Destination:      destination,
		OpenSeatsEconomy: 100,
		CapacityEconomy:  100,
		EconomySeatCost:  120,
	}
}

func TestStore_InsertAssignsIDs(t *testing.T) {
	ctx := context.Background()
	s := New()

	first, err := s.Insert(ctx, newTestFlight("AA100", "JFK", "LAX"))
	require.NoError(t, err)
	second, err := s.Insert(ctx, newTestFlight("AA101", "JFK", "LAX"))
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.FlightID)
	assert.Equal(t, int64(2), second.FlightID)
	assert.Equal(t, 2, s.Len())
}

func TestStore_QueryInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := New()

	for _, number := range []string{"AA100", "BB200", "CC300"} {
		_, err := s.Insert(ctx, newTestFlight(number, "JFK", "LAX"))
		require.NoError(t, err)
	}

	all, err := s.Query(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "AA100", all[0].FlightNumber)
	assert.Equal(t, "BB200", all[1].FlightNumber)
	assert.Equal(t, "CC300", all[2].FlightNumber)
}

func TestStore_QueryPredicate(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.Insert(ctx, newTestFlight("AA100", "JFK", "LAX"))
	require.NoError(t, err)
	_, err = s.Insert(ctx, newTestFlight("AA200", "LAX", "SFO"))
	require.NoError(t, err)

	got, err := s.Query(ctx, func(f *flights.Flight) bool {
		return f.Origin == "LAX"
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "AA200", got[0].FlightNumber)
}

func TestStore_GetNotFound(t *testing.T) {
	s := New()

	_, err := s.Get(context.Background(), 42)
	assert.ErrorIs(t, err, flights.ErrFlightNotFound)
}

func TestStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New()

	stored, err := s.Insert(ctx, newTestFlight("AA100", "JFK", "LAX"))
	require.NoError(t, err)

	got, err := s.Get(ctx, stored.FlightID)
	require.NoError(t, err)
	got.OpenSeatsEconomy = 0

	again, err := s.Get(ctx, stored.FlightID)
	require.NoError(t, err)
	assert.Equal(t, 100, again.OpenSeatsEconomy)
}

func TestStore_UpdateNotFound(t *testing.T) {
	s := New()

	_, err := s.Update(context.Background(), 42, func(f *flights.Flight) error {
		return nil
	})
	assert.ErrorIs(t, err, flights.ErrFlightNotFound)
}

func TestStore_UpdateAbortLeavesRecordUnchanged(t *testing.T) {
	ctx := context.Background()
	s := New()

	stored, err := s.Insert(ctx, newTestFlight("AA100", "JFK", "LAX"))
	require.NoError(t, err)

	_, err = s.Update(ctx, stored.FlightID, func(f *flights.Flight) error {
		f.OpenSeatsEconomy = 0
		return flights.ErrInsufficientInventory
	})
	assert.ErrorIs(t, err, flights.ErrInsufficientInventory)

	got, err := s.Get(ctx, stored.FlightID)
	require.NoError(t, err)
	assert.Equal(t, 100, got.OpenSeatsEconomy)
}

// TestStore_UpdateConcurrentNoLostUpdates decrements a single seat per
// update from many goroutines; every decrement must be observed.
func TestStore_UpdateConcurrentNoLostUpdates(t *testing.T) {
	ctx := context.Background()
	s := New()

	stored, err := s.Insert(ctx, newTestFlight("AA100", "JFK", "LAX"))
	require.NoError(t, err)

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := s.Update(ctx, stored.FlightID, func(f *flights.Flight) error {
				f.OpenSeatsEconomy--
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.Get(ctx, stored.FlightID)
	require.NoError(t, err)
	assert.Equal(t, 100-workers, got.OpenSeatsEconomy)
}

func TestStore_CanceledContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Insert(ctx, newTestFlight("AA100", "JFK", "LAX"))
	assert.Error(t, err)

	_, err = s.Query(ctx, nil)
	assert.Error(t, err)
}
