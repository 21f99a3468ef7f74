// Package memstore provides an in-memory flights.Store.
//
// Records are held behind per-record mutexes so that concurrent updates to
// the same flight serialize (no lost updates) while bookings against
// different flights proceed independently. The store-wide lock only guards
// the id index and is never held across a mutation.
package memstore

import (
	"context"
	"fmt"
	"sync"

	flights "github.com/radicalxdev/mission-gemini-flights-backend"
)

type entry struct {
	mu     sync.Mutex
	flight flights.Flight
}

// Store is an in-memory flight collection. The zero value is not usable;
// create one with New.
type Store struct {
	mu      sync.RWMutex
	entries map[int64]*entry
	order   []int64
	nextID  int64
}

// New creates an empty Store.
func New() *Store {
	return &Store{entries: make(map[int64]*entry)}
}

// Insert adds a flight, assigning the next flight id. The stored record is
// a copy; the caller keeps ownership of f.
func (s *Store) Insert(ctx context.Context, f *flights.Flight) (*flights.Flight, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	stored := *f
	stored.FlightID = s.nextID
	s.entries[stored.FlightID] = &entry{flight: stored}
	s.order = append(s.order, stored.FlightID)

	return stored.Clone(), nil
}

// Query returns copies of all flights matching the predicate, in insertion
// order. A nil predicate matches everything.
func (s *Store) Query(ctx context.Context, match flights.Predicate) ([]*flights.Flight, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	ids := make([]int64, len(s.order))
	copy(ids, s.order)
	s.mu.RUnlock()

	var results []*flights.Flight
	for _, id := range ids {
		f, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if match == nil || match(f) {
			results = append(results, f)
		}
	}
	return results, nil
}

// Get returns a copy of the flight with the given id.
func (s *Store) Get(ctx context.Context, id int64) (*flights.Flight, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: id %d", flights.ErrFlightNotFound, id)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.flight.Clone(), nil
}

// Update applies fn to the current record for id under that record's lock
// and commits the result. If fn returns an error the record is left
// unchanged. Once fn has succeeded the commit always completes, regardless
// of context cancellation.
func (s *Store) Update(ctx context.Context, id int64, fn flights.MutateFunc) (*flights.Flight, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: id %d", flights.ErrFlightNotFound, id)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	updated := e.flight.Clone()
	if err := fn(updated); err != nil {
		return nil, err
	}
	e.flight = *updated

	return updated.Clone(), nil
}

// Len returns the number of stored flights.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Compile-time check that Store implements flights.Store.
var _ flights.Store = (*Store)(nil)
