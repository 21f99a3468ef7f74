package flights

import "context"

// Predicate decides whether a flight matches a query. A nil Predicate
// matches every flight.
type Predicate func(*Flight) bool

// MutateFunc is applied to the most current copy of a flight record inside
// [Store.Update]. Returning an error aborts the update and leaves the
// stored record unchanged.
type MutateFunc func(*Flight) error

// Store is the abstract flight collection. Concrete transports (in-memory,
// Cosmos DB) live under store/.
//
// Query returns matches in insertion order. Update must be atomic with
// respect to other updates on the same flight id (no lost updates), while
// updates to different flight ids proceed independently; store-wide
// locking would serialize unrelated bookings and is not acceptable.
//
// Implementations return flights the caller owns: mutating a returned
// *Flight never affects the stored record.
type Store interface {
	// Insert adds a new flight, assigns its FlightID, and returns the
	// stored record.
	Insert(ctx context.Context, f *Flight) (*Flight, error)

	// Query returns all flights matching the predicate, in insertion
	// order.
	Query(ctx context.Context, match Predicate) ([]*Flight, error)

	// Get returns the flight with the given id, or [ErrFlightNotFound].
	Get(ctx context.Context, id int64) (*Flight, error)

	// Update applies fn to the current record for id and persists the
	// result, or returns [ErrFlightNotFound]. Once the commit step has
	// been entered the update runs to completion.
	Update(ctx context.Context, id int64, fn MutateFunc) (*Flight, error)
}
