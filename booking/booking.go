// Package booking applies seat reservations against single flight records.
package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/lithammer/shortuuid/v3"
	"github.com/sirupsen/logrus"

	flights "github.com/radicalxdev/mission-gemini-flights-backend"
	"github.com/radicalxdev/mission-gemini-flights-backend/events"
)

// Result is the outcome of a booking attempt. Expected failures (no such
// flight, not enough seats) come back with Success=false and a
// user-facing Message; only store failures are returned as errors.
type Result struct {
	Success      bool            `json:"success"`
	Confirmation string          `json:"confirmation,omitempty"`
	Message      string          `json:"message"`
	TotalCost    int             `json:"total_cost,omitempty"`
	Flight       *flights.Flight `json:"flight_info,omitempty"`
}

// Engine books seats against a flight store.
type Engine struct {
	store  flights.Store
	events *events.Publisher
	log    logrus.FieldLogger
}

// New creates a booking engine backed by the given store.
func New(store flights.Store) *Engine {
	return &Engine{store: store, log: logrus.StandardLogger()}
}

// WithEvents makes the engine publish a confirmation event after each
// successful booking. Returns the engine for chaining.
func (e *Engine) WithEvents(publisher *events.Publisher) *Engine {
	e.events = publisher
	return e
}

// WithLogger sets the logger used for event publish failures.
func (e *Engine) WithLogger(log logrus.FieldLogger) *Engine {
	e.log = log
	return e
}

// Book reserves numSeats seats of the given class on the flight.
// numSeats defaults to 1 when zero or negative.
//
// The availability check and the seat decrement run inside a single
// Store.Update, so two simultaneous bookings against the same flight can
// never both succeed when only one has sufficient inventory. An unknown
// seat class matches no inventory and is reported through the same
// "not enough seats" outcome as an insufficient count.
func (e *Engine) Book(
	ctx context.Context,
	flightID int64,
	seatType flights.SeatClass,
	numSeats int,
) (*Result, error) {
	if numSeats < 1 {
		numSeats = 1
	}

	var totalCost int
	updated, err := e.store.Update(ctx, flightID, func(f *flights.Flight) error {
		if !seatType.Valid() || f.OpenSeats(seatType) < numSeats {
			return flights.ErrInsufficientInventory
		}
		f.SetOpenSeats(seatType, f.OpenSeats(seatType)-numSeats)
		totalCost = f.SeatCost(seatType) * numSeats
		return nil
	})

	switch {
	case errors.Is(err, flights.ErrFlightNotFound):
		return &Result{Message: "Flight not found."}, nil
	case errors.Is(err, flights.ErrInsufficientInventory):
		return &Result{Message: fmt.Sprintf("Not enough %s seats available.", seatType)}, nil
	case err != nil:
		return nil, fmt.Errorf("%w: %v", flights.ErrStoreUnavailable, err)
	}

	confirmation := shortuuid.New()
	if e.events != nil {
		// The booking already committed; a publish failure is logged,
		// not surfaced to the traveler.
		err := e.events.BookingConfirmed(events.BookingConfirmed{
			Confirmation: confirmation,
			FlightID:     updated.FlightID,
			FlightNumber: updated.FlightNumber,
			SeatType:     seatType,
			NumSeats:     numSeats,
			TotalCost:    totalCost,
		})
		if err != nil {
			e.log.WithError(err).WithField("flight_id", flightID).
				Warn("failed to publish booking event")
		}
	}

	return &Result{
		Success:      true,
		Confirmation: confirmation,
		Message: fmt.Sprintf(
			"Successfully booked %d %s seat(s) on %s flight on %s from %s to %s. Total cost: $%d.",
			numSeats, seatType, updated.Airline, updated.Date.Format("2006-01-02"),
			updated.Origin, updated.Destination, totalCost,
		),
		TotalCost: totalCost,
		Flight:    updated,
	}, nil
}
