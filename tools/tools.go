// Package tools exposes the search and booking engines as model-callable
// tools with JSON Schema parameter declarations.
package tools

import (
	"context"
	"fmt"
	"time"

	flights "github.com/radicalxdev/mission-gemini-flights-backend"
	"github.com/radicalxdev/mission-gemini-flights-backend/booking"
	"github.com/radicalxdev/mission-gemini-flights-backend/dispatch"
	"github.com/radicalxdev/mission-gemini-flights-backend/schema"
	"github.com/radicalxdev/mission-gemini-flights-backend/search"
)

// SearchFlightsInput is the argument shape of the search_flights tool.
type SearchFlightsInput struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departure_date"`
}

// BookFlightsInput is the argument shape of the book_flights tool.
type BookFlightsInput struct {
	FlightID int64  `json:"flight_id"`
	SeatType string `json:"seat_type"`
	NumSeats int    `json:"num_seats"`
}

// NewSearchFlights returns the search_flights tool backed by the given
// engine. Results for a zero-match search are the no-flights sentence
// itself so the model relays it verbatim.
func NewSearchFlights(engine *search.Engine) flights.Tool[SearchFlightsInput, any] {
	params := schema.Object(map[string]*schema.Property{
		"origin":         schema.String("Airport code of the departure airport, e.g. JFK."),
		"destination":    schema.String("Airport code of the arrival airport, e.g. LAX."),
		"departure_date": schema.String("Departure date in YYYY-MM-DD format.").Format("date"),
	}, "origin", "destination", "departure_date")

	return flights.NewToolFunc(
		"search_flights",
		"Search for flights between two airports on a given departure date.",
		params,
		func(ctx context.Context, in SearchFlightsInput) (any, error) {
			date, err := time.Parse("2006-01-02", in.DepartureDate)
			if err != nil {
				return nil, fmt.Errorf("%w: departure_date %q is not a valid YYYY-MM-DD date",
					flights.ErrInvalidArguments, in.DepartureDate)
			}

			criteria := flights.SearchCriteria{
				Origin:      in.Origin,
				Destination: in.Destination,
				StartDate:   date,
				EndDate:     date,
			}
			result, err := engine.Search(ctx, criteria, 1, 0)
			if err != nil {
				return nil, err
			}
			if result.TotalMatches == 0 {
				return search.NoMatchesMessage, nil
			}
			return result, nil
		})
}

// NewBookFlights returns the book_flights tool backed by the given engine.
// Booking failures are part of the payload, not tool errors, so the model
// can explain them to the traveler.
func NewBookFlights(engine *booking.Engine) flights.Tool[BookFlightsInput, *booking.Result] {
	params := schema.Object(map[string]*schema.Property{
		"flight_id": schema.Integer("Identifier of the flight to book."),
		"seat_type": schema.String("Seat class to book: economy, business, or first_class."),
		"num_seats": schema.Integer("Number of seats to book.").Min(1),
	}, "flight_id", "seat_type", "num_seats")

	return flights.NewToolFunc(
		"book_flights",
		"Book a number of seats of a given class on a flight.",
		params,
		func(ctx context.Context, in BookFlightsInput) (*booking.Result, error) {
			return engine.Book(ctx, in.FlightID, flights.SeatClass(in.SeatType), in.NumSeats)
		})
}

// NewRegistry wires both flight tools onto a fresh dispatch registry.
func NewRegistry(searcher *search.Engine, booker *booking.Engine) *dispatch.Registry {
	registry := dispatch.NewRegistry()
	dispatch.Register(registry, NewSearchFlights(searcher))
	dispatch.Register(registry, NewBookFlights(booker))
	return registry
}
