// Package search translates search criteria into store queries and returns
// paginated result pages.
package search

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"

	flights "github.com/radicalxdev/mission-gemini-flights-backend"
)

// DefaultPageSize is the page size used when the caller does not supply one.
const DefaultPageSize = 10

// NoMatchesMessage is the user-facing message carried by zero-match
// results. The dispatcher returns it verbatim as the failure indicator for
// the search_flights tool.
const NoMatchesMessage = "There were no flights found for the search criteria"

// Result is one page of a search. TotalMatches and TotalPages are computed
// from the authoritative match count, independent of pagination, so a
// caller can render "page 2 of 7" without a second round trip. Zero-match
// and page-out-of-range outcomes share this shape and are distinguished by
// Message; neither is an error.
type Result struct {
	QueryResults int               `json:"query_results"`
	Flights      []*flights.Flight `json:"flights"`
	TotalMatches int               `json:"total_matches"`
	Page         int               `json:"page"`
	PageSize     int               `json:"page_size"`
	TotalPages   int               `json:"total_pages"`
	Message      string            `json:"message,omitempty"`
}

// Engine executes searches against a flight store.
type Engine struct {
	store flights.Store
}

// New creates a search engine backed by the given store.
func New(store flights.Store) *Engine {
	return &Engine{store: store}
}

// Search validates the criteria, queries the store, and returns the
// requested page. page defaults to 1 and pageSize to DefaultPageSize when
// zero or negative. An out-of-range page is reported through the result,
// not clamped: the caller detects it from TotalPages.
func (e *Engine) Search(
	ctx context.Context,
	criteria flights.SearchCriteria,
	page, pageSize int,
) (*Result, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if err := criteria.Validate(); err != nil {
		return nil, err
	}

	matches, err := e.store.Query(ctx, buildPredicate(criteria))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", flights.ErrStoreUnavailable, err)
	}

	total := len(matches)
	if total == 0 {
		return &Result{
			Flights:  []*flights.Flight{},
			Page:     page,
			PageSize: pageSize,
			Message:  NoMatchesMessage,
		}, nil
	}

	totalPages := (total + pageSize - 1) / pageSize
	if page > totalPages {
		return &Result{
			Flights:      []*flights.Flight{},
			TotalMatches: total,
			Page:         page,
			PageSize:     pageSize,
			TotalPages:   totalPages,
			Message: fmt.Sprintf("page %d is out of range: %d matching flight(s) fill only %d page(s)",
				page, total, totalPages),
		}, nil
	}

	offset := (page - 1) * pageSize
	slice := lo.Slice(matches, offset, offset+pageSize)

	return &Result{
		QueryResults: len(slice),
		Flights:      slice,
		TotalMatches: total,
		Page:         page,
		PageSize:     pageSize,
		TotalPages:   totalPages,
	}, nil
}

// buildPredicate turns the criteria into a single conjunctive predicate.
//
// All date and time filters apply to the departure time: the required date
// range expands to [start-of-day(start_date), end-of-day(end_date)] UTC,
// and the optional start_time/end_time window is ANDed on top as exact
// timestamps.
func buildPredicate(c flights.SearchCriteria) flights.Predicate {
	windowStart := startOfDay(c.StartDate)
	windowEnd := startOfDay(c.EndDate).AddDate(0, 0, 1) // exclusive

	preds := []flights.Predicate{
		func(f *flights.Flight) bool { return f.Origin == c.Origin },
		func(f *flights.Flight) bool { return f.Destination == c.Destination },
		func(f *flights.Flight) bool {
			return !f.DepartureTime.Before(windowStart) && f.DepartureTime.Before(windowEnd)
		},
	}

	if c.FlightNumber != "" {
		preds = append(preds, func(f *flights.Flight) bool {
			return f.FlightNumber == c.FlightNumber
		})
	}
	if c.Airline != "" {
		preds = append(preds, func(f *flights.Flight) bool {
			return f.Airline == c.Airline
		})
	}
	if c.StartTime != nil {
		start := *c.StartTime
		preds = append(preds, func(f *flights.Flight) bool {
			return !f.DepartureTime.Before(start)
		})
	}
	if c.EndTime != nil {
		end := *c.EndTime
		preds = append(preds, func(f *flights.Flight) bool {
			return !f.DepartureTime.After(end)
		})
	}
	if c.SeatType != "" {
		seatType := c.SeatType
		minCost := 0
		if c.MinCost != nil {
			minCost = *c.MinCost
		}
		preds = append(preds, func(f *flights.Flight) bool {
			cost := f.SeatCost(seatType)
			if cost < minCost {
				return false
			}
			if c.MaxCost != nil && cost > *c.MaxCost {
				return false
			}
			return true
		})
	}

	return func(f *flights.Flight) bool {
		return lo.EveryBy(preds, func(p flights.Predicate) bool { return p(f) })
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
