package flights

import (
	"fmt"
	"time"
)

// SearchCriteria is the filter specification for a flight search.
//
// Origin, Destination, StartDate and EndDate are required. The date range
// covers departure times from start-of-day of StartDate through end-of-day
// of EndDate (UTC). StartTime/EndTime, when set, are an additional exact
// departure-time window ANDed with the date range. Cost bounds apply to
// the seat cost of SeatType and are only meaningful when SeatType is set.
type SearchCriteria struct {
	Origin      string
	Destination string
	StartDate   time.Time
	EndDate     time.Time

	FlightNumber string
	Airline      string
	StartTime    *time.Time
	EndTime      *time.Time
	SeatType     SeatClass
	MinCost      *int
	MaxCost      *int
}

// Validate checks the criteria before any store query. All violations are
// reported as [ErrInvalidCriteria].
func (c *SearchCriteria) Validate() error {
	if c.Origin == "" || c.Destination == "" {
		return fmt.Errorf("%w: origin and destination are required", ErrInvalidCriteria)
	}
	if c.StartDate.IsZero() || c.EndDate.IsZero() {
		return fmt.Errorf("%w: start_date and end_date are required", ErrInvalidCriteria)
	}
	if c.EndDate.Before(c.StartDate) {
		return fmt.Errorf("%w: end_date %s is before start_date %s",
			ErrInvalidCriteria, c.EndDate.Format("2006-01-02"), c.StartDate.Format("2006-01-02"))
	}
	if c.StartTime != nil && c.EndTime != nil && c.EndTime.Before(*c.StartTime) {
		return fmt.Errorf("%w: end_time is before start_time", ErrInvalidCriteria)
	}
	if c.SeatType != "" && !c.SeatType.Valid() {
		return fmt.Errorf("%w: unknown seat_type %q", ErrInvalidCriteria, c.SeatType)
	}
	if (c.MinCost != nil || c.MaxCost != nil) && c.SeatType == "" {
		return fmt.Errorf("%w: min_cost/max_cost require seat_type", ErrInvalidCriteria)
	}
	if c.MinCost != nil && c.MaxCost != nil && *c.MaxCost < *c.MinCost {
		return fmt.Errorf("%w: max_cost %d is below min_cost %d", ErrInvalidCriteria, *c.MaxCost, *c.MinCost)
	}
	return nil
}
