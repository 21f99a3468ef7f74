package flights

import "time"

// SeatClass identifies one of the three independently priced and
// inventoried cabin classes.
type SeatClass string

const (
	SeatEconomy    SeatClass = "economy"
	SeatBusiness   SeatClass = "business"
	SeatFirstClass SeatClass = "first_class"
)

// SeatClasses returns the known seat classes in cabin order.
func SeatClasses() []SeatClass {
	return []SeatClass{SeatEconomy, SeatBusiness, SeatFirstClass}
}

// Valid reports whether c is one of the known seat classes.
func (c SeatClass) Valid() bool {
	switch c {
	case SeatEconomy, SeatBusiness, SeatFirstClass:
		return true
	}
	return false
}

// Flight is a single scheduled flight with per-class seat inventory.
//
// FlightID is assigned by the store on insert. Open seat counts start at
// the generated capacity and are only ever decremented by the booking
// engine, so they never go negative and never exceed capacity.
type Flight struct {
	FlightID     int64  `json:"flight_id"`
	FlightNumber string `json:"flight_number"`
	Airline      string `json:"airline"`
	Origin       string `json:"origin"`
	Destination  string `json:"destination"`

	// Date is the calendar date of the flight (midnight UTC).
	Date          time.Time `json:"date"`
	DepartureTime time.Time `json:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time"`

	OpenSeatsEconomy    int `json:"open_seats_economy"`
	OpenSeatsBusiness   int `json:"open_seats_business"`
	OpenSeatsFirstClass int `json:"open_seats_first_class"`

	CapacityEconomy    int `json:"capacity_economy"`
	CapacityBusiness   int `json:"capacity_business"`
	CapacityFirstClass int `json:"capacity_first_class"`

	EconomySeatCost    int `json:"economy_seat_cost"`
	BusinessSeatCost   int `json:"business_seat_cost"`
	FirstClassSeatCost int `json:"first_class_seat_cost"`
}

// OpenSeats returns the open seat count for the given class.
// Unknown classes have no inventory and return 0.
func (f *Flight) OpenSeats(c SeatClass) int {
	switch c {
	case SeatEconomy:
		return f.OpenSeatsEconomy
	case SeatBusiness:
		return f.OpenSeatsBusiness
	case SeatFirstClass:
		return f.OpenSeatsFirstClass
	}
	return 0
}

// SetOpenSeats sets the open seat count for the given class.
// Unknown classes are ignored.
func (f *Flight) SetOpenSeats(c SeatClass, n int) {
	switch c {
	case SeatEconomy:
		f.OpenSeatsEconomy = n
	case SeatBusiness:
		f.OpenSeatsBusiness = n
	case SeatFirstClass:
		f.OpenSeatsFirstClass = n
	}
}

// Capacity returns the generated seat capacity for the given class.
func (f *Flight) Capacity(c SeatClass) int {
	switch c {
	case SeatEconomy:
		return f.CapacityEconomy
	case SeatBusiness:
		return f.CapacityBusiness
	case SeatFirstClass:
		return f.CapacityFirstClass
	}
	return 0
}

// SeatCost returns the per-seat cost for the given class.
// Unknown classes return 0.
func (f *Flight) SeatCost(c SeatClass) int {
	switch c {
	case SeatEconomy:
		return f.EconomySeatCost
	case SeatBusiness:
		return f.BusinessSeatCost
	case SeatFirstClass:
		return f.FirstClassSeatCost
	}
	return 0
}

// Clone returns an independent copy of the flight.
func (f *Flight) Clone() *Flight {
	cp := *f
	return &cp
}
