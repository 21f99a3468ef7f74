// Package events publishes booking lifecycle events so downstream
// consumers (notifications, analytics) can react without coupling to the
// booking engine.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	flights "github.com/radicalxdev/mission-gemini-flights-backend"
)

// TopicBookingConfirmed carries one BookingConfirmed message per
// successful booking.
const TopicBookingConfirmed = "booking.confirmed"

// BookingConfirmed is the payload published when seats are booked.
type BookingConfirmed struct {
	Confirmation string            `json:"confirmation"`
	FlightID     int64             `json:"flight_id"`
	FlightNumber string            `json:"flight_number"`
	SeatType     flights.SeatClass `json:"seat_type"`
	NumSeats     int               `json:"num_seats"`
	TotalCost    int               `json:"total_cost"`
	BookedAt     time.Time         `json:"booked_at"`
}

// Publisher emits booking events onto a watermill publisher.
type Publisher struct {
	pub   message.Publisher
	clock flights.TimeProvider
}

// NewPublisher wraps a watermill publisher.
func NewPublisher(pub message.Publisher) *Publisher {
	return &Publisher{pub: pub, clock: flights.NewDefaultTimeProvider()}
}

// WithTimeProvider replaces the clock used for BookedAt stamps.
func (p *Publisher) WithTimeProvider(clock flights.TimeProvider) *Publisher {
	p.clock = clock
	return p
}

// BookingConfirmed publishes a confirmation event for a successful
// booking. The event is stamped with the current time.
func (p *Publisher) BookingConfirmed(event BookingConfirmed) error {
	if event.BookedAt.IsZero() {
		event.BookedAt = p.clock.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode booking event: %w", err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	if err := p.pub.Publish(TopicBookingConfirmed, msg); err != nil {
		return fmt.Errorf("publish booking event: %w", err)
	}
	return nil
}

// Decode parses a BookingConfirmed event out of a watermill message.
func Decode(msg *message.Message) (*BookingConfirmed, error) {
	var event BookingConfirmed
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return nil, fmt.Errorf("decode booking event: %w", err)
	}
	return &event, nil
}
