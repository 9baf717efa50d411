package email

import (
	"context"
	"fmt"

	"github.com/Domenick1991/cabinseats/internal/kafka"
)

type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

// Send prints a booking confirmation for the traveler. A real mail
// integration would slot in here; the worker only needs the interface.
func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	switch event.Type {
	case "seat_reserved":
		fmt.Printf("notify %s %s: seat %s booked, reference %s\n", event.FirstName, event.LastName, event.SeatID, event.Reference)
	case "seat_released":
		fmt.Printf("notify: seat %s freed, reference %s released\n", event.SeatID, event.Reference)
	default:
		fmt.Printf("notify: %s for seat %s\n", event.Type, event.SeatID)
	}
	return nil
}
