package domain

// Traveler holds the passenger detail for one booking, keyed by the
// booking reference of the reserved seat. SeatRow and SeatPosition are a
// denormalized copy of the seat's location taken at booking time.
type Traveler struct {
	BookingReference string
	PassportNumber   string
	FirstName        string
	LastName         string
	SeatRow          string
	SeatPosition     int
}
