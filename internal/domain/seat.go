package domain

// CellKind classifies a cabin position. It is fixed at initialization.
type CellKind string

const (
	CellKindSeat    CellKind = "seat"
	CellKindAisle   CellKind = "aisle"
	CellKindStorage CellKind = "storage"
)

// SeatCategory is derived from the seat's row and never changes.
type SeatCategory string

const (
	SeatCategoryWindow SeatCategory = "window"
	SeatCategoryMiddle SeatCategory = "middle"
	SeatCategoryAisle  SeatCategory = "aisle"
)

func (c SeatCategory) Valid() bool {
	switch c {
	case SeatCategoryWindow, SeatCategoryMiddle, SeatCategoryAisle:
		return true
	}
	return false
}

type SeatStatus string

const (
	SeatStatusFree     SeatStatus = "FREE"
	SeatStatusReserved SeatStatus = "RESERVED"
)

// Seat is one cabin position. Category is set only for bookable seats,
// BookingReference only while the seat is reserved.
type Seat struct {
	SeatID           string
	Row              string
	Position         int
	Kind             CellKind
	Category         SeatCategory
	Status           SeatStatus
	BookingReference string
}

func (s *Seat) Bookable() bool {
	return s.Kind == CellKindSeat
}

func (s *Seat) Available() bool {
	return s.Kind == CellKindSeat && s.Status == SeatStatusFree
}

// GridSymbol renders the seat for the status grid: aisles are blank,
// storage bays are "S", seats are "R" when reserved and "F" when free.
func (s *Seat) GridSymbol() string {
	switch s.Kind {
	case CellKindAisle:
		return " "
	case CellKindStorage:
		return "S"
	default:
		if s.Status == SeatStatusReserved {
			return "R"
		}
		return "F"
	}
}

// GridRow is one row of the rendered status grid, cells in position order.
type GridRow struct {
	Row   string
	Cells []string
}
