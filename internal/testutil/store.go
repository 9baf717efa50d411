// Package testutil provides an in-memory store implementing the seat
// and traveler repositories, with transaction snapshot/rollback
// semantics matching the Postgres implementation.
package testutil

import (
	"context"
	"fmt"
	"sort"

	"github.com/Domenick1991/cabinseats/internal/domain"
	"github.com/Domenick1991/cabinseats/internal/repository"
)

var (
	_ repository.SeatRepository     = (*SeatRepo)(nil)
	_ repository.TravelerRepository = (*TravelerRepo)(nil)
)

// Store holds seats and travelers in memory. SeatRepo and TravelerRepo
// expose the two repository views over the same state, so a transaction
// rolled back through one rolls back both.
type Store struct {
	Seats     map[string]domain.Seat
	Travelers map[string]domain.Traveler

	// TravelerInsertErrs is popped on each traveler insert; a nil entry
	// means the insert proceeds normally.
	TravelerInsertErrs []error

	txDepth  int
	seatSnap map[string]domain.Seat
	travSnap map[string]domain.Traveler
}

func NewStore(seats ...domain.Seat) *Store {
	s := &Store{
		Seats:     make(map[string]domain.Seat, len(seats)),
		Travelers: make(map[string]domain.Traveler),
	}
	for _, seat := range seats {
		s.Seats[seat.SeatID] = seat
	}
	return s
}

func (s *Store) SeatRepo() *SeatRepo         { return &SeatRepo{store: s} }
func (s *Store) TravelerRepo() *TravelerRepo { return &TravelerRepo{store: s} }

func (s *Store) withTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.txDepth == 0 {
		s.seatSnap = copySeats(s.Seats)
		s.travSnap = copyTravelers(s.Travelers)
	}
	s.txDepth++
	err := fn(ctx)
	s.txDepth--
	if s.txDepth == 0 && err != nil {
		s.Seats = s.seatSnap
		s.Travelers = s.travSnap
	}
	return err
}

// SeatRepo is the in-memory SeatRepository.
type SeatRepo struct {
	store *Store
}

func (r *SeatRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.store.withTx(ctx, fn)
}

func (r *SeatRepo) Count(ctx context.Context) (int, error) {
	return len(r.store.Seats), nil
}

func (r *SeatRepo) InsertAll(ctx context.Context, seats []domain.Seat) error {
	for _, seat := range seats {
		if _, exists := r.store.Seats[seat.SeatID]; exists {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateSeat, seat.SeatID)
		}
		r.store.Seats[seat.SeatID] = seat
	}
	return nil
}

func (r *SeatRepo) GetByID(ctx context.Context, seatID string) (*domain.Seat, error) {
	seat, ok := r.store.Seats[seatID]
	if !ok {
		return nil, domain.ErrSeatNotFound
	}
	return &seat, nil
}

func (r *SeatRepo) GetByIDForUpdate(ctx context.Context, seatID string) (*domain.Seat, error) {
	return r.GetByID(ctx, seatID)
}

func (r *SeatRepo) GetByReference(ctx context.Context, reference string) (*domain.Seat, error) {
	if reference == "" {
		return nil, domain.ErrInvalidReference
	}
	for _, seat := range r.store.Seats {
		if seat.BookingReference == reference {
			found := seat
			return &found, nil
		}
	}
	return nil, domain.ErrInvalidReference
}

func (r *SeatRepo) FirstAvailableInCategory(ctx context.Context, category domain.SeatCategory) (*domain.Seat, error) {
	var candidates []domain.Seat
	for _, seat := range r.store.Seats {
		if seat.Kind == domain.CellKindSeat && seat.Category == category && seat.BookingReference == "" {
			candidates = append(candidates, seat)
		}
	}
	if len(candidates) == 0 {
		return nil, domain.ErrNoSeatAvailable
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Row != candidates[j].Row {
			return candidates[i].Row < candidates[j].Row
		}
		return candidates[i].Position < candidates[j].Position
	})
	first := candidates[0]
	return &first, nil
}

func (r *SeatRepo) ReferenceExists(ctx context.Context, reference string) (bool, error) {
	for _, seat := range r.store.Seats {
		if seat.BookingReference == reference && reference != "" {
			return true, nil
		}
	}
	return false, nil
}

func (r *SeatRepo) SetReference(ctx context.Context, seatID, reference string) error {
	for _, seat := range r.store.Seats {
		if seat.BookingReference == reference {
			return domain.ErrDuplicateReference
		}
	}
	seat, ok := r.store.Seats[seatID]
	if !ok || seat.Kind != domain.CellKindSeat || seat.BookingReference != "" {
		return domain.ErrAlreadyBooked
	}
	seat.BookingReference = reference
	seat.Status = domain.SeatStatusReserved
	r.store.Seats[seatID] = seat
	return nil
}

func (r *SeatRepo) ClearReference(ctx context.Context, seatID string) error {
	seat, ok := r.store.Seats[seatID]
	if !ok || seat.BookingReference == "" {
		return domain.ErrNotBooked
	}
	seat.BookingReference = ""
	seat.Status = domain.SeatStatusFree
	r.store.Seats[seatID] = seat
	return nil
}

func (r *SeatRepo) ListOrdered(ctx context.Context) ([]domain.Seat, error) {
	seats := make([]domain.Seat, 0, len(r.store.Seats))
	for _, seat := range r.store.Seats {
		seats = append(seats, seat)
	}
	sort.Slice(seats, func(i, j int) bool {
		if seats[i].Row != seats[j].Row {
			return seats[i].Row < seats[j].Row
		}
		return seats[i].Position < seats[j].Position
	})
	return seats, nil
}

// TravelerRepo is the in-memory TravelerRepository.
type TravelerRepo struct {
	store *Store
}

func (r *TravelerRepo) Insert(ctx context.Context, t domain.Traveler) error {
	if len(r.store.TravelerInsertErrs) > 0 {
		err := r.store.TravelerInsertErrs[0]
		r.store.TravelerInsertErrs = r.store.TravelerInsertErrs[1:]
		if err != nil {
			return err
		}
	}
	if _, exists := r.store.Travelers[t.BookingReference]; exists {
		return domain.ErrDuplicateReference
	}
	r.store.Travelers[t.BookingReference] = t
	return nil
}

func (r *TravelerRepo) GetByReference(ctx context.Context, reference string) (*domain.Traveler, error) {
	t, ok := r.store.Travelers[reference]
	if !ok {
		return nil, domain.ErrInvalidReference
	}
	return &t, nil
}

func (r *TravelerRepo) Delete(ctx context.Context, reference string) error {
	delete(r.store.Travelers, reference)
	return nil
}

func copySeats(in map[string]domain.Seat) map[string]domain.Seat {
	out := make(map[string]domain.Seat, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyTravelers(in map[string]domain.Traveler) map[string]domain.Traveler {
	out := make(map[string]domain.Traveler, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
