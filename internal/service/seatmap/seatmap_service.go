package seatmap

import (
	"context"
	"errors"
	"strings"

	"github.com/Domenick1991/cabinseats/internal/domain"
	"github.com/Domenick1991/cabinseats/internal/layout"
	"github.com/Domenick1991/cabinseats/internal/repository"
)

type SeatMapUseCase interface {
	Initialize(ctx context.Context, plan *layout.Plan) error
	Find(ctx context.Context, seatID string) (*domain.Seat, error)
	IsAvailable(ctx context.Context, seatID string) (bool, error)
	Reserve(ctx context.Context, seatID, reference string) (*domain.Seat, error)
	ReserveByCategory(ctx context.Context, category domain.SeatCategory, reference string) (*domain.Seat, error)
	Release(ctx context.Context, seatIDOrReference string) (*domain.Seat, string, error)
	StatusGrid(ctx context.Context) ([]domain.GridRow, error)
}

// GridCache caches the rendered status grid between bookings.
type GridCache interface {
	GetGrid(ctx context.Context) ([]domain.GridRow, error)
	SetGrid(ctx context.Context, grid []domain.GridRow) error
	InvalidateGrid(ctx context.Context) error
}

type SeatMapService struct {
	seats repository.SeatRepository
	cache GridCache
}

func NewSeatMapService(seats repository.SeatRepository, cache GridCache) *SeatMapService {
	return &SeatMapService{seats: seats, cache: cache}
}

// NormalizeSeatID applies the only textual convention the core enforces
// on identifiers: trimmed, uppercased.
func NormalizeSeatID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// Initialize loads the seat plan into the store. A map that already has
// seats is left untouched, so repeated startups are harmless. The insert
// runs in one transaction: a duplicate seat id aborts the whole load.
func (s *SeatMapService) Initialize(ctx context.Context, plan *layout.Plan) error {
	return s.seats.WithTx(ctx, func(txCtx context.Context) error {
		count, err := s.seats.Count(txCtx)
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		return s.seats.InsertAll(txCtx, plan.Seats)
	})
}

func (s *SeatMapService) Find(ctx context.Context, seatID string) (*domain.Seat, error) {
	return s.seats.GetByID(ctx, NormalizeSeatID(seatID))
}

func (s *SeatMapService) IsAvailable(ctx context.Context, seatID string) (bool, error) {
	seat, err := s.Find(ctx, seatID)
	if err != nil {
		return false, err
	}
	if !seat.Bookable() {
		return false, domain.ErrNotASeat
	}
	return seat.Status == domain.SeatStatusFree, nil
}

// Reserve writes a booking reference onto a free seat.
func (s *SeatMapService) Reserve(ctx context.Context, seatID, reference string) (*domain.Seat, error) {
	var reserved *domain.Seat
	err := s.seats.WithTx(ctx, func(txCtx context.Context) error {
		seat, err := s.seats.GetByIDForUpdate(txCtx, NormalizeSeatID(seatID))
		if err != nil {
			return err
		}
		if !seat.Bookable() {
			return domain.ErrNotASeat
		}
		if seat.Status == domain.SeatStatusReserved {
			return domain.ErrAlreadyBooked
		}
		if err := s.seats.SetReference(txCtx, seat.SeatID, reference); err != nil {
			return err
		}
		seat.Status = domain.SeatStatusReserved
		seat.BookingReference = reference
		reserved = seat
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidateGrid(ctx)
	return reserved, nil
}

// ReserveByCategory books the first free seat of the category in display
// order: lowest row label, then lowest position.
func (s *SeatMapService) ReserveByCategory(ctx context.Context, category domain.SeatCategory, reference string) (*domain.Seat, error) {
	if !category.Valid() {
		return nil, domain.ErrNoSeatAvailable
	}
	var reserved *domain.Seat
	err := s.seats.WithTx(ctx, func(txCtx context.Context) error {
		seat, err := s.seats.FirstAvailableInCategory(txCtx, category)
		if err != nil {
			return err
		}
		if err := s.seats.SetReference(txCtx, seat.SeatID, reference); err != nil {
			return err
		}
		seat.Status = domain.SeatStatusReserved
		seat.BookingReference = reference
		reserved = seat
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidateGrid(ctx)
	return reserved, nil
}

// Release clears a seat's booking reference. The identifier may be a
// seat id or the booking reference itself; the cleared reference is
// returned so the caller can drop the traveler record.
func (s *SeatMapService) Release(ctx context.Context, seatIDOrReference string) (*domain.Seat, string, error) {
	var (
		released  *domain.Seat
		reference string
	)
	err := s.seats.WithTx(ctx, func(txCtx context.Context) error {
		seat, err := s.resolveForUpdate(txCtx, seatIDOrReference)
		if err != nil {
			return err
		}
		if !seat.Bookable() {
			return domain.ErrNotASeat
		}
		if seat.Status != domain.SeatStatusReserved {
			return domain.ErrNotBooked
		}
		reference = seat.BookingReference
		if err := s.seats.ClearReference(txCtx, seat.SeatID); err != nil {
			return err
		}
		seat.Status = domain.SeatStatusFree
		seat.BookingReference = ""
		released = seat
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	s.invalidateGrid(ctx)
	return released, reference, nil
}

// StatusGrid renders the whole cabin: one entry per row, cells in
// position order, symbols per Seat.GridSymbol.
func (s *SeatMapService) StatusGrid(ctx context.Context) ([]domain.GridRow, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetGrid(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	seats, err := s.seats.ListOrdered(ctx)
	if err != nil {
		return nil, err
	}

	grid := make([]domain.GridRow, 0)
	for _, seat := range seats {
		if len(grid) == 0 || grid[len(grid)-1].Row != seat.Row {
			grid = append(grid, domain.GridRow{Row: seat.Row})
		}
		last := &grid[len(grid)-1]
		last.Cells = append(last.Cells, seat.GridSymbol())
	}

	if s.cache != nil {
		_ = s.cache.SetGrid(ctx, grid)
	}
	return grid, nil
}

func (s *SeatMapService) resolveForUpdate(ctx context.Context, idOrRef string) (*domain.Seat, error) {
	normalized := NormalizeSeatID(idOrRef)
	seat, err := s.seats.GetByIDForUpdate(ctx, normalized)
	if err == nil {
		return seat, nil
	}
	if !errors.Is(err, domain.ErrSeatNotFound) {
		return nil, err
	}
	return s.seats.GetByReference(ctx, normalized)
}

func (s *SeatMapService) invalidateGrid(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.InvalidateGrid(ctx)
	}
}

var _ SeatMapUseCase = (*SeatMapService)(nil)
