package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/cabinseats/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TravelerRepository interface {
	Insert(ctx context.Context, traveler domain.Traveler) error
	GetByReference(ctx context.Context, reference string) (*domain.Traveler, error)
	Delete(ctx context.Context, reference string) error
}

type PGTravelerRepository struct {
	pool *pgxpool.Pool
}

func NewTravelerRepository(pool *pgxpool.Pool) TravelerRepository {
	return &PGTravelerRepository{pool: pool}
}

func (r *PGTravelerRepository) Insert(ctx context.Context, t domain.Traveler) error {
	const stmt = `
INSERT INTO travelers (booking_reference, passport_number, first_name, last_name, seat_row, seat_position)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := exec(ctx, r.pool, stmt,
		t.BookingReference, t.PassportNumber, t.FirstName, t.LastName, t.SeatRow, t.SeatPosition)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateReference
		}
		return fmt.Errorf("insert traveler: %w", err)
	}
	return nil
}

func (r *PGTravelerRepository) GetByReference(ctx context.Context, reference string) (*domain.Traveler, error) {
	const sql = `
SELECT booking_reference, passport_number, first_name, last_name, seat_row, seat_position
FROM travelers WHERE booking_reference = $1`
	var t domain.Traveler
	err := queryRow(ctx, r.pool, sql, reference).
		Scan(&t.BookingReference, &t.PassportNumber, &t.FirstName, &t.LastName, &t.SeatRow, &t.SeatPosition)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrInvalidReference
		}
		return nil, fmt.Errorf("get traveler: %w", err)
	}
	return &t, nil
}

// Delete removes the traveler record for a reference. Deleting a
// reference with no record is not an error: the seat side of a release
// is authoritative and may be retried.
func (r *PGTravelerRepository) Delete(ctx context.Context, reference string) error {
	if _, err := exec(ctx, r.pool, `DELETE FROM travelers WHERE booking_reference = $1`, reference); err != nil {
		return fmt.Errorf("delete traveler: %w", err)
	}
	return nil
}

var _ TravelerRepository = (*PGTravelerRepository)(nil)
