package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/cabinseats/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SeatRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	Count(ctx context.Context) (int, error)
	InsertAll(ctx context.Context, seats []domain.Seat) error
	GetByID(ctx context.Context, seatID string) (*domain.Seat, error)
	GetByIDForUpdate(ctx context.Context, seatID string) (*domain.Seat, error)
	GetByReference(ctx context.Context, reference string) (*domain.Seat, error)
	FirstAvailableInCategory(ctx context.Context, category domain.SeatCategory) (*domain.Seat, error)
	ReferenceExists(ctx context.Context, reference string) (bool, error)
	SetReference(ctx context.Context, seatID, reference string) error
	ClearReference(ctx context.Context, seatID string) error
	ListOrdered(ctx context.Context) ([]domain.Seat, error)
}

type PGSeatRepository struct {
	pool *pgxpool.Pool
}

func NewSeatRepository(pool *pgxpool.Pool) SeatRepository {
	return &PGSeatRepository{pool: pool}
}

const seatColumns = `seat_id, row_label, position, kind, category, booking_reference`

func (r *PGSeatRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *PGSeatRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := queryRow(ctx, r.pool, `SELECT COUNT(*) FROM seats`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count seats: %w", err)
	}
	return n, nil
}

func (r *PGSeatRepository) InsertAll(ctx context.Context, seats []domain.Seat) error {
	const stmt = `INSERT INTO seats (seat_id, row_label, position, kind, category) VALUES ($1, $2, $3, $4, $5)`
	for _, s := range seats {
		var category *string
		if s.Kind == domain.CellKindSeat {
			c := string(s.Category)
			category = &c
		}
		if _, err := exec(ctx, r.pool, stmt, s.SeatID, s.Row, s.Position, s.Kind, category); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %s", domain.ErrDuplicateSeat, s.SeatID)
			}
			return fmt.Errorf("insert seat %s: %w", s.SeatID, err)
		}
	}
	return nil
}

func (r *PGSeatRepository) GetByID(ctx context.Context, seatID string) (*domain.Seat, error) {
	return r.getWhere(ctx, `SELECT `+seatColumns+` FROM seats WHERE seat_id = $1`, seatID)
}

func (r *PGSeatRepository) GetByIDForUpdate(ctx context.Context, seatID string) (*domain.Seat, error) {
	return r.getWhere(ctx, `SELECT `+seatColumns+` FROM seats WHERE seat_id = $1 FOR UPDATE`, seatID)
}

func (r *PGSeatRepository) GetByReference(ctx context.Context, reference string) (*domain.Seat, error) {
	seat, err := r.getWhere(ctx, `SELECT `+seatColumns+` FROM seats WHERE booking_reference = $1 FOR UPDATE`, reference)
	if err == domain.ErrSeatNotFound {
		return nil, domain.ErrInvalidReference
	}
	return seat, err
}

// FirstAvailableInCategory picks the free seat with the lowest row label,
// then lowest position, so category booking is deterministic.
func (r *PGSeatRepository) FirstAvailableInCategory(ctx context.Context, category domain.SeatCategory) (*domain.Seat, error) {
	const sql = `
SELECT ` + seatColumns + `
FROM seats
WHERE kind = 'seat' AND category = $1 AND booking_reference IS NULL
ORDER BY row_label, position
LIMIT 1
FOR UPDATE`
	seat, err := r.getWhere(ctx, sql, category)
	if err == domain.ErrSeatNotFound {
		return nil, domain.ErrNoSeatAvailable
	}
	return seat, err
}

func (r *PGSeatRepository) ReferenceExists(ctx context.Context, reference string) (bool, error) {
	var exists bool
	err := queryRow(ctx, r.pool, `SELECT EXISTS (SELECT 1 FROM seats WHERE booking_reference = $1)`, reference).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check reference: %w", err)
	}
	return exists, nil
}

func (r *PGSeatRepository) SetReference(ctx context.Context, seatID, reference string) error {
	res, err := exec(ctx, r.pool, `
UPDATE seats SET booking_reference = $1, updated_at = now()
WHERE seat_id = $2 AND kind = 'seat' AND booking_reference IS NULL`, reference, seatID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateReference
		}
		return fmt.Errorf("set reference on %s: %w", seatID, err)
	}
	if res.RowsAffected() == 0 {
		return domain.ErrAlreadyBooked
	}
	return nil
}

func (r *PGSeatRepository) ClearReference(ctx context.Context, seatID string) error {
	res, err := exec(ctx, r.pool, `
UPDATE seats SET booking_reference = NULL, updated_at = now()
WHERE seat_id = $1 AND booking_reference IS NOT NULL`, seatID)
	if err != nil {
		return fmt.Errorf("clear reference on %s: %w", seatID, err)
	}
	if res.RowsAffected() == 0 {
		return domain.ErrNotBooked
	}
	return nil
}

func (r *PGSeatRepository) ListOrdered(ctx context.Context) ([]domain.Seat, error) {
	rows, err := query(ctx, r.pool, `SELECT `+seatColumns+` FROM seats ORDER BY row_label, position`)
	if err != nil {
		return nil, fmt.Errorf("list seats: %w", err)
	}
	defer rows.Close()

	seats := make([]domain.Seat, 0)
	for rows.Next() {
		seat, err := scanSeat(rows)
		if err != nil {
			return nil, err
		}
		seats = append(seats, *seat)
	}
	return seats, rows.Err()
}

func (r *PGSeatRepository) getWhere(ctx context.Context, sql string, args ...any) (*domain.Seat, error) {
	seat, err := scanSeat(queryRow(ctx, r.pool, sql, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrSeatNotFound
		}
		return nil, err
	}
	return seat, nil
}

func scanSeat(row pgx.Row) (*domain.Seat, error) {
	var (
		s         domain.Seat
		category  *string
		reference *string
	)
	if err := row.Scan(&s.SeatID, &s.Row, &s.Position, &s.Kind, &category, &reference); err != nil {
		return nil, err
	}
	if category != nil {
		s.Category = domain.SeatCategory(*category)
	}
	s.Status = domain.SeatStatusFree
	if reference != nil {
		s.Status = domain.SeatStatusReserved
		s.BookingReference = *reference
	}
	return &s, nil
}

var _ SeatRepository = (*PGSeatRepository)(nil)
