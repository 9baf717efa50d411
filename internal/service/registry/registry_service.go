package registry

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/cabinseats/internal/domain"
	"github.com/Domenick1991/cabinseats/internal/kafka"
	"github.com/Domenick1991/cabinseats/internal/repository"
	"github.com/Domenick1991/cabinseats/internal/service/seatmap"
	"github.com/google/uuid"
)

type BookingUseCase interface {
	Book(ctx context.Context, input BookingInput) (*BookingResult, error)
	Free(ctx context.Context, seatIDOrReference string) (*domain.Seat, error)
	GenerateReference(ctx context.Context, exists UniquenessCheck) (string, error)
	RecordBooking(ctx context.Context, reference string, seat *domain.Seat, fields TravelerFields) (*domain.Traveler, error)
	ReleaseBooking(ctx context.Context, reference string) error
	TravelerByReference(ctx context.Context, reference string) (*domain.Traveler, error)
}

// UniquenessCheck reports whether a candidate reference is already held
// by some seat. The persistence layer supplies it so minting stays
// storage-agnostic.
type UniquenessCheck func(ctx context.Context, reference string) (bool, error)

type SeatLocker interface {
	AcquireSeatLock(ctx context.Context, seatID string, ttl time.Duration) (bool, error)
	ReleaseSeatLock(ctx context.Context, seatID string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

const (
	referenceLength   = 8
	referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// Bounds the draw loop when the uniqueness check keeps rejecting.
	defaultReferenceAttempts = 10000

	// Transaction restarts on a concurrent reference collision.
	maxBookingAttempts = 3
)

type BookingService struct {
	seatMap            seatmap.SeatMapUseCase
	seats              repository.SeatRepository
	travelers          repository.TravelerRepository
	locker             SeatLocker
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	lockTTL            time.Duration
	referenceAttempts  int
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

// WithReferenceAttempts overrides the draw bound used when minting references.
func WithReferenceAttempts(n int) BookingServiceOption {
	return func(s *BookingService) {
		if n > 0 {
			s.referenceAttempts = n
		}
	}
}

func NewBookingService(
	seatMap seatmap.SeatMapUseCase,
	seats repository.SeatRepository,
	travelers repository.TravelerRepository,
	locker SeatLocker,
	producer Producer,
	bookingTopic string,
	lockTTL time.Duration,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		seatMap:           seatMap,
		seats:             seats,
		travelers:         travelers,
		locker:            locker,
		producer:          producer,
		bookingTopic:      bookingTopic,
		lockTTL:           lockTTL,
		referenceAttempts: defaultReferenceAttempts,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// BookingInput selects a seat either directly by id or by category, and
// carries the traveler detail persisted with the booking.
type BookingInput struct {
	SeatID   string
	Category domain.SeatCategory
	TravelerFields
}

type TravelerFields struct {
	PassportNumber string
	FirstName      string
	LastName       string
}

type BookingResult struct {
	Seat     *domain.Seat
	Traveler *domain.Traveler
}

func (f TravelerFields) validate() error {
	if f.PassportNumber == "" {
		return errors.New("passport number is required")
	}
	if f.FirstName == "" {
		return errors.New("first name is required")
	}
	if f.LastName == "" {
		return errors.New("last name is required")
	}
	return nil
}

// Book reserves a seat and records its traveler in one transaction.
// The seat write and the traveler record commit together; if either
// fails the other is rolled back, so a traveler row never exists
// without a matching reserved seat. A duplicate reference minted by a
// concurrent booking surfaces as a constraint violation and restarts
// the transaction with a fresh reference.
func (s *BookingService) Book(ctx context.Context, input BookingInput) (*BookingResult, error) {
	if err := input.TravelerFields.validate(); err != nil {
		return nil, err
	}
	if input.SeatID == "" && !input.Category.Valid() {
		return nil, errors.New("seat id or category is required")
	}

	if input.SeatID != "" && s.locker != nil {
		seatID := seatmap.NormalizeSeatID(input.SeatID)
		ok, err := s.locker.AcquireSeatLock(ctx, seatID, s.lockTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.ErrAlreadyBooked
		}
		defer func() {
			_ = s.locker.ReleaseSeatLock(ctx, seatID)
		}()
	}

	var result *BookingResult
	for attempt := 0; attempt < maxBookingAttempts; attempt++ {
		err := s.seats.WithTx(ctx, func(txCtx context.Context) error {
			reference, err := s.GenerateReference(txCtx, s.seats.ReferenceExists)
			if err != nil {
				return err
			}

			var seat *domain.Seat
			if input.SeatID != "" {
				seat, err = s.seatMap.Reserve(txCtx, input.SeatID, reference)
			} else {
				seat, err = s.seatMap.ReserveByCategory(txCtx, input.Category, reference)
			}
			if err != nil {
				return err
			}

			traveler, err := s.RecordBooking(txCtx, reference, seat, input.TravelerFields)
			if err != nil {
				return err
			}

			result = &BookingResult{Seat: seat, Traveler: traveler}
			return nil
		})
		if errors.Is(err, domain.ErrDuplicateReference) {
			continue
		}
		if err != nil {
			return nil, err
		}

		s.publish(ctx, "seat_reserved", result.Seat, result.Traveler)
		return result, nil
	}
	return nil, domain.ErrDuplicateReference
}

// Free releases a booking by seat id or booking reference: the traveler
// record is removed and the seat's reference cleared in one transaction.
func (s *BookingService) Free(ctx context.Context, seatIDOrReference string) (*domain.Seat, error) {
	var (
		seat      *domain.Seat
		reference string
	)
	err := s.seats.WithTx(ctx, func(txCtx context.Context) error {
		var err error
		seat, reference, err = s.seatMap.Release(txCtx, seatIDOrReference)
		if err != nil {
			return err
		}
		return s.ReleaseBooking(txCtx, reference)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, "seat_released", seat, &domain.Traveler{BookingReference: reference})
	return seat, nil
}

// GenerateReference mints an 8-character reference over A-Z0-9 and
// redraws until the injected uniqueness check clears it. The retry
// bound is a safety net only: with ~2.8e12 combinations a redraw is
// already unusual.
func (s *BookingService) GenerateReference(ctx context.Context, exists UniquenessCheck) (string, error) {
	for attempt := 0; attempt < s.referenceAttempts; attempt++ {
		candidate, err := randomReference()
		if err != nil {
			return "", err
		}
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", domain.ErrReferenceSpaceExhausted
}

func (s *BookingService) RecordBooking(ctx context.Context, reference string, seat *domain.Seat, fields TravelerFields) (*domain.Traveler, error) {
	traveler := domain.Traveler{
		BookingReference: reference,
		PassportNumber:   fields.PassportNumber,
		FirstName:        fields.FirstName,
		LastName:         fields.LastName,
		SeatRow:          seat.Row,
		SeatPosition:     seat.Position,
	}
	if err := s.travelers.Insert(ctx, traveler); err != nil {
		return nil, err
	}
	return &traveler, nil
}

func (s *BookingService) ReleaseBooking(ctx context.Context, reference string) error {
	return s.travelers.Delete(ctx, reference)
}

func (s *BookingService) TravelerByReference(ctx context.Context, reference string) (*domain.Traveler, error) {
	return s.travelers.GetByReference(ctx, reference)
}

func (s *BookingService) publish(ctx context.Context, eventType string, seat *domain.Seat, traveler *domain.Traveler) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		EventID:   uuid.NewString(),
		Type:      eventType,
		Reference: traveler.BookingReference,
		SeatID:    seat.SeatID,
		Row:       seat.Row,
		Position:  seat.Position,
		Category:  string(seat.Category),
		FirstName: traveler.FirstName,
		LastName:  traveler.LastName,
		At:        time.Now().UTC(),
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, event.Reference, event); err != nil {
		fmt.Printf("WARNING: failed to publish %s event for reference %s: %v\n", eventType, event.Reference, err)
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, event.Reference, event); err != nil {
			fmt.Printf("WARNING: failed to publish %s notification for reference %s: %v\n", eventType, event.Reference, err)
		}
	}
}

func randomReference() (string, error) {
	out := make([]byte, 0, referenceLength)
	buf := make([]byte, referenceLength)
	for len(out) < referenceLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			// Reject bytes past the largest multiple of the alphabet
			// size to keep the draw uniform.
			if b >= byte(252) {
				continue
			}
			out = append(out, referenceAlphabet[int(b)%len(referenceAlphabet)])
			if len(out) == referenceLength {
				break
			}
		}
	}
	return string(out), nil
}

var _ BookingUseCase = (*BookingService)(nil)
