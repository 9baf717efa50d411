package registry

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/Domenick1991/cabinseats/internal/domain"
	"github.com/Domenick1991/cabinseats/internal/service/seatmap"
	"github.com/Domenick1991/cabinseats/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) AcquireSeatLock(ctx context.Context, seatID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, seatID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockLocker) ReleaseSeatLock(ctx context.Context, seatID string) error {
	args := m.Called(ctx, seatID)
	return args.Error(0)
}

func newService(store *testutil.Store, opts ...BookingServiceOption) *BookingService {
	seatSvc := seatmap.NewSeatMapService(store.SeatRepo(), nil)
	return NewBookingService(seatSvc, store.SeatRepo(), store.TravelerRepo(), nil, nil, "", time.Second, opts...)
}

func cabin() *testutil.Store {
	return testutil.NewStore(
		domain.Seat{SeatID: "A1", Row: "A", Position: 1, Kind: domain.CellKindSeat, Category: domain.SeatCategoryWindow, Status: domain.SeatStatusFree},
		domain.Seat{SeatID: "A2", Row: "A", Position: 2, Kind: domain.CellKindSeat, Category: domain.SeatCategoryWindow, Status: domain.SeatStatusFree},
		domain.Seat{SeatID: "B1", Row: "B", Position: 1, Kind: domain.CellKindSeat, Category: domain.SeatCategoryMiddle, Status: domain.SeatStatusFree},
		domain.Seat{SeatID: "A-3", Row: "A", Position: 3, Kind: domain.CellKindAisle, Status: domain.SeatStatusFree},
	)
}

var referencePattern = regexp.MustCompile(`^[A-Z0-9]{8}$`)

func fields() TravelerFields {
	return TravelerFields{PassportNumber: "P1234567", FirstName: "Ada", LastName: "Lovelace"}
}

func TestGenerateReference(t *testing.T) {
	ctx := context.Background()
	svc := newService(cabin())

	never := func(ctx context.Context, ref string) (bool, error) { return false, nil }

	t.Run("shape", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			ref, err := svc.GenerateReference(ctx, never)
			assert.NoError(t, err)
			assert.Regexp(t, referencePattern, ref)
		}
	})

	t.Run("redraws while candidate is taken", func(t *testing.T) {
		calls := 0
		exists := func(ctx context.Context, ref string) (bool, error) {
			calls++
			return calls < 3, nil
		}
		ref, err := svc.GenerateReference(ctx, exists)
		assert.NoError(t, err)
		assert.Regexp(t, referencePattern, ref)
		assert.Equal(t, 3, calls)
	})

	t.Run("distinct while first is live", func(t *testing.T) {
		live := map[string]bool{}
		exists := func(ctx context.Context, ref string) (bool, error) { return live[ref], nil }

		first, err := svc.GenerateReference(ctx, exists)
		assert.NoError(t, err)
		live[first] = true

		second, err := svc.GenerateReference(ctx, exists)
		assert.NoError(t, err)
		assert.NotEqual(t, first, second)
	})

	t.Run("bounded retries as a safety net", func(t *testing.T) {
		bounded := newService(cabin(), WithReferenceAttempts(5))
		always := func(ctx context.Context, ref string) (bool, error) { return true, nil }
		_, err := bounded.GenerateReference(ctx, always)
		assert.ErrorIs(t, err, domain.ErrReferenceSpaceExhausted)
	})

	t.Run("predicate failure propagates", func(t *testing.T) {
		boom := errors.New("store down")
		failing := func(ctx context.Context, ref string) (bool, error) { return false, boom }
		_, err := svc.GenerateReference(ctx, failing)
		assert.ErrorIs(t, err, boom)
	})
}

func TestBookingService_Book(t *testing.T) {
	ctx := context.Background()

	t.Run("books a seat by id", func(t *testing.T) {
		store := cabin()
		svc := newService(store)

		result, err := svc.Book(ctx, BookingInput{SeatID: "a1", TravelerFields: fields()})
		assert.NoError(t, err)
		assert.Equal(t, "A1", result.Seat.SeatID)
		assert.Regexp(t, referencePattern, result.Traveler.BookingReference)
		assert.Equal(t, result.Traveler.BookingReference, store.Seats["A1"].BookingReference)

		traveler := store.Travelers[result.Traveler.BookingReference]
		assert.Equal(t, "Ada", traveler.FirstName)
		assert.Equal(t, "A", traveler.SeatRow)
		assert.Equal(t, 1, traveler.SeatPosition)
	})

	t.Run("books first free seat of category", func(t *testing.T) {
		store := cabin()
		svc := newService(store)

		result, err := svc.Book(ctx, BookingInput{Category: domain.SeatCategoryWindow, TravelerFields: fields()})
		assert.NoError(t, err)
		assert.Equal(t, "A1", result.Seat.SeatID)

		result, err = svc.Book(ctx, BookingInput{Category: domain.SeatCategoryWindow, TravelerFields: fields()})
		assert.NoError(t, err)
		assert.Equal(t, "A2", result.Seat.SeatID)

		_, err = svc.Book(ctx, BookingInput{Category: domain.SeatCategoryWindow, TravelerFields: fields()})
		assert.ErrorIs(t, err, domain.ErrNoSeatAvailable)
	})

	t.Run("rejects missing traveler detail", func(t *testing.T) {
		svc := newService(cabin())
		for _, input := range []BookingInput{
			{SeatID: "A1", TravelerFields: TravelerFields{FirstName: "Ada", LastName: "Lovelace"}},
			{SeatID: "A1", TravelerFields: TravelerFields{PassportNumber: "P1", LastName: "Lovelace"}},
			{SeatID: "A1", TravelerFields: TravelerFields{PassportNumber: "P1", FirstName: "Ada"}},
		} {
			_, err := svc.Book(ctx, input)
			assert.Error(t, err)
		}
	})

	t.Run("rejects booking without a seat selector", func(t *testing.T) {
		svc := newService(cabin())
		_, err := svc.Book(ctx, BookingInput{TravelerFields: fields()})
		assert.Error(t, err)
	})

	t.Run("rejects non-seat and booked targets", func(t *testing.T) {
		store := cabin()
		svc := newService(store)

		_, err := svc.Book(ctx, BookingInput{SeatID: "A-3", TravelerFields: fields()})
		assert.ErrorIs(t, err, domain.ErrNotASeat)

		_, err = svc.Book(ctx, BookingInput{SeatID: "A1", TravelerFields: fields()})
		assert.NoError(t, err)
		_, err = svc.Book(ctx, BookingInput{SeatID: "A1", TravelerFields: fields()})
		assert.ErrorIs(t, err, domain.ErrAlreadyBooked)
	})

	t.Run("traveler write failure rolls back the seat", func(t *testing.T) {
		store := cabin()
		store.TravelerInsertErrs = []error{errors.New("constraint violated")}
		svc := newService(store)

		_, err := svc.Book(ctx, BookingInput{SeatID: "A1", TravelerFields: fields()})
		assert.Error(t, err)
		assert.Empty(t, store.Seats["A1"].BookingReference)
		assert.Empty(t, store.Travelers)
	})

	t.Run("duplicate reference restarts the transaction", func(t *testing.T) {
		store := cabin()
		store.TravelerInsertErrs = []error{domain.ErrDuplicateReference, nil}
		svc := newService(store)

		result, err := svc.Book(ctx, BookingInput{SeatID: "A1", TravelerFields: fields()})
		assert.NoError(t, err)
		assert.Equal(t, result.Traveler.BookingReference, store.Seats["A1"].BookingReference)
		assert.Len(t, store.Travelers, 1)
	})

	t.Run("publishes a reserved event", func(t *testing.T) {
		store := cabin()
		producer := &MockProducer{}
		seatSvc := seatmap.NewSeatMapService(store.SeatRepo(), nil)
		svc := NewBookingService(seatSvc, store.SeatRepo(), store.TravelerRepo(), nil, producer, "bookings", time.Second)

		producer.On("Publish", ctx, "bookings", mock.Anything, mock.Anything).Return(nil).Once()

		_, err := svc.Book(ctx, BookingInput{SeatID: "A1", TravelerFields: fields()})
		assert.NoError(t, err)
		producer.AssertExpectations(t)
	})

	t.Run("seat lock denied", func(t *testing.T) {
		store := cabin()
		locker := &MockLocker{}
		seatSvc := seatmap.NewSeatMapService(store.SeatRepo(), nil)
		svc := NewBookingService(seatSvc, store.SeatRepo(), store.TravelerRepo(), locker, nil, "", time.Second)

		locker.On("AcquireSeatLock", ctx, "A1", time.Second).Return(false, nil).Once()

		_, err := svc.Book(ctx, BookingInput{SeatID: "a1", TravelerFields: fields()})
		assert.ErrorIs(t, err, domain.ErrAlreadyBooked)
		assert.Empty(t, store.Seats["A1"].BookingReference)
		locker.AssertExpectations(t)
	})
}

func TestBookingService_Free(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip leaves no traveler behind", func(t *testing.T) {
		store := cabin()
		svc := newService(store)

		result, err := svc.Book(ctx, BookingInput{SeatID: "A1", TravelerFields: fields()})
		assert.NoError(t, err)
		reference := result.Traveler.BookingReference

		seat, err := svc.Free(ctx, reference)
		assert.NoError(t, err)
		assert.Equal(t, "A1", seat.SeatID)
		assert.Equal(t, domain.SeatStatusFree, seat.Status)
		assert.Empty(t, store.Seats["A1"].BookingReference)
		assert.Empty(t, store.Travelers)
	})

	t.Run("frees exactly one seat", func(t *testing.T) {
		store := cabin()
		svc := newService(store)

		first, err := svc.Book(ctx, BookingInput{SeatID: "A1", TravelerFields: fields()})
		assert.NoError(t, err)
		second, err := svc.Book(ctx, BookingInput{SeatID: "A2", TravelerFields: fields()})
		assert.NoError(t, err)

		_, err = svc.Free(ctx, first.Traveler.BookingReference)
		assert.NoError(t, err)

		assert.Empty(t, store.Seats["A1"].BookingReference)
		assert.Equal(t, second.Traveler.BookingReference, store.Seats["A2"].BookingReference)
		assert.Len(t, store.Travelers, 1)
	})

	t.Run("free by seat id", func(t *testing.T) {
		store := cabin()
		svc := newService(store)

		_, err := svc.Book(ctx, BookingInput{SeatID: "A1", TravelerFields: fields()})
		assert.NoError(t, err)

		seat, err := svc.Free(ctx, " a1 ")
		assert.NoError(t, err)
		assert.Equal(t, "A1", seat.SeatID)
	})

	t.Run("free seat reports not booked and mutates nothing", func(t *testing.T) {
		store := cabin()
		svc := newService(store)

		_, err := svc.Free(ctx, "A1")
		assert.ErrorIs(t, err, domain.ErrNotBooked)
		assert.Equal(t, domain.SeatStatusFree, store.Seats["A1"].Status)
	})

	t.Run("unknown reference", func(t *testing.T) {
		svc := newService(cabin())
		_, err := svc.Free(ctx, "ZZZZZZZZ")
		assert.ErrorIs(t, err, domain.ErrInvalidReference)
	})
}

func TestBookingService_RecordAndReleaseBooking(t *testing.T) {
	ctx := context.Background()
	store := cabin()
	svc := newService(store)

	seat := store.Seats["B1"]

	traveler, err := svc.RecordBooking(ctx, "REF12345", &seat, fields())
	assert.NoError(t, err)
	assert.Equal(t, "REF12345", traveler.BookingReference)
	assert.Equal(t, "B", traveler.SeatRow)

	_, err = svc.RecordBooking(ctx, "REF12345", &seat, fields())
	assert.ErrorIs(t, err, domain.ErrDuplicateReference)

	assert.NoError(t, svc.ReleaseBooking(ctx, "REF12345"))
	assert.Empty(t, store.Travelers)

	// Releasing again is a harmless no-op.
	assert.NoError(t, svc.ReleaseBooking(ctx, "REF12345"))
}
