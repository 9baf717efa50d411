package domain

import "errors"

var (
	ErrSeatNotFound            = errors.New("seat not found")
	ErrNotASeat                = errors.New("position is not a bookable seat")
	ErrAlreadyBooked           = errors.New("seat already booked")
	ErrNotBooked               = errors.New("seat not booked")
	ErrNoSeatAvailable         = errors.New("no seat available in category")
	ErrInvalidReference        = errors.New("invalid booking reference")
	ErrDuplicateReference      = errors.New("duplicate booking reference")
	ErrDuplicateSeat           = errors.New("duplicate seat id")
	ErrReferenceSpaceExhausted = errors.New("booking reference space exhausted")
)
