package booking

import "errors"

var (
	ErrBookingFailed     = errors.New("booking failed")
	ErrBookingIDConflict = errors.New("booking id already taken")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrInvalidBookingID  = errors.New("booking id is required")
)
