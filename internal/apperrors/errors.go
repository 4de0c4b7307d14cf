package apperrors

import (
	"errors"
	"fmt"
)

// Auction errors
var (
	ErrAuctionNotFound  = errors.New("auction not found")
	ErrAuctionExists    = errors.New("auction already exists")
	ErrForbidden        = errors.New("requester does not own this auction")
	ErrOwnerNotFound    = errors.New("owner not found")
	ErrConcurrentUpdate = errors.New("auction was modified concurrently")
)

// Bid errors
var (
	ErrBidTooLow = errors.New("bid amount must be higher than the current bid")
)

// User errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ErrValidation marks input rejected before any state is read.
var ErrValidation = errors.New("validation failed")

// BidTooLowError is returned when a bid does not exceed the current bid.
// It carries the bid the caller has to beat.
type BidTooLowError struct {
	CurrentBid float64
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("%s (current bid is %.2f)", ErrBidTooLow, e.CurrentBid)
}

// Is reports ErrBidTooLow as a match so callers can use errors.Is.
func (e *BidTooLowError) Is(target error) bool {
	return target == ErrBidTooLow
}

// Validationf wraps ErrValidation with a description of the offending input.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
