package apperrors_test

import (
	"errors"
	"fmt"
	"testing"

	"lelang/internal/apperrors"

	"github.com/stretchr/testify/assert"
)

func TestBidTooLowError(t *testing.T) {
	err := fmt.Errorf("place bid: %w", &apperrors.BidTooLowError{CurrentBid: 60})

	assert.True(t, errors.Is(err, apperrors.ErrBidTooLow))
	assert.False(t, errors.Is(err, apperrors.ErrValidation))

	var tooLow *apperrors.BidTooLowError
	assert.True(t, errors.As(err, &tooLow))
	assert.Equal(t, 60.0, tooLow.CurrentBid)
	assert.Contains(t, err.Error(), "current bid is 60.00")
}

func TestValidationf(t *testing.T) {
	err := apperrors.Validationf("amount %v is not positive", -1)

	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	assert.Equal(t, "validation failed: amount -1 is not positive", err.Error())
}
