package services

import (
	"math"

	"lelang/internal/apperrors"
	"lelang/internal/models"
)

func validAmount(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func validateDraft(draft models.AuctionDraft) error {
	if !validAmount(draft.CurrentBid) || draft.CurrentBid < 0 {
		return apperrors.Validationf("opening bid %v must be a non-negative number", draft.CurrentBid)
	}
	if draft.ValidTillDays < 0 {
		return apperrors.Validationf("valid_till_days %d must not be negative", draft.ValidTillDays)
	}
	return nil
}

func validatePatch(patch models.AuctionPatch) error {
	if patch.CurrentBid.Set && !validAmount(patch.CurrentBid.Value) {
		return apperrors.Validationf("current_bid %v is not a number", patch.CurrentBid.Value)
	}
	if patch.ValidTillDays.Set && patch.ValidTillDays.Value < 0 {
		return apperrors.Validationf("valid_till_days %d must not be negative", patch.ValidTillDays.Value)
	}
	return nil
}

func validateBid(bidderEmail string, amount float64) error {
	if bidderEmail == "" {
		return apperrors.Validationf("bidder identity is required")
	}
	if !validAmount(amount) || amount <= 0 {
		return apperrors.Validationf("bid amount %v must be a positive number", amount)
	}
	return nil
}
