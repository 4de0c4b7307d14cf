package services

import (
	"fmt"

	"lelang/internal/apperrors"
	"lelang/internal/models"
)

// Authorize permits a mutation only when requester owns the auction.
func Authorize(auction *models.Auction, requester string) error {
	if auction.IsOwnedBy(requester) {
		return nil
	}
	return fmt.Errorf("auction %s, requester %q: %w", auction.ID, requester, apperrors.ErrForbidden)
}
