package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lelang/internal/apperrors"
	"lelang/internal/lock"
	"lelang/internal/models"
	"lelang/internal/repositories"

	"github.com/rs/zerolog"
)

// BiddingService validates and applies bids.
type BiddingService struct {
	auctionRepo repositories.AuctionRepository
	locker      lock.Locker
	publisher   EventPublisher
	now         func() time.Time
	logger      zerolog.Logger
}

type BiddingServiceParams struct {
	AuctionRepo repositories.AuctionRepository
	Locker      lock.Locker
	Publisher   EventPublisher // optional
	Now         func() time.Time
	Logger      zerolog.Logger
}

// NewBiddingService creates a new BiddingService. Locker defaults to an
// in-process KeyedMutex and Now to time.Now.
func NewBiddingService(params BiddingServiceParams) *BiddingService {
	locker := params.Locker
	if locker == nil {
		locker = lock.NewKeyedMutex()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &BiddingService{
		auctionRepo: params.AuctionRepo,
		locker:      locker,
		publisher:   params.Publisher,
		now:         now,
		logger:      params.Logger.With().Str("component", "bidding_service").Logger(),
	}
}

// PlaceBid records a bid of amount by bidderEmail. The bid must be
// strictly higher than the auction's current bid at the moment it is
// applied; otherwise a *apperrors.BidTooLowError carrying that bid is
// returned and nothing changes.
func (s *BiddingService) PlaceBid(ctx context.Context, auctionID, bidderEmail string, amount float64) (*models.Auction, *models.Bid, error) {
	if err := validateBid(bidderEmail, amount); err != nil {
		return nil, nil, err
	}

	unlock, err := s.locker.Lock(ctx, auctionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lock auction %s: %w", auctionID, err)
	}
	defer unlock()

	var placed models.Bid
	updated, err := s.auctionRepo.Update(ctx, auctionID, func(a *models.Auction) error {
		placed = models.Bid{BidderEmail: bidderEmail, Amount: amount, Timestamp: s.now()}
		return a.AcceptBid(placed)
	})
	if err != nil {
		var tooLow *apperrors.BidTooLowError
		switch {
		case errors.As(err, &tooLow):
			s.logger.Info().
				Str("auction_id", auctionID).
				Str("bidder", bidderEmail).
				Float64("current_bid", tooLow.CurrentBid).
				Float64("amount", amount).
				Msg("Bid rejected as too low")
		case errors.Is(err, apperrors.ErrAuctionNotFound):
			s.logger.Info().Str("auction_id", auctionID).Msg("Bid on unknown auction")
		default:
			s.logger.Error().Err(err).Str("auction_id", auctionID).Msg("Failed to place bid")
		}
		return nil, nil, err
	}

	s.logger.Info().
		Str("auction_id", auctionID).
		Str("bidder", bidderEmail).
		Float64("amount", amount).
		Int("history_len", len(updated.BidHistory)).
		Msg("Bid placed")

	publishEvent(s.publisher, s.logger, AuctionEvent{
		Type:       EventBidPlaced,
		AuctionID:  auctionID,
		Actor:      bidderEmail,
		CurrentBid: updated.CurrentBid,
		Amount:     amount,
		Timestamp:  placed.Timestamp,
	})

	return updated, &placed, nil
}

// GetBidHistory returns the auction's ledger in chronological order.
func (s *BiddingService) GetBidHistory(ctx context.Context, auctionID string) ([]models.Bid, error) {
	auction, err := s.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	return auction.History(), nil
}
