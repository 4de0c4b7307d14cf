package services

import (
	"context"
	"fmt"
	"time"

	"lelang/internal/apperrors"
	"lelang/internal/lock"
	"lelang/internal/models"
	"lelang/internal/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// UserDirectory answers whether an identity belongs to a registered
// user. Implemented by AuthService.
type UserDirectory interface {
	UserExists(ctx context.Context, email string) (bool, error)
}

// AuctionService handles the auction lifecycle: create, read, update
// and delete. Updates and deletes share the bidding lock key, so they
// never interleave with a bid on the same auction.
type AuctionService struct {
	auctionRepo repositories.AuctionRepository
	users       UserDirectory
	locker      lock.Locker
	publisher   EventPublisher
	now         func() time.Time
	logger      zerolog.Logger
}

type AuctionServiceParams struct {
	AuctionRepo repositories.AuctionRepository
	Users       UserDirectory
	Locker      lock.Locker
	Publisher   EventPublisher // optional
	Now         func() time.Time
	Logger      zerolog.Logger
}

// NewAuctionService creates a new AuctionService. Pass the same Locker
// as the BiddingService.
func NewAuctionService(params AuctionServiceParams) *AuctionService {
	locker := params.Locker
	if locker == nil {
		locker = lock.NewKeyedMutex()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &AuctionService{
		auctionRepo: params.AuctionRepo,
		users:       params.Users,
		locker:      locker,
		publisher:   params.Publisher,
		now:         now,
		logger:      params.Logger.With().Str("component", "auction_service").Logger(),
	}
}

// CreateAuction lists a new auction owned by ownerEmail. The opening bid
// becomes both the current and the minimum bid, and the first ledger
// entry.
func (s *AuctionService) CreateAuction(ctx context.Context, draft models.AuctionDraft, ownerEmail string) (*models.Auction, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	exists, err := s.users.UserExists(ctx, ownerEmail)
	if err != nil {
		return nil, err
	}
	if !exists {
		s.logger.Warn().Str("owner", ownerEmail).Msg("Auction owner not found")
		return nil, fmt.Errorf("user %q: %w", ownerEmail, apperrors.ErrOwnerNotFound)
	}

	auction := models.NewAuction(uuid.New().String(), draft, ownerEmail, s.now())
	if err := s.auctionRepo.Create(ctx, auction); err != nil {
		s.logger.Error().Err(err).Str("owner", ownerEmail).Msg("Failed to store auction")
		return nil, err
	}

	s.logger.Info().
		Str("auction_id", auction.ID).
		Str("owner", ownerEmail).
		Float64("opening_bid", auction.CurrentBid).
		Msg("Auction created")

	publishEvent(s.publisher, s.logger, AuctionEvent{
		Type:       EventAuctionCreated,
		AuctionID:  auction.ID,
		Actor:      ownerEmail,
		CurrentBid: auction.CurrentBid,
		Timestamp:  auction.CreatedAt,
	})
	return auction, nil
}

// ListAuctions retrieves all auctions.
func (s *AuctionService) ListAuctions(ctx context.Context) ([]models.Auction, error) {
	return s.auctionRepo.GetAll(ctx)
}

// GetAuction retrieves a single auction by its ID.
func (s *AuctionService) GetAuction(ctx context.Context, id string) (*models.Auction, error) {
	return s.auctionRepo.GetByID(ctx, id)
}

// UpdateAuction applies the present fields of patch when requester owns
// the auction. Existence and ownership are checked before the patch
// values, and a patch with no fields returns the auction unchanged.
func (s *AuctionService) UpdateAuction(ctx context.Context, id, requester string, patch models.AuctionPatch) (*models.Auction, error) {
	if patch.IsEmpty() {
		auction, err := s.auctionRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := Authorize(auction, requester); err != nil {
			s.logger.Warn().Str("auction_id", id).Str("requester", requester).Msg("Auction update refused")
			return nil, err
		}
		return auction, nil
	}

	unlock, err := s.locker.Lock(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to lock auction %s: %w", id, err)
	}
	defer unlock()

	updated, err := s.auctionRepo.Update(ctx, id, func(a *models.Auction) error {
		if err := Authorize(a, requester); err != nil {
			return err
		}
		if err := validatePatch(patch); err != nil {
			return err
		}
		return a.ApplyPatch(patch, s.now())
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("auction_id", id).Str("requester", requester).Msg("Auction update refused")
		return nil, err
	}

	s.logger.Info().Str("auction_id", id).Str("requester", requester).Msg("Auction updated")
	publishEvent(s.publisher, s.logger, AuctionEvent{
		Type:       EventAuctionUpdated,
		AuctionID:  id,
		Actor:      requester,
		CurrentBid: updated.CurrentBid,
		Timestamp:  updated.UpdatedAt,
	})
	return updated, nil
}

// DeleteAuction removes the auction when requester owns it.
func (s *AuctionService) DeleteAuction(ctx context.Context, id, requester string) error {
	unlock, err := s.locker.Lock(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to lock auction %s: %w", id, err)
	}
	defer unlock()

	auction, err := s.auctionRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := Authorize(auction, requester); err != nil {
		s.logger.Warn().Str("auction_id", id).Str("requester", requester).Msg("Auction delete refused")
		return err
	}
	if err := s.auctionRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("auction_id", id).Str("requester", requester).Msg("Auction deleted")
	publishEvent(s.publisher, s.logger, AuctionEvent{
		Type:       EventAuctionDeleted,
		AuctionID:  id,
		Actor:      requester,
		CurrentBid: auction.CurrentBid,
		Timestamp:  s.now(),
	})
	return nil
}
