package repositories

import (
	"context"

	"lelang/internal/models"
)

// AuctionMutator edits an auction inside AuctionRepository.Update. A
// non-nil error aborts the update and nothing is persisted.
type AuctionMutator func(auction *models.Auction) error

// AuctionRepository defines the interface for auction data access.
// Each method is atomic with respect to a single auction.
type AuctionRepository interface {
	GetAll(ctx context.Context) ([]models.Auction, error)
	GetByID(ctx context.Context, id string) (*models.Auction, error)
	Create(ctx context.Context, auction *models.Auction) error
	Update(ctx context.Context, id string, mutate AuctionMutator) (*models.Auction, error)
	Delete(ctx context.Context, id string) error
}
