package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lelang/internal/apperrors"
	"lelang/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultUpdateAttempts = 5

// mutableAuctionColumns are the columns Update may write. id, owner_email,
// min_bid and created_at are fixed at creation.
var mutableAuctionColumns = []string{
	"title", "description", "image_src", "current_bid", "valid_till_days",
	"bid_history", "version", "updated_at",
}

// GORMAuctionRepository is a GORM implementation of AuctionRepository.
type GORMAuctionRepository struct {
	db          *gorm.DB
	maxAttempts int
}

// NewGORMAuctionRepository creates a new instance of GORMAuctionRepository.
func NewGORMAuctionRepository(db *gorm.DB) *GORMAuctionRepository {
	return &GORMAuctionRepository{
		db:          db,
		maxAttempts: defaultUpdateAttempts,
	}
}

// GetAll retrieves all auctions from the database.
func (r *GORMAuctionRepository) GetAll(ctx context.Context) ([]models.Auction, error) {
	var auctions []models.Auction
	if err := r.db.WithContext(ctx).Find(&auctions).Error; err != nil {
		return nil, fmt.Errorf("failed to get all auctions: %w", err)
	}
	return auctions, nil
}

// GetByID retrieves a single auction by its ID from the database.
func (r *GORMAuctionRepository) GetByID(ctx context.Context, id string) (*models.Auction, error) {
	var auction models.Auction
	if err := r.db.WithContext(ctx).First(&auction, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("auction with ID %s: %w", id, apperrors.ErrAuctionNotFound)
		}
		return nil, fmt.Errorf("failed to get auction by ID %s: %w", id, err)
	}
	return &auction, nil
}

// Create creates a new auction in the database.
func (r *GORMAuctionRepository) Create(ctx context.Context, auction *models.Auction) error {
	if auction.ID == "" {
		auction.ID = uuid.New().String()
	}
	auction.Version = 1
	if err := r.db.WithContext(ctx).Create(auction).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("auction with ID %s: %w", auction.ID, apperrors.ErrAuctionExists)
		}
		return fmt.Errorf("failed to create auction: %w", err)
	}
	return nil
}

// Update applies mutate with optimistic concurrency: the write only
// lands if the row still carries the version that was read. When
// another writer won, the row is read again and mutate runs against the
// fresh state, so its checks always see the latest bid.
func (r *GORMAuctionRepository) Update(ctx context.Context, id string, mutate AuctionMutator) (*models.Auction, error) {
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		current, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		next := current.Clone()
		if err := mutate(next); err != nil {
			return nil, err
		}
		next.ID = current.ID
		next.OwnerEmail = current.OwnerEmail
		next.MinBid = current.MinBid
		next.CreatedAt = current.CreatedAt
		next.Version = current.Version + 1
		next.UpdatedAt = time.Now()

		res := r.db.WithContext(ctx).
			Model(&models.Auction{}).
			Where("id = ? AND version = ?", id, current.Version).
			Select(mutableAuctionColumns).
			Updates(next)
		if res.Error != nil {
			return nil, fmt.Errorf("failed to update auction %s: %w", id, res.Error)
		}
		if res.RowsAffected == 1 {
			return next, nil
		}
	}
	return nil, fmt.Errorf("auction with ID %s after %d attempts: %w", id, r.maxAttempts, apperrors.ErrConcurrentUpdate)
}

// Delete deletes an auction by its ID from the database.
func (r *GORMAuctionRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Auction{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete auction: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("auction with ID %s not found for deletion: %w", id, apperrors.ErrAuctionNotFound)
	}
	return nil
}
