package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"lelang/internal/apperrors"
	"lelang/internal/models"

	"github.com/google/uuid"
)

// MockAuctionRepository is an in-memory implementation of AuctionRepository.
type MockAuctionRepository struct {
	auctions map[string]*models.Auction
	mu       sync.RWMutex
}

// NewMockAuctionRepository creates a new instance of MockAuctionRepository.
func NewMockAuctionRepository() *MockAuctionRepository {
	return &MockAuctionRepository{
		auctions: make(map[string]*models.Auction),
	}
}

// GetAll returns a snapshot of all auctions.
func (r *MockAuctionRepository) GetAll(ctx context.Context) ([]models.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	auctionList := make([]models.Auction, 0, len(r.auctions))
	for _, a := range r.auctions {
		auctionList = append(auctionList, *a.Clone())
	}
	return auctionList, nil
}

// GetByID returns an auction by its ID.
func (r *MockAuctionRepository) GetByID(ctx context.Context, id string) (*models.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.auctions[id]
	if !ok {
		return nil, fmt.Errorf("auction with ID %s: %w", id, apperrors.ErrAuctionNotFound)
	}
	return a.Clone(), nil
}

// Create adds a new auction.
func (r *MockAuctionRepository) Create(ctx context.Context, auction *models.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if auction.ID == "" {
		auction.ID = uuid.New().String()
	}
	if _, exists := r.auctions[auction.ID]; exists {
		return fmt.Errorf("auction with ID %s: %w", auction.ID, apperrors.ErrAuctionExists)
	}
	auction.Version = 1
	r.auctions[auction.ID] = auction.Clone()
	return nil
}

// Update runs mutate on a copy of the stored auction while holding the
// write lock, and stores the copy only if mutate succeeds.
func (r *MockAuctionRepository) Update(ctx context.Context, id string, mutate AuctionMutator) (*models.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.auctions[id]
	if !ok {
		return nil, fmt.Errorf("auction with ID %s not found for update: %w", id, apperrors.ErrAuctionNotFound)
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
	r.auctions[id] = next
	return next.Clone(), nil
}

// Delete removes an auction by its ID.
func (r *MockAuctionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[id]; !ok {
		return fmt.Errorf("auction with ID %s not found for deletion: %w", id, apperrors.ErrAuctionNotFound)
	}
	delete(r.auctions, id)
	return nil
}
