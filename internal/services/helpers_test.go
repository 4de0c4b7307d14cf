package services_test

import (
	"context"
	"testing"
	"time"

	"lelang/internal/lock"
	"lelang/internal/models"
	"lelang/internal/repositories"
	"lelang/internal/services"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUserDirectory is a mock implementation of services.UserDirectory
type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) UserExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

// MockPublisher is a mock implementation of services.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(routingKey string, payload any) error {
	args := m.Called(routingKey, payload)
	return args.Error(0)
}

// MockAuctionRepository is a mock implementation of repositories.AuctionRepository
type MockAuctionRepository struct {
	mock.Mock
}

func (m *MockAuctionRepository) GetAll(ctx context.Context) ([]models.Auction, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Auction), args.Error(1)
}

func (m *MockAuctionRepository) GetByID(ctx context.Context, id string) (*models.Auction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Auction), args.Error(1)
}

func (m *MockAuctionRepository) Create(ctx context.Context, auction *models.Auction) error {
	args := m.Called(ctx, auction)
	return args.Error(0)
}

func (m *MockAuctionRepository) Update(ctx context.Context, id string, mutate repositories.AuctionMutator) (*models.Auction, error) {
	args := m.Called(ctx, id, mutate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Auction), args.Error(1)
}

func (m *MockAuctionRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var testNow = time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

type testEnv struct {
	repo     *repositories.MockAuctionRepository
	users    *MockUserDirectory
	auctions *services.AuctionService
	bidding  *services.BiddingService
}

// newTestEnv wires both services over one in-memory store and one
// locker, the same way the application does.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repo := repositories.NewMockAuctionRepository()
	users := new(MockUserDirectory)
	locker := lock.NewKeyedMutex()

	return &testEnv{
		repo:  repo,
		users: users,
		auctions: services.NewAuctionService(services.AuctionServiceParams{
			AuctionRepo: repo,
			Users:       users,
			Locker:      locker,
			Now:         fixedClock,
			Logger:      zerolog.Nop(),
		}),
		bidding: services.NewBiddingService(services.BiddingServiceParams{
			AuctionRepo: repo,
			Locker:      locker,
			Now:         fixedClock,
			Logger:      zerolog.Nop(),
		}),
	}
}

// createAuction lists an auction owned by owner with the given opening bid.
func (e *testEnv) createAuction(t *testing.T, owner string, openingBid float64) *models.Auction {
	t.Helper()
	e.users.On("UserExists", mock.Anything, owner).Return(true, nil).Once()
	a, err := e.auctions.CreateAuction(context.Background(), models.AuctionDraft{
		Title:         "Brass telescope",
		Description:   "Victorian, working optics",
		ImageSrc:      "telescope.jpg",
		CurrentBid:    openingBid,
		ValidTillDays: 10,
	}, owner)
	require.NoError(t, err)
	return a
}
