package services_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"lelang/internal/apperrors"
	"lelang/internal/models"
	"lelang/internal/repositories"
	"lelang/internal/services"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBiddingService_PlaceBid(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	a := env.createAuction(t, "owner@example.com", 50)

	// A tie with the current bid is rejected and reports the bid to beat.
	_, _, err := env.bidding.PlaceBid(ctx, a.ID, "b1@example.com", 50)
	var tooLow *apperrors.BidTooLowError
	require.True(t, errors.As(err, &tooLow))
	assert.Equal(t, 50.0, tooLow.CurrentBid)

	updated, bid, err := env.bidding.PlaceBid(ctx, a.ID, "b1@example.com", 60)
	require.NoError(t, err)
	assert.Equal(t, 60.0, updated.CurrentBid)
	assert.Len(t, updated.BidHistory, 2)
	assert.Equal(t, models.Bid{BidderEmail: "b1@example.com", Amount: 60, Timestamp: testNow}, *bid)

	// The owner may bid on their own auction.
	updated, _, err = env.bidding.PlaceBid(ctx, a.ID, "owner@example.com", 61)
	require.NoError(t, err)
	assert.Equal(t, 61.0, updated.CurrentBid)

	stored, err := env.repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 61.0, stored.CurrentBid)
	assert.Equal(t, 50.0, stored.MinBid)
	assert.Len(t, stored.BidHistory, 3)
}

func TestBiddingService_PlaceBidValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	a := env.createAuction(t, "owner@example.com", 10)

	tests := []struct {
		name   string
		bidder string
		amount float64
	}{
		{"zero_amount", "b1@example.com", 0},
		{"negative_amount", "b1@example.com", -5},
		{"nan_amount", "b1@example.com", math.NaN()},
		{"infinite_amount", "b1@example.com", math.Inf(1)},
		{"missing_bidder", "", 20},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := env.bidding.PlaceBid(ctx, a.ID, tc.bidder, tc.amount)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}

	history, err := env.bidding.GetBidHistory(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestBiddingService_PlaceBidUnknownAuction(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.bidding.PlaceBid(context.Background(), "missing", "b1@example.com", 10)
	assert.ErrorIs(t, err, apperrors.ErrAuctionNotFound)
}

func TestBiddingService_LedgerGrowsOnlyWithAcceptedBids(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	a := env.createAuction(t, "owner@example.com", 100)

	amounts := []float64{110, 105, 110, 120, 119.99, 150, 150, 151}
	accepted := 0
	for _, amount := range amounts {
		_, _, err := env.bidding.PlaceBid(ctx, a.ID, "bidder@example.com", amount)
		if err == nil {
			accepted++
			continue
		}
		assert.ErrorIs(t, err, apperrors.ErrBidTooLow)
	}
	assert.Equal(t, 4, accepted)

	history, err := env.bidding.GetBidHistory(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, history, accepted+1)
	for i := 1; i < len(history); i++ {
		assert.Greater(t, history[i].Amount, history[i-1].Amount)
	}

	again, err := env.bidding.GetBidHistory(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, history, again)
}

func TestBiddingService_ConcurrentBidsSerialize(t *testing.T) {
	ctx := context.Background()

	// Run the 100-vs-105 race many times; both interleavings must end
	// in a consistent ledger.
	for i := 0; i < 50; i++ {
		env := newTestEnv(t)
		a := env.createAuction(t, "owner@example.com", 90)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for j, amount := range []float64{100, 105} {
			wg.Add(1)
			go func(j int, amount float64) {
				defer wg.Done()
				_, _, errs[j] = env.bidding.PlaceBid(ctx, a.ID, "bidder@example.com", amount)
			}(j, amount)
		}
		wg.Wait()

		require.NoError(t, errs[1], "105 always beats 90 and 100")

		history, err := env.bidding.GetBidHistory(ctx, a.ID)
		require.NoError(t, err)
		stored, err := env.repo.GetByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, 105.0, stored.CurrentBid)

		if errs[0] == nil {
			require.Len(t, history, 3)
			assert.Equal(t, []float64{90, 100, 105}, amountsOf(history))
		} else {
			assert.ErrorIs(t, errs[0], apperrors.ErrBidTooLow)
			assert.Equal(t, []float64{90, 105}, amountsOf(history))
		}
	}
}

func TestBiddingService_ManyConcurrentBidders(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	a := env.createAuction(t, "owner@example.com", 0)

	const bidders = 100
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 1; i <= bidders; i++ {
		wg.Add(1)
		go func(amount float64) {
			defer wg.Done()
			_, _, err := env.bidding.PlaceBid(ctx, a.ID, "bidder@example.com", amount)
			if err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			} else if !errors.Is(err, apperrors.ErrBidTooLow) {
				t.Errorf("unexpected error: %v", err)
			}
		}(float64(i))
	}
	wg.Wait()

	history, err := env.bidding.GetBidHistory(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, history, accepted+1)
	assert.Equal(t, float64(bidders), history[len(history)-1].Amount)
	for i := 1; i < len(history); i++ {
		assert.Greater(t, history[i].Amount, history[i-1].Amount)
	}
}

func TestBiddingService_PublishesBidPlaced(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMockAuctionRepository()
	a := models.NewAuction("a-1", models.AuctionDraft{CurrentBid: 10}, "owner@example.com", testNow)
	require.NoError(t, repo.Create(ctx, a))

	publisher := new(MockPublisher)
	publisher.On("Publish", services.EventBidPlaced, services.AuctionEvent{
		Type:       services.EventBidPlaced,
		AuctionID:  "a-1",
		Actor:      "b1@example.com",
		CurrentBid: 20,
		Amount:     20,
		Timestamp:  testNow,
	}).Return(errors.New("broker down")).Once()

	bidding := services.NewBiddingService(services.BiddingServiceParams{
		AuctionRepo: repo,
		Publisher:   publisher,
		Now:         fixedClock,
		Logger:      zerolog.Nop(),
	})

	// A publish failure does not undo the committed bid.
	updated, _, err := bidding.PlaceBid(ctx, "a-1", "b1@example.com", 20)
	require.NoError(t, err)
	assert.Equal(t, 20.0, updated.CurrentBid)
	publisher.AssertExpectations(t)

	// Rejected bids publish nothing.
	_, _, err = bidding.PlaceBid(ctx, "a-1", "b1@example.com", 15)
	assert.ErrorIs(t, err, apperrors.ErrBidTooLow)
	publisher.AssertNumberOfCalls(t, "Publish", 1)
}

func TestBiddingService_StoreFailurePropagates(t *testing.T) {
	ctx := context.Background()
	repo := new(MockAuctionRepository)
	storeErr := errors.New("store unavailable")
	repo.On("Update", mock.Anything, "a-1", mock.Anything).Return(nil, storeErr).Once()
	repo.On("GetByID", mock.Anything, "a-1").Return(nil, storeErr).Once()

	bidding := services.NewBiddingService(services.BiddingServiceParams{
		AuctionRepo: repo,
		Logger:      zerolog.Nop(),
	})

	_, _, err := bidding.PlaceBid(ctx, "a-1", "b1@example.com", 20)
	assert.ErrorIs(t, err, storeErr)

	_, err = bidding.GetBidHistory(ctx, "a-1")
	assert.ErrorIs(t, err, storeErr)
	repo.AssertExpectations(t)
}

func amountsOf(history []models.Bid) []float64 {
	out := make([]float64, len(history))
	for i, b := range history {
		out[i] = b.Amount
	}
	return out
}
