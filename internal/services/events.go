package services

import (
	"time"

	"github.com/rs/zerolog"
)

// Routing keys of the auction events.
const (
	EventAuctionCreated = "auction.created"
	EventAuctionUpdated = "auction.updated"
	EventAuctionDeleted = "auction.deleted"
	EventBidPlaced      = "bid.placed"
)

// EventPublisher sends auction events to a broker. Implemented by
// rabbitmq.Client.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

// AuctionEvent is the message body of every auction event.
type AuctionEvent struct {
	Type       string    `json:"type"`
	AuctionID  string    `json:"auction_id"`
	Actor      string    `json:"actor"`
	CurrentBid float64   `json:"current_bid"`
	Amount     float64   `json:"amount,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// publishEvent sends event after the change it describes has been
// stored. Failures are logged only; the change is already committed.
func publishEvent(publisher EventPublisher, logger zerolog.Logger, event AuctionEvent) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(event.Type, event); err != nil {
		logger.Warn().Err(err).
			Str("event", event.Type).
			Str("auction_id", event.AuctionID).
			Msg("Failed to publish auction event")
		return
	}
	logger.Debug().Str("event", event.Type).Str("auction_id", event.AuctionID).Msg("Published auction event")
}
