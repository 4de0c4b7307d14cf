package models

import (
	"time"

	"lelang/internal/apperrors"
)

// Bid is one entry of an auction's bid history.
type Bid struct {
	BidderEmail string    `json:"user_email"`
	Amount      float64   `json:"amount"`
	Timestamp   time.Time `json:"timestamp"`
}

// Auction represents an item listed for bidding. BidHistory is stored
// inside the auction row so the current bid and the ledger are always
// written together.
type Auction struct {
	ID            string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Title         string    `json:"title" gorm:"type:varchar(255)"`
	Description   string    `json:"description" gorm:"type:text"`
	ImageSrc      string    `json:"image_src" gorm:"type:text"`
	CurrentBid    float64   `json:"current_bid"`
	MinBid        float64   `json:"min_bid"`
	OwnerEmail    string    `json:"owner_email" gorm:"index;type:varchar(255);not null"`
	ValidTillDays int       `json:"valid_till_days"`
	BidHistory    []Bid     `json:"bid_history" gorm:"serializer:json;type:text"`
	Version       int64     `json:"-" gorm:"not null;default:0"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewAuction builds an auction whose ledger is seeded with the opening
// bid, attributed to the owner.
func NewAuction(id string, draft AuctionDraft, ownerEmail string, now time.Time) *Auction {
	return &Auction{
		ID:            id,
		Title:         draft.Title,
		Description:   draft.Description,
		ImageSrc:      draft.ImageSrc,
		CurrentBid:    draft.CurrentBid,
		MinBid:        draft.CurrentBid,
		OwnerEmail:    ownerEmail,
		ValidTillDays: draft.ValidTillDays,
		BidHistory: []Bid{{
			BidderEmail: ownerEmail,
			Amount:      draft.CurrentBid,
			Timestamp:   now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AuctionDraft holds the caller-supplied fields of a new auction.
type AuctionDraft struct {
	Title         string
	Description   string
	ImageSrc      string
	CurrentBid    float64
	ValidTillDays int
}

// IsOwnedBy reports whether identity is the auction's owner. The empty
// identity owns nothing.
func (a *Auction) IsOwnedBy(identity string) bool {
	return identity != "" && a.OwnerEmail == identity
}

// AcceptBid appends bid to the ledger and raises the current bid. Bids
// that do not strictly exceed the current bid leave the auction as is.
func (a *Auction) AcceptBid(bid Bid) error {
	if !(bid.Amount > a.CurrentBid) {
		return &apperrors.BidTooLowError{CurrentBid: a.CurrentBid}
	}
	a.CurrentBid = bid.Amount
	a.BidHistory = append(a.BidHistory, bid)
	return nil
}

// LatestBid returns the most recent ledger entry.
func (a *Auction) LatestBid() (Bid, bool) {
	if len(a.BidHistory) == 0 {
		return Bid{}, false
	}
	return a.BidHistory[len(a.BidHistory)-1], true
}

// History returns a copy of the ledger in chronological order.
func (a *Auction) History() []Bid {
	return append([]Bid(nil), a.BidHistory...)
}

// Clone returns a deep copy of the auction.
func (a *Auction) Clone() *Auction {
	c := *a
	c.BidHistory = a.History()
	return &c
}

// ApplyPatch copies the present fields of p onto the auction. A new
// current bid is recorded in the ledger as an owner entry, so it has to
// beat the current bid like any other bid.
func (a *Auction) ApplyPatch(p AuctionPatch, at time.Time) error {
	if p.CurrentBid.Set {
		if err := a.AcceptBid(Bid{BidderEmail: a.OwnerEmail, Amount: p.CurrentBid.Value, Timestamp: at}); err != nil {
			return err
		}
	}
	if p.Title.Set {
		a.Title = p.Title.Value
	}
	if p.Description.Set {
		a.Description = p.Description.Value
	}
	if p.ImageSrc.Set {
		a.ImageSrc = p.ImageSrc.Value
	}
	if p.ValidTillDays.Set {
		a.ValidTillDays = p.ValidTillDays.Value
	}
	return nil
}
