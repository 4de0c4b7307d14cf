package models

import (
	"bytes"
	"encoding/json"
)

// Optional marks whether a field was present in a patch. A JSON null
// or a missing key leaves Set false, so "", 0 and false remain valid
// updates.
type Optional[T any] struct {
	Value T
	Set   bool
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Optional[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// AuctionPatch lists owner-mutable auction fields for a merge-patch
// update. Only fields with Set == true are applied.
type AuctionPatch struct {
	Title         Optional[string]  `json:"title"`
	Description   Optional[string]  `json:"description"`
	ImageSrc      Optional[string]  `json:"image_src"`
	CurrentBid    Optional[float64] `json:"current_bid"`
	ValidTillDays Optional[int]     `json:"valid_till_days"`
}

// IsEmpty reports whether the patch changes nothing.
func (p AuctionPatch) IsEmpty() bool {
	return !p.Title.Set && !p.Description.Set && !p.ImageSrc.Set && !p.CurrentBid.Set && !p.ValidTillDays.Set
}
