// Package escrow implements the two-phase resale protocol for people and
// objects. Listing and settlement are decoupled in time: a purchase burns the
// buyer's payment, and the seller's payout is minted fresh when the receipt is
// redeemed. Listing state is tracked per asset id explicitly rather than by
// scanning holding-vault membership.
package escrow

import "lifeledger/internal/domain"

// ListingState tracks where an asset stands inside one resale cycle.
type ListingState string

const (
	StateNotListed ListingState = "not_listed"
	StateListed    ListingState = "listed"
	StateSold      ListingState = "sold"
)

// Receipt is the seller's claim check for one resale cycle. Its id comes from
// a dedicated sequence so it never collides with asset ids and the same asset
// can be re-listed after a completed cycle.
type Receipt struct {
	ID       uint64              `json:"id"`
	Kind     domain.RegistryKind `json:"kind"`
	AssetID  uint64              `json:"asset_id"`
	Price    int64               `json:"price"`
	ImageRef string              `json:"image_ref"`
}

// CloseResult is what redeeming a receipt yields: the asset itself when the
// listing went unsold, or a freshly minted payout when a buyer took it. When
// the asset comes back, the engine attaches a fresh ownership claim over it.
type CloseResult struct {
	Asset      *domain.AssetParcel `json:"asset,omitempty"`
	AssetClaim string              `json:"asset_claim,omitempty"`
	Payout     *domain.CoinParcel  `json:"payout,omitempty"`
}
