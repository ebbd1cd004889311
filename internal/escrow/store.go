package escrow

import (
	"context"

	"lifeledger/internal/domain"
)

// Store persists receipts and per-asset listing state. CreateReceipt assigns
// the next id from the receipt sequence, which is shared across asset kinds
// and independent of every asset id space. Listing state defaults to
// StateNotListed for assets that were never listed.
type Store interface {
	CreateReceipt(ctx context.Context, receipt *Receipt) error
	GetReceipt(ctx context.Context, kind domain.RegistryKind, id uint64) (*Receipt, error)
	DeleteReceipt(ctx context.Context, kind domain.RegistryKind, id uint64) error
	LatestReceiptByAsset(ctx context.Context, kind domain.RegistryKind, assetID uint64) (*Receipt, error)

	ListingState(ctx context.Context, kind domain.RegistryKind, assetID uint64) (ListingState, error)
	SetListingState(ctx context.Context, kind domain.RegistryKind, assetID uint64, state ListingState) error
}
