package escrow

import (
	"context"
	"errors"

	"lifeledger/internal/audit"
	"lifeledger/internal/domain"
	"lifeledger/internal/ledger"
	"lifeledger/internal/platform/metrics"
	"lifeledger/internal/registry"
	dErrors "lifeledger/pkg/domain-errors"
	"lifeledger/pkg/platform/sentinel"
)

// Service runs the resale protocol for both asset kinds. The two cycles share
// identical shape; only the listing preconditions and event names differ.
type Service struct {
	store   Store
	records registry.Store
	coins   *ledger.Service
	auditor *audit.Publisher
	metrics *metrics.Metrics
}

func NewService(store Store, records registry.Store, coins *ledger.Service, auditor *audit.Publisher, m *metrics.Metrics) *Service {
	return &Service{
		store:   store,
		records: records,
		coins:   coins,
		auditor: auditor,
		metrics: m,
	}
}

// ListObject escrows an object for resale and mints the seller's receipt. A
// rent-allowed or occupied object can't be listed.
func (s *Service) ListObject(ctx context.Context, objectID uint64, price int64) (*Receipt, error) {
	if price < 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "price can't be negative")
	}
	object, err := s.records.GetObject(ctx, objectID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "object not found")
		}
		return nil, dErrors.New(dErrors.CodeInternal, "failed to load object")
	}
	if object.RentAllowed || !object.Vacant() {
		return nil, dErrors.New(dErrors.CodeInvalidState, "can't sell a rented object")
	}
	receipt, err := s.list(ctx, domain.KindObject, objectID, price, object.ImageRef)
	if err != nil {
		return nil, err
	}
	// Custody moves to escrow; attestations minted for the previous holder
	// stop verifying from here on.
	object.CustodyGeneration++
	if err := s.records.PutObject(ctx, object); err != nil {
		return nil, dErrors.New(dErrors.CodeInternal, "failed to update object")
	}
	return receipt, nil
}

// ListPerson escrows a person record for resale.
func (s *Service) ListPerson(ctx context.Context, personID uint64, price int64) (*Receipt, error) {
	if price < 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "price can't be negative")
	}
	person, err := s.records.GetPerson(ctx, personID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "person not found")
		}
		return nil, dErrors.New(dErrors.CodeInternal, "failed to load person")
	}
	receipt, err := s.list(ctx, domain.KindPerson, personID, price, person.ImageRef)
	if err != nil {
		return nil, err
	}
	person.CustodyGeneration++
	if err := s.records.PutPerson(ctx, person); err != nil {
		return nil, dErrors.New(dErrors.CodeInternal, "failed to update person")
	}
	return receipt, nil
}

// ObjectInEscrow reports whether an object sits in an active resale cycle,
// either listed or sold and awaiting settlement. Mortgage and rent
// transitions consult this before touching the record.
func (s *Service) ObjectInEscrow(ctx context.Context, objectID uint64) (bool, error) {
	state, err := s.store.ListingState(ctx, domain.KindObject, objectID)
	if err != nil {
		return false, err
	}
	return state != StateNotListed, nil
}

func (s *Service) list(ctx context.Context, kind domain.RegistryKind, assetID uint64, price int64, imageRef string) (*Receipt, error) {
	state, err := s.store.ListingState(ctx, kind, assetID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeInternal, "failed to read listing state")
	}
	if state != StateNotListed {
		return nil, dErrors.New(dErrors.CodeInvalidState, "asset already listed")
	}

	receipt := &Receipt{Kind: kind, AssetID: assetID, Price: price, ImageRef: imageRef}
	if err := s.store.CreateReceipt(ctx, receipt); err != nil {
		return nil, dErrors.New(dErrors.CodeInternal, "failed to mint receipt")
	}
	if err := s.store.SetListingState(ctx, kind, assetID, StateListed); err != nil {
		return nil, dErrors.New(dErrors.CodeInternal, "failed to update listing state")
	}

	event := audit.Event{Action: audit.ActionObjectListed, ObjectID: assetID}
	if kind == domain.KindPerson {
		event = audit.Event{Action: audit.ActionPersonListed, PersonID: assetID}
	}
	event.ReceiptID = receipt.ID
	event.Amount = price
	if err := s.auditor.Emit(ctx, event); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.EscrowListings.WithLabelValues(string(kind)).Inc()
	}
	return receipt, nil
}

// BuyUsed pays the current listed price for an asset and takes it out of
// escrow immediately. The payment is destroyed; the seller's receipt stays
// untouched until settlement. The price comes from the latest receipt issued
// for the asset id, not from any token the buyer presents.
func (s *Service) BuyUsed(ctx context.Context, kind domain.RegistryKind, assetID uint64, payment domain.CoinParcel) (*domain.AssetParcel, *domain.CoinParcel, error) {
	state, err := s.store.ListingState(ctx, kind, assetID)
	if err != nil {
		return nil, nil, dErrors.New(dErrors.CodeInternal, "failed to read listing state")
	}
	if state != StateListed {
		return nil, nil, dErrors.New(dErrors.CodeInvalidState, "asset not for sale")
	}

	receipt, err := s.store.LatestReceiptByAsset(ctx, kind, assetID)
	if err != nil {
		return nil, nil, dErrors.New(dErrors.CodeInternal, "no receipt for listed asset")
	}

	change, err := s.coins.BurnExact(payment, receipt.Price)
	if err != nil {
		return nil, nil, err
	}

	if err := s.store.SetListingState(ctx, kind, assetID, StateSold); err != nil {
		return nil, nil, dErrors.New(dErrors.CodeInternal, "failed to update listing state")
	}

	event := audit.Event{Action: audit.ActionObjectPurchased, ObjectID: assetID}
	if kind == domain.KindPerson {
		event = audit.Event{Action: audit.ActionPersonPurchased, PersonID: assetID}
	}
	event.Amount = receipt.Price
	if err := s.auditor.Emit(ctx, event); err != nil {
		return nil, nil, err
	}

	if s.metrics != nil {
		s.metrics.EscrowPurchases.WithLabelValues(string(kind)).Inc()
	}
	return &domain.AssetParcel{Kind: kind, ID: assetID}, &change, nil
}

// Close redeems and burns a receipt. If the listing went unsold the asset
// comes back; if a buyer already took it, the recorded price is minted fresh
// as the payout. Either way the asset ends the cycle not listed.
func (s *Service) Close(ctx context.Context, kind domain.RegistryKind, receiptID uint64) (*CloseResult, error) {
	receipt, err := s.store.GetReceipt(ctx, kind, receiptID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "receipt not found")
		}
		return nil, dErrors.New(dErrors.CodeInternal, "failed to load receipt")
	}
	if err := s.store.DeleteReceipt(ctx, kind, receiptID); err != nil {
		return nil, dErrors.New(dErrors.CodeInternal, "failed to burn receipt")
	}

	state, err := s.store.ListingState(ctx, kind, receipt.AssetID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeInternal, "failed to read listing state")
	}

	var result CloseResult
	var outcome string
	switch state {
	case StateListed:
		result.Asset = &domain.AssetParcel{Kind: kind, ID: receipt.AssetID}
		outcome = audit.OutcomeAssetReturned
	case StateSold:
		payout := s.coins.Mint(receipt.Price)
		result.Payout = &payout
		outcome = audit.OutcomePricePaidOut
	default:
		return nil, dErrors.New(dErrors.CodeInternal, "receipt references an unlisted asset")
	}

	if err := s.store.SetListingState(ctx, kind, receipt.AssetID, StateNotListed); err != nil {
		return nil, dErrors.New(dErrors.CodeInternal, "failed to update listing state")
	}

	event := audit.Event{Action: audit.ActionObjectClosed, ObjectID: receipt.AssetID}
	if kind == domain.KindPerson {
		event = audit.Event{Action: audit.ActionPersonClosed, PersonID: receipt.AssetID}
	}
	event.ReceiptID = receiptID
	event.Amount = receipt.Price
	event.Outcome = outcome
	if err := s.auditor.Emit(ctx, event); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.EscrowCloses.WithLabelValues(string(kind), outcome).Inc()
	}
	return &result, nil
}
