// Package domain holds the value types shared across the economy engine:
// registry kinds, value parcels and the attested record reference produced by
// claim verification.
package domain

import dErrors "lifeledger/pkg/domain-errors"

// RegistryKind names one of the unique-record registries. Receipts live in
// their own registry so an escrow claim can never be confused with the asset
// it escrows.
type RegistryKind string

const (
	KindPerson        RegistryKind = "person"
	KindObject        RegistryKind = "object"
	KindObjectReceipt RegistryKind = "object_receipt"
	KindPersonReceipt RegistryKind = "person_receipt"
)

// CoinParcel is a fungible value parcel. The engine keeps no per-holder
// balances; callers carry parcels and surrender them to operations. A parcel
// presented with the wrong denomination is rejected before any state changes.
type CoinParcel struct {
	Denom  string `json:"denom"`
	Amount int64  `json:"amount"`
}

// Take splits amount off the parcel, returning the remainder as change.
func (p CoinParcel) Take(amount int64) (taken, change CoinParcel, err error) {
	if amount < 0 {
		return CoinParcel{}, CoinParcel{}, dErrors.New(dErrors.CodeBadRequest, "negative amount")
	}
	if p.Amount < amount {
		return CoinParcel{}, CoinParcel{}, dErrors.New(dErrors.CodeInsufficientFunds, "insufficient amount")
	}
	return CoinParcel{Denom: p.Denom, Amount: amount},
		CoinParcel{Denom: p.Denom, Amount: p.Amount - amount},
		nil
}

// AssetParcel references a unique record whose custody is being moved.
type AssetParcel struct {
	Kind RegistryKind `json:"kind"`
	ID   uint64       `json:"id"`
}
