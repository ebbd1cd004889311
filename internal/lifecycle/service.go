// Package lifecycle governs the mortgage and rental sub-states of object
// records. Every operation is gated by an ownership attestation resolved at
// the authorization gate; the ids arriving here are already verified.
package lifecycle

import (
	"context"
	"errors"

	"lifeledger/internal/audit"
	"lifeledger/internal/domain"
	"lifeledger/internal/ledger"
	"lifeledger/internal/registry"
	dErrors "lifeledger/pkg/domain-errors"
	"lifeledger/pkg/platform/sentinel"
)

// Escrow reports whether an object currently sits in a resale cycle. Objects
// in escrow are frozen: no mortgage or rent transition may touch them.
type Escrow interface {
	ObjectInEscrow(ctx context.Context, objectID uint64) (bool, error)
}

// Service applies mortgage/rent transitions.
type Service struct {
	objects registry.Store
	catalog registry.Catalog
	coins   *ledger.Service
	auditor *audit.Publisher
	escrow  Escrow

	// allowOffLedger permits rent operations on object ids that were never
	// minted: the registry transition is skipped but the event still fires,
	// supporting externally tracked inventory.
	allowOffLedger bool
}

func NewService(objects registry.Store, cat registry.Catalog, coins *ledger.Service, auditor *audit.Publisher, esc Escrow, allowOffLedger bool) *Service {
	return &Service{
		objects:        objects,
		catalog:        cat,
		coins:          coins,
		auditor:        auditor,
		escrow:         esc,
		allowOffLedger: allowOffLedger,
	}
}

func (s *Service) ensureNotInEscrow(ctx context.Context, objectID uint64) error {
	inEscrow, err := s.escrow.ObjectInEscrow(ctx, objectID)
	if err != nil {
		return dErrors.New(dErrors.CodeInternal, "failed to read escrow state")
	}
	if inEscrow {
		return dErrors.New(dErrors.CodeInvalidState, "object is held in escrow")
	}
	return nil
}

// Mortgage marks an object mortgaged and pays out half its catalog price.
// With a payout target the credit is simulated through a bank-deposit event;
// without one a freshly minted coin parcel is returned.
func (s *Service) Mortgage(ctx context.Context, objectID uint64, payoutTarget *uint64) (*domain.CoinParcel, error) {
	object, err := s.objects.GetObject(ctx, objectID)
	if err != nil {
		return nil, s.notFound(err)
	}
	if err := s.ensureNotInEscrow(ctx, objectID); err != nil {
		return nil, err
	}
	entry, err := s.catalog.Get(ctx, object.TypeName)
	if err != nil {
		return nil, err
	}

	if !entry.Mortgageable {
		return nil, dErrors.New(dErrors.CodeForbidden, "this object can't be mortgaged")
	}
	if object.Mortgaged {
		return nil, dErrors.New(dErrors.CodeInvalidState, "object already mortgaged")
	}

	object.Mortgaged = true
	if err := s.objects.PutObject(ctx, object); err != nil {
		return nil, dErrors.New(dErrors.CodeInternal, "failed to update object")
	}

	amount := entry.Price / 2
	if payoutTarget != nil {
		err := s.auditor.Emit(ctx, audit.Event{
			Action:   audit.ActionBankDeposit,
			PersonID: *payoutTarget,
			Amount:   amount,
		})
		if err != nil {
			return nil, err
		}
		return nil, nil
	}

	payout := s.coins.Mint(amount)
	return &payout, nil
}

// AllowRent toggles rent availability and sets the daily price. Price changes
// are forbidden while the object is occupied; a nil price always clears the
// stored price, occupied or not.
func (s *Service) AllowRent(ctx context.Context, objectID uint64, allow bool, dailyPrice *int64, notifyAccount *uint64) error {
	object, err := s.objects.GetObject(ctx, objectID)
	if err != nil {
		return s.notFound(err)
	}
	if err := s.ensureNotInEscrow(ctx, objectID); err != nil {
		return err
	}
	entry, err := s.catalog.Get(ctx, object.TypeName)
	if err != nil {
		return err
	}

	if !entry.Rentable {
		return dErrors.New(dErrors.CodeForbidden, "this object can't be rented")
	}
	if !object.Vacant() && dailyPrice != nil {
		return dErrors.New(dErrors.CodeInvalidState, "can't update price on already rented objects")
	}
	if dailyPrice != nil && *dailyPrice < 0 {
		return dErrors.New(dErrors.CodeBadRequest, "daily price can't be negative")
	}

	object.RentAllowed = allow
	if dailyPrice != nil {
		object.DailyRentPrice = *dailyPrice
	} else {
		object.DailyRentPrice = 0
	}
	if err := s.objects.PutObject(ctx, object); err != nil {
		return dErrors.New(dErrors.CodeInternal, "failed to update object")
	}

	return s.auditor.Emit(ctx, audit.Event{
		Action:        audit.ActionRentAllowed,
		ObjectID:      objectID,
		Allow:         &allow,
		DailyPrice:    dailyPrice,
		NotifyAccount: notifyAccount,
	})
}

// Rent assigns the caller as the object's occupant. When the object id was
// never minted and off-ledger referencing is enabled, the registry transition
// is skipped but the event still fires.
func (s *Service) Rent(ctx context.Context, personID uint64, typeName string, objectID uint64) error {
	entry, err := s.catalog.Get(ctx, typeName)
	if err != nil {
		return err
	}
	if !entry.Rentable {
		return dErrors.New(dErrors.CodeForbidden, "this object can't be rented")
	}

	object, err := s.objects.GetObject(ctx, objectID)
	switch {
	case err == nil:
		if err := s.ensureNotInEscrow(ctx, objectID); err != nil {
			return err
		}
		if object.TypeName != typeName {
			return dErrors.New(dErrors.CodeBadRequest, "wrong object type name")
		}
		if !object.RentAllowed {
			return dErrors.New(dErrors.CodeInvalidState, "object not for rent")
		}
		if !object.Vacant() {
			return dErrors.New(dErrors.CodeInvalidState, "object already rented")
		}
		object.RentOccupantID = personID
		if err := s.objects.PutObject(ctx, object); err != nil {
			return dErrors.New(dErrors.CodeInternal, "failed to update object")
		}
	case errors.Is(err, sentinel.ErrNotFound):
		if !s.allowOffLedger {
			return dErrors.New(dErrors.CodeNotFound, "object not found")
		}
	default:
		return dErrors.New(dErrors.CodeInternal, "failed to load object")
	}

	return s.auditor.Emit(ctx, audit.Event{
		Action:   audit.ActionRented,
		ObjectID: objectID,
		PersonID: personID,
	})
}

// TerminateRent clears the occupant; only the current occupant may do so.
func (s *Service) TerminateRent(ctx context.Context, personID uint64, objectID uint64) error {
	object, err := s.objects.GetObject(ctx, objectID)
	switch {
	case err == nil:
		if object.RentOccupantID != personID {
			return dErrors.New(dErrors.CodeForbidden, "object not rented to you")
		}
		object.RentOccupantID = 0
		if err := s.objects.PutObject(ctx, object); err != nil {
			return dErrors.New(dErrors.CodeInternal, "failed to update object")
		}
	case errors.Is(err, sentinel.ErrNotFound):
		if !s.allowOffLedger {
			return dErrors.New(dErrors.CodeNotFound, "object not found")
		}
	default:
		return dErrors.New(dErrors.CodeInternal, "failed to load object")
	}

	return s.auditor.Emit(ctx, audit.Event{
		Action:   audit.ActionRentTerminated,
		ObjectID: objectID,
		PersonID: personID,
	})
}

func (s *Service) notFound(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "object not found")
	}
	return dErrors.New(dErrors.CodeInternal, "failed to load object")
}
