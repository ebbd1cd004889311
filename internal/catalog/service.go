package catalog

import (
	"context"
	"errors"

	dErrors "lifeledger/pkg/domain-errors"
	"lifeledger/pkg/platform/sentinel"
)

// Service exposes the owner-gated catalog operations. Authorization happens
// at the transport layer; this service only enforces entry invariants.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// AddParams carries everything needed to register one object type.
type AddParams struct {
	Name         string
	Category     string
	Price        int64
	PriceBand    string
	ImageRef     string
	Purchasable  bool
	Mortgageable bool
	Rentable     bool
}

func (s *Service) Add(ctx context.Context, params AddParams) (*Entry, error) {
	if params.Name == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "object type name must not be empty")
	}
	if params.Price < 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "price can't be negative")
	}
	band, err := ParsePriceBand(params.PriceBand)
	if err != nil {
		return nil, err
	}

	entry := &Entry{
		Name:         params.Name,
		Category:     params.Category,
		Purchasable:  params.Purchasable,
		Mortgageable: params.Mortgageable,
		Rentable:     params.Rentable,
		Price:        params.Price,
		PriceBand:    band,
		ImageRef:     params.ImageRef,
	}
	if err := s.store.Create(ctx, entry); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "object type already exists")
		}
		return nil, dErrors.New(dErrors.CodeInternal, "failed to create object type")
	}
	return entry, nil
}

// UpdateParams mirrors the mutable subset of an entry. The price band and
// image are fixed at registration, matching the admin surface.
type UpdateParams struct {
	Name         string
	Price        int64
	Purchasable  bool
	Mortgageable bool
	Rentable     bool
}

func (s *Service) Update(ctx context.Context, params UpdateParams) (*Entry, error) {
	if params.Price < 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "price can't be negative")
	}
	entry, err := s.store.Get(ctx, params.Name)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "object type not found")
		}
		return nil, dErrors.New(dErrors.CodeInternal, "failed to load object type")
	}

	entry.Price = params.Price
	entry.Purchasable = params.Purchasable
	entry.Mortgageable = params.Mortgageable
	entry.Rentable = params.Rentable

	if err := s.store.Update(ctx, entry); err != nil {
		return nil, dErrors.New(dErrors.CodeInternal, "failed to update object type")
	}
	return entry, nil
}

// Get loads one entry, translating absence into a domain error.
func (s *Service) Get(ctx context.Context, name string) (*Entry, error) {
	entry, err := s.store.Get(ctx, name)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "object type not found")
		}
		return nil, dErrors.New(dErrors.CodeInternal, "failed to load object type")
	}
	return entry, nil
}

func (s *Service) List(ctx context.Context) ([]*Entry, error) {
	return s.store.List(ctx)
}
