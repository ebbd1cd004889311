// Package catalog manages the administrator-defined object-type templates
// that object instances are minted against. The catalog is flat: entries are
// addressed by name only, with an optional free-form category label.
package catalog

import (
	"strings"

	dErrors "lifeledger/pkg/domain-errors"
)

// PriceBand is a coarse market segment label carried on each entry.
type PriceBand string

const (
	PriceBandCheap  PriceBand = "cheap"
	PriceBandNormal PriceBand = "normal"
	PriceBandLuxury PriceBand = "luxury"
)

// ParsePriceBand constructs a PriceBand from external input. Unknown bands
// are a hard failure: catalog entries are administrator configuration and a
// typo must not survive into the registry.
func ParsePriceBand(raw string) (PriceBand, error) {
	switch PriceBand(strings.ToLower(strings.TrimSpace(raw))) {
	case PriceBandCheap:
		return PriceBandCheap, nil
	case PriceBandNormal:
		return PriceBandNormal, nil
	case PriceBandLuxury:
		return PriceBandLuxury, nil
	default:
		return "", dErrors.Newf(dErrors.CodeBadRequest, "wrong price band %q", raw)
	}
}

// Entry is one object-type template. Administrator-mutable, never
// transferable.
type Entry struct {
	Name         string
	Category     string
	Purchasable  bool
	Mortgageable bool
	Rentable     bool
	Price        int64
	PriceBand    PriceBand
	ImageRef     string
}
