// Package registry mints and holds the authoritative data for the two
// unique-record kinds: people and objects. Records are never destroyed.
package registry

import "time"

// Default field values for a freshly minted person.
const (
	DefaultGender       = "unknown"
	DefaultOccupation   = "unemployed"
	DefaultMoodStatus   = "normal"
	DefaultHealthStatus = "healthy"
	DefaultSchooling    = "none"
)

// Person is one unique person record. Lineage pointers are immutable after
// mint; 0 means unknown. Name starts empty and may be claimed exactly once.
type Person struct {
	ID           uint64
	Name         string
	BirthDate    time.Time
	FatherID     uint64
	MotherID     uint64
	Gender       string
	Occupation   string
	PartnerID    uint64
	MoodStatus   string
	HealthStatus string
	Schooling    string
	ImageRef     string
	// HolderAccount names the external account the record was issued to.
	HolderAccount string
	// CustodyGeneration increments whenever custody of the record moves,
	// such as when it enters escrow. Ownership attestations carry the
	// generation they were minted against; older ones stop verifying.
	CustodyGeneration uint64
}

// Object is one unique object record minted against a catalog entry.
type Object struct {
	ID       uint64
	TypeName string

	Mortgaged bool

	RentAllowed    bool
	DailyRentPrice int64
	// RentOccupantID is the renting person id; 0 means vacant.
	RentOccupantID uint64

	ImageRef      string
	HolderAccount string
	// CustodyGeneration mirrors the person field: bumped on custody
	// transfer, checked against attestation claims.
	CustodyGeneration uint64
}

// Vacant reports whether the object currently has no rent occupant.
func (o *Object) Vacant() bool {
	return o.RentOccupantID == 0
}
