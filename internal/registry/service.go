package registry

import (
	"context"
	"errors"
	"strings"
	"time"

	"lifeledger/internal/audit"
	"lifeledger/internal/catalog"
	dErrors "lifeledger/pkg/domain-errors"
	"lifeledger/pkg/platform/sentinel"
)

// Catalog is the slice of the catalog service the registry needs.
type Catalog interface {
	Get(ctx context.Context, name string) (*catalog.Entry, error)
}

// EscrowStatus reports whether an object is held by the resale engine. While
// it is, even operator overrides must not touch its mortgage or rent state.
type EscrowStatus interface {
	ObjectInEscrow(ctx context.Context, objectID uint64) (bool, error)
}

// Service mints records and applies the gated field updates. Callers pass
// record ids that the authorization gate derived from verified attestations;
// the service never sees raw credentials.
type Service struct {
	store    Store
	catalog  Catalog
	auditor  *audit.Publisher
	escrow   EscrowStatus
	now      func() time.Time
	hatch    time.Duration
	eggImage string
}

func NewService(store Store, cat Catalog, auditor *audit.Publisher, esc EscrowStatus, hatchDelay time.Duration, incubationImageRef string) *Service {
	return &Service{
		store:    store,
		catalog:  cat,
		auditor:  auditor,
		escrow:   esc,
		now:      time.Now,
		hatch:    hatchDelay,
		eggImage: incubationImageRef,
	}
}

// MintPerson assigns the next person id and default field values. Birth date
// is mint time plus the configured hatch delay.
func (s *Service) MintPerson(ctx context.Context, fatherID, motherID uint64, holderAccount string) (*Person, error) {
	birthDate := s.now().Add(s.hatch)
	person := &Person{
		BirthDate:     birthDate,
		FatherID:      fatherID,
		MotherID:      motherID,
		Gender:        DefaultGender,
		Occupation:    DefaultOccupation,
		MoodStatus:    DefaultMoodStatus,
		HealthStatus:  DefaultHealthStatus,
		Schooling:     DefaultSchooling,
		ImageRef:      s.eggImage,
		HolderAccount: holderAccount,
	}
	if err := s.store.CreatePerson(ctx, person); err != nil {
		return nil, dErrors.New(dErrors.CodeInternal, "failed to mint person")
	}

	if err := s.auditor.Emit(ctx, audit.Event{
		Action:        audit.ActionPersonMinted,
		PersonID:      person.ID,
		BirthDate:     &birthDate,
		HolderAccount: holderAccount,
	}); err != nil {
		return nil, err
	}
	return person, nil
}

// MintObject mints one object instance against a catalog entry, copying the
// entry's image and starting vacant with rent disallowed.
func (s *Service) MintObject(ctx context.Context, typeName string, mortgaged bool, holderAccount string) (*Object, error) {
	objects, err := s.MintObjectBatch(ctx, typeName, 1, mortgaged, holderAccount)
	if err != nil {
		return nil, err
	}
	return objects[0], nil
}

// MintObjectBatch mints count instances of one object type with sequential
// ids and emits a single event carrying all of them.
func (s *Service) MintObjectBatch(ctx context.Context, typeName string, count int, mortgaged bool, holderAccount string) ([]*Object, error) {
	if count <= 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "can't mint zero objects")
	}
	entry, err := s.catalog.Get(ctx, typeName)
	if err != nil {
		return nil, err
	}

	objects := make([]*Object, 0, count)
	ids := make([]uint64, 0, count)
	for i := 0; i < count; i++ {
		object := &Object{
			TypeName:      typeName,
			Mortgaged:     mortgaged,
			ImageRef:      entry.ImageRef,
			HolderAccount: holderAccount,
		}
		if err := s.store.CreateObject(ctx, object); err != nil {
			return nil, dErrors.New(dErrors.CodeInternal, "failed to mint object")
		}
		objects = append(objects, object)
		ids = append(ids, object.ID)
	}

	if err := s.auditor.Emit(ctx, audit.Event{
		Action:        audit.ActionObjectsMinted,
		Name:          typeName,
		ObjectIDs:     ids,
		Mortgaged:     mortgaged,
		HolderAccount: holderAccount,
	}); err != nil {
		return nil, err
	}
	return objects, nil
}

// ValidateName enforces the person name rule: 1-255 ASCII alphanumeric or
// space characters after trimming.
func ValidateName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) == 0 || len(trimmed) > 255 {
		return "", dErrors.New(dErrors.CodeBadRequest, "invalid name size")
	}
	for i := 0; i < len(trimmed); i++ {
		c := trimmed[i]
		isAlnum := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
		if !isAlnum && c != ' ' {
			return "", dErrors.New(dErrors.CodeBadRequest, "illegal character in name")
		}
	}
	return trimmed, nil
}

// ClaimName sets a person's name exactly once. A second call always fails.
func (s *Service) ClaimName(ctx context.Context, personID uint64, proposedName string) error {
	person, err := s.store.GetPerson(ctx, personID)
	if err != nil {
		return s.translate(err, "person")
	}
	if person.Name != "" {
		return dErrors.New(dErrors.CodeConflict, "name already assigned")
	}

	name, err := ValidateName(proposedName)
	if err != nil {
		return err
	}

	person.Name = name
	if err := s.store.PutPerson(ctx, person); err != nil {
		return dErrors.New(dErrors.CodeInternal, "failed to store name")
	}

	return s.auditor.Emit(ctx, audit.Event{
		Action:   audit.ActionNameClaimed,
		PersonID: personID,
		Name:     name,
	})
}

// PersonFieldUpdate is the operator override for person records. Each
// component is applied independently; absence means leave unchanged. This is
// an administrative override distinct from ClaimName: no validation beyond
// recognizing the field names.
type PersonFieldUpdate struct {
	Fields    map[string]string
	PartnerID *uint64
	ImageRef  *string
}

func (s *Service) UpdatePersonFields(ctx context.Context, personID uint64, update PersonFieldUpdate) error {
	person, err := s.store.GetPerson(ctx, personID)
	if err != nil {
		return s.translate(err, "person")
	}

	for field, value := range update.Fields {
		switch field {
		case "name":
			person.Name = value
		case "gender":
			person.Gender = value
		case "occupation":
			person.Occupation = value
		case "mood_status":
			person.MoodStatus = value
		case "health_status":
			person.HealthStatus = value
		case "schooling":
			person.Schooling = value
		default:
			return dErrors.Newf(dErrors.CodeBadRequest, "unknown person field %q", field)
		}
	}
	if update.PartnerID != nil {
		person.PartnerID = *update.PartnerID
	}
	if update.ImageRef != nil {
		person.ImageRef = *update.ImageRef
	}

	if err := s.store.PutPerson(ctx, person); err != nil {
		return dErrors.New(dErrors.CodeInternal, "failed to update person")
	}
	return nil
}

// UpdateObjectFields is the operator override for object records. Objects in
// escrow are frozen even against operator overrides.
func (s *Service) UpdateObjectFields(ctx context.Context, objectID uint64, mortgaged *bool, rentOccupantID *uint64) error {
	object, err := s.store.GetObject(ctx, objectID)
	if err != nil {
		return s.translate(err, "object")
	}
	inEscrow, err := s.escrow.ObjectInEscrow(ctx, objectID)
	if err != nil {
		return dErrors.New(dErrors.CodeInternal, "failed to read escrow state")
	}
	if inEscrow {
		return dErrors.New(dErrors.CodeInvalidState, "object is held in escrow")
	}

	if mortgaged != nil {
		object.Mortgaged = *mortgaged
	}
	if rentOccupantID != nil {
		object.RentOccupantID = *rentOccupantID
	}

	if err := s.store.PutObject(ctx, object); err != nil {
		return dErrors.New(dErrors.CodeInternal, "failed to update object")
	}
	return nil
}

// GetPerson loads one person record.
func (s *Service) GetPerson(ctx context.Context, id uint64) (*Person, error) {
	person, err := s.store.GetPerson(ctx, id)
	if err != nil {
		return nil, s.translate(err, "person")
	}
	return person, nil
}

// GetObject loads one object record.
func (s *Service) GetObject(ctx context.Context, id uint64) (*Object, error) {
	object, err := s.store.GetObject(ctx, id)
	if err != nil {
		return nil, s.translate(err, "object")
	}
	return object, nil
}

func (s *Service) translate(err error, kind string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Newf(dErrors.CodeNotFound, "%s not found", kind)
	}
	return dErrors.Newf(dErrors.CodeInternal, "failed to load %s", kind)
}
