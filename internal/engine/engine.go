// Package engine is the single entry point for every public economy
// operation. It verifies attestations, serializes all operations under one
// mutex and orders each operation so every validation step precedes the first
// mutation, keeping failures side-effect-free.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"lifeledger/internal/attestation"
	"lifeledger/internal/audit"
	"lifeledger/internal/catalog"
	"lifeledger/internal/choice"
	"lifeledger/internal/domain"
	"lifeledger/internal/escrow"
	"lifeledger/internal/ledger"
	"lifeledger/internal/lifecycle"
	"lifeledger/internal/platform/metrics"
	"lifeledger/internal/registry"
	dErrors "lifeledger/pkg/domain-errors"
)

// Deps bundles everything the engine composes.
type Deps struct {
	Attestations *attestation.Service
	Catalog      *catalog.Service
	Registry     *registry.Service
	Ledger       *ledger.Service
	Lifecycle    *lifecycle.Service
	Escrow       *escrow.Service
	Choices      *choice.Service
	Auditor      *audit.Publisher
	Metrics      *metrics.Metrics
	Logger       *slog.Logger

	// EggsOnSale caps the primary person sale; EggPrice is its settlement
	// price. Both are validated at config time.
	EggsOnSale int64
	EggPrice   int64
}

type Engine struct {
	mu sync.Mutex

	attest  *attestation.Service
	catalog *catalog.Service
	records *registry.Service
	coins   *ledger.Service
	objects *lifecycle.Service
	escrow  *escrow.Service
	choices *choice.Service
	auditor *audit.Publisher
	metrics *metrics.Metrics
	logger  *slog.Logger

	eggsRemaining int64
	eggPrice      int64
}

func New(deps Deps) *Engine {
	return &Engine{
		attest:        deps.Attestations,
		catalog:       deps.Catalog,
		records:       deps.Registry,
		coins:         deps.Ledger,
		objects:       deps.Lifecycle,
		escrow:        deps.Escrow,
		choices:       deps.Choices,
		auditor:       deps.Auditor,
		metrics:       deps.Metrics,
		logger:        deps.Logger,
		eggsRemaining: deps.EggsOnSale,
		eggPrice:      deps.EggPrice,
	}
}

// ---- catalog administration (owner tier) ----

func (e *Engine) AddObjectType(ctx context.Context, params catalog.AddParams) (*catalog.Entry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.catalog.Add(ctx, params)
}

func (e *Engine) UpdateObjectType(ctx context.Context, params catalog.UpdateParams) (*catalog.Entry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.catalog.Update(ctx, params)
}

func (e *Engine) GetObjectType(ctx context.Context, name string) (*catalog.Entry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.catalog.Get(ctx, name)
}

func (e *Engine) ListObjectTypes(ctx context.Context) ([]*catalog.Entry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.catalog.List(ctx)
}

// ---- issuance (operator tier) ----

// MintPerson mints a person record into a named holder account.
func (e *Engine) MintPerson(ctx context.Context, fatherID, motherID uint64, holderAccount string) (*registry.Person, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	person, err := e.records.MintPerson(ctx, fatherID, motherID, holderAccount)
	if err != nil {
		return nil, err
	}
	if e.metrics != nil {
		e.metrics.PeopleMinted.Inc()
	}
	return person, nil
}

// MintObject mints one object of a catalog type into a holder account.
func (e *Engine) MintObject(ctx context.Context, typeName string, mortgaged bool, holderAccount string) (*registry.Object, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	object, err := e.records.MintObject(ctx, typeName, mortgaged, holderAccount)
	if err != nil {
		return nil, err
	}
	if e.metrics != nil {
		e.metrics.ObjectsMinted.Inc()
	}
	return object, nil
}

// ---- primary sales (public) ----

// BuyEgg sells one unhatched person record for the settlement asset. The
// price is retained in the settlement pool and the cap decrements until the
// sale ends.
func (e *Engine) BuyEgg(ctx context.Context, payment domain.CoinParcel) (*registry.Person, *domain.CoinParcel, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.eggsRemaining <= 0 {
		return nil, nil, dErrors.New(dErrors.CodeInvalidState, "egg sale has ended")
	}
	change, err := e.coins.RetainSettlement(ctx, payment, e.eggPrice)
	if err != nil {
		return nil, nil, err
	}

	person, err := e.records.MintPerson(ctx, 0, 0, "")
	if err != nil {
		return nil, nil, err
	}
	e.eggsRemaining--
	if e.metrics != nil {
		e.metrics.PeopleMinted.Inc()
	}
	e.logger.InfoContext(ctx, "egg sold", "person_id", person.ID, "remaining", e.eggsRemaining)
	return person, &change, nil
}

// EggsRemaining reports how many eggs the primary sale still offers.
func (e *Engine) EggsRemaining() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.eggsRemaining
}

// BuyObjects sells count fresh instances of a purchasable catalog type for
// coins. A mortgaged purchase of a mortgageable type costs half the total
// price, truncated. The total is burned from the payment; change comes back
// with the minted objects.
func (e *Engine) BuyObjects(ctx context.Context, typeName string, count int, mortgaged bool, payment domain.CoinParcel) ([]*registry.Object, *domain.CoinParcel, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if count <= 0 {
		return nil, nil, dErrors.New(dErrors.CodeBadRequest, "can't buy zero objects")
	}
	entry, err := e.catalog.Get(ctx, typeName)
	if err != nil {
		return nil, nil, err
	}
	if !entry.Purchasable {
		return nil, nil, dErrors.New(dErrors.CodeForbidden, "this object can't be purchased")
	}
	if mortgaged && !entry.Mortgageable {
		return nil, nil, dErrors.New(dErrors.CodeForbidden, "this object can't be mortgaged")
	}
	// Halve the batch total, not the unit price; truncation happens once.
	total := entry.Price * int64(count)
	if mortgaged {
		total /= 2
	}

	change, err := e.coins.BurnExact(payment, total)
	if err != nil {
		return nil, nil, err
	}

	objects, err := e.records.MintObjectBatch(ctx, typeName, count, mortgaged, "")
	if err != nil {
		return nil, nil, err
	}
	if e.metrics != nil {
		e.metrics.ObjectsMinted.Add(float64(count))
	}
	return objects, &change, nil
}

// ---- currency (public buy, owner admin) ----

func (e *Engine) BuyCoins(ctx context.Context, settlement domain.CoinParcel) (domain.CoinParcel, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.coins.BuyCoins(ctx, settlement)
}

func (e *Engine) SetCoinRate(ctx context.Context, rate int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.coins.SetRate(ctx, rate); err != nil {
		return err
	}
	e.logger.InfoContext(ctx, "coin rate changed", "rate", rate)
	return nil
}

func (e *Engine) WithdrawPool(ctx context.Context) (domain.CoinParcel, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.coins.WithdrawPool(ctx)
}

// ---- person operations (attested) ----

// verifiedPerson resolves a person attestation to the live record. Claims
// minted before the record last changed custody are rejected.
func (e *Engine) verifiedPerson(ctx context.Context, token string) (*registry.Person, error) {
	id, generation, err := e.attest.VerifyOwnership(token, domain.KindPerson)
	if err != nil {
		return nil, err
	}
	person, err := e.records.GetPerson(ctx, id)
	if err != nil {
		return nil, err
	}
	if person.CustodyGeneration != generation {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "attestation predates a custody transfer")
	}
	return person, nil
}

// verifiedObject mirrors verifiedPerson for the object registry.
func (e *Engine) verifiedObject(ctx context.Context, token string) (*registry.Object, error) {
	id, generation, err := e.attest.VerifyOwnership(token, domain.KindObject)
	if err != nil {
		return nil, err
	}
	object, err := e.records.GetObject(ctx, id)
	if err != nil {
		return nil, err
	}
	if object.CustodyGeneration != generation {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "attestation predates a custody transfer")
	}
	return object, nil
}

// ownershipClaim issues an attestation carrying the record's current custody
// generation.
func (e *Engine) ownershipClaim(ctx context.Context, kind domain.RegistryKind, recordID uint64, ttl time.Duration) (string, error) {
	var generation uint64
	switch kind {
	case domain.KindPerson:
		person, err := e.records.GetPerson(ctx, recordID)
		if err != nil {
			return "", err
		}
		generation = person.CustodyGeneration
	case domain.KindObject:
		object, err := e.records.GetObject(ctx, recordID)
		if err != nil {
			return "", err
		}
		generation = object.CustodyGeneration
	default:
		return "", dErrors.New(dErrors.CodeBadRequest, "unknown registry kind")
	}
	token, err := e.attest.IssueOwnership(kind, recordID, generation, ttl)
	if err != nil {
		return "", dErrors.New(dErrors.CodeInternal, "failed to issue ownership claim")
	}
	return token, nil
}

func (e *Engine) ClaimName(ctx context.Context, personToken, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	person, err := e.verifiedPerson(ctx, personToken)
	if err != nil {
		return err
	}
	return e.records.ClaimName(ctx, person.ID, name)
}

func (e *Engine) UpdatePersonFields(ctx context.Context, personID uint64, update registry.PersonFieldUpdate) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.records.UpdatePersonFields(ctx, personID, update)
}

func (e *Engine) UpdateObjectFields(ctx context.Context, objectID uint64, mortgaged *bool, rentOccupantID *uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.records.UpdateObjectFields(ctx, objectID, mortgaged, rentOccupantID)
}

func (e *Engine) GetPerson(ctx context.Context, id uint64) (*registry.Person, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.records.GetPerson(ctx, id)
}

func (e *Engine) GetObject(ctx context.Context, id uint64) (*registry.Object, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.records.GetObject(ctx, id)
}

// BankDeposit destroys a presented coin parcel and records the deposit. No
// balance is stored; the event stream is the bank's ledger.
func (e *Engine) BankDeposit(ctx context.Context, personToken string, payment domain.CoinParcel) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	person, err := e.verifiedPerson(ctx, personToken)
	if err != nil {
		return err
	}
	if err := e.coins.BurnAll(payment); err != nil {
		return err
	}
	return e.auditor.Emit(ctx, audit.Event{
		Action:   audit.ActionBankDeposit,
		PersonID: person.ID,
		Amount:   payment.Amount,
	})
}

// BankWithdraw records a withdrawal intent. Nothing is minted; an external
// observer fulfils it.
func (e *Engine) BankWithdraw(ctx context.Context, personToken string, amount int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	person, err := e.verifiedPerson(ctx, personToken)
	if err != nil {
		return err
	}
	if amount <= 0 {
		return dErrors.New(dErrors.CodeBadRequest, "amount must be bigger than zero")
	}
	return e.auditor.Emit(ctx, audit.Event{
		Action:   audit.ActionBankWithdraw,
		PersonID: person.ID,
		Amount:   amount,
	})
}

// ---- object lifecycle (attested) ----

func (e *Engine) Mortgage(ctx context.Context, objectToken string, payoutTarget *uint64) (*domain.CoinParcel, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	object, err := e.verifiedObject(ctx, objectToken)
	if err != nil {
		return nil, err
	}
	return e.objects.Mortgage(ctx, object.ID, payoutTarget)
}

func (e *Engine) AllowRent(ctx context.Context, objectToken string, allow bool, dailyPrice *int64, notifyAccount *uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	object, err := e.verifiedObject(ctx, objectToken)
	if err != nil {
		return err
	}
	return e.objects.AllowRent(ctx, object.ID, allow, dailyPrice, notifyAccount)
}

func (e *Engine) Rent(ctx context.Context, personToken, typeName string, objectID uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	person, err := e.verifiedPerson(ctx, personToken)
	if err != nil {
		return err
	}
	return e.objects.Rent(ctx, person.ID, typeName, objectID)
}

func (e *Engine) TerminateRent(ctx context.Context, personToken string, objectID uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	person, err := e.verifiedPerson(ctx, personToken)
	if err != nil {
		return err
	}
	return e.objects.TerminateRent(ctx, person.ID, objectID)
}

// ---- resale protocol (attested list/close, open purchase) ----

// SellObject lists an attested object for resale. The receipt comes back with
// an attestation over the receipt registry so the seller can redeem it later.
func (e *Engine) SellObject(ctx context.Context, objectToken string, price int64) (*escrow.Receipt, string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	object, err := e.verifiedObject(ctx, objectToken)
	if err != nil {
		return nil, "", err
	}
	receipt, err := e.escrow.ListObject(ctx, object.ID, price)
	if err != nil {
		return nil, "", err
	}
	claim, err := e.attest.IssueOwnership(domain.KindObjectReceipt, receipt.ID, 0, receiptClaimTTL)
	if err != nil {
		return nil, "", dErrors.New(dErrors.CodeInternal, "failed to issue receipt claim")
	}
	return receipt, claim, nil
}

// Purchase is what a used-sale buyer takes away: the asset, a fresh
// ownership claim over it, and any change.
type Purchase struct {
	Asset  domain.AssetParcel `json:"asset"`
	Claim  string             `json:"claim"`
	Change *domain.CoinParcel `json:"change,omitempty"`
}

func (e *Engine) BuyUsedObject(ctx context.Context, objectID uint64, payment domain.CoinParcel) (*Purchase, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buyUsed(ctx, domain.KindObject, objectID, payment)
}

func (e *Engine) buyUsed(ctx context.Context, kind domain.RegistryKind, assetID uint64, payment domain.CoinParcel) (*Purchase, error) {
	asset, change, err := e.escrow.BuyUsed(ctx, kind, assetID, payment)
	if err != nil {
		return nil, err
	}
	claim, err := e.ownershipClaim(ctx, kind, assetID, receiptClaimTTL)
	if err != nil {
		return nil, err
	}
	return &Purchase{Asset: *asset, Claim: claim, Change: change}, nil
}

func (e *Engine) CloseObjectSale(ctx context.Context, receiptToken string) (*escrow.CloseResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	receiptID, _, err := e.attest.VerifyOwnership(receiptToken, domain.KindObjectReceipt)
	if err != nil {
		return nil, err
	}
	return e.close(ctx, domain.KindObject, receiptID)
}

// close settles one receipt. When the asset comes back unsold the redeemer
// receives a fresh ownership claim along with it.
func (e *Engine) close(ctx context.Context, kind domain.RegistryKind, receiptID uint64) (*escrow.CloseResult, error) {
	result, err := e.escrow.Close(ctx, kind, receiptID)
	if err != nil {
		return nil, err
	}
	if result.Asset != nil {
		claim, err := e.ownershipClaim(ctx, kind, result.Asset.ID, receiptClaimTTL)
		if err != nil {
			return nil, err
		}
		result.AssetClaim = claim
	}
	return result, nil
}

func (e *Engine) SellPerson(ctx context.Context, personToken string, price int64) (*escrow.Receipt, string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	person, err := e.verifiedPerson(ctx, personToken)
	if err != nil {
		return nil, "", err
	}
	receipt, err := e.escrow.ListPerson(ctx, person.ID, price)
	if err != nil {
		return nil, "", err
	}
	claim, err := e.attest.IssueOwnership(domain.KindPersonReceipt, receipt.ID, 0, receiptClaimTTL)
	if err != nil {
		return nil, "", dErrors.New(dErrors.CodeInternal, "failed to issue receipt claim")
	}
	return receipt, claim, nil
}

func (e *Engine) BuyUsedPerson(ctx context.Context, personID uint64, payment domain.CoinParcel) (*Purchase, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buyUsed(ctx, domain.KindPerson, personID, payment)
}

func (e *Engine) ClosePersonSale(ctx context.Context, receiptToken string) (*escrow.CloseResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	receiptID, _, err := e.attest.VerifyOwnership(receiptToken, domain.KindPersonReceipt)
	if err != nil {
		return nil, err
	}
	return e.close(ctx, domain.KindPerson, receiptID)
}

// ---- choices ----

func (e *Engine) AddChoice(ctx context.Context, name string, price *int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.choices.AddChoice(ctx, name, price)
}

func (e *Engine) MakeChoice(ctx context.Context, personToken, name, selector string, payment *domain.CoinParcel) (*domain.CoinParcel, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	person, err := e.verifiedPerson(ctx, personToken)
	if err != nil {
		return nil, err
	}
	return e.choices.MakeChoice(ctx, person.ID, name, selector, payment)
}

// ---- attestation issuance (operator tier) ----

// IssueOwnership mints an ownership attestation for an existing record.
func (e *Engine) IssueOwnership(ctx context.Context, kind domain.RegistryKind, recordID uint64, ttl time.Duration) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ownershipClaim(ctx, kind, recordID, ttl)
}

// ---- audit trail (owner tier) ----

func (e *Engine) AuditTrail(ctx context.Context, limit int) ([]audit.Event, error) {
	return e.auditor.ListRecent(ctx, limit)
}

// receiptClaimTTL bounds how long a seller can sit on an unredeemed receipt
// claim before requesting a fresh one.
const receiptClaimTTL = 90 * 24 * time.Hour
