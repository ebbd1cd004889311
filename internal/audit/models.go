package audit

import (
	"time"

	"github.com/google/uuid"
)

// Action names exactly one state-changing operation. The event stream is
// consumed by external observers; the engine itself never reads it back.
type Action string

const (
	ActionPersonMinted    Action = "person_minted"
	ActionNameClaimed     Action = "name_claimed"
	ActionObjectsMinted   Action = "objects_minted"
	ActionBankDeposit     Action = "bank_deposit"
	ActionBankWithdraw    Action = "bank_withdraw"
	ActionRentAllowed     Action = "rent_allowed"
	ActionRented          Action = "rented"
	ActionRentTerminated  Action = "rent_terminated"
	ActionObjectListed    Action = "object_listed"
	ActionObjectPurchased Action = "object_purchased"
	ActionObjectClosed    Action = "object_sale_closed"
	ActionPersonListed    Action = "person_listed"
	ActionPersonPurchased Action = "person_purchased"
	ActionPersonClosed    Action = "person_sale_closed"
	ActionChoiceMade      Action = "choice_made"
)

// Close outcomes recorded on settlement events.
const (
	OutcomeAssetReturned = "asset_returned"
	OutcomePricePaidOut  = "price_paid_out"
)

// Event is emitted from domain logic to capture one state transition. Keep it
// transport-agnostic so stores and sinks can fan out. Optional parameters of
// the emitting operation surface as pointer fields so absence survives
// serialization.
type Event struct {
	ID        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`

	PersonID  uint64   `json:"person_id,omitempty"`
	ObjectID  uint64   `json:"object_id,omitempty"`
	ObjectIDs []uint64 `json:"object_ids,omitempty"`
	ReceiptID uint64   `json:"receipt_id,omitempty"`

	Amount    int64  `json:"amount,omitempty"`
	Name      string `json:"name,omitempty"`
	Mortgaged bool   `json:"mortgaged,omitempty"`

	// Rent-allow parameters travel whole: allow always present, the
	// optionals explicitly null when absent.
	Allow         *bool   `json:"allow"`
	DailyPrice    *int64  `json:"daily_price"`
	NotifyAccount *uint64 `json:"notify_account"`

	BirthDate     *time.Time `json:"birth_date,omitempty"`
	HolderAccount string     `json:"holder_account,omitempty"`
	Choice        string     `json:"choice,omitempty"`
	Selector      string     `json:"selector,omitempty"`
	Outcome       string     `json:"outcome,omitempty"`

	RequestID string `json:"request_id,omitempty"`
}
