package provider

import (
	"context"
	"time"
)

// Action identifies the logical gateway operation being performed.
type Action string

const (
	ActionAuthorize Action = "authorize"
	ActionPurchase  Action = "purchase"
	ActionCapture   Action = "capture"
	ActionCredit    Action = "credit"
	ActionVoid      Action = "void"
	ActionInquiry   Action = "inquiry"

	ActionRecurringAdd        Action = "recurring_add"
	ActionRecurringModify     Action = "recurring_modify"
	ActionRecurringCancel     Action = "recurring_cancel"
	ActionRecurringInquiry    Action = "recurring_inquiry"
	ActionRecurringReactivate Action = "recurring_reactivate"
	ActionRecurringPayment    Action = "recurring_payment"

	ActionStore   Action = "store"
	ActionUnstore Action = "unstore"
)

// TenderKind discriminates the payment instrument variants.
type TenderKind string

const (
	TenderCard          TenderKind = "card"
	TenderCheck         TenderKind = "check"
	TenderReference     TenderKind = "reference"
	TenderStoredAccount TenderKind = "stored_account"
)

// AccountType is the bank account type for check tenders.
type AccountType string

const (
	AccountChecking AccountType = "checking"
	AccountSavings  AccountType = "savings"
)

// Card holds credit card details. Brand is the already-detected card brand
// ("visa", "master", ...); brand detection happens upstream of this layer.
type Card struct {
	Number            string `json:"number"`
	Month             int    `json:"month"`
	Year              int    `json:"year"`
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	Brand             string `json:"brand,omitempty"`
	VerificationValue string `json:"verificationValue,omitempty"`

	// Start date and issue number only exist on certain UK debit cards.
	StartMonth  int    `json:"startMonth,omitempty"`
	StartYear   int    `json:"startYear,omitempty"`
	IssueNumber string `json:"issueNumber,omitempty"`
}

// Check holds ACH bank account details.
type Check struct {
	AccountNumber string      `json:"accountNumber"`
	RoutingNumber string      `json:"routingNumber"`
	AccountType   AccountType `json:"accountType"`
	BankName      string      `json:"bankName,omitempty"`
	HolderName    string      `json:"holderName,omitempty"`
}

// StoredAccount references a payment instrument kept in the processor's vault.
type StoredAccount struct {
	CustomerID string `json:"customerId"`
	PaymentID  string `json:"paymentId"`
}

// Tender is the payment instrument backing a transaction. Exactly one
// variant matching Kind may be populated; dialect encoders branch on Kind
// and never mix field sets across variants.
type Tender struct {
	Kind          TenderKind     `json:"kind"`
	Card          *Card          `json:"card,omitempty"`
	Check         *Check         `json:"check,omitempty"`
	Reference     string         `json:"reference,omitempty"`
	StoredAccount *StoredAccount `json:"storedAccount,omitempty"`
}

// Validate checks the one-variant-per-tender invariant.
func (t *Tender) Validate() error {
	switch t.Kind {
	case TenderCard:
		if t.Card == nil {
			return NewValidationError("tender.card", "card tender requires card details")
		}
	case TenderCheck:
		if t.Check == nil {
			return NewValidationError("tender.check", "check tender requires bank account details")
		}
	case TenderReference:
		if t.Reference == "" {
			return NewValidationError("tender.reference", "reference tender requires a prior transaction id")
		}
	case TenderStoredAccount:
		if t.StoredAccount == nil {
			return NewValidationError("tender.storedAccount", "stored account tender requires customer and payment ids")
		}
	default:
		return NewValidationError("tender.kind", "unknown tender kind")
	}
	return nil
}

// Periodicity is the recurring billing frequency.
type Periodicity string

const (
	PeriodDaily       Periodicity = "daily"
	PeriodWeekly      Periodicity = "weekly"
	PeriodBiweekly    Periodicity = "biweekly"
	PeriodSemimonthly Periodicity = "semimonthly"
	PeriodQuadweekly  Periodicity = "quadweekly"
	PeriodMonthly     Periodicity = "monthly"
	PeriodQuarterly   Periodicity = "quarterly"
	PeriodSemiyearly  Periodicity = "semiyearly"
	PeriodYearly      Periodicity = "yearly"
)

// InitialTransaction is an optional transaction executed atomically with
// recurring profile creation. Amount is required when Action is purchase.
type InitialTransaction struct {
	Action Action `json:"action"` // authorize or purchase
	Amount int64  `json:"amount,omitempty"`
}

// RecurringSchedule describes a recurring billing profile for the add and
// modify actions. StartDate must lie strictly in the future.
type RecurringSchedule struct {
	Periodicity Periodicity         `json:"periodicity"`
	StartDate   time.Time           `json:"startDate"`
	Payments    int                 `json:"payments,omitempty"` // total term, 0 = until cancelled
	Comment     string              `json:"comment,omitempty"`
	Initial     *InitialTransaction `json:"initial,omitempty"`
}

// Address is a billing or shipping address.
type Address struct {
	Name    string `json:"name,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
	Zip     string `json:"zip,omitempty"`
}

// Level2 carries supplementary commercial-card fields some processors accept
// for card-not-present B2B transactions. Amounts are minor currency units.
type Level2 struct {
	TaxAmount     int64  `json:"taxAmount,omitempty"`
	FreightAmount int64  `json:"freightAmount,omitempty"`
	PONumber      string `json:"poNumber,omitempty"`
}

// TransactionOptions is the optional-field bag of a transaction request.
// Blank string fields are treated as absent by every dialect encoder: an
// absent field must not appear on the wire, several processors reject
// empty-but-present elements differently from omitted ones.
type TransactionOptions struct {
	OrderID         string             `json:"orderId,omitempty"`
	Description     string             `json:"description,omitempty"`
	Email           string             `json:"email,omitempty"`
	IP              string             `json:"ip,omitempty"`
	Name            string             `json:"name,omitempty"` // recurring profile name
	BillingAddress  *Address           `json:"billingAddress,omitempty"`
	ShippingAddress *Address           `json:"shippingAddress,omitempty"`
	Level2          *Level2            `json:"level2,omitempty"`
	Recurring       *RecurringSchedule `json:"recurring,omitempty"`
	History         bool               `json:"history,omitempty"` // recurring inquiry: include payment history
}

// TransactionRequest is the immutable description of one gateway operation.
// Amount is in minor currency units; dialects format it through FormatAmount
// at the encoding site. Which of Tender, Reference and Options.Recurring are
// required depends on Action and is enforced before any network call.
type TransactionRequest struct {
	Action    Action             `json:"action"`
	Amount    int64              `json:"amount"`
	Currency  string             `json:"currency,omitempty"`
	Tender    *Tender            `json:"tender,omitempty"`
	Reference string             `json:"reference,omitempty"`
	Options   TransactionOptions `json:"options"`
}

// Result is the normalized outcome of one gateway operation. A gateway
// decline is Success=false with Message populated, never an error. Fields
// holds every decoded response field keyed by lower_snake_case tag name for
// diagnostics. CVVResult and AVSResult are opaque processor codes.
type Result struct {
	Success       bool              `json:"success"`
	Message       string            `json:"message,omitempty"`
	Authorization string            `json:"authorization,omitempty"`
	Fields        map[string]string `json:"fields,omitempty"`
	CVVResult     string            `json:"cvvResult,omitempty"`
	AVSResult     string            `json:"avsResult,omitempty"`
	Duplicate     bool              `json:"duplicate,omitempty"`
	Test          bool              `json:"test,omitempty"`
}

// ConfigField describes one configuration field of a dialect.
type ConfigField struct {
	Key         string `json:"key"`
	Required    bool   `json:"required"`
	Type        string `json:"type"` // "string", "number", "url", "email", "boolean"
	Description string `json:"description"`
	Example     string `json:"example,omitempty"`
	Pattern     string `json:"pattern,omitempty"`
	MinLength   int    `json:"minLength,omitempty"`
	MaxLength   int    `json:"maxLength,omitempty"`
}

// GatewayProvider is the uniform operation set every processor dialect
// implements. Implementations are stateless per call: encode the request,
// submit it once (no automatic retries, resubmission detection belongs to
// the processor), decode the response. Operations a processor does not
// support return a ValidationError without any network round trip.
type GatewayProvider interface {
	// Initialize sets up the dialect with credentials and environment.
	Initialize(conf map[string]string) error

	// GetRequiredConfig returns the configuration fields required by this dialect.
	GetRequiredConfig(environment string) []ConfigField

	// ValidateConfig validates configuration against dialect requirements.
	ValidateConfig(conf map[string]string) error

	// Authorize places a hold on funds without capturing them.
	Authorize(ctx context.Context, req TransactionRequest) (*Result, error)

	// Purchase authorizes and captures in one step.
	Purchase(ctx context.Context, req TransactionRequest) (*Result, error)

	// Capture settles a previously authorized transaction by reference.
	Capture(ctx context.Context, req TransactionRequest) (*Result, error)

	// Credit refunds against a reference or a freshly supplied tender.
	Credit(ctx context.Context, req TransactionRequest) (*Result, error)

	// Void cancels a referenced transaction before settlement.
	Void(ctx context.Context, req TransactionRequest) (*Result, error)

	// Inquiry fetches the current status of a referenced transaction.
	Inquiry(ctx context.Context, req TransactionRequest) (*Result, error)

	// Recurring drives the recurring profile lifecycle; req.Action selects
	// add, modify, cancel, inquiry, reactivate or payment.
	Recurring(ctx context.Context, req TransactionRequest) (*Result, error)

	// Store saves a tender in the processor's vault.
	Store(ctx context.Context, req TransactionRequest) (*Result, error)

	// Unstore removes a stored account from the processor's vault.
	Unstore(ctx context.Context, req TransactionRequest) (*Result, error)
}

// ProviderFactory creates a new, uninitialized GatewayProvider.
type ProviderFactory func() GatewayProvider
