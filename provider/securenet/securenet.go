package securenet

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/paywire/paywire/provider"
)

const (
	// API Endpoints. Sandbox versus live is selected by URL only; see the
	// note on the Test element below.
	apiSandboxURL    = "https://certify.securenet.com/payment.asmx"
	apiProductionURL = "https://gateway.securenet.com/payment.asmx"

	// SOAP namespace of the operation body. The receiving server is
	// schema-strict: the envelope below must be reproduced byte-for-byte
	// in tag names and casing.
	gatewayNamespace = "https://gateway.securenet.com/"

	// Transaction type codes
	typeAuthOnly         = "AUTH_ONLY"
	typeAuthCapture      = "AUTH_CAPTURE"
	typePriorAuthCapture = "PRIOR_AUTH_CAPTURE"
	typeCredit           = "CREDIT"
	typeVoid             = "VOID"

	// Tender methods
	methodCard  = "CC"
	methodCheck = "ECHECK"

	// Vault actions
	vaultAddAccount    = "ADD_ACCOUNT"
	vaultDeleteAccount = "DELETE_ACCOUNT"

	// Success sentinel: SecureNet reports Response_Code 1 for approved
	// transactions; 2 is declined, 3 is error.
	approvedCode = "1"
)

// alwaysFalseTestFlag is the value of the Test element on every request.
//
// This is intentional, not a bug: SecureNet selects test mode by endpoint
// URL, and submitting Test=TRUE to the certification host makes it answer
// with an empty approval code while still reporting success. The processor's
// integration notes say to hard-code FALSE and pick the host instead. Do not
// wire this to the adapter's environment flag.
const alwaysFalseTestFlag = "FALSE"

// SecureNetProvider implements the provider.GatewayProvider interface for
// the SecureNet SOAP gateway dialect.
type SecureNetProvider struct {
	securenetID  string
	secureKey    string
	baseURL      string
	isProduction bool
	httpClient   *provider.ProviderHTTPClient
}

// NewProvider creates a new SecureNet payment provider.
func NewProvider() provider.GatewayProvider {
	return &SecureNetProvider{}
}

// GetRequiredConfig returns the configuration fields required for SecureNet.
func (p *SecureNetProvider) GetRequiredConfig(environment string) []provider.ConfigField {
	return []provider.ConfigField{
		{
			Key:         "securenetId",
			Required:    true,
			Type:        "string",
			Description: "SecureNet merchant ID (SecurenetID)",
			Example:     "8001234",
			MinLength:   4,
			MaxLength:   32,
		},
		{
			Key:         "secureKey",
			Required:    true,
			Type:        "string",
			Description: "SecureNet transaction key (SecureKey)",
			Example:     "ABcd1234EFgh5678",
			MinLength:   8,
			MaxLength:   64,
		},
		{
			Key:         "environment",
			Required:    true,
			Type:        "string",
			Description: "Environment setting (sandbox or production)",
			Example:     "sandbox",
			Pattern:     "^(sandbox|production)$",
		},
	}
}

// ValidateConfig validates the provided configuration against SecureNet requirements.
func (p *SecureNetProvider) ValidateConfig(conf map[string]string) error {
	return provider.ValidateConfigFields("securenet", conf, p.GetRequiredConfig(conf["environment"]))
}

// Initialize sets up the SecureNet payment provider with authentication credentials.
func (p *SecureNetProvider) Initialize(conf map[string]string) error {
	p.securenetID = conf["securenetId"]
	p.secureKey = conf["secureKey"]

	if p.securenetID == "" || p.secureKey == "" {
		return provider.NewValidationError("config", "securenet: securenetId and secureKey are required")
	}

	p.isProduction = conf["environment"] == "production"
	p.baseURL = apiSandboxURL
	if p.isProduction {
		p.baseURL = apiProductionURL
	}

	p.httpClient = provider.NewProviderHTTPClient(provider.CreateHTTPClientConfig(p.baseURL, p.isProduction))

	return nil
}

// Authorize places a hold on funds. SecureNet does not authorize ACH
// tenders; that is rejected locally so the caller gets a clear error
// instead of an opaque gateway message.
func (p *SecureNetProvider) Authorize(ctx context.Context, req provider.TransactionRequest) (*provider.Result, error) {
	if req.Tender != nil && req.Tender.Kind == provider.TenderCheck {
		return nil, provider.NewValidationError("tender", "securenet: cannot perform an authorization for ECHECK")
	}
	req.Action = provider.ActionAuthorize
	return p.processTransaction(ctx, req, typeAuthOnly)
}

// Purchase authorizes and captures in one step for card, check or stored
// account tenders.
func (p *SecureNetProvider) Purchase(ctx context.Context, req provider.TransactionRequest) (*provider.Result, error) {
	req.Action = provider.ActionPurchase
	return p.processTransaction(ctx, req, typeAuthCapture)
}

// Capture settles a prior authorization. The amount is required; SecureNet
// rejects a PRIOR_AUTH_CAPTURE without one.
func (p *SecureNetProvider) Capture(ctx context.Context, req provider.TransactionRequest) (*provider.Result, error) {
	req.Action = provider.ActionCapture
	if req.Reference == "" {
		return nil, provider.NewValidationError("reference", "reference is required for capture")
	}
	if req.Amount <= 0 {
		return nil, provider.NewValidationError("amount", "amount is required for capture")
	}
	return p.processReference(ctx, req, typePriorAuthCapture)
}

// Credit refunds a referenced transaction. SecureNet has no non-referenced
// credit; a tender-only credit is rejected locally.
func (p *SecureNetProvider) Credit(ctx context.Context, req provider.TransactionRequest) (*provider.Result, error) {
	req.Action = provider.ActionCredit
	if req.Reference == "" {
		return nil, provider.NewValidationError("reference", "securenet: credit requires a prior transaction reference")
	}
	if req.Amount <= 0 {
		return nil, provider.NewValidationError("amount", "amount is required for credit")
	}
	return p.processReference(ctx, req, typeCredit)
}

// Void cancels a referenced transaction before settlement.
func (p *SecureNetProvider) Void(ctx context.Context, req provider.TransactionRequest) (*provider.Result, error) {
	req.Action = provider.ActionVoid
	if req.Reference == "" {
		return nil, provider.NewValidationError("reference", "reference is required for void")
	}
	return p.processReference(ctx, req, typeVoid)
}

// Inquiry is not part of the SecureNet dialect; transaction state is only
// available through the reporting site.
func (p *SecureNetProvider) Inquiry(ctx context.Context, req provider.TransactionRequest) (*provider.Result, error) {
	return nil, provider.NewValidationError("action", "securenet: transaction inquiry is not supported")
}

// Recurring is not part of the SecureNet dialect.
func (p *SecureNetProvider) Recurring(ctx context.Context, req provider.TransactionRequest) (*provider.Result, error) {
	return nil, provider.NewValidationError("action", "securenet: recurring profiles are not supported")
}

// Store saves a card or check in the SecureNet vault. The vault slot is
// addressed by customer id; when the caller supplies none a fresh one is
// generated and returned in the result fields.
func (p *SecureNetProvider) Store(ctx context.Context, req provider.TransactionRequest) (*provider.Result, error) {
	req.Action = provider.ActionStore
	if req.Tender == nil {
		return nil, provider.NewValidationError("tender", "store requires a tender")
	}
	if err := req.Tender.Validate(); err != nil {
		return nil, err
	}

	info := &vaultInfo{
		SecurenetID: p.securenetID,
		SecureKey:   p.secureKey,
		Test:        alwaysFalseTestFlag,
		CustomerID:  req.Reference,
		Action:      vaultAddAccount,
	}
	if info.CustomerID == "" {
		info.CustomerID = uuid.New().String()
	}

	switch req.Tender.Kind {
	case provider.TenderCard:
		card := req.Tender.Card
		info.CardNum = card.Number
		info.ExpDate = expDate(card)
		info.FirstName = card.FirstName
		info.LastName = card.LastName
	case provider.TenderCheck:
		check := req.Tender.Check
		if check.BankName == "" {
			return nil, provider.NewValidationError("tender.check.bankName", "securenet: bank name is required to store a check")
		}
		info.BankABACode = check.RoutingNumber
		info.BankAcctNum = check.AccountNumber
		info.BankAcctType = accountTypeCode(check.AccountType)
		info.BankName = check.BankName
		info.BankAcctName = check.HolderName
	default:
		return nil, provider.NewValidationError("tender.kind", fmt.Sprintf("securenet: cannot store tender kind %q", req.Tender.Kind))
	}

	return p.commitVault(ctx, info)
}

// Unstore removes a stored account from the SecureNet vault.
func (p *SecureNetProvider) Unstore(ctx context.Context, req provider.TransactionRequest) (*provider.Result, error) {
	req.Action = provider.ActionUnstore
	if req.Tender == nil || req.Tender.Kind != provider.TenderStoredAccount || req.Tender.StoredAccount == nil {
		return nil, provider.NewValidationError("tender", "unstore requires a stored account tender")
	}

	account := req.Tender.StoredAccount
	info := &vaultInfo{
		SecurenetID: p.securenetID,
		SecureKey:   p.secureKey,
		Test:        alwaysFalseTestFlag,
		CustomerID:  account.CustomerID,
		PaymentID:   account.PaymentID,
		Action:      vaultDeleteAccount,
	}

	return p.commitVault(ctx, info)
}

// processTransaction builds and submits an auth or purchase for a card,
// check or stored account tender.
func (p *SecureNetProvider) processTransaction(ctx context.Context, req provider.TransactionRequest, txnType string) (*provider.Result, error) {
	if req.Options.OrderID == "" {
		return nil, provider.NewValidationError("options.orderId", "securenet: order id is required")
	}
	if req.Tender == nil {
		return nil, provider.NewValidationError("tender", fmt.Sprintf("%s requires a tender", req.Action))
	}
	if err := req.Tender.Validate(); err != nil {
		return nil, err
	}

	info := p.baseTransaction(req, txnType)

	switch req.Tender.Kind {
	case provider.TenderCard:
		card := req.Tender.Card
		info.Method = methodCard
		info.CardNum = card.Number
		info.ExpDate = expDate(card)
		info.CardCode = card.VerificationValue
		info.FirstName = card.FirstName
		info.LastName = card.LastName
	case provider.TenderCheck:
		check := req.Tender.Check
		if check.BankName == "" {
			return nil, provider.NewValidationError("tender.check.bankName", "securenet: bank name is required for ECHECK")
		}
		info.Method = methodCheck
		info.BankABACode = check.RoutingNumber
		info.BankAcctNum = check.AccountNumber
		info.BankAcctType = accountTypeCode(check.AccountType)
		info.BankName = check.BankName
		info.BankAcctName = check.HolderName
	case provider.TenderStoredAccount:
		account := req.Tender.StoredAccount
		info.Method = methodCard
		info.CustomerID = account.CustomerID
		info.PaymentID = account.PaymentID
	default:
		return nil, provider.NewValidationError("tender.kind", fmt.Sprintf("securenet: unsupported tender kind %q", req.Tender.Kind))
	}

	p.addInvoiceData(info, req)
	p.addAddress(info, req)

	return p.commitTransaction(ctx, info)
}

// processReference builds and submits a capture, credit or void against a
// prior transaction. Only the action, amount (when required) and the
// reference go on the wire; no tender section.
func (p *SecureNetProvider) processReference(ctx context.Context, req provider.TransactionRequest, txnType string) (*provider.Result, error) {
	info := p.baseTransaction(req, txnType)
	info.Method = methodCard
	info.TransID = req.Reference
	if req.Action == provider.ActionVoid {
		info.Amount = ""
	}
	return p.commitTransaction(ctx, info)
}

func (p *SecureNetProvider) baseTransaction(req provider.TransactionRequest, txnType string) *transactionInfo {
	return &transactionInfo{
		SecurenetID: p.securenetID,
		SecureKey:   p.secureKey,
		Test:        alwaysFalseTestFlag,
		OrderID:     strings.TrimSpace(req.Options.OrderID),
		Type:        txnType,
		Amount:      provider.FormatAmount(req.Amount, req.Currency),
	}
}

// addInvoiceData copies the optional invoice and level-2 fields that are
// present. Absent fields stay off the wire; SecureNet treats an empty
// element as a value, not an omission.
func (p *SecureNetProvider) addInvoiceData(info *transactionInfo, req provider.TransactionRequest) {
	info.InvoiceNum = strings.TrimSpace(req.Options.OrderID)
	info.Description = strings.TrimSpace(req.Options.Description)
	info.Email = strings.TrimSpace(req.Options.Email)
	info.CustomerIP = strings.TrimSpace(req.Options.IP)
	if l2 := req.Options.Level2; l2 != nil {
		if l2.TaxAmount > 0 {
			info.Tax = provider.FormatAmount(l2.TaxAmount, req.Currency)
		}
		if l2.FreightAmount > 0 {
			info.Freight = provider.FormatAmount(l2.FreightAmount, req.Currency)
		}
		info.PONum = strings.TrimSpace(l2.PONumber)
	}
}

func (p *SecureNetProvider) addAddress(info *transactionInfo, req provider.TransactionRequest) {
	addr := req.Options.BillingAddress
	if addr == nil {
		return
	}
	info.Address = addr.Street
	info.City = addr.City
	info.State = addr.State
	info.Zip = addr.Zip
	info.Country = addr.Country
	info.Phone = addr.Phone
}

func accountTypeCode(t provider.AccountType) string {
	if t == provider.AccountSavings {
		return "SAVINGS"
	}
	return "CHECKING"
}

// expDate renders the card expiry the way this dialect requires: two-digit
// month then two-digit year ("0325" for 3/2025). Payflow orders these the
// other way round; never unify the two.
func expDate(card *provider.Card) string {
	return fmt.Sprintf("%02d%02d", card.Month, card.Year%100)
}

func (p *SecureNetProvider) commitTransaction(ctx context.Context, info *transactionInfo) (*provider.Result, error) {
	operation := soapOperation{
		XMLName:     xml.Name{Local: "Process"},
		Xmlns:       gatewayNamespace,
		Transaction: info,
	}
	return p.send(ctx, operation, "ProcessResult")
}

func (p *SecureNetProvider) commitVault(ctx context.Context, info *vaultInfo) (*provider.Result, error) {
	operation := soapOperation{
		XMLName: xml.Name{Local: "ProcessVault"},
		Xmlns:   gatewayNamespace,
		Vault:   info,
	}
	return p.send(ctx, operation, "ProcessVaultResult")
}

// send wraps the operation in the SOAP 1.2 envelope, submits it once and
// decodes the response. The result container name follows the SOAP action,
// since the endpoint serves several logical operations.
func (p *SecureNetProvider) send(ctx context.Context, operation soapOperation, container string) (*provider.Result, error) {
	envelope := soapEnvelope{
		XSI:    "http://www.w3.org/2001/XMLSchema-instance",
		XSD:    "http://www.w3.org/2001/XMLSchema",
		Soap12: "http://www.w3.org/2003/05/soap-envelope",
		Body:   soapBody{Operation: operation},
	}

	body, err := xml.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("securenet: failed to encode request: %w", err)
	}
	document := append([]byte(xml.Header), body...)

	resp, err := p.httpClient.SendXML(ctx, &provider.HTTPRequest{
		Endpoint: p.baseURL,
		Body:     document,
	})
	if err != nil {
		return nil, err
	}

	return p.decode(resp.Body, container)
}

// decode normalizes a SecureNet response. A decline (Response_Code != 1)
// is a Result with Success=false, never an error.
func (p *SecureNetProvider) decode(raw []byte, container string) (*provider.Result, error) {
	fields, err := provider.FlattenContainer(raw, container)
	if err != nil {
		return nil, err
	}

	authorization := fields["approval_code"]
	if authorization == "" {
		authorization = fields["transaction_id"]
	}

	return &provider.Result{
		Success:       fields["response_code"] == approvedCode,
		Message:       fields["response_reason_text"],
		Authorization: authorization,
		Fields:        fields,
		CVVResult:     fields["cavv_response_code"],
		AVSResult:     fields["avs_result_code"],
		Test:          !p.isProduction,
	}, nil
}
