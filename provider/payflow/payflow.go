package payflow

import (
	"context"
	"encoding/xml"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/paywire/paywire/provider"
)

const (
	// API Endpoints
	apiSandboxURL    = "https://pilot-payflowpro.paypal.com"
	apiProductionURL = "https://payflowpro.paypal.com"

	// XMLPay envelope constants. The receiving servers are schema-strict;
	// tag names, casing and the namespace are part of the contract.
	xmlpayNamespace = "http://www.paypal.com/XMLPay"
	xmlpayVersion   = "2.1"

	// Client timeout in seconds, mirrored into the Timeout attribute and
	// the X-VPS-CLIENT-TIMEOUT header.
	clientTimeout = 30

	// Success sentinel: Payflow reports Result 0 for approved transactions.
	// Everything else, including communication errors the gateway handled,
	// is a decline.
	approvedResult = "0"
)

// Transaction element names per action. The wrong name is accepted by the
// parser and rejected by the processor, so these are load-bearing.
var transactionNames = map[provider.Action]string{
	provider.ActionAuthorize: "Authorization",
	provider.ActionPurchase:  "Sale",
	provider.ActionCapture:   "Capture",
	provider.ActionCredit:    "Credit",
	provider.ActionVoid:      "Void",
}

// cardTypeNames maps detected card brands to Payflow CardType values.
// Unknown brands are sent as an empty CardType, which Payflow accepts.
var cardTypeNames = map[string]string{
	"visa":             "Visa",
	"master":           "MasterCard",
	"discover":         "Discover",
	"american_express": "Amex",
	"jcb":              "JCB",
	"diners_club":      "DinersClub",
	"switch":           "Switch",
	"solo":             "Solo",
}

// Brands whose cards may carry a start date or issue number.
var startDateBrands = map[string]bool{
	"switch": true,
	"solo":   true,
}

var invoiceNumberJunk = regexp.MustCompile(`[^\w.]`)

// PayflowProvider implements the provider.GatewayProvider interface for the
// Payflow Pro XMLPay 2.1 dialect.
//
// Known gateway quirk: the Payflow documentation states that a referenced
// credit or capture with the amount omitted settles the original amount; in
// practice the processor credits zero. This dialect therefore emits the
// Invoice block only when an amount is present and callers must pass the
// amount explicitly. The zero-credit behavior is the processor's, not ours.
type PayflowProvider struct {
	partner      string
	vendor       string
	user         string
	password     string
	baseURL      string
	isProduction bool
	httpClient   *provider.ProviderHTTPClient
}

// NewProvider creates a new Payflow payment provider.
func NewProvider() provider.GatewayProvider {
	return &PayflowProvider{}
}

// GetRequiredConfig returns the configuration fields required for Payflow.
func (p *PayflowProvider) GetRequiredConfig(environment string) []provider.ConfigField {
	return []provider.ConfigField{
		{
			Key:         "partner",
			Required:    true,
			Type:        "string",
			Description: "Payflow partner id (PayPal unless a reseller issued the account)",
			Example:     "PayPal",
			MinLength:   2,
			MaxLength:   64,
		},
		{
			Key:         "vendor",
			Required:    true,
			Type:        "string",
			Description: "Payflow merchant login (vendor)",
			Example:     "my-merchant",
			MinLength:   1,
			MaxLength:   64,
		},
		{
			Key:         "user",
			Required:    false,
			Type:        "string",
			Description: "API user within the account; defaults to the vendor login",
			Example:     "my-api-user",
		},
		{
			Key:         "password",
			Required:    true,
			Type:        "string",
			Description: "Payflow password",
			Example:     "secret",
			MinLength:   1,
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

// ValidateConfig validates the provided configuration against Payflow requirements.
func (p *PayflowProvider) ValidateConfig(conf map[string]string) error {
	return provider.ValidateConfigFields("payflow", conf, p.GetRequiredConfig(conf["environment"]))
}

// Initialize sets up the Payflow provider with authentication credentials.
func (p *PayflowProvider) Initialize(conf map[string]string) error {
	p.partner = conf["partner"]
	p.vendor = conf["vendor"]
	p.password = conf["password"]

	if p.partner == "" || p.vendor == "" || p.password == "" {
		return provider.NewValidationError("config", "payflow: partner, vendor and password are required")
	}

	// User defaults to the vendor login for single-user accounts.
	p.user = conf["user"]
	if p.user == "" {
		p.user = p.vendor
	}

	p.isProduction = conf["environment"] == "production"
	p.baseURL = apiSandboxURL
	if p.isProduction {
		p.baseURL = apiProductionURL
	}

	p.httpClient = provider.NewProviderHTTPClient(provider.CreateHTTPClientConfig(p.baseURL, p.isProduction))

	return nil
}

// Authorize places a hold on funds. Payflow does not support authorization
// for ACH tenders; that is rejected here, before any document is built, so
// the caller gets a local error instead of an opaque gateway rejection.
func (p *PayflowProvider) Authorize(ctx context.Context, req provider.TransactionRequest) (*provider.Result, error) {
	if req.Tender != nil && req.Tender.Kind == provider.TenderCheck {
		return nil, provider.NewValidationError("tender", "payflow: cannot perform an authorization for ACH")
	}
	req.Action = provider.ActionAuthorize

	body, err := p.buildSaleOrAuthorization(req)
	if err != nil {
		return nil, err
	}
	return p.commit(ctx, body)
}

// Purchase authorizes and captures in one step for card, check or
// reference tenders.
func (p *PayflowProvider) Purchase(ctx context.Context, req provider.TransactionRequest) (*provider.Result, error) {
	req.Action = provider.ActionPurchase

	body, err := p.buildSaleOrAuthorization(req)
	if err != nil {
		return nil, err
	}
	return p.commit(ctx, body)
}

// Capture settles a prior authorization identified by reference. The amount
// is optional on the wire; see the zero-amount quirk on PayflowProvider.
func (p *PayflowProvider) Capture(ctx context.Context, req provider.TransactionRequest) (*provider.Result, error) {
	req.Action = provider.ActionCapture
	body, err := p.buildReferenceRequest(req, req.Amount > 0)
	if err != nil {
		return nil, err
	}
	return p.commit(ctx, body)
}

// Credit refunds a referenced transaction, or performs a non-referenced
// credit when a card or check tender is supplied instead of a reference.
// The amount is optional on the wire for referenced credits; see the
// zero-amount quirk on PayflowProvider.
func (p *PayflowProvider) Credit(ctx context.Context, req provider.TransactionRequest) (*provider.Result, error) {
	req.Action = provider.ActionCredit

	if req.Tender != nil && req.Tender.Kind == provider.TenderReference {
		req.Reference = req.Tender.Reference
		req.Tender = nil
	}

	var body *transactionBody
	var err error
	if req.Reference != "" && req.Tender == nil {
		body, err = p.buildReferenceRequest(req, req.Amount > 0)
	} else {
		body, err = p.buildTenderRequest(req)
	}
	if err != nil {
		return nil, err
	}
	return p.commit(ctx, body)
}

// Void cancels a referenced transaction before settlement. No amount is sent.
func (p *PayflowProvider) Void(ctx context.Context, req provider.TransactionRequest) (*provider.Result, error) {
	req.Action = provider.ActionVoid
	body, err := p.buildReferenceRequest(req, false)
	if err != nil {
		return nil, err
	}
	return p.commit(ctx, body)
}

// Inquiry fetches the status of a referenced transaction.
func (p *PayflowProvider) Inquiry(ctx context.Context, req provider.TransactionRequest) (*provider.Result, error) {
	if req.Reference == "" {
		return nil, provider.NewValidationError("reference", "reference is required for inquiry")
	}

	body := &transactionBody{
		XMLName: xml.Name{Local: "GetStatus"},
		PNRef:   req.Reference,
	}
	return p.commit(ctx, body)
}

// Store is not part of the Payflow dialect; card storage happens through
// recurring profiles.
func (p *PayflowProvider) Store(ctx context.Context, req provider.TransactionRequest) (*provider.Result, error) {
	return nil, provider.NewValidationError("action", "payflow: stored accounts are not supported, use a recurring profile")
}

// Unstore is not part of the Payflow dialect.
func (p *PayflowProvider) Unstore(ctx context.Context, req provider.TransactionRequest) (*provider.Result, error) {
	return nil, provider.NewValidationError("action", "payflow: stored accounts are not supported")
}

// buildSaleOrAuthorization dispatches between a reference transaction and a
// freshly tendered one.
func (p *PayflowProvider) buildSaleOrAuthorization(req provider.TransactionRequest) (*transactionBody, error) {
	if req.Tender != nil && req.Tender.Kind == provider.TenderReference {
		req.Reference = req.Tender.Reference
		req.Tender = nil
	}
	if req.Tender == nil {
		if req.Reference == "" {
			return nil, provider.NewValidationError("tender", fmt.Sprintf("%s requires a tender or a reference", req.Action))
		}
		return p.buildReferenceSaleOrAuthorization(req)
	}
	return p.buildTenderRequest(req)
}

// buildReferenceSaleOrAuthorization builds a sale or authorization that
// reuses the tender of a prior transaction via the ORIGID extension field.
func (p *PayflowProvider) buildReferenceSaleOrAuthorization(req provider.TransactionRequest) (*transactionBody, error) {
	name, ok := transactionNames[req.Action]
	if !ok {
		return nil, provider.NewValidationError("action", fmt.Sprintf("payflow: unsupported action %q", req.Action))
	}

	return &transactionBody{
		XMLName: xml.Name{Local: name},
		PayData: &payData{
			Invoice: &invoice{
				TotalAmt: p.totalAmt(req.Amount, req.Currency),
			},
			Tender: &tenderBlock{
				Card: &cardBlock{
					ExtData: []extData{{Name: "ORIGID", Value: req.Reference}},
				},
			},
		},
	}, nil
}

// buildTenderRequest builds a full transaction document carrying invoice
// data and a card or check tender block.
func (p *PayflowProvider) buildTenderRequest(req provider.TransactionRequest) (*transactionBody, error) {
	name, ok := transactionNames[req.Action]
	if !ok {
		return nil, provider.NewValidationError("action", fmt.Sprintf("payflow: unsupported action %q", req.Action))
	}
	if req.Tender == nil {
		return nil, provider.NewValidationError("tender", fmt.Sprintf("%s requires a tender", req.Action))
	}
	if err := req.Tender.Validate(); err != nil {
		return nil, err
	}

	// Whitespace-only values would defeat omitempty and put a blank
	// element on the wire.
	inv := &invoice{
		CustIP:      strings.TrimSpace(req.Options.IP),
		Description: strings.TrimSpace(req.Options.Description),
	}
	if req.Options.OrderID != "" {
		inv.InvNum = invoiceNumberJunk.ReplaceAllString(req.Options.OrderID, "")
	}
	if billing := req.Options.BillingAddress; billing != nil {
		inv.BillTo = addressBlockFor("BillTo", billing, req.Options.Email)
	}
	if shipping := req.Options.ShippingAddress; shipping != nil {
		inv.ShipTo = addressBlockFor("ShipTo", shipping, "")
	}
	if l2 := req.Options.Level2; l2 != nil {
		if l2.TaxAmount > 0 {
			inv.TaxAmt = provider.FormatAmount(l2.TaxAmount, req.Currency)
		}
		if l2.FreightAmount > 0 {
			inv.FreightAmt = provider.FormatAmount(l2.FreightAmount, req.Currency)
		}
		inv.PONum = l2.PONumber
	}
	inv.TotalAmt = p.totalAmt(req.Amount, req.Currency)

	tender, err := tenderBlockFor(req.Tender)
	if err != nil {
		return nil, err
	}

	return &transactionBody{
		XMLName: xml.Name{Local: name},
		PayData: &payData{
			Invoice: inv,
			Tender:  tender,
		},
	}, nil
}

// buildReferenceRequest builds a minimal document carrying only the action,
// the reference and, when withAmount is set, the invoice amount.
func (p *PayflowProvider) buildReferenceRequest(req provider.TransactionRequest, withAmount bool) (*transactionBody, error) {
	name, ok := transactionNames[req.Action]
	if !ok {
		return nil, provider.NewValidationError("action", fmt.Sprintf("payflow: unsupported action %q", req.Action))
	}
	if req.Reference == "" {
		return nil, provider.NewValidationError("reference", fmt.Sprintf("reference is required for %s", req.Action))
	}

	body := &transactionBody{
		XMLName: xml.Name{Local: name},
		PNRef:   req.Reference,
	}
	if withAmount {
		body.Invoice = &invoice{TotalAmt: p.totalAmt(req.Amount, req.Currency)}
	}
	return body, nil
}

func (p *PayflowProvider) totalAmt(amount int64, currency string) *totalAmt {
	if currency == "" {
		currency = "USD"
	}
	return &totalAmt{
		Currency: currency,
		Value:    provider.FormatAmount(amount, currency),
	}
}

// tenderBlockFor encodes exactly one tender variant. Card and ACH
// sub-documents are structurally incompatible and never share a tag shape.
func tenderBlockFor(tender *provider.Tender) (*tenderBlock, error) {
	switch tender.Kind {
	case provider.TenderCard:
		return &tenderBlock{Card: cardBlockFor(tender.Card)}, nil
	case provider.TenderCheck:
		return &tenderBlock{ACH: achBlockFor(tender.Check)}, nil
	default:
		return nil, provider.NewValidationError("tender.kind", fmt.Sprintf("payflow: unsupported tender kind %q", tender.Kind))
	}
}

func cardBlockFor(card *provider.Card) *cardBlock {
	block := &cardBlock{
		CardType:   cardTypeNames[card.Brand],
		CardNum:    card.Number,
		ExpDate:    expDate(card),
		NameOnCard: card.FirstName,
		CVNum:      card.VerificationValue,
	}

	if startDateBrands[card.Brand] {
		if card.StartMonth > 0 && card.StartYear > 0 {
			block.ExtData = append(block.ExtData, extData{Name: "CardStart", Value: startDate(card)})
		}
		if card.IssueNumber != "" {
			issue := card.IssueNumber
			if len(issue) == 1 {
				issue = "0" + issue
			}
			block.ExtData = append(block.ExtData, extData{Name: "CardIssue", Value: issue})
		}
	}
	block.ExtData = append(block.ExtData, extData{Name: "LASTNAME", Value: card.LastName})

	return block
}

func achBlockFor(check *provider.Check) *achBlock {
	acctType := "C"
	if check.AccountType == provider.AccountSavings {
		acctType = "S"
	}
	return &achBlock{
		AcctType: acctType,
		AcctNum:  check.AccountNumber,
		ABA:      check.RoutingNumber,
		AuthType: "WEB",
	}
}

// expDate renders the card expiry the way this dialect requires: four-digit
// year followed by two-digit month. Other dialects order these differently;
// the order is a hard per-dialect constant.
func expDate(card *provider.Card) string {
	return fmt.Sprintf("%04d%02d", card.Year, card.Month)
}

// startDate renders the optional card start date as two-digit month then
// two-digit year.
func startDate(card *provider.Card) string {
	return fmt.Sprintf("%02d%02d", card.StartMonth, card.StartYear%100)
}

func addressBlockFor(tag string, addr *provider.Address, email string) *addressBlock {
	state := addr.State
	if state == "" {
		// Payflow requires the State element; N/A is the documented filler.
		state = "N/A"
	}
	return &addressBlock{
		XMLName: xml.Name{Local: tag},
		Name:    addr.Name,
		EMail:   email,
		Phone:   addr.Phone,
		Address: addressInner{
			Street:  addr.Street,
			City:    addr.City,
			State:   state,
			Country: addr.Country,
			Zip:     addr.Zip,
		},
	}
}

// commit wraps the body in the XMLPay envelope, submits it once and decodes
// the response. No retries: Payflow flags duplicate submissions itself and
// that signal must survive.
func (p *PayflowProvider) commit(ctx context.Context, body any) (*provider.Result, error) {
	envelope := p.buildEnvelope(body, false)
	return p.send(ctx, envelope)
}

// commitRecurring is commit for recurring profile documents, which replace
// the Transactions wrapper in the envelope.
func (p *PayflowProvider) commitRecurring(ctx context.Context, profiles *recurringProfiles) (*provider.Result, error) {
	envelope := p.buildEnvelope(profiles, true)
	return p.send(ctx, envelope)
}

func (p *PayflowProvider) buildEnvelope(body any, recurring bool) *xmlPayRequest {
	envelope := &xmlPayRequest{
		Timeout: clientTimeout,
		Version: xmlpayVersion,
		Xmlns:   xmlpayNamespace,
		RequestData: requestData{
			Vendor:  p.vendor,
			Partner: p.partner,
		},
		RequestAuth: requestAuth{
			UserPass: userPass{
				User:     p.user,
				Password: p.password,
			},
		},
	}
	if recurring {
		envelope.RequestData.RecurringProfiles = body.(*recurringProfiles)
	} else {
		envelope.RequestData.Transactions = &transactions{
			Transaction: transaction{
				Verbosity: "MEDIUM",
				Body:      body,
			},
		}
	}
	return envelope
}

func (p *PayflowProvider) send(ctx context.Context, envelope *xmlPayRequest) (*provider.Result, error) {
	document, err := xml.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("payflow: failed to encode request: %w", err)
	}

	resp, err := p.httpClient.SendXML(ctx, &provider.HTTPRequest{
		Endpoint: p.baseURL,
		Body:     document,
		Headers: map[string]string{
			"X-VPS-REQUEST-ID":              uuid.New().String(),
			"X-VPS-CLIENT-TIMEOUT":          strconv.Itoa(clientTimeout),
			"X-VPS-VIT-INTEGRATION-PRODUCT": "paywire",
		},
	})
	if err != nil {
		return nil, err
	}

	return p.decode(resp.Body)
}

// decode normalizes an XMLPay response. The ResponseData container may sit
// at any depth; its flattened fields drive the table below. A decline is a
// Result with Success=false, never an error.
func (p *PayflowProvider) decode(raw []byte) (*provider.Result, error) {
	fields, err := provider.FlattenContainer(raw, "ResponseData")
	if err != nil {
		return nil, err
	}

	authorization := fields["pn_ref"]
	if authorization == "" {
		// Recurring profile operations answer with an RPRef and ProfileID
		// instead of a PNRef.
		authorization = fields["rp_ref"]
	}

	return &provider.Result{
		Success:       fields["result"] == approvedResult,
		Message:       fields["message"],
		Authorization: authorization,
		Fields:        fields,
		CVVResult:     fields["cv_result"],
		AVSResult:     fields["avs_result"],
		Duplicate:     fields["transaction_result_duplicate"] == "1",
		Test:          !p.isProduction,
	}, nil
}
