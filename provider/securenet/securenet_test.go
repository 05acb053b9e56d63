package securenet

import (
	"context"
	"encoding/xml"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/paywire/paywire/provider"
)

func TestNewProvider(t *testing.T) {
	gw := NewProvider()
	if gw == nil {
		t.Fatal("NewProvider() should not return nil")
	}
	if _, ok := gw.(*SecureNetProvider); !ok {
		t.Error("NewProvider() should return *SecureNetProvider")
	}
}

func TestSecureNetProvider_Initialize(t *testing.T) {
	tests := []struct {
		name        string
		config      map[string]string
		expectError bool
		expectProd  bool
		expectURL   string
	}{
		{
			name: "Valid sandbox config",
			config: map[string]string{
				"securenetId": "8001234",
				"secureKey":   "ABcd1234EFgh5678",
				"environment": "sandbox",
			},
			expectURL: apiSandboxURL,
		},
		{
			name: "Valid production config",
			config: map[string]string{
				"securenetId": "8001234",
				"secureKey":   "ABcd1234EFgh5678",
				"environment": "production",
			},
			expectProd: true,
			expectURL:  apiProductionURL,
		},
		{
			name: "Missing secureKey",
			config: map[string]string{
				"securenetId": "8001234",
			},
			expectError: true,
		},
		{
			name:        "Empty config",
			config:      map[string]string{},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProvider().(*SecureNetProvider)
			err := p.Initialize(tt.config)

			if tt.expectError {
				if err == nil {
					t.Error("Expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if p.isProduction != tt.expectProd {
				t.Errorf("Expected isProduction %v, got %v", tt.expectProd, p.isProduction)
			}
			if p.baseURL != tt.expectURL {
				t.Errorf("Expected baseURL %s, got %s", tt.expectURL, p.baseURL)
			}
		})
	}
}

func TestExpDate(t *testing.T) {
	got := expDate(&provider.Card{Month: 3, Year: 2025})
	if got != "0325" {
		t.Errorf("expDate = %q, want %q", got, "0325")
	}

	got = expDate(&provider.Card{Month: 11, Year: 2030})
	if got != "1130" {
		t.Errorf("expDate = %q, want %q", got, "1130")
	}
}

func testProvider(environment string) *SecureNetProvider {
	p := NewProvider().(*SecureNetProvider)
	_ = p.Initialize(map[string]string{
		"securenetId": "8001234",
		"secureKey":   "ABcd1234EFgh5678",
		"environment": environment,
	})
	return p
}

func testCard() *provider.Tender {
	return &provider.Tender{
		Kind: provider.TenderCard,
		Card: &provider.Card{
			Number:            "4242424242424242",
			Month:             9,
			Year:              2028,
			FirstName:         "Longbob",
			LastName:          "Longsen",
			VerificationValue: "123",
		},
	}
}

func TestEnvelopeShape(t *testing.T) {
	envelope := soapEnvelope{
		XSI:    "http://www.w3.org/2001/XMLSchema-instance",
		XSD:    "http://www.w3.org/2001/XMLSchema",
		Soap12: "http://www.w3.org/2003/05/soap-envelope",
		Body: soapBody{Operation: soapOperation{
			XMLName: xml.Name{Local: "Process"},
			Xmlns:   gatewayNamespace,
			Transaction: &transactionInfo{
				SecurenetID: "8001234",
				SecureKey:   "ABcd1234EFgh5678",
				Test:        alwaysFalseTestFlag,
				OrderID:     "order-1",
				Method:      methodCard,
				Type:        typeAuthCapture,
				Amount:      "100.00",
				CardNum:     "4242424242424242",
				ExpDate:     "0928",
			},
		}},
	}

	document, err := xml.Marshal(envelope)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	want := `<soap12:Envelope` +
		` xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"` +
		` xmlns:xsd="http://www.w3.org/2001/XMLSchema"` +
		` xmlns:soap12="http://www.w3.org/2003/05/soap-envelope">` +
		`<soap12:Body><Process xmlns="https://gateway.securenet.com/"><oTi>` +
		`<SecurenetID>8001234</SecurenetID><SecureKey>ABcd1234EFgh5678</SecureKey>` +
		`<Test>FALSE</Test><OrderID>order-1</OrderID><Method>CC</Method>` +
		`<Type>AUTH_CAPTURE</Type><Amount>100.00</Amount>` +
		`<Card_num>4242424242424242</Card_num><Exp_date>0928</Exp_date>` +
		`</oTi></Process></soap12:Body></soap12:Envelope>`

	if string(document) != want {
		t.Errorf("Envelope mismatch:\ngot  %s\nwant %s", document, want)
	}
}

func TestProcessTransaction_Preconditions(t *testing.T) {
	p := testProvider("sandbox")
	ctx := context.Background()

	// Order id is mandatory for every fresh transaction.
	_, err := p.Purchase(ctx, provider.TransactionRequest{Amount: 1000, Tender: testCard()})
	if !provider.IsValidationError(err) {
		t.Errorf("Expected a validation error, got %v", err)
	}

	// Authorization of a check is rejected locally.
	_, err = p.Authorize(ctx, provider.TransactionRequest{
		Amount: 1000,
		Tender: &provider.Tender{
			Kind:  provider.TenderCheck,
			Check: &provider.Check{AccountNumber: "15378535", RoutingNumber: "244183602"},
		},
		Options: provider.TransactionOptions{OrderID: "order-1"},
	})
	if !provider.IsValidationError(err) {
		t.Errorf("Expected a validation error, got %v", err)
	}

	// Checks need a bank name.
	_, err = p.Purchase(ctx, provider.TransactionRequest{
		Amount: 1000,
		Tender: &provider.Tender{
			Kind:  provider.TenderCheck,
			Check: &provider.Check{AccountNumber: "15378535", RoutingNumber: "244183602"},
		},
		Options: provider.TransactionOptions{OrderID: "order-1"},
	})
	if !provider.IsValidationError(err) {
		t.Errorf("Expected a validation error, got %v", err)
	}

	// Capture and credit need both reference and amount.
	_, err = p.Capture(ctx, provider.TransactionRequest{Amount: 1000})
	if !provider.IsValidationError(err) {
		t.Errorf("Expected a validation error, got %v", err)
	}
	_, err = p.Capture(ctx, provider.TransactionRequest{Reference: "123456"})
	if !provider.IsValidationError(err) {
		t.Errorf("Expected a validation error, got %v", err)
	}
	_, err = p.Credit(ctx, provider.TransactionRequest{Reference: "123456"})
	if !provider.IsValidationError(err) {
		t.Errorf("Expected a validation error, got %v", err)
	}

	// Unsupported operations fail without a network round trip.
	_, err = p.Inquiry(ctx, provider.TransactionRequest{Reference: "123456"})
	if !provider.IsValidationError(err) {
		t.Errorf("Expected a validation error, got %v", err)
	}
	_, err = p.Recurring(ctx, provider.TransactionRequest{Action: provider.ActionRecurringAdd})
	if !provider.IsValidationError(err) {
		t.Errorf("Expected a validation error, got %v", err)
	}
}

func TestBaseTransaction_TestFlagStaysFalse(t *testing.T) {
	// The Test element is pinned to FALSE in both environments; the host
	// selection carries the sandbox distinction.
	for _, environment := range []string{"sandbox", "production"} {
		p := testProvider(environment)
		info := p.baseTransaction(provider.TransactionRequest{
			Amount:  1000,
			Options: provider.TransactionOptions{OrderID: "order-1"},
		}, typeAuthCapture)
		if info.Test != "FALSE" {
			t.Errorf("%s: Test = %q, want FALSE", environment, info.Test)
		}
	}
}

func newTestGateway(t *testing.T, response string) (*SecureNetProvider, *[]byte) {
	t.Helper()

	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)

	p := testProvider("sandbox")
	p.baseURL = server.URL
	p.httpClient = provider.NewProviderHTTPClient(provider.CreateHTTPClientConfig(server.URL, false))
	return p, &gotBody
}

const approvedProcessResponse = `<soap12:Envelope xmlns:soap12="http://www.w3.org/2003/05/soap-envelope">
  <soap12:Body><ProcessResponse xmlns="https://gateway.securenet.com/"><ProcessResult>
    <Response_Code>1</Response_Code>
    <Response_Reason_Text>Approved</Response_Reason_Text>
    <Approval_Code>GHJI09</Approval_Code>
    <Transaction_ID>123456789</Transaction_ID>
    <CAVV_Response_Code>M</CAVV_Response_Code>
    <AVS_Result_Code>Y</AVS_Result_Code>
  </ProcessResult></ProcessResponse></soap12:Body>
</soap12:Envelope>`

func TestPurchase_EndToEnd(t *testing.T) {
	p, gotBody := newTestGateway(t, approvedProcessResponse)

	result, err := p.Purchase(context.Background(), provider.TransactionRequest{
		Amount: 10000,
		Tender: testCard(),
		Options: provider.TransactionOptions{
			OrderID:     "order-1",
			Description: "Test purchase",
			Email:       "buyer@example.com",
			BillingAddress: &provider.Address{
				Street: "123 Main St",
				City:   "Durham",
				State:  "NC",
				Zip:    "27701",
			},
		},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !result.Success {
		t.Error("Expected an approved result")
	}
	if result.Authorization != "GHJI09" {
		t.Errorf("Authorization = %q, want GHJI09", result.Authorization)
	}
	if result.CVVResult != "M" || result.AVSResult != "Y" {
		t.Errorf("CVV/AVS = %q/%q", result.CVVResult, result.AVSResult)
	}
	if !result.Test {
		t.Error("Sandbox results should be flagged Test")
	}

	body := string(*gotBody)
	if !strings.HasPrefix(body, xml.Header) {
		t.Error("SOAP documents go out with an XML declaration")
	}
	for _, fragment := range []string{
		`<Type>AUTH_CAPTURE</Type>`,
		`<Amount>100.00</Amount>`,
		`<Exp_date>0928</Exp_date>`,
		`<Test>FALSE</Test>`,
		`<Invoice_num>order-1</Invoice_num>`,
		`<State>NC</State>`,
	} {
		if !strings.Contains(body, fragment) {
			t.Errorf("Request body missing %s:\n%s", fragment, body)
		}
	}
}

func TestPurchase_BlankOptionalFields(t *testing.T) {
	p, gotBody := newTestGateway(t, approvedProcessResponse)

	_, err := p.Purchase(context.Background(), provider.TransactionRequest{
		Amount: 10000,
		Tender: testCard(),
		Options: provider.TransactionOptions{
			Description: "  ",
			Email:       " ",
		},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	body := string(*gotBody)
	for _, fragment := range []string{"<Description>", "<Email>"} {
		if strings.Contains(body, fragment) {
			t.Errorf("Whitespace-only field %s must stay off the wire:\n%s", fragment, body)
		}
	}
}

func TestDecline(t *testing.T) {
	response := strings.ReplaceAll(approvedProcessResponse, "<Response_Code>1</Response_Code>", "<Response_Code>2</Response_Code>")
	response = strings.ReplaceAll(response, "Approved", "CARD DECLINED")
	p, _ := newTestGateway(t, response)

	result, err := p.Purchase(context.Background(), provider.TransactionRequest{
		Amount:  10000,
		Tender:  testCard(),
		Options: provider.TransactionOptions{OrderID: "order-1"},
	})
	if err != nil {
		t.Fatalf("A decline must not surface as an error: %v", err)
	}
	if result.Success {
		t.Error("Expected a declined result")
	}
	if result.Message != "CARD DECLINED" {
		t.Errorf("Message = %q", result.Message)
	}
}

func TestVoid_OmitsAmount(t *testing.T) {
	p, gotBody := newTestGateway(t, approvedProcessResponse)

	_, err := p.Void(context.Background(), provider.TransactionRequest{
		Amount:    10000,
		Reference: "123456789",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	body := string(*gotBody)
	if strings.Contains(body, "<Amount>") {
		t.Errorf("Void must not carry an amount:\n%s", body)
	}
	if !strings.Contains(body, `<Trans_id>123456789</Trans_id>`) {
		t.Errorf("Void must reference the prior transaction:\n%s", body)
	}
	if !strings.Contains(body, `<Type>VOID</Type>`) {
		t.Errorf("Type mismatch:\n%s", body)
	}
}

const approvedVaultResponse = `<soap12:Envelope xmlns:soap12="http://www.w3.org/2003/05/soap-envelope">
  <soap12:Body><ProcessVaultResponse xmlns="https://gateway.securenet.com/"><ProcessVaultResult>
    <Response_Code>1</Response_Code>
    <Response_Reason_Text>Account added</Response_Reason_Text>
  </ProcessVaultResult></ProcessVaultResponse></soap12:Body>
</soap12:Envelope>`

func TestStore(t *testing.T) {
	p, gotBody := newTestGateway(t, approvedVaultResponse)

	result, err := p.Store(context.Background(), provider.TransactionRequest{
		Reference: "customer-7",
		Tender:    testCard(),
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.Success {
		t.Error("Expected an approved result")
	}

	body := string(*gotBody)
	for _, fragment := range []string{
		`<ProcessVault xmlns="https://gateway.securenet.com/"><oVi>`,
		`<Customer_id>customer-7</Customer_id>`,
		`<Action>ADD_ACCOUNT</Action>`,
		`<Card_num>4242424242424242</Card_num>`,
	} {
		if !strings.Contains(body, fragment) {
			t.Errorf("Request body missing %s:\n%s", fragment, body)
		}
	}
}

func TestStore_GeneratesCustomerID(t *testing.T) {
	p, gotBody := newTestGateway(t, approvedVaultResponse)

	_, err := p.Store(context.Background(), provider.TransactionRequest{Tender: testCard()})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(string(*gotBody), "<Customer_id>") {
		t.Error("Store without a reference should generate a customer id")
	}
}

func TestUnstore(t *testing.T) {
	p, gotBody := newTestGateway(t, approvedVaultResponse)

	_, err := p.Unstore(context.Background(), provider.TransactionRequest{
		Tender: &provider.Tender{
			Kind:          provider.TenderStoredAccount,
			StoredAccount: &provider.StoredAccount{CustomerID: "customer-7", PaymentID: "1"},
		},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	body := string(*gotBody)
	for _, fragment := range []string{
		`<Customer_id>customer-7</Customer_id>`,
		`<Payment_id>1</Payment_id>`,
		`<Action>DELETE_ACCOUNT</Action>`,
	} {
		if !strings.Contains(body, fragment) {
			t.Errorf("Request body missing %s:\n%s", fragment, body)
		}
	}

	// Unstore without a stored account tender fails locally.
	_, err = p.Unstore(context.Background(), provider.TransactionRequest{})
	if !provider.IsValidationError(err) {
		t.Errorf("Expected a validation error, got %v", err)
	}
}

func TestStoredAccountPurchase(t *testing.T) {
	p, gotBody := newTestGateway(t, approvedProcessResponse)

	_, err := p.Purchase(context.Background(), provider.TransactionRequest{
		Amount: 2500,
		Tender: &provider.Tender{
			Kind:          provider.TenderStoredAccount,
			StoredAccount: &provider.StoredAccount{CustomerID: "customer-7", PaymentID: "1"},
		},
		Options: provider.TransactionOptions{OrderID: "order-2"},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	body := string(*gotBody)
	if !strings.Contains(body, `<Method>CC</Method>`) {
		t.Errorf("Stored account transactions go out as CC:\n%s", body)
	}
	if !strings.Contains(body, `<Customer_id>customer-7</Customer_id>`) || !strings.Contains(body, `<Payment_id>1</Payment_id>`) {
		t.Errorf("Stored account ids missing:\n%s", body)
	}
	if strings.Contains(body, "Card_num") {
		t.Errorf("Stored account purchase must not carry card data:\n%s", body)
	}
}
