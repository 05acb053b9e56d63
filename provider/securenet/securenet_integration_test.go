package securenet

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/paywire/paywire/provider"
)

// Integration tests against the SecureNet certification gateway.
//
// These tests make real HTTP requests to certify.securenet.com. To run them,
// export certification credentials first:
//
//	export SECURENET_ID=your-securenet-id
//	export SECURENET_KEY=your-secure-key
//	go test -v ./provider/securenet/ -run TestIntegration

func getIntegrationProvider(t *testing.T) *SecureNetProvider {
	securenetID := os.Getenv("SECURENET_ID")
	secureKey := os.Getenv("SECURENET_KEY")

	if securenetID == "" || secureKey == "" {
		t.Skip("Set SECURENET_ID and SECURENET_KEY to run SecureNet integration tests")
	}

	p := NewProvider().(*SecureNetProvider)
	err := p.Initialize(map[string]string{
		"securenetId": securenetID,
		"secureKey":   secureKey,
		"environment": "sandbox",
	})
	if err != nil {
		t.Fatalf("Failed to initialize SecureNet provider: %v", err)
	}
	if p.isProduction {
		t.Fatal("Integration tests must use the sandbox environment")
	}
	return p
}

func integrationCard() *provider.Tender {
	return &provider.Tender{
		Kind: provider.TenderCard,
		Card: &provider.Card{
			Number:            "4111111111111111",
			Month:             12,
			Year:              time.Now().Year() + 2,
			FirstName:         "Longbob",
			LastName:          "Longsen",
			VerificationValue: "123",
		},
	}
}

func integrationOrderID() string {
	return fmt.Sprintf("it-%d", time.Now().UnixNano())
}

func TestIntegrationPurchase(t *testing.T) {
	p := getIntegrationProvider(t)

	result, err := p.Purchase(context.Background(), provider.TransactionRequest{
		Amount:  10000,
		Tender:  integrationCard(),
		Options: provider.TransactionOptions{OrderID: integrationOrderID()},
	})
	if err != nil {
		t.Fatalf("Purchase failed: %v", err)
	}
	if !result.Success {
		t.Fatalf("Purchase declined: %s", result.Message)
	}
	if result.Authorization == "" {
		t.Error("Approved purchase should carry an approval code")
	}
}

func TestIntegrationAuthorizeCaptureCreditCycle(t *testing.T) {
	p := getIntegrationProvider(t)
	ctx := context.Background()

	auth, err := p.Authorize(ctx, provider.TransactionRequest{
		Amount:  10000,
		Tender:  integrationCard(),
		Options: provider.TransactionOptions{OrderID: integrationOrderID()},
	})
	if err != nil {
		t.Fatalf("Authorize failed: %v", err)
	}
	if !auth.Success {
		t.Fatalf("Authorize declined: %s", auth.Message)
	}

	transactionID := auth.Fields["transaction_id"]
	if transactionID == "" {
		t.Fatal("Authorize should return a transaction id")
	}

	capture, err := p.Capture(ctx, provider.TransactionRequest{
		Amount:    10000,
		Reference: transactionID,
		Options:   provider.TransactionOptions{OrderID: integrationOrderID()},
	})
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if !capture.Success {
		t.Fatalf("Capture declined: %s", capture.Message)
	}

	credit, err := p.Credit(ctx, provider.TransactionRequest{
		Amount:    10000,
		Reference: capture.Fields["transaction_id"],
		Options:   provider.TransactionOptions{OrderID: integrationOrderID()},
	})
	if err != nil {
		t.Fatalf("Credit failed: %v", err)
	}
	// Crediting an unsettled capture declines on the certification host;
	// both outcomes exercise the round trip.
	t.Logf("Credit result: success=%v message=%s", credit.Success, credit.Message)
}

func TestIntegrationVaultLifecycle(t *testing.T) {
	p := getIntegrationProvider(t)
	ctx := context.Background()

	customerID := fmt.Sprintf("it-cust-%d", time.Now().UnixNano())

	store, err := p.Store(ctx, provider.TransactionRequest{
		Reference: customerID,
		Tender:    integrationCard(),
	})
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if !store.Success {
		t.Fatalf("Store declined: %s", store.Message)
	}

	unstore, err := p.Unstore(ctx, provider.TransactionRequest{
		Tender: &provider.Tender{
			Kind:          provider.TenderStoredAccount,
			StoredAccount: &provider.StoredAccount{CustomerID: customerID, PaymentID: "1"},
		},
	})
	if err != nil {
		t.Fatalf("Unstore failed: %v", err)
	}
	if !unstore.Success {
		t.Errorf("Unstore declined: %s", unstore.Message)
	}
}
