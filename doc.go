// Package paywire is an adapter layer for XML-speaking payment processors.
// It converts a normalized description of a payment operation (purchase,
// authorize, capture, credit, void, recurring-profile and stored-account
// management) into the proprietary wire format of a specific processor,
// submits it over HTTPS, and normalizes the processor's response into a
// single canonical result.
//
// # Architecture
//
// Each processor dialect lives in its own package under provider/ and
// implements the provider.GatewayProvider interface:
//
//	caller -> TransactionRequest -> dialect encoder -> XML document
//	       -> HTTPS transport -> raw response -> dialect decoder -> Result
//
// Dialects are independent implementations selected by configuration, not
// variations of a shared template: field names, casing, authentication
// placement and status vocabularies diverge too irregularly for that.
//
// # Supported Processors
//
//   - Payflow Pro: XMLPay 2.1, card/ACH tenders, reference transactions,
//     recurring billing profiles
//   - SecureNet: SOAP 1.2 gateway XML, card/ACH tenders, payment vault
//
// # Quick Start
//
//	package main
//
//	import (
//	    "context"
//
//	    "github.com/paywire/paywire/provider"
//	    _ "github.com/paywire/paywire/provider/payflow" // register dialect
//	)
//
//	func main() {
//	    gw, err := provider.CreateProvider("payflow")
//	    if err != nil {
//	        panic(err)
//	    }
//	    err = gw.Initialize(map[string]string{
//	        "partner":     "PayPal",
//	        "vendor":      "my-vendor",
//	        "password":    "my-password",
//	        "environment": "sandbox",
//	    })
//	    if err != nil {
//	        panic(err)
//	    }
//
//	    req := provider.TransactionRequest{
//	        Action:   provider.ActionPurchase,
//	        Amount:   10000, // minor units
//	        Currency: "USD",
//	        Tender: &provider.Tender{
//	            Kind: provider.TenderCard,
//	            Card: &provider.Card{
//	                Number: "4111111111111111",
//	                Month:  3, Year: 2030,
//	                FirstName: "Jane", LastName: "Doe",
//	                VerificationValue: "123",
//	            },
//	        },
//	    }
//	    result, err := gw.Purchase(context.Background(), req)
//	    if err != nil {
//	        panic(err) // validation, transport or parse failure
//	    }
//	    if !result.Success {
//	        // gateway decline is data, not an error
//	        println(result.Message)
//	    }
//	}
//
// # Error Model
//
// Public operations return (*Result, error). The error is non-nil only for
// local validation failures, transport failures, or unparseable responses.
// A decline from the processor is a normal Result with Success=false.
//
// # HTTP API
//
// The cmd/ server exposes the uniform operation set over REST:
//
//	POST   /v1/payments/{provider}              # action carried in the body
//	POST   /v1/payments/{provider}/refund
//	GET    /v1/payments/{provider}/{reference}  # inquiry
//	DELETE /v1/payments/{provider}/{reference}  # void
//	POST   /v1/recurring/{provider}
//	POST   /v1/vault/{provider}
//	DELETE /v1/vault/{provider}
//	...
//
// Per-tenant processor credentials are resolved from the SQLite-backed
// configuration store; transaction request/response pairs are indexed to
// OpenSearch when logging is enabled.
package paywire
