package provider

import (
	"errors"
	"testing"
)

func TestUnderscore(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Result", "result"},
		{"ResponseCode", "response_code"},
		{"PNRef", "pn_ref"},
		{"RPRef", "rp_ref"},
		{"AVSResult", "avs_result"},
		{"HostCode", "host_code"},
		{"Trans_id", "trans_id"},
		{"Duplicate", "duplicate"},
		{"AUTHCODE", "authcode"},
		{"Some-Name", "some_name"},
	}

	for _, tt := range tests {
		if got := Underscore(tt.in); got != tt.want {
			t.Errorf("Underscore(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFlattenContainer(t *testing.T) {
	raw := []byte(`<?xml version="1.0"?>
<XMLPayResponse xmlns="http://www.paypal.com/XMLPay">
  <ResponseData>
    <Vendor>sam</Vendor>
    <TransactionResults>
      <TransactionResult Duplicate="1">
        <Result>0</Result>
        <Message>Approved</Message>
        <PNRef>VXYZ01234567</PNRef>
        <AVSResult>
          <StreetMatch>Match</StreetMatch>
          <ZipMatch>Match</ZipMatch>
        </AVSResult>
      </TransactionResult>
    </TransactionResults>
  </ResponseData>
</XMLPayResponse>`)

	fields, err := FlattenContainer(raw, "ResponseData")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := map[string]string{
		"vendor":                       "sam",
		"result":                       "0",
		"message":                      "Approved",
		"pn_ref":                       "VXYZ01234567",
		"street_match":                 "Match",
		"zip_match":                    "Match",
		"transaction_result_duplicate": "1",
	}
	for key, value := range want {
		if fields[key] != value {
			t.Errorf("fields[%q] = %q, want %q", key, fields[key], value)
		}
	}

	// Elements with children carry no text key of their own.
	if _, ok := fields["transaction_results"]; ok {
		t.Error("branch element should not produce a text field")
	}
}

func TestFlattenContainer_NestedContainer(t *testing.T) {
	raw := []byte(`<soap12:Envelope xmlns:soap12="http://www.w3.org/2003/05/soap-envelope">
  <soap12:Body>
    <ProcessResponse xmlns="https://gateway.securenet.com/">
      <ProcessResult>
        <Response_code>1</Response_code>
        <Response_reason_text>Approved</Response_reason_text>
        <Approval_code>GHJI09</Approval_code>
      </ProcessResult>
    </ProcessResponse>
  </soap12:Body>
</soap12:Envelope>`)

	fields, err := FlattenContainer(raw, "ProcessResult")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if fields["response_code"] != "1" {
		t.Errorf("response_code = %q, want %q", fields["response_code"], "1")
	}
	if fields["approval_code"] != "GHJI09" {
		t.Errorf("approval_code = %q, want %q", fields["approval_code"], "GHJI09")
	}
}

func TestFlattenContainer_MissingContainer(t *testing.T) {
	_, err := FlattenContainer([]byte(`<Other><Result>0</Result></Other>`), "ResponseData")
	if !IsParseError(err) {
		t.Errorf("Expected a parse error, got %v", err)
	}
}

func TestFlattenContainer_Malformed(t *testing.T) {
	_, err := FlattenContainer([]byte(`<ResponseData><Result>0`), "ResponseData")
	if !IsParseError(err) {
		t.Errorf("Expected a parse error, got %v", err)
	}
}

func TestErrorHelpers(t *testing.T) {
	validation := NewValidationError("amount", "must be positive")
	if !IsValidationError(validation) {
		t.Error("IsValidationError should match a *ValidationError")
	}
	if IsValidationError(errors.New("other")) {
		t.Error("IsValidationError should not match an arbitrary error")
	}

	transport := &TransportError{Cause: errors.New("connection refused")}
	if !IsTransportError(transport) {
		t.Error("IsTransportError should match a *TransportError")
	}
	if !errors.Is(transport, transport.Cause) {
		t.Error("TransportError should unwrap to its cause")
	}

	parse := &ParseError{Detail: "bad xml"}
	if !IsParseError(parse) {
		t.Error("IsParseError should match a *ParseError")
	}
	if IsParseError(validation) {
		t.Error("IsParseError should not match a validation error")
	}
}
