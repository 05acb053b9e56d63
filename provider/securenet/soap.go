package securenet

import "encoding/xml"

// SOAP 1.2 envelope shapes. The prefixed tag names are written literally;
// the gateway matches them as bytes, not as namespace-qualified names, so
// the exact casing and prefix spelling here are part of the contract.

type soapEnvelope struct {
	XMLName xml.Name `xml:"soap12:Envelope"`
	XSI     string   `xml:"xmlns:xsi,attr"`
	XSD     string   `xml:"xmlns:xsd,attr"`
	Soap12  string   `xml:"xmlns:soap12,attr"`
	Body    soapBody
}

type soapBody struct {
	XMLName   xml.Name `xml:"soap12:Body"`
	Operation soapOperation
}

// soapOperation is the operation element (Process, ProcessVault) carrying
// either a transaction or a vault block.
type soapOperation struct {
	XMLName     xml.Name
	Xmlns       string `xml:"xmlns,attr"`
	Transaction *transactionInfo
	Vault       *vaultInfo
}

// transactionInfo is the oTi transaction block. Field order is wire order.
// Credentials are embedded here, inside the operation body, not in a SOAP
// header: that placement is this dialect's authentication contract.
type transactionInfo struct {
	XMLName     xml.Name `xml:"oTi"`
	SecurenetID string   `xml:"SecurenetID"`
	SecureKey   string   `xml:"SecureKey"`
	Test        string   `xml:"Test"`
	OrderID     string   `xml:"OrderID,omitempty"`
	Method      string   `xml:"Method"`
	Type        string   `xml:"Type"`
	Amount      string   `xml:"Amount,omitempty"`
	TransID     string   `xml:"Trans_id,omitempty"`

	// Card fields
	CardNum  string `xml:"Card_num,omitempty"`
	ExpDate  string `xml:"Exp_date,omitempty"`
	CardCode string `xml:"Card_code,omitempty"`

	// ECHECK fields
	BankABACode  string `xml:"Bank_aba_code,omitempty"`
	BankAcctNum  string `xml:"Bank_acct_num,omitempty"`
	BankAcctType string `xml:"Bank_acct_type,omitempty"`
	BankName     string `xml:"Bank_name,omitempty"`
	BankAcctName string `xml:"Bank_acct_name,omitempty"`

	// Stored account fields
	CustomerID string `xml:"Customer_id,omitempty"`
	PaymentID  string `xml:"Payment_id,omitempty"`

	// Customer fields
	FirstName string `xml:"First_name,omitempty"`
	LastName  string `xml:"Last_name,omitempty"`
	Address   string `xml:"Address,omitempty"`
	City      string `xml:"City,omitempty"`
	State     string `xml:"State,omitempty"`
	Zip       string `xml:"Zip,omitempty"`
	Country   string `xml:"Country,omitempty"`
	Phone     string `xml:"Phone,omitempty"`
	Email     string `xml:"Email,omitempty"`

	// Invoice and level-2 fields
	InvoiceNum  string `xml:"Invoice_num,omitempty"`
	Description string `xml:"Description,omitempty"`
	Tax         string `xml:"Tax,omitempty"`
	Freight     string `xml:"Freight,omitempty"`
	PONum       string `xml:"Po_num,omitempty"`
	CustomerIP  string `xml:"Customer_ip,omitempty"`
}

// vaultInfo is the oVi vault block for stored account management.
type vaultInfo struct {
	XMLName     xml.Name `xml:"oVi"`
	SecurenetID string   `xml:"SecurenetID"`
	SecureKey   string   `xml:"SecureKey"`
	Test        string   `xml:"Test"`
	CustomerID  string   `xml:"Customer_id"`
	PaymentID   string   `xml:"Payment_id,omitempty"`
	Action      string   `xml:"Action"`

	// Card fields
	CardNum   string `xml:"Card_num,omitempty"`
	ExpDate   string `xml:"Exp_date,omitempty"`
	FirstName string `xml:"First_name,omitempty"`
	LastName  string `xml:"Last_name,omitempty"`

	// ECHECK fields
	BankABACode  string `xml:"Bank_aba_code,omitempty"`
	BankAcctNum  string `xml:"Bank_acct_num,omitempty"`
	BankAcctType string `xml:"Bank_acct_type,omitempty"`
	BankName     string `xml:"Bank_name,omitempty"`
	BankAcctName string `xml:"Bank_acct_name,omitempty"`
}
