package payflow

import "encoding/xml"

// XMLPay 2.1 request document shapes. Field order inside each struct is the
// wire order; the gateway validates against a strict schema.

type xmlPayRequest struct {
	XMLName     xml.Name `xml:"XMLPayRequest"`
	Timeout     int      `xml:"Timeout,attr"`
	Version     string   `xml:"version,attr"`
	Xmlns       string   `xml:"xmlns,attr"`
	RequestData requestData
	RequestAuth requestAuth
}

type requestData struct {
	XMLName           xml.Name `xml:"RequestData"`
	Vendor            string   `xml:"Vendor"`
	Partner           string   `xml:"Partner"`
	Transactions      *transactions
	RecurringProfiles *recurringProfiles
}

type requestAuth struct {
	XMLName  xml.Name `xml:"RequestAuth"`
	UserPass userPass
}

type userPass struct {
	XMLName  xml.Name `xml:"UserPass"`
	User     string   `xml:"User"`
	Password string   `xml:"Password"`
}

type transactions struct {
	XMLName     xml.Name `xml:"Transactions"`
	Transaction transaction
}

type transaction struct {
	XMLName   xml.Name `xml:"Transaction"`
	Verbosity string   `xml:"Verbosity"`
	Body      any
}

// transactionBody is the operation-specific element (Sale, Authorization,
// Credit, Capture, Void, GetStatus). Reference operations carry only PNRef
// and optionally an Invoice; tendered operations carry a PayData block.
type transactionBody struct {
	XMLName xml.Name
	PNRef   string `xml:"PNRef,omitempty"`
	Invoice *invoice
	PayData *payData
}

type payData struct {
	XMLName xml.Name `xml:"PayData"`
	Invoice *invoice
	Tender  *tenderBlock
}

type invoice struct {
	XMLName     xml.Name `xml:"Invoice"`
	CustIP      string   `xml:"CustIP,omitempty"`
	InvNum      string   `xml:"InvNum,omitempty"`
	Description string   `xml:"Description,omitempty"`
	BillTo      *addressBlock
	ShipTo      *addressBlock
	TaxAmt      string `xml:"TaxAmt,omitempty"`
	FreightAmt  string `xml:"FreightAmt,omitempty"`
	PONum       string `xml:"PONum,omitempty"`
	TotalAmt    *totalAmt
}

type totalAmt struct {
	XMLName  xml.Name `xml:"TotalAmt"`
	Currency string   `xml:"Currency,attr"`
	Value    string   `xml:",chardata"`
}

type addressBlock struct {
	XMLName xml.Name
	Name    string `xml:"Name,omitempty"`
	EMail   string `xml:"EMail,omitempty"`
	Phone   string `xml:"Phone,omitempty"`
	Address addressInner
}

type addressInner struct {
	XMLName xml.Name `xml:"Address"`
	Street  string   `xml:"Street,omitempty"`
	City    string   `xml:"City,omitempty"`
	State   string   `xml:"State"`
	Country string   `xml:"Country,omitempty"`
	Zip     string   `xml:"Zip,omitempty"`
}

// tenderBlock holds exactly one tender sub-document; the gateway rejects
// envelopes carrying both a Card and an ACH element.
type tenderBlock struct {
	XMLName xml.Name `xml:"Tender"`
	Card    *cardBlock
	ACH     *achBlock
}

// cardBlock covers both Card shapes the gateway accepts: full card data, or
// a lone ORIGID extension field when reusing a prior transaction's tender.
type cardBlock struct {
	XMLName    xml.Name `xml:"Card"`
	CardType   string   `xml:"CardType,omitempty"`
	CardNum    string   `xml:"CardNum,omitempty"`
	ExpDate    string   `xml:"ExpDate,omitempty"`
	NameOnCard string   `xml:"NameOnCard,omitempty"`
	CVNum      string   `xml:"CVNum,omitempty"`
	ExtData    []extData
}

type achBlock struct {
	XMLName  xml.Name `xml:"ACH"`
	AcctType string   `xml:"AcctType"`
	AcctNum  string   `xml:"AcctNum"`
	ABA      string   `xml:"ABA"`
	AuthType string   `xml:"AuthType"`
}

type extData struct {
	XMLName xml.Name `xml:"ExtData"`
	Name    string   `xml:"Name,attr"`
	Value   string   `xml:"Value,attr"`
}

// Recurring profile document shapes.

type recurringProfiles struct {
	XMLName xml.Name `xml:"RecurringProfiles"`
	Profile recurringProfile
}

type recurringProfile struct {
	XMLName xml.Name `xml:"RecurringProfile"`
	Action  recurringActionBody
}

// recurringActionBody is the action element (Add, Modify, Cancel, Inquiry,
// Reactivate, Payment). Add/modify carry the profile body and tender;
// cancel/inquiry/reactivate/payment carry only the profile id, plus the
// history flag for inquiry.
type recurringActionBody struct {
	XMLName        xml.Name
	RPData         *rpData
	Tender         *tenderBlock
	ProfileID      string `xml:"ProfileID,omitempty"`
	PaymentHistory string `xml:"PaymentHistory,omitempty"`
}

type rpData struct {
	XMLName          xml.Name `xml:"RPData"`
	Name             string   `xml:"Name,omitempty"`
	TotalAmt         *totalAmt
	PayPeriod        string `xml:"PayPeriod"`
	Term             string `xml:"Term,omitempty"`
	Comment          string `xml:"Comment,omitempty"`
	OptionalTrans    string `xml:"OptionalTrans,omitempty"`
	OptionalTransAmt string `xml:"OptionalTransAmt,omitempty"`
	Start            string `xml:"Start"`
	EMail            string `xml:"EMail,omitempty"`
	BillTo           *addressBlock
	ShipTo           *addressBlock
}
