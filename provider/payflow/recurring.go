package payflow

import (
	"context"
	"encoding/xml"
	"fmt"
	"strconv"
	"time"

	"github.com/paywire/paywire/provider"
)

// Recurring profile action element names.
var recurringActionNames = map[provider.Action]string{
	provider.ActionRecurringAdd:        "Add",
	provider.ActionRecurringModify:     "Modify",
	provider.ActionRecurringCancel:     "Cancel",
	provider.ActionRecurringInquiry:    "Inquiry",
	provider.ActionRecurringReactivate: "Reactivate",
	provider.ActionRecurringPayment:    "Payment",
}

// payPeriodLabels is the fixed vocabulary Payflow accepts for the billing
// frequency. The mapping is total over the supported periodicity set.
var payPeriodLabels = map[provider.Periodicity]string{
	provider.PeriodDaily:       "Daily",
	provider.PeriodWeekly:      "Weekly",
	provider.PeriodBiweekly:    "Bi-weekly",
	provider.PeriodSemimonthly: "Semi-monthly",
	provider.PeriodQuadweekly:  "Every four weeks",
	provider.PeriodMonthly:     "Monthly",
	provider.PeriodQuarterly:   "Quarterly",
	provider.PeriodSemiyearly:  "Semi-yearly",
	provider.PeriodYearly:      "Yearly",
}

// Recurring drives the Payflow recurring profile lifecycle. req.Action
// selects one of add, modify, cancel, inquiry, reactivate or payment; any
// other action is a programming error and fails before a document is built.
//
// Add and modify emit the full profile body; the remaining actions carry
// only the profile identifier (plus the history flag for inquiry).
func (p *PayflowProvider) Recurring(ctx context.Context, req provider.TransactionRequest) (*provider.Result, error) {
	name, ok := recurringActionNames[req.Action]
	if !ok {
		return nil, provider.NewValidationError("action", fmt.Sprintf("payflow: invalid recurring profile action %q", req.Action))
	}

	body := recurringActionBody{XMLName: xml.Name{Local: name}}

	switch req.Action {
	case provider.ActionRecurringAdd, provider.ActionRecurringModify:
		if req.Action == provider.ActionRecurringModify && req.Reference == "" {
			return nil, provider.NewValidationError("reference", "profile id is required to modify a recurring profile")
		}
		if err := provider.ValidateSchedule(req.Options.Recurring); err != nil {
			return nil, err
		}

		data, tender, err := p.buildProfileBody(req)
		if err != nil {
			return nil, err
		}
		body.RPData = data
		body.Tender = tender
		if req.Action == provider.ActionRecurringModify {
			body.ProfileID = req.Reference
		}

	default:
		if req.Reference == "" {
			return nil, provider.NewValidationError("reference", fmt.Sprintf("profile id is required for %s", req.Action))
		}
		body.ProfileID = req.Reference
		if req.Action == provider.ActionRecurringInquiry {
			body.PaymentHistory = "N"
			if req.Options.History {
				body.PaymentHistory = "Y"
			}
		}
	}

	return p.commitRecurring(ctx, &recurringProfiles{
		Profile: recurringProfile{Action: body},
	})
}

// buildProfileBody assembles RPData and the optional tender block for
// profile add/modify.
func (p *PayflowProvider) buildProfileBody(req provider.TransactionRequest) (*rpData, *tenderBlock, error) {
	schedule := req.Options.Recurring

	data := &rpData{
		Name:      profileName(req),
		TotalAmt:  p.totalAmt(req.Amount, req.Currency),
		PayPeriod: payPeriodLabels[schedule.Periodicity],
		Comment:   schedule.Comment,
		Start:     profileStart(schedule.StartDate),
		EMail:     req.Options.Email,
	}
	if schedule.Payments > 0 {
		data.Term = strconv.Itoa(schedule.Payments)
	}

	if initial := schedule.Initial; initial != nil {
		data.OptionalTrans = transactionNames[initial.Action]
		if initial.Amount > 0 {
			data.OptionalTransAmt = provider.FormatAmount(initial.Amount, req.Currency)
		}
	}

	if billing := req.Options.BillingAddress; billing != nil {
		data.BillTo = addressBlockFor("BillTo", billing, "")
	}
	if shipping := req.Options.ShippingAddress; shipping != nil {
		data.ShipTo = addressBlockFor("ShipTo", shipping, "")
	}

	var tender *tenderBlock
	if req.Tender != nil {
		if req.Tender.Kind != provider.TenderCard {
			return nil, nil, provider.NewValidationError("tender.kind", "payflow: recurring profiles only accept card tenders")
		}
		if err := req.Tender.Validate(); err != nil {
			return nil, nil, err
		}
		tender = &tenderBlock{Card: cardBlockFor(req.Tender.Card)}
	}

	return data, tender, nil
}

// profileName defaults the billing name to the cardholder name when the
// caller did not set one.
func profileName(req provider.TransactionRequest) string {
	if req.Options.Name != "" {
		return req.Options.Name
	}
	if req.Tender != nil && req.Tender.Kind == provider.TenderCard && req.Tender.Card != nil {
		card := req.Tender.Card
		if card.FirstName != "" || card.LastName != "" {
			name := card.FirstName
			if card.LastName != "" {
				if name != "" {
					name += " "
				}
				name += card.LastName
			}
			return name
		}
	}
	return ""
}

// profileStart renders the start date in Payflow's mmddyyyy form,
// defaulting to tomorrow when the caller left it unset.
func profileStart(start time.Time) string {
	if start.IsZero() {
		start = time.Now().AddDate(0, 0, 1)
	}
	return start.Format("01022006")
}
