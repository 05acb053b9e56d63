package provider

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ValidateConfigFields validates configuration against provided field definitions.
func ValidateConfigFields(providerName string, conf map[string]string, requiredFields []ConfigField) error {
	for _, field := range requiredFields {
		if !field.Required {
			continue
		}

		value, exists := conf[field.Key]
		if !exists {
			return fmt.Errorf("%s: required field '%s' is missing", providerName, field.Key)
		}
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s: required field '%s' cannot be empty", providerName, field.Key)
		}

		if err := validateFieldPattern(providerName, field, value); err != nil {
			return err
		}
		if err := validateFieldLength(providerName, field, value); err != nil {
			return err
		}
	}

	return nil
}

// validateFieldPattern validates a field against its regex pattern.
func validateFieldPattern(providerName string, field ConfigField, value string) error {
	if field.Pattern == "" {
		return nil
	}

	matched, err := regexp.MatchString(field.Pattern, value)
	if err != nil {
		return fmt.Errorf("%s: invalid pattern for field '%s': %v", providerName, field.Key, err)
	}
	if !matched {
		return fmt.Errorf("%s: field '%s' does not match required pattern", providerName, field.Key)
	}
	return nil
}

// validateFieldLength validates field length constraints.
func validateFieldLength(providerName string, field ConfigField, value string) error {
	if field.MinLength > 0 && len(value) < field.MinLength {
		return fmt.Errorf("%s: field '%s' must be at least %d characters", providerName, field.Key, field.MinLength)
	}
	if field.MaxLength > 0 && len(value) > field.MaxLength {
		return fmt.Errorf("%s: field '%s' must not exceed %d characters", providerName, field.Key, field.MaxLength)
	}
	return nil
}

// referenceActions are the actions that cannot proceed without a prior
// transaction or profile reference.
var referenceActions = map[Action]bool{
	ActionCapture:             true,
	ActionVoid:                true,
	ActionInquiry:             true,
	ActionRecurringModify:     true,
	ActionRecurringCancel:     true,
	ActionRecurringInquiry:    true,
	ActionRecurringReactivate: true,
	ActionRecurringPayment:    true,
}

// recurringActions is the closed set of recurring profile lifecycle actions.
var recurringActions = map[Action]bool{
	ActionRecurringAdd:        true,
	ActionRecurringModify:     true,
	ActionRecurringCancel:     true,
	ActionRecurringInquiry:    true,
	ActionRecurringReactivate: true,
	ActionRecurringPayment:    true,
}

// RequiresReference reports whether the action needs req.Reference.
func RequiresReference(action Action) bool {
	return referenceActions[action]
}

// IsRecurringAction reports whether the action belongs to the recurring
// profile lifecycle.
func IsRecurringAction(action Action) bool {
	return recurringActions[action]
}

// ValidateRequest enforces the per-action required-field preconditions
// shared by every dialect. It runs before encoding; a violation here is a
// caller error, not a gateway error, and never reaches the network.
func ValidateRequest(req TransactionRequest) error {
	if RequiresReference(req.Action) && req.Reference == "" {
		return NewValidationError("reference", fmt.Sprintf("reference is required for %s", req.Action))
	}

	if req.Tender != nil {
		if err := req.Tender.Validate(); err != nil {
			return err
		}
	}

	switch req.Action {
	case ActionAuthorize, ActionPurchase:
		if req.Tender == nil && req.Reference == "" {
			return NewValidationError("tender", fmt.Sprintf("%s requires a tender or a reference", req.Action))
		}
	case ActionCredit:
		if req.Tender == nil && req.Reference == "" {
			return NewValidationError("reference", "credit requires a reference or a tender")
		}
	case ActionRecurringAdd, ActionRecurringModify:
		if err := ValidateSchedule(req.Options.Recurring); err != nil {
			return err
		}
	case ActionStore:
		if req.Tender == nil {
			return NewValidationError("tender", "store requires a tender")
		}
	case ActionUnstore:
		if req.Tender == nil || req.Tender.Kind != TenderStoredAccount {
			return NewValidationError("tender", "unstore requires a stored account tender")
		}
	}

	return nil
}

// ValidateSchedule checks a recurring schedule for profile add/modify:
// periodicity must be a member of the supported set and the start date must
// lie strictly in the future.
func ValidateSchedule(schedule *RecurringSchedule) error {
	if schedule == nil {
		return NewValidationError("recurring", "recurring schedule is required")
	}

	switch schedule.Periodicity {
	case PeriodDaily, PeriodWeekly, PeriodBiweekly, PeriodSemimonthly,
		PeriodQuadweekly, PeriodMonthly, PeriodQuarterly, PeriodSemiyearly, PeriodYearly:
	case "":
		return NewValidationError("recurring.periodicity", "periodicity is required")
	default:
		return NewValidationError("recurring.periodicity", fmt.Sprintf("unknown periodicity %q", schedule.Periodicity))
	}

	if !schedule.StartDate.IsZero() {
		// Compare calendar dates: the profile must start tomorrow or later.
		y, m, d := time.Now().Date()
		today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		sy, sm, sd := schedule.StartDate.Date()
		start := time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC)
		if !start.After(today) {
			return NewValidationError("recurring.startDate", "start date must be in the future")
		}
	}

	if schedule.Initial != nil {
		switch schedule.Initial.Action {
		case ActionAuthorize:
		case ActionPurchase:
			if schedule.Initial.Amount <= 0 {
				return NewValidationError("recurring.initial.amount", "initial purchase requires an amount")
			}
		default:
			return NewValidationError("recurring.initial.action", "initial transaction must be authorize or purchase")
		}
	}

	return nil
}
