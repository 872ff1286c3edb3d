package statusflow

import (
	"fmt"
	"strings"

	"github.com/materialdesk/materialdesk-backend/pkg/enums"
	pkgerrors "github.com/materialdesk/materialdesk-backend/pkg/errors"
	"github.com/materialdesk/materialdesk-backend/pkg/types"
)

const deliveredValue = "Delivered"

var pickupPrimaries = []string{"Picked", "Failed"}

var checkValues = []string{
	"Check and sign(C.B/PM)",
	"(C.B)",
	"WH)",
}

// IsTransitionAllowed reports whether value is acceptable for the column. It
// is deliberately independent of role checks so both can be tested alone.
// The DELIVERY payload requirement is covered by ValidateAppend.
func IsTransitionAllowed(column enums.StatusColumn, value string) bool {
	switch column {
	case enums.StatusColumnOrder:
		return true
	case enums.StatusColumnPickup:
		// PICKUP has no blank state; only the initialization presets write an
		// empty value, and those bypass this check.
		primary, _, _ := strings.Cut(value, " ")
		for _, candidate := range pickupPrimaries {
			if primary == candidate {
				return true
			}
		}
		return false
	case enums.StatusColumnDelivery:
		return value == "" || value == deliveredValue
	case enums.StatusColumnCheck:
		if value == "" {
			return true
		}
		for _, candidate := range checkValues {
			if value == candidate {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// ValidateAppend runs the full per-column rule, including the structured
// payload required when DELIVERY transitions to Delivered.
func ValidateAppend(column enums.StatusColumn, value string, delivery *types.DeliveryDetails) *pkgerrors.Error {
	if !column.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown status column").
			WithDetails(map[string]any{"column": string(column)})
	}
	if !IsTransitionAllowed(column, value) {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("value not allowed for %s column", column)).
			WithDetails(map[string]any{"column": string(column), "value": value})
	}
	if column == enums.StatusColumnDelivery && value == deliveredValue {
		if missing := delivery.MissingFields(); len(missing) > 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "delivered status requires complete delivery details").
				WithDetails(map[string]any{"missing_fields": missing})
		}
	}
	return nil
}

// ComposeOrderValue joins the free-text primary and optional secondary the way
// the ORDER column stores them.
func ComposeOrderValue(primary, secondary string) string {
	primary = strings.TrimSpace(primary)
	secondary = strings.TrimSpace(secondary)
	if secondary == "" {
		return primary
	}
	return primary + " - " + secondary
}

// ComposePickupValue joins the pickup primary with its parenthesized code.
func ComposePickupValue(primary, code string) string {
	primary = strings.TrimSpace(primary)
	code = strings.TrimSpace(code)
	if code == "" {
		return primary
	}
	return primary + " " + code
}

// IsCheckTerminal reports whether a CHECK value completes the project.
func IsCheckTerminal(value string) bool {
	return value != "" && IsTransitionAllowed(enums.StatusColumnCheck, value)
}
