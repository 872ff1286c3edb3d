package statusflow

import (
	"testing"

	"github.com/materialdesk/materialdesk-backend/pkg/enums"
	pkgerrors "github.com/materialdesk/materialdesk-backend/pkg/errors"
	"github.com/materialdesk/materialdesk-backend/pkg/types"
)

func TestIsTransitionAllowed(t *testing.T) {
	cases := []struct {
		column enums.StatusColumn
		value  string
		want   bool
	}{
		{enums.StatusColumnOrder, "Ordered - awaiting supplier", true},
		{enums.StatusColumnOrder, "", true},
		{enums.StatusColumnPickup, "Picked (WH-3)", true},
		{enums.StatusColumnPickup, "Failed (no stock)", true},
		{enums.StatusColumnPickup, "", false},
		{enums.StatusColumnPickup, "InvalidStatus", false},
		{enums.StatusColumnPickup, "Collected (WH-3)", false},
		{enums.StatusColumnDelivery, "", true},
		{enums.StatusColumnDelivery, "Delivered", true},
		{enums.StatusColumnDelivery, "Shipped", false},
		{enums.StatusColumnCheck, "", true},
		{enums.StatusColumnCheck, "(C.B)", true},
		{enums.StatusColumnCheck, "WH)", true},
		{enums.StatusColumnCheck, "Check and sign(C.B/PM)", true},
		{enums.StatusColumnCheck, "Approved", false},
		{enums.StatusColumn("OTHER"), "x", false},
	}

	for _, tc := range cases {
		if got := IsTransitionAllowed(tc.column, tc.value); got != tc.want {
			t.Errorf("IsTransitionAllowed(%s, %q) = %v, want %v", tc.column, tc.value, got, tc.want)
		}
	}
}

func TestValidateAppendDeliveredPayload(t *testing.T) {
	err := ValidateAppend(enums.StatusColumnDelivery, "Delivered", nil)
	if err == nil || err.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for missing payload, got %v", err)
	}

	err = ValidateAppend(enums.StatusColumnDelivery, "Delivered", &types.DeliveryDetails{
		Time:    "2026-03-14T10:00:00Z",
		Address: "12 Depot Rd",
		PO:      "PO-1881",
	})
	if err == nil {
		t.Fatal("expected validation error for partial payload")
	}

	err = ValidateAppend(enums.StatusColumnDelivery, "Delivered", &types.DeliveryDetails{
		Time:        "2026-03-14T10:00:00Z",
		Address:     "12 Depot Rd",
		PO:          "PO-1881",
		DeliveredBy: "J. Ramos",
	})
	if err != nil {
		t.Fatalf("complete payload should pass, got %v", err)
	}
}

func TestComposeValues(t *testing.T) {
	if got := ComposeOrderValue("Ordered", "supplier confirmed"); got != "Ordered - supplier confirmed" {
		t.Fatalf("unexpected order value %q", got)
	}
	if got := ComposeOrderValue("Ordered", ""); got != "Ordered" {
		t.Fatalf("unexpected order value %q", got)
	}
	if got := ComposePickupValue("Picked", "(WH-3)"); got != "Picked (WH-3)" {
		t.Fatalf("unexpected pickup value %q", got)
	}
}

func TestIsCheckTerminal(t *testing.T) {
	if IsCheckTerminal("") {
		t.Fatal("empty value must not complete the project")
	}
	if !IsCheckTerminal("(C.B)") {
		t.Fatal("(C.B) should be terminal")
	}
	if IsCheckTerminal("Approved") {
		t.Fatal("invalid value must not be terminal")
	}
}
