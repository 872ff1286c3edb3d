package enums

import "fmt"

// StatusColumn identifies one of the four fulfillment workflow columns.
type StatusColumn string

const (
	StatusColumnOrder    StatusColumn = "ORDER"
	StatusColumnPickup   StatusColumn = "PICKUP"
	StatusColumnDelivery StatusColumn = "DELIVERY"
	StatusColumnCheck    StatusColumn = "CHECK"
)

var validStatusColumns = []StatusColumn{
	StatusColumnOrder,
	StatusColumnPickup,
	StatusColumnDelivery,
	StatusColumnCheck,
}

// AllStatusColumns returns the columns in workflow order.
func AllStatusColumns() []StatusColumn {
	cols := make([]StatusColumn, len(validStatusColumns))
	copy(cols, validStatusColumns)
	return cols
}

// String implements fmt.Stringer.
func (s StatusColumn) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StatusColumn.
func (s StatusColumn) IsValid() bool {
	for _, candidate := range validStatusColumns {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStatusColumn converts raw input into a StatusColumn.
func ParseStatusColumn(value string) (StatusColumn, error) {
	for _, candidate := range validStatusColumns {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid status column %q", value)
}
