package types

import "strings"

// DeliveryDetails is the structured payload required when the DELIVERY column
// is set to "Delivered". All four fields must be non-empty.
type DeliveryDetails struct {
	Time        string `json:"time"`
	Address     string `json:"address"`
	PO          string `json:"po"`
	DeliveredBy string `json:"delivered_by"`
}

// MissingFields returns the json names of required fields that are empty.
func (d *DeliveryDetails) MissingFields() []string {
	if d == nil {
		return []string{"time", "address", "po", "delivered_by"}
	}
	var missing []string
	if strings.TrimSpace(d.Time) == "" {
		missing = append(missing, "time")
	}
	if strings.TrimSpace(d.Address) == "" {
		missing = append(missing, "address")
	}
	if strings.TrimSpace(d.PO) == "" {
		missing = append(missing, "po")
	}
	if strings.TrimSpace(d.DeliveredBy) == "" {
		missing = append(missing, "delivered_by")
	}
	return missing
}

// JSONMap holds optional freeform key/value metadata on a status entry.
type JSONMap map[string]any
