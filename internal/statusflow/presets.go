package statusflow

import "github.com/materialdesk/materialdesk-backend/pkg/enums"

// Preset is a named initialization set for a project's four columns. The two
// presets carry distinct business intent: order creation marks only the ORDER
// column, confirmation marks all four to signal active tracking has begun.
type Preset string

const (
	PresetOnCreate  Preset = "on_create"
	PresetOnConfirm Preset = "on_confirm"
)

// Values returns the initial value per column for the preset, in workflow
// column order.
func (p Preset) Values() map[enums.StatusColumn]string {
	switch p {
	case PresetOnConfirm:
		return map[enums.StatusColumn]string{
			enums.StatusColumnOrder:    "PENDING",
			enums.StatusColumnPickup:   "PENDING",
			enums.StatusColumnDelivery: "PENDING",
			enums.StatusColumnCheck:    "PENDING",
		}
	default:
		return map[enums.StatusColumn]string{
			enums.StatusColumnOrder:    "PENDING",
			enums.StatusColumnPickup:   "",
			enums.StatusColumnDelivery: "",
			enums.StatusColumnCheck:    "",
		}
	}
}
