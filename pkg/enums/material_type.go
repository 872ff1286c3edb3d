package enums

import "fmt"

// MaterialType distinguishes the two procurement material classes.
type MaterialType string

const (
	MaterialTypeAuxiliary MaterialType = "AUXILIARY"
	MaterialTypeFinished  MaterialType = "FINISHED"
)

var validMaterialTypes = []MaterialType{
	MaterialTypeAuxiliary,
	MaterialTypeFinished,
}

// String implements fmt.Stringer.
func (m MaterialType) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MaterialType.
func (m MaterialType) IsValid() bool {
	for _, candidate := range validMaterialTypes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMaterialType converts raw input into a MaterialType.
func ParseMaterialType(value string) (MaterialType, error) {
	for _, candidate := range validMaterialTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid material type %q", value)
}
