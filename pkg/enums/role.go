package enums

import "fmt"

// Role is the coarse permission class carried by the caller identity.
type Role string

const (
	RoleAdmin          Role = "admin"
	RoleProjectManager Role = "project_manager"
	RoleWarehouse      Role = "warehouse"
)

var validRoles = []Role{
	RoleAdmin,
	RoleProjectManager,
	RoleWarehouse,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// CanManageWarehouse reports whether the role may progress the status workflow
// or set order statuses directly.
func (r Role) CanManageWarehouse() bool {
	return r == RoleWarehouse || r == RoleAdmin
}

// CanCreateOrders reports whether the role may place procurement orders.
func (r Role) CanCreateOrders() bool {
	return r == RoleProjectManager || r == RoleAdmin
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
