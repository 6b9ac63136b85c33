package enums

import "fmt"

// UserRole maps to the role column on users.
type UserRole string

const (
	UserRoleAdmin       UserRole = "admin"
	UserRoleSalesperson UserRole = "salesperson"
)

var validUserRoles = []UserRole{
	UserRoleAdmin,
	UserRoleSalesperson,
}

// IsValid checks whether the given role matches the canonical enum.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseUserRole converts raw strings into UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
