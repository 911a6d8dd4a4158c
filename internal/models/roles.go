// internal/models/roles.go

package models

// Role represents a user's authorization role in the system
type Role string

// Role constants
const (
	RoleCustomer   Role = "customer"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
	RoleManager    Role = "manager"
	RoleSupport    Role = "support"
)

// IsValid checks whether the role is a known one
func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleAdmin, RoleSuperAdmin, RoleManager, RoleSupport:
		return true
	}
	return false
}

// IsElevated reports whether the role is authorized to receive
// administrative alerts
func (r Role) IsElevated() bool {
	switch r {
	case RoleAdmin, RoleSuperAdmin, RoleManager, RoleSupport:
		return true
	}
	return false
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// ElevatedRoles returns the set of roles that receive admin alerts
func ElevatedRoles() []Role {
	return []Role{
		RoleAdmin,
		RoleSuperAdmin,
		RoleManager,
		RoleSupport,
	}
}

// AllRoles returns all known roles
func AllRoles() []Role {
	return []Role{
		RoleCustomer,
		RoleAdmin,
		RoleSuperAdmin,
		RoleManager,
		RoleSupport,
	}
}

// RoleFromString converts a string into a Role
func RoleFromString(role string) (Role, bool) {
	r := Role(role)
	if r.IsValid() {
		return r, true
	}
	return "", false
}
