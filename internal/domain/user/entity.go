package user

import "context"

type Role string

const (
	RoleGodAdmin Role = "god_admin" // Platform operator - full access
	RoleAdmin    Role = "admin"     // Organisation administrator
	RoleHR       Role = "hr"        // Human resources staff
	RoleManager  Role = "manager"   // Line manager or department head
	RoleEmployee Role = "employee"  // Regular employee
)

var RoleValues = []string{
	string(RoleGodAdmin),
	string(RoleAdmin),
	string(RoleHR),
	string(RoleManager),
	string(RoleEmployee),
}

// Identity is the authenticated actor as supplied by the identity provider.
type Identity struct {
	EmployeeID string
	Role       Role
}

// HasOrgWideAuthority reports whether the role may act on any employee
// regardless of reporting lines.
func (i Identity) HasOrgWideAuthority() bool {
	switch i.Role {
	case RoleGodAdmin, RoleAdmin, RoleHR:
		return true
	}
	return false
}

type identityKey struct{}

// WithIdentity stores the identity in ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity stored by WithIdentity.
func IdentityFromContext(ctx context.Context) (Identity, error) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	if !ok || id.EmployeeID == "" {
		return Identity{}, ErrIdentityMissing
	}
	return id, nil
}

// IsValidRole reports whether role is one of RoleValues.
func IsValidRole(role string) bool {
	for _, v := range RoleValues {
		if v == role {
			return true
		}
	}
	return false
}
