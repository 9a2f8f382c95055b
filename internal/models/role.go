package models

import (
	"fmt"
	"strings"
)

// Role is a member of the closed set of account roles. Roles are stored by
// name, so adding a member needs no data migration.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// allRoles is the ordered role enumeration.
var allRoles = []Role{RoleAdmin, RoleUser}

// Roles returns every role in enumeration order.
func Roles() []Role {
	out := make([]Role, len(allRoles))
	copy(out, allRoles)
	return out
}

// ParseRole resolves a role by name, ignoring case and surrounding space.
func ParseRole(s string) (Role, error) {
	name := Role(strings.ToUpper(strings.TrimSpace(s)))
	if name.Valid() {
		return name, nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrBadRequest, s)
}

// Valid reports whether r is a member of the enumeration.
func (r Role) Valid() bool {
	for _, known := range allRoles {
		if r == known {
			return true
		}
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// SortRoles orders roles by enumeration position and removes duplicates and
// unknown values.
func SortRoles(roles []Role) []Role {
	out := make([]Role, 0, len(roles))
	for _, known := range allRoles {
		for _, r := range roles {
			if r == known {
				out = append(out, known)
				break
			}
		}
	}
	return out
}
