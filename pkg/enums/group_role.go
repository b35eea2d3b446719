package enums

import "fmt"

// GroupRole is the role a user holds inside a group.
type GroupRole string

const (
	GroupRoleLeader GroupRole = "leader"
	GroupRoleMember GroupRole = "member"
)

var validGroupRoles = []GroupRole{
	GroupRoleLeader,
	GroupRoleMember,
}

// String implements fmt.Stringer.
func (r GroupRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known GroupRole.
func (r GroupRole) IsValid() bool {
	for _, candidate := range validGroupRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseGroupRole converts raw input into a GroupRole.
func ParseGroupRole(value string) (GroupRole, error) {
	for _, candidate := range validGroupRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid group role %q", value)
}
