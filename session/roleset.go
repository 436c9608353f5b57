package session

// RoleSet is a compact set of roles backed by a bitmask. The zero value is
// the empty set.
type RoleSet uint8

var roleBits = map[Role]uint8{
	RoleAdmin:        0,
	RoleManager:      1,
	RoleCollaborator: 2,
	RoleCompany:      3,
}

var bitRoles = [...]Role{RoleAdmin, RoleManager, RoleCollaborator, RoleCompany}

// NewRoleSet returns a set containing roles. Unknown roles are skipped.
func NewRoleSet(roles ...Role) RoleSet {
	var s RoleSet
	for _, r := range roles {
		s = s.Add(r)
	}
	return s
}

// Add returns s with r included.
func (s RoleSet) Add(r Role) RoleSet {
	bit, ok := roleBits[r]
	if !ok {
		return s
	}
	return s | (1 << bit)
}

// Has reports whether r is in s.
func (s RoleSet) Has(r Role) bool {
	bit, ok := roleBits[r]
	if !ok {
		return false
	}
	return s&(1<<bit) != 0
}

// Empty reports whether s holds no roles.
func (s RoleSet) Empty() bool {
	return s == 0
}

// Roles lists the members of s in a stable order.
func (s RoleSet) Roles() []Role {
	out := make([]Role, 0, len(bitRoles))
	for bit, r := range bitRoles {
		if s&(1<<uint(bit)) != 0 {
			out = append(out, r)
		}
	}
	return out
}
