package model

import "strings"

// Role is one of the fixed set of user roles. Each role carries an
// immutable authority set consumed by downstream authorization.
type Role string

const (
	RoleUser       Role = "ROLE_USER"
	RoleHR         Role = "ROLE_HR"
	RoleManager    Role = "ROLE_MANAGER"
	RoleAdmin      Role = "ROLE_ADMIN"
	RoleSuperAdmin Role = "ROLE_SUPER_ADMIN"
)

const (
	AuthorityUserRead   = "user:read"
	AuthorityUserCreate = "user:create"
	AuthorityUserUpdate = "user:update"
	AuthorityUserDelete = "user:delete"
)

var roleAuthorities = map[Role][]string{
	RoleUser:       {AuthorityUserRead},
	RoleHR:         {AuthorityUserRead, AuthorityUserUpdate},
	RoleManager:    {AuthorityUserRead, AuthorityUserUpdate},
	RoleAdmin:      {AuthorityUserRead, AuthorityUserCreate, AuthorityUserUpdate},
	RoleSuperAdmin: {AuthorityUserRead, AuthorityUserCreate, AuthorityUserUpdate, AuthorityUserDelete},
}

// ResolveRole matches name against the role enumeration,
// case-insensitively and with or without the ROLE_ prefix. Unknown
// names fail with ErrUnknownRole, never a default role.
func ResolveRole(name string) (Role, error) {
	normalized := strings.ToUpper(strings.TrimSpace(name))
	if normalized == "" {
		return "", ErrUnknownRole
	}
	if !strings.HasPrefix(normalized, "ROLE_") {
		normalized = "ROLE_" + normalized
	}
	role := Role(normalized)
	if _, ok := roleAuthorities[role]; !ok {
		return "", ErrUnknownRole
	}
	return role, nil
}

// Valid reports whether the role is part of the enumeration.
func (r Role) Valid() bool {
	_, ok := roleAuthorities[r]
	return ok
}

// Authorities returns a copy of the authority set for the role so
// callers cannot mutate the enumeration.
func (r Role) Authorities() []string {
	authorities, ok := roleAuthorities[r]
	if !ok {
		return nil
	}
	out := make([]string, len(authorities))
	copy(out, authorities)
	return out
}
