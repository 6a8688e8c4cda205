package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRole_CaseInsensitive(t *testing.T) {
	for _, name := range []string{"ROLE_ADMIN", "role_admin", "Admin", "ADMIN"} {
		role, err := ResolveRole(name)
		require.NoError(t, err, name)
		assert.Equal(t, RoleAdmin, role)
	}
}

func TestResolveRole_Unknown(t *testing.T) {
	for _, name := range []string{"", "ROLE_ROOT", "superuser", "  "} {
		_, err := ResolveRole(name)
		assert.ErrorIs(t, err, ErrUnknownRole, name)
	}
}

func TestResolveRole_Pure(t *testing.T) {
	first, err := ResolveRole("super_admin")
	require.NoError(t, err)
	second, err := ResolveRole("super_admin")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, first.Authorities(), second.Authorities())
}

func TestRole_Authorities(t *testing.T) {
	assert.Equal(t, []string{AuthorityUserRead}, RoleUser.Authorities())
	assert.Contains(t, RoleSuperAdmin.Authorities(), AuthorityUserDelete)
	assert.NotContains(t, RoleAdmin.Authorities(), AuthorityUserDelete)
	assert.Nil(t, Role("ROLE_BOGUS").Authorities())
}

func TestRole_AuthoritiesReturnsCopy(t *testing.T) {
	authorities := RoleUser.Authorities()
	authorities[0] = "user:everything"
	assert.Equal(t, []string{AuthorityUserRead}, RoleUser.Authorities())
}

func TestPrincipal_HasAuthority(t *testing.T) {
	p := Principal{Authorities: RoleSuperAdmin.Authorities()}
	assert.True(t, p.HasAuthority(AuthorityUserDelete))
	assert.False(t, Principal{}.HasAuthority(AuthorityUserRead))
}
