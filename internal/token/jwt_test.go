package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnibras/user-manager-api/internal/model"
)

func testUser() model.User {
	return model.User{
		UserID:   "1234567890",
		Username: "alee",
		Role:     model.RoleAdmin,
	}
}

func TestJWT_GenerateAndParse(t *testing.T) {
	j := NewJWT("secret", time.Hour)

	tokenString, err := j.Generate(testUser())
	require.NoError(t, err)

	principal, err := j.Parse(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "1234567890", principal.UserID)
	assert.Equal(t, "alee", principal.Username)
	assert.Equal(t, model.RoleAdmin.Authorities(), principal.Authorities)
}

func TestJWT_TokensAreDistinct(t *testing.T) {
	j := NewJWT("secret", time.Hour)

	first, err := j.Generate(testUser())
	require.NoError(t, err)
	second, err := j.Generate(testUser())
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestJWT_AuthoritiesCapturedAtIssuance(t *testing.T) {
	j := NewJWT("secret", time.Hour)

	user := testUser()
	tokenString, err := j.Generate(user)
	require.NoError(t, err)

	// Role change after issuance must not alter claims in flight.
	user.Role = model.RoleUser

	principal, err := j.Parse(tokenString)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin.Authorities(), principal.Authorities)
}

func TestJWT_WrongSecret(t *testing.T) {
	tokenString, err := NewJWT("secret", time.Hour).Generate(testUser())
	require.NoError(t, err)

	_, err = NewJWT("other", time.Hour).Parse(tokenString)
	assert.Error(t, err)
}

func TestJWT_Expired(t *testing.T) {
	j := NewJWT("secret", -time.Minute)

	tokenString, err := j.Generate(testUser())
	require.NoError(t, err)

	_, err = j.Parse(tokenString)
	assert.Error(t, err)
}

func TestJWT_Garbage(t *testing.T) {
	_, err := NewJWT("secret", time.Hour).Parse("not.a.token")
	assert.Error(t, err)
}
