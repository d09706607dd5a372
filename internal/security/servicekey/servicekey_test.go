package servicekey

import (
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/provisioner/internal/domain/repository"
)

func signKey(t *testing.T, role string) string {
	t.Helper()
	claims := jwt.MapClaims{"iss": "supabase", "ref": "abcdefgh"}
	if role != "" {
		claims["role"] = role
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("project-secret"))
	require.NoError(t, err)
	return tok
}

func TestRole(t *testing.T) {
	role, err := Role(signKey(t, "service_role"))
	require.NoError(t, err)
	require.Equal(t, RoleServiceRole, role)

	role, err = Role(signKey(t, "anon"))
	require.NoError(t, err)
	require.Equal(t, "anon", role)

	_, err = Role(signKey(t, ""))
	require.ErrorContains(t, err, "missing role")

	_, err = Role("   ")
	require.Error(t, err)

	_, err = Role("not-a-jwt")
	require.ErrorContains(t, err, "servicekey: parse")
}

func TestRequireServiceRole(t *testing.T) {
	require.NoError(t, RequireServiceRole(signKey(t, "service_role")))

	err := RequireServiceRole(signKey(t, "anon"))
	require.ErrorIs(t, err, ErrNotServiceRole)
	require.True(t, errors.Is(err, repository.ErrUnauthorized))
	require.ErrorContains(t, err, `"anon"`)
}
