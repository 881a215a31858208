package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParse_RoundTrip(t *testing.T) {
	tok, err := Generate("s3cret", "u1", "c1", RoleBodeguero, "inventory-pro", 5)
	require.NoError(t, err)

	claims, err := Parse("s3cret", "inventory-pro", tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "c1", claims.CompanyID)
	assert.Equal(t, RoleBodeguero, claims.Role)
}

func TestParse_Rechazos(t *testing.T) {
	tok, err := Generate("s3cret", "u1", "c1", RoleAdmin, "inventory-pro", 5)
	require.NoError(t, err)

	_, err = Parse("otro", "", tok)
	assert.Error(t, err, "firma incorrecta")

	_, err = Parse("s3cret", "otro-issuer", tok)
	assert.Error(t, err, "issuer distinto")

	expired, err := Generate("s3cret", "u1", "c1", RoleAdmin, "inventory-pro", -1)
	require.NoError(t, err)
	_, err = Parse("s3cret", "", expired)
	assert.Error(t, err, "token expirado")

	_, err = Generate("", "u1", "c1", RoleAdmin, "x", 5)
	assert.Error(t, err)
}
