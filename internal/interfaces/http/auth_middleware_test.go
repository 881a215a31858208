package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/conteo-inventario/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/conteo-inventario/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testCompanyID = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "inventory-pro-test"
)

// tokenForRole genera el header Authorization con el rol indicado.
func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testCompanyID, role, testIssuer, 60)
	require.NoError(t, err)
	return "Bearer " + tok
}

func protectedApp(issuer string, roles ...string) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret, issuer),
		apphttp.RequireRole(roles...),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{
				"user_id":    apphttp.GetUserID(c),
				"company_id": apphttp.GetCompanyID(c),
				"role":       apphttp.GetRole(c),
			})
		},
	)
	return app
}

func TestAuthMiddleware_RequireRole(t *testing.T) {
	noRole, err := pkgjwt.Generate(testJWTSecret, testUserID, testCompanyID, "", testIssuer, 60)
	require.NoError(t, err)
	expired, err := pkgjwt.Generate(testJWTSecret, testUserID, testCompanyID, pkgjwt.RoleAdmin, testIssuer, -1)
	require.NoError(t, err)

	tests := []struct {
		name     string
		issuer   string
		allowed  []string
		header   string
		wantCode int
		wantBody string
	}{
		{"admin en ruta admin", testIssuer, []string{"admin"}, tokenForRole(t, "admin"), http.StatusOK, ""},
		{"bodeguero en ruta multi-rol", testIssuer, []string{"admin", "bodeguero"}, tokenForRole(t, "bodeguero"), http.StatusOK, ""},
		{"vendedor en ruta admin", testIssuer, []string{"admin"}, tokenForRole(t, "vendedor"), http.StatusForbidden, "FORBIDDEN"},
		{"token sin rol", testIssuer, []string{"admin"}, "Bearer " + noRole, http.StatusUnauthorized, "MISSING_ROLE"},
		{"sin header", testIssuer, []string{"admin"}, "", http.StatusUnauthorized, "MISSING_TOKEN"},
		{"formato inválido", testIssuer, []string{"admin"}, "Token abc", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"token malformado", testIssuer, []string{"admin"}, "Bearer token.invalido.aqui", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"token expirado", testIssuer, []string{"admin"}, "Bearer " + expired, http.StatusUnauthorized, "INVALID_TOKEN"},
		{"emisor distinto", "otro-emisor", []string{"admin"}, tokenForRole(t, "admin"), http.StatusUnauthorized, "INVALID_TOKEN"},
		{"emisor sin validar", "", []string{"admin"}, tokenForRole(t, "admin"), http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := protectedApp(tt.issuer, tt.allowed...).Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantCode, resp.StatusCode)
			if tt.wantBody != "" {
				body, _ := io.ReadAll(resp.Body)
				assert.Contains(t, string(body), tt.wantBody)
			}
		})
	}
}

func TestAuthMiddleware_ExtraeClaims(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", tokenForRole(t, "bodeguero"))
	resp, err := protectedApp(testIssuer, "bodeguero").Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, testCompanyID, body["company_id"])
	assert.Equal(t, "bodeguero", body["role"])
}
