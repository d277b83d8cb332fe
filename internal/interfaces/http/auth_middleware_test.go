package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/access"
	apphttp "github.com/jhoicas/Suministros-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Suministros-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testCompanyID = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "suministros-test"
	testExpMin    = 60
)

// resolverFunc adapta una función a PrincipalResolver.
type resolverFunc func(ctx context.Context, userID string) (access.Principal, error)

func (f resolverFunc) ResolvePrincipal(ctx context.Context, userID string) (access.Principal, error) {
	return f(ctx, userID)
}

// ownerResolver resuelve testUserID como propietario de testCompanyID; cualquier otro es desconocido.
var ownerResolver = resolverFunc(func(_ context.Context, userID string) (access.Principal, error) {
	if userID != testUserID {
		return access.Anonymous, domain.ErrAuthenticationRequired
	}
	return access.Principal{UserID: userID, CompanyID: testCompanyID, IsCompanyOwner: true, Authenticated: true}, nil
})

// buildTestApp construye una aplicación Fiber mínima con AuthMiddleware y un handler
// que devuelve el principal resuelto.
func buildTestApp(resolver apphttp.PrincipalResolver) *fiber.App {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(testJWTSecret, resolver), func(c *fiber.Ctx) error {
		p := apphttp.GetPrincipal(c)
		return c.JSON(fiber.Map{
			"user_id":    p.UserID,
			"company_id": p.CompanyID,
			"owner":      p.IsCompanyOwner,
		})
	})
	return app
}

func bearer(t *testing.T, userID string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, userID, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

func doRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_ResuelvePrincipal(t *testing.T) {
	resp := doRequest(t, buildTestApp(ownerResolver), bearer(t, testUserID))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, testCompanyID, body["company_id"])
	assert.Equal(t, true, body["owner"])
}

func TestAuthMiddleware_SinAuthHeader_Retorna401(t *testing.T) {
	resp := doRequest(t, buildTestApp(ownerResolver), "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_TOKEN")
}

func TestAuthMiddleware_FormatoInvalido_Retorna401(t *testing.T) {
	resp := doRequest(t, buildTestApp(ownerResolver), "Token abc")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "INVALID_TOKEN")
}

func TestAuthMiddleware_TokenInvalido_Retorna401(t *testing.T) {
	resp := doRequest(t, buildTestApp(ownerResolver), "Bearer token.invalido.aqui")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_TokenExpirado_Retorna401(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testIssuer, -1)
	require.NoError(t, err)

	resp := doRequest(t, buildTestApp(ownerResolver), "Bearer "+tok)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// Un token válido de un usuario que ya no existe no autentica.
func TestAuthMiddleware_UsuarioDesconocido_Retorna401(t *testing.T) {
	resp := doRequest(t, buildTestApp(ownerResolver), bearer(t, "00000000-0000-0000-0000-00000000dead"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_FalloDelResolver_Retorna500(t *testing.T) {
	failing := resolverFunc(func(context.Context, string) (access.Principal, error) {
		return access.Anonymous, errors.New("db caída")
	})
	resp := doRequest(t, buildTestApp(failing), bearer(t, testUserID))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.NotContains(t, string(body), "db caída", "el detalle interno no se expone")
}

func TestGetPrincipal_SinMiddlewareEsAnonimo(t *testing.T) {
	app := fiber.New()
	app.Get("/open", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"authenticated": apphttp.GetPrincipal(c).Authenticated})
	})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/open", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]bool
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body["authenticated"])
}
