package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-admin-api/internal/application/dto"
	"github.com/jhoicas/tienda-admin-api/internal/domain"
	"github.com/jhoicas/tienda-admin-api/internal/domain/entity"
	"github.com/jhoicas/tienda-admin-api/internal/domain/rbac"
	apphttp "github.com/jhoicas/tienda-admin-api/internal/interfaces/http"
	"github.com/jhoicas/tienda-admin-api/pkg/metrics"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const testCookie = "tienda_session"

// stubResolver resuelve tokens fijos sin tocar almacenamiento.
type stubResolver map[string]struct {
	p   *rbac.Principal
	err error
}

func (s stubResolver) ResolvePrincipal(_ context.Context, token string) (*rbac.Principal, error) {
	r, ok := s[token]
	if !ok {
		return nil, domain.ErrInvalidCredential
	}
	return r.p, r.err
}

func principal(id, roleName string, m entity.PermissionMatrix, roleActive bool) *rbac.Principal {
	return &rbac.Principal{
		UserID:   id,
		Email:    id + "@tienda.com",
		IsActive: true,
		Role:     &entity.Role{ID: "r-" + roleName, Name: roleName, Permissions: m, IsActive: roleActive},
	}
}

func newResolver() stubResolver {
	return stubResolver{
		"tok-support":  {p: principal("support", entity.RoleSupport, entity.PresetPermissions(entity.RoleSupport), true)},
		"tok-admin":    {p: principal("admin", entity.RoleAdmin, entity.PresetPermissions(entity.RoleAdmin), true)},
		"tok-inactivo": {p: principal("inactivo", entity.RoleManager, entity.PresetPermissions(entity.RoleManager), false)},
		"tok-borrado":  {err: domain.ErrPrincipalNotFound},
		"tok-sinrol":   {err: domain.ErrRoleNotFound},
		"tok-desact":   {err: domain.ErrAccountDeactivated},
		"tok-caido":    {err: errors.New("conexión rechazada")},
	}
}

// buildGuardApp monta una ruta protegida por module.action; el handler cuenta sus ejecuciones.
func buildGuardApp(m *metrics.Metrics, module entity.Module, action entity.Action, calls *int) *fiber.App {
	app := fiber.New()
	guard := apphttp.NewGuard(newResolver(), testCookie, nil, m)
	app.Get("/protected", guard.Authenticate(), guard.RequirePermission(module, action), func(c *fiber.Ctx) error {
		*calls++
		return c.JSON(fiber.Map{"user_id": apphttp.GetUserID(c), "role": apphttp.GetRole(c)})
	})
	return app
}

func doGet(t *testing.T, app *fiber.App, bearer, cookie string) (*http.Response, dto.ErrorResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: testCookie, Value: cookie})
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	var body dto.ErrorResponse
	if resp.StatusCode >= 400 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	}
	return resp, body
}

// ──────────────────────────────────────────────────────────────────────────────
// Authenticate
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthenticate_SinToken_Retorna401(t *testing.T) {
	calls := 0
	app := buildGuardApp(nil, entity.ModuleOrder, entity.ActionView, &calls)
	resp, body := doGet(t, app, "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_TOKEN", body.Code)
	assert.Zero(t, calls)
}

func TestAuthenticate_HeaderMalFormado_Retorna401(t *testing.T) {
	calls := 0
	app := buildGuardApp(nil, entity.ModuleOrder, entity.ActionView, &calls)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Zero(t, calls)
}

func TestAuthenticate_Bearer(t *testing.T) {
	calls := 0
	app := buildGuardApp(nil, entity.ModuleOrder, entity.ActionView, &calls)
	resp, _ := doGet(t, app, "tok-support", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "support", body["user_id"])
	assert.Equal(t, entity.RoleSupport, body["role"])
	assert.Equal(t, 1, calls)
}

func TestAuthenticate_CookieTienePrioridad(t *testing.T) {
	calls := 0
	app := buildGuardApp(nil, entity.ModuleOrder, entity.ActionView, &calls)
	resp, _ := doGet(t, app, "tok-caido", "tok-admin")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "admin", body["user_id"])
}

func TestAuthenticate_RechazosDeResolucion(t *testing.T) {
	cases := []struct {
		token  string
		status int
		code   string
	}{
		{"token.invalido.aqui", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"tok-borrado", http.StatusUnauthorized, "PRINCIPAL_NOT_FOUND"},
		{"tok-sinrol", http.StatusUnauthorized, "ROLE_NOT_FOUND"},
		{"tok-desact", http.StatusUnauthorized, "ACCOUNT_DEACTIVATED"},
		{"tok-caido", http.StatusServiceUnavailable, "AUTH_UNAVAILABLE"},
	}
	for _, tc := range cases {
		t.Run(tc.token, func(t *testing.T) {
			calls := 0
			app := buildGuardApp(nil, entity.ModuleOrder, entity.ActionView, &calls)
			resp, body := doGet(t, app, tc.token, "")
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.code, body.Code)
			assert.Zero(t, calls, "el handler no se ejecuta")
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// RequirePermission
// ──────────────────────────────────────────────────────────────────────────────

// support puede editar pedidos pero no borrar productos.
func TestRequirePermission_Support(t *testing.T) {
	calls := 0
	app := buildGuardApp(nil, entity.ModuleOrder, entity.ActionEdit, &calls)
	resp, _ := doGet(t, app, "tok-support", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	app = buildGuardApp(nil, entity.ModuleProduct, entity.ActionDelete, &calls)
	resp, body := doGet(t, app, "tok-support", "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, string(rbac.ReasonInsufficientPermission), body.Code)
	assert.Equal(t, 1, calls)
}

func TestRequirePermission_RolInactivo(t *testing.T) {
	calls := 0
	app := buildGuardApp(nil, entity.ModuleProduct, entity.ActionView, &calls)
	resp, body := doGet(t, app, "tok-inactivo", "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, string(rbac.ReasonRoleInactive), body.Code)
	assert.Zero(t, calls)
}

func TestRequirePermission_ParDesconocido(t *testing.T) {
	calls := 0
	app := buildGuardApp(nil, entity.ModuleSettings, entity.ActionDelete, &calls)
	resp, body := doGet(t, app, "tok-admin", "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, string(rbac.ReasonUnknownPermission), body.Code)
	assert.Zero(t, calls)
}

func TestRequirePermission_SinAuthenticate_Retorna401(t *testing.T) {
	app := fiber.New()
	guard := apphttp.NewGuard(newResolver(), testCookie, nil, nil)
	app.Get("/protected", guard.RequirePermission(entity.ModuleOrder, entity.ActionView), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	resp, body := doGet(t, app, "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, string(rbac.ReasonNotAuthenticated), body.Code)
}

func TestGuard_RegistraMetricas(t *testing.T) {
	m := metrics.New("test")
	calls := 0
	app := buildGuardApp(m, entity.ModuleProduct, entity.ActionDelete, &calls)
	doGet(t, app, "tok-support", "")
	doGet(t, app, "", "")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	out := rec.Body.String()
	assert.Contains(t, out, `test_rbac_decisions_total{action="delete",module="product",reason="INSUFFICIENT_PERMISSION"} 1`)
	assert.Contains(t, out, `test_auth_principal_resolution_failures_total{reason="missing_token"} 1`)
}
