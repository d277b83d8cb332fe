package http_test

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Suministros-api/internal/application/auth"
	"github.com/jhoicas/Suministros-api/internal/application/supply"
	"github.com/jhoicas/Suministros-api/internal/application/usecase"
	"github.com/jhoicas/Suministros-api/internal/infrastructure/memory"
	"github.com/jhoicas/Suministros-api/internal/infrastructure/metrics"
	apphttp "github.com/jhoicas/Suministros-api/internal/interfaces/http"
)

// ─── Servidor de prueba sobre el store en memoria ───────────────────────────

type server struct {
	app *fiber.App
	reg *prometheus.Registry
}

func newServer(t *testing.T) *server {
	t.Helper()
	st := memory.NewStore()
	reg := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTP(reg)
	ledgerMetrics := metrics.NewLedger(reg)
	engine := supply.NewEngine(ledgerMetrics)

	app := apphttp.NewApp(apphttp.AppConfig{Name: "test", Log: zerolog.Nop(), Metrics: httpMetrics})
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:     auth.NewAuthUseCase(st.Users(), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: 5, Issuer: testIssuer}).WithHashCost(4),
		UserUC:     usecase.NewUserUseCase(st.Users()),
		CompanyUC:  usecase.NewCompanyUseCase(st, st.Companies(), st.Users(), st.Storages()),
		StorageUC:  usecase.NewStorageUseCase(st.Storages()),
		ProductUC:  usecase.NewProductUseCase(st.Products(), st.Storages(), st.StockMovements()),
		SupplierUC: usecase.NewSupplierUseCase(st.Suppliers(), st, engine, zerolog.Nop()),
		SupplyUC:   supply.NewSupplyUseCase(st, st.Supplies(), engine, ledgerMetrics, zerolog.Nop()),
		JWTSecret:  testJWTSecret,
	})
	return &server{app: app, reg: reg}
}

type result struct {
	status int
	body   map[string]any
}

func (s *server) call(t *testing.T, method, path, token string, body any) result {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := result{status: resp.StatusCode}
	if resp.ContentLength != 0 && resp.StatusCode != http.StatusNoContent {
		_ = json.NewDecoder(resp.Body).Decode(&out.body)
	}
	return out
}

// user registra y loguea un usuario; devuelve su token.
func (s *server) user(t *testing.T, name string) string {
	t.Helper()
	email := name + "@test.io"
	r := s.call(t, http.MethodPost, "/api/auth/register", "", fiber.Map{"email": email, "username": name, "password": "password123"})
	require.Equal(t, http.StatusCreated, r.status, r.body)
	r = s.call(t, http.MethodPost, "/api/auth/login", "", fiber.Map{"email": email, "password": "password123"})
	require.Equal(t, http.StatusOK, r.status, r.body)
	return r.body["token"].(string)
}

type tenantHTTP struct {
	owner      string
	employee   string
	companyID  string
	supplierID string
	productID  string
}

// tenant arma una empresa completa: propietario, empleado, storage, proveedor y un producto.
func (s *server) tenant(t *testing.T, name, inn, supplierINN string) tenantHTTP {
	t.Helper()
	owner := s.user(t, name+"owner")
	employee := s.user(t, name+"emp")

	r := s.call(t, http.MethodPost, "/api/companies", owner, fiber.Map{"inn": inn, "title": "Empresa " + name})
	require.Equal(t, http.StatusCreated, r.status, r.body)
	companyID := r.body["id"].(string)

	r = s.call(t, http.MethodPost, "/api/companies/"+companyID+"/employees", owner, fiber.Map{"email": name + "emp@test.io"})
	require.Equal(t, http.StatusOK, r.status, r.body)

	r = s.call(t, http.MethodPost, "/api/storage", owner, fiber.Map{"address": "Calle " + name})
	require.Equal(t, http.StatusCreated, r.status, r.body)
	storageID := r.body["id"].(string)

	r = s.call(t, http.MethodPost, "/api/suppliers", employee, fiber.Map{"title": "Proveedor " + name, "inn": supplierINN})
	require.Equal(t, http.StatusCreated, r.status, r.body)
	supplierID := r.body["id"].(string)

	r = s.call(t, http.MethodPost, "/api/products", employee, fiber.Map{
		"storage_id": storageID, "title": "Harina", "purchase_price": "10.50", "sale_price": 12,
	})
	require.Equal(t, http.StatusCreated, r.status, r.body)

	return tenantHTTP{owner: owner, employee: employee, companyID: companyID, supplierID: supplierID, productID: r.body["id"].(string)}
}

func (s *server) quantity(t *testing.T, token, productID string) float64 {
	t.Helper()
	r := s.call(t, http.MethodGet, "/api/products/"+productID, token, nil)
	require.Equal(t, http.StatusOK, r.status, r.body)
	return r.body["quantity"].(float64)
}

func supplyBody(supplierID, date string, lines ...fiber.Map) fiber.Map {
	if lines == nil {
		lines = []fiber.Map{}
	}
	return fiber.Map{"supplier_id": supplierID, "delivery_date": date, "line_items": lines}
}

func item(productID string, qty any) fiber.Map {
	return fiber.Map{"product_id": productID, "quantity": qty}
}

func fields(t *testing.T, r result) map[string]any {
	t.Helper()
	f, ok := r.body["fields"].(map[string]any)
	require.True(t, ok, "la respuesta debe traer fields: %v", r.body)
	return f
}

// ─── Escenarios A–F ──────────────────────────────────────────────────────────

func TestAPI_SupplyCicloCompleto(t *testing.T) {
	s := newServer(t)
	a := s.tenant(t, "a", "111111111111", "888888888888")
	require.Equal(t, float64(0), s.quantity(t, a.owner, a.productID))

	// A: crear supply con 5 unidades.
	r := s.call(t, http.MethodPost, "/api/supplies", a.owner, supplyBody(a.supplierID, "2026-01-15", item(a.productID, 5)))
	require.Equal(t, http.StatusCreated, r.status, r.body)
	supplyID := r.body["id"].(string)
	assert.Equal(t, "2026-01-15", r.body["delivery_date"])
	assert.Equal(t, float64(5), r.body["total_quantity"])
	assert.Equal(t, float64(5), s.quantity(t, a.owner, a.productID))

	// B: editar a 10 deja 10, no 15.
	r = s.call(t, http.MethodPut, "/api/supplies/"+supplyID, a.employee, supplyBody(a.supplierID, "2026-01-15", item(a.productID, 10)))
	require.Equal(t, http.StatusOK, r.status, r.body)
	assert.Equal(t, float64(10), s.quantity(t, a.owner, a.productID))

	// Solo fecha: cantidades sin cambio.
	r = s.call(t, http.MethodPut, "/api/supplies/"+supplyID, a.employee, supplyBody(a.supplierID, "2026-01-20", item(a.productID, 10)))
	require.Equal(t, http.StatusOK, r.status, r.body)
	assert.Equal(t, float64(10), s.quantity(t, a.owner, a.productID))

	r = s.call(t, http.MethodGet, "/api/products/"+a.productID+"/movements?limit=50", a.owner, nil)
	require.Equal(t, http.StatusOK, r.status, r.body)
	var sum float64
	for _, m := range r.body["items"].([]any) {
		sum += m.(map[string]any)["delta"].(float64)
	}
	assert.Equal(t, float64(10), sum, "la suma del log coincide con quantity")

	// C: eliminar vuelve a 0.
	r = s.call(t, http.MethodDelete, "/api/supplies/"+supplyID, a.owner, nil)
	require.Equal(t, http.StatusNoContent, r.status)
	assert.Equal(t, float64(0), s.quantity(t, a.owner, a.productID))

	r = s.call(t, http.MethodGet, "/api/supplies/"+supplyID, a.owner, nil)
	assert.Equal(t, http.StatusNotFound, r.status)
}

func TestAPI_EmpleadoDeOtraEmpresaNoUsaProveedorAjeno(t *testing.T) {
	s := newServer(t)
	a := s.tenant(t, "a", "111111111111", "888888888888")
	b := s.tenant(t, "b", "222222222222", "999999999999")

	// D
	r := s.call(t, http.MethodPost, "/api/supplies", b.employee, supplyBody(a.supplierID, "2026-01-15", item(b.productID, 5)))
	assert.Equal(t, http.StatusBadRequest, r.status)
	assert.Equal(t, "REFERENTIAL", r.body["code"])
	assert.Contains(t, fields(t, r), "supplier")
	assert.Equal(t, float64(0), s.quantity(t, b.owner, b.productID))

	r = s.call(t, http.MethodPost, "/api/supplies", b.employee, supplyBody(b.supplierID, "2026-01-15", item(a.productID, 5)))
	assert.Equal(t, http.StatusBadRequest, r.status)
	assert.Contains(t, fields(t, r), "products")
	assert.Equal(t, float64(0), s.quantity(t, a.owner, a.productID))

	r = s.call(t, http.MethodGet, "/api/supplies", b.owner, nil)
	require.Equal(t, http.StatusOK, r.status)
	assert.Empty(t, r.body["items"])
}

func TestAPI_CantidadNegativaSeRechaza(t *testing.T) {
	s := newServer(t)
	a := s.tenant(t, "a", "111111111111", "888888888888")

	// E
	r := s.call(t, http.MethodPost, "/api/supplies", a.owner, supplyBody(a.supplierID, "2026-01-15", item(a.productID, -5)))
	assert.Equal(t, http.StatusBadRequest, r.status)
	assert.Equal(t, "VALIDATION", r.body["code"])
	assert.Contains(t, fields(t, r), "quantity")
	assert.Equal(t, float64(0), s.quantity(t, a.owner, a.productID))

	r = s.call(t, http.MethodGet, "/api/supplies", a.owner, nil)
	require.Equal(t, http.StatusOK, r.status)
	assert.Empty(t, r.body["items"])

	// Cantidad no entera: error de tipo con el mismo nombre de campo.
	r = s.call(t, http.MethodPost, "/api/supplies", a.owner, supplyBody(a.supplierID, "2026-01-15", item(a.productID, 1.5)))
	assert.Equal(t, http.StatusBadRequest, r.status)
	assert.Contains(t, fields(t, r), "quantity")
	// Líneas repetidas cuyo total desborda: 400 sobre quantity, el stock no cambia.
	big := int64(math.MaxInt64)
	r = s.call(t, http.MethodPost, "/api/supplies", a.owner,
		supplyBody(a.supplierID, "2026-01-15", item(a.productID, big), item(a.productID, big), item(a.productID, 7)))
	assert.Equal(t, http.StatusBadRequest, r.status)
	assert.Equal(t, "VALIDATION", r.body["code"])
	assert.Contains(t, fields(t, r), "quantity")
	assert.Equal(t, float64(0), s.quantity(t, a.owner, a.productID))
}

func TestAPI_FechaInvalidaSeRechaza(t *testing.T) {
	s := newServer(t)
	a := s.tenant(t, "a", "111111111111", "888888888888")

	// F
	for _, date := range []string{"invalid-date", "2026-02-30", ""} {
		r := s.call(t, http.MethodPost, "/api/supplies", a.owner, supplyBody(a.supplierID, date, item(a.productID, 5)))
		assert.Equal(t, http.StatusBadRequest, r.status, date)
		assert.Contains(t, fields(t, r), "delivery_date", date)
	}
	assert.Equal(t, float64(0), s.quantity(t, a.owner, a.productID))
}

// ─── Aislamiento y permisos ──────────────────────────────────────────────────

func TestAPI_AislamientoEntreEmpresas(t *testing.T) {
	s := newServer(t)
	a := s.tenant(t, "a", "111111111111", "888888888888")
	b := s.tenant(t, "b", "222222222222", "999999999999")

	r := s.call(t, http.MethodPost, "/api/supplies", a.owner, supplyBody(a.supplierID, "2026-01-15", item(a.productID, 3)))
	require.Equal(t, http.StatusCreated, r.status, r.body)
	supplyID := r.body["id"].(string)

	for _, path := range []string{
		"/api/supplies/" + supplyID,
		"/api/products/" + a.productID,
		"/api/suppliers/" + a.supplierID,
		"/api/companies/" + a.companyID,
	} {
		r = s.call(t, http.MethodGet, path, b.owner, nil)
		assert.Equal(t, http.StatusNotFound, r.status, path)
		r = s.call(t, http.MethodDelete, path, b.owner, nil)
		assert.Equal(t, http.StatusNotFound, r.status, path)
	}
	r = s.call(t, http.MethodPut, "/api/supplies/"+supplyID, b.owner, supplyBody(b.supplierID, "2026-01-15"))
	assert.Equal(t, http.StatusNotFound, r.status)

	assert.Equal(t, float64(3), s.quantity(t, a.owner, a.productID))
}

func TestAPI_PermisosDePropietario(t *testing.T) {
	s := newServer(t)
	a := s.tenant(t, "a", "111111111111", "888888888888")

	r := s.call(t, http.MethodPut, "/api/companies/"+a.companyID, a.employee, fiber.Map{"title": "Otro"})
	assert.Equal(t, http.StatusForbidden, r.status)

	r = s.call(t, http.MethodDelete, "/api/companies/"+a.companyID, a.employee, nil)
	assert.Equal(t, http.StatusForbidden, r.status)

	r = s.call(t, http.MethodGet, "/api/companies/"+a.companyID, a.employee, nil)
	require.Equal(t, http.StatusOK, r.status)
	assert.Len(t, r.body["users"], 2)

	r = s.call(t, http.MethodPost, "/api/storage", a.owner, fiber.Map{"address": "Otra"})
	assert.Equal(t, http.StatusBadRequest, r.status, "una empresa tiene un solo storage")
}

func TestAPI_SinTokenYSinEmpresa(t *testing.T) {
	s := newServer(t)

	r := s.call(t, http.MethodPost, "/api/supplies", "", supplyBody("x", "2026-01-15"))
	assert.Equal(t, http.StatusUnauthorized, r.status)

	loner := s.user(t, "solo")
	r = s.call(t, http.MethodPost, "/api/supplies", loner, supplyBody("x", "2026-01-15"))
	assert.Equal(t, http.StatusForbidden, r.status)

	r = s.call(t, http.MethodGet, "/api/users/me", loner, nil)
	require.Equal(t, http.StatusOK, r.status)
	assert.Nil(t, r.body["company_id"])
}

// ─── Auth y validación de entrada ────────────────────────────────────────────

func TestAPI_RegistroYLogin(t *testing.T) {
	s := newServer(t)
	s.user(t, "ana")

	r := s.call(t, http.MethodPost, "/api/auth/register", "", fiber.Map{"email": "ana@test.io", "username": "ana2", "password": "password123"})
	assert.Equal(t, http.StatusConflict, r.status)

	r = s.call(t, http.MethodPost, "/api/auth/register", "", fiber.Map{"email": "no-es-email", "username": "x", "password": "corta"})
	assert.Equal(t, http.StatusBadRequest, r.status)
	f := fields(t, r)
	assert.Contains(t, f, "email")
	assert.Contains(t, f, "username")
	assert.Contains(t, f, "password")

	r = s.call(t, http.MethodPost, "/api/auth/login", "", fiber.Map{"email": "ana@test.io", "password": "incorrecta"})
	assert.Equal(t, http.StatusUnauthorized, r.status)

	r = s.call(t, http.MethodPost, "/api/auth/login", "", "{no es json")
	assert.Equal(t, http.StatusBadRequest, r.status)
	assert.Contains(t, fields(t, r), "body")
}

func TestAPI_MetricasYHealth(t *testing.T) {
	s := newServer(t)
	r := s.call(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, r.status)
	assert.Equal(t, "ok", r.body["status"])

	a := s.tenant(t, "a", "111111111111", "888888888888")
	r = s.call(t, http.MethodPost, "/api/supplies", a.owner, supplyBody(a.supplierID, "2026-01-15", item(a.productID, 2)))
	require.Equal(t, http.StatusCreated, r.status)

	n, err := testutil.GatherAndCount(s.reg, metrics.MetricHTTPRequestsTotal)
	require.NoError(t, err)
	assert.Greater(t, n, 0)

	n, err = testutil.GatherAndCount(s.reg, metrics.MetricStockMovementsTotal)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
