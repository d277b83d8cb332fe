package supply_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Suministros-api/internal/application/dto"
	"github.com/jhoicas/Suministros-api/internal/application/supply"
	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/access"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/ledger"
	"github.com/jhoicas/Suministros-api/internal/infrastructure/memory"
)

// ─── Fixture ─────────────────────────────────────────────────────────────────

type tenant struct {
	owner    access.Principal
	employee access.Principal
	supplier *entity.Supplier
	product  *entity.Product
	product2 *entity.Product
}

type fixture struct {
	store *memory.Store
	uc    *supply.SupplyUseCase
	a     tenant
	b     tenant
}

func seedTenant(t *testing.T, st *memory.Store, name, inn, supplierINN string) tenant {
	t.Helper()
	ctx := context.Background()
	now := time.Now()

	company := &entity.Company{ID: "company-" + name, INN: inn, Title: "Empresa " + name, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, st.Companies().Create(ctx, company))

	storage := &entity.Storage{ID: "storage-" + name, CompanyID: company.ID, Address: "Calle 1", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, st.Storages().Create(ctx, storage))

	supplier := &entity.Supplier{ID: "supplier-" + name, CompanyID: company.ID, Title: "Proveedor " + name, INN: supplierINN, CreatedAt: now}
	require.NoError(t, st.Suppliers().Create(ctx, supplier))

	mk := func(id string) *entity.Product {
		p := &entity.Product{ID: id, StorageID: storage.ID, Title: id, PurchasePrice: decimal.NewFromInt(10), SalePrice: decimal.NewFromInt(15), CreatedAt: now}
		require.NoError(t, st.Products().Create(ctx, p))
		return p
	}

	return tenant{
		owner:    access.Principal{UserID: "owner-" + name, CompanyID: company.ID, IsCompanyOwner: true, Authenticated: true},
		employee: access.Principal{UserID: "employee-" + name, CompanyID: company.ID, Authenticated: true},
		supplier: supplier,
		product:  mk("product-" + name + "-1"),
		product2: mk("product-" + name + "-2"),
	}
}

func newFixture(t *testing.T, rec supply.Recorder) *fixture {
	t.Helper()
	st := memory.NewStore()
	f := &fixture{
		store: st,
		a:     seedTenant(t, st, "a", "111111111111", "888888888888"),
		b:     seedTenant(t, st, "b", "222222222222", "999999999999"),
	}
	f.uc = supply.NewSupplyUseCase(st, st.Supplies(), supply.NewEngine(rec), rec, zerolog.Nop())
	return f
}

func (f *fixture) quantity(t *testing.T, productID string) int64 {
	t.Helper()
	p, err := f.store.Products().GetByID(context.Background(), productID)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Quantity
}

func (f *fixture) movementsFold(t *testing.T, productID string) int64 {
	t.Helper()
	movs, err := f.store.StockMovements().ListByProduct(context.Background(), productID, 0, 0)
	require.NoError(t, err)
	flat := make([]entity.StockMovement, 0, len(movs))
	for _, m := range movs {
		flat = append(flat, *m)
	}
	return ledger.Fold(flat)[productID]
}

func request(supplierID, date string, lines ...dto.SupplyLineItemRequest) dto.SupplyRequest {
	return dto.SupplyRequest{SupplierID: supplierID, DeliveryDate: date, LineItems: lines}
}

func line(productID string, qty int64) dto.SupplyLineItemRequest {
	return dto.SupplyLineItemRequest{ProductID: productID, Quantity: qty}
}

func fieldsOf(t *testing.T, err error) *domain.ValidationError {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrInvalidInput), "se esperaba ErrInvalidInput, got %v", err)
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	return ve
}

// ─── Escenarios ──────────────────────────────────────────────────────────────

func TestSupply_CrearEditarEliminar(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	// A: crear con 5 unidades
	created, err := f.uc.Create(ctx, f.a.owner, request(f.a.supplier.ID, "2024-05-01", line(f.a.product.ID, 5)))
	require.NoError(t, err)
	assert.Equal(t, int64(5), f.quantity(t, f.a.product.ID))
	assert.Equal(t, int64(5), created.TotalQuantity)
	assert.Equal(t, "2024-05-01", created.DeliveryDate)
	require.Len(t, created.LineItems, 1)

	// B: editar a 10 deja 10, no 15
	updated, err := f.uc.Update(ctx, f.a.owner, created.ID, request(f.a.supplier.ID, "2024-05-01", line(f.a.product.ID, 10)))
	require.NoError(t, err)
	assert.Equal(t, int64(10), f.quantity(t, f.a.product.ID))
	assert.Equal(t, int64(10), updated.TotalQuantity)

	// C: eliminar vuelve a 0
	require.NoError(t, f.uc.Delete(ctx, f.a.owner, created.ID))
	assert.Equal(t, int64(0), f.quantity(t, f.a.product.ID))
	assert.Equal(t, int64(0), f.movementsFold(t, f.a.product.ID))

	_, err = f.uc.GetByID(ctx, f.a.owner, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSupply_ProveedorDeOtraEmpresa(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	// D: empleado de B usa el proveedor de A
	_, err := f.uc.Create(ctx, f.b.employee, request(f.a.supplier.ID, "2024-05-01", line(f.b.product.ID, 5)))
	ve := fieldsOf(t, err)
	assert.Equal(t, domain.KindReferential, ve.Kind)
	assert.Contains(t, ve.Fields, supply.FieldSupplier)

	assert.Equal(t, int64(0), f.quantity(t, f.b.product.ID))
	assert.Equal(t, int64(0), f.quantity(t, f.a.product.ID))
	list, err := f.uc.List(ctx, f.b.employee, dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
}

func TestSupply_CantidadNegativa(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	// E
	_, err := f.uc.Create(ctx, f.a.owner, request(f.a.supplier.ID, "2024-05-01", line(f.a.product.ID, -5)))
	ve := fieldsOf(t, err)
	assert.Equal(t, domain.KindValidation, ve.Kind)
	assert.Contains(t, ve.Fields, supply.FieldQuantity)

	_, err = f.uc.Create(ctx, f.a.owner, request(f.a.supplier.ID, "2024-05-01", line(f.a.product.ID, 0)))
	assert.Contains(t, fieldsOf(t, err).Fields, supply.FieldQuantity)

	list, err := f.uc.List(ctx, f.a.owner, dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
	assert.Equal(t, int64(0), f.quantity(t, f.a.product.ID))
}

func TestSupply_FechaInvalida(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	// F
	for _, date := range []string{"invalid-date", "2024-02-30", ""} {
		_, err := f.uc.Create(ctx, f.a.owner, request(f.a.supplier.ID, date, line(f.a.product.ID, 5)))
		assert.Contains(t, fieldsOf(t, err).Fields, supply.FieldDeliveryDate, date)
	}
	assert.Equal(t, int64(0), f.quantity(t, f.a.product.ID))
}

func TestSupply_ProveedorObligatorio(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.uc.Create(context.Background(), f.a.owner, request("", "2024-05-01", line(f.a.product.ID, 1)))
	assert.Contains(t, fieldsOf(t, err).Fields, supply.FieldSupplier)
}

// ─── Propiedades ─────────────────────────────────────────────────────────────

func TestSupply_RoundTripRestauraStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	base, err := f.uc.Create(ctx, f.a.owner, request(f.a.supplier.ID, "2024-04-01", line(f.a.product.ID, 7)))
	require.NoError(t, err)

	before := map[string]int64{
		f.a.product.ID:  f.quantity(t, f.a.product.ID),
		f.a.product2.ID: f.quantity(t, f.a.product2.ID),
	}

	s, err := f.uc.Create(ctx, f.a.employee, request(f.a.supplier.ID, "2024-05-01",
		line(f.a.product.ID, 3), line(f.a.product2.ID, 4), line(f.a.product.ID, 2)))
	require.NoError(t, err)
	assert.Equal(t, before[f.a.product.ID]+5, f.quantity(t, f.a.product.ID))
	assert.Equal(t, before[f.a.product2.ID]+4, f.quantity(t, f.a.product2.ID))

	require.NoError(t, f.uc.Delete(ctx, f.a.employee, s.ID))
	for id, q := range before {
		assert.Equal(t, q, f.quantity(t, id), id)
		assert.Equal(t, q, f.movementsFold(t, id), id)
	}

	_, err = f.uc.GetByID(ctx, f.a.owner, base.ID)
	assert.NoError(t, err)
}

func TestSupply_EditarSoloFechaNoCambiaStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	s, err := f.uc.Create(ctx, f.a.owner, request(f.a.supplier.ID, "2024-05-01", line(f.a.product.ID, 5), line(f.a.product2.ID, 2)))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		out, err := f.uc.Update(ctx, f.a.owner, s.ID, request(f.a.supplier.ID, "2024-06-1"+string(rune('0'+i)), line(f.a.product.ID, 5), line(f.a.product2.ID, 2)))
		require.NoError(t, err)
		assert.Equal(t, "2024-06-1"+string(rune('0'+i)), out.DeliveryDate)
	}
	assert.Equal(t, int64(5), f.quantity(t, f.a.product.ID))
	assert.Equal(t, int64(2), f.quantity(t, f.a.product2.ID))
	assert.Equal(t, int64(5), f.movementsFold(t, f.a.product.ID))
}

func TestSupply_AislamientoEntreEmpresas(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	s, err := f.uc.Create(ctx, f.a.owner, request(f.a.supplier.ID, "2024-05-01", line(f.a.product.ID, 5)))
	require.NoError(t, err)

	for _, p := range []access.Principal{f.b.owner, f.b.employee} {
		_, err := f.uc.GetByID(ctx, p, s.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		_, err = f.uc.Update(ctx, p, s.ID, request(f.b.supplier.ID, "2024-05-01", line(f.b.product.ID, 1)))
		assert.ErrorIs(t, err, domain.ErrNotFound)

		assert.ErrorIs(t, f.uc.Delete(ctx, p, s.ID), domain.ErrNotFound)
	}

	assert.Equal(t, int64(5), f.quantity(t, f.a.product.ID))
	assert.Equal(t, int64(0), f.quantity(t, f.b.product.ID))

	list, err := f.uc.List(ctx, f.b.owner, dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
}

func TestSupply_ProductoAjenoNoMutaNada(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	_, err := f.uc.Create(ctx, f.a.owner, request(f.a.supplier.ID, "2024-05-01",
		line(f.a.product.ID, 5), line(f.b.product.ID, 5)))
	ve := fieldsOf(t, err)
	assert.Equal(t, domain.KindReferential, ve.Kind)
	assert.Contains(t, ve.Fields, supply.FieldProducts)

	assert.Equal(t, int64(0), f.quantity(t, f.a.product.ID))
	assert.Equal(t, int64(0), f.quantity(t, f.b.product.ID))
	assert.Equal(t, int64(0), f.movementsFold(t, f.a.product.ID))
}

func TestSupply_EdicionRechazadaConservaEstado(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	s, err := f.uc.Create(ctx, f.a.owner, request(f.a.supplier.ID, "2024-05-01", line(f.a.product.ID, 5)))
	require.NoError(t, err)

	_, err = f.uc.Update(ctx, f.a.owner, s.ID, request(f.a.supplier.ID, "2024-05-01", line("no-existe", 3)))
	assert.Contains(t, fieldsOf(t, err).Fields, supply.FieldProducts)

	got, err := f.uc.GetByID(ctx, f.a.owner, s.ID)
	require.NoError(t, err)
	require.Len(t, got.LineItems, 1)
	assert.Equal(t, f.a.product.ID, got.LineItems[0].ProductID)
	assert.Equal(t, int64(5), f.quantity(t, f.a.product.ID))
}

// Si el stock cayó por debajo de lo aplicado, revertir se rechaza y nada cambia.
func TestSupply_RollbackConStockInsuficiente(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	s, err := f.uc.Create(ctx, f.a.owner, request(f.a.supplier.ID, "2024-05-01", line(f.a.product.ID, 5)))
	require.NoError(t, err)

	_, err = f.store.Products().AdjustQuantity(ctx, f.a.product.ID, -3)
	require.NoError(t, err)

	err = f.uc.Delete(ctx, f.a.owner, s.ID)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(2), f.quantity(t, f.a.product.ID))

	_, err = f.uc.GetByID(ctx, f.a.owner, s.ID)
	assert.NoError(t, err)
}

// Líneas repetidas cuyo total por producto no cabe en el tope se rechazan sin tocar el stock.
func TestSupply_CantidadesQueDesbordan(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	_, err := f.uc.Create(ctx, f.a.owner, request(f.a.supplier.ID, "2024-05-01",
		line(f.a.product.ID, math.MaxInt64), line(f.a.product.ID, math.MaxInt64), line(f.a.product.ID, 7)))
	ve := fieldsOf(t, err)
	assert.Contains(t, ve.Fields, supply.FieldQuantity)
	assert.Equal(t, int64(0), f.quantity(t, f.a.product.ID))

	_, err = f.uc.Create(ctx, f.a.owner, request(f.a.supplier.ID, "2024-05-01", line(f.a.product.ID, ledger.MaxQuantity+1)))
	ve = fieldsOf(t, err)
	assert.Contains(t, ve.Fields, supply.FieldQuantity)

	list, err := f.uc.List(ctx, f.a.owner, dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)

	// en el tope exacto, repartido en dos líneas, se acepta
	s, err := f.uc.Create(ctx, f.a.owner, request(f.a.supplier.ID, "2024-05-01",
		line(f.a.product.ID, ledger.MaxQuantity-1), line(f.a.product.ID, 1)))
	require.NoError(t, err)
	assert.Equal(t, ledger.MaxQuantity, f.quantity(t, f.a.product.ID))
	assert.Equal(t, ledger.MaxQuantity, f.movementsFold(t, f.a.product.ID))

	require.NoError(t, f.uc.Delete(ctx, f.a.owner, s.ID))
	assert.Equal(t, int64(0), f.quantity(t, f.a.product.ID))
}

// Un apply que haría desbordar el stock materializado es un error de quantity, no de stock insuficiente.
func TestSupply_StockQueDesbordaEsValidacion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	_, err := f.store.Products().AdjustQuantity(ctx, f.a.product2.ID, math.MaxInt64-3)
	require.NoError(t, err)

	_, err = f.uc.Create(ctx, f.a.owner, request(f.a.supplier.ID, "2024-05-01", line(f.a.product2.ID, 10)))
	assert.NotErrorIs(t, err, domain.ErrInsufficientStock)
	ve := fieldsOf(t, err)
	assert.Contains(t, ve.Fields, supply.FieldQuantity)
	assert.Equal(t, int64(math.MaxInt64-3), f.quantity(t, f.a.product2.ID))
}

func TestSupply_SinLineas(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	s, err := f.uc.Create(ctx, f.a.owner, request(f.a.supplier.ID, "2024-05-01"))
	require.NoError(t, err)
	assert.Empty(t, s.LineItems)
	assert.Equal(t, int64(0), s.TotalQuantity)
	require.NoError(t, f.uc.Delete(ctx, f.a.owner, s.ID))
}

func TestSupply_PrincipalSinEmpresaOAnonimo(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	req := request(f.a.supplier.ID, "2024-05-01", line(f.a.product.ID, 5))

	_, err := f.uc.Create(ctx, access.Anonymous, req)
	assert.ErrorIs(t, err, domain.ErrAuthenticationRequired)

	_, err = f.uc.Create(ctx, access.Principal{UserID: "u", Authenticated: true}, req)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	assert.Equal(t, int64(0), f.quantity(t, f.a.product.ID))
}

// ─── Métricas ────────────────────────────────────────────────────────────────

type recorderMock struct{ mock.Mock }

func (m *recorderMock) ObserveLedger(op, outcome string, elapsed time.Duration) {
	m.Called(op, outcome, elapsed)
}

func (m *recorderMock) AddMovements(kind string, n int) {
	m.Called(kind, n)
}

func TestSupply_RegistraMetricas(t *testing.T) {
	ctx := context.Background()
	rec := &recorderMock{}
	rec.On("ObserveLedger", "create", supply.OutcomeOK, mock.Anything).Once()
	rec.On("AddMovements", entity.MovementApply, 2).Once()
	rec.On("ObserveLedger", "create", supply.OutcomeRejected, mock.Anything).Once()

	f := newFixture(t, rec)

	_, err := f.uc.Create(ctx, f.a.owner, request(f.a.supplier.ID, "2024-05-01", line(f.a.product.ID, 1), line(f.a.product2.ID, 1)))
	require.NoError(t, err)
	_, err = f.uc.Create(ctx, f.a.owner, request(f.a.supplier.ID, "nope"))
	require.Error(t, err)

	rec.AssertExpectations(t)
}
