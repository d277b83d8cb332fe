//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/Suministros-api/internal/application/dto"
	"github.com/jhoicas/Suministros-api/internal/application/supply"
	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/access"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Suministros-api/pkg/config"
)

func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("suministros_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, postgres.Migrate(ctx, dsn, postgres.MigrateUp))

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: 10})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

type seeded struct {
	principal access.Principal
	supplier  *entity.Supplier
	product   *entity.Product
}

func seed(t *testing.T, pool *pgxpool.Pool, inn, supplierINN string) seeded {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	company := &entity.Company{ID: uuid.NewString(), INN: inn, Title: "Empresa " + inn, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, postgres.NewCompanyRepository(pool).Create(ctx, company))

	user := &entity.User{ID: uuid.NewString(), Email: inn + "@example.com", Username: "u" + inn, PasswordHash: "x", IsActive: true, CreatedAt: now, UpdatedAt: now}
	users := postgres.NewUserRepository(pool)
	require.NoError(t, users.Create(ctx, user))
	attached, err := users.AttachToCompany(ctx, user.ID, company.ID, true)
	require.NoError(t, err)
	require.True(t, attached)

	storage := &entity.Storage{ID: uuid.NewString(), CompanyID: company.ID, Address: "Calle 1", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, postgres.NewStorageRepository(pool).Create(ctx, storage))

	supplier := &entity.Supplier{ID: uuid.NewString(), CompanyID: company.ID, Title: "Proveedor", INN: supplierINN, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, postgres.NewSupplierRepository(pool).Create(ctx, supplier))

	product := &entity.Product{ID: uuid.NewString(), StorageID: storage.ID, Title: "Harina", PurchasePrice: decimal.RequireFromString("10.50"), SalePrice: decimal.RequireFromString("12.00"), CreatedAt: now, UpdatedAt: now}
	products := postgres.NewProductRepository(pool)
	require.NoError(t, products.Create(ctx, product))

	got, err := products.GetByID(ctx, product.ID)
	require.NoError(t, err)
	require.Equal(t, company.ID, got.CompanyID)
	require.True(t, product.PurchasePrice.Equal(got.PurchasePrice))

	return seeded{
		principal: access.Principal{UserID: user.ID, CompanyID: company.ID, IsCompanyOwner: true, Authenticated: true},
		supplier:  supplier,
		product:   product,
	}
}

func quantity(t *testing.T, pool *pgxpool.Pool, productID string) int64 {
	t.Helper()
	p, err := postgres.NewProductRepository(pool).GetByID(context.Background(), productID)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Quantity
}

func TestPostgres_LedgerCicloCompleto(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()
	a := seed(t, pool, "111111111111", "888888888888")
	b := seed(t, pool, "222222222222", "999999999999")

	tx := postgres.NewTxRunner(pool)
	uc := supply.NewSupplyUseCase(tx, postgres.NewSupplyRepository(pool), supply.NewEngine(nil), nil, zerolog.Nop())

	created, err := uc.Create(ctx, a.principal, dto.SupplyRequest{
		SupplierID:   a.supplier.ID,
		DeliveryDate: "2026-03-01",
		LineItems:    []dto.SupplyLineItemRequest{{ProductID: a.product.ID, Quantity: 7}, {ProductID: a.product.ID, Quantity: 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), quantity(t, pool, a.product.ID))
	assert.Equal(t, "2026-03-01", created.DeliveryDate)
	assert.Len(t, created.LineItems, 2)

	// Otra empresa no ve la supply.
	_, err = uc.GetByID(ctx, b.principal, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Un producto ajeno se rechaza sin tocar el stock.
	_, err = uc.Update(ctx, a.principal, created.ID, dto.SupplyRequest{
		SupplierID:   a.supplier.ID,
		DeliveryDate: "2026-03-02",
		LineItems:    []dto.SupplyLineItemRequest{{ProductID: b.product.ID, Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, int64(10), quantity(t, pool, a.product.ID))
	assert.Equal(t, int64(0), quantity(t, pool, b.product.ID))

	_, err = uc.Update(ctx, a.principal, created.ID, dto.SupplyRequest{
		SupplierID:   a.supplier.ID,
		DeliveryDate: "2026-03-02",
		LineItems:    []dto.SupplyLineItemRequest{{ProductID: a.product.ID, Quantity: 4}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), quantity(t, pool, a.product.ID))

	movs, err := postgres.NewStockMovementRepository(pool).ListByProduct(ctx, a.product.ID, 0, 0)
	require.NoError(t, err)
	var sum int64
	for _, m := range movs {
		sum += m.Delta
	}
	assert.Equal(t, int64(4), sum)

	require.NoError(t, uc.Delete(ctx, a.principal, created.ID))
	assert.Equal(t, int64(0), quantity(t, pool, a.product.ID))
}

func TestPostgres_AdjustQuantityNoBajaDeCero(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()
	a := seed(t, pool, "333333333333", "777777777777")
	products := postgres.NewProductRepository(pool)

	qty, err := products.AdjustQuantity(ctx, a.product.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), qty)

	_, err = products.AdjustQuantity(ctx, a.product.ID, -6)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(5), quantity(t, pool, a.product.ID))

	_, err = products.AdjustQuantity(ctx, uuid.NewString(), 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPostgres_CreacionesConcurrentes(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()
	a := seed(t, pool, "444444444444", "666666666666")
	uc := supply.NewSupplyUseCase(postgres.NewTxRunner(pool), postgres.NewSupplyRepository(pool), supply.NewEngine(nil), nil, zerolog.Nop())

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Create(ctx, a.principal, dto.SupplyRequest{
				SupplierID:   a.supplier.ID,
				DeliveryDate: "2026-04-01",
				LineItems:    []dto.SupplyLineItemRequest{{ProductID: a.product.ID, Quantity: 2}},
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int64(2*workers), quantity(t, pool, a.product.ID))
}

func TestPostgres_AttachToCompanyCondicional(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()
	a := seed(t, pool, "555555555555", "121212121212")
	users := postgres.NewUserRepository(pool)

	attached, err := users.AttachToCompany(ctx, a.principal.UserID, a.principal.CompanyID, false)
	require.NoError(t, err)
	assert.False(t, attached, "ya tenía empresa")

	_, err = users.AttachToCompany(ctx, uuid.NewString(), a.principal.CompanyID, false)
	assert.True(t, errors.Is(err, domain.ErrUserNotFound))
}
