package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jhoicas/Suministros-api/internal/application/auth"
	"github.com/jhoicas/Suministros-api/internal/application/supply"
	"github.com/jhoicas/Suministros-api/internal/application/usecase"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
	"github.com/jhoicas/Suministros-api/internal/infrastructure/memory"
	"github.com/jhoicas/Suministros-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Suministros-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Suministros-api/internal/interfaces/http"
	"github.com/jhoicas/Suministros-api/pkg/config"
	"github.com/jhoicas/Suministros-api/pkg/logger"
)

// txRunner lo implementan postgres.TxRunner y memory.Store.
type txRunner interface {
	supply.TxRunner
	usecase.TenantTxRunner
}

// backend agrupa los adaptadores de persistencia elegidos por DB_DRIVER.
type backend struct {
	tx        txRunner
	companies repository.CompanyRepository
	users     repository.UserRepository
	storages  repository.StorageRepository
	products  repository.ProductRepository
	suppliers repository.SupplierRepository
	supplies  repository.SupplyRepository
	movements repository.StockMovementRepository
	close     func()
}

func openBackend(ctx context.Context, cfg config.DBConfig, log *logger.Logger) (*backend, error) {
	if cfg.Driver == config.DriverMemory {
		log.Warn().Msg("DB_DRIVER=memory: los datos se pierden al reiniciar")
		st := memory.NewStore()
		return &backend{
			tx:        st,
			companies: st.Companies(),
			users:     st.Users(),
			storages:  st.Storages(),
			products:  st.Products(),
			suppliers: st.Suppliers(),
			supplies:  st.Supplies(),
			movements: st.StockMovements(),
			close:     func() {},
		}, nil
	}

	if cfg.AutoMigrate {
		if err := postgres.Migrate(ctx, cfg.ConnectionString(), postgres.MigrateUp); err != nil {
			return nil, err
		}
		log.Info().Msg("migraciones aplicadas")
	}
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &backend{
		tx:        postgres.NewTxRunner(pool),
		companies: postgres.NewCompanyRepository(pool),
		users:     postgres.NewUserRepository(pool),
		storages:  postgres.NewStorageRepository(pool),
		products:  postgres.NewProductRepository(pool),
		suppliers: postgres.NewSupplierRepository(pool),
		supplies:  postgres.NewSupplyRepository(pool),
		movements: postgres.NewStockMovementRepository(pool),
		close:     pool.Close,
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	be, err := openBackend(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar persistencia")
	}
	defer be.close()

	reg := metrics.Registry()
	ledgerMetrics := metrics.NewLedger(reg)
	engine := supply.NewEngine(ledgerMetrics)

	authUC := auth.NewAuthUseCase(be.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	userUC := usecase.NewUserUseCase(be.users)
	companyUC := usecase.NewCompanyUseCase(be.tx, be.companies, be.users, be.storages)
	storageUC := usecase.NewStorageUseCase(be.storages)
	productUC := usecase.NewProductUseCase(be.products, be.storages, be.movements)
	supplierUC := usecase.NewSupplierUseCase(be.suppliers, be.tx, engine, log.Zerolog())
	supplyUC := supply.NewSupplyUseCase(be.tx, be.supplies, engine, ledgerMetrics, log.Zerolog())

	appCfg := httpRouter.AppConfig{Name: cfg.App.Name, Log: log.Component("http")}
	if cfg.Metrics.Enabled {
		appCfg.Metrics = metrics.NewHTTP(reg)
	}
	app := httpRouter.NewApp(appCfg)

	if cfg.Metrics.Enabled {
		app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler(reg)))
	}

	// Swagger UI: http://localhost:<port>/docs
	if cfg.App.SwaggerFile != "" {
		if _, err := os.Stat(cfg.App.SwaggerFile); err == nil {
			app.Use(swagger.New(swagger.Config{
				BasePath: "/",
				FilePath: cfg.App.SwaggerFile,
				Path:     "docs",
				Title:    "Suministros API",
			}))
		} else {
			log.Warn().Str("file", cfg.App.SwaggerFile).Msg("swagger deshabilitado: archivo no encontrado")
		}
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:     authUC,
		UserUC:     userUC,
		CompanyUC:  companyUC,
		StorageUC:  storageUC,
		ProductUC:  productUC,
		SupplierUC: supplierUC,
		SupplyUC:   supplyUC,
		JWTSecret:  cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
