// seed_catalog importa proveedores y productos de una empresa desde un CSV.
// Las filas pasan por los mismos casos de uso que la API, actuando como el propietario.
//
// Uso: go run ./cmd/seed_catalog -company <id> -file catalogo.csv [-encoding latin1]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/Suministros-api/internal/application/dto"
	"github.com/jhoicas/Suministros-api/internal/application/supply"
	"github.com/jhoicas/Suministros-api/internal/application/usecase"
	"github.com/jhoicas/Suministros-api/internal/domain/access"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
	"github.com/jhoicas/Suministros-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Suministros-api/pkg/config"
	"github.com/jhoicas/Suministros-api/pkg/logger"
)

func main() {
	companyID := flag.String("company", "", "ID de la empresa destino")
	file := flag.String("file", "catalogo.csv", "ruta del CSV")
	encoding := flag.String("encoding", "utf-8", "codificación del CSV: utf-8, latin1, windows-1252")
	flag.Parse()

	if *companyID == "" {
		fmt.Fprintln(os.Stderr, "-company es obligatorio")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "seed_catalog"})

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir CSV")
	}
	defer f.Close()

	r, err := decoderFor(f, *encoding)
	if err != nil {
		log.Fatal().Err(err).Msg("codificación")
	}
	cat, err := parseCatalog(r)
	if err != nil {
		log.Fatal().Err(err).Msg("CSV inválido")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	users := postgres.NewUserRepository(pool)
	storages := postgres.NewStorageRepository(pool)
	owner, err := ownerOf(ctx, users, *companyID)
	if err != nil {
		log.Fatal().Err(err).Msg("resolver propietario")
	}
	storage, err := storages.GetByCompany(ctx, *companyID)
	if err != nil || storage == nil {
		log.Fatal().Err(err).Msg("la empresa no tiene storage")
	}

	supplierUC := usecase.NewSupplierUseCase(postgres.NewSupplierRepository(pool), postgres.NewTxRunner(pool), supply.NewEngine(nil), log.Zerolog())
	productUC := usecase.NewProductUseCase(postgres.NewProductRepository(pool), storages, postgres.NewStockMovementRepository(pool))

	var created, failed int
	for _, s := range cat.suppliers {
		if _, err := supplierUC.Create(ctx, owner, dto.CreateSupplierRequest{Title: s.title, INN: s.inn}); err != nil {
			log.Warn().Err(err).Int("line", s.line).Msg("proveedor rechazado")
			failed++
			continue
		}
		created++
	}
	for _, p := range cat.products {
		in := dto.CreateProductRequest{StorageID: storage.ID, Title: p.title, PurchasePrice: p.purchasePrice, SalePrice: p.salePrice}
		if _, err := productUC.Create(ctx, owner, in); err != nil {
			log.Warn().Err(err).Int("line", p.line).Msg("producto rechazado")
			failed++
			continue
		}
		created++
	}

	log.Info().Int("created", created).Int("failed", failed).Msg("importación terminada")
	if failed > 0 {
		os.Exit(1)
	}
}

// ownerOf construye el principal del propietario de la empresa.
func ownerOf(ctx context.Context, users repository.UserRepository, companyID string) (access.Principal, error) {
	list, err := users.ListByCompany(ctx, companyID)
	if err != nil {
		return access.Anonymous, err
	}
	for _, u := range list {
		if u.IsCompanyOwner && u.IsActive {
			return access.Principal{UserID: u.ID, CompanyID: companyID, IsCompanyOwner: true, Authenticated: true}, nil
		}
	}
	return access.Anonymous, fmt.Errorf("la empresa %s no tiene propietario activo", companyID)
}
