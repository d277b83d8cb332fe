package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Suministros-api/internal/application/dto"
	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/access"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ProductUseCase casos de uso CRUD para productos. Quantity solo cambia vía supplies.
type ProductUseCase struct {
	repo      repository.ProductRepository
	storages  repository.StorageRepository
	movements repository.StockMovementRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, storages repository.StorageRepository, movements repository.StockMovementRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo, storages: storages, movements: movements}
}

// Create crea un producto en un storage de la empresa del principal. Quantity inicia en 0.
func (uc *ProductUseCase) Create(ctx context.Context, p access.Principal, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := access.Authorize(p, access.Product, access.Create, p.CompanyID); err != nil {
		return nil, err
	}
	verr := domain.NewValidationError(domain.KindValidation)
	title := strings.TrimSpace(in.Title)
	if title == "" {
		verr.Add("title", "es obligatorio")
	}
	checkPrice(verr, "purchase_price", in.PurchasePrice)
	checkPrice(verr, "sale_price", in.SalePrice)
	if err := verr.Err(); err != nil {
		return nil, err
	}

	storage, err := uc.storages.GetByID(ctx, in.StorageID)
	if err != nil {
		return nil, err
	}
	if storage == nil || !access.SameTenant(p, storage.CompanyID) {
		return nil, domain.Referential("storage", "el storage no existe o pertenece a otra empresa")
	}

	now := time.Now()
	product := &entity.Product{
		ID:            uuid.New().String(),
		StorageID:     storage.ID,
		CompanyID:     storage.CompanyID,
		Title:         title,
		PurchasePrice: in.PurchasePrice,
		SalePrice:     in.SalePrice,
		Quantity:      0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

func checkPrice(verr *domain.ValidationError, field string, v decimal.Decimal) {
	if v.IsNegative() {
		verr.Add(field, "no puede ser negativo")
	}
}

// load obtiene el producto y verifica la capacidad c del principal sobre él.
func (uc *ProductUseCase) load(ctx context.Context, p access.Principal, id string, c access.Capability) (*entity.Product, error) {
	if err := access.Authorize(p, access.Product, access.Read, p.CompanyID); err != nil {
		return nil, err
	}
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if err := access.Authorize(p, access.Product, c, product.CompanyID); err != nil {
		return nil, err
	}
	return product, nil
}

// GetByID obtiene un producto de la empresa del principal.
func (uc *ProductUseCase) GetByID(ctx context.Context, p access.Principal, id string) (*dto.ProductResponse, error) {
	product, err := uc.load(ctx, p, id, access.Read)
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// Update actualiza título y precios. No permite modificar quantity ni storage.
func (uc *ProductUseCase) Update(ctx context.Context, p access.Principal, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.load(ctx, p, id, access.Edit)
	if err != nil {
		return nil, err
	}
	verr := domain.NewValidationError(domain.KindValidation)
	if in.Title != nil {
		product.Title = strings.TrimSpace(*in.Title)
		if product.Title == "" {
			verr.Add("title", "es obligatorio")
		}
	}
	if in.PurchasePrice != nil {
		checkPrice(verr, "purchase_price", *in.PurchasePrice)
		product.PurchasePrice = *in.PurchasePrice
	}
	if in.SalePrice != nil {
		checkPrice(verr, "sale_price", *in.SalePrice)
		product.SalePrice = *in.SalePrice
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// Delete elimina un producto; sus líneas de supply se eliminan en cascada.
func (uc *ProductUseCase) Delete(ctx context.Context, p access.Principal, id string) error {
	product, err := uc.load(ctx, p, id, access.Delete)
	if err != nil {
		return err
	}
	return uc.repo.Delete(ctx, product.ID)
}

// List lista productos de la empresa del principal con paginación.
func (uc *ProductUseCase) List(ctx context.Context, p access.Principal, page dto.PageRequest) (*dto.ProductListResponse, error) {
	if err := access.Authorize(p, access.Product, access.Read, p.CompanyID); err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := uc.repo.ListByCompany(ctx, p.CompanyID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, prod := range list {
		items = append(items, *toProductResponse(prod))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// ListMovements lista los movimientos de stock de un producto.
func (uc *ProductUseCase) ListMovements(ctx context.Context, p access.Principal, id string, page dto.PageRequest) (*dto.StockMovementListResponse, error) {
	product, err := uc.load(ctx, p, id, access.Read)
	if err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := uc.movements.ListByProduct(ctx, product.ID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockMovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, dto.StockMovementResponse{
			ID:        m.ID,
			SupplyID:  m.SupplyID,
			ProductID: m.ProductID,
			Delta:     m.Delta,
			Kind:      m.Kind,
			CreatedBy: m.CreatedBy,
			CreatedAt: m.CreatedAt,
		})
	}
	return &dto.StockMovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:            p.ID,
		StorageID:     p.StorageID,
		Title:         p.Title,
		PurchasePrice: p.PurchasePrice,
		SalePrice:     p.SalePrice,
		Quantity:      p.Quantity,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
