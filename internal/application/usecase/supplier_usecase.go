package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Suministros-api/internal/application/dto"
	"github.com/jhoicas/Suministros-api/internal/application/supply"
	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/access"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
	"github.com/rs/zerolog"
)

// SupplierUseCase casos de uso CRUD para proveedores.
// Eliminar un proveedor revierte antes el stock de todas sus supplies.
type SupplierUseCase struct {
	repo   repository.SupplierRepository
	tx     supply.TxRunner
	engine *supply.Engine
	log    zerolog.Logger
}

// NewSupplierUseCase construye el caso de uso.
func NewSupplierUseCase(repo repository.SupplierRepository, tx supply.TxRunner, engine *supply.Engine, log zerolog.Logger) *SupplierUseCase {
	return &SupplierUseCase{repo: repo, tx: tx, engine: engine, log: log.With().Str("component", "supplier").Logger()}
}

// Create crea un proveedor de la empresa del principal. El INN es único globalmente.
func (uc *SupplierUseCase) Create(ctx context.Context, p access.Principal, in dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	if err := access.Authorize(p, access.Supplier, access.Create, p.CompanyID); err != nil {
		return nil, err
	}
	inn := strings.TrimSpace(in.INN)
	title := strings.TrimSpace(in.Title)
	if err := uc.validate(ctx, "", inn, title); err != nil {
		return nil, err
	}
	now := time.Now()
	supplier := &entity.Supplier{
		ID:        uuid.New().String(),
		CompanyID: p.CompanyID,
		Title:     title,
		INN:       inn,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, supplier); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.Invalid("inn", "ya existe un proveedor con este INN")
		}
		return nil, err
	}
	return toSupplierResponse(supplier), nil
}

// validate comprueba formato e unicidad del INN; selfID excluye al propio proveedor en edición.
func (uc *SupplierUseCase) validate(ctx context.Context, selfID, inn, title string) error {
	verr := domain.NewValidationError(domain.KindValidation)
	if title == "" {
		verr.Add("title", "es obligatorio")
	}
	if msg := domain.ValidateINN(inn); msg != "" {
		verr.Add("inn", msg)
	} else {
		other, err := uc.repo.GetByINN(ctx, inn)
		if err != nil {
			return err
		}
		if other != nil && other.ID != selfID {
			verr.Add("inn", "ya existe un proveedor con este INN")
		}
	}
	return verr.Err()
}

func (uc *SupplierUseCase) load(ctx context.Context, p access.Principal, id string, c access.Capability) (*entity.Supplier, error) {
	if err := access.Authorize(p, access.Supplier, access.Read, p.CompanyID); err != nil {
		return nil, err
	}
	supplier, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, domain.ErrNotFound
	}
	if err := access.Authorize(p, access.Supplier, c, supplier.CompanyID); err != nil {
		return nil, err
	}
	return supplier, nil
}

// GetByID obtiene un proveedor de la empresa del principal.
func (uc *SupplierUseCase) GetByID(ctx context.Context, p access.Principal, id string) (*dto.SupplierResponse, error) {
	supplier, err := uc.load(ctx, p, id, access.Read)
	if err != nil {
		return nil, err
	}
	return toSupplierResponse(supplier), nil
}

// Update modifica título y/o INN.
func (uc *SupplierUseCase) Update(ctx context.Context, p access.Principal, id string, in dto.UpdateSupplierRequest) (*dto.SupplierResponse, error) {
	supplier, err := uc.load(ctx, p, id, access.Edit)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		supplier.Title = strings.TrimSpace(*in.Title)
	}
	if in.INN != nil {
		supplier.INN = strings.TrimSpace(*in.INN)
	}
	if err := uc.validate(ctx, supplier.ID, supplier.INN, supplier.Title); err != nil {
		return nil, err
	}
	supplier.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, supplier); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.Invalid("inn", "ya existe un proveedor con este INN")
		}
		return nil, err
	}
	return toSupplierResponse(supplier), nil
}

// Delete revierte el stock de las supplies del proveedor y lo elimina (las supplies caen en cascada).
func (uc *SupplierUseCase) Delete(ctx context.Context, p access.Principal, id string) error {
	if err := access.Authorize(p, access.Supplier, access.Delete, p.CompanyID); err != nil {
		return err
	}
	reverted := 0
	err := uc.tx.Run(ctx, func(
		supplies repository.SupplyRepository,
		suppliers repository.SupplierRepository,
		products repository.ProductRepository,
		movements repository.StockMovementRepository,
	) error {
		supplier, err := suppliers.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if supplier == nil {
			return domain.ErrNotFound
		}
		if err := access.Authorize(p, access.Supplier, access.Delete, supplier.CompanyID); err != nil {
			return err
		}
		list, err := supplies.ListBySupplierForUpdate(ctx, supplier.ID)
		if err != nil {
			return err
		}
		for _, s := range list {
			if err := uc.engine.Rollback(ctx, products, movements, s, p.UserID); err != nil {
				return err
			}
		}
		reverted = len(list)
		return suppliers.Delete(ctx, supplier.ID)
	})
	if err != nil {
		return err
	}
	uc.log.Info().Str("supplier_id", id).Str("company_id", p.CompanyID).Int("supplies", reverted).Msg("proveedor eliminado")
	return nil
}

// List lista proveedores de la empresa del principal.
func (uc *SupplierUseCase) List(ctx context.Context, p access.Principal, page dto.PageRequest) (*dto.SupplierListResponse, error) {
	if err := access.Authorize(p, access.Supplier, access.Read, p.CompanyID); err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := uc.repo.ListByCompany(ctx, p.CompanyID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SupplierResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toSupplierResponse(s))
	}
	return &dto.SupplierListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

func toSupplierResponse(s *entity.Supplier) *dto.SupplierResponse {
	return &dto.SupplierResponse{
		ID:        s.ID,
		CompanyID: s.CompanyID,
		Title:     s.Title,
		INN:       s.INN,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
