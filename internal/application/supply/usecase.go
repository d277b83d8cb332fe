package supply

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Suministros-api/internal/application/dto"
	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/access"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
	"github.com/rs/zerolog"
)

// SupplyUseCase casos de uso de supplies: crear, editar y eliminar aplican o revierten el stock
// en una sola transacción; leer y listar están limitados a la empresa del principal.
type SupplyUseCase struct {
	tx       TxRunner
	supplies repository.SupplyRepository
	engine   *Engine
	rec      Recorder
	log      zerolog.Logger
}

// NewSupplyUseCase construye el caso de uso. supplies se usa para lecturas fuera de tx.
func NewSupplyUseCase(tx TxRunner, supplies repository.SupplyRepository, engine *Engine, rec Recorder, log zerolog.Logger) *SupplyUseCase {
	if rec == nil {
		rec = nopRecorder{}
	}
	return &SupplyUseCase{
		tx:       tx,
		supplies: supplies,
		engine:   engine,
		rec:      rec,
		log:      log.With().Str("component", "supply").Logger(),
	}
}

// Create valida, persiste la supply con sus líneas y aplica las cantidades al stock.
func (uc *SupplyUseCase) Create(ctx context.Context, p access.Principal, in dto.SupplyRequest) (_ *dto.SupplyResponse, err error) {
	defer uc.observe("create", time.Now(), &err)

	if err := access.Authorize(p, access.Supply, access.Create, p.CompanyID); err != nil {
		return nil, err
	}
	d, err := parseDraft(in)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	s := &entity.Supply{
		ID:           uuid.New().String(),
		SupplierID:   d.supplierID,
		CompanyID:    p.CompanyID,
		DeliveryDate: d.deliveryDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.LineItems = withIDs(s.ID, d.items)

	err = uc.tx.Run(ctx, func(
		supplies repository.SupplyRepository,
		suppliers repository.SupplierRepository,
		products repository.ProductRepository,
		movements repository.StockMovementRepository,
	) error {
		if err := checkReferences(ctx, p, suppliers, products, d); err != nil {
			return err
		}
		if err := supplies.Create(ctx, s); err != nil {
			return err
		}
		if err := supplies.CreateLineItems(ctx, s.LineItems); err != nil {
			return err
		}
		return uc.engine.Apply(ctx, products, movements, s, p.UserID)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("operation", "create").
		Str("supply_id", s.ID).
		Str("company_id", s.CompanyID).
		Int("products", len(s.LineItems)).
		Int64("total_quantity", s.TotalQuantity()).
		Msg("supply aplicada")
	return toSupplyResponse(s), nil
}

// Update revierte el estado anterior, reemplaza campos y líneas y aplica el estado nuevo.
func (uc *SupplyUseCase) Update(ctx context.Context, p access.Principal, id string, in dto.SupplyRequest) (_ *dto.SupplyResponse, err error) {
	defer uc.observe("update", time.Now(), &err)

	if err := access.Authorize(p, access.Supply, access.Edit, p.CompanyID); err != nil {
		return nil, err
	}
	d, err := parseDraft(in)
	if err != nil {
		return nil, err
	}

	var updated *entity.Supply
	err = uc.tx.Run(ctx, func(
		supplies repository.SupplyRepository,
		suppliers repository.SupplierRepository,
		products repository.ProductRepository,
		movements repository.StockMovementRepository,
	) error {
		current, err := supplies.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrNotFound
		}
		if err := access.Authorize(p, access.Supply, access.Edit, current.CompanyID); err != nil {
			return err
		}
		if err := checkReferences(ctx, p, suppliers, products, d); err != nil {
			return err
		}

		if err := uc.engine.Rollback(ctx, products, movements, current, p.UserID); err != nil {
			return err
		}

		next := *current
		next.SupplierID = d.supplierID
		next.DeliveryDate = d.deliveryDate
		next.UpdatedAt = time.Now()
		next.LineItems = withIDs(current.ID, d.items)

		if err := supplies.Update(ctx, &next); err != nil {
			return err
		}
		if err := supplies.DeleteLineItems(ctx, current.ID); err != nil {
			return err
		}
		if err := supplies.CreateLineItems(ctx, next.LineItems); err != nil {
			return err
		}
		if err := uc.engine.Apply(ctx, products, movements, &next, p.UserID); err != nil {
			return err
		}
		updated = &next
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("operation", "update").
		Str("supply_id", updated.ID).
		Str("company_id", updated.CompanyID).
		Int("products", len(updated.LineItems)).
		Int64("total_quantity", updated.TotalQuantity()).
		Msg("supply reaplicada")
	return toSupplyResponse(updated), nil
}

// Delete revierte la supply y la elimina junto con sus líneas.
func (uc *SupplyUseCase) Delete(ctx context.Context, p access.Principal, id string) (err error) {
	defer uc.observe("delete", time.Now(), &err)

	if err := access.Authorize(p, access.Supply, access.Delete, p.CompanyID); err != nil {
		return err
	}

	var removed *entity.Supply
	err = uc.tx.Run(ctx, func(
		supplies repository.SupplyRepository,
		_ repository.SupplierRepository,
		products repository.ProductRepository,
		movements repository.StockMovementRepository,
	) error {
		current, err := supplies.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.ErrNotFound
		}
		if err := access.Authorize(p, access.Supply, access.Delete, current.CompanyID); err != nil {
			return err
		}
		if err := uc.engine.Rollback(ctx, products, movements, current, p.UserID); err != nil {
			return err
		}
		removed = current
		return supplies.Delete(ctx, current.ID)
	})
	if err != nil {
		return err
	}

	uc.log.Info().
		Str("operation", "delete").
		Str("supply_id", removed.ID).
		Str("company_id", removed.CompanyID).
		Int("products", len(removed.LineItems)).
		Msg("supply revertida y eliminada")
	return nil
}

// GetByID devuelve la supply si pertenece a la empresa del principal.
func (uc *SupplyUseCase) GetByID(ctx context.Context, p access.Principal, id string) (*dto.SupplyResponse, error) {
	if err := access.Authorize(p, access.Supply, access.Read, p.CompanyID); err != nil {
		return nil, err
	}
	s, err := uc.supplies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	if err := access.Authorize(p, access.Supply, access.Read, s.CompanyID); err != nil {
		return nil, err
	}
	return toSupplyResponse(s), nil
}

// List devuelve las supplies de la empresa del principal.
func (uc *SupplyUseCase) List(ctx context.Context, p access.Principal, page dto.PageRequest) (*dto.SupplyListResponse, error) {
	if err := access.Authorize(p, access.Supply, access.Read, p.CompanyID); err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := uc.supplies.ListByCompany(ctx, p.CompanyID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SupplyResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toSupplyResponse(s))
	}
	return &dto.SupplyListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// observe registra duración y resultado; los rechazos se loguean en warn.
func (uc *SupplyUseCase) observe(op string, start time.Time, errp *error) {
	outcome := OutcomeOK
	if err := *errp; err != nil {
		outcome = classify(err)
		ev := uc.log.Warn()
		if outcome == OutcomeError {
			ev = uc.log.Error()
		}
		ev.Err(err).Str("operation", op).Str("outcome", outcome).Msg("operación de supply fallida")
	}
	uc.rec.ObserveLedger(op, outcome, time.Since(start))
}

func classify(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrAuthenticationRequired),
		errors.Is(err, domain.ErrInsufficientStock):
		return OutcomeRejected
	default:
		return OutcomeError
	}
}

func withIDs(supplyID string, items []entity.SupplyLineItem) []entity.SupplyLineItem {
	out := make([]entity.SupplyLineItem, 0, len(items))
	for _, li := range items {
		li.ID = uuid.New().String()
		li.SupplyID = supplyID
		out = append(out, li)
	}
	return out
}

func toSupplyResponse(s *entity.Supply) *dto.SupplyResponse {
	items := make([]dto.SupplyLineItemResponse, 0, len(s.LineItems))
	for _, li := range s.LineItems {
		items = append(items, dto.SupplyLineItemResponse{ID: li.ID, ProductID: li.ProductID, Quantity: li.Quantity})
	}
	return &dto.SupplyResponse{
		ID:            s.ID,
		SupplierID:    s.SupplierID,
		DeliveryDate:  s.DeliveryDate.Format(entity.DateLayout),
		LineItems:     items,
		TotalQuantity: s.TotalQuantity(),
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}
