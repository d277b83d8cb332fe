package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
)

var _ repository.SupplyRepository = (*SupplyRepo)(nil)

// SupplyRepo implementación del puerto SupplyRepository sobre PostgreSQL.
type SupplyRepo struct {
	q Querier
}

// NewSupplyRepository construye el adaptador de persistencia para supplies.
func NewSupplyRepository(q Querier) *SupplyRepo {
	return &SupplyRepo{q: q}
}

const supplySelect = `
	SELECT sp.id, sp.supplier_id, su.company_id, sp.delivery_date, sp.created_at, sp.updated_at
	FROM supplies sp
	JOIN suppliers su ON su.id = sp.supplier_id`

func scanSupply(row interface{ Scan(dest ...any) error }) (*entity.Supply, error) {
	var s entity.Supply
	if err := row.Scan(&s.ID, &s.SupplierID, &s.CompanyID, &s.DeliveryDate, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// Create persiste la cabecera de la supply (sin líneas).
func (r *SupplyRepo) Create(ctx context.Context, s *entity.Supply) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO supplies (id, supplier_id, delivery_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`, s.ID, s.SupplierID, s.DeliveryDate, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert supply: %w", err)
	}
	return nil
}

// CreateLineItems inserta las líneas en un único batch.
func (r *SupplyRepo) CreateLineItems(ctx context.Context, items []entity.SupplyLineItem) error {
	if len(items) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, li := range items {
		batch.Queue(`INSERT INTO supply_line_items (id, supply_id, product_id, quantity) VALUES ($1, $2, $3, $4)`,
			li.ID, li.SupplyID, li.ProductID, li.Quantity)
	}
	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for range items {
		if _, err := br.Exec(); err != nil {
			if isForeignKeyViolation(err) {
				return domain.ErrNotFound
			}
			if isCheckViolation(err) {
				return domain.Invalid("quantity", "debe ser mayor a 0")
			}
			return fmt.Errorf("insert supply line item: %w", err)
		}
	}
	return br.Close()
}

func (r *SupplyRepo) getOne(ctx context.Context, id, suffix string) (*entity.Supply, error) {
	if !validID(id) {
		return nil, nil
	}
	s, err := scanSupply(r.q.QueryRow(ctx, supplySelect+` WHERE sp.id = $1`+suffix, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get supply: %w", err)
	}
	if err := r.loadLineItems(ctx, []*entity.Supply{s}); err != nil {
		return nil, err
	}
	return s, nil
}

// GetByID obtiene una supply con sus líneas.
func (r *SupplyRepo) GetByID(ctx context.Context, id string) (*entity.Supply, error) {
	return r.getOne(ctx, id, "")
}

// GetForUpdate obtiene la supply bloqueando su fila hasta el fin de la tx.
func (r *SupplyRepo) GetForUpdate(ctx context.Context, id string) (*entity.Supply, error) {
	return r.getOne(ctx, id, " FOR UPDATE OF sp")
}

// Update cambia proveedor y fecha de entrega.
func (r *SupplyRepo) Update(ctx context.Context, s *entity.Supply) error {
	cmd, err := r.q.Exec(ctx, `UPDATE supplies SET supplier_id = $2, delivery_date = $3, updated_at = $4 WHERE id = $1`,
		s.ID, s.SupplierID, s.DeliveryDate, s.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update supply: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteLineItems elimina todas las líneas de la supply.
func (r *SupplyRepo) DeleteLineItems(ctx context.Context, supplyID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM supply_line_items WHERE supply_id = $1`, supplyID); err != nil {
		return fmt.Errorf("delete supply line items: %w", err)
	}
	return nil
}

// Delete elimina la supply; las líneas caen en cascada.
func (r *SupplyRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	cmd, err := r.q.Exec(ctx, `DELETE FROM supplies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete supply: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByCompany lista las supplies de la empresa, más recientes primero.
func (r *SupplyRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Supply, error) {
	return r.list(ctx, supplySelect+`
		WHERE su.company_id = $1
		ORDER BY sp.created_at DESC, sp.id
		LIMIT $2 OFFSET $3`, companyID, limitArg(limit), offset)
}

// ListBySupplierForUpdate devuelve y bloquea las supplies del proveedor, en orden de ID.
func (r *SupplyRepo) ListBySupplierForUpdate(ctx context.Context, supplierID string) ([]*entity.Supply, error) {
	return r.list(ctx, supplySelect+`
		WHERE sp.supplier_id = $1
		ORDER BY sp.id
		FOR UPDATE OF sp`, supplierID)
}

func (r *SupplyRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Supply, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list supplies: %w", err)
	}
	var list []*entity.Supply
	for rows.Next() {
		s, err := scanSupply(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan supply: %w", err)
		}
		list = append(list, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadLineItems(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// loadLineItems carga las líneas de todas las supplies en una consulta.
func (r *SupplyRepo) loadLineItems(ctx context.Context, supplies []*entity.Supply) error {
	if len(supplies) == 0 {
		return nil
	}
	ids := make([]string, len(supplies))
	byID := make(map[string]*entity.Supply, len(supplies))
	for i, s := range supplies {
		ids[i] = s.ID
		byID[s.ID] = s
		s.LineItems = []entity.SupplyLineItem{}
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, supply_id, product_id, quantity FROM supply_line_items
		WHERE supply_id = ANY($1::text[]::uuid[])
		ORDER BY product_id, id`, ids)
	if err != nil {
		return fmt.Errorf("list supply line items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var li entity.SupplyLineItem
		if err := rows.Scan(&li.ID, &li.SupplyID, &li.ProductID, &li.Quantity); err != nil {
			return fmt.Errorf("scan supply line item: %w", err)
		}
		if s, ok := byID[li.SupplyID]; ok {
			s.LineItems = append(s.LineItems, li)
		}
	}
	return rows.Err()
}
