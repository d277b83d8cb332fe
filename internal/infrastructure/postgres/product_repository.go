package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/ledger"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL.
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos.
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// company_id sale del storage; products no lo duplica.
const productSelect = `
	SELECT p.id, p.storage_id, s.company_id, p.title, p.purchase_price, p.sale_price, p.quantity, p.created_at, p.updated_at
	FROM products p
	JOIN storages s ON s.id = p.storage_id`

func scanProduct(row interface{ Scan(dest ...any) error }) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.StorageID, &p.CompanyID, &p.Title, &p.PurchasePrice, &p.SalePrice,
		&p.Quantity, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un nuevo producto. La cantidad inicial es la que traiga la entidad (normalmente 0).
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (id, storage_id, title, purchase_price, sale_price, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query, p.ID, p.StorageID, p.Title, p.PurchasePrice, p.SalePrice, p.Quantity, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		if isCheckViolation(err) {
			return domain.Invalid("quantity", "debe ser mayor o igual a 0")
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	if !validID(id) {
		return nil, nil
	}
	p, err := scanProduct(r.q.QueryRow(ctx, productSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetByIDs obtiene varios productos en una sola consulta. Los IDs que no son UUID se ignoran.
func (r *ProductRepo) GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Product, error) {
	out := make(map[string]*entity.Product, len(ids))
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if validID(id) {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx, productSelect+` WHERE p.id = ANY($1::text[]::uuid[])`, valid)
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

// Update modifica título y precios; quantity queda fuera.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE products SET title = $2, purchase_price = $3, sale_price = $4, updated_at = $5
		WHERE id = $1`, p.ID, p.Title, p.PurchasePrice, p.SalePrice, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el producto; sus líneas de supply caen en cascada.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	cmd, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByCompany lista los productos de la empresa con paginación.
func (r *ProductRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, productSelect+`
		WHERE s.company_id = $1
		ORDER BY p.created_at DESC, p.id
		LIMIT $2 OFFSET $3`, companyID, limitArg(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// AdjustQuantity suma delta en un único UPDATE. CHECK (quantity >= 0) rechaza un saldo negativo.
func (r *ProductRepo) AdjustQuantity(ctx context.Context, productID string, delta int64) (int64, error) {
	if !validID(productID) {
		return 0, domain.ErrNotFound
	}
	var qty int64
	err := r.q.QueryRow(ctx, `
		UPDATE products SET quantity = quantity + $2, updated_at = now()
		WHERE id = $1
		RETURNING quantity`, productID, delta).Scan(&qty)
	if err != nil {
		if isNoRows(err) {
			return 0, domain.ErrNotFound
		}
		if isCheckViolation(err) {
			return 0, domain.ErrInsufficientStock
		}
		if isNumericOutOfRange(err) {
			return 0, domain.Invalid(ledger.FieldQuantity, "el stock resultante excede el máximo admitido")
		}
		return 0, fmt.Errorf("adjust quantity: %w", err)
	}
	return qty, nil
}
