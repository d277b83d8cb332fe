package supply

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/Suministros-api/internal/application/dto"
	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/access"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/ledger"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
)

// Nombres de campo reportados en los errores de validación.
const (
	FieldSupplier     = "supplier"
	FieldProducts     = "products"
	FieldDeliveryDate = "delivery_date"
	FieldQuantity     = ledger.FieldQuantity
)

// draft es la entrada ya parseada, todavía sin verificar contra la base.
type draft struct {
	supplierID   string
	deliveryDate time.Time
	items        []entity.SupplyLineItem
}

// parseDraft valida formato: fecha de calendario, cantidades positivas y referencias presentes.
func parseDraft(in dto.SupplyRequest) (*draft, error) {
	verr := domain.NewValidationError(domain.KindValidation)
	d := &draft{supplierID: strings.TrimSpace(in.SupplierID)}

	if d.supplierID == "" {
		verr.Add(FieldSupplier, "es obligatorio")
	}

	date, err := time.Parse(entity.DateLayout, strings.TrimSpace(in.DeliveryDate))
	if err != nil {
		verr.Add(FieldDeliveryDate, "fecha inválida, formato esperado YYYY-MM-DD")
	}
	d.deliveryDate = date

	totals := make(map[string]int64, len(in.LineItems))
	for i, li := range in.LineItems {
		productID := strings.TrimSpace(li.ProductID)
		if productID == "" {
			verr.Add(FieldProducts, fmt.Sprintf("línea %d: producto obligatorio", i))
		}
		switch {
		case li.Quantity <= 0:
			verr.Add(FieldQuantity, fmt.Sprintf("línea %d: debe ser un entero mayor que 0", i))
		case li.Quantity > ledger.MaxQuantity-totals[productID]:
			verr.Add(FieldQuantity, fmt.Sprintf("línea %d: el total del producto supera %d unidades", i, ledger.MaxQuantity))
		default:
			totals[productID] += li.Quantity
		}
		d.items = append(d.items, entity.SupplyLineItem{ProductID: productID, Quantity: li.Quantity})
	}

	if err := verr.Err(); err != nil {
		return nil, err
	}
	return d, nil
}

// checkReferences verifica que proveedor y productos pertenezcan a la empresa del principal.
// Se ejecuta dentro de la tx, antes de cualquier escritura.
func checkReferences(
	ctx context.Context,
	p access.Principal,
	suppliers repository.SupplierRepository,
	products repository.ProductRepository,
	d *draft,
) error {
	verr := domain.NewValidationError(domain.KindReferential)

	supplier, err := suppliers.GetByID(ctx, d.supplierID)
	if err != nil {
		return err
	}
	if supplier == nil || !access.SameTenant(p, supplier.CompanyID) {
		verr.Add(FieldSupplier, "el proveedor no existe o pertenece a otra empresa")
	}

	ids := make([]string, 0, len(d.items))
	seen := make(map[string]bool, len(d.items))
	for _, li := range d.items {
		if !seen[li.ProductID] {
			seen[li.ProductID] = true
			ids = append(ids, li.ProductID)
		}
	}
	if len(ids) > 0 {
		found, err := products.GetByIDs(ctx, ids)
		if err != nil {
			return err
		}
		for _, id := range ids {
			prod := found[id]
			if prod == nil || !access.SameTenant(p, prod.CompanyID) {
				verr.Add(FieldProducts, fmt.Sprintf("el producto %s no existe o pertenece a otra empresa", id))
			}
		}
	}
	return verr.Err()
}
