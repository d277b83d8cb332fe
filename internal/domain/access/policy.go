package access

import (
	"fmt"

	"github.com/jhoicas/Suministros-api/internal/domain"
)

// Capability acción sobre un recurso.
type Capability string

const (
	Read   Capability = "read"
	Create Capability = "create"
	Edit   Capability = "edit"
	Delete Capability = "delete"
)

// Resource tipo de recurso protegido.
type Resource string

const (
	Company  Resource = "company"
	Storage  Resource = "storage"
	Product  Resource = "product"
	Supplier Resource = "supplier"
	Supply   Resource = "supply"
)

// reglas owner-only; lo que no aparece aquí lo puede hacer cualquier miembro.
var ownerOnly = map[Resource]map[Capability]bool{
	Company: {Edit: true, Delete: true},
	Storage: {Create: true, Edit: true, Delete: true},
}

// Authorize decide si p puede ejercer c sobre un recurso r de la empresa ownerCompanyID.
// Para Create, ownerCompanyID es la empresa donde se creará (normalmente la del principal).
//
// Orden de decisión:
//   - sin autenticación: ErrAuthenticationRequired
//   - crear Company solo exige autenticación (las reglas de vínculo son del caso de uso)
//   - sin empresa: ErrForbidden
//   - empresa distinta: ErrNotFound, para no revelar la existencia del recurso
//   - rol insuficiente: ErrForbidden
func Authorize(p Principal, r Resource, c Capability, ownerCompanyID string) error {
	if !p.Authenticated {
		return domain.ErrAuthenticationRequired
	}
	if r == Company && c == Create {
		return nil
	}
	if !p.HasCompany() {
		return fmt.Errorf("%w: el usuario no pertenece a una empresa", domain.ErrForbidden)
	}
	if !SameTenant(p, ownerCompanyID) {
		return domain.ErrNotFound
	}
	if ownerOnly[r][c] && !p.IsCompanyOwner {
		return fmt.Errorf("%w: solo el propietario de la empresa puede %s %s", domain.ErrForbidden, c, r)
	}
	return nil
}
