package access

// Principal es el usuario que actúa en un request. Se resuelve por request y se pasa
// explícitamente a cada caso de uso.
type Principal struct {
	UserID         string
	CompanyID      string // vacío = sin empresa
	IsCompanyOwner bool
	Authenticated  bool
}

// Anonymous es el principal de un request sin autenticación.
var Anonymous = Principal{}

// HasCompany indica si el principal tiene empresa.
func (p Principal) HasCompany() bool {
	return p.CompanyID != ""
}

// SameTenant es el predicado único de aislamiento: el recurso de companyID es visible para p.
func SameTenant(p Principal, companyID string) bool {
	return p.Authenticated && p.HasCompany() && companyID != "" && p.CompanyID == companyID
}
