package entity

import "time"

// DateLayout formato de delivery_date.
const DateLayout = "2006-01-02"

// Supply es una entrega de un Supplier. CompanyID se deriva del proveedor.
// Una supply persistida siempre está aplicada sobre el stock.
type Supply struct {
	ID           string
	SupplierID   string
	CompanyID    string
	DeliveryDate time.Time
	LineItems    []SupplyLineItem
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SupplyLineItem une una Supply con un Product y la cantidad entregada (> 0).
type SupplyLineItem struct {
	ID        string
	SupplyID  string
	ProductID string
	Quantity  int64
}

// TotalQuantity suma las cantidades de todas las líneas.
func (s *Supply) TotalQuantity() int64 {
	var total int64
	for _, li := range s.LineItems {
		total += li.Quantity
	}
	return total
}
