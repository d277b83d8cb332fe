package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto de un Storage.
// Quantity solo la modifica el ledger de suministros; CompanyID se deriva del storage.
type Product struct {
	ID            string
	StorageID     string
	CompanyID     string
	Title         string
	PurchasePrice decimal.Decimal
	SalePrice     decimal.Decimal
	Quantity      int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
