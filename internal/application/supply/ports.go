package supply

import (
	"context"
	"time"

	"github.com/jhoicas/Suministros-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Todo lo que hace una operación del ledger (validar, persistir, ajustar stock) ocurre dentro de fn.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		supplies repository.SupplyRepository,
		suppliers repository.SupplierRepository,
		products repository.ProductRepository,
		movements repository.StockMovementRepository,
	) error) error
}

// Resultados de una operación del ledger.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected" // error de entrada, acceso o stock
	OutcomeError    = "error"    // fallo de infraestructura
)

// Recorder recibe métricas del ledger. Lo implementa infrastructure/metrics.
type Recorder interface {
	ObserveLedger(operation, outcome string, elapsed time.Duration)
	AddMovements(kind string, n int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveLedger(string, string, time.Duration) {}
func (nopRecorder) AddMovements(string, int) {}
