// Package ledger contiene las reglas puras del libro de stock: selección de contadores,
// aplicación de deltas con el invariante de no negatividad y detección de stock bajo.
package ledger

import (
	"fmt"

	"github.com/jhoicas/lumberyard-api/internal/domain"
	"github.com/jhoicas/lumberyard-api/internal/domain/entity"
)

// counter resuelve el bucket a su campo. Mapeo explícito: no se construyen nombres de campo.
func counter(r *entity.StockRecord, b entity.Bucket) (*int64, error) {
	switch b {
	case entity.BucketNotDried:
		return &r.NotDried, nil
	case entity.BucketUnderDrying:
		return &r.UnderDrying, nil
	case entity.BucketDried:
		return &r.Dried, nil
	case entity.BucketDamaged:
		return &r.Damaged, nil
	case entity.BucketInTransitOut:
		return &r.InTransitOut, nil
	case entity.BucketInTransitIn:
		return &r.InTransitIn, nil
	}
	return nil, domain.NewValidationError("bucket", fmt.Sprintf("desconocido: %q", b))
}

// Count devuelve el valor actual del bucket.
func Count(r *entity.StockRecord, b entity.Bucket) (int64, error) {
	c, err := counter(r, b)
	if err != nil {
		return 0, err
	}
	return *c, nil
}

// Apply suma delta al bucket. Si el resultado fuese negativo no modifica el registro
// y devuelve *domain.NegativeStockError.
func Apply(r *entity.StockRecord, b entity.Bucket, delta int64) error {
	c, err := counter(r, b)
	if err != nil {
		return err
	}
	if *c+delta < 0 {
		return &domain.NegativeStockError{Bucket: string(b), Current: *c, Delta: delta}
	}
	*c += delta
	return nil
}

// Set fija el bucket a un valor absoluto (corrección del diario de ajustes).
func Set(r *entity.StockRecord, b entity.Bucket, value int64) error {
	if value < 0 {
		return domain.NewValidationError("quantity_after", "no puede ser negativa")
	}
	c, err := counter(r, b)
	if err != nil {
		return err
	}
	*c = value
	return nil
}

// IsLowStock es true si hay mínimo definido y NotDried+Dried está por debajo.
func IsLowStock(r *entity.StockRecord) bool {
	if r == nil || r.MinimumStockLevel == nil {
		return false
	}
	return r.NotDried+r.Dried < *r.MinimumStockLevel
}

// CheckNonNegative verifica que ningún contador sea negativo.
func CheckNonNegative(r *entity.StockRecord) error {
	for _, b := range AllBuckets {
		v, _ := Count(r, b)
		if v < 0 {
			return &domain.NegativeStockError{Bucket: string(b), Current: v}
		}
	}
	return nil
}

// AllBuckets los seis contadores en orden de presentación.
var AllBuckets = []entity.Bucket{
	entity.BucketNotDried,
	entity.BucketUnderDrying,
	entity.BucketDried,
	entity.BucketDamaged,
	entity.BucketInTransitOut,
	entity.BucketInTransitIn,
}
