package transfer

import (
	"fmt"
	"time"
)

// numberPrefix prefijo de los números de traslado.
const numberPrefix = "TRF"

// FormatNumber construye TRF-YYYYMMDD-NNNN. La secuencia es por día y la entrega
// TransferRepository.NextSequence de forma atómica; más de 9999 al día amplía el ancho.
func FormatNumber(day time.Time, seq int) string {
	return fmt.Sprintf("%s-%s-%04d", numberPrefix, day.Format("20060102"), seq)
}
