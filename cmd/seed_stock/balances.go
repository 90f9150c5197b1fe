package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jhoicas/lumberyard-api/internal/application/dto"
	"github.com/jhoicas/lumberyard-api/internal/domain/entity"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// BalanceRow una fila del CSV de saldos iniciales.
type BalanceRow struct {
	Line           int
	WarehouseID    string
	MaterialTypeID string
	Thickness      string
	WoodStatus     entity.WoodStatus
	Quantity       int64
	Notes          string
}

// Request convierte la fila en el ajuste que la registra.
func (r BalanceRow) Request() dto.AdjustStockRequest {
	notes := "saldo inicial"
	if r.Notes != "" {
		notes += ": " + r.Notes
	}
	return dto.AdjustStockRequest{
		WarehouseID:    r.WarehouseID,
		MaterialTypeID: r.MaterialTypeID,
		Thickness:      r.Thickness,
		WoodStatus:     string(r.WoodStatus),
		QuantityAfter:  r.Quantity,
		Reason:         string(entity.AdjustmentReasonOther),
		Notes:          notes,
	}
}

func decoder(in io.Reader, charset string) (io.Reader, error) {
	switch strings.ToLower(charset) {
	case "windows-1252", "cp1252":
		return transform.NewReader(in, charmap.Windows1252.NewDecoder()), nil
	case "iso-8859-1", "iso8859-1", "latin1":
		return transform.NewReader(in, charmap.ISO8859_1.NewDecoder()), nil
	case "utf-8", "utf8":
		return in, nil
	}
	return nil, fmt.Errorf("charset no soportado: %s", charset)
}

// ParseBalances lee y valida todo el archivo. Cualquier fila inválida aborta la carga
// antes de tocar el libro; los errores indican la línea.
func ParseBalances(in io.Reader, charset string) ([]BalanceRow, error) {
	r, err := decoder(in, charset)
	if err != nil {
		return nil, err
	}
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var (
		rows []BalanceRow
		errs []error
	)
	line := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "warehouse_id") {
			continue
		}
		row, err := parseRow(line, rec)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		rows = append(rows, row)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return rows, nil
}

func parseRow(line int, rec []string) (BalanceRow, error) {
	if len(rec) < 5 {
		return BalanceRow{}, fmt.Errorf("línea %d: se esperan al menos 5 columnas, hay %d", line, len(rec))
	}
	for i := range rec {
		rec[i] = strings.TrimSpace(rec[i])
	}
	status := entity.WoodStatus(strings.ToUpper(rec[3]))
	if !status.Valid() {
		return BalanceRow{}, fmt.Errorf("línea %d: wood_status %q inválido", line, rec[3])
	}
	qty, err := strconv.ParseInt(rec[4], 10, 64)
	if err != nil || qty < 0 {
		return BalanceRow{}, fmt.Errorf("línea %d: quantity %q inválida", line, rec[4])
	}
	if rec[0] == "" || rec[1] == "" || rec[2] == "" {
		return BalanceRow{}, fmt.Errorf("línea %d: bodega, madera y espesor son requeridos", line)
	}
	row := BalanceRow{
		Line:           line,
		WarehouseID:    rec[0],
		MaterialTypeID: rec[1],
		Thickness:      rec[2],
		WoodStatus:     status,
		Quantity:       qty,
	}
	if len(rec) > 5 {
		row.Notes = rec[5]
	}
	return row, nil
}
