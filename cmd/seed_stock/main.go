// seed_stock carga saldos iniciales del libro desde un CSV exportado por el sistema anterior
// (hojas de cálculo en Windows-1252). Cada fila se registra como ajuste con motivo OTHER,
// así que el diario conserva la traza de la carga.
//
// Uso: go run ./cmd/seed_stock [-charset windows-1252|iso-8859-1|utf-8] [-actor seed] [-dry-run] saldos.csv
//
// Columnas (separador ';', con encabezado):
// warehouse_id;material_type_id;thickness;wood_status;quantity;notes
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/lumberyard-api/internal/application/inventory"
	"github.com/jhoicas/lumberyard-api/internal/infrastructure/notify"
	"github.com/jhoicas/lumberyard-api/internal/infrastructure/postgres"
	"github.com/jhoicas/lumberyard-api/pkg/config"
	"github.com/jhoicas/lumberyard-api/pkg/logger"
)

func main() {
	charset := flag.String("charset", "windows-1252", "codificación del archivo")
	actor := flag.String("actor", "seed", "usuario que firma los ajustes")
	dryRun := flag.Bool("dry-run", false, "solo validar el archivo")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "uso: seed_stock [flags] saldos.csv")
		os.Exit(2)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	rows, err := ParseBalances(f, *charset)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}
	if *dryRun {
		fmt.Printf("%d filas válidas\n", len(rows))
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "seed_stock"})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB, "seed_stock")
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	uc := inventory.NewAdjustStockUseCase(
		postgres.NewTxRunner(pool, cfg.DB, log.Zerolog()),
		postgres.NewWarehouseRepository(pool),
		postgres.NewStockAdjustmentRepository(pool),
		notify.NewLogPublisher(log.Zerolog()),
		log.Zerolog(),
	)

	applied := 0
	for _, row := range rows {
		if _, err := uc.AdjustStock(ctx, *actor, row.Request()); err != nil {
			log.Error().Err(err).Int("line", row.Line).Msg("fila no aplicada")
			continue
		}
		applied++
	}
	log.Info().Int("applied", applied).Int("rows", len(rows)).Msg("saldos iniciales cargados")
	if applied != len(rows) {
		os.Exit(1)
	}
}
