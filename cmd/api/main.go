// @title        Lumberyard API
// @version      1.0
// @description  Traslados de madera entre bodegas y libro de stock por estado de secado.
// @BasePath     /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	_ "github.com/jhoicas/lumberyard-api/docs"
	"github.com/jhoicas/lumberyard-api/internal/application/inventory"
	"github.com/jhoicas/lumberyard-api/internal/application/ports"
	"github.com/jhoicas/lumberyard-api/internal/application/transfer"
	"github.com/jhoicas/lumberyard-api/internal/domain/repository"
	"github.com/jhoicas/lumberyard-api/internal/infrastructure/cache"
	"github.com/jhoicas/lumberyard-api/internal/infrastructure/memory"
	"github.com/jhoicas/lumberyard-api/internal/infrastructure/notify"
	"github.com/jhoicas/lumberyard-api/internal/infrastructure/postgres"
	"github.com/jhoicas/lumberyard-api/internal/infrastructure/scheduler"
	httpRouter "github.com/jhoicas/lumberyard-api/internal/interfaces/http"
	"github.com/jhoicas/lumberyard-api/pkg/config"
	"github.com/jhoicas/lumberyard-api/pkg/logger"
)

// stores puertos de almacenamiento según STORE_DRIVER.
type stores struct {
	tx          ports.TxRunner
	warehouses  repository.WarehouseRepository
	assignments repository.AssignmentRepository
	stock       repository.StockRepository
	transfers   repository.TransferRepository
	adjustments repository.StockAdjustmentRepository
	close       func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	zl := log.Zerolog()
	log.Info().
		Str("env", cfg.App.Env).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer st.close()

	var publisher ports.EventPublisher = notify.NewLogPublisher(zl)
	if cfg.Notify.WebhookURL != "" {
		webhook := notify.NewWebhookPublisher(cfg.Notify.WebhookURL, time.Duration(cfg.Notify.TimeoutSeconds)*time.Second)
		publisher = notify.Multi{publisher, webhook}
	}

	// El número de traslado usa el día en la zona horaria del negocio.
	loc := cfg.App.Location()
	clock := func() time.Time { return time.Now().In(loc) }

	transferUC := transfer.NewUseCase(st.tx, st.warehouses, st.transfers, st.assignments, publisher, zl).WithClock(clock)
	adjustUC := inventory.NewAdjustStockUseCase(st.tx, st.warehouses, st.adjustments, publisher, zl).WithClock(clock)
	lowStockUC := inventory.NewLowStockUseCase(st.stock)

	if cfg.Alerts.LowStockCron != "" {
		sched := scheduler.New(cfg.Alerts.LowStockCron, loc, lowStockUC, publisher, zl)
		if err := sched.Start(); err != nil {
			log.Fatal().Err(err).Str("cron", cfg.Alerts.LowStockCron).Msg("LOW_STOCK_CRON inválido")
		}
		defer sched.Stop()
	}

	var idempotencyStore fiber.Storage
	if cfg.Redis.Addr != "" {
		redisStore, err := cache.NewRedisStorage(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.App.Name+":idem:")
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		defer redisStore.Close()
		idempotencyStore = redisStore
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(zl))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Lumberyard API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.Store.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Transfers:      transferUC,
		Adjustments:    adjustUC,
		LowStock:       lowStockUC,
		JWTSecret:      cfg.JWT.Secret,
		JWTIssuer:      cfg.JWT.Issuer,
		Location:       loc,
		Idempotency:    idempotencyStore,
		IdempotencyTTL: cfg.Redis.IdempotencyTTL(),
		Log:            zl,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func openStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (*stores, error) {
	if cfg.Store.Driver == config.StoreDriverMemory {
		log.Warn().Msg("STORE_DRIVER=memory: los datos se pierden al reiniciar")
		mem := memory.NewStore()
		if cfg.Store.SeedFile != "" {
			seed, err := memory.LoadSeed(cfg.Store.SeedFile)
			if err != nil {
				return nil, err
			}
			seed.Apply(mem)
			log.Info().
				Str("file", cfg.Store.SeedFile).
				Int("warehouses", len(seed.Warehouses)).
				Int("stock_records", len(seed.Stock)).
				Msg("semilla cargada en memoria")
		} else {
			log.Warn().Msg("STORE_SEED_FILE vacío: directorio de bodegas vacío")
		}
		return &stores{
			tx:          mem,
			warehouses:  mem.Warehouses(),
			assignments: mem.Assignments(),
			stock:       mem.Stock(),
			transfers:   mem.Transfers(),
			adjustments: mem.Adjustments(),
			close:       func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB, cfg.App.Name)
	if err != nil {
		return nil, err
	}
	return &stores{
		tx:          postgres.NewTxRunner(pool, cfg.DB, log.Zerolog()),
		warehouses:  postgres.NewWarehouseRepository(pool),
		assignments: postgres.NewAssignmentRepository(pool),
		stock:       postgres.NewStockRepository(pool),
		transfers:   postgres.NewTransferRepository(pool),
		adjustments: postgres.NewStockAdjustmentRepository(pool),
		close:       pool.Close,
	}, nil
}
