package main

import (
	"context"
	"fmt"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/conteo-inventario/internal/application/inventory"
	"github.com/jhoicas/conteo-inventario/internal/domain/repository"
	"github.com/jhoicas/conteo-inventario/internal/infrastructure/ackbus"
	"github.com/jhoicas/conteo-inventario/internal/infrastructure/catalogcsv"
	"github.com/jhoicas/conteo-inventario/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/conteo-inventario/internal/infrastructure/pdf"
	"github.com/jhoicas/conteo-inventario/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/conteo-inventario/internal/interfaces/http"
	"github.com/jhoicas/conteo-inventario/pkg/config"
	"github.com/jhoicas/conteo-inventario/pkg/logger"
)

// storage puertos de persistencia según STORAGE_DRIVER.
type storage struct {
	tx         inventory.TxRunner
	counts     repository.InventoryCountRepository
	products   repository.ProductRepository
	warehouses repository.WarehouseRepository
	pool       *pgxpool.Pool // nil con el driver en memoria
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.App.StorageDriver == "memory" {
		s, err := openMemory(cfg.App, log)
		if err != nil {
			return nil, err
		}
		return &storage{tx: s, counts: s.Counts(), products: s.Products(), warehouses: s.Warehouses()}, nil
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &storage{
		tx:         postgres.NewTxRunner(pool),
		counts:     postgres.NewInventoryCountRepository(pool),
		products:   postgres.NewProductRepository(pool),
		warehouses: postgres.NewWarehouseRepository(pool),
		pool:       pool,
	}, nil
}

// openMemory arma el driver en memoria (desarrollo local y pruebas). Sin STORAGE_SEED_FILE
// arranca vacío y se pierde al detener el proceso.
func openMemory(app config.AppConfig, log *logger.Logger) (*memory.Store, error) {
	s := memory.NewStore()
	if app.SeedFile == "" {
		log.Warn().Msg("almacenamiento en memoria sin STORAGE_SEED_FILE: el catálogo arranca vacío")
		return s, nil
	}
	companyID, err := uuid.Parse(app.SeedCompanyID)
	if err != nil {
		return nil, fmt.Errorf("STORAGE_SEED_COMPANY inválido: %w", err)
	}
	products, err := catalogcsv.ReadFile(app.SeedFile, companyID)
	if err != nil {
		return nil, err
	}
	n := s.Seed(companyID.String(), products)
	log.Info().Str("file", app.SeedFile).Int("products", n).Msg("catálogo cargado en memoria")
	return s, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.StorageDriver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("storage", cfg.App.StorageDriver).Msg("abrir almacenamiento")
	}

	// Bus de confirmaciones: Redis si hay varias réplicas, si no en memoria
	var (
		bus         inventory.AckBus
		redisClient *redis.Client
	)
	if cfg.Redis.Enabled() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		bus = ackbus.NewRedisBus(redisClient, cfg.Count.AckChannel)
	} else {
		bus = ackbus.NewMemoryBus()
	}

	lifecycle := inventory.NewLifecycleManager(store.tx, store.counts, log)
	watcher := inventory.NewAckWatcher(bus, lifecycle, cfg.Count.AckTimeout, log)
	loader := inventory.NewCatalogLoader(store.products, store.warehouses)
	workspaces := inventory.NewWorkspaceUseCase(loader, lifecycle, watcher, cfg.Count.WorkspaceTTL, log)
	reports := inventory.NewReportUseCase(
		store.counts, store.products, store.warehouses,
		infrapdf.NewMarotoCountReport(cfg.App.Name), watcher, bus, log,
	)

	sweepCtx, stopSweep := context.WithCancel(ctx)
	go workspaces.Run(sweepCtx, time.Minute)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Conteo de Inventario API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Workspaces: workspaces,
		Lifecycle:  lifecycle,
		Reports:    reports,
		Warehouses: store.warehouses,
		JWTSecret:  cfg.JWT.Secret,
		JWTIssuer:  cfg.JWT.Issuer,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	wait := gfshutdown.GracefulShutdown(ctx, cfg.App.ShutdownTimeout, map[string]gfshutdown.Operation{
		"http": func(ctx context.Context) error {
			log.Info().Msg("señal de apagado recibida, cerrando servidor...")
			return app.ShutdownWithContext(ctx)
		},
		"workspaces": func(context.Context) error {
			stopSweep()
			return nil
		},
		// Los conteos que sigan esperando confirmación quedan pendientes
		"ack-watcher": func(context.Context) error {
			watcher.Stop()
			return nil
		},
		"redis": func(context.Context) error {
			if redisClient == nil {
				return nil
			}
			return redisClient.Close()
		},
		"postgres": func(context.Context) error {
			if store.pool != nil {
				store.pool.Close()
			}
			return nil
		},
	})

	exitCode := <-wait
	log.Info().Int("exit_code", exitCode).Msg("aplicación detenida")
	os.Exit(exitCode)
}
