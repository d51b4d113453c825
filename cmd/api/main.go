package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	_ "github.com/jhoicas/Almacen-api/docs"
	"github.com/jhoicas/Almacen-api/internal/application/allocator"
	"github.com/jhoicas/Almacen-api/internal/application/ledger"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	"github.com/jhoicas/Almacen-api/internal/infrastructure/memory"
	"github.com/jhoicas/Almacen-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Almacen-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/Almacen-api/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/Almacen-api/internal/interfaces/http"
	"github.com/jhoicas/Almacen-api/pkg/config"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

// txRunner lo que ambos servicios necesitan del almacenamiento.
type txRunner interface {
	ledger.TxRunner
	allocator.TxRunner
}

// @title        Almacén API
// @version      1.0
// @description  Libro de retiros de bodega y asignación de productos en cuadrícula.
// @BasePath     /
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
		Str("storage", cfg.Storage.Driver).
		Str("undo_store", cfg.Undo.Store).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Ranura de deshacer compartida en Redis; si no, vive en el almacenamiento principal.
	var undo repository.UndoStore
	if cfg.Undo.Store == config.UndoStoreRedis {
		redisUndo, err := infraredis.NewUndoStore(infraredis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, time.Duration(cfg.Undo.TTLMinutes)*time.Minute)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer func() { _ = redisUndo.Close() }()
		undo = redisUndo
	}

	var (
		runner      txRunner
		productRepo repository.ProductRepository
		pool        *pgxpool.Pool
	)
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		var opts []memory.Option
		if undo != nil {
			opts = append(opts, memory.WithUndoStore(undo))
		}
		store := memory.New(opts...)
		runner, productRepo = store, store.Repos().Products
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		pool, err = postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.DB.AutoMigrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				log.Fatal().Err(err).Msg("migración del esquema")
			}
			log.Info().Msg("esquema aplicado")
		}
		var opts []postgres.TxOption
		if undo != nil {
			opts = append(opts, postgres.WithUndoStore(undo))
		}
		runner, productRepo = postgres.NewTxRunner(pool, opts...), postgres.NewProductRepository(pool)
	}

	ledgerOpts := []ledger.Option{ledger.WithLogger(log)}
	allocatorOpts := []allocator.Option{allocator.WithLogger(log)}
	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector(true)
		ledgerOpts = append(ledgerOpts, ledger.WithMetrics(collector))
		allocatorOpts = append(allocatorOpts, allocator.WithMetrics(collector))
	}
	ledgerSvc := ledger.NewService(runner, productRepo, ledgerOpts...)
	alloc := allocator.New(runner, allocatorOpts...)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI: http://localhost:<port>/docs
	if cfg.Docs.Enabled {
		if _, err := os.Stat(cfg.Docs.FilePath); err != nil {
			log.Warn().Err(err).Str("file", cfg.Docs.FilePath).Msg("documentación deshabilitada: no se encontró swagger.json")
		} else {
			app.Use(swagger.New(swagger.Config{
				BasePath: "/",
				FilePath: cfg.Docs.FilePath,
				Path:     "docs",
				Title:    "Almacén API",
			}))
		}
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		if pool != nil {
			if err := pool.Ping(c.Context()); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
			}
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	if collector != nil {
		app.Get("/metrics", adaptor.HTTPHandler(collector.Handler()))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		Ledger:    ledgerSvc,
		Allocator: alloc,
		Logger:    log,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.Listen(cfg.HTTP.Addr())
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("señal de apagado recibida, cerrando servidor...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("servidor HTTP finalizado")
		os.Exit(1)
	}
	log.Info().Msg("aplicación detenida")
}
