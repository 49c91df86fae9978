package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/spiritwatch/internal/application/access"
	"github.com/jhoicas/spiritwatch/internal/application/monitor"
	"github.com/jhoicas/spiritwatch/internal/application/report"
	"github.com/jhoicas/spiritwatch/internal/application/scheduler"
	"github.com/jhoicas/spiritwatch/internal/infrastructure/catalog"
	"github.com/jhoicas/spiritwatch/internal/infrastructure/postgres"
	infratelegram "github.com/jhoicas/spiritwatch/internal/infrastructure/telegram"
	httpRouter "github.com/jhoicas/spiritwatch/internal/interfaces/http"
	"github.com/jhoicas/spiritwatch/internal/interfaces/telegram"
	"github.com/jhoicas/spiritwatch/pkg/config"
	"github.com/jhoicas/spiritwatch/pkg/logger"
)

const reportJob = "daily-report"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	if cfg.Telegram.BotToken == "" {
		panic("BOT_TOKEN no está definido")
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando watcher")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.InitSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("inicializar esquema")
	}

	productRepo := postgres.NewProductRepository(pool)
	activeRepo := postgres.NewActiveStateRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	stockRepo := postgres.NewStockLevelRepository(pool)
	watchRepo := postgres.NewWatchRepository(pool)
	userStoreRepo := postgres.NewUserStoreRepository(pool)
	storeRepo := postgres.NewStoreRepository(pool)
	userRepo := postgres.NewUserRepository(pool)

	catalogClient := catalog.New(cfg.Catalog, log)
	notifier, err := infratelegram.NewNotifier(cfg.Telegram.BotToken, log)
	if err != nil {
		log.Fatal().Err(err).Msg("canal de notificaciones")
	}

	poll := monitor.PollConfig{
		BatchSize: cfg.Catalog.BatchSize,
		Delay:     cfg.Catalog.InterBatchDelay,
	}
	fanout := monitor.NewFanout(watchRepo, userStoreRepo, notifier, log)
	activeSweep := monitor.NewActiveSweep(productRepo, activeRepo, catalogClient, fanout, poll, log)
	categorySweep := monitor.NewCategorySweep(productRepo, categoryRepo, catalogClient, fanout, cfg.Monitor.TargetCategory, poll, log)
	stockSweep := monitor.NewStockSweep(watchRepo, userStoreRepo, stockRepo, catalogClient, fanout, poll, cfg.Monitor.BusinessStart, cfg.Monitor.BusinessEnd, log)

	reportBuilder := report.NewBuilder(
		productRepo, watchRepo, catalogClient, notifier, poll,
		cfg.Catalog.ReferenceStore, cfg.Report.Dir, cfg.Report.Prefix,
		cfg.Telegram.OwnerChatID, log,
	)

	userSvc := access.NewUserService(userRepo, cfg.Monitor.TrialDays, cfg.Monitor.SubscriptionDays, log)
	commands := telegram.NewCommandLoop(
		notifier.Bot(), notifier, userSvc,
		productRepo, watchRepo, userStoreRepo, storeRepo,
		catalogClient, cfg.Catalog.ReferenceStore, log,
	)
	go commands.Run(ctx)

	sched := scheduler.New(ctx, log)
	sched.Every("active-sweep", cfg.Monitor.ActiveInterval, activeSweep.Run)
	sched.Every("category-sweep", cfg.Monitor.CategoryInterval, categorySweep.Run)
	sched.Every("stock-sweep", cfg.Monitor.StockInterval, stockSweep.Run)
	sched.Daily(reportJob, cfg.Report.Hour, cfg.Report.Minute, reportBuilder.Run)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		Products:      productRepo,
		Stores:        storeRepo,
		TriggerJob:    sched.Trigger,
		ReportJobName: reportJob,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando...")

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("watcher detenido")
}
