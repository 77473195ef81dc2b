package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"

	"promo-bot/internal/application"
	"promo-bot/internal/config"
	tele "promo-bot/internal/infra/adapters/telegram"
	pg "promo-bot/internal/infra/db/postgres"
	httpapi "promo-bot/internal/infra/http"
	"promo-bot/internal/infra/i18n"
	"promo-bot/internal/infra/logging"
	"promo-bot/internal/infra/metrics"
	red "promo-bot/internal/infra/redis"
	"promo-bot/internal/infra/sched"
	"promo-bot/internal/infra/scheduler"
	"promo-bot/internal/infra/web"
	"promo-bot/internal/infra/worker"
	"promo-bot/internal/usecase"
)

// Set at build time with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

type cli struct {
	Config string `help:"Path to the YAML config file. Empty uses the environment only." default:"config.yaml"`
	Dev    bool   `help:"Console logging and developer defaults."`
}

func main() {
	var args cli
	kong.Parse(&args, kong.Name("promo-bot"), kong.Description("Telegram promotion bot webhook server."))

	cfg, err := config.LoadConfig(args.Config, args.Dev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("promo bot stopped")
	}
}

func run(cfg *config.Config, logger *zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.SetBuildInfo(version, commit)
	logger.Info().Str("version", version).Str("commit", commit).Bool("dry_run", cfg.Bot.DryRun).Msg("starting promo bot")

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	if err := pg.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)
	stateRepo := red.NewStateRepo(redisClient, cfg.Redis.StateTTL)
	locker := red.NewLocker(redisClient)

	// ---- Repositories ----
	userRepo := pg.NewUserRepo(pool)
	referralRepo := pg.NewReferralRepo(pool)
	materialRepo := pg.NewMaterialRepo(pool)
	selectionRepo := pg.NewSelectionRepo(pool)
	groupRepo := pg.NewGroupRepoCacheDecorator(pg.NewGroupRepo(pool), redisClient, cfg.Redis.GroupCacheTTL, logger)
	txManager := pg.NewTxManager(pool)

	translator, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	if err != nil {
		return fmt.Errorf("i18n: %w", err)
	}

	// ---- Telegram ----
	var bot tele.Bot
	if cfg.Bot.DryRun {
		bot = tele.NewNoopBotAdapter(cfg.Bot.Username, logger)
	} else {
		bot, err = tele.NewRealTelegramBotAdapter(&cfg.Bot, translator, logger)
		if err != nil {
			return fmt.Errorf("telegram: %w", err)
		}
	}

	// ---- Workers ----
	workerPool := worker.NewPool(cfg.Promotion.Workers, cfg.Promotion.QueueSize, logger)
	workerPool.Start(context.Background())

	// ---- Use cases ----
	capability := usecase.NewCapabilityChecker(bot, logger)
	userUC := usecase.NewUserUseCase(userRepo, referralRepo, txManager, logger)
	referralUC := usecase.NewReferralUseCase(userRepo, referralRepo, txManager, bot, translator, logger)
	materialUC := usecase.NewMaterialUseCase(materialRepo, logger)
	selectionUC := usecase.NewSelectionUseCase(selectionRepo, logger)
	groupUC := usecase.NewGroupUseCase(groupRepo, bot, capability, logger)
	promotionUC := usecase.NewPromotionUseCase(selectionRepo, materialRepo, capability, bot, workerPool, translator, cfg.Promotion.SendDelay, logger)
	statsUC := usecase.NewStatsUseCase(userRepo, groupRepo, logger)
	expiryUC := usecase.NewExpiryReportUseCase(userRepo, bot, locker, translator, cfg.Bot.AdminIDs, logger)

	facade := application.NewBotFacade(userUC, referralUC, materialUC, selectionUC, groupUC, promotionUC, statsUC, translator, cfg.Bot.AdminUsername, logger)
	updates := tele.NewUpdateHandler(bot, facade, translator, rateLimiter, stateRepo, tele.HandlerOptions{
		AdminIDs:      cfg.Bot.AdminIDs,
		AdminUsername: cfg.Bot.AdminUsername,
		CommandLimit:  cfg.RateLimit.Commands,
		CallbackLimit: cfg.RateLimit.Callbacks,
		Window:        cfg.RateLimit.Window,
		MaxMaterials:  cfg.Promotion.MaxMaterials,
	}, logger)

	// ---- Scheduler ----
	cron := scheduler.New(logger)
	jobs := []scheduler.Job{
		sched.ExpiryReport(cfg.Scheduler.ExpiryReportCron, expiryUC, logger),
		sched.PoolStats(cfg.Scheduler.PoolStatsCron, poolCounts(pool)),
	}
	for _, j := range jobs {
		if err := cron.Add(j); err != nil {
			return fmt.Errorf("scheduler: %w", err)
		}
	}

	// ---- HTTP ----
	var admin httpapi.RouteRegistrar
	if cfg.AdminAPI.Enabled {
		auth := web.NewAuthManager(cfg.AdminAPI.JWTSecret, cfg.AdminAPI.SecureCookie, cfg.AdminAPI.TokenTTL)
		admin = web.NewServer(statsUC, groupUC, cfg.AdminAPI.APIKey, auth, logger)
	}
	server := httpapi.NewServer(cfg, updates, bot, admin, logger)
	serverErr := make(chan error, 1)
	go func() { serverErr <- server.Start() }()

	if err := bot.SetMenuCommands(ctx, cfg.Bot.AdminIDs); err != nil {
		logger.Warn().Err(err).Msg("set menu commands")
	}
	if cfg.Webhook.SetOnStart {
		if err := bot.SetWebhook(ctx, cfg.WebhookURL()); err != nil {
			logger.Error().Err(err).Msg("set webhook on start")
		} else {
			logger.Info().Str("host", cfg.Webhook.Host).Msg("webhook registered")
		}
	}

	cron.Start()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown requested")
	case runErr = <-serverErr:
	}

	// ---- Graceful shutdown ----
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown")
	}
	if err := cron.Stop(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("scheduler shutdown")
	}
	if err := workerPool.Stop(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("worker pool shutdown")
	}
	logger.Info().Msg("bye")
	return runErr
}

func poolCounts(pool *pgxpool.Pool) func() sched.PoolCounts {
	return func() sched.PoolCounts { return pool.Stat() }
}
