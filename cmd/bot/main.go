package main

import (
	"context"
	"database/sql"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"soup_menu_bot/internal/app"
	"soup_menu_bot/internal/domain/menu"
	"soup_menu_bot/internal/domain/subscription"
	"soup_menu_bot/internal/infra/config"
	idb "soup_menu_bot/internal/infra/database"
	"soup_menu_bot/internal/infra/logger"
	"soup_menu_bot/internal/infra/metrics"
	"soup_menu_bot/internal/infra/scheduler"
	"soup_menu_bot/internal/infra/subscribers"
	"soup_menu_bot/internal/infra/telegram"
	"soup_menu_bot/internal/infra/web"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("Could not load application configuration: %v", err)
	}
	logger.Init(cfg)
	mainLogger := logger.Component("main")

	mainLogger.WithFields(logrus.Fields{
		"environment":      cfg.Environment,
		"timezone":         cfg.Timezone.String(),
		"telegram_policy":  cfg.TelegramWeekdayPolicy,
		"teams_policy":     cfg.TeamsWeekdayPolicy,
		"subscriber_store": cfg.SubscriberStore,
		"telegram_enabled": cfg.TelegramEnabled(),
		"teams_enabled":    cfg.TeamsEnabled,
	}).Info("Configuration loaded")

	telegramPolicy, err := menu.ParsePolicy(cfg.TelegramWeekdayPolicy)
	if err != nil {
		mainLogger.WithError(err).Fatal("Invalid Telegram weekday policy")
	}
	teamsPolicy, err := menu.ParsePolicy(cfg.TeamsWeekdayPolicy)
	if err != nil {
		mainLogger.WithError(err).Fatal("Invalid Teams weekday policy")
	}

	// Initialize Database Connection
	db, err := idb.NewPostgresConnection(context.Background(), cfg.DatabaseURL, idb.PoolOptions{
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
		PingTimeout:  cfg.DBTimeout,
	})
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not connect to database")
	}
	defer db.Close()
	mainLogger.Info("Database connection established successfully.")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Initialize Repositories
	soupRepo := idb.NewPostgresSoupRepository(db, cfg.DBTimeout)
	subscriberStore, closeStore, err := newSubscriberStore(cfg, db)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not initialize subscriber store")
	}
	defer closeStore()

	clock := app.ClockIn(cfg.Timezone)
	newQueries := func(platform, localeTag string, policy menu.Policy, renderer menu.Renderer) *app.QueryService {
		locale := menu.LocaleFor(localeTag)
		return app.NewQueryService(
			soupRepo,
			menu.NewExtractor(locale, policy),
			menu.NewFormatter(locale, renderer),
			clock,
			platform,
			logger.Component("query"),
			m,
		)
	}
	telegramQueries := newQueries("telegram", cfg.TelegramLocale, telegramPolicy, menu.TextRenderer{})
	webQueries := newQueries("web", cfg.TelegramLocale, telegramPolicy, menu.TextRenderer{})
	var teamsQueries *app.QueryService
	if cfg.TeamsEnabled {
		teamsQueries = newQueries("teams", cfg.TeamsLocale, teamsPolicy, menu.CardRenderer{})
	}

	adminService := app.NewAdminService(soupRepo, cfg.AdminTelegramID, cfg.Timezone, logger.Component("admin"), m)
	mainLogger.Info("Application services initialized.")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		bot            *telebot.Bot
		notifScheduler *scheduler.DailySoupScheduler
	)
	if cfg.TelegramEnabled() {
		botLogger := logger.Component("telebot")
		pref := telebot.Settings{
			Token:  cfg.TelegramToken,
			Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
			OnError: func(err error, c telebot.Context) { // Global error handler
				entry := botLogger.WithError(err)
				if c != nil && c.Sender() != nil && c.Chat() != nil {
					entry = entry.WithFields(logrus.Fields{"sender_id": c.Sender().ID, "chat_id": c.Chat().ID})
				}
				entry.Error("Telegram handler failed")
			},
		}
		bot, err = telebot.NewBot(pref)
		if err != nil {
			mainLogger.WithError(err).Fatal("Could not create Telegram bot")
		}

		notificationService := app.NewNotificationServiceImpl(
			subscriberStore,
			telegramQueries,
			telegram.NewTelebotAdapter(bot),
			logger.Component("notifications"),
			m,
			cfg.SendTimeout,
			cfg.BroadcastConcurrency,
		)

		telegramLogger := logger.Component("telegram")
		telegram.RegisterBotCommands(ctx, bot, telegramQueries, notificationService, telegramLogger)
		telegram.RegisterAdminHandlers(ctx, bot, adminService, telegramLogger)
		mainLogger.Info("Telegram handlers registered.")

		notifScheduler = scheduler.NewDailySoupScheduler(
			notificationService,
			logger.Component("scheduler"),
			cfg.CronSpecDailySoup,
			cfg.Timezone,
		)
		if err := notifScheduler.Start(); err != nil {
			mainLogger.WithError(err).Fatal("Could not start scheduler")
		}

		// Start bot in a goroutine so it doesn't block graceful shutdown handling
		go bot.Start()
	} else {
		mainLogger.Warn("TELEGRAM_TOKEN is not set. Telegram bot and daily broadcast are disabled.")
	}

	router, err := web.NewRouter(web.Options{
		Queries:       webQueries,
		Teams:         teamsQueries,
		Admin:         adminService,
		Registry:      registry,
		DB:            db,
		Logger:        logger.Component("http"),
		Environment:   cfg.Environment,
		CORSOrigins:   cfg.CORSAllowedOrigins,
		AdminUser:     cfg.AdminWebUser,
		AdminPassword: cfg.AdminWebPassword,
		TeamsSecret:   cfg.TeamsWebhookSecret,
	})
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not build HTTP router")
	}
	server := web.NewServer(cfg.HTTPAddr, router, logger.Component("http"))
	serverErr := make(chan error, 1)
	go func() { serverErr <- server.Start() }()

	mainLogger.Info("Application setup complete.")

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			mainLogger.WithError(err).Error("HTTP server stopped unexpectedly")
		}
	}

	mainLogger.Info("Shutting down application...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		mainLogger.WithError(err).Warn("HTTP server did not shut down cleanly")
	}
	if notifScheduler != nil {
		notifScheduler.Stop()
	}
	if bot != nil {
		bot.Stop()
	}
	mainLogger.Info("Application shut down gracefully.")
}

// newSubscriberStore picks the configured subscriber backend. The returned func releases it.
func newSubscriberStore(cfg *config.AppConfig, db *sql.DB) (subscription.Store, func(), error) {
	switch cfg.SubscriberStore {
	case config.SubscriberStorePostgres:
		return idb.NewPostgresSubscriberRepository(db, cfg.DBTimeout), func() {}, nil
	case config.SubscriberStoreRedis:
		rdb, err := subscribers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return subscribers.NewRedisStore(rdb, subscribers.DefaultRedisKey), func() { _ = rdb.Close() }, nil
	default:
		return subscribers.NewMemoryStore(), func() {}, nil
	}
}
