package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"

	"clubauction/bot"
	"clubauction/config"
	"clubauction/dashboard"
	"clubauction/database"
	"clubauction/events"
	"clubauction/infrastructure"
	"clubauction/repository"
	"clubauction/service"
)

// ConfigureLogging applies the configured level and format to the global logger
func ConfigureLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("logLevel", cfg.LogLevel).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

// Run initializes and starts the application
func Run(ctx context.Context) error {
	// Load configuration
	cfg := config.Get()
	ConfigureLogging(cfg)

	log.WithField("environment", cfg.Environment).Info("Starting club auction bot...")

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully")

	// Initialize event bus and unit of work factory
	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := service.NewMetrics(registry)

	// Initialize services
	auctionService := service.NewAuctionService(uowFactory, cfg, metrics)
	groupService := service.NewGroupService(uowFactory, cfg)
	walletService := service.NewWalletService(uowFactory)
	catalogService := service.NewCatalogService(uowFactory)
	penaltyService := service.NewPenaltyService(uowFactory, cfg, metrics)
	snapshotService := service.NewSnapshotService(uowFactory)
	log.Info("Services initialized successfully")

	// Mirror events to NATS when configured
	if cfg.NATSServers != "" {
		natsClient, err := startEventMirror(ctx, cfg.NATSServers, eventBus)
		if err != nil {
			return err
		}
		defer func() {
			if err := natsClient.Close(); err != nil {
				log.WithError(err).Error("Error closing NATS connection")
			}
		}()
	}

	reportWorker := service.NewWeeklyReportWorker(uowFactory, snapshotService, cfg)

	// Initialize Discord bot
	log.Info("Initializing Discord bot...")
	discordBot, err := bot.New(bot.Config{
		Token:           cfg.DiscordToken,
		GuildID:         cfg.GuildID,
		OwnerID:         cfg.BotOwnerID,
		ReportChannelID: cfg.ReportChannelID,
	}, bot.Services{
		Auction:  auctionService,
		Groups:   groupService,
		Wallets:  walletService,
		Catalog:  catalogService,
		Penalty:  penaltyService,
		Snapshot: snapshotService,
		Reports:  reportWorker,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	defer func() {
		if err := discordBot.Close(); err != nil {
			log.WithError(err).Error("Error closing Discord bot")
		}
	}()
	service.SubscribeNotifier(eventBus, discordBot.Notifier())
	log.Info("Discord bot initialized successfully")

	// Re-arm countdowns for rounds left open by a previous run
	rearmed, err := auctionService.Recover(ctx)
	if err != nil {
		return fmt.Errorf("failed to recover open auctions: %w", err)
	}
	log.WithField("rounds", rearmed).Info("Recovered open auction rounds")
	defer auctionService.Shutdown()

	// Start background workers
	stopDrift := service.NewMarketDriftWorker(uowFactory, cfg, metrics).Start(ctx)
	defer stopDrift()
	stopReports := reportWorker.Start(ctx)
	defer stopReports()

	// Start dashboard
	if cfg.DashboardEnabled {
		server := dashboard.NewServer(cfg.DashboardAddr, snapshotService, auctionService, registry)
		server.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.WithError(err).Error("Error shutting down dashboard")
			}
		}()
	}

	// Wait for context cancellation
	log.Infof("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	log.Info("Shutting down bot...")
	return nil
}

func startEventMirror(ctx context.Context, servers string, eventBus *events.Bus) (*infrastructure.NATSClient, error) {
	natsClient := infrastructure.NewNATSClient(servers)
	if err := natsClient.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	mapper := infrastructure.NewEventSubjectMapper()
	if err := natsClient.EnsureStream(mapper.GetAllSubjects()); err != nil {
		_ = natsClient.Close()
		return nil, fmt.Errorf("failed to ensure NATS stream: %w", err)
	}

	infrastructure.NewEventMirror(natsClient, mapper).Attach(eventBus)
	log.WithField("servers", servers).Info("Mirroring auction events to NATS")
	return natsClient, nil
}
