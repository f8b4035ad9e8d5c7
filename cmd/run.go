package cmd

import (
	"context"
	"fmt"
	"time"

	"lotterypay/application"
	"lotterypay/config"
	"lotterypay/database"
	"lotterypay/domain/services"
	"lotterypay/events"
	"lotterypay/infrastructure"
	"lotterypay/infrastructure/observability"
	"lotterypay/repository"
	"lotterypay/server"

	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 15 * time.Second

// callbackQueue is the webhook handoff plus the resources it must release
type callbackQueue struct {
	application.CallbackQueue
	nats *infrastructure.NATSClient
}

// Run initializes and starts the payment service
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	setupLogging(cfg)

	log.WithField("environment", cfg.Environment).Info("Starting lottery payment service...")

	// Metrics
	metrics := observability.NewMetricsProvider(cfg)
	if err := metrics.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	// Database
	if cfg.AutoMigrate {
		log.Info("Applying database migrations...")
		if err := database.RunMigrationsWithURL(cfg.GetDatabaseURL()); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established")

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)
	metrics.Subscribe(eventBus)
	eventBus.Subscribe(events.EventTypeTicketCreated, logTicketCreated)

	// Domain services
	sampler, err := services.NewNumberSampler(cfg.LotteryMinNumber, cfg.LotteryMaxNumber, cfg.LotteryNumbersPerTicket)
	if err != nil {
		return fmt.Errorf("failed to create number sampler: %w", err)
	}
	ticketService := services.NewTicketService(sampler)

	// Outbound integrations
	gateway, err := infrastructure.NewMollieGateway(cfg, metrics)
	if err != nil {
		return fmt.Errorf("failed to create payment gateway: %w", err)
	}
	notifier := infrastructure.NewEmailNotifier(cfg,
		infrastructure.NewTicketCardRenderer(cfg.FromName),
		infrastructure.NewTicketReceiptRenderer(cfg.FromName),
	)
	go checkSMTP(ctx, notifier)

	if cfg.DiscordAlertsEnabled() {
		alerter, err := infrastructure.NewDiscordAlerter(cfg.DiscordToken, cfg.DiscordAlertChannelID)
		if err != nil {
			return fmt.Errorf("failed to create Discord alerter: %w", err)
		}
		alerter.Subscribe(eventBus)
		log.WithField("channelID", cfg.DiscordAlertChannelID).Info("Discord payment alerts enabled")
	}

	// Application
	controller := application.NewLifecycleController(uowFactory, ticketService, gateway, notifier, metrics)
	worker := application.NewCallbackWorker(controller, metrics)

	queue, err := newCallbackQueue(ctx, cfg, eventBus, worker)
	if err != nil {
		return err
	}

	// Transport
	handlers := server.NewHandlers(controller, queue, db)
	httpServer := server.NewHTTPServer(cfg.Port, server.NewRouter(handlers))
	serveErr, err := httpServer.Start()
	if err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	var grpcHealth *server.GRPCHealthServer
	if cfg.GRPCHealthPort != "" {
		grpcHealth = server.NewGRPCHealthServer(db)
		if err := grpcHealth.Start(cfg.GRPCHealthPort); err != nil {
			return fmt.Errorf("failed to start gRPC health server: %w", err)
		}
	}

	log.WithField("port", cfg.Port).Info("Lottery payment service is running")

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("Shutting down lottery payment service...")
	case err, ok := <-serveErr:
		if ok && err != nil {
			runErr = fmt.Errorf("HTTP server failed: %w", err)
			log.WithError(err).Error("HTTP server stopped unexpectedly")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if grpcHealth != nil {
		grpcHealth.Shutdown()
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down HTTP server")
	}
	queue.shutdown(shutdownCtx)
	if err := eventBus.Wait(shutdownCtx); err != nil {
		log.WithError(err).Warn("Event handlers did not finish before shutdown timeout")
	}
	if err := metrics.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down metrics provider")
	}

	log.Info("Shutdown completed")
	return runErr
}

// newCallbackQueue uses JetStream when NATS is configured and the in-process bus otherwise
func newCallbackQueue(ctx context.Context, cfg *config.Config, bus *events.Bus, worker *application.CallbackWorker) (*callbackQueue, error) {
	if cfg.NATSServers == "" {
		log.Info("NATS not configured, processing payment callbacks in-process")
		return &callbackQueue{CallbackQueue: infrastructure.NewLocalCallbackQueue(bus, worker)}, nil
	}

	client := infrastructure.NewNATSClient(cfg.NATSServers)
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Connect(connectCtx); err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	queue := infrastructure.NewNATSCallbackQueue(client, worker)
	if err := queue.Start(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to start NATS callback queue: %w", err)
	}
	return &callbackQueue{CallbackQueue: queue, nats: client}, nil
}

func (q *callbackQueue) shutdown(ctx context.Context) {
	if err := q.Close(ctx); err != nil {
		log.WithError(err).Warn("Callback queue did not drain before shutdown timeout")
	}
	if q.nats != nil {
		if err := q.nats.Close(); err != nil {
			log.WithError(err).Error("Error closing NATS connection")
		}
	}
}

func checkSMTP(ctx context.Context, notifier *infrastructure.EmailNotifier) {
	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := notifier.CheckConnection(checkCtx); err != nil {
		log.WithError(err).Warn("SMTP server not reachable, confirmation emails may fail")
		return
	}
	log.Info("SMTP server is ready to send messages")
}

func logTicketCreated(_ context.Context, event events.Event) {
	created, ok := event.(events.TicketCreatedEvent)
	if !ok {
		return
	}
	log.WithFields(log.Fields{
		"ticketID":    created.TicketID,
		"paymentID":   created.PaymentID,
		"ticketCount": created.TicketCount,
		"amount":      created.Amount.Decimal(),
	}).Info("Ticket awaiting payment")
}

func setupLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
