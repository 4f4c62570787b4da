package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"viber_notification_bot/internal/app"
	"viber_notification_bot/internal/infra/config"
	idb "viber_notification_bot/internal/infra/database"
	"viber_notification_bot/internal/infra/logger"
	"viber_notification_bot/internal/infra/scheduler"
	"viber_notification_bot/pkg/viber"
)

func main() {
	fmt.Println("Viber Notification Bot starting...")

	mainLogger := log.New(os.Stdout, "MAIN: ", log.LstdFlags|log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		mainLogger.Fatalf("FATAL: Could not load application configuration: %v", err)
	}
	logger.Init(cfg)

	mainLogger.Printf("INFO: Configuration loaded. LogLevel: %s, Environment: %s, Bot: %s", cfg.LogLevel, cfg.Environment, cfg.BotName)

	// Initialize Database Connection
	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		mainLogger.Fatalf("FATAL: Could not connect to database: %v", err)
	}
	defer db.Close()
	mainLogger.Println("INFO: Database connection established successfully.")

	// Initialize Repositories
	subscriberRepo := idb.NewPostgresSubscriberRepository(db)
	mainLogger.Println("INFO: Subscriber repository initialized.")
	digestRepo := idb.NewPostgresDigestRepository(db)
	mainLogger.Println("INFO: Digest repository initialized.")

	// Initialize SubscriberService
	subscriberService := app.NewSubscriberService(subscriberRepo, cfg.AdminViberID)
	mainLogger.Println("INFO: Subscriber service initialized.")

	// One-shot admin commands run against the database and exit, e.g.:
	//   bot add-subscriber <viberID> <name> [avatarURL]
	//   bot remove-subscriber <viberID>
	//   bot list-subscribers
	if len(os.Args) > 1 {
		if err := runAdminCommand(subscriberService, cfg.AdminViberID, os.Args[1:]); err != nil {
			mainLogger.Fatalf("FATAL: Admin command failed: %v", err)
		}
		return
	}

	// Initialize Viber API Client
	viberClient := viber.NewClient(viber.Config{
		BaseURL: cfg.ViberAPIURL,
		Bot: viber.BotProfile{
			Name:      cfg.BotName,
			Avatar:    cfg.BotAvatarURL,
			AuthToken: cfg.ViberAuthToken,
		},
		EventTypes: []string{"delivered", "seen", "failed", "subscribed", "unsubscribed"},
	}, logger.Get())
	mainLogger.Println("INFO: Viber API client initialized.")

	// Register webhook so the platform delivers events for this bot. Event
	// handling itself is done by a separate receiver, not this process.
	if cfg.WebhookURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if _, err := viberClient.SetWebhook(ctx, cfg.WebhookURL, false); err != nil {
			mainLogger.Fatalf("FATAL: Could not register Viber webhook: %v", err)
		}
		cancel()
		mainLogger.Printf("INFO: Viber webhook registered at %s.", cfg.WebhookURL)
	} else {
		mainLogger.Println("INFO: WEBHOOK_URL not set. Skipping webhook registration.")
	}

	// Initialize DigestService
	digestServiceLogger := log.New(os.Stdout, "DIGEST_SVC: ", log.LstdFlags|log.Lshortfile)
	digestService := app.NewDigestServiceImpl(subscriberRepo, digestRepo, viberClient, digestServiceLogger, cfg.DigestText)
	mainLogger.Println("INFO: Digest service initialized.")

	// Initialize DigestScheduler
	schedulerLogger := log.New(os.Stdout, "SCHEDULER: ", log.LstdFlags|log.Lshortfile)
	digestScheduler := scheduler.NewDigestScheduler(digestService, schedulerLogger, cfg.CronSpecDigest)
	digestScheduler.Start() // Start the cron jobs

	mainLogger.Println("INFO: Application setup complete. Scheduler is running...")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit // Block until a signal is received

	mainLogger.Println("INFO: Shutting down application...")
	digestScheduler.Stop()
	// db.Close() is handled by defer
	mainLogger.Println("INFO: Application shut down gracefully.")
}

func runAdminCommand(svc *app.SubscriberService, adminViberID string, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch args[0] {
	case "add-subscriber":
		if len(args) < 3 {
			return fmt.Errorf("usage: add-subscriber <viberID> <name> [avatarURL]")
		}
		avatarURL := ""
		if len(args) > 3 {
			avatarURL = args[3]
		}
		sub, err := svc.AddSubscriber(ctx, adminViberID, args[1], args[2], avatarURL)
		if err != nil {
			return err
		}
		fmt.Printf("Subscriber %s (%s) added with ID %d.\n", sub.Name, sub.ViberID, sub.ID)
		return nil
	case "remove-subscriber":
		if len(args) < 2 {
			return fmt.Errorf("usage: remove-subscriber <viberID>")
		}
		sub, err := svc.RemoveSubscriber(ctx, adminViberID, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Subscriber %s (%s) deactivated.\n", sub.Name, sub.ViberID)
		return nil
	case "list-subscribers":
		subscribers, err := svc.ListSubscribers(ctx, adminViberID)
		if err != nil {
			return err
		}
		for _, sub := range subscribers {
			state := "inactive"
			if sub.IsActive {
				state = "active"
			}
			fmt.Printf("%d\t%s\t%s\t%s\n", sub.ID, sub.ViberID, sub.Name, state)
		}
		return nil
	default:
		return fmt.Errorf("unknown command: %s", args[0])
	}
}
