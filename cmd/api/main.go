package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/inxsource/whatsapp-sales-bot/internal/core/commerce"
	"github.com/inxsource/whatsapp-sales-bot/internal/core/intent"
	"github.com/inxsource/whatsapp-sales-bot/internal/core/llm"
	"github.com/inxsource/whatsapp-sales-bot/internal/core/payment"
	"github.com/inxsource/whatsapp-sales-bot/internal/core/session"
	"github.com/inxsource/whatsapp-sales-bot/internal/core/tenant"
	"github.com/inxsource/whatsapp-sales-bot/internal/core/whatsapp"
	"github.com/inxsource/whatsapp-sales-bot/internal/handlers"
	"github.com/inxsource/whatsapp-sales-bot/internal/repositories"
	"github.com/inxsource/whatsapp-sales-bot/internal/services"
	"github.com/inxsource/whatsapp-sales-bot/internal/shared/config"
	"github.com/inxsource/whatsapp-sales-bot/internal/shared/database"
	"github.com/inxsource/whatsapp-sales-bot/internal/shared/utils"
)

func main() {
	utils.InitLogger()

	cfg := config.LoadConfig()
	log.Info().Str("env", cfg.Env).Msg("Starting whatsapp-sales-bot")

	db := database.NewDB(cfg.DatabaseURL)
	defer db.Close()

	// Repositories
	businessRepo := repositories.NewBusinessRepo(db.GORM)
	customerRepo := repositories.NewCustomerRepo(db.GORM)
	productRepo := repositories.NewProductRepo(db.GORM)
	orderRepo := repositories.NewOrderRepo(db.GORM)

	// Session lifecycle
	store := session.NewGormStore(db.GORM)
	manager := session.NewManager(store, cfg.SessionIdleTimeout, cfg.TurnHistoryCapacity)

	// Tenant resolution
	resolver := tenant.NewResolver(businessRepo)

	// AI responder + intent chain
	responder, err := llm.NewResponder(cfg.AITimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to init AI responder")
	}
	log.Info().Str("provider", responder.GetProviderName()).Msg("AI responder ready")

	classifier := intent.NewChain(
		intent.NewRuleClassifier(),
		intent.NewAIClassifier(responder),
	)

	// Commerce
	gateway, err := payment.NewGateway(cfg.PaymentGateway, db.GORM)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to init payment gateway")
	}
	commerceService := commerce.NewGormService(productRepo, orderRepo, gateway)

	// WhatsApp transport
	waCfg, err := whatsapp.LoadProviderFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load WhatsApp provider config")
	}
	waGateway, err := whatsapp.NewGateway(waCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create WhatsApp gateway")
	}
	if err := waGateway.Connect(); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect WhatsApp gateway")
	}
	defer waGateway.Disconnect()
	log.Info().Str("provider", waGateway.GetProviderName()).Msg("WhatsApp gateway connected")

	// Conversation router
	router := services.NewRouter(
		resolver,
		businessRepo,
		customerRepo,
		manager,
		classifier,
		responder,
		commerceService,
		waGateway,
		cfg.AIFallbackReply,
	)

	// Provider-push inbound path (whatsmeow events, Green API polling)
	err = waGateway.StartListening(func(msg whatsapp.InboundMessage) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		if err := router.HandleMessage(ctx, msg); err != nil {
			log.Error().Err(err).Str("from", msg.From).Msg("message handling failed")
		}
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start WhatsApp listener")
	}

	// Idle session sweep
	scheduler := cron.New()
	_, err = scheduler.AddFunc("@every "+cfg.SweepInterval.String(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		expired, err := manager.ExpireIdle(ctx, time.Now())
		if err != nil {
			log.Error().Err(err).Msg("idle sweep failed")
			return
		}
		if expired > 0 {
			log.Info().Int("expired", expired).Msg("idle sessions expired")
		}
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule idle sweep")
	}
	scheduler.Start()
	defer scheduler.Stop()

	// HTTP surface: webhook-push providers plus health
	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	webhookHandler := handlers.NewWebhookHandler(router)
	healthHandler := handlers.NewHealthHandler(db)

	app.Post("/webhook", webhookHandler.ReceiveTwilioWebhook)
	app.Get("/health", healthHandler.Check)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("🚀 HTTP server listening")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("Shutting down...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Warn().Err(err).Msg("HTTP shutdown error")
	}
	log.Info().Msg("Goodbye 👋")
}
