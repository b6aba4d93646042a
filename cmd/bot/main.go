package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/inxsource/whatsapp-sales-bot/internal/core/commerce"
	"github.com/inxsource/whatsapp-sales-bot/internal/core/intent"
	"github.com/inxsource/whatsapp-sales-bot/internal/core/llm"
	"github.com/inxsource/whatsapp-sales-bot/internal/core/payment"
	"github.com/inxsource/whatsapp-sales-bot/internal/core/session"
	"github.com/inxsource/whatsapp-sales-bot/internal/core/tenant"
	"github.com/inxsource/whatsapp-sales-bot/internal/core/whatsapp"
	"github.com/inxsource/whatsapp-sales-bot/internal/repositories"
	"github.com/inxsource/whatsapp-sales-bot/internal/services"
	"github.com/inxsource/whatsapp-sales-bot/internal/shared/config"
	"github.com/inxsource/whatsapp-sales-bot/internal/shared/database"
	"github.com/inxsource/whatsapp-sales-bot/internal/shared/utils"
)

// Headless runtime: the WhatsApp listener plus the idle sweep, no HTTP
// surface. For deployments where inbound messages arrive only through the
// paired client, not a provider webhook.
func main() {
	utils.InitLogger()

	cfg := config.LoadConfig()
	log.Info().Str("env", cfg.Env).Msg("Starting whatsapp-sales-bot (headless)")

	db := database.NewDB(cfg.DatabaseURL)
	defer db.Close()

	businessRepo := repositories.NewBusinessRepo(db.GORM)
	customerRepo := repositories.NewCustomerRepo(db.GORM)
	productRepo := repositories.NewProductRepo(db.GORM)
	orderRepo := repositories.NewOrderRepo(db.GORM)

	store := session.NewGormStore(db.GORM)
	manager := session.NewManager(store, cfg.SessionIdleTimeout, cfg.TurnHistoryCapacity)
	resolver := tenant.NewResolver(businessRepo)

	responder, err := llm.NewResponder(cfg.AITimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to init AI responder")
	}

	classifier := intent.NewChain(
		intent.NewRuleClassifier(),
		intent.NewAIClassifier(responder),
	)

	gateway, err := payment.NewGateway(cfg.PaymentGateway, db.GORM)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to init payment gateway")
	}
	commerceService := commerce.NewGormService(productRepo, orderRepo, gateway)

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
	log.Info().Str("provider", waGateway.GetProviderName()).Msg("Listening for messages")

	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@every "+cfg.SweepInterval.String(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if expired, err := manager.ExpireIdle(ctx, time.Now()); err != nil {
			log.Error().Err(err).Msg("idle sweep failed")
		} else if expired > 0 {
			log.Info().Int("expired", expired).Msg("idle sessions expired")
		}
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule idle sweep")
	}
	scheduler.Start()
	defer scheduler.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("Shutting down...")
	log.Info().Msg("Goodbye 👋")
}
