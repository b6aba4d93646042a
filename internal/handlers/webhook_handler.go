package handlers

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	zlog "github.com/rs/zerolog/log"

	"github.com/inxsource/whatsapp-sales-bot/internal/core/whatsapp"
	"github.com/inxsource/whatsapp-sales-bot/internal/services"
)

// WebhookHandler receives provider webhook callbacks and hands normalized
// messages to the conversation router.
type WebhookHandler struct {
	router *services.Router
}

func NewWebhookHandler(router *services.Router) *WebhookHandler {
	return &WebhookHandler{router: router}
}

// ReceiveTwilioWebhook handles POST /webhook with Twilio's form encoding:
// From, To, Body plus NumMedia/MediaUrlN. The webhook is acked immediately
// with empty TwiML; the reply goes out through the gateway, not the response.
func (h *WebhookHandler) ReceiveTwilioWebhook(c *fiber.Ctx) error {
	from := c.FormValue("From")
	to := c.FormValue("To")
	body := c.FormValue("Body")

	if from == "" || to == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "From and To are required",
		})
	}

	var mediaRefs []string
	if numMedia, err := strconv.Atoi(c.FormValue("NumMedia")); err == nil {
		for i := 0; i < numMedia; i++ {
			if url := c.FormValue(fmt.Sprintf("MediaUrl%d", i)); url != "" {
				mediaRefs = append(mediaRefs, url)
			}
		}
	}

	msg := whatsapp.InboundMessage{
		From:      from,
		To:        to,
		Body:      body,
		MediaRefs: mediaRefs,
	}

	log.Printf("📨 Webhook received - From: %s, To: %s, Media: %d", from, to, len(mediaRefs))

	// Process off the webhook request cycle so the provider never times out
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		if err := h.router.HandleMessage(ctx, msg); err != nil {
			zlog.Error().Err(err).
				Str("from", from).
				Str("to", to).
				Msg("message handling failed")
		}
	}()

	c.Set("Content-Type", "text/xml")
	return c.SendString("<Response></Response>")
}
