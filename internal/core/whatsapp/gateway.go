// internal/core/whatsapp/gateway.go
package whatsapp

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// InboundMessage is the fixed-shape value every provider's webhook or event
// payload is normalized into before it reaches the conversation router.
type InboundMessage struct {
	From      string   // customer transport address
	To        string   // business transport destination
	Body      string   // text content
	MediaRefs []string // optional media URLs
}

// InboundHandler receives normalized inbound messages
type InboundHandler func(msg InboundMessage)

// DeliveryResult reports the outcome of one outbound send
type DeliveryResult struct {
	Success           bool   `json:"success"`
	ProviderErrorCode string `json:"provider_error_code,omitempty"`
}

// Gateway is the outbound messaging boundary. One implementation per
// transport provider.
type Gateway interface {
	// Connect initializes the transport connection
	Connect() error

	// Disconnect tears the connection down
	Disconnect()

	// Send delivers one text reply from the business number to the customer
	Send(ctx context.Context, to, from, body string) (*DeliveryResult, error)

	// StartListening subscribes to inbound messages, normalized per provider
	StartListening(handler InboundHandler) error

	// GetProviderName return nama provider untuk logging
	GetProviderName() string
}

// ProviderType untuk factory
type ProviderType string

const (
	ProviderWhatsmeow ProviderType = "whatsmeow"
	ProviderGreenAPI  ProviderType = "greenapi"
)

// ProviderConfig konfigurasi untuk provider
type ProviderConfig struct {
	Type ProviderType

	// Whatsmeow
	StoreURL string

	// Green API
	GreenAPIInstanceID string
	GreenAPIToken      string
	GreenAPIURL        string
	GreenAPINumber     string
}

// NewGateway factory untuk create provider berdasarkan config
func NewGateway(cfg *ProviderConfig) (Gateway, error) {
	switch cfg.Type {
	case ProviderWhatsmeow:
		return NewWhatsmeowGateway(cfg.StoreURL), nil

	case ProviderGreenAPI:
		if cfg.GreenAPIInstanceID == "" || cfg.GreenAPIToken == "" {
			return nil, fmt.Errorf("GREEN_API_INSTANCE_ID and GREEN_API_TOKEN are required")
		}
		return NewGreenAPIGateway(cfg.GreenAPIInstanceID, cfg.GreenAPIToken, cfg.GreenAPIURL, cfg.GreenAPINumber), nil

	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}
}

// LoadProviderFromEnv load config dari environment variables
func LoadProviderFromEnv() (*ProviderConfig, error) {
	providerType := os.Getenv("WHATSAPP_PROVIDER")
	if providerType == "" {
		providerType = "whatsmeow" // default
	}

	cfg := &ProviderConfig{
		Type:     ProviderType(providerType),
		StoreURL: os.Getenv("WHATSAPP_STORE_URL"),

		GreenAPIInstanceID: os.Getenv("GREEN_API_INSTANCE_ID"),
		GreenAPIToken:      os.Getenv("GREEN_API_TOKEN"),
		GreenAPIURL:        os.Getenv("GREEN_API_URL"),
		GreenAPINumber:     os.Getenv("GREEN_API_NUMBER"),
	}

	if cfg.GreenAPIURL == "" {
		cfg.GreenAPIURL = "https://api.green-api.com"
	}

	return cfg, nil
}

// chatID formats a phone number the way WhatsApp chat APIs expect:
// 260971234567@c.us
func chatID(phoneNumber string) string {
	number := strings.TrimPrefix(strings.TrimSpace(phoneNumber), "+")
	if i := strings.IndexByte(number, '@'); i >= 0 {
		return number
	}
	return number + "@c.us"
}
