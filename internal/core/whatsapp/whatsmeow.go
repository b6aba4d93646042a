// internal/core/whatsapp/whatsmeow.go
package whatsapp

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
	qrcode "github.com/skip2/go-qrcode"
	"go.mau.fi/whatsmeow"
	waProto "go.mau.fi/whatsmeow/binary/proto"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"
	_ "modernc.org/sqlite"
)

// WhatsmeowGateway drives a directly paired WhatsApp account. The device
// store lives in Postgres when a store URL is configured, otherwise in a
// local SQLite file.
type WhatsmeowGateway struct {
	client   *whatsmeow.Client
	storeURL string
}

func NewWhatsmeowGateway(storeURL string) *WhatsmeowGateway {
	return &WhatsmeowGateway{storeURL: storeURL}
}

func (w *WhatsmeowGateway) GetProviderName() string {
	return "Whatsmeow"
}

func (w *WhatsmeowGateway) initStore() (*sqlstore.Container, error) {
	ctx := context.Background()
	dbLog := waLog.Stdout("Database", "ERROR", true)

	if w.storeURL != "" {
		log.Info().Msg("Using PostgreSQL database for WhatsApp store")
		container, err := sqlstore.New(ctx, "postgres", w.storeURL, dbLog)
		if err != nil {
			return nil, fmt.Errorf("failed to init PostgreSQL store: %w", err)
		}
		if err := container.Upgrade(ctx); err != nil {
			return nil, fmt.Errorf("failed to upgrade PostgreSQL schema: %w", err)
		}
		return container, nil
	}

	log.Info().Msg("Using local SQLite store (store.db)")
	rawDB, err := sql.Open("sqlite", "file:store.db?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	if _, err = rawDB.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		log.Warn().Err(err).Msg("failed to enable foreign_keys pragma")
	}

	container := sqlstore.NewWithDB(rawDB, "sqlite", dbLog)
	if err := container.Upgrade(ctx); err != nil {
		return nil, fmt.Errorf("failed to upgrade SQLite schema: %w", err)
	}
	return container, nil
}

func (w *WhatsmeowGateway) Connect() error {
	container, err := w.initStore()
	if err != nil {
		return fmt.Errorf("failed to init store: %w", err)
	}

	deviceStore, err := container.GetFirstDevice(context.Background())
	if err != nil {
		return fmt.Errorf("failed to get device: %w", err)
	}

	clientLog := waLog.Stdout("Client", "INFO", true)
	w.client = whatsmeow.NewClient(deviceStore, clientLog)

	if w.client.Store.ID == nil {
		// First pairing: show a QR code and wait for the scan
		qrChan, _ := w.client.GetQRChannel(context.Background())
		if err := w.client.Connect(); err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}

		for evt := range qrChan {
			switch evt.Event {
			case "code":
				log.Info().Msg("Scan this QR code in WhatsApp to pair")
				if err := qrcode.WriteFile(evt.Code, qrcode.Medium, 256, "whatsapp-qr.png"); err != nil {
					log.Warn().Err(err).Msg("failed to write QR image")
				} else {
					log.Info().Msg("QR code saved to whatsapp-qr.png")
				}
			case "success":
				log.Info().Msg("WhatsApp pairing successful")
				return nil
			case "timeout":
				return fmt.Errorf("QR code timeout")
			}
		}
		return nil
	}

	if err := w.client.Connect(); err != nil {
		return fmt.Errorf("failed to reconnect: %w", err)
	}
	log.Info().Msg("Reconnected to WhatsApp")
	return nil
}

func (w *WhatsmeowGateway) Disconnect() {
	if w.client != nil {
		w.client.Disconnect()
		log.Info().Msg("Whatsmeow client disconnected")
	}
}

func (w *WhatsmeowGateway) Send(ctx context.Context, to, from, body string) (*DeliveryResult, error) {
	if w.client == nil {
		return nil, fmt.Errorf("client not initialized")
	}

	jid := types.NewJID(to, "s.whatsapp.net")
	msg := &waProto.Message{
		Conversation: proto.String(body),
	}

	if _, err := w.client.SendMessage(ctx, jid, msg); err != nil {
		return &DeliveryResult{
			Success:           false,
			ProviderErrorCode: err.Error(),
		}, fmt.Errorf("whatsmeow send failed: %w", err)
	}
	return &DeliveryResult{Success: true}, nil
}

// StartListening normalizes text message events into InboundMessage values.
// The destination is the paired account's own number, which is what the
// tenant resolver keys on.
func (w *WhatsmeowGateway) StartListening(handler InboundHandler) error {
	if w.client == nil {
		return fmt.Errorf("client not initialized")
	}

	w.client.AddEventHandler(func(evt interface{}) {
		msg, ok := evt.(*events.Message)
		if !ok || msg.Info.IsFromMe {
			return
		}

		body := msg.Message.GetConversation()
		if body == "" {
			return
		}

		ownNumber := ""
		if w.client.Store.ID != nil {
			ownNumber = w.client.Store.ID.User
		}

		handler(InboundMessage{
			From: msg.Info.Sender.User,
			To:   ownNumber,
			Body: body,
		})
	})
	return nil
}
