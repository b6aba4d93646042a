// internal/core/whatsapp/greenapi.go
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// GreenAPIGateway sends and receives through the Green API HTTP service.
// Inbound messages arrive by polling receiveNotification.
type GreenAPIGateway struct {
	instanceID string
	token      string
	baseURL    string
	ownNumber  string
	client     *http.Client

	connected   bool
	stopPolling chan struct{}
}

func NewGreenAPIGateway(instanceID, token, baseURL, ownNumber string) *GreenAPIGateway {
	return &GreenAPIGateway{
		instanceID: instanceID,
		token:      token,
		baseURL:    baseURL,
		ownNumber:  ownNumber,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		stopPolling: make(chan struct{}),
	}
}

func (g *GreenAPIGateway) GetProviderName() string {
	return "GreenAPI"
}

func (g *GreenAPIGateway) Connect() error {
	endpoint := fmt.Sprintf("%s/waInstance%s/getStateInstance/%s", g.baseURL, g.instanceID, g.token)

	resp, err := g.client.Get(endpoint)
	if err != nil {
		return fmt.Errorf("failed to connect to Green API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("Green API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		StateInstance string `json:"stateInstance"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result.StateInstance != "authorized" {
		log.Warn().Str("state", result.StateInstance).Msg("Green API instance not authorized, scan QR via dashboard")
	} else {
		log.Info().Msg("Green API instance authorized")
	}

	g.connected = true
	return nil
}

func (g *GreenAPIGateway) Disconnect() {
	g.connected = false
	close(g.stopPolling)
	log.Info().Msg("Green API gateway disconnected")
}

func (g *GreenAPIGateway) Send(ctx context.Context, to, from, body string) (*DeliveryResult, error) {
	endpoint := fmt.Sprintf("%s/waInstance%s/sendMessage/%s", g.baseURL, g.instanceID, g.token)

	payload := map[string]interface{}{
		"chatId":  chatID(to),
		"message": body,
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return &DeliveryResult{
			Success:           false,
			ProviderErrorCode: strconv.Itoa(resp.StatusCode),
		}, fmt.Errorf("Green API send returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return &DeliveryResult{Success: true}, nil
}

// StartListening polls receiveNotification in a background goroutine and
// normalizes text notifications into InboundMessage values.
func (g *GreenAPIGateway) StartListening(handler InboundHandler) error {
	if !g.connected {
		return fmt.Errorf("gateway not connected")
	}

	go func() {
		for {
			select {
			case <-g.stopPolling:
				return
			default:
			}

			notification, err := g.receiveNotification()
			if err != nil {
				log.Warn().Err(err).Msg("Green API polling error")
				time.Sleep(5 * time.Second)
				continue
			}
			if notification == nil {
				continue
			}

			if msg, ok := g.normalize(notification); ok {
				handler(msg)
			}
			g.deleteNotification(notification.ReceiptID)
		}
	}()

	return nil
}

type greenNotification struct {
	ReceiptID int `json:"receiptId"`
	Body      struct {
		TypeWebhook string `json:"typeWebhook"`
		SenderData  struct {
			ChatID string `json:"chatId"`
			Sender string `json:"sender"`
		} `json:"senderData"`
		MessageData struct {
			TypeMessage     string `json:"typeMessage"`
			TextMessageData struct {
				TextMessage string `json:"textMessage"`
			} `json:"textMessageData"`
		} `json:"messageData"`
	} `json:"body"`
}

func (g *GreenAPIGateway) receiveNotification() (*greenNotification, error) {
	endpoint := fmt.Sprintf("%s/waInstance%s/receiveNotification/%s", g.baseURL, g.instanceID, g.token)

	resp, err := g.client.Get(endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	// Empty body means no pending notifications
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var notification greenNotification
	if err := json.Unmarshal(raw, &notification); err != nil {
		return nil, fmt.Errorf("failed to decode notification: %w", err)
	}
	return &notification, nil
}

func (g *GreenAPIGateway) normalize(n *greenNotification) (InboundMessage, bool) {
	if n.Body.TypeWebhook != "incomingMessageReceived" {
		return InboundMessage{}, false
	}
	if n.Body.MessageData.TypeMessage != "textMessage" {
		return InboundMessage{}, false
	}

	from := strings.TrimSuffix(n.Body.SenderData.ChatID, "@c.us")
	return InboundMessage{
		From: from,
		To:   g.ownNumber,
		Body: n.Body.MessageData.TextMessageData.TextMessage,
	}, true
}

func (g *GreenAPIGateway) deleteNotification(receiptID int) {
	endpoint := fmt.Sprintf("%s/waInstance%s/deleteNotification/%s/%d", g.baseURL, g.instanceID, g.token, receiptID)

	req, err := http.NewRequest(http.MethodDelete, endpoint, nil)
	if err != nil {
		return
	}
	resp, err := g.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Int("receipt_id", receiptID).Msg("failed to delete notification")
		return
	}
	resp.Body.Close()
}
