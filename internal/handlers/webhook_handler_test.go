package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inxsource/whatsapp-sales-bot/internal/core/commerce"
	"github.com/inxsource/whatsapp-sales-bot/internal/core/intent"
	"github.com/inxsource/whatsapp-sales-bot/internal/core/llm"
	"github.com/inxsource/whatsapp-sales-bot/internal/core/session"
	"github.com/inxsource/whatsapp-sales-bot/internal/core/whatsapp"
	"github.com/inxsource/whatsapp-sales-bot/internal/models"
	"github.com/inxsource/whatsapp-sales-bot/internal/services"
)

type stubResolver struct {
	id uuid.UUID
}

func (s *stubResolver) Resolve(ctx context.Context, destination string) (uuid.UUID, error) {
	return s.id, nil
}

type stubBusinessRepo struct {
	business *models.Business
}

func (s *stubBusinessRepo) GetByID(id uuid.UUID) (*models.Business, error) {
	return s.business, nil
}
func (s *stubBusinessRepo) GetActiveByWhatsAppNumber(number string) (*models.Business, error) {
	return s.business, nil
}
func (s *stubBusinessRepo) ListActive() ([]models.Business, error) { return nil, nil }
func (s *stubBusinessRepo) Deactivate(id uuid.UUID) error          { return nil }

type stubCustomerRepo struct {
	customer *models.Customer
}

func (s *stubCustomerRepo) GetByID(id uuid.UUID) (*models.Customer, error) {
	return s.customer, nil
}
func (s *stubCustomerRepo) GetOrCreate(businessID uuid.UUID, phone string) (*models.Customer, error) {
	return s.customer, nil
}

type stubClassifier struct{}

func (s *stubClassifier) Classify(ctx context.Context, text string, stage session.Stage) intent.Result {
	return intent.Result{Intent: intent.IntentUnknown}
}

type stubResponder struct{}

func (s *stubResponder) GenerateReply(ctx context.Context, profile *llm.BusinessProfile, turns session.Turns, stage session.Stage, catalogSnippet string) (string, error) {
	return "Hello from the bot!", nil
}

type stubCommerce struct{}

func (s *stubCommerce) LookupProducts(ctx context.Context, businessID uuid.UUID, query string) ([]commerce.ProductSummary, error) {
	return nil, nil
}
func (s *stubCommerce) CreateOrder(ctx context.Context, businessID, customerID uuid.UUID, items []commerce.ItemRequest) (*commerce.OrderRef, error) {
	return nil, nil
}
func (s *stubCommerce) GetPaymentStatus(ctx context.Context, orderID uuid.UUID) (commerce.PaymentState, error) {
	return commerce.PaymentPending, nil
}

// channelSender signals the test when the async pipeline delivered the reply
type channelSender struct {
	sent chan string
}

func (c *channelSender) Send(ctx context.Context, to, from, body string) (*whatsapp.DeliveryResult, error) {
	c.sent <- body
	return &whatsapp.DeliveryResult{Success: true}, nil
}

func newTestApp(t *testing.T) (*fiber.App, *channelSender) {
	t.Helper()

	businessID := uuid.New()
	business := &models.Business{ID: businessID, BusinessName: "Test Shop", IsActive: true}
	customer := &models.Customer{ID: uuid.New(), BusinessID: businessID, Phone: "260977111222"}

	sender := &channelSender{sent: make(chan string, 1)}
	manager := session.NewManager(session.NewMemoryStore(), 30*time.Minute, 20)

	router := services.NewRouter(
		&stubResolver{id: businessID},
		&stubBusinessRepo{business: business},
		&stubCustomerRepo{customer: customer},
		manager,
		&stubClassifier{},
		&stubResponder{},
		&stubCommerce{},
		sender,
		"fallback",
	)

	app := fiber.New()
	app.Post("/webhook", NewWebhookHandler(router).ReceiveTwilioWebhook)
	return app, sender
}

func postForm(t *testing.T, app *fiber.App, form url.Values) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestWebhookAcksAndReplies(t *testing.T) {
	app, sender := newTestApp(t)

	form := url.Values{}
	form.Set("From", "whatsapp:+260977111222")
	form.Set("To", "whatsapp:+260970000001")
	form.Set("Body", "hi")

	resp := postForm(t, app, form)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "<Response></Response>", string(body), "webhook acks with empty TwiML")
	assert.Equal(t, "text/xml", resp.Header.Get("Content-Type"))

	// The reply goes out through the gateway, asynchronously
	select {
	case reply := <-sender.sent:
		assert.Equal(t, "Hello from the bot!", reply)
	case <-time.After(5 * time.Second):
		t.Fatal("no reply delivered")
	}
}

func TestWebhookRejectsMissingAddresses(t *testing.T) {
	app, sender := newTestApp(t)

	form := url.Values{}
	form.Set("Body", "hi")

	resp := postForm(t, app, form)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	select {
	case <-sender.sent:
		t.Fatal("malformed webhook must not reach the router")
	case <-time.After(100 * time.Millisecond):
	}
}
