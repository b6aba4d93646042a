package commerce

import (
	"context"

	"github.com/google/uuid"
)

// PaymentState is the router-facing payment status. The gateway's richer
// status set collapses to these three: the conversation only needs to know
// whether to close the order, retry it, or keep waiting.
type PaymentState string

const (
	PaymentPending PaymentState = "pending"
	PaymentPaid    PaymentState = "paid"
	PaymentFailed  PaymentState = "failed"
)

// ProductSummary is a catalog entry trimmed for conversation use
type ProductSummary struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Category string    `json:"category,omitempty"`
	Price    float64   `json:"price"`
	InStock  bool      `json:"in_stock"`
}

// ItemRequest identifies a product by the name the customer typed
type ItemRequest struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// OrderRef is the opaque reference the session keeps for an active order.
// Line-item detail stays inside the commerce service.
type OrderRef struct {
	ID           uuid.UUID `json:"id"`
	OrderNumber  string    `json:"order_number"`
	TotalAmount  float64   `json:"total_amount"`
	PaymentLink  string    `json:"payment_link,omitempty"`
	Instructions string    `json:"instructions,omitempty"`
}

// Service is the commerce collaborator consumed by the conversation router:
// product lookup, order creation, payment status.
type Service interface {
	LookupProducts(ctx context.Context, businessID uuid.UUID, query string) ([]ProductSummary, error)
	CreateOrder(ctx context.Context, businessID, customerID uuid.UUID, items []ItemRequest) (*OrderRef, error)
	GetPaymentStatus(ctx context.Context, orderID uuid.UUID) (PaymentState, error)
}
