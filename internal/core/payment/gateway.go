package payment

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inxsource/whatsapp-sales-bot/internal/models"
)

// Gateway defines the interface for payment processing.
// This allows us to swap between manual and automated payment methods.
type Gateway interface {
	// Process initiates payment for an order.
	// For manual: records the order for admin confirmation.
	// For automated: generates a payment link.
	Process(order *models.Order) (*ProcessResult, error)

	// GetStatus retrieves current payment status
	GetStatus(orderID uuid.UUID) (*Status, error)

	// Cancel cancels a pending payment
	Cancel(orderID uuid.UUID) error

	// Name returns the gateway provider name
	Name() string
}

// ProcessResult contains the result of payment processing
type ProcessResult struct {
	Success      bool       `json:"success"`
	PaymentLink  string     `json:"payment_link,omitempty"`
	Message      string     `json:"message"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	Instructions string     `json:"instructions,omitempty"`
}

// Status represents the current status of a payment
type Status struct {
	OrderID     uuid.UUID  `json:"order_id"`
	Status      string     `json:"status"` // pending, paid, failed, cancelled, expired
	PaidAt      *time.Time `json:"paid_at,omitempty"`
	PaymentLink string     `json:"payment_link,omitempty"`
	Method      string     `json:"method,omitempty"`
}

// Payment status constants
const (
	StatusPending   = "pending"
	StatusPaid      = "paid"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
	StatusExpired   = "expired"
)

// NewGateway creates the gateway selected by configuration.
func NewGateway(kind string, db *gorm.DB) (Gateway, error) {
	switch kind {
	case "", "manual":
		return NewManualGateway(db), nil
	default:
		return nil, fmt.Errorf("unknown payment gateway: %s", kind)
	}
}
