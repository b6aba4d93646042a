package payment

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/inxsource/whatsapp-sales-bot/internal/models"
)

// ManualGateway handles payment through manual admin verification.
// The order's payment_status column is the source of truth; an operator
// flips it to paid once the transfer is confirmed.
type ManualGateway struct {
	db *gorm.DB
}

func NewManualGateway(db *gorm.DB) *ManualGateway {
	return &ManualGateway{db: db}
}

func (g *ManualGateway) Name() string {
	return "manual"
}

// Process leaves the order pending and returns transfer instructions for the
// customer. Nothing to call out to, the admin confirms by hand.
func (g *ManualGateway) Process(order *models.Order) (*ProcessResult, error) {
	log.Info().
		Str("order_number", order.OrderNumber).
		Float64("total", order.TotalAmount).
		Msg("manual payment pending admin confirmation")

	return &ProcessResult{
		Success: true,
		Message: "Your order has been placed. Our team will contact you to arrange payment.",
		Instructions: fmt.Sprintf(
			"Order %s — total K%.2f. Reply 'pay' once you have sent the payment and we will confirm it.",
			order.OrderNumber, order.TotalAmount),
	}, nil
}

func (g *ManualGateway) GetStatus(orderID uuid.UUID) (*Status, error) {
	var order models.Order
	if err := g.db.First(&order, "id = ?", orderID).Error; err != nil {
		return nil, fmt.Errorf("failed to load order %s: %w", orderID, err)
	}

	return &Status{
		OrderID:     order.ID,
		Status:      order.PaymentStatus,
		PaymentLink: order.PaymentLink,
		Method:      "manual",
	}, nil
}

func (g *ManualGateway) Cancel(orderID uuid.UUID) error {
	result := g.db.Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", orderID, StatusPending).
		Update("payment_status", StatusCancelled)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("order %s is not pending, cannot cancel", orderID)
	}
	return nil
}
