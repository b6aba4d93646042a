package commerce

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/inxsource/whatsapp-sales-bot/internal/core/payment"
	"github.com/inxsource/whatsapp-sales-bot/internal/models"
	"github.com/inxsource/whatsapp-sales-bot/internal/repositories"
)

// ErrProductNotFound means no catalog entry matched the requested name
var ErrProductNotFound = errors.New("product not found in catalog")

// GormService is the database-backed commerce service
type GormService struct {
	products repositories.ProductRepo
	orders   repositories.OrderRepo
	gateway  payment.Gateway
}

func NewGormService(products repositories.ProductRepo, orders repositories.OrderRepo, gateway payment.Gateway) *GormService {
	return &GormService{
		products: products,
		orders:   orders,
		gateway:  gateway,
	}
}

func (s *GormService) LookupProducts(ctx context.Context, businessID uuid.UUID, query string) ([]ProductSummary, error) {
	var (
		products []models.Product
		err      error
	)
	if query == "" {
		products, err = s.products.ListActive(businessID, 5)
	} else {
		products, err = s.products.Search(businessID, query, 5)
	}
	if err != nil {
		return nil, fmt.Errorf("product lookup failed: %w", err)
	}

	summaries := make([]ProductSummary, len(products))
	for i, p := range products {
		summaries[i] = ProductSummary{
			ID:       p.ID,
			Name:     p.Name,
			Category: p.Category,
			Price:    p.Price,
			InStock:  p.IsAvailable(),
		}
	}
	return summaries, nil
}

func (s *GormService) CreateOrder(ctx context.Context, businessID, customerID uuid.UUID, items []ItemRequest) (*OrderRef, error) {
	if len(items) == 0 {
		return nil, errors.New("cannot create an empty order")
	}

	orderItems := make(models.OrderItems, 0, len(items))
	for _, req := range items {
		quantity := req.Quantity
		if quantity <= 0 {
			quantity = 1
		}

		matches, err := s.products.Search(businessID, req.Name, 1)
		if err != nil {
			return nil, fmt.Errorf("product lookup failed: %w", err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, req.Name)
		}

		product := matches[0]
		orderItems = append(orderItems, models.OrderItem{
			ProductID:   product.ID.String(),
			ProductName: product.Name,
			Quantity:    quantity,
			Price:       product.Price,
			Subtotal:    product.Price * float64(quantity),
		})
	}

	order := &models.Order{
		BusinessID:    businessID,
		CustomerID:    customerID,
		Items:         orderItems,
		PaymentStatus: payment.StatusPending,
	}
	order.CalculateTotal()

	if err := s.orders.Create(order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	result, err := s.gateway.Process(order)
	if err != nil {
		// Order row exists but payment initiation failed; the customer will
		// be told the status is pending and can retry.
		return nil, fmt.Errorf("payment initiation failed for order %s: %w", order.OrderNumber, err)
	}

	log.Info().
		Str("order_number", order.OrderNumber).
		Str("gateway", s.gateway.Name()).
		Float64("total", order.TotalAmount).
		Msg("order created")

	return &OrderRef{
		ID:           order.ID,
		OrderNumber:  order.OrderNumber,
		TotalAmount:  order.TotalAmount,
		PaymentLink:  result.PaymentLink,
		Instructions: result.Instructions,
	}, nil
}

func (s *GormService) GetPaymentStatus(ctx context.Context, orderID uuid.UUID) (PaymentState, error) {
	status, err := s.gateway.GetStatus(orderID)
	if err != nil {
		return PaymentPending, fmt.Errorf("payment status lookup failed: %w", err)
	}

	switch status.Status {
	case payment.StatusPaid:
		return PaymentPaid, nil
	case payment.StatusFailed, payment.StatusCancelled, payment.StatusExpired:
		return PaymentFailed, nil
	default:
		return PaymentPending, nil
	}
}
