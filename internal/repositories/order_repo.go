package repositories

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inxsource/whatsapp-sales-bot/internal/models"
)

type OrderRepo interface {
	Create(order *models.Order) error
	GetByID(id uuid.UUID) (*models.Order, error)
	UpdatePaymentStatus(id uuid.UUID, status string) error
}

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) OrderRepo {
	return &orderRepo{db: db}
}

func (r *orderRepo) Create(order *models.Order) error {
	return r.db.Create(order).Error
}

func (r *orderRepo) GetByID(id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) UpdatePaymentStatus(id uuid.UUID, status string) error {
	return r.db.Model(&models.Order{}).
		Where("id = ?", id).
		Update("payment_status", status).Error
}
