package repositories

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inxsource/whatsapp-sales-bot/internal/models"
)

type BusinessRepo interface {
	GetByID(id uuid.UUID) (*models.Business, error)
	GetActiveByWhatsAppNumber(number string) (*models.Business, error)
	ListActive() ([]models.Business, error)
	Deactivate(id uuid.UUID) error
}

type businessRepo struct {
	db *gorm.DB
}

func NewBusinessRepo(db *gorm.DB) BusinessRepo {
	return &businessRepo{db: db}
}

func (r *businessRepo) GetByID(id uuid.UUID) (*models.Business, error) {
	var business models.Business
	if err := r.db.First(&business, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

func (r *businessRepo) GetActiveByWhatsAppNumber(number string) (*models.Business, error) {
	var business models.Business
	err := r.db.Where("whatsapp_number = ? AND is_active = ?", number, true).
		First(&business).Error
	if err != nil {
		return nil, err
	}
	return &business, nil
}

func (r *businessRepo) ListActive() ([]models.Business, error) {
	var businesses []models.Business
	err := r.db.Where("is_active = ?", true).
		Order("business_name ASC").
		Find(&businesses).Error
	return businesses, err
}

func (r *businessRepo) Deactivate(id uuid.UUID) error {
	return r.db.Model(&models.Business{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}
