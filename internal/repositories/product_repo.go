package repositories

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inxsource/whatsapp-sales-bot/internal/models"
)

type ProductRepo interface {
	GetByID(id uuid.UUID) (*models.Product, error)
	Search(businessID uuid.UUID, query string, limit int) ([]models.Product, error)
	ListActive(businessID uuid.UUID, limit int) ([]models.Product, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepo {
	return &productRepo{db: db}
}

func (r *productRepo) GetByID(id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) Search(businessID uuid.UUID, query string, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = 5
	}

	var products []models.Product
	err := r.db.Where("business_id = ? AND is_active = ?", businessID, true).
		Where("name ILIKE ? OR category ILIKE ?", "%"+query+"%", "%"+query+"%").
		Order("name ASC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

func (r *productRepo) ListActive(businessID uuid.UUID, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = 5
	}

	var products []models.Product
	err := r.db.Where("business_id = ? AND is_active = ?", businessID, true).
		Order("name ASC").
		Limit(limit).
		Find(&products).Error
	return products, err
}
