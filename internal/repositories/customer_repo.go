package repositories

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inxsource/whatsapp-sales-bot/internal/models"
)

type CustomerRepo interface {
	GetByID(id uuid.UUID) (*models.Customer, error)
	GetOrCreate(businessID uuid.UUID, phone string) (*models.Customer, error)
}

type customerRepo struct {
	db *gorm.DB
}

func NewCustomerRepo(db *gorm.DB) CustomerRepo {
	return &customerRepo{db: db}
}

func (r *customerRepo) GetByID(id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.First(&customer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// GetOrCreate looks up the customer by (business, phone) and creates the row
// on first contact. The unique index on (business_id, phone) keeps concurrent
// first messages from creating duplicates; on conflict we re-read.
func (r *customerRepo) GetOrCreate(businessID uuid.UUID, phone string) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.Where("business_id = ? AND phone = ?", businessID, phone).
		First(&customer).Error
	if err == nil {
		return &customer, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	customer = models.Customer{
		BusinessID: businessID,
		Phone:      phone,
	}
	if err := r.db.Create(&customer).Error; err != nil {
		// Lost the race to another inbound message, load the winner
		var existing models.Customer
		if lookupErr := r.db.Where("business_id = ? AND phone = ?", businessID, phone).
			First(&existing).Error; lookupErr == nil {
			return &existing, nil
		}
		return nil, err
	}
	return &customer, nil
}
