package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderItem is a single line inside an order
type OrderItem struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	Subtotal    float64 `json:"subtotal"`
}

// OrderItems is a custom type for JSONB array
type OrderItems []OrderItem

// Scan implements sql.Scanner interface
func (o *OrderItems) Scan(value interface{}) error {
	if value == nil {
		*o = []OrderItem{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, o)
}

// Value implements driver.Valuer interface
func (o OrderItems) Value() (driver.Value, error) {
	if o == nil {
		return json.Marshal([]OrderItem{})
	}
	return json.Marshal(o)
}

// Order represents a purchase created from a conversation. The session only
// keeps the order ID; line items live here.
type Order struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	BusinessID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"business_id"`
	CustomerID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"customer_id"`
	OrderNumber string     `gorm:"type:text;uniqueIndex" json:"order_number"`
	Items       OrderItems `gorm:"type:jsonb;not null" json:"items"`
	TotalAmount float64    `gorm:"type:decimal(12,2);default:0" json:"total_amount"`

	PaymentStatus string `gorm:"type:text;default:'pending';check:payment_status IN ('pending', 'paid', 'failed', 'cancelled', 'expired')" json:"payment_status"`
	PaymentLink   string `gorm:"type:text" json:"payment_link,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name
func (Order) TableName() string {
	return "orders"
}

// BeforeCreate sets UUID and order number before creating
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.OrderNumber == "" {
		o.OrderNumber = fmt.Sprintf("ORD-%s-%s", time.Now().Format("20060102"), o.ID.String()[:8])
	}
	return nil
}

// CalculateTotal recalculates the total amount based on items
func (o *Order) CalculateTotal() {
	total := 0.0
	for _, item := range o.Items {
		total += item.Subtotal
	}
	o.TotalAmount = total
}
