package models

import (
	"time"
)

type DeliveryMethod string

const (
	DeliveryMethodDelivery DeliveryMethod = "delivery"
	DeliveryMethodPickup   DeliveryMethod = "pickup"
)

type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "cash"
	PaymentMethodCard PaymentMethod = "card"
)

type Order struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	OrderNumber string `gorm:"type:varchar(32);not null;uniqueIndex" json:"order_number"`
	BranchID    uint   `gorm:"not null;index" json:"branch_id"`
	// Snapshot of the restaurant display name at creation time, so later
	// renames never rewrite historical orders.
	RestaurantName string `gorm:"type:varchar(100);not null" json:"restaurant_name"`

	CustomerName  string `gorm:"type:varchar(100);not null" json:"customer_name"`
	CustomerPhone string `gorm:"type:varchar(20);not null" json:"customer_phone"`

	DeliveryMethod  DeliveryMethod `gorm:"type:varchar(10);not null" json:"delivery_method"`
	DeliveryArea    string         `gorm:"type:varchar(100)" json:"delivery_area,omitempty"`
	DeliveryAddress string         `gorm:"type:text" json:"delivery_address,omitempty"`
	DeliveryNotes   string         `gorm:"type:text" json:"delivery_notes,omitempty"`
	CustomerLat     *float64       `json:"customer_lat,omitempty"`
	CustomerLng     *float64       `json:"customer_lng,omitempty"`

	PaymentMethod PaymentMethod `gorm:"type:varchar(10);not null" json:"payment_method"`

	ItemsTotal    float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"items_total"`
	DeliveryPrice float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"delivery_price"`
	TotalAmount   float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"total_amount"`

	Status    Status    `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	Items         []OrderItem   `gorm:"foreignKey:OrderID" json:"order_items"`
	StatusHistory []StatusEvent `gorm:"foreignKey:OrderID" json:"status_history"`
}
