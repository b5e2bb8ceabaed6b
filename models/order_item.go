package models

import (
	"time"
)

// OrderItem is a snapshot of a menu item at the moment the order was placed.
// Name and price are copied from the cart and never touched again, so catalog
// edits cannot alter historical orders.
type OrderItem struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	OrderID uint `gorm:"not null;index" json:"order_id"`
	// Omitting Order field from JSON to avoid recursive nesting
	Order      Order   `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	MenuItemID uint    `gorm:"not null" json:"menu_item_id"`
	ItemName   string  `gorm:"type:varchar(100);not null" json:"item_name"`
	ItemPrice  float64 `gorm:"type:decimal(10,2);not null" json:"item_price"`
	Quantity   int     `gorm:"not null" json:"quantity"`
	Subtotal   float64 `gorm:"type:decimal(10,2);not null" json:"subtotal"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
