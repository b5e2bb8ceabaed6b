package models

import (
	"time"
)

type Branch struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	RestaurantName string  `gorm:"type:varchar(100);not null" json:"restaurant_name"`
	Area           string  `gorm:"type:varchar(100)" json:"area,omitempty"`
	Lat            float64 `json:"lat"`
	Lng            float64 `json:"lng"`

	DeliveryBaseFee  float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"delivery_base_fee"`
	DeliveryFeePerKm float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"delivery_fee_per_km"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
