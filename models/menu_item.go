package models

import (
	"time"
)

// MenuItem carries only what the ordering path needs from the catalog; menu
// management itself lives elsewhere. Available is the flag staff toggle and
// the reconciler re-reads right before commit.
type MenuItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BranchID  uint      `gorm:"not null;index" json:"branch_id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Price     float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	Available bool      `gorm:"not null;default:true" json:"available"`
	ImageURL  string    `gorm:"type:text" json:"image_url,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
