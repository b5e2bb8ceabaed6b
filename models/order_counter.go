package models

// OrderCounter backs order number generation: one row per day, incremented
// under a transaction so numbers are unique and never reused.
type OrderCounter struct {
	Day     string `gorm:"primaryKey;type:varchar(8)"`
	Counter int    `gorm:"not null;default:0"`
}
