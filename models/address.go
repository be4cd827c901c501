package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Address is a saved delivery or business address
type Address struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	CustomerID *uint          `gorm:"index" json:"customer_id"` // null for vendor addresses
	Street     string         `gorm:"not null" json:"street"`
	Unit       string         `json:"unit"`
	City       string         `gorm:"not null" json:"city"`
	State      string         `gorm:"not null" json:"state"`
	Zip        string         `gorm:"not null" json:"zip"`
	Latitude   float64        `json:"latitude"`
	Longitude  float64        `json:"longitude"`
	Note       string         `json:"note"`
	CreatedAt  time.Time      `json:"created_on"`
	UpdatedAt  time.Time      `json:"modified_on"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Address model
func (Address) TableName() string {
	return "addresses"
}

// String renders the address on one line for notifications
func (a *Address) String() string {
	if a == nil {
		return ""
	}
	line := a.Street
	if a.Unit != "" {
		line += " #" + a.Unit
	}
	return fmt.Sprintf("%s, %s, %s %s", line, a.City, a.State, a.Zip)
}
