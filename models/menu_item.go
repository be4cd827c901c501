package models

import (
	"time"

	"gorm.io/gorm"
)

// MenuItem represents an item on a vendor's menu
type MenuItem struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	VendorID      uint           `gorm:"not null;index" json:"vendor_id"`
	Name          string         `gorm:"not null" json:"name"`
	Description   string         `json:"description"`
	Price         float64        `gorm:"not null" json:"price"`
	ImageS3Key    *string        `json:"image_s3_key"`
	ImageURL      *string        `gorm:"-" json:"image_url,omitempty"` // computed, presigned
	Modifications []Modification `gorm:"many2many:menu_item_modifications" json:"modifications,omitempty"`
	CreatedAt     time.Time      `json:"created_on"`
	UpdatedAt     time.Time      `json:"modified_on"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the MenuItem model
func (MenuItem) TableName() string {
	return "menu_items"
}
