package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Vendor represents a restaurant account
type Vendor struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Email            string         `gorm:"uniqueIndex;not null" json:"email"`
	Password         string         `gorm:"not null" json:"-"` // bcrypt hash
	EmailIsConfirmed bool           `gorm:"not null;default:false" json:"email_is_confirmed"`
	BusinessName     string         `gorm:"uniqueIndex;not null" json:"business_name"`
	Description      string         `json:"description"`
	PhoneNumber      string         `json:"phone_number"`
	LogoS3Key        *string        `json:"logo_s3_key"`
	LogoURL          *string        `gorm:"-" json:"logo_url,omitempty"` // computed, presigned
	AddressID        *uint          `json:"address_id"`
	Address          *Address       `gorm:"foreignKey:AddressID" json:"address,omitempty"`
	Menu             []MenuItem     `gorm:"foreignKey:VendorID" json:"menu,omitempty"`
	Modifications    []Modification `gorm:"foreignKey:VendorID" json:"modifications,omitempty"`
	CreatedAt        time.Time      `json:"created_on"`
	UpdatedAt        time.Time      `json:"-"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Vendor model
func (Vendor) TableName() string {
	return "vendors"
}

// ValidatePassword compares a plaintext password against the stored hash
func (v *Vendor) ValidatePassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(v.Password), []byte(password)) == nil
}
