package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Customer represents a customer account
type Customer struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Email            string         `gorm:"uniqueIndex;not null" json:"email"`
	Password         string         `gorm:"not null" json:"-"` // bcrypt hash
	EmailIsConfirmed bool           `gorm:"not null;default:false" json:"email_is_confirmed"`
	FirstName        string         `gorm:"not null" json:"first_name"`
	LastName         string         `gorm:"not null" json:"last_name"`
	PhoneNumber      string         `json:"phone_number"`
	CartID           *uint          `json:"cart_id"` // at most one unpaid order at a time
	Cart             *Order         `gorm:"foreignKey:CartID" json:"cart,omitempty"`
	Addresses        []Address      `gorm:"foreignKey:CustomerID" json:"addresses,omitempty"`
	CreatedAt        time.Time      `json:"created_on"`
	UpdatedAt        time.Time      `json:"-"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}

// ValidatePassword compares a plaintext password against the stored hash
func (c *Customer) ValidatePassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(c.Password), []byte(password)) == nil
}

// FullName returns the customer's display name
func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

// HashPassword hashes a plaintext password for storage
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
