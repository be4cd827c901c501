package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DriverStatus is whether the driver is taking delivery requests
type DriverStatus string

const (
	DriverActive   DriverStatus = "ACTIVE"
	DriverInactive DriverStatus = "INACTIVE"
)

// Driver represents a delivery driver account
type Driver struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Email            string         `gorm:"uniqueIndex;not null" json:"email"`
	Password         string         `gorm:"not null" json:"-"` // bcrypt hash
	EmailIsConfirmed bool           `gorm:"not null;default:false" json:"email_is_confirmed"`
	FirstName        string         `json:"first_name"`
	LastName         string         `json:"last_name"`
	PhoneNumber      string         `json:"phone_number"`
	Status           DriverStatus   `gorm:"not null;default:'INACTIVE'" json:"status"`
	Latitude         float64        `json:"latitude"`
	Longitude        float64        `json:"longitude"`
	DeviceTokens     []string       `gorm:"serializer:json" json:"device_tokens"`
	CreatedAt        time.Time      `json:"created_on"`
	UpdatedAt        time.Time      `json:"-"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Driver model
func (Driver) TableName() string {
	return "drivers"
}

// ValidatePassword compares a plaintext password against the stored hash
func (d *Driver) ValidatePassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(d.Password), []byte(password)) == nil
}

// FullName returns the driver's display name
func (d *Driver) FullName() string {
	return d.FirstName + " " + d.LastName
}
