package models

import (
	"time"

	"gorm.io/gorm"
)

// DriverRequest is a pending delivery offer sent to one driver for one order.
// Rows are short-lived: they are removed when the request expires, when the
// driver accepts or rejects, or when the order is refunded.
type DriverRequest struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;uniqueIndex:idx_driver_requests_order_driver" json:"order_id"`
	DriverID  uint      `gorm:"not null;uniqueIndex:idx_driver_requests_order_driver" json:"driver_id"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_on"`
}

// TableName specifies the table name for the DriverRequest model
func (DriverRequest) TableName() string {
	return "driver_requests"
}

// RequestedDriverIDs returns the ids of drivers with a pending request for
// the order
func RequestedDriverIDs(db *gorm.DB, orderID uint) ([]uint, error) {
	var ids []uint
	err := db.Model(&DriverRequest{}).
		Where("order_id = ?", orderID).
		Pluck("driver_id", &ids).Error
	return ids, err
}
