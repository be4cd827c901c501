package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderMethod is how the customer receives the order
type OrderMethod string

const (
	MethodPickup   OrderMethod = "PICKUP"
	MethodDelivery OrderMethod = "DELIVERY"
)

// Disposition is the order's lifecycle state. It is the single source of
// truth: the per-actor active/ready/history views are derived by the query
// helpers below, never stored on the actor rows.
type Disposition string

const (
	DispositionNew              Disposition = "NEW"
	DispositionPaid             Disposition = "PAID"
	DispositionAcceptedByVendor Disposition = "ACCEPTED_BY_VENDOR"
	DispositionWaitingForDriver Disposition = "WAITING_FOR_DRIVER"
	DispositionAcceptedByDriver Disposition = "ACCEPTED_BY_DRIVER"
	DispositionReady            Disposition = "READY"
	DispositionEnRoute          Disposition = "EN_ROUTE"
	DispositionDelivered        Disposition = "DELIVERED"
	DispositionCanceled         Disposition = "CANCELED"
)

// IsTerminal reports whether no further transitions are possible
func (d Disposition) IsTerminal() bool {
	return d == DispositionDelivered || d == DispositionCanceled
}

// Dispositions making up each derived order-list view
var (
	ActiveDispositions = []Disposition{
		DispositionPaid,
		DispositionAcceptedByVendor,
		DispositionWaitingForDriver,
		DispositionAcceptedByDriver,
	}
	ReadyDispositions   = []Disposition{DispositionReady, DispositionEnRoute}
	HistoryDispositions = []Disposition{DispositionDelivered, DispositionCanceled}
	RouteDispositions   = []Disposition{
		DispositionAcceptedByDriver,
		DispositionReady,
		DispositionEnRoute,
	}
)

// Order represents a single order from cart through delivery
type Order struct {
	ID                    uint        `gorm:"primaryKey" json:"id"`
	CustomerID            uint        `gorm:"not null;index" json:"customer_id"`
	Customer              *Customer   `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	VendorID              uint        `gorm:"not null;index" json:"vendor_id"`
	Vendor                *Vendor     `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`
	DriverID              *uint       `gorm:"index" json:"driver_id"` // nullable, set when a driver claims the order
	Driver                *Driver     `gorm:"foreignKey:DriverID" json:"driver,omitempty"`
	AddressID             *uint       `json:"address_id"` // nullable, required for DELIVERY at pay time
	Address               *Address    `gorm:"foreignKey:AddressID" json:"address,omitempty"`
	OrderItems            []OrderItem `gorm:"foreignKey:OrderID" json:"order_items"`
	Method                OrderMethod `gorm:"not null;default:'PICKUP'" json:"method"`
	Disposition           Disposition `gorm:"not null;default:'NEW';index" json:"disposition"`
	Subtotal              float64     `gorm:"not null;default:0" json:"subtotal"`
	Tip                   float64     `gorm:"not null;default:0" json:"tip"`
	Total                 float64     `gorm:"not null;default:0" json:"total"`
	AmountPaid            float64     `gorm:"not null;default:0" json:"amount_paid"`
	ChargeID              *string     `json:"charge_id"` // payment gateway reference, set after payment
	EstimatedReadyTime    *time.Time  `json:"estimated_ready_time"`
	ActualReadyTime       *time.Time  `json:"actual_ready_time"`
	EstimatedDeliveryTime *time.Time  `json:"estimated_delivery_time"`
	ActualDeliveryTime    *time.Time  `json:"actual_delivery_time"`
	CreatedAt             time.Time   `json:"created_on"`
	UpdatedAt             time.Time   `json:"-"`
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

func ordersFor(db *gorm.DB, column string, actorID uint, dispositions []Disposition) ([]Order, error) {
	var orders []Order
	err := db.Preload("OrderItems").
		Where(column+" = ? AND disposition IN ?", actorID, dispositions).
		Order("created_at ASC").
		Find(&orders).Error
	return orders, err
}

// CustomerActiveOrders returns the customer's paid, not-yet-ready orders
func CustomerActiveOrders(db *gorm.DB, customerID uint) ([]Order, error) {
	return ordersFor(db, "customer_id", customerID, ActiveDispositions)
}

// CustomerReadyOrders returns the customer's ready and en-route orders
func CustomerReadyOrders(db *gorm.DB, customerID uint) ([]Order, error) {
	return ordersFor(db, "customer_id", customerID, ReadyDispositions)
}

// CustomerOrderHistory returns the customer's delivered and canceled orders
func CustomerOrderHistory(db *gorm.DB, customerID uint) ([]Order, error) {
	return ordersFor(db, "customer_id", customerID, HistoryDispositions)
}

// VendorActiveOrders returns the vendor's paid, not-yet-ready orders
func VendorActiveOrders(db *gorm.DB, vendorID uint) ([]Order, error) {
	return ordersFor(db, "vendor_id", vendorID, ActiveDispositions)
}

// VendorReadyOrders returns the vendor's ready and en-route orders
func VendorReadyOrders(db *gorm.DB, vendorID uint) ([]Order, error) {
	return ordersFor(db, "vendor_id", vendorID, ReadyDispositions)
}

// VendorOrderHistory returns the vendor's delivered and canceled orders
func VendorOrderHistory(db *gorm.DB, vendorID uint) ([]Order, error) {
	return ordersFor(db, "vendor_id", vendorID, HistoryDispositions)
}

// DriverRoute returns the orders currently assigned to the driver
func DriverRoute(db *gorm.DB, driverID uint) ([]Order, error) {
	return ordersFor(db, "driver_id", driverID, RouteDispositions)
}

// DriverOrderHistory returns the driver's completed and canceled orders
func DriverOrderHistory(db *gorm.DB, driverID uint) ([]Order, error) {
	return ordersFor(db, "driver_id", driverID, HistoryDispositions)
}
