package models

import "time"

// ModificationSelection records the options a customer chose for one
// modification on an order item
type ModificationSelection struct {
	ModificationID uint   `json:"modification_id"`
	OptionIDs      []uint `json:"option_ids"`
}

// OrderItem is one line of an order. Name and price are snapshots taken when
// the item is added to the cart and do not change with later menu edits.
type OrderItem struct {
	ID            uint                    `gorm:"primaryKey" json:"id"`
	OrderID       uint                    `gorm:"not null;index" json:"order_id"`
	MenuItemID    uint                    `gorm:"not null" json:"menu_item_id"`
	Name          string                  `gorm:"not null" json:"name"`
	Price         float64                 `gorm:"not null" json:"price"`
	Modifications []ModificationSelection `gorm:"serializer:json" json:"modifications"`
	CreatedAt     time.Time               `json:"created_on"`
}

// TableName specifies the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}
