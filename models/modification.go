package models

import (
	"time"

	"gorm.io/gorm"
)

// ModificationType is how many options may be selected
type ModificationType string

const (
	SelectionSingle   ModificationType = "single"
	SelectionMultiple ModificationType = "multiple"
)

// ModificationOption is one selectable option with its price delta
type ModificationOption struct {
	ID    uint    `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Modification is a named set of options a vendor can attach to menu items,
// e.g. "Size" (single) or "Toppings" (multiple)
type Modification struct {
	ID                 uint                 `gorm:"primaryKey" json:"id"`
	VendorID           uint                 `gorm:"not null;index" json:"vendor_id"`
	Name               string               `gorm:"not null" json:"name"`
	Type               ModificationType     `gorm:"not null" json:"type"`
	Options            []ModificationOption `gorm:"serializer:json" json:"options"`
	DefaultOptionIndex *int                 `json:"default_option_index"`
	CreatedAt          time.Time            `json:"created_on"`
	UpdatedAt          time.Time            `json:"-"`
	DeletedAt          gorm.DeletedAt       `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Modification model
func (Modification) TableName() string {
	return "modifications"
}

// OptionByID finds an option on the modification by its id
func (m *Modification) OptionByID(optionID uint) (ModificationOption, bool) {
	for _, option := range m.Options {
		if option.ID == optionID {
			return option, true
		}
	}
	return ModificationOption{}, false
}
