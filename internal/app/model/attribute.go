package model

import (
	"time"
)

type AttributeInputType string

const (
	// InputTypeDropdown accepts a single value per assignment.
	InputTypeDropdown AttributeInputType = "dropdown"
	// InputTypeMultiselect accepts any number of values per assignment.
	InputTypeMultiselect AttributeInputType = "multiselect"
)

// AssignableToVariants reports whether attributes of this input type may be
// bound in the variant role. Multiselect attributes cannot distinguish
// variants, so they are product-only.
func (t AttributeInputType) AssignableToVariants() bool {
	return t != InputTypeMultiselect
}

func (t AttributeInputType) Valid() bool {
	return t == InputTypeDropdown || t == InputTypeMultiselect
}

// Attribute is a named schema field (e.g. "Color") that product types can
// declare and products/variants can hold values for.
type Attribute struct {
	ID                       uint               `gorm:"primarykey" json:"id"`
	Name                     string             `gorm:"not null" json:"name"`
	Slug                     string             `gorm:"size:250;uniqueIndex;not null" json:"slug"`
	InputType                AttributeInputType `gorm:"type:varchar(50);not null;default:dropdown" json:"input_type"`
	ValueRequired            bool               `gorm:"default:false" json:"value_required"`
	VisibleInStorefront      bool               `gorm:"default:true" json:"visible_in_storefront"`
	FilterableInStorefront   bool               `gorm:"default:true" json:"filterable_in_storefront"`
	FilterableInDashboard    bool               `gorm:"default:true" json:"filterable_in_dashboard"`
	StorefrontSearchPosition int                `gorm:"default:0" json:"storefront_search_position"`
	AvailableInGrid          bool               `gorm:"default:true" json:"available_in_grid"`
	CreatedAt                time.Time          `json:"created_at"`
	UpdatedAt                time.Time          `json:"updated_at"`

	// Relationships
	Values []AttributeValue `gorm:"foreignKey:AttributeID" json:"values,omitempty"`
}

func (Attribute) TableName() string {
	return "attributes"
}

// AttributeValue is one concrete value owned by an Attribute (e.g. "Red").
// Slug is unique only within the owning attribute; SortOrder is a dense
// 0-based rank within the attribute's value list.
type AttributeValue struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	AttributeID uint      `gorm:"index;not null;uniqueIndex:idx_attribute_value_slug" json:"attribute_id"`
	Name        string    `gorm:"size:250;not null" json:"name"`
	Value       string    `gorm:"size:100;default:''" json:"value"`
	Slug        string    `gorm:"size:255;not null;uniqueIndex:idx_attribute_value_slug" json:"slug"`
	SortOrder   *int      `gorm:"index" json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Attribute Attribute `gorm:"foreignKey:AttributeID" json:"-"`
}

func (AttributeValue) TableName() string {
	return "attribute_values"
}
