package model

import (
	"time"
)

// AttributeType selects which binding role an operation targets.
type AttributeType string

const (
	// AttributeTypeProduct binds an attribute at the product level, shared
	// across all variants.
	AttributeTypeProduct AttributeType = "PRODUCT"
	// AttributeTypeVariant binds an attribute at the variant level, used to
	// distinguish variants of one product.
	AttributeTypeVariant AttributeType = "VARIANT"
)

func (t AttributeType) Valid() bool {
	return t == AttributeTypeProduct || t == AttributeTypeVariant
}

// ProductType groups products sharing one attribute schema.
type ProductType struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Name        string    `gorm:"size:250;not null" json:"name"`
	Slug        string    `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	HasVariants bool      `gorm:"default:true" json:"has_variants"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relationships
	ProductAttributes []AttributeProduct `gorm:"foreignKey:ProductTypeID" json:"product_attributes,omitempty"`
	VariantAttributes []AttributeVariant `gorm:"foreignKey:ProductTypeID" json:"variant_attributes,omitempty"`
}

func (ProductType) TableName() string {
	return "product_types"
}

// AttributeProduct declares that an attribute is usable on a product type in
// the product role, at a given rank. Assignment rows reference this binding
// rather than the attribute itself, which is what lets the same attribute be
// ordered independently per product type and role.
type AttributeProduct struct {
	ID            uint `gorm:"primarykey" json:"id"`
	AttributeID   uint `gorm:"not null;uniqueIndex:idx_attribute_product" json:"attribute_id"`
	ProductTypeID uint `gorm:"not null;uniqueIndex:idx_attribute_product" json:"product_type_id"`
	SortOrder     *int `gorm:"index" json:"sort_order"`

	Attribute   Attribute   `gorm:"foreignKey:AttributeID" json:"attribute,omitempty"`
	ProductType ProductType `gorm:"foreignKey:ProductTypeID" json:"-"`
}

func (AttributeProduct) TableName() string {
	return "attribute_products"
}

// AttributeVariant is the variant-role counterpart of AttributeProduct.
type AttributeVariant struct {
	ID            uint `gorm:"primarykey" json:"id"`
	AttributeID   uint `gorm:"not null;uniqueIndex:idx_attribute_variant" json:"attribute_id"`
	ProductTypeID uint `gorm:"not null;uniqueIndex:idx_attribute_variant" json:"product_type_id"`
	SortOrder     *int `gorm:"index" json:"sort_order"`

	Attribute   Attribute   `gorm:"foreignKey:AttributeID" json:"attribute,omitempty"`
	ProductType ProductType `gorm:"foreignKey:ProductTypeID" json:"-"`
}

func (AttributeVariant) TableName() string {
	return "attribute_variants"
}
