package model

import (
	"time"
)

type Product struct {
	ID                  uint      `gorm:"primarykey" json:"id"`
	ProductTypeID       uint      `gorm:"index;not null" json:"product_type_id"`
	Name                string    `gorm:"size:250;not null" json:"name"`
	Slug                string    `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Description         string    `gorm:"type:text" json:"description"`
	IsPublished         bool      `gorm:"default:false" json:"is_published"`
	MinimalVariantPrice int       `gorm:"default:0" json:"minimal_variant_price"`
	ImageURL            string    `json:"image_url"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`

	// Relationships
	ProductType ProductType                `gorm:"foreignKey:ProductTypeID" json:"product_type,omitempty"`
	Variants    []ProductVariant           `gorm:"foreignKey:ProductID" json:"variants,omitempty"`
	Attributes  []AssignedProductAttribute `gorm:"foreignKey:ProductID" json:"attributes,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

type ProductVariant struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	ProductID      uint      `gorm:"index;not null" json:"product_id"`
	SKU            string    `gorm:"size:255;uniqueIndex;not null" json:"sku"`
	Price          int       `gorm:"default:0" json:"price"`
	Cost           int       `gorm:"default:0" json:"cost"`
	Weight         int       `gorm:"default:0" json:"weight"`
	Quantity       int       `gorm:"default:0" json:"quantity"`
	TrackInventory bool      `gorm:"default:true" json:"track_inventory"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relationships
	Product    Product                    `gorm:"foreignKey:ProductID" json:"-"`
	Attributes []AssignedVariantAttribute `gorm:"foreignKey:VariantID" json:"attributes,omitempty"`
}

func (ProductVariant) TableName() string {
	return "product_variants"
}
