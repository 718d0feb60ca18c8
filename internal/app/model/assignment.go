package model

// AssignedProductAttribute records which attribute values a product has
// chosen for one product-role binding. At most one row may exist per
// (product, binding) pair.
type AssignedProductAttribute struct {
	ID           uint `gorm:"primarykey" json:"id"`
	ProductID    uint `gorm:"not null;uniqueIndex:idx_assigned_product_attribute" json:"product_id"`
	AssignmentID uint `gorm:"not null;uniqueIndex:idx_assigned_product_attribute" json:"assignment_id"`

	Assignment AttributeProduct `gorm:"foreignKey:AssignmentID" json:"assignment,omitempty"`
	Values     []AttributeValue `gorm:"many2many:assigned_product_attribute_values" json:"values,omitempty"`
}

func (AssignedProductAttribute) TableName() string {
	return "assigned_product_attributes"
}

// AssignedVariantAttribute is the variant-role counterpart of
// AssignedProductAttribute.
type AssignedVariantAttribute struct {
	ID           uint `gorm:"primarykey" json:"id"`
	VariantID    uint `gorm:"not null;uniqueIndex:idx_assigned_variant_attribute" json:"variant_id"`
	AssignmentID uint `gorm:"not null;uniqueIndex:idx_assigned_variant_attribute" json:"assignment_id"`

	Assignment AttributeVariant `gorm:"foreignKey:AssignmentID" json:"assignment,omitempty"`
	Values     []AttributeValue `gorm:"many2many:assigned_variant_attribute_values" json:"values,omitempty"`
}

func (AssignedVariantAttribute) TableName() string {
	return "assigned_variant_attributes"
}
