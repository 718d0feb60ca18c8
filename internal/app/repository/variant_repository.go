package repository

import (
	"github.com/hanifn/catalog-backend/internal/app/model"
	"github.com/hanifn/catalog-backend/pkg/logger"
	"gorm.io/gorm"
)

type VariantRepository interface {
	Create(variant *model.ProductVariant) error
	FindByID(id uint) (*model.ProductVariant, error)
	FindByProduct(productID uint) ([]model.ProductVariant, error)
	Update(variant *model.ProductVariant) error
	Delete(id uint) error
}

type variantRepository struct {
	db *gorm.DB
}

func NewVariantRepository(db *gorm.DB) VariantRepository {
	return &variantRepository{db: db}
}

func (r *variantRepository) Create(variant *model.ProductVariant) error {
	logger.Debug("Creating product variant in database", map[string]interface{}{
		"product_id": variant.ProductID,
		"sku":        variant.SKU,
	})

	if err := r.db.Create(variant).Error; err != nil {
		logger.Error("Failed to create product variant in database", err, map[string]interface{}{
			"sku": variant.SKU,
		})
		return err
	}
	return nil
}

func (r *variantRepository) baseQuery() *gorm.DB {
	return r.db.Model(&model.ProductVariant{}).
		Preload("Attributes.Assignment.Attribute").
		Preload("Attributes.Values", func(db *gorm.DB) *gorm.DB {
			return db.Order("attribute_values.sort_order ASC, attribute_values.id ASC")
		})
}

func (r *variantRepository) FindByID(id uint) (*model.ProductVariant, error) {
	var variant model.ProductVariant
	if err := r.baseQuery().First(&variant, id).Error; err != nil {
		logger.Error("Failed to find product variant by ID", err, map[string]interface{}{
			"variant_id": id,
		})
		return nil, err
	}
	return &variant, nil
}

// FindByProduct returns the product's variants with their assigned
// attributes loaded, which is what the duplicate-combination check reads.
func (r *variantRepository) FindByProduct(productID uint) ([]model.ProductVariant, error) {
	var variants []model.ProductVariant
	err := r.baseQuery().
		Where("product_id = ?", productID).
		Order("id ASC").
		Find(&variants).Error
	if err != nil {
		logger.Error("Failed to find product variants", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}
	return variants, nil
}

func (r *variantRepository) Update(variant *model.ProductVariant) error {
	logger.Debug("Updating product variant in database", map[string]interface{}{
		"variant_id": variant.ID,
	})

	err := r.db.
		Omit("Product", "Attributes").
		Save(variant).Error
	if err != nil {
		logger.Error("Failed to update product variant in database", err, map[string]interface{}{
			"variant_id": variant.ID,
		})
		return err
	}
	return nil
}

func (r *variantRepository) Delete(id uint) error {
	logger.Debug("Deleting product variant from database", map[string]interface{}{
		"variant_id": id,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := deleteVariantAssignmentsByVariant(tx, []uint{id}); err != nil {
			return err
		}
		return tx.Delete(&model.ProductVariant{}, id).Error
	})
	if err != nil {
		logger.Error("Failed to delete product variant from database", err, map[string]interface{}{
			"variant_id": id,
		})
		return err
	}
	return nil
}
