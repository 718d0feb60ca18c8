package repository

import (
	"fmt"

	"github.com/hanifn/catalog-backend/internal/app/model"
	"github.com/hanifn/catalog-backend/pkg/logger"
	"github.com/hanifn/catalog-backend/pkg/ordering"
	"gorm.io/gorm"
)

type ProductTypeFilter struct {
	Search string
	Limit  int
	Offset int
}

type ProductTypeRepository interface {
	Create(productType *model.ProductType) error
	FindAll(filter ProductTypeFilter) ([]model.ProductType, error)
	FindByID(id uint) (*model.ProductType, error)
	Update(productType *model.ProductType) error
	Delete(id uint) error

	ProductBindings(productTypeID uint) ([]model.AttributeProduct, error)
	VariantBindings(productTypeID uint) ([]model.AttributeVariant, error)
	AssignedAttributes(productTypeID uint, attributeIDs []uint) ([]model.Attribute, error)
	CreateBindings(productTypeID uint, productAttributeIDs, variantAttributeIDs []uint) error
	DeleteBindingsByAttribute(productTypeID uint, attributeIDs []uint) error
	ReorderProductBindings(productTypeID uint, moves []ordering.Move) error
	ReorderVariantBindings(productTypeID uint, moves []ordering.Move) error
}

type productTypeRepository struct {
	db *gorm.DB
}

func NewProductTypeRepository(db *gorm.DB) ProductTypeRepository {
	return &productTypeRepository{db: db}
}

func (r *productTypeRepository) Create(productType *model.ProductType) error {
	logger.Debug("Creating product type in database", map[string]interface{}{
		"name":         productType.Name,
		"slug":         productType.Slug,
		"has_variants": productType.HasVariants,
	})

	if err := r.db.Create(productType).Error; err != nil {
		logger.Error("Failed to create product type in database", err, map[string]interface{}{
			"name": productType.Name,
		})
		return err
	}
	return nil
}

func (r *productTypeRepository) baseQuery() *gorm.DB {
	return r.db.Model(&model.ProductType{}).
		Preload("ProductAttributes", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		Preload("ProductAttributes.Attribute").
		Preload("VariantAttributes", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		Preload("VariantAttributes.Attribute")
}

func (r *productTypeRepository) FindAll(filter ProductTypeFilter) ([]model.ProductType, error) {
	query := r.baseQuery()

	if filter.Search != "" {
		like := fmt.Sprintf("%%%s%%", filter.Search)
		query = query.Where("product_types.name LIKE ? OR product_types.slug LIKE ?", like, like)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var productTypes []model.ProductType
	if err := query.Order("product_types.name ASC").Find(&productTypes).Error; err != nil {
		logger.Error("Failed to find product types", err, map[string]interface{}{
			"search": filter.Search,
		})
		return nil, err
	}
	return productTypes, nil
}

func (r *productTypeRepository) FindByID(id uint) (*model.ProductType, error) {
	var productType model.ProductType
	if err := r.baseQuery().First(&productType, id).Error; err != nil {
		logger.Error("Failed to find product type by ID", err, map[string]interface{}{
			"product_type_id": id,
		})
		return nil, err
	}
	return &productType, nil
}

func (r *productTypeRepository) Update(productType *model.ProductType) error {
	logger.Debug("Updating product type in database", map[string]interface{}{
		"product_type_id": productType.ID,
	})

	err := r.db.
		Omit("ProductAttributes", "VariantAttributes").
		Save(productType).Error
	if err != nil {
		logger.Error("Failed to update product type in database", err, map[string]interface{}{
			"product_type_id": productType.ID,
		})
		return err
	}
	return nil
}

// Delete removes a product type with its bindings and every assignment row
// hanging off them. Products of the type are not deleted; their assignment
// rows are, since the bindings they instantiate disappear.
func (r *productTypeRepository) Delete(id uint) error {
	logger.Debug("Deleting product type from database", map[string]interface{}{
		"product_type_id": id,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var productBindingIDs []uint
		if err := tx.Model(&model.AttributeProduct{}).
			Where("product_type_id = ?", id).
			Pluck("id", &productBindingIDs).Error; err != nil {
			return err
		}
		if err := deleteProductAssignments(tx, productBindingIDs); err != nil {
			return err
		}

		var variantBindingIDs []uint
		if err := tx.Model(&model.AttributeVariant{}).
			Where("product_type_id = ?", id).
			Pluck("id", &variantBindingIDs).Error; err != nil {
			return err
		}
		if err := deleteVariantAssignments(tx, variantBindingIDs); err != nil {
			return err
		}

		if err := tx.Where("product_type_id = ?", id).Delete(&model.AttributeProduct{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_type_id = ?", id).Delete(&model.AttributeVariant{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.ProductType{}, id).Error
	})
	if err != nil {
		logger.Error("Failed to delete product type from database", err, map[string]interface{}{
			"product_type_id": id,
		})
		return err
	}
	return nil
}

func (r *productTypeRepository) ProductBindings(productTypeID uint) ([]model.AttributeProduct, error) {
	var bindings []model.AttributeProduct
	err := r.db.
		Preload("Attribute").
		Where("product_type_id = ?", productTypeID).
		Order("sort_order ASC, id ASC").
		Find(&bindings).Error
	if err != nil {
		logger.Error("Failed to find product bindings", err, map[string]interface{}{
			"product_type_id": productTypeID,
		})
		return nil, err
	}
	return bindings, nil
}

func (r *productTypeRepository) VariantBindings(productTypeID uint) ([]model.AttributeVariant, error) {
	var bindings []model.AttributeVariant
	err := r.db.
		Preload("Attribute").
		Where("product_type_id = ?", productTypeID).
		Order("sort_order ASC, id ASC").
		Find(&bindings).Error
	if err != nil {
		logger.Error("Failed to find variant bindings", err, map[string]interface{}{
			"product_type_id": productTypeID,
		})
		return nil, err
	}
	return bindings, nil
}

// AssignedAttributes returns the subset of the given attributes already
// bound to the product type in either role.
func (r *productTypeRepository) AssignedAttributes(productTypeID uint, attributeIDs []uint) ([]model.Attribute, error) {
	var attributes []model.Attribute
	err := r.db.
		Distinct("attributes.*").
		Joins("LEFT JOIN attribute_products ap ON ap.attribute_id = attributes.id AND ap.product_type_id = ?", productTypeID).
		Joins("LEFT JOIN attribute_variants av ON av.attribute_id = attributes.id AND av.product_type_id = ?", productTypeID).
		Where("attributes.id IN ?", attributeIDs).
		Where("ap.id IS NOT NULL OR av.id IS NOT NULL").
		Find(&attributes).Error
	if err != nil {
		logger.Error("Failed to find assigned attributes", err, map[string]interface{}{
			"product_type_id": productTypeID,
		})
		return nil, err
	}
	return attributes, nil
}

// CreateBindings appends binding rows for the accepted attributes, each at
// the next rank of its (product type, role) partition.
func (r *productTypeRepository) CreateBindings(productTypeID uint, productAttributeIDs, variantAttributeIDs []uint) error {
	logger.Debug("Creating attribute bindings", map[string]interface{}{
		"product_type_id": productTypeID,
		"product_count":   len(productAttributeIDs),
		"variant_count":   len(variantAttributeIDs),
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if len(productAttributeIDs) > 0 {
			rank, err := nextBindingRank(tx, &model.AttributeProduct{}, productTypeID)
			if err != nil {
				return err
			}
			for _, attributeID := range productAttributeIDs {
				sortOrder := rank
				binding := model.AttributeProduct{
					AttributeID:   attributeID,
					ProductTypeID: productTypeID,
					SortOrder:     &sortOrder,
				}
				if err := tx.Create(&binding).Error; err != nil {
					return err
				}
				rank++
			}
		}

		if len(variantAttributeIDs) > 0 {
			rank, err := nextBindingRank(tx, &model.AttributeVariant{}, productTypeID)
			if err != nil {
				return err
			}
			for _, attributeID := range variantAttributeIDs {
				sortOrder := rank
				binding := model.AttributeVariant{
					AttributeID:   attributeID,
					ProductTypeID: productTypeID,
					SortOrder:     &sortOrder,
				}
				if err := tx.Create(&binding).Error; err != nil {
					return err
				}
				rank++
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to create attribute bindings", err, map[string]interface{}{
			"product_type_id": productTypeID,
		})
		return err
	}
	return nil
}

func nextBindingRank(tx *gorm.DB, bindingModel interface{}, productTypeID uint) (int, error) {
	var max *int
	err := tx.Model(bindingModel).
		Where("product_type_id = ?", productTypeID).
		Select("MAX(sort_order)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return ordering.NextRank(max), nil
}

// DeleteBindingsByAttribute unassigns the given attributes from whichever
// role they occupy on the product type, deleting dependent assignment rows
// and compacting ranks.
func (r *productTypeRepository) DeleteBindingsByAttribute(productTypeID uint, attributeIDs []uint) error {
	logger.Debug("Deleting attribute bindings", map[string]interface{}{
		"product_type_id": productTypeID,
		"attribute_ids":   attributeIDs,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var productBindingIDs []uint
		if err := tx.Model(&model.AttributeProduct{}).
			Where("product_type_id = ? AND attribute_id IN ?", productTypeID, attributeIDs).
			Pluck("id", &productBindingIDs).Error; err != nil {
			return err
		}
		if len(productBindingIDs) > 0 {
			if err := deleteProductAssignments(tx, productBindingIDs); err != nil {
				return err
			}
			if err := tx.Where("id IN ?", productBindingIDs).Delete(&model.AttributeProduct{}).Error; err != nil {
				return err
			}
			if err := renumberBindings(tx, &model.AttributeProduct{}, productTypeID); err != nil {
				return err
			}
		}

		var variantBindingIDs []uint
		if err := tx.Model(&model.AttributeVariant{}).
			Where("product_type_id = ? AND attribute_id IN ?", productTypeID, attributeIDs).
			Pluck("id", &variantBindingIDs).Error; err != nil {
			return err
		}
		if len(variantBindingIDs) > 0 {
			if err := deleteVariantAssignments(tx, variantBindingIDs); err != nil {
				return err
			}
			if err := tx.Where("id IN ?", variantBindingIDs).Delete(&model.AttributeVariant{}).Error; err != nil {
				return err
			}
			if err := renumberBindings(tx, &model.AttributeVariant{}, productTypeID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to delete attribute bindings", err, map[string]interface{}{
			"product_type_id": productTypeID,
		})
		return err
	}
	return nil
}

func deleteProductBinding(tx *gorm.DB, binding *model.AttributeProduct) error {
	if err := deleteProductAssignments(tx, []uint{binding.ID}); err != nil {
		return err
	}
	if err := tx.Delete(&model.AttributeProduct{}, binding.ID).Error; err != nil {
		return err
	}
	return renumberBindings(tx, &model.AttributeProduct{}, binding.ProductTypeID)
}

func deleteVariantBinding(tx *gorm.DB, binding *model.AttributeVariant) error {
	if err := deleteVariantAssignments(tx, []uint{binding.ID}); err != nil {
		return err
	}
	if err := tx.Delete(&model.AttributeVariant{}, binding.ID).Error; err != nil {
		return err
	}
	return renumberBindings(tx, &model.AttributeVariant{}, binding.ProductTypeID)
}

// renumberBindings rewrites the partition's surviving ranks to 0..n-1 so the
// sequence stays dense no matter how many rows the caller removed.
func renumberBindings(tx *gorm.DB, bindingModel interface{}, productTypeID uint) error {
	var ids []uint
	if err := tx.Model(bindingModel).
		Where("product_type_id = ?", productTypeID).
		Order("sort_order ASC, id ASC").
		Pluck("id", &ids).Error; err != nil {
		return err
	}
	for index, id := range ids {
		if err := tx.Model(bindingModel).
			Where("id = ?", id).
			Update("sort_order", index).Error; err != nil {
			return err
		}
	}
	return nil
}

func deleteProductAssignments(tx *gorm.DB, bindingIDs []uint) error {
	if len(bindingIDs) == 0 {
		return nil
	}
	var assignmentIDs []uint
	if err := tx.Model(&model.AssignedProductAttribute{}).
		Where("assignment_id IN ?", bindingIDs).
		Pluck("id", &assignmentIDs).Error; err != nil {
		return err
	}
	if len(assignmentIDs) == 0 {
		return nil
	}
	if err := tx.Exec(
		"DELETE FROM assigned_product_attribute_values WHERE assigned_product_attribute_id IN ?", assignmentIDs,
	).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", assignmentIDs).Delete(&model.AssignedProductAttribute{}).Error
}

func deleteVariantAssignments(tx *gorm.DB, bindingIDs []uint) error {
	if len(bindingIDs) == 0 {
		return nil
	}
	var assignmentIDs []uint
	if err := tx.Model(&model.AssignedVariantAttribute{}).
		Where("assignment_id IN ?", bindingIDs).
		Pluck("id", &assignmentIDs).Error; err != nil {
		return err
	}
	if len(assignmentIDs) == 0 {
		return nil
	}
	if err := tx.Exec(
		"DELETE FROM assigned_variant_attribute_values WHERE assigned_variant_attribute_id IN ?", assignmentIDs,
	).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", assignmentIDs).Delete(&model.AssignedVariantAttribute{}).Error
}

// ReorderProductBindings recomputes the dense rank sequence of the product
// type's product-role bindings after applying the moves.
func (r *productTypeRepository) ReorderProductBindings(productTypeID uint, moves []ordering.Move) error {
	return r.reorderBindings(&model.AttributeProduct{}, productTypeID, moves)
}

// ReorderVariantBindings is the variant-role counterpart.
func (r *productTypeRepository) ReorderVariantBindings(productTypeID uint, moves []ordering.Move) error {
	return r.reorderBindings(&model.AttributeVariant{}, productTypeID, moves)
}

func (r *productTypeRepository) reorderBindings(bindingModel interface{}, productTypeID uint, moves []ordering.Move) error {
	logger.Debug("Reordering attribute bindings", map[string]interface{}{
		"product_type_id": productTypeID,
		"move_count":      len(moves),
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Model(bindingModel).
			Where("product_type_id = ?", productTypeID).
			Order("sort_order ASC, id ASC").
			Pluck("id", &ids).Error; err != nil {
			return err
		}

		reordered, err := ordering.Reorder(ids, moves)
		if err != nil {
			return err
		}

		for index, id := range reordered {
			if err := tx.Model(bindingModel).
				Where("id = ?", id).
				Update("sort_order", index).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to reorder attribute bindings", err, map[string]interface{}{
			"product_type_id": productTypeID,
		})
		return err
	}
	return nil
}
