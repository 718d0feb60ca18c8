package repository

import (
	"fmt"

	"github.com/hanifn/catalog-backend/internal/app/model"
	"github.com/hanifn/catalog-backend/pkg/logger"
	"github.com/hanifn/catalog-backend/pkg/ordering"
	"gorm.io/gorm"
)

type AttributeSort string

const (
	AttributeSortName           = "name"
	AttributeSortSlug           = "slug"
	AttributeSortSearchPosition = "storefront_search_position"
)

type AttributeFilter struct {
	Search              string
	VisibleInStorefront *bool
	ValueRequired       *bool
	SortBy              AttributeSort
	SortAscending       bool
	Limit               int
	Offset              int
}

type AttributeRepository interface {
	Create(attribute *model.Attribute) error
	FindAll(filter AttributeFilter) ([]model.Attribute, error)
	FindByID(id uint) (*model.Attribute, error)
	FindByIDs(ids []uint) ([]model.Attribute, error)
	Update(attribute *model.Attribute) error
	Delete(id uint) error
	DeleteMany(ids []uint) error

	CreateValue(value *model.AttributeValue) error
	FindValueByID(id uint) (*model.AttributeValue, error)
	FindValues(attributeID uint) ([]model.AttributeValue, error)
	FindValueSlugs(attributeID uint) ([]string, error)
	UpdateValue(value *model.AttributeValue) error
	DeleteValue(id uint) error
	ReorderValues(attributeID uint, moves []ordering.Move) error
}

type attributeRepository struct {
	db *gorm.DB
}

func NewAttributeRepository(db *gorm.DB) AttributeRepository {
	return &attributeRepository{db: db}
}

func (r *attributeRepository) Create(attribute *model.Attribute) error {
	logger.Debug("Creating attribute in database", map[string]interface{}{
		"name":       attribute.Name,
		"slug":       attribute.Slug,
		"input_type": attribute.InputType,
	})

	// Initial values get dense ranks in the order they were supplied
	for i := range attribute.Values {
		rank := i
		attribute.Values[i].SortOrder = &rank
	}

	if err := r.db.Create(attribute).Error; err != nil {
		logger.Error("Failed to create attribute in database", err, map[string]interface{}{
			"name": attribute.Name,
			"slug": attribute.Slug,
		})
		return err
	}

	logger.Debug("Attribute created in database", map[string]interface{}{
		"attribute_id": attribute.ID,
		"slug":         attribute.Slug,
	})
	return nil
}

func (r *attributeRepository) FindAll(filter AttributeFilter) ([]model.Attribute, error) {
	query := r.db.Model(&model.Attribute{}).
		Preload("Values", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		})

	if filter.Search != "" {
		like := fmt.Sprintf("%%%s%%", filter.Search)
		query = query.Where("attributes.name LIKE ? OR attributes.slug LIKE ?", like, like)
	}
	if filter.VisibleInStorefront != nil {
		query = query.Where("attributes.visible_in_storefront = ?", *filter.VisibleInStorefront)
	}
	if filter.ValueRequired != nil {
		query = query.Where("attributes.value_required = ?", *filter.ValueRequired)
	}

	direction := "ASC"
	if !filter.SortAscending && filter.SortBy != "" {
		direction = "DESC"
	}
	switch filter.SortBy {
	case AttributeSortName:
		query = query.Order("attributes.name " + direction)
	case AttributeSortSlug:
		query = query.Order("attributes.slug " + direction)
	default:
		query = query.Order("attributes.storefront_search_position ASC").Order("attributes.slug ASC")
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var attributes []model.Attribute
	if err := query.Find(&attributes).Error; err != nil {
		logger.Error("Failed to find attributes", err, map[string]interface{}{
			"search": filter.Search,
		})
		return nil, err
	}
	return attributes, nil
}

func (r *attributeRepository) FindByID(id uint) (*model.Attribute, error) {
	var attribute model.Attribute
	err := r.db.
		Preload("Values", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		First(&attribute, id).Error
	if err != nil {
		logger.Error("Failed to find attribute by ID", err, map[string]interface{}{
			"attribute_id": id,
		})
		return nil, err
	}
	return &attribute, nil
}

func (r *attributeRepository) FindByIDs(ids []uint) ([]model.Attribute, error) {
	var attributes []model.Attribute
	if err := r.db.Where("id IN ?", ids).Find(&attributes).Error; err != nil {
		logger.Error("Failed to find attributes by IDs", err, map[string]interface{}{
			"attribute_ids": ids,
		})
		return nil, err
	}
	return attributes, nil
}

func (r *attributeRepository) Update(attribute *model.Attribute) error {
	logger.Debug("Updating attribute in database", map[string]interface{}{
		"attribute_id": attribute.ID,
		"slug":         attribute.Slug,
	})

	if err := r.db.Omit("Values").Save(attribute).Error; err != nil {
		logger.Error("Failed to update attribute in database", err, map[string]interface{}{
			"attribute_id": attribute.ID,
		})
		return err
	}
	return nil
}

// Delete removes an attribute together with its values, its bindings on any
// product type, and all assignment rows instantiated from those bindings.
// Binding ranks in the affected partitions are compacted afterwards.
func (r *attributeRepository) Delete(id uint) error {
	return r.DeleteMany([]uint{id})
}

func (r *attributeRepository) DeleteMany(ids []uint) error {
	logger.Debug("Deleting attributes from database", map[string]interface{}{
		"attribute_ids": ids,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		for _, id := range ids {
			if err := cascadeDeleteAttribute(tx, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to delete attributes from database", err, map[string]interface{}{
			"attribute_ids": ids,
		})
		return err
	}

	logger.Debug("Attributes deleted from database", map[string]interface{}{
		"attribute_ids": ids,
	})
	return nil
}

func cascadeDeleteAttribute(tx *gorm.DB, id uint) error {
	var productBindings []model.AttributeProduct
	if err := tx.Where("attribute_id = ?", id).Find(&productBindings).Error; err != nil {
		return err
	}
	for _, binding := range productBindings {
		if err := deleteProductBinding(tx, &binding); err != nil {
			return err
		}
	}

	var variantBindings []model.AttributeVariant
	if err := tx.Where("attribute_id = ?", id).Find(&variantBindings).Error; err != nil {
		return err
	}
	for _, binding := range variantBindings {
		if err := deleteVariantBinding(tx, &binding); err != nil {
			return err
		}
	}

	var valueIDs []uint
	if err := tx.Model(&model.AttributeValue{}).
		Where("attribute_id = ?", id).
		Pluck("id", &valueIDs).Error; err != nil {
		return err
	}
	if len(valueIDs) > 0 {
		if err := detachValuesFromAssignments(tx, valueIDs); err != nil {
			return err
		}
		if err := tx.Where("attribute_id = ?", id).Delete(&model.AttributeValue{}).Error; err != nil {
			return err
		}
	}

	return tx.Delete(&model.Attribute{}, id).Error
}

// detachValuesFromAssignments removes the given values from every assignment
// value-set that references them. The assignment rows themselves survive.
func detachValuesFromAssignments(tx *gorm.DB, valueIDs []uint) error {
	if err := tx.Exec(
		"DELETE FROM assigned_product_attribute_values WHERE attribute_value_id IN ?", valueIDs,
	).Error; err != nil {
		return err
	}
	return tx.Exec(
		"DELETE FROM assigned_variant_attribute_values WHERE attribute_value_id IN ?", valueIDs,
	).Error
}

func (r *attributeRepository) CreateValue(value *model.AttributeValue) error {
	logger.Debug("Creating attribute value in database", map[string]interface{}{
		"attribute_id": value.AttributeID,
		"slug":         value.Slug,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		rank, err := nextValueRank(tx, value.AttributeID)
		if err != nil {
			return err
		}
		value.SortOrder = &rank
		return tx.Create(value).Error
	})
	if err != nil {
		logger.Error("Failed to create attribute value in database", err, map[string]interface{}{
			"attribute_id": value.AttributeID,
			"slug":         value.Slug,
		})
		return err
	}
	return nil
}

// nextValueRank returns max existing rank + 1, or 0 for an empty value list.
func nextValueRank(tx *gorm.DB, attributeID uint) (int, error) {
	var max *int
	err := tx.Model(&model.AttributeValue{}).
		Where("attribute_id = ?", attributeID).
		Select("MAX(sort_order)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return ordering.NextRank(max), nil
}

func (r *attributeRepository) FindValueByID(id uint) (*model.AttributeValue, error) {
	var value model.AttributeValue
	if err := r.db.Preload("Attribute").First(&value, id).Error; err != nil {
		logger.Error("Failed to find attribute value by ID", err, map[string]interface{}{
			"value_id": id,
		})
		return nil, err
	}
	return &value, nil
}

func (r *attributeRepository) FindValues(attributeID uint) ([]model.AttributeValue, error) {
	var values []model.AttributeValue
	err := r.db.
		Where("attribute_id = ?", attributeID).
		Order("sort_order ASC, id ASC").
		Find(&values).Error
	if err != nil {
		logger.Error("Failed to find attribute values", err, map[string]interface{}{
			"attribute_id": attributeID,
		})
		return nil, err
	}
	return values, nil
}

func (r *attributeRepository) FindValueSlugs(attributeID uint) ([]string, error) {
	var slugs []string
	err := r.db.Model(&model.AttributeValue{}).
		Where("attribute_id = ?", attributeID).
		Pluck("slug", &slugs).Error
	if err != nil {
		logger.Error("Failed to fetch attribute value slugs", err, map[string]interface{}{
			"attribute_id": attributeID,
		})
		return nil, err
	}
	return slugs, nil
}

func (r *attributeRepository) UpdateValue(value *model.AttributeValue) error {
	logger.Debug("Updating attribute value in database", map[string]interface{}{
		"value_id": value.ID,
		"slug":     value.Slug,
	})

	if err := r.db.Omit("Attribute").Save(value).Error; err != nil {
		logger.Error("Failed to update attribute value in database", err, map[string]interface{}{
			"value_id": value.ID,
		})
		return err
	}
	return nil
}

// DeleteValue removes a value, detaches it from any assignment value-set,
// and compacts the ranks of the values behind it, all in one transaction.
func (r *attributeRepository) DeleteValue(id uint) error {
	logger.Debug("Deleting attribute value from database", map[string]interface{}{
		"value_id": id,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var value model.AttributeValue
		if err := tx.First(&value, id).Error; err != nil {
			return err
		}

		if err := detachValuesFromAssignments(tx, []uint{id}); err != nil {
			return err
		}

		if err := tx.Delete(&model.AttributeValue{}, id).Error; err != nil {
			return err
		}

		if value.SortOrder == nil {
			return nil
		}
		return tx.Model(&model.AttributeValue{}).
			Where("attribute_id = ? AND sort_order > ?", value.AttributeID, *value.SortOrder).
			Update("sort_order", gorm.Expr("sort_order - 1")).Error
	})
	if err != nil {
		logger.Error("Failed to delete attribute value from database", err, map[string]interface{}{
			"value_id": id,
		})
		return err
	}
	return nil
}

// ReorderValues recomputes the full dense rank sequence of an attribute's
// values after applying the given moves.
func (r *attributeRepository) ReorderValues(attributeID uint, moves []ordering.Move) error {
	logger.Debug("Reordering attribute values", map[string]interface{}{
		"attribute_id": attributeID,
		"move_count":   len(moves),
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Model(&model.AttributeValue{}).
			Where("attribute_id = ?", attributeID).
			Order("sort_order ASC, id ASC").
			Pluck("id", &ids).Error; err != nil {
			return err
		}

		reordered, err := ordering.Reorder(ids, moves)
		if err != nil {
			return err
		}

		return renumberValues(tx, reordered)
	})
	if err != nil {
		logger.Error("Failed to reorder attribute values", err, map[string]interface{}{
			"attribute_id": attributeID,
		})
		return err
	}
	return nil
}

func renumberValues(tx *gorm.DB, ids []uint) error {
	for index, id := range ids {
		if err := tx.Model(&model.AttributeValue{}).
			Where("id = ?", id).
			Update("sort_order", index).Error; err != nil {
			return err
		}
	}
	return nil
}
