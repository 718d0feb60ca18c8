package repository

import (
	"fmt"

	"github.com/hanifn/catalog-backend/internal/app/model"
	"github.com/hanifn/catalog-backend/pkg/logger"
	"gorm.io/gorm"
)

type ProductFilter struct {
	Search        string
	ProductTypeID uint
	IsPublished   *bool
	Limit         int
	Offset        int
}

type ProductRepository interface {
	Create(product *model.Product) error
	FindAll(filter ProductFilter) ([]model.Product, error)
	FindByID(id uint) (*model.Product, error)
	Update(product *model.Product) error
	Delete(id uint) error
	RefreshMinimalVariantPrice(productID uint) error
	RefreshAllMinimalVariantPrices() (int64, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"name": product.Name,
		"slug": product.Slug,
	})

	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"name": product.Name,
		})
		return err
	}
	return nil
}

func (r *productRepository) baseQuery() *gorm.DB {
	return r.db.Model(&model.Product{}).
		Preload("ProductType").
		Preload("Variants").
		Preload("Attributes.Assignment.Attribute").
		Preload("Attributes.Values", func(db *gorm.DB) *gorm.DB {
			return db.Order("attribute_values.sort_order ASC, attribute_values.id ASC")
		})
}

func (r *productRepository) FindAll(filter ProductFilter) ([]model.Product, error) {
	query := r.baseQuery()

	if filter.Search != "" {
		like := fmt.Sprintf("%%%s%%", filter.Search)
		query = query.Where("products.name LIKE ? OR products.slug LIKE ?", like, like)
	}
	if filter.ProductTypeID != 0 {
		query = query.Where("products.product_type_id = ?", filter.ProductTypeID)
	}
	if filter.IsPublished != nil {
		query = query.Where("products.is_published = ?", *filter.IsPublished)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var products []model.Product
	if err := query.Order("products.name ASC").Find(&products).Error; err != nil {
		logger.Error("Failed to find products", err, map[string]interface{}{
			"search": filter.Search,
		})
		return nil, err
	}
	return products, nil
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	var product model.Product
	err := r.baseQuery().
		Preload("ProductType.ProductAttributes", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		Preload("ProductType.ProductAttributes.Attribute").
		Preload("ProductType.VariantAttributes", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		Preload("ProductType.VariantAttributes.Attribute").
		First(&product, id).Error
	if err != nil {
		logger.Error("Failed to find product by ID", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) Update(product *model.Product) error {
	logger.Debug("Updating product in database", map[string]interface{}{
		"product_id": product.ID,
	})

	err := r.db.
		Omit("ProductType", "Variants", "Attributes").
		Save(product).Error
	if err != nil {
		logger.Error("Failed to update product in database", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}
	return nil
}

// Delete removes a product along with its variants and every assignment row
// either of them carries.
func (r *productRepository) Delete(id uint) error {
	logger.Debug("Deleting product from database", map[string]interface{}{
		"product_id": id,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var variantIDs []uint
		if err := tx.Model(&model.ProductVariant{}).
			Where("product_id = ?", id).
			Pluck("id", &variantIDs).Error; err != nil {
			return err
		}
		if err := deleteVariantAssignmentsByVariant(tx, variantIDs); err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&model.ProductVariant{}).Error; err != nil {
			return err
		}

		var assignmentIDs []uint
		if err := tx.Model(&model.AssignedProductAttribute{}).
			Where("product_id = ?", id).
			Pluck("id", &assignmentIDs).Error; err != nil {
			return err
		}
		if len(assignmentIDs) > 0 {
			if err := tx.Exec(
				"DELETE FROM assigned_product_attribute_values WHERE assigned_product_attribute_id IN ?", assignmentIDs,
			).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", assignmentIDs).Delete(&model.AssignedProductAttribute{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&model.Product{}, id).Error
	})
	if err != nil {
		logger.Error("Failed to delete product from database", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}
	return nil
}

func deleteVariantAssignmentsByVariant(tx *gorm.DB, variantIDs []uint) error {
	if len(variantIDs) == 0 {
		return nil
	}
	var assignmentIDs []uint
	if err := tx.Model(&model.AssignedVariantAttribute{}).
		Where("variant_id IN ?", variantIDs).
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

// RefreshMinimalVariantPrice recomputes the cached cheapest variant price of
// one product. Products with no variants fall back to zero.
func (r *productRepository) RefreshMinimalVariantPrice(productID uint) error {
	var min *int
	err := r.db.Model(&model.ProductVariant{}).
		Where("product_id = ?", productID).
		Select("MIN(price)").
		Scan(&min).Error
	if err != nil {
		return err
	}

	price := 0
	if min != nil {
		price = *min
	}
	return r.db.Model(&model.Product{}).
		Where("id = ?", productID).
		Update("minimal_variant_price", price).Error
}

// RefreshAllMinimalVariantPrices brings the cached price of every product
// back in line with its variants. Returns how many rows changed.
func (r *productRepository) RefreshAllMinimalVariantPrices() (int64, error) {
	result := r.db.Exec(`
		UPDATE products
		SET minimal_variant_price = COALESCE(
			(SELECT MIN(pv.price) FROM product_variants pv WHERE pv.product_id = products.id), 0)
		WHERE minimal_variant_price <> COALESCE(
			(SELECT MIN(pv.price) FROM product_variants pv WHERE pv.product_id = products.id), 0)`)
	if result.Error != nil {
		logger.Error("Failed to refresh minimal variant prices", result.Error, nil)
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
