package service

import (
	"errors"
	"fmt"

	"github.com/hanifn/catalog-backend/internal/app/model"
	"github.com/hanifn/catalog-backend/internal/app/repository"
	"github.com/hanifn/catalog-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrVariantNotFound = errors.New("product variant not found")
)

type ProductInput struct {
	Name          string
	Slug          string
	Description   string
	ProductTypeID uint
	IsPublished   bool
	ImageURL      string
	Attributes    []AttributeValueInput
}

type VariantInput struct {
	SKU            string
	Price          int
	Cost           int
	Weight         int
	Quantity       int
	TrackInventory bool
	Attributes     []AttributeValueInput
}

type ProductListOptions struct {
	Search        string
	ProductTypeID uint
	IsPublished   *bool
	Limit         int
	Offset        int
}

type ProductService interface {
	ListProducts(opts ProductListOptions) ([]model.Product, error)
	GetProductByID(id uint) (*model.Product, error)
	CreateProduct(input ProductInput) (*model.Product, error)
	UpdateProduct(id uint, input ProductInput) (*model.Product, error)
	DeleteProduct(id uint) error

	CreateVariant(productID uint, input VariantInput) (*model.ProductVariant, error)
	UpdateVariant(variantID uint, input VariantInput) (*model.ProductVariant, error)
	DeleteVariant(variantID uint) error
}

type productService struct {
	productRepo     repository.ProductRepository
	variantRepo     repository.VariantRepository
	productTypeRepo repository.ProductTypeRepository
	db              *gorm.DB
}

func NewProductService(
	productRepo repository.ProductRepository,
	variantRepo repository.VariantRepository,
	productTypeRepo repository.ProductTypeRepository,
	db *gorm.DB,
) ProductService {
	return &productService{
		productRepo:     productRepo,
		variantRepo:     variantRepo,
		productTypeRepo: productTypeRepo,
		db:              db,
	}
}

func (s *productService) ListProducts(opts ProductListOptions) ([]model.Product, error) {
	logger.Debug("Listing products", map[string]interface{}{
		"search":          opts.Search,
		"product_type_id": opts.ProductTypeID,
		"limit":           opts.Limit,
		"offset":          opts.Offset,
	})

	return s.productRepo.FindAll(repository.ProductFilter{
		Search:        opts.Search,
		ProductTypeID: opts.ProductTypeID,
		IsPublished:   opts.IsPublished,
		Limit:         opts.Limit,
		Offset:        opts.Offset,
	})
}

func (s *productService) GetProductByID(id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

// CreateProduct validates the attribute input against the product type's
// product-role schema before the product row or any assignment is written.
func (s *productService) CreateProduct(input ProductInput) (*model.Product, error) {
	logger.Info("Creating product", map[string]interface{}{
		"name":            input.Name,
		"product_type_id": input.ProductTypeID,
	})

	bindings, err := s.productBindings(input.ProductTypeID)
	if err != nil {
		return nil, err
	}

	resolved, err := cleanProductAttributes(bindings, input.Attributes)
	if err != nil {
		return nil, err
	}

	product := model.Product{
		ProductTypeID: input.ProductTypeID,
		Name:          input.Name,
		Slug:          attributeSlug(input.Slug, input.Name),
		Description:   input.Description,
		IsPublished:   input.IsPublished,
		ImageURL:      input.ImageURL,
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during product creation, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"name": input.Name,
			})
		}
	}()

	if err := tx.Create(&product).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := saveProductAttributes(tx, product.ID, resolved); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	logger.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"slug":       product.Slug,
	})
	return s.GetProductByID(product.ID)
}

func (s *productService) UpdateProduct(id uint, input ProductInput) (*model.Product, error) {
	logger.Info("Updating product", map[string]interface{}{
		"product_id": id,
	})

	product, err := s.GetProductByID(id)
	if err != nil {
		return nil, err
	}

	// A nil attributes input leaves the existing assignments untouched; the
	// resolver only runs when the caller sends attributes, even empty ones.
	// The product type is fixed at creation, so attribute input always
	// resolves against the type the product already has.
	var resolved []resolvedAssignment
	if input.Attributes != nil {
		bindings, err := s.productBindings(product.ProductTypeID)
		if err != nil {
			return nil, err
		}
		resolved, err = cleanProductAttributes(bindings, input.Attributes)
		if err != nil {
			return nil, err
		}
	}

	product.Name = input.Name
	product.Slug = attributeSlug(input.Slug, input.Name)
	product.Description = input.Description
	product.IsPublished = input.IsPublished
	if input.ImageURL != "" {
		product.ImageURL = input.ImageURL
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during product update, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"product_id": id,
			})
		}
	}()

	err = tx.Omit("ProductType", "Variants", "Attributes").Save(product).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if input.Attributes != nil {
		if err := saveProductAttributes(tx, product.ID, resolved); err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return s.GetProductByID(id)
}

func (s *productService) DeleteProduct(id uint) error {
	logger.Info("Deleting product", map[string]interface{}{
		"product_id": id,
	})

	if _, err := s.GetProductByID(id); err != nil {
		return err
	}
	return s.productRepo.Delete(id)
}

// CreateVariant requires the product type to have variants enabled, full
// coverage of the variant-role schema, and a value combination no sibling
// variant already uses. The cached minimal price is refreshed in the same
// transaction.
func (s *productService) CreateVariant(productID uint, input VariantInput) (*model.ProductVariant, error) {
	logger.Info("Creating product variant", map[string]interface{}{
		"product_id": productID,
		"sku":        input.SKU,
	})

	product, err := s.GetProductByID(productID)
	if err != nil {
		return nil, err
	}
	if !product.ProductType.HasVariants {
		return nil, ErrVariantsDisabled
	}

	bindings, err := s.variantBindings(product.ProductTypeID)
	if err != nil {
		return nil, err
	}

	resolved, err := cleanVariantAttributes(bindings, input.Attributes)
	if err != nil {
		return nil, err
	}

	variant := model.ProductVariant{
		ProductID:      productID,
		SKU:            input.SKU,
		Price:          input.Price,
		Cost:           input.Cost,
		Weight:         input.Weight,
		Quantity:       input.Quantity,
		TrackInventory: input.TrackInventory,
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during variant creation, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"product_id": productID,
			})
		}
	}()

	if err := checkVariantUniqueness(tx, productID, 0, resolved); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Create(&variant).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := saveVariantAttributes(tx, variant.ID, resolved); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := refreshMinimalPrice(tx, productID); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	logger.Info("Product variant created", map[string]interface{}{
		"variant_id": variant.ID,
		"sku":        variant.SKU,
	})
	return s.getVariant(variant.ID)
}

func (s *productService) UpdateVariant(variantID uint, input VariantInput) (*model.ProductVariant, error) {
	logger.Info("Updating product variant", map[string]interface{}{
		"variant_id": variantID,
	})

	variant, err := s.getVariant(variantID)
	if err != nil {
		return nil, err
	}
	product, err := s.GetProductByID(variant.ProductID)
	if err != nil {
		return nil, err
	}

	// As with products, a nil attributes input keeps the variant's current
	// combination; the unchanged combination only collides with itself, so
	// the uniqueness check is skipped too.
	var resolved []resolvedAssignment
	if input.Attributes != nil {
		bindings, err := s.variantBindings(product.ProductTypeID)
		if err != nil {
			return nil, err
		}
		resolved, err = cleanVariantAttributes(bindings, input.Attributes)
		if err != nil {
			return nil, err
		}
	}

	variant.SKU = input.SKU
	variant.Price = input.Price
	variant.Cost = input.Cost
	variant.Weight = input.Weight
	variant.Quantity = input.Quantity
	variant.TrackInventory = input.TrackInventory

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during variant update, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"variant_id": variantID,
			})
		}
	}()

	if input.Attributes != nil {
		if err := checkVariantUniqueness(tx, variant.ProductID, variantID, resolved); err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	err = tx.Omit("Product", "Attributes").Save(variant).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if input.Attributes != nil {
		if err := saveVariantAttributes(tx, variant.ID, resolved); err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if err := refreshMinimalPrice(tx, variant.ProductID); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return s.getVariant(variantID)
}

func (s *productService) DeleteVariant(variantID uint) error {
	logger.Info("Deleting product variant", map[string]interface{}{
		"variant_id": variantID,
	})

	variant, err := s.getVariant(variantID)
	if err != nil {
		return err
	}
	if err := s.variantRepo.Delete(variantID); err != nil {
		return err
	}
	return s.productRepo.RefreshMinimalVariantPrice(variant.ProductID)
}

func (s *productService) getVariant(id uint) (*model.ProductVariant, error) {
	variant, err := s.variantRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVariantNotFound
		}
		return nil, err
	}
	return variant, nil
}

func (s *productService) productBindings(productTypeID uint) ([]model.AttributeProduct, error) {
	bindings, err := s.productTypeRepo.ProductBindings(productTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductTypeNotFound
		}
		return nil, err
	}
	return bindings, nil
}

func (s *productService) variantBindings(productTypeID uint) ([]model.AttributeVariant, error) {
	bindings, err := s.productTypeRepo.VariantBindings(productTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductTypeNotFound
		}
		return nil, err
	}
	return bindings, nil
}

func refreshMinimalPrice(tx *gorm.DB, productID uint) error {
	var min *int
	err := tx.Model(&model.ProductVariant{}).
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
	return tx.Model(&model.Product{}).
		Where("id = ?", productID).
		Update("minimal_variant_price", price).Error
}
