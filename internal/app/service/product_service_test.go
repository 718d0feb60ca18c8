package service

import (
	"testing"

	"github.com/hanifn/catalog-backend/internal/app/model"
	"github.com/hanifn/catalog-backend/internal/app/repository"
	"github.com/hanifn/catalog-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type productServiceFixture struct {
	products     ProductService
	productTypes ProductTypeService
	attributes   AttributeService
	db           *gorm.DB

	material    *model.Attribute
	size        *model.Attribute
	productType *model.ProductType
}

// setupProductServiceTest builds a product type with Material bound in the
// product role (required) and Size bound in the variant role.
func setupProductServiceTest(t *testing.T) *productServiceFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	attributeRepo := repository.NewAttributeRepository(testDB)
	productTypeRepo := repository.NewProductTypeRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	variantRepo := repository.NewVariantRepository(testDB)

	f := &productServiceFixture{
		products:     NewProductService(productRepo, variantRepo, productTypeRepo, testDB),
		productTypes: NewProductTypeService(productTypeRepo, attributeRepo),
		attributes:   NewAttributeService(attributeRepo),
		db:           testDB,
	}

	f.material, err = f.attributes.CreateAttribute(CreateAttributeInput{
		AttributeInput: AttributeInput{
			Name:          "Material",
			ValueRequired: true,
		},
		Values: []string{"Cotton", "Polyester"},
	})
	require.NoError(t, err)

	f.size, err = f.attributes.CreateAttribute(CreateAttributeInput{
		AttributeInput: AttributeInput{Name: "Size"},
		Values:         []string{"S", "M", "L"},
	})
	require.NoError(t, err)

	f.productType, err = f.productTypes.CreateProductType(ProductTypeInput{
		Name:        "T-Shirt",
		HasVariants: true,
	})
	require.NoError(t, err)

	_, err = f.productTypes.AssignAttributes(f.productType.ID, AssignAttributesInput{
		Operations: []AssignOperation{
			{AttributeID: f.material.ID, Type: model.AttributeTypeProduct},
			{AttributeID: f.size.ID, Type: model.AttributeTypeVariant},
		},
	})
	require.NoError(t, err)

	return f
}

func slugRef(s string) *string { return &s }

func (f *productServiceFixture) createProduct(t *testing.T, values ...string) *model.Product {
	product, err := f.products.CreateProduct(ProductInput{
		Name:          "Basic Tee",
		ProductTypeID: f.productType.ID,
		IsPublished:   true,
		Attributes: []AttributeValueInput{
			{Slug: slugRef("material"), Values: values},
		},
	})
	require.NoError(t, err)
	return product
}

func assignedValueSlugs(product *model.Product, attributeID uint) []string {
	for _, assigned := range product.Attributes {
		if assigned.Assignment.AttributeID != attributeID {
			continue
		}
		slugs := make([]string, len(assigned.Values))
		for i, value := range assigned.Values {
			slugs[i] = value.Slug
		}
		return slugs
	}
	return nil
}

func TestProductService_CreateProductAssignsExistingValue(t *testing.T) {
	f := setupProductServiceTest(t)

	product := f.createProduct(t, "Cotton")

	assert.Equal(t, []string{"cotton"}, assignedValueSlugs(product, f.material.ID))

	// The existing "Cotton" value was reused, not duplicated
	var valueCount int64
	f.db.Model(&model.AttributeValue{}).Where("attribute_id = ?", f.material.ID).Count(&valueCount)
	assert.Equal(t, int64(2), valueCount)
}

func TestProductService_CreateProductCreatesMissingValue(t *testing.T) {
	f := setupProductServiceTest(t)

	product := f.createProduct(t, "Organic Linen")

	assert.Equal(t, []string{"organic-linen"}, assignedValueSlugs(product, f.material.ID))

	// The new value keeps the raw name and lands at the end of the list
	var value model.AttributeValue
	require.NoError(t, f.db.Where("attribute_id = ? AND slug = ?", f.material.ID, "organic-linen").First(&value).Error)
	assert.Equal(t, "Organic Linen", value.Name)
	require.NotNil(t, value.SortOrder)
	assert.Equal(t, 2, *value.SortOrder)
}

func TestProductService_CreateProductResolvesByID(t *testing.T) {
	f := setupProductServiceTest(t)

	product, err := f.products.CreateProduct(ProductInput{
		Name:          "Basic Tee",
		ProductTypeID: f.productType.ID,
		Attributes: []AttributeValueInput{
			{ID: &f.material.ID, Values: []string{"Cotton"}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"cotton"}, assignedValueSlugs(product, f.material.ID))
}

func TestProductService_CreateProductUnresolvedReference(t *testing.T) {
	f := setupProductServiceTest(t)

	// Size is bound in the variant role, so it is not a product-role candidate
	_, err := f.products.CreateProduct(ProductInput{
		Name:          "Basic Tee",
		ProductTypeID: f.productType.ID,
		Attributes: []AttributeValueInput{
			{Slug: slugRef("material"), Values: []string{"Cotton"}},
			{Slug: slugRef("size"), Values: []string{"S"}},
		},
	})
	require.Error(t, err)

	var unresolved *UnresolvedReferencesError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, []string{"slug=size"}, unresolved.References)

	// Nothing was written
	var productCount int64
	f.db.Model(&model.Product{}).Count(&productCount)
	assert.Zero(t, productCount)
}

func TestProductService_CreateProductReferenceShapes(t *testing.T) {
	f := setupProductServiceTest(t)

	_, err := f.products.CreateProduct(ProductInput{
		Name:          "Basic Tee",
		ProductTypeID: f.productType.ID,
		Attributes: []AttributeValueInput{
			{Values: []string{"Cotton"}},
		},
	})
	assert.ErrorIs(t, err, ErrMissingAttributeReference)

	_, err = f.products.CreateProduct(ProductInput{
		Name:          "Basic Tee",
		ProductTypeID: f.productType.ID,
		Attributes: []AttributeValueInput{
			{ID: &f.material.ID, Slug: slugRef("material"), Values: []string{"Cotton"}},
		},
	})
	assert.ErrorIs(t, err, ErrAmbiguousAttributeReference)
}

func TestProductService_CreateProductMissingRequired(t *testing.T) {
	f := setupProductServiceTest(t)

	// Material is required but absent from the input entirely
	_, err := f.products.CreateProduct(ProductInput{
		Name:          "Basic Tee",
		ProductTypeID: f.productType.ID,
	})
	require.Error(t, err)

	var missing *MissingRequiredAttributesError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "material", missing.Attributes[0].Slug)

	// Supplying it with an empty value list fails the same way
	_, err = f.products.CreateProduct(ProductInput{
		Name:          "Basic Tee",
		ProductTypeID: f.productType.ID,
		Attributes: []AttributeValueInput{
			{Slug: slugRef("material")},
		},
	})
	require.ErrorAs(t, err, &missing)
}

func TestProductService_CreateProductDropdownSingleValue(t *testing.T) {
	f := setupProductServiceTest(t)

	_, err := f.products.CreateProduct(ProductInput{
		Name:          "Basic Tee",
		ProductTypeID: f.productType.ID,
		Attributes: []AttributeValueInput{
			{Slug: slugRef("material"), Values: []string{"Cotton", "Polyester"}},
		},
	})
	require.Error(t, err)

	var tooMany *TooManyValuesError
	require.ErrorAs(t, err, &tooMany)
	assert.Equal(t, "material", tooMany.Attributes[0].Slug)
}

func TestProductService_CreateProductMultiselectManyValues(t *testing.T) {
	f := setupProductServiceTest(t)

	tags, err := f.attributes.CreateAttribute(CreateAttributeInput{
		AttributeInput: AttributeInput{
			Name:      "Tags",
			InputType: model.InputTypeMultiselect,
		},
	})
	require.NoError(t, err)
	_, err = f.productTypes.AssignAttributes(f.productType.ID, AssignAttributesInput{
		Operations: []AssignOperation{{AttributeID: tags.ID, Type: model.AttributeTypeProduct}},
	})
	require.NoError(t, err)

	product, err := f.products.CreateProduct(ProductInput{
		Name:          "Basic Tee",
		ProductTypeID: f.productType.ID,
		Attributes: []AttributeValueInput{
			{Slug: slugRef("material"), Values: []string{"Cotton"}},
			{Slug: slugRef("tags"), Values: []string{"Summer", "Sale"}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"summer", "sale"}, assignedValueSlugs(product, tags.ID))
}

func TestProductService_CreateProductBlankValue(t *testing.T) {
	f := setupProductServiceTest(t)

	_, err := f.products.CreateProduct(ProductInput{
		Name:          "Basic Tee",
		ProductTypeID: f.productType.ID,
		Attributes: []AttributeValueInput{
			{Slug: slugRef("material"), Values: []string{"   "}},
		},
	})
	assert.ErrorIs(t, err, ErrBlankAttributeValue)
}

func TestProductService_UpdateProductReplacesValues(t *testing.T) {
	f := setupProductServiceTest(t)

	product := f.createProduct(t, "Cotton")

	updated, err := f.products.UpdateProduct(product.ID, ProductInput{
		Name:        "Basic Tee",
		IsPublished: true,
		Attributes: []AttributeValueInput{
			{Slug: slugRef("material"), Values: []string{"Polyester"}},
		},
	})
	require.NoError(t, err)

	// The old value is dropped from the assignment, not appended to it
	assert.Equal(t, []string{"polyester"}, assignedValueSlugs(updated, f.material.ID))

	// One assignment row per (product, binding), even across updates
	var assignmentCount int64
	f.db.Model(&model.AssignedProductAttribute{}).Where("product_id = ?", product.ID).Count(&assignmentCount)
	assert.Equal(t, int64(1), assignmentCount)
}

func TestProductService_UpdateProductWithoutAttributesKeepsAssignments(t *testing.T) {
	f := setupProductServiceTest(t)

	product := f.createProduct(t, "Cotton")

	// A rename that sends no attributes must not re-run the resolver even
	// though Material is required
	updated, err := f.products.UpdateProduct(product.ID, ProductInput{
		Name:        "Premium Tee",
		IsPublished: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "Premium Tee", updated.Name)
	assert.Equal(t, []string{"cotton"}, assignedValueSlugs(updated, f.material.ID))
}

func TestProductService_CreateVariant(t *testing.T) {
	f := setupProductServiceTest(t)

	product := f.createProduct(t, "Cotton")

	variant, err := f.products.CreateVariant(product.ID, VariantInput{
		SKU:   "TEE-S",
		Price: 1200,
		Attributes: []AttributeValueInput{
			{Slug: slugRef("size"), Values: []string{"S"}},
		},
	})
	require.NoError(t, err)
	require.Len(t, variant.Attributes, 1)

	// Cached minimal price follows the cheapest variant
	reloaded, err := f.products.GetProductByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, 1200, reloaded.MinimalVariantPrice)
}

func TestProductService_CreateVariantIncompleteCoverage(t *testing.T) {
	f := setupProductServiceTest(t)

	product := f.createProduct(t, "Cotton")

	_, err := f.products.CreateVariant(product.ID, VariantInput{
		SKU: "TEE-X",
	})
	require.Error(t, err)

	var incomplete *IncompleteVariantAttributesError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, "size", incomplete.Attributes[0].Slug)

	// Two values on one variant attribute is just as invalid
	_, err = f.products.CreateVariant(product.ID, VariantInput{
		SKU: "TEE-X",
		Attributes: []AttributeValueInput{
			{Slug: slugRef("size"), Values: []string{"S", "M"}},
		},
	})
	require.ErrorAs(t, err, &incomplete)
}

func TestProductService_CreateVariantDuplicateCombination(t *testing.T) {
	f := setupProductServiceTest(t)

	product := f.createProduct(t, "Cotton")

	_, err := f.products.CreateVariant(product.ID, VariantInput{
		SKU: "TEE-S",
		Attributes: []AttributeValueInput{
			{Slug: slugRef("size"), Values: []string{"S"}},
		},
	})
	require.NoError(t, err)

	_, err = f.products.CreateVariant(product.ID, VariantInput{
		SKU: "TEE-S2",
		Attributes: []AttributeValueInput{
			{Slug: slugRef("size"), Values: []string{"S"}},
		},
	})
	assert.ErrorIs(t, err, ErrDuplicateVariantAttributes)

	// A different combination passes
	_, err = f.products.CreateVariant(product.ID, VariantInput{
		SKU: "TEE-M",
		Attributes: []AttributeValueInput{
			{Slug: slugRef("size"), Values: []string{"M"}},
		},
	})
	assert.NoError(t, err)
}

func TestProductService_UpdateVariantKeepsOwnCombination(t *testing.T) {
	f := setupProductServiceTest(t)

	product := f.createProduct(t, "Cotton")

	variant, err := f.products.CreateVariant(product.ID, VariantInput{
		SKU:   "TEE-S",
		Price: 1000,
		Attributes: []AttributeValueInput{
			{Slug: slugRef("size"), Values: []string{"S"}},
		},
	})
	require.NoError(t, err)

	// Resubmitting the unchanged combination is not a conflict with itself
	updated, err := f.products.UpdateVariant(variant.ID, VariantInput{
		SKU:   "TEE-S",
		Price: 900,
		Attributes: []AttributeValueInput{
			{Slug: slugRef("size"), Values: []string{"S"}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 900, updated.Price)

	reloaded, err := f.products.GetProductByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, 900, reloaded.MinimalVariantPrice)
}

func TestProductService_UpdateVariantWithoutAttributesKeepsCombination(t *testing.T) {
	f := setupProductServiceTest(t)

	product := f.createProduct(t, "Cotton")

	variant, err := f.products.CreateVariant(product.ID, VariantInput{
		SKU:   "TEE-S",
		Price: 1000,
		Attributes: []AttributeValueInput{
			{Slug: slugRef("size"), Values: []string{"S"}},
		},
	})
	require.NoError(t, err)

	// A price-only update sends no attributes; the stored combination stays
	updated, err := f.products.UpdateVariant(variant.ID, VariantInput{
		SKU:   "TEE-S",
		Price: 800,
	})
	require.NoError(t, err)
	assert.Equal(t, 800, updated.Price)
	require.Len(t, updated.Attributes, 1)

	reloaded, err := f.products.GetProductByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, 800, reloaded.MinimalVariantPrice)
}

func TestProductService_UpdateVariantIntoSiblingCombination(t *testing.T) {
	f := setupProductServiceTest(t)

	product := f.createProduct(t, "Cotton")

	_, err := f.products.CreateVariant(product.ID, VariantInput{
		SKU: "TEE-S",
		Attributes: []AttributeValueInput{
			{Slug: slugRef("size"), Values: []string{"S"}},
		},
	})
	require.NoError(t, err)

	medium, err := f.products.CreateVariant(product.ID, VariantInput{
		SKU: "TEE-M",
		Attributes: []AttributeValueInput{
			{Slug: slugRef("size"), Values: []string{"M"}},
		},
	})
	require.NoError(t, err)

	_, err = f.products.UpdateVariant(medium.ID, VariantInput{
		SKU: "TEE-M",
		Attributes: []AttributeValueInput{
			{Slug: slugRef("size"), Values: []string{"S"}},
		},
	})
	assert.ErrorIs(t, err, ErrDuplicateVariantAttributes)
}

func TestProductService_CreateVariantVariantsDisabled(t *testing.T) {
	f := setupProductServiceTest(t)

	simple, err := f.productTypes.CreateProductType(ProductTypeInput{
		Name:        "Gift Card",
		HasVariants: false,
	})
	require.NoError(t, err)

	product, err := f.products.CreateProduct(ProductInput{
		Name:          "Gift Card 50",
		ProductTypeID: simple.ID,
	})
	require.NoError(t, err)

	_, err = f.products.CreateVariant(product.ID, VariantInput{SKU: "GC-50"})
	assert.ErrorIs(t, err, ErrVariantsDisabled)
}

func TestProductService_DeleteVariantRefreshesPrice(t *testing.T) {
	f := setupProductServiceTest(t)

	product := f.createProduct(t, "Cotton")

	cheap, err := f.products.CreateVariant(product.ID, VariantInput{
		SKU:   "TEE-S",
		Price: 800,
		Attributes: []AttributeValueInput{
			{Slug: slugRef("size"), Values: []string{"S"}},
		},
	})
	require.NoError(t, err)
	_, err = f.products.CreateVariant(product.ID, VariantInput{
		SKU:   "TEE-M",
		Price: 1100,
		Attributes: []AttributeValueInput{
			{Slug: slugRef("size"), Values: []string{"M"}},
		},
	})
	require.NoError(t, err)

	require.NoError(t, f.products.DeleteVariant(cheap.ID))

	reloaded, err := f.products.GetProductByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, 1100, reloaded.MinimalVariantPrice)
	assert.Len(t, reloaded.Variants, 1)
}

func TestProductService_DeleteProductCascades(t *testing.T) {
	f := setupProductServiceTest(t)

	product := f.createProduct(t, "Cotton")
	_, err := f.products.CreateVariant(product.ID, VariantInput{
		SKU: "TEE-S",
		Attributes: []AttributeValueInput{
			{Slug: slugRef("size"), Values: []string{"S"}},
		},
	})
	require.NoError(t, err)

	require.NoError(t, f.products.DeleteProduct(product.ID))

	var variants, productAssignments, variantAssignments int64
	f.db.Model(&model.ProductVariant{}).Count(&variants)
	f.db.Model(&model.AssignedProductAttribute{}).Count(&productAssignments)
	f.db.Model(&model.AssignedVariantAttribute{}).Count(&variantAssignments)
	assert.Zero(t, variants)
	assert.Zero(t, productAssignments)
	assert.Zero(t, variantAssignments)

	// Attribute values are shared catalog data and survive
	var valueCount int64
	f.db.Model(&model.AttributeValue{}).Count(&valueCount)
	assert.Equal(t, int64(5), valueCount)
}
