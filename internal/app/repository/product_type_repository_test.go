package repository

import (
	"testing"

	"github.com/hanifn/catalog-backend/internal/app/model"
	"github.com/hanifn/catalog-backend/internal/db"
	"github.com/hanifn/catalog-backend/pkg/ordering"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupProductTypeRepositoryTest(t *testing.T) (ProductTypeRepository, AttributeRepository, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	return NewProductTypeRepository(testDB), NewAttributeRepository(testDB), testDB
}

func TestProductTypeRepository_CreateBindingsAssignsRanksPerRole(t *testing.T) {
	repo, attributeRepo, _ := setupProductTypeRepositoryTest(t)

	color := createTestAttribute(t, attributeRepo, "color")
	size := createTestAttribute(t, attributeRepo, "size")
	material := createTestAttribute(t, attributeRepo, "material")

	productType := &model.ProductType{Name: "Shirt", Slug: "shirt", HasVariants: true}
	require.NoError(t, repo.Create(productType))

	// Product and variant roles rank independently
	require.NoError(t, repo.CreateBindings(productType.ID, []uint{color.ID, material.ID}, []uint{size.ID}))

	productBindings, err := repo.ProductBindings(productType.ID)
	require.NoError(t, err)
	require.Len(t, productBindings, 2)
	assert.Equal(t, 0, *productBindings[0].SortOrder)
	assert.Equal(t, 1, *productBindings[1].SortOrder)
	assert.Equal(t, color.ID, productBindings[0].AttributeID)

	variantBindings, err := repo.VariantBindings(productType.ID)
	require.NoError(t, err)
	require.Len(t, variantBindings, 1)
	assert.Equal(t, 0, *variantBindings[0].SortOrder)
}

func TestProductTypeRepository_CreateBindingsAppendsAfterExisting(t *testing.T) {
	repo, attributeRepo, _ := setupProductTypeRepositoryTest(t)

	color := createTestAttribute(t, attributeRepo, "color")
	material := createTestAttribute(t, attributeRepo, "material")

	productType := &model.ProductType{Name: "Shirt", Slug: "shirt"}
	require.NoError(t, repo.Create(productType))

	require.NoError(t, repo.CreateBindings(productType.ID, []uint{color.ID}, nil))
	require.NoError(t, repo.CreateBindings(productType.ID, []uint{material.ID}, nil))

	bindings, err := repo.ProductBindings(productType.ID)
	require.NoError(t, err)
	require.Len(t, bindings, 2)
	assert.Equal(t, 1, *bindings[1].SortOrder)
	assert.Equal(t, material.ID, bindings[1].AttributeID)
}

func TestProductTypeRepository_AssignedAttributesFindsBothRoles(t *testing.T) {
	repo, attributeRepo, _ := setupProductTypeRepositoryTest(t)

	color := createTestAttribute(t, attributeRepo, "color")
	size := createTestAttribute(t, attributeRepo, "size")
	unbound := createTestAttribute(t, attributeRepo, "brand")

	productType := &model.ProductType{Name: "Shirt", Slug: "shirt", HasVariants: true}
	require.NoError(t, repo.Create(productType))
	require.NoError(t, repo.CreateBindings(productType.ID, []uint{color.ID}, []uint{size.ID}))

	assigned, err := repo.AssignedAttributes(productType.ID, []uint{color.ID, size.ID, unbound.ID})
	require.NoError(t, err)
	require.Len(t, assigned, 2)

	ids := []uint{assigned[0].ID, assigned[1].ID}
	assert.Contains(t, ids, color.ID)
	assert.Contains(t, ids, size.ID)
	assert.NotContains(t, ids, unbound.ID)
}

func TestProductTypeRepository_DeleteBindingsCompactsAndCascades(t *testing.T) {
	repo, attributeRepo, testDB := setupProductTypeRepositoryTest(t)

	color := createTestAttribute(t, attributeRepo, "color")
	material := createTestAttribute(t, attributeRepo, "material")
	brand := createTestAttribute(t, attributeRepo, "brand")

	productType := &model.ProductType{Name: "Shirt", Slug: "shirt"}
	require.NoError(t, repo.Create(productType))
	require.NoError(t, repo.CreateBindings(productType.ID, []uint{color.ID, material.ID, brand.ID}, nil))

	bindings, err := repo.ProductBindings(productType.ID)
	require.NoError(t, err)

	product := &model.Product{ProductTypeID: productType.ID, Name: "Tee", Slug: "tee"}
	require.NoError(t, testDB.Create(product).Error)
	assignment := &model.AssignedProductAttribute{ProductID: product.ID, AssignmentID: bindings[1].ID}
	require.NoError(t, testDB.Create(assignment).Error)

	// Unassign "material" (rank 1); "brand" compacts from 2 to 1
	require.NoError(t, repo.DeleteBindingsByAttribute(productType.ID, []uint{material.ID}))

	remaining, err := repo.ProductBindings(productType.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	assert.Equal(t, color.ID, remaining[0].AttributeID)
	assert.Equal(t, 0, *remaining[0].SortOrder)
	assert.Equal(t, brand.ID, remaining[1].AttributeID)
	assert.Equal(t, 1, *remaining[1].SortOrder)

	var assignmentCount int64
	testDB.Model(&model.AssignedProductAttribute{}).Where("id = ?", assignment.ID).Count(&assignmentCount)
	assert.Zero(t, assignmentCount)
}

func TestProductTypeRepository_DeleteManyBindingsCompactsToZero(t *testing.T) {
	repo, attributeRepo, _ := setupProductTypeRepositoryTest(t)

	color := createTestAttribute(t, attributeRepo, "color")
	material := createTestAttribute(t, attributeRepo, "material")
	brand := createTestAttribute(t, attributeRepo, "brand")

	productType := &model.ProductType{Name: "Shirt", Slug: "shirt"}
	require.NoError(t, repo.Create(productType))
	require.NoError(t, repo.CreateBindings(productType.ID, []uint{color.ID, material.ID, brand.ID}, nil))

	// Removing ranks 0 and 1 together must renumber the survivor to 0
	require.NoError(t, repo.DeleteBindingsByAttribute(productType.ID, []uint{color.ID, material.ID}))

	remaining, err := repo.ProductBindings(productType.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, brand.ID, remaining[0].AttributeID)
	require.NotNil(t, remaining[0].SortOrder)
	assert.Equal(t, 0, *remaining[0].SortOrder)
}

func TestProductTypeRepository_ReorderProductBindings(t *testing.T) {
	repo, attributeRepo, _ := setupProductTypeRepositoryTest(t)

	color := createTestAttribute(t, attributeRepo, "color")
	material := createTestAttribute(t, attributeRepo, "material")
	brand := createTestAttribute(t, attributeRepo, "brand")

	productType := &model.ProductType{Name: "Shirt", Slug: "shirt"}
	require.NoError(t, repo.Create(productType))
	require.NoError(t, repo.CreateBindings(productType.ID, []uint{color.ID, material.ID, brand.ID}, nil))

	bindings, err := repo.ProductBindings(productType.ID)
	require.NoError(t, err)

	err = repo.ReorderProductBindings(productType.ID, []ordering.Move{
		{ID: bindings[2].ID, Position: 0},
	})
	require.NoError(t, err)

	reordered, err := repo.ProductBindings(productType.ID)
	require.NoError(t, err)
	assert.Equal(t, brand.ID, reordered[0].AttributeID)
	assert.Equal(t, color.ID, reordered[1].AttributeID)
	assert.Equal(t, material.ID, reordered[2].AttributeID)
	for i, binding := range reordered {
		assert.Equal(t, i, *binding.SortOrder)
	}
}

func TestProductTypeRepository_DeleteRemovesBindingsAndAssignments(t *testing.T) {
	repo, attributeRepo, testDB := setupProductTypeRepositoryTest(t)

	color := createTestAttribute(t, attributeRepo, "color")
	size := createTestAttribute(t, attributeRepo, "size")

	productType := &model.ProductType{Name: "Shirt", Slug: "shirt", HasVariants: true}
	require.NoError(t, repo.Create(productType))
	require.NoError(t, repo.CreateBindings(productType.ID, []uint{color.ID}, []uint{size.ID}))

	require.NoError(t, repo.Delete(productType.ID))

	var productBindings, variantBindings int64
	testDB.Model(&model.AttributeProduct{}).Where("product_type_id = ?", productType.ID).Count(&productBindings)
	testDB.Model(&model.AttributeVariant{}).Where("product_type_id = ?", productType.ID).Count(&variantBindings)
	assert.Zero(t, productBindings)
	assert.Zero(t, variantBindings)

	// Attributes themselves survive
	var attributeCount int64
	testDB.Model(&model.Attribute{}).Count(&attributeCount)
	assert.Equal(t, int64(2), attributeCount)
}
