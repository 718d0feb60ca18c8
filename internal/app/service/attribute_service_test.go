package service

import (
	"testing"

	"github.com/hanifn/catalog-backend/internal/app/model"
	"github.com/hanifn/catalog-backend/internal/app/repository"
	"github.com/hanifn/catalog-backend/internal/db"
	"github.com/hanifn/catalog-backend/pkg/ordering"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAttributeServiceTest(t *testing.T) (AttributeService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	attributeRepo := repository.NewAttributeRepository(testDB)
	return NewAttributeService(attributeRepo), testDB
}

func TestAttributeService_CreateAttribute(t *testing.T) {
	service, _ := setupAttributeServiceTest(t)

	attribute, err := service.CreateAttribute(CreateAttributeInput{
		AttributeInput: AttributeInput{
			Name:          "Screen Size",
			ValueRequired: true,
		},
		Values: []string{"13 inch", "15 inch"},
	})
	require.NoError(t, err)

	assert.Equal(t, "screen-size", attribute.Slug)
	assert.Equal(t, model.InputTypeDropdown, attribute.InputType)
	require.Len(t, attribute.Values, 2)
	assert.Equal(t, "13-inch", attribute.Values[0].Slug)
	assert.Equal(t, "13 inch", attribute.Values[0].Name)
	assert.Equal(t, 0, *attribute.Values[0].SortOrder)
	assert.Equal(t, 1, *attribute.Values[1].SortOrder)
}

func TestAttributeService_CreateAttributeInvalidInputType(t *testing.T) {
	service, _ := setupAttributeServiceTest(t)

	_, err := service.CreateAttribute(CreateAttributeInput{
		AttributeInput: AttributeInput{
			Name:      "Color",
			InputType: "checkbox",
		},
	})
	assert.ErrorIs(t, err, ErrInvalidInputType)
}

func TestAttributeService_CreateAttributeDuplicateValues(t *testing.T) {
	service, _ := setupAttributeServiceTest(t)

	// "Red" and "red" collapse to the same slug; both duplicates reported
	_, err := service.CreateAttribute(CreateAttributeInput{
		AttributeInput: AttributeInput{Name: "Color"},
		Values:         []string{"Red", "red", "Blue", "BLUE"},
	})
	require.Error(t, err)

	var duplicates *DuplicateValuesError
	require.ErrorAs(t, err, &duplicates)
	assert.Equal(t, []string{"red", "BLUE"}, duplicates.Names)
}

func TestAttributeService_CreateAttributeBlankValue(t *testing.T) {
	service, _ := setupAttributeServiceTest(t)

	_, err := service.CreateAttribute(CreateAttributeInput{
		AttributeInput: AttributeInput{Name: "Color"},
		Values:         []string{"Red", "   "},
	})
	assert.ErrorIs(t, err, ErrBlankValueName)
}

func TestAttributeService_UpdateAttributeAddAndRemoveValues(t *testing.T) {
	service, _ := setupAttributeServiceTest(t)

	attribute, err := service.CreateAttribute(CreateAttributeInput{
		AttributeInput: AttributeInput{Name: "Color"},
		Values:         []string{"Red", "Green"},
	})
	require.NoError(t, err)

	// Remove "Red" and re-add it in the same call
	updated, err := service.UpdateAttribute(attribute.ID, UpdateAttributeInput{
		AttributeInput: AttributeInput{
			Name:      "Colour",
			InputType: attribute.InputType,
		},
		AddValues:      []string{"Red", "Blue"},
		RemoveValueIDs: []uint{attribute.Values[0].ID},
	})
	require.NoError(t, err)

	assert.Equal(t, "colour", updated.Slug)
	require.Len(t, updated.Values, 3)
	assert.Equal(t, []string{"green", "red", "blue"}, testValueSlugs(updated.Values))
}

func TestAttributeService_UpdateAttributeRejectsExistingValueName(t *testing.T) {
	service, _ := setupAttributeServiceTest(t)

	attribute, err := service.CreateAttribute(CreateAttributeInput{
		AttributeInput: AttributeInput{Name: "Color"},
		Values:         []string{"Red"},
	})
	require.NoError(t, err)

	_, err = service.UpdateAttribute(attribute.ID, UpdateAttributeInput{
		AttributeInput: AttributeInput{Name: "Color"},
		AddValues:      []string{"RED"},
	})
	var duplicates *DuplicateValuesError
	require.ErrorAs(t, err, &duplicates)
	assert.Equal(t, []string{"RED"}, duplicates.Names)
}

func TestAttributeService_CreateValue(t *testing.T) {
	service, _ := setupAttributeServiceTest(t)

	attribute, err := service.CreateAttribute(CreateAttributeInput{
		AttributeInput: AttributeInput{Name: "Color"},
		Values:         []string{"Red"},
	})
	require.NoError(t, err)

	value, err := service.CreateValue(attribute.ID, ValueInput{Name: "Navy Blue", Value: "#000080"})
	require.NoError(t, err)
	assert.Equal(t, "navy-blue", value.Slug)
	assert.Equal(t, "Navy Blue", value.Name)
	assert.Equal(t, "#000080", value.Value)
	assert.Equal(t, 1, *value.SortOrder)

	// Same name on the same attribute is rejected
	_, err = service.CreateValue(attribute.ID, ValueInput{Name: "navy blue"})
	assert.ErrorIs(t, err, ErrAttributeValueExists)

	// Same name on another attribute is fine
	other, err := service.CreateAttribute(CreateAttributeInput{
		AttributeInput: AttributeInput{Name: "Trim"},
	})
	require.NoError(t, err)
	_, err = service.CreateValue(other.ID, ValueInput{Name: "Navy Blue"})
	assert.NoError(t, err)
}

func TestAttributeService_UpdateValue(t *testing.T) {
	service, _ := setupAttributeServiceTest(t)

	attribute, err := service.CreateAttribute(CreateAttributeInput{
		AttributeInput: AttributeInput{Name: "Color"},
		Values:         []string{"Red", "Green"},
	})
	require.NoError(t, err)

	value, err := service.UpdateValue(attribute.Values[0].ID, ValueInput{Name: "Crimson", Value: "#dc143c"})
	require.NoError(t, err)
	assert.Equal(t, "crimson", value.Slug)
	assert.Equal(t, "#dc143c", value.Value)

	// Renaming onto an existing sibling is rejected
	_, err = service.UpdateValue(attribute.Values[0].ID, ValueInput{Name: "Green"})
	assert.ErrorIs(t, err, ErrAttributeValueExists)

	// Renaming to itself (same slug) passes
	_, err = service.UpdateValue(attribute.Values[0].ID, ValueInput{Name: "CRIMSON"})
	assert.NoError(t, err)
}

func TestAttributeService_DeleteAttributesMissingID(t *testing.T) {
	service, _ := setupAttributeServiceTest(t)

	attribute, err := service.CreateAttribute(CreateAttributeInput{
		AttributeInput: AttributeInput{Name: "Color"},
	})
	require.NoError(t, err)

	err = service.DeleteAttributes([]uint{attribute.ID, 9999})
	assert.ErrorIs(t, err, ErrAttributeNotFound)

	// Nothing deleted
	_, err = service.GetAttributeByID(attribute.ID)
	assert.NoError(t, err)
}

func TestAttributeService_ReorderValues(t *testing.T) {
	service, _ := setupAttributeServiceTest(t)

	attribute, err := service.CreateAttribute(CreateAttributeInput{
		AttributeInput: AttributeInput{Name: "Size"},
		Values:         []string{"S", "M", "L"},
	})
	require.NoError(t, err)

	err = service.ReorderValues(attribute.ID, []ordering.Move{
		{ID: attribute.Values[2].ID, Position: 0},
	})
	require.NoError(t, err)

	reloaded, err := service.GetAttributeByID(attribute.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"l", "s", "m"}, testValueSlugs(reloaded.Values))
}

func testValueSlugs(values []model.AttributeValue) []string {
	slugs := make([]string, len(values))
	for i, value := range values {
		slugs[i] = value.Slug
	}
	return slugs
}
