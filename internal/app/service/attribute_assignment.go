package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gosimple/slug"
	"github.com/hanifn/catalog-backend/internal/app/model"
	"github.com/hanifn/catalog-backend/pkg/ordering"
	"gorm.io/gorm"
)

var (
	ErrMissingAttributeReference   = errors.New("attribute reference requires an id or a slug")
	ErrAmbiguousAttributeReference = errors.New("attribute reference must use an id or a slug, not both")
	ErrBlankAttributeValue         = errors.New("attribute values cannot be blank")
	ErrDuplicateVariantAttributes  = errors.New("a variant with these attribute values already exists")
)

// AttributeValueInput selects one attribute of the product type, by id or by
// slug, and supplies the raw value names to assign to it.
type AttributeValueInput struct {
	ID     *uint    `json:"id"`
	Slug   *string  `json:"slug"`
	Values []string `json:"values"`
}

// UnresolvedReferencesError reports references that matched no attribute
// bound to the product type in the targeted role.
type UnresolvedReferencesError struct {
	References []string
}

func (e *UnresolvedReferencesError) Error() string {
	return fmt.Sprintf("attributes not assignable to this product type: %s", strings.Join(e.References, ", "))
}

// MissingRequiredAttributesError reports required attributes the input left
// without a value.
type MissingRequiredAttributesError struct {
	Attributes []AttributeRef
}

func (e *MissingRequiredAttributesError) Error() string {
	return fmt.Sprintf("required attributes missing values: %s", joinRefs(e.Attributes))
}

// TooManyValuesError reports dropdown attributes given more than one value.
type TooManyValuesError struct {
	Attributes []AttributeRef
}

func (e *TooManyValuesError) Error() string {
	return fmt.Sprintf("attributes accept only one value: %s", joinRefs(e.Attributes))
}

// IncompleteVariantAttributesError reports variant attributes not covered
// with exactly one value.
type IncompleteVariantAttributesError struct {
	Attributes []AttributeRef
}

func (e *IncompleteVariantAttributesError) Error() string {
	return fmt.Sprintf("variant attributes require exactly one value each: %s", joinRefs(e.Attributes))
}

// resolvedAssignment pairs one binding with its cleaned raw values. Nothing
// is written to the database until save runs.
type resolvedAssignment struct {
	bindingID     uint
	attribute     model.Attribute
	values        []string
	productTypeID uint
}

// bindingCandidate abstracts over the two binding tables so both roles share
// one resolution pass.
type bindingCandidate struct {
	bindingID uint
	attribute model.Attribute
}

func productCandidates(bindings []model.AttributeProduct) []bindingCandidate {
	candidates := make([]bindingCandidate, len(bindings))
	for i, binding := range bindings {
		candidates[i] = bindingCandidate{bindingID: binding.ID, attribute: binding.Attribute}
	}
	return candidates
}

func variantCandidates(bindings []model.AttributeVariant) []bindingCandidate {
	candidates := make([]bindingCandidate, len(bindings))
	for i, binding := range bindings {
		candidates[i] = bindingCandidate{bindingID: binding.ID, attribute: binding.Attribute}
	}
	return candidates
}

// resolveReferences maps each input onto a candidate binding. References that
// match nothing are collected and reported together.
func resolveReferences(candidates []bindingCandidate, inputs []AttributeValueInput) ([]resolvedAssignment, error) {
	byID := make(map[uint]bindingCandidate, len(candidates))
	bySlug := make(map[string]bindingCandidate, len(candidates))
	for _, candidate := range candidates {
		byID[candidate.attribute.ID] = candidate
		bySlug[candidate.attribute.Slug] = candidate
	}

	var resolved []resolvedAssignment
	var unresolved []string
	for _, input := range inputs {
		if input.ID == nil && input.Slug == nil {
			return nil, ErrMissingAttributeReference
		}
		if input.ID != nil && input.Slug != nil {
			return nil, ErrAmbiguousAttributeReference
		}

		var candidate bindingCandidate
		var ok bool
		var ref string
		if input.ID != nil {
			ref = fmt.Sprintf("id=%d", *input.ID)
			candidate, ok = byID[*input.ID]
		} else {
			ref = fmt.Sprintf("slug=%s", *input.Slug)
			candidate, ok = bySlug[*input.Slug]
		}
		if !ok {
			unresolved = append(unresolved, ref)
			continue
		}

		values := make([]string, len(input.Values))
		copy(values, input.Values)
		resolved = append(resolved, resolvedAssignment{
			bindingID: candidate.bindingID,
			attribute: candidate.attribute,
			values:    values,
		})
	}
	if len(unresolved) > 0 {
		return nil, &UnresolvedReferencesError{References: unresolved}
	}
	return resolved, nil
}

// cleanProductAttributes resolves and validates product-role input without
// touching the database. Required attributes are checked against the full
// candidate set, so required attributes omitted from the input still fail.
func cleanProductAttributes(bindings []model.AttributeProduct, inputs []AttributeValueInput) ([]resolvedAssignment, error) {
	resolved, err := resolveReferences(productCandidates(bindings), inputs)
	if err != nil {
		return nil, err
	}

	var tooMany []AttributeRef
	for _, assignment := range resolved {
		for _, value := range assignment.values {
			if strings.TrimSpace(value) == "" {
				return nil, ErrBlankAttributeValue
			}
		}
		if assignment.attribute.InputType == model.InputTypeDropdown && len(assignment.values) > 1 {
			tooMany = append(tooMany, refOf(assignment.attribute))
		}
	}
	if len(tooMany) > 0 {
		return nil, &TooManyValuesError{Attributes: tooMany}
	}

	supplied := make(map[uint]int, len(resolved))
	for _, assignment := range resolved {
		supplied[assignment.attribute.ID] = len(assignment.values)
	}
	var missing []AttributeRef
	for _, binding := range bindings {
		if binding.Attribute.ValueRequired && supplied[binding.AttributeID] == 0 {
			missing = append(missing, refOf(binding.Attribute))
		}
	}
	if len(missing) > 0 {
		return nil, &MissingRequiredAttributesError{Attributes: missing}
	}
	return resolved, nil
}

// cleanVariantAttributes enforces total coverage: every variant binding of
// the product type gets exactly one non-blank value.
func cleanVariantAttributes(bindings []model.AttributeVariant, inputs []AttributeValueInput) ([]resolvedAssignment, error) {
	resolved, err := resolveReferences(variantCandidates(bindings), inputs)
	if err != nil {
		return nil, err
	}

	for _, assignment := range resolved {
		for _, value := range assignment.values {
			if strings.TrimSpace(value) == "" {
				return nil, ErrBlankAttributeValue
			}
		}
	}

	supplied := make(map[uint]int, len(resolved))
	for _, assignment := range resolved {
		supplied[assignment.attribute.ID] += len(assignment.values)
	}
	var incomplete []AttributeRef
	for _, binding := range bindings {
		if supplied[binding.AttributeID] != 1 {
			incomplete = append(incomplete, refOf(binding.Attribute))
		}
	}
	if len(incomplete) > 0 {
		return nil, &IncompleteVariantAttributesError{Attributes: incomplete}
	}
	return resolved, nil
}

func refOf(attribute model.Attribute) AttributeRef {
	return AttributeRef{Name: attribute.Name, Slug: attribute.Slug}
}

// getOrCreateValue finds the attribute's value whose slug matches the raw
// name, creating it at the next rank when absent. The raw name becomes the
// display name of a newly created value.
func getOrCreateValue(tx *gorm.DB, attributeID uint, raw string) (*model.AttributeValue, error) {
	valueSlug := slug.Make(raw)

	var value model.AttributeValue
	err := tx.Where("attribute_id = ? AND slug = ?", attributeID, valueSlug).First(&value).Error
	if err == nil {
		return &value, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var max *int
	err = tx.Model(&model.AttributeValue{}).
		Where("attribute_id = ?", attributeID).
		Select("MAX(sort_order)").
		Scan(&max).Error
	if err != nil {
		return nil, err
	}
	rank := ordering.NextRank(max)

	value = model.AttributeValue{
		AttributeID: attributeID,
		Name:        raw,
		Slug:        valueSlug,
		SortOrder:   &rank,
	}
	if err := tx.Create(&value).Error; err != nil {
		return nil, err
	}
	return &value, nil
}

// saveProductAttributes writes the resolved product-role assignments. Each
// binding's assignment row is created on demand and its value set replaced
// wholesale, so values absent from the input are dropped.
func saveProductAttributes(tx *gorm.DB, productID uint, resolved []resolvedAssignment) error {
	for _, assignment := range resolved {
		valueIDs, err := materializeValues(tx, assignment)
		if err != nil {
			return err
		}

		var row model.AssignedProductAttribute
		err = tx.Where("product_id = ? AND assignment_id = ?", productID, assignment.bindingID).
			FirstOrCreate(&row, model.AssignedProductAttribute{
				ProductID:    productID,
				AssignmentID: assignment.bindingID,
			}).Error
		if err != nil {
			return err
		}

		if err := replaceAssignmentValues(tx,
			"assigned_product_attribute_values", "assigned_product_attribute_id",
			row.ID, valueIDs); err != nil {
			return err
		}
	}
	return nil
}

// saveVariantAttributes is the variant-role counterpart of
// saveProductAttributes.
func saveVariantAttributes(tx *gorm.DB, variantID uint, resolved []resolvedAssignment) error {
	for _, assignment := range resolved {
		valueIDs, err := materializeValues(tx, assignment)
		if err != nil {
			return err
		}

		var row model.AssignedVariantAttribute
		err = tx.Where("variant_id = ? AND assignment_id = ?", variantID, assignment.bindingID).
			FirstOrCreate(&row, model.AssignedVariantAttribute{
				VariantID:    variantID,
				AssignmentID: assignment.bindingID,
			}).Error
		if err != nil {
			return err
		}

		if err := replaceAssignmentValues(tx,
			"assigned_variant_attribute_values", "assigned_variant_attribute_id",
			row.ID, valueIDs); err != nil {
			return err
		}
	}
	return nil
}

func materializeValues(tx *gorm.DB, assignment resolvedAssignment) ([]uint, error) {
	valueIDs := make([]uint, 0, len(assignment.values))
	for _, raw := range assignment.values {
		value, err := getOrCreateValue(tx, assignment.attribute.ID, raw)
		if err != nil {
			return nil, err
		}
		valueIDs = append(valueIDs, value.ID)
	}
	return valueIDs, nil
}

func replaceAssignmentValues(tx *gorm.DB, table, column string, assignmentID uint, valueIDs []uint) error {
	if err := tx.Exec(
		fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, column), assignmentID,
	).Error; err != nil {
		return err
	}
	for _, valueID := range valueIDs {
		if err := tx.Exec(
			fmt.Sprintf("INSERT INTO %s (%s, attribute_value_id) VALUES (?, ?)", table, column),
			assignmentID, valueID,
		).Error; err != nil {
			return err
		}
	}
	return nil
}

// attributeFingerprint canonicalizes an attribute-to-value-slugs mapping so
// two variants can be compared for the same combination.
func attributeFingerprint(valuesByAttribute map[uint][]string) string {
	attributeIDs := make([]uint, 0, len(valuesByAttribute))
	for attributeID := range valuesByAttribute {
		attributeIDs = append(attributeIDs, attributeID)
	}
	sort.Slice(attributeIDs, func(i, j int) bool { return attributeIDs[i] < attributeIDs[j] })

	var b strings.Builder
	for _, attributeID := range attributeIDs {
		slugs := append([]string(nil), valuesByAttribute[attributeID]...)
		sort.Strings(slugs)
		fmt.Fprintf(&b, "%d:%s;", attributeID, strings.Join(slugs, ","))
	}
	return b.String()
}

func resolvedFingerprint(resolved []resolvedAssignment) string {
	valuesByAttribute := make(map[uint][]string, len(resolved))
	for _, assignment := range resolved {
		for _, raw := range assignment.values {
			valuesByAttribute[assignment.attribute.ID] = append(
				valuesByAttribute[assignment.attribute.ID], slug.Make(raw))
		}
	}
	return attributeFingerprint(valuesByAttribute)
}

func variantModelFingerprint(variant model.ProductVariant) string {
	valuesByAttribute := make(map[uint][]string)
	for _, assigned := range variant.Attributes {
		attributeID := assigned.Assignment.AttributeID
		for _, value := range assigned.Values {
			valuesByAttribute[attributeID] = append(valuesByAttribute[attributeID], value.Slug)
		}
	}
	return attributeFingerprint(valuesByAttribute)
}

// checkVariantUniqueness rejects the candidate combination when a sibling
// variant already carries it. Updates exclude the variant being updated, so
// resubmitting an unchanged combination passes.
func checkVariantUniqueness(tx *gorm.DB, productID uint, excludeVariantID uint, resolved []resolvedAssignment) error {
	candidate := resolvedFingerprint(resolved)

	var siblings []model.ProductVariant
	query := tx.
		Preload("Attributes.Assignment").
		Preload("Attributes.Values").
		Where("product_id = ?", productID)
	if excludeVariantID != 0 {
		query = query.Where("id <> ?", excludeVariantID)
	}
	if err := query.Find(&siblings).Error; err != nil {
		return err
	}

	for _, sibling := range siblings {
		if variantModelFingerprint(sibling) == candidate {
			return ErrDuplicateVariantAttributes
		}
	}
	return nil
}
