package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hanifn/catalog-backend/internal/app/model"
	"github.com/hanifn/catalog-backend/internal/app/repository"
	"github.com/hanifn/catalog-backend/pkg/logger"
	"github.com/hanifn/catalog-backend/pkg/ordering"
	"gorm.io/gorm"
)

var (
	ErrProductTypeNotFound = errors.New("product type not found")
	ErrInvalidBindingRole  = errors.New("invalid attribute binding role")
	ErrVariantsDisabled    = errors.New("product type does not support variants")
)

// AttributeRef identifies an attribute in operation error reports.
type AttributeRef struct {
	Name string
	Slug string
}

// UnknownAttributesError reports attribute IDs that do not exist.
type UnknownAttributesError struct {
	IDs []uint
}

func (e *UnknownAttributesError) Error() string {
	return fmt.Sprintf("unknown attributes: %v", e.IDs)
}

// AlreadyAssignedError reports attributes already bound to the product type
// in either role.
type AlreadyAssignedError struct {
	Attributes []AttributeRef
}

func (e *AlreadyAssignedError) Error() string {
	return fmt.Sprintf("attributes already assigned to the product type: %s", joinRefs(e.Attributes))
}

// NotAssignableToVariantsError reports attributes whose input type cannot be
// used in the variant role.
type NotAssignableToVariantsError struct {
	Attributes []AttributeRef
}

func (e *NotAssignableToVariantsError) Error() string {
	return fmt.Sprintf("attributes cannot be assigned to variants: %s", joinRefs(e.Attributes))
}

func joinRefs(refs []AttributeRef) string {
	parts := make([]string, len(refs))
	for i, ref := range refs {
		parts[i] = fmt.Sprintf("%s (%s)", ref.Name, ref.Slug)
	}
	return strings.Join(parts, ", ")
}

type ProductTypeInput struct {
	Name        string
	Slug        string
	HasVariants bool
}

type AssignAttributesInput struct {
	Operations []AssignOperation
}

// AssignOperation names one attribute and the role it should be bound in.
type AssignOperation struct {
	AttributeID uint
	Type        model.AttributeType
}

type ProductTypeListOptions struct {
	Search string
	Limit  int
	Offset int
}

type ProductTypeService interface {
	ListProductTypes(opts ProductTypeListOptions) ([]model.ProductType, error)
	GetProductTypeByID(id uint) (*model.ProductType, error)
	CreateProductType(input ProductTypeInput) (*model.ProductType, error)
	UpdateProductType(id uint, input ProductTypeInput) (*model.ProductType, error)
	DeleteProductType(id uint) error

	AssignAttributes(productTypeID uint, input AssignAttributesInput) (*model.ProductType, error)
	UnassignAttributes(productTypeID uint, attributeIDs []uint) (*model.ProductType, error)
	ReorderAttributes(productTypeID uint, role model.AttributeType, moves []ordering.Move) (*model.ProductType, error)
}

type productTypeService struct {
	productTypeRepo repository.ProductTypeRepository
	attributeRepo   repository.AttributeRepository
}

func NewProductTypeService(productTypeRepo repository.ProductTypeRepository, attributeRepo repository.AttributeRepository) ProductTypeService {
	return &productTypeService{
		productTypeRepo: productTypeRepo,
		attributeRepo:   attributeRepo,
	}
}

func (s *productTypeService) ListProductTypes(opts ProductTypeListOptions) ([]model.ProductType, error) {
	logger.Debug("Listing product types", map[string]interface{}{
		"search": opts.Search,
		"limit":  opts.Limit,
		"offset": opts.Offset,
	})

	return s.productTypeRepo.FindAll(repository.ProductTypeFilter{
		Search: opts.Search,
		Limit:  opts.Limit,
		Offset: opts.Offset,
	})
}

func (s *productTypeService) GetProductTypeByID(id uint) (*model.ProductType, error) {
	productType, err := s.productTypeRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductTypeNotFound
		}
		return nil, err
	}
	return productType, nil
}

func (s *productTypeService) CreateProductType(input ProductTypeInput) (*model.ProductType, error) {
	logger.Info("Creating product type", map[string]interface{}{
		"name":         input.Name,
		"has_variants": input.HasVariants,
	})

	productType := model.ProductType{
		Name:        input.Name,
		Slug:        attributeSlug(input.Slug, input.Name),
		HasVariants: input.HasVariants,
	}
	if err := s.productTypeRepo.Create(&productType); err != nil {
		return nil, err
	}
	return &productType, nil
}

func (s *productTypeService) UpdateProductType(id uint, input ProductTypeInput) (*model.ProductType, error) {
	logger.Info("Updating product type", map[string]interface{}{
		"product_type_id": id,
	})

	productType, err := s.GetProductTypeByID(id)
	if err != nil {
		return nil, err
	}

	productType.Name = input.Name
	productType.Slug = attributeSlug(input.Slug, input.Name)
	productType.HasVariants = input.HasVariants

	if err := s.productTypeRepo.Update(productType); err != nil {
		return nil, err
	}
	return s.GetProductTypeByID(id)
}

func (s *productTypeService) DeleteProductType(id uint) error {
	logger.Info("Deleting product type", map[string]interface{}{
		"product_type_id": id,
	})

	if _, err := s.GetProductTypeByID(id); err != nil {
		return err
	}
	return s.productTypeRepo.Delete(id)
}

// AssignAttributes binds attributes to the product type. Every operation is
// validated before any binding is written: the attributes must exist, must
// not already be bound in either role, and variant-role operations require a
// variant-capable input type on a product type with variants enabled.
func (s *productTypeService) AssignAttributes(productTypeID uint, input AssignAttributesInput) (*model.ProductType, error) {
	logger.Info("Assigning attributes to product type", map[string]interface{}{
		"product_type_id": productTypeID,
		"operation_count": len(input.Operations),
	})

	productType, err := s.GetProductTypeByID(productTypeID)
	if err != nil {
		return nil, err
	}

	// Repeated attribute IDs collapse to the first operation that names them,
	// so a duplicated entry cannot slip past the binding uniqueness checks.
	var productIDs, variantIDs []uint
	allIDs := make([]uint, 0, len(input.Operations))
	seen := make(map[uint]bool, len(input.Operations))
	for _, op := range input.Operations {
		if !op.Type.Valid() {
			return nil, ErrInvalidBindingRole
		}
		if seen[op.AttributeID] {
			continue
		}
		seen[op.AttributeID] = true
		allIDs = append(allIDs, op.AttributeID)
		if op.Type == model.AttributeTypeProduct {
			productIDs = append(productIDs, op.AttributeID)
		} else {
			variantIDs = append(variantIDs, op.AttributeID)
		}
	}

	if len(variantIDs) > 0 && !productType.HasVariants {
		return nil, ErrVariantsDisabled
	}

	attributes, err := s.attributeRepo.FindByIDs(allIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]model.Attribute, len(attributes))
	for _, attribute := range attributes {
		byID[attribute.ID] = attribute
	}

	var unknown []uint
	for _, id := range allIDs {
		if _, ok := byID[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		return nil, &UnknownAttributesError{IDs: unknown}
	}

	var notAssignable []AttributeRef
	for _, id := range variantIDs {
		attribute := byID[id]
		if !attribute.InputType.AssignableToVariants() {
			notAssignable = append(notAssignable, AttributeRef{Name: attribute.Name, Slug: attribute.Slug})
		}
	}
	if len(notAssignable) > 0 {
		return nil, &NotAssignableToVariantsError{Attributes: notAssignable}
	}

	assigned, err := s.productTypeRepo.AssignedAttributes(productTypeID, allIDs)
	if err != nil {
		return nil, err
	}
	if len(assigned) > 0 {
		refs := make([]AttributeRef, len(assigned))
		for i, attribute := range assigned {
			refs[i] = AttributeRef{Name: attribute.Name, Slug: attribute.Slug}
		}
		return nil, &AlreadyAssignedError{Attributes: refs}
	}

	if err := s.productTypeRepo.CreateBindings(productTypeID, productIDs, variantIDs); err != nil {
		return nil, err
	}
	return s.GetProductTypeByID(productTypeID)
}

// UnassignAttributes removes the given attributes from whichever role they
// occupy. IDs not bound to the product type are ignored.
func (s *productTypeService) UnassignAttributes(productTypeID uint, attributeIDs []uint) (*model.ProductType, error) {
	logger.Info("Unassigning attributes from product type", map[string]interface{}{
		"product_type_id": productTypeID,
		"attribute_ids":   attributeIDs,
	})

	if _, err := s.GetProductTypeByID(productTypeID); err != nil {
		return nil, err
	}
	if err := s.productTypeRepo.DeleteBindingsByAttribute(productTypeID, attributeIDs); err != nil {
		return nil, err
	}
	return s.GetProductTypeByID(productTypeID)
}

// ReorderAttributes moves bindings of one role. Move IDs are binding IDs,
// not attribute IDs.
func (s *productTypeService) ReorderAttributes(productTypeID uint, role model.AttributeType, moves []ordering.Move) (*model.ProductType, error) {
	logger.Info("Reordering product type attributes", map[string]interface{}{
		"product_type_id": productTypeID,
		"role":            role,
		"move_count":      len(moves),
	})

	if !role.Valid() {
		return nil, ErrInvalidBindingRole
	}
	if _, err := s.GetProductTypeByID(productTypeID); err != nil {
		return nil, err
	}

	var err error
	if role == model.AttributeTypeProduct {
		err = s.productTypeRepo.ReorderProductBindings(productTypeID, moves)
	} else {
		err = s.productTypeRepo.ReorderVariantBindings(productTypeID, moves)
	}
	if err != nil {
		return nil, err
	}
	return s.GetProductTypeByID(productTypeID)
}
