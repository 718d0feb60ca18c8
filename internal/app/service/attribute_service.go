package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"github.com/hanifn/catalog-backend/internal/app/model"
	"github.com/hanifn/catalog-backend/internal/app/repository"
	"github.com/hanifn/catalog-backend/pkg/logger"
	"github.com/hanifn/catalog-backend/pkg/ordering"
	"gorm.io/gorm"
)

var (
	ErrAttributeNotFound      = errors.New("attribute not found")
	ErrAttributeValueNotFound = errors.New("attribute value not found")
	ErrInvalidInputType       = errors.New("invalid attribute input type")
	ErrBlankValueName         = errors.New("attribute value name cannot be blank")
	ErrAttributeValueExists   = errors.New("attribute already has a value with this name")
)

// DuplicateValuesError reports value names that collapse to the same slug,
// either within one request or against the attribute's existing values.
type DuplicateValuesError struct {
	Names []string
}

func (e *DuplicateValuesError) Error() string {
	return fmt.Sprintf("duplicate attribute values: %s", strings.Join(e.Names, ", "))
}

type AttributeInput struct {
	Name                     string
	Slug                     string
	InputType                model.AttributeInputType
	ValueRequired            bool
	VisibleInStorefront      bool
	FilterableInStorefront   bool
	FilterableInDashboard    bool
	StorefrontSearchPosition int
	AvailableInGrid          bool
}

type CreateAttributeInput struct {
	AttributeInput
	Values []string
}

// ValueInput carries a value name plus the optional free-form display
// payload (a color hex, gradient or image URL the dashboard renders).
type ValueInput struct {
	Name  string
	Value string
}

type UpdateAttributeInput struct {
	AttributeInput
	AddValues      []string
	RemoveValueIDs []uint
}

type AttributeListOptions struct {
	Search              string
	VisibleInStorefront *bool
	ValueRequired       *bool
	SortBy              string
	SortAscending       bool
	Limit               int
	Offset              int
}

type AttributeService interface {
	ListAttributes(opts AttributeListOptions) ([]model.Attribute, error)
	GetAttributeByID(id uint) (*model.Attribute, error)
	CreateAttribute(input CreateAttributeInput) (*model.Attribute, error)
	UpdateAttribute(id uint, input UpdateAttributeInput) (*model.Attribute, error)
	DeleteAttribute(id uint) error
	DeleteAttributes(ids []uint) error

	CreateValue(attributeID uint, input ValueInput) (*model.AttributeValue, error)
	UpdateValue(valueID uint, input ValueInput) (*model.AttributeValue, error)
	DeleteValue(valueID uint) error
	ReorderValues(attributeID uint, moves []ordering.Move) error
}

type attributeService struct {
	attributeRepo repository.AttributeRepository
}

func NewAttributeService(attributeRepo repository.AttributeRepository) AttributeService {
	return &attributeService{attributeRepo: attributeRepo}
}

func (s *attributeService) ListAttributes(opts AttributeListOptions) ([]model.Attribute, error) {
	logger.Debug("Listing attributes", map[string]interface{}{
		"search":  opts.Search,
		"sort_by": opts.SortBy,
		"limit":   opts.Limit,
		"offset":  opts.Offset,
	})

	filter := repository.AttributeFilter{
		Search:              opts.Search,
		VisibleInStorefront: opts.VisibleInStorefront,
		ValueRequired:       opts.ValueRequired,
		SortBy:              repository.AttributeSort(opts.SortBy),
		SortAscending:       opts.SortAscending,
		Limit:               opts.Limit,
		Offset:              opts.Offset,
	}
	return s.attributeRepo.FindAll(filter)
}

func (s *attributeService) GetAttributeByID(id uint) (*model.Attribute, error) {
	attribute, err := s.attributeRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttributeNotFound
		}
		return nil, err
	}
	return attribute, nil
}

func (s *attributeService) CreateAttribute(input CreateAttributeInput) (*model.Attribute, error) {
	logger.Info("Creating attribute", map[string]interface{}{
		"name":       input.Name,
		"input_type": input.InputType,
	})

	if input.InputType == "" {
		input.InputType = model.InputTypeDropdown
	}
	if !input.InputType.Valid() {
		return nil, ErrInvalidInputType
	}

	attribute := model.Attribute{
		Name:                     input.Name,
		Slug:                     attributeSlug(input.Slug, input.Name),
		InputType:                input.InputType,
		ValueRequired:            input.ValueRequired,
		VisibleInStorefront:      input.VisibleInStorefront,
		FilterableInStorefront:   input.FilterableInStorefront,
		FilterableInDashboard:    input.FilterableInDashboard,
		StorefrontSearchPosition: input.StorefrontSearchPosition,
		AvailableInGrid:          input.AvailableInGrid,
	}

	values, err := buildValues(input.Values, nil)
	if err != nil {
		return nil, err
	}
	attribute.Values = values

	if err := s.attributeRepo.Create(&attribute); err != nil {
		return nil, err
	}

	logger.Info("Attribute created", map[string]interface{}{
		"attribute_id": attribute.ID,
		"slug":         attribute.Slug,
	})
	return &attribute, nil
}

func (s *attributeService) UpdateAttribute(id uint, input UpdateAttributeInput) (*model.Attribute, error) {
	logger.Info("Updating attribute", map[string]interface{}{
		"attribute_id": id,
	})

	attribute, err := s.GetAttributeByID(id)
	if err != nil {
		return nil, err
	}

	if input.InputType == "" {
		input.InputType = attribute.InputType
	}
	if !input.InputType.Valid() {
		return nil, ErrInvalidInputType
	}

	attribute.Name = input.Name
	attribute.Slug = attributeSlug(input.Slug, input.Name)
	attribute.InputType = input.InputType
	attribute.ValueRequired = input.ValueRequired
	attribute.VisibleInStorefront = input.VisibleInStorefront
	attribute.FilterableInStorefront = input.FilterableInStorefront
	attribute.FilterableInDashboard = input.FilterableInDashboard
	attribute.StorefrontSearchPosition = input.StorefrontSearchPosition
	attribute.AvailableInGrid = input.AvailableInGrid

	// New values are checked against the surviving value set, so a name can
	// be removed and re-added in one call.
	removing := make(map[uint]bool, len(input.RemoveValueIDs))
	for _, valueID := range input.RemoveValueIDs {
		removing[valueID] = true
	}
	var existingSlugs []string
	for _, value := range attribute.Values {
		if !removing[value.ID] {
			existingSlugs = append(existingSlugs, value.Slug)
		}
	}

	newValues, err := buildValues(input.AddValues, existingSlugs)
	if err != nil {
		return nil, err
	}

	if err := s.attributeRepo.Update(attribute); err != nil {
		return nil, err
	}
	for _, valueID := range input.RemoveValueIDs {
		if err := s.attributeRepo.DeleteValue(valueID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrAttributeValueNotFound
			}
			return nil, err
		}
	}
	for i := range newValues {
		newValues[i].AttributeID = attribute.ID
		if err := s.attributeRepo.CreateValue(&newValues[i]); err != nil {
			return nil, err
		}
	}

	return s.GetAttributeByID(id)
}

func (s *attributeService) DeleteAttribute(id uint) error {
	return s.DeleteAttributes([]uint{id})
}

func (s *attributeService) DeleteAttributes(ids []uint) error {
	logger.Info("Deleting attributes", map[string]interface{}{
		"attribute_ids": ids,
	})

	found, err := s.attributeRepo.FindByIDs(ids)
	if err != nil {
		return err
	}
	if len(found) != len(ids) {
		return ErrAttributeNotFound
	}
	return s.attributeRepo.DeleteMany(ids)
}

func (s *attributeService) CreateValue(attributeID uint, input ValueInput) (*model.AttributeValue, error) {
	logger.Info("Creating attribute value", map[string]interface{}{
		"attribute_id": attributeID,
		"name":         input.Name,
	})

	if _, err := s.GetAttributeByID(attributeID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrBlankValueName
	}

	valueSlug := slug.Make(name)
	existing, err := s.attributeRepo.FindValueSlugs(attributeID)
	if err != nil {
		return nil, err
	}
	for _, existingSlug := range existing {
		if existingSlug == valueSlug {
			return nil, ErrAttributeValueExists
		}
	}

	value := model.AttributeValue{
		AttributeID: attributeID,
		Name:        name,
		Value:       input.Value,
		Slug:        valueSlug,
	}
	if err := s.attributeRepo.CreateValue(&value); err != nil {
		return nil, err
	}
	return &value, nil
}

func (s *attributeService) UpdateValue(valueID uint, input ValueInput) (*model.AttributeValue, error) {
	logger.Info("Updating attribute value", map[string]interface{}{
		"value_id": valueID,
		"name":     input.Name,
	})

	value, err := s.attributeRepo.FindValueByID(valueID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttributeValueNotFound
		}
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrBlankValueName
	}

	newSlug := slug.Make(name)
	if newSlug != value.Slug {
		existing, err := s.attributeRepo.FindValueSlugs(value.AttributeID)
		if err != nil {
			return nil, err
		}
		for _, existingSlug := range existing {
			if existingSlug == newSlug {
				return nil, ErrAttributeValueExists
			}
		}
	}

	value.Name = name
	value.Value = input.Value
	value.Slug = newSlug
	if err := s.attributeRepo.UpdateValue(value); err != nil {
		return nil, err
	}
	return value, nil
}

func (s *attributeService) DeleteValue(valueID uint) error {
	logger.Info("Deleting attribute value", map[string]interface{}{
		"value_id": valueID,
	})

	if err := s.attributeRepo.DeleteValue(valueID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAttributeValueNotFound
		}
		return err
	}
	return nil
}

func (s *attributeService) ReorderValues(attributeID uint, moves []ordering.Move) error {
	logger.Info("Reordering attribute values", map[string]interface{}{
		"attribute_id": attributeID,
		"move_count":   len(moves),
	})

	if _, err := s.GetAttributeByID(attributeID); err != nil {
		return err
	}
	return s.attributeRepo.ReorderValues(attributeID, moves)
}

func attributeSlug(explicit, name string) string {
	if explicit != "" {
		return slug.Make(explicit)
	}
	return slug.Make(name)
}

// buildValues validates new value names and reports every duplicate in one
// error rather than failing on the first.
func buildValues(names []string, existingSlugs []string) ([]model.AttributeValue, error) {
	taken := make(map[string]bool, len(existingSlugs))
	for _, existingSlug := range existingSlugs {
		taken[existingSlug] = true
	}

	var values []model.AttributeValue
	var duplicates []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, ErrBlankValueName
		}
		valueSlug := slug.Make(name)
		if taken[valueSlug] {
			duplicates = append(duplicates, name)
			continue
		}
		taken[valueSlug] = true
		values = append(values, model.AttributeValue{
			Name: name,
			Slug: valueSlug,
		})
	}
	if len(duplicates) > 0 {
		return nil, &DuplicateValuesError{Names: duplicates}
	}
	return values, nil
}
