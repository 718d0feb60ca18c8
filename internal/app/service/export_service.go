package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/hanifn/catalog-backend/internal/app/model"
	"github.com/hanifn/catalog-backend/internal/app/repository"
	"github.com/hanifn/catalog-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

type ExportService interface {
	ExportProducts(opts ProductListOptions) (*excelize.File, error)
}

type exportService struct {
	productRepo   repository.ProductRepository
	attributeRepo repository.AttributeRepository
}

func NewExportService(productRepo repository.ProductRepository, attributeRepo repository.AttributeRepository) ExportService {
	return &exportService{
		productRepo:   productRepo,
		attributeRepo: attributeRepo,
	}
}

const exportSheet = "Products"

// ExportProducts builds a spreadsheet of the matching products. Attributes
// flagged for the dashboard grid each get their own column; an assignment's
// values are joined into one cell.
func (s *exportService) ExportProducts(opts ProductListOptions) (*excelize.File, error) {
	logger.Info("Exporting products", map[string]interface{}{
		"search":          opts.Search,
		"product_type_id": opts.ProductTypeID,
	})

	products, err := s.productRepo.FindAll(repository.ProductFilter{
		Search:        opts.Search,
		ProductTypeID: opts.ProductTypeID,
		IsPublished:   opts.IsPublished,
	})
	if err != nil {
		return nil, err
	}

	gridAttributes, err := s.gridAttributes()
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	f.SetSheetName(f.GetSheetName(0), exportSheet)

	headers := []string{"ID", "Name", "Slug", "Product Type", "Published", "Minimal Price"}
	for _, attribute := range gridAttributes {
		headers = append(headers, attribute.Name)
	}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(exportSheet, cell, header); err != nil {
			return nil, err
		}
	}

	for rowIdx, product := range products {
		row := []interface{}{
			product.ID,
			product.Name,
			product.Slug,
			product.ProductType.Name,
			product.IsPublished,
			product.MinimalVariantPrice,
		}
		for _, attribute := range gridAttributes {
			row = append(row, productAttributeCell(product, attribute.ID))
		}

		for colIdx, value := range row {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(exportSheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	logger.Info("Products exported", map[string]interface{}{
		"product_count":   len(products),
		"attribute_count": len(gridAttributes),
	})
	return f, nil
}

func (s *exportService) gridAttributes() ([]model.Attribute, error) {
	attributes, err := s.attributeRepo.FindAll(repository.AttributeFilter{})
	if err != nil {
		return nil, err
	}
	var grid []model.Attribute
	for _, attribute := range attributes {
		if attribute.AvailableInGrid {
			grid = append(grid, attribute)
		}
	}
	return grid, nil
}

func productAttributeCell(product model.Product, attributeID uint) string {
	for _, assigned := range product.Attributes {
		if assigned.Assignment.AttributeID != attributeID {
			continue
		}
		names := make([]string, len(assigned.Values))
		for i, value := range assigned.Values {
			names[i] = value.Name
		}
		return strings.Join(names, ", ")
	}
	return ""
}

// ExportFilename names the download with a stable prefix so repeated exports
// sort together.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("products-export-%s.xlsx", now.Format("20060102-150405"))
}
