package controller

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	apperrors "github.com/hanifn/catalog-backend/internal/errors"
	"github.com/hanifn/catalog-backend/internal/app/service"
	"github.com/hanifn/catalog-backend/internal/middleware"
)

type ExportController struct {
	exportService service.ExportService
}

func NewExportController(exportService service.ExportService) *ExportController {
	return &ExportController{
		exportService: exportService,
	}
}

// ExportProducts streams the product grid as an xlsx download
// GET /api/v1/export/products
func (ctrl *ExportController) ExportProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	opts := service.ProductListOptions{
		Search: c.Query("search"),
	}
	if productTypeID := c.Query("product_type_id"); productTypeID != "" {
		id, err := strconv.ParseUint(productTypeID, 10, 32)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid product type ID")
			return
		}
		opts.ProductTypeID = uint(id)
	}
	if published := c.Query("is_published"); published != "" {
		value := published == "true"
		opts.IsPublished = &value
	}

	file, err := ctrl.exportService.ExportProducts(opts)
	if err != nil {
		log.Error("Product export failed", err, nil)
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.ExportFailed, "Failed to export products")
		return
	}

	filename := service.ExportFilename(time.Now())
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := file.Write(c.Writer); err != nil {
		log.Error("Failed to write export response", err, nil)
	}
}
