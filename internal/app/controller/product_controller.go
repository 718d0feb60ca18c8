package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apperrors "github.com/hanifn/catalog-backend/internal/errors"
	"github.com/hanifn/catalog-backend/internal/app/service"
	"github.com/hanifn/catalog-backend/internal/middleware"
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

type ProductRequest struct {
	Name          string                        `json:"name" binding:"required"`
	Slug          string                        `json:"slug"`
	Description   string                        `json:"description"`
	ProductTypeID uint                          `json:"product_type_id" binding:"required"`
	IsPublished   bool                          `json:"is_published"`
	ImageURL      string                        `json:"image_url"`
	Attributes    []service.AttributeValueInput `json:"attributes"`
}

type VariantRequest struct {
	SKU            string                        `json:"sku" binding:"required"`
	Price          int                           `json:"price" binding:"gte=0"`
	Cost           int                           `json:"cost" binding:"gte=0"`
	Weight         int                           `json:"weight" binding:"gte=0"`
	Quantity       int                           `json:"quantity" binding:"gte=0"`
	TrackInventory *bool                         `json:"track_inventory"`
	Attributes     []service.AttributeValueInput `json:"attributes"`
}

// GetProducts returns products matching the query filters
// GET /api/v1/products
func (ctrl *ProductController) GetProducts(c *gin.Context) {
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
	opts.Limit, _ = strconv.Atoi(c.Query("limit"))
	opts.Offset, _ = strconv.Atoi(c.Query("offset"))

	products, err := ctrl.productService.ListProducts(opts)
	if err != nil {
		log.Error("Failed to fetch products", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// GetProductByID returns one product with variants and attribute assignments
// GET /api/v1/products/:id
func (ctrl *ProductController) GetProductByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := ctrl.productService.GetProductByID(id)
	if err != nil {
		ctrl.respondProductError(c, err, "get product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// CreateProduct creates a product with its attribute values
// POST /api/v1/products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid product request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	product, err := ctrl.productService.CreateProduct(service.ProductInput{
		Name:          req.Name,
		Slug:          req.Slug,
		Description:   req.Description,
		ProductTypeID: req.ProductTypeID,
		IsPublished:   req.IsPublished,
		ImageURL:      req.ImageURL,
		Attributes:    req.Attributes,
	})
	if err != nil {
		ctrl.respondProductError(c, err, "create product")
		return
	}

	log.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"slug":       product.Slug,
	})
	c.JSON(http.StatusCreated, gin.H{"product": product})
}

// UpdateProduct updates a product and replaces the supplied attribute values
// PUT /api/v1/products/:id
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid product request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	product, err := ctrl.productService.UpdateProduct(id, service.ProductInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		IsPublished: req.IsPublished,
		ImageURL:    req.ImageURL,
		Attributes:  req.Attributes,
	})
	if err != nil {
		ctrl.respondProductError(c, err, "update product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// DeleteProduct deletes a product with its variants
// DELETE /api/v1/products/:id
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.productService.DeleteProduct(id); err != nil {
		ctrl.respondProductError(c, err, "delete product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

// CreateVariant adds a variant to a product
// POST /api/v1/products/:id/variants
func (ctrl *ProductController) CreateVariant(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req VariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid variant request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	variant, err := ctrl.productService.CreateVariant(productID, variantInput(req))
	if err != nil {
		ctrl.respondProductError(c, err, "create variant")
		return
	}

	log.Info("Product variant created", map[string]interface{}{
		"variant_id": variant.ID,
		"sku":        variant.SKU,
	})
	c.JSON(http.StatusCreated, gin.H{"variant": variant})
}

// UpdateVariant updates a variant and replaces its attribute values
// PUT /api/v1/products/variants/:variantId
func (ctrl *ProductController) UpdateVariant(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	variantID, ok := parseIDParam(c, "variantId")
	if !ok {
		return
	}

	var req VariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid variant request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	variant, err := ctrl.productService.UpdateVariant(variantID, variantInput(req))
	if err != nil {
		ctrl.respondProductError(c, err, "update variant")
		return
	}
	c.JSON(http.StatusOK, gin.H{"variant": variant})
}

// DeleteVariant removes a variant
// DELETE /api/v1/products/variants/:variantId
func (ctrl *ProductController) DeleteVariant(c *gin.Context) {
	variantID, ok := parseIDParam(c, "variantId")
	if !ok {
		return
	}

	if err := ctrl.productService.DeleteVariant(variantID); err != nil {
		ctrl.respondProductError(c, err, "delete variant")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product variant deleted"})
}

func variantInput(req VariantRequest) service.VariantInput {
	trackInventory := true
	if req.TrackInventory != nil {
		trackInventory = *req.TrackInventory
	}
	return service.VariantInput{
		SKU:            req.SKU,
		Price:          req.Price,
		Cost:           req.Cost,
		Weight:         req.Weight,
		Quantity:       req.Quantity,
		TrackInventory: trackInventory,
		Attributes:     req.Attributes,
	}
}

func (ctrl *ProductController) respondProductError(c *gin.Context, err error, operation string) {
	log := middleware.GetLoggerFromContext(c)

	var unresolved *service.UnresolvedReferencesError
	var missingRequired *service.MissingRequiredAttributesError
	var tooMany *service.TooManyValuesError
	var incomplete *service.IncompleteVariantAttributesError

	switch {
	case errors.Is(err, service.ErrProductNotFound):
		apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
	case errors.Is(err, service.ErrVariantNotFound):
		apperrors.NotFound(c, apperrors.VariantNotFound, "Product variant not found")
	case errors.Is(err, service.ErrProductTypeNotFound):
		apperrors.NotFound(c, apperrors.ProductTypeNotFound, "Product type not found")
	case errors.Is(err, service.ErrVariantsDisabled):
		apperrors.RespondWithValidationError(c, apperrors.ProductTypeVariantsDisabled,
			"The product type has variants disabled",
			map[string]string{"operations": "the product type has variants disabled"})
	case errors.Is(err, service.ErrMissingAttributeReference):
		apperrors.RespondWithValidationError(c, apperrors.AttributeMissingReference, err.Error(), map[string]string{
			"attributes": err.Error(),
		})
	case errors.Is(err, service.ErrAmbiguousAttributeReference):
		apperrors.RespondWithValidationError(c, apperrors.AttributeMissingReference, err.Error(), map[string]string{
			"attributes": err.Error(),
		})
	case errors.Is(err, service.ErrBlankAttributeValue):
		apperrors.RespondWithValidationError(c, apperrors.ValidationBlankValue, err.Error(), map[string]string{
			"attributes": err.Error(),
		})
	case errors.Is(err, service.ErrDuplicateVariantAttributes):
		apperrors.RespondWithValidationError(c, apperrors.VariantDuplicateAttributes, err.Error(), map[string]string{
			"attributes": err.Error(),
		})
	case errors.As(err, &unresolved):
		apperrors.RespondWithValidationError(c, apperrors.AttributeUnresolvedReference, unresolved.Error(), map[string]string{
			"attributes": unresolved.Error(),
		})
	case errors.As(err, &missingRequired):
		apperrors.RespondWithValidationError(c, apperrors.AttributeMissingRequired, missingRequired.Error(), map[string]string{
			"attributes": missingRequired.Error(),
		})
	case errors.As(err, &tooMany):
		apperrors.RespondWithValidationError(c, apperrors.AttributeTooManyValues, tooMany.Error(), map[string]string{
			"attributes": tooMany.Error(),
		})
	case errors.As(err, &incomplete):
		apperrors.RespondWithValidationError(c, apperrors.AttributeIncompleteVariant, incomplete.Error(), map[string]string{
			"attributes": incomplete.Error(),
		})
	default:
		log.Error("Product operation failed", err, map[string]interface{}{
			"operation": operation,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "product")
	}
}
