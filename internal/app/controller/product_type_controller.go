package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apperrors "github.com/hanifn/catalog-backend/internal/errors"
	"github.com/hanifn/catalog-backend/internal/app/model"
	"github.com/hanifn/catalog-backend/internal/app/service"
	"github.com/hanifn/catalog-backend/internal/middleware"
	"github.com/hanifn/catalog-backend/pkg/ordering"
)

type ProductTypeController struct {
	productTypeService service.ProductTypeService
}

func NewProductTypeController(productTypeService service.ProductTypeService) *ProductTypeController {
	return &ProductTypeController{
		productTypeService: productTypeService,
	}
}

type ProductTypeRequest struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug"`
	HasVariants *bool  `json:"has_variants"`
}

type AssignAttributesRequest struct {
	Operations []AssignOperationRequest `json:"operations" binding:"required,min=1,dive"`
}

type AssignOperationRequest struct {
	AttributeID uint   `json:"attribute_id" binding:"required"`
	Type        string `json:"type" binding:"required"`
}

type UnassignAttributesRequest struct {
	AttributeIDs []uint `json:"attribute_ids" binding:"required,min=1"`
}

type ReorderBindingsRequest struct {
	Type  string        `json:"type" binding:"required"`
	Moves []MoveRequest `json:"moves" binding:"required,min=1"`
}

// GetProductTypes returns product types with their attribute bindings
// GET /api/v1/product-types
func (ctrl *ProductTypeController) GetProductTypes(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	opts := service.ProductTypeListOptions{
		Search: c.Query("search"),
	}
	opts.Limit, _ = strconv.Atoi(c.Query("limit"))
	opts.Offset, _ = strconv.Atoi(c.Query("offset"))

	productTypes, err := ctrl.productTypeService.ListProductTypes(opts)
	if err != nil {
		log.Error("Failed to fetch product types", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "product type")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product_types": productTypes,
		"count":         len(productTypes),
	})
}

// GetProductTypeByID returns one product type
// GET /api/v1/product-types/:id
func (ctrl *ProductTypeController) GetProductTypeByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	productType, err := ctrl.productTypeService.GetProductTypeByID(id)
	if err != nil {
		ctrl.respondProductTypeError(c, err, "get product type")
		return
	}
	c.JSON(http.StatusOK, gin.H{"product_type": productType})
}

// CreateProductType creates a product type
// POST /api/v1/product-types
func (ctrl *ProductTypeController) CreateProductType(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ProductTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid product type request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	hasVariants := true
	if req.HasVariants != nil {
		hasVariants = *req.HasVariants
	}
	productType, err := ctrl.productTypeService.CreateProductType(service.ProductTypeInput{
		Name:        req.Name,
		Slug:        req.Slug,
		HasVariants: hasVariants,
	})
	if err != nil {
		ctrl.respondProductTypeError(c, err, "create product type")
		return
	}

	log.Info("Product type created", map[string]interface{}{
		"product_type_id": productType.ID,
	})
	c.JSON(http.StatusCreated, gin.H{"product_type": productType})
}

// UpdateProductType updates a product type
// PUT /api/v1/product-types/:id
func (ctrl *ProductTypeController) UpdateProductType(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ProductTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid product type request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	hasVariants := true
	if req.HasVariants != nil {
		hasVariants = *req.HasVariants
	}
	productType, err := ctrl.productTypeService.UpdateProductType(id, service.ProductTypeInput{
		Name:        req.Name,
		Slug:        req.Slug,
		HasVariants: hasVariants,
	})
	if err != nil {
		ctrl.respondProductTypeError(c, err, "update product type")
		return
	}
	c.JSON(http.StatusOK, gin.H{"product_type": productType})
}

// DeleteProductType deletes a product type and its bindings
// DELETE /api/v1/product-types/:id
func (ctrl *ProductTypeController) DeleteProductType(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.productTypeService.DeleteProductType(id); err != nil {
		ctrl.respondProductTypeError(c, err, "delete product type")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product type deleted"})
}

// AssignAttributes binds attributes to the product type
// POST /api/v1/product-types/:id/attributes/assign
func (ctrl *ProductTypeController) AssignAttributes(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AssignAttributesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid assign request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	input := service.AssignAttributesInput{
		Operations: make([]service.AssignOperation, len(req.Operations)),
	}
	for i, op := range req.Operations {
		input.Operations[i] = service.AssignOperation{
			AttributeID: op.AttributeID,
			Type:        model.AttributeType(op.Type),
		}
	}

	productType, err := ctrl.productTypeService.AssignAttributes(id, input)
	if err != nil {
		ctrl.respondProductTypeError(c, err, "assign attributes")
		return
	}
	c.JSON(http.StatusOK, gin.H{"product_type": productType})
}

// UnassignAttributes removes attributes from either role of the product type
// POST /api/v1/product-types/:id/attributes/unassign
func (ctrl *ProductTypeController) UnassignAttributes(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UnassignAttributesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid unassign request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	productType, err := ctrl.productTypeService.UnassignAttributes(id, req.AttributeIDs)
	if err != nil {
		ctrl.respondProductTypeError(c, err, "unassign attributes")
		return
	}
	c.JSON(http.StatusOK, gin.H{"product_type": productType})
}

// ReorderAttributes moves bindings of one role of the product type
// POST /api/v1/product-types/:id/attributes/reorder
func (ctrl *ProductTypeController) ReorderAttributes(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ReorderBindingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid reorder request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	moves := ReorderRequest{Moves: req.Moves}.toMoves()
	productType, err := ctrl.productTypeService.ReorderAttributes(id, model.AttributeType(req.Type), moves)
	if err != nil {
		ctrl.respondProductTypeError(c, err, "reorder attributes")
		return
	}
	c.JSON(http.StatusOK, gin.H{"product_type": productType})
}

func (ctrl *ProductTypeController) respondProductTypeError(c *gin.Context, err error, operation string) {
	log := middleware.GetLoggerFromContext(c)

	var unknownAttrs *service.UnknownAttributesError
	var alreadyAssigned *service.AlreadyAssignedError
	var notAssignable *service.NotAssignableToVariantsError

	switch {
	case errors.Is(err, service.ErrProductTypeNotFound):
		apperrors.NotFound(c, apperrors.ProductTypeNotFound, "Product type not found")
	case errors.Is(err, service.ErrInvalidBindingRole):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Binding role must be PRODUCT or VARIANT")
	case errors.Is(err, service.ErrVariantsDisabled):
		apperrors.RespondWithValidationError(c, apperrors.ProductTypeVariantsDisabled,
			"Variant attributes cannot be assigned: the product type has variants disabled",
			map[string]string{"operations": "the product type has variants disabled"})
	case errors.As(err, &unknownAttrs):
		apperrors.RespondWithValidationError(c, apperrors.AttributeNotFound, unknownAttrs.Error(), map[string]string{
			"operations": unknownAttrs.Error(),
		})
	case errors.As(err, &alreadyAssigned):
		apperrors.RespondWithValidationError(c, apperrors.AttributeAlreadyAssigned, alreadyAssigned.Error(), map[string]string{
			"operations": alreadyAssigned.Error(),
		})
	case errors.As(err, &notAssignable):
		apperrors.RespondWithValidationError(c, apperrors.AttributeNotAssignableVariant, notAssignable.Error(), map[string]string{
			"operations": notAssignable.Error(),
		})
	default:
		respondOrderingError(c, err, func() {
			log.Error("Product type operation failed", err, map[string]interface{}{
				"operation": operation,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "product type")
		})
	}
}

// respondOrderingError maps unknown-ID reorder failures, falling back to the
// given handler for everything else.
func respondOrderingError(c *gin.Context, err error, fallback func()) {
	var unknownIDs *ordering.UnknownIDsError
	if errors.As(err, &unknownIDs) {
		apperrors.RespondWithValidationError(c, apperrors.ValidationInvalidID, err.Error(), map[string]string{
			"moves": err.Error(),
		})
		return
	}
	fallback()
}
