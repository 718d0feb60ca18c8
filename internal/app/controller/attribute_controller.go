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

type AttributeController struct {
	attributeService service.AttributeService
}

func NewAttributeController(attributeService service.AttributeService) *AttributeController {
	return &AttributeController{
		attributeService: attributeService,
	}
}

type CreateAttributeRequest struct {
	Name                     string   `json:"name" binding:"required"`
	Slug                     string   `json:"slug"`
	InputType                string   `json:"input_type"`
	ValueRequired            bool     `json:"value_required"`
	VisibleInStorefront      bool     `json:"visible_in_storefront"`
	FilterableInStorefront   bool     `json:"filterable_in_storefront"`
	FilterableInDashboard    bool     `json:"filterable_in_dashboard"`
	StorefrontSearchPosition int      `json:"storefront_search_position"`
	AvailableInGrid          bool     `json:"available_in_grid"`
	Values                   []string `json:"values"`
}

type UpdateAttributeRequest struct {
	Name                     string   `json:"name" binding:"required"`
	Slug                     string   `json:"slug"`
	InputType                string   `json:"input_type"`
	ValueRequired            bool     `json:"value_required"`
	VisibleInStorefront      bool     `json:"visible_in_storefront"`
	FilterableInStorefront   bool     `json:"filterable_in_storefront"`
	FilterableInDashboard    bool     `json:"filterable_in_dashboard"`
	StorefrontSearchPosition int      `json:"storefront_search_position"`
	AvailableInGrid          bool     `json:"available_in_grid"`
	AddValues                []string `json:"add_values"`
	RemoveValueIDs           []uint   `json:"remove_value_ids"`
}

type AttributeValueRequest struct {
	Name  string `json:"name" binding:"required"`
	Value string `json:"value"`
}

type BulkDeleteRequest struct {
	IDs []uint `json:"ids" binding:"required,min=1"`
}

type MoveRequest struct {
	ID       uint `json:"id" binding:"required"`
	Position int  `json:"position"`
}

type ReorderRequest struct {
	Moves []MoveRequest `json:"moves" binding:"required,min=1"`
}

func (r ReorderRequest) toMoves() []ordering.Move {
	moves := make([]ordering.Move, len(r.Moves))
	for i, move := range r.Moves {
		moves[i] = ordering.Move{ID: move.ID, Position: move.Position}
	}
	return moves
}

// GetAttributes returns attributes matching the query filters
// GET /api/v1/attributes
func (ctrl *AttributeController) GetAttributes(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	opts := service.AttributeListOptions{
		Search:        c.Query("search"),
		SortBy:        c.Query("sort_by"),
		SortAscending: c.DefaultQuery("order", "asc") != "desc",
	}
	if visible := c.Query("visible_in_storefront"); visible != "" {
		value := visible == "true"
		opts.VisibleInStorefront = &value
	}
	if required := c.Query("value_required"); required != "" {
		value := required == "true"
		opts.ValueRequired = &value
	}
	opts.Limit, _ = strconv.Atoi(c.Query("limit"))
	opts.Offset, _ = strconv.Atoi(c.Query("offset"))

	attributes, err := ctrl.attributeService.ListAttributes(opts)
	if err != nil {
		log.Error("Failed to fetch attributes", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "attribute")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"attributes": attributes,
		"count":      len(attributes),
	})
}

// GetAttributeByID returns one attribute with its values
// GET /api/v1/attributes/:id
func (ctrl *AttributeController) GetAttributeByID(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	attribute, err := ctrl.attributeService.GetAttributeByID(id)
	if err != nil {
		if errors.Is(err, service.ErrAttributeNotFound) {
			apperrors.NotFound(c, apperrors.AttributeNotFound, "Attribute not found")
			return
		}
		log.Error("Failed to fetch attribute", err, map[string]interface{}{
			"attribute_id": id,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "attribute")
		return
	}

	c.JSON(http.StatusOK, gin.H{"attribute": attribute})
}

// CreateAttribute creates an attribute, optionally with initial values
// POST /api/v1/attributes
func (ctrl *AttributeController) CreateAttribute(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateAttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid attribute creation request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	attribute, err := ctrl.attributeService.CreateAttribute(service.CreateAttributeInput{
		AttributeInput: service.AttributeInput{
			Name:                     req.Name,
			Slug:                     req.Slug,
			InputType:                model.AttributeInputType(req.InputType),
			ValueRequired:            req.ValueRequired,
			VisibleInStorefront:      req.VisibleInStorefront,
			FilterableInStorefront:   req.FilterableInStorefront,
			FilterableInDashboard:    req.FilterableInDashboard,
			StorefrontSearchPosition: req.StorefrontSearchPosition,
			AvailableInGrid:          req.AvailableInGrid,
		},
		Values: req.Values,
	})
	if err != nil {
		ctrl.respondAttributeError(c, err, "create attribute")
		return
	}

	log.Info("Attribute created", map[string]interface{}{
		"attribute_id": attribute.ID,
		"slug":         attribute.Slug,
	})
	c.JSON(http.StatusCreated, gin.H{"attribute": attribute})
}

// UpdateAttribute updates an attribute and applies value additions/removals
// PUT /api/v1/attributes/:id
func (ctrl *AttributeController) UpdateAttribute(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateAttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid attribute update request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	attribute, err := ctrl.attributeService.UpdateAttribute(id, service.UpdateAttributeInput{
		AttributeInput: service.AttributeInput{
			Name:                     req.Name,
			Slug:                     req.Slug,
			InputType:                model.AttributeInputType(req.InputType),
			ValueRequired:            req.ValueRequired,
			VisibleInStorefront:      req.VisibleInStorefront,
			FilterableInStorefront:   req.FilterableInStorefront,
			FilterableInDashboard:    req.FilterableInDashboard,
			StorefrontSearchPosition: req.StorefrontSearchPosition,
			AvailableInGrid:          req.AvailableInGrid,
		},
		AddValues:      req.AddValues,
		RemoveValueIDs: req.RemoveValueIDs,
	})
	if err != nil {
		ctrl.respondAttributeError(c, err, "update attribute")
		return
	}

	c.JSON(http.StatusOK, gin.H{"attribute": attribute})
}

// DeleteAttribute deletes one attribute
// DELETE /api/v1/attributes/:id
func (ctrl *AttributeController) DeleteAttribute(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.attributeService.DeleteAttribute(id); err != nil {
		ctrl.respondAttributeError(c, err, "delete attribute")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Attribute deleted"})
}

// BulkDeleteAttributes deletes several attributes in one transaction
// POST /api/v1/attributes/bulk-delete
func (ctrl *AttributeController) BulkDeleteAttributes(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid bulk delete request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	if err := ctrl.attributeService.DeleteAttributes(req.IDs); err != nil {
		ctrl.respondAttributeError(c, err, "bulk delete attributes")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Attributes deleted",
		"count":   len(req.IDs),
	})
}

// CreateAttributeValue adds a value at the end of the attribute's list
// POST /api/v1/attributes/:id/values
func (ctrl *AttributeController) CreateAttributeValue(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AttributeValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid attribute value request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	value, err := ctrl.attributeService.CreateValue(id, service.ValueInput{Name: req.Name, Value: req.Value})
	if err != nil {
		ctrl.respondAttributeError(c, err, "create attribute value")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"value": value})
}

// UpdateAttributeValue renames a value
// PUT /api/v1/attributes/values/:valueId
func (ctrl *AttributeController) UpdateAttributeValue(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	valueID, ok := parseIDParam(c, "valueId")
	if !ok {
		return
	}

	var req AttributeValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid attribute value request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	value, err := ctrl.attributeService.UpdateValue(valueID, service.ValueInput{Name: req.Name, Value: req.Value})
	if err != nil {
		ctrl.respondAttributeError(c, err, "update attribute value")
		return
	}
	c.JSON(http.StatusOK, gin.H{"value": value})
}

// DeleteAttributeValue removes a value and compacts the remaining ranks
// DELETE /api/v1/attributes/values/:valueId
func (ctrl *AttributeController) DeleteAttributeValue(c *gin.Context) {
	valueID, ok := parseIDParam(c, "valueId")
	if !ok {
		return
	}

	if err := ctrl.attributeService.DeleteValue(valueID); err != nil {
		ctrl.respondAttributeError(c, err, "delete attribute value")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Attribute value deleted"})
}

// ReorderAttributeValues applies moves to the attribute's value list
// POST /api/v1/attributes/:id/values/reorder
func (ctrl *AttributeController) ReorderAttributeValues(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid reorder request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	if err := ctrl.attributeService.ReorderValues(id, req.toMoves()); err != nil {
		ctrl.respondAttributeError(c, err, "reorder attribute values")
		return
	}

	attribute, err := ctrl.attributeService.GetAttributeByID(id)
	if err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "attribute")
		return
	}
	c.JSON(http.StatusOK, gin.H{"attribute": attribute})
}

func (ctrl *AttributeController) respondAttributeError(c *gin.Context, err error, operation string) {
	log := middleware.GetLoggerFromContext(c)

	var duplicates *service.DuplicateValuesError
	var unknownIDs *ordering.UnknownIDsError

	switch {
	case errors.Is(err, service.ErrAttributeNotFound):
		apperrors.NotFound(c, apperrors.AttributeNotFound, "Attribute not found")
	case errors.Is(err, service.ErrAttributeValueNotFound):
		apperrors.NotFound(c, apperrors.AttributeValueNotFound, "Attribute value not found")
	case errors.Is(err, service.ErrInvalidInputType):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Unknown attribute input type")
	case errors.Is(err, service.ErrBlankValueName):
		apperrors.BadRequest(c, apperrors.ValidationBlankValue, "Attribute value names cannot be blank")
	case errors.Is(err, service.ErrAttributeValueExists):
		apperrors.Conflict(c, apperrors.AttributeValueDuplicate, "The attribute already has a value with this name")
	case errors.As(err, &duplicates):
		apperrors.RespondWithValidationError(c, apperrors.AttributeValueDuplicate, duplicates.Error(), map[string]string{
			"values": duplicates.Error(),
		})
	case errors.As(err, &unknownIDs):
		apperrors.RespondWithValidationError(c, apperrors.ValidationInvalidID, unknownIDs.Error(), map[string]string{
			"moves": unknownIDs.Error(),
		})
	default:
		log.Error("Attribute operation failed", err, map[string]interface{}{
			"operation": operation,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "attribute")
	}
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	idStr := c.Param(name)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid ID")
		return 0, false
	}
	return uint(id), true
}
