package errors

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrorInfo pairs a machine code with a user-facing message.
type ErrorInfo struct {
	Code    string
	Message string
}

// Postgres SQLSTATE codes we care about.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
)

// ParseError converts a storage error into an ErrorInfo suitable for the
// API response. Sensitive driver details are hidden; the context string
// ("attribute", "product type", ...) selects the not-found message.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: "An internal error occurred"}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Code: ResourceNotFound, Message: notFoundMessage(context)}
	}

	// Postgres errors surface as *pgconn.PgError with the pgx-based driver;
	// fall back to string matching for other drivers (sqlite in tests).
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return parseDuplicateKeyError(pgErr.ConstraintName + " " + pgErr.Detail)
		case pgForeignKeyViolation:
			return ErrorInfo{Code: ResourceConflict, Message: "Referenced data is missing or still in use"}
		case pgNotNullViolation:
			return ErrorInfo{Code: ValidationRequired, Message: "A required field was missing"}
		}
	}

	errStr := strings.ToLower(err.Error())

	if strings.Contains(errStr, "duplicate key") || strings.Contains(errStr, "unique constraint") {
		return parseDuplicateKeyError(errStr)
	}
	if strings.Contains(errStr, "foreign key constraint") {
		return ErrorInfo{Code: ResourceConflict, Message: "Referenced data is missing or still in use"}
	}
	if strings.Contains(errStr, "violates not-null constraint") {
		return ErrorInfo{Code: ValidationRequired, Message: "A required field was missing"}
	}
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "timeout") {
		return ErrorInfo{Code: InternalDatabaseError, Message: "Storage is unreachable, please retry shortly"}
	}

	return ErrorInfo{Code: InternalServerError, Message: "An internal error occurred"}
}

func parseDuplicateKeyError(errStr string) ErrorInfo {
	errStr = strings.ToLower(errStr)

	switch {
	case strings.Contains(errStr, "idx_attribute_value_slug"):
		return ErrorInfo{Code: AttributeValueDuplicate, Message: "A value with this slug already exists for the attribute"}
	case strings.Contains(errStr, "idx_attribute_product"), strings.Contains(errStr, "idx_attribute_variant"):
		return ErrorInfo{Code: AttributeAlreadyAssigned, Message: "The attribute is already assigned to this product type"}
	case strings.Contains(errStr, "idx_assigned_product_attribute"), strings.Contains(errStr, "idx_assigned_variant_attribute"):
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "The attribute is already assigned to this item"}
	case strings.Contains(errStr, "attributes") && strings.Contains(errStr, "slug"):
		return ErrorInfo{Code: AttributeSlugExists, Message: "An attribute with this slug already exists"}
	case strings.Contains(errStr, "products") && strings.Contains(errStr, "slug"):
		return ErrorInfo{Code: ProductSlugExists, Message: "A product with this slug already exists"}
	case strings.Contains(errStr, "sku"):
		return ErrorInfo{Code: VariantSKUExists, Message: "A variant with this SKU already exists"}
	case strings.Contains(errStr, "email"):
		return ErrorInfo{Code: AuthEmailAlreadyExists, Message: "This email is already in use"}
	case strings.Contains(errStr, "slug"):
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "This slug is already in use"}
	}

	return ErrorInfo{Code: ResourceAlreadyExists, Message: "The record already exists"}
}

// ParseAndRespond parses a storage error and writes the standard payload.
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	errorInfo := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   errorInfo.Code,
		Message: errorInfo.Message,
	})
}

func notFoundMessage(context string) string {
	switch context {
	case "attribute":
		return "Attribute not found"
	case "attribute value":
		return "Attribute value not found"
	case "product type":
		return "Product type not found"
	case "product":
		return "Product not found"
	case "variant":
		return "Product variant not found"
	case "user":
		return "User not found"
	default:
		return "Resource not found"
	}
}
