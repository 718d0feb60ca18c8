package errors

// Machine error codes returned to the dashboard frontend.
// Format: CATEGORY_SPECIFIC_DETAIL; the frontend maps codes to messages.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden = "AUTHZ_FORBIDDEN"
	AuthzStaffOnly = "AUTHZ_STAFF_ONLY"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationRequired      = "VALIDATION_REQUIRED"
	ValidationBlankValue    = "VALIDATION_BLANK_VALUE"
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Attributes (ATTRIBUTE_) ====================
	AttributeNotFound             = "ATTRIBUTE_NOT_FOUND"
	AttributeSlugExists           = "ATTRIBUTE_SLUG_EXISTS"
	AttributeValueNotFound        = "ATTRIBUTE_VALUE_NOT_FOUND"
	AttributeValueDuplicate       = "ATTRIBUTE_VALUE_DUPLICATE"
	AttributeAlreadyAssigned      = "ATTRIBUTE_ALREADY_ASSIGNED"
	AttributeNotAssignableVariant = "ATTRIBUTE_NOT_ASSIGNABLE_TO_VARIANT"
	AttributeUnresolvedReference  = "ATTRIBUTE_UNRESOLVED_REFERENCE"
	AttributeMissingReference     = "ATTRIBUTE_MISSING_REFERENCE"
	AttributeMissingRequired      = "ATTRIBUTE_MISSING_REQUIRED"
	AttributeTooManyValues        = "ATTRIBUTE_TOO_MANY_VALUES"
	AttributeIncompleteVariant    = "ATTRIBUTE_INCOMPLETE_VARIANT"
	AttributeBindingNotFound      = "ATTRIBUTE_BINDING_NOT_FOUND"

	// ==================== Product types (PRODUCT_TYPE_) ====================
	ProductTypeNotFound         = "PRODUCT_TYPE_NOT_FOUND"
	ProductTypeVariantsDisabled = "PRODUCT_TYPE_VARIANTS_DISABLED"

	// ==================== Products (PRODUCT_) ====================
	ProductNotFound            = "PRODUCT_NOT_FOUND"
	ProductSlugExists          = "PRODUCT_SLUG_EXISTS"
	VariantNotFound            = "VARIANT_NOT_FOUND"
	VariantSKUExists           = "VARIANT_SKU_EXISTS"
	VariantDuplicateAttributes = "VARIANT_DUPLICATE_ATTRIBUTES"

	// ==================== Uploads (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== Export (EXPORT_) ====================
	ExportFailed = "EXPORT_FAILED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
)
