package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hanifn/catalog-backend/internal/app/controller"
	"github.com/hanifn/catalog-backend/internal/app/model"
	"github.com/hanifn/catalog-backend/internal/app/repository"
	"github.com/hanifn/catalog-backend/internal/app/service"
	"github.com/hanifn/catalog-backend/internal/db"
	"github.com/hanifn/catalog-backend/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type TestServer struct {
	Router      *gin.Engine
	DB          *gorm.DB
	AuthService service.AuthService
}

func setupIntegrationTest(t *testing.T) *TestServer {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	// Setup repositories
	userRepo := repository.NewUserRepository(testDB)
	attributeRepo := repository.NewAttributeRepository(testDB)
	productTypeRepo := repository.NewProductTypeRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	variantRepo := repository.NewVariantRepository(testDB)

	// Setup services
	authService := service.NewAuthService(
		userRepo,
		"test-secret",
		15*time.Minute,
		7*24*time.Hour,
	)
	attributeService := service.NewAttributeService(attributeRepo)
	productTypeService := service.NewProductTypeService(productTypeRepo, attributeRepo)
	productService := service.NewProductService(productRepo, variantRepo, productTypeRepo, testDB)

	// Setup controllers
	authController := controller.NewAuthController(authService, 15*time.Minute)
	attributeController := controller.NewAttributeController(attributeService)
	productTypeController := controller.NewProductTypeController(productTypeService)
	productController := controller.NewProductController(productService)

	// Setup middleware
	authMiddleware := middleware.NewAuthMiddleware("test-secret")
	staff := []string{string(model.RoleStaff), string(model.RoleAdmin)}

	// Setup router
	router := gin.New()

	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.GET("/me", authMiddleware.Authenticate(), authController.Me)
	}

	attributes := router.Group("/api/v1/attributes")
	attributes.Use(authMiddleware.Authenticate(), authMiddleware.RequireRole(staff...))
	{
		attributes.GET("", attributeController.GetAttributes)
		attributes.POST("", attributeController.CreateAttribute)
		attributes.GET("/:id", attributeController.GetAttributeByID)
		attributes.POST("/:id/values", attributeController.CreateAttributeValue)
		attributes.POST("/:id/reorder", attributeController.ReorderAttributeValues)
	}

	productTypes := router.Group("/api/v1/product-types")
	productTypes.Use(authMiddleware.Authenticate(), authMiddleware.RequireRole(staff...))
	{
		productTypes.POST("", productTypeController.CreateProductType)
		productTypes.GET("/:id", productTypeController.GetProductTypeByID)
		productTypes.POST("/:id/attributes/assign", productTypeController.AssignAttributes)
		productTypes.POST("/:id/attributes/unassign", productTypeController.UnassignAttributes)
	}

	products := router.Group("/api/v1/products")
	products.Use(authMiddleware.Authenticate(), authMiddleware.RequireRole(staff...))
	{
		products.GET("", productController.GetProducts)
		products.POST("", productController.CreateProduct)
		products.GET("/:id", productController.GetProductByID)
		products.POST("/:id/variants", productController.CreateVariant)
	}

	return &TestServer{
		Router:      router,
		DB:          testDB,
		AuthService: authService,
	}
}

func (ts *TestServer) request(t *testing.T, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func registerStaff(t *testing.T, ts *TestServer, email string) string {
	w := ts.request(t, "POST", "/api/v1/auth/register", "", map[string]string{
		"email":    email,
		"password": "password123",
		"name":     "Catalog Staff",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	resp := decodeBody(t, w)
	return resp["access_token"].(string)
}

func TestCatalogSetupJourney(t *testing.T) {
	ts := setupIntegrationTest(t)
	defer db.CleanupTestDB(ts.DB)

	// 1. Register a staff account
	t.Log("Step 1: Register staff account")
	token := registerStaff(t, ts, "staff@example.com")

	// 2. Create the attributes
	t.Log("Step 2: Create attributes")
	w := ts.request(t, "POST", "/api/v1/attributes", token, map[string]interface{}{
		"name":           "Color",
		"value_required": true,
		"values":         []string{"Red", "Blue"},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	resp := decodeBody(t, w)
	colorAttr := resp["attribute"].(map[string]interface{})
	colorID := uint(colorAttr["id"].(float64))
	assert.Equal(t, "color", colorAttr["slug"])
	assert.Equal(t, "dropdown", colorAttr["input_type"])

	w = ts.request(t, "POST", "/api/v1/attributes", token, map[string]interface{}{
		"name":   "Size",
		"values": []string{"S", "M"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	sizeID := uint(decodeBody(t, w)["attribute"].(map[string]interface{})["id"].(float64))

	// 3. Create a product type and bind the attributes to their roles
	t.Log("Step 3: Create product type and assign attributes")
	w = ts.request(t, "POST", "/api/v1/product-types", token, map[string]interface{}{
		"name": "T-Shirt",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	productTypeID := uint(decodeBody(t, w)["product_type"].(map[string]interface{})["id"].(float64))

	w = ts.request(t, "POST", fmt.Sprintf("/api/v1/product-types/%d/attributes/assign", productTypeID), token, map[string]interface{}{
		"operations": []map[string]interface{}{
			{"attribute_id": colorID, "type": "PRODUCT"},
			{"attribute_id": sizeID, "type": "VARIANT"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	productType := decodeBody(t, w)["product_type"].(map[string]interface{})
	assert.Len(t, productType["product_attributes"], 1)
	assert.Len(t, productType["variant_attributes"], 1)

	// 4. Create a product, selecting the color by slug
	t.Log("Step 4: Create product")
	w = ts.request(t, "POST", "/api/v1/products", token, map[string]interface{}{
		"name":            "Basic Tee",
		"product_type_id": productTypeID,
		"is_published":    true,
		"attributes": []map[string]interface{}{
			{"slug": "color", "values": []string{"Red"}},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	productID := uint(decodeBody(t, w)["product"].(map[string]interface{})["id"].(float64))

	// 5. Create variants covering the size attribute
	t.Log("Step 5: Create variants")
	w = ts.request(t, "POST", fmt.Sprintf("/api/v1/products/%d/variants", productID), token, map[string]interface{}{
		"sku":   "TEE-S",
		"price": 1500,
		"attributes": []map[string]interface{}{
			{"slug": "size", "values": []string{"S"}},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.request(t, "POST", fmt.Sprintf("/api/v1/products/%d/variants", productID), token, map[string]interface{}{
		"sku":   "TEE-M",
		"price": 1200,
		"attributes": []map[string]interface{}{
			{"slug": "size", "values": []string{"M"}},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// 6. A variant repeating an existing combination is rejected
	t.Log("Step 6: Reject duplicate variant combination")
	w = ts.request(t, "POST", fmt.Sprintf("/api/v1/products/%d/variants", productID), token, map[string]interface{}{
		"sku":   "TEE-S2",
		"price": 1500,
		"attributes": []map[string]interface{}{
			{"slug": "size", "values": []string{"S"}},
		},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := decodeBody(t, w)["fields"].(map[string]interface{})
	assert.Contains(t, fields, "attributes")

	// 7. The product carries its assignments and the cached minimal price
	t.Log("Step 7: Verify product detail")
	w = ts.request(t, "GET", fmt.Sprintf("/api/v1/products/%d", productID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	product := decodeBody(t, w)["product"].(map[string]interface{})
	assert.Equal(t, float64(1200), product["minimal_variant_price"])
	assert.Len(t, product["variants"], 2)
	assert.Len(t, product["attributes"], 1)
}

func TestProductValidationOverHTTP(t *testing.T) {
	ts := setupIntegrationTest(t)
	defer db.CleanupTestDB(ts.DB)

	token := registerStaff(t, ts, "staff@example.com")

	w := ts.request(t, "POST", "/api/v1/attributes", token, map[string]interface{}{
		"name":           "Material",
		"value_required": true,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.request(t, "POST", "/api/v1/product-types", token, map[string]interface{}{
		"name": "Sweater",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	productTypeID := uint(decodeBody(t, w)["product_type"].(map[string]interface{})["id"].(float64))

	materialID := uint(0)
	w = ts.request(t, "GET", "/api/v1/attributes?search=Material", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	attrs := decodeBody(t, w)["attributes"].([]interface{})
	require.Len(t, attrs, 1)
	materialID = uint(attrs[0].(map[string]interface{})["id"].(float64))

	w = ts.request(t, "POST", fmt.Sprintf("/api/v1/product-types/%d/attributes/assign", productTypeID), token, map[string]interface{}{
		"operations": []map[string]interface{}{
			{"attribute_id": materialID, "type": "PRODUCT"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	// Omitting a required attribute comes back as a field-scoped 400
	w = ts.request(t, "POST", "/api/v1/products", token, map[string]interface{}{
		"name":            "Wool Sweater",
		"product_type_id": productTypeID,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := decodeBody(t, w)["fields"].(map[string]interface{})
	assert.Contains(t, fields, "attributes")

	// Referencing an unbound attribute slug fails the same way
	w = ts.request(t, "POST", "/api/v1/products", token, map[string]interface{}{
		"name":            "Wool Sweater",
		"product_type_id": productTypeID,
		"attributes": []map[string]interface{}{
			{"slug": "material", "values": []string{"Wool"}},
			{"slug": "pattern", "values": []string{"Cable"}},
		},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthenticationFlow(t *testing.T) {
	ts := setupIntegrationTest(t)
	defer db.CleanupTestDB(ts.DB)

	// Register
	token := registerStaff(t, ts, "test@example.com")

	// Login
	w := ts.request(t, "POST", "/api/v1/auth/login", "", map[string]string{
		"email":    "test@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// Get user info
	w = ts.request(t, "GET", "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	user := decodeBody(t, w)["user"].(map[string]interface{})
	assert.Equal(t, "test@example.com", user["email"])
	assert.Equal(t, "staff", user["role"])
}

func TestUnauthorizedAccess(t *testing.T) {
	ts := setupIntegrationTest(t)
	defer db.CleanupTestDB(ts.DB)

	// Try to access protected routes without token
	protectedRoutes := []string{
		"/api/v1/auth/me",
		"/api/v1/attributes",
		"/api/v1/products",
	}

	for _, route := range protectedRoutes {
		t.Run(route, func(t *testing.T) {
			req := httptest.NewRequest("GET", route, nil)
			w := httptest.NewRecorder()

			ts.Router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}
