package router

import (
	"github.com/gin-gonic/gin"
	"github.com/hanifn/catalog-backend/config"
	"github.com/hanifn/catalog-backend/internal/app/controller"
	"github.com/hanifn/catalog-backend/internal/app/model"
	"github.com/hanifn/catalog-backend/internal/middleware"
)

type Router struct {
	authController        *controller.AuthController
	attributeController   *controller.AttributeController
	productTypeController *controller.ProductTypeController
	productController     *controller.ProductController
	uploadController      *controller.UploadController
	exportController      *controller.ExportController
	authMiddleware        *middleware.AuthMiddleware
	config                *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	attributeController *controller.AttributeController,
	productTypeController *controller.ProductTypeController,
	productController *controller.ProductController,
	uploadController *controller.UploadController,
	exportController *controller.ExportController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:        authController,
		attributeController:   attributeController,
		productTypeController: productTypeController,
		productController:     productController,
		uploadController:      uploadController,
		exportController:      exportController,
		authMiddleware:        authMiddleware,
		config:                cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "Catalog API is running",
		})
	})

	staff := []string{string(model.RoleStaff), string(model.RoleAdmin)}

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/refresh", r.authController.Refresh)
			auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.Me)
		}

		attributes := v1.Group("/attributes")
		attributes.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireRole(staff...))
		{
			attributes.GET("", r.attributeController.GetAttributes)
			attributes.GET("/:id", r.attributeController.GetAttributeByID)
			attributes.POST("", r.attributeController.CreateAttribute)
			attributes.PUT("/:id", r.attributeController.UpdateAttribute)
			attributes.DELETE("/:id", r.attributeController.DeleteAttribute)
			attributes.POST("/bulk-delete", r.attributeController.BulkDeleteAttributes)

			attributes.POST("/:id/values", r.attributeController.CreateAttributeValue)
			attributes.POST("/:id/values/reorder", r.attributeController.ReorderAttributeValues)
			attributes.PUT("/values/:valueId", r.attributeController.UpdateAttributeValue)
			attributes.DELETE("/values/:valueId", r.attributeController.DeleteAttributeValue)
		}

		productTypes := v1.Group("/product-types")
		productTypes.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireRole(staff...))
		{
			productTypes.GET("", r.productTypeController.GetProductTypes)
			productTypes.GET("/:id", r.productTypeController.GetProductTypeByID)
			productTypes.POST("", r.productTypeController.CreateProductType)
			productTypes.PUT("/:id", r.productTypeController.UpdateProductType)
			productTypes.DELETE("/:id", r.productTypeController.DeleteProductType)

			productTypes.POST("/:id/attributes/assign", r.productTypeController.AssignAttributes)
			productTypes.POST("/:id/attributes/unassign", r.productTypeController.UnassignAttributes)
			productTypes.POST("/:id/attributes/reorder", r.productTypeController.ReorderAttributes)
		}

		products := v1.Group("/products")
		products.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireRole(staff...))
		{
			products.GET("", r.productController.GetProducts)
			products.GET("/:id", r.productController.GetProductByID)
			products.POST("", r.productController.CreateProduct)
			products.PUT("/:id", r.productController.UpdateProduct)
			products.DELETE("/:id", r.productController.DeleteProduct)

			products.POST("/:id/variants", r.productController.CreateVariant)
			products.PUT("/variants/:variantId", r.productController.UpdateVariant)
			products.DELETE("/variants/:variantId", r.productController.DeleteVariant)
		}

		upload := v1.Group("/upload")
		upload.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireRole(staff...))
		{
			upload.POST("/presigned-url", r.uploadController.GeneratePresignedURL)
		}

		export := v1.Group("/export")
		export.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireRole(staff...))
		{
			export.GET("/products", r.exportController.ExportProducts)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
