package main

import (
	"fmt"
	"log"

	"github.com/hanifn/catalog-backend/config"
	"github.com/hanifn/catalog-backend/internal/app/model"
	"github.com/hanifn/catalog-backend/internal/app/repository"
	"github.com/hanifn/catalog-backend/internal/app/service"
	"github.com/hanifn/catalog-backend/internal/db"
	"github.com/hanifn/catalog-backend/pkg/logger"
)

// Seeds a demo catalog: an admin account, a few attributes, a product type
// with both binding roles, and one product with two variants.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.Initialize(logger.Config{Level: "info", Format: "console", EnableColor: true})

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	userRepo := repository.NewUserRepository(db.GetDB())
	attributeRepo := repository.NewAttributeRepository(db.GetDB())
	productTypeRepo := repository.NewProductTypeRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())
	variantRepo := repository.NewVariantRepository(db.GetDB())

	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry, cfg.JWT.RefreshTokenExpiry)
	attributeService := service.NewAttributeService(attributeRepo)
	productTypeService := service.NewProductTypeService(productTypeRepo, attributeRepo)
	productService := service.NewProductService(productRepo, variantRepo, productTypeRepo, db.GetDB())

	if _, _, err := authService.Register("admin@example.com", "admin-password", "Admin", model.RoleAdmin); err != nil {
		if err == service.ErrEmailAlreadyExists {
			fmt.Println("Admin account already exists, skipping")
		} else {
			log.Fatal("Failed to create admin account:", err)
		}
	}

	material, err := attributeService.CreateAttribute(service.CreateAttributeInput{
		AttributeInput: service.AttributeInput{
			Name:                "Material",
			InputType:           model.InputTypeDropdown,
			ValueRequired:       true,
			VisibleInStorefront: true,
			AvailableInGrid:     true,
		},
		Values: []string{"Cotton", "Polyester"},
	})
	if err != nil {
		log.Fatal("Failed to create Material attribute:", err)
	}

	size, err := attributeService.CreateAttribute(service.CreateAttributeInput{
		AttributeInput: service.AttributeInput{
			Name:                "Size",
			InputType:           model.InputTypeDropdown,
			ValueRequired:       true,
			VisibleInStorefront: true,
			AvailableInGrid:     true,
		},
		Values: []string{"S", "M", "L"},
	})
	if err != nil {
		log.Fatal("Failed to create Size attribute:", err)
	}

	tshirt, err := productTypeService.CreateProductType(service.ProductTypeInput{
		Name:        "T-Shirt",
		HasVariants: true,
	})
	if err != nil {
		log.Fatal("Failed to create product type:", err)
	}

	_, err = productTypeService.AssignAttributes(tshirt.ID, service.AssignAttributesInput{
		Operations: []service.AssignOperation{
			{AttributeID: material.ID, Type: model.AttributeTypeProduct},
			{AttributeID: size.ID, Type: model.AttributeTypeVariant},
		},
	})
	if err != nil {
		log.Fatal("Failed to assign attributes:", err)
	}

	materialRef := material.Slug
	sizeRef := size.Slug
	product, err := productService.CreateProduct(service.ProductInput{
		Name:          "Basic Tee",
		ProductTypeID: tshirt.ID,
		IsPublished:   true,
		Attributes: []service.AttributeValueInput{
			{Slug: &materialRef, Values: []string{"Cotton"}},
		},
	})
	if err != nil {
		log.Fatal("Failed to create product:", err)
	}

	for i, sizeName := range []string{"S", "M"} {
		_, err := productService.CreateVariant(product.ID, service.VariantInput{
			SKU:            fmt.Sprintf("TEE-%s", sizeName),
			Price:          1500 + i*100,
			Quantity:       50,
			TrackInventory: true,
			Attributes: []service.AttributeValueInput{
				{Slug: &sizeRef, Values: []string{sizeName}},
			},
		})
		if err != nil {
			log.Fatal("Failed to create variant:", err)
		}
	}

	fmt.Println("Seed completed")
}
