package db

import (
	"github.com/hanifn/catalog-backend/internal/app/model"
	"github.com/hanifn/catalog-backend/pkg/logger"
)

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.User{},
		&model.Attribute{},
		&model.AttributeValue{},
		&model.ProductType{},
		&model.AttributeProduct{},
		&model.AttributeVariant{},
		&model.Product{},
		&model.ProductVariant{},
		&model.AssignedProductAttribute{},
		&model.AssignedVariantAttribute{},
	}

	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}
