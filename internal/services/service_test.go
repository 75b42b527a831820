package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/neetrino/whiteshop/internal/database"
	"github.com/neetrino/whiteshop/internal/models"
)

// newTestDB ouvre une base SQLite en mémoire isolée par test,
// avec le même schéma que la prod (database.Migrate).
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("ouverture sqlite: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migration: %v", err)
	}

	return db
}

var testPricing = Pricing{
	Currency:         "eur",
	ShippingFlatRate: 5.90,
	FreeShippingOver: 80,
	TaxRate:          0.21,
}

func seedProduct(t *testing.T, db *gorm.DB, title, sku string, price float64, stock int) models.Product {
	t.Helper()

	p := models.Product{
		ID:       uuid.NewString(),
		Title:    title,
		SKU:      sku,
		Price:    price,
		Stock:    stock,
		IsActive: true,
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed produit: %v", err)
	}
	return p
}

func seedVariant(t *testing.T, db *gorm.DB, productID, title, sku string, price float64, stock int, options models.VariantOptions) models.ProductVariant {
	t.Helper()

	v := models.ProductVariant{
		ID:        uuid.NewString(),
		ProductID: productID,
		Title:     title,
		SKU:       sku,
		Price:     price,
		Stock:     stock,
		Options:   options,
		IsActive:  true,
	}
	if err := db.Create(&v).Error; err != nil {
		t.Fatalf("seed variante: %v", err)
	}
	if err := db.Model(&models.Product{}).Where("id = ?", productID).
		Update("has_variants", true).Error; err != nil {
		t.Fatalf("seed has_variants: %v", err)
	}
	return v
}

func validCheckout(items ...CheckoutItemInput) CheckoutInput {
	return CheckoutInput{
		Email: "client@example.com",
		Name:  "Jean Dupont",
		Address: models.Address{
			Street:     "12 rue des Lilas",
			City:       "Bruxelles",
			PostalCode: "1000",
			Country:    "BE",
		},
		Items: items,
	}
}
