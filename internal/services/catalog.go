package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/neetrino/whiteshop/internal/database"
	"github.com/neetrino/whiteshop/internal/models"
	"github.com/neetrino/whiteshop/internal/problem"
)

// CatalogService gère produits et variantes, et tient l'index de recherche à jour
type CatalogService struct {
	db     *gorm.DB
	search *SearchService // optionnel

	// invalidate purge le cache Redis du détail produit après chaque
	// écriture catalogue (remplaçable dans les tests)
	invalidate func(productID string)
}

func NewCatalogService(db *gorm.DB, search *SearchService) *CatalogService {
	return &CatalogService{db: db, search: search, invalidate: invalidateProductCache}
}

// ProductCacheKey est la clé Redis du détail produit mis en cache
func ProductCacheKey(id string) string {
	return "product:" + id
}

func invalidateProductCache(productID string) {
	if database.Redis == nil {
		return
	}
	database.Redis.Del(context.Background(), ProductCacheKey(productID))
}

func (s *CatalogService) dropCache(productID string) {
	if s.invalidate != nil && productID != "" {
		s.invalidate(productID)
	}
}

type ListProductsParams struct {
	Tag     string
	Page    int
	PerPage int
}

func (s *CatalogService) ListProducts(ctx context.Context, params ListProductsParams) ([]models.Product, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PerPage < 1 || params.PerPage > 100 {
		params.PerPage = 24
	}

	q := s.db.WithContext(ctx).Model(&models.Product{}).Where("is_active = ?", true)
	if params.Tag != "" {
		// Les tags sont un tableau JSON : filtre LIKE sur la valeur sérialisée
		q = q.Where("tags LIKE ?", "%\""+params.Tag+"\"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []models.Product
	err := q.Order("created_at DESC").
		Offset((params.Page - 1) * params.PerPage).
		Limit(params.PerPage).
		Find(&products).Error

	return products, total, err
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).
		Preload("Variants", "is_active = ?", true).
		Where("id = ? AND is_active = ?", id, true).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, problem.NotFound("produit introuvable: " + id)
		}
		return nil, err
	}
	return &product, nil
}

type ProductInput struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	SKU         string   `json:"sku" binding:"required"`
	Price       float64  `json:"price"`
	Stock       int      `json:"stock"`
	ImageURLs   []string `json:"image_urls"`
	Tags        []string `json:"tags"`
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	product := models.Product{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		SKU:         in.SKU,
		Price:       in.Price,
		Stock:       in.Stock,
		ImageURLs:   in.ImageURLs,
		Tags:        in.Tags,
		IsActive:    true,
	}

	if err := s.db.WithContext(ctx).Create(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, problem.Conflict("duplicate-sku", "ce SKU existe déjà: "+in.SKU)
		}
		return nil, err
	}

	s.reindex(product.ID)
	return &product, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id string, updates map[string]interface{}) (*models.Product, error) {
	res := s.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return nil, problem.Conflict("duplicate-sku", "ce SKU existe déjà")
		}
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, problem.NotFound("produit introuvable: " + id)
	}

	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}

	s.dropCache(product.ID)
	s.reindex(product.ID)
	return &product, nil
}

// DeleteProduct désactive le produit (soft delete : les commandes passées
// gardent leurs instantanés, le produit sort du catalogue et de l'index)
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return problem.NotFound("produit introuvable: " + id)
	}

	s.dropCache(id)
	if s.search != nil {
		go s.search.DeleteProduct(id)
	}
	return nil
}

func (s *CatalogService) ListVariants(ctx context.Context, productID string) ([]models.ProductVariant, error) {
	var variants []models.ProductVariant
	err := s.db.WithContext(ctx).
		Where("product_id = ? AND is_active = ?", productID, true).
		Order("created_at").
		Find(&variants).Error
	return variants, err
}

type VariantInput struct {
	SKU     string                 `json:"sku" binding:"required"`
	Title   string                 `json:"title"`
	Price   float64                `json:"price"`
	Stock   int                    `json:"stock"`
	Options []models.VariantOption `json:"options" binding:"required"`
}

func (s *CatalogService) CreateVariant(ctx context.Context, productID string, in VariantInput) (*models.ProductVariant, error) {
	variant := models.ProductVariant{
		ID:        uuid.NewString(),
		ProductID: productID,
		SKU:       in.SKU,
		Title:     in.Title,
		Price:     in.Price,
		Stock:     in.Stock,
		Options:   in.Options,
		IsActive:  true,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Where("id = ?", productID).First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return problem.NotFound("produit introuvable: " + productID)
			}
			return err
		}

		if err := tx.Create(&variant).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return problem.Conflict("duplicate-sku", "ce SKU existe déjà: "+in.SKU)
			}
			return err
		}

		return tx.Model(&product).Update("has_variants", true).Error
	})
	if err != nil {
		return nil, err
	}

	s.dropCache(productID)
	s.reindex(productID)
	return &variant, nil
}

func (s *CatalogService) UpdateVariant(ctx context.Context, variantID string, updates map[string]interface{}) error {
	res := s.db.WithContext(ctx).Model(&models.ProductVariant{}).
		Where("id = ?", variantID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return problem.NotFound("variante introuvable: " + variantID)
	}

	// Le détail produit mis en cache embarque les variantes
	var productID string
	if err := s.db.WithContext(ctx).Model(&models.ProductVariant{}).
		Where("id = ?", variantID).
		Select("product_id").
		Scan(&productID).Error; err == nil {
		s.dropCache(productID)
	}
	return nil
}

// DeleteVariant désactive la variante plutôt que de la supprimer
func (s *CatalogService) DeleteVariant(ctx context.Context, variantID string) error {
	return s.UpdateVariant(ctx, variantID, map[string]interface{}{"is_active": false})
}

// ResolveVariant applique la cascade de résolution (exacte → partielle →
// en stock) sur les variantes actives du produit
func (s *CatalogService) ResolveVariant(ctx context.Context, productID string, selected map[string]string) (*models.ProductVariant, error) {
	variants, err := s.ListVariants(ctx, productID)
	if err != nil {
		return nil, err
	}
	if len(variants) == 0 {
		return nil, problem.NotFound("aucune variante pour le produit " + productID)
	}

	variant := MatchVariant(variants, selected)
	if variant == nil {
		return nil, problem.NotFound("aucune variante disponible pour cette sélection")
	}
	return variant, nil
}

func (s *CatalogService) reindex(productID string) {
	if s.search == nil {
		return
	}
	var product models.Product
	if err := s.db.First(&product, "id = ?", productID).Error; err != nil {
		return
	}
	go s.search.IndexProduct(product)
}
