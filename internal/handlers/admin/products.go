package admin

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/neetrino/whiteshop/internal/models"
	"github.com/neetrino/whiteshop/internal/problem"
	"github.com/neetrino/whiteshop/internal/services"
)

type ProductsHandler struct {
	Catalog *services.CatalogService
	Images  *services.ImageService
}

func NewProductsHandler(catalog *services.CatalogService, images *services.ImageService) *ProductsHandler {
	return &ProductsHandler{Catalog: catalog, Images: images}
}

// Create : POST /api/v1/admin/products
func (h *ProductsHandler) Create(c *gin.Context) {
	var input services.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		problem.Abort(c, problem.BadRequest("données invalides: "+err.Error()))
		return
	}

	product, err := h.Catalog.CreateProduct(c.Request.Context(), input)
	if err != nil {
		problem.Abort(c, err)
		return
	}

	log.Printf("✅ Produit créé: %s (%s)", product.Title, product.SKU)
	c.JSON(http.StatusCreated, product)
}

// Update : PATCH /api/v1/admin/products/:id — mise à jour partielle
func (h *ProductsHandler) Update(c *gin.Context) {
	var input struct {
		Title       *string   `json:"title"`
		Description *string   `json:"description"`
		Price       *float64  `json:"price"`
		Stock       *int      `json:"stock"`
		Tags        *[]string `json:"tags"`
		IsActive    *bool     `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		problem.Abort(c, problem.BadRequest("données invalides"))
		return
	}

	updates := map[string]interface{}{}
	if input.Title != nil {
		updates["title"] = *input.Title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Price != nil {
		updates["price"] = *input.Price
	}
	if input.Stock != nil {
		updates["stock"] = *input.Stock
	}
	if input.Tags != nil {
		updates["tags"] = models.StringList(*input.Tags)
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if len(updates) == 0 {
		problem.Abort(c, problem.BadRequest("aucune mise à jour fournie"))
		return
	}

	product, err := h.Catalog.UpdateProduct(c.Request.Context(), c.Param("id"), updates)
	if err != nil {
		problem.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// Delete : DELETE /api/v1/admin/products/:id (désactivation)
func (h *ProductsHandler) Delete(c *gin.Context) {
	if err := h.Catalog.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		problem.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Produit désactivé"})
}

// CreateVariant : POST /api/v1/admin/products/:id/variants
func (h *ProductsHandler) CreateVariant(c *gin.Context) {
	var input services.VariantInput
	if err := c.ShouldBindJSON(&input); err != nil {
		problem.Abort(c, problem.BadRequest("données invalides: "+err.Error()))
		return
	}

	variant, err := h.Catalog.CreateVariant(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		problem.Abort(c, err)
		return
	}

	log.Printf("✅ Variante créée: %s pour produit %s", variant.SKU, variant.ProductID)
	c.JSON(http.StatusCreated, variant)
}

// UpdateVariant : PATCH /api/v1/admin/variants/:variant_id
func (h *ProductsHandler) UpdateVariant(c *gin.Context) {
	var input struct {
		Title    *string  `json:"title"`
		Price    *float64 `json:"price"`
		Stock    *int     `json:"stock"`
		IsActive *bool    `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		problem.Abort(c, problem.BadRequest("données invalides"))
		return
	}

	updates := map[string]interface{}{}
	if input.Title != nil {
		updates["title"] = *input.Title
	}
	if input.Price != nil {
		updates["price"] = *input.Price
	}
	if input.Stock != nil {
		updates["stock"] = *input.Stock
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if len(updates) == 0 {
		problem.Abort(c, problem.BadRequest("aucune mise à jour fournie"))
		return
	}

	if err := h.Catalog.UpdateVariant(c.Request.Context(), c.Param("variant_id"), updates); err != nil {
		problem.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Variante mise à jour avec succès"})
}

// DeleteVariant : DELETE /api/v1/admin/variants/:variant_id (désactivation)
func (h *ProductsHandler) DeleteVariant(c *gin.Context) {
	if err := h.Catalog.DeleteVariant(c.Request.Context(), c.Param("variant_id")); err != nil {
		problem.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Variante supprimée avec succès"})
}

// UploadImage : POST /api/v1/admin/products/:id/images (multipart)
func (h *ProductsHandler) UploadImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		problem.Abort(c, problem.BadRequest("fichier image requis"))
		return
	}

	url, err := h.Images.UploadProductImage(c.Request.Context(), c.Param("id"), file)
	if err != nil {
		problem.Abort(c, err)
		return
	}

	// L'URL est ajoutée à la liste d'images du produit
	product, err := h.Catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		problem.Abort(c, err)
		return
	}
	urls := append(product.ImageURLs, url)
	if _, err := h.Catalog.UpdateProduct(c.Request.Context(), product.ID,
		map[string]interface{}{"image_urls": urls}); err != nil {
		problem.Abort(c, err)
		return
	}

	log.Printf("🖼️ Image uploadée pour %s: %s", product.ID, url)
	c.JSON(http.StatusCreated, gin.H{"url": url})
}
