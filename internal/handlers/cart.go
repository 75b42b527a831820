package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/neetrino/whiteshop/internal/models"
	"github.com/neetrino/whiteshop/internal/problem"
	"github.com/neetrino/whiteshop/internal/services"
)

type CartHandler struct {
	Cart    *services.CartStore
	Catalog *services.CatalogService
}

func NewCartHandler(cart *services.CartStore, catalog *services.CatalogService) *CartHandler {
	return &CartHandler{Cart: cart, Catalog: catalog}
}

// Get : GET /api/v1/cart
func (h *CartHandler) Get(c *gin.Context) {
	cart, err := h.Cart.Get(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		problem.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":    cart.Items,
		"subtotal": cart.Subtotal(),
	})
}

// Add : POST /api/v1/cart
// L'article est figé (titre, SKU, prix, image) au moment de l'ajout ;
// le checkout re-validera stock et prix.
func (h *CartHandler) Add(c *gin.Context) {
	var input struct {
		ProductID string            `json:"product_id" binding:"required"`
		VariantID string            `json:"variant_id"`
		Options   map[string]string `json:"options"`
		Quantity  int               `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		problem.Abort(c, problem.BadRequest("données invalides"))
		return
	}
	if input.Quantity <= 0 {
		problem.Abort(c, problem.BadRequest("quantité invalide"))
		return
	}

	ctx := c.Request.Context()

	product, err := h.Catalog.GetProduct(ctx, input.ProductID)
	if err != nil {
		problem.Abort(c, err)
		return
	}

	item := models.CartItem{
		ProductID: product.ID,
		Title:     product.Title,
		SKU:       product.SKU,
		Price:     product.Price,
		Quantity:  input.Quantity,
	}
	if len(product.ImageURLs) > 0 {
		item.ImageURL = product.ImageURLs[0]
	}

	if product.HasVariants {
		var variant *models.ProductVariant
		if input.VariantID != "" {
			for i := range product.Variants {
				if product.Variants[i].ID == input.VariantID {
					variant = &product.Variants[i]
					break
				}
			}
		} else {
			variant = services.MatchVariant(product.Variants, input.Options)
		}
		if variant == nil {
			problem.Abort(c, problem.NotFound("variante introuvable pour ce produit"))
			return
		}

		item.VariantID = variant.ID
		item.SKU = variant.SKU
		item.Price = variant.Price
		if variant.Title != "" {
			item.Title = product.Title + " — " + variant.Title
		}
	}

	cart, err := h.Cart.Add(ctx, c.GetString("user_id"), item)
	if err != nil {
		problem.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Produit ajouté au panier",
		"items":    cart.Items,
		"subtotal": cart.Subtotal(),
	})
}

// Update : PUT /api/v1/cart — fixe la quantité d'une ligne
func (h *CartHandler) Update(c *gin.Context) {
	var input struct {
		ProductID string `json:"product_id" binding:"required"`
		VariantID string `json:"variant_id"`
		Quantity  int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		problem.Abort(c, problem.BadRequest("données invalides"))
		return
	}

	cart, err := h.Cart.UpdateQuantity(c.Request.Context(), c.GetString("user_id"),
		input.ProductID, input.VariantID, input.Quantity)
	if err != nil {
		problem.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":    cart.Items,
		"subtotal": cart.Subtotal(),
	})
}

// Remove : DELETE /api/v1/cart/:productId?variant_id=
func (h *CartHandler) Remove(c *gin.Context) {
	cart, err := h.Cart.Remove(c.Request.Context(), c.GetString("user_id"),
		c.Param("productId"), c.Query("variant_id"))
	if err != nil {
		problem.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Produit supprimé du panier",
		"items":    cart.Items,
		"subtotal": cart.Subtotal(),
	})
}

// Clear : DELETE /api/v1/cart
func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.Cart.Clear(c.Request.Context(), c.GetString("user_id")); err != nil {
		problem.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Panier vidé avec succès"})
}
