package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/neetrino/whiteshop/internal/database"
	"github.com/neetrino/whiteshop/internal/models"
	"github.com/neetrino/whiteshop/internal/problem"
	"github.com/neetrino/whiteshop/internal/services"
)

const productCacheTTL = 5 * time.Minute

type ProductHandler struct {
	Catalog *services.CatalogService
}

func NewProductHandler(catalog *services.CatalogService) *ProductHandler {
	return &ProductHandler{Catalog: catalog}
}

// List : GET /api/v1/products?page=&per_page=&tag=
func (h *ProductHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "24"))

	products, total, err := h.Catalog.ListProducts(c.Request.Context(), services.ListProductsParams{
		Tag:     c.Query("tag"),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		problem.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

// Get : GET /api/v1/products/:id — détail mis en cache 5 minutes dans Redis
func (h *ProductHandler) Get(c *gin.Context) {
	id := c.Param("id")
	cacheKey := services.ProductCacheKey(id)

	if database.Redis != nil {
		if data, err := database.Redis.Get(context.Background(), cacheKey).Result(); err == nil && data != "" {
			var product models.Product
			if json.Unmarshal([]byte(data), &product) == nil {
				c.JSON(http.StatusOK, product)
				return
			}
		}
	}

	product, err := h.Catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		problem.Abort(c, err)
		return
	}

	if database.Redis != nil {
		if data, err := json.Marshal(product); err == nil {
			database.Redis.Set(context.Background(), cacheKey, data, productCacheTTL)
		}
	}

	c.JSON(http.StatusOK, product)
}

// Variants : GET /api/v1/products/:id/variants
func (h *ProductHandler) Variants(c *gin.Context) {
	variants, err := h.Catalog.ListVariants(c.Request.Context(), c.Param("id"))
	if err != nil {
		problem.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"variants": variants,
		"total":    len(variants),
	})
}

// ResolveVariant : POST /api/v1/products/:id/variants/resolve
// Body: {"options": {"color": "red", "size": "L"}}
func (h *ProductHandler) ResolveVariant(c *gin.Context) {
	var input struct {
		Options map[string]string `json:"options"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		problem.Abort(c, problem.BadRequest("données invalides"))
		return
	}

	variant, err := h.Catalog.ResolveVariant(c.Request.Context(), c.Param("id"), input.Options)
	if err != nil {
		problem.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, variant)
}
