package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/neetrino/whiteshop/internal/config"
	"github.com/neetrino/whiteshop/internal/database"
	"github.com/neetrino/whiteshop/internal/handlers"
	adminhandlers "github.com/neetrino/whiteshop/internal/handlers/admin"
	"github.com/neetrino/whiteshop/internal/middleware"
	"github.com/neetrino/whiteshop/internal/services"
)

func RegisterRoutes(r *gin.Engine) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.C.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Services
	search := services.NewSearchService(database.Elastic, database.DB)
	catalog := services.NewCatalogService(database.DB, search)
	orders := services.NewOrdersService(database.DB, services.PricingFromConfig())
	cart := services.NewCartStore(database.Redis)
	admin := services.NewAdminService(database.DB)
	contact := services.NewContactService(database.DB)
	images := services.NewImageService(database.MinIO, config.C.MinioBucket)

	// Handlers
	authH := handlers.NewAuthHandler(database.DB)
	oauthH := handlers.NewOAuthHandler(database.DB)
	productH := handlers.NewProductHandler(catalog)
	searchH := handlers.NewSearchHandler(search)
	cartH := handlers.NewCartHandler(cart, catalog)
	cartWSH := handlers.NewCartWSHandler(cart)
	checkoutH := handlers.NewCheckoutHandler(orders, cart)
	orderH := handlers.NewOrderHandler(orders)
	contactH := handlers.NewContactHandler(contact)

	adminProductsH := adminhandlers.NewProductsHandler(catalog, images)
	adminOrdersH := adminhandlers.NewOrdersHandler(admin)
	adminStatsH := adminhandlers.NewStatsHandler(admin)
	adminContactsH := adminhandlers.NewContactsHandler(admin)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	api.Use(middleware.APIRateLimit())

	// --- Public : catalogue, recherche, contact, suivi invité ---
	api.GET("/products", productH.List)
	api.GET("/products/:id", productH.Get)
	api.GET("/products/:id/variants", productH.Variants)
	api.POST("/products/:id/variants/resolve", productH.ResolveVariant)
	api.GET("/search", middleware.SearchRateLimit(), searchH.Query)
	api.POST("/contact", middleware.ContactRateLimit(), contactH.Submit)
	api.GET("/orders/track/:number", orderH.Track)

	// --- Auth ---
	api.POST("/auth/register", authH.Register)
	api.POST("/auth/login", authH.Login)
	api.GET("/auth/:provider", oauthH.Begin)
	api.GET("/auth/:provider/callback", oauthH.Callback)
	api.GET("/me", middleware.AuthRequired(), authH.Me)

	// --- Checkout : ouvert aux invités, le panier Redis prime si connecté ---
	api.POST("/checkout", middleware.OptionalAuth(), checkoutH.Checkout)
	api.POST("/payments/webhook", checkoutH.StripeWebhook)

	// --- Panier (compte requis, stocké dans Redis) ---
	cartGroup := api.Group("/cart", middleware.AuthRequired())
	cartGroup.GET("", cartH.Get)
	cartGroup.POST("", middleware.CartRateLimit(), cartH.Add)
	cartGroup.PUT("", cartH.Update)
	cartGroup.DELETE("", cartH.Clear)
	cartGroup.DELETE("/:productId", cartH.Remove)
	cartGroup.GET("/ws", cartWSH.Sync)

	// --- Commandes de l'utilisateur connecté ---
	ordersGroup := api.Group("/orders", middleware.AuthRequired())
	ordersGroup.GET("", orderH.ListMine)
	ordersGroup.GET("/:id", orderH.GetMine)

	// --- Back-office ---
	adminGroup := api.Group("/admin", middleware.AuthRequired(), middleware.RequireAdmin)
	adminGroup.POST("/products", adminProductsH.Create)
	adminGroup.PATCH("/products/:id", adminProductsH.Update)
	adminGroup.DELETE("/products/:id", adminProductsH.Delete)
	adminGroup.POST("/products/:id/variants", adminProductsH.CreateVariant)
	adminGroup.POST("/products/:id/images", adminProductsH.UploadImage)
	adminGroup.PATCH("/variants/:variant_id", adminProductsH.UpdateVariant)
	adminGroup.DELETE("/variants/:variant_id", adminProductsH.DeleteVariant)
	adminGroup.GET("/orders", adminOrdersH.List)
	adminGroup.GET("/orders/:id", adminOrdersH.Get)
	adminGroup.PATCH("/orders/:id/status", adminOrdersH.UpdateStatus)
	adminGroup.GET("/orders/:id/invoice.pdf", adminOrdersH.InvoicePDF)
	adminGroup.GET("/stats", adminStatsH.Dashboard)
	adminGroup.GET("/contacts", adminContactsH.List)
	adminGroup.PATCH("/contacts/:id/handled", adminContactsH.MarkHandled)
}
