package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/neetrino/whiteshop/internal/problem"
	"github.com/neetrino/whiteshop/internal/services"
)

type OrderHandler struct {
	Orders *services.OrdersService
}

func NewOrderHandler(orders *services.OrdersService) *OrderHandler {
	return &OrderHandler{Orders: orders}
}

// ListMine : GET /api/v1/orders — historique de l'utilisateur connecté
func (h *OrderHandler) ListMine(c *gin.Context) {
	orders, err := h.Orders.ListUserOrders(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		problem.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GetMine : GET /api/v1/orders/:id — la commande doit appartenir à l'utilisateur
func (h *OrderHandler) GetMine(c *gin.Context) {
	order, err := h.Orders.GetUserOrder(c.Request.Context(), c.GetString("user_id"), c.Param("id"))
	if err != nil {
		problem.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// Track : GET /api/v1/orders/track/:number?email= — suivi invité
// (numéro + e-mail de commande, pas de compte requis)
func (h *OrderHandler) Track(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		problem.Abort(c, problem.BadRequest("paramètre email requis"))
		return
	}

	order, err := h.Orders.TrackOrder(c.Request.Context(), c.Param("number"), email)
	if err != nil {
		problem.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}
