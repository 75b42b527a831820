package admin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/neetrino/whiteshop/internal/problem"
	"github.com/neetrino/whiteshop/internal/services"
	"github.com/neetrino/whiteshop/internal/utils"
)

type OrdersHandler struct {
	Admin *services.AdminService
}

func NewOrdersHandler(admin *services.AdminService) *OrdersHandler {
	return &OrdersHandler{Admin: admin}
}

// List : GET /api/v1/admin/orders?status=&payment_status=&page=&per_page=
func (h *OrdersHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "25"))

	orders, total, err := h.Admin.ListOrders(c.Request.Context(), services.OrderFilter{
		Status:        c.Query("status"),
		PaymentStatus: c.Query("payment_status"),
		Page:          page,
		PerPage:       perPage,
	})
	if err != nil {
		problem.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"total":  total,
		"page":   page,
	})
}

// Get : GET /api/v1/admin/orders/:id (ID ou numéro de commande)
func (h *OrdersHandler) Get(c *gin.Context) {
	order, err := h.Admin.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		problem.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// UpdateStatus : PATCH /api/v1/admin/orders/:id/status
// Body: {"field": "fulfillment_status", "value": "shipped"}
func (h *OrdersHandler) UpdateStatus(c *gin.Context) {
	var input struct {
		Field string `json:"field" binding:"required"`
		Value string `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		problem.Abort(c, problem.BadRequest("données invalides"))
		return
	}

	order, err := h.Admin.UpdateOrderStatus(c.Request.Context(), c.Param("id"), input.Field, input.Value)
	if err != nil {
		problem.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// InvoicePDF : GET /api/v1/admin/orders/:id/invoice.pdf
// Rend la page facture du storefront en PDF (avec QR SEPA de virement)
func (h *OrdersHandler) InvoicePDF(c *gin.Context) {
	order, err := h.Admin.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		problem.Abort(c, err)
		return
	}

	qr, err := utils.GenerateSepaQR(
		c.Query("iban"), c.Query("bic"), order.Name, order.Number, order.Total)
	if err != nil {
		qr = "" // facture sans QR plutôt que pas de facture
	}

	pdf, err := utils.RenderInvoicePDF(order.Number, qr)
	if err != nil {
		problem.Abort(c, problem.New(http.StatusBadGateway, "invoice-render",
			"Erreur génération facture", err.Error()))
		return
	}

	c.Header("Content-Disposition", "attachment; filename=facture_"+order.Number+".pdf")
	c.Data(http.StatusOK, "application/pdf", pdf)
}
