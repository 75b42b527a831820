package admin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/neetrino/whiteshop/internal/problem"
	"github.com/neetrino/whiteshop/internal/services"
)

type ContactsHandler struct {
	Admin *services.AdminService
}

func NewContactsHandler(admin *services.AdminService) *ContactsHandler {
	return &ContactsHandler{Admin: admin}
}

// List : GET /api/v1/admin/contacts?unhandled=true
func (h *ContactsHandler) List(c *gin.Context) {
	onlyUnhandled := c.Query("unhandled") == "true"

	messages, err := h.Admin.ListContactMessages(c.Request.Context(), onlyUnhandled)
	if err != nil {
		problem.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
		"total":    len(messages),
	})
}

// MarkHandled : PATCH /api/v1/admin/contacts/:id/handled
func (h *ContactsHandler) MarkHandled(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		problem.Abort(c, problem.BadRequest("id invalide"))
		return
	}

	if err := h.Admin.MarkContactHandled(c.Request.Context(), uint(id)); err != nil {
		problem.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Message traité"})
}
