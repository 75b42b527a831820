package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/neetrino/whiteshop/internal/problem"
	"github.com/neetrino/whiteshop/internal/services"
)

type ContactHandler struct {
	Contact *services.ContactService
}

func NewContactHandler(contact *services.ContactService) *ContactHandler {
	return &ContactHandler{Contact: contact}
}

// Submit : POST /api/v1/contact
func (h *ContactHandler) Submit(c *gin.Context) {
	var input services.ContactInput
	if err := c.ShouldBindJSON(&input); err != nil {
		problem.Abort(c, problem.BadRequest("données invalides"))
		return
	}

	msg, err := h.Contact.Submit(c.Request.Context(), input)
	if err != nil {
		problem.Abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Message envoyé, nous revenons vers vous rapidement",
		"id":      msg.ID,
	})
}
