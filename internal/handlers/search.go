package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/neetrino/whiteshop/internal/problem"
	"github.com/neetrino/whiteshop/internal/services"
)

type SearchHandler struct {
	Search *services.SearchService
}

func NewSearchHandler(search *services.SearchService) *SearchHandler {
	return &SearchHandler{Search: search}
}

// Query : GET /api/v1/search?q=&limit=
func (h *SearchHandler) Query(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		problem.Abort(c, problem.BadRequest("paramètre q requis"))
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	products, err := h.Search.Search(c.Request.Context(), q, limit)
	if err != nil {
		problem.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":    q,
		"products": products,
		"total":    len(products),
	})
}
