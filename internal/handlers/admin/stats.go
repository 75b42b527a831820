package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/neetrino/whiteshop/internal/problem"
	"github.com/neetrino/whiteshop/internal/services"
)

type StatsHandler struct {
	Admin *services.AdminService
}

func NewStatsHandler(admin *services.AdminService) *StatsHandler {
	return &StatsHandler{Admin: admin}
}

// Dashboard : GET /api/v1/admin/stats
func (h *StatsHandler) Dashboard(c *gin.Context) {
	stats, err := h.Admin.Stats(c.Request.Context())
	if err != nil {
		problem.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
