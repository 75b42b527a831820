package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/neetrino/whiteshop/internal/models"
	"github.com/neetrino/whiteshop/internal/problem"
)

// RequireAdmin vérifie que l'utilisateur a le rôle "admin"
func RequireAdmin(c *gin.Context) {
	role, exists := c.Get("role")
	if !exists || role != models.RoleAdmin {
		problem.Abort(c, problem.Forbidden("accès réservé aux administrateurs"))
		return
	}
	c.Next()
}
