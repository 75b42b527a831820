// Package problem implémente les corps d'erreur RFC 7807 (Problem Details).
// Les services retournent des *Problem ; la frontière HTTP les sérialise
// en application/problem+json via Abort.
package problem

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

const ContentType = "application/problem+json"

// baseType préfixe les URI de type de problème
const baseType = "https://whiteshop.neetrino.dev/problems/"

type Problem struct {
	Status int    `json:"status"`
	Type   string `json:"type"`
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
}

func (p *Problem) Error() string {
	return fmt.Sprintf("%s (%d): %s", p.Title, p.Status, p.Detail)
}

func New(status int, slug, title, detail string) *Problem {
	return &Problem{
		Status: status,
		Type:   baseType + slug,
		Title:  title,
		Detail: detail,
	}
}

func BadRequest(detail string) *Problem {
	return New(http.StatusBadRequest, "invalid-request", "Requête invalide", detail)
}

func Unauthorized(detail string) *Problem {
	return New(http.StatusUnauthorized, "unauthorized", "Non authentifié", detail)
}

func Forbidden(detail string) *Problem {
	return New(http.StatusForbidden, "forbidden", "Accès refusé", detail)
}

func NotFound(detail string) *Problem {
	return New(http.StatusNotFound, "not-found", "Ressource introuvable", detail)
}

func Conflict(slug, detail string) *Problem {
	return New(http.StatusConflict, slug, "Conflit", detail)
}

func Unprocessable(slug, title, detail string) *Problem {
	return New(http.StatusUnprocessableEntity, slug, title, detail)
}

func Internal() *Problem {
	return New(http.StatusInternalServerError, "internal", "Erreur interne", "")
}

// InsufficientStock : l'échec métier du checkout (422)
func InsufficientStock(sku string, available, requested int) *Problem {
	return Unprocessable("insufficient-stock", "Stock insuffisant",
		fmt.Sprintf("stock insuffisant pour %s : %d disponible(s), %d demandé(s)", sku, available, requested))
}

// Abort écrit l'erreur au format RFC 7807 et interrompt la chaîne gin.
// Les erreurs non typées deviennent un 500 générique (le détail reste en log).
func Abort(c *gin.Context, err error) {
	var p *Problem
	if !errors.As(err, &p) {
		log.Printf("❌ Erreur non gérée: %v", err)
		p = Internal()
	}
	c.Header("Content-Type", ContentType)
	c.AbortWithStatusJSON(p.Status, p)
}
