package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/markbates/goth/gothic"
	"gorm.io/gorm"

	"github.com/neetrino/whiteshop/internal/config"
	"github.com/neetrino/whiteshop/internal/models"
	"github.com/neetrino/whiteshop/internal/problem"
	"github.com/neetrino/whiteshop/internal/utils"
)

type OAuthHandler struct {
	DB *gorm.DB
}

func NewOAuthHandler(db *gorm.DB) *OAuthHandler {
	return &OAuthHandler{DB: db}
}

// Begin lance le flow OAuth du provider (:provider = google|facebook)
func (h *OAuthHandler) Begin(c *gin.Context) {
	q := c.Request.URL.Query()
	q.Set("provider", c.Param("provider"))
	c.Request.URL.RawQuery = q.Encode()

	gothic.BeginAuthHandler(c.Writer, c.Request)
}

// Callback termine le flow OAuth, upsert l'utilisateur et redirige vers
// le front avec le JWT en query
func (h *OAuthHandler) Callback(c *gin.Context) {
	q := c.Request.URL.Query()
	q.Set("provider", c.Param("provider"))
	c.Request.URL.RawQuery = q.Encode()

	gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
	if err != nil {
		log.Printf("❌ Erreur OAuth callback: %v", err)
		problem.Abort(c, problem.Unauthorized("authentification OAuth échouée"))
		return
	}

	user, err := h.upsertOAuthUser(gothUser.Provider, gothUser.UserID, gothUser.Email, gothUser.Name)
	if err != nil {
		problem.Abort(c, err)
		return
	}

	token, err := utils.GenerateJWT(*user)
	if err != nil {
		problem.Abort(c, err)
		return
	}

	log.Printf("✅ Connexion OAuth %s pour %s", gothUser.Provider, user.Email)
	c.Redirect(http.StatusFound, fmt.Sprintf("%s/auth/callback?token=%s", config.C.FrontendURL, token))
}

func (h *OAuthHandler) upsertOAuthUser(provider, providerID, email, name string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, problem.Unauthorized("le provider n'a pas fourni d'e-mail")
	}

	var user models.User
	err := h.DB.Where("provider = ? AND provider_id = ?", provider, providerID).
		Or("email = ?", email).
		First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{
			ID:         uuid.NewString(),
			Name:       name,
			Email:      email,
			Role:       models.RoleCustomer,
			Provider:   provider,
			ProviderID: providerID,
		}
		if err := h.DB.Create(&user).Error; err != nil {
			return nil, err
		}
		return &user, nil
	}
	if err != nil {
		return nil, err
	}

	// Compte existant (inscription e-mail) : on rattache le provider
	if user.Provider == "" {
		h.DB.Model(&user).Updates(map[string]interface{}{
			"provider":    provider,
			"provider_id": providerID,
		})
	}
	return &user, nil
}
