package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/neetrino/whiteshop/internal/models"
	"github.com/neetrino/whiteshop/internal/problem"
	"github.com/neetrino/whiteshop/internal/utils"
)

type AuthHandler struct {
	DB *gorm.DB
}

func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{DB: db}
}

// Register crée un compte client et retourne un JWT
func (h *AuthHandler) Register(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		problem.Abort(c, problem.BadRequest("données invalides: "+err.Error()))
		return
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		problem.Abort(c, err)
		return
	}

	user := models.User{
		ID:       uuid.NewString(),
		Name:     input.Name,
		Email:    strings.ToLower(strings.TrimSpace(input.Email)),
		Password: hash,
		Role:     models.RoleCustomer,
	}

	if err := h.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			problem.Abort(c, problem.Conflict("email-taken", "cet e-mail est déjà utilisé"))
			return
		}
		problem.Abort(c, err)
		return
	}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		problem.Abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

// Login vérifie le mot de passe et retourne un JWT
func (h *AuthHandler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		problem.Abort(c, problem.BadRequest("données invalides"))
		return
	}

	var user models.User
	err := h.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(input.Email))).
		First(&user).Error
	if err != nil {
		problem.Abort(c, problem.Unauthorized("identifiants invalides"))
		return
	}

	ok, err := utils.VerifyPassword(input.Password, user.Password)
	if err != nil || !ok {
		problem.Abort(c, problem.Unauthorized("identifiants invalides"))
		return
	}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		problem.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// Me retourne le profil de l'utilisateur connecté
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetString("user_id")

	var user models.User
	if err := h.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		problem.Abort(c, problem.NotFound("utilisateur introuvable"))
		return
	}

	c.JSON(http.StatusOK, user)
}
