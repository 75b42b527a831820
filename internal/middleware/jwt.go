package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/neetrino/whiteshop/internal/config"
	"github.com/neetrino/whiteshop/internal/problem"
)

func jwtSecret() []byte {
	secret := config.C.JWTSecret
	if secret == "" {
		secret = "super_secret"
	}
	return []byte(secret)
}

// AuthRequired exige un Bearer token valide et pose user_id/email/role
// dans le contexte gin
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := parseBearer(c)
		if err != nil {
			problem.Abort(c, err)
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth pose les claims si un token valide est présent, sinon laisse
// passer en invité (panier client, checkout invité)
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		claims, err := parseBearer(c)
		if err != nil {
			problem.Abort(c, err)
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

func parseBearer(c *gin.Context) (jwt.MapClaims, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, problem.Unauthorized("token manquant")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, problem.Unauthorized("format Authorization invalide")
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("méthode de signature inattendue: %v", token.Header["alg"])
		}
		return jwtSecret(), nil
	})
	if err != nil || !token.Valid {
		return nil, problem.Unauthorized("token invalide ou expiré")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, problem.Unauthorized("claims invalides")
	}
	if _, ok := claims["user_id"].(string); !ok {
		return nil, problem.Unauthorized("user_id manquant")
	}

	return claims, nil
}

func setClaims(c *gin.Context, claims jwt.MapClaims) {
	c.Set("user_id", claims["user_id"])
	if email, ok := claims["email"].(string); ok {
		c.Set("email", email)
	}
	if role, ok := claims["role"].(string); ok {
		c.Set("role", role)
	}
}
