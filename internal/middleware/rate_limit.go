package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/neetrino/whiteshop/internal/database"
	"github.com/neetrino/whiteshop/internal/problem"
)

const (
	APIMaxRequests     = 100 // par minute et par IP
	CartMaxAdds        = 20  // par minute et par utilisateur
	SearchMaxRequests  = 30  // par minute et par IP
	ContactMaxRequests = 3   // par 10 minutes et par IP

	APICooldown     = 1 * time.Minute
	ContactCooldown = 10 * time.Minute
)

func tooMany(c *gin.Context, retryAfter time.Duration) {
	c.Header("Retry-After", fmt.Sprintf("%d", int(retryAfter.Seconds())))
	problem.Abort(c, problem.New(429, "rate-limited", "Trop de requêtes",
		fmt.Sprintf("réessayez dans %d secondes", int(retryAfter.Seconds()))))
}

// limitByKey incrémente un compteur Redis avec TTL et bloque au-delà de max
func limitByKey(c *gin.Context, key string, max int, window time.Duration) bool {
	if database.Redis == nil {
		return true // pas de Redis (tests) : pas de limite
	}
	ctx := context.Background()

	requests, _ := database.Redis.Get(ctx, key).Int()
	if requests >= max {
		tooMany(c, window)
		return false
	}

	pipe := database.Redis.Pipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	pipe.Exec(ctx)

	c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", max))
	c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", max-requests-1))
	return true
}

// APIRateLimit limite le nombre de requêtes par IP (général)
func APIRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limitByKey(c, "api_requests:"+c.ClientIP(), APIMaxRequests, APICooldown) {
			return
		}
		c.Next()
	}
}

// CartRateLimit limite les ajouts au panier (anti-spam)
func CartRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			c.Next()
			return
		}
		if !limitByKey(c, "cart_add:"+userID, CartMaxAdds, APICooldown) {
			return
		}
		c.Next()
	}
}

// SearchRateLimit limite les recherches par IP
func SearchRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limitByKey(c, "search_requests:"+c.ClientIP(), SearchMaxRequests, APICooldown) {
			return
		}
		c.Next()
	}
}

// ContactRateLimit limite les messages de contact par IP
func ContactRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limitByKey(c, "contact_requests:"+c.ClientIP(), ContactMaxRequests, ContactCooldown) {
			return
		}
		c.Next()
	}
}
