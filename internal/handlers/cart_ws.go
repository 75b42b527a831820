package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/neetrino/whiteshop/internal/problem"
	"github.com/neetrino/whiteshop/internal/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Autoriser toutes les origines (à ajuster en production)
		return true
	},
}

type CartWSHandler struct {
	Cart *services.CartStore
}

func NewCartWSHandler(cart *services.CartStore) *CartWSHandler {
	return &CartWSHandler{Cart: cart}
}

// Sync : GET /api/v1/cart/ws — pousse le panier à chaque mutation
// (événements "updated"/"cleared" publiés sur le canal Redis du panier)
func (h *CartWSHandler) Sync(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		problem.Abort(c, problem.Unauthorized("non authentifié"))
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ Erreur upgrade WebSocket: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	pubsub := h.Cart.Subscribe(ctx, userID)
	defer pubsub.Close()
	ch := pubsub.Channel()

	conn.WriteJSON(gin.H{
		"type":    "connected",
		"message": "Synchronisation panier activée",
	})

	// Détecte la fermeture côté client
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if msg.Payload != "updated" && msg.Payload != "cleared" {
				continue
			}

			cart, err := h.Cart.Get(ctx, userID)
			if err != nil {
				continue
			}

			count := 0
			for _, item := range cart.Items {
				count += item.Quantity
			}

			if err := conn.WriteJSON(gin.H{
				"type":     "cart_updated",
				"items":    cart.Items,
				"subtotal": cart.Subtotal(),
				"count":    count,
			}); err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}
