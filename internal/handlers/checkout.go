package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
	"github.com/stripe/stripe-go/v83/webhook"

	"github.com/neetrino/whiteshop/internal/config"
	"github.com/neetrino/whiteshop/internal/models"
	"github.com/neetrino/whiteshop/internal/problem"
	"github.com/neetrino/whiteshop/internal/services"
	"github.com/neetrino/whiteshop/internal/utils"
)

type CheckoutHandler struct {
	Orders *services.OrdersService
	Cart   *services.CartStore
}

func NewCheckoutHandler(orders *services.OrdersService, cart *services.CartStore) *CheckoutHandler {
	return &CheckoutHandler{Orders: orders, Cart: cart}
}

// Checkout : POST /api/v1/checkout (auth optionnelle).
// Connecté : les articles viennent du panier Redis. Invité : le client
// soumet sa liste d'articles (panier tenu côté navigateur).
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var input services.CheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		problem.Abort(c, problem.BadRequest("données invalides: "+err.Error()))
		return
	}

	ctx := c.Request.Context()
	userID := c.GetString("user_id")

	if userID != "" {
		input.UserID = userID
		cart, err := h.Cart.Get(ctx, userID)
		if err != nil {
			problem.Abort(c, err)
			return
		}

		input.Items = input.Items[:0]
		for _, item := range cart.Items {
			input.Items = append(input.Items, services.CheckoutItemInput{
				ProductID: item.ProductID,
				VariantID: item.VariantID,
				Quantity:  item.Quantity,
			})
		}
	}

	order, err := h.Orders.Checkout(ctx, input)
	if err != nil {
		problem.Abort(c, err)
		return
	}

	// PaymentIntent Stripe (désactivé sans clé : commande en attente de
	// paiement hors ligne). La commande et le stock sont déjà engagés :
	// un échec Stripe ne doit pas la faire disparaître pour le client,
	// on retombe sur le paiement hors ligne.
	clientSecret := ""
	if stripe.Key != "" {
		params := &stripe.PaymentIntentParams{
			Amount:   stripe.Int64(int64(order.Total * 100)),
			Currency: stripe.String(order.Currency),
			AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
				Enabled: stripe.Bool(true),
			},
			Metadata: map[string]string{
				"order_id":     order.ID,
				"order_number": order.Number,
				"email":        order.Email,
			},
		}

		intent, err := paymentintent.New(params)
		switch {
		case err != nil:
			log.Printf("❌ Erreur Stripe: %v — commande %s en paiement hors ligne", err, order.Number)
		default:
			if err := h.Orders.AttachPaymentIntent(ctx, order.ID, intent.ID); err != nil {
				log.Printf("⚠️ Erreur rattachement PaymentIntent %s: %v", intent.ID, err)
			} else {
				clientSecret = intent.ClientSecret
				log.Printf("💳 Checkout créé: %s (%.2f€) pour %s", intent.ID, order.Total, order.Email)
			}
		}
	}

	// Le panier Redis est consommé par la commande
	if userID != "" {
		if err := h.Cart.Clear(ctx, userID); err != nil {
			log.Printf("⚠️ Erreur vidage panier %s: %v", userID, err)
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"order":         order,
		"client_secret": clientSecret,
	})
}

// StripeWebhook : POST /api/v1/payments/webhook
// Confirme la commande quand Stripe signale le paiement
func (h *CheckoutHandler) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		problem.Abort(c, problem.BadRequest("corps illisible"))
		return
	}

	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"),
		config.C.StripeWebhookSecret)
	if err != nil {
		log.Printf("❌ Signature webhook Stripe invalide: %v", err)
		problem.Abort(c, problem.BadRequest("signature invalide"))
		return
	}

	switch event.Type {
	case "payment_intent.succeeded":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			problem.Abort(c, problem.BadRequest("événement illisible"))
			return
		}

		order, err := h.Orders.MarkPaymentSucceeded(c.Request.Context(), intent.ID)
		if err != nil {
			problem.Abort(c, err)
			return
		}
		log.Printf("✅ Paiement confirmé pour la commande %s", order.Number)

		go func(o models.Order) {
			if err := utils.SendOrderConfirmation(o); err != nil {
				log.Printf("⚠️ Erreur e-mail de confirmation %s: %v", o.Number, err)
			}
		}(*order)

	case "payment_intent.payment_failed":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			problem.Abort(c, problem.BadRequest("événement illisible"))
			return
		}
		if err := h.Orders.MarkPaymentFailed(c.Request.Context(), intent.ID); err != nil {
			log.Printf("⚠️ Erreur marquage paiement échoué %s: %v", intent.ID, err)
		}

	default:
		// Événement ignoré
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
