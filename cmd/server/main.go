package main

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/facebook"
	"github.com/markbates/goth/providers/google"
	"github.com/stripe/stripe-go/v83"

	"github.com/neetrino/whiteshop/internal/config"
	"github.com/neetrino/whiteshop/internal/database"
	"github.com/neetrino/whiteshop/internal/routes"
)

func main() {
	config.Load()

	stripe.Key = config.C.StripeSecretKey
	if stripe.Key == "" {
		log.Println("⚠️ Stripe non configuré — checkout sans paiement en ligne")
	} else {
		log.Println("✅ Stripe initialisé")
	}

	database.Connect()

	initOAuthProviders()

	r := gin.Default()
	routes.RegisterRoutes(r)

	log.Println("🚀 Serveur WhiteShop lancé sur le port", config.C.Port)
	r.Run(":" + config.C.Port)
}

func initOAuthProviders() {
	sessionSecret := config.C.SessionSecret
	if sessionSecret == "" {
		log.Println("⚠️ SESSION_SECRET manquant — OAuth désactivé")
		return
	}

	store := sessions.NewCookieStore([]byte(sessionSecret))
	store.MaxAge(86400 * 30)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
		Secure:   false, // false en dev, true en prod
		SameSite: http.SameSiteLaxMode,
	}

	gothic.Store = store

	// Le provider arrive en query (:provider est recopié par le handler)
	gothic.GetProviderName = func(req *http.Request) (string, error) {
		if provider := req.URL.Query().Get("provider"); provider != "" {
			return provider, nil
		}
		if provider := req.FormValue("provider"); provider != "" {
			return provider, nil
		}
		return "", errors.New("provider not found")
	}

	googleCallback := config.C.BaseURL + "/api/v1/auth/google/callback"
	facebookCallback := config.C.BaseURL + "/api/v1/auth/facebook/callback"

	var providers []goth.Provider

	if config.C.GoogleClientID != "" && config.C.GoogleClientSecret != "" {
		providers = append(providers, google.New(
			config.C.GoogleClientID,
			config.C.GoogleClientSecret,
			googleCallback,
		))
		log.Println("✅ Google OAuth activé")
	}

	if config.C.FacebookClientID != "" && config.C.FacebookClientSecret != "" {
		providers = append(providers, facebook.New(
			config.C.FacebookClientID,
			config.C.FacebookClientSecret,
			facebookCallback,
		))
		log.Println("✅ Facebook OAuth activé")
	}

	if len(providers) == 0 {
		log.Println("⚠️ Aucun provider OAuth configuré")
		return
	}

	goth.UseProviders(providers...)
	log.Printf("✅ %d OAuth provider(s) initialisé(s)", len(providers))
}
