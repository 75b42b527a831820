package config

import (
	"log"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:8080"`
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`

	DatabaseDSN string `env:"DATABASE_DSN"`

	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	ElasticURL      string `env:"ELASTIC_URL"`
	ElasticUser     string `env:"ELASTIC_USER"`
	ElasticPassword string `env:"ELASTIC_PASSWORD"`

	MinioEndpoint  string `env:"MINIO_ENDPOINT"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY"`
	MinioBucket    string `env:"MINIO_BUCKET" envDefault:"whiteshop-images"`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL"`

	StripeSecretKey     string `env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`

	JWTSecret     string `env:"JWT_SECRET"`
	SessionSecret string `env:"SESSION_SECRET"`

	GoogleClientID       string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret   string `env:"GOOGLE_CLIENT_SECRET"`
	FacebookClientID     string `env:"FACEBOOK_CLIENT_ID"`
	FacebookClientSecret string `env:"FACEBOOK_CLIENT_SECRET"`

	SMTPHost     string `env:"SMTP_HOST" envDefault:"ssl0.ovh.net"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	MailFrom     string `env:"MAIL_FROM" envDefault:"noreply@whiteshop.neetrino.dev"`
	ContactInbox string `env:"CONTACT_INBOX" envDefault:"contact@whiteshop.neetrino.dev"`

	// Tarification checkout
	Currency         string  `env:"CURRENCY" envDefault:"eur"`
	ShippingFlatRate float64 `env:"SHIPPING_FLAT_RATE" envDefault:"5.90"`
	FreeShippingOver float64 `env:"FREE_SHIPPING_OVER" envDefault:"80"`
	TaxRate          float64 `env:"TAX_RATE" envDefault:"0.21"`
}

// C est la configuration globale, remplie par Load au démarrage
var C Config

func Load() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  Aucun fichier .env trouvé — on continue avec les variables d'environnement du système")
	} else {
		log.Println("✅ Fichier .env chargé avec succès")
	}

	if err := env.Parse(&C); err != nil {
		log.Fatalf("❌ Configuration invalide: %v", err)
	}
}
