package database

import (
	"context"
	"log"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/neetrino/whiteshop/internal/config"
	"github.com/neetrino/whiteshop/internal/models"
)

// --- Variables globales ---
var (
	DB      *gorm.DB
	Redis   *redis.Client
	Elastic *elasticsearch.Client
	MinIO   *minio.Client
)

// Connect initialise MySQL (GORM), Redis, Elasticsearch et MinIO.
// MySQL et Redis sont obligatoires ; Elastic et MinIO sont optionnels
// (recherche en mode dégradé SQL, upload d'images désactivé).
func Connect() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	connectMySQL()
	connectRedis(ctx)
	connectElastic()
	connectMinIO(ctx)

	log.Println("✅ Toutes les bases de données sont connectées")
}

func connectMySQL() {
	db, err := gorm.Open(mysql.Open(config.C.DatabaseDSN), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("❌ Erreur connexion MySQL: %v", err)
	}

	if err := Migrate(db); err != nil {
		log.Fatalf("❌ Erreur migration: %v", err)
	}

	DB = db
	log.Println("✅ Connecté à MySQL")
}

// Migrate crée/ajuste le schéma. Exporté pour les tests (SQLite en mémoire).
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.ProductVariant{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.ContactMessage{},
	)
}

func connectRedis(ctx context.Context) {
	Redis = redis.NewClient(&redis.Options{
		Addr:     config.C.RedisHost,
		Password: config.C.RedisPassword,
		DB:       0,
	})

	if err := Redis.Ping(ctx).Err(); err != nil {
		log.Fatal("❌ Erreur connexion Redis:", err)
	}
	log.Println("✅ Connecté à Redis")
}

func connectElastic() {
	if config.C.ElasticURL == "" {
		log.Println("⚠️ Elasticsearch non configuré — recherche en mode SQL")
		return
	}

	cfg := elasticsearch.Config{
		Addresses: []string{config.C.ElasticURL},
		Username:  config.C.ElasticUser,
		Password:  config.C.ElasticPassword,
	}

	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		log.Println("⚠️ Erreur création client Elasticsearch:", err)
		return
	}

	res, err := client.Info()
	if err != nil {
		log.Println("⚠️ Elasticsearch injoignable — recherche en mode SQL:", err)
		return
	}
	defer res.Body.Close()

	Elastic = client
	log.Println("✅ Connecté à Elasticsearch")
}

func connectMinIO(ctx context.Context) {
	if config.C.MinioEndpoint == "" {
		log.Println("⚠️ MinIO non configuré — upload d'images désactivé")
		return
	}

	client, err := minio.New(config.C.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.C.MinioAccessKey, config.C.MinioSecretKey, ""),
		Secure: config.C.MinioUseSSL,
	})
	if err != nil {
		log.Println("⚠️ Erreur connexion MinIO:", err)
		return
	}

	bucket := config.C.MinioBucket
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		log.Println("⚠️ Erreur vérification bucket MinIO:", err)
		return
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			log.Println("⚠️ Erreur création bucket MinIO:", err)
			return
		}
		log.Println("🪣 Bucket créé :", bucket)
	}

	MinIO = client
	log.Println("✅ Connecté à MinIO :", config.C.MinioEndpoint)
}
