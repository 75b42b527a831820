package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"github.com/neetrino/whiteshop/internal/config"
	"github.com/neetrino/whiteshop/internal/problem"
)

// ImageService stocke les images produit dans MinIO
type ImageService struct {
	client *minio.Client
	bucket string
}

func NewImageService(client *minio.Client, bucket string) *ImageService {
	return &ImageService{client: client, bucket: bucket}
}

// UploadProductImage envoie le fichier dans le bucket et retourne l'URL publique
func (s *ImageService) UploadProductImage(ctx context.Context, productID string, file *multipart.FileHeader) (string, error) {
	if s.client == nil {
		return "", problem.New(503, "storage-unavailable", "Stockage indisponible", "MinIO non configuré")
	}

	f, err := file.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	object := fmt.Sprintf("%s/%s%s", productID, uuid.NewString(), filepath.Ext(file.Filename))

	_, err = s.client.PutObject(ctx, s.bucket, object, f, file.Size,
		minio.PutObjectOptions{ContentType: file.Header.Get("Content-Type")})
	if err != nil {
		return "", err
	}

	scheme := "http"
	if config.C.MinioUseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, config.C.MinioEndpoint, s.bucket, object), nil
}

// DeleteProductImage supprime un objet du bucket (chemin productID/fichier)
func (s *ImageService) DeleteProductImage(ctx context.Context, object string) error {
	if s.client == nil {
		return problem.New(503, "storage-unavailable", "Stockage indisponible", "MinIO non configuré")
	}
	return s.client.RemoveObject(ctx, s.bucket, object, minio.RemoveObjectOptions{})
}

// PresignedImageURL génère une URL de lecture temporaire (bucket privé)
func (s *ImageService) PresignedImageURL(ctx context.Context, object string, expiry time.Duration) (string, error) {
	if s.client == nil {
		return "", problem.New(503, "storage-unavailable", "Stockage indisponible", "MinIO non configuré")
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, object, expiry, nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
